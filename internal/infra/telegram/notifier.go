package telegram

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"scholarship_admin/internal/domain/notification"
	domainTelegram "scholarship_admin/internal/domain/telegram"
)

// StaffNotifier pushes submitted applications to staff chats with review
// buttons, and reports decisions to the manager. It implements
// notification.Publisher; events it has no message for are ignored.
type StaffNotifier struct {
	client    domainTelegram.Client
	staff     Staff
	managerID int64
	logger    *logrus.Entry
}

func NewStaffNotifier(client domainTelegram.Client, staff Staff, managerID int64, logger *logrus.Entry) *StaffNotifier {
	return &StaffNotifier{client: client, staff: staff, managerID: managerID, logger: logger}
}

func (n *StaffNotifier) Publish(_ context.Context, evt notification.Event) error {
	switch evt.Type {
	case notification.EventApplicationSubmitted:
		return n.announceSubmission(evt)
	case notification.EventApplicationReviewed:
		return n.reportDecision(evt)
	}
	return nil
}

func (n *StaffNotifier) announceSubmission(evt notification.Event) error {
	text := fmt.Sprintf("New application %s submitted for cycle %d by %s.",
		evt.ApplicationNumber, evt.CycleID, evt.UserID)
	buttons := []domainTelegram.Button{
		{Text: "Approve", Data: approveData(evt.ApplicationID)},
		{Text: "Reject", Data: rejectData(evt.ApplicationID)},
	}

	var failed []error
	for _, chatID := range n.staff.IDs() {
		if err := n.client.SendWithButtons(chatID, text, buttons); err != nil {
			n.logger.WithError(err).WithFields(logrus.Fields{
				"chat_id":        chatID,
				"application_id": evt.ApplicationID,
			}).Error("Failed to send submission notice")
			failed = append(failed, fmt.Errorf("notify %d: %w", chatID, err))
		}
	}
	return errors.Join(failed...)
}

func (n *StaffNotifier) reportDecision(evt notification.Event) error {
	if n.managerID == 0 {
		return nil
	}
	text := fmt.Sprintf("Application %s moved %s -> %s by %s.", evt.ApplicationNumber, evt.From, evt.To, evt.Actor)
	if evt.Note != "" {
		text += "\nNotes: " + evt.Note
	}
	if err := n.client.SendText(n.managerID, text); err != nil {
		return fmt.Errorf("notify manager %d: %w", n.managerID, err)
	}
	return nil
}
