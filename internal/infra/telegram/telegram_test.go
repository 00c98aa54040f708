package telegram

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scholarship_admin/internal/app"
	"scholarship_admin/internal/domain/application"
	"scholarship_admin/internal/domain/cycle"
	"scholarship_admin/internal/domain/errs"
	"scholarship_admin/internal/domain/notification"
	domainTelegram "scholarship_admin/internal/domain/telegram"
)

type sent struct {
	chatID  int64
	text    string
	buttons []domainTelegram.Button
}

type fakeClient struct {
	messages []sent
	failFor  map[int64]error
}

func (f *fakeClient) SendText(chatID int64, text string) error {
	if err := f.failFor[chatID]; err != nil {
		return err
	}
	f.messages = append(f.messages, sent{chatID: chatID, text: text})
	return nil
}

func (f *fakeClient) SendWithButtons(chatID int64, text string, buttons []domainTelegram.Button) error {
	if err := f.failFor[chatID]; err != nil {
		return err
	}
	f.messages = append(f.messages, sent{chatID: chatID, text: text, buttons: buttons})
	return nil
}

func quietLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func TestParseReviewCallback(t *testing.T) {
	decision, id, err := parseReviewCallback(approveData(42))
	require.NoError(t, err)
	assert.Equal(t, "APPROVED", decision)
	assert.Equal(t, int64(42), id)

	decision, id, err = parseReviewCallback("\f" + rejectData(7))
	require.NoError(t, err)
	assert.Equal(t, "REJECTED", decision)
	assert.Equal(t, int64(7), id)

	for _, bad := range []string{"ans_yes_1", "rv_ok_", "rv_no_abc", "rv_ok_-3"} {
		_, _, err := parseReviewCallback(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseReviewArgs(t *testing.T) {
	id, decision, notes, err := parseReviewArgs([]string{"12", "approved", "strong", "essay"})
	require.NoError(t, err)
	assert.Equal(t, int64(12), id)
	assert.Equal(t, "APPROVED", decision)
	assert.Equal(t, "strong essay", notes)

	_, _, _, err = parseReviewArgs([]string{"12"})
	assert.Error(t, err)
	_, _, _, err = parseReviewArgs([]string{"x", "APPROVED"})
	assert.Error(t, err)
}

func TestStaff(t *testing.T) {
	s := NewStaff(30, 0, 10, 20)
	assert.True(t, s.Allows(10))
	assert.False(t, s.Allows(0))
	assert.Equal(t, []int64{10, 20, 30}, s.IDs())
	assert.Equal(t, "tg:10", ReviewerID(10))
}

func TestStaffNotifierAnnouncesSubmissionWithButtons(t *testing.T) {
	client := &fakeClient{}
	n := NewStaffNotifier(client, NewStaff(1, 2), 99, quietLogger())

	err := n.Publish(context.Background(), notification.Event{
		Type: notification.EventApplicationSubmitted, ApplicationID: 5, CycleID: 3,
		ApplicationNumber: "APP-20260301100000-0A1B2C3D", UserID: "u-1",
	})
	require.NoError(t, err)
	require.Len(t, client.messages, 2)
	assert.Equal(t, int64(1), client.messages[0].chatID)
	assert.Contains(t, client.messages[0].text, "APP-20260301100000-0A1B2C3D")
	assert.Equal(t, []domainTelegram.Button{
		{Text: "Approve", Data: "rv_ok_5"},
		{Text: "Reject", Data: "rv_no_5"},
	}, client.messages[0].buttons)
}

func TestStaffNotifierKeepsGoingWhenOneChatFails(t *testing.T) {
	down := errors.New("blocked by user")
	client := &fakeClient{failFor: map[int64]error{1: down}}
	n := NewStaffNotifier(client, NewStaff(1, 2), 0, quietLogger())

	err := n.Publish(context.Background(), notification.Event{Type: notification.EventApplicationSubmitted, ApplicationID: 5})
	assert.ErrorIs(t, err, down)
	require.Len(t, client.messages, 1)
	assert.Equal(t, int64(2), client.messages[0].chatID)
}

func TestStaffNotifierReportsDecisionToManager(t *testing.T) {
	client := &fakeClient{}
	n := NewStaffNotifier(client, NewStaff(1), 99, quietLogger())

	require.NoError(t, n.Publish(context.Background(), notification.Event{
		Type: notification.EventApplicationReviewed, ApplicationNumber: "APP-1",
		From: "SUBMITTED", To: "APPROVED", Actor: "tg:1", Note: "great fit",
	}))
	require.Len(t, client.messages, 1)
	assert.Equal(t, int64(99), client.messages[0].chatID)
	assert.Contains(t, client.messages[0].text, "SUBMITTED -> APPROVED")
	assert.Contains(t, client.messages[0].text, "great fit")

	// other events produce nothing
	require.NoError(t, n.Publish(context.Background(), notification.Event{Type: notification.EventCycleCreated}))
	assert.Len(t, client.messages, 1)
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "Not found.", userMessage(fmt.Errorf("get: %w", errs.ErrNotFound)))
	assert.Contains(t, userMessage(fmt.Errorf("%w: x", errs.ErrInvalidTransition)), "not possible")
	assert.Contains(t, userMessage(errors.New("db down")), "try again")
}

func TestFormatters(t *testing.T) {
	end := time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC)
	v := &app.CycleView{
		ID: 3, DisplayName: "Merit 2026", Name: "Merit", AcademicYear: "2026-2027",
		Status: cycle.ExternalOpen, ScholarshipType: "MERIT", RemainingSlots: 2, TotalSlots: 5,
		ApplicationStartDate: end.AddDate(0, -1, 0), ApplicationEndDate: end,
		EligibilityCriteria: []string{"GPA >= 3.5"},
	}
	assert.Equal(t, "#3 Merit 2026 [OPEN] 2/5 slots left, closes 2026-05-31", formatCycleLine(v))
	assert.Contains(t, formatCycleDetails(v), " - GPA >= 3.5")

	a := &application.Application{
		ID: 9, ApplicationNumber: "APP-X", Status: application.StatusSubmitted, UserID: "u-2",
		SubmittedAt: sql.NullTime{Time: end, Valid: true},
	}
	assert.Equal(t, "#9 APP-X SUBMITTED by u-2, submitted 2026-05-31", formatApplicationLine(a))
}
