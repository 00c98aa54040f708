package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"

	"scholarship_admin/internal/app"
	"scholarship_admin/internal/domain/application"
	"scholarship_admin/internal/domain/errs"
)

// CycleReader is the part of the cycle service the bot reads from.
type CycleReader interface {
	ListCycles(ctx context.Context, f app.CycleListFilter) (*app.Page[*app.CycleView], error)
	GetCycle(ctx context.Context, id int64) (*app.CycleView, error)
}

// ApplicationReviewer is the part of the application service staff act through.
type ApplicationReviewer interface {
	ListApplications(ctx context.Context, f app.ApplicationListFilter) (*app.Page[*application.Application], error)
	ReviewApplication(ctx context.Context, id int64, decision, comments, reviewerID string) (*application.Application, error)
}

const unauthorizedText = "Error: you are not allowed to run this command."

// userMessage turns a service error into a short reply.
func userMessage(err error) string {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return "Not found."
	case errors.Is(err, errs.ErrInvalidTransition):
		return "That decision is not possible from the application's current status."
	case errors.Is(err, errs.ErrInvalidInput), errors.Is(err, errs.ErrMissingRequiredField):
		return "Invalid input: " + err.Error()
	default:
		return "Something went wrong, please try again later."
	}
}

// RegisterStaffHandlers registers the read and review commands for staff.
func RegisterStaffHandlers(
	ctx context.Context,
	b *telebot.Bot,
	cycles CycleReader,
	apps ApplicationReviewer,
	staff Staff,
	baseLogger *logrus.Entry,
) {
	guard := func(command string, next func(c telebot.Context, logCtx *logrus.Entry) error) telebot.HandlerFunc {
		return func(c telebot.Context) error {
			logCtx := baseLogger.WithFields(logrus.Fields{
				"handler":   command,
				"sender_id": c.Sender().ID,
			})
			logCtx.Info("Command received")
			if !staff.Allows(c.Sender().ID) {
				logCtx.Warn("Unauthorized access attempt")
				return c.Send(unauthorizedText)
			}
			return next(c, logCtx)
		}
	}

	b.Handle("/cycles", guard("/cycles", func(c telebot.Context, logCtx *logrus.Entry) error {
		filter := app.CycleListFilter{Limit: 20}
		if args := c.Args(); len(args) > 0 {
			filter.Status = args[0]
		}
		page, err := cycles.ListCycles(ctx, filter)
		if err != nil {
			logCtx.WithError(err).Error("Failed to list cycles")
			return c.Send(userMessage(err))
		}
		if len(page.Items) == 0 {
			return c.Send("No cycles found.")
		}

		var response strings.Builder
		fmt.Fprintf(&response, "Cycles (%d total)\n", page.Total)
		for _, v := range page.Items {
			response.WriteString(formatCycleLine(v))
			response.WriteString("\n")
		}
		return c.Send(response.String())
	}))

	b.Handle("/cycle", guard("/cycle", func(c telebot.Context, logCtx *logrus.Entry) error {
		args := c.Args()
		if len(args) != 1 {
			return c.Send("Usage: /cycle <cycleID>")
		}
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return c.Send("Error: cycle ID must be a number.")
		}
		v, err := cycles.GetCycle(ctx, id)
		if err != nil {
			logCtx.WithError(err).WithField("cycle_id", id).Warn("Failed to get cycle")
			return c.Send(userMessage(err))
		}
		return c.Send(formatCycleDetails(v))
	}))

	b.Handle("/applications", guard("/applications", func(c telebot.Context, logCtx *logrus.Entry) error {
		args := c.Args()
		if len(args) < 1 || len(args) > 2 {
			return c.Send("Usage: /applications <cycleID> [status]")
		}
		cycleID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return c.Send("Error: cycle ID must be a number.")
		}
		filter := app.ApplicationListFilter{CycleID: cycleID, Limit: 50}
		if len(args) == 2 {
			filter.Status = args[1]
		}

		page, err := apps.ListApplications(ctx, filter)
		if err != nil {
			logCtx.WithError(err).Error("Failed to list applications")
			return c.Send(userMessage(err))
		}
		if len(page.Items) == 0 {
			return c.Send("No applications found.")
		}

		var response strings.Builder
		fmt.Fprintf(&response, "Applications for cycle %d (%d total)\n", cycleID, page.Total)
		for _, a := range page.Items {
			response.WriteString(formatApplicationLine(a))
			response.WriteString("\n")
		}
		return c.Send(response.String())
	}))

	b.Handle("/review", guard("/review", func(c telebot.Context, logCtx *logrus.Entry) error {
		id, decision, notes, err := parseReviewArgs(c.Args())
		if err != nil {
			logCtx.WithError(err).Warn("Invalid command format")
			return c.Send(reviewUsage)
		}
		logCtx = logCtx.WithFields(logrus.Fields{"application_id": id, "decision": decision})

		a, err := apps.ReviewApplication(ctx, id, decision, notes, ReviewerID(c.Sender().ID))
		if err != nil {
			logCtx.WithError(err).Warn("Review rejected")
			return c.Send(userMessage(err))
		}
		logCtx.Info("Review recorded")
		return c.Send(fmt.Sprintf("Application %s is now %s.", a.ApplicationNumber, a.Status))
	}))
}

const reviewUsage = "Usage: /review <applicationID> <APPROVED|REJECTED|UNDER_REVIEW> [notes]"

// parseReviewArgs reads "<appID> <decision> [notes...]".
func parseReviewArgs(args []string) (int64, string, string, error) {
	if len(args) < 2 {
		return 0, "", "", fmt.Errorf("expected at least 2 arguments, got %d", len(args))
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, "", "", fmt.Errorf("invalid application id '%s'", args[0])
	}
	return id, strings.ToUpper(args[1]), strings.Join(args[2:], " "), nil
}

// RegisterReviewCallbacks handles the Approve/Reject buttons sent with
// submission notices.
func RegisterReviewCallbacks(ctx context.Context, b *telebot.Bot, apps ApplicationReviewer, staff Staff, baseLogger *logrus.Entry) {
	b.Handle(telebot.OnCallback, func(c telebot.Context) error {
		data := c.Callback().Data
		logCtx := baseLogger.WithFields(logrus.Fields{"handler": "review_callback", "sender_id": c.Sender().ID})

		if !staff.Allows(c.Sender().ID) {
			logCtx.Warn("Unauthorized callback")
			return c.Respond(&telebot.CallbackResponse{Text: unauthorizedText})
		}

		decision, id, err := parseReviewCallback(data)
		if err != nil {
			c.Bot().OnError(err, c)
			return c.Respond(&telebot.CallbackResponse{Text: "Unknown action."})
		}

		a, err := apps.ReviewApplication(ctx, id, decision, "", ReviewerID(c.Sender().ID))
		if err != nil {
			c.Bot().OnError(fmt.Errorf("error processing %s for application %d: %w", decision, id, err), c)
			return c.Respond(&telebot.CallbackResponse{Text: userMessage(err)})
		}
		logCtx.WithFields(logrus.Fields{"application_id": id, "decision": decision}).Info("Review recorded from button")
		return c.Respond(&telebot.CallbackResponse{Text: fmt.Sprintf("%s is now %s.", a.ApplicationNumber, a.Status)})
	})
}
