package telegram

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

func RegisterBotCommands(b *telebot.Bot, staff Staff, baseLogger *logrus.Entry) {
	startHelpLogger := baseLogger.WithField("handler_group", "start_help")

	b.Handle("/start", func(c telebot.Context) error {
		senderID := c.Sender().ID
		logCtx := startHelpLogger.WithField("command", "/start").WithField("sender_id", senderID)
		logCtx.Info("Processing /start command")

		if staff.Allows(senderID) {
			logCtx.Info("User identified as staff")
			return c.Send(fmt.Sprintf("Hello, %s! Submitted applications will show up here. Use /help for the command list.", c.Sender().FirstName))
		}

		logCtx.Info("User is unknown")
		return c.Send("Hello! This bot is for scholarship office staff. Ask an administrator to add your Telegram ID.")
	})

	b.Handle("/help", func(c telebot.Context) error {
		senderID := c.Sender().ID
		logCtx := startHelpLogger.WithField("command", "/help").WithField("sender_id", senderID)
		logCtx.Info("Processing /help command")

		if !staff.Allows(senderID) {
			logCtx.Info("User is unknown, sending restricted help.")
			return c.Send("No commands are available to you.")
		}
		return c.Send(staffHelpText(), &telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
	})
}

func staffHelpText() string {
	var helpText strings.Builder
	helpText.WriteString("Staff commands:\n\n")
	helpText.WriteString("`/cycles [DRAFT|OPEN|CLOSED|SUSPENDED]`\n - List cycles, newest first.\n\n")
	helpText.WriteString("`/cycle <cycleID>`\n - Show one cycle with its slots and criteria.\n\n")
	helpText.WriteString("`/applications <cycleID> [status]`\n - List applications of a cycle.\n\n")
	helpText.WriteString("`/review <applicationID> <APPROVED|REJECTED|UNDER_REVIEW> [notes]`\n - Record a review decision.\n\n")
	helpText.WriteString("`/help`\n - Show this message.")
	return helpText.String()
}
