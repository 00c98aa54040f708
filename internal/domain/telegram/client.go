package telegram

// Button is one inline keyboard button; Data comes back in the callback.
type Button struct {
	Text string
	Data string
}

// Client defines an interface for sending messages via a Telegram bot.
// This keeps application logic free of the bot library's types.
type Client interface {
	SendText(chatID int64, text string) error
	SendWithButtons(chatID int64, text string, buttons []Button) error
}
