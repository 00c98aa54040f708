package telegram

import (
	"gopkg.in/telebot.v3"

	domainTelegram "scholarship_admin/internal/domain/telegram"
)

// TelebotAdapter implements the domain Client interface using the gopkg.in/telebot.v3 library.
type TelebotAdapter struct {
	bot *telebot.Bot
}

var _ domainTelegram.Client = (*TelebotAdapter)(nil)

func NewTelebotAdapter(b *telebot.Bot) *TelebotAdapter {
	return &TelebotAdapter{bot: b}
}

// SendText sends a plain message to a staff member's private chat.
func (tba *TelebotAdapter) SendText(chatID int64, text string) error {
	_, err := tba.bot.Send(&telebot.User{ID: chatID}, text, &telebot.SendOptions{})
	return err
}

// SendWithButtons sends text with one row of inline buttons.
func (tba *TelebotAdapter) SendWithButtons(chatID int64, text string, buttons []domainTelegram.Button) error {
	_, err := tba.bot.Send(&telebot.User{ID: chatID}, text, &telebot.SendOptions{ReplyMarkup: inlineRow(buttons)})
	return err
}

func inlineRow(buttons []domainTelegram.Button) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{ResizeKeyboard: true}
	row := make([]telebot.Btn, 0, len(buttons))
	for _, b := range buttons {
		row = append(row, markup.Data(b.Text, b.Data))
	}
	markup.Inline(markup.Row(row...))
	return markup
}
