package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/splitchain/splitbot/internal/conversation"
)

// messenger renders engine replies through the Bot API.
type messenger struct {
	api *tgbotapi.BotAPI
}

var _ conversation.Messenger = (*messenger)(nil)

func (m *messenger) SendText(key conversation.Key, text string) error {
	_, err := m.api.Send(tgbotapi.NewMessage(key.ChatID, text))
	return err
}

func (m *messenger) SendButtons(key conversation.Key, text string, buttons []conversation.Button) error {
	row := make([]tgbotapi.InlineKeyboardButton, 0, len(buttons))
	for _, button := range buttons {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(button.Label, button.Data))
	}

	msg := tgbotapi.NewMessage(key.ChatID, text)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(row...))
	_, err := m.api.Send(msg)
	return err
}

func (m *messenger) SendShareButton(key conversation.Key, text, label, shareURL string) error {
	msg := tgbotapi.NewMessage(key.ChatID, text)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL(label, shareURL),
		),
	)
	_, err := m.api.Send(msg)
	return err
}

func (m *messenger) SendPhoto(key conversation.Key, caption string, image []byte) error {
	photo := tgbotapi.NewPhoto(key.ChatID, tgbotapi.FileBytes{Name: "items.png", Bytes: image})
	photo.Caption = caption
	_, err := m.api.Send(photo)
	return err
}
