// Package bot adapts Telegram updates to the conversation engine. All
// dialogue logic lives in internal/conversation; this package only routes
// updates and renders the engine's replies through the Bot API.
package bot

import (
	"context"
	"encoding/json"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/splitchain/splitbot/internal/conversation"
	"github.com/splitchain/splitbot/internal/repository"
)

// Deps carries everything the conversation engine behind the bot needs.
type Deps struct {
	Config   conversation.Config
	Pipeline conversation.Pipeline
	Oracle   conversation.Oracle
	Repo     repository.Repository
	Charts   conversation.ChartRenderer
}

type Bot struct {
	api    *tgbotapi.BotAPI
	engine *conversation.Engine
	log    zerolog.Logger
}

func NewBot(token string, deps Deps, log zerolog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	b := &Bot{
		api: api,
		log: log.With().Str("component", "bot").Logger(),
	}
	b.engine = conversation.NewEngine(
		deps.Config,
		deps.Pipeline,
		deps.Oracle,
		deps.Repo,
		deps.Charts,
		&messenger{api: api},
		log,
	)
	return b, nil
}

// Start runs the bot in long polling mode until the updates channel closes.
// Updates are handled concurrently; the engine serializes per session.
func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	b.log.Info().Str("username", b.api.Self.UserName).Msg("bot started")

	for update := range updates {
		go func(update tgbotapi.Update) {
			if err := b.handleUpdate(ctx, update); err != nil {
				b.log.Error().Err(err).Int("update_id", update.UpdateID).Msg("update failed")
			}
		}(update)
	}
	return nil
}

// HandleWebhook processes a single webhook-delivered update.
func (b *Bot) HandleWebhook(ctx context.Context, body []byte) error {
	var update tgbotapi.Update
	if err := json.Unmarshal(body, &update); err != nil {
		return err
	}
	return b.handleUpdate(ctx, update)
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) error {
	if update.CallbackQuery != nil {
		return b.handleCallback(ctx, update.CallbackQuery)
	}

	message := update.Message
	if message == nil || message.From == nil {
		return nil
	}
	key := conversation.Key{UserID: message.From.ID, ChatID: message.Chat.ID}

	switch {
	case message.IsCommand():
		return b.handleCommand(ctx, key, message)
	case len(message.Photo) > 0:
		// Telegram sends several resolutions; the last one is the largest.
		return b.handleImage(ctx, key, message.Photo[len(message.Photo)-1].FileID)
	case message.Document != nil && isImageDocument(message.Document):
		return b.handleImage(ctx, key, message.Document.FileID)
	default:
		return b.engine.HandleText(ctx, key, message.Text)
	}
}

func (b *Bot) handleCommand(ctx context.Context, key conversation.Key, message *tgbotapi.Message) error {
	switch message.Command() {
	case "start":
		return b.engine.HandleStart(key)
	case "history":
		return b.engine.HandleHistory(ctx, key)
	default:
		return b.engine.HandleText(ctx, key, message.Text)
	}
}

func (b *Bot) handleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) error {
	// Acknowledge first so the client drops its loading indicator even if
	// handling fails.
	if _, err := b.api.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		b.log.Warn().Err(err).Msg("callback ack failed")
	}

	if callback.Message == nil {
		return nil
	}
	key := conversation.Key{UserID: callback.From.ID, ChatID: callback.Message.Chat.ID}
	return b.engine.HandleCallback(ctx, key, callback.Data)
}

func (b *Bot) handleImage(ctx context.Context, key conversation.Key, fileID string) error {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return err
	}
	return b.engine.HandleImage(ctx, key, file.Link(b.api.Token))
}

// Documents are accepted when they claim an image type. PDFs are passed
// through as well so the pipeline can answer with its dedicated message.
func isImageDocument(doc *tgbotapi.Document) bool {
	return strings.HasPrefix(doc.MimeType, "image/") || doc.MimeType == "application/pdf"
}
