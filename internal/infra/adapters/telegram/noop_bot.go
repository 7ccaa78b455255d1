package telegram

import (
	"context"
	"sync/atomic"

	"github.com/rs/zerolog"

	"yakmarket-admin-bot/internal/domain/model"
	"yakmarket-admin-bot/internal/domain/ports/adapter"
)

var _ adapter.TelegramBotAdapter = (*NoopBotAdapter)(nil)

// NoopBotAdapter logs outgoing traffic instead of calling Telegram. Used in
// dev mode so webhooks and fan-out can be exercised without a bot token.
type NoopBotAdapter struct {
	nextID atomic.Int64
	log    *zerolog.Logger
}

func NewNoopBotAdapter(logger *zerolog.Logger) *NoopBotAdapter {
	l := logger.With().Str("component", "noop-telegram").Logger()
	return &NoopBotAdapter{log: &l}
}

func (b *NoopBotAdapter) SendMessage(ctx context.Context, p adapter.SendMessageParams) (model.MessageRef, error) {
	if err := ctx.Err(); err != nil {
		return model.MessageRef{}, err
	}
	id := int(b.nextID.Add(1))
	b.log.Info().
		Int64("chat_id", p.ChatID).
		Int("message_id", id).
		Str("photo", p.PhotoURL).
		Int("rows", len(p.Rows)).
		Str("text", p.Text).
		Msg("send")
	return model.MessageRef{ChatID: p.ChatID, MessageID: id, HasPhoto: p.PhotoURL != ""}, nil
}

func (b *NoopBotAdapter) EditMessage(ctx context.Context, p adapter.EditMessageParams) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.log.Info().
		Int64("chat_id", p.ChatID).
		Int("message_id", p.MessageID).
		Bool("caption", p.Caption).
		Int("rows", len(p.Rows)).
		Str("text", p.Text).
		Msg("edit")
	return nil
}

func (b *NoopBotAdapter) AnswerCallback(_ context.Context, p adapter.AnswerCallbackParams) error {
	b.log.Info().Str("callback_id", p.CallbackID).Str("text", p.Text).Msg("answer")
	return nil
}
