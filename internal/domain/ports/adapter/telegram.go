// File: internal/domain/ports/adapter/telegram.go
package adapter

import (
	"context"

	"yakmarket-admin-bot/internal/domain/model"
)

type InlineButton struct {
	Text string
	Data string
	URL  string
}

const ParseModeHTML = "HTML"

type SendMessageParams struct {
	ChatID    int64
	Text      string
	ParseMode string
	// PhotoURL turns the message into a photo with Text as caption.
	PhotoURL string
	Rows     [][]InlineButton
}

type EditMessageParams struct {
	ChatID    int64
	MessageID int
	Text      string
	ParseMode string
	// Caption edits a photo caption instead of a text body.
	Caption bool
	// Nil rows remove the inline keyboard.
	Rows [][]InlineButton
}

type AnswerCallbackParams struct {
	CallbackID string
	Text       string
	ShowAlert  bool
}

// TelegramBotAdapter is the chat transport used by the console. SendMessage
// returns the location of the delivered message so it can be edited later.
type TelegramBotAdapter interface {
	SendMessage(ctx context.Context, p SendMessageParams) (model.MessageRef, error)
	EditMessage(ctx context.Context, p EditMessageParams) error
	AnswerCallback(ctx context.Context, p AnswerCallbackParams) error
}
