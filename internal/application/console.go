package application

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"yakmarket-admin-bot/internal/domain"
	"yakmarket-admin-bot/internal/domain/model"
	"yakmarket-admin-bot/internal/domain/ports/adapter"
	"yakmarket-admin-bot/internal/domain/ports/repository"
	"yakmarket-admin-bot/internal/infra/logging"
	"yakmarket-admin-bot/internal/infra/metrics"
	"yakmarket-admin-bot/internal/render"
	"yakmarket-admin-bot/internal/usecase"
)

const (
	ToastAccessDenied = "⛔ Access denied"
	ToastRateLimited  = "⏳ Too many actions, slow down"
	ToastInvalid      = "❌ Invalid action"
	ToastUnknown      = "❓ Unknown action"
	ToastBackend      = "❌ Backend unavailable, try again"
	ToastNotFound     = "❌ Not found or already processed"
	ToastFailed       = "❌ Something went wrong"
)

// Message is an inbound text message from a chat.
type Message struct {
	OperatorID int64
	ChatID     int64
	Text       string
}

// Callback is an inline-button press. MessageID is zero when the carrying
// message is no longer accessible.
type Callback struct {
	ID          string
	OperatorID  int64
	ChatID      int64
	Data        string
	MessageID   int
	HasPhoto    bool
	MessageText string
}

// origin returns the carrying message with its plain text escaped back into
// an HTML body.
func (cb *Callback) origin() *model.MessageRef {
	if cb.ChatID == 0 || cb.MessageID == 0 {
		return nil
	}
	return &model.MessageRef{
		ChatID:    cb.ChatID,
		MessageID: cb.MessageID,
		HasPhoto:  cb.HasPhoto,
		Body:      render.Notice(cb.MessageText),
	}
}

// Limiter throttles operator actions. Implemented by the redis rate limiter.
type Limiter interface {
	Allow(ctx context.Context, operatorID int64, scope string) (bool, error)
}

type ConsoleOptions struct {
	Render       render.Options
	PendingLimit int
	// History backs /audit. Nil when no database is configured.
	History repository.AuditHistory
}

type actionKey struct {
	domain string
	verb   string
}

// actionHandler returns the toast shown to the operator on success.
type actionHandler func(ctx context.Context, cb *Callback, a model.Action) (string, error)

// Console turns operator input into use case calls and renders the results.
type Console struct {
	gate     *Gate
	users    usecase.UserUseCase
	products usecase.ProductUseCase
	bot      adapter.TelegramBotAdapter
	registry repository.MessageRegistry
	limiter  Limiter
	opts     ConsoleOptions
	routes   map[actionKey]actionHandler
	cmds     map[string]commandHandler
	now      func() time.Time
	log      *zerolog.Logger
}

func NewConsole(
	gate *Gate,
	users usecase.UserUseCase,
	products usecase.ProductUseCase,
	bot adapter.TelegramBotAdapter,
	registry repository.MessageRegistry,
	limiter Limiter,
	opts ConsoleOptions,
	logger *zerolog.Logger,
) *Console {
	if opts.PendingLimit <= 0 {
		opts.PendingLimit = 10
	}
	l := logger.With().Str("component", "console").Logger()
	c := &Console{
		gate:     gate,
		users:    users,
		products: products,
		bot:      bot,
		registry: registry,
		limiter:  limiter,
		opts:     opts,
		now:      time.Now,
		log:      &l,
	}
	c.routes = c.actionRoutes()
	c.cmds = c.commands()
	return c
}

func (c *Console) allow(ctx context.Context, operatorID int64, scope string) bool {
	if c.limiter == nil {
		return true
	}
	ok, err := c.limiter.Allow(ctx, operatorID, scope)
	if err != nil {
		c.log.Warn().Err(err).Msg("rate limiter unavailable, allowing")
		return true
	}
	return ok
}

// HandleCallback authorizes, decodes and dispatches one button press. It
// always answers the callback exactly once.
func (c *Console) HandleCallback(ctx context.Context, cb *Callback) error {
	ctx = logging.WithTgID(ctx, cb.OperatorID)
	log := logging.With(ctx, c.log)

	if !c.gate.Allowed(cb.OperatorID) {
		metrics.IncAccessDenied("callback")
		log.Warn().Str("data", cb.Data).Msg("callback from non-operator denied")
		return c.answer(ctx, cb, ToastAccessDenied, false)
	}
	if !c.allow(ctx, cb.OperatorID, "callback") {
		metrics.IncCallbackRateLimited()
		return c.answer(ctx, cb, ToastRateLimited, false)
	}

	if cb.ChatID == 0 {
		cb.ChatID = cb.OperatorID
	}
	a, err := model.ParseAction(cb.Data)
	if err != nil {
		log.Warn().Err(err).Msg("undecodable callback")
		return c.answer(ctx, cb, ToastInvalid, false)
	}
	h, ok := c.routes[actionKey{a.Domain, a.Verb}]
	if !ok {
		log.Warn().Str("data", cb.Data).Msg("no route for callback")
		return c.answer(ctx, cb, ToastUnknown, false)
	}

	toast, err := h(ctx, cb, a)
	if err != nil {
		log.Warn().Err(err).Str("data", cb.Data).Msg("action failed")
		return c.answer(ctx, cb, failureToast(err), true)
	}
	return c.answer(ctx, cb, toast, false)
}

func (c *Console) answer(ctx context.Context, cb *Callback, text string, alert bool) error {
	return c.bot.AnswerCallback(ctx, adapter.AnswerCallbackParams{CallbackID: cb.ID, Text: text, ShowAlert: alert})
}

func failureToast(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		return ToastInvalid
	case errors.Is(err, domain.ErrUnknownAction):
		return ToastUnknown
	case errors.Is(err, domain.ErrNotFound):
		return ToastNotFound
	case errors.Is(err, domain.ErrBackendUnavailable):
		return ToastBackend
	default:
		return ToastFailed
	}
}

// present replaces the origin message with text and rows, or sends a new
// message when there is no origin or the edit fails.
func (c *Console) present(ctx context.Context, chatID int64, origin *model.MessageRef, text string, rows [][]adapter.InlineButton) (model.MessageRef, error) {
	if origin != nil && !origin.IsZero() {
		err := c.bot.EditMessage(ctx, adapter.EditMessageParams{
			ChatID:    origin.ChatID,
			MessageID: origin.MessageID,
			Text:      text,
			ParseMode: adapter.ParseModeHTML,
			Caption:   origin.HasPhoto,
			Rows:      rows,
		})
		metrics.IncTelegramEdit(err == nil)
		if err == nil {
			ref := *origin
			ref.Body = text
			return ref, nil
		}
		logging.With(ctx, c.log).Warn().Err(err).Int("message_id", origin.MessageID).Msg("edit failed, sending fresh message")
	}
	ref, err := c.bot.SendMessage(ctx, adapter.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: adapter.ParseModeHTML,
		Rows:      rows,
	})
	if err != nil {
		return model.MessageRef{}, err
	}
	ref.Body = text
	return ref, nil
}

func (c *Console) reply(ctx context.Context, chatID int64, text string, rows [][]adapter.InlineButton) error {
	_, err := c.bot.SendMessage(ctx, adapter.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: adapter.ParseModeHTML,
		Rows:      rows,
	})
	return err
}
