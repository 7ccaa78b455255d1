package telegram

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"yakmarket-admin-bot/internal/application"
	"yakmarket-admin-bot/internal/config"
	"yakmarket-admin-bot/internal/domain"
	"yakmarket-admin-bot/internal/domain/model"
	"yakmarket-admin-bot/internal/domain/ports/adapter"
	"yakmarket-admin-bot/internal/infra/logging"
)

var _ adapter.TelegramBotAdapter = (*RealTelegramBotAdapter)(nil)

// UpdateHandler receives decoded operator input. Implemented by
// application.Console.
type UpdateHandler interface {
	HandleMessage(ctx context.Context, m *application.Message) error
	HandleCallback(ctx context.Context, cb *application.Callback) error
}

// RealTelegramBotAdapter uses tgbotapi to poll updates and delegates them to
// the console.
type RealTelegramBotAdapter struct {
	bot           *tgbotapi.BotAPI
	handler       UpdateHandler
	updateWorkers int
	log           *zerolog.Logger

	mu            sync.Mutex
	cancelPolling context.CancelFunc
}

func NewRealTelegramBotAdapter(cfg *config.BotConfig, logger *zerolog.Logger) (*RealTelegramBotAdapter, error) {
	if cfg == nil {
		return nil, errors.New("bot config is nil")
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 5
	}
	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("telegram login: %w", err)
	}
	l := logger.With().Str("component", "telegram").Str("bot", bot.Self.UserName).Logger()
	return &RealTelegramBotAdapter{
		bot:           bot,
		updateWorkers: workers,
		log:           &l,
	}, nil
}

// SetHandler must be called before StartPolling.
func (r *RealTelegramBotAdapter) SetHandler(h UpdateHandler) { r.handler = h }

func (r *RealTelegramBotAdapter) SendMessage(ctx context.Context, p adapter.SendMessageParams) (model.MessageRef, error) {
	if err := ctx.Err(); err != nil {
		return model.MessageRef{}, err
	}
	var c tgbotapi.Chattable
	if p.PhotoURL != "" {
		photo := tgbotapi.NewPhoto(p.ChatID, tgbotapi.FileURL(p.PhotoURL))
		photo.Caption = p.Text
		photo.ParseMode = p.ParseMode
		if kb := inlineKeyboard(p.Rows); kb != nil {
			photo.ReplyMarkup = kb
		}
		c = photo
	} else {
		msg := tgbotapi.NewMessage(p.ChatID, p.Text)
		msg.ParseMode = p.ParseMode
		msg.DisableWebPagePreview = true
		if kb := inlineKeyboard(p.Rows); kb != nil {
			msg.ReplyMarkup = kb
		}
		c = msg
	}
	sent, err := r.bot.Send(c)
	if err != nil {
		return model.MessageRef{}, fmt.Errorf("send to %d: %w: %v", p.ChatID, domain.ErrDeliveryFailed, err)
	}
	chatID := p.ChatID
	if sent.Chat != nil {
		chatID = sent.Chat.ID
	}
	return model.MessageRef{
		ChatID:    chatID,
		MessageID: sent.MessageID,
		HasPhoto:  len(sent.Photo) > 0,
	}, nil
}

func (r *RealTelegramBotAdapter) EditMessage(ctx context.Context, p adapter.EditMessageParams) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	kb := inlineKeyboard(p.Rows)
	var c tgbotapi.Chattable
	if p.Caption {
		edit := tgbotapi.NewEditMessageCaption(p.ChatID, p.MessageID, p.Text)
		edit.ParseMode = p.ParseMode
		edit.ReplyMarkup = kb
		c = edit
	} else {
		edit := tgbotapi.NewEditMessageText(p.ChatID, p.MessageID, p.Text)
		edit.ParseMode = p.ParseMode
		edit.DisableWebPagePreview = true
		edit.ReplyMarkup = kb
		c = edit
	}
	if _, err := r.bot.Request(c); err != nil && !isNotModified(err) {
		return fmt.Errorf("edit %d/%d: %w", p.ChatID, p.MessageID, err)
	}
	return nil
}

func (r *RealTelegramBotAdapter) AnswerCallback(ctx context.Context, p adapter.AnswerCallbackParams) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cb := tgbotapi.NewCallback(p.CallbackID, p.Text)
	cb.ShowAlert = p.ShowAlert
	_, err := r.bot.Request(cb)
	return err
}

// SetMenuCommands publishes the command list to each operator chat only.
func (r *RealTelegramBotAdapter) SetMenuCommands(ctx context.Context, operatorIDs []int64) error {
	cmds := []tgbotapi.BotCommand{
		{Command: "start", Description: "Admin panel"},
		{Command: "users", Description: "Newest users"},
		{Command: "stats", Description: "User statistics"},
		{Command: "pending", Description: "Products awaiting review"},
		{Command: "audit", Description: "Moderation history of an entity"},
		{Command: "help", Description: "All commands"},
	}
	for _, id := range operatorIDs {
		if err := ctx.Err(); err != nil {
			return err
		}
		cfg := tgbotapi.NewSetMyCommandsWithScope(tgbotapi.NewBotCommandScopeChat(id), cmds...)
		if _, err := r.bot.Request(cfg); err != nil {
			r.log.Warn().Err(err).Int64("tg_id", id).Msg("set menu commands failed")
		}
	}
	return nil
}

func (r *RealTelegramBotAdapter) StartPolling(ctx context.Context) error {
	if r.handler == nil {
		return errors.New("telegram: no update handler")
	}
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := r.bot.GetUpdatesChan(u)

	ctx, cancel := context.WithCancel(ctx)
	r.mu.Lock()
	r.cancelPolling = cancel
	r.mu.Unlock()

	var wg sync.WaitGroup
	updateChan := make(chan tgbotapi.Update, 100)

	for i := 0; i < r.updateWorkers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for up := range updateChan {
				r.dispatch(ctx, id, up)
			}
		}(i)
	}
	r.log.Info().Int("workers", r.updateWorkers).Msg("polling started")

	defer func() {
		r.bot.StopReceivingUpdates()
		close(updateChan)
		wg.Wait()
		r.log.Info().Msg("polling stopped")
	}()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case up, ok := <-updates:
			if !ok {
				return nil
			}
			select {
			case updateChan <- up:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

func (r *RealTelegramBotAdapter) StopPolling() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancelPolling != nil {
		r.cancelPolling()
	}
}

// dispatch handles one update; a panic is logged and does not kill the worker.
func (r *RealTelegramBotAdapter) dispatch(ctx context.Context, worker int, up tgbotapi.Update) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error().
				Interface("panic", rec).
				Int("worker", worker).
				Int("update_id", up.UpdateID).
				Bytes("stack", debug.Stack()).
				Msg("update handler panicked")
		}
	}()
	ctx = logging.WithTraceID(ctx, fmt.Sprintf("tg-%d", up.UpdateID))

	var err error
	if cb := callbackFromUpdate(up); cb != nil {
		err = r.handler.HandleCallback(ctx, cb)
	} else if m := messageFromUpdate(up); m != nil {
		err = r.handler.HandleMessage(ctx, m)
	}
	if err != nil {
		logging.With(ctx, r.log).Warn().Err(err).Int("worker", worker).Msg("update failed")
	}
}

func messageFromUpdate(up tgbotapi.Update) *application.Message {
	msg := up.Message
	if msg == nil || msg.From == nil || msg.Text == "" {
		return nil
	}
	m := &application.Message{OperatorID: msg.From.ID, Text: msg.Text}
	if msg.Chat != nil {
		m.ChatID = msg.Chat.ID
	}
	return m
}

func callbackFromUpdate(up tgbotapi.Update) *application.Callback {
	q := up.CallbackQuery
	if q == nil || q.From == nil {
		return nil
	}
	cb := &application.Callback{ID: q.ID, OperatorID: q.From.ID, Data: q.Data}
	if q.Message != nil {
		cb.MessageID = q.Message.MessageID
		if q.Message.Chat != nil {
			cb.ChatID = q.Message.Chat.ID
		}
		if len(q.Message.Photo) > 0 {
			cb.HasPhoto = true
			cb.MessageText = q.Message.Caption
		} else {
			cb.MessageText = q.Message.Text
		}
	}
	return cb
}
