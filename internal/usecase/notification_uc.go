package usecase

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"yakmarket-admin-bot/internal/domain"
	"yakmarket-admin-bot/internal/domain/model"
	"yakmarket-admin-bot/internal/domain/ports/adapter"
	"yakmarket-admin-bot/internal/domain/ports/repository"
	"yakmarket-admin-bot/internal/infra/metrics"
	"yakmarket-admin-bot/internal/render"
)

type NotificationUseCase interface {
	// NotifyNewProduct delivers the moderation card to every operator and
	// returns how many deliveries succeeded.
	NotifyNewProduct(ctx context.Context, p *model.Product) (int, error)
}

type notificationUC struct {
	bot         adapter.TelegramBotAdapter
	registry    repository.MessageRegistry
	operators   []int64
	opts        render.Options
	concurrency int
	log         *zerolog.Logger
}

func NewNotificationUseCase(
	bot adapter.TelegramBotAdapter,
	registry repository.MessageRegistry,
	operators []int64,
	opts render.Options,
	concurrency int,
	logger *zerolog.Logger,
) NotificationUseCase {
	if concurrency <= 0 {
		concurrency = 4
	}
	l := logger.With().Str("component", "notification_uc").Logger()
	return &notificationUC{
		bot:         bot,
		registry:    registry,
		operators:   append([]int64(nil), operators...),
		opts:        opts,
		concurrency: concurrency,
		log:         &l,
	}
}

func (uc *notificationUC) NotifyNewProduct(ctx context.Context, p *model.Product) (int, error) {
	if p == nil || p.ID.IsZero() {
		return 0, domain.ErrInvalidArgument
	}
	body := render.ProductCard(p, uc.opts)
	rows := render.ProductKeyboard(p.ID)

	var delivered int32
	g := new(errgroup.Group)
	g.SetLimit(uc.concurrency)
	for _, op := range uc.operators {
		op := op
		g.Go(func() error {
			if uc.deliver(ctx, op, p, body, rows) {
				atomic.AddInt32(&delivered, 1)
			}
			return nil
		})
	}
	_ = g.Wait()

	n := int(delivered)
	uc.log.Info().Str("product_id", p.ID.String()).Int("delivered", n).Int("operators", len(uc.operators)).Msg("product notification fanned out")
	if n == 0 && len(uc.operators) > 0 {
		return 0, fmt.Errorf("product %s: %w", p.ID, domain.ErrDeliveryFailed)
	}
	return n, nil
}

// deliver sends one card. A failed photo send is retried as text so an
// unreachable image does not suppress the alert.
func (uc *notificationUC) deliver(ctx context.Context, chatID int64, p *model.Product, body string, rows [][]adapter.InlineButton) bool {
	params := adapter.SendMessageParams{
		ChatID:    chatID,
		Text:      body,
		ParseMode: adapter.ParseModeHTML,
		Rows:      rows,
	}
	if p.HasImage() {
		params.PhotoURL = p.ImageURL
	}
	ref, err := uc.bot.SendMessage(ctx, params)
	if err != nil && p.HasImage() {
		uc.log.Warn().Err(err).Int64("tg_id", chatID).Str("product_id", p.ID.String()).Msg("photo delivery failed, retrying as text")
		params.PhotoURL = ""
		ref, err = uc.bot.SendMessage(ctx, params)
	}
	metrics.IncFanoutDelivery(err == nil)
	if err != nil {
		uc.log.Error().Err(err).Int64("tg_id", chatID).Str("product_id", p.ID.String()).Msg("failed to deliver product notification")
		return false
	}

	ref.Body = body
	if err := uc.registry.AppendProductMessage(ctx, p.ID, ref); err != nil {
		uc.log.Error().Err(err).Int64("tg_id", chatID).Str("product_id", p.ID.String()).Msg("failed to record notification message")
	}
	return true
}
