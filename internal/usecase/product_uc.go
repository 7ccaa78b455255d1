package usecase

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"yakmarket-admin-bot/internal/domain"
	"yakmarket-admin-bot/internal/domain/model"
	"yakmarket-admin-bot/internal/domain/ports/adapter"
	"yakmarket-admin-bot/internal/domain/ports/repository"
	"yakmarket-admin-bot/internal/infra/logging"
	"yakmarket-admin-bot/internal/infra/metrics"
	"yakmarket-admin-bot/internal/render"
)

// ModerationRequest identifies who acted and, when the action came from a
// button, the message that carried it. Origin.Body must already be HTML.
type ModerationRequest struct {
	OperatorID int64
	ChatID     int64
	ProductID  model.EntityID
	Origin     *model.MessageRef
}

type ProductUseCase interface {
	Approve(ctx context.Context, req ModerationRequest) error
	Reject(ctx context.Context, req ModerationRequest) error
	// Review sends the moderation card of one product to chatID.
	Review(ctx context.Context, chatID int64, id model.EntityID) error
	Pending(ctx context.Context, limit int) ([]*model.Product, error)
}

type productUC struct {
	backend  adapter.BackendGateway
	bot      adapter.TelegramBotAdapter
	registry repository.MessageRegistry
	audit    auditor
	opts     render.Options
	log      *zerolog.Logger
}

func NewProductUseCase(
	backend adapter.BackendGateway,
	bot adapter.TelegramBotAdapter,
	registry repository.MessageRegistry,
	audit repository.AuditLog,
	opts render.Options,
	logger *zerolog.Logger,
) ProductUseCase {
	l := logger.With().Str("component", "product_uc").Logger()
	return &productUC{
		backend:  backend,
		bot:      bot,
		registry: registry,
		audit:    newAuditor(audit, &l),
		opts:     opts,
		log:      &l,
	}
}

func (uc *productUC) Approve(ctx context.Context, req ModerationRequest) error {
	return uc.transition(ctx, req, model.Published, model.VerbApprove, uc.backend.PublishProduct)
}

// Reject deletes the product at the backend. A second reject fails there and
// leaves every message untouched.
func (uc *productUC) Reject(ctx context.Context, req ModerationRequest) error {
	return uc.transition(ctx, req, model.Rejected, model.VerbReject, uc.backend.DeleteProduct)
}

func (uc *productUC) transition(
	ctx context.Context,
	req ModerationRequest,
	to model.ModerationState,
	verb string,
	call func(context.Context, model.EntityID) error,
) error {
	if req.ProductID.IsZero() {
		return domain.ErrInvalidArgument
	}
	ctx = logging.WithEntityID(logging.WithTgID(ctx, req.OperatorID), req.ProductID.String())
	log := logging.With(ctx, uc.log)
	defer logging.TraceDuration(log, "ProductUC."+verb)()

	err := call(ctx, req.ProductID)
	uc.audit.record(ctx, req.OperatorID, model.DomainProduct, verb, req.ProductID, "", err)
	if err != nil {
		log.Warn().Err(err).Str("verb", verb).Msg("product transition rejected by backend")
		return fmt.Errorf("%s product %s: %w", verb, req.ProductID, err)
	}

	targets, err := uc.registry.ProductMessages(ctx, req.ProductID)
	if err != nil {
		log.Error().Err(err).Msg("registry read failed, editing origin only")
		targets = nil
	}
	if req.Origin != nil && !req.Origin.IsZero() && !containsRef(targets, *req.Origin) {
		targets = append(targets, *req.Origin)
	}

	marker := render.MarkerFor(to)
	if len(targets) == 0 {
		// Nothing left to edit; tell the operator in a new message instead.
		chatID := req.ChatID
		if chatID == 0 {
			chatID = req.OperatorID
		}
		if _, err := uc.bot.SendMessage(ctx, adapter.SendMessageParams{
			ChatID:    chatID,
			Text:      render.ProductStatus(req.ProductID, to),
			ParseMode: adapter.ParseModeHTML,
		}); err != nil {
			log.Error().Err(err).Msg("failed to send product status")
		}
		return nil
	}

	for _, ref := range targets {
		err := uc.bot.EditMessage(ctx, adapter.EditMessageParams{
			ChatID:    ref.ChatID,
			MessageID: ref.MessageID,
			Text:      render.WithMarker(ref.Body, marker),
			ParseMode: adapter.ParseModeHTML,
			Caption:   ref.HasPhoto,
		})
		metrics.IncTelegramEdit(err == nil)
		if err != nil {
			// The backend change is committed; a failed cosmetic edit is not rolled back.
			log.Warn().Err(err).Int64("chat_id", ref.ChatID).Int("message_id", ref.MessageID).Msg("failed to edit product message")
		}
	}
	if to == model.Rejected {
		// The product no longer exists; its refs can never be edited again.
		if err := uc.registry.RemoveProduct(ctx, req.ProductID); err != nil {
			log.Warn().Err(err).Msg("failed to forget rejected product messages")
		}
	}
	log.Info().Str("verb", verb).Int("messages", len(targets)).Msg("product moderated")
	return nil
}

func containsRef(refs []model.MessageRef, ref model.MessageRef) bool {
	for _, r := range refs {
		if r.ChatID == ref.ChatID && r.MessageID == ref.MessageID {
			return true
		}
	}
	return false
}

func (uc *productUC) Review(ctx context.Context, chatID int64, id model.EntityID) error {
	if id.IsZero() {
		return domain.ErrInvalidArgument
	}
	p, err := uc.backend.GetProduct(ctx, id)
	if err != nil {
		return fmt.Errorf("review product %s: %w", id, err)
	}

	card := render.ProductCard(p, uc.opts)
	body, rows := card, render.ProductKeyboard(p.ID)
	if p.State.Terminal() {
		body = render.WithMarker(card, render.MarkerFor(p.State))
		rows = nil
	}
	params := adapter.SendMessageParams{ChatID: chatID, Text: body, ParseMode: adapter.ParseModeHTML, Rows: rows}
	if p.HasImage() {
		params.PhotoURL = p.ImageURL
	}
	ref, err := uc.bot.SendMessage(ctx, params)
	if err != nil && p.HasImage() {
		params.PhotoURL = ""
		ref, err = uc.bot.SendMessage(ctx, params)
	}
	if err != nil {
		return fmt.Errorf("send review card: %w", err)
	}
	if rows == nil {
		return nil
	}
	ref.Body = card
	if err := uc.registry.AppendProductMessage(ctx, p.ID, ref); err != nil {
		uc.log.Error().Err(err).Str("product_id", p.ID.String()).Msg("failed to record review message")
	}
	return nil
}

func (uc *productUC) Pending(ctx context.Context, limit int) ([]*model.Product, error) {
	if limit <= 0 {
		limit = 10
	}
	products, err := uc.backend.ListPendingProducts(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending products: %w", err)
	}
	return products, nil
}
