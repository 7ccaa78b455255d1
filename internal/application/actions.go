package application

import (
	"context"
	"fmt"

	"yakmarket-admin-bot/internal/domain"
	"yakmarket-admin-bot/internal/domain/model"
	"yakmarket-admin-bot/internal/infra/logging"
	"yakmarket-admin-bot/internal/render"
	"yakmarket-admin-bot/internal/usecase"
)

func (c *Console) actionRoutes() map[actionKey]actionHandler {
	return map[actionKey]actionHandler{
		{model.DomainMenu, model.VerbMain}:     c.showMain,
		{model.DomainMenu, model.VerbUsers}:    c.showUsers,
		{model.DomainMenu, model.VerbStats}:    c.showStats,
		{model.DomainMenu, model.VerbProducts}: c.showPending,

		{model.DomainUser, model.VerbList}:    c.showUsers,
		{model.DomainUser, model.VerbBack}:    c.showUsers,
		{model.DomainUser, model.VerbSelect}:  c.selectUser,
		{model.DomainUser, model.VerbBlock}:   c.userMutation("🚫 User blocked", c.users.Block),
		{model.DomainUser, model.VerbUnblock}: c.userMutation("✅ User unblocked", c.users.Unblock),
		{model.DomainUser, model.VerbWarn}:    c.userMutation("⚠️ Warning issued", c.warnFromButton),
		{model.DomainUser, model.VerbUnwarn}:  c.userMutation("✅ Warnings cleared", c.users.Unwarn),
		{model.DomainUser, model.VerbDelete}:  c.deleteUser,

		{model.DomainProduct, model.VerbApprove}: c.moderate("✅ Product published", c.products.Approve),
		{model.DomainProduct, model.VerbReject}:  c.moderate("❌ Product rejected", c.products.Reject),
		{model.DomainProduct, model.VerbReview}:  c.reviewProduct,
	}
}

func requireID(a model.Action) error {
	if a.EntityID.IsZero() {
		return fmt.Errorf("%s_%s without id: %w", a.Domain, a.Verb, domain.ErrInvalidArgument)
	}
	return nil
}

func (c *Console) showMain(ctx context.Context, cb *Callback, _ model.Action) (string, error) {
	text, rows := render.MainMenu()
	_, err := c.present(ctx, cb.ChatID, cb.origin(), text, rows)
	return "", err
}

func (c *Console) showUsers(ctx context.Context, cb *Callback, _ model.Action) (string, error) {
	users, err := c.users.List(ctx)
	if err != nil {
		return "", err
	}
	text, rows := render.UserList(users, c.opts.Render)
	_, err = c.present(ctx, cb.ChatID, cb.origin(), text, rows)
	return "", err
}

func (c *Console) showStats(ctx context.Context, cb *Callback, _ model.Action) (string, error) {
	stats, err := c.users.Stats(ctx)
	if err != nil {
		return "", err
	}
	text, rows := render.Stats(stats, c.now())
	_, err = c.present(ctx, cb.ChatID, cb.origin(), text, rows)
	return "", err
}

func (c *Console) showPending(ctx context.Context, cb *Callback, _ model.Action) (string, error) {
	products, err := c.products.Pending(ctx, c.opts.PendingLimit)
	if err != nil {
		return "", err
	}
	text, rows := render.PendingList(products, c.opts.Render)
	_, err = c.present(ctx, cb.ChatID, cb.origin(), text, rows)
	return "", err
}

func (c *Console) selectUser(ctx context.Context, cb *Callback, a model.Action) (string, error) {
	if err := requireID(a); err != nil {
		return "", err
	}
	u, err := c.users.Get(ctx, a.EntityID)
	if err != nil {
		return "", err
	}
	text, rows := render.UserCard(u)
	ref, err := c.present(ctx, cb.ChatID, cb.origin(), text, rows)
	if err != nil {
		return "", err
	}
	c.rememberUserView(ctx, u.ID, ref)
	return "", nil
}

func (c *Console) warnFromButton(ctx context.Context, operatorID int64, id model.EntityID) (*model.ManagedUser, error) {
	return c.users.Warn(ctx, operatorID, id, "")
}

type userMutator func(ctx context.Context, operatorID int64, id model.EntityID) (*model.ManagedUser, error)

// userMutation re-renders the card from the record the backend returns after
// the change. On failure the card is left as it was.
func (c *Console) userMutation(toast string, mutate userMutator) actionHandler {
	return func(ctx context.Context, cb *Callback, a model.Action) (string, error) {
		if err := requireID(a); err != nil {
			return "", err
		}
		ctx = logging.WithEntityID(ctx, a.EntityID.String())
		u, err := mutate(ctx, cb.OperatorID, a.EntityID)
		if err != nil {
			return "", err
		}
		if u == nil {
			return toast + " (reopen the card to refresh)", nil
		}
		if err := c.showUserCard(ctx, cb.ChatID, c.userTarget(ctx, cb, u.ID), u); err != nil {
			logging.With(ctx, c.log).Warn().Err(err).Msg("user card refresh failed")
		}
		return toast, nil
	}
}

func (c *Console) deleteUser(ctx context.Context, cb *Callback, a model.Action) (string, error) {
	if err := requireID(a); err != nil {
		return "", err
	}
	ctx = logging.WithEntityID(ctx, a.EntityID.String())
	target := c.userTarget(ctx, cb, a.EntityID)
	if err := c.users.Delete(ctx, cb.OperatorID, a.EntityID); err != nil {
		return "", err
	}
	text, rows := render.UserDeleted(a.EntityID)
	if _, err := c.present(ctx, cb.ChatID, target, text, rows); err != nil {
		logging.With(ctx, c.log).Warn().Err(err).Msg("deleted card render failed")
	}
	return "🗑 User deleted", nil
}

// userTarget picks the message to redraw: the carrying message, else the
// card registered for this chat.
func (c *Console) userTarget(ctx context.Context, cb *Callback, id model.EntityID) *model.MessageRef {
	if o := cb.origin(); o != nil {
		return o
	}
	ref, ok, err := c.registry.UserView(ctx, id, cb.ChatID)
	if err != nil {
		logging.With(ctx, c.log).Warn().Err(err).Msg("user view lookup failed")
		return nil
	}
	if !ok {
		return nil
	}
	return &ref
}

func (c *Console) showUserCard(ctx context.Context, chatID int64, target *model.MessageRef, u *model.ManagedUser) error {
	text, rows := render.UserCard(u)
	ref, err := c.present(ctx, chatID, target, text, rows)
	if err != nil {
		return err
	}
	c.rememberUserView(ctx, u.ID, ref)
	return nil
}

func (c *Console) rememberUserView(ctx context.Context, id model.EntityID, ref model.MessageRef) {
	if err := c.registry.SetUserView(ctx, id, ref); err != nil {
		logging.With(ctx, c.log).Warn().Err(err).Msg("user view not recorded")
	}
}

func (c *Console) moderate(toast string, transition func(context.Context, usecase.ModerationRequest) error) actionHandler {
	return func(ctx context.Context, cb *Callback, a model.Action) (string, error) {
		if err := requireID(a); err != nil {
			return "", err
		}
		ctx = logging.WithEntityID(ctx, a.EntityID.String())
		err := transition(ctx, usecase.ModerationRequest{
			OperatorID: cb.OperatorID,
			ChatID:     cb.ChatID,
			ProductID:  a.EntityID,
			Origin:     cb.origin(),
		})
		if err != nil {
			return "", err
		}
		return toast, nil
	}
}

func (c *Console) reviewProduct(ctx context.Context, cb *Callback, a model.Action) (string, error) {
	if err := requireID(a); err != nil {
		return "", err
	}
	if err := c.products.Review(ctx, cb.ChatID, a.EntityID); err != nil {
		return "", err
	}
	return "", nil
}

