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
)

// UserUseCase wraps user moderation. Mutations return the record as the
// backend holds it afterwards, so callers render truth rather than patching
// what was on screen. A nil user with a nil error means the mutation
// succeeded but the refetch did not.
type UserUseCase interface {
	List(ctx context.Context) ([]*model.ManagedUser, error)
	Get(ctx context.Context, id model.EntityID) (*model.ManagedUser, error)
	Block(ctx context.Context, operatorID int64, id model.EntityID) (*model.ManagedUser, error)
	Unblock(ctx context.Context, operatorID int64, id model.EntityID) (*model.ManagedUser, error)
	Warn(ctx context.Context, operatorID int64, id model.EntityID, reason string) (*model.ManagedUser, error)
	Unwarn(ctx context.Context, operatorID int64, id model.EntityID) (*model.ManagedUser, error)
	Delete(ctx context.Context, operatorID int64, id model.EntityID) error
	Stats(ctx context.Context) (model.UserStats, error)
}

type userUC struct {
	backend     adapter.BackendGateway
	registry    repository.MessageRegistry
	audit       auditor
	pageLimit   int
	statsSample int
	log         *zerolog.Logger
}

func NewUserUseCase(
	backend adapter.BackendGateway,
	registry repository.MessageRegistry,
	audit repository.AuditLog,
	pageLimit, statsSample int,
	logger *zerolog.Logger,
) UserUseCase {
	if pageLimit <= 0 {
		pageLimit = 20
	}
	if statsSample <= 0 {
		statsSample = 100
	}
	l := logger.With().Str("component", "user_uc").Logger()
	return &userUC{
		backend:     backend,
		registry:    registry,
		audit:       newAuditor(audit, &l),
		pageLimit:   pageLimit,
		statsSample: statsSample,
		log:         &l,
	}
}

func (uc *userUC) List(ctx context.Context) ([]*model.ManagedUser, error) {
	users, err := uc.backend.ListUsers(ctx, uc.pageLimit, true)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (uc *userUC) Get(ctx context.Context, id model.EntityID) (*model.ManagedUser, error) {
	if id.IsZero() {
		return nil, domain.ErrInvalidArgument
	}
	u, err := uc.backend.GetUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}
	return u, nil
}

func (uc *userUC) Block(ctx context.Context, operatorID int64, id model.EntityID) (*model.ManagedUser, error) {
	return uc.mutate(ctx, operatorID, id, model.VerbBlock, "", func(ctx context.Context) error {
		return uc.backend.SetUserBlocked(ctx, id, true)
	})
}

func (uc *userUC) Unblock(ctx context.Context, operatorID int64, id model.EntityID) (*model.ManagedUser, error) {
	return uc.mutate(ctx, operatorID, id, model.VerbUnblock, "", func(ctx context.Context) error {
		return uc.backend.SetUserBlocked(ctx, id, false)
	})
}

func (uc *userUC) Warn(ctx context.Context, operatorID int64, id model.EntityID, reason string) (*model.ManagedUser, error) {
	return uc.mutate(ctx, operatorID, id, model.VerbWarn, reason, func(ctx context.Context) error {
		_, err := uc.backend.IncrementWarning(ctx, id)
		return err
	})
}

func (uc *userUC) Unwarn(ctx context.Context, operatorID int64, id model.EntityID) (*model.ManagedUser, error) {
	return uc.mutate(ctx, operatorID, id, model.VerbUnwarn, "", func(ctx context.Context) error {
		return uc.backend.ResetWarnings(ctx, id)
	})
}

func (uc *userUC) Delete(ctx context.Context, operatorID int64, id model.EntityID) error {
	if id.IsZero() {
		return domain.ErrInvalidArgument
	}
	ctx = logging.WithEntityID(logging.WithTgID(ctx, operatorID), id.String())
	err := uc.backend.DeleteUser(ctx, id)
	uc.audit.record(ctx, operatorID, model.DomainUser, model.VerbDelete, id, "", err)
	if err != nil {
		return fmt.Errorf("delete user %s: %w", id, err)
	}
	if err := uc.registry.RemoveUserView(ctx, id); err != nil {
		logging.With(ctx, uc.log).Warn().Err(err).Msg("failed to drop user views")
	}
	logging.With(ctx, uc.log).Info().Msg("user deleted")
	return nil
}

func (uc *userUC) mutate(ctx context.Context, operatorID int64, id model.EntityID, verb, detail string, call func(context.Context) error) (*model.ManagedUser, error) {
	if id.IsZero() {
		return nil, domain.ErrInvalidArgument
	}
	ctx = logging.WithEntityID(logging.WithTgID(ctx, operatorID), id.String())
	log := logging.With(ctx, uc.log)

	err := call(ctx)
	uc.audit.record(ctx, operatorID, model.DomainUser, verb, id, detail, err)
	if err != nil {
		log.Warn().Err(err).Str("verb", verb).Msg("user mutation failed")
		return nil, fmt.Errorf("%s user %s: %w", verb, id, err)
	}
	log.Info().Str("verb", verb).Msg("user updated")

	fresh, err := uc.backend.GetUser(ctx, id)
	if err != nil {
		log.Warn().Err(err).Msg("refetch after mutation failed")
		return nil, nil
	}
	return fresh, nil
}

func (uc *userUC) Stats(ctx context.Context) (model.UserStats, error) {
	users, err := uc.backend.ListUsers(ctx, uc.statsSample, true)
	if err != nil {
		return model.UserStats{}, fmt.Errorf("user stats: %w", err)
	}
	return model.NewUserStats(users), nil
}
