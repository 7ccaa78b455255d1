package adapter

import (
	"context"

	"yakmarket-admin-bot/internal/domain/model"
)

// BackendGateway is the typed surface of the CMS. Every failure, transport or
// status, matches domain.ErrBackendUnavailable.
type BackendGateway interface {
	ListUsers(ctx context.Context, limit int, newestFirst bool) ([]*model.ManagedUser, error)
	GetUser(ctx context.Context, id model.EntityID) (*model.ManagedUser, error)
	SetUserBlocked(ctx context.Context, id model.EntityID, blocked bool) error
	// IncrementWarning reads the current count and writes count+1. It is not
	// atomic at the backend.
	IncrementWarning(ctx context.Context, id model.EntityID) (int, error)
	ResetWarnings(ctx context.Context, id model.EntityID) error
	DeleteUser(ctx context.Context, id model.EntityID) error

	GetProduct(ctx context.Context, id model.EntityID) (*model.Product, error)
	PublishProduct(ctx context.Context, id model.EntityID) error
	DeleteProduct(ctx context.Context, id model.EntityID) error
	ListPendingProducts(ctx context.Context, limit int) ([]*model.Product, error)
}
