package repository

import (
	"context"

	"yakmarket-admin-bot/internal/domain/model"
)

// MessageRegistry maps backend entities to the chat messages rendering them.
// Product notifications fan out to many chats; a user detail view maps to one
// message per operator chat.
type MessageRegistry interface {
	AppendProductMessage(ctx context.Context, productID model.EntityID, ref model.MessageRef) error
	ProductMessages(ctx context.Context, productID model.EntityID) ([]model.MessageRef, error)
	RemoveProduct(ctx context.Context, productID model.EntityID) error

	SetUserView(ctx context.Context, userID model.EntityID, ref model.MessageRef) error
	UserView(ctx context.Context, userID model.EntityID, chatID int64) (model.MessageRef, bool, error)
	RemoveUserView(ctx context.Context, userID model.EntityID) error

	// Clear drops every record. Called at shutdown.
	Clear(ctx context.Context) error
}
