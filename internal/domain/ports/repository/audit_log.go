package repository

import (
	"context"

	"yakmarket-admin-bot/internal/domain/model"
)

type AuditLog interface {
	Record(ctx context.Context, e *model.AuditEntry) error
}

// AuditHistory reads back recorded decisions, newest first.
type AuditHistory interface {
	ListByEntity(ctx context.Context, domainName string, id model.EntityID, limit int) ([]*model.AuditEntry, error)
}

// NoopAuditLog is used when no database is configured.
type NoopAuditLog struct{}

func (NoopAuditLog) Record(context.Context, *model.AuditEntry) error { return nil }
