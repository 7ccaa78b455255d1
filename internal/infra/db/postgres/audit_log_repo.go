package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/oklog/ulid/v2"

	"yakmarket-admin-bot/internal/domain"
	"yakmarket-admin-bot/internal/domain/model"
	"yakmarket-admin-bot/internal/domain/ports/repository"
)

var _ repository.AuditLog = (*AuditLogRepo)(nil)

// execer is satisfied by *pgxpool.Pool, *pgxpool.Conn and pgx.Tx.
type execer interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

// AuditLogRepo appends moderation decisions to moderation_audit.
type AuditLogRepo struct {
	db  execer
	now func() time.Time
}

func NewAuditLogRepo(db execer) *AuditLogRepo {
	return &AuditLogRepo{db: db, now: time.Now}
}

const auditSchema = `
CREATE TABLE IF NOT EXISTS moderation_audit (
    id          TEXT PRIMARY KEY,
    operator_id BIGINT      NOT NULL,
    domain      TEXT        NOT NULL,
    verb        TEXT        NOT NULL,
    entity_id   TEXT        NOT NULL,
    outcome     TEXT        NOT NULL,
    detail      TEXT        NOT NULL DEFAULT '',
    created_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS moderation_audit_entity_idx ON moderation_audit (domain, entity_id, created_at DESC);`

// EnsureSchema creates the audit table when missing.
func (r *AuditLogRepo) EnsureSchema(ctx context.Context) error {
	_, err := r.db.Exec(ctx, auditSchema)
	return err
}

// Record fills ID and CreatedAt when empty.
func (r *AuditLogRepo) Record(ctx context.Context, e *model.AuditEntry) error {
	if e == nil {
		return domain.ErrInvalidArgument
	}
	if e.ID == "" {
		e.ID = ulid.Make().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = r.now().UTC()
	}
	const q = `
INSERT INTO moderation_audit (id, operator_id, domain, verb, entity_id, outcome, detail, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	tag, err := r.db.Exec(ctx, q, e.ID, e.OperatorID, e.Domain, e.Verb, e.EntityID.String(), e.Outcome, e.Detail, e.CreatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() != 1 {
		return domain.ErrInvalidArgument
	}
	return nil
}

// ListByEntity returns the newest entries for one entity.
func (r *AuditLogRepo) ListByEntity(ctx context.Context, domainName string, id model.EntityID, limit int) ([]*model.AuditEntry, error) {
	const q = `
SELECT id, operator_id, domain, verb, entity_id, outcome, detail, created_at
FROM moderation_audit
WHERE domain = $1 AND entity_id = $2
ORDER BY created_at DESC
LIMIT $3`
	rows, err := r.db.Query(ctx, q, domainName, id.String(), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.AuditEntry
	for rows.Next() {
		var (
			e   model.AuditEntry
			eid string
		)
		if err := rows.Scan(&e.ID, &e.OperatorID, &e.Domain, &e.Verb, &eid, &e.Outcome, &e.Detail, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.EntityID = model.EntityID(eid)
		out = append(out, &e)
	}
	return out, rows.Err()
}
