package model

import "time"

const (
	OutcomeOK     = "ok"
	OutcomeFailed = "failed"
)

// AuditEntry records one moderation decision.
type AuditEntry struct {
	ID         string
	OperatorID int64
	Domain     string
	Verb       string
	EntityID   EntityID
	Outcome    string
	Detail     string
	CreatedAt  time.Time
}
