package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"yakmarket-admin-bot/internal/domain/model"
	"yakmarket-admin-bot/internal/domain/ports/repository"
	"yakmarket-admin-bot/internal/infra/metrics"
)

// auditor records every moderation decision. Audit failures are logged only.
type auditor struct {
	log   repository.AuditLog
	debug *zerolog.Logger
}

func newAuditor(l repository.AuditLog, logger *zerolog.Logger) auditor {
	if l == nil {
		l = repository.NoopAuditLog{}
	}
	return auditor{log: l, debug: logger}
}

func (a auditor) record(ctx context.Context, operatorID int64, domainName, verb string, id model.EntityID, detail string, err error) {
	metrics.IncModerationAction(domainName, verb, err == nil)
	e := &model.AuditEntry{
		OperatorID: operatorID,
		Domain:     domainName,
		Verb:       verb,
		EntityID:   id,
		Outcome:    model.OutcomeOK,
		Detail:     detail,
	}
	if err != nil {
		e.Outcome = model.OutcomeFailed
		if e.Detail == "" {
			e.Detail = err.Error()
		}
	}
	if aerr := a.log.Record(ctx, e); aerr != nil {
		a.debug.Warn().Err(aerr).Str("domain", domainName).Str("verb", verb).Str("entity_id", id.String()).Msg("audit record failed")
	}
}
