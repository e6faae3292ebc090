package river

import (
	"context"

	"github.com/riverqueue/river"
	"github.com/rs/zerolog/log"

	"github.com/opsdeck/tenantctl/internal/domain"
)

// AuditWorker writes queued audit events into the local store.
type AuditWorker struct {
	river.WorkerDefaults[AuditJobArgs]

	store domain.AuditLog
}

// NewAuditWorker creates a worker that appends to the given audit log.
func NewAuditWorker(store domain.AuditLog) *AuditWorker {
	return &AuditWorker{store: store}
}

// Work processes a single audit job.
func (w *AuditWorker) Work(ctx context.Context, job *river.Job[AuditJobArgs]) error {
	log.Info().
		Str("action", job.Args.Action).
		Str("tenant_id", job.Args.TenantID).
		Int64("job_id", job.ID).
		Int("attempt", job.Attempt).
		Msg("recording audit event")

	return w.store.Append(ctx, domain.AuditEvent{
		Action:     job.Args.Action,
		Actor:      job.Args.Actor,
		TenantID:   job.Args.TenantID,
		TenantName: job.Args.TenantName,
		Detail:     job.Args.Detail,
		OccurredAt: job.Args.OccurredAt,
	})
}
