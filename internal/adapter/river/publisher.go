package river

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/riverqueue/river"

	"github.com/opsdeck/tenantctl/internal/domain"
)

// Compile-time check: Publisher implements domain.EventPublisher.
var _ domain.EventPublisher = (*Publisher)(nil)

// AuditJobArgs carries one operator action to the audit trail worker.
// River serializes this as JSON into its job queue table; the full event
// rides along so the worker never needs to re-query anything.
type AuditJobArgs struct {
	Action     string    `json:"action"`
	Actor      string    `json:"actor"`
	TenantID   string    `json:"tenant_id"`
	TenantName string    `json:"tenant_name"`
	Detail     string    `json:"detail"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Kind returns the unique job type identifier used by River's job routing.
func (AuditJobArgs) Kind() string { return "audit.recorded" }

// Client is the River client type parameterized for SQLite (*sql.Tx).
type Client = river.Client[*sql.Tx]

// Publisher implements domain.EventPublisher by enqueuing River jobs,
// keeping audit persistence off the request path.
type Publisher struct {
	client *Client
}

// NewPublisher creates a publisher backed by the given River client.
func NewPublisher(client *Client) *Publisher {
	return &Publisher{client: client}
}

// Publish enqueues an audit event as an async job in River.
func (p *Publisher) Publish(ctx context.Context, event domain.AuditEvent) error {
	_, err := p.client.Insert(ctx, AuditJobArgs{
		Action:     event.Action,
		Actor:      event.Actor,
		TenantID:   event.TenantID,
		TenantName: event.TenantName,
		Detail:     event.Detail,
		OccurredAt: event.OccurredAt,
	}, nil)
	if err != nil {
		return fmt.Errorf("enqueuing audit job: %w", err)
	}
	return nil
}
