package domain

import (
	"context"
	"time"
)

// TenantDirectory is the tenant service contract. All reads and writes of
// tenant records go through it; this core only computes intended
// transitions and validates preconditions before dispatch.
type TenantDirectory interface {
	List(ctx context.Context, sess Session, filter ListFilter) ([]Tenant, error)
	Get(ctx context.Context, sess Session, id string) (Tenant, error)
	Create(ctx context.Context, sess Session, draft TenantDraft) (Tenant, error)
	Update(ctx context.Context, sess Session, id string, draft TenantDraft) (Tenant, error)
	SetStatus(ctx context.Context, sess Session, id string, status Status) (Tenant, error)
	Stats(ctx context.Context, sess Session) (DashboardStats, error)
}

// SubscriptionService is the billing-state collaborator. Suspend and
// Reactivate are the only mutations this core may issue against it.
type SubscriptionService interface {
	Status(ctx context.Context, sess Session, tenantID string) (SubscriptionStatus, error)
	Suspend(ctx context.Context, sess Session, tenantID string) error
	Reactivate(ctx context.Context, sess Session, tenantID string) error
}

// ModuleRegistry is the module registry service contract.
type ModuleRegistry interface {
	Definitions(ctx context.Context, sess Session) ([]ModuleDefinition, error)
	TenantModules(ctx context.Context, sess Session, tenantID string) ([]Entitlement, error)
	Toggle(ctx context.Context, sess Session, tenantID, code string, enabled bool) (Entitlement, error)
	Usage(ctx context.Context, sess Session) ([]ModuleUsage, error)
}

// BillingService exposes invoice records for pass-through display.
type BillingService interface {
	Invoices(ctx context.Context, sess Session, tenantID string) ([]Invoice, error)
}

// Authenticator issues and resolves operator sessions against the auth
// collaborator. Both return ErrUnauthenticated for any non-superadmin.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (Session, error)
	Resolve(ctx context.Context, token string) (Session, error)
}

// TransitionValidator checks lifecycle events against the current status
// and yields the destination status.
type TransitionValidator interface {
	Apply(ctx context.Context, current Status, event Event) (Status, error)
}

// AuditEvent records an operator action for the tenant's action history.
type AuditEvent struct {
	Action     string
	Actor      string
	TenantID   string
	TenantName string
	Detail     string
	OccurredAt time.Time
}

// EventPublisher defines the contract for emitting audit events. Publish
// failures never fail the operation that produced the event.
type EventPublisher interface {
	Publish(ctx context.Context, event AuditEvent) error
}

// AuditLog is the persistence contract for the operator action history.
type AuditLog interface {
	Append(ctx context.Context, event AuditEvent) error
	ListByTenant(ctx context.Context, tenantID string, limit int) ([]AuditEvent, error)
}
