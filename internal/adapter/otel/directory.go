package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/opsdeck/tenantctl/internal/domain"
)

const tracerName = "github.com/opsdeck/tenantctl/internal/adapter/otel"

// TracingDirectory wraps a domain.TenantDirectory with OpenTelemetry
// tracing. Each method creates a span with semantic attributes and
// records errors.
type TracingDirectory struct {
	next   domain.TenantDirectory
	tracer trace.Tracer
}

// Compile-time check: TracingDirectory implements domain.TenantDirectory.
var _ domain.TenantDirectory = (*TracingDirectory)(nil)

// NewTracingDirectory creates a tracing decorator around the given directory.
func NewTracingDirectory(next domain.TenantDirectory) *TracingDirectory {
	return &TracingDirectory{
		next:   next,
		tracer: otel.Tracer(tracerName),
	}
}

func (d *TracingDirectory) List(ctx context.Context, sess domain.Session, filter domain.ListFilter) ([]domain.Tenant, error) {
	ctx, span := d.tracer.Start(ctx, "TenantDirectory.List",
		trace.WithAttributes(
			attribute.String("filter.status", filter.Status),
			attribute.String("filter.plan", filter.Plan),
		),
	)
	defer span.End()

	tenants, err := d.next.List(ctx, sess, filter)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetAttributes(attribute.Int("result.count", len(tenants)))
	}
	return tenants, err
}

func (d *TracingDirectory) Get(ctx context.Context, sess domain.Session, id string) (domain.Tenant, error) {
	ctx, span := d.tracer.Start(ctx, "TenantDirectory.Get",
		trace.WithAttributes(attribute.String("tenant.id", id)),
	)
	defer span.End()

	tenant, err := d.next.Get(ctx, sess, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return tenant, err
}

func (d *TracingDirectory) Create(ctx context.Context, sess domain.Session, draft domain.TenantDraft) (domain.Tenant, error) {
	ctx, span := d.tracer.Start(ctx, "TenantDirectory.Create",
		trace.WithAttributes(
			attribute.String("tenant.subdomain", draft.Subdomain),
			attribute.String("tenant.plan", string(draft.Plan)),
		),
	)
	defer span.End()

	tenant, err := d.next.Create(ctx, sess, draft)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return tenant, err
}

func (d *TracingDirectory) Update(ctx context.Context, sess domain.Session, id string, draft domain.TenantDraft) (domain.Tenant, error) {
	ctx, span := d.tracer.Start(ctx, "TenantDirectory.Update",
		trace.WithAttributes(
			attribute.String("tenant.id", id),
			attribute.String("tenant.subdomain", draft.Subdomain),
		),
	)
	defer span.End()

	tenant, err := d.next.Update(ctx, sess, id, draft)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return tenant, err
}

func (d *TracingDirectory) SetStatus(ctx context.Context, sess domain.Session, id string, status domain.Status) (domain.Tenant, error) {
	ctx, span := d.tracer.Start(ctx, "TenantDirectory.SetStatus",
		trace.WithAttributes(
			attribute.String("tenant.id", id),
			attribute.String("tenant.status", string(status)),
		),
	)
	defer span.End()

	tenant, err := d.next.SetStatus(ctx, sess, id, status)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return tenant, err
}

func (d *TracingDirectory) Stats(ctx context.Context, sess domain.Session) (domain.DashboardStats, error) {
	ctx, span := d.tracer.Start(ctx, "TenantDirectory.Stats")
	defer span.End()

	stats, err := d.next.Stats(ctx, sess)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return stats, err
}
