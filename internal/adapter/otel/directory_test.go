package otel_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	adapter "github.com/opsdeck/tenantctl/internal/adapter/otel"
	"github.com/opsdeck/tenantctl/internal/domain"
)

func setupTestTracer(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return exporter
}

func assertAttribute(t *testing.T, span tracetest.SpanStub, key, want string) {
	t.Helper()
	for _, attr := range span.Attributes {
		if string(attr.Key) == key {
			got := attr.Value.Emit()
			if got != want {
				t.Errorf("attribute %q = %q, want %q", key, got, want)
			}
			return
		}
	}
	t.Errorf("attribute %q not found on span %q", key, span.Name)
}

// --- Mock directory ---

type mockDirectory struct {
	tenants map[string]domain.Tenant
}

func newMockDirectory() *mockDirectory {
	return &mockDirectory{tenants: map[string]domain.Tenant{
		"t-1": {ID: "t-1", Name: "Acme Corp", Subdomain: "acme", Plan: domain.PlanPro, Status: domain.StatusActive},
	}}
}

func (m *mockDirectory) List(_ context.Context, _ domain.Session, _ domain.ListFilter) ([]domain.Tenant, error) {
	out := make([]domain.Tenant, 0, len(m.tenants))
	for _, t := range m.tenants {
		out = append(out, t)
	}
	return out, nil
}

func (m *mockDirectory) Get(_ context.Context, _ domain.Session, id string) (domain.Tenant, error) {
	t, ok := m.tenants[id]
	if !ok {
		return domain.Tenant{}, domain.ErrTenantNotFound
	}
	return t, nil
}

func (m *mockDirectory) Create(_ context.Context, _ domain.Session, draft domain.TenantDraft) (domain.Tenant, error) {
	t := domain.Tenant{ID: "t-new", Name: draft.Name, Subdomain: draft.Subdomain, Plan: draft.Plan, Status: domain.StatusTrial}
	m.tenants[t.ID] = t
	return t, nil
}

func (m *mockDirectory) Update(_ context.Context, _ domain.Session, id string, draft domain.TenantDraft) (domain.Tenant, error) {
	t, ok := m.tenants[id]
	if !ok {
		return domain.Tenant{}, domain.ErrTenantNotFound
	}
	t.Name = draft.Name
	m.tenants[id] = t
	return t, nil
}

func (m *mockDirectory) SetStatus(_ context.Context, _ domain.Session, id string, status domain.Status) (domain.Tenant, error) {
	t, ok := m.tenants[id]
	if !ok {
		return domain.Tenant{}, domain.ErrTenantNotFound
	}
	t.Status = status
	m.tenants[id] = t
	return t, nil
}

func (m *mockDirectory) Stats(_ context.Context, _ domain.Session) (domain.DashboardStats, error) {
	return domain.DashboardStats{TotalTenants: len(m.tenants)}, nil
}

// --- Tests ---

func TestTracingDirectory_Get_RecordsSpan(t *testing.T) {
	exporter := setupTestTracer(t)
	dir := adapter.NewTracingDirectory(newMockDirectory())

	tenant, err := dir.Get(context.Background(), domain.Session{}, "t-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tenant.ID != "t-1" {
		t.Errorf("ID = %q", tenant.ID)
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].Name != "TenantDirectory.Get" {
		t.Errorf("span name = %q", spans[0].Name)
	}
	assertAttribute(t, spans[0], "tenant.id", "t-1")
}

func TestTracingDirectory_Get_RecordsError(t *testing.T) {
	exporter := setupTestTracer(t)
	dir := adapter.NewTracingDirectory(newMockDirectory())

	if _, err := dir.Get(context.Background(), domain.Session{}, "nope"); err == nil {
		t.Fatal("expected error")
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].Status.Code != codes.Error {
		t.Errorf("span status = %v, want %v", spans[0].Status.Code, codes.Error)
	}
}

func TestTracingDirectory_List_RecordsCount(t *testing.T) {
	exporter := setupTestTracer(t)
	dir := adapter.NewTracingDirectory(newMockDirectory())

	if _, err := dir.List(context.Background(), domain.Session{}, domain.ListFilter{Status: "active"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	assertAttribute(t, spans[0], "filter.status", "active")
	assertAttribute(t, spans[0], "result.count", "1")
}

// --- Publisher decorator ---

type capturePublisher struct {
	events []domain.AuditEvent
}

func (p *capturePublisher) Publish(_ context.Context, e domain.AuditEvent) error {
	p.events = append(p.events, e)
	return nil
}

type failingPublisher struct{}

func (failingPublisher) Publish(_ context.Context, _ domain.AuditEvent) error {
	return fmt.Errorf("publish failed")
}

func TestTracingPublisher_Publish_RecordsSpan(t *testing.T) {
	exporter := setupTestTracer(t)
	inner := &capturePublisher{}
	pub := adapter.NewTracingPublisher(inner)

	err := pub.Publish(context.Background(), domain.AuditEvent{
		Action:     "tenant.suspended",
		Actor:      "root@platform.test",
		TenantID:   "t-1",
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].Name != "EventPublisher.Publish" {
		t.Errorf("span name = %q", spans[0].Name)
	}
	assertAttribute(t, spans[0], "audit.action", "tenant.suspended")
	assertAttribute(t, spans[0], "tenant.id", "t-1")

	if len(inner.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(inner.events))
	}
}

func TestTracingPublisher_Publish_RecordsError(t *testing.T) {
	exporter := setupTestTracer(t)
	pub := adapter.NewTracingPublisher(failingPublisher{})

	if err := pub.Publish(context.Background(), domain.AuditEvent{Action: "tenant.created"}); err == nil {
		t.Fatal("expected error")
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].Status.Code != codes.Error {
		t.Errorf("span status = %v, want %v", spans[0].Status.Code, codes.Error)
	}
}
