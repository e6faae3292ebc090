package fsm_test

import (
	"context"
	"errors"
	"testing"

	adapter "github.com/opsdeck/tenantctl/internal/adapter/fsm"
	"github.com/opsdeck/tenantctl/internal/domain"
)

func TestValidator_AllTransitions(t *testing.T) {
	v := adapter.New()
	ctx := context.Background()

	for _, tr := range domain.Transitions {
		dst, err := v.Apply(ctx, tr.Src, tr.Event)
		if err != nil {
			t.Errorf("Apply(%q, %q) unexpected error: %v", tr.Src, tr.Event, err)
			continue
		}
		if dst != tr.Dst {
			t.Errorf("Apply(%q, %q) = %q, want %q", tr.Src, tr.Event, dst, tr.Dst)
		}
	}
}

func TestValidator_InvalidTransition(t *testing.T) {
	v := adapter.New()
	ctx := context.Background()

	// Can't suspend a tenant still on trial.
	_, err := v.Apply(ctx, domain.StatusTrial, domain.EventSuspend)
	var pErr *domain.PreconditionError
	if !errors.As(err, &pErr) {
		t.Fatalf("expected PreconditionError, got %v", err)
	}
	if pErr.Event != domain.EventSuspend {
		t.Errorf("event = %q, want %q", pErr.Event, domain.EventSuspend)
	}
	if pErr.Current != domain.StatusTrial {
		t.Errorf("current = %q, want %q", pErr.Current, domain.StatusTrial)
	}
}

func TestValidator_FullLifecycle(t *testing.T) {
	v := adapter.New()
	ctx := context.Background()

	steps := []struct {
		from  domain.Status
		event domain.Event
		want  domain.Status
	}{
		{domain.StatusTrial, domain.EventActivate, domain.StatusActive},
		{domain.StatusActive, domain.EventSuspend, domain.StatusSuspended},
		{domain.StatusSuspended, domain.EventReactivate, domain.StatusActive},
		{domain.StatusActive, domain.EventExpire, domain.StatusExpired},
	}

	for _, step := range steps {
		got, err := v.Apply(ctx, step.from, step.event)
		if err != nil {
			t.Fatalf("Apply(%q, %q) error: %v", step.from, step.event, err)
		}
		if got != step.want {
			t.Errorf("Apply(%q, %q) = %q, want %q", step.from, step.event, got, step.want)
		}
	}
}

func TestValidator_ExpireFromTrial(t *testing.T) {
	v := adapter.New()
	ctx := context.Background()

	// Expire is valid from both "trial" and "active".
	got, err := v.Apply(ctx, domain.StatusTrial, domain.EventExpire)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != domain.StatusExpired {
		t.Errorf("got %q, want %q", got, domain.StatusExpired)
	}
}

func TestValidator_NoEscapeFromExpired(t *testing.T) {
	v := adapter.New()
	ctx := context.Background()

	for _, event := range []domain.Event{domain.EventActivate, domain.EventSuspend, domain.EventReactivate, domain.EventExpire} {
		if _, err := v.Apply(ctx, domain.StatusExpired, event); err == nil {
			t.Errorf("Apply(expired, %q) should fail", event)
		}
	}
}
