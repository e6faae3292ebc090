package domain_test

import (
	"testing"

	"github.com/opsdeck/tenantctl/internal/domain"
)

func TestTransitions_ValidPaths(t *testing.T) {
	cases := []struct {
		event domain.Event
		src   domain.Status
		dst   domain.Status
	}{
		{domain.EventActivate, domain.StatusTrial, domain.StatusActive},
		{domain.EventSuspend, domain.StatusActive, domain.StatusSuspended},
		{domain.EventReactivate, domain.StatusSuspended, domain.StatusActive},
		{domain.EventExpire, domain.StatusTrial, domain.StatusExpired},
		{domain.EventExpire, domain.StatusActive, domain.StatusExpired},
	}

	for _, tc := range cases {
		found := false
		for _, tr := range domain.Transitions {
			if tr.Event == tc.event && tr.Src == tc.src && tr.Dst == tc.dst {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("missing transition: %q from %q to %q", tc.event, tc.src, tc.dst)
		}
	}
}

func TestTransitions_InvalidPaths(t *testing.T) {
	// These transitions must NOT exist.
	invalid := []struct {
		event domain.Event
		src   domain.Status
	}{
		{domain.EventSuspend, domain.StatusTrial},
		{domain.EventSuspend, domain.StatusSuspended},
		{domain.EventSuspend, domain.StatusExpired},
		{domain.EventReactivate, domain.StatusActive},
		{domain.EventReactivate, domain.StatusTrial},
		{domain.EventExpire, domain.StatusSuspended},
		{domain.EventActivate, domain.StatusExpired},
	}

	for _, tc := range invalid {
		for _, tr := range domain.Transitions {
			if tr.Event == tc.event && tr.Src == tc.src {
				t.Errorf("unexpected transition: %q from %q should not exist", tc.event, tc.src)
			}
		}
	}
}

func TestPlan_AtLeast(t *testing.T) {
	cases := []struct {
		plan     domain.Plan
		required domain.Plan
		want     bool
	}{
		{domain.PlanFree, domain.PlanFree, true},
		{domain.PlanFree, domain.PlanPro, false},
		{domain.PlanBasic, domain.PlanFree, true},
		{domain.PlanBasic, domain.PlanPro, false},
		{domain.PlanPro, domain.PlanPro, true},
		{domain.PlanPro, domain.PlanEnterprise, false},
		{domain.PlanEnterprise, domain.PlanFree, true},
		{domain.PlanEnterprise, domain.PlanEnterprise, true},
		{domain.Plan("unknown"), domain.PlanFree, false},
		{domain.PlanFree, domain.Plan("unknown"), true},
	}

	for _, tc := range cases {
		if got := tc.plan.AtLeast(tc.required); got != tc.want {
			t.Errorf("%q.AtLeast(%q) = %v, want %v", tc.plan, tc.required, got, tc.want)
		}
	}
}

func TestStatus_Known(t *testing.T) {
	for _, s := range domain.Statuses {
		if !s.Known() {
			t.Errorf("status %q should be known", s)
		}
	}
	if domain.Status("provisioning").Known() {
		t.Error("status \"provisioning\" should not be known")
	}
}

func TestPlan_Known(t *testing.T) {
	for _, p := range []domain.Plan{domain.PlanFree, domain.PlanBasic, domain.PlanPro, domain.PlanEnterprise} {
		if !p.Known() {
			t.Errorf("plan %q should be known", p)
		}
	}
	if domain.Plan("platinum").Known() {
		t.Error("plan \"platinum\" should not be known")
	}
}

func TestSession_Superadmin(t *testing.T) {
	sess := domain.Session{Role: domain.RoleSuperadmin}
	if !sess.Superadmin() {
		t.Error("superadmin session should pass the gate")
	}
	if (domain.Session{Role: "admin"}).Superadmin() {
		t.Error("non-superadmin role should be treated as unauthenticated")
	}
}
