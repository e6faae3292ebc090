package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/opsdeck/tenantctl/internal/domain"
)

// EntitlementService resolves per-tenant module access. Plan-tier gating
// and dependency satisfaction are enforced here, before dispatch, so the
// invariants hold regardless of what any caller renders.
type EntitlementService struct {
	registry  domain.ModuleRegistry
	directory domain.TenantDirectory
	publisher domain.EventPublisher
	inflight  *Sequencer
}

// NewEntitlementService creates a service with the given adapters,
// sharing the per-tenant sequencer with the lifecycle service.
func NewEntitlementService(
	registry domain.ModuleRegistry,
	directory domain.TenantDirectory,
	publisher domain.EventPublisher,
	inflight *Sequencer,
) *EntitlementService {
	return &EntitlementService{
		registry:  registry,
		directory: directory,
		publisher: publisher,
		inflight:  inflight,
	}
}

// Definitions returns the platform-wide module catalog.
func (s *EntitlementService) Definitions(ctx context.Context, sess domain.Session) ([]domain.ModuleDefinition, error) {
	return s.registry.Definitions(ctx, sess)
}

// Usage returns the registry's per-module usage rollup across all tenants.
func (s *EntitlementService) Usage(ctx context.Context, sess domain.Session) ([]domain.ModuleUsage, error) {
	return s.registry.Usage(ctx, sess)
}

// List returns the tenant's entitlements grouped by category.
func (s *EntitlementService) List(ctx context.Context, sess domain.Session, tenantID string) ([]domain.EntitlementGroup, error) {
	entitlements, err := s.registry.TenantModules(ctx, sess, tenantID)
	if err != nil {
		return nil, err
	}
	return domain.GroupByCategory(entitlements), nil
}

// Toggle enables or disables a module for a tenant.
//
// Enabling verifies the tenant's plan tier against the module's required
// plan, then that every declared dependency is currently enabled.
// Disabling performs no reverse-dependency check: dependents keep their
// enabled flags and callers must not assume consistency is auto-repaired.
func (s *EntitlementService) Toggle(ctx context.Context, sess domain.Session, tenantID, code string, enabled bool) (domain.Entitlement, error) {
	token, err := s.inflight.Begin(tenantID)
	if err != nil {
		return domain.Entitlement{}, err
	}

	result, err := s.toggle(ctx, sess, tenantID, code, enabled)
	current := s.inflight.Finish(tenantID, token)
	if err != nil {
		return domain.Entitlement{}, err
	}
	if !current {
		// Lost a race with a newer mutation; report the registry's
		// current view instead of this completion.
		return s.lookup(ctx, sess, tenantID, code)
	}

	action := "module.disabled"
	if enabled {
		action = "module.enabled"
	}
	s.publish(ctx, sess, tenantID, action, code)
	return result, nil
}

func (s *EntitlementService) toggle(ctx context.Context, sess domain.Session, tenantID, code string, enabled bool) (domain.Entitlement, error) {
	tenant, err := s.directory.Get(ctx, sess, tenantID)
	if err != nil {
		return domain.Entitlement{}, err
	}

	entitlements, err := s.registry.TenantModules(ctx, sess, tenantID)
	if err != nil {
		return domain.Entitlement{}, err
	}

	target, found := findEntitlement(entitlements, code)
	if !found {
		return domain.Entitlement{}, domain.ErrModuleNotFound
	}

	if enabled {
		if !tenant.Plan.AtLeast(target.Module.RequiredPlan) {
			return domain.Entitlement{}, &domain.PlanGateError{
				Code:     code,
				Required: target.Module.RequiredPlan,
				Current:  tenant.Plan,
			}
		}
		if missing := missingDependencies(target.Module, entitlements); len(missing) > 0 {
			return domain.Entitlement{}, &domain.DependencyError{Code: code, Missing: missing}
		}
	}

	return s.registry.Toggle(ctx, sess, tenantID, code, enabled)
}

func (s *EntitlementService) lookup(ctx context.Context, sess domain.Session, tenantID, code string) (domain.Entitlement, error) {
	entitlements, err := s.registry.TenantModules(ctx, sess, tenantID)
	if err != nil {
		return domain.Entitlement{}, err
	}
	if e, found := findEntitlement(entitlements, code); found {
		return e, nil
	}
	return domain.Entitlement{}, domain.ErrModuleNotFound
}

func (s *EntitlementService) publish(ctx context.Context, sess domain.Session, tenantID, action, code string) {
	err := s.publisher.Publish(ctx, domain.AuditEvent{
		Action:     action,
		Actor:      sess.Email,
		TenantID:   tenantID,
		Detail:     fmt.Sprintf("module=%s", code),
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		log.Error().Err(err).Str("action", action).Str("tenant_id", tenantID).Msg("publishing audit event")
	}
}

func findEntitlement(entitlements []domain.Entitlement, code string) (domain.Entitlement, bool) {
	for _, e := range entitlements {
		if e.Module.Code == code {
			return e, true
		}
	}
	return domain.Entitlement{}, false
}

// missingDependencies lists dependency codes not currently enabled for
// the tenant. A dependency absent from the entitlement list entirely
// counts as missing.
func missingDependencies(module domain.ModuleDefinition, entitlements []domain.Entitlement) []string {
	enabled := make(map[string]bool, len(entitlements))
	for _, e := range entitlements {
		enabled[e.Module.Code] = e.Enabled
	}

	var missing []string
	for _, dep := range module.Dependencies {
		if !enabled[dep] {
			missing = append(missing, dep)
		}
	}
	return missing
}
