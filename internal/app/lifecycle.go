package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/opsdeck/tenantctl/internal/domain"
)

// TenantView pairs a tenant record with its subscription snapshot, the
// shape the console detail page works with. Subscription is nil when the
// snapshot could not be fetched; the record itself is still usable.
type TenantView struct {
	Tenant       domain.Tenant
	Subscription *domain.SubscriptionStatus
}

// LifecycleService owns the tenant status state machine and issues
// lifecycle-changing commands against the tenant and subscription
// services. It never mutates state itself; it validates preconditions,
// dispatches exactly one command, and re-reads.
type LifecycleService struct {
	baseFrontendURL string
	directory       domain.TenantDirectory
	subscriptions   domain.SubscriptionService
	validator       domain.TransitionValidator
	publisher       domain.EventPublisher
	inflight        *Sequencer
}

// NewLifecycleService creates a service with the given adapters. The
// sequencer is shared with the entitlement service so that lifecycle and
// entitlement mutations for a tenant serialize against each other.
func NewLifecycleService(
	baseFrontendURL string,
	directory domain.TenantDirectory,
	subscriptions domain.SubscriptionService,
	validator domain.TransitionValidator,
	publisher domain.EventPublisher,
	inflight *Sequencer,
) *LifecycleService {
	return &LifecycleService{
		baseFrontendURL: baseFrontendURL,
		directory:       directory,
		subscriptions:   subscriptions,
		validator:       validator,
		publisher:       publisher,
		inflight:        inflight,
	}
}

// Create validates a tenant draft, derives its frontend URL and
// dispatches the creation command. The tenant service assigns the ID and
// reports subdomain/domain conflicts.
func (s *LifecycleService) Create(ctx context.Context, sess domain.Session, draft domain.TenantDraft) (domain.Tenant, error) {
	if err := validateCreate(draft); err != nil {
		return domain.Tenant{}, err
	}
	if draft.Plan == "" {
		draft.Plan = domain.PlanFree
	}
	draft.FrontendURL = domain.DeriveURL(s.baseFrontendURL, draft.Subdomain, draft.CustomDomain, draft.FrontendURL)

	created, err := s.directory.Create(ctx, sess, draft)
	if err != nil {
		return domain.Tenant{}, err
	}

	s.publish(ctx, sess, created, "tenant.created", fmt.Sprintf("plan=%s subdomain=%s", created.Plan, created.Subdomain))
	return created, nil
}

// Get returns a tenant together with its subscription snapshot.
func (s *LifecycleService) Get(ctx context.Context, sess domain.Session, id string) (TenantView, error) {
	tenant, err := s.directory.Get(ctx, sess, id)
	if err != nil {
		return TenantView{}, err
	}
	return TenantView{Tenant: tenant, Subscription: s.snapshot(ctx, sess, id)}, nil
}

// Update validates and dispatches a full tenant edit. The frontend URL is
// recomputed unless the operator supplied a genuine override; attaching a
// custom domain or clearing one forces recomputation regardless of what
// the edit form carried along.
func (s *LifecycleService) Update(ctx context.Context, sess domain.Session, id string, draft domain.TenantDraft) (domain.Tenant, error) {
	if err := validateUpdate(draft); err != nil {
		return domain.Tenant{}, err
	}

	token, err := s.inflight.Begin(id)
	if err != nil {
		return domain.Tenant{}, err
	}

	prev, err := s.directory.Get(ctx, sess, id)
	if err != nil {
		s.inflight.Finish(id, token)
		return domain.Tenant{}, err
	}

	draft.FrontendURL = s.resolveFrontendURL(prev, draft)

	updated, err := s.directory.Update(ctx, sess, id, draft)
	current := s.inflight.Finish(id, token)
	if err != nil {
		return domain.Tenant{}, err
	}
	if !current {
		// A newer mutation won the race; its response is authoritative.
		return s.directory.Get(ctx, sess, id)
	}

	s.publish(ctx, sess, updated, "tenant.updated", "")
	return updated, nil
}

// SetStatus is the direct operator status edit: enum-checked only, no
// state-machine policy applied.
func (s *LifecycleService) SetStatus(ctx context.Context, sess domain.Session, id string, status domain.Status) (domain.Tenant, error) {
	if !status.Known() {
		return domain.Tenant{}, &domain.ValidationError{Field: "status", Reason: "must be one of trial, active, suspended, expired"}
	}

	token, err := s.inflight.Begin(id)
	if err != nil {
		return domain.Tenant{}, err
	}

	updated, err := s.directory.SetStatus(ctx, sess, id, status)
	current := s.inflight.Finish(id, token)
	if err != nil {
		return domain.Tenant{}, err
	}
	if !current {
		return s.directory.Get(ctx, sess, id)
	}

	s.publish(ctx, sess, updated, "tenant.status_changed", fmt.Sprintf("status=%s", status))
	return updated, nil
}

// Suspend moves an active tenant to suspended via the subscription
// service. Any other current status fails the precondition before
// dispatch and leaves state untouched.
func (s *LifecycleService) Suspend(ctx context.Context, sess domain.Session, id string) (TenantView, error) {
	return s.transition(ctx, sess, id, domain.EventSuspend, "tenant.suspended", s.subscriptions.Suspend)
}

// Reactivate moves a suspended tenant back to active.
func (s *LifecycleService) Reactivate(ctx context.Context, sess domain.Session, id string) (TenantView, error) {
	return s.transition(ctx, sess, id, domain.EventReactivate, "tenant.reactivated", s.subscriptions.Reactivate)
}

func (s *LifecycleService) transition(
	ctx context.Context,
	sess domain.Session,
	id string,
	event domain.Event,
	action string,
	dispatch func(ctx context.Context, sess domain.Session, tenantID string) error,
) (TenantView, error) {
	token, err := s.inflight.Begin(id)
	if err != nil {
		return TenantView{}, err
	}

	tenant, err := s.directory.Get(ctx, sess, id)
	if err != nil {
		s.inflight.Finish(id, token)
		return TenantView{}, err
	}

	if _, err := s.validator.Apply(ctx, tenant.Status, event); err != nil {
		s.inflight.Finish(id, token)
		return TenantView{}, err
	}

	if err := dispatch(ctx, sess, id); err != nil {
		// Downstream failed; nothing changed, message goes to the
		// operator verbatim.
		s.inflight.Finish(id, token)
		return TenantView{}, err
	}

	current := s.inflight.Finish(id, token)

	// Every transition triggers a refresh of the tenant record and its
	// subscription snapshot.
	refreshed, err := s.directory.Get(ctx, sess, id)
	if err != nil {
		return TenantView{}, err
	}

	if current {
		s.publish(ctx, sess, refreshed, action, "")
	}
	return TenantView{Tenant: refreshed, Subscription: s.snapshot(ctx, sess, id)}, nil
}

// snapshot fetches the subscription state, tolerating failure: the detail
// view renders without it.
func (s *LifecycleService) snapshot(ctx context.Context, sess domain.Session, id string) *domain.SubscriptionStatus {
	sub, err := s.subscriptions.Status(ctx, sess, id)
	if err != nil {
		log.Warn().Err(err).Str("tenant_id", id).Msg("subscription snapshot unavailable")
		return nil
	}
	return &sub
}

// publish records the operator action in the audit trail. Failures are
// logged, never surfaced: the operation itself already succeeded.
func (s *LifecycleService) publish(ctx context.Context, sess domain.Session, tenant domain.Tenant, action, detail string) {
	err := s.publisher.Publish(ctx, domain.AuditEvent{
		Action:     action,
		Actor:      sess.Email,
		TenantID:   tenant.ID,
		TenantName: tenant.Name,
		Detail:     detail,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		log.Error().Err(err).Str("action", action).Str("tenant_id", tenant.ID).Msg("publishing audit event")
	}
}

// resolveFrontendURL applies the recomputation triggers before deriving:
// attaching a custom domain invalidates a carried-along path URL, clearing
// one regenerates it, and a subdomain rename drops an override that is
// just the previous derived URL rather than operator intent.
func (s *LifecycleService) resolveFrontendURL(prev domain.Tenant, draft domain.TenantDraft) string {
	override := strings.TrimSpace(draft.FrontendURL)

	switch {
	case draft.CustomDomain != "" && prev.CustomDomain == "":
		override = ""
	case draft.CustomDomain == "" && prev.CustomDomain != "":
		override = ""
	case draft.Subdomain != prev.Subdomain &&
		override == domain.DeriveURL(s.baseFrontendURL, prev.Subdomain, "", ""):
		override = ""
	}

	return domain.DeriveURL(s.baseFrontendURL, draft.Subdomain, draft.CustomDomain, override)
}
