package domain

import (
	"encoding/json"
	"time"
)

// Status represents the lifecycle state of a tenant.
type Status string

const (
	StatusTrial     Status = "trial"
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
	StatusExpired   Status = "expired"
)

// Statuses lists every valid lifecycle state, used for enum checks on
// direct operator status edits.
var Statuses = []Status{StatusTrial, StatusActive, StatusSuspended, StatusExpired}

// Known reports whether s is a member of the status enum.
func (s Status) Known() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Event represents an action that triggers a state transition.
type Event string

const (
	EventActivate   Event = "activate"
	EventSuspend    Event = "suspend"
	EventReactivate Event = "reactivate"
	EventExpire     Event = "expire"
)

// Transition defines a valid state change: an event moves a tenant from Src to Dst.
type Transition struct {
	Event Event
	Src   Status
	Dst   Status
}

// Transitions defines all valid state changes in the tenant lifecycle.
// This is domain knowledge consumed by the FSM adapter. Direct status
// edits through the update form bypass this table; it governs the
// suspend/reactivate/expire commands only.
var Transitions = []Transition{
	{Event: EventActivate, Src: StatusTrial, Dst: StatusActive},
	{Event: EventSuspend, Src: StatusActive, Dst: StatusSuspended},
	{Event: EventReactivate, Src: StatusSuspended, Dst: StatusActive},
	{Event: EventExpire, Src: StatusTrial, Dst: StatusExpired},
	{Event: EventExpire, Src: StatusActive, Dst: StatusExpired},
}

// Plan is an ordered subscription tier gating feature and module access.
type Plan string

const (
	PlanFree       Plan = "free"
	PlanBasic      Plan = "basic"
	PlanPro        Plan = "pro"
	PlanEnterprise Plan = "enterprise"
)

// planRank orders the tiers. Unknown plans rank below free so a malformed
// plan never satisfies a gate.
var planRank = map[Plan]int{
	PlanFree:       0,
	PlanBasic:      1,
	PlanPro:        2,
	PlanEnterprise: 3,
}

// Known reports whether p is a member of the plan enum.
func (p Plan) Known() bool {
	_, ok := planRank[p]
	return ok
}

// AtLeast reports whether p meets or exceeds the required tier.
func (p Plan) AtLeast(required Plan) bool {
	rank, ok := planRank[p]
	if !ok {
		return false
	}
	requiredRank, ok := planRank[required]
	if !ok {
		// A module without a known required plan gates nothing.
		return true
	}
	return rank >= requiredRank
}

// Owner is the administrative user attached to a tenant. The user record
// itself lives in the auth service; only the reference travels here.
type Owner struct {
	ID    string
	Email string
}

// Tenant is an isolated customer organization within the platform.
// Settings is an opaque profile blob (company info, contact, address,
// social links) owned by the tenant admin and passed through untouched.
type Tenant struct {
	ID           string
	Name         string
	Subdomain    string
	CustomDomain string
	FrontendURL  string
	Plan         Plan
	Status       Status
	Owner        Owner
	Settings     json.RawMessage
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TenantDraft carries operator input for create and update operations.
// OwnerEmail and OwnerPassword are only consulted on create; Status is
// only consulted on update (the direct status-edit escape hatch).
type TenantDraft struct {
	Name          string
	Subdomain     string
	CustomDomain  string
	FrontendURL   string
	Plan          Plan
	Status        Status
	OwnerEmail    string
	OwnerPassword string
}

// ListFilter holds the directory query predicates. Status and Plan accept
// "all" (or empty) to mean no filter; Search matches the tenant name
// case-insensitively as a substring.
type ListFilter struct {
	Status string
	Plan   string
	Search string
}
