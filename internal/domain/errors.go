package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for simple conditions without extra context.
var (
	ErrTenantNotFound  = errors.New("tenant not found")
	ErrModuleNotFound  = errors.New("module not found")
	ErrUnauthenticated = errors.New("superadmin session required")
)

// ValidationError reports malformed operator input, caught before any
// command is dispatched.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// ConflictError reports a uniqueness violation surfaced by the tenant
// service (subdomain or custom domain already taken).
type ConflictError struct {
	Field string
	Value string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %q is already in use", e.Field, e.Value)
}

// PreconditionError is returned when a lifecycle command is attempted from
// the wrong state, or when another mutation is already in flight for the
// same tenant.
type PreconditionError struct {
	Event   Event
	Current Status
	Reason  string
}

func (e *PreconditionError) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	return fmt.Sprintf("event %q is not valid from state %q", e.Event, e.Current)
}

// PlanGateError is returned when enabling a module whose required plan
// tier exceeds the tenant's.
type PlanGateError struct {
	Code     string
	Required Plan
	Current  Plan
}

func (e *PlanGateError) Error() string {
	return fmt.Sprintf("module %q requires plan %q or higher, tenant is on %q", e.Code, e.Required, e.Current)
}

// DependencyError is returned when enabling a module whose dependencies
// are not all enabled for the tenant. Missing lists the absent codes.
type DependencyError struct {
	Code    string
	Missing []string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("module %q requires %s to be enabled first", e.Code, strings.Join(e.Missing, ", "))
}

// ServiceError reports a downstream platform-service failure. Message is
// surfaced to the operator verbatim; no state has been changed locally.
type ServiceError struct {
	Op      string
	Message string
}

func (e *ServiceError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: service unavailable", e.Op)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}
