package app

import (
	"net/mail"
	"regexp"
	"strings"

	"github.com/opsdeck/tenantctl/internal/domain"
)

var subdomainPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

const minOwnerPasswordLen = 6

// validateCreate checks operator input before a creation command is
// dispatched. Everything caught here is a ValidationError; uniqueness is
// the tenant service's call and surfaces later as a ConflictError.
func validateCreate(draft domain.TenantDraft) error {
	if err := validateCommon(draft); err != nil {
		return err
	}
	if _, err := mail.ParseAddress(draft.OwnerEmail); err != nil {
		return &domain.ValidationError{Field: "ownerEmail", Reason: "must be a valid email address"}
	}
	if len(draft.OwnerPassword) < minOwnerPasswordLen {
		return &domain.ValidationError{Field: "ownerPassword", Reason: "must be at least 6 characters"}
	}
	return nil
}

// validateUpdate checks operator input for an update, including the
// direct status edit which is enum-checked but not policy-checked.
func validateUpdate(draft domain.TenantDraft) error {
	if err := validateCommon(draft); err != nil {
		return err
	}
	if draft.Status != "" && !draft.Status.Known() {
		return &domain.ValidationError{Field: "status", Reason: "must be one of trial, active, suspended, expired"}
	}
	return nil
}

func validateCommon(draft domain.TenantDraft) error {
	if strings.TrimSpace(draft.Name) == "" {
		return &domain.ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if !subdomainPattern.MatchString(draft.Subdomain) {
		return &domain.ValidationError{Field: "subdomain", Reason: "must match [a-z0-9-]+"}
	}
	if draft.Plan != "" && !draft.Plan.Known() {
		return &domain.ValidationError{Field: "plan", Reason: "must be one of free, basic, pro, enterprise"}
	}
	return nil
}
