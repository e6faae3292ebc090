package app

import (
	"context"
	"strings"

	"github.com/opsdeck/tenantctl/internal/domain"
)

// DirectoryService is the read-side query layer over the tenant
// collection, plus the invoice and dashboard pass-throughs. The filter
// contract is forwarded to the tenant service and mirrored locally, so
// the result honors it even if the service ignores a predicate.
type DirectoryService struct {
	directory domain.TenantDirectory
	billing   domain.BillingService
}

// NewDirectoryService creates the query layer over the given adapters.
func NewDirectoryService(directory domain.TenantDirectory, billing domain.BillingService) *DirectoryService {
	return &DirectoryService{directory: directory, billing: billing}
}

// List returns tenants matching every given predicate. A status or plan
// of "all" (or empty) matches everything; search is a case-insensitive
// substring match on the tenant name.
func (s *DirectoryService) List(ctx context.Context, sess domain.Session, filter domain.ListFilter) ([]domain.Tenant, error) {
	tenants, err := s.directory.List(ctx, sess, filter)
	if err != nil {
		return nil, err
	}

	out := tenants[:0]
	for _, t := range tenants {
		if matchesFilter(t, filter) {
			out = append(out, t)
		}
	}
	return out, nil
}

// Stats returns the platform-wide dashboard summary.
func (s *DirectoryService) Stats(ctx context.Context, sess domain.Session) (domain.DashboardStats, error) {
	return s.directory.Stats(ctx, sess)
}

// Invoices returns a tenant's billing records, display only.
func (s *DirectoryService) Invoices(ctx context.Context, sess domain.Session, tenantID string) ([]domain.Invoice, error) {
	return s.billing.Invoices(ctx, sess, tenantID)
}

func matchesFilter(t domain.Tenant, f domain.ListFilter) bool {
	if f.Status != "" && f.Status != "all" && string(t.Status) != f.Status {
		return false
	}
	if f.Plan != "" && f.Plan != "all" && string(t.Plan) != f.Plan {
		return false
	}
	if f.Search != "" && !strings.Contains(strings.ToLower(t.Name), strings.ToLower(f.Search)) {
		return false
	}
	return true
}
