package platform

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/opsdeck/tenantctl/internal/domain"
)

// Compile-time check: Modules implements domain.ModuleRegistry.
var _ domain.ModuleRegistry = (*Modules)(nil)

// Modules is the HTTP adapter for the module registry service.
type Modules struct {
	client *Client
}

// NewModules creates the module registry adapter on the given base URL.
func NewModules(baseURL string) *Modules {
	return &Modules{client: NewClient("modules", baseURL)}
}

// modulePayload is a catalog definition on the wire. The per-tenant
// endpoint returns the same shape with the enablement fields set.
type modulePayload struct {
	Code           string     `json:"code"`
	Name           string     `json:"name"`
	Description    string     `json:"description"`
	Category       string     `json:"category"`
	RequiredPlan   string     `json:"requiredPlan"`
	Dependencies   []string   `json:"dependencies"`
	DefaultEnabled bool       `json:"defaultEnabled"`
	Status         string     `json:"status"`
	Enabled        bool       `json:"enabled"`
	EnabledAt      *time.Time `json:"enabledAt"`
}

func (p modulePayload) toDefinition() domain.ModuleDefinition {
	return domain.ModuleDefinition{
		Code:           p.Code,
		Name:           p.Name,
		Description:    p.Description,
		Category:       p.Category,
		RequiredPlan:   domain.Plan(p.RequiredPlan),
		Dependencies:   p.Dependencies,
		DefaultEnabled: p.DefaultEnabled,
		Status:         domain.ModuleStatus(p.Status),
	}
}

func (p modulePayload) toEntitlement() domain.Entitlement {
	return domain.Entitlement{
		Module:    p.toDefinition(),
		Enabled:   p.Enabled,
		EnabledAt: p.EnabledAt,
	}
}

func (m *Modules) Definitions(ctx context.Context, sess domain.Session) ([]domain.ModuleDefinition, error) {
	const op = "fetching module catalog"
	payloads, err := m.fetch(ctx, sess, "/api/modules/definitions", op)
	if err != nil {
		return nil, err
	}
	defs := make([]domain.ModuleDefinition, 0, len(payloads))
	for _, p := range payloads {
		defs = append(defs, p.toDefinition())
	}
	return defs, nil
}

func (m *Modules) TenantModules(ctx context.Context, sess domain.Session, tenantID string) ([]domain.Entitlement, error) {
	const op = "fetching tenant modules"
	payloads, err := m.fetch(ctx, sess, "/api/modules/tenant/"+tenantID, op)
	if err != nil {
		return nil, err
	}
	entitlements := make([]domain.Entitlement, 0, len(payloads))
	for _, p := range payloads {
		entitlements = append(entitlements, p.toEntitlement())
	}
	return entitlements, nil
}

// Toggle flips one module and re-reads the tenant's entitlements: the
// registry's toggle response only acknowledges, the authoritative record
// comes from the follow-up read.
func (m *Modules) Toggle(ctx context.Context, sess domain.Session, tenantID, code string, enabled bool) (domain.Entitlement, error) {
	const op = "toggling module"
	body := struct {
		Enabled bool `json:"enabled"`
	}{Enabled: enabled}

	resp, err := m.client.do(ctx, http.MethodPost, "/api/modules/tenant/"+tenantID+"/"+code+"/toggle", sess.Token, body)
	if err != nil {
		return domain.Entitlement{}, failure(op, err)
	}
	if resp.status >= http.StatusBadRequest {
		return domain.Entitlement{}, statusFailure(op, resp, domain.ErrModuleNotFound)
	}

	entitlements, err := m.TenantModules(ctx, sess, tenantID)
	if err != nil {
		return domain.Entitlement{}, err
	}
	for _, e := range entitlements {
		if e.Module.Code == code {
			return e, nil
		}
	}
	return domain.Entitlement{}, domain.ErrModuleNotFound
}

// usagePayload is one row of the registry's per-module usage rollup.
type usagePayload struct {
	ModuleCode  string     `json:"moduleCode"`
	Name        string     `json:"name"`
	Category    string     `json:"category"`
	TenantCount int        `json:"tenantCount"`
	TotalUsage  int        `json:"totalUsage"`
	LastUsed    *time.Time `json:"lastUsed"`
}

func (m *Modules) Usage(ctx context.Context, sess domain.Session) ([]domain.ModuleUsage, error) {
	const op = "fetching module usage"
	resp, err := m.client.do(ctx, http.MethodGet, "/api/modules/usage", sess.Token, nil)
	if err != nil {
		return nil, failure(op, err)
	}
	if resp.status >= http.StatusBadRequest {
		return nil, statusFailure(op, resp, domain.ErrModuleNotFound)
	}

	var body struct {
		Usage []usagePayload `json:"usage"`
	}
	if err := json.Unmarshal(resp.body, &body); err != nil {
		return nil, failure(op, err)
	}
	usage := make([]domain.ModuleUsage, 0, len(body.Usage))
	for _, p := range body.Usage {
		usage = append(usage, domain.ModuleUsage{
			ModuleCode:  p.ModuleCode,
			Name:        p.Name,
			Category:    p.Category,
			TenantCount: p.TenantCount,
			TotalUsage:  p.TotalUsage,
			LastUsed:    p.LastUsed,
		})
	}
	return usage, nil
}

func (m *Modules) fetch(ctx context.Context, sess domain.Session, path, op string) ([]modulePayload, error) {
	resp, err := m.client.do(ctx, http.MethodGet, path, sess.Token, nil)
	if err != nil {
		return nil, failure(op, err)
	}
	if resp.status >= http.StatusBadRequest {
		return nil, statusFailure(op, resp, domain.ErrModuleNotFound)
	}

	var body struct {
		Modules []modulePayload `json:"modules"`
	}
	if err := json.Unmarshal(resp.body, &body); err != nil {
		return nil, failure(op, err)
	}
	return body.Modules, nil
}
