package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/opsdeck/tenantctl/internal/domain"
)

// Compile-time check: Tenants implements domain.TenantDirectory.
var _ domain.TenantDirectory = (*Tenants)(nil)

// Tenants is the HTTP adapter for the tenant service.
type Tenants struct {
	client *Client
}

// NewTenants creates the tenant service adapter on the given base URL.
func NewTenants(baseURL string) *Tenants {
	return &Tenants{client: NewClient("tenants", baseURL)}
}

// tenantPayload is the tenant record on the wire. The backend emits
// Mongo-style "_id"; "id" is accepted as well for forward compatibility.
type tenantPayload struct {
	MongoID      string          `json:"_id"`
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Subdomain    string          `json:"subdomain"`
	CustomDomain string          `json:"customDomain"`
	FrontendURL  string          `json:"frontendUrl"`
	Plan         string          `json:"plan"`
	Status       string          `json:"status"`
	Owner        ownerPayload    `json:"owner"`
	Settings     json.RawMessage `json:"settings"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

type ownerPayload struct {
	MongoID string `json:"_id"`
	ID      string `json:"id"`
	Email   string `json:"email"`
}

func (p tenantPayload) toDomain() domain.Tenant {
	id := p.MongoID
	if id == "" {
		id = p.ID
	}
	ownerID := p.Owner.MongoID
	if ownerID == "" {
		ownerID = p.Owner.ID
	}
	return domain.Tenant{
		ID:           id,
		Name:         p.Name,
		Subdomain:    p.Subdomain,
		CustomDomain: p.CustomDomain,
		FrontendURL:  p.FrontendURL,
		Plan:         domain.Plan(p.Plan),
		Status:       domain.Status(p.Status),
		Owner:        domain.Owner{ID: ownerID, Email: p.Owner.Email},
		Settings:     p.Settings,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

// draftPayload is the mutation body for create and update.
type draftPayload struct {
	Name          string `json:"name"`
	Subdomain     string `json:"subdomain"`
	CustomDomain  string `json:"customDomain,omitempty"`
	FrontendURL   string `json:"frontendUrl,omitempty"`
	Plan          string `json:"plan,omitempty"`
	Status        string `json:"status,omitempty"`
	OwnerEmail    string `json:"ownerEmail,omitempty"`
	OwnerPassword string `json:"ownerPassword,omitempty"`
}

func toDraftPayload(draft domain.TenantDraft) draftPayload {
	return draftPayload{
		Name:          draft.Name,
		Subdomain:     draft.Subdomain,
		CustomDomain:  draft.CustomDomain,
		FrontendURL:   draft.FrontendURL,
		Plan:          string(draft.Plan),
		Status:        string(draft.Status),
		OwnerEmail:    draft.OwnerEmail,
		OwnerPassword: draft.OwnerPassword,
	}
}

func (t *Tenants) List(ctx context.Context, sess domain.Session, filter domain.ListFilter) ([]domain.Tenant, error) {
	const op = "listing tenants"
	path := "/api/saas/tenants" + query(map[string]string{
		"status": filter.Status,
		"plan":   filter.Plan,
		"search": filter.Search,
	})

	resp, err := t.client.do(ctx, http.MethodGet, path, sess.Token, nil)
	if err != nil {
		return nil, failure(op, err)
	}
	if resp.status >= http.StatusBadRequest {
		return nil, statusFailure(op, resp, domain.ErrTenantNotFound)
	}

	// Some deployments wrap the list as "tenants", older ones as "data".
	var body struct {
		Tenants []tenantPayload `json:"tenants"`
		Data    []tenantPayload `json:"data"`
	}
	if err := json.Unmarshal(resp.body, &body); err != nil {
		return nil, failure(op, err)
	}
	payloads := body.Tenants
	if payloads == nil {
		payloads = body.Data
	}

	tenants := make([]domain.Tenant, 0, len(payloads))
	for _, p := range payloads {
		tenants = append(tenants, p.toDomain())
	}
	return tenants, nil
}

func (t *Tenants) Get(ctx context.Context, sess domain.Session, id string) (domain.Tenant, error) {
	return t.one(ctx, sess, http.MethodGet, "/api/saas/tenants/"+id, nil, "fetching tenant")
}

func (t *Tenants) Create(ctx context.Context, sess domain.Session, draft domain.TenantDraft) (domain.Tenant, error) {
	const op = "creating tenant"
	resp, err := t.client.do(ctx, http.MethodPost, "/api/saas/tenants", sess.Token, toDraftPayload(draft))
	if err != nil {
		return domain.Tenant{}, failure(op, err)
	}
	if resp.status == http.StatusConflict {
		return domain.Tenant{}, &domain.ConflictError{Field: "subdomain", Value: draft.Subdomain}
	}
	if resp.status >= http.StatusBadRequest {
		return domain.Tenant{}, statusFailure(op, resp, domain.ErrTenantNotFound)
	}
	return decodeTenant(resp.body, op)
}

func (t *Tenants) Update(ctx context.Context, sess domain.Session, id string, draft domain.TenantDraft) (domain.Tenant, error) {
	const op = "updating tenant"
	resp, err := t.client.do(ctx, http.MethodPut, "/api/saas/tenants/"+id, sess.Token, toDraftPayload(draft))
	if err != nil {
		return domain.Tenant{}, failure(op, err)
	}
	if resp.status == http.StatusConflict {
		return domain.Tenant{}, &domain.ConflictError{Field: "subdomain", Value: draft.Subdomain}
	}
	if resp.status >= http.StatusBadRequest {
		return domain.Tenant{}, statusFailure(op, resp, domain.ErrTenantNotFound)
	}
	return decodeTenant(resp.body, op)
}

func (t *Tenants) SetStatus(ctx context.Context, sess domain.Session, id string, status domain.Status) (domain.Tenant, error) {
	body := struct {
		Status string `json:"status"`
	}{Status: string(status)}
	return t.one(ctx, sess, http.MethodPut, "/api/saas/tenants/"+id+"/status", body, "setting tenant status")
}

func (t *Tenants) Stats(ctx context.Context, sess domain.Session) (domain.DashboardStats, error) {
	const op = "fetching dashboard stats"
	resp, err := t.client.do(ctx, http.MethodGet, "/api/saas/dashboard/stats", sess.Token, nil)
	if err != nil {
		return domain.DashboardStats{}, failure(op, err)
	}
	if resp.status >= http.StatusBadRequest {
		return domain.DashboardStats{}, statusFailure(op, resp, domain.ErrTenantNotFound)
	}

	var body struct {
		Stats struct {
			TotalTenants  int     `json:"totalTenants"`
			ActiveTenants int     `json:"activeTenants"`
			TotalUsers    int     `json:"totalUsers"`
			TotalRevenue  float64 `json:"totalRevenue"`
		} `json:"stats"`
	}
	if err := json.Unmarshal(resp.body, &body); err != nil {
		return domain.DashboardStats{}, failure(op, err)
	}
	return domain.DashboardStats{
		TotalTenants:  body.Stats.TotalTenants,
		ActiveTenants: body.Stats.ActiveTenants,
		TotalUsers:    body.Stats.TotalUsers,
		TotalRevenue:  body.Stats.TotalRevenue,
	}, nil
}

func (t *Tenants) one(ctx context.Context, sess domain.Session, method, path string, body any, op string) (domain.Tenant, error) {
	resp, err := t.client.do(ctx, method, path, sess.Token, body)
	if err != nil {
		return domain.Tenant{}, failure(op, err)
	}
	if resp.status >= http.StatusBadRequest {
		return domain.Tenant{}, statusFailure(op, resp, domain.ErrTenantNotFound)
	}
	return decodeTenant(resp.body, op)
}

func decodeTenant(buf []byte, op string) (domain.Tenant, error) {
	var body struct {
		Tenant tenantPayload `json:"tenant"`
	}
	if err := json.Unmarshal(buf, &body); err != nil {
		return domain.Tenant{}, &domain.ServiceError{Op: op, Message: fmt.Sprintf("malformed response: %v", err)}
	}
	return body.Tenant.toDomain(), nil
}
