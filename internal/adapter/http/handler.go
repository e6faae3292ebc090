package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/opsdeck/tenantctl/internal/app"
	"github.com/opsdeck/tenantctl/internal/domain"
)

const timeFormat = "2006-01-02T15:04:05Z"

// TenantResponse is the API representation of a tenant.
type TenantResponse struct {
	ID           string          `json:"id" doc:"Unique identifier"`
	Name         string          `json:"name" doc:"Display name"`
	Subdomain    string          `json:"subdomain" doc:"Storefront path segment"`
	CustomDomain string          `json:"customDomain,omitempty" doc:"Dedicated domain, if attached"`
	FrontendURL  string          `json:"frontendUrl" doc:"Resolved storefront URL"`
	Plan         string          `json:"plan" doc:"Subscription plan tier"`
	Status       string          `json:"status" doc:"Lifecycle state"`
	OwnerEmail   string          `json:"ownerEmail,omitempty" doc:"Owner account email"`
	Settings     json.RawMessage `json:"settings,omitempty" doc:"Tenant settings blob, opaque to this API"`
	CreatedAt    string          `json:"createdAt,omitempty" doc:"Creation timestamp (ISO 8601)"`
	UpdatedAt    string          `json:"updatedAt,omitempty" doc:"Last update timestamp (ISO 8601)"`
}

func toTenantResponse(t domain.Tenant) TenantResponse {
	resp := TenantResponse{
		ID:           t.ID,
		Name:         t.Name,
		Subdomain:    t.Subdomain,
		CustomDomain: t.CustomDomain,
		FrontendURL:  t.FrontendURL,
		Plan:         string(t.Plan),
		Status:       string(t.Status),
		OwnerEmail:   t.Owner.Email,
		Settings:     t.Settings,
	}
	if !t.CreatedAt.IsZero() {
		resp.CreatedAt = t.CreatedAt.UTC().Format(timeFormat)
	}
	if !t.UpdatedAt.IsZero() {
		resp.UpdatedAt = t.UpdatedAt.UTC().Format(timeFormat)
	}
	return resp
}

// SubscriptionResponse is the billing snapshot for a tenant.
type SubscriptionResponse struct {
	BillingCycle  string `json:"billingCycle,omitempty" doc:"monthly or yearly"`
	StartDate     string `json:"startDate,omitempty" doc:"Period start (ISO 8601)"`
	EndDate       string `json:"endDate,omitempty" doc:"Period end (ISO 8601)"`
	DaysRemaining *int   `json:"daysRemaining,omitempty" doc:"Days until period end, absent for open-ended"`
	AutoRenew     bool   `json:"autoRenew" doc:"Whether the subscription renews automatically"`
	PaymentStatus string `json:"paymentStatus,omitempty" doc:"Latest payment state"`
}

func toSubscriptionResponse(s *domain.SubscriptionStatus) *SubscriptionResponse {
	if s == nil {
		return nil
	}
	resp := &SubscriptionResponse{
		BillingCycle:  s.BillingCycle,
		DaysRemaining: s.DaysRemaining,
		AutoRenew:     s.AutoRenew,
		PaymentStatus: s.PaymentStatus,
	}
	if s.StartDate != nil {
		resp.StartDate = s.StartDate.UTC().Format(timeFormat)
	}
	if s.EndDate != nil {
		resp.EndDate = s.EndDate.UTC().Format(timeFormat)
	}
	return resp
}

// ModuleResponse is one module with its enablement state for a tenant.
type ModuleResponse struct {
	Code           string   `json:"code" doc:"Stable module identifier"`
	Name           string   `json:"name" doc:"Display name"`
	Description    string   `json:"description,omitempty" doc:"Short description"`
	Category       string   `json:"category" doc:"Catalog category"`
	RequiredPlan   string   `json:"requiredPlan" doc:"Minimum plan tier"`
	Dependencies   []string `json:"dependencies,omitempty" doc:"Module codes that must be enabled first"`
	DefaultEnabled bool     `json:"defaultEnabled" doc:"Enabled for new tenants"`
	Status         string   `json:"status,omitempty" doc:"Catalog state (active or deprecated)"`
	Enabled        bool     `json:"enabled" doc:"Whether the tenant has it enabled"`
	EnabledAt      string   `json:"enabledAt,omitempty" doc:"When it was enabled (ISO 8601)"`
}

func toModuleResponse(e domain.Entitlement) ModuleResponse {
	resp := ModuleResponse{
		Code:           e.Module.Code,
		Name:           e.Module.Name,
		Description:    e.Module.Description,
		Category:       e.Module.Category,
		RequiredPlan:   string(e.Module.RequiredPlan),
		Dependencies:   e.Module.Dependencies,
		DefaultEnabled: e.Module.DefaultEnabled,
		Status:         string(e.Module.Status),
		Enabled:        e.Enabled,
	}
	if e.EnabledAt != nil {
		resp.EnabledAt = e.EnabledAt.UTC().Format(timeFormat)
	}
	return resp
}

func toDefinitionResponse(d domain.ModuleDefinition) ModuleResponse {
	return toModuleResponse(domain.Entitlement{Module: d})
}

// ModuleGroupResponse is a category with its modules, in catalog order.
type ModuleGroupResponse struct {
	Category string           `json:"category" doc:"Catalog category"`
	Modules  []ModuleResponse `json:"modules" doc:"Modules in this category"`
}

// InvoiceResponse is a billing record, display only.
type InvoiceResponse struct {
	ID            string  `json:"id" doc:"Unique identifier"`
	InvoiceNumber string  `json:"invoiceNumber" doc:"Human-readable invoice number"`
	Plan          string  `json:"plan" doc:"Plan billed"`
	Total         float64 `json:"total" doc:"Invoice total"`
	Status        string  `json:"status" doc:"Payment state"`
	PeriodStart   string  `json:"periodStart,omitempty" doc:"Billing period start (ISO 8601)"`
	PeriodEnd     string  `json:"periodEnd,omitempty" doc:"Billing period end (ISO 8601)"`
	PaidAt        string  `json:"paidAt,omitempty" doc:"Payment timestamp (ISO 8601)"`
}

func toInvoiceResponse(inv domain.Invoice) InvoiceResponse {
	resp := InvoiceResponse{
		ID:            inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		Plan:          string(inv.Plan),
		Total:         inv.Total,
		Status:        inv.Status,
	}
	if inv.PeriodStart != nil {
		resp.PeriodStart = inv.PeriodStart.UTC().Format(timeFormat)
	}
	if inv.PeriodEnd != nil {
		resp.PeriodEnd = inv.PeriodEnd.UTC().Format(timeFormat)
	}
	if inv.PaidAt != nil {
		resp.PaidAt = inv.PaidAt.UTC().Format(timeFormat)
	}
	return resp
}

// AuditEventResponse is one entry of a tenant's action history.
type AuditEventResponse struct {
	Action     string `json:"action" doc:"What happened"`
	Actor      string `json:"actor" doc:"Operator email"`
	TenantID   string `json:"tenantId" doc:"Tenant acted on"`
	TenantName string `json:"tenantName,omitempty" doc:"Tenant name at the time"`
	Detail     string `json:"detail,omitempty" doc:"Extra context"`
	OccurredAt string `json:"occurredAt" doc:"Timestamp (ISO 8601)"`
}

// UserResponse is the authenticated operator identity.
type UserResponse struct {
	ID    string `json:"id" doc:"User identifier"`
	Email string `json:"email" doc:"Account email"`
	Role  string `json:"role" doc:"Account role"`
}

// draftFromBody maps a mutation request body to a domain draft.
type tenantBody struct {
	Name          string `json:"name" minLength:"1" maxLength:"255" doc:"Display name"`
	Subdomain     string `json:"subdomain" minLength:"1" maxLength:"100" pattern:"^[a-z0-9-]+$" doc:"Storefront path segment (lowercase)"`
	CustomDomain  string `json:"customDomain,omitempty" doc:"Dedicated domain"`
	FrontendURL   string `json:"frontendUrl,omitempty" doc:"Explicit storefront URL override"`
	Plan          string `json:"plan,omitempty" enum:"free,basic,pro,enterprise" doc:"Subscription plan tier"`
	Status        string `json:"status,omitempty" enum:"trial,active,suspended,expired" doc:"Direct status edit (update only)"`
	OwnerEmail    string `json:"ownerEmail,omitempty" format:"email" doc:"Owner account email (create only)"`
	OwnerPassword string `json:"ownerPassword,omitempty" minLength:"6" doc:"Owner account password (create only)"`
}

func (b tenantBody) toDraft() domain.TenantDraft {
	return domain.TenantDraft{
		Name:          b.Name,
		Subdomain:     b.Subdomain,
		CustomDomain:  b.CustomDomain,
		FrontendURL:   b.FrontendURL,
		Plan:          domain.Plan(b.Plan),
		Status:        domain.Status(b.Status),
		OwnerEmail:    b.OwnerEmail,
		OwnerPassword: b.OwnerPassword,
	}
}

// Handler bundles the application services behind the operator API.
type Handler struct {
	lifecycle   *app.LifecycleService
	entitlement *app.EntitlementService
	directory   *app.DirectoryService
	auth        domain.Authenticator
	audit       domain.AuditLog
}

// NewHandler creates the operator API handler.
func NewHandler(
	lifecycle *app.LifecycleService,
	entitlement *app.EntitlementService,
	directory *app.DirectoryService,
	auth domain.Authenticator,
	audit domain.AuditLog,
) *Handler {
	return &Handler{
		lifecycle:   lifecycle,
		entitlement: entitlement,
		directory:   directory,
		auth:        auth,
		audit:       audit,
	}
}

// Register adds all operator API routes to the Huma API.
func (h *Handler) Register(api huma.API) {
	h.registerAuth(api)
	h.registerTenants(api)
	h.registerSubscriptions(api)
	h.registerModules(api)
	h.registerBilling(api)
}

// --- Auth ---

type LoginInput struct {
	Body struct {
		Email    string `json:"email" format:"email" doc:"Operator email"`
		Password string `json:"password" minLength:"1" doc:"Operator password"`
	}
}

type LoginOutput struct {
	Body struct {
		Token string       `json:"token" doc:"Bearer token for subsequent requests"`
		User  UserResponse `json:"user"`
	}
}

type MeOutput struct {
	Body struct {
		User UserResponse `json:"user"`
	}
}

func (h *Handler) registerAuth(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/api/auth/login",
		Summary:     "Authenticate a platform operator",
		Tags:        []string{"Auth"},
	}, func(ctx context.Context, input *LoginInput) (*LoginOutput, error) {
		sess, err := h.auth.Login(ctx, input.Body.Email, input.Body.Password)
		if err != nil {
			return nil, toHumaError(err)
		}
		out := &LoginOutput{}
		out.Body.Token = sess.Token
		out.Body.User = UserResponse{ID: sess.UserID, Email: sess.Email, Role: string(sess.Role)}
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-current-user",
		Method:      http.MethodGet,
		Path:        "/api/auth/me",
		Summary:     "Return the authenticated operator",
		Tags:        []string{"Auth"},
	}, func(ctx context.Context, _ *struct{}) (*MeOutput, error) {
		sess := sessionFrom(ctx)
		out := &MeOutput{}
		out.Body.User = UserResponse{ID: sess.UserID, Email: sess.Email, Role: string(sess.Role)}
		return out, nil
	})
}

// --- Tenants ---

type ListTenantsInput struct {
	Status string `query:"status" required:"false" doc:"Filter by status, \"all\" or empty for everything"`
	Plan   string `query:"plan" required:"false" doc:"Filter by plan, \"all\" or empty for everything"`
	Search string `query:"search" required:"false" doc:"Case-insensitive name substring"`
}

type ListTenantsOutput struct {
	Body struct {
		Tenants []TenantResponse `json:"tenants"`
	}
}

type CreateTenantInput struct {
	Body tenantBody
}

type CreateTenantOutput struct {
	Body struct {
		Tenant TenantResponse `json:"tenant"`
	}
}

type GetTenantInput struct {
	ID string `path:"id" doc:"Tenant ID"`
}

type GetTenantOutput struct {
	Body struct {
		Tenant       TenantResponse        `json:"tenant"`
		Subscription *SubscriptionResponse `json:"subscription,omitempty"`
	}
}

type UpdateTenantInput struct {
	ID   string `path:"id" doc:"Tenant ID"`
	Body tenantBody
}

type SetStatusInput struct {
	ID   string `path:"id" doc:"Tenant ID"`
	Body struct {
		Status string `json:"status" enum:"trial,active,suspended,expired" doc:"New lifecycle state"`
	}
}

type TenantAuditInput struct {
	ID    string `path:"id" doc:"Tenant ID"`
	Limit int    `query:"limit" required:"false" default:"50" minimum:"1" maximum:"500" doc:"Max entries"`
}

type TenantAuditOutput struct {
	Body struct {
		Events []AuditEventResponse `json:"events"`
	}
}

type StatsOutput struct {
	Body struct {
		Stats struct {
			TotalTenants  int     `json:"totalTenants" doc:"All tenants"`
			ActiveTenants int     `json:"activeTenants" doc:"Tenants in active state"`
			TotalUsers    int     `json:"totalUsers" doc:"Users across all tenants"`
			TotalRevenue  float64 `json:"totalRevenue" doc:"Lifetime revenue"`
		} `json:"stats"`
	}
}

func (h *Handler) registerTenants(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-tenants",
		Method:      http.MethodGet,
		Path:        "/api/saas/tenants",
		Summary:     "List tenants with optional filters",
		Tags:        []string{"Tenants"},
	}, func(ctx context.Context, input *ListTenantsInput) (*ListTenantsOutput, error) {
		tenants, err := h.directory.List(ctx, sessionFrom(ctx), domain.ListFilter{
			Status: input.Status,
			Plan:   input.Plan,
			Search: input.Search,
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		out := &ListTenantsOutput{}
		out.Body.Tenants = make([]TenantResponse, len(tenants))
		for i, t := range tenants {
			out.Body.Tenants[i] = toTenantResponse(t)
		}
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "create-tenant",
		Method:      http.MethodPost,
		Path:        "/api/saas/tenants",
		Summary:     "Provision a new tenant",
		Tags:        []string{"Tenants"},
	}, func(ctx context.Context, input *CreateTenantInput) (*CreateTenantOutput, error) {
		tenant, err := h.lifecycle.Create(ctx, sessionFrom(ctx), input.Body.toDraft())
		if err != nil {
			return nil, toHumaError(err)
		}
		out := &CreateTenantOutput{}
		out.Body.Tenant = toTenantResponse(tenant)
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-tenant",
		Method:      http.MethodGet,
		Path:        "/api/saas/tenants/{id}",
		Summary:     "Get a tenant with its subscription snapshot",
		Tags:        []string{"Tenants"},
	}, func(ctx context.Context, input *GetTenantInput) (*GetTenantOutput, error) {
		view, err := h.lifecycle.Get(ctx, sessionFrom(ctx), input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		out := &GetTenantOutput{}
		out.Body.Tenant = toTenantResponse(view.Tenant)
		out.Body.Subscription = toSubscriptionResponse(view.Subscription)
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-tenant",
		Method:      http.MethodPut,
		Path:        "/api/saas/tenants/{id}",
		Summary:     "Update a tenant",
		Tags:        []string{"Tenants"},
	}, func(ctx context.Context, input *UpdateTenantInput) (*CreateTenantOutput, error) {
		tenant, err := h.lifecycle.Update(ctx, sessionFrom(ctx), input.ID, input.Body.toDraft())
		if err != nil {
			return nil, toHumaError(err)
		}
		out := &CreateTenantOutput{}
		out.Body.Tenant = toTenantResponse(tenant)
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "set-tenant-status",
		Method:      http.MethodPut,
		Path:        "/api/saas/tenants/{id}/status",
		Summary:     "Set a tenant's lifecycle state directly",
		Tags:        []string{"Tenants"},
	}, func(ctx context.Context, input *SetStatusInput) (*CreateTenantOutput, error) {
		tenant, err := h.lifecycle.SetStatus(ctx, sessionFrom(ctx), input.ID, domain.Status(input.Body.Status))
		if err != nil {
			return nil, toHumaError(err)
		}
		out := &CreateTenantOutput{}
		out.Body.Tenant = toTenantResponse(tenant)
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-tenant-audit",
		Method:      http.MethodGet,
		Path:        "/api/saas/tenants/{id}/audit",
		Summary:     "List the tenant's operator action history",
		Tags:        []string{"Tenants"},
	}, func(ctx context.Context, input *TenantAuditInput) (*TenantAuditOutput, error) {
		events, err := h.audit.ListByTenant(ctx, input.ID, input.Limit)
		if err != nil {
			return nil, toHumaError(err)
		}
		out := &TenantAuditOutput{}
		out.Body.Events = make([]AuditEventResponse, len(events))
		for i, e := range events {
			out.Body.Events[i] = AuditEventResponse{
				Action:     e.Action,
				Actor:      e.Actor,
				TenantID:   e.TenantID,
				TenantName: e.TenantName,
				Detail:     e.Detail,
				OccurredAt: e.OccurredAt.UTC().Format(timeFormat),
			}
		}
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-dashboard-stats",
		Method:      http.MethodGet,
		Path:        "/api/saas/dashboard/stats",
		Summary:     "Platform-wide dashboard summary",
		Tags:        []string{"Tenants"},
	}, func(ctx context.Context, _ *struct{}) (*StatsOutput, error) {
		stats, err := h.directory.Stats(ctx, sessionFrom(ctx))
		if err != nil {
			return nil, toHumaError(err)
		}
		out := &StatsOutput{}
		out.Body.Stats.TotalTenants = stats.TotalTenants
		out.Body.Stats.ActiveTenants = stats.ActiveTenants
		out.Body.Stats.TotalUsers = stats.TotalUsers
		out.Body.Stats.TotalRevenue = stats.TotalRevenue
		return out, nil
	})
}

// --- Subscriptions ---

type SubscriptionStatusInput struct {
	TenantID string `path:"tenantId" doc:"Tenant ID"`
}

type SubscriptionStatusOutput struct {
	Body struct {
		Subscription *SubscriptionResponse `json:"subscription"`
	}
}

type SubscriptionCommandInput struct {
	Body struct {
		TenantID string `json:"tenantId" minLength:"1" doc:"Tenant ID"`
	}
}

type TenantViewOutput struct {
	Body struct {
		Tenant       TenantResponse        `json:"tenant"`
		Subscription *SubscriptionResponse `json:"subscription,omitempty"`
	}
}

func (h *Handler) registerSubscriptions(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "get-subscription-status",
		Method:      http.MethodGet,
		Path:        "/api/subscriptions/status/{tenantId}",
		Summary:     "Get a tenant's subscription snapshot",
		Tags:        []string{"Subscriptions"},
	}, func(ctx context.Context, input *SubscriptionStatusInput) (*SubscriptionStatusOutput, error) {
		view, err := h.lifecycle.Get(ctx, sessionFrom(ctx), input.TenantID)
		if err != nil {
			return nil, toHumaError(err)
		}
		out := &SubscriptionStatusOutput{}
		out.Body.Subscription = toSubscriptionResponse(view.Subscription)
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "suspend-tenant",
		Method:      http.MethodPost,
		Path:        "/api/subscriptions/suspend",
		Summary:     "Suspend an active tenant",
		Tags:        []string{"Subscriptions"},
	}, func(ctx context.Context, input *SubscriptionCommandInput) (*TenantViewOutput, error) {
		view, err := h.lifecycle.Suspend(ctx, sessionFrom(ctx), input.Body.TenantID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return toViewOutput(view), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "reactivate-tenant",
		Method:      http.MethodPost,
		Path:        "/api/subscriptions/reactivate",
		Summary:     "Reactivate a suspended tenant",
		Tags:        []string{"Subscriptions"},
	}, func(ctx context.Context, input *SubscriptionCommandInput) (*TenantViewOutput, error) {
		view, err := h.lifecycle.Reactivate(ctx, sessionFrom(ctx), input.Body.TenantID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return toViewOutput(view), nil
	})
}

func toViewOutput(view app.TenantView) *TenantViewOutput {
	out := &TenantViewOutput{}
	out.Body.Tenant = toTenantResponse(view.Tenant)
	out.Body.Subscription = toSubscriptionResponse(view.Subscription)
	return out
}

// --- Modules ---

type DefinitionsOutput struct {
	Body struct {
		Modules []ModuleResponse `json:"modules"`
	}
}

type TenantModulesInput struct {
	TenantID string `path:"tenantId" doc:"Tenant ID"`
}

type TenantModulesOutput struct {
	Body struct {
		Modules []ModuleGroupResponse `json:"modules"`
	}
}

// ModuleUsageResponse is one row of the usage analytics table.
type ModuleUsageResponse struct {
	ModuleCode  string `json:"moduleCode" doc:"Module code"`
	Name        string `json:"name" doc:"Module name"`
	Category    string `json:"category" doc:"Module category"`
	TenantCount int    `json:"tenantCount" doc:"Tenants with the module enabled"`
	TotalUsage  int    `json:"totalUsage" doc:"Accumulated usage events"`
	LastUsed    string `json:"lastUsed,omitempty" doc:"Most recent use (ISO 8601)"`
}

type ModuleUsageOutput struct {
	Body struct {
		Usage []ModuleUsageResponse `json:"usage"`
	}
}

type ToggleModuleInput struct {
	TenantID string `path:"tenantId" doc:"Tenant ID"`
	Code     string `path:"code" doc:"Module code"`
	Body     struct {
		Enabled bool `json:"enabled" doc:"Desired state"`
	}
}

type ToggleModuleOutput struct {
	Body struct {
		Module ModuleResponse `json:"module"`
	}
}

func (h *Handler) registerModules(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-module-definitions",
		Method:      http.MethodGet,
		Path:        "/api/modules/definitions",
		Summary:     "List the platform module catalog",
		Tags:        []string{"Modules"},
	}, func(ctx context.Context, _ *struct{}) (*DefinitionsOutput, error) {
		defs, err := h.entitlement.Definitions(ctx, sessionFrom(ctx))
		if err != nil {
			return nil, toHumaError(err)
		}
		out := &DefinitionsOutput{}
		out.Body.Modules = make([]ModuleResponse, len(defs))
		for i, d := range defs {
			out.Body.Modules[i] = toDefinitionResponse(d)
		}
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-module-usage",
		Method:      http.MethodGet,
		Path:        "/api/modules/usage",
		Summary:     "List per-module usage across all tenants",
		Tags:        []string{"Modules"},
	}, func(ctx context.Context, _ *struct{}) (*ModuleUsageOutput, error) {
		usage, err := h.entitlement.Usage(ctx, sessionFrom(ctx))
		if err != nil {
			return nil, toHumaError(err)
		}
		out := &ModuleUsageOutput{}
		out.Body.Usage = make([]ModuleUsageResponse, len(usage))
		for i, u := range usage {
			out.Body.Usage[i] = ModuleUsageResponse{
				ModuleCode:  u.ModuleCode,
				Name:        u.Name,
				Category:    u.Category,
				TenantCount: u.TenantCount,
				TotalUsage:  u.TotalUsage,
			}
			if u.LastUsed != nil {
				out.Body.Usage[i].LastUsed = u.LastUsed.UTC().Format(timeFormat)
			}
		}
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-tenant-modules",
		Method:      http.MethodGet,
		Path:        "/api/modules/tenant/{tenantId}",
		Summary:     "List a tenant's module entitlements by category",
		Tags:        []string{"Modules"},
	}, func(ctx context.Context, input *TenantModulesInput) (*TenantModulesOutput, error) {
		groups, err := h.entitlement.List(ctx, sessionFrom(ctx), input.TenantID)
		if err != nil {
			return nil, toHumaError(err)
		}
		out := &TenantModulesOutput{}
		out.Body.Modules = make([]ModuleGroupResponse, len(groups))
		for i, g := range groups {
			modules := make([]ModuleResponse, len(g.Modules))
			for j, e := range g.Modules {
				modules[j] = toModuleResponse(e)
			}
			out.Body.Modules[i] = ModuleGroupResponse{Category: g.Category, Modules: modules}
		}
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "toggle-tenant-module",
		Method:      http.MethodPost,
		Path:        "/api/modules/tenant/{tenantId}/{code}/toggle",
		Summary:     "Enable or disable a module for a tenant",
		Tags:        []string{"Modules"},
	}, func(ctx context.Context, input *ToggleModuleInput) (*ToggleModuleOutput, error) {
		e, err := h.entitlement.Toggle(ctx, sessionFrom(ctx), input.TenantID, input.Code, input.Body.Enabled)
		if err != nil {
			return nil, toHumaError(err)
		}
		out := &ToggleModuleOutput{}
		out.Body.Module = toModuleResponse(e)
		return out, nil
	})
}

// --- Billing ---

type InvoicesInput struct {
	TenantID string `query:"tenantId" doc:"Tenant ID"`
}

type InvoicesOutput struct {
	Body struct {
		Invoices []InvoiceResponse `json:"invoices"`
	}
}

func (h *Handler) registerBilling(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-invoices",
		Method:      http.MethodGet,
		Path:        "/api/billing/invoices",
		Summary:     "List a tenant's invoices",
		Tags:        []string{"Billing"},
	}, func(ctx context.Context, input *InvoicesInput) (*InvoicesOutput, error) {
		invoices, err := h.directory.Invoices(ctx, sessionFrom(ctx), input.TenantID)
		if err != nil {
			return nil, toHumaError(err)
		}
		out := &InvoicesOutput{}
		out.Body.Invoices = make([]InvoiceResponse, len(invoices))
		for i, inv := range invoices {
			out.Body.Invoices[i] = toInvoiceResponse(inv)
		}
		return out, nil
	})
}

// toHumaError translates domain errors to Huma HTTP errors.
func toHumaError(err error) error {
	if errors.Is(err, domain.ErrUnauthenticated) {
		return huma.Error401Unauthorized(err.Error())
	}
	if errors.Is(err, domain.ErrTenantNotFound) || errors.Is(err, domain.ErrModuleNotFound) {
		return huma.Error404NotFound(err.Error())
	}

	var vErr *domain.ValidationError
	if errors.As(err, &vErr) {
		return huma.Error400BadRequest(vErr.Error())
	}

	var cErr *domain.ConflictError
	if errors.As(err, &cErr) {
		return huma.Error409Conflict(cErr.Error())
	}

	var pErr *domain.PreconditionError
	if errors.As(err, &pErr) {
		return huma.Error422UnprocessableEntity(pErr.Error())
	}

	var gErr *domain.PlanGateError
	if errors.As(err, &gErr) {
		return huma.Error422UnprocessableEntity(gErr.Error())
	}

	var dErr *domain.DependencyError
	if errors.As(err, &dErr) {
		return huma.Error422UnprocessableEntity(dErr.Error())
	}

	var sErr *domain.ServiceError
	if errors.As(err, &sErr) {
		// The downstream message goes to the operator verbatim.
		msg := sErr.Message
		if msg == "" {
			msg = "service unavailable"
		}
		return huma.Error502BadGateway(msg)
	}

	return huma.Error500InternalServerError("internal server error")
}
