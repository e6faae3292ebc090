package platform

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/opsdeck/tenantctl/internal/domain"
)

// Compile-time check: Billing implements domain.BillingService.
var _ domain.BillingService = (*Billing)(nil)

// Billing is the HTTP adapter for the billing service.
type Billing struct {
	client *Client
}

// NewBilling creates the billing service adapter on the given base URL.
func NewBilling(baseURL string) *Billing {
	return &Billing{client: NewClient("billing", baseURL)}
}

type invoicePayload struct {
	MongoID       string     `json:"_id"`
	ID            string     `json:"id"`
	InvoiceNumber string     `json:"invoiceNumber"`
	Plan          string     `json:"plan"`
	Total         float64    `json:"total"`
	Status        string     `json:"status"`
	PeriodStart   *time.Time `json:"periodStart"`
	PeriodEnd     *time.Time `json:"periodEnd"`
	PaidAt        *time.Time `json:"paidAt"`
}

func (b *Billing) Invoices(ctx context.Context, sess domain.Session, tenantID string) ([]domain.Invoice, error) {
	const op = "fetching invoices"
	path := "/api/billing/invoices" + query(map[string]string{"tenantId": tenantID})

	resp, err := b.client.do(ctx, http.MethodGet, path, sess.Token, nil)
	if err != nil {
		return nil, failure(op, err)
	}
	if resp.status >= http.StatusBadRequest {
		return nil, statusFailure(op, resp, domain.ErrTenantNotFound)
	}

	// The billing service wraps the list as "data"; accept "invoices"
	// as well.
	var body struct {
		Data     []invoicePayload `json:"data"`
		Invoices []invoicePayload `json:"invoices"`
	}
	if err := json.Unmarshal(resp.body, &body); err != nil {
		return nil, failure(op, err)
	}
	payloads := body.Data
	if payloads == nil {
		payloads = body.Invoices
	}

	invoices := make([]domain.Invoice, 0, len(payloads))
	for _, p := range payloads {
		id := p.MongoID
		if id == "" {
			id = p.ID
		}
		invoices = append(invoices, domain.Invoice{
			ID:            id,
			InvoiceNumber: p.InvoiceNumber,
			Plan:          domain.Plan(p.Plan),
			Total:         p.Total,
			Status:        p.Status,
			PeriodStart:   p.PeriodStart,
			PeriodEnd:     p.PeriodEnd,
			PaidAt:        p.PaidAt,
		})
	}
	return invoices, nil
}
