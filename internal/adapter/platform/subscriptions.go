package platform

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/opsdeck/tenantctl/internal/domain"
)

// Compile-time check: Subscriptions implements domain.SubscriptionService.
var _ domain.SubscriptionService = (*Subscriptions)(nil)

// Subscriptions is the HTTP adapter for the subscription service.
type Subscriptions struct {
	client *Client
}

// NewSubscriptions creates the subscription service adapter on the given
// base URL.
func NewSubscriptions(baseURL string) *Subscriptions {
	return &Subscriptions{client: NewClient("subscriptions", baseURL)}
}

type subscriptionPayload struct {
	BillingCycle  string     `json:"billingCycle"`
	StartDate     *time.Time `json:"startDate"`
	EndDate       *time.Time `json:"endDate"`
	DaysRemaining *int       `json:"daysRemaining"`
	AutoRenew     bool       `json:"autoRenew"`
	PaymentStatus string     `json:"paymentStatus"`
}

func (s *Subscriptions) Status(ctx context.Context, sess domain.Session, tenantID string) (domain.SubscriptionStatus, error) {
	const op = "fetching subscription status"
	resp, err := s.client.do(ctx, http.MethodGet, "/api/subscriptions/status/"+tenantID, sess.Token, nil)
	if err != nil {
		return domain.SubscriptionStatus{}, failure(op, err)
	}
	if resp.status >= http.StatusBadRequest {
		return domain.SubscriptionStatus{}, statusFailure(op, resp, domain.ErrTenantNotFound)
	}

	var body struct {
		Subscription subscriptionPayload `json:"subscription"`
	}
	if err := json.Unmarshal(resp.body, &body); err != nil {
		return domain.SubscriptionStatus{}, failure(op, err)
	}
	p := body.Subscription
	return domain.SubscriptionStatus{
		BillingCycle:  p.BillingCycle,
		StartDate:     p.StartDate,
		EndDate:       p.EndDate,
		DaysRemaining: p.DaysRemaining,
		AutoRenew:     p.AutoRenew,
		PaymentStatus: p.PaymentStatus,
	}, nil
}

func (s *Subscriptions) Suspend(ctx context.Context, sess domain.Session, tenantID string) error {
	return s.command(ctx, sess, "/api/subscriptions/suspend", tenantID, "suspending tenant")
}

func (s *Subscriptions) Reactivate(ctx context.Context, sess domain.Session, tenantID string) error {
	return s.command(ctx, sess, "/api/subscriptions/reactivate", tenantID, "reactivating tenant")
}

func (s *Subscriptions) command(ctx context.Context, sess domain.Session, path, tenantID, op string) error {
	body := struct {
		TenantID string `json:"tenantId"`
	}{TenantID: tenantID}

	resp, err := s.client.do(ctx, http.MethodPost, path, sess.Token, body)
	if err != nil {
		return failure(op, err)
	}
	if resp.status >= http.StatusBadRequest {
		return statusFailure(op, resp, domain.ErrTenantNotFound)
	}
	return nil
}
