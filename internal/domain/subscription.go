package domain

import "time"

// SubscriptionStatus is the billing snapshot for a tenant, recomputed by
// the subscription service on every lifecycle query. DaysRemaining is
// derived server-side and absent for open-ended subscriptions.
type SubscriptionStatus struct {
	BillingCycle  string
	StartDate     *time.Time
	EndDate       *time.Time
	DaysRemaining *int
	AutoRenew     bool
	PaymentStatus string
}

// Invoice is a billing record, pass-through display only.
type Invoice struct {
	ID            string
	InvoiceNumber string
	Plan          Plan
	Total         float64
	Status        string
	PeriodStart   *time.Time
	PeriodEnd     *time.Time
	PaidAt        *time.Time
}

// DashboardStats is the platform-wide summary shown on the console
// landing page, computed by the tenant service.
type DashboardStats struct {
	TotalTenants  int
	ActiveTenants int
	TotalUsers    int
	TotalRevenue  float64
}
