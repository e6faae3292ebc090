package domain

import (
	"sort"
	"time"
)

// ModuleStatus is the lifecycle of a module definition itself, independent
// of any tenant's entitlement to it.
type ModuleStatus string

const (
	ModuleActive     ModuleStatus = "active"
	ModuleDeprecated ModuleStatus = "deprecated"
)

// ModuleDefinition is a platform-wide feature unit shared by all tenants.
type ModuleDefinition struct {
	Code           string
	Name           string
	Description    string
	Category       string
	RequiredPlan   Plan
	Dependencies   []string
	DefaultEnabled bool
	Status         ModuleStatus
}

// Entitlement is the resolved enabled/disabled state of a module for a
// specific tenant. EnabledAt is set on the transition to enabled and
// cleared on disable.
type Entitlement struct {
	Module    ModuleDefinition
	Enabled   bool
	EnabledAt *time.Time
}

// ModuleUsage is a platform-wide usage rollup for one module: how many
// tenants have it enabled and when it was last exercised. Display only;
// the registry computes it.
type ModuleUsage struct {
	ModuleCode  string
	Name        string
	Category    string
	TenantCount int
	TotalUsage  int
	LastUsed    *time.Time
}

// EntitlementGroup is a category bucket of entitlements, the shape the
// console presents them in.
type EntitlementGroup struct {
	Category string
	Modules  []Entitlement
}

// GroupByCategory buckets entitlements by module category, categories
// sorted alphabetically and module order within a category preserved.
func GroupByCategory(entitlements []Entitlement) []EntitlementGroup {
	buckets := make(map[string][]Entitlement)
	for _, e := range entitlements {
		buckets[e.Module.Category] = append(buckets[e.Module.Category], e)
	}

	categories := make([]string, 0, len(buckets))
	for category := range buckets {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	groups := make([]EntitlementGroup, 0, len(categories))
	for _, category := range categories {
		groups = append(groups, EntitlementGroup{
			Category: category,
			Modules:  buckets[category],
		})
	}
	return groups
}
