package domain_test

import (
	"testing"

	"github.com/opsdeck/tenantctl/internal/domain"
)

func TestGroupByCategory(t *testing.T) {
	ents := []domain.Entitlement{
		{Module: domain.ModuleDefinition{Code: "products", Category: "ecommerce"}},
		{Module: domain.ModuleDefinition{Code: "blog", Category: "content"}},
		{Module: domain.ModuleDefinition{Code: "cart", Category: "ecommerce"}},
		{Module: domain.ModuleDefinition{Code: "seo", Category: "marketing"}},
	}

	groups := domain.GroupByCategory(ents)

	wantOrder := []string{"content", "ecommerce", "marketing"}
	if len(groups) != len(wantOrder) {
		t.Fatalf("got %d groups, want %d", len(groups), len(wantOrder))
	}
	for i, want := range wantOrder {
		if groups[i].Category != want {
			t.Errorf("group[%d] = %q, want %q", i, groups[i].Category, want)
		}
	}

	// Module order within a category is preserved.
	ecommerce := groups[1]
	if ecommerce.Modules[0].Module.Code != "products" || ecommerce.Modules[1].Module.Code != "cart" {
		t.Errorf("ecommerce modules out of order: %+v", ecommerce.Modules)
	}
}

func TestGroupByCategory_Empty(t *testing.T) {
	if groups := domain.GroupByCategory(nil); len(groups) != 0 {
		t.Errorf("got %d groups, want 0", len(groups))
	}
}
