package domain_test

import (
	"testing"

	"github.com/opsdeck/tenantctl/internal/domain"
)

func TestDeriveURL_PathBased(t *testing.T) {
	cases := []struct {
		name      string
		base      string
		subdomain string
		want      string
	}{
		{"plain host", "https://shop.example.com", "acme", "https://shop.example.com/acme"},
		{"trailing slash stripped", "https://shop.example.com/", "acme", "https://shop.example.com/acme"},
		{"port preserved", "http://localhost:3001", "acme", "http://localhost:3001/acme"},
		{"port and path", "http://localhost:3001/app/", "acme", "http://localhost:3001/app/acme"},
		{"existing path", "https://shop.example.com/store", "globex", "https://shop.example.com/store/globex"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := domain.DeriveURL(tc.base, tc.subdomain, "", "")
			if got != tc.want {
				t.Errorf("DeriveURL(%q, %q) = %q, want %q", tc.base, tc.subdomain, got, tc.want)
			}
		})
	}
}

func TestDeriveURL_OverrideWins(t *testing.T) {
	got := domain.DeriveURL("https://shop.example.com", "acme", "", "https://totally.custom/path")
	if got != "https://totally.custom/path" {
		t.Errorf("override not returned verbatim, got %q", got)
	}
}

func TestDeriveURL_BareBaseIsNotAnOverride(t *testing.T) {
	// The edit form round-trips the bare base URL when the operator never
	// touched the field; that must trigger re-derivation, not stick.
	got := domain.DeriveURL("https://shop.example.com", "acme", "", "https://shop.example.com")
	if got != "https://shop.example.com/acme" {
		t.Errorf("got %q, want derived URL", got)
	}

	got = domain.DeriveURL("https://shop.example.com/", "acme", "", "https://shop.example.com")
	if got != "https://shop.example.com/acme" {
		t.Errorf("trailing slash base: got %q, want derived URL", got)
	}
}

func TestDeriveURL_RoundTrip(t *testing.T) {
	// Re-deriving with the prior output as override returns it unchanged.
	bases := []string{
		"https://shop.example.com",
		"http://localhost:3001",
		"not a url at all",
	}
	for _, base := range bases {
		first := domain.DeriveURL(base, "acme", "", "")
		second := domain.DeriveURL(base, "acme", "", first)
		if first != second {
			t.Errorf("base %q: round trip changed %q to %q", base, first, second)
		}
	}
}

func TestDeriveURL_CustomDomainPrecedence(t *testing.T) {
	got := domain.DeriveURL("https://shop.example.com", "acme", "https://acme.com", "")
	if got != "https://acme.com" {
		t.Errorf("got %q, want custom domain as-is", got)
	}
}

func TestDeriveURL_NoSubdomainNoDomain(t *testing.T) {
	if got := domain.DeriveURL("https://shop.example.com", "", "", ""); got != "" {
		t.Errorf("got %q, want empty string", got)
	}
}

func TestDeriveURL_MalformedBaseFallsBack(t *testing.T) {
	cases := []struct {
		name string
		base string
		want string
	}{
		{"no scheme", "shop.example.com/", "shop.example.com/acme"},
		{"garbage", "://///", "://///acme"},
		{"control char", "http://bad\x7fhost", "http://bad\x7fhost/acme"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := domain.DeriveURL(tc.base, "acme", "", "")
			if got != tc.want {
				t.Errorf("DeriveURL(%q, \"acme\") = %q, want %q", tc.base, got, tc.want)
			}
		})
	}
}
