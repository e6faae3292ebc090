package domain

import (
	"net/url"
	"strings"
)

// DeriveURL computes a tenant's public-facing URL.
//
// Precedence: an explicit operator override wins as long as it is not just
// the bare base URL; a custom domain is returned as-is (the platform never
// synthesizes a path for custom domains); otherwise the URL is derived by
// appending the subdomain as a path segment to the base URL, preserving an
// explicit port. With no subdomain either, no URL can be derived.
//
// A malformed base URL falls back to plain string concatenation. That is a
// normal branch, not an error path: local-development hosts are routinely
// unparseable. The fallback never fails for a non-empty subdomain.
//
// Feeding a prior result back in as override reproduces it unchanged: the
// override check short-circuits re-derivation.
func DeriveURL(base, subdomain, customDomain, override string) string {
	bare := strings.TrimSuffix(strings.TrimSpace(base), "/")

	if o := strings.TrimSpace(override); o != "" && o != bare {
		return o
	}
	if d := strings.TrimSpace(customDomain); d != "" {
		return d
	}
	if subdomain == "" {
		return ""
	}

	u, err := url.Parse(strings.TrimSpace(base))
	if err != nil || u.Scheme == "" || u.Hostname() == "" {
		return bare + "/" + subdomain
	}

	path := strings.TrimSuffix(u.Path, "/")
	port := ""
	if p := u.Port(); p != "" {
		port = ":" + p
	}
	return u.Scheme + "://" + u.Hostname() + port + path + "/" + subdomain
}
