package platform_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/opsdeck/tenantctl/internal/adapter/platform"
	"github.com/opsdeck/tenantctl/internal/domain"
)

func authServer(role string) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		if body.Password != "hunter22" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"message": "Invalid credentials"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"token": "tok-abc",
			"user":  map[string]string{"_id": "u-1", "email": body.Email, "role": role},
		})
	})
	mux.HandleFunc("/api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-abc" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"message": "Invalid token"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"user": map[string]string{"_id": "u-1", "email": "root@platform.test", "role": role},
		})
	})
	return httptest.NewServer(mux)
}

func TestAuth_LoginSuperadmin(t *testing.T) {
	srv := authServer("superadmin")
	defer srv.Close()

	s, err := platform.NewAuth(srv.URL).Login(context.Background(), "root@platform.test", "hunter22")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Token != "tok-abc" || s.UserID != "u-1" || !s.Superadmin() {
		t.Errorf("session = %+v", s)
	}
}

func TestAuth_LoginRejectsNonSuperadmin(t *testing.T) {
	srv := authServer("tenant_admin")
	defer srv.Close()

	_, err := platform.NewAuth(srv.URL).Login(context.Background(), "admin@acme.com", "hunter22")
	if !errors.Is(err, domain.ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestAuth_LoginBadCredentials(t *testing.T) {
	srv := authServer("superadmin")
	defer srv.Close()

	_, err := platform.NewAuth(srv.URL).Login(context.Background(), "root@platform.test", "wrong")
	if !errors.Is(err, domain.ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestAuth_ResolveToken(t *testing.T) {
	srv := authServer("superadmin")
	defer srv.Close()

	s, err := platform.NewAuth(srv.URL).Resolve(context.Background(), "tok-abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Email != "root@platform.test" || s.Token != "tok-abc" {
		t.Errorf("session = %+v", s)
	}
}

func TestAuth_ResolveInvalidToken(t *testing.T) {
	srv := authServer("superadmin")
	defer srv.Close()

	_, err := platform.NewAuth(srv.URL).Resolve(context.Background(), "expired")
	if !errors.Is(err, domain.ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated, got %v", err)
	}
}
