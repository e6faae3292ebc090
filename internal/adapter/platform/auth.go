package platform

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/opsdeck/tenantctl/internal/domain"
)

// Compile-time check: Auth implements domain.Authenticator.
var _ domain.Authenticator = (*Auth)(nil)

// Auth is the HTTP adapter for the auth service. Only superadmin
// identities yield a session; everyone else is rejected uniformly.
type Auth struct {
	client *Client
}

// NewAuth creates the auth service adapter on the given base URL.
func NewAuth(baseURL string) *Auth {
	return &Auth{client: NewClient("auth", baseURL)}
}

type userPayload struct {
	MongoID string `json:"_id"`
	ID      string `json:"id"`
	Email   string `json:"email"`
	Role    string `json:"role"`
}

func (p userPayload) session(token string) domain.Session {
	id := p.MongoID
	if id == "" {
		id = p.ID
	}
	return domain.Session{
		Token:  token,
		UserID: id,
		Email:  p.Email,
		Role:   domain.Role(p.Role),
	}
}

func (a *Auth) Login(ctx context.Context, email, password string) (domain.Session, error) {
	const op = "logging in"
	body := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{Email: email, Password: password}

	resp, err := a.client.do(ctx, http.MethodPost, "/api/auth/login", "", body)
	if err != nil {
		return domain.Session{}, failure(op, err)
	}
	if resp.status >= http.StatusBadRequest {
		return domain.Session{}, statusFailure(op, resp, domain.ErrUnauthenticated)
	}

	var payload struct {
		Token string      `json:"token"`
		User  userPayload `json:"user"`
	}
	if err := json.Unmarshal(resp.body, &payload); err != nil {
		return domain.Session{}, failure(op, err)
	}

	sess := payload.User.session(payload.Token)
	if !sess.Superadmin() {
		return domain.Session{}, domain.ErrUnauthenticated
	}
	return sess, nil
}

func (a *Auth) Resolve(ctx context.Context, token string) (domain.Session, error) {
	const op = "resolving session"
	resp, err := a.client.do(ctx, http.MethodGet, "/api/auth/me", token, nil)
	if err != nil {
		return domain.Session{}, failure(op, err)
	}
	if resp.status >= http.StatusBadRequest {
		return domain.Session{}, statusFailure(op, resp, domain.ErrUnauthenticated)
	}

	var payload struct {
		User userPayload `json:"user"`
	}
	if err := json.Unmarshal(resp.body, &payload); err != nil {
		return domain.Session{}, failure(op, err)
	}

	sess := payload.User.session(token)
	if !sess.Superadmin() {
		return domain.Session{}, domain.ErrUnauthenticated
	}
	return sess, nil
}
