package platform

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/opsdeck/tenantctl/internal/domain"
)

// envelope is the error body shape every collaborator uses.
type envelope struct {
	Message string `json:"message"`
}

func message(body []byte) string {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return ""
	}
	return env.Message
}

// failure maps a transport-level or 5xx error onto a domain.ServiceError.
// The 5xx body's message is kept verbatim for the operator; an open
// breaker or a dead connection has no message and falls back to the
// generic one.
func failure(op string, err error) error {
	var upstream *upstreamError
	if errors.As(err, &upstream) {
		return &domain.ServiceError{Op: op, Message: message(upstream.body)}
	}
	log.Error().Err(err).Str("op", op).Msg("platform request failed")
	return &domain.ServiceError{Op: op}
}

// statusFailure maps a 4xx response onto a domain error. notFound is the
// sentinel for this resource kind; conflicts are handled by the call
// sites that know which field collided.
func statusFailure(op string, resp *response, notFound error) error {
	switch resp.status {
	case http.StatusBadRequest:
		return &domain.ValidationError{Reason: message(resp.body)}
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.ErrUnauthenticated
	case http.StatusNotFound:
		return notFound
	default:
		return &domain.ServiceError{Op: op, Message: message(resp.body)}
	}
}
