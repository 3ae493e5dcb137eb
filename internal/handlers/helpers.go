package handlers

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/nimasrn/donation-gateway/internal/model"
	"github.com/nimasrn/donation-gateway/internal/services"
	xhttp "github.com/nimasrn/donation-gateway/pkg/http"
	"github.com/nimasrn/donation-gateway/pkg/logger"
)

func readJSON(ctx *xhttp.RequestCtx, dst any) error {
	body := ctx.PostBody()
	return json.Unmarshal(body, dst)
}

func writeJSON(ctx *xhttp.RequestCtx, status int, v any) {
	b, _ := json.Marshal(v)
	ctx.Response.Header.Set("Content-Type", "application/json; charset=utf-8")
	ctx.Response.SetStatusCode(status)
	ctx.Response.SetBodyRaw(b)
}

func writeError(ctx *xhttp.RequestCtx, status int, msg string) {
	writeJSON(ctx, status, map[string]string{"error": msg})
}

// writeServiceError maps service sentinel errors to HTTP statuses.
// Anything unrecognized is a storage or internal failure and surfaces
// as a generic 500, with the detail kept in the logs.
func writeServiceError(ctx *xhttp.RequestCtx, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		writeError(ctx, xhttp.StatusUnauthorized, err.Error())
	case errors.Is(err, services.ErrUnauthorized):
		writeError(ctx, xhttp.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrNotFound):
		writeError(ctx, xhttp.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrEmailTaken):
		writeError(ctx, xhttp.StatusConflict, err.Error())
	case errors.Is(err, model.ErrValidation):
		writeError(ctx, xhttp.StatusBadRequest, err.Error())
	default:
		logger.Error("request failed", "path", string(ctx.Path()), "error", err)
		writeError(ctx, xhttp.StatusInternalServerError, "internal error")
	}
}

func bearerToken(ctx *xhttp.RequestCtx) string {
	auth := string(ctx.Request.Header.Peek("Authorization"))
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(auth[len("Bearer "):])
	}
	return ""
}

func param(ctx *xhttp.RequestCtx, name string) string {
	if v, ok := ctx.UserValue(name).(string); ok {
		return v
	}
	return ""
}

// Authenticator resolves bearer tokens to sessions.
type Authenticator interface {
	Authenticate(token string) (*model.Session, error)
}

// Guard is the per-request session check shared by the role-gated
// handlers. The session is returned explicitly, nothing is stashed in
// request-scoped globals.
type Guard struct {
	auth Authenticator
}

func NewGuard(auth Authenticator) *Guard {
	return &Guard{auth: auth}
}

// Require writes 401/403 itself and reports success via ok.
func (g *Guard) Require(ctx *xhttp.RequestCtx, roles ...model.Role) (*model.Session, bool) {
	token := bearerToken(ctx)
	if token == "" {
		writeError(ctx, xhttp.StatusUnauthorized, "missing bearer token")
		return nil, false
	}

	sess, err := g.auth.Authenticate(token)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			writeError(ctx, xhttp.StatusUnauthorized, "invalid or expired session")
			return nil, false
		}
		writeServiceError(ctx, err)
		return nil, false
	}

	if len(roles) > 0 {
		for _, role := range roles {
			if sess.Role == role {
				return sess, true
			}
		}
		writeError(ctx, xhttp.StatusForbidden, "role not permitted")
		return nil, false
	}

	return sess, true
}
