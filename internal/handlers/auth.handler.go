package handlers

import (
	"context"

	"github.com/fasthttp/router"
	"github.com/nimasrn/donation-gateway/internal/model"
	xhttp "github.com/nimasrn/donation-gateway/pkg/http"
)

type AccountService interface {
	Register(ctx context.Context, p model.RegisterRequest) (*model.User, error)
	Login(ctx context.Context, p model.LoginRequest) (*model.Session, error)
	Authenticate(token string) (*model.Session, error)
	Logout(token string) error
}

type AuthHandler struct {
	svc AccountService
}

func RegisterAuthRoutes(e *router.Group, h *AuthHandler) {
	e.POST("/register", h.Register)
	e.POST("/login", h.Login)
	e.GET("/logout", h.Logout)
}

func NewAuthHandler(svc AccountService) *AuthHandler {
	return &AuthHandler{
		svc: svc,
	}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginResponse struct {
	Token string `json:"token"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

func (h *AuthHandler) Register(ctx *xhttp.RequestCtx) {
	var req registerRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	user, err := h.svc.Register(ctx, model.RegisterRequest{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, user)
}

func (h *AuthHandler) Login(ctx *xhttp.RequestCtx) {
	var req loginRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	sess, err := h.svc.Login(ctx, model.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		writeServiceError(ctx, err)
		return
	}

	writeJSON(ctx, xhttp.StatusOK, loginResponse{
		Token: sess.Token,
		Email: sess.Email,
		Name:  sess.Name,
		Role:  string(sess.Role),
	})
}

// Logout deletes the session unconditionally. A missing or unknown
// token still gets a 200.
func (h *AuthHandler) Logout(ctx *xhttp.RequestCtx) {
	_ = h.svc.Logout(bearerToken(ctx))
	writeJSON(ctx, xhttp.StatusOK, map[string]string{"status": "logged out"})
}
