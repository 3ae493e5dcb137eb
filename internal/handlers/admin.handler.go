package handlers

import (
	"context"

	"github.com/fasthttp/router"
	"github.com/nimasrn/donation-gateway/internal/model"
	xhttp "github.com/nimasrn/donation-gateway/pkg/http"
)

type AdminService interface {
	ListUsers(ctx context.Context, sess model.Session) ([]*model.User, error)
	DeleteUser(ctx context.Context, sess model.Session, targetEmail string) error
	Report(ctx context.Context, sess model.Session) ([]*model.ReportRow, error)
}

type AdminHandler struct {
	svc   AdminService
	guard *Guard
}

func RegisterAdminRoutes(e *router.Group, h *AdminHandler) {
	e.GET("/admin/dashboard", h.ListUsers)
	e.GET("/admin/users", h.ListUsers)
	e.POST("/admin/users/delete/{email}", h.DeleteUser)
	e.GET("/admin/reports", h.Report)
}

func NewAdminHandler(svc AdminService, guard *Guard) *AdminHandler {
	return &AdminHandler{
		svc:   svc,
		guard: guard,
	}
}

func (h *AdminHandler) ListUsers(ctx *xhttp.RequestCtx) {
	sess, ok := h.guard.Require(ctx, model.RoleAdmin)
	if !ok {
		return
	}

	users, err := h.svc.ListUsers(ctx, *sess)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, users)
}

func (h *AdminHandler) DeleteUser(ctx *xhttp.RequestCtx) {
	sess, ok := h.guard.Require(ctx, model.RoleAdmin)
	if !ok {
		return
	}

	if err := h.svc.DeleteUser(ctx, *sess, param(ctx, "email")); err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, map[string]string{"status": "deleted"})
}

func (h *AdminHandler) Report(ctx *xhttp.RequestCtx) {
	sess, ok := h.guard.Require(ctx, model.RoleAdmin)
	if !ok {
		return
	}

	rows, err := h.svc.Report(ctx, *sess)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, rows)
}
