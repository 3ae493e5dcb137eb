package handlers

import (
	"context"

	"github.com/fasthttp/router"
	"github.com/nimasrn/donation-gateway/internal/model"
	xhttp "github.com/nimasrn/donation-gateway/pkg/http"
)

type CampaignService interface {
	Create(ctx context.Context, sess model.Session, p model.CampaignCreateRequest) (*model.Campaign, error)
	Get(ctx context.Context, sess model.Session, id string) (*model.Campaign, error)
	Update(ctx context.Context, sess model.Session, id string, p model.CampaignUpdateRequest) error
	Delete(ctx context.Context, sess model.Session, id string) error
	ListForOwner(ctx context.Context, sess model.Session) ([]*model.Campaign, error)
	ListDonationsForOwner(ctx context.Context, sess model.Session) ([]*model.Donation, int64, error)
}

type OrganizationHandler struct {
	campaigns CampaignService
	guard     *Guard
}

func RegisterOrganizationRoutes(e *router.Group, h *OrganizationHandler) {
	e.GET("/organization/dashboard", h.Dashboard)
	e.GET("/organization/donations", h.Donations)
	e.GET("/organization/campaign/create", h.CreateForm)
	e.POST("/organization/campaign/create", h.CreateCampaign)
	e.GET("/organization/campaign/update/{id}", h.GetCampaign)
	e.POST("/organization/campaign/update/{id}", h.UpdateCampaign)
	e.POST("/delete_campaign/{id}", h.DeleteCampaign)
}

func NewOrganizationHandler(campaigns CampaignService, guard *Guard) *OrganizationHandler {
	return &OrganizationHandler{
		campaigns: campaigns,
		guard:     guard,
	}
}

type campaignRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	GoalAmount  float64 `json:"goal_amount"`
}

type donationsResponse struct {
	Items []*model.Donation `json:"items"`
	Total int64             `json:"total"`
}

func (h *OrganizationHandler) Dashboard(ctx *xhttp.RequestCtx) {
	sess, ok := h.guard.Require(ctx, model.RoleOrganization)
	if !ok {
		return
	}

	campaigns, err := h.campaigns.ListForOwner(ctx, *sess)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, campaigns)
}

func (h *OrganizationHandler) Donations(ctx *xhttp.RequestCtx) {
	sess, ok := h.guard.Require(ctx, model.RoleOrganization)
	if !ok {
		return
	}

	items, total, err := h.campaigns.ListDonationsForOwner(ctx, *sess)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, donationsResponse{Items: items, Total: total})
}

// CreateForm mirrors the form fetch of the HTML variant. JSON clients
// get an empty template to fill in.
func (h *OrganizationHandler) CreateForm(ctx *xhttp.RequestCtx) {
	if _, ok := h.guard.Require(ctx, model.RoleOrganization); !ok {
		return
	}
	writeJSON(ctx, xhttp.StatusOK, campaignRequest{})
}

func (h *OrganizationHandler) CreateCampaign(ctx *xhttp.RequestCtx) {
	sess, ok := h.guard.Require(ctx, model.RoleOrganization)
	if !ok {
		return
	}

	var req campaignRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	campaign, err := h.campaigns.Create(ctx, *sess, model.CampaignCreateRequest{
		Title:       req.Title,
		Description: req.Description,
		GoalAmount:  req.GoalAmount,
	})
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, campaign)
}

func (h *OrganizationHandler) GetCampaign(ctx *xhttp.RequestCtx) {
	sess, ok := h.guard.Require(ctx, model.RoleOrganization)
	if !ok {
		return
	}

	campaign, err := h.campaigns.Get(ctx, *sess, param(ctx, "id"))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, campaign)
}

func (h *OrganizationHandler) UpdateCampaign(ctx *xhttp.RequestCtx) {
	sess, ok := h.guard.Require(ctx, model.RoleOrganization)
	if !ok {
		return
	}

	var req campaignRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	err := h.campaigns.Update(ctx, *sess, param(ctx, "id"), model.CampaignUpdateRequest{
		Title:       req.Title,
		Description: req.Description,
		GoalAmount:  req.GoalAmount,
	})
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, map[string]string{"status": "updated"})
}

func (h *OrganizationHandler) DeleteCampaign(ctx *xhttp.RequestCtx) {
	sess, ok := h.guard.Require(ctx, model.RoleOrganization)
	if !ok {
		return
	}

	if err := h.campaigns.Delete(ctx, *sess, param(ctx, "id")); err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, map[string]string{"status": "deleted"})
}
