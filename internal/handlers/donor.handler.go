package handlers

import (
	"context"

	"github.com/fasthttp/router"
	"github.com/nimasrn/donation-gateway/internal/model"
	xhttp "github.com/nimasrn/donation-gateway/pkg/http"
)

type DonationService interface {
	Record(ctx context.Context, sess model.Session, p model.DonationCreateRequest) (*model.Donation, error)
	History(ctx context.Context, sess model.Session) ([]*model.Donation, float64, error)
	Total(ctx context.Context, sess model.Session) (float64, error)
	Delete(ctx context.Context, sess model.Session, donationID string) error
}

type CampaignBrowser interface {
	ListAll(ctx context.Context) ([]*model.Campaign, error)
}

type DonorHandler struct {
	donations DonationService
	campaigns CampaignBrowser
	guard     *Guard
}

func RegisterDonorRoutes(e *router.Group, h *DonorHandler) {
	e.GET("/donor/dashboard", h.Dashboard)
	e.POST("/donor/dashboard", h.RecordDonation)
	e.GET("/donation_history", h.History)
	e.POST("/donation_history", h.DeleteDonation)
}

func NewDonorHandler(donations DonationService, campaigns CampaignBrowser, guard *Guard) *DonorHandler {
	return &DonorHandler{
		donations: donations,
		campaigns: campaigns,
		guard:     guard,
	}
}

type recordDonationRequest struct {
	Amount     float64 `json:"amount"`
	Type       string  `json:"type"`
	CampaignID string  `json:"campaign_id"`
}

type dashboardResponse struct {
	Campaigns []*model.Campaign `json:"campaigns"`
	Total     float64           `json:"total_donated"`
}

type historyResponse struct {
	Items []*model.Donation `json:"items"`
	Total float64           `json:"total_donated"`
}

type deleteDonationRequest struct {
	DonationID string `json:"donation_id"`
}

// Dashboard is the donor browse view: every campaign plus the donor's
// lifetime total.
func (h *DonorHandler) Dashboard(ctx *xhttp.RequestCtx) {
	sess, ok := h.guard.Require(ctx, model.RoleDonor)
	if !ok {
		return
	}

	campaigns, err := h.campaigns.ListAll(ctx)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}

	total, err := h.donations.Total(ctx, *sess)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}

	writeJSON(ctx, xhttp.StatusOK, dashboardResponse{Campaigns: campaigns, Total: total})
}

func (h *DonorHandler) RecordDonation(ctx *xhttp.RequestCtx) {
	sess, ok := h.guard.Require(ctx, model.RoleDonor)
	if !ok {
		return
	}

	var req recordDonationRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	donation, err := h.donations.Record(ctx, *sess, model.DonationCreateRequest{
		Amount:     req.Amount,
		Type:       req.Type,
		CampaignID: req.CampaignID,
	})
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, donation)
}

func (h *DonorHandler) History(ctx *xhttp.RequestCtx) {
	sess, ok := h.guard.Require(ctx, model.RoleDonor)
	if !ok {
		return
	}

	items, total, err := h.donations.History(ctx, *sess)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, historyResponse{Items: items, Total: total})
}

func (h *DonorHandler) DeleteDonation(ctx *xhttp.RequestCtx) {
	sess, ok := h.guard.Require(ctx, model.RoleDonor)
	if !ok {
		return
	}

	var req deleteDonationRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.DonationID == "" {
		writeError(ctx, xhttp.StatusBadRequest, "donation_id is required")
		return
	}

	if err := h.donations.Delete(ctx, *sess, req.DonationID); err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, map[string]string{"status": "deleted"})
}
