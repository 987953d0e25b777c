package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/vncsmyrnk/crowdvote/internal/core/domain"
	"github.com/vncsmyrnk/crowdvote/internal/core/ports"
)

type CampaignHandler struct {
	service ports.CampaignService
}

func NewCampaignHandler(service ports.CampaignService) *CampaignHandler {
	return &CampaignHandler{
		service: service,
	}
}

type createCampaignRequest struct {
	Title       string                  `json:"title"`
	Description string                  `json:"description"`
	Category    domain.CampaignCategory `json:"category"`
	Goal        decimal.Decimal         `json:"goal" swaggertype:"string"`
	Deadline    time.Time               `json:"deadline"`
}

type amountRequest struct {
	Amount decimal.Decimal `json:"amount" swaggertype:"string"`
}

// CreateCampaign godoc
// @Summary      Starts a crowdfunding campaign
// @Tags         campaigns
// @Accept       json
// @Produce      json
// @Param        request body createCampaignRequest true "Campaign"
// @Success      201 {object} domain.Campaign
// @Failure      400 {object} errorResponse
// @Router       /campaigns [post]
func (h *CampaignHandler) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	wallet, ok := walletFrom(r)
	if !ok {
		writeError(w, r, domain.ErrUnauthorized)
		return
	}

	var req createCampaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	campaign, err := h.service.Create(r.Context(), ports.CreateCampaignInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    domain.CampaignCategory(strings.ToLower(string(req.Category))),
		Creator:     wallet,
		Goal:        req.Goal,
		Deadline:    req.Deadline,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, campaign)
}

// ListCampaigns godoc
// @Summary      Lists campaigns
// @Tags         campaigns
// @Produce      json
// @Param        page     query int    false "Page number" default(1)
// @Param        category query string false "Category filter"
// @Success      200 {array} domain.Campaign
// @Router       /campaigns [get]
func (h *CampaignHandler) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	category := domain.CampaignCategory(strings.ToLower(r.URL.Query().Get("category")))

	campaigns, err := h.service.List(r.Context(), ports.ListCampaignsInput{Page: page, Category: category})
	if err != nil {
		writeError(w, r, err)
		return
	}
	if campaigns == nil {
		campaigns = []*domain.Campaign{}
	}
	writeJSON(w, http.StatusOK, campaigns)
}

// GetCampaign godoc
// @Summary      Gets a campaign
// @Tags         campaigns
// @Produce      json
// @Param        id path string true "Campaign ID"
// @Success      200 {object} domain.Campaign
// @Failure      404 {object} errorResponse
// @Router       /campaigns/{id} [get]
func (h *CampaignHandler) GetCampaign(w http.ResponseWriter, r *http.Request) {
	campaign, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, campaign)
}

// Donate godoc
// @Summary      Donates to a campaign
// @Description  Waits for the simulated transaction to confirm
// @Tags         campaigns
// @Accept       json
// @Produce      json
// @Param        id      path string        true "Campaign ID"
// @Param        request body amountRequest true "Amount"
// @Success      201 {object} domain.Donation
// @Failure      400 {object} errorResponse
// @Failure      409 {object} errorResponse
// @Router       /campaigns/{id}/donations [post]
func (h *CampaignHandler) Donate(w http.ResponseWriter, r *http.Request) {
	wallet, ok := walletFrom(r)
	if !ok {
		writeError(w, r, domain.ErrUnauthorized)
		return
	}
	campaignID, ok := h.campaignID(w, r)
	if !ok {
		return
	}

	var req amountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	donation, err := h.service.Donate(r.Context(), ports.DonateInput{CampaignID: campaignID, Donor: wallet, Amount: req.Amount})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, donation)
}

// ListDonations godoc
// @Summary      Donations to a campaign
// @Tags         campaigns
// @Produce      json
// @Param        id path string true "Campaign ID"
// @Success      200 {array} domain.Donation
// @Failure      404 {object} errorResponse
// @Router       /campaigns/{id}/donations [get]
func (h *CampaignHandler) ListDonations(w http.ResponseWriter, r *http.Request) {
	campaignID, ok := h.campaignID(w, r)
	if !ok {
		return
	}

	donations, err := h.service.ListDonations(r.Context(), campaignID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, donations)
}

// Withdraw godoc
// @Summary      Withdraws raised funds
// @Description  Creator only
// @Tags         campaigns
// @Accept       json
// @Produce      json
// @Param        id      path string        true "Campaign ID"
// @Param        request body amountRequest true "Amount"
// @Success      201 {object} domain.Withdrawal
// @Failure      403 {object} errorResponse
// @Failure      409 {object} errorResponse
// @Router       /campaigns/{id}/withdrawals [post]
func (h *CampaignHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	wallet, ok := walletFrom(r)
	if !ok {
		writeError(w, r, domain.ErrUnauthorized)
		return
	}
	campaignID, ok := h.campaignID(w, r)
	if !ok {
		return
	}

	var req amountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	withdrawal, err := h.service.Withdraw(r.Context(), ports.WithdrawInput{CampaignID: campaignID, Actor: wallet, Amount: req.Amount})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, withdrawal)
}

func (h *CampaignHandler) campaignID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid campaign id")
		return uuid.Nil, false
	}
	return id, true
}
