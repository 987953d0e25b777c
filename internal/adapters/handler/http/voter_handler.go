package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vncsmyrnk/crowdvote/internal/core/domain"
	"github.com/vncsmyrnk/crowdvote/internal/core/ports"
)

type VoterHandler struct {
	service ports.VoterService
}

func NewVoterHandler(service ports.VoterService) *VoterHandler {
	return &VoterHandler{
		service: service,
	}
}

type registerVoterRequest struct {
	Age        int    `json:"age"`
	IsResident bool   `json:"is_resident"`
	Role       string `json:"role"`
}

// Register godoc
// @Summary      Registers the connected wallet as a voter
// @Description  Creates or updates the voter profile of the authenticated wallet. Verification status is kept.
// @Tags         voters
// @Accept       json
// @Produce      json
// @Param        request body registerVoterRequest true "Voter attributes"
// @Success      200 {object} domain.Voter
// @Failure      400 {object} errorResponse
// @Failure      401 {object} errorResponse
// @Router       /voters [post]
func (h *VoterHandler) Register(w http.ResponseWriter, r *http.Request) {
	wallet, ok := walletFrom(r)
	if !ok {
		writeError(w, r, domain.ErrUnauthorized)
		return
	}

	var req registerVoterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	voter, err := h.service.Register(r.Context(), ports.RegisterVoterInput{
		ID:         wallet,
		Age:        req.Age,
		IsResident: req.IsResident,
		Role:       req.Role,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, voter)
}

// GetMe godoc
// @Summary      Voter profile of the connected wallet
// @Tags         voters
// @Produce      json
// @Success      200 {object} domain.Voter
// @Failure      401 {object} errorResponse
// @Failure      404 {object} errorResponse
// @Router       /voters/me [get]
func (h *VoterHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	wallet, ok := walletFrom(r)
	if !ok {
		writeError(w, r, domain.ErrUnauthorized)
		return
	}

	voter, err := h.service.Get(r.Context(), wallet)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, voter)
}

// Verify godoc
// @Summary      Verifies a voter
// @Description  Admin only
// @Tags         voters
// @Produce      json
// @Param        id path string true "Voter wallet address"
// @Success      200 {object} domain.Voter
// @Failure      403 {object} errorResponse
// @Failure      404 {object} errorResponse
// @Router       /voters/{id}/verify [post]
func (h *VoterHandler) Verify(w http.ResponseWriter, r *http.Request) {
	wallet, ok := walletFrom(r)
	if !ok {
		writeError(w, r, domain.ErrUnauthorized)
		return
	}

	voter, err := h.service.Verify(r.Context(), wallet, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, voter)
}
