package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/vncsmyrnk/crowdvote/internal/core/domain"
	"github.com/vncsmyrnk/crowdvote/internal/core/ports"
)

type ProposalHandler struct {
	service ports.ProposalService
	results ports.ResultService
}

func NewProposalHandler(service ports.ProposalService, results ports.ResultService) *ProposalHandler {
	return &ProposalHandler{
		service: service,
		results: results,
	}
}

type createOptionRequest struct {
	Title    string          `json:"title"`
	Metadata json.RawMessage `json:"metadata,omitempty"`
}

type createProposalRequest struct {
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Options     []createOptionRequest  `json:"options"`
	Eligibility domain.EligibilityRule `json:"eligibility"`
	StartsAt    *time.Time             `json:"starts_at"`
	EndsAt      time.Time              `json:"ends_at"`
}

// CreateProposal godoc
// @Summary      Creates a proposal
// @Description  The connected wallet becomes the creator. The proposal starts active when its window has already opened, pending otherwise.
// @Tags         proposals
// @Accept       json
// @Produce      json
// @Param        request body createProposalRequest true "Proposal"
// @Success      201 {object} domain.Proposal
// @Failure      400 {object} errorResponse
// @Failure      401 {object} errorResponse
// @Router       /proposals [post]
func (h *ProposalHandler) CreateProposal(w http.ResponseWriter, r *http.Request) {
	wallet, ok := walletFrom(r)
	if !ok {
		writeError(w, r, domain.ErrUnauthorized)
		return
	}

	var req createProposalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	input := ports.CreateProposalInput{
		Title:       req.Title,
		Description: req.Description,
		CreatedBy:   wallet,
		Eligibility: req.Eligibility,
		EndsAt:      req.EndsAt,
	}
	if req.StartsAt != nil {
		input.StartsAt = *req.StartsAt
	}
	for _, opt := range req.Options {
		input.Options = append(input.Options, ports.CreateOptionInput{Title: opt.Title, Metadata: opt.Metadata})
	}

	proposal, err := h.service.Create(r.Context(), input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, proposal)
}

// ListProposals godoc
// @Summary      Lists proposals
// @Description  Newest first, ten per page
// @Tags         proposals
// @Produce      json
// @Param        page   query int    false "Page number" default(1)
// @Param        status query string false "pending, active, completed or cancelled"
// @Success      200 {array} domain.Proposal
// @Router       /proposals [get]
func (h *ProposalHandler) ListProposals(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	status := domain.ProposalStatus(strings.ToLower(r.URL.Query().Get("status")))

	proposals, err := h.service.ListProposals(r.Context(), ports.ListProposalsInput{Page: page, Status: status})
	if err != nil {
		writeError(w, r, err)
		return
	}
	if proposals == nil {
		proposals = []*domain.Proposal{}
	}
	writeJSON(w, http.StatusOK, proposals)
}

// GetProposal godoc
// @Summary      Gets a proposal
// @Tags         proposals
// @Produce      json
// @Param        id path string true "Proposal ID"
// @Success      200 {object} domain.Proposal
// @Failure      400 {object} errorResponse
// @Failure      404 {object} errorResponse
// @Router       /proposals/{id} [get]
func (h *ProposalHandler) GetProposal(w http.ResponseWriter, r *http.Request) {
	proposal, err := h.service.GetProposal(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, proposal)
}

// Activate godoc
// @Summary      Opens a pending proposal
// @Description  Creator only
// @Tags         proposals
// @Produce      json
// @Param        id path string true "Proposal ID"
// @Success      200 {object} domain.Proposal
// @Failure      403 {object} errorResponse
// @Failure      409 {object} errorResponse
// @Router       /proposals/{id}/activate [post]
func (h *ProposalHandler) Activate(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Activate)
}

// Cancel godoc
// @Summary      Cancels a pending or active proposal
// @Description  Creator only
// @Tags         proposals
// @Produce      json
// @Param        id path string true "Proposal ID"
// @Success      200 {object} domain.Proposal
// @Failure      403 {object} errorResponse
// @Failure      409 {object} errorResponse
// @Router       /proposals/{id}/cancel [post]
func (h *ProposalHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Cancel)
}

func (h *ProposalHandler) transition(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, id uuid.UUID, actorID string) (*domain.Proposal, error)) {
	wallet, ok := walletFrom(r)
	if !ok {
		writeError(w, r, domain.ErrUnauthorized)
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, domain.ErrInvalidProposalID)
		return
	}

	proposal, err := apply(r.Context(), id, wallet)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, proposal)
}

// Finalize godoc
// @Summary      Closes voting and freezes the tally
// @Description  Creator only. Finalizing a completed proposal returns the stored result.
// @Tags         proposals
// @Produce      json
// @Param        id path string true "Proposal ID"
// @Success      200 {object} domain.ProposalResult
// @Failure      403 {object} errorResponse
// @Failure      409 {object} errorResponse
// @Router       /proposals/{id}/finalize [post]
func (h *ProposalHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	wallet, ok := walletFrom(r)
	if !ok {
		writeError(w, r, domain.ErrUnauthorized)
		return
	}

	proposal, err := h.service.GetProposal(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !strings.EqualFold(proposal.CreatedBy, wallet) {
		writeError(w, r, domain.ErrForbidden)
		return
	}

	result, err := h.results.Finalize(r.Context(), proposal.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GetResults godoc
// @Summary      Final results of a proposal
// @Description  Results stay sealed until the proposal is completed
// @Tags         proposals
// @Produce      json
// @Param        id path string true "Proposal ID"
// @Success      200 {object} domain.ProposalResult
// @Failure      404 {object} errorResponse
// @Failure      409 {object} errorResponse
// @Router       /proposals/{id}/results [get]
func (h *ProposalHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, domain.ErrInvalidProposalID)
		return
	}

	result, err := h.results.GetResults(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
