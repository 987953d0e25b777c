package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/vncsmyrnk/crowdvote/internal/core/domain"
	"github.com/vncsmyrnk/crowdvote/internal/core/ports"
)

type VoteHandler struct {
	service ports.VoteService
}

func NewVoteHandler(service ports.VoteService) *VoteHandler {
	return &VoteHandler{
		service: service,
	}
}

type voteRequest struct {
	OptionID uuid.UUID `json:"option_id"`
}

// CastVote godoc
// @Summary      Casts a vote
// @Description  One vote per wallet and proposal. Ineligible voters get 403 with the reason.
// @Tags         votes
// @Accept       json
// @Produce      json
// @Param        id      path string      true "Proposal ID"
// @Param        request body voteRequest true "Chosen option"
// @Success      201 {object} domain.Vote
// @Failure      400 {object} errorResponse
// @Failure      403 {object} errorResponse
// @Failure      404 {object} errorResponse
// @Failure      409 {object} errorResponse
// @Router       /proposals/{id}/votes [post]
func (h *VoteHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	wallet, ok := walletFrom(r)
	if !ok {
		writeError(w, r, domain.ErrUnauthorized)
		return
	}
	proposalID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, domain.ErrInvalidProposalID)
		return
	}

	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	vote, err := h.service.Vote(r.Context(), ports.VoteInput{
		ProposalID: proposalID,
		OptionID:   req.OptionID,
		VoterID:    wallet,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, vote)
}

// MyVote godoc
// @Summary      The connected wallet's vote on a proposal
// @Tags         votes
// @Produce      json
// @Param        id path string true "Proposal ID"
// @Success      200 {object} domain.Vote
// @Failure      404 {object} errorResponse
// @Router       /proposals/{id}/my-vote [get]
func (h *VoteHandler) MyVote(w http.ResponseWriter, r *http.Request) {
	wallet, ok := walletFrom(r)
	if !ok {
		writeError(w, r, domain.ErrUnauthorized)
		return
	}
	proposalID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, domain.ErrInvalidProposalID)
		return
	}

	vote, err := h.service.MyVote(r.Context(), proposalID, wallet)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, vote)
}

// CheckEligibility godoc
// @Summary      Whether the connected wallet may vote
// @Description  Runs the eligibility checks without casting a vote
// @Tags         votes
// @Produce      json
// @Param        id path string true "Proposal ID"
// @Success      200 {object} domain.EligibilityDecision
// @Failure      404 {object} errorResponse
// @Router       /proposals/{id}/eligibility [get]
func (h *VoteHandler) CheckEligibility(w http.ResponseWriter, r *http.Request) {
	wallet, ok := walletFrom(r)
	if !ok {
		writeError(w, r, domain.ErrUnauthorized)
		return
	}
	proposalID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, domain.ErrInvalidProposalID)
		return
	}

	decision, err := h.service.CheckEligibility(r.Context(), proposalID, wallet)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, decision)
}
