package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vncsmyrnk/crowdvote/internal/core/ports"
)

type ReputationHandler struct {
	service ports.ReputationService
}

func NewReputationHandler(service ports.ReputationService) *ReputationHandler {
	return &ReputationHandler{
		service: service,
	}
}

// GetReputation godoc
// @Summary      Reputation profile
// @Description  Returns the deterministic reputation profile for a seed, usually a wallet address
// @Tags         reputation
// @Produce      json
// @Param        seed path string true "Seed"
// @Success      200 {object} domain.ReputationProfile
// @Router       /reputation/{seed} [get]
func (h *ReputationHandler) GetReputation(w http.ResponseWriter, r *http.Request) {
	profile, err := h.service.GetProfile(r.Context(), chi.URLParam(r, "seed"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}
