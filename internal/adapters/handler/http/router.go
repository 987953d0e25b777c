package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/vncsmyrnk/crowdvote/internal/core/ports"
)

type Handlers struct {
	Auth       *AuthHandler
	Reputation *ReputationHandler
	Voters     *VoterHandler
	Proposals  *ProposalHandler
	Votes      *VoteHandler
	Campaigns  *CampaignHandler
}

// NewHandler wires the API routes. Anything that acts on behalf of a wallet
// sits behind the Authenticator.
func NewHandler(h Handlers, authService ports.AuthService, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler)

	authenticated := Authenticator(authService)

	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	r.Route("/api", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("welcome"))
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/connect", h.Auth.Connect)
			r.Post("/disconnect", h.Auth.Disconnect)
		})

		r.Get("/reputation/{seed}", h.Reputation.GetReputation)

		r.Route("/voters", func(r chi.Router) {
			r.Use(authenticated)
			r.Post("/", h.Voters.Register)
			r.Get("/me", h.Voters.GetMe)
			r.Post("/{id}/verify", h.Voters.Verify)
		})

		r.Route("/proposals", func(r chi.Router) {
			r.Get("/", h.Proposals.ListProposals)
			r.With(authenticated).Post("/", h.Proposals.CreateProposal)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.Proposals.GetProposal)
				r.Get("/results", h.Proposals.GetResults)

				r.Group(func(r chi.Router) {
					r.Use(authenticated)
					r.Post("/activate", h.Proposals.Activate)
					r.Post("/cancel", h.Proposals.Cancel)
					r.Post("/finalize", h.Proposals.Finalize)
					r.Post("/votes", h.Votes.CastVote)
					r.Get("/my-vote", h.Votes.MyVote)
					r.Get("/eligibility", h.Votes.CheckEligibility)
				})
			})
		})

		r.Route("/campaigns", func(r chi.Router) {
			r.Get("/", h.Campaigns.ListCampaigns)
			r.With(authenticated).Post("/", h.Campaigns.CreateCampaign)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.Campaigns.GetCampaign)
				r.Get("/donations", h.Campaigns.ListDonations)

				r.Group(func(r chi.Router) {
					r.Use(authenticated)
					r.Post("/donations", h.Campaigns.Donate)
					r.Post("/withdrawals", h.Campaigns.Withdraw)
				})
			})
		})
	})

	return r
}
