// Package app assembles repositories and services from configuration.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"
	goredis "github.com/redis/go-redis/v9"
	"github.com/vncsmyrnk/crowdvote/internal/adapters/cache/redis"
	"github.com/vncsmyrnk/crowdvote/internal/adapters/chain/mock"
	"github.com/vncsmyrnk/crowdvote/internal/adapters/repository/memory"
	"github.com/vncsmyrnk/crowdvote/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/crowdvote/internal/config"
	"github.com/vncsmyrnk/crowdvote/internal/core/ports"
	"github.com/vncsmyrnk/crowdvote/internal/core/services"
)

type Repositories struct {
	Proposals ports.ProposalRepository
	Votes     ports.VoteStore
	Voters    ports.VoterRepository
	Results   ports.ResultRepository
	Campaigns ports.CampaignRepository
}

type Services struct {
	Auth       ports.AuthService
	Proposals  ports.ProposalService
	Votes      ports.VoteService
	Results    ports.ResultService
	Scheduler  ports.SchedulerService
	Reputation ports.ReputationService
	Voters     ports.VoterService
	Campaigns  ports.CampaignService
}

// App owns the connections it opened; Close releases them.
type App struct {
	Repos    Repositories
	Services Services

	db  *sql.DB
	rdb *goredis.Client
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	a := &App{}

	if cfg.UsePostgres() {
		db, err := sql.Open("postgres", cfg.PostgresDSN())
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to reach database: %w", err)
		}
		a.db = db
		a.Repos = PostgresRepositories(db)
		logger.Info("using postgres storage", "event", "storage_selected", "host", cfg.DBHost)
	} else {
		a.Repos = MemoryRepositories(memory.NewStore())
		logger.Warn("no database configured, data lives in memory", "event", "storage_selected")
	}

	var cache ports.ReputationCache
	if cfg.RedisURL != "" {
		rdb, err := redis.NewClient(cfg.RedisURL)
		if err != nil {
			a.Close()
			return nil, err
		}
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, reputation cache disabled", "event", "cache_disabled", "error", err)
			rdb.Close()
		} else {
			a.rdb = rdb
			cache = redis.NewReputationCache(rdb, cfg.ReputationCacheTTL)
		}
	}

	submitter := mock.NewSubmitter(cfg.TxDelay, logger)
	a.Services = NewServices(a.Repos, cache, submitter, cfg.JWTSecret, cfg.AdminWallets, logger)
	return a, nil
}

func PostgresRepositories(db *sql.DB) Repositories {
	return Repositories{
		Proposals: postgres.NewProposalRepository(db),
		Votes:     postgres.NewVoteRepository(db),
		Voters:    postgres.NewVoterRepository(db),
		Results:   postgres.NewResultRepository(db),
		Campaigns: postgres.NewCampaignRepository(db),
	}
}

func MemoryRepositories(store *memory.Store) Repositories {
	return Repositories{
		Proposals: store.Proposals(),
		Votes:     store.Votes(),
		Voters:    store.Voters(),
		Results:   store.Results(),
		Campaigns: store.Campaigns(),
	}
}

// NewServices accepts a nil cache.
func NewServices(repos Repositories, cache ports.ReputationCache, submitter ports.TransactionSubmitter, jwtSecret string, adminWallets []string, logger *slog.Logger) Services {
	results := services.NewResultService(repos.Proposals, repos.Votes, repos.Results, nil, logger)
	return Services{
		Auth:       services.NewAuthService(jwtSecret, nil, logger),
		Proposals:  services.NewProposalService(repos.Proposals, nil, logger),
		Votes:      services.NewVoteService(repos.Proposals, repos.Votes, repos.Voters, nil, logger),
		Results:    results,
		Scheduler:  services.NewSchedulerService(repos.Proposals, results, nil, logger),
		Reputation: services.NewReputationService(cache, logger),
		Voters:     services.NewVoterService(repos.Voters, adminWallets, nil, logger),
		Campaigns:  services.NewCampaignService(repos.Campaigns, submitter, nil, logger),
	}
}

func (a *App) Close() {
	if a.rdb != nil {
		a.rdb.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}
