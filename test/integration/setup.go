package integration

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/vncsmyrnk/crowdvote/internal/adapters/chain/mock"
	handler "github.com/vncsmyrnk/crowdvote/internal/adapters/handler/http"
	"github.com/vncsmyrnk/crowdvote/internal/app"
)

const jwtSecret = "test-secret"

func setupPostgresContainer(ctx context.Context) (testcontainers.Container, string, error) {
	dbName := "testdb"
	user := "user"
	password := "password"

	pgContainer, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(user),
		postgres.WithPassword(password),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, "", fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, "", err
	}

	return pgContainer, connStr, nil
}

func applyMigrations(db *sql.DB) error {
	dirPath := "../../internal/adapters/repository/postgres/migrations"

	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), "up.sql") {
			continue
		}

		content, err := os.ReadFile(filepath.Join(dirPath, entry.Name()))
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", entry.Name(), err)
		}

		if _, err := db.Exec(string(content)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", entry.Name(), err)
		}
	}

	return nil
}

// TestApp serves the full API over a migrated postgres database.
type TestApp struct {
	t        *testing.T
	DB       *sql.DB
	Server   *httptest.Server
	Repos    app.Repositories
	Services app.Services
}

func setupTestApp(t *testing.T) *TestApp {
	t.Helper()
	if testing.Short() {
		t.Skip("integration tests need docker")
	}

	ctx := context.Background()
	container, dbURL, err := setupPostgresContainer(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	db, err := sql.Open("postgres", dbURL)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, applyMigrations(db))

	repos := app.PostgresRepositories(db)
	svc := app.NewServices(repos, nil, mock.NewSubmitter(0, nil), jwtSecret, nil, nil)

	router := handler.NewHandler(handler.Handlers{
		Auth:       handler.NewAuthHandler(svc.Auth, "", http.SameSiteLaxMode),
		Reputation: handler.NewReputationHandler(svc.Reputation),
		Voters:     handler.NewVoterHandler(svc.Voters),
		Proposals:  handler.NewProposalHandler(svc.Proposals, svc.Results),
		Votes:      handler.NewVoteHandler(svc.Votes),
		Campaigns:  handler.NewCampaignHandler(svc.Campaigns),
	}, svc.Auth, []string{"*"})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &TestApp{t: t, DB: db, Server: server, Repos: repos, Services: svc}
}

func (a *TestApp) do(method, path, token string, body any) *http.Response {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, a.Server.URL+path, &buf)
	require.NoError(a.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := a.Server.Client().Do(req)
	require.NoError(a.t, err)
	a.t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (a *TestApp) connect(wallet string) string {
	a.t.Helper()
	resp := a.do(http.MethodPost, "/api/auth/connect", "", map[string]string{"wallet_address": wallet})
	require.Equal(a.t, http.StatusOK, resp.StatusCode)
	body := decode[map[string]string](a.t, resp)
	require.NotEmpty(a.t, body["access_token"])
	return body["access_token"]
}

func (a *TestApp) register(token string, age int, resident bool, role string) {
	a.t.Helper()
	resp := a.do(http.MethodPost, "/api/voters", token, map[string]any{"age": age, "is_resident": resident, "role": role})
	require.Equal(a.t, http.StatusOK, resp.StatusCode)
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}
