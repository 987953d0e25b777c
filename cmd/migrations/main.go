package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"

	_ "github.com/lib/pq"

	"github.com/vncsmyrnk/crowdvote/internal/config"
)

// Usage: migrations <name> [flags], where name matches a file suffix such
// as "init.up" or "init.down".
func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	if len(os.Args) < 2 {
		logger.Error("a migration name is required")
		os.Exit(1)
	}
	migrationName := os.Args[1]

	cfg, err := config.Load(os.Args[2:])
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if !cfg.UsePostgres() {
		logger.Error("POSTGRES_HOST is not set")
		os.Exit(1)
	}

	db, err := sql.Open("postgres", cfg.PostgresDSN())
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	basePath := filepath.Join(".", "internal", "adapters", "repository", "postgres", "migrations")
	fileName, fileContent, err := migrationFileContent(basePath, migrationName)
	if err != nil {
		logger.Error("failed to read migration", "name", migrationName, "error", err)
		os.Exit(1)
	}

	if _, err := db.Exec(string(fileContent)); err != nil {
		logger.Error("failed to execute migration", "file", fileName, "error", err)
		db.Close()
		os.Exit(1)
	}

	logger.Info("migration executed", "file", fileName)
}

func migrationFileContent(basePath string, migrationName string) (string, []byte, error) {
	fileName, err := migrationFilePath(basePath, migrationName)
	if err != nil {
		return "", nil, err
	}

	fileContent, err := os.ReadFile(filepath.Join(basePath, fileName))
	if err != nil {
		return "", nil, err
	}

	return fileName, fileContent, nil
}

func migrationFilePath(basePath string, migrationName string) (string, error) {
	regex, err := regexp.Compile(fmt.Sprintf(`^.*%s\.sql$`, regexp.QuoteMeta(migrationName)))
	if err != nil {
		return "", fmt.Errorf("invalid migration name: %w", err)
	}

	files, err := os.ReadDir(basePath)
	if err != nil {
		return "", err
	}
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		if regex.MatchString(f.Name()) {
			return f.Name(), nil
		}
	}

	return "", fmt.Errorf("migration file %q not found", migrationName)
}
