// Package config reads runtime settings from an optional .env file, the
// environment and command-line flags, in increasing order of precedence.
package config

import (
	"flag"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr string

	DBHost string
	DBPort string
	DBUser string
	DBPass string
	DBName string

	RedisURL           string
	ReputationCacheTTL time.Duration

	JWTSecret          string
	CookieDomain       string
	AdminWallets       []string
	CORSAllowedOrigins []string

	TxDelay          time.Duration
	FinalizeInterval time.Duration
}

// Load parses args (without the program name). A missing .env file is not
// an error.
func Load(args []string) (Config, error) {
	_ = godotenv.Load()

	var (
		cfg     Config
		origins string
		admins  string
		err     error
	)

	fs := flag.NewFlagSet("crowdvote", flag.ContinueOnError)
	fs.StringVar(&cfg.HTTPAddr, "http-addr", envOr("HTTP_ADDR", "0.0.0.0:8080"), "HTTP listen address")
	fs.StringVar(&cfg.DBHost, "db-host", os.Getenv("POSTGRES_HOST"), "Database host; empty keeps everything in memory")
	fs.StringVar(&cfg.DBPort, "db-port", envOr("POSTGRES_PORT", "5432"), "Database port")
	fs.StringVar(&cfg.DBUser, "db-user", os.Getenv("POSTGRES_USER"), "Database user")
	fs.StringVar(&cfg.DBPass, "db-pass", os.Getenv("POSTGRES_PASSWORD"), "Database password")
	fs.StringVar(&cfg.DBName, "db-name", os.Getenv("POSTGRES_DB"), "Database name")
	fs.StringVar(&cfg.RedisURL, "redis-url", os.Getenv("REDIS_URL"), "Redis URL for the reputation cache; empty disables it")
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", os.Getenv("JWT_SECRET"), "Secret used to sign access tokens")
	fs.StringVar(&cfg.CookieDomain, "cookie-domain", os.Getenv("COOKIE_DOMAIN"), "Domain set on the access token cookie")
	fs.StringVar(&admins, "admin-wallets", os.Getenv("ADMIN_WALLETS"), "Comma separated wallets allowed to hold the admin role")
	fs.StringVar(&origins, "cors-origins", envOr("CORS_ALLOWED_ORIGINS", "*"), "Comma separated list of allowed origins")

	durations := []struct {
		target *time.Duration
		name   string
		env    string
		def    time.Duration
		usage  string
	}{
		{&cfg.ReputationCacheTTL, "reputation-ttl", "REPUTATION_CACHE_TTL", time.Hour, "How long generated reputations stay cached"},
		{&cfg.TxDelay, "tx-delay", "TX_DELAY", 1500 * time.Millisecond, "Simulated transaction confirmation delay"},
		{&cfg.FinalizeInterval, "finalize-interval", "FINALIZE_INTERVAL", time.Minute, "How often due proposals are opened and finalized"},
	}
	for _, d := range durations {
		def, perr := durationEnv(d.env, d.def)
		if perr != nil && err == nil {
			err = perr
		}
		fs.DurationVar(d.target, d.name, def, d.usage)
	}
	if err != nil {
		return Config{}, err
	}

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg.CORSAllowedOrigins = splitList(origins)
	cfg.AdminWallets = splitList(admins)
	return cfg, nil
}

// UsePostgres is false when no database host is configured.
func (c Config) UsePostgres() bool {
	return c.DBHost != ""
}

func (c Config) PostgresDSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPass),
		Host:     c.DBHost + ":" + c.DBPort,
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
