package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Reconciliation modes
const (
	ModeSync  = "sync"
	ModeAsync = "async"
)

const (
	DefaultPort               = 3318
	DefaultDatabaseType       = "sqlite"
	DefaultOracleBaseURL      = "https://generativelanguage.googleapis.com/v1beta/openai/"
	DefaultOracleModel        = "gemini-2.0-flash"
	DefaultOracleTimeout      = 15 * time.Second
	DefaultMatchThreshold     = 3
	DefaultReconcileWorkers   = 4
	DefaultReconcileBatchSize = 500
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string

	AdminKey string
	KeySalt  string

	OracleAPIKey  string
	OracleBaseURL string
	OracleModel   string
	OracleTimeout time.Duration
	OracleRPS     float64

	MatchThreshold     int
	ReconcileMode      string
	ReconcileWorkers   int
	ReconcileBatchSize int
}

// ParseFlags parses CLI flags, falls back to environment variables, and
// applies defaults. CLI flags take precedence over the environment.
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("votematch", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.AdminKey, "admin-key", "", "Admin key (prefer env)")
	fs.StringVar(&cfg.KeySalt, "key-salt", "", "Access key salt (prefer env)")
	fs.StringVar(&cfg.OracleAPIKey, "oracle-key", "", "Scoring oracle API key (prefer env)")

	// Oracle
	fs.StringVar(&cfg.OracleBaseURL, "oracle-url", "", "Scoring oracle base URL (OpenAI-compatible)")
	fs.StringVar(&cfg.OracleModel, "oracle-model", "", "Scoring oracle model")
	fs.DurationVar(&cfg.OracleTimeout, "oracle-timeout", 0, "Timeout for one scoring call")
	fs.Float64Var(&cfg.OracleRPS, "oracle-rps", 0, "Max scoring calls per second (0 = unlimited)")

	// Reconciliation
	fs.IntVar(&cfg.MatchThreshold, "match-threshold", 0, "Answers that must agree to auto-vote (1-3)")
	fs.StringVar(&cfg.ReconcileMode, "reconcile-mode", "", "Reconcile inline (sync) or in background workers (async)")
	fs.IntVar(&cfg.ReconcileWorkers, "reconcile-workers", 0, "Background reconcile workers")
	fs.IntVar(&cfg.ReconcileBatchSize, "reconcile-batch", 0, "Voters read per reconcile batch")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	var err error
	if cfg.Port, err = envInt(cfg.Port, "PORT", DefaultPort); err != nil {
		return Config{}, err
	}
	cfg.DatabaseURL = envString(cfg.DatabaseURL, "DATABASE_URL", "")
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}
	cfg.DatabaseType = envString(cfg.DatabaseType, "DATABASE_TYPE", DefaultDatabaseType)
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("invalid database type %q (want sqlite or postgres)", cfg.DatabaseType)
	}

	// Secrets - MUST be provided
	cfg.AdminKey = envString(cfg.AdminKey, "ADMIN_KEY", "")
	if cfg.AdminKey == "" {
		return Config{}, errors.New("ADMIN_KEY required")
	}
	cfg.KeySalt = envString(cfg.KeySalt, "KEY_SALT", "")
	if cfg.KeySalt == "" {
		return Config{}, errors.New("KEY_SALT required")
	}
	cfg.OracleAPIKey = envString(cfg.OracleAPIKey, "ORACLE_API_KEY", "")
	if cfg.OracleAPIKey == "" {
		return Config{}, errors.New("ORACLE_API_KEY required")
	}

	cfg.OracleBaseURL = envString(cfg.OracleBaseURL, "ORACLE_BASE_URL", DefaultOracleBaseURL)
	cfg.OracleModel = envString(cfg.OracleModel, "ORACLE_MODEL", DefaultOracleModel)
	if cfg.OracleTimeout, err = envDuration(cfg.OracleTimeout, "ORACLE_TIMEOUT", DefaultOracleTimeout); err != nil {
		return Config{}, err
	}
	if cfg.OracleRPS == 0 {
		if s := os.Getenv("ORACLE_RPS"); s != "" {
			rps, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return Config{}, errors.New("invalid ORACLE_RPS env variable")
			}
			cfg.OracleRPS = rps
		}
	}
	if cfg.OracleRPS < 0 {
		return Config{}, errors.New("oracle rps must not be negative")
	}

	if cfg.MatchThreshold, err = envInt(cfg.MatchThreshold, "MATCH_THRESHOLD", DefaultMatchThreshold); err != nil {
		return Config{}, err
	}
	if cfg.MatchThreshold < 1 || cfg.MatchThreshold > 3 {
		return Config{}, fmt.Errorf("match threshold must be between 1 and 3, got %d", cfg.MatchThreshold)
	}

	cfg.ReconcileMode = envString(cfg.ReconcileMode, "RECONCILE_MODE", ModeSync)
	if cfg.ReconcileMode != ModeSync && cfg.ReconcileMode != ModeAsync {
		return Config{}, fmt.Errorf("invalid reconcile mode %q (want sync or async)", cfg.ReconcileMode)
	}
	if cfg.ReconcileWorkers, err = envInt(cfg.ReconcileWorkers, "RECONCILE_WORKERS", DefaultReconcileWorkers); err != nil {
		return Config{}, err
	}
	if cfg.ReconcileWorkers < 1 {
		return Config{}, errors.New("reconcile workers must be at least 1")
	}
	if cfg.ReconcileBatchSize, err = envInt(cfg.ReconcileBatchSize, "RECONCILE_BATCH", DefaultReconcileBatchSize); err != nil {
		return Config{}, err
	}
	if cfg.ReconcileBatchSize < 1 {
		return Config{}, errors.New("reconcile batch size must be at least 1")
	}

	return cfg, nil
}

func envString(cur, key, def string) string {
	if cur != "" {
		return cur
	}
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(cur int, key string, def int) (int, error) {
	if cur != 0 {
		return cur, nil
	}
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable", key)
	}
	return n, nil
}

func envDuration(cur time.Duration, key string, def time.Duration) (time.Duration, error) {
	if cur != 0 {
		return cur, nil
	}
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable", key)
	}
	return d, nil
}
