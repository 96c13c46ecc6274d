// cliparse/cliparse_test.go
package cliparse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://test")
	t.Setenv("ADMIN_KEY", "admin")
	t.Setenv("KEY_SALT", "salt")
	t.Setenv("ORACLE_API_KEY", "oracle")
}

func TestParseFlags_EnvVars(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_TYPE", "postgres")
	t.Setenv("ORACLE_TIMEOUT", "3s")
	t.Setenv("ORACLE_RPS", "2.5")
	t.Setenv("MATCH_THRESHOLD", "2")
	t.Setenv("RECONCILE_MODE", "async")
	t.Setenv("RECONCILE_WORKERS", "8")
	t.Setenv("RECONCILE_BATCH", "50")

	cfg, err := ParseFlags([]string{})
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "postgres://test", cfg.DatabaseURL)
	assert.Equal(t, "postgres", cfg.DatabaseType)
	assert.Equal(t, "admin", cfg.AdminKey)
	assert.Equal(t, "salt", cfg.KeySalt)
	assert.Equal(t, "oracle", cfg.OracleAPIKey)
	assert.Equal(t, 3*time.Second, cfg.OracleTimeout)
	assert.Equal(t, 2.5, cfg.OracleRPS)
	assert.Equal(t, 2, cfg.MatchThreshold)
	assert.Equal(t, ModeAsync, cfg.ReconcileMode)
	assert.Equal(t, 8, cfg.ReconcileWorkers)
	assert.Equal(t, 50, cfg.ReconcileBatchSize)
}

func TestParseFlags_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := ParseFlags([]string{})
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, "sqlite", cfg.DatabaseType)
	assert.Equal(t, DefaultOracleBaseURL, cfg.OracleBaseURL)
	assert.Equal(t, DefaultOracleModel, cfg.OracleModel)
	assert.Equal(t, DefaultOracleTimeout, cfg.OracleTimeout)
	assert.Zero(t, cfg.OracleRPS)
	assert.Equal(t, 3, cfg.MatchThreshold, "strict matching by default")
	assert.Equal(t, ModeSync, cfg.ReconcileMode)
	assert.Equal(t, DefaultReconcileWorkers, cfg.ReconcileWorkers)
	assert.Equal(t, DefaultReconcileBatchSize, cfg.ReconcileBatchSize)
}

func TestParseFlags_CLIOverridesEnv(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("MATCH_THRESHOLD", "2")

	cfg, err := ParseFlags([]string{
		"-p", "8080",
		"-d", "file:test.db",
		"-admin-key", "cli-admin",
		"-match-threshold", "1",
		"-oracle-timeout", "500ms",
	})
	require.NoError(t, err)

	// CLI should override env
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "file:test.db", cfg.DatabaseURL)
	assert.Equal(t, "cli-admin", cfg.AdminKey)
	assert.Equal(t, 1, cfg.MatchThreshold)
	assert.Equal(t, 500*time.Millisecond, cfg.OracleTimeout)
}

func TestParseFlags_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		args []string
	}{
		{"missing database url", map[string]string{"DATABASE_URL": ""}, nil},
		{"missing admin key", map[string]string{"ADMIN_KEY": ""}, nil},
		{"missing key salt", map[string]string{"KEY_SALT": ""}, nil},
		{"missing oracle key", map[string]string{"ORACLE_API_KEY": ""}, nil},
		{"bad port", map[string]string{"PORT": "abc"}, nil},
		{"bad database type", map[string]string{"DATABASE_TYPE": "mongo"}, nil},
		{"threshold too high", nil, []string{"-match-threshold", "4"}},
		{"threshold negative", map[string]string{"MATCH_THRESHOLD": "-1"}, nil},
		{"bad mode", map[string]string{"RECONCILE_MODE": "later"}, nil},
		{"bad timeout", map[string]string{"ORACLE_TIMEOUT": "soon"}, nil},
		{"bad rps", map[string]string{"ORACLE_RPS": "fast"}, nil},
		{"negative workers", nil, []string{"-reconcile-workers", "-2"}},
		{"unknown flag", nil, []string{"-nope"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := ParseFlags(tt.args)
			assert.Error(t, err)
		})
	}
}
