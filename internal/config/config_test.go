package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"indexfund-api/pkg/confkit"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_HydratesRegistrySection(t *testing.T) {
	t.Setenv("NO_DOTENV", "1")
	t.Setenv("FUND_REGISTRY_ID", "fund.env")
	dir := t.TempDir()
	writeFile(t, dir, "registry.yaml", `
registry_id: ${FUND_REGISTRY_ID}
storage_byte_cost: "10"
journal_dir: journal
`)
	mainPath := writeFile(t, dir, "indexfund.yaml", `
Name: indexfund-api
Host: 127.0.0.1
Port: 8888
Storage:
  Backend: SQLite
Registry:
  File: registry.yaml
`)

	cfg, err := Load(mainPath)
	require.NoError(t, err)
	assert.Equal(t, "test", cfg.Env)
	assert.True(t, cfg.IsTestEnv())
	assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
	assert.Equal(t, filepath.Join(dir, "data", "indexfund.db"), cfg.StoragePath())
	assert.Equal(t, dir, cfg.BaseDir())
	assert.Equal(t, mainPath, cfg.MainPath())
	assert.Equal(t, 10, cfg.TTL.Short)

	require.NotNil(t, cfg.Registry.Value)
	assert.Equal(t, filepath.Join(dir, "registry.yaml"), cfg.Registry.File)
	assert.Equal(t, "fund.env", cfg.Registry.Value.RegistryID)
	assert.Equal(t, filepath.Join(dir, "journal"), cfg.Registry.Value.JournalDir)
	assert.Equal(t, "1000", cfg.Registry.Value.RegistrationDeposit().Dec())
}

func TestLoad_RequiresRegistrySection(t *testing.T) {
	t.Setenv("NO_DOTENV", "1")
	dir := t.TempDir()
	mainPath := writeFile(t, dir, "indexfund.yaml", "Name: indexfund-api\nHost: 0.0.0.0\nPort: 8888\n")
	_, err := Load(mainPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "registry.file")
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{TTL: CacheTTL{Short: 1, Medium: 1, Long: 1}}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(c *Config) {}},
		{name: "bad env", mutate: func(c *Config) { c.Env = "staging" }, wantErr: "env must be one of"},
		{name: "bad backend", mutate: func(c *Config) { c.Storage.Backend = "etcd" }, wantErr: "storage.backend"},
		{name: "sqlite without path", mutate: func(c *Config) { c.Storage.Backend = BackendSQLite }, wantErr: "storage.path"},
		{name: "postgres without dsn", mutate: func(c *Config) { c.Storage.Backend = BackendPostgres }, wantErr: "postgres.dsn"},
		{
			name: "postgres without redis",
			mutate: func(c *Config) {
				c.Storage.Backend = BackendPostgres
				c.Postgres.DSN = "postgres://localhost/indexfund"
			},
			wantErr: "redis.host",
		},
		{name: "zero ttl", mutate: func(c *Config) { c.TTL.Long = 0 }, wantErr: "ttl.long"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, "test", cfg.Env)
				assert.Equal(t, BackendMemory, cfg.Storage.Backend)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_ShippedConfig(t *testing.T) {
	t.Setenv("NO_DOTENV", "1")
	t.Setenv("INDEXFUND_ENV", "dev")
	t.Setenv("INDEXFUND_REGISTRY_ID", "fund.shipped")

	mainPath := confkit.MustProjectPath("etc/indexfund.yaml")
	cfg, err := Load(mainPath)
	require.NoError(t, err)
	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
	assert.Equal(t, filepath.Join(filepath.Dir(filepath.Dir(mainPath)), "data", "indexfund.db"), cfg.StoragePath())
	require.NotNil(t, cfg.Registry.Value)
	assert.Equal(t, "fund.shipped", cfg.Registry.Value.RegistryID)
	assert.Equal(t, "1000000000000000000000", cfg.Registry.Value.RegistrationDeposit().Dec())
}
