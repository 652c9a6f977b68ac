package cli

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/zeromicro/go-zero/core/logx"

	"indexfund-api/internal/config"
	"indexfund-api/pkg/confkit"
	hostpkg "indexfund-api/pkg/host"
)

func TestConfigSummaryLines(t *testing.T) {
	assert.Equal(t, []string{"Configuration: <nil>"}, ConfigSummaryLines(nil))

	cfg := &config.Config{
		Env:     "dev",
		Storage: config.StorageConf{Backend: config.BackendMemory},
		TTL:     config.CacheTTL{Short: 1, Medium: 2, Long: 3},
		Registry: confkit.Section[hostpkg.Config]{
			File:  "/etc/indexfund/registry.yaml",
			Value: &hostpkg.Config{RegistryID: "fund.near", StorageByteCost: uint256.NewInt(2)},
		},
	}
	lines := ConfigSummaryLines(cfg)
	assert.Contains(t, lines, "Environment: dev")
	assert.Contains(t, lines, "Storage backend: memory")
	assert.Contains(t, lines, "Postgres: not configured")
	assert.Contains(t, lines, "TTL (short/medium/long): 1s / 2s / 3s")
	assert.Contains(t, lines, "Registry config: /etc/indexfund/registry.yaml")
	assert.Contains(t, lines, "Registry: fund.near")
	assert.Contains(t, lines, "Registration deposit: 200")
	assert.Contains(t, lines, "Journal: disabled")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, uint32(logx.DebugLevel), ParseLevel(" DEBUG "))
	assert.Equal(t, uint32(logx.ErrorLevel), ParseLevel("error"))
	assert.Equal(t, uint32(logx.SevereLevel), ParseLevel("fatal"))
	assert.Equal(t, uint32(logx.InfoLevel), ParseLevel("chatty"))
}
