package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"indexfund-api/internal/config"
)

func TestFormatKey(t *testing.T) {
	assert.Equal(t, "indexfund:registry:fund.near:snapshot", RegistrySnapshotKey("fund.near"))
	assert.Equal(t, "indexfund:lock:registry:fund.near", RegistryLockKey(" fund.near "))
	assert.Equal(t, "indexfund:registry:snapshot", RegistrySnapshotKey("  "))
}

func TestTTLSet(t *testing.T) {
	ttl := NewTTLSet(config.CacheTTL{Short: 0, Medium: 30, Long: -1})
	assert.Equal(t, 10*time.Second, ttl.Short)
	assert.Equal(t, 30*time.Second, ttl.Medium)
	assert.Equal(t, time.Duration(0), ttl.Long)
	assert.Equal(t, 5*time.Second, RegistryLockTTL(ttl))
	assert.Equal(t, time.Duration(0), RegistrySnapshotTTL(ttl))
	assert.Equal(t, time.Duration(0), ttl.Duration("bogus"))
}
