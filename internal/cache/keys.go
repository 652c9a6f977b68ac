package cache

import (
	"strings"
	"time"

	"indexfund-api/internal/config"
)

// Namespace is the Redis key prefix for the index fund application.
const Namespace = "indexfund"

// TTLClass represents a config-driven TTL bucket.
type TTLClass string

const (
	TTLShort  TTLClass = "short"
	TTLMedium TTLClass = "medium"
	TTLLong   TTLClass = "long"
)

// TTLSet normalises cache TTLs from config into time.Duration values.
type TTLSet struct {
	Short  time.Duration
	Medium time.Duration
	Long   time.Duration
}

// NewTTLSet converts config TTLs (in seconds) into durations.
func NewTTLSet(cfg config.CacheTTL) TTLSet {
	return TTLSet{
		Short:  durationOrDefault(cfg.Short, 10*time.Second),
		Medium: durationOrDefault(cfg.Medium, time.Minute),
		Long:   durationOrDefault(cfg.Long, 5*time.Minute),
	}
}

func durationOrDefault(seconds int, fallback time.Duration) time.Duration {
	if seconds < 0 {
		return 0
	}
	if seconds == 0 {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}

// Duration returns the configured duration for the given TTL class.
func (t TTLSet) Duration(class TTLClass) time.Duration {
	switch class {
	case TTLShort:
		return t.Short
	case TTLMedium:
		return t.Medium
	case TTLLong:
		return t.Long
	default:
		return 0
	}
}

// Scaled applies a multiplier to a TTL class, useful for half/double TTL variants.
func (t TTLSet) Scaled(class TTLClass, factor float64) time.Duration {
	base := t.Duration(class)
	if base <= 0 || factor <= 0 {
		return base
	}
	return time.Duration(float64(base) * factor)
}

func formatKey(parts ...string) string {
	values := make([]string, 0, len(parts)+1)
	values = append(values, Namespace)
	for _, part := range parts {
		clean := strings.TrimSpace(part)
		if clean == "" {
			continue
		}
		values = append(values, clean)
	}
	return strings.Join(values, ":")
}

// --- Registry Keys ----------------------------------------------------------

// RegistrySnapshotKey holds the full persisted state of one registry.
func RegistrySnapshotKey(registryID string) string {
	return formatKey("registry", registryID, "snapshot")
}

// RegistryLockKey guards concurrent writers across processes.
func RegistryLockKey(registryID string) string {
	return formatKey("lock", "registry", registryID)
}

// --- TTL Helpers ------------------------------------------------------------

// RegistrySnapshotTTL returns the TTL for cached registry snapshots.
func RegistrySnapshotTTL(ttl TTLSet) time.Duration {
	return ttl.Duration(TTLLong)
}

// RegistryLockTTL returns the TTL for the cross-process writer lock.
func RegistryLockTTL(ttl TTLSet) time.Duration {
	return ttl.Scaled(TTLShort, 0.5) // target ~5s when short=10s
}
