package host

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/holiman/uint256"
	"gopkg.in/yaml.v3"

	"indexfund-api/pkg/registry"
)

// defaultStorageByteCost is 10^19 per byte, so registration costs 10^21 units.
const defaultStorageByteCost = "10000000000000000000"

// Config describes the hosting environment a registry runs in.
type Config struct {
	RegistryID         string `yaml:"registry_id"`
	StorageByteCostRaw string `yaml:"storage_byte_cost"`
	JournalDir         string `yaml:"journal_dir"`
	LogLevel           string `yaml:"log_level"`

	StorageByteCost *uint256.Int `yaml:"-"`

	baseDir string
}

// LoadConfig reads configuration from disk.
func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open host config: %w", err)
	}
	defer file.Close()
	return LoadConfigFromReader(file, filepath.Dir(path))
}

// LoadConfigFromReader constructs a Config from a reader with the provided base directory.
func LoadConfigFromReader(r io.Reader, baseDir string) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read host config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal host config: %w", err)
	}
	cfg.baseDir = baseDir
	if err := cfg.normalise(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalise() error {
	c.RegistryID = strings.TrimSpace(os.ExpandEnv(c.RegistryID))
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.JournalDir = c.resolvePath(c.JournalDir)

	raw := strings.TrimSpace(os.ExpandEnv(c.StorageByteCostRaw))
	if raw == "" {
		raw = defaultStorageByteCost
	}
	cost, err := uint256.FromDecimal(raw)
	if err != nil {
		return fmt.Errorf("host config: invalid storage_byte_cost %q: %w", raw, err)
	}
	c.StorageByteCostRaw = raw
	c.StorageByteCost = cost
	return nil
}

func (c *Config) resolvePath(path string) string {
	path = strings.TrimSpace(os.ExpandEnv(path))
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.baseDir, path)
}

// Validate ensures configuration sanity.
func (c *Config) Validate() error {
	if c.RegistryID == "" {
		return errors.New("host config: registry_id is required")
	}
	if c.StorageByteCost == nil {
		return errors.New("host config: storage_byte_cost is required")
	}
	switch c.LogLevel {
	case "", "debug", "info", "error", "severe":
	default:
		return fmt.Errorf("host config: unknown log_level %q", c.LogLevel)
	}
	return nil
}

// RegistrationDeposit is the minimum deposit needed to register a controller.
func (c *Config) RegistrationDeposit() *uint256.Int {
	return registry.RegistrationThreshold(c.StorageByteCost)
}
