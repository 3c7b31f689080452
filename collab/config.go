package collab

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds session tunables. Zero fields take their defaults.
type Config struct {
	// InactivityWindow is how long a silent participant stays present
	// (default: 5s).
	InactivityWindow time.Duration `yaml:"inactivity_window"`

	// AmbiguityWindow is how close two edits of one layer must be to be
	// reported as a conflict (default: 2s).
	AmbiguityWindow time.Duration `yaml:"ambiguity_window"`

	// PruneInterval is how often Run drops inactive participants
	// (default: 1s).
	PruneInterval time.Duration `yaml:"prune_interval"`

	// HeartbeatInterval is how often Run announces the local user while
	// connected, so an idle participant keeps its presence and its zone
	// (default: the smaller of PruneInterval and half the
	// InactivityWindow).
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval"`

	// DedupCapacity is how many event ids are remembered (default: 4096).
	DedupCapacity int `yaml:"dedup_capacity"`

	// LogCapacity bounds the edits kept per zone (default: 256).
	LogCapacity int `yaml:"log_capacity"`

	// NoticeBuffer is the buffer of each Subscribe channel (default: 32).
	NoticeBuffer int `yaml:"notice_buffer"`
}

func (c *Config) defaults() {
	if c.InactivityWindow <= 0 {
		c.InactivityWindow = 5 * time.Second
	}
	if c.AmbiguityWindow <= 0 {
		c.AmbiguityWindow = 2 * time.Second
	}
	if c.PruneInterval <= 0 {
		c.PruneInterval = time.Second
	}
	if c.HeartbeatInterval <= 0 {
		c.HeartbeatInterval = min(c.PruneInterval, c.InactivityWindow/2)
	}
	if c.DedupCapacity <= 0 {
		c.DedupCapacity = 4096
	}
	if c.LogCapacity <= 0 {
		c.LogCapacity = 256
	}
	if c.NoticeBuffer <= 0 {
		c.NoticeBuffer = 32
	}
}

// DefaultConfig returns the default tunables.
func DefaultConfig() Config {
	var c Config
	c.defaults()
	return c
}

// ParseConfig decodes a YAML configuration. Durations are written like
// "5s" or "1500ms".
func ParseConfig(data []byte) (Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("collab: parse config: %w", err)
	}
	c.defaults()
	return c, nil
}

// LoadConfigFile reads a YAML configuration file.
func LoadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("collab: %w", err)
	}
	return ParseConfig(data)
}
