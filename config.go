package room

import (
	"fmt"
	"io/ioutil"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v2"
)

const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Config includes settings for a World
type Config struct {
	// World (save slot) name, the first identity segment
	World string `yaml:"world" env:"ROOM_WORLD"`

	// where & how the snapshot is kept
	Backend      string `yaml:"backend" env:"ROOM_BACKEND"`
	SnapshotPath string `yaml:"snapshot_path" env:"ROOM_SNAPSHOT_PATH"`

	// render orders
	RestingOrder  int `yaml:"resting_order" env:"ROOM_RESTING_ORDER"`
	DraggingOrder int `yaml:"dragging_order" env:"ROOM_DRAGGING_ORDER"`
	HeldOrder     int `yaml:"held_order" env:"ROOM_HELD_ORDER"`

	// how far (px) an item's visual bounds may poke outside its room
	ClampMargin float64 `yaml:"clamp_margin" env:"ROOM_CLAMP_MARGIN"`

	// auto scroll while dragging near a surface edge
	EdgeThreshold float64 `yaml:"edge_threshold" env:"ROOM_EDGE_THRESHOLD"`
	ScrollSpeed   float64 `yaml:"scroll_speed" env:"ROOM_SCROLL_SPEED"`

	// visual override restore retries
	VisualRetries    int           `yaml:"visual_retries" env:"ROOM_VISUAL_RETRIES"`
	VisualRetryDelay time.Duration `yaml:"visual_retry_delay" env:"ROOM_VISUAL_RETRY_DELAY"`
}

// DefaultConfig returns a config with default settings.
func DefaultConfig() *Config {
	return &Config{
		World:            "World1",
		Backend:          BackendJSON,
		SnapshotPath:     "~/.room/snapshot.json",
		RestingOrder:     20,
		DraggingOrder:    1000,
		HeldOrder:        100,
		ClampMargin:      10,
		EdgeThreshold:    100,
		ScrollSpeed:      500,
		VisualRetries:    2,
		VisualRetryDelay: 250 * time.Millisecond,
	}
}

// LoadConfig reads defaults, then the yaml file at `fname` (if given and
// present), then ROOM_* environment overrides.
func LoadConfig(fname string) (*Config, error) {
	cfg := DefaultConfig()

	if fname != "" {
		data, err := ioutil.ReadFile(fname)
		if err != nil && !os.IsNotExist(err) {
			return nil, err
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", fname, err)
			}
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	return cfg, cfg.validate()
}

// snapshotPath returns SnapshotPath with any leading ~ expanded
func (c *Config) snapshotPath() (string, error) {
	return homedir.Expand(c.SnapshotPath)
}

func (c *Config) validate() error {
	switch c.Backend {
	case BackendJSON, BackendSQLite:
	default:
		return fmt.Errorf("unknown snapshot backend %q", c.Backend)
	}
	if c.World == "" {
		return fmt.Errorf("world name must be set")
	}
	if c.VisualRetries < 0 {
		return fmt.Errorf("visual_retries must be >= 0")
	}
	return nil
}
