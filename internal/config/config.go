package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// World holds all simulation configuration. A loaded World is treated as an
// immutable snapshot: it is passed to agents at construction and never
// mutated afterwards.
type World struct {
	LogLevel string `yaml:"log_level"`

	// Tick cadence
	TickInterval time.Duration `yaml:"tick_interval"`

	// Leash / despawn behavior
	// DespawnRadius is the horizontal distance from the spawn anchor a
	// creature may wander; 0 disables leashing.
	DespawnRadius int32 `yaml:"despawn_radius"`
	// DespawnRange is the vertical (floor) distance bound; 0 disables
	// the floor check.
	DespawnRange int32 `yaml:"despawn_range"`
	// RemoveOnDespawn removes a creature that left its leash zone
	// instead of teleporting it back to the anchor.
	RemoveOnDespawn bool `yaml:"remove_on_despawn"`
	// WalkToSpawnRadius makes a creature that lost its last opponent
	// walk home when it strayed beyond this distance; 0 disables.
	WalkToSpawnRadius int32 `yaml:"walk_to_spawn_radius"`

	// Bestiary is the profile directory.
	Bestiary string `yaml:"bestiary"`

	Rewards Rewards `yaml:"rewards"`

	Database DatabaseConfig `yaml:"database"`
}

// Rewards holds the cooperative-encounter reward weights and rates.
type Rewards struct {
	// Category weights applied to boss score table entries.
	RateDamageDone  float64 `yaml:"rate_damage_done"`
	RateDamageTaken float64 `yaml:"rate_damage_taken"`
	RateHealingDone float64 `yaml:"rate_healing_done"`
	// BaseRate multiplies every loot entry's chance. Minimum effective
	// value is 1.
	BaseRate float64 `yaml:"base_rate"`
}

// DatabaseConfig holds PostgreSQL connection parameters for offline
// reward persistence.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// DefaultWorld returns World config with sensible defaults.
func DefaultWorld() World {
	return World{
		LogLevel:          "info",
		TickInterval:      500 * time.Millisecond,
		DespawnRadius:     50,
		DespawnRange:      2,
		RemoveOnDespawn:   false,
		WalkToSpawnRadius: 10,
		Bestiary:          "bestiary",
		Rewards: Rewards{
			RateDamageDone:  1.0,
			RateDamageTaken: 1.0,
			RateHealingDone: 1.0,
			BaseRate:        1.0,
		},
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "mobai",
			Password: "mobai",
			DBName:   "mobai",
			SSLMode:  "disable",
		},
	}
}

// LoadWorld reads the world config from a YAML file, applying defaults
// for missing fields.
func LoadWorld(path string) (World, error) {
	cfg := DefaultWorld()

	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.TickInterval <= 0 {
		return cfg, fmt.Errorf("config %s: tick_interval must be positive", path)
	}

	return cfg, nil
}
