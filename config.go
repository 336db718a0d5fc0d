package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all server configuration
type Config struct {
	Addr      string `yaml:"addr"`
	ClientDir string `yaml:"client_dir"`
	DBPath    string `yaml:"db_path"`

	Grid  GridConfig  `yaml:"grid"`
	Field FieldConfig `yaml:"field"`
}

// GridConfig holds collision grid tuning parameters
type GridConfig struct {
	// Per-axis cell edge length. Smaller cells shrink candidate sets but
	// increase insertion fan-out for large asteroids.
	CellSizeX float64 `yaml:"cell_size_x"`
	CellSizeY float64 `yaml:"cell_size_y"`
	CellSizeZ float64 `yaml:"cell_size_z"`
}

// CellSize returns the cell size as a vector
func (g GridConfig) CellSize() Vector3 {
	return Vector3{g.CellSizeX, g.CellSizeY, g.CellSizeZ}
}

// FieldConfig holds asteroid field generation parameters
type FieldConfig struct {
	NumAsteroids     int     `yaml:"num_asteroids"`
	NumClusters      int     `yaml:"num_clusters"`
	ClusterSpread    float64 `yaml:"cluster_spread"`
	ScatterRadius    float64 `yaml:"scatter_radius"`
	LargeChance      float64 `yaml:"large_chance"`
	MinRotationSpeed float64 `yaml:"min_rotation_speed"`
	MaxRotationSpeed float64 `yaml:"max_rotation_speed"`
	InitialHitPoints int     `yaml:"initial_hit_points"`
	BaseRadius       float64 `yaml:"base_radius"`
	Irregularity     float64 `yaml:"irregularity"`
	ShakeMagnitude   float64 `yaml:"shake_magnitude"`
}

// MaxExtent returns the world half-extent the grid must cover for this field:
// the farthest possible asteroid surface plus one cell of padding.
func (f FieldConfig) MaxExtent(cellPadding float64) float64 {
	maxRadius := f.BaseRadius * 3.0
	return f.ClusterSpread + f.ScatterRadius + maxRadius + cellPadding
}

// DefaultConfig returns the configuration with all defaults applied
func DefaultConfig() Config {
	return Config{
		Addr:      ":8080",
		ClientDir: "../client",
		DBPath:    "asteroid.db",
		Grid: GridConfig{
			CellSizeX: 10.0,
			CellSizeY: 10.0,
			CellSizeZ: 10.0,
		},
		Field: FieldConfig{
			NumAsteroids:     1000,
			NumClusters:      10,
			ClusterSpread:    125.0,
			ScatterRadius:    8.0,
			LargeChance:      0.1,
			MinRotationSpeed: 5.0,
			MaxRotationSpeed: 30.0,
			InitialHitPoints: 3,
			BaseRadius:       0.5,
			Irregularity:     0.7,
			ShakeMagnitude:   0.08,
		},
	}
}

// LoadConfig loads configuration from a YAML file, applying defaults for
// anything unset. A missing file is not an error; defaults are returned.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}
