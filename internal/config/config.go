// Package config handles tool configuration loading and management.
package config

// Config holds all simplifier settings.
type Config struct {
	Simplify SimplifyConfig `yaml:"simplify"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// SimplifyConfig holds the simplification weights and tolerances.
type SimplifyConfig struct {
	Ratio             float64 `yaml:"ratio"`              // Fraction of faces to remove
	GeoWeight         float64 `yaml:"geo_weight"`         // Face-plane quadric weight
	NormWeight        float64 `yaml:"norm_weight"`        // Normal attribute penalty
	UVWeight          float64 `yaml:"uv_weight"`          // Base UV attribute penalty
	BoundaryWeight    float64 `yaml:"boundary_weight"`    // Boundary anchor weight
	WeldScale         float64 `yaml:"weld_scale"`         // Positions quantized to 1/weld_scale
	AttributeQuadrics bool    `yaml:"attribute_quadrics"` // Enable attribute penalty terms
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with the standard weight set.
func Default() *Config {
	return &Config{
		Simplify: SimplifyConfig{
			Ratio:             0.5,
			GeoWeight:         1.0,
			NormWeight:        0.1,
			UVWeight:          0.1,
			BoundaryWeight:    10000.0,
			WeldScale:         10000.0,
			AttributeQuadrics: true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
