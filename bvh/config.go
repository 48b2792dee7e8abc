package bvh

import (
	"io"
	"io/ioutil"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

const (
	// The default depth budget for the builder.
	DefaultMaxDepth = 30

	minAllowedBins    = 4
	maxAllowedBins    = 128
	minMortonBits     = 6
	maxMortonBits     = 16
	minClusterThresh  = 16
	defaultLargeScene = 50000
)

// Morton presorter options.
type MortonConfig struct {
	// Enable spatial presorting.
	Enabled bool `yaml:"enabled"`

	// Quantization bits per axis (6-16).
	Bits int `yaml:"bits"`

	// Inputs with fewer primitives are not presorted (>= 16).
	ClusterThreshold int `yaml:"clusterThreshold"`

	// Inputs with more primitives use two-level clustering.
	LargeSceneThreshold int `yaml:"largeSceneThreshold"`
}

// Toggles for the split selector tiers. A disabled tier behaves as if it
// failed to find a split.
type FallbackConfig struct {
	SAH           bool `yaml:"sah"`
	ObjectMedian  bool `yaml:"objectMedian"`
	SpatialMedian bool `yaml:"spatialMedian"`
}

// Config controls the BVH builder. Use DefaultConfig to obtain a config with
// all tiers and presorting enabled and override the fields you need.
type Config struct {
	// Bin count bounds and the base count for the adaptive binned SAH.
	MinBins  int `yaml:"minBins"`
	MaxBins  int `yaml:"maxBins"`
	BaseBins int `yaml:"baseBins"`

	// Sets with at most this many primitives become leaves.
	MaxLeafSize int `yaml:"maxLeafSize"`

	// SAH cost model constants.
	TraversalCost    float32 `yaml:"traversalCost"`
	IntersectionCost float32 `yaml:"intersectionCost"`

	Morton   MortonConfig   `yaml:"morton"`
	Fallback FallbackConfig `yaml:"fallback"`

	// Run builds on a background worker when a pool is available.
	Background bool `yaml:"background"`

	// Log verbosity used by the command line tool.
	LogLevel string `yaml:"logLevel,omitempty"`
}

// Get the default builder configuration.
func DefaultConfig() Config {
	return Config{
		MinBins:          minAllowedBins,
		MaxBins:          64,
		BaseBins:         8,
		MaxLeafSize:      4,
		TraversalCost:    1.0,
		IntersectionCost: 1.0,
		Morton: MortonConfig{
			Enabled:             true,
			Bits:                10,
			ClusterThreshold:    128,
			LargeSceneThreshold: defaultLargeScene,
		},
		Fallback: FallbackConfig{
			SAH:           true,
			ObjectMedian:  true,
			SpatialMedian: true,
		},
	}
}

// Validate checks that all options are within their documented ranges.
func (c Config) Validate() error {
	switch {
	case c.MinBins < minAllowedBins:
		return errors.Wrapf(ErrInvalidConfig, "minBins must be >= %d; got %d", minAllowedBins, c.MinBins)
	case c.MaxBins > maxAllowedBins:
		return errors.Wrapf(ErrInvalidConfig, "maxBins must be <= %d; got %d", maxAllowedBins, c.MaxBins)
	case c.MinBins > c.MaxBins:
		return errors.Wrapf(ErrInvalidConfig, "minBins (%d) must not exceed maxBins (%d)", c.MinBins, c.MaxBins)
	case c.BaseBins < 1:
		return errors.Wrapf(ErrInvalidConfig, "baseBins must be >= 1; got %d", c.BaseBins)
	case c.MaxLeafSize < 1:
		return errors.Wrapf(ErrInvalidConfig, "maxLeafSize must be >= 1; got %d", c.MaxLeafSize)
	case c.TraversalCost < 0 || c.IntersectionCost <= 0:
		return errors.Wrapf(ErrInvalidConfig, "SAH costs must be positive; got traversal %f, intersection %f", c.TraversalCost, c.IntersectionCost)
	case c.Morton.Bits < minMortonBits || c.Morton.Bits > maxMortonBits:
		return errors.Wrapf(ErrInvalidConfig, "morton bits must be in [%d, %d]; got %d", minMortonBits, maxMortonBits, c.Morton.Bits)
	case c.Morton.ClusterThreshold < minClusterThresh:
		return errors.Wrapf(ErrInvalidConfig, "morton clusterThreshold must be >= %d; got %d", minClusterThresh, c.Morton.ClusterThreshold)
	case c.Morton.LargeSceneThreshold < c.Morton.ClusterThreshold:
		return errors.Wrapf(ErrInvalidConfig, "morton largeSceneThreshold (%d) must not be below clusterThreshold (%d)", c.Morton.LargeSceneThreshold, c.Morton.ClusterThreshold)
	}
	return nil
}

// Clamp out of range options to the nearest valid value. Zero values are
// replaced by their defaults.
func (c Config) normalize() Config {
	def := DefaultConfig()

	c.MinBins = clampInt(c.MinBins, minAllowedBins, maxAllowedBins)
	if c.MaxBins == 0 {
		c.MaxBins = def.MaxBins
	}
	c.MaxBins = clampInt(c.MaxBins, c.MinBins, maxAllowedBins)
	if c.BaseBins <= 0 {
		c.BaseBins = def.BaseBins
	}
	if c.MaxLeafSize <= 0 {
		c.MaxLeafSize = def.MaxLeafSize
	}
	if c.TraversalCost < 0 {
		c.TraversalCost = def.TraversalCost
	}
	if c.IntersectionCost <= 0 {
		c.IntersectionCost = def.IntersectionCost
	}

	if c.Morton.Bits == 0 {
		c.Morton.Bits = def.Morton.Bits
	}
	c.Morton.Bits = clampInt(c.Morton.Bits, minMortonBits, maxMortonBits)
	if c.Morton.ClusterThreshold == 0 {
		c.Morton.ClusterThreshold = def.Morton.ClusterThreshold
	}
	if c.Morton.ClusterThreshold < minClusterThresh {
		c.Morton.ClusterThreshold = minClusterThresh
	}
	if c.Morton.LargeSceneThreshold == 0 {
		c.Morton.LargeSceneThreshold = def.Morton.LargeSceneThreshold
	}
	if c.Morton.LargeSceneThreshold < c.Morton.ClusterThreshold {
		c.Morton.LargeSceneThreshold = c.Morton.ClusterThreshold
	}

	return c
}

// Read a YAML encoded config. Options missing from the input keep their
// default values. The resulting config is validated.
func ReadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()

	data, err := ioutil.ReadAll(r)
	if err != nil {
		return cfg, errors.Wrap(err, "bvh: could not read config")
	}

	if err = yaml.UnmarshalStrict(data, &cfg); err != nil {
		return cfg, errors.Wrapf(ErrInvalidConfig, "%s", err.Error())
	}

	return cfg, cfg.Validate()
}

// Encode config as YAML.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
