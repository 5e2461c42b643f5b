package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
// This is the single source of truth for all default tuning values.
const DefaultConfigPath = "config/tuning.defaults.json"

// TuningConfig holds the runtime-tunable knobs for the reconcile loop
// and its stage executors. Every field is optional; a nil field falls
// back to the default returned by its Get* accessor, so partial JSON
// configs are safe to load on top of the built-in defaults.
type TuningConfig struct {
	// Smooth-seek video decoding (§4.3).
	RingSize             *int    `json:"ring_size,omitempty"`
	DecoderWorkers       *int    `json:"decoder_workers,omitempty"`
	PacketCacheCapacity  *int    `json:"packet_cache_capacity,omitempty"`
	FrameThumbnailQuality *int   `json:"frame_thumbnail_quality,omitempty"`

	// Green2 builder (§4.4).
	Green2ChunkSize *int `json:"green2_chunk_size,omitempty"`

	// Filter defaults (§4.5).
	DefaultMedianWindow      *int     `json:"default_median_window,omitempty"`
	DefaultWaveletThreshold  *float64 `json:"default_wavelet_threshold,omitempty"`

	// Solver defaults (§4.8).
	DefaultNewtonH0            *float64 `json:"default_newton_h0,omitempty"`
	DefaultNewtonMaxIter       *int     `json:"default_newton_max_iter,omitempty"`
	NewtonDownMaxHalvings      *int     `json:"newton_down_max_halvings,omitempty"`
	NewtonConvergenceTolerance *float64 `json:"newton_convergence_tolerance,omitempty"`

	// Progress monitor (§4.10).
	ProgressPollInterval *string `json:"progress_poll_interval,omitempty"` // duration string like "20ms"

	// CPU worker pool (§5).
	WorkerPoolSize *int `json:"worker_pool_size,omitempty"`
}

func ptrFloat64(v float64) *float64 { return &v }
func ptrInt(v int) *int             { return &v }
func ptrString(v string) *string    { return &v }

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
// Use LoadTuningConfig to load actual values from the defaults file.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// DefaultTuningConfig returns a TuningConfig with every field populated
// from its documented default, useful for tests that want to assert on
// concrete values rather than relying on getter fallbacks.
func DefaultTuningConfig() *TuningConfig {
	return &TuningConfig{
		RingSize:                   ptrInt(2),
		DecoderWorkers:             ptrInt(4),
		PacketCacheCapacity:        ptrInt(512),
		FrameThumbnailQuality:      ptrInt(70),
		Green2ChunkSize:            ptrInt(64),
		DefaultMedianWindow:        ptrInt(5),
		DefaultWaveletThreshold:    ptrFloat64(0.6),
		DefaultNewtonH0:            ptrFloat64(50),
		DefaultNewtonMaxIter:       ptrInt(20),
		NewtonDownMaxHalvings:      ptrInt(6),
		NewtonConvergenceTolerance: ptrFloat64(1e-4),
		ProgressPollInterval:       ptrString("20ms"),
		WorkerPoolSize:             ptrInt(0),
	}
}

// LoadTuningConfig loads a TuningConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under the max file size.
// Fields omitted from the JSON file retain their default values, so
// partial configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical tuning defaults from DefaultConfigPath.
// It searches for the file in the current directory and common parent directories.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *TuningConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,
		"../../../" + DefaultConfigPath,
		"../../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	if c.RingSize != nil && *c.RingSize < 1 {
		return fmt.Errorf("ring_size must be >= 1, got %d", *c.RingSize)
	}
	if c.DecoderWorkers != nil && *c.DecoderWorkers < 1 {
		return fmt.Errorf("decoder_workers must be >= 1, got %d", *c.DecoderWorkers)
	}
	if c.PacketCacheCapacity != nil && *c.PacketCacheCapacity < 1 {
		return fmt.Errorf("packet_cache_capacity must be >= 1, got %d", *c.PacketCacheCapacity)
	}
	if c.FrameThumbnailQuality != nil && (*c.FrameThumbnailQuality < 1 || *c.FrameThumbnailQuality > 100) {
		return fmt.Errorf("frame_thumbnail_quality must be between 1 and 100, got %d", *c.FrameThumbnailQuality)
	}
	if c.Green2ChunkSize != nil && *c.Green2ChunkSize < 1 {
		return fmt.Errorf("green2_chunk_size must be >= 1, got %d", *c.Green2ChunkSize)
	}
	if c.DefaultMedianWindow != nil && *c.DefaultMedianWindow < 1 {
		return fmt.Errorf("default_median_window must be >= 1, got %d", *c.DefaultMedianWindow)
	}
	if c.DefaultWaveletThreshold != nil && (*c.DefaultWaveletThreshold <= 0 || *c.DefaultWaveletThreshold >= 1) {
		return fmt.Errorf("default_wavelet_threshold must be in (0,1), got %f", *c.DefaultWaveletThreshold)
	}
	if c.DefaultNewtonH0 != nil && *c.DefaultNewtonH0 <= 0 {
		return fmt.Errorf("default_newton_h0 must be > 0, got %f", *c.DefaultNewtonH0)
	}
	if c.DefaultNewtonMaxIter != nil && *c.DefaultNewtonMaxIter < 1 {
		return fmt.Errorf("default_newton_max_iter must be >= 1, got %d", *c.DefaultNewtonMaxIter)
	}
	if c.NewtonDownMaxHalvings != nil && *c.NewtonDownMaxHalvings < 0 {
		return fmt.Errorf("newton_down_max_halvings must be >= 0, got %d", *c.NewtonDownMaxHalvings)
	}
	if c.NewtonConvergenceTolerance != nil && *c.NewtonConvergenceTolerance <= 0 {
		return fmt.Errorf("newton_convergence_tolerance must be > 0, got %f", *c.NewtonConvergenceTolerance)
	}
	if c.ProgressPollInterval != nil && *c.ProgressPollInterval != "" {
		if _, err := time.ParseDuration(*c.ProgressPollInterval); err != nil {
			return fmt.Errorf("invalid progress_poll_interval %q: %w", *c.ProgressPollInterval, err)
		}
	}
	if c.WorkerPoolSize != nil && *c.WorkerPoolSize < 0 {
		return fmt.Errorf("worker_pool_size must be >= 0, got %d", *c.WorkerPoolSize)
	}
	return nil
}

func (c *TuningConfig) GetRingSize() int {
	if c.RingSize == nil {
		return 2
	}
	return *c.RingSize
}

func (c *TuningConfig) GetDecoderWorkers() int {
	if c.DecoderWorkers == nil {
		return 4
	}
	return *c.DecoderWorkers
}

func (c *TuningConfig) GetPacketCacheCapacity() int {
	if c.PacketCacheCapacity == nil {
		return 512
	}
	return *c.PacketCacheCapacity
}

func (c *TuningConfig) GetFrameThumbnailQuality() int {
	if c.FrameThumbnailQuality == nil {
		return 70
	}
	return *c.FrameThumbnailQuality
}

func (c *TuningConfig) GetGreen2ChunkSize() int {
	if c.Green2ChunkSize == nil {
		return 64
	}
	return *c.Green2ChunkSize
}

func (c *TuningConfig) GetDefaultMedianWindow() int {
	if c.DefaultMedianWindow == nil {
		return 5
	}
	return *c.DefaultMedianWindow
}

func (c *TuningConfig) GetDefaultWaveletThreshold() float64 {
	if c.DefaultWaveletThreshold == nil {
		return 0.6
	}
	return *c.DefaultWaveletThreshold
}

func (c *TuningConfig) GetDefaultNewtonH0() float64 {
	if c.DefaultNewtonH0 == nil {
		return 50
	}
	return *c.DefaultNewtonH0
}

func (c *TuningConfig) GetDefaultNewtonMaxIter() int {
	if c.DefaultNewtonMaxIter == nil {
		return 20
	}
	return *c.DefaultNewtonMaxIter
}

func (c *TuningConfig) GetNewtonDownMaxHalvings() int {
	if c.NewtonDownMaxHalvings == nil {
		return 6
	}
	return *c.NewtonDownMaxHalvings
}

func (c *TuningConfig) GetNewtonConvergenceTolerance() float64 {
	if c.NewtonConvergenceTolerance == nil {
		return 1e-4
	}
	return *c.NewtonConvergenceTolerance
}

func (c *TuningConfig) GetProgressPollInterval() time.Duration {
	if c.ProgressPollInterval == nil || *c.ProgressPollInterval == "" {
		return 20 * time.Millisecond
	}
	d, err := time.ParseDuration(*c.ProgressPollInterval)
	if err != nil {
		return 20 * time.Millisecond
	}
	return d
}

// GetWorkerPoolSize returns the configured CPU worker pool size, or 0 to
// mean "use runtime.GOMAXPROCS(0)" (the caller's responsibility).
func (c *TuningConfig) GetWorkerPoolSize() int {
	if c.WorkerPoolSize == nil {
		return 0
	}
	return *c.WorkerPoolSize
}
