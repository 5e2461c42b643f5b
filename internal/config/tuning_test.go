package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultTuningConfig(t *testing.T) {
	cfg := DefaultTuningConfig()

	if cfg.RingSize == nil || *cfg.RingSize != 2 {
		t.Errorf("Expected RingSize 2, got %v", cfg.RingSize)
	}
	if cfg.DecoderWorkers == nil || *cfg.DecoderWorkers != 4 {
		t.Errorf("Expected DecoderWorkers 4, got %v", cfg.DecoderWorkers)
	}
	if cfg.DefaultNewtonH0 == nil || *cfg.DefaultNewtonH0 != 50 {
		t.Errorf("Expected DefaultNewtonH0 50, got %v", cfg.DefaultNewtonH0)
	}

	if cfg.GetRingSize() != 2 {
		t.Errorf("GetRingSize() = %d, want 2", cfg.GetRingSize())
	}
	if cfg.GetFrameThumbnailQuality() != 70 {
		t.Errorf("GetFrameThumbnailQuality() = %d, want 70", cfg.GetFrameThumbnailQuality())
	}
}

func TestLoadTuningConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test_config.json")

	testJSON := `{
  "ring_size": 3,
  "decoder_workers": 8,
  "default_median_window": 7,
  "default_newton_max_iter": 40
}`
	if err := os.WriteFile(configPath, []byte(testJSON), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := LoadTuningConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.GetRingSize() != 3 {
		t.Errorf("GetRingSize() = %d, want 3", cfg.GetRingSize())
	}
	if cfg.GetDecoderWorkers() != 8 {
		t.Errorf("GetDecoderWorkers() = %d, want 8", cfg.GetDecoderWorkers())
	}
	if cfg.GetDefaultMedianWindow() != 7 {
		t.Errorf("GetDefaultMedianWindow() = %d, want 7", cfg.GetDefaultMedianWindow())
	}
	if cfg.GetDefaultNewtonMaxIter() != 40 {
		t.Errorf("GetDefaultNewtonMaxIter() = %d, want 40", cfg.GetDefaultNewtonMaxIter())
	}
	// Fields omitted from the partial JSON keep their defaults.
	if cfg.GetFrameThumbnailQuality() != 70 {
		t.Errorf("GetFrameThumbnailQuality() = %d, want default 70", cfg.GetFrameThumbnailQuality())
	}
}

func TestLoadTuningConfigMissing(t *testing.T) {
	_, err := LoadTuningConfig("/nonexistent/path/to/config.json")
	if err == nil {
		t.Error("Expected error when loading missing file, got nil")
	}
}

func TestLoadTuningConfigInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid_config.json")

	invalidJSON := `{
  "ring_size": "invalid"
`
	if err := os.WriteFile(configPath, []byte(invalidJSON), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	_, err := LoadTuningConfig(configPath)
	if err == nil {
		t.Error("Expected error when loading invalid JSON, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *TuningConfig
		wantErr bool
	}{
		{name: "valid config", cfg: DefaultTuningConfig(), wantErr: false},
		{name: "empty config is valid", cfg: &TuningConfig{}, wantErr: false},
		{name: "zero ring size", cfg: &TuningConfig{RingSize: ptrInt(0)}, wantErr: true},
		{name: "zero decoder workers", cfg: &TuningConfig{DecoderWorkers: ptrInt(0)}, wantErr: true},
		{name: "wavelet threshold at boundary", cfg: &TuningConfig{DefaultWaveletThreshold: ptrFloat64(1.0)}, wantErr: true},
		{name: "negative newton h0", cfg: &TuningConfig{DefaultNewtonH0: ptrFloat64(-1)}, wantErr: true},
		{name: "invalid progress poll interval", cfg: &TuningConfig{ProgressPollInterval: ptrString("nope")}, wantErr: true},
		{name: "negative worker pool size", cfg: &TuningConfig{WorkerPoolSize: ptrInt(-1)}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGetProgressPollInterval(t *testing.T) {
	tests := []struct {
		name string
		cfg  *TuningConfig
		want time.Duration
	}{
		{name: "20 milliseconds", cfg: &TuningConfig{ProgressPollInterval: ptrString("20ms")}, want: 20 * time.Millisecond},
		{name: "nil pointer returns default", cfg: &TuningConfig{}, want: 20 * time.Millisecond},
		{name: "empty string returns default", cfg: &TuningConfig{ProgressPollInterval: ptrString("")}, want: 20 * time.Millisecond},
		{name: "invalid duration returns default", cfg: &TuningConfig{ProgressPollInterval: ptrString("invalid")}, want: 20 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.cfg.GetProgressPollInterval()
			if got != tt.want {
				t.Errorf("GetProgressPollInterval() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoadTuningConfigRejectsNonJSON(t *testing.T) {
	_, err := LoadTuningConfig("/some/path/config.yaml")
	if err == nil {
		t.Error("Expected error for non-.json extension, got nil")
	}
}

func TestLoadTuningConfigRejectsLargeFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "large.json")

	largeData := make([]byte, 2*1024*1024) // 2MB
	if err := os.WriteFile(configPath, largeData, 0644); err != nil {
		t.Fatalf("Failed to write large file: %v", err)
	}

	_, err := LoadTuningConfig(configPath)
	if err == nil {
		t.Error("Expected error for file size > 1MB, got nil")
	}
}

func TestLoadTuningConfigPartial(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "partial.json")

	partialJSON := `{
  "default_wavelet_threshold": 0.3
}`
	if err := os.WriteFile(configPath, []byte(partialJSON), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := LoadTuningConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load partial config: %v", err)
	}

	if cfg.GetDefaultWaveletThreshold() != 0.3 {
		t.Errorf("Expected overridden DefaultWaveletThreshold 0.3, got %f", cfg.GetDefaultWaveletThreshold())
	}
	if cfg.GetRingSize() != 2 {
		t.Errorf("Expected default RingSize 2, got %d", cfg.GetRingSize())
	}
	if cfg.GetDefaultNewtonMaxIter() != 20 {
		t.Errorf("Expected default DefaultNewtonMaxIter 20, got %d", cfg.GetDefaultNewtonMaxIter())
	}
}
