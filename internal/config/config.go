// Package config loads the framing server's YAML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/viper"
)

// Source selects which ImageSource backs a pipeline.
type Source string

const (
	SourceMock               Source = "mock"
	SourceScreenRegion       Source = "screen_region"
	SourceWindowTitle        Source = "window_title"
	SourceCPUMonitor         Source = "cpu_monitor"
	SourceMetricsDashboard   Source = "metrics_dashboard"
)

func (s Source) valid() bool {
	switch s {
	case SourceMock, SourceScreenRegion, SourceWindowTitle, SourceCPUMonitor, SourceMetricsDashboard:
		return true
	default:
		return false
	}
}

// WhiteBalance is the per-channel multiplier triple applied after gamma.
type WhiteBalance struct {
	R float64 `mapstructure:"r" yaml:"r"`
	G float64 `mapstructure:"g" yaml:"g"`
	B float64 `mapstructure:"b" yaml:"b"`
}

// PipelineConfig is the immutable per-pipeline configuration bundle.
type PipelineConfig struct {
	Name                     string       `mapstructure:"name" yaml:"name"`
	ListenPort               int          `mapstructure:"listen_port" yaml:"listen_port"`
	TargetWidth              int          `mapstructure:"target_width" yaml:"target_width"`
	TargetHeight             int          `mapstructure:"target_height" yaml:"target_height"`
	Source                   Source       `mapstructure:"source" yaml:"source"`

	Gamma    float64      `mapstructure:"gamma" yaml:"gamma"`
	WBScale  WhiteBalance `mapstructure:"wb_scale" yaml:"wb_scale"`

	MaxChunkPayloadBytes int `mapstructure:"max_chunk_payload_bytes" yaml:"max_chunk_payload_bytes"`

	TargetFPS            float64 `mapstructure:"target_fps" yaml:"target_fps"`
	FPSHistorySize       int     `mapstructure:"fps_history_size" yaml:"fps_history_size"`
	FPSHysteresisFactor  float64 `mapstructure:"fps_hysteresis_factor" yaml:"fps_hysteresis_factor"`

	MinDiffThreshold  int `mapstructure:"min_diff_threshold" yaml:"min_diff_threshold"`
	MaxDiffThreshold  int `mapstructure:"max_diff_threshold" yaml:"max_diff_threshold"`
	ThresholdStepUp   int `mapstructure:"threshold_step_up" yaml:"threshold_step_up"`
	ThresholdStepDown int `mapstructure:"threshold_step_down" yaml:"threshold_step_down"`

	QueueCapacity             int           `mapstructure:"queue_capacity" yaml:"queue_capacity"`
	ProducerLowWaterMark      int           `mapstructure:"producer_low_water_mark" yaml:"producer_low_water_mark"`
	ProducerTargetIntervalMs  int           `mapstructure:"producer_target_interval_ms" yaml:"producer_target_interval_ms"`

	SocketTimeoutMs int `mapstructure:"socket_timeout_ms" yaml:"socket_timeout_ms"`

	// Source-specific options, consulted only by the matching internal/sources implementation.
	CPUMonitorHistoryLength int    `mapstructure:"cpu_monitor_history_length" yaml:"cpu_monitor_history_length"`
	CPUMonitorInterval      int    `mapstructure:"cpu_monitor_update_interval_ms" yaml:"cpu_monitor_update_interval_ms"`
	PrometheusURL           string `mapstructure:"prometheus_url" yaml:"prometheus_url"`
	PrometheusQuery         string `mapstructure:"prometheus_query" yaml:"prometheus_query"`
	WindowTitleMatch        string `mapstructure:"window_title_match" yaml:"window_title_match"`
}

// ProducerTargetInterval returns the configured pacing interval as a Duration.
func (p PipelineConfig) ProducerTargetInterval() time.Duration {
	return time.Duration(p.ProducerTargetIntervalMs) * time.Millisecond
}

// SocketTimeout returns the configured socket timeout as a Duration.
func (p PipelineConfig) SocketTimeout() time.Duration {
	return time.Duration(p.SocketTimeoutMs) * time.Millisecond
}

// GlobalConfig is the top-level document: one process, many pipelines.
type GlobalConfig struct {
	LogLevel   string           `mapstructure:"log_level" yaml:"log_level"`
	LogFormat  string           `mapstructure:"log_format" yaml:"log_format"`
	MetricsAddr string          `mapstructure:"metrics_addr" yaml:"metrics_addr"`
	Pipelines  []PipelineConfig `mapstructure:"pipelines" yaml:"pipelines"`
}

// pipelineDefaults returns a PipelineConfig pre-filled with the documented defaults.
func pipelineDefaults() PipelineConfig {
	return PipelineConfig{
		Gamma:                    1.0,
		WBScale:                  WhiteBalance{R: 1, G: 1, B: 1},
		MaxChunkPayloadBytes:     8192,
		TargetFPS:                10,
		FPSHistorySize:           10,
		FPSHysteresisFactor:      0.1,
		MinDiffThreshold:         5,
		MaxDiffThreshold:         220,
		ThresholdStepUp:          10,
		ThresholdStepDown:        5,
		QueueCapacity:            5,
		ProducerLowWaterMark:     2,
		ProducerTargetIntervalMs: 50,
		SocketTimeoutMs:          2000,
		CPUMonitorHistoryLength:  60,
		CPUMonitorInterval:       500,
		PrometheusURL:            "http://127.0.0.1:9090/",
	}
}

// Default returns a GlobalConfig with no pipelines configured.
func Default() *GlobalConfig {
	return &GlobalConfig{
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// ErrConfigInvalid is returned (wrapped) for any invalid configuration condition.
type ErrConfigInvalid struct {
	Reason string
}

func (e *ErrConfigInvalid) Error() string {
	return fmt.Sprintf("config invalid: %s", e.Reason)
}

// Load reads the YAML document at path (or the conventional search paths
// when empty), merges it onto the field defaults, and validates it.
func Load(path string) (*GlobalConfig, error) {
	v := viper.New()
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("framing-server")
		v.SetConfigType("yaml")
		v.AddConfigPath(configDir())
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("FRAMING")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	defaults := pipelineDefaults()
	for i := range cfg.Pipelines {
		applyPipelineDefaults(&cfg.Pipelines[i], defaults)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyPipelineDefaults fills zero-valued fields with defaults. Viper's
// Unmarshal only sees what's present in the document, so a pipeline entry
// that omits (say) target_fps ends up with Go's zero value, not the
// documented default — this backfills every field that has one.
func applyPipelineDefaults(p *PipelineConfig, d PipelineConfig) {
	if p.Gamma == 0 {
		p.Gamma = d.Gamma
	}
	if p.WBScale == (WhiteBalance{}) {
		p.WBScale = d.WBScale
	}
	if p.MaxChunkPayloadBytes == 0 {
		p.MaxChunkPayloadBytes = d.MaxChunkPayloadBytes
	}
	if p.TargetFPS == 0 {
		p.TargetFPS = d.TargetFPS
	}
	if p.FPSHistorySize == 0 {
		p.FPSHistorySize = d.FPSHistorySize
	}
	if p.FPSHysteresisFactor == 0 {
		p.FPSHysteresisFactor = d.FPSHysteresisFactor
	}
	if p.MinDiffThreshold == 0 {
		p.MinDiffThreshold = d.MinDiffThreshold
	}
	if p.MaxDiffThreshold == 0 {
		p.MaxDiffThreshold = d.MaxDiffThreshold
	}
	if p.ThresholdStepUp == 0 {
		p.ThresholdStepUp = d.ThresholdStepUp
	}
	if p.ThresholdStepDown == 0 {
		p.ThresholdStepDown = d.ThresholdStepDown
	}
	if p.QueueCapacity == 0 {
		p.QueueCapacity = d.QueueCapacity
	}
	if p.ProducerLowWaterMark == 0 {
		p.ProducerLowWaterMark = d.ProducerLowWaterMark
	}
	if p.ProducerTargetIntervalMs == 0 {
		p.ProducerTargetIntervalMs = d.ProducerTargetIntervalMs
	}
	if p.SocketTimeoutMs == 0 {
		p.SocketTimeoutMs = d.SocketTimeoutMs
	}
	if p.CPUMonitorHistoryLength == 0 {
		p.CPUMonitorHistoryLength = d.CPUMonitorHistoryLength
	}
	if p.CPUMonitorInterval == 0 {
		p.CPUMonitorInterval = d.CPUMonitorInterval
	}
	if p.PrometheusURL == "" {
		p.PrometheusURL = d.PrometheusURL
	}
}

// Validate checks for missing required fields, unknown source modes, and
// out-of-range numerics, returning an *ErrConfigInvalid describing the
// first problem found.
func Validate(cfg *GlobalConfig) error {
	if len(cfg.Pipelines) == 0 {
		return &ErrConfigInvalid{Reason: "no pipelines configured"}
	}
	seenPorts := make(map[int]string)
	for _, p := range cfg.Pipelines {
		if p.Name == "" {
			return &ErrConfigInvalid{Reason: "pipeline missing name"}
		}
		if p.ListenPort <= 0 || p.ListenPort > 65535 {
			return &ErrConfigInvalid{Reason: fmt.Sprintf("pipeline %q: listen_port out of range", p.Name)}
		}
		if other, dup := seenPorts[p.ListenPort]; dup {
			return &ErrConfigInvalid{Reason: fmt.Sprintf("pipeline %q and %q both use listen_port %d", p.Name, other, p.ListenPort)}
		}
		seenPorts[p.ListenPort] = p.Name
		if p.TargetWidth <= 0 || p.TargetHeight <= 0 {
			return &ErrConfigInvalid{Reason: fmt.Sprintf("pipeline %q: target_width/target_height must be positive", p.Name)}
		}
		if !p.Source.valid() {
			return &ErrConfigInvalid{Reason: fmt.Sprintf("pipeline %q: unknown source %q", p.Name, p.Source)}
		}
		if p.MinDiffThreshold < 0 || p.MaxDiffThreshold < p.MinDiffThreshold {
			return &ErrConfigInvalid{Reason: fmt.Sprintf("pipeline %q: invalid diff threshold bounds", p.Name)}
		}
		if p.QueueCapacity <= 0 {
			return &ErrConfigInvalid{Reason: fmt.Sprintf("pipeline %q: queue_capacity must be positive", p.Name)}
		}
		if p.MaxChunkPayloadBytes <= 0 {
			return &ErrConfigInvalid{Reason: fmt.Sprintf("pipeline %q: max_chunk_payload_bytes must be positive", p.Name)}
		}
	}
	return nil
}

func configDir() string {
	if runtime.GOOS == "windows" {
		if dir := os.Getenv("ProgramData"); dir != "" {
			return filepath.Join(dir, "framing-server")
		}
		return `C:\ProgramData\framing-server`
	}
	return "/etc/framing-server"
}
