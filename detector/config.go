package detector

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that accepts YAML values like "30s" or
// "1m30s", and bare numbers as seconds.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}

	var seconds float64
	if err := value.Decode(&seconds); err != nil {
		return fmt.Errorf("invalid duration value: %w", err)
	}
	*d = Duration(seconds * float64(time.Second))
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// DecisionConfig controls how class probabilities become a verdict
type DecisionConfig struct {
	Mode      DecisionMode `yaml:"mode" json:"mode"`
	Threshold float64      `yaml:"threshold" json:"threshold"`
	Bands     string       `yaml:"bands" json:"bands"` // "default" or "relaxed"
}

// Config holds detector configuration
type Config struct {
	ModelPath  string `yaml:"model_path" json:"model_path"`
	ScalerPath string `yaml:"scaler_path" json:"scaler_path"`

	SampleRate  int     `yaml:"sample_rate" json:"sample_rate"`
	ClipSeconds float64 `yaml:"clip_seconds" json:"clip_seconds"`
	TrimTopDB   float64 `yaml:"trim_top_db" json:"trim_top_db"`

	// MinSeconds is the minimum trimmed duration accepted when
	// MinDurationCheck is enabled.
	MinSeconds       float64 `yaml:"min_seconds" json:"min_seconds"`
	MinDurationCheck bool    `yaml:"min_duration_check" json:"min_duration_check"`

	Decision DecisionConfig `yaml:"decision" json:"decision"`

	FFmpegPath    string   `yaml:"ffmpeg_path" json:"ffmpeg_path"`
	DecodeTimeout Duration `yaml:"decode_timeout" json:"decode_timeout"`
}

// DefaultConfig returns the configuration the reference model was
// trained against. Model and scaler paths must still be set.
func DefaultConfig() *Config {
	return &Config{
		SampleRate:       16000,
		ClipSeconds:      4.0,
		TrimTopDB:        20.0,
		MinSeconds:       0.5,
		MinDurationCheck: true,
		Decision: DecisionConfig{
			Mode:      ModeArgmax,
			Threshold: 0.5,
			Bands:     "default",
		},
		FFmpegPath:    "ffmpeg",
		DecodeTimeout: Duration(30 * time.Second),
	}
}

// LoadConfig reads a YAML configuration file, filling unset fields
// with defaults. The result is not validated: callers may still
// override fields (CLI flags, env) before handing the config to New,
// which validates.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, wrapError(ErrConfigLoad, fmt.Sprintf("failed to read config file %s", path), err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, wrapError(ErrConfigLoad, fmt.Sprintf("failed to parse config file %s", path), err)
	}

	return cfg, nil
}

// Validate checks the configuration for values the pipeline cannot run with
func (c *Config) Validate() error {
	if c.ModelPath == "" {
		return newError(ErrConfigLoad, "model_path is required")
	}
	if c.ScalerPath == "" {
		return newError(ErrConfigLoad, "scaler_path is required")
	}
	if c.SampleRate <= 0 {
		return newError(ErrConfigLoad, fmt.Sprintf("sample_rate must be positive: %d", c.SampleRate))
	}
	if c.ClipSeconds <= 0 {
		return newError(ErrConfigLoad, fmt.Sprintf("clip_seconds must be positive: %g", c.ClipSeconds))
	}
	if c.TrimTopDB <= 0 {
		return newError(ErrConfigLoad, fmt.Sprintf("trim_top_db must be positive: %g", c.TrimTopDB))
	}
	if c.MinSeconds < 0 {
		return newError(ErrConfigLoad, fmt.Sprintf("min_seconds must not be negative: %g", c.MinSeconds))
	}
	if c.Decision.Mode != ModeArgmax && c.Decision.Mode != ModeThreshold {
		return newError(ErrConfigLoad, fmt.Sprintf("unknown decision mode: %q", c.Decision.Mode))
	}
	if c.Decision.Threshold < 0 || c.Decision.Threshold > 1 {
		return newError(ErrConfigLoad, fmt.Sprintf("threshold must be in [0, 1]: %g", c.Decision.Threshold))
	}
	if _, err := bandTableByName(c.Decision.Bands); err != nil {
		return err
	}
	return nil
}
