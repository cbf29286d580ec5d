// SPDX-License-Identifier: EPL-2.0

// Package config loads the service configuration from YAML, layered over
// defaults and then environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Server  ServerConfig  `yaml:"server" json:"server"`
	Decoder DecoderConfig `yaml:"decoder" json:"decoder"`
	Neural  NeuralConfig  `yaml:"neural" json:"neural"`
	Codec   CodecConfig   `yaml:"codec" json:"codec"`
	FFmpeg  FFmpegConfig  `yaml:"ffmpeg" json:"ffmpeg"`
	Temp    TempConfig    `yaml:"temp" json:"temp"`
	Log     LogConfig     `yaml:"log" json:"log"`
}

type ServerConfig struct {
	Addr         string `yaml:"addr" json:"addr"`
	MaxBodyBytes int64  `yaml:"max_body_bytes" json:"max_body_bytes"`
}

// DecoderConfig tunes input decoding. The canonical rate is fixed at
// 16 kHz; only the external codec's working rate is configurable.
type DecoderConfig struct {
	Resampler  string `yaml:"resampler" json:"resampler"`
	BufferSize int    `yaml:"buffer_size" json:"buffer_size"`
}

type NeuralConfig struct {
	WeightsPath string `yaml:"weights_path" json:"weights_path"`
}

type CodecConfig struct {
	Binary string   `yaml:"binary" json:"binary"`
	Args   []string `yaml:"args" json:"args"`
	// SampleRate is the rate audio is written at for the external tool.
	SampleRate int `yaml:"sample_rate" json:"sample_rate"`
}

type FFmpegConfig struct {
	Binary string `yaml:"binary" json:"binary"`
}

type TempConfig struct {
	Dir string `yaml:"dir" json:"dir"`
}

type LogConfig struct {
	Level string `yaml:"level" json:"level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:         ":8080",
			MaxBodyBytes: 50 << 20,
		},
		Decoder: DecoderConfig{
			Resampler:  "cubic",
			BufferSize: 4096,
		},
		Codec: CodecConfig{
			Binary:     "audiowmark",
			SampleRate: 44100,
		},
		FFmpeg: FFmpegConfig{Binary: "ffmpeg"},
		Log:    LogConfig{Level: "info"},
	}
}

// Load reads path over Default and applies environment overrides. An empty
// path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}

	cfg.applyEnv(os.LookupEnv)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	overrides := map[string]*string{
		"AUDMARK_ADDR":         &c.Server.Addr,
		"AUDMARK_WEIGHTS":      &c.Neural.WeightsPath,
		"AUDMARK_CODEC_BINARY": &c.Codec.Binary,
		"AUDMARK_FFMPEG":       &c.FFmpeg.Binary,
		"AUDMARK_TEMP_DIR":     &c.Temp.Dir,
		"AUDMARK_LOG_LEVEL":    &c.Log.Level,
	}
	for key, field := range overrides {
		if v, ok := lookup(key); ok && v != "" {
			*field = v
		}
	}
}

func (c *Config) Validate() error {
	var errs []error

	if c.Server.MaxBodyBytes <= 0 {
		errs = append(errs, errors.New("server.max_body_bytes must be positive"))
	}
	if c.Decoder.BufferSize <= 0 {
		errs = append(errs, errors.New("decoder.buffer_size must be positive"))
	}
	switch c.Decoder.Resampler {
	case "cubic", "sinc":
	default:
		errs = append(errs, fmt.Errorf("decoder.resampler %q is not cubic or sinc", c.Decoder.Resampler))
	}
	if c.Codec.SampleRate <= 0 {
		errs = append(errs, errors.New("codec.sample_rate must be positive"))
	}
	if c.Codec.Binary == "" {
		errs = append(errs, errors.New("codec.binary is required"))
	}
	if hclog.LevelFromString(c.Log.Level) == hclog.NoLevel {
		errs = append(errs, fmt.Errorf("log.level %q is not a known level", c.Log.Level))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// LogLevel returns the configured hclog level.
func (c *Config) LogLevel() hclog.Level {
	return hclog.LevelFromString(strings.TrimSpace(c.Log.Level))
}
