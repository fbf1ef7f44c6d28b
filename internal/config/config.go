// Package config loads the assistant's config.json. A missing file is
// created with documented defaults so a fresh install speaks on first run.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	log "log/slog"

	"harken/internal/capability"
)

type Config struct {
	APIKeys  APIKeys  `json:"api_keys"`
	Voice    Voice    `json:"voice_settings"`
	Features Features `json:"features"`
	System   System   `json:"system"`
}

type APIKeys struct {
	OpenAI      string `json:"openai_api_key"`
	OpenWeather string `json:"openweather_api_key"`
}

type Voice struct {
	Rate       int     `json:"rate"`
	Volume     float64 `json:"volume"`
	VoiceIndex int     `json:"voice_index"`
}

type Features struct {
	Weather     bool `json:"weather_enabled"`
	Stocks      bool `json:"stocks_enabled"`
	Wikipedia   bool `json:"wikipedia_enabled"`
	Translation bool `json:"translation_enabled"`
	AI          bool `json:"advanced_ai_enabled"`
}

type System struct {
	DefaultLanguage string   `json:"default_language"`
	WakeWords       []string `json:"wake_words"`
	// CaptureTimeoutSec bounds the command window after a wake phrase.
	CaptureTimeoutSec int    `json:"session_timeout"`
	BackgroundMode    bool   `json:"background_mode"`
	RecognizerURL     string `json:"recognizer_url"`
}

// Default returns the configuration written for a fresh install.
func Default() *Config {
	return &Config{
		Voice: Voice{
			Rate:       200,
			Volume:     0.9,
			VoiceIndex: 1,
		},
		Features: Features{
			Weather:     true,
			Stocks:      true,
			Wikipedia:   true,
			Translation: true,
			AI:          true,
		},
		System: System{
			DefaultLanguage:   "en",
			WakeWords:         []string{"hey harken", "harken", "okay harken", "listen up"},
			CaptureTimeoutSec: 5,
			BackgroundMode:    true,
			RecognizerURL:     "ws://localhost:2700",
		},
	}
}

// Load reads path, creating it with defaults when absent.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		cfg := Default()
		if werr := cfg.write(path); werr != nil {
			return nil, fmt.Errorf("write default config: %w", werr)
		}
		log.Info("Created default config", "path", path)
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if len(cfg.System.WakeWords) == 0 {
		cfg.System.WakeWords = Default().System.WakeWords
	}
	if cfg.System.CaptureTimeoutSec <= 0 {
		cfg.System.CaptureTimeoutSec = Default().System.CaptureTimeoutSec
	}
	if cfg.System.DefaultLanguage == "" {
		cfg.System.DefaultLanguage = "en"
	}
	return &cfg, nil
}

func (c *Config) write(path string) error {
	data, err := json.MarshalIndent(c, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Capabilities computes the service registry from feature flags and keys.
// Keys may come from the config document or the environment; env wins.
func (c *Config) Capabilities() *capability.Registry {
	openAIKey := firstNonEmpty(os.Getenv("OPENAI_API_KEY"), c.APIKeys.OpenAI)
	weatherKey := firstNonEmpty(os.Getenv("OPENWEATHER_API_KEY"), c.APIKeys.OpenWeather)

	status := map[string]capability.Status{
		capability.Weather:     keyed(c.Features.Weather, weatherKey),
		capability.Stocks:      flag(c.Features.Stocks),
		capability.Wikipedia:   flag(c.Features.Wikipedia),
		capability.Translation: flag(c.Features.Translation),
		capability.AI:          keyed(c.Features.AI, openAIKey),
	}
	return capability.New(status)
}

// OpenAIKey resolves the AI key with the environment taking precedence.
func (c *Config) OpenAIKey() string {
	return firstNonEmpty(os.Getenv("OPENAI_API_KEY"), c.APIKeys.OpenAI)
}

// OpenWeatherKey resolves the weather key with the environment taking precedence.
func (c *Config) OpenWeatherKey() string {
	return firstNonEmpty(os.Getenv("OPENWEATHER_API_KEY"), c.APIKeys.OpenWeather)
}

func flag(on bool) capability.Status {
	if on {
		return capability.Enabled
	}
	return capability.Disabled
}

func keyed(on bool, key string) capability.Status {
	if !on {
		return capability.Disabled
	}
	if key == "" {
		return capability.NotConfigured
	}
	return capability.Enabled
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
