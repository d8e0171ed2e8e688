package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// TimingSettings controls how missing word end times are derived.
type TimingSettings struct {
	WordGapMs  int
	LastWordMs int
}

// CaptionSettings bounds the size of one caption segment.
type CaptionSettings struct {
	MaxWordsPerLine    int
	MaxLinesPerSegment int
}

// Capacity returns the number of words a single segment can hold.
func (c CaptionSettings) Capacity() int {
	return c.MaxWordsPerLine * c.MaxLinesPerSegment
}

// SectionSettings holds section resolution parameters.
type SectionSettings struct {
	TextWindowMs    int
	RequireSections bool
}

// RenderSettings holds parameters supplied to the frame loop.
type RenderSettings struct {
	FrameRate     int
	MaxDurationMs int // 0 means uncapped
}

// Settings is the immutable value threaded through every core call.
type Settings struct {
	Timing  TimingSettings
	Caption CaptionSettings
	Section SectionSettings
	Render  RenderSettings
}

// Config holds the full application configuration.
type Config struct {
	Settings

	MaxConcurrentChannels int
	Port                  string
	QueryRateLimit        int
	LogLevel              string
	LogFormat             string
}

// Default returns a Config with the defaults used for standard 16:9 videos.
func Default() *Config {
	return &Config{
		Settings: Settings{
			Timing: TimingSettings{
				WordGapMs:  20,
				LastWordMs: 500,
			},
			Caption: CaptionSettings{
				MaxWordsPerLine:    4,
				MaxLinesPerSegment: 3,
			},
			Section: SectionSettings{
				TextWindowMs:    4000,
				RequireSections: true,
			},
			Render: RenderSettings{
				FrameRate: 30,
			},
		},
		MaxConcurrentChannels: 5,
		Port:                  "8080",
		QueryRateLimit:        200,
		LogLevel:              "info",
		LogFormat:             "text",
	}
}

// ShortsMaxDurationMs caps vertical short-form videos.
const ShortsMaxDurationMs = 60000

// Shorts returns s adjusted for vertical short-form output: fewer words per
// line and a hard duration cap.
func (s Settings) Shorts() Settings {
	s.Caption.MaxWordsPerLine = 3
	s.Render.MaxDurationMs = ShortsMaxDurationMs
	return s
}

// Validate reports configuration values the core cannot work with.
func (s Settings) Validate() error {
	var errs []error
	if s.Caption.MaxWordsPerLine <= 0 {
		errs = append(errs, fmt.Errorf("max words per line must be positive, got %d", s.Caption.MaxWordsPerLine))
	}
	if s.Caption.MaxLinesPerSegment <= 0 {
		errs = append(errs, fmt.Errorf("max lines per segment must be positive, got %d", s.Caption.MaxLinesPerSegment))
	}
	if s.Section.TextWindowMs <= 0 {
		errs = append(errs, fmt.Errorf("text window must be positive, got %d", s.Section.TextWindowMs))
	}
	if s.Render.FrameRate <= 0 {
		errs = append(errs, fmt.Errorf("frame rate must be positive, got %d", s.Render.FrameRate))
	}
	if s.Timing.WordGapMs < 0 || s.Timing.LastWordMs <= 0 {
		errs = append(errs, fmt.Errorf("invalid word timing defaults: gap=%d last=%d", s.Timing.WordGapMs, s.Timing.LastWordMs))
	}
	return errors.Join(errs...)
}

// Load reads .env files into the process environment. A missing file is not
// an error; with no paths, ".env" is used.
func Load(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

// FromEnv returns Default() overlaid with values from the environment.
func FromEnv() *Config {
	cfg := Default()
	cfg.Caption.MaxWordsPerLine = GetEnvInt("CAPTION_MAX_WORDS_PER_LINE", cfg.Caption.MaxWordsPerLine)
	cfg.Caption.MaxLinesPerSegment = GetEnvInt("CAPTION_MAX_LINES", cfg.Caption.MaxLinesPerSegment)
	cfg.Section.TextWindowMs = GetEnvInt("SECTION_TEXT_WINDOW_MS", cfg.Section.TextWindowMs)
	cfg.Section.RequireSections = GetEnvBool("SECTION_REQUIRED", cfg.Section.RequireSections)
	cfg.Render.FrameRate = GetEnvInt("FRAME_RATE", cfg.Render.FrameRate)
	cfg.MaxConcurrentChannels = GetEnvInt("MAX_CONCURRENT_CHANNELS", cfg.MaxConcurrentChannels)
	cfg.Port = GetEnv("PORT", cfg.Port)
	cfg.QueryRateLimit = GetEnvInt("QUERY_RATE_LIMIT", cfg.QueryRateLimit)
	cfg.LogLevel = GetEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = GetEnv("LOG_FORMAT", cfg.LogFormat)
	return cfg
}

// GetEnv returns the value of the environment variable named by key, or fallback
// if the variable is unset or empty.
func GetEnv(key, fallback string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return fallback
}

// GetEnvInt returns the integer value of the environment variable named by key,
// or fallback if the variable is unset, empty, or not a valid integer.
func GetEnvInt(key string, fallback int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return fallback
}

// GetEnvBool is GetEnvInt for booleans.
func GetEnvBool(key string, fallback bool) bool {
	if s := strings.TrimSpace(os.Getenv(key)); s != "" {
		if b, err := strconv.ParseBool(s); err == nil {
			return b
		}
	}
	return fallback
}
