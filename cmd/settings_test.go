package cmd

import (
	"testing"

	"github.com/ozdemircibaris/youtube-video-generator/internal/config"

	"github.com/spf13/cobra"
)

func parseSettings(t *testing.T, args ...string) *config.Config {
	t.Helper()
	c := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
	addSettingsFlags(c)
	if err := c.ParseFlags(args); err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}
	t.Cleanup(func() { shorts, noSections = false, false })

	cfg := config.Default()
	applySettingsFlags(c, cfg)
	return cfg
}

func TestApplySettingsFlags_Defaults(t *testing.T) {
	cfg := parseSettings(t)
	if cfg.Settings != config.Default().Settings {
		t.Errorf("unset flags changed settings: %+v", cfg.Settings)
	}
}

func TestApplySettingsFlags_Overrides(t *testing.T) {
	cfg := parseSettings(t, "--words-per-line", "6", "--lines", "2", "--fps", "24", "--text-window", "3000", "--allow-no-sections")
	if cfg.Caption.MaxWordsPerLine != 6 || cfg.Caption.MaxLinesPerSegment != 2 {
		t.Errorf("caption = %+v", cfg.Caption)
	}
	if cfg.Render.FrameRate != 24 || cfg.Section.TextWindowMs != 3000 || cfg.Section.RequireSections {
		t.Errorf("settings = %+v", cfg.Settings)
	}
}

func TestApplySettingsFlags_Shorts(t *testing.T) {
	cfg := parseSettings(t, "--shorts")
	if cfg.Caption.MaxWordsPerLine != 3 || cfg.Render.MaxDurationMs != config.ShortsMaxDurationMs {
		t.Errorf("shorts preset not applied: %+v", cfg.Settings)
	}

	cfg = parseSettings(t, "--shorts", "--words-per-line", "2")
	if cfg.Caption.MaxWordsPerLine != 2 {
		t.Errorf("explicit words per line lost under shorts: %d", cfg.Caption.MaxWordsPerLine)
	}
}
