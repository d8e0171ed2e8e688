package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ozdemircibaris/youtube-video-generator/internal/config"
)

// Setting flags override the environment only when given explicitly.
var (
	wordsPerLine int
	linesPerSeg  int
	textWindowMs int
	frameRate    int
	shorts       bool
	noSections   bool
)

func addSettingsFlags(cmd *cobra.Command) {
	defaults := config.Default()
	f := cmd.PersistentFlags()
	f.IntVar(&wordsPerLine, "words-per-line", defaults.Caption.MaxWordsPerLine, "max caption words per line")
	f.IntVar(&linesPerSeg, "lines", defaults.Caption.MaxLinesPerSegment, "max caption lines per segment")
	f.IntVar(&textWindowMs, "text-window", defaults.Section.TextWindowMs, "section window in ms when located by a spoken mention")
	f.IntVar(&frameRate, "fps", defaults.Render.FrameRate, "render frame rate")
	f.BoolVar(&shorts, "shorts", false, "vertical short-form preset: 3 words per line, 60s cap")
	f.BoolVar(&noSections, "allow-no-sections", false, "accept an empty scenario")
}

func applySettingsFlags(cmd *cobra.Command, c *config.Config) {
	f := cmd.Flags()
	if f.Changed("words-per-line") {
		c.Caption.MaxWordsPerLine = wordsPerLine
	}
	if f.Changed("lines") {
		c.Caption.MaxLinesPerSegment = linesPerSeg
	}
	if f.Changed("text-window") {
		c.Section.TextWindowMs = textWindowMs
	}
	if f.Changed("fps") {
		c.Render.FrameRate = frameRate
	}
	if noSections {
		c.Section.RequireSections = false
	}
	if shorts {
		perLine := c.Caption.MaxWordsPerLine
		c.Settings = c.Settings.Shorts()
		if f.Changed("words-per-line") {
			c.Caption.MaxWordsPerLine = perLine
		}
	}
}
