package pipeline

import (
	"fmt"
	"strings"

	"github.com/ozdemircibaris/youtube-video-generator/internal/config"
)

// formatSRTTime converts milliseconds to SRT time format HH:MM:SS,mmm.
func formatSRTTime(ms int) string {
	if ms < 0 {
		ms = -ms
	}
	hours := ms / 3600000
	minutes := ms % 3600000 / 60000
	secs := ms % 60000 / 1000
	millis := ms % 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}

// FormatSRT renders caption segments as an SRT document, one cue per segment
// with one line per caption line.
func FormatSRT(segments []CaptionSegment, maxWordsPerLine int, langCode string) string {
	if len(segments) == 0 {
		return ""
	}

	joiner := config.WordJoiner(langCode)
	var sb strings.Builder
	for i, seg := range segments {
		text := strings.Join(seg.Lines(maxWordsPerLine, joiner), "\n")
		fmt.Fprintf(&sb, "%d\n%s --> %s\n%s\n", i+1, formatSRTTime(seg.StartMs), formatSRTTime(seg.EndMs), text)
		if i < len(segments)-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
