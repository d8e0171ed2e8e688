package pipeline

import (
	"fmt"
	"log/slog"

	"github.com/ozdemircibaris/youtube-video-generator/internal/config"
)

// ChannelInput is everything one language channel contributes to a run.
type ChannelInput struct {
	Language        string
	Records         []Record
	Scenario        Scenario
	AudioDurationMs int // 0 when the audio length is unknown
}

// Timeline is the derived, read-only output for one channel.
type Timeline struct {
	Language string            `json:"language"`
	TotalMs  int               `json:"total_ms"`
	Sections []SectionInterval `json:"sections"`
	Segments []CaptionSegment  `json:"segments"`
	Markers  []MarkerEvent     `json:"-"`
}

// Process runs ingest, section resolution and caption segmentation for one
// channel. It performs no I/O and returns identical output for identical input.
func Process(in ChannelInput, settings config.Settings, log *slog.Logger) (*Timeline, error) {
	if log == nil {
		log = slog.Default()
	}
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	log = log.With("channel", in.Language)

	track, err := NewIngester(settings.Timing, log).Ingest(in.Records, in.AudioDurationMs)
	if err != nil {
		return nil, fmt.Errorf("ingest timing stream: %w", err)
	}

	sections, err := NewSectionResolver(settings.Section, log).Resolve(track, in.Scenario)
	if err != nil {
		return nil, fmt.Errorf("resolve sections: %w", err)
	}

	segments := NewCaptionSegmenter(settings.Caption).Segment(track.Words)

	tl := &Timeline{
		Language: in.Language,
		TotalMs:  track.TotalMs,
		Sections: sections,
		Segments: segments,
		Markers:  track.Markers,
	}
	if limit := settings.Render.MaxDurationMs; limit > 0 && tl.TotalMs > limit {
		log.Info("clipping timeline", "total_ms", tl.TotalMs, "max_ms", limit)
		tl = tl.Clip(limit)
	}
	return tl, nil
}

// Highlighter returns the per-frame query engine for the timeline.
func (t *Timeline) Highlighter() *Highlighter {
	return NewHighlighter(t.Segments, t.Sections, t.TotalMs)
}

// ResolutionCounts tallies how many sections each fallback stage resolved.
func (t *Timeline) ResolutionCounts() map[Resolution]int {
	counts := make(map[Resolution]int)
	for _, s := range t.Sections {
		counts[s.Resolution]++
	}
	return counts
}

// Clip returns a copy of the timeline cut at maxMs. Words starting at or
// after maxMs are dropped and sections keep partitioning [0, maxMs).
func (t *Timeline) Clip(maxMs int) *Timeline {
	if maxMs <= 0 || maxMs >= t.TotalMs {
		return t
	}

	out := &Timeline{Language: t.Language, TotalMs: maxMs}
	for _, s := range t.Sections {
		s.StartMs = min(s.StartMs, maxMs)
		s.EndMs = min(s.EndMs, maxMs)
		out.Sections = append(out.Sections, s)
	}
	for _, seg := range t.Segments {
		var words []WordTiming
		for _, w := range seg.Words {
			if w.StartMs >= maxMs {
				break
			}
			w.EndMs = min(w.EndMs, maxMs)
			words = append(words, w)
		}
		if len(words) == 0 {
			break
		}
		out.Segments = append(out.Segments, CaptionSegment{
			Words:   words,
			StartMs: words[0].StartMs,
			EndMs:   words[len(words)-1].EndMs,
		})
	}
	for _, m := range t.Markers {
		if m.TimeMs < maxMs {
			out.Markers = append(out.Markers, m)
		}
	}
	return out
}
