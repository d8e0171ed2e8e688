package pipeline

import (
	"github.com/ozdemircibaris/youtube-video-generator/internal/config"
)

// CaptionSegmenter groups word timings into fixed-capacity caption segments.
type CaptionSegmenter struct {
	settings config.CaptionSettings
}

// NewCaptionSegmenter returns a segmenter for the given limits. Non-positive
// limits fall back to the defaults.
func NewCaptionSegmenter(settings config.CaptionSettings) *CaptionSegmenter {
	defaults := config.Default().Caption
	if settings.MaxWordsPerLine <= 0 {
		settings.MaxWordsPerLine = defaults.MaxWordsPerLine
	}
	if settings.MaxLinesPerSegment <= 0 {
		settings.MaxLinesPerSegment = defaults.MaxLinesPerSegment
	}
	return &CaptionSegmenter{settings: settings}
}

// Capacity returns the number of words per segment.
func (s *CaptionSegmenter) Capacity() int {
	return s.settings.Capacity()
}

// Segment greedily fills segments in word order. Only the last segment may
// be partially filled. Segment bounds are the bounds of its first and last word.
func (s *CaptionSegmenter) Segment(words []WordTiming) []CaptionSegment {
	if len(words) == 0 {
		return nil
	}

	capacity := s.Capacity()
	segments := make([]CaptionSegment, 0, (len(words)+capacity-1)/capacity)
	for i := 0; i < len(words); i += capacity {
		end := min(i+capacity, len(words))
		group := append([]WordTiming(nil), words[i:end]...)
		segments = append(segments, CaptionSegment{
			Words:   group,
			StartMs: group[0].StartMs,
			EndMs:   group[len(group)-1].EndMs,
		})
	}
	return segments
}
