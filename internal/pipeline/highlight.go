package pipeline

import "sort"

// Highlighter answers per-frame queries: which caption segment is on screen,
// which word is highlighted and which section image is shown.
// It holds only immutable inputs and is safe for concurrent use.
type Highlighter struct {
	segments []CaptionSegment
	sections []SectionInterval
	totalMs  int
}

// NewHighlighter returns a Highlighter over the given timeline data.
func NewHighlighter(segments []CaptionSegment, sections []SectionInterval, totalMs int) *Highlighter {
	return &Highlighter{segments: segments, sections: sections, totalMs: totalMs}
}

// Resolve returns the render descriptor for timeMs. Times outside
// [0, totalMs) are clamped to the nearest valid instant.
func (h *Highlighter) Resolve(timeMs int) Frame {
	t := h.clamp(timeMs)
	f := Frame{TimeMs: t, SegmentIndex: -1, WordIndex: -1}

	if len(h.segments) > 0 {
		f.SegmentIndex, f.WordIndex = h.lookupSegment(t)
	}
	if s, ok := h.lookupSection(t); ok {
		f.Section = s.Name
	}
	return f
}

func (h *Highlighter) clamp(t int) int {
	if t < 0 {
		return 0
	}
	if h.totalMs > 0 && t >= h.totalMs {
		return h.totalMs - 1
	}
	return t
}

// lookupSegment returns the active segment and word. Between segments the
// previous segment stays up with no word highlighted; before the first
// segment the first one is shown. Within a segment the last word that has
// started stays highlighted until the next one begins.
func (h *Highlighter) lookupSegment(t int) (segment, word int) {
	idx := sort.Search(len(h.segments), func(i int) bool {
		return h.segments[i].StartMs > t
	}) - 1
	if idx < 0 {
		return 0, -1
	}

	seg := h.segments[idx]
	if t >= seg.EndMs {
		return idx, -1
	}
	w := sort.Search(len(seg.Words), func(i int) bool {
		return seg.Words[i].StartMs > t
	}) - 1
	return idx, w
}

func (h *Highlighter) lookupSection(t int) (SectionInterval, bool) {
	idx := sort.Search(len(h.sections), func(i int) bool {
		return h.sections[i].EndMs > t
	})
	if idx < len(h.sections) && h.sections[idx].Contains(t) {
		return h.sections[idx], true
	}
	return SectionInterval{}, false
}

// FrameCount returns the number of frames needed to cover totalMs at fps.
func FrameCount(totalMs, fps int) int {
	if totalMs <= 0 || fps <= 0 {
		return 0
	}
	return (totalMs*fps + 999) / 1000
}

// FrameTimeMs returns the presentation time of frame n at fps.
func FrameTimeMs(n, fps int) int {
	return n * 1000 / fps
}

// FrameAt resolves frame n of a fixed-rate frame loop.
func (h *Highlighter) FrameAt(n, fps int) Frame {
	return h.Resolve(FrameTimeMs(n, fps))
}
