package pipeline

import (
	"fmt"
	"strings"
)

// WordTiming is one spoken word on the narration timeline, [StartMs, EndMs).
type WordTiming struct {
	Word    string `json:"word"`
	StartMs int    `json:"start_ms"`
	EndMs   int    `json:"end_ms"`
}

// MarkerKind distinguishes section start and end markers.
type MarkerKind int

const (
	MarkerStart MarkerKind = iota + 1
	MarkerEnd
)

func (k MarkerKind) String() string {
	switch k {
	case MarkerStart:
		return "start"
	case MarkerEnd:
		return "end"
	}
	return "unknown"
}

// MarkerEvent is a zero-duration section annotation from the speech stream.
type MarkerEvent struct {
	Section string     `json:"section"`
	Kind    MarkerKind `json:"kind"`
	TimeMs  int        `json:"time_ms"`
}

// Resolution records which fallback stage produced a SectionInterval.
type Resolution int

const (
	ResolvedExactPair Resolution = iota + 1
	ResolvedStartOnly
	ResolvedEndOnly
	ResolvedTextInference
	ResolvedEvenSplit
)

var resolutionNames = map[Resolution]string{
	ResolvedExactPair:     "exact_pair",
	ResolvedStartOnly:     "start_only",
	ResolvedEndOnly:       "end_only",
	ResolvedTextInference: "text_inference",
	ResolvedEvenSplit:     "even_split",
}

func (r Resolution) String() string {
	if s, ok := resolutionNames[r]; ok {
		return s
	}
	return "unresolved"
}

// MarshalText encodes the resolution by name in persisted metadata.
func (r Resolution) MarshalText() ([]byte, error) {
	s, ok := resolutionNames[r]
	if !ok {
		return nil, fmt.Errorf("unknown resolution %d", int(r))
	}
	return []byte(s), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Resolution) UnmarshalText(b []byte) error {
	for k, v := range resolutionNames {
		if v == string(b) {
			*r = k
			return nil
		}
	}
	return fmt.Errorf("unknown resolution %q", string(b))
}

// SectionInterval is the resolved, half-open time range of one declared section.
type SectionInterval struct {
	Name       string     `json:"name"`
	StartMs    int        `json:"start_ms"`
	EndMs      int        `json:"end_ms"`
	Resolution Resolution `json:"resolution"`
}

// DurationMs returns EndMs - StartMs.
func (s SectionInterval) DurationMs() int {
	return s.EndMs - s.StartMs
}

// Contains reports whether t lies in [StartMs, EndMs).
func (s SectionInterval) Contains(t int) bool {
	return t >= s.StartMs && t < s.EndMs
}

// CaptionSegment is one on-screen caption block.
type CaptionSegment struct {
	Words   []WordTiming `json:"words"`
	StartMs int          `json:"start_ms"`
	EndMs   int          `json:"end_ms"`
}

// Lines splits the segment into display lines of at most maxWordsPerLine words.
func (c CaptionSegment) Lines(maxWordsPerLine int, joiner string) []string {
	if maxWordsPerLine <= 0 {
		maxWordsPerLine = len(c.Words)
	}
	var lines []string
	for i := 0; i < len(c.Words); i += maxWordsPerLine {
		end := min(i+maxWordsPerLine, len(c.Words))
		parts := make([]string, 0, end-i)
		for _, w := range c.Words[i:end] {
			parts = append(parts, w.Word)
		}
		lines = append(lines, strings.Join(parts, joiner))
	}
	return lines
}

// Text returns the whole segment as a single line.
func (c CaptionSegment) Text(joiner string) string {
	parts := make([]string, 0, len(c.Words))
	for _, w := range c.Words {
		parts = append(parts, w.Word)
	}
	return strings.Join(parts, joiner)
}

// SectionDecl is one entry of the scenario: a section name and optional
// spoken keywords that identify it in the narration.
type SectionDecl struct {
	Name     string   `json:"name"`
	Keywords []string `json:"keywords,omitempty"`
}

// Scenario is the ordered list of declared sections.
type Scenario []SectionDecl

// Names returns the declared section names in order.
func (s Scenario) Names() []string {
	names := make([]string, len(s))
	for i, d := range s {
		names[i] = d.Name
	}
	return names
}

// Frame is the per-frame render descriptor consumed by the compositor.
// SegmentIndex is -1 when there are no captions; WordIndex is -1 when no
// word is highlighted; Section is empty when no section applies.
type Frame struct {
	TimeMs       int    `json:"time_ms"`
	SegmentIndex int    `json:"segment_index"`
	WordIndex    int    `json:"word_index"`
	Section      string `json:"section,omitempty"`
}
