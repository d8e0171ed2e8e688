package pipeline

import (
	"errors"
	"testing"

	"github.com/ozdemircibaris/youtube-video-generator/internal/config"
)

func narrationRecords() []Record {
	return []Record{
		MarkRecord("intro_start", 0),
		WordRecord("Welcome", 0, 400),
		WordRecord("to", 400, 600),
		MarkRecord("intro_end", 600),
		MarkRecord("outro_start", 600),
		WordRecord("the", 600, 800),
		WordRecord("show.", 800, 1000),
		MarkRecord("outro_end", 1000),
	}
}

func TestProcess_EndToEnd(t *testing.T) {
	in := ChannelInput{
		Language: "en",
		Records:  narrationRecords(),
		Scenario: scenarioOf("intro", "outro"),
	}

	tl, err := Process(in, config.Default().Settings, quietLogger())
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if tl.TotalMs != 1000 {
		t.Errorf("TotalMs = %d, want 1000", tl.TotalMs)
	}
	if len(tl.Sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(tl.Sections))
	}
	assertInterval(t, tl.Sections[0], 0, 600, ResolvedExactPair)
	assertInterval(t, tl.Sections[1], 600, 1000, ResolvedExactPair)

	if len(tl.Segments) != 1 || len(tl.Segments[0].Words) != 4 {
		t.Fatalf("expected one 4-word segment, got %+v", tl.Segments)
	}
	if len(tl.Markers) != 4 {
		t.Errorf("expected 4 markers, got %d", len(tl.Markers))
	}

	f := tl.Highlighter().Resolve(700)
	if f.SegmentIndex != 0 || f.WordIndex != 2 || f.Section != "outro" {
		t.Errorf("Resolve(700) = %+v", f)
	}
}

func TestProcess_Deterministic(t *testing.T) {
	in := ChannelInput{Language: "en", Records: narrationRecords(), Scenario: scenarioOf("intro", "middle", "outro")}

	a, err := Process(in, config.Default().Settings, quietLogger())
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	b, err := Process(in, config.Default().Settings, quietLogger())
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	for i := range a.Sections {
		if a.Sections[i] != b.Sections[i] {
			t.Errorf("section %d differs between runs: %+v vs %+v", i, a.Sections[i], b.Sections[i])
		}
	}
}

func TestProcess_Errors(t *testing.T) {
	settings := config.Default().Settings

	tests := []struct {
		name string
		in   ChannelInput
		want error
	}{
		{"empty stream", ChannelInput{Language: "en", Scenario: scenarioOf("a")}, ErrEmptyTimingStream},
		{"no sections", ChannelInput{Language: "en", Records: narrationRecords()}, ErrNoSections},
		{"duplicate sections", ChannelInput{Language: "en", Records: narrationRecords(), Scenario: scenarioOf("a", "a")}, ErrInvalidScenario},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Process(tt.in, settings, quietLogger())
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestProcess_InvalidSettings(t *testing.T) {
	settings := config.Default().Settings
	settings.Caption.MaxWordsPerLine = 0

	in := ChannelInput{Language: "en", Records: narrationRecords(), Scenario: scenarioOf("intro")}
	if _, err := Process(in, settings, quietLogger()); err == nil {
		t.Error("expected error for invalid settings")
	}
}

func TestProcess_ShortsClip(t *testing.T) {
	settings := config.Default().Settings
	settings.Render.MaxDurationMs = 700

	in := ChannelInput{Language: "en", Records: narrationRecords(), Scenario: scenarioOf("intro", "outro")}
	tl, err := Process(in, settings, quietLogger())
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if tl.TotalMs != 700 {
		t.Errorf("TotalMs = %d, want 700", tl.TotalMs)
	}
	assertPartition(t, tl.Sections, in.Scenario, 700)
	assertInterval(t, tl.Sections[1], 600, 700, ResolvedExactPair)

	words := tl.Segments[0].Words
	if len(words) != 3 || words[2].EndMs != 700 {
		t.Errorf("clipped words = %+v", words)
	}
	if len(tl.Markers) != 3 {
		t.Errorf("expected 3 markers before the cut, got %d", len(tl.Markers))
	}
}

func TestTimeline_ClipNoop(t *testing.T) {
	tl := &Timeline{TotalMs: 500}
	if tl.Clip(0) != tl || tl.Clip(500) != tl || tl.Clip(900) != tl {
		t.Error("Clip should return the receiver when no cut is needed")
	}
}

func TestTimeline_ResolutionCounts(t *testing.T) {
	tl := &Timeline{Sections: []SectionInterval{
		{Resolution: ResolvedExactPair},
		{Resolution: ResolvedEvenSplit},
		{Resolution: ResolvedEvenSplit},
	}}
	counts := tl.ResolutionCounts()
	if counts[ResolvedExactPair] != 1 || counts[ResolvedEvenSplit] != 2 || counts[ResolvedStartOnly] != 0 {
		t.Errorf("ResolutionCounts() = %v", counts)
	}
}
