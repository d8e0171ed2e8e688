package pipeline

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/ozdemircibaris/youtube-video-generator/internal/config"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestIngester() *Ingester {
	return NewIngester(config.Default().Timing, quietLogger())
}

func TestDecodeSpeechMarks_JSONLines(t *testing.T) {
	input := `{"time":0,"type":"ssml","start":7,"end":40,"value":"intro_start"}
{"time":6,"type":"word","start":41,"end":46,"value":"Hello"}

{"time":420,"type":"word","start":47,"end":52,"value":"world"}
`
	marks, err := DecodeSpeechMarks(strings.NewReader(input))
	if err != nil {
		t.Fatalf("DecodeSpeechMarks: %v", err)
	}
	if len(marks) != 3 {
		t.Fatalf("expected 3 marks, got %d", len(marks))
	}
	if marks[0].Type != "ssml" || marks[0].Value != "intro_start" {
		t.Errorf("marks[0] = %+v", marks[0])
	}
	if marks[2].Time != 420 {
		t.Errorf("marks[2].Time = %d, want 420", marks[2].Time)
	}
}

func TestDecodeSpeechMarks_Array(t *testing.T) {
	input := `[{"time":0,"type":"word","value":"Hi","end_time":300}]`
	marks, err := DecodeSpeechMarks(strings.NewReader(input))
	if err != nil {
		t.Fatalf("DecodeSpeechMarks: %v", err)
	}
	if len(marks) != 1 || marks[0].EndTime != 300 {
		t.Errorf("unexpected marks: %+v", marks)
	}
}

func TestDecodeSpeechMarks_Invalid(t *testing.T) {
	if _, err := DecodeSpeechMarks(strings.NewReader(`{"time":0,`)); err == nil {
		t.Error("expected error for truncated JSON")
	}
}

func TestSpeechMark_Record(t *testing.T) {
	rec, err := SpeechMark{Time: 10, Type: "word", Value: "Hi", EndTime: 200}.Record()
	if err != nil || rec.Kind != RecordWord || rec.StartMs != 10 || rec.EndMs != 200 {
		t.Errorf("word record = %+v, err %v", rec, err)
	}

	rec, err = SpeechMark{Time: 50, Type: "ssml", Value: "intro_end"}.Record()
	if err != nil || rec.Kind != RecordMark || rec.Text != "intro_end" {
		t.Errorf("mark record = %+v, err %v", rec, err)
	}

	_, err = SpeechMark{Type: "viseme", Value: "p"}.Record()
	if !errors.Is(err, ErrUnknownRecordType) {
		t.Errorf("expected ErrUnknownRecordType, got %v", err)
	}
}

func TestRecordsFromMarks_DropsUnknownTypes(t *testing.T) {
	marks := []SpeechMark{
		{Time: 0, Type: "sentence", Value: "Hello world."},
		{Time: 0, Type: "word", Value: "Hello"},
		{Time: 10, Type: "viseme", Value: "k"},
	}
	records := RecordsFromMarks(marks, quietLogger())
	if len(records) != 1 || records[0].Text != "Hello" {
		t.Errorf("expected only the word record, got %+v", records)
	}
}

func TestParseMarkerName(t *testing.T) {
	tests := []struct {
		name    string
		section string
		kind    MarkerKind
		ok      bool
	}{
		{"intro_start", "intro", MarkerStart, true},
		{"intro_end", "intro", MarkerEnd, true},
		{"ancient_rome_start", "ancient_rome", MarkerStart, true},
		{"__MARK_elephant_end__", "elephant", MarkerEnd, true},
		{"giriş_start", "giriş", MarkerStart, true},
		{"tarihçe_end", "tarihçe", MarkerEnd, true},
		{"東京_start", "東京", MarkerStart, true},
		{"__MARK_résumé_start__", "résumé", MarkerStart, true},
		{"ancient-rome_end", "ancient-rome", MarkerEnd, true},
		{"intro_middle", "", 0, false},
		{"_start", "", 0, false},
		{"hello", "", 0, false},
	}

	for _, tt := range tests {
		section, kind, ok := ParseMarkerName(tt.name)
		if ok != tt.ok || section != tt.section || kind != tt.kind {
			t.Errorf("ParseMarkerName(%q) = (%q, %v, %v), want (%q, %v, %v)",
				tt.name, section, kind, ok, tt.section, tt.kind, tt.ok)
		}
	}
}

func TestIngest_NonASCIIMarkers(t *testing.T) {
	records := []Record{
		MarkRecord("giriş_start", 0),
		WordRecord("Merhaba", 0, 400),
		MarkRecord("giriş_end", 400),
		WordRecord("dünya", 400, 800),
	}
	track, err := newTestIngester().Ingest(records, 0)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	want := []MarkerEvent{
		{Section: "giriş", Kind: MarkerStart, TimeMs: 0},
		{Section: "giriş", Kind: MarkerEnd, TimeMs: 400},
	}
	if len(track.Markers) != len(want) {
		t.Fatalf("markers = %+v, want %+v", track.Markers, want)
	}
	for i := range want {
		if track.Markers[i] != want[i] {
			t.Errorf("marker %d = %+v, want %+v", i, track.Markers[i], want[i])
		}
	}
	if len(track.Words) != 2 {
		t.Errorf("expected 2 words, got %+v", track.Words)
	}
}

func TestIngest_Empty(t *testing.T) {
	_, err := newTestIngester().Ingest(nil, 0)
	if !errors.Is(err, ErrEmptyTimingStream) {
		t.Errorf("expected ErrEmptyTimingStream, got %v", err)
	}
}

func TestIngest_StripsMarkersFromWords(t *testing.T) {
	records := []Record{
		MarkRecord("intro_start", 0),
		WordRecord("Hello", 0, 400),
		WordRecord("__MARK_intro_end__", 400, 400),
		WordRecord("world", 500, 900),
		MarkRecord("badname", 600),
	}

	track, err := newTestIngester().Ingest(records, 0)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if len(track.Words) != 2 {
		t.Fatalf("expected 2 words, got %d: %+v", len(track.Words), track.Words)
	}
	for _, w := range track.Words {
		if strings.Contains(w.Word, "_") {
			t.Errorf("marker leaked into word stream: %q", w.Word)
		}
	}
	if len(track.Markers) != 2 {
		t.Fatalf("expected 2 markers (malformed one dropped), got %d", len(track.Markers))
	}
	if track.Markers[1].Kind != MarkerEnd || track.Markers[1].Section != "intro" {
		t.Errorf("markers[1] = %+v", track.Markers[1])
	}
	if track.TotalMs != 900 {
		t.Errorf("TotalMs = %d, want 900", track.TotalMs)
	}
}

func TestIngest_DerivesMissingEnds(t *testing.T) {
	records := []Record{
		WordRecord("one", 0, 0),
		WordRecord("two", 300, 0),
		WordRecord("three", 310, 0),
	}

	track, err := newTestIngester().Ingest(records, 0)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	want := []WordTiming{
		{Word: "one", StartMs: 0, EndMs: 280},
		{Word: "two", StartMs: 300, EndMs: 310},
		{Word: "three", StartMs: 310, EndMs: 810},
	}
	for i, w := range want {
		if track.Words[i] != w {
			t.Errorf("word %d = %+v, want %+v", i, track.Words[i], w)
		}
	}
}

func TestIngest_ClipsOverlapsAndSorts(t *testing.T) {
	records := []Record{
		WordRecord("b", 500, 900),
		WordRecord("a", 0, 700),
	}

	track, err := newTestIngester().Ingest(records, 0)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if track.Words[0].Word != "a" || track.Words[0].EndMs != 500 {
		t.Errorf("first word = %+v, want a ending at 500", track.Words[0])
	}
	for i := 1; i < len(track.Words); i++ {
		if track.Words[i].StartMs < track.Words[i-1].EndMs {
			t.Errorf("words %d and %d overlap", i-1, i)
		}
	}
}

func TestIngest_MergesStandalonePunctuation(t *testing.T) {
	records := []Record{
		WordRecord("Hello", 0, 400),
		WordRecord(",", 400, 450),
		WordRecord("world", 500, 900),
	}

	track, err := newTestIngester().Ingest(records, 0)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if len(track.Words) != 2 || track.Words[0].Word != "Hello," || track.Words[0].EndMs != 450 {
		t.Errorf("unexpected words: %+v", track.Words)
	}
}

func TestIngest_AudioDurationExtendsTotal(t *testing.T) {
	track, err := newTestIngester().Ingest([]Record{WordRecord("Hi", 0, 300)}, 5000)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if track.TotalMs != 5000 {
		t.Errorf("TotalMs = %d, want 5000", track.TotalMs)
	}
}

func TestIngest_UnknownDuration(t *testing.T) {
	_, err := newTestIngester().Ingest([]Record{MarkRecord("intro_start", 0)}, 0)
	if !errors.Is(err, ErrUnknownDuration) {
		t.Errorf("expected ErrUnknownDuration, got %v", err)
	}
}

func TestIngest_OnlyMalformedMarkers(t *testing.T) {
	_, err := newTestIngester().Ingest([]Record{MarkRecord("oops", 100)}, 0)
	if !errors.Is(err, ErrEmptyTimingStream) {
		t.Errorf("expected ErrEmptyTimingStream, got %v", err)
	}
}
