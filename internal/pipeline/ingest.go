package pipeline

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/ozdemircibaris/youtube-video-generator/internal/config"
)

var (
	// ErrEmptyTimingStream is returned when a channel has no timing records.
	ErrEmptyTimingStream = errors.New("timing stream is empty")

	// ErrUnknownDuration is returned when neither the records nor the audio
	// give a positive total duration.
	ErrUnknownDuration = errors.New("total duration cannot be determined")

	// ErrUnknownRecordType is returned for a wire record that is neither a
	// word nor a mark.
	ErrUnknownRecordType = errors.New("unknown timing record type")
)

// RecordKind tags a Record as a spoken word or a zero-duration mark.
type RecordKind int

const (
	RecordWord RecordKind = iota + 1
	RecordMark
)

// Record is one validated entry of the raw timing stream. For marks, Text is
// the mark name and StartMs its time.
type Record struct {
	Kind    RecordKind
	Text    string
	StartMs int
	EndMs   int // 0 when the engine did not report an end time
}

// WordRecord builds a word record.
func WordRecord(text string, startMs, endMs int) Record {
	return Record{Kind: RecordWord, Text: text, StartMs: startMs, EndMs: endMs}
}

// MarkRecord builds a mark record.
func MarkRecord(name string, timeMs int) Record {
	return Record{Kind: RecordMark, Text: name, StartMs: timeMs}
}

// SpeechMark is the wire format emitted by the speech-synthesis service, one
// JSON object per line. Start and End are character offsets into the script.
type SpeechMark struct {
	Time    int    `json:"time"`
	Type    string `json:"type"`
	Start   int    `json:"start,omitempty"`
	End     int    `json:"end,omitempty"`
	Value   string `json:"value"`
	EndTime int    `json:"end_time,omitempty"`
}

// Record converts the wire mark into a tagged Record.
func (m SpeechMark) Record() (Record, error) {
	switch strings.ToLower(m.Type) {
	case "word":
		return WordRecord(m.Value, m.Time, m.EndTime), nil
	case "ssml", "mark":
		return MarkRecord(m.Value, m.Time), nil
	}
	return Record{}, fmt.Errorf("%w: %q", ErrUnknownRecordType, m.Type)
}

// DecodeSpeechMarks reads either newline-delimited JSON objects or a single
// JSON array of speech marks.
func DecodeSpeechMarks(r io.Reader) ([]SpeechMark, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read speech marks: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	if data[0] == '[' {
		var marks []SpeechMark
		if err := json.Unmarshal(data, &marks); err != nil {
			return nil, fmt.Errorf("decode speech mark array: %w", err)
		}
		return marks, nil
	}

	var marks []SpeechMark
	dec := json.NewDecoder(bytes.NewReader(data))
	for {
		var m SpeechMark
		if err := dec.Decode(&m); err == io.EOF {
			break
		} else if err != nil {
			return nil, fmt.Errorf("decode speech mark %d: %w", len(marks)+1, err)
		}
		marks = append(marks, m)
	}
	return marks, nil
}

// RecordsFromMarks converts wire marks to records, dropping unknown types.
func RecordsFromMarks(marks []SpeechMark, log *slog.Logger) []Record {
	if log == nil {
		log = slog.Default()
	}
	records := make([]Record, 0, len(marks))
	for i, m := range marks {
		rec, err := m.Record()
		if err != nil {
			log.Warn("dropping timing record", "index", i, "value", m.Value, "err", err)
			continue
		}
		records = append(records, rec)
	}
	return records
}

// Track is the ingested form of one channel's timing stream.
type Track struct {
	Words   []WordTiming
	Markers []MarkerEvent
	TotalMs int
}

// markerPattern matches "<section>_start" / "<section>_end", optionally
// wrapped as "__MARK_<section>_start__".
var markerPattern = regexp.MustCompile(`^(?:__MARK_)?([\p{L}\p{N}][\p{L}\p{N}_\-]*?)_(start|end)(?:__)?$`)

// ParseMarkerName splits a mark name into its section and kind.
func ParseMarkerName(name string) (section string, kind MarkerKind, ok bool) {
	m := markerPattern.FindStringSubmatch(strings.TrimSpace(name))
	if m == nil {
		return "", 0, false
	}
	if m[2] == "start" {
		return m[1], MarkerStart, true
	}
	return m[1], MarkerEnd, true
}

// Ingester splits a raw timing stream into word timings and marker events.
type Ingester struct {
	settings config.TimingSettings
	log      *slog.Logger
}

// NewIngester returns an Ingester. A nil log uses slog.Default().
func NewIngester(settings config.TimingSettings, log *slog.Logger) *Ingester {
	if log == nil {
		log = slog.Default()
	}
	return &Ingester{settings: settings, log: log}
}

// Ingest strips marks from the word stream, normalizes word bounds and
// determines the total duration. audioDurationMs is the probed audio length,
// or 0 when unknown.
func (in *Ingester) Ingest(records []Record, audioDurationMs int) (*Track, error) {
	if len(records) == 0 {
		return nil, ErrEmptyTimingStream
	}

	var words []WordTiming
	var markers []MarkerEvent

	for i, rec := range records {
		switch rec.Kind {
		case RecordMark:
			if ev, ok := in.markerEvent(rec.Text, rec.StartMs); ok {
				markers = append(markers, ev)
			}
		case RecordWord:
			text := strings.TrimSpace(rec.Text)
			if text == "" {
				continue
			}
			if section, kind, ok := ParseMarkerName(text); ok {
				markers = append(markers, MarkerEvent{Section: section, Kind: kind, TimeMs: max(rec.StartMs, 0)})
				continue
			}
			// Standalone punctuation belongs to the preceding word.
			if isPunctuationOnly(text) && len(words) > 0 {
				prev := &words[len(words)-1]
				prev.Word += text
				if rec.EndMs > prev.EndMs {
					prev.EndMs = rec.EndMs
				}
				continue
			}
			words = append(words, WordTiming{Word: text, StartMs: max(rec.StartMs, 0), EndMs: rec.EndMs})
		default:
			in.log.Warn("dropping timing record", "index", i, "kind", int(rec.Kind), "err", ErrUnknownRecordType)
		}
	}

	if len(words) == 0 && len(markers) == 0 {
		return nil, ErrEmptyTimingStream
	}

	sort.SliceStable(words, func(i, j int) bool { return words[i].StartMs < words[j].StartMs })
	sort.SliceStable(markers, func(i, j int) bool { return markers[i].TimeMs < markers[j].TimeMs })
	in.normalizeWordEnds(words)

	total := max(audioDurationMs, 0)
	if n := len(words); n > 0 {
		total = max(total, words[n-1].EndMs)
	}
	if n := len(markers); n > 0 {
		total = max(total, markers[n-1].TimeMs)
	}
	if total <= 0 {
		return nil, ErrUnknownDuration
	}

	return &Track{Words: words, Markers: markers, TotalMs: total}, nil
}

func (in *Ingester) markerEvent(name string, timeMs int) (MarkerEvent, bool) {
	section, kind, ok := ParseMarkerName(name)
	if !ok {
		in.log.Warn("dropping malformed marker", "marker", name, "time_ms", timeMs)
		return MarkerEvent{}, false
	}
	return MarkerEvent{Section: section, Kind: kind, TimeMs: max(timeMs, 0)}, true
}

// normalizeWordEnds derives missing end times and clips overlaps so that
// words are non-overlapping. words must be sorted by StartMs.
func (in *Ingester) normalizeWordEnds(words []WordTiming) {
	for i := range words {
		w := &words[i]
		hasNext := i < len(words)-1
		next := 0
		if hasNext {
			next = words[i+1].StartMs
		}

		if w.EndMs <= w.StartMs {
			if hasNext {
				w.EndMs = next - in.settings.WordGapMs
				if w.EndMs <= w.StartMs {
					w.EndMs = next
				}
			} else {
				w.EndMs = w.StartMs + in.settings.LastWordMs
			}
		}
		if hasNext && w.EndMs > next {
			w.EndMs = next
		}
	}
}
