package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ozdemircibaris/youtube-video-generator/internal/config"
	"github.com/ozdemircibaris/youtube-video-generator/internal/ffmpeg"
	"github.com/ozdemircibaris/youtube-video-generator/internal/pipeline"
	"github.com/ozdemircibaris/youtube-video-generator/internal/platform/metrics"
)

// Channel is one language's narration: speech marks plus optional audio.
type Channel struct {
	Language  string
	MarksPath string
	AudioPath string
}

// ParseChannel parses "lang=marks.json" or "lang=marks.json:audio.mp3".
func ParseChannel(s string) (Channel, error) {
	lang, rest, ok := strings.Cut(s, "=")
	lang = strings.TrimSpace(lang)
	if !ok || lang == "" || rest == "" {
		return Channel{}, fmt.Errorf("invalid channel %q: want lang=marks.json[:audio]", s)
	}
	marks, audio, _ := strings.Cut(rest, ":")
	if marks == "" {
		return Channel{}, fmt.Errorf("invalid channel %q: missing speech marks path", s)
	}
	return Channel{Language: lang, MarksPath: marks, AudioPath: audio}, nil
}

// Options configures the worker.
type Options struct {
	Channels      []Channel
	Scenario      pipeline.Scenario
	OutputDir     string // empty skips writing files
	NoAsync       bool
	MaxConcurrent int
	Settings      config.Settings
	Metrics       *metrics.Metrics // optional
	Log           *slog.Logger     // nil uses slog.Default()
}

// Result is the outcome of one channel. Exactly one of Timeline and Err is set.
type Result struct {
	Channel  Channel
	Timeline *pipeline.Timeline
	Err      error
}

// Run builds a timeline for every channel. Channels are independent: a
// failing channel is reported in its Result and in the joined error, and
// never stops the others.
func Run(ctx context.Context, opts Options) ([]Result, error) {
	if opts.Log == nil {
		opts.Log = slog.Default()
	}
	if len(opts.Channels) == 0 {
		return nil, errors.New("no channels to process")
	}
	seen := make(map[string]bool, len(opts.Channels))
	for _, ch := range opts.Channels {
		if seen[ch.Language] {
			return nil, fmt.Errorf("duplicate channel %q", ch.Language)
		}
		seen[ch.Language] = true
	}
	if err := opts.Settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	var results []Result
	if !opts.NoAsync && len(opts.Channels) > 1 {
		results = processConcurrent(ctx, opts)
	} else {
		results = processSequential(ctx, opts)
	}

	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("channel %s: %w", r.Channel.Language, r.Err))
		}
	}
	return results, errors.Join(errs...)
}

// runChannel loads, processes and writes one channel.
func runChannel(ctx context.Context, ch Channel, opts Options) Result {
	log := opts.Log.With("channel", ch.Language)
	start := time.Now()

	tl, err := buildTimeline(ctx, ch, opts, log)
	if err == nil && opts.OutputDir != "" {
		err = writeOutputs(filepath.Join(opts.OutputDir, ch.Language), tl, opts.Settings.Caption.MaxWordsPerLine)
	}

	if opts.Metrics != nil {
		opts.Metrics.ObserveChannel(err == nil, time.Since(start).Seconds())
		if err == nil {
			for res, n := range tl.ResolutionCounts() {
				opts.Metrics.AddSections(res.String(), n)
			}
		}
	}
	if err != nil {
		log.Error("channel failed", "err", err)
		return Result{Channel: ch, Err: err}
	}

	log.Info("channel completed",
		"total_ms", tl.TotalMs,
		"sections", len(tl.Sections),
		"segments", len(tl.Segments),
		"duration_ms", time.Since(start).Milliseconds())
	return Result{Channel: ch, Timeline: tl}
}

func buildTimeline(ctx context.Context, ch Channel, opts Options, log *slog.Logger) (*pipeline.Timeline, error) {
	f, err := os.Open(ch.MarksPath)
	if err != nil {
		return nil, fmt.Errorf("open speech marks: %w", err)
	}
	marks, err := pipeline.DecodeSpeechMarks(f)
	f.Close()
	if err != nil {
		return nil, err
	}

	audioMs := 0
	if ch.AudioPath != "" {
		if !ffmpeg.IsAudioExtension(filepath.Ext(ch.AudioPath)) {
			log.Warn("unexpected narration audio extension", "file", filepath.Base(ch.AudioPath))
		}
		info, err := ffmpeg.LogMediaInfo(ctx, log, ch.AudioPath)
		if err != nil {
			return nil, fmt.Errorf("%w: probe %s: %v", pipeline.ErrUnknownDuration, filepath.Base(ch.AudioPath), err)
		}
		audioMs = info.DurationMs
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return pipeline.Process(pipeline.ChannelInput{
		Language:        ch.Language,
		Records:         pipeline.RecordsFromMarks(marks, log),
		Scenario:        opts.Scenario,
		AudioDurationMs: audioMs,
	}, opts.Settings, log)
}

// writeOutputs writes timeline.json and captions.srt into dir.
func writeOutputs(dir string, tl *pipeline.Timeline, maxWordsPerLine int) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := saveJSON(filepath.Join(dir, "timeline.json"), tl); err != nil {
		return fmt.Errorf("write timeline: %w", err)
	}
	srt := pipeline.FormatSRT(tl.Segments, maxWordsPerLine, tl.Language)
	if err := os.WriteFile(filepath.Join(dir, "captions.srt"), []byte(srt), 0644); err != nil {
		return fmt.Errorf("write captions: %w", err)
	}
	return nil
}

func saveJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
