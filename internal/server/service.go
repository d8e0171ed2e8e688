package server

import (
	"errors"
	"log/slog"
	"time"

	"github.com/ozdemircibaris/youtube-video-generator/internal/config"
	"github.com/ozdemircibaris/youtube-video-generator/internal/pipeline"
	"github.com/ozdemircibaris/youtube-video-generator/internal/platform/metrics"

	"github.com/google/uuid"
)

// ErrTimelineNotFound is returned when no timeline has been built for a channel.
var ErrTimelineNotFound = errors.New("timeline not found")

// Service builds channel timelines and answers frame queries against them.
type Service struct {
	store    Store
	settings config.Settings
	log      *slog.Logger
	metrics  *metrics.Metrics
}

// NewService returns a Service. m may be nil.
func NewService(store Store, settings config.Settings, log *slog.Logger, m *metrics.Metrics) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: store, settings: settings, log: log, metrics: m}
}

// Build processes one channel's timing stream and stores the result,
// replacing any earlier timeline for the channel.
func (s *Service) Build(channel string, marks []pipeline.SpeechMark, scenario pipeline.Scenario, audioDurationMs int) (*Entry, error) {
	start := time.Now()
	tl, err := pipeline.Process(pipeline.ChannelInput{
		Language:        channel,
		Records:         pipeline.RecordsFromMarks(marks, s.log),
		Scenario:        scenario,
		AudioDurationMs: audioDurationMs,
	}, s.settings, s.log)

	if s.metrics != nil {
		s.metrics.ObserveChannel(err == nil, time.Since(start).Seconds())
	}
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		for res, n := range tl.ResolutionCounts() {
			s.metrics.AddSections(res.String(), n)
		}
	}

	e := &Entry{
		ID:          uuid.New(),
		Channel:     channel,
		Timeline:    tl,
		Highlighter: tl.Highlighter(),
		CreatedAt:   time.Now().UTC(),
	}
	s.store.Put(e)
	return e, nil
}

// Get returns the stored entry for channel.
func (s *Service) Get(channel string) (*Entry, error) {
	e, ok := s.store.Get(channel)
	if !ok {
		return nil, ErrTimelineNotFound
	}
	return e, nil
}

// Frame resolves the render descriptor for channel at timeMs.
func (s *Service) Frame(channel string, timeMs int) (pipeline.Frame, error) {
	e, err := s.Get(channel)
	if err != nil {
		return pipeline.Frame{}, err
	}
	if s.metrics != nil {
		s.metrics.IncFrameQueries()
	}
	return e.Highlighter.Resolve(timeMs), nil
}

// Captions renders the channel's caption segments as SRT.
func (s *Service) Captions(channel string) (string, error) {
	e, err := s.Get(channel)
	if err != nil {
		return "", err
	}
	return pipeline.FormatSRT(e.Timeline.Segments, s.settings.Caption.MaxWordsPerLine, channel), nil
}

// Count returns the number of stored timelines.
func (s *Service) Count() int {
	return s.store.Len()
}
