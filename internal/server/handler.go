package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ozdemircibaris/youtube-video-generator/internal/pipeline"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Handler exposes timeline HTTP endpoints using go-chi.
type Handler struct {
	svc *Service
	log *slog.Logger
}

// NewHandler returns a Handler. Metrics are recorded by the Service.
func NewHandler(svc *Service, log *slog.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// CreateTimelineRequest is the body of POST /channels/{channel}/timeline.
type CreateTimelineRequest struct {
	Marks           []pipeline.SpeechMark `json:"marks"`
	Scenario        pipeline.Scenario     `json:"scenario"`
	AudioDurationMs int                   `json:"audio_duration_ms,omitempty"`
}

// TimelineResponse wraps a stored timeline with its identity.
type TimelineResponse struct {
	ID        uuid.UUID          `json:"id"`
	Channel   string             `json:"channel"`
	CreatedAt time.Time          `json:"created_at"`
	Timeline  *pipeline.Timeline `json:"timeline"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// CreateTimeline handles POST /channels/{channel}/timeline.
func (h *Handler) CreateTimeline(w http.ResponseWriter, r *http.Request) {
	channel := chi.URLParam(r, "channel")
	if channel == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	var req CreateTimelineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Debug("invalid timeline body", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	e, err := h.svc.Build(channel, req.Marks, req.Scenario, req.AudioDurationMs)
	if err != nil {
		status := buildErrorStatus(err)
		if status >= http.StatusInternalServerError {
			h.log.Error("build timeline failed", slog.String("channel", channel), slog.String("error", err.Error()))
		} else {
			h.log.Info("timeline rejected", slog.String("channel", channel), slog.String("error", err.Error()))
		}
		writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}

	h.log.Info("timeline stored",
		slog.String("channel", channel),
		slog.String("id", e.ID.String()),
		slog.Int("total_ms", e.Timeline.TotalMs),
		slog.Int("sections", len(e.Timeline.Sections)))
	writeJSON(w, http.StatusCreated, toResponse(e))
}

// buildErrorStatus maps fatal channel errors to HTTP status codes. Bad input
// is 422; a broken partition is a server bug.
func buildErrorStatus(err error) int {
	switch {
	case errors.Is(err, pipeline.ErrInvariantViolation):
		return http.StatusInternalServerError
	case errors.Is(err, pipeline.ErrEmptyTimingStream),
		errors.Is(err, pipeline.ErrUnknownDuration),
		errors.Is(err, pipeline.ErrNoSections),
		errors.Is(err, pipeline.ErrInvalidScenario):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// GetTimeline handles GET /channels/{channel}/timeline.
func (h *Handler) GetTimeline(w http.ResponseWriter, r *http.Request) {
	e, err := h.svc.Get(chi.URLParam(r, "channel"))
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(e))
}

// GetFrame handles GET /channels/{channel}/frames/{ms}.
func (h *Handler) GetFrame(w http.ResponseWriter, r *http.Request) {
	ms, err := strconv.Atoi(chi.URLParam(r, "ms"))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	f, err := h.svc.Frame(chi.URLParam(r, "channel"), ms)
	if errors.Is(err, ErrTimelineNotFound) {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// GetCaptions handles GET /channels/{channel}/captions.srt.
func (h *Handler) GetCaptions(w http.ResponseWriter, r *http.Request) {
	srt, err := h.svc.Captions(chi.URLParam(r, "channel"))
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/x-subrip; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(srt))
}

func toResponse(e *Entry) TimelineResponse {
	return TimelineResponse{ID: e.ID, Channel: e.Channel, CreatedAt: e.CreatedAt, Timeline: e.Timeline}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
