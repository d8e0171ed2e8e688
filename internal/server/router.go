package server

import (
	"log/slog"
	"net/http"

	"github.com/ozdemircibaris/youtube-video-generator/internal/platform/logger"
	"github.com/ozdemircibaris/youtube-video-generator/internal/platform/metrics"

	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"
)

// NewRouter wires the timeline endpoints. Frame queries are limited to
// queryRateLimit requests per second; zero or less disables the limit.
// m may be nil, which also drops the /metrics endpoint.
func NewRouter(svc *Service, log *slog.Logger, m *metrics.Metrics, queryRateLimit int) http.Handler {
	h := NewHandler(svc, log)

	r := chi.NewRouter()
	r.Use(logger.RequestLogger(log))
	if m != nil {
		r.Use(metrics.RequestMiddleware(m))
		r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			m.Handler(func() { m.SetStoredTimelines(svc.Count()) }).ServeHTTP(w, r)
		})
	}

	r.Route("/channels/{channel}", func(r chi.Router) {
		r.Post("/timeline", h.CreateTimeline)
		r.Get("/timeline", h.GetTimeline)
		r.Get("/captions.srt", h.GetCaptions)
		r.Group(func(r chi.Router) {
			if queryRateLimit > 0 {
				r.Use(RateLimit(rate.NewLimiter(rate.Limit(queryRateLimit), queryRateLimit)))
			}
			r.Get("/frames/{ms}", h.GetFrame)
		})
	})
	return r
}
