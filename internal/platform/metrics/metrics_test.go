package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func scrape(t *testing.T, m *Metrics, update func()) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler(update).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(body)
}

func TestMetrics_Counters(t *testing.T) {
	m := New()
	m.ObserveChannel(true, 0.01)
	m.ObserveChannel(false, 0.02)
	m.AddSections("exact_pair", 3)
	m.IncFrameQueries()

	body := scrape(t, m, func() { m.SetStoredTimelines(2) })
	for _, want := range []string{
		`yvg_channels_processed_total{result="ok"} 1`,
		`yvg_channels_processed_total{result="failed"} 1`,
		`yvg_sections_resolved_total{resolution="exact_pair"} 3`,
		`yvg_frame_queries_total 1`,
		`yvg_stored_timelines 2`,
		`yvg_channel_processing_seconds_count 2`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestRequestMiddleware(t *testing.T) {
	m := New()
	mw := RequestMiddleware(m)

	ok := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	notFound := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	ok.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	notFound.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	body := scrape(t, m, nil)
	if !strings.Contains(body, "yvg_requests_total 2") || !strings.Contains(body, "yvg_errors_total 1") {
		t.Errorf("unexpected metrics:\n%s", body)
	}
}

func TestMetrics_WriteTextfile(t *testing.T) {
	m := New()
	m.ObserveChannel(true, 0.5)
	m.AddSections("even_split", 2)

	path := filepath.Join(t.TempDir(), "yvg.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		`yvg_channels_processed_total{result="ok"} 1`,
		`yvg_sections_resolved_total{resolution="even_split"} 2`,
	} {
		if !strings.Contains(string(data), want) {
			t.Errorf("textfile missing %q:\n%s", want, data)
		}
	}
}
