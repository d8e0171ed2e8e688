package pipeline

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/ozdemircibaris/youtube-video-generator/internal/config"
)

var (
	// ErrNoSections is returned when section imagery is required but the
	// scenario declares no sections.
	ErrNoSections = errors.New("scenario declares no sections")

	// ErrInvalidScenario is returned for unnamed or duplicate sections.
	ErrInvalidScenario = errors.New("invalid scenario")

	// ErrInvariantViolation is returned when resolved intervals do not
	// partition the timeline. It indicates a bug, not bad input.
	ErrInvariantViolation = errors.New("section timeline invariant violated")
)

// sectionMarkers holds the marker times found for one declared section.
type sectionMarkers struct {
	start, end       int
	hasStart, hasEnd bool
}

// resolveContext is the state of one resolution run, indexed by scenario position.
type resolveContext struct {
	scenario     Scenario
	track        *Track
	markers      []sectionMarkers
	resolved     []*SectionInterval
	keywords     [][][]string
	tokens       []string
	claimed      map[int]bool
	textWindowMs int
	log          *slog.Logger
}

func (rc *resolveContext) interval(i, start, end int, res Resolution) SectionInterval {
	return SectionInterval{Name: rc.scenario[i].Name, StartMs: start, EndMs: end, Resolution: res}
}

// prevEnd returns the end of the nearest resolved section before i, or 0.
func (rc *resolveContext) prevEnd(i int) int {
	for j := i - 1; j >= 0; j-- {
		if rc.resolved[j] != nil {
			return rc.resolved[j].EndMs
		}
	}
	return 0
}

// nextKnownStart returns the start of the nearest later section that is
// resolved or has a start marker, or the total duration.
func (rc *resolveContext) nextKnownStart(i int) int {
	for j := i + 1; j < len(rc.scenario); j++ {
		if rc.resolved[j] != nil {
			return rc.resolved[j].StartMs
		}
		if rc.markers[j].hasStart {
			return rc.markers[j].start
		}
	}
	return rc.track.TotalMs
}

// nextKnownEdge is nextKnownStart that also stops at a later section's end
// marker, since that section cannot start after it.
func (rc *resolveContext) nextKnownEdge(i int) int {
	for j := i + 1; j < len(rc.scenario); j++ {
		switch {
		case rc.resolved[j] != nil:
			return rc.resolved[j].StartMs
		case rc.markers[j].hasStart:
			return rc.markers[j].start
		case rc.markers[j].hasEnd:
			return rc.markers[j].end
		}
	}
	return rc.track.TotalMs
}

// findMention returns the word range of the first unclaimed mention of
// section i that starts inside [lo, hi).
func (rc *resolveContext) findMention(i, lo, hi int) (first, last int, ok bool) {
	words := rc.track.Words
	for k, w := range words {
		if w.StartMs < lo || rc.claimed[k] {
			continue
		}
		if w.StartMs >= hi {
			break
		}
		for _, seq := range rc.keywords[i] {
			if rc.matchAt(k, seq) {
				return k, k + len(seq) - 1, true
			}
		}
	}
	return 0, 0, false
}

func (rc *resolveContext) matchAt(k int, seq []string) bool {
	return rc.tokensMatch(k, seq, true)
}

func (rc *resolveContext) tokensMatch(k int, seq []string, respectClaims bool) bool {
	if len(seq) == 0 || k+len(seq) > len(rc.tokens) {
		return false
	}
	for t, tok := range seq {
		if (respectClaims && rc.claimed[k+t]) || rc.tokens[k+t] != tok {
			return false
		}
	}
	return true
}

// warnIfAmbiguous logs when the word chosen for section i also names another
// declared section. Scenario order decides which section takes the word.
func (rc *resolveContext) warnIfAmbiguous(i, k int) {
	for j := range rc.scenario {
		if j == i {
			continue
		}
		for _, seq := range rc.keywords[j] {
			if !rc.tokensMatch(k, seq, false) {
				continue
			}
			rc.log.Warn("ambiguous text mention",
				"word", rc.track.Words[k].Word,
				"time_ms", rc.track.Words[k].StartMs,
				"assigned", rc.scenario[i].Name,
				"also_matches", rc.scenario[j].Name)
			return
		}
	}
}

// SectionResolver assigns one interval to every declared section.
type SectionResolver struct {
	settings config.SectionSettings
	chain    []Strategy
	log      *slog.Logger
}

// NewSectionResolver returns a resolver using the default fallback chain.
// A nil log uses slog.Default().
func NewSectionResolver(settings config.SectionSettings, log *slog.Logger) *SectionResolver {
	if log == nil {
		log = slog.Default()
	}
	return &SectionResolver{settings: settings, chain: FallbackChain(), log: log}
}

// Resolve returns one interval per scenario section, in scenario order,
// partitioning [0, track.TotalMs) with no gaps or overlaps.
func (r *SectionResolver) Resolve(track *Track, scenario Scenario) ([]SectionInterval, error) {
	if track == nil || track.TotalMs <= 0 {
		return nil, ErrUnknownDuration
	}
	if len(scenario) == 0 {
		if r.settings.RequireSections {
			return nil, ErrNoSections
		}
		return nil, nil
	}
	if err := validateScenario(scenario); err != nil {
		return nil, err
	}

	rc := r.newContext(track, scenario)

	for i := range scenario {
		for _, stage := range r.chain {
			iv, ok := stage.Resolve(i, rc)
			if !ok {
				continue
			}
			rc.resolved[i] = &iv
			r.log.Debug("section resolved",
				"section", iv.Name,
				"stage", iv.Resolution.String(),
				"start_ms", iv.StartMs,
				"end_ms", iv.EndMs)
			break
		}
		if rc.resolved[i] == nil {
			r.log.Debug("section deferred to even split", "section", scenario[i].Name)
		}
	}
	evenSplit(rc)

	out := make([]SectionInterval, len(scenario))
	for i, iv := range rc.resolved {
		out[i] = *iv
	}
	snapBoundaries(out, track.TotalMs)

	if err := verifyPartition(out, track.TotalMs); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *SectionResolver) newContext(track *Track, scenario Scenario) *resolveContext {
	rc := &resolveContext{
		scenario:     scenario,
		track:        track,
		markers:      collectMarkers(scenario, track.Markers, r.log),
		resolved:     make([]*SectionInterval, len(scenario)),
		keywords:     make([][][]string, len(scenario)),
		tokens:       make([]string, len(track.Words)),
		claimed:      make(map[int]bool),
		textWindowMs: r.settings.TextWindowMs,
		log:          r.log,
	}
	for i, d := range scenario {
		for _, kw := range append([]string{d.Name}, d.Keywords...) {
			if seq := keywordTokens(kw); len(seq) > 0 {
				rc.keywords[i] = append(rc.keywords[i], seq)
			}
		}
	}
	for k, w := range track.Words {
		rc.tokens[k] = normalizeToken(w.Word)
	}
	return rc
}

func validateScenario(scenario Scenario) error {
	seen := make(map[string]bool, len(scenario))
	for i, d := range scenario {
		name := sectionKey(d.Name)
		if name == "" {
			return fmt.Errorf("%w: section %d has no name", ErrInvalidScenario, i+1)
		}
		if seen[name] {
			return fmt.Errorf("%w: duplicate section %q", ErrInvalidScenario, d.Name)
		}
		seen[name] = true
	}
	return nil
}

// sectionKey folds a section name so "Ancient Rome", "ancient-rome" and the
// marker prefix "ancient_rome" refer to the same section.
func sectionKey(name string) string {
	fields := strings.FieldsFunc(name, func(r rune) bool {
		return unicode.IsSpace(r) || r == '-' || r == '_'
	})
	return strings.ToLower(strings.Join(fields, "_"))
}

// collectMarkers keeps, per declared section, the first start marker and the
// first end marker after it. Markers naming undeclared sections are ignored.
func collectMarkers(scenario Scenario, events []MarkerEvent, log *slog.Logger) []sectionMarkers {
	index := make(map[string]int, len(scenario))
	for i, d := range scenario {
		index[sectionKey(d.Name)] = i
	}

	out := make([]sectionMarkers, len(scenario))
	lookup := func(ev MarkerEvent) (int, bool) {
		i, ok := index[sectionKey(ev.Section)]
		if !ok {
			log.Warn("ignoring orphan marker", "section", ev.Section, "kind", ev.Kind.String(), "time_ms", ev.TimeMs)
		}
		return i, ok
	}

	for _, ev := range events {
		if ev.Kind != MarkerStart {
			continue
		}
		i, ok := lookup(ev)
		if !ok {
			continue
		}
		if out[i].hasStart {
			log.Warn("ignoring repeated start marker", "section", ev.Section, "time_ms", ev.TimeMs)
			continue
		}
		out[i].start, out[i].hasStart = ev.TimeMs, true
	}

	for _, ev := range events {
		if ev.Kind != MarkerEnd {
			continue
		}
		i, ok := lookup(ev)
		if !ok || out[i].hasEnd {
			continue
		}
		if out[i].hasStart && ev.TimeMs <= out[i].start {
			log.Warn("ignoring end marker before start", "section", ev.Section, "time_ms", ev.TimeMs)
			continue
		}
		out[i].end, out[i].hasEnd = ev.TimeMs, true
	}
	return out
}

// snapBoundaries makes adjacent intervals share a boundary and clamps the
// outer edges to [0, totalMs]. Where neighbors disagree, the edge with the
// stronger marker evidence wins.
func snapBoundaries(iv []SectionInterval, totalMs int) {
	n := len(iv)
	if n == 0 {
		return
	}

	bounds := make([]int, n+1)
	bounds[n] = totalMs
	for i := 0; i < n-1; i++ {
		a, b := iv[i], iv[i+1]
		if endAuthority(a.Resolution) > startAuthority(b.Resolution) {
			bounds[i+1] = a.EndMs
		} else {
			bounds[i+1] = b.StartMs
		}
	}
	for i := 1; i <= n; i++ {
		bounds[i] = min(max(bounds[i], bounds[i-1]), totalMs)
	}

	for i := range iv {
		iv[i].StartMs = bounds[i]
		iv[i].EndMs = bounds[i+1]
	}
}

// verifyPartition checks that the intervals exactly tile [0, totalMs).
func verifyPartition(iv []SectionInterval, totalMs int) error {
	if len(iv) == 0 {
		return nil
	}
	if iv[0].StartMs != 0 {
		return fmt.Errorf("%w: first section %q starts at %d", ErrInvariantViolation, iv[0].Name, iv[0].StartMs)
	}
	if last := iv[len(iv)-1]; last.EndMs != totalMs {
		return fmt.Errorf("%w: last section %q ends at %d, want %d", ErrInvariantViolation, last.Name, last.EndMs, totalMs)
	}
	for i, s := range iv {
		if s.EndMs < s.StartMs {
			return fmt.Errorf("%w: section %q has negative duration", ErrInvariantViolation, s.Name)
		}
		if i > 0 && s.StartMs != iv[i-1].EndMs {
			return fmt.Errorf("%w: sections %q and %q are not contiguous (%d != %d)",
				ErrInvariantViolation, iv[i-1].Name, s.Name, iv[i-1].EndMs, s.StartMs)
		}
	}
	return nil
}
