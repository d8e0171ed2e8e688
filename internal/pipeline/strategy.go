package pipeline

// Strategy is one stage of the section fallback chain. Resolve returns false
// when the stage does not apply to section i, letting the next stage try.
type Strategy struct {
	Resolution Resolution
	Resolve    func(i int, rc *resolveContext) (SectionInterval, bool)
}

// FallbackChain returns the per-section stages in the order they are tried.
// Sections no stage resolves are evenly split after the whole scenario has
// been walked.
func FallbackChain() []Strategy {
	return []Strategy{
		{Resolution: ResolvedExactPair, Resolve: resolveExactPair},
		{Resolution: ResolvedStartOnly, Resolve: resolveStartOnly},
		{Resolution: ResolvedEndOnly, Resolve: resolveEndOnly},
		{Resolution: ResolvedTextInference, Resolve: resolveTextInference},
	}
}

func resolveExactPair(i int, rc *resolveContext) (SectionInterval, bool) {
	m := rc.markers[i]
	if !m.hasStart || !m.hasEnd {
		return SectionInterval{}, false
	}
	return rc.interval(i, m.start, m.end, ResolvedExactPair), true
}

// resolveStartOnly ends the section where the next section with a known start
// begins, or at the end of the narration.
func resolveStartOnly(i int, rc *resolveContext) (SectionInterval, bool) {
	m := rc.markers[i]
	if !m.hasStart || m.hasEnd {
		return SectionInterval{}, false
	}
	end := max(rc.nextKnownStart(i), m.start)
	return rc.interval(i, m.start, end, ResolvedStartOnly), true
}

// resolveEndOnly starts the section where the previous resolved section ends.
func resolveEndOnly(i int, rc *resolveContext) (SectionInterval, bool) {
	m := rc.markers[i]
	if m.hasStart || !m.hasEnd {
		return SectionInterval{}, false
	}
	start := min(rc.prevEnd(i), m.end)
	return rc.interval(i, start, m.end, ResolvedEndOnly), true
}

// resolveTextInference centers a fixed window on the first spoken mention of
// the section, clipped to the free space between its neighbors. A later
// section's end marker bounds that space as firmly as its start marker.
func resolveTextInference(i int, rc *resolveContext) (SectionInterval, bool) {
	m := rc.markers[i]
	if m.hasStart || m.hasEnd {
		return SectionInterval{}, false
	}

	lo, hi := rc.prevEnd(i), rc.nextKnownEdge(i)
	if hi <= lo {
		return SectionInterval{}, false
	}

	first, last, ok := rc.findMention(i, lo, hi)
	if !ok {
		return SectionInterval{}, false
	}

	w := rc.track.Words[first]
	center := (w.StartMs + w.EndMs) / 2
	start := max(center-rc.textWindowMs/2, lo)
	end := min(center-rc.textWindowMs/2+rc.textWindowMs, hi)
	if end <= start {
		return SectionInterval{}, false
	}

	for k := first; k <= last; k++ {
		rc.claimed[k] = true
	}
	rc.warnIfAmbiguous(i, first)
	return rc.interval(i, start, end, ResolvedTextInference), true
}

// evenSplit partitions each run of unresolved sections over the time between
// its resolved neighbors.
func evenSplit(rc *resolveContext) {
	n := len(rc.resolved)
	for a := 0; a < n; a++ {
		if rc.resolved[a] != nil {
			continue
		}
		b := a
		for b+1 < n && rc.resolved[b+1] == nil {
			b++
		}

		lo := rc.prevEnd(a)
		hi := rc.track.TotalMs
		if b+1 < n {
			hi = rc.resolved[b+1].StartMs
		}
		span := max(hi-lo, 0)
		count := b - a + 1

		for k := 0; k < count; k++ {
			start := lo + span*k/count
			end := lo + span*(k+1)/count
			iv := rc.interval(a+k, start, end, ResolvedEvenSplit)
			rc.resolved[a+k] = &iv
		}
		a = b
	}
}

// Boundary authority per resolution: how much a marker-derived edge should
// win over its neighbor's edge when the two disagree.
func startAuthority(r Resolution) int {
	switch r {
	case ResolvedExactPair, ResolvedStartOnly:
		return 3
	case ResolvedTextInference:
		return 2
	case ResolvedEndOnly:
		return 1
	}
	return 0
}

func endAuthority(r Resolution) int {
	switch r {
	case ResolvedExactPair, ResolvedEndOnly:
		return 3
	case ResolvedTextInference:
		return 2
	case ResolvedStartOnly:
		return 1
	}
	return 0
}
