package gpu

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Profiler records named CPU-side timing scopes via a BeginScope/EndScope
// pair, keeping the most recent duration of each name, plus named counters,
// for reporting per-pass timings.
type Profiler struct {
	scopes     map[string]time.Duration
	startTimes map[string]time.Time
	counts     map[string]int
	order      []string
}

// NewProfiler returns an empty profiler.
func NewProfiler() *Profiler {
	return &Profiler{
		scopes:     make(map[string]time.Duration),
		startTimes: make(map[string]time.Time),
		counts:     make(map[string]int),
	}
}

// BeginScope marks the start of a named timing scope (e.g. a pass name).
func (p *Profiler) BeginScope(name string) {
	p.startTimes[name] = time.Now()
	for _, n := range p.order {
		if n == name {
			return
		}
	}
	p.order = append(p.order, name)
}

// EndScope closes a scope opened by BeginScope, recording its duration.
func (p *Profiler) EndScope(name string) {
	if start, ok := p.startTimes[name]; ok {
		p.scopes[name] = time.Since(start)
	}
}

// SetCount records a named counter (e.g. live emitter count) for the frame.
func (p *Profiler) SetCount(name string, count int) {
	p.counts[name] = count
}

// Reset clears all recorded durations ahead of the next frame, keeping the
// scope ordering stable across frames for display.
func (p *Profiler) Reset() {
	for k := range p.scopes {
		p.scopes[k] = 0
	}
}

// Scope returns the last recorded duration for name.
func (p *Profiler) Scope(name string) time.Duration { return p.scopes[name] }

// Stats renders the current scopes and counters as a human-readable report.
func (p *Profiler) Stats() string {
	var sb strings.Builder
	sb.WriteString("pass timings:\n")
	for _, name := range p.order {
		ms := float64(p.scopes[name].Microseconds()) / 1000.0
		fmt.Fprintf(&sb, "  %-24s %.2f ms\n", name, ms)
	}
	keys := make([]string, 0, len(p.counts))
	for k := range p.counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) > 0 {
		sb.WriteString("counters:\n")
		for _, k := range keys {
			fmt.Fprintf(&sb, "  %-24s %d\n", k, p.counts[k])
		}
	}
	return sb.String()
}
