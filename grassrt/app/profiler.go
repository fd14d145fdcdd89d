package app

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Profiler records named CPU scopes and counters for the current frame and
// keeps running totals so averages can be reported.
type Profiler struct {
	Scopes     map[string]time.Duration
	Totals     map[string]time.Duration
	Samples    map[string]int
	StartTimes map[string]time.Time
	Counts     map[string]int
	Order      []string
}

func NewProfiler() *Profiler {
	return &Profiler{
		Scopes:     make(map[string]time.Duration),
		Totals:     make(map[string]time.Duration),
		Samples:    make(map[string]int),
		StartTimes: make(map[string]time.Time),
		Counts:     make(map[string]int),
		Order:      make([]string, 0),
	}
}

func (p *Profiler) BeginScope(name string) {
	p.StartTimes[name] = time.Now()
	if _, seen := p.Samples[name]; !seen {
		p.Samples[name] = 0
		p.Order = append(p.Order, name)
	}
}

func (p *Profiler) EndScope(name string) {
	start, ok := p.StartTimes[name]
	if !ok {
		return
	}
	d := time.Since(start)
	p.Scopes[name] = d
	p.Totals[name] += d
	p.Samples[name]++
	delete(p.StartTimes, name)
}

func (p *Profiler) SetCount(name string, count int) {
	p.Counts[name] = count
}

func (p *Profiler) Count(name string) int {
	return p.Counts[name]
}

// Last is the duration of the most recent completed scope.
func (p *Profiler) Last(name string) time.Duration {
	return p.Scopes[name]
}

func (p *Profiler) Average(name string) time.Duration {
	n := p.Samples[name]
	if n == 0 {
		return 0
	}
	return p.Totals[name] / time.Duration(n)
}

// Reset clears the per-frame timings. Order and totals are kept.
func (p *Profiler) Reset() {
	for k := range p.Scopes {
		p.Scopes[k] = 0
	}
}

func (p *Profiler) GetStatsString() string {
	var sb strings.Builder

	sb.WriteString("Timings (CPU):\n")
	for _, name := range p.Order {
		last := float64(p.Scopes[name].Microseconds()) / 1000.0
		avg := float64(p.Average(name).Microseconds()) / 1000.0
		sb.WriteString(fmt.Sprintf("  %-15s: %.2f ms (avg %.2f ms over %d)\n", name, last, avg, p.Samples[name]))
	}

	sb.WriteString("\nStats:\n")
	keys := make([]string, 0, len(p.Counts))
	for k := range p.Counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		sb.WriteString(fmt.Sprintf("  %-15s: %d\n", k, p.Counts[k]))
	}

	return sb.String()
}
