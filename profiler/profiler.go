// Package profiler - per-operation timing statistics for pipeline stages.
package profiler

import (
	"sort"
	"sync"
	"time"
)

// DefaultMaxSamples bounds how many recent durations each operation keeps.
const DefaultMaxSamples = 1000

// TimeTracker tracks operation timing statistics.
type TimeTracker struct {
	name      string
	durations []time.Duration
	totalTime time.Duration
	minTime   time.Duration
	maxTime   time.Duration
	count     int64
}

// OperationStats is a snapshot of one operation's timings.
type OperationStats struct {
	Name  string        `json:"name"`
	Count int64         `json:"count"`
	Min   time.Duration `json:"min"`
	Max   time.Duration `json:"max"`
	// Avg is the mean over the retained samples.
	Avg time.Duration `json:"avg"`
}

// Profiler collects timings for named operations. It is safe for concurrent
// use.
type Profiler struct {
	mu             sync.RWMutex
	maxSamples     int
	operationTimes map[string]*TimeTracker
}

// New creates a profiler that retains up to maxSamples durations per
// operation. maxSamples <= 0 selects DefaultMaxSamples.
func New(maxSamples int) *Profiler {
	if maxSamples <= 0 {
		maxSamples = DefaultMaxSamples
	}
	return &Profiler{
		maxSamples:     maxSamples,
		operationTimes: make(map[string]*TimeTracker),
	}
}

// StartOperation begins timing an operation.
//
// Arguments:
// - name: The name of the operation to track
//
// Returns:
// - A function to call when the operation completes; it returns the elapsed time
func (p *Profiler) StartOperation(name string) func() time.Duration {
	start := time.Now()
	return func() time.Duration {
		duration := time.Since(start)
		p.Record(name, duration)
		return duration
	}
}

// Record adds one duration for name.
func (p *Profiler) Record(name string, duration time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	tracker, exists := p.operationTimes[name]
	if !exists {
		tracker = &TimeTracker{
			name:    name,
			minTime: duration,
			maxTime: duration,
		}
		p.operationTimes[name] = tracker
	}

	tracker.durations = append(tracker.durations, duration)
	tracker.totalTime += duration
	if len(tracker.durations) > p.maxSamples {
		// Remove oldest sample
		tracker.totalTime -= tracker.durations[0]
		tracker.durations = tracker.durations[1:]
	}
	tracker.count++

	if duration < tracker.minTime {
		tracker.minTime = duration
	}
	if duration > tracker.maxTime {
		tracker.maxTime = duration
	}
}

// Stats returns a snapshot of every operation, sorted by name.
func (p *Profiler) Stats() []OperationStats {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]OperationStats, 0, len(p.operationTimes))
	for _, t := range p.operationTimes {
		s := OperationStats{Name: t.name, Count: t.count, Min: t.minTime, Max: t.maxTime}
		if n := len(t.durations); n > 0 {
			s.Avg = t.totalTime / time.Duration(n)
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
