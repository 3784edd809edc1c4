// Package profiler measures code that runs once per frame.
//
// A CycleProfiler keeps a rolling average of how long its main segment and
// each nested task took over the last N cycles. Every timed segment is also
// emitted as a trace span when built with the "profile" tag.
//
// Profilers are not safe for concurrent use. All methods accept nil
// receivers, so code can be profiled optionally by passing a nil segment.
package profiler

import (
	"fmt"
	"io"
	"strings"
	"time"
)

type CycleProfiler struct {
	// Main covers the whole of one cycle's work.
	Main *Segment
	// Frame measures the time between cycles, idle time included.
	Frame *Stopwatch
}

// NewCycleProfiler averages over the last samples cycles.
func NewCycleProfiler(samples int) *CycleProfiler {
	return newCycleProfiler(samples, time.Now)
}

func newCycleProfiler(samples int, now func() time.Time) *CycleProfiler {
	samples = max(samples, 1)
	return &CycleProfiler{
		Main:  newSegment("main", samples, now),
		Frame: newStopwatch(samples, now),
	}
}

// Begin ticks the frame stopwatch and starts timing the main segment.
func (p *CycleProfiler) Begin() *Timing {
	if p == nil {
		return nil
	}
	p.Frame.Tick()
	return p.Main.Time()
}

// Ready reports whether enough cycles ran for the averages to mean
// something.
func (p *CycleProfiler) Ready() bool {
	return p != nil && p.Main.ticks >= uint64(len(p.Main.samples))
}

// String renders the report, e.g.
//
//	Total time elapsed:  12ms /  16ms, 75.00% of total CPU time
//	80.00%   9ms: ui
//	    50.00%   4ms: layout
func (p *CycleProfiler) String() string {
	var sb strings.Builder
	_ = p.Report(&sb)
	return sb.String()
}

func (p *CycleProfiler) Report(w io.Writer) error {
	if !p.Ready() {
		_, err := fmt.Fprintln(w, "Insufficient data")
		return err
	}
	total := p.Frame.Average()
	busy := p.Main.Average()
	pct := 0.0
	if total > 0 {
		pct = 100 * busy.Seconds() / total.Seconds()
	}
	if _, err := fmt.Fprintf(w, "Total time elapsed: %s / %s, %5.2f%% of total CPU time\n",
		FormatDuration(busy), FormatDuration(total), pct); err != nil {
		return err
	}
	return p.Main.report(w, 0)
}

// Segment is a block of code timed over many runs. It owns a tree of
// named tasks timed within it.
type Segment struct {
	name    string
	now     func() time.Time
	samples []time.Duration
	offset  int
	ticks   uint64

	tasks map[string]*Segment
	order []string
}

func newSegment(name string, samples int, now func() time.Time) *Segment {
	return &Segment{
		name:    name,
		now:     now,
		samples: make([]time.Duration, samples),
		tasks:   make(map[string]*Segment),
	}
}

func (s *Segment) Name() string {
	if s == nil {
		return ""
	}
	return s.name
}

// Ticks returns how many runs were recorded.
func (s *Segment) Ticks() uint64 {
	if s == nil {
		return 0
	}
	return s.ticks
}

// Time starts timing one run of the segment. Call End on the result.
func (s *Segment) Time() *Timing {
	if s == nil {
		return nil
	}
	return &Timing{seg: s, start: s.now(), span: Start(s.name)}
}

// Task returns the named task nested in s, creating it on first use.
func (s *Segment) Task(name string) *Segment {
	if s == nil {
		return nil
	}
	if t, ok := s.tasks[name]; ok {
		return t
	}
	t := newSegment(name, len(s.samples), s.now)
	s.tasks[name] = t
	s.order = append(s.order, name)
	return t
}

// Average returns the mean duration over the recorded runs, at most the
// last N.
func (s *Segment) Average() time.Duration {
	if s == nil || s.ticks == 0 {
		return 0
	}
	n := min(s.ticks, uint64(len(s.samples)))
	var sum time.Duration
	for _, d := range s.samples[:n] {
		sum += d
	}
	return sum / time.Duration(n)
}

func (s *Segment) tick(d time.Duration) {
	s.samples[s.offset] = d
	s.offset = (s.offset + 1) % len(s.samples)
	s.ticks++
}

func (s *Segment) report(w io.Writer, indent int) error {
	total := s.Average()
	for _, name := range s.order {
		t := s.tasks[name]
		avg := t.Average()
		pct := 0.0
		if total > 0 {
			pct = 100 * avg.Seconds() / total.Seconds()
		}
		if _, err := fmt.Fprintf(w, "%s%5.2f%% %s: %s\n", strings.Repeat(" ", indent), pct, FormatDuration(avg), name); err != nil {
			return err
		}
		if err := t.report(w, indent+4); err != nil {
			return err
		}
	}
	return nil
}

// Timing is one running measurement of a Segment.
type Timing struct {
	seg   *Segment
	start time.Time
	span  func()
	ended bool
}

// Task starts timing the named task nested in the running segment.
func (t *Timing) Task(name string) *Timing {
	if t == nil {
		return nil
	}
	return t.seg.Task(name).Time()
}

// End records the elapsed time. Only the first call counts.
func (t *Timing) End() time.Duration {
	if t == nil || t.ended {
		return 0
	}
	t.ended = true
	d := t.seg.now().Sub(t.start)
	t.seg.tick(d)
	t.span()
	return d
}

// Stopwatch averages the time between successive ticks over the last N
// ticks.
type Stopwatch struct {
	now    func() time.Time
	times  []time.Time
	offset int
	ticks  uint64
}

func NewStopwatch(samples int) *Stopwatch { return newStopwatch(max(samples, 1), time.Now) }

func newStopwatch(samples int, now func() time.Time) *Stopwatch {
	// One extra slot so N intervals fit between the oldest and newest tick.
	return &Stopwatch{now: now, times: make([]time.Time, samples+1)}
}

// Tick records an event and returns the time since the previous one.
func (s *Stopwatch) Tick() time.Duration {
	if s == nil {
		return 0
	}
	now := s.now()
	var since time.Duration
	if s.ticks > 0 {
		since = now.Sub(s.times[s.prev()])
	}
	s.times[s.offset] = now
	s.offset = (s.offset + 1) % len(s.times)
	s.ticks++
	return since
}

func (s *Stopwatch) Ticks() uint64 {
	if s == nil {
		return 0
	}
	return s.ticks
}

// Average returns the mean interval between the recorded ticks.
func (s *Stopwatch) Average() time.Duration {
	if s == nil || s.ticks < 2 {
		return 0
	}
	filled := min(s.ticks, uint64(len(s.times)))
	oldest := 0
	if s.ticks >= uint64(len(s.times)) {
		oldest = s.offset
	}
	return s.times[s.prev()].Sub(s.times[oldest]) / time.Duration(filled-1)
}

func (s *Stopwatch) prev() int {
	return (s.offset + len(s.times) - 1) % len(s.times)
}

// FormatDuration prints d in three digits with an SI prefix, e.g. " 16ms".
func FormatDuration(d time.Duration) string {
	sec := d.Seconds()
	switch {
	case sec >= 1:
		return fmt.Sprintf("%3d s", int(sec))
	case sec >= 1e-3:
		return fmt.Sprintf("%3dms", int(sec*1e3))
	case sec >= 1e-6:
		return fmt.Sprintf("%3dµs", int(sec*1e6))
	default:
		return fmt.Sprintf("%3dns", d.Nanoseconds())
	}
}
