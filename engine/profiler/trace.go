//go:build profile

package profiler

import (
	"encoding/json"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

var ErrNoSpans = errors.New("profiler: no spans recorded")

// InitTrace starts recording spans into a ring of capacity open/close
// events. Spans started before InitTrace are dropped.
func InitTrace(capacity int) {
	if capacity <= 0 {
		capacity = 1 << 20
	}
	ring.init(capacity)
}

// Start opens a trace span and returns the func closing it.
func Start(name string) func() {
	if !ring.ready.Load() {
		return func() {}
	}
	id := names.intern(name)
	at := time.Now().UnixNano()
	ring.push(span{at: at, name: id, open: true})
	return func() {
		end := max(time.Now().UnixNano(), at)
		ring.push(span{at: end, name: id})
	}
}

// DumpTrace writes the recorded spans to path as an evented speedscope
// profile.
func DumpTrace(path string) error {
	spans := ring.snapshot()
	if len(spans) == 0 {
		return ErrNoSpans
	}
	doc, ok := speedscope(spans, names.list())
	if !ok {
		return ErrNoSpans
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(&doc); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

type span struct {
	at   int64
	name int
	open bool
}

type spanRing struct {
	ready atomic.Bool
	cap   uint64
	write atomic.Uint64
	spans []span
}

var ring spanRing

func (r *spanRing) init(capacity int) {
	r.cap = uint64(capacity)
	r.spans = make([]span, r.cap)
	r.write.Store(0)
	r.ready.Store(true)
}

func (r *spanRing) push(s span) {
	i := r.write.Add(1) - 1
	r.spans[i%r.cap] = s
}

// snapshot returns the retained spans in write order.
func (r *spanRing) snapshot() []span {
	n := r.write.Load()
	start := uint64(0)
	if n > r.cap {
		start = n - r.cap
	}
	out := make([]span, 0, n-start)
	for k := start; k < n; k++ {
		out = append(out, r.spans[k%r.cap])
	}
	return out
}

type interner struct {
	mu    sync.Mutex
	names []string
	index map[string]int
}

var names = interner{index: map[string]int{}}

func (in *interner) intern(name string) int {
	in.mu.Lock()
	defer in.mu.Unlock()
	if id, ok := in.index[name]; ok {
		return id
	}
	id := len(in.names)
	in.index[name] = id
	in.names = append(in.names, name)
	return id
}

func (in *interner) list() []string {
	in.mu.Lock()
	defer in.mu.Unlock()
	return append([]string(nil), in.names...)
}

type ssFile struct {
	Schema   string      `json:"$schema"`
	Shared   ssShared    `json:"shared"`
	Profiles []ssProfile `json:"profiles"`
	Exporter string      `json:"exporter,omitempty"`
	Name     string      `json:"name,omitempty"`
}

type ssShared struct {
	Frames []ssFrame `json:"frames"`
}

type ssFrame struct {
	Name string `json:"name"`
}

type ssProfile struct {
	Type       string    `json:"type"`
	Name       string    `json:"name"`
	Unit       string    `json:"unit"`
	StartValue int64     `json:"startValue"`
	EndValue   int64     `json:"endValue"`
	Events     []ssEvent `json:"events"`
}

type ssEvent struct {
	Type  string `json:"type"` // "O" or "C"
	At    int64  `json:"at"`   // µs since the first span
	Frame int    `json:"frame"`
}

// speedscope converts spans to a balanced event list. Closes that do not
// match the innermost open span are dropped, and spans still open at the
// end are closed at the last timestamp.
func speedscope(spans []span, frameNames []string) (ssFile, bool) {
	base := spans[0].at
	out := make([]ssEvent, 0, len(spans)+16)
	var (
		stack []int
		last  int64
	)
	for _, s := range spans {
		at := max((s.at-base)/1000, last)
		if s.open {
			out = append(out, ssEvent{Type: "O", At: at, Frame: s.name})
			stack = append(stack, s.name)
		} else {
			if len(stack) == 0 || stack[len(stack)-1] != s.name {
				continue
			}
			stack = stack[:len(stack)-1]
			out = append(out, ssEvent{Type: "C", At: at, Frame: s.name})
		}
		last = at
	}
	for i := len(stack) - 1; i >= 0; i-- {
		out = append(out, ssEvent{Type: "C", At: last, Frame: stack[i]})
	}
	if len(out) == 0 {
		return ssFile{}, false
	}

	frames := make([]ssFrame, len(frameNames))
	for i, n := range frameNames {
		frames[i] = ssFrame{Name: n}
	}
	return ssFile{
		Schema: "https://www.speedscope.app/file-format-schema.json",
		Shared: ssShared{Frames: frames},
		Profiles: []ssProfile{{
			Type:     "evented",
			Name:     "frame",
			Unit:     "microseconds",
			EndValue: last,
			Events:   out,
		}},
		Exporter: "questsage",
		Name:     "questsage capture",
	}, true
}
