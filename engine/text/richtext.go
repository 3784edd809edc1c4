package text

import (
	"context"
	"slices"
	"sync"

	"github.com/hubastard/questsage/engine/core"
)

// Typesetter shapes paragraphs into words.
type Typesetter interface {
	Typeset(ctx context.Context, paragraphs []Paragraph) (*TypesetText, error)
}

// RichText holds styled source paragraphs and their typeset form.
//
// Every SetText bumps a generation counter. Typesetting runs in the
// background and its result is committed only if no newer SetText happened
// in the meantime, so the last write always wins.
type RichText struct {
	ts Typesetter

	mu         sync.RWMutex
	generation uint64
	paragraphs []Paragraph
	typeset    *TypesetText
	onCommit   []func(*TypesetText)

	pending sync.WaitGroup
}

func NewRichText(ts Typesetter) *RichText {
	return &RichText{ts: ts}
}

// SetText starts a new edit. Nothing changes until Finish is called on the
// returned builder, but any typesetting still in flight is now stale.
func (rt *RichText) SetText(family FontFamily) *Builder {
	rt.mu.Lock()
	rt.generation++
	gen := rt.generation
	rt.mu.Unlock()
	return &Builder{target: rt, generation: gen, style: DefaultStyle(family)}
}

func (rt *RichText) Generation() uint64 {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return rt.generation
}

// Typeset returns the committed typeset text, if any.
func (rt *RichText) Typeset() (*TypesetText, bool) {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return rt.typeset, rt.typeset != nil
}

// Paragraphs returns the source of the committed text.
func (rt *RichText) Paragraphs() []Paragraph {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return rt.paragraphs
}

// OnCommit registers fn to run after each successful commit. It runs on the
// typesetting goroutine.
func (rt *RichText) OnCommit(fn func(*TypesetText)) {
	rt.mu.Lock()
	rt.onCommit = append(rt.onCommit, fn)
	rt.mu.Unlock()
}

// Wait blocks until every background typesetting task has finished.
func (rt *RichText) Wait() { rt.pending.Wait() }

func (rt *RichText) submit(ctx context.Context, gen uint64, paragraphs []Paragraph) {
	rt.pending.Add(1)
	go func() {
		defer rt.pending.Done()
		out, err := rt.ts.Typeset(ctx, paragraphs)
		if err != nil {
			core.Logger().Warn("typesetting failed", "generation", gen, "err", err)
			return
		}
		rt.commit(gen, paragraphs, out)
	}()
}

// commit stores the result if gen is still current and reports whether it
// did.
func (rt *RichText) commit(gen uint64, paragraphs []Paragraph, out *TypesetText) bool {
	rt.mu.Lock()
	if gen != rt.generation {
		rt.mu.Unlock()
		core.Logger().Debug("discarding stale typeset text", "generation", gen)
		return false
	}
	rt.paragraphs = paragraphs
	rt.typeset = out
	hooks := slices.Clone(rt.onCommit)
	rt.mu.Unlock()

	for _, fn := range hooks {
		fn(out)
	}
	return true
}
