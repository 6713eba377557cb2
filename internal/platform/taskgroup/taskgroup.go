// Package taskgroup runs independent units of work on a fixed number of
// concurrent slots. A failing unit never cancels its siblings.
package taskgroup

import (
	"sync"

	"golang.org/x/sync/errgroup"
)

// Group is a bounded pool. Go blocks while every slot is busy; Wait joins all
// submitted units and returns their individual errors.
type Group struct {
	width int
	eg    errgroup.Group

	mu   sync.Mutex
	errs []error

	// OnStart and OnDone observe slot occupancy (metrics); both may be nil.
	OnStart func()
	OnDone  func()
}

func New(width int) *Group {
	if width < 1 {
		width = 1
	}
	g := &Group{width: width}
	g.eg.SetLimit(width)
	return g
}

func (g *Group) Width() int { return g.width }

func (g *Group) Go(fn func() error) {
	g.eg.Go(func() error {
		if g.OnStart != nil {
			g.OnStart()
		}
		if g.OnDone != nil {
			defer g.OnDone()
		}
		if err := fn(); err != nil {
			g.mu.Lock()
			g.errs = append(g.errs, err)
			g.mu.Unlock()
		}
		return nil
	})
}

// Wait blocks until every submitted unit returns.
func (g *Group) Wait() []error {
	_ = g.eg.Wait()
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]error, len(g.errs))
	copy(out, g.errs)
	return out
}
