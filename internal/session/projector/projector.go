// Package projector derives viewer color maps from the session store: base
// status colors for every element and the highlight overlay for the selected
// category or check.
package projector

import (
	"context"
	"log/slog"

	"github.com/SerjoschDuering/ifcore-platform/internal/domain/model"
	"github.com/SerjoschDuering/ifcore-platform/internal/session/store"
)

// Store is the part of the session store the projector reads and writes.
type Store interface {
	Snapshot() store.Snapshot
	SetColorMap(model.ColorMap) bool
	SetHighlightColorMap(model.ColorMap) bool
	Subscribe(store.Listener) func()
}

// Projector maps results to colors using a category configuration.
type Projector struct {
	Categories model.CategorySet
	Logger     *slog.Logger
}

// New returns a projector for the given categories.
func New(categories model.CategorySet, logger *slog.Logger) *Projector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Projector{Categories: categories, Logger: logger.With("component", "projector")}
}

// Highlight computes the highlight overlay for a snapshot.
//
// With a check selected only that check's elements are colored by status.
// With a category selected, failing elements of teams in the category get the
// category color and every other resolvable element is muted. Elements whose
// check is missing or that are hidden are left out. With nothing selected the
// overlay is empty.
func (p *Projector) Highlight(snap store.Snapshot) model.ColorMap {
	out := model.ColorMap{}
	switch {
	case snap.SelectedCheckID != "":
		for _, el := range ElementsForCheck(snap.ElementResults, snap.SelectedCheckID) {
			if el.ElementID == nil || *el.ElementID == "" || snap.IsHidden(*el.ElementID) {
				continue
			}
			paintStatus(out, *el.ElementID, el.CheckStatus)
		}
	case snap.SelectedCategory != "":
		cat, ok := p.Categories.Lookup(snap.SelectedCategory)
		if !ok {
			return out
		}
		checks := model.IndexChecks(snap.CheckResults)
		for _, el := range snap.ElementResults {
			if el.ElementID == nil || *el.ElementID == "" {
				continue
			}
			id := *el.ElementID
			check, ok := checks[el.CheckResultID]
			if !ok || snap.IsHidden(id) {
				continue
			}
			if p.Categories.CategoryOf(check.Team) == cat.ID && el.CheckStatus == model.ElementStatusFail {
				out[id] = cat.Color
				continue
			}
			if _, accented := out[id]; !accented {
				out[id] = model.MutedHex
			}
		}
	}
	return out
}

// BaseColors colors every element by status. The first status seen for an
// element id sticks unless a later one is fail.
func BaseColors(elements []model.ElementResult) model.ColorMap {
	out := make(model.ColorMap, len(elements))
	for _, el := range elements {
		if el.ElementID == nil || *el.ElementID == "" {
			continue
		}
		paintStatus(out, *el.ElementID, el.CheckStatus)
	}
	return out
}

func paintStatus(m model.ColorMap, id string, status model.ElementStatus) {
	if _, seen := m[id]; !seen || status == model.ElementStatusFail {
		m[id] = model.ViewerHex(status)
	}
}

// Apply recomputes both maps from the current snapshot and writes them. It
// reports whether anything changed; unchanged inputs produce no write.
func (p *Projector) Apply(s Store) bool {
	snap := s.Snapshot()
	base := s.SetColorMap(BaseColors(snap.ElementResults))
	highlight := s.SetHighlightColorMap(p.Highlight(snap))
	return base || highlight
}

// Run keeps the color maps in sync with the store until ctx is done.
// Notifications are coalesced, so a burst of commits costs one Apply.
func (p *Projector) Run(ctx context.Context, s Store) error {
	wake := make(chan struct{}, 1)
	unsubscribe := s.Subscribe(func(store.Snapshot) {
		select {
		case wake <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	p.Apply(s)
	for {
		select {
		case <-ctx.Done():
			p.Logger.DebugContext(ctx, "projector stopped")
			return nil
		case <-wake:
			if p.Apply(s) {
				p.Logger.DebugContext(ctx, "colors updated", "version", s.Snapshot().Version)
			}
		}
	}
}
