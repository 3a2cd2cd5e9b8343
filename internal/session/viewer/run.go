package viewer

import (
	"context"
	"errors"
	"maps"
	"sync"

	"github.com/SerjoschDuering/ifcore-platform/internal/domain/model"
	"github.com/SerjoschDuering/ifcore-platform/internal/session/store"
)

// watched is the slice of store state the viewer reacts to.
type watched struct {
	url       string
	colors    model.ColorMap
	highlight model.ColorMap
	selected  map[string]struct{}
	hidden    map[string]struct{}
}

func watch(snap store.Snapshot) watched {
	return watched{
		url:       snap.IFCURL,
		colors:    snap.ColorMap,
		highlight: snap.HighlightColorMap,
		selected:  snap.SelectedIDs,
		hidden:    snap.HiddenIDs,
	}
}

// Run follows the store until ctx is done. A new IFC URL starts a load,
// color or selection changes recolor, and hidden-set changes sync visibility.
// Loads run in their own goroutines so a newer URL can supersede an older one.
func (c *Coordinator) Run(ctx context.Context) error {
	wake := make(chan struct{}, 1)
	unsubscribe := c.store.Subscribe(func(store.Snapshot) {
		select {
		case wake <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	var loads sync.WaitGroup
	defer loads.Wait()

	var last watched
	react := func() {
		next := watch(c.store.Snapshot())
		if next.url != last.url && next.url != "" {
			url := next.url
			loads.Add(1)
			go func() {
				defer loads.Done()
				c.report(ctx, c.Load(ctx, url))
			}()
		} else {
			if !next.colors.Equal(last.colors) || !next.highlight.Equal(last.highlight) ||
				!maps.Equal(next.selected, last.selected) {
				c.report(ctx, c.ApplyColors(ctx))
			}
			if !maps.Equal(next.hidden, last.hidden) {
				c.report(ctx, c.SyncVisibility(ctx))
			}
		}
		last = next
	}

	react()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-wake:
			react()
		}
	}
}

func (c *Coordinator) report(ctx context.Context, err error) {
	if err == nil || IsDiscardable(err) || errors.Is(err, context.Canceled) {
		return
	}
	var le *LoadError
	if errors.As(err, &le) {
		c.logger.WarnContext(ctx, le.UserMessage(), "category", le.Category, "error", le.Err)
		return
	}
	c.logger.WarnContext(ctx, "viewer update failed", "error", err)
}
