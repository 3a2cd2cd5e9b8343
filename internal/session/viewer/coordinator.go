package viewer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/SerjoschDuering/ifcore-platform/internal/domain/model"
	"github.com/SerjoschDuering/ifcore-platform/internal/session/store"
)

// GhostOpacity fades elements outside an active highlight.
const GhostOpacity = 0.08

// htmlMagic is the start of "<!DOCTYPE".
var htmlMagic = []byte("<!DO")

// Store is the part of the session store the coordinator uses.
type Store interface {
	Snapshot() store.Snapshot
	SelectElements([]string)
	ClearSelection()
	SetReady(bool)
	Subscribe(store.Listener) func()
}

// Options groups dependencies for the Coordinator.
type Options struct {
	Engine Engine // Required
	Store  Store  // Required
	Logger *slog.Logger
	Now    func() time.Time
}

// Coordinator serializes model loads and recolors on one engine.
//
// A new Load cancels the one in flight and then waits for it to release the
// load slot, so at most one load touches the engine at a time and only the
// newest model is adopted. Recolors carry a generation number and abandon
// their remaining steps once a newer recolor starts. Every paint step holds
// the paint lock and rechecks its generation and model first; disposal takes
// the same lock and bumps the generation, so no step reaches a disposed model.
type Coordinator struct {
	engine Engine
	store  Store
	logger *slog.Logger
	now    func() time.Time

	slot  chan struct{}
	gen   atomic.Uint64
	paint sync.Mutex

	mu         sync.Mutex
	loadSeq    uint64
	cancelLoad context.CancelFunc
	model      Model
	index      map[string]int
	diag       Diagnostics
	closed     bool
}

// New constructs a Coordinator.
func New(opts Options) (*Coordinator, error) {
	if opts.Engine == nil {
		return nil, errors.New("engine is required")
	}
	if opts.Store == nil {
		return nil, errors.New("store is required")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	c := &Coordinator{
		engine: opts.Engine,
		store:  opts.Store,
		logger: logger.With("component", "viewer"),
		now:    opts.Now,
		slot:   make(chan struct{}, 1),
	}
	c.diag = Diagnostics{Phase: PhaseIdle, UpdatedAt: c.now()}
	return c, nil
}

// Open initializes the engine and marks the store ready.
func (c *Coordinator) Open(ctx context.Context) error {
	c.setPhase(PhaseInitEngine)
	if init, ok := c.engine.(Initializer); ok {
		if err := init.Init(ctx); err != nil {
			return c.fail(PhaseInitEngine, CategoryProcessing, err)
		}
	}
	c.setPhase(PhaseInitLoader)
	c.store.SetReady(true)
	c.setPhase(PhaseIdle)
	return nil
}

// Diagnostics returns the current diagnostics.
func (c *Coordinator) Diagnostics() Diagnostics {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.diag
}

// Identifiers returns the GlobalIds of the adopted model, sorted.
func (c *Coordinator) Identifiers() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Sorted(maps.Keys(c.index))
}

// Load replaces the current model with the one at url. A load that a newer
// Load replaced returns ErrSuperseded and adopts nothing. Failures return a
// *LoadError; the coordinator stays usable.
func (c *Coordinator) Load(ctx context.Context, url string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.cancelLoad != nil {
		c.cancelLoad()
	}
	loadCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	c.loadSeq++
	seq := c.loadSeq
	c.cancelLoad = cancel
	c.mu.Unlock()

	select {
	case c.slot <- struct{}{}:
	case <-loadCtx.Done():
		return c.aborted(ctx)
	}
	defer func() { <-c.slot }()
	if loadCtx.Err() != nil {
		return c.aborted(ctx)
	}

	start := c.now()
	c.disposeCurrent(loadCtx)

	c.setPhase(PhaseFetchIFC)
	data, err := c.engine.Fetch(loadCtx, url)
	if loadCtx.Err() != nil {
		return c.aborted(ctx)
	}
	if err != nil {
		return c.fail(PhaseFetchIFC, CategoryTransport, err)
	}
	if bytes.HasPrefix(data, htmlMagic) {
		return c.fail(PhaseFetchIFC, CategoryPayloadFormat, ErrHTMLPayload)
	}

	c.setPhase(PhaseProcessIFC)
	m, err := c.engine.Parse(loadCtx, data)
	if loadCtx.Err() != nil {
		c.discard(m)
		return c.aborted(ctx)
	}
	if err != nil {
		return c.fail(PhaseProcessIFC, CategoryProcessing, err)
	}

	c.setPhase(PhaseRenderModel)
	if err := c.engine.AddToScene(loadCtx, m); err != nil {
		c.discard(m)
		if loadCtx.Err() != nil {
			return c.aborted(ctx)
		}
		return c.fail(PhaseRenderModel, CategoryRendering, err)
	}
	index, err := c.engine.IndexIdentifiers(loadCtx, m)
	if err != nil && loadCtx.Err() == nil {
		c.logger.WarnContext(ctx, "identifier index unavailable, colors disabled", "model_id", m.ID(), "error", err)
		index = nil
	}
	if err := c.engine.FitCamera(loadCtx, m); err != nil && loadCtx.Err() == nil {
		c.discard(m)
		return c.fail(PhaseRenderModel, CategoryRendering, err)
	}

	if !c.adopt(loadCtx, seq, m, index) {
		c.discard(m)
		return c.aborted(ctx)
	}

	c.setPhase(PhaseApplyColors)
	if err := c.ApplyColors(loadCtx); err != nil && !IsDiscardable(err) {
		c.logger.WarnContext(ctx, "initial recolor failed", "model_id", m.ID(), "error", err)
	}
	if err := c.SyncVisibility(loadCtx); err != nil && !IsDiscardable(err) && loadCtx.Err() == nil {
		c.logger.WarnContext(ctx, "visibility sync failed", "model_id", m.ID(), "error", err)
	}
	if loadCtx.Err() != nil {
		return c.aborted(ctx)
	}

	c.mu.Lock()
	c.diag = Diagnostics{
		Phase:        PhaseReady,
		ModelID:      m.ID(),
		Elements:     len(index),
		LoadDuration: c.now().Sub(start),
		UpdatedAt:    c.now(),
	}
	c.mu.Unlock()
	c.logger.InfoContext(ctx, "model loaded", "model_id", m.ID(), "elements", len(index), "url", url)
	return nil
}

// adopt installs m as the current model if this load is still the newest.
func (c *Coordinator) adopt(ctx context.Context, seq uint64, m Model, index map[string]int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ctx.Err() != nil || seq != c.loadSeq || c.closed {
		return false
	}
	if index == nil {
		index = map[string]int{}
	}
	c.model = m
	c.index = index
	return true
}

// disposeCurrent releases the adopted model and clears the selection. It
// supersedes any recolor in flight and waits for its current step to finish.
func (c *Coordinator) disposeCurrent(ctx context.Context) {
	c.gen.Add(1)
	c.paint.Lock()
	c.mu.Lock()
	m := c.model
	c.model = nil
	c.index = nil
	c.mu.Unlock()
	if m != nil {
		if err := c.engine.Dispose(context.WithoutCancel(ctx), m); err != nil {
			c.logger.WarnContext(ctx, "dispose failed", "model_id", m.ID(), "error", err)
		}
	}
	c.paint.Unlock()
	if m != nil {
		c.store.ClearSelection()
	}
}

// paintStep runs fn under the paint lock unless the pass went stale or m is
// no longer the adopted model.
func (c *Coordinator) paintStep(m Model, stale func() bool, fn func() error) error {
	c.paint.Lock()
	defer c.paint.Unlock()
	if stale() {
		return ErrSuperseded
	}
	if cur, _ := c.current(); cur != m {
		return ErrSuperseded
	}
	return fn()
}

// discard releases a model that was parsed but never adopted.
func (c *Coordinator) discard(m Model) {
	if m == nil {
		return
	}
	if err := c.engine.Dispose(context.Background(), m); err != nil {
		c.logger.Debug("dispose of unadopted model failed", "model_id", m.ID(), "error", err)
	}
}

func (c *Coordinator) aborted(parent context.Context) error {
	if err := parent.Err(); err != nil {
		return err
	}
	return ErrSuperseded
}

func (c *Coordinator) fail(phase Phase, cat Category, err error) error {
	c.mu.Lock()
	c.diag.Phase = PhaseError
	c.diag.ErrorCategory = cat
	c.diag.ErrorMessage = cat.UserMessage()
	c.diag.UpdatedAt = c.now()
	c.mu.Unlock()
	c.logger.Error("model load failed", "phase", phase, "category", cat, "error", err)
	return &LoadError{Category: cat, Phase: phase, Err: err}
}

func (c *Coordinator) setPhase(p Phase) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.diag.Phase = p
	c.diag.ErrorCategory = ""
	c.diag.ErrorMessage = ""
	c.diag.UpdatedAt = c.now()
}

func (c *Coordinator) current() (Model, map[string]int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.model, c.index
}

// ApplyColors paints the store's colors onto the current model.
//
// With a highlight active every element is ghosted, highlighted elements get
// full opacity and only highlight colors are painted. Otherwise the base
// colors are painted at full opacity. The selection is painted last. A newer
// ApplyColors makes this one stop and return ErrSuperseded.
func (c *Coordinator) ApplyColors(ctx context.Context) error {
	gen := c.gen.Add(1)
	m, index := c.current()
	if m == nil {
		return nil
	}
	stale := func() bool { return c.gen.Load() != gen || ctx.Err() != nil }

	snap := c.store.Snapshot()
	highlightActive := len(snap.HighlightColorMap) > 0
	colors := snap.ColorMap
	if highlightActive {
		colors = snap.HighlightColorMap
	}

	err := c.paintStep(m, stale, func() error {
		if err := c.engine.ResetColors(ctx); err != nil {
			return fmt.Errorf("reset colors: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if highlightActive {
		err = c.paintStep(m, stale, func() error {
			if err := c.engine.SetOpacity(ctx, nil, GhostOpacity); err != nil {
				return fmt.Errorf("ghost elements: %w", err)
			}
			return nil
		})
		if err != nil {
			return err
		}
		if ids := known(index, slices.Collect(maps.Keys(snap.HighlightColorMap))); len(ids) > 0 {
			err = c.paintStep(m, stale, func() error {
				if err := c.engine.SetOpacity(ctx, ids, 1); err != nil {
					return fmt.Errorf("restore highlight opacity: %w", err)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
	} else {
		err = c.paintStep(m, stale, func() error {
			if err := c.engine.SetOpacity(ctx, nil, 1); err != nil {
				return fmt.Errorf("restore opacity: %w", err)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	groups := colors.Groups()
	for _, hex := range slices.Sorted(maps.Keys(groups)) {
		ids := known(index, groups[hex])
		if len(ids) == 0 {
			continue
		}
		err = c.paintStep(m, stale, func() error {
			if err := c.engine.Color(ctx, ids, hex); err != nil {
				return fmt.Errorf("color %s: %w", hex, err)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	ids := known(index, snap.Selected())
	return c.paintStep(m, stale, func() error {
		if len(ids) == 0 {
			return nil
		}
		if err := c.engine.Color(ctx, ids, model.SelectionHex); err != nil {
			return fmt.Errorf("color selection: %w", err)
		}
		return nil
	})
}

// known keeps the ids present in the model, sorted.
func known(index map[string]int, ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := index[id]; ok {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return out
}

// Select picks the element under the screen point. A miss or an engine error
// clears the selection.
func (c *Coordinator) Select(ctx context.Context, x, y float64) (string, error) {
	if m, _ := c.current(); m == nil {
		return "", nil
	}
	id, hit, err := c.engine.Raycast(ctx, x, y)
	if err != nil {
		c.store.ClearSelection()
		return "", fmt.Errorf("raycast: %w", err)
	}
	if !hit || id == "" {
		c.store.ClearSelection()
		return "", nil
	}
	c.store.SelectElements([]string{id})
	return id, nil
}

// SyncVisibility shows everything, then hides the store's hidden ids. It
// returns ErrSuperseded if the model is replaced midway.
func (c *Coordinator) SyncVisibility(ctx context.Context) error {
	m, index := c.current()
	if m == nil {
		return nil
	}
	stale := func() bool { return ctx.Err() != nil }
	err := c.paintStep(m, stale, func() error {
		if err := c.engine.SetVisibility(ctx, nil, true); err != nil {
			return fmt.Errorf("show all: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	ids := known(index, c.store.Snapshot().Hidden())
	if len(ids) == 0 {
		return nil
	}
	return c.paintStep(m, stale, func() error {
		if err := c.engine.SetVisibility(ctx, ids, false); err != nil {
			return fmt.Errorf("hide elements: %w", err)
		}
		return nil
	})
}

// Close cancels any load, waits for it, disposes the model and resets the
// store's viewer state. Later calls return ErrClosed.
func (c *Coordinator) Close(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.closed = true
	if c.cancelLoad != nil {
		c.cancelLoad()
	}
	c.mu.Unlock()

	select {
	case c.slot <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-c.slot }()

	c.disposeCurrent(ctx)
	c.store.ClearSelection()
	c.store.SetReady(false)
	c.setPhase(PhaseIdle)
	return nil
}
