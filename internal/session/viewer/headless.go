package viewer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"
)

// Downloader fetches model bytes.
type Downloader interface {
	Download(ctx context.Context, url string, maxBytes int64) ([]byte, error)
}

// entityRe matches STEP entity instances whose first attribute is a GlobalId,
// e.g. #42=IFCDOOR('2O2Fr$t4X7Zf8NOew3FLOH',#5,'Door',...).
var entityRe = regexp.MustCompile(`#(\d+)\s*=\s*(IFC[A-Z0-9_]+)\s*\(\s*'([0-9A-Za-z_$]{22})'`)

// stepHeader starts every IFC STEP file.
var stepHeader = []byte("ISO-10303-21")

// errNoModel is returned by operations that need a model in the scene.
var errNoModel = errors.New("no model in scene")

// HeadlessModel is a parsed IFC file without geometry.
type HeadlessModel struct {
	id       string
	elements map[string]HeadlessElement
}

// HeadlessElement is one rooted IFC entity.
type HeadlessElement struct {
	LocalID int
	Type    string
}

// ID implements Model.
func (m *HeadlessModel) ID() string { return m.id }

// Elements returns the parsed elements keyed by GlobalId.
func (m *HeadlessModel) Elements() map[string]HeadlessElement { return m.elements }

// HeadlessEngine is an Engine without a renderer. It parses IFC STEP text for
// GlobalIds and records the paint state, which makes it usable from the CLI
// and in tests. Raycast always misses.
type HeadlessEngine struct {
	downloader Downloader
	maxBytes   int64
	seq        atomic.Uint64

	mu      sync.Mutex
	scene   *HeadlessModel
	colors  map[string]string
	opacity map[string]float64
	hidden  map[string]struct{}
}

// NewHeadlessEngine returns an engine that downloads through d.
func NewHeadlessEngine(d Downloader, maxBytes int64) *HeadlessEngine {
	return &HeadlessEngine{
		downloader: d,
		maxBytes:   maxBytes,
		colors:     map[string]string{},
		opacity:    map[string]float64{},
		hidden:     map[string]struct{}{},
	}
}

// Fetch implements Engine.
func (e *HeadlessEngine) Fetch(ctx context.Context, url string) ([]byte, error) {
	if e.downloader == nil {
		return nil, errors.New("no downloader configured")
	}
	return e.downloader.Download(ctx, url, e.maxBytes)
}

// Parse implements Engine.
func (e *HeadlessEngine) Parse(ctx context.Context, data []byte) (Model, error) {
	if !bytes.Contains(data[:min(len(data), 512)], stepHeader) {
		return nil, errors.New("not an IFC STEP file")
	}
	elements := map[string]HeadlessElement{}
	for _, m := range entityRe.FindAllSubmatch(data, -1) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		local, err := strconv.Atoi(string(m[1]))
		if err != nil {
			continue
		}
		elements[string(m[3])] = HeadlessElement{LocalID: local, Type: string(m[2])}
	}
	return &HeadlessModel{
		id:       fmt.Sprintf("ifc-model-%d", e.seq.Add(1)),
		elements: elements,
	}, nil
}

// AddToScene implements Engine.
func (e *HeadlessEngine) AddToScene(_ context.Context, m Model) error {
	hm, ok := m.(*HeadlessModel)
	if !ok {
		return fmt.Errorf("unsupported model type %T", m)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scene = hm
	e.resetLocked()
	return nil
}

// IndexIdentifiers implements Engine.
func (e *HeadlessEngine) IndexIdentifiers(_ context.Context, m Model) (map[string]int, error) {
	hm, ok := m.(*HeadlessModel)
	if !ok {
		return nil, fmt.Errorf("unsupported model type %T", m)
	}
	out := make(map[string]int, len(hm.elements))
	for id, el := range hm.elements {
		out[id] = el.LocalID
	}
	return out, nil
}

// FitCamera implements Engine.
func (e *HeadlessEngine) FitCamera(context.Context, Model) error { return nil }

// ResetColors implements Engine.
func (e *HeadlessEngine) ResetColors(context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.colors = map[string]string{}
	return nil
}

// SetOpacity implements Engine.
func (e *HeadlessEngine) SetOpacity(_ context.Context, ids []string, opacity float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.scene == nil {
		return errNoModel
	}
	if ids == nil {
		ids = slices.Collect(maps.Keys(e.scene.elements))
	}
	for _, id := range ids {
		if opacity >= 1 {
			delete(e.opacity, id)
			continue
		}
		e.opacity[id] = opacity
	}
	return nil
}

// Color implements Engine.
func (e *HeadlessEngine) Color(_ context.Context, ids []string, hex string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.scene == nil {
		return errNoModel
	}
	for _, id := range ids {
		e.colors[id] = hex
	}
	return nil
}

// Dispose implements Engine.
func (e *HeadlessEngine) Dispose(_ context.Context, m Model) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.scene != nil && m != nil && e.scene.id == m.ID() {
		e.scene = nil
		e.resetLocked()
	}
	return nil
}

// SetVisibility implements Engine.
func (e *HeadlessEngine) SetVisibility(_ context.Context, ids []string, visible bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.scene == nil {
		return errNoModel
	}
	if ids == nil {
		if visible {
			e.hidden = map[string]struct{}{}
			return nil
		}
		ids = slices.Collect(maps.Keys(e.scene.elements))
	}
	for _, id := range ids {
		if visible {
			delete(e.hidden, id)
		} else {
			e.hidden[id] = struct{}{}
		}
	}
	return nil
}

// Raycast implements Engine. There is no geometry to hit.
func (e *HeadlessEngine) Raycast(context.Context, float64, float64) (string, bool, error) {
	return "", false, nil
}

// Paint returns the current color per element.
func (e *HeadlessEngine) Paint() map[string]string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return maps.Clone(e.colors)
}

// Opacity returns an element's opacity, 1 when untouched.
func (e *HeadlessEngine) Opacity(id string) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if o, ok := e.opacity[id]; ok {
		return o
	}
	return 1
}

// Hidden reports whether an element is hidden.
func (e *HeadlessEngine) Hidden(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.hidden[id]
	return ok
}

// Scene returns the model currently in the scene, or nil.
func (e *HeadlessEngine) Scene() *HeadlessModel {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scene
}

func (e *HeadlessEngine) resetLocked() {
	e.colors = map[string]string{}
	e.opacity = map[string]float64{}
	e.hidden = map[string]struct{}{}
}
