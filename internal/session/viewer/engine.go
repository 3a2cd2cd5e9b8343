// Package viewer coordinates a 3D engine with the session store: it loads
// models without overlap and paints the store's colors, selection and
// visibility onto them.
package viewer

import "context"

// Model is an engine-owned loaded model. Implementations must be comparable,
// typically a pointer.
type Model interface {
	ID() string
}

// Engine is the 3D collaborator. A nil ids slice in SetOpacity means every
// element of the current model.
type Engine interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
	Parse(ctx context.Context, data []byte) (Model, error)
	AddToScene(ctx context.Context, m Model) error
	// IndexIdentifiers maps element GlobalIds to engine-local ids.
	IndexIdentifiers(ctx context.Context, m Model) (map[string]int, error)
	FitCamera(ctx context.Context, m Model) error
	ResetColors(ctx context.Context) error
	SetOpacity(ctx context.Context, ids []string, opacity float64) error
	Color(ctx context.Context, ids []string, hex string) error
	Dispose(ctx context.Context, m Model) error
	SetVisibility(ctx context.Context, ids []string, visible bool) error
	// Raycast returns the GlobalId under the given screen point.
	Raycast(ctx context.Context, x, y float64) (id string, hit bool, err error)
}

// Initializer is implemented by engines that need a setup step before the
// first load.
type Initializer interface {
	Init(ctx context.Context) error
}
