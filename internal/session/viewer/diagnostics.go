package viewer

import "time"

// Phase is where the coordinator is in its lifecycle.
type Phase string

const (
	PhaseIdle        Phase = "idle"
	PhaseInitEngine  Phase = "init-engine"
	PhaseInitLoader  Phase = "init-loader"
	PhaseFetchIFC    Phase = "fetch-ifc"
	PhaseProcessIFC  Phase = "process-ifc"
	PhaseRenderModel Phase = "render-model"
	PhaseApplyColors Phase = "apply-colors"
	PhaseReady       Phase = "ready"
	PhaseError       Phase = "error"
)

// Diagnostics describes the latest load.
type Diagnostics struct {
	Phase         Phase
	ModelID       string
	Elements      int
	LoadDuration  time.Duration
	UpdatedAt     time.Time
	ErrorCategory Category
	ErrorMessage  string
}
