package viewer

import (
	"errors"
	"fmt"
)

// ErrSuperseded is returned by a load or recolor that a newer one replaced.
// Callers discard it.
var ErrSuperseded = errors.New("viewer: superseded")

// ErrClosed is returned after Close.
var ErrClosed = errors.New("viewer: closed")

// ErrHTMLPayload means the model URL answered with an HTML page.
var ErrHTMLPayload = errors.New("model URL returned HTML instead of IFC data")

// Category classifies load failures.
type Category string

const (
	CategoryTransport     Category = "transport"
	CategoryPayloadFormat Category = "payload-format"
	CategoryProcessing    Category = "processing"
	CategoryRendering     Category = "rendering"
	CategoryUnknown       Category = "unknown"
)

var userMessages = map[Category]string{
	CategoryTransport:     "Failed to download IFC file from project storage.",
	CategoryPayloadFormat: "IFC file response is invalid (received non-binary payload).",
	CategoryProcessing:    "Failed to process the IFC model.",
	CategoryRendering:     "Model loaded but rendering/camera setup failed.",
	CategoryUnknown:       "Failed to load IFC model.",
}

// UserMessage is the one message shown for a category.
func (c Category) UserMessage() string {
	if msg, ok := userMessages[c]; ok {
		return msg
	}
	return userMessages[CategoryUnknown]
}

// LoadError is a classified, non-fatal load failure.
type LoadError struct {
	Category Category
	Phase    Phase
	Err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("viewer %s (%s): %v", e.Phase, e.Category, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// UserMessage returns the category's user-facing message.
func (e *LoadError) UserMessage() string { return e.Category.UserMessage() }

// IsDiscardable reports whether err is a concurrency hazard the caller should
// drop without surfacing.
func IsDiscardable(err error) bool {
	return errors.Is(err, ErrSuperseded) || errors.Is(err, ErrClosed)
}
