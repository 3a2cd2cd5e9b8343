package model

import (
	"sort"
	"unicode/utf8"
)

// Chat limits applied before forwarding a question to the inference service.
const (
	ChatMaxMessageRunes = 2000
	ChatMaxChecks       = 50
	ChatMaxElements     = 200
)

// ChatRequest is a question about the current results snapshot.
type ChatRequest struct {
	Message        string          `json:"message"         validate:"required"`
	CheckResults   []CheckResult   `json:"check_results"`
	ElementResults []ElementResult `json:"element_results"`
}

// ChatResponse carries the assistant's reply.
type ChatResponse struct {
	Response string `json:"response"`
}

// Validate checks required fields.
func (r *ChatRequest) Validate() error {
	return ValidateStruct(r)
}

// Bounded returns a copy whose message and snapshot fit the chat limits.
// Failing elements are kept ahead of passing ones when trimming.
func (r ChatRequest) Bounded() ChatRequest {
	out := ChatRequest{Message: r.Message}
	if utf8.RuneCountInString(out.Message) > ChatMaxMessageRunes {
		out.Message = string([]rune(out.Message)[:ChatMaxMessageRunes])
	}

	out.CheckResults = r.CheckResults
	if len(out.CheckResults) > ChatMaxChecks {
		out.CheckResults = out.CheckResults[:ChatMaxChecks]
	}

	elements := append([]ElementResult(nil), r.ElementResults...)
	sort.SliceStable(elements, func(i, j int) bool {
		return elementRank(elements[i].CheckStatus) < elementRank(elements[j].CheckStatus)
	})
	if len(elements) > ChatMaxElements {
		elements = elements[:ChatMaxElements]
	}
	out.ElementResults = elements
	return out
}

func elementRank(s ElementStatus) int {
	switch s {
	case ElementStatusFail:
		return 0
	case ElementStatusWarning, ElementStatusBlocked:
		return 1
	default:
		return 2
	}
}
