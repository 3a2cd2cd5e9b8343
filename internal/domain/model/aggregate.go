package model

import (
	"fmt"
	"strings"
)

// AggregateStatus folds element outcomes into a check status: any fail wins,
// then any warning, then pass when every element is pass or log.
func AggregateStatus(elements []ElementResult) CheckStatus {
	allPass := true
	hasWarning := false
	for _, e := range elements {
		switch e.CheckStatus {
		case ElementStatusFail:
			return CheckStatusFail
		case ElementStatusWarning:
			hasWarning = true
		case ElementStatusPass, ElementStatusLog:
		default:
			allPass = false
		}
	}
	if hasWarning {
		return CheckStatusWarning
	}
	if allPass {
		return CheckStatusPass
	}
	return CheckStatusUnknown
}

// BuildSummary renders "N elements: a pass, b fail, c warning, d blocked", omitting zero counts.
func BuildSummary(elements []ElementResult) string {
	counts := map[ElementStatus]int{}
	for _, e := range elements {
		counts[e.CheckStatus]++
	}
	var parts []string
	for _, s := range []ElementStatus{ElementStatusPass, ElementStatusFail, ElementStatusWarning, ElementStatusBlocked} {
		if n := counts[s]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, s))
		}
	}
	if len(parts) == 0 {
		return fmt.Sprintf("%d elements", len(elements))
	}
	return fmt.Sprintf("%d elements: %s", len(elements), strings.Join(parts, ", "))
}

// KPIs are the headline numbers of the technical dashboard.
type KPIs struct {
	Total    int     `json:"total"`
	Passed   int     `json:"passed"`
	Failed   int     `json:"failed"`
	PassRate float64 `json:"pass_rate"`
}

// ComputeKPIs counts pass and fail checks. PassRate is 0 when there are no checks.
func ComputeKPIs(checks []CheckResult) KPIs {
	k := KPIs{Total: len(checks)}
	for _, c := range checks {
		switch c.Status {
		case CheckStatusPass:
			k.Passed++
		case CheckStatusFail:
			k.Failed++
		}
	}
	if k.Total > 0 {
		k.PassRate = float64(k.Passed) / float64(k.Total)
	}
	return k
}

// Band maps the pass rate onto a traffic light status.
func (k KPIs) Band() CheckStatus {
	switch {
	case k.PassRate >= 0.8:
		return CheckStatusPass
	case k.PassRate >= 0.5:
		return CheckStatusWarning
	default:
		return CheckStatusFail
	}
}

// ReportStatus is the overall status of a report folder: blocked when empty,
// otherwise the worst of error, fail, unknown, pass.
func ReportStatus(checks []CheckResult) string {
	if len(checks) == 0 {
		return string(ElementStatusBlocked)
	}
	seen := map[CheckStatus]bool{}
	for _, c := range checks {
		seen[c.Status] = true
	}
	for _, s := range []CheckStatus{CheckStatusError, CheckStatusFail, CheckStatusUnknown} {
		if seen[s] {
			return string(s)
		}
	}
	return string(CheckStatusPass)
}

// StatusCounts tallies element outcomes.
func StatusCounts(elements []ElementResult) map[ElementStatus]int {
	out := make(map[ElementStatus]int, 5)
	for _, e := range elements {
		out[e.CheckStatus]++
	}
	return out
}
