package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func elems(statuses ...ElementStatus) []ElementResult {
	out := make([]ElementResult, len(statuses))
	for i, s := range statuses {
		out[i] = ElementResult{CheckStatus: s}
	}
	return out
}

func TestAggregateStatus(t *testing.T) {
	tests := []struct {
		name string
		in   []ElementResult
		want CheckStatus
	}{
		{"no elements", nil, CheckStatusPass},
		{"all pass", elems(ElementStatusPass, ElementStatusPass), CheckStatusPass},
		{"pass and log", elems(ElementStatusPass, ElementStatusLog), CheckStatusPass},
		{"fail wins over warning", elems(ElementStatusWarning, ElementStatusFail), CheckStatusFail},
		{"warning over blocked", elems(ElementStatusBlocked, ElementStatusWarning), CheckStatusWarning},
		{"blocked is unknown", elems(ElementStatusPass, ElementStatusBlocked), CheckStatusUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AggregateStatus(tt.in))
		})
	}
}

func TestBuildSummary(t *testing.T) {
	assert.Equal(t, "0 elements", BuildSummary(nil))
	assert.Equal(t, "3 elements: 1 pass, 2 fail",
		BuildSummary(elems(ElementStatusFail, ElementStatusPass, ElementStatusFail)))
	assert.Equal(t, "2 elements", BuildSummary(elems(ElementStatusLog, ElementStatusLog)))
	assert.Equal(t, "4 elements: 1 pass, 1 fail, 1 warning, 1 blocked",
		BuildSummary(elems(ElementStatusBlocked, ElementStatusWarning, ElementStatusFail, ElementStatusPass)))
}

func TestComputeKPIs(t *testing.T) {
	checks := []CheckResult{
		{Status: CheckStatusPass}, {Status: CheckStatusPass}, {Status: CheckStatusFail}, {Status: CheckStatusError},
	}
	k := ComputeKPIs(checks)
	assert.Equal(t, KPIs{Total: 4, Passed: 2, Failed: 1, PassRate: 0.5}, k)
	assert.Equal(t, CheckStatusWarning, k.Band())

	assert.Equal(t, CheckStatusPass, KPIs{PassRate: 0.8}.Band())
	assert.Equal(t, CheckStatusFail, ComputeKPIs(nil).Band())
	assert.Zero(t, ComputeKPIs(nil).PassRate)
}

func TestReportStatus(t *testing.T) {
	assert.Equal(t, "blocked", ReportStatus(nil))
	assert.Equal(t, "pass", ReportStatus([]CheckResult{{Status: CheckStatusPass}}))
	assert.Equal(t, "unknown", ReportStatus([]CheckResult{{Status: CheckStatusPass}, {Status: CheckStatusUnknown}}))
	assert.Equal(t, "fail", ReportStatus([]CheckResult{{Status: CheckStatusUnknown}, {Status: CheckStatusFail}}))
	assert.Equal(t, "error", ReportStatus([]CheckResult{{Status: CheckStatusFail}, {Status: CheckStatusError}}))
}

func TestChatRequest_Bounded(t *testing.T) {
	req := ChatRequest{
		Message:        strings.Repeat("é", ChatMaxMessageRunes+10),
		ElementResults: append(elems(make([]ElementStatus, ChatMaxElements)...), elems(ElementStatusFail)...),
	}
	for i := range req.ElementResults[:ChatMaxElements] {
		req.ElementResults[i].CheckStatus = ElementStatusPass
	}

	out := req.Bounded()
	assert.Equal(t, ChatMaxMessageRunes, len([]rune(out.Message)))
	assert.Len(t, out.ElementResults, ChatMaxElements)
	assert.Equal(t, ElementStatusFail, out.ElementResults[0].CheckStatus)
	assert.Len(t, req.ElementResults, ChatMaxElements+1, "input untouched")
}
