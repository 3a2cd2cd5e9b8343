package model

import "time"

// CheckStatus is the aggregate outcome of one check function over the model.
type CheckStatus string

const (
	CheckStatusRunning CheckStatus = "running"
	CheckStatusPass    CheckStatus = "pass"
	CheckStatusFail    CheckStatus = "fail"
	CheckStatusWarning CheckStatus = "warning"
	CheckStatusUnknown CheckStatus = "unknown"
	CheckStatusError   CheckStatus = "error"
)

// Valid returns true if the CheckStatus is valid.
func (s CheckStatus) Valid() bool {
	switch s {
	case CheckStatusRunning, CheckStatusPass, CheckStatusFail, CheckStatusWarning,
		CheckStatusUnknown, CheckStatusError:
		return true
	}
	return false
}

// ElementStatus is the outcome of a check for one building element.
type ElementStatus string

const (
	ElementStatusPass    ElementStatus = "pass"
	ElementStatusFail    ElementStatus = "fail"
	ElementStatusWarning ElementStatus = "warning"
	ElementStatusBlocked ElementStatus = "blocked"
	ElementStatusLog     ElementStatus = "log"
)

// Valid returns true if the ElementStatus is valid.
func (s ElementStatus) Valid() bool {
	switch s {
	case ElementStatusPass, ElementStatusFail, ElementStatusWarning, ElementStatusBlocked, ElementStatusLog:
		return true
	}
	return false
}

// CheckResult is one check's outcome within a job.
type CheckResult struct {
	ID          string      `json:"id"           db:"id"`
	JobID       string      `json:"job_id"       db:"job_id"`
	ProjectID   string      `json:"project_id"   db:"project_id"`
	CheckName   string      `json:"check_name"   db:"check_name"`
	Team        string      `json:"team"         db:"team"`
	Status      CheckStatus `json:"status"       db:"status"`
	Summary     string      `json:"summary"      db:"summary"`
	HasElements bool        `json:"has_elements" db:"has_elements"`
	CreatedAt   time.Time   `json:"created_at"   db:"created_at"`
}

// ElementResult is one element's outcome under a check. ElementID is the model's
// GlobalId and is nil for rows that describe the check rather than an element.
type ElementResult struct {
	ID              string        `json:"id"                db:"id"`
	CheckResultID   string        `json:"check_result_id"   db:"check_result_id"`
	ElementID       *string       `json:"element_id"        db:"element_id"`
	ElementType     *string       `json:"element_type"      db:"element_type"`
	ElementName     *string       `json:"element_name"      db:"element_name"`
	ElementNameLong *string       `json:"element_name_long" db:"element_name_long"`
	CheckStatus     ElementStatus `json:"check_status"      db:"check_status"`
	ActualValue     *string       `json:"actual_value"      db:"actual_value"`
	RequiredValue   *string       `json:"required_value"    db:"required_value"`
	Comment         *string       `json:"comment"           db:"comment"`
	Log             *string       `json:"log"               db:"log"`
}

// IndexChecks returns check results keyed by id.
func IndexChecks(checks []CheckResult) map[string]CheckResult {
	out := make(map[string]CheckResult, len(checks))
	for _, c := range checks {
		out[c.ID] = c
	}
	return out
}
