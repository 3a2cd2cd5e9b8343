package inference

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"

	"github.com/SerjoschDuering/ifcore-platform/internal/core"
	"github.com/SerjoschDuering/ifcore-platform/internal/domain/model"
)

// The inference service writes has_elements as 0/1, created_at as unix
// milliseconds and element values as whatever type the check produced.

type jobDTO struct {
	JobID          string       `json:"job_id"`
	Status         string       `json:"status"`
	CheckResults   []checkDTO   `json:"check_results"`
	ElementResults []elementDTO `json:"element_results"`
	Error          string       `json:"error"`
}

type checkDTO struct {
	ID          string       `json:"id"`
	JobID       string       `json:"job_id"`
	ProjectID   string       `json:"project_id"`
	CheckName   string       `json:"check_name"`
	Team        string       `json:"team"`
	Status      string       `json:"status"`
	Summary     string       `json:"summary"`
	HasElements flexBool     `json:"has_elements"`
	CreatedAt   flexUnixTime `json:"created_at"`
}

type elementDTO struct {
	ID              string     `json:"id"`
	CheckResultID   string     `json:"check_result_id"`
	ElementID       flexString `json:"element_id"`
	ElementType     flexString `json:"element_type"`
	ElementName     flexString `json:"element_name"`
	ElementNameLong flexString `json:"element_name_long"`
	CheckStatus     string     `json:"check_status"`
	ActualValue     flexString `json:"actual_value"`
	RequiredValue   flexString `json:"required_value"`
	Comment         flexString `json:"comment"`
	Log             flexString `json:"log"`
}

func (d jobDTO) toJob() *core.InferenceJob {
	job := &core.InferenceJob{
		ID:             d.JobID,
		Status:         d.Status,
		Error:          d.Error,
		CheckResults:   make([]model.CheckResult, 0, len(d.CheckResults)),
		ElementResults: make([]model.ElementResult, 0, len(d.ElementResults)),
	}
	for _, c := range d.CheckResults {
		status := model.CheckStatus(c.Status)
		if !status.Valid() {
			status = model.CheckStatusUnknown
		}
		job.CheckResults = append(job.CheckResults, model.CheckResult{
			ID:          c.ID,
			JobID:       c.JobID,
			ProjectID:   c.ProjectID,
			CheckName:   c.CheckName,
			Team:        c.Team,
			Status:      status,
			Summary:     c.Summary,
			HasElements: bool(c.HasElements),
			CreatedAt:   time.Time(c.CreatedAt),
		})
	}
	for _, e := range d.ElementResults {
		status := model.ElementStatus(e.CheckStatus)
		if !status.Valid() {
			status = model.ElementStatusLog
		}
		job.ElementResults = append(job.ElementResults, model.ElementResult{
			ID:              e.ID,
			CheckResultID:   e.CheckResultID,
			ElementID:       e.ElementID.ptr(),
			ElementType:     e.ElementType.ptr(),
			ElementName:     e.ElementName.ptr(),
			ElementNameLong: e.ElementNameLong.ptr(),
			CheckStatus:     status,
			ActualValue:     e.ActualValue.ptr(),
			RequiredValue:   e.RequiredValue.ptr(),
			Comment:         e.Comment.ptr(),
			Log:             e.Log.ptr(),
		})
	}
	return job
}

// flexBool accepts true/false, 0/1 and null.
type flexBool bool

func (b *flexBool) UnmarshalJSON(raw []byte) error {
	switch string(bytes.TrimSpace(raw)) {
	case "true", "1":
		*b = true
	case "false", "0", "null", "":
		*b = false
	default:
		var f float64
		if err := json.Unmarshal(raw, &f); err != nil {
			return err
		}
		*b = f != 0
	}
	return nil
}

// flexUnixTime accepts unix milliseconds or an RFC 3339 string.
type flexUnixTime time.Time

func (t *flexUnixTime) UnmarshalJSON(raw []byte) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		parsed, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return err
		}
		*t = flexUnixTime(parsed.UTC())
		return nil
	}
	var ms float64
	if err := json.Unmarshal(raw, &ms); err != nil {
		return err
	}
	*t = flexUnixTime(time.UnixMilli(int64(ms)).UTC())
	return nil
}

// flexString keeps scalars as text and other JSON values verbatim.
type flexString struct {
	v   string
	set bool
}

func (s *flexString) UnmarshalJSON(raw []byte) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		*s = flexString{}
		return nil
	}
	if raw[0] == '"' {
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return err
		}
		*s = flexString{v: str, set: true}
		return nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		*s = flexString{v: strconv.FormatFloat(f, 'f', -1, 64), set: true}
		return nil
	}
	*s = flexString{v: string(raw), set: true}
	return nil
}

func (s flexString) ptr() *string {
	if !s.set {
		return nil
	}
	v := s.v
	return &v
}
