package store

import (
	"slices"

	"github.com/SerjoschDuering/ifcore-platform/internal/domain/model"
)

// ApplyResult says what ApplyJobUpdate did.
type ApplyResult int

const (
	// ApplyIgnored: the job is not tracked or already terminal.
	ApplyIgnored ApplyResult = iota
	// ApplyUnchanged: nothing observable changed, so nothing was written.
	ApplyUnchanged
	// ApplyUpdated: non-terminal fields changed.
	ApplyUpdated
	// ApplyCompleted: the job reached done and its results replaced the current ones.
	ApplyCompleted
	// ApplyFailed: the job reached error.
	ApplyFailed
)

func (r ApplyResult) String() string {
	switch r {
	case ApplyIgnored:
		return "ignored"
	case ApplyUnchanged:
		return "unchanged"
	case ApplyUpdated:
		return "updated"
	case ApplyCompleted:
		return "completed"
	case ApplyFailed:
		return "failed"
	}
	return "unknown"
}

// TrackJob starts tracking a job and makes it the active one.
func (s *Store) TrackJob(job model.Job) {
	s.update(func(st *State) bool {
		jobs := cloneJobs(st.Jobs)
		jobs[job.ID] = job
		st.Jobs = jobs
		st.ActiveJobID = job.ID
		return true
	})
}

// ApplyJobUpdate folds one status read into the store as a single transition.
//
// Terminal jobs are final, so re-observing done never re-ingests results. The
// first done marks the job and replaces check and element results together;
// error marks the job and carries no payload.
func (s *Store) ApplyJobUpdate(update model.JobWithResults) ApplyResult {
	result := ApplyIgnored
	s.update(func(st *State) bool {
		prev, ok := st.Jobs[update.ID]
		if !ok || prev.Status.IsTerminal() {
			result = ApplyIgnored
			return false
		}

		next := mergeJob(prev, update.Job)
		switch next.Status {
		case model.JobStatusDone:
			checks := slices.Clone(update.CheckResults)
			elements := slices.Clone(update.ElementResults)
			jobs := cloneJobs(st.Jobs)
			jobs[next.ID] = next
			st.Jobs = jobs
			if checks == nil {
				checks = []model.CheckResult{}
			}
			if elements == nil {
				elements = []model.ElementResult{}
			}
			st.CheckResults = checks
			st.ElementResults = elements
			result = ApplyCompleted
			return true
		case model.JobStatusError:
			jobs := cloneJobs(st.Jobs)
			jobs[next.ID] = next
			st.Jobs = jobs
			result = ApplyFailed
			return true
		}

		if sameJob(prev, next) {
			result = ApplyUnchanged
			return false
		}
		jobs := cloneJobs(st.Jobs)
		jobs[next.ID] = next
		st.Jobs = jobs
		result = ApplyUpdated
		return true
	})
	return result
}

// ReplaceResults swaps check and element results in one transition.
func (s *Store) ReplaceResults(checks []model.CheckResult, elements []model.ElementResult) {
	checks = slices.Clone(checks)
	elements = slices.Clone(elements)
	s.update(func(st *State) bool {
		st.CheckResults = checks
		st.ElementResults = elements
		return true
	})
}

// ActivateProject switches projects: the active project, its results and a
// reset of every selection and highlight, all in one transition. Results from
// the previous project never leak into the new one.
func (s *Store) ActivateProject(projectID, ifcURL string, checks []model.CheckResult, elements []model.ElementResult) {
	checks = slices.Clone(checks)
	elements = slices.Clone(elements)
	s.update(func(st *State) bool {
		st.ActiveProjectID = projectID
		st.IFCURL = ifcURL
		st.CheckResults = checks
		st.ElementResults = elements
		st.SelectedCategory = ""
		st.SelectedCheckID = ""
		st.HighlightColorMap = nil
		st.SelectedIDs = map[string]struct{}{}
		st.HiddenIDs = map[string]struct{}{}
		return true
	})
}

func mergeJob(prev, update model.Job) model.Job {
	next := prev
	if update.Status.Valid() {
		next.Status = update.Status
	}
	if update.ExternalJobID != nil {
		next.ExternalJobID = update.ExternalJobID
	}
	if update.StartedAt != nil {
		next.StartedAt = update.StartedAt
	}
	if update.CompletedAt != nil {
		next.CompletedAt = update.CompletedAt
	}
	if update.ProjectName != nil {
		next.ProjectName = update.ProjectName
	}
	if update.FileURL != nil {
		next.FileURL = update.FileURL
	}
	return next
}

func sameJob(a, b model.Job) bool {
	return a.Status == b.Status &&
		eqStr(a.ExternalJobID, b.ExternalJobID) &&
		eqStr(a.ProjectName, b.ProjectName) &&
		eqStr(a.FileURL, b.FileURL) &&
		eqTime(a.StartedAt, b.StartedAt) &&
		eqTime(a.CompletedAt, b.CompletedAt)
}

func cloneJobs(in map[string]model.Job) map[string]model.Job {
	out := make(map[string]model.Job, len(in)+1)
	for k, v := range in {
		out[k] = v
	}
	return out
}
