package store

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/SerjoschDuering/ifcore-platform/internal/domain/model"
)

func strp(s string) *string { return &s }

func doneUpdate(jobID string) model.JobWithResults {
	completed := time.Date(2024, 1, 1, 12, 5, 0, 0, time.UTC)
	checks := []model.CheckResult{
		{ID: "c1", JobID: jobID, CheckName: "check_door_width", Team: "team-a", Status: model.CheckStatusFail},
		{ID: "c2", JobID: jobID, CheckName: "check_ceiling_height", Team: "team-b", Status: model.CheckStatusPass},
		{ID: "c3", JobID: jobID, CheckName: "check_u_value", Team: "lux-ai", Status: model.CheckStatusPass},
	}
	elements := []model.ElementResult{
		{ID: "e1", CheckResultID: "c1", ElementID: strp("g1"), CheckStatus: model.ElementStatusFail},
		{ID: "e2", CheckResultID: "c1", ElementID: strp("g2"), CheckStatus: model.ElementStatusPass},
		{ID: "e3", CheckResultID: "c2", ElementID: strp("g3"), CheckStatus: model.ElementStatusPass},
		{ID: "e4", CheckResultID: "c3", ElementID: strp("g4"), CheckStatus: model.ElementStatusPass},
		{ID: "e5", CheckResultID: "c3", ElementID: strp("g5"), CheckStatus: model.ElementStatusPass},
	}
	return model.JobWithResults{
		Job:            model.Job{ID: jobID, Status: model.JobStatusDone, CompletedAt: &completed},
		CheckResults:   checks,
		ElementResults: elements,
	}
}

func TestStore_NewIsEmpty(t *testing.T) {
	s := New()
	snap := s.Snapshot()
	assert.Zero(t, snap.Version)
	assert.Empty(t, snap.Jobs)
	assert.Empty(t, snap.EffectiveColors())
	assert.Empty(t, snap.PendingJobs())
}

func TestStore_ApplyJobUpdate_IngestsOnce(t *testing.T) {
	s := New()
	s.TrackJob(model.Job{ID: "j1", Status: model.JobStatusRunning})

	var notified []uint64
	unsub := s.Subscribe(func(snap Snapshot) { notified = append(notified, snap.Version) })
	defer unsub()

	update := doneUpdate("j1")
	require.Equal(t, ApplyCompleted, s.ApplyJobUpdate(update))
	first := s.Snapshot()
	assert.Equal(t, model.JobStatusDone, first.Jobs["j1"].Status)
	assert.Len(t, first.CheckResults, 3)
	assert.Len(t, first.ElementResults, 5)

	// A second done for the same job must not re-ingest or notify.
	update.CheckResults = update.CheckResults[:1]
	assert.Equal(t, ApplyIgnored, s.ApplyJobUpdate(update))
	second := s.Snapshot()
	assert.Equal(t, first.Version, second.Version)
	assert.Len(t, second.CheckResults, 3)
	assert.Equal(t, []uint64{first.Version}, notified)
}

func TestStore_ApplyJobUpdate_Transitions(t *testing.T) {
	t.Run("untracked job is ignored", func(t *testing.T) {
		s := New()
		assert.Equal(t, ApplyIgnored, s.ApplyJobUpdate(doneUpdate("nope")))
		assert.Zero(t, s.Version())
	})

	t.Run("unchanged status writes nothing", func(t *testing.T) {
		s := New()
		s.TrackJob(model.Job{ID: "j1", Status: model.JobStatusRunning, ExternalJobID: strp("ext")})
		v := s.Version()
		got := s.ApplyJobUpdate(model.JobWithResults{Job: model.Job{ID: "j1", Status: model.JobStatusRunning}})
		assert.Equal(t, ApplyUnchanged, got)
		assert.Equal(t, v, s.Version())
	})

	t.Run("pending to running updates", func(t *testing.T) {
		s := New()
		s.TrackJob(model.Job{ID: "j1", Status: model.JobStatusPending})
		got := s.ApplyJobUpdate(model.JobWithResults{Job: model.Job{ID: "j1", Status: model.JobStatusRunning, ExternalJobID: strp("ext")}})
		assert.Equal(t, ApplyUpdated, got)
		job := s.Snapshot().Jobs["j1"]
		assert.Equal(t, model.JobStatusRunning, job.Status)
		assert.Equal(t, "ext", *job.ExternalJobID)
	})

	t.Run("error carries no payload", func(t *testing.T) {
		s := New()
		s.ReplaceResults([]model.CheckResult{{ID: "old"}}, nil)
		s.TrackJob(model.Job{ID: "j1", Status: model.JobStatusRunning})
		update := doneUpdate("j1")
		update.Status = model.JobStatusError
		assert.Equal(t, ApplyFailed, s.ApplyJobUpdate(update))
		snap := s.Snapshot()
		assert.Equal(t, model.JobStatusError, snap.Jobs["j1"].Status)
		require.Len(t, snap.CheckResults, 1)
		assert.Equal(t, "old", snap.CheckResults[0].ID)

		assert.Equal(t, ApplyIgnored, s.ApplyJobUpdate(doneUpdate("j1")))
	})

	t.Run("done without results clears results", func(t *testing.T) {
		s := New()
		s.ReplaceResults([]model.CheckResult{{ID: "old"}}, []model.ElementResult{{ID: "old"}})
		s.TrackJob(model.Job{ID: "j1", Status: model.JobStatusRunning})
		got := s.ApplyJobUpdate(model.JobWithResults{Job: model.Job{ID: "j1", Status: model.JobStatusDone}})
		assert.Equal(t, ApplyCompleted, got)
		snap := s.Snapshot()
		assert.NotNil(t, snap.CheckResults)
		assert.Empty(t, snap.CheckResults)
		assert.Empty(t, snap.ElementResults)
	})
}

func TestStore_CompletedTransitionIsSingleNotification(t *testing.T) {
	s := New()
	s.TrackJob(model.Job{ID: "j1", Status: model.JobStatusRunning})

	var seen []Snapshot
	defer s.Subscribe(func(snap Snapshot) { seen = append(seen, snap) })()

	s.ApplyJobUpdate(doneUpdate("j1"))
	require.Len(t, seen, 1)
	// No observer can see done without results or results without done.
	assert.Equal(t, model.JobStatusDone, seen[0].Jobs["j1"].Status)
	assert.Len(t, seen[0].CheckResults, 3)
	assert.Len(t, seen[0].ElementResults, 5)
}

func TestStore_SnapshotsAreImmutable(t *testing.T) {
	s := New()
	s.TrackJob(model.Job{ID: "j1", Status: model.JobStatusRunning})
	s.SetColorMap(model.ColorMap{"g1": "#e62020"})
	s.SelectElements([]string{"g1"})
	before := s.Snapshot()

	s.TrackJob(model.Job{ID: "j2", Status: model.JobStatusPending})
	s.SetColorMap(model.ColorMap{"g1": "#22c55e"})
	s.SelectElements([]string{"g2"})

	assert.Len(t, before.Jobs, 1)
	assert.Equal(t, "#e62020", before.ColorMap["g1"])
	assert.Equal(t, []string{"g1"}, before.Selected())

	// Callers mutating their input after the call do not reach the store.
	in := model.ColorMap{"g9": "#000000"}
	s.SetHighlightColorMap(in)
	in["g9"] = "#ffffff"
	assert.Equal(t, "#000000", s.Snapshot().HighlightColorMap["g9"])
}

func TestStore_NoOpWritesKeepVersion(t *testing.T) {
	s := New()
	s.SetColorMap(model.ColorMap{"a": "#1", "b": "#2"})
	s.SelectElements([]string{"x", "y"})
	s.HideElements([]string{"h"})
	s.SetSelectedCategory("energy")
	s.SetViewerVisible(true)
	v := s.Version()

	assert.False(t, s.SetColorMap(model.ColorMap{"b": "#2", "a": "#1"}))
	assert.False(t, s.ClearHighlights())
	s.SelectElements([]string{"y", "x"})
	s.HideElements([]string{"h"})
	s.ShowElements([]string{"not-hidden"})
	s.SetSelectedCategory("energy")
	s.SetViewerVisible(true)
	s.SetReady(false)
	s.SetIFCURL("")
	assert.Equal(t, v, s.Version())

	s.ShowAll()
	assert.Equal(t, v+1, s.Version())
	s.ShowAll()
	s.ClearSelection()
	s.ClearSelection()
	assert.Equal(t, v+2, s.Version())
}

func TestStore_EffectiveColorsHighlightWins(t *testing.T) {
	s := New()
	s.SetColorMap(model.ColorMap{"a": "#e62020", "b": "#22c55e"})
	s.SetHighlightColorMap(model.ColorMap{"b": "#10b981", "c": model.MutedHex})
	got := s.Snapshot().EffectiveColors()
	assert.Equal(t, model.ColorMap{"a": "#e62020", "b": "#10b981", "c": model.MutedHex}, got)
}

func TestStore_ActivateProjectResetsSelection(t *testing.T) {
	s := New()
	s.ReplaceResults([]model.CheckResult{{ID: "old"}}, []model.ElementResult{{ID: "old"}})
	s.SetSelectedCategory("energy")
	s.SetSelectedCheck("old")
	s.SetHighlightColorMap(model.ColorMap{"g": "#fff"})
	s.SelectElements([]string{"g"})
	s.HideElements([]string{"h"})

	var seen []Snapshot
	defer s.Subscribe(func(snap Snapshot) { seen = append(seen, snap) })()

	s.ActivateProject("p2", "https://example.test/api/files/ifc/p2/b.ifc", []model.CheckResult{{ID: "new"}}, nil)
	require.Len(t, seen, 1)
	snap := seen[0]
	assert.Equal(t, "p2", snap.ActiveProjectID)
	assert.Equal(t, "https://example.test/api/files/ifc/p2/b.ifc", snap.IFCURL)
	require.Len(t, snap.CheckResults, 1)
	assert.Equal(t, "new", snap.CheckResults[0].ID)
	assert.Empty(t, snap.ElementResults)
	assert.Empty(t, snap.SelectedCategory)
	assert.Empty(t, snap.SelectedCheckID)
	assert.Empty(t, snap.HighlightColorMap)
	assert.Empty(t, snap.SelectedIDs)
	assert.Empty(t, snap.HiddenIDs)
}

func TestStore_Unsubscribe(t *testing.T) {
	s := New()
	calls := 0
	unsub := s.Subscribe(func(Snapshot) { calls++ })
	s.SetReady(true)
	unsub()
	unsub()
	s.SetReady(false)
	assert.Equal(t, 1, calls)
}

func TestStore_ListenerMayWrite(t *testing.T) {
	s := New()
	defer s.Subscribe(func(snap Snapshot) {
		if snap.SelectedCategory != "" {
			s.SetHighlightColorMap(model.ColorMap{"g": "#fff"})
		}
	})()
	s.SetSelectedCategory("energy")
	assert.Equal(t, "#fff", s.Snapshot().HighlightColorMap["g"])
}

func TestStore_ConcurrentApplyIngestsOnce(t *testing.T) {
	s := New()
	s.TrackJob(model.Job{ID: "j1", Status: model.JobStatusRunning})

	var (
		mu      sync.Mutex
		results = map[ApplyResult]int{}
		wg      sync.WaitGroup
	)
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r := s.ApplyJobUpdate(doneUpdate("j1"))
			mu.Lock()
			results[r]++
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, results[ApplyCompleted])
	assert.Equal(t, 15, results[ApplyIgnored])
}

func TestStore_PendingJobs(t *testing.T) {
	s := New()
	s.TrackJob(model.Job{ID: "b", Status: model.JobStatusRunning})
	s.TrackJob(model.Job{ID: "a", Status: model.JobStatusPending})
	s.TrackJob(model.Job{ID: "c", Status: model.JobStatusRunning})
	s.ApplyJobUpdate(model.JobWithResults{Job: model.Job{ID: "c", Status: model.JobStatusError}})
	snap := s.Snapshot()
	assert.Equal(t, []string{"a", "b"}, snap.PendingJobs())
	assert.Equal(t, "c", snap.ActiveJobID)
}

func TestStore_VersionsAreMonotonicProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := New()
		ids := rapid.SliceOfN(rapid.StringMatching(`g[0-9]`), 0, 5)
		hex := rapid.SampledFrom([]string{"#e62020", "#22c55e", model.MutedHex})

		var last uint64
		defer s.Subscribe(func(snap Snapshot) {
			if snap.Version != last+1 {
				t.Fatalf("version jumped from %d to %d", last, snap.Version)
			}
			last = snap.Version
		})()

		steps := rapid.IntRange(1, 30).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			switch rapid.IntRange(0, 4).Draw(t, "op") {
			case 0:
				m := model.ColorMap{}
				for _, id := range ids.Draw(t, "color_ids") {
					m[id] = hex.Draw(t, "hex")
				}
				s.SetColorMap(m)
			case 1:
				s.SelectElements(ids.Draw(t, "select"))
			case 2:
				s.HideElements(ids.Draw(t, "hide"))
			case 3:
				s.ShowAll()
			case 4:
				before := s.Snapshot()
				s.SetColorMap(before.ColorMap)
				if s.Version() != before.Version {
					t.Fatalf("equal color map bumped version")
				}
			}
		}
		if s.Version() != last {
			t.Fatalf("store at %d but last notification %d", s.Version(), last)
		}
	})
}
