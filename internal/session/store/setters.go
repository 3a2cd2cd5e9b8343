package store

import (
	"maps"
	"slices"

	"github.com/SerjoschDuering/ifcore-platform/internal/domain/model"
)

// SetProjects replaces the project list.
func (s *Store) SetProjects(projects []model.Project) {
	projects = slices.Clone(projects)
	s.update(func(st *State) bool {
		st.Projects = projects
		return true
	})
}

// SetActiveProject selects a project without touching results.
func (s *Store) SetActiveProject(id string) {
	s.update(func(st *State) bool {
		if st.ActiveProjectID == id {
			return false
		}
		st.ActiveProjectID = id
		return true
	})
}

// SetActiveJob selects which tracked job drives highlighting.
func (s *Store) SetActiveJob(id string) {
	s.update(func(st *State) bool {
		if st.ActiveJobID == id {
			return false
		}
		st.ActiveJobID = id
		return true
	})
}

// SetCheckResults replaces the check results wholesale.
func (s *Store) SetCheckResults(checks []model.CheckResult) {
	checks = slices.Clone(checks)
	s.update(func(st *State) bool {
		st.CheckResults = checks
		return true
	})
}

// SetElementResults replaces the element results wholesale.
func (s *Store) SetElementResults(elements []model.ElementResult) {
	elements = slices.Clone(elements)
	s.update(func(st *State) bool {
		st.ElementResults = elements
		return true
	})
}

// SetSelectedCategory filters by category; "" clears the filter.
func (s *Store) SetSelectedCategory(id string) {
	s.update(func(st *State) bool {
		if st.SelectedCategory == id {
			return false
		}
		st.SelectedCategory = id
		return true
	})
}

// SetSelectedCheck drills down into one check; "" clears it.
func (s *Store) SetSelectedCheck(id string) {
	s.update(func(st *State) bool {
		if st.SelectedCheckID == id {
			return false
		}
		st.SelectedCheckID = id
		return true
	})
}

// SetColorMap replaces the base status colors. Equal maps are a no-op.
func (s *Store) SetColorMap(m model.ColorMap) bool {
	m = m.Clone()
	return s.update(func(st *State) bool {
		if st.ColorMap.Equal(m) {
			return false
		}
		st.ColorMap = m
		return true
	})
}

// SetHighlightColorMap replaces the highlight overlay. Equal maps are a no-op.
func (s *Store) SetHighlightColorMap(m model.ColorMap) bool {
	m = m.Clone()
	return s.update(func(st *State) bool {
		if st.HighlightColorMap.Equal(m) {
			return false
		}
		st.HighlightColorMap = m
		return true
	})
}

// ClearHighlights empties the highlight overlay.
func (s *Store) ClearHighlights() bool {
	return s.SetHighlightColorMap(nil)
}

// SelectElements replaces the selection. The same set is a no-op.
func (s *Store) SelectElements(ids []string) {
	next := toSet(ids)
	s.update(func(st *State) bool {
		if maps.Equal(st.SelectedIDs, next) {
			return false
		}
		st.SelectedIDs = next
		return true
	})
}

// ClearSelection empties the selection.
func (s *Store) ClearSelection() {
	s.SelectElements(nil)
}

// HideElements adds ids to the hidden set.
func (s *Store) HideElements(ids []string) {
	s.update(func(st *State) bool {
		next := maps.Clone(st.HiddenIDs)
		for _, id := range ids {
			next[id] = struct{}{}
		}
		if maps.Equal(next, st.HiddenIDs) {
			return false
		}
		st.HiddenIDs = next
		return true
	})
}

// ShowElements removes ids from the hidden set.
func (s *Store) ShowElements(ids []string) {
	s.update(func(st *State) bool {
		next := maps.Clone(st.HiddenIDs)
		for _, id := range ids {
			delete(next, id)
		}
		if maps.Equal(next, st.HiddenIDs) {
			return false
		}
		st.HiddenIDs = next
		return true
	})
}

// ShowAll clears the hidden set.
func (s *Store) ShowAll() {
	s.update(func(st *State) bool {
		if len(st.HiddenIDs) == 0 {
			return false
		}
		st.HiddenIDs = map[string]struct{}{}
		return true
	})
}

// SetIFCURL points the viewer at a model.
func (s *Store) SetIFCURL(url string) {
	s.update(func(st *State) bool {
		if st.IFCURL == url {
			return false
		}
		st.IFCURL = url
		return true
	})
}

// SetViewerVisible toggles the viewer panel.
func (s *Store) SetViewerVisible(v bool) {
	s.update(func(st *State) bool {
		if st.ViewerVisible == v {
			return false
		}
		st.ViewerVisible = v
		return true
	})
}

// SetReady records whether the 3D engine is initialized.
func (s *Store) SetReady(ready bool) {
	s.update(func(st *State) bool {
		if st.Ready == ready {
			return false
		}
		st.Ready = ready
		return true
	})
}

func toSet(ids []string) map[string]struct{} {
	out := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id != "" {
			out[id] = struct{}{}
		}
	}
	return out
}
