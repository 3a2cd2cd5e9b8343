package projector

import "github.com/SerjoschDuering/ifcore-platform/internal/domain/model"

// FilterChecks returns the checks whose team belongs to categoryID, in input
// order. An empty categoryID returns every check.
func (p *Projector) FilterChecks(checks []model.CheckResult, categoryID string) []model.CheckResult {
	if categoryID == "" {
		return checks
	}
	var out []model.CheckResult
	for _, c := range checks {
		if p.Categories.CategoryOf(c.Team) == categoryID {
			out = append(out, c)
		}
	}
	return out
}

// ElementsForCheck returns the element rows of one check, in input order.
func ElementsForCheck(elements []model.ElementResult, checkID string) []model.ElementResult {
	var out []model.ElementResult
	for _, el := range elements {
		if el.CheckResultID == checkID {
			out = append(out, el)
		}
	}
	return out
}

// CategoryStats summarizes one category for the dashboard.
type CategoryStats struct {
	Category model.Category
	Checks   int
	Passed   int
	Failed   int
}

// Stats counts checks per category over the whole catalogue. Checks from
// unmapped teams are not counted.
func (p *Projector) Stats(checks []model.CheckResult) []CategoryStats {
	index := make(map[string]int, len(p.Categories.Categories))
	out := make([]CategoryStats, len(p.Categories.Categories))
	for i, c := range p.Categories.Categories {
		out[i].Category = c
		index[c.ID] = i
	}
	for _, c := range checks {
		i, ok := index[p.Categories.CategoryOf(c.Team)]
		if !ok {
			continue
		}
		out[i].Checks++
		switch c.Status {
		case model.CheckStatusPass:
			out[i].Passed++
		case model.CheckStatusFail:
			out[i].Failed++
		}
	}
	return out
}
