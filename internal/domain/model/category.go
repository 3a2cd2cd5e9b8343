package model

import "sort"

// Category groups checks from several teams under one regulatory theme.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Color       string `json:"color"`
	Description string `json:"description"`
}

// DefaultCategories is the built-in catalogue.
func DefaultCategories() []Category {
	return []Category{
		{ID: "fire-safety", Name: "Fire Safety", Color: "#ef4444", Description: "Fire resistance, compartmentation and evacuation"},
		{ID: "habitability", Name: "Habitability", Color: "#3b82f6", Description: "Room sizes, ceiling heights, corridors and accessibility"},
		{ID: "energy", Name: "Energy", Color: "#10b981", Description: "Envelope insulation and thermal transmittance"},
		{ID: "structure", Name: "Structure", Color: "#f59e0b", Description: "Walls, beams, columns, slabs and foundations"},
		{ID: "lighting", Name: "Lighting", Color: "#8b5cf6", Description: "Daylight and window provisions"},
	}
}

// CategorySet is the injectable category configuration: the catalogue plus
// the team → category assignment.
type CategorySet struct {
	Categories []Category
	TeamMap    map[string]string
}

// NewCategorySet builds a set from the default catalogue and the given team map.
func NewCategorySet(teamMap map[string]string) CategorySet {
	tm := make(map[string]string, len(teamMap))
	for k, v := range teamMap {
		tm[k] = v
	}
	return CategorySet{Categories: DefaultCategories(), TeamMap: tm}
}

// Lookup finds a category by id.
func (s CategorySet) Lookup(id string) (Category, bool) {
	for _, c := range s.Categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

// CategoryOf returns the category id a team maps to, or "" when unmapped.
func (s CategorySet) CategoryOf(team string) string {
	return s.TeamMap[team]
}

// TeamsIn lists the teams assigned to a category, sorted.
func (s CategorySet) TeamsIn(categoryID string) []string {
	var teams []string
	for team, cat := range s.TeamMap {
		if cat == categoryID {
			teams = append(teams, team)
		}
	}
	sort.Strings(teams)
	return teams
}
