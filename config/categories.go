package config

import "strings"

// DefaultTeamMap is the team to category assignment used when CATEGORY_TEAM_MAP is unset.
const DefaultTeamMap = "demo:habitability,lux-ai:energy,team-d:habitability,team-e:habitability,Mastodonte:structure"

// CategoryConfig controls how check teams are grouped into regulatory categories.
type CategoryConfig struct {
	// TeamMap maps a check's team to a category id, e.g. "lux-ai:energy,team-d:habitability".
	TeamMap map[string]string `env:"TEAM_MAP" envDefault:"demo:habitability,lux-ai:energy,team-d:habitability,team-e:habitability,Mastodonte:structure" envKeyValSeparator:":" envSeparator:","`
}

// Sanitize trims whitespace and drops empty entries.
func (c *CategoryConfig) Sanitize() {
	clean := make(map[string]string, len(c.TeamMap))
	for team, category := range c.TeamMap {
		team = strings.TrimSpace(team)
		category = strings.TrimSpace(category)
		if team == "" || category == "" {
			continue
		}
		clean[team] = category
	}
	c.TeamMap = clean
}
