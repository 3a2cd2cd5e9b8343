package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategorySet(t *testing.T) {
	teams := map[string]string{"demo": "fire-safety", "team-d": "habitability", "team-e": "fire-safety"}
	set := NewCategorySet(teams)

	// the set keeps its own copy of the team map
	teams["demo"] = "energy"
	assert.Equal(t, "fire-safety", set.CategoryOf("demo"))
	assert.Empty(t, set.CategoryOf("nobody"))

	assert.Equal(t, []string{"demo", "team-e"}, set.TeamsIn("fire-safety"))
	assert.Nil(t, set.TeamsIn("lighting"))

	cat, ok := set.Lookup("energy")
	assert.True(t, ok)
	assert.Equal(t, "Energy", cat.Name)
	_, ok = set.Lookup("acoustics")
	assert.False(t, ok)
}
