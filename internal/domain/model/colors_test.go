package model

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColorMap_Equal(t *testing.T) {
	a := ColorMap{"x": "#e62020", "y": "#22c55e"}
	assert.True(t, a.Equal(ColorMap{"y": "#22c55e", "x": "#e62020"}))
	assert.False(t, a.Equal(ColorMap{"x": "#e62020", "y": "#f59e0b"}))
	assert.False(t, a.Equal(ColorMap{"x": "#e62020", "z": "#22c55e"}))
	assert.True(t, ColorMap(nil).Equal(ColorMap{}))
}

func TestColorMap_Groups(t *testing.T) {
	groups := ColorMap{"a": "#111111", "b": "#222222", "c": "#111111"}.Groups()
	sort.Strings(groups["#111111"])
	assert.Equal(t, []string{"a", "c"}, groups["#111111"])
	assert.Equal(t, []string{"b"}, groups["#222222"])
}

func TestStatusColors(t *testing.T) {
	assert.Equal(t, "#e62020", ViewerHex(ElementStatusFail))
	assert.Equal(t, MutedHex, ViewerHex("bogus"))
	assert.Equal(t, "#10b981", StatusHex("pass"))
	assert.Equal(t, "#9ca3af", StatusHex("running"))
}

func TestCategorySet_Colors(t *testing.T) {
	set := NewCategorySet(map[string]string{"lux-ai": "energy", "team-d": "habitability", "demo": "habitability"})
	c, ok := set.Lookup("energy")
	assert.True(t, ok)
	assert.Equal(t, "#10b981", c.Color)
	_, ok = set.Lookup("acoustics")
	assert.False(t, ok)

	assert.Equal(t, "energy", set.CategoryOf("lux-ai"))
	assert.Empty(t, set.CategoryOf("unknown-team"))
	assert.Equal(t, []string{"demo", "team-d"}, set.TeamsIn("habitability"))
}
