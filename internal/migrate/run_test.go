package migrate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFiles_SortedAndEmbedded(t *testing.T) {
	files, err := Files()
	require.NoError(t, err)
	require.NotEmpty(t, files)
	assert.Equal(t, "0001_init.sql", files[0])
	assert.IsIncreasing(t, files)

	body, err := migrationsFS.ReadFile("migrations/" + files[0])
	require.NoError(t, err)
	for _, table := range []string{"projects", "jobs", "check_results", "element_results"} {
		assert.Contains(t, string(body), "CREATE TABLE IF NOT EXISTS "+table)
	}
}
