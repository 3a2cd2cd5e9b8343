package model

import (
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/SerjoschDuering/ifcore-platform/internal/errors"
)

func TestValidateModelFile(t *testing.T) {
	const limit = 1 << 20
	tests := []struct {
		name    string
		file    string
		size    int64
		wantErr bool
	}{
		{"lowercase ext", "house.ifc", 10, false},
		{"uppercase ext", "HOUSE.IFC", 10, false},
		{"exactly at limit", "a.ifc", limit, false},
		{"empty name", "  ", 10, true},
		{"wrong ext", "house.dwg", 10, true},
		{"ext only in middle", "house.ifc.zip", 10, true},
		{"empty file", "house.ifc", 0, true},
		{"too large", "house.ifc", limit + 1, true},
		{"path traversal", "../house.ifc", 10, true},
		{"nested path", "a/house.ifc", 10, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateModelFile(tt.file, tt.size, limit)
			if tt.wantErr {
				assert.True(t, apperrors.IsValidation(err), "got %v", err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestProjectNameFromFile(t *testing.T) {
	assert.Equal(t, "Duplex", ProjectNameFromFile("Duplex.ifc"))
	assert.Equal(t, "Duplex", ProjectNameFromFile("Duplex.IFC"))
	assert.Equal(t, "Duplex.ifc.bak", ProjectNameFromFile("Duplex.ifc.bak"))
	assert.Equal(t, "", ProjectNameFromFile(".ifc"))
}

func TestLocatorRoundTrip(t *testing.T) {
	key := ObjectKey("p1", "Duplex.ifc")
	assert.Equal(t, "ifc/p1/Duplex.ifc", key)
	assert.Equal(t, "r2://ifc/p1/Duplex.ifc", Locator(key))

	got, ok := KeyFromLocator(Locator(key))
	assert.True(t, ok)
	assert.Equal(t, key, got)

	_, ok = KeyFromLocator("https://example.com/x.ifc")
	assert.False(t, ok)
	_, ok = KeyFromLocator("r2://")
	assert.False(t, ok)
}
