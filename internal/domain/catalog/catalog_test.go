package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogHasThirteenPrograms(t *testing.T) {
	cat := Default()
	assert.Equal(t, 13, cat.Len())
	assert.Len(t, cat.Universe(), 13)

	seen := make(map[CategoryID]bool)
	for _, id := range cat.Universe() {
		assert.False(t, seen[id], "duplicate catalog id %s", id)
		seen[id] = true
	}
}

func TestByID(t *testing.T) {
	cat := Default()

	entry, ok := cat.ByID(Accounting)
	require.True(t, ok)
	assert.Equal(t, "AC", entry.Code)
	assert.Equal(t, "การบัญชี", entry.NameTH)

	_, ok = cat.ByID(CategoryID("zz"))
	assert.False(t, ok)
}

func TestNewIgnoresDuplicateIDs(t *testing.T) {
	cat := New([]CareerCategory{
		{ID: Marketing, Name: "first"},
		{ID: Marketing, Name: "second"},
	})
	assert.Equal(t, 1, cat.Len())

	entry, _ := cat.ByID(Marketing)
	assert.Equal(t, "first", entry.Name)
}
