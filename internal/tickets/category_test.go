package tickets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryRules(t *testing.T) {
	tests := []struct {
		category      Category
		price         int
		occupiesSeat  bool
		requiresAdult bool
	}{
		{CategoryInfant, 0, false, true},
		{CategoryChild, 10, true, true},
		{CategoryAdult, 20, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.category.String(), func(t *testing.T) {
			assert.True(t, tt.category.IsValid())
			assert.Equal(t, tt.price, tt.category.Price())
			assert.Equal(t, tt.occupiesSeat, tt.category.OccupiesSeat())
			assert.Equal(t, tt.requiresAdult, tt.category.RequiresAdult())
		})
	}

	assert.Len(t, Categories(), len(categoryRules))
}

func TestUnknownCategory(t *testing.T) {
	c := Category("STUDENT")
	assert.False(t, c.IsValid())
	assert.Zero(t, c.Price())
	assert.False(t, c.OccupiesSeat())
	assert.False(t, c.Supervises())
}

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory(" adult ")
	require.NoError(t, err)
	assert.Equal(t, CategoryAdult, c)

	_, err = ParseCategory("senior")
	assert.Error(t, err)
}

func TestLineItem(t *testing.T) {
	assert.Equal(t, 60, adult(3).Price())
	assert.Equal(t, 3, child(3).Seats())
	assert.Equal(t, 0, infant(3).Seats())
	assert.True(t, Summarize(nil).IsEmpty())
}
