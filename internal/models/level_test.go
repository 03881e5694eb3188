package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelFor(t *testing.T) {
	levels := []Level{
		{ID: 1, Name: "Novice Explorer", VisitsRequired: 0},
		{ID: 2, Name: "Local Visitor", VisitsRequired: 3},
		{ID: 3, Name: "Island Conqueror", VisitsRequired: 10},
	}

	tests := []struct {
		visits      int
		wantCurrent string
		wantNext    string
	}{
		{0, "Novice Explorer", "Local Visitor"},
		{2, "Novice Explorer", "Local Visitor"},
		{3, "Local Visitor", "Island Conqueror"},
		{25, "Island Conqueror", ""},
	}

	for _, tt := range tests {
		current, next := LevelFor(levels, tt.visits)
		assert.Equal(t, tt.wantCurrent, current.Name, "visits=%d", tt.visits)
		if tt.wantNext == "" {
			assert.Nil(t, next)
		} else {
			assert.Equal(t, tt.wantNext, next.Name)
		}
	}

	current, next := LevelFor(nil, 5)
	assert.Nil(t, current)
	assert.Nil(t, next)
}
