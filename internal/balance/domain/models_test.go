package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelFor(t *testing.T) {
	tests := []struct {
		points int64
		name   string
		next   string
		toNext int64
	}{
		{0, "starter", "bronze", 50},
		{49, "starter", "bronze", 1},
		{50, "bronze", "silver", 150},
		{199, "bronze", "silver", 1},
		{200, "silver", "gold", 300},
		{500, "gold", "diamond", 500},
		{999, "gold", "diamond", 1},
		{1000, "diamond", "", 0},
		{50000, "diamond", "", 0},
		{-5, "starter", "bronze", 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := LevelFor(tt.points)
			assert.Equal(t, tt.name, info.Name)
			assert.Equal(t, tt.next, info.NextLevel)
			assert.Equal(t, tt.toNext, info.PointsToNext)
		})
	}
}

func TestLevelFor_Progress(t *testing.T) {
	assert.Equal(t, float64(0), LevelFor(0).ProgressPercent)
	assert.Equal(t, float64(50), LevelFor(25).ProgressPercent)
	assert.Equal(t, float64(100), LevelFor(1000).ProgressPercent)
}
