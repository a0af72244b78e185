package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateScore(t *testing.T) {
	tests := []struct {
		name    string
		correct int
		total   int
		want    int
	}{
		{"all correct", 10, 10, 100},
		{"none correct", 0, 10, 0},
		{"seven of ten", 7, 10, 70},
		{"one third rounds down", 1, 3, 33},
		{"two thirds rounds up", 2, 3, 67},
		{"half rounds up", 1, 2, 50},
		{"zero total", 0, 0, 0},
		{"negative total", 3, -1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CalculateScore(tt.correct, tt.total))
		})
	}
}

func TestSumTimeSpent(t *testing.T) {
	assert.Equal(t, 0, SumTimeSpent(nil))
	assert.Equal(t, 0, SumTimeSpent([]int{}))
	assert.Equal(t, 95, SumTimeSpent([]int{30, 45, 20}))
}
