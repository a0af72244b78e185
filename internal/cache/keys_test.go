package cache

import "testing"

func TestKey(t *testing.T) {
	tests := []struct {
		name     string
		segments []string
		expected string
	}{
		{
			name:     "single segment",
			segments: []string{"health"},
			expected: "nalar:health",
		},
		{
			name:     "quiz result",
			segments: []string{"quiz", "result", "123"},
			expected: "nalar:quiz:result:123",
		},
		{
			name:     "no segments",
			segments: nil,
			expected: "nalar",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Key(tt.segments...); got != tt.expected {
				t.Errorf("Key() = %v, want %v", got, tt.expected)
			}
		})
	}
}
