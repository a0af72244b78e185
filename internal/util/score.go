package util

import "math"

// CalculateScore converts a correct-answer count into a 0-100 percentage,
// rounded half away from zero. Zero total questions yields 0 instead of a
// division by zero.
func CalculateScore(correctAnswers, totalQuestions int) int {
	if totalQuestions <= 0 {
		return 0
	}
	return int(math.Round(float64(correctAnswers) / float64(totalQuestions) * 100))
}

// SumTimeSpent aggregates per-question time into a total.
func SumTimeSpent(seconds []int) int {
	total := 0
	for _, s := range seconds {
		total += s
	}
	return total
}
