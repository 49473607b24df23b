package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRatingFor(t *testing.T) {
	tests := []struct {
		percentage float64
		want       Rating
	}{
		{100, RatingExcellent},
		{90, RatingExcellent},
		{89.99, RatingGood},
		{75, RatingGood},
		{74.99, RatingSatisfactory},
		{50, RatingSatisfactory},
		{49.99, RatingNeedsWork},
		{0, RatingNeedsWork},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, RatingFor(tc.percentage), "percentage %.2f", tc.percentage)
	}
}

func TestClampPercentage(t *testing.T) {
	assert.Equal(t, 0.0, ClampPercentage(5, 0), "zero max score yields zero")
	assert.Equal(t, 0.0, ClampPercentage(0, -10))
	assert.Equal(t, 0.0, ClampPercentage(-3, 10))
	assert.Equal(t, 100.0, ClampPercentage(15, 10), "overshoot clamps to 100")
	assert.Equal(t, 50.0, ClampPercentage(5, 10))
	assert.Equal(t, 100.0, ClampPercentage(10, 10))
	assert.InDelta(t, 33.33, ClampPercentage(1, 3), 0.01)
}
