package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGradeFor(t *testing.T) {
	tests := []struct {
		percentage float64
		want       Grade
	}{
		{100, GradeAPlus},
		{90, GradeAPlus},
		{89.99, GradeA},
		{80, GradeA},
		{79.99, GradeB},
		{65, GradeB},
		{64.99, GradeC},
		{50, GradeC},
		{49.99, GradeD},
		{35, GradeD},
		{34.99, GradeF},
		{0, GradeF},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, GradeFor(tc.percentage), "percentage %.2f", tc.percentage)
	}
}

func TestAllGradesOrderedBestFirst(t *testing.T) {
	assert.Equal(t, []Grade{GradeAPlus, GradeA, GradeB, GradeC, GradeD, GradeF}, AllGrades)
}
