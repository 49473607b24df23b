package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasValidAnswerKey(t *testing.T) {
	tests := []struct {
		name     string
		qType    QuestionType
		options  []string
		correct  []string
		want     bool
	}{
		{"single choice one correct", QuestionTypeSingleChoice, []string{"a", "b", "c"}, []string{"b"}, true},
		{"single choice no correct", QuestionTypeSingleChoice, []string{"a", "b"}, nil, false},
		{"single choice two correct", QuestionTypeSingleChoice, []string{"a", "b"}, []string{"a", "b"}, false},
		{"single choice undeclared option", QuestionTypeSingleChoice, []string{"a", "b"}, []string{"z"}, false},
		{"multi choice subset", QuestionTypeMultiChoice, []string{"a", "b", "c"}, []string{"a", "c"}, true},
		{"multi choice all options", QuestionTypeMultiChoice, []string{"a", "b"}, []string{"a", "b"}, true},
		{"multi choice empty", QuestionTypeMultiChoice, []string{"a", "b"}, []string{}, false},
		{"multi choice undeclared option", QuestionTypeMultiChoice, []string{"a", "b"}, []string{"a", "z"}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			q := &Question{Type: tc.qType, Options: tc.options, CorrectOptions: tc.correct}
			assert.Equal(t, tc.want, q.HasValidAnswerKey())
		})
	}
}
