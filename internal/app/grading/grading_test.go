package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExactMatch(t *testing.T) {
	tests := []struct {
		name      string
		submitted string
		correct   string
		want      bool
	}{
		{"true answered true", "True", "True", true},
		{"true answered false", "False", "True", false},
		{"leading space is not trimmed", " True", "True", false},
		{"trailing space is not trimmed", "True ", "True", false},
		{"case sensitive", "true", "True", false},
		{"multiple choice option", "goroutine", "goroutine", true},
		{"empty against empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExactMatch(tt.submitted, tt.correct))
		})
	}
}
