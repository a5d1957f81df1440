package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuestion_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		question Question
		want     bool
	}{
		{"валидный вопрос", Question{ID: "q1", Question: "Что такое LLM?"}, true},
		{"пустой id", Question{Question: "текст"}, false},
		{"пустой текст", Question{ID: "q1"}, false},
		{"текст из пробелов", Question{ID: "q1", Question: "   "}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.question.IsValid())
		})
	}
}
