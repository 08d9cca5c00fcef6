package trigger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShouldRetrieve(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    bool
	}{
		{
			name:    "reference question",
			message: "Как правильно составить бриф?",
			want:    true,
		},
		{
			name:    "keyword in the middle",
			message: "Подскажи пример структуры документа",
			want:    true,
		},
		{
			name:    "english keyword",
			message: "Is there a checklist for this?",
			want:    true,
		},
		{
			name:    "pattern match",
			message: "зачем нужна такая колонка",
			want:    true,
		},
		{
			name:    "question with reference context",
			message: "А в этом проекте так можно?",
			want:    true,
		},
		{
			name:    "interrogative prefix with reference word",
			message: "какие сроки заложить на тз",
			want:    true,
		},
		{
			name:    "plain interview answer",
			message: "да, подходит",
			want:    false,
		},
		{
			name:    "statement of fact",
			message: "Бюджет до миллиона рублей",
			want:    false,
		},
		{
			name:    "question without reference context",
			message: "Можно голосом ответить?",
			want:    false,
		},
		{
			name:    "empty message",
			message: "",
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldRetrieve(tt.message))
		})
	}
}
