package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Транзакционные методы SessionRepo требуют живой БД и проверяются
// интеграционно; здесь покрыта чистая машина состояний счетчиков.

func TestComputeAnswerDeltas(t *testing.T) {
	tests := []struct {
		name        string
		prevExists  bool
		prevOK      bool
		ok          bool
		wantAns     int
		wantCorrect int
		wantChanged bool
	}{
		{"первый верный ответ", false, false, true, 1, 1, true},
		{"первый неверный ответ", false, false, false, 1, 0, true},
		{"повтор с тем же вердиктом (верно)", true, true, true, 0, 0, false},
		{"повтор с тем же вердиктом (неверно)", true, false, false, 0, 0, false},
		{"исправление: неверно -> верно", true, false, true, 0, 1, true},
		{"ухудшение: верно -> неверно", true, true, false, 0, -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dAns, dCorrect, changed := computeAnswerDeltas(tt.prevExists, tt.prevOK, tt.ok)
			assert.Equal(t, tt.wantAns, dAns, "дельта answered")
			assert.Equal(t, tt.wantCorrect, dCorrect, "дельта correct")
			assert.Equal(t, tt.wantChanged, changed)
		})
	}
}

func TestComputeAnswerDeltas_ToggleTwiceRestoresCounters(t *testing.T) {
	// верно -> неверно -> верно: суммарные дельты должны вернуться к исходным
	sumAns, sumCorrect := 0, 0

	dAns, dCorrect, _ := computeAnswerDeltas(false, false, true)
	sumAns += dAns
	sumCorrect += dCorrect

	dAns, dCorrect, _ = computeAnswerDeltas(true, true, false)
	sumAns += dAns
	sumCorrect += dCorrect

	dAns, dCorrect, _ = computeAnswerDeltas(true, false, true)
	sumAns += dAns
	sumCorrect += dCorrect

	assert.Equal(t, 1, sumAns, "вопрос остается отвеченным ровно один раз")
	assert.Equal(t, 1, sumCorrect, "итоговый вердикт — верно")
}
