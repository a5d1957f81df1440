package repository

import (
	"github.com/yourusername/ai-quiz-api/internal/domain/entity"
)

// SessionMeta объединяет сессию с никнеймом владельца (JOIN users).
type SessionMeta struct {
	entity.Session
	Nickname string `json:"nickname"`
}

// ApplyAnswerResult — итог применения ответа к счетчикам сессии.
// Changed=true, если ответ на вопрос дан впервые или вердикт изменился.
type ApplyAnswerResult struct {
	Correct   int  `json:"correct"`
	Answered  int  `json:"answered"`
	Total     int  `json:"total"`
	PassScore int  `json:"pass_score"`
	Changed   bool `json:"changed"`
}

// SessionRepository определяет методы журнала сессий (Session Ledger).
// Все мутации счетчиков выполняются в одной транзакции БД вместе с условным
// обновлением накопительных счетчиков пользователя.
type SessionRepository interface {
	// Create создает сессию для пользователя с указанным никнеймом
	// (get-or-create) и инкрементирует attempts только для публичных сессий.
	Create(nickname string, total, passScore int, quizID string, isPublic bool) (*entity.Session, *entity.User, error)

	// GetMeta возвращает сессию вместе с никнеймом владельца.
	GetMeta(id string) (*SessionMeta, error)

	// ApplyAnswer сохраняет/перезаписывает ответ на вопрос и атомарно
	// корректирует счетчики сессии и накопительные счетчики пользователя.
	ApplyAnswer(sessionID, questionID, answerText string, ok bool, feedback string) (*ApplyAnswerResult, error)

	// Finish идемпотентно выставляет finished_at (повторные вызовы его не сбрасывают).
	Finish(id string) error
}
