package repository

import (
	"github.com/yourusername/ai-quiz-api/internal/domain/entity"
)

// QuestionRepository определяет доступ к неизменяемому корпусу вопросов.
type QuestionRepository interface {
	// List возвращает все валидные вопросы корпуса в исходном порядке.
	List() []entity.Question

	// GetByID возвращает вопрос по id. ErrNotFound — если id неизвестен,
	// ErrCorpus — если запись корпуса повреждена (пустой текст).
	GetByID(id string) (*entity.Question, error)

	// Count возвращает размер корпуса (количество валидных вопросов).
	Count() int
}
