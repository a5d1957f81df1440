package file

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/yourusername/ai-quiz-api/internal/domain/entity"
	apperrors "github.com/yourusername/ai-quiz-api/internal/pkg/errors"
)

// QuestionRepo реализует repository.QuestionRepository поверх questions.json.
// Корпус читается один раз при старте и дальше не меняется, поэтому
// синхронизация не нужна.
type QuestionRepo struct {
	// questions — только валидные записи, в исходном порядке
	questions []entity.Question
	// byID — все адресуемые записи, включая поврежденные (пустой текст):
	// такая запись остается видимой для GetByID и дает ErrCorpus, а не 404
	byID map[string]entity.Question
}

// NewQuestionRepo загружает корпус вопросов из JSON-файла
func NewQuestionRepo(path string) (*QuestionRepo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: не удалось прочитать файл %s: %v", apperrors.ErrCorpus, path, err)
	}

	var raw []entity.Question
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: файл %s не является JSON-массивом вопросов: %v", apperrors.ErrCorpus, path, err)
	}

	repo := &QuestionRepo{
		questions: make([]entity.Question, 0, len(raw)),
		byID:      make(map[string]entity.Question, len(raw)),
	}
	for _, q := range raw {
		if q.ID == "" {
			log.Printf("[QuestionRepo] Пропущена запись корпуса без id")
			continue
		}
		if _, dup := repo.byID[q.ID]; dup {
			log.Printf("[QuestionRepo] Пропущен дубликат id=%q", q.ID)
			continue
		}
		repo.byID[q.ID] = q
		if !q.IsValid() {
			log.Printf("[QuestionRepo] Запись id=%q повреждена (пустой текст), исключена из выдачи", q.ID)
			continue
		}
		repo.questions = append(repo.questions, q)
	}

	if len(repo.questions) == 0 {
		return nil, fmt.Errorf("%w: корпус %s пуст", apperrors.ErrCorpus, path)
	}

	log.Printf("[QuestionRepo] Загружено вопросов: %d (файл %s)", len(repo.questions), path)
	return repo, nil
}

// List возвращает все валидные вопросы в исходном порядке
func (r *QuestionRepo) List() []entity.Question {
	out := make([]entity.Question, len(r.questions))
	copy(out, r.questions)
	return out
}

// GetByID возвращает вопрос по id. Неизвестный id — ErrNotFound;
// известный, но поврежденный (пустой текст) — ErrCorpus.
func (r *QuestionRepo) GetByID(id string) (*entity.Question, error) {
	q, ok := r.byID[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	if !q.IsValid() {
		return nil, fmt.Errorf("%w: запись id=%q содержит пустой текст", apperrors.ErrCorpus, id)
	}
	return &q, nil
}

// Count возвращает размер корпуса
func (r *QuestionRepo) Count() int {
	return len(r.questions)
}
