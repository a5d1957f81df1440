package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/yourusername/ai-quiz-api/internal/pkg/errors"
)

func writeCorpus(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "questions.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewQuestionRepo_LoadsValidEntries(t *testing.T) {
	path := writeCorpus(t, `[
		{"id": "q1", "question": "Что такое LLM?"},
		{"id": "q2", "question": "   "},
		{"id": "", "question": "без id"},
		{"id": "q1", "question": "дубликат"},
		{"id": "q3", "question": "Что такое токен?"}
	]`)

	repo, err := NewQuestionRepo(path)
	require.NoError(t, err)

	// Пустой текст, пустой id и дубликат отброшены
	assert.Equal(t, 2, repo.Count())

	list := repo.List()
	require.Len(t, list, 2)
	assert.Equal(t, "q1", list[0].ID, "исходный порядок сохраняется")
	assert.Equal(t, "q3", list[1].ID)
}

func TestNewQuestionRepo_MissingFile(t *testing.T) {
	_, err := NewQuestionRepo(filepath.Join(t.TempDir(), "nope.json"))
	assert.ErrorIs(t, err, apperrors.ErrCorpus)
}

func TestNewQuestionRepo_NotAnArray(t *testing.T) {
	path := writeCorpus(t, `{"id": "q1"}`)
	_, err := NewQuestionRepo(path)
	assert.ErrorIs(t, err, apperrors.ErrCorpus)
}

func TestNewQuestionRepo_EmptyCorpus(t *testing.T) {
	path := writeCorpus(t, `[{"id": "q1", "question": ""}]`)
	_, err := NewQuestionRepo(path)
	assert.ErrorIs(t, err, apperrors.ErrCorpus)
}

func TestQuestionRepo_GetByID(t *testing.T) {
	path := writeCorpus(t, `[{"id": "q1", "question": "Что такое LLM?"}]`)
	repo, err := NewQuestionRepo(path)
	require.NoError(t, err)

	q, err := repo.GetByID("q1")
	require.NoError(t, err)
	assert.Equal(t, "Что такое LLM?", q.Question)

	_, err = repo.GetByID("missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestQuestionRepo_GetByID_CorruptEntry(t *testing.T) {
	// Поврежденная запись не выдается списком, но остается адресуемой:
	// известный id с пустым текстом — это ошибка корпуса, а не "не найдено"
	path := writeCorpus(t, `[
		{"id": "q1", "question": "Что такое LLM?"},
		{"id": "q2", "question": "   "}
	]`)
	repo, err := NewQuestionRepo(path)
	require.NoError(t, err)

	assert.Equal(t, 1, repo.Count(), "в выдачу попадают только валидные записи")

	_, err = repo.GetByID("q2")
	assert.ErrorIs(t, err, apperrors.ErrCorpus)
	assert.NotErrorIs(t, err, apperrors.ErrNotFound)
}
