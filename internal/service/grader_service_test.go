package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/ai-quiz-api/pkg/gigachat"
)

// ============================================================================
// Мок клиента модели
// ============================================================================

// MockModelClient реализует ModelClient
type MockModelClient struct {
	mock.Mock
}

func (m *MockModelClient) Chat(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func (m *MockModelClient) ChatWithFunction(ctx context.Context, prompt string, fn gigachat.Function) (json.RawMessage, error) {
	args := m.Called(ctx, prompt, fn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

// compliantFeedback собирает фидбек, который гарантированно проходит
// стилевую проверку для данного seed.
func compliantFeedback(seed string) string {
	pool := stablePickTerms(seed, stylePoolSize)
	return fmt.Sprintf("Это прям %s и %s, суть ты уловил верно.", pool[0], pool[1])
}

func verdictJSON(ok bool, feedback string) json.RawMessage {
	raw, _ := json.Marshal(map[string]interface{}{"ok": ok, "feedback": feedback})
	return raw
}

// ============================================================================
// Тесты для Grade
// ============================================================================

func TestGraderService_Grade_FirstAttemptCompliant(t *testing.T) {
	// Arrange
	mockModel := new(MockModelClient)
	feedback := compliantFeedback("Вопрос?\nОтвет")
	mockModel.On("ChatWithFunction", mock.Anything, mock.Anything, mock.Anything).
		Return(verdictJSON(true, feedback), nil).Once()

	grader := NewGraderService(mockModel)

	// Act
	verdict := grader.Grade(context.Background(), "Вопрос?", "Ответ")

	// Assert
	assert.True(t, verdict.Ok)
	assert.Equal(t, feedback, verdict.Feedback)
	mockModel.AssertExpectations(t)
	mockModel.AssertNumberOfCalls(t, "ChatWithFunction", 1)
}

func TestGraderService_Grade_StrictRetryAfterListDump(t *testing.T) {
	// Arrange: первая попытка — вывалка списка, вторая — нормальный текст
	mockModel := new(MockModelClient)
	good := compliantFeedback("Вопрос?\nОтвет")
	mockModel.On("ChatWithFunction", mock.Anything, mock.Anything, mock.Anything).
		Return(verdictJSON(true, "термины: база, вайб, кринж"), nil).Once()
	mockModel.On("ChatWithFunction", mock.Anything, mock.Anything, mock.Anything).
		Return(verdictJSON(true, good), nil).Once()

	grader := NewGraderService(mockModel)

	// Act
	verdict := grader.Grade(context.Background(), "Вопрос?", "Ответ")

	// Assert
	assert.True(t, verdict.Ok)
	assert.Equal(t, good, verdict.Feedback)
	mockModel.AssertNumberOfCalls(t, "ChatWithFunction", 2)
}

func TestGraderService_Grade_LocalRepairWhenBothAttemptsFail(t *testing.T) {
	// Arrange: обе попытки возвращают текст с разделителями-палочками
	mockModel := new(MockModelClient)
	pool := stablePickTerms("Вопрос?\nОтвет", stylePoolSize)
	dump := fmt.Sprintf("%s | %s | верно по сути", pool[0], pool[1])
	mockModel.On("ChatWithFunction", mock.Anything, mock.Anything, mock.Anything).
		Return(verdictJSON(true, dump), nil).Twice()

	grader := NewGraderService(mockModel)

	// Act
	verdict := grader.Grade(context.Background(), "Вопрос?", "Ответ")

	// Assert: вердикт сохранен, разделители вычищены локально
	assert.True(t, verdict.Ok)
	assert.NotContains(t, verdict.Feedback, " | ")
	mockModel.AssertNumberOfCalls(t, "ChatWithFunction", 2)
}

func TestGraderService_Grade_FallbackWhenModelUnavailable(t *testing.T) {
	// Arrange
	mockModel := new(MockModelClient)
	mockModel.On("ChatWithFunction", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("connection refused")).Twice()

	grader := NewGraderService(mockModel)

	// Act
	verdict := grader.Grade(context.Background(), "Вопрос?", "Ответ")

	// Assert: квиз не останавливается, ответ не засчитывается
	assert.False(t, verdict.Ok)
	assert.Equal(t, gradeFallbackMessage, verdict.Feedback)
}

func TestGraderService_Grade_TruncatesHint(t *testing.T) {
	// Arrange: наводка при ok=false длиннее лимита
	mockModel := new(MockModelClient)
	pool := stablePickTerms("Вопрос?\nОтвет", stylePoolSize)
	long := pool[0] + " " + strings.Repeat("подсказка ", 40)
	mockModel.On("ChatWithFunction", mock.Anything, mock.Anything, mock.Anything).
		Return(verdictJSON(false, long), nil).Once()

	grader := NewGraderService(mockModel)

	// Act
	verdict := grader.Grade(context.Background(), "Вопрос?", "Ответ")

	// Assert
	assert.False(t, verdict.Ok)
	assert.LessOrEqual(t, len([]rune(verdict.Feedback)), hintMaxChars)
	mockModel.AssertNumberOfCalls(t, "ChatWithFunction", 1)
}

// ============================================================================
// Тесты для ComposeFinalFeedback
// ============================================================================

func finalSeed(correct, answered, total, passScore int, passed bool) string {
	return fmt.Sprintf("%d/%d/%d/%d/%t", correct, answered, total, passScore, passed)
}

func TestGraderService_ComposeFinalFeedback_Passed(t *testing.T) {
	// Arrange
	mockModel := new(MockModelClient)
	msg := compliantFeedback(finalSeed(14, 16, 16, 13, true))
	mockModel.On("Chat", mock.Anything, mock.Anything).Return(msg, nil).Once()

	grader := NewGraderService(mockModel)

	// Act
	fb := grader.ComposeFinalFeedback(context.Background(), 14, 16, 16, 13)

	// Assert
	assert.True(t, fb.Passed)
	assert.Equal(t, msg, fb.Message)
	mockModel.AssertNumberOfCalls(t, "Chat", 1)
}

func TestGraderService_ComposeFinalFeedback_PassedBoundary(t *testing.T) {
	// Arrange: correct == passScore считается прохождением
	mockModel := new(MockModelClient)
	mockModel.On("Chat", mock.Anything, mock.Anything).
		Return(compliantFeedback(finalSeed(13, 16, 16, 13, true)), nil)

	grader := NewGraderService(mockModel)

	// Act
	fb := grader.ComposeFinalFeedback(context.Background(), 13, 16, 16, 13)

	// Assert
	assert.True(t, fb.Passed)
}

func TestGraderService_ComposeFinalFeedback_NotPassed(t *testing.T) {
	// Arrange
	mockModel := new(MockModelClient)
	mockModel.On("Chat", mock.Anything, mock.Anything).
		Return(compliantFeedback(finalSeed(5, 16, 16, 13, false)), nil)

	grader := NewGraderService(mockModel)

	// Act
	fb := grader.ComposeFinalFeedback(context.Background(), 5, 16, 16, 13)

	// Assert
	assert.False(t, fb.Passed)
}

func TestGraderService_ComposeFinalFeedback_ClampsInputs(t *testing.T) {
	// Arrange: кривые входы не должны ломать расчет passed
	mockModel := new(MockModelClient)
	// после клампов: total=1, answered=0, correct=0, passScore=0, passed=true
	mockModel.On("Chat", mock.Anything, mock.Anything).
		Return(compliantFeedback(finalSeed(0, 0, 1, 0, true)), nil)

	grader := NewGraderService(mockModel)

	// Act
	fb := grader.ComposeFinalFeedback(context.Background(), -5, -3, 0, -1)

	// Assert
	assert.True(t, fb.Passed, "после клампов correct=0 >= passScore=0")
}

func TestGraderService_ComposeFinalFeedback_StrictRepromptOnListDump(t *testing.T) {
	// Arrange: обычный промпт возвращает список, строгий — нормальный текст
	mockModel := new(MockModelClient)
	good := compliantFeedback(finalSeed(14, 16, 16, 13, true))
	mockModel.On("Chat", mock.Anything, mock.Anything).
		Return("термины: база, вайб", nil).Once()
	mockModel.On("Chat", mock.Anything, mock.Anything).
		Return(good, nil).Once()

	grader := NewGraderService(mockModel)

	// Act
	fb := grader.ComposeFinalFeedback(context.Background(), 14, 16, 16, 13)

	// Assert
	require.True(t, fb.Passed)
	assert.Equal(t, good, fb.Message)
	mockModel.AssertNumberOfCalls(t, "Chat", 2)
}

func TestGraderService_ComposeFinalFeedback_FallbackWhenModelUnavailable(t *testing.T) {
	// Arrange: и обычные, и строгая попытки падают
	mockModel := new(MockModelClient)
	mockModel.On("Chat", mock.Anything, mock.Anything).
		Return("", errors.New("timeout"))

	grader := NewGraderService(mockModel)

	// Act
	fb := grader.ComposeFinalFeedback(context.Background(), 14, 16, 16, 13)

	// Assert: passed считается локально, сообщение — фиксированный fallback
	assert.True(t, fb.Passed)
	assert.Equal(t, finalFallbackMessage, fb.Message)
}
