package dto

import (
	"github.com/yourusername/ai-quiz-api/internal/domain/entity"
	"github.com/yourusername/ai-quiz-api/internal/service"
)

// QuestionDTO представляет один вопрос корпуса
type QuestionDTO struct {
	ID       string `json:"id"`       // ID вопроса
	Question string `json:"question"` // Текст вопроса
}

// MetaResponse представляет метаданные квиза
type MetaResponse struct {
	Total     int    `json:"total"`      // Размер корпуса вопросов
	PassScore int    `json:"pass_score"` // Порог прохождения
	QuizID    string `json:"quiz_id"`    // Идентификатор квиза по умолчанию
}

// GradeRequest представляет запрос на оценку ответа без сессии
type GradeRequest struct {
	QuestionID string `json:"question_id" binding:"required"`
	Answer     string `json:"answer" binding:"required"`
}

// GradeResponse представляет вердикт по одному ответу
type GradeResponse struct {
	Ok       bool   `json:"ok"`       // Засчитан ли ответ
	Feedback string `json:"feedback"` // Наводка или объяснение
}

// FinalFeedbackRequest представляет запрос итогового отзыва без сессии.
// total и pass_score клиенту не доверяются и берутся с сервера.
// Пропущенный answered означает "отвечен весь корпус" и подставляется сервером;
// явный 0 остается нулем.
type FinalFeedbackRequest struct {
	Correct  int  `json:"correct" binding:"min=0"`
	Answered *int `json:"answered" binding:"omitempty,min=0"`
}

// FinalFeedbackResponse представляет итоговый отзыв
type FinalFeedbackResponse struct {
	Passed  bool   `json:"passed"`  // Пройден ли порог
	Message string `json:"message"` // Текст отзыва
}

// NewQuestionDTO конвертирует вопрос корпуса в DTO
func NewQuestionDTO(q *entity.Question) QuestionDTO {
	return QuestionDTO{ID: q.ID, Question: q.Question}
}

// NewListQuestionsResponse конвертирует список вопросов корпуса
func NewListQuestionsResponse(questions []entity.Question) []QuestionDTO {
	out := make([]QuestionDTO, 0, len(questions))
	for i := range questions {
		out = append(out, NewQuestionDTO(&questions[i]))
	}
	return out
}

// NewGradeResponse конвертирует вердикт сервиса в DTO
func NewGradeResponse(v service.GradeVerdict) GradeResponse {
	return GradeResponse{Ok: v.Ok, Feedback: v.Feedback}
}

// NewFinalFeedbackResponse конвертирует итоговый отзыв сервиса в DTO
func NewFinalFeedbackResponse(f service.FinalFeedback) FinalFeedbackResponse {
	return FinalFeedbackResponse{Passed: f.Passed, Message: f.Message}
}
