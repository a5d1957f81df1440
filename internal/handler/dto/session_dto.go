package dto

import (
	"time"

	"github.com/yourusername/ai-quiz-api/internal/domain/entity"
	"github.com/yourusername/ai-quiz-api/internal/domain/repository"
	"github.com/yourusername/ai-quiz-api/internal/service"
)

// CreateSessionRequest представляет запрос на создание сессии
type CreateSessionRequest struct {
	Nickname string `json:"nickname" binding:"omitempty,max=100"` // Пустой никнейм = гостевая сессия
	QuizID   string `json:"quiz_id" binding:"omitempty,max=50"`
	IsPublic *bool  `json:"is_public"` // nil трактуется как true
}

// SessionResponse представляет состояние сессии
type SessionResponse struct {
	ID         string     `json:"id"`
	Nickname   string     `json:"nickname"` // Разрешенный никнейм (для гостей — сгенерированный)
	QuizID     string     `json:"quiz_id"`
	Total      int        `json:"total"`
	PassScore  int        `json:"pass_score"`
	Answered   int        `json:"answered"`
	Correct    int        `json:"correct"`
	IsPublic   bool       `json:"is_public"` // Эффективная видимость (гости всегда приватны)
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// SubmitAnswerRequest представляет ответ на вопрос в рамках сессии
type SubmitAnswerRequest struct {
	QuestionID string `json:"question_id" binding:"required"`
	Answer     string `json:"answer" binding:"required"`
}

// SubmitAnswerResponse объединяет вердикт и счетчики сессии после применения
type SubmitAnswerResponse struct {
	Ok        bool   `json:"ok"`
	Feedback  string `json:"feedback"`
	Correct   int    `json:"correct"`
	Answered  int    `json:"answered"`
	Total     int    `json:"total"`
	PassScore int    `json:"pass_score"`
	Changed   bool   `json:"changed"` // false = повторный ответ с тем же вердиктом
}

// FinishSessionResponse представляет итог завершенной сессии
type FinishSessionResponse struct {
	Session  SessionResponse       `json:"session"`
	Passed   bool                  `json:"passed"`
	Feedback FinalFeedbackResponse `json:"feedback"`
}

// NewSessionResponse конвертирует сессию и никнейм владельца в DTO
func NewSessionResponse(s *entity.Session, nickname string) SessionResponse {
	return SessionResponse{
		ID:         s.ID,
		Nickname:   nickname,
		QuizID:     s.QuizID,
		Total:      s.Total,
		PassScore:  s.PassScore,
		Answered:   s.Answered,
		Correct:    s.Correct,
		IsPublic:   s.IsPublic,
		StartedAt:  s.StartedAt,
		FinishedAt: s.FinishedAt,
	}
}

// NewSessionMetaResponse конвертирует SessionMeta в DTO
func NewSessionMetaResponse(meta *repository.SessionMeta) SessionResponse {
	return NewSessionResponse(&meta.Session, meta.Nickname)
}

// NewSubmitAnswerResponse объединяет вердикт и счетчики в один DTO
func NewSubmitAnswerResponse(outcome *service.AnswerOutcome) SubmitAnswerResponse {
	return SubmitAnswerResponse{
		Ok:        outcome.Verdict.Ok,
		Feedback:  outcome.Verdict.Feedback,
		Correct:   outcome.Counters.Correct,
		Answered:  outcome.Counters.Answered,
		Total:     outcome.Counters.Total,
		PassScore: outcome.Counters.PassScore,
		Changed:   outcome.Counters.Changed,
	}
}

// NewFinishSessionResponse конвертирует итог завершения сессии в DTO
func NewFinishSessionResponse(outcome *service.FinishOutcome) FinishSessionResponse {
	return FinishSessionResponse{
		Session:  NewSessionMetaResponse(&outcome.Meta),
		Passed:   outcome.Feedback.Passed,
		Feedback: NewFinalFeedbackResponse(outcome.Feedback),
	}
}
