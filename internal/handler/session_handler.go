package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/ai-quiz-api/internal/handler/dto"
	"github.com/yourusername/ai-quiz-api/internal/service"
)

// SessionHandler обрабатывает запросы жизненного цикла сессий квиза
type SessionHandler struct {
	sessionService *service.SessionService
	errors         errorResponder
}

// NewSessionHandler создает новый обработчик сессий
func NewSessionHandler(sessionService *service.SessionService, debug bool) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
		errors:         errorResponder{debug: debug},
	}
}

// CreateSession создает новую сессию квиза
func (h *SessionHandler) CreateSession(c *gin.Context) {
	var req dto.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Видимость по умолчанию — публичная; гостей сервис принудительно приватит
	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	session, user, err := h.sessionService.StartSession(req.Nickname, req.QuizID, isPublic)
	if err != nil {
		h.errors.respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewSessionResponse(session, user.Nickname))
}

// GetSession возвращает текущее состояние сессии
func (h *SessionHandler) GetSession(c *gin.Context) {
	sessionID := c.MustGet("sessionID").(string)

	meta, err := h.sessionService.GetSession(sessionID)
	if err != nil {
		h.errors.respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSessionMetaResponse(meta))
}

// SubmitAnswer оценивает и применяет ответ на вопрос в рамках сессии
func (h *SessionHandler) SubmitAnswer(c *gin.Context) {
	sessionID := c.MustGet("sessionID").(string)

	var req dto.SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	outcome, err := h.sessionService.SubmitAnswer(c.Request.Context(), sessionID, req.QuestionID, req.Answer)
	if err != nil {
		h.errors.respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSubmitAnswerResponse(outcome))
}

// FinishSession идемпотентно завершает сессию и возвращает итоговый отзыв
func (h *SessionHandler) FinishSession(c *gin.Context) {
	sessionID := c.MustGet("sessionID").(string)

	outcome, err := h.sessionService.FinishSession(c.Request.Context(), sessionID)
	if err != nil {
		h.errors.respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewFinishSessionResponse(outcome))
}
