package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/ai-quiz-api/internal/domain/repository"
	"github.com/yourusername/ai-quiz-api/internal/handler/dto"
	"github.com/yourusername/ai-quiz-api/internal/service"
)

// QuizHandler обрабатывает запросы к корпусу вопросов и бессессионной оценке
type QuizHandler struct {
	questionRepo   repository.QuestionRepository
	sessionService *service.SessionService
	passScore      int
	defaultQuizID  string
	errors         errorResponder
}

// NewQuizHandler создает новый обработчик квиза
func NewQuizHandler(
	questionRepo repository.QuestionRepository,
	sessionService *service.SessionService,
	passScore int,
	defaultQuizID string,
	debug bool,
) *QuizHandler {
	return &QuizHandler{
		questionRepo:   questionRepo,
		sessionService: sessionService,
		passScore:      passScore,
		defaultQuizID:  defaultQuizID,
		errors:         errorResponder{debug: debug},
	}
}

// Health — проверка живости сервиса
func (h *QuizHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Meta возвращает метаданные квиза: размер корпуса и порог прохождения
func (h *QuizHandler) Meta(c *gin.Context) {
	c.JSON(http.StatusOK, dto.MetaResponse{
		Total:     h.questionRepo.Count(),
		PassScore: h.passScore,
		QuizID:    h.defaultQuizID,
	})
}

// ListQuestions возвращает все вопросы корпуса
func (h *QuizHandler) ListQuestions(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewListQuestionsResponse(h.questionRepo.List()))
}

// GetQuestion возвращает один вопрос по id
func (h *QuizHandler) GetQuestion(c *gin.Context) {
	question, err := h.questionRepo.GetByID(c.Param("id"))
	if err != nil {
		h.errors.respond(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewQuestionDTO(question))
}

// Grade оценивает ответ на вопрос корпуса без привязки к сессии
func (h *QuizHandler) Grade(c *gin.Context) {
	var req dto.GradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	verdict, err := h.sessionService.GradeAnswer(c.Request.Context(), req.QuestionID, req.Answer)
	if err != nil {
		h.errors.respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewGradeResponse(*verdict))
}

// FinalFeedback собирает итоговый отзыв по присланным счетчикам.
// Всегда отвечает 200: сбой модели превращается в fallback-сообщение.
func (h *QuizHandler) FinalFeedback(c *gin.Context) {
	var req dto.FinalFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Пропущенный answered трактуется как полный проход корпуса
	answered := h.questionRepo.Count()
	if req.Answered != nil {
		answered = *req.Answered
	}

	feedback := h.sessionService.ComposeFinalFeedback(c.Request.Context(), req.Correct, answered)
	c.JSON(http.StatusOK, dto.NewFinalFeedbackResponse(feedback))
}
