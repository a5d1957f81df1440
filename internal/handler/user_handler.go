package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/ai-quiz-api/internal/handler/dto"
	"github.com/yourusername/ai-quiz-api/internal/service"
)

// UserHandler обрабатывает запросы публичной статистики пользователей
type UserHandler struct {
	sessionService *service.SessionService
	errors         errorResponder
}

// NewUserHandler создает новый обработчик пользователей
func NewUserHandler(sessionService *service.SessionService, debug bool) *UserHandler {
	return &UserHandler{
		sessionService: sessionService,
		errors:         errorResponder{debug: debug},
	}
}

// GetUserStats возвращает накопительную статистику пользователя по никнейму
func (h *UserHandler) GetUserStats(c *gin.Context) {
	user, err := h.sessionService.UserStats(c.Param("nickname"))
	if err != nil {
		h.errors.respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewUserStatsResponse(user))
}
