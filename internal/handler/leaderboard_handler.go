package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/ai-quiz-api/internal/handler/dto"
	"github.com/yourusername/ai-quiz-api/internal/service"
)

// LeaderboardHandler обрабатывает запросы лидерборда и его выгрузки
type LeaderboardHandler struct {
	sessionService *service.SessionService
	exportService  *service.ExportService
	errors         errorResponder
}

// NewLeaderboardHandler создает новый обработчик лидерборда
func NewLeaderboardHandler(sessionService *service.SessionService, exportService *service.ExportService, debug bool) *LeaderboardHandler {
	return &LeaderboardHandler{
		sessionService: sessionService,
		exportService:  exportService,
		errors:         errorResponder{debug: debug},
	}
}

// GetLeaderboard возвращает топ пользователей. limit зажимается сервисом в [1, 200].
func (h *LeaderboardHandler) GetLeaderboard(c *gin.Context) {
	limit, err := parseLimit(c.DefaultQuery("limit", "0"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
		return
	}

	users, err := h.sessionService.Leaderboard(limit)
	if err != nil {
		h.errors.respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewLeaderboardResponse(users))
}

// Export отдает лидерборд XLSX-файлом
func (h *LeaderboardHandler) Export(c *gin.Context) {
	limit, err := parseLimit(c.DefaultQuery("limit", "0"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
		return
	}

	buf, err := h.exportService.LeaderboardXLSX(limit)
	if err != nil {
		h.errors.respond(c, err)
		return
	}

	filename := fmt.Sprintf("leaderboard_%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

func parseLimit(raw string) (int, error) {
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, fmt.Errorf("invalid limit %q", raw)
	}
	return limit, nil
}
