package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/yourusername/ai-quiz-api/internal/pkg/errors"
)

// errorResponder маппит доменные ошибки на HTTP-статусы.
// В debug-режиме 5xx-ответы содержат детальную причину, иначе — безопасное сообщение.
type errorResponder struct {
	debug bool
}

func (r errorResponder) respond(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("ERROR: Internal server error: %v", err)
		msg := "Internal server error"
		if r.debug {
			msg = err.Error()
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}
