package repository

import (
	"github.com/yourusername/ai-quiz-api/internal/domain/entity"
)

// UserRepository определяет методы для работы с пользователями
type UserRepository interface {
	// GetByNickname возвращает пользователя по нормализованному никнейму.
	GetByNickname(nickname string) (*entity.User, error)

	// GetLeaderboard возвращает пользователей с ненулевой накопительной
	// активностью, отсортированных по total_correct DESC, total_answered DESC,
	// last_seen_at DESC, nickname ASC. limit уже должен быть ограничен вызывающим.
	GetLeaderboard(limit int) ([]entity.User, error)
}
