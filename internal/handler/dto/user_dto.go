package dto

import (
	"time"

	"github.com/yourusername/ai-quiz-api/internal/domain/entity"
)

// LeaderboardUserDTO представляет одного пользователя в лидерборде
type LeaderboardUserDTO struct {
	Rank          int       `json:"rank"`           // Место пользователя в рейтинге
	Nickname      string    `json:"nickname"`       // Никнейм пользователя
	TotalCorrect  int       `json:"total_correct"`  // Правильных ответов за все публичные сессии
	TotalAnswered int       `json:"total_answered"` // Отвеченных вопросов за все публичные сессии
	Attempts      int       `json:"attempts"`       // Количество публичных попыток
	LastSeenAt    time.Time `json:"last_seen_at"`   // Последняя активность
}

// LeaderboardResponse представляет ответ лидерборда
type LeaderboardResponse struct {
	Users []LeaderboardUserDTO `json:"users"` // Топ пользователей
	Count int                  `json:"count"` // Количество записей в ответе
}

// UserStatsResponse представляет публичную статистику одного пользователя
type UserStatsResponse struct {
	Nickname      string    `json:"nickname"`
	TotalCorrect  int       `json:"total_correct"`
	TotalAnswered int       `json:"total_answered"`
	Attempts      int       `json:"attempts"`
	LastSeenAt    time.Time `json:"last_seen_at"`
}

// NewUserStatsResponse конвертирует пользователя в DTO статистики
func NewUserStatsResponse(u *entity.User) UserStatsResponse {
	return UserStatsResponse{
		Nickname:      u.Nickname,
		TotalCorrect:  u.TotalCorrect,
		TotalAnswered: u.TotalAnswered,
		Attempts:      u.Attempts,
		LastSeenAt:    u.LastSeenAt,
	}
}

// NewLeaderboardResponse конвертирует пользователей в лидерборд с рангами
func NewLeaderboardResponse(users []entity.User) LeaderboardResponse {
	out := make([]LeaderboardUserDTO, 0, len(users))
	for i, u := range users {
		out = append(out, LeaderboardUserDTO{
			Rank:          i + 1,
			Nickname:      u.Nickname,
			TotalCorrect:  u.TotalCorrect,
			TotalAnswered: u.TotalAnswered,
			Attempts:      u.Attempts,
			LastSeenAt:    u.LastSeenAt,
		})
	}
	return LeaderboardResponse{Users: out, Count: len(out)}
}
