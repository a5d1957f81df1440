package entity

import (
	"time"
)

// User представляет участника квиза. Идентичность — нормализованный никнейм.
// Накопительные счетчики (total_correct, total_answered, attempts) обновляются
// только для публичных сессий; гостевые и скрытые попытки их не трогают.
type User struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Nickname      string    `gorm:"size:100;not null;uniqueIndex" json:"nickname"`
	TotalCorrect  int       `gorm:"not null;default:0;index:idx_users_leaderboard" json:"total_correct"`
	TotalAnswered int       `gorm:"not null;default:0;index:idx_users_leaderboard" json:"total_answered"`
	Attempts      int       `gorm:"not null;default:0" json:"attempts"`
	LastSeenAt    time.Time `gorm:"not null" json:"last_seen_at"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// HasActivity возвращает true, если у пользователя есть накопительная статистика.
// Используется при отборе в лидерборд.
func (u *User) HasActivity() bool {
	return u.TotalAnswered > 0 || u.TotalCorrect > 0 || u.Attempts > 0
}

// TableName определяет имя таблицы для GORM
func (User) TableName() string {
	return "users"
}
