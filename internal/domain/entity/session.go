package entity

import (
	"time"
)

// Session представляет одну попытку прохождения квиза.
// Total и PassScore фиксируются при создании; Answered/Correct ведутся
// транзакционно при каждом ответе. IsPublic неизменяем после создания и
// принудительно false для гостевых сессий (без никнейма).
type Session struct {
	ID             string     `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uint       `gorm:"not null;index" json:"user_id"`
	QuizID         string     `gorm:"size:50;not null;default:'quiz1'" json:"quiz_id"`
	Total          int        `gorm:"not null;default:0" json:"total"`
	PassScore      int        `gorm:"not null;default:0" json:"pass_score"`
	Answered       int        `gorm:"not null;default:0" json:"answered"`
	Correct        int        `gorm:"not null;default:0" json:"correct"`
	IsPublic       bool       `gorm:"not null;default:true" json:"is_public"`
	StartedAt      time.Time  `gorm:"not null" json:"started_at"`
	FinishedAt     *time.Time `json:"finished_at,omitempty"`
	LastActivityAt time.Time  `gorm:"not null;index:idx_sessions_last_activity" json:"last_activity_at"`
}

// IsFinished возвращает true, если сессия уже завершена.
func (s *Session) IsFinished() bool {
	return s.FinishedAt != nil
}

// TableName определяет имя таблицы для GORM
func (Session) TableName() string {
	return "sessions"
}
