package entity

import (
	"time"
)

// Answer представляет текущий ответ пользователя на один вопрос в рамках сессии.
// Уникален по (session_id, qid): повторная отправка перезаписывает строку,
// а изменение вердикта корректирует счетчики сессии.
type Answer struct {
	SessionID  string    `gorm:"type:uuid;primaryKey" json:"session_id"`
	QuestionID string    `gorm:"column:qid;size:50;primaryKey" json:"qid"`
	Ok         bool      `gorm:"not null" json:"ok"`
	Answer     string    `gorm:"type:text;not null" json:"answer"`
	Feedback   string    `gorm:"type:text;not null" json:"feedback"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Answer) TableName() string {
	return "answers"
}
