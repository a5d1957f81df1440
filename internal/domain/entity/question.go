package entity

import "strings"

// Question представляет один вопрос корпуса (questions.json).
// Корпус неизменяем на все время жизни процесса и не хранится в БД.
type Question struct {
	ID       string `json:"id"`
	Question string `json:"question"`
}

// IsValid возвращает true, если запись корпуса пригодна к выдаче.
func (q *Question) IsValid() bool {
	return q.ID != "" && strings.TrimSpace(q.Question) != ""
}
