package postgres

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yourusername/ai-quiz-api/internal/domain/entity"
	"github.com/yourusername/ai-quiz-api/internal/domain/repository"
	apperrors "github.com/yourusername/ai-quiz-api/internal/pkg/errors"
)

// SessionRepo реализует repository.SessionRepository
type SessionRepo struct {
	db *gorm.DB
}

// NewSessionRepo создает новый репозиторий сессий
func NewSessionRepo(db *gorm.DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// Create создает сессию для пользователя (get-or-create по никнейму).
// Счетчик attempts и last_seen_at обновляются в той же транзакции;
// attempts инкрементируется только для публичных сессий.
func (r *SessionRepo) Create(nickname string, total, passScore int, quizID string, isPublic bool) (*entity.Session, *entity.User, error) {
	var session entity.Session
	var user entity.User

	err := r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("nickname = ?", nickname).First(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			user = entity.User{Nickname: nickname, LastSeenAt: time.Now()}
			if err := tx.Create(&user).Error; err != nil {
				return fmt.Errorf("не удалось создать пользователя: %w", err)
			}
		} else if err != nil {
			return err
		}

		updates := map[string]interface{}{"last_seen_at": time.Now()}
		if isPublic {
			updates["attempts"] = gorm.Expr("attempts + 1")
		}
		if err := tx.Model(&entity.User{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
			return fmt.Errorf("не удалось обновить счетчики пользователя: %w", err)
		}

		now := time.Now()
		session = entity.Session{
			ID:             uuid.NewString(),
			UserID:         user.ID,
			QuizID:         quizID,
			Total:          total,
			PassScore:      passScore,
			IsPublic:       isPublic,
			StartedAt:      now,
			LastActivityAt: now,
		}
		if err := tx.Create(&session).Error; err != nil {
			return fmt.Errorf("не удалось создать сессию: %w", err)
		}

		// Перечитываем пользователя, чтобы вернуть актуальные счетчики
		return tx.First(&user, user.ID).Error
	})
	if err != nil {
		return nil, nil, err
	}

	log.Printf("[SessionRepo.Create] Создана сессия %s для пользователя %d (public=%t)", session.ID, user.ID, isPublic)
	return &session, &user, nil
}

// GetMeta возвращает сессию вместе с никнеймом владельца
func (r *SessionRepo) GetMeta(id string) (*repository.SessionMeta, error) {
	var meta repository.SessionMeta
	err := r.db.Model(&entity.Session{}).
		Select("sessions.*, users.nickname").
		Joins("JOIN users ON users.id = sessions.user_id").
		Where("sessions.id = ?", id).
		First(&meta).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &meta, nil
}

// computeAnswerDeltas возвращает поправки к счетчикам answered/correct при
// применении нового вердикта поверх предыдущего состояния ответа на вопрос.
// Changed=false означает, что ответ на вопрос уже был с тем же вердиктом.
func computeAnswerDeltas(prevExists, prevOK, ok bool) (dAnswered, dCorrect int, changed bool) {
	if !prevExists {
		dAnswered = 1
		if ok {
			dCorrect = 1
		}
		return dAnswered, dCorrect, true
	}
	if prevOK == ok {
		return 0, 0, false
	}
	if ok {
		return 0, 1, true
	}
	return 0, -1, true
}

// ApplyAnswer сохраняет/перезаписывает ответ на вопрос и атомарно корректирует
// счетчики сессии. Для публичных сессий в той же транзакции корректируются
// накопительные счетчики пользователя; для приватных обновляется только last_seen_at.
func (r *SessionRepo) ApplyAnswer(sessionID, questionID, answerText string, ok bool, feedback string) (*repository.ApplyAnswerResult, error) {
	var result repository.ApplyAnswerResult

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var session entity.Session
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", sessionID).
			First(&session).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrNotFound
			}
			return err
		}

		var prev entity.Answer
		prevExists := true
		err = tx.Where("session_id = ? AND qid = ?", sessionID, questionID).First(&prev).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			prevExists = false
		} else if err != nil {
			return err
		}

		dAnswered, dCorrect, changed := computeAnswerDeltas(prevExists, prev.Ok, ok)

		// Текст и фидбек перезаписываются всегда, даже если вердикт не изменился
		answer := entity.Answer{
			SessionID:  sessionID,
			QuestionID: questionID,
			Ok:         ok,
			Answer:     answerText,
			Feedback:   feedback,
			UpdatedAt:  time.Now(),
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}, {Name: "qid"}},
			DoUpdates: clause.AssignmentColumns([]string{"ok", "answer", "feedback", "updated_at"}),
		}).Create(&answer).Error; err != nil {
			return fmt.Errorf("не удалось сохранить ответ: %w", err)
		}

		now := time.Now()
		if err := tx.Model(&entity.Session{}).Where("id = ?", sessionID).Updates(map[string]interface{}{
			"answered":         gorm.Expr("GREATEST(0, answered + ?)", dAnswered),
			"correct":          gorm.Expr("GREATEST(0, correct + ?)", dCorrect),
			"last_activity_at": now,
		}).Error; err != nil {
			return fmt.Errorf("не удалось обновить счетчики сессии: %w", err)
		}

		userUpdates := map[string]interface{}{"last_seen_at": now}
		if session.IsPublic && changed {
			userUpdates["total_answered"] = gorm.Expr("GREATEST(0, total_answered + ?)", dAnswered)
			userUpdates["total_correct"] = gorm.Expr("GREATEST(0, total_correct + ?)", dCorrect)
		}
		if err := tx.Model(&entity.User{}).Where("id = ?", session.UserID).Updates(userUpdates).Error; err != nil {
			return fmt.Errorf("не удалось обновить счетчики пользователя: %w", err)
		}

		// Перечитываем сессию, чтобы вернуть счетчики после применения клампов
		if err := tx.First(&session, "id = ?", sessionID).Error; err != nil {
			return err
		}

		result = repository.ApplyAnswerResult{
			Correct:   session.Correct,
			Answered:  session.Answered,
			Total:     session.Total,
			PassScore: session.PassScore,
			Changed:   changed,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// Finish идемпотентно выставляет finished_at: повторный вызов не сбрасывает
// момент первого завершения.
func (r *SessionRepo) Finish(id string) error {
	now := time.Now()
	res := r.db.Model(&entity.Session{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"finished_at":      gorm.Expr("COALESCE(finished_at, ?)", now),
			"last_activity_at": now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
