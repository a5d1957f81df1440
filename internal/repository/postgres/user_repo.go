package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yourusername/ai-quiz-api/internal/domain/entity"
	apperrors "github.com/yourusername/ai-quiz-api/internal/pkg/errors"
)

// UserRepo реализует repository.UserRepository
type UserRepo struct {
	db *gorm.DB
}

// NewUserRepo создает новый репозиторий пользователей
func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db: db}
}

// GetByNickname возвращает пользователя по никнейму
func (r *UserRepo) GetByNickname(nickname string) (*entity.User, error) {
	var user entity.User
	err := r.db.Where("nickname = ?", nickname).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetLeaderboard возвращает пользователей с хоть какой-то активностью,
// отсортированных по правильным ответам, затем по отвеченным, затем по
// последнему визиту. Никнейм — детерминированный тай-брейк при полном равенстве.
func (r *UserRepo) GetLeaderboard(limit int) ([]entity.User, error) {
	var users []entity.User
	err := r.db.
		Where("total_answered > 0 OR total_correct > 0 OR attempts > 0").
		Order("total_correct DESC, total_answered DESC, last_seen_at DESC, nickname ASC").
		Limit(limit).
		Find(&users).Error
	return users, err
}
