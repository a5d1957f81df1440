package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/ai-quiz-api/internal/domain/entity"
	"github.com/yourusername/ai-quiz-api/internal/domain/repository"
	apperrors "github.com/yourusername/ai-quiz-api/internal/pkg/errors"
)

// Границы параметра limit лидерборда
const (
	leaderboardMinLimit     = 1
	leaderboardMaxLimit     = 200
	leaderboardDefaultLimit = 50
)

// leaderboardCacheKey — единый снапшот топ-200; нарезается под запрошенный limit
const (
	leaderboardCacheKey = "leaderboard:snapshot"
	leaderboardCacheTTL = 15 * time.Second
)

// Grader — часть GraderService, нужная сессионному сервису.
type Grader interface {
	Grade(ctx context.Context, question, userAnswer string) GradeVerdict
	ComposeFinalFeedback(ctx context.Context, correct, answered, total, passScore int) FinalFeedback
}

// AnswerOutcome — вердикт по ответу вместе со счетчиками сессии после применения
type AnswerOutcome struct {
	Verdict  GradeVerdict
	Counters repository.ApplyAnswerResult
}

// FinishOutcome — состояние завершенной сессии и итоговый отзыв
type FinishOutcome struct {
	Meta     repository.SessionMeta
	Feedback FinalFeedback
}

// SessionService управляет жизненным циклом сессий квиза: создание,
// оценка и применение ответов, завершение, лидерборд.
type SessionService struct {
	sessionRepo  repository.SessionRepository
	userRepo     repository.UserRepository
	questionRepo repository.QuestionRepository
	cacheRepo    repository.CacheRepository
	grader       Grader
	passScore    int
	defaultQuiz  string
}

// NewSessionService создает новый сервис сессий
func NewSessionService(
	sessionRepo repository.SessionRepository,
	userRepo repository.UserRepository,
	questionRepo repository.QuestionRepository,
	cacheRepo repository.CacheRepository,
	grader Grader,
	passScore int,
	defaultQuizID string,
) *SessionService {
	return &SessionService{
		sessionRepo:  sessionRepo,
		userRepo:     userRepo,
		questionRepo: questionRepo,
		cacheRepo:    cacheRepo,
		grader:       grader,
		passScore:    passScore,
		defaultQuiz:  defaultQuizID,
	}
}

// normalizeNickname схлопывает внутренние пробелы и обрезает края
func normalizeNickname(nickname string) string {
	return strings.Join(strings.Fields(nickname), " ")
}

// guestNickname генерирует никнейм гостя вида guest-a1b2c3d4.
// 8 hex-символов случайности достаточно: коллизия просто попадает
// в get-or-create по никнейму и переиспользует существующего пользователя.
func guestNickname() string {
	return fmt.Sprintf("guest-%s", strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// StartSession создает новую сессию. Пустой никнейм превращается в гостевой,
// а гостевые сессии принудительно приватны: гость не попадает в лидерборд.
func (s *SessionService) StartSession(nickname, quizID string, isPublic bool) (*entity.Session, *entity.User, error) {
	nickname = normalizeNickname(nickname)
	if nickname == "" {
		nickname = guestNickname()
		isPublic = false
	}
	if quizID = strings.TrimSpace(quizID); quizID == "" {
		quizID = s.defaultQuiz
	}

	session, user, err := s.sessionRepo.Create(nickname, s.questionRepo.Count(), s.passScore, quizID, isPublic)
	if err != nil {
		return nil, nil, err
	}

	// attempts участвует в фильтре активности лидерборда
	if isPublic {
		s.invalidateLeaderboard()
	}
	return session, user, nil
}

// GetSession возвращает сессию с никнеймом владельца
func (s *SessionService) GetSession(id string) (*repository.SessionMeta, error) {
	return s.sessionRepo.GetMeta(id)
}

// SubmitAnswer оценивает ответ на вопрос и применяет вердикт к сессии.
// Повторный ответ на тот же вопрос перезаписывает предыдущий.
func (s *SessionService) SubmitAnswer(ctx context.Context, sessionID, questionID, answerText string) (*AnswerOutcome, error) {
	if strings.TrimSpace(answerText) == "" {
		return nil, fmt.Errorf("%w: answer must not be empty", apperrors.ErrValidation)
	}

	meta, err := s.sessionRepo.GetMeta(sessionID)
	if err != nil {
		return nil, err
	}

	question, err := s.questionRepo.GetByID(questionID)
	if err != nil {
		return nil, err
	}

	verdict := s.grader.Grade(ctx, question.Question, answerText)

	counters, err := s.sessionRepo.ApplyAnswer(sessionID, questionID, answerText, verdict.Ok, verdict.Feedback)
	if err != nil {
		return nil, err
	}

	if meta.IsPublic && counters.Changed {
		s.invalidateLeaderboard()
	}

	return &AnswerOutcome{Verdict: verdict, Counters: *counters}, nil
}

// FinishSession идемпотентно завершает сессию и собирает итоговый отзыв
func (s *SessionService) FinishSession(ctx context.Context, id string) (*FinishOutcome, error) {
	if err := s.sessionRepo.Finish(id); err != nil {
		return nil, err
	}

	meta, err := s.sessionRepo.GetMeta(id)
	if err != nil {
		return nil, err
	}

	feedback := s.grader.ComposeFinalFeedback(ctx, meta.Correct, meta.Answered, meta.Total, meta.PassScore)
	return &FinishOutcome{Meta: *meta, Feedback: feedback}, nil
}

// GradeAnswer оценивает ответ на вопрос корпуса без привязки к сессии
func (s *SessionService) GradeAnswer(ctx context.Context, questionID, answerText string) (*GradeVerdict, error) {
	if strings.TrimSpace(answerText) == "" {
		return nil, fmt.Errorf("%w: answer must not be empty", apperrors.ErrValidation)
	}

	question, err := s.questionRepo.GetByID(questionID)
	if err != nil {
		return nil, err
	}

	verdict := s.grader.Grade(ctx, question.Question, answerText)
	return &verdict, nil
}

// ComposeFinalFeedback собирает итоговый отзыв по счетчикам, присланным без
// сессии. Размер корпуса на сервере — источник истины для total.
func (s *SessionService) ComposeFinalFeedback(ctx context.Context, correct, answered int) FinalFeedback {
	return s.grader.ComposeFinalFeedback(ctx, correct, answered, s.questionRepo.Count(), s.passScore)
}

// UserStats возвращает накопительную статистику пользователя по никнейму
func (s *SessionService) UserStats(nickname string) (*entity.User, error) {
	nickname = normalizeNickname(nickname)
	if nickname == "" {
		return nil, fmt.Errorf("%w: nickname must not be empty", apperrors.ErrValidation)
	}
	return s.userRepo.GetByNickname(nickname)
}

// Leaderboard возвращает топ пользователей. limit зажимается в [1, 200];
// нулевое значение трактуется как limit по умолчанию. Снапшот топ-200
// кешируется в Redis и нарезается под запрошенный limit.
func (s *SessionService) Leaderboard(limit int) ([]entity.User, error) {
	if limit == 0 {
		limit = leaderboardDefaultLimit
	}
	if limit < leaderboardMinLimit {
		limit = leaderboardMinLimit
	} else if limit > leaderboardMaxLimit {
		limit = leaderboardMaxLimit
	}

	var snapshot []entity.User
	if err := s.cacheRepo.GetJSON(leaderboardCacheKey, &snapshot); err == nil {
		if len(snapshot) > limit {
			snapshot = snapshot[:limit]
		}
		return snapshot, nil
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		log.Printf("[SessionService.Leaderboard] Ошибка чтения кеша: %v", err)
	}

	snapshot, err := s.userRepo.GetLeaderboard(leaderboardMaxLimit)
	if err != nil {
		return nil, err
	}

	if err := s.cacheRepo.SetJSON(leaderboardCacheKey, snapshot, leaderboardCacheTTL); err != nil {
		log.Printf("[SessionService.Leaderboard] Ошибка записи кеша: %v", err)
	}

	if len(snapshot) > limit {
		snapshot = snapshot[:limit]
	}
	return snapshot, nil
}

func (s *SessionService) invalidateLeaderboard() {
	if err := s.cacheRepo.Delete(leaderboardCacheKey); err != nil {
		log.Printf("[SessionService.invalidateLeaderboard] Ошибка инвалидации кеша: %v", err)
	}
}
