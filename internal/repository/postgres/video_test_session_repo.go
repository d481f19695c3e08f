package postgres

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/danielgol1997-byte/Referee-Website-sub001/internal/domain/entity"
	"github.com/danielgol1997-byte/Referee-Website-sub001/internal/domain/repository"
	apperrors "github.com/danielgol1997-byte/Referee-Website-sub001/internal/pkg/errors"
)

// VideoTestSessionRepo реализует repository.VideoTestSessionRepository
type VideoTestSessionRepo struct {
	db *gorm.DB
}

// NewVideoTestSessionRepo создает новый репозиторий сессий
func NewVideoTestSessionRepo(db *gorm.DB) *VideoTestSessionRepo {
	return &VideoTestSessionRepo{db: db}
}

// Create создает новую сессию
func (r *VideoTestSessionRepo) Create(session *entity.VideoTestSession) error {
	return r.db.Create(session).Error
}

// GetByID возвращает сессию по ID
func (r *VideoTestSessionRepo) GetByID(id uint) (*entity.VideoTestSession, error) {
	var session entity.VideoTestSession
	err := r.db.First(&session, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

// GetWithAnswers возвращает сессию вместе с сохранёнными ответами и тестом
func (r *VideoTestSessionRepo) GetWithAnswers(id uint) (*entity.VideoTestSession, error) {
	var session entity.VideoTestSession
	err := r.db.Preload("Answers").Preload("Test").First(&session, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

// GetByUser возвращает сессии пользователя с пагинацией
func (r *VideoTestSessionRepo) GetByUser(userID uint, limit, offset int) ([]entity.VideoTestSession, int64, error) {
	var sessions []entity.VideoTestSession
	var total int64

	query := r.db.Model(&entity.VideoTestSession{}).Where("user_id = ?", userID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Test").
		Limit(limit).Offset(offset).
		Order("id DESC").
		Find(&sessions).Error
	if err != nil {
		return nil, 0, err
	}

	return sessions, total, nil
}

// GetByTest возвращает завершённые сессии теста с пагинацией
func (r *VideoTestSessionRepo) GetByTest(testID uint, limit, offset int) ([]entity.VideoTestSession, int64, error) {
	var sessions []entity.VideoTestSession
	var total int64

	query := r.db.Model(&entity.VideoTestSession{}).
		Where("video_test_id = ? AND completed_at IS NOT NULL", testID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Limit(limit).Offset(offset).
		Order("completed_at DESC").
		Find(&sessions).Error
	if err != nil {
		return nil, 0, err
	}

	return sessions, total, nil
}

// GetAllCompletedByTest возвращает все завершённые сессии теста вместе с ответами.
// Используется админ-экспортом результатов.
func (r *VideoTestSessionRepo) GetAllCompletedByTest(testID uint) ([]entity.VideoTestSession, error) {
	var sessions []entity.VideoTestSession
	err := r.db.Preload("Answers").
		Where("video_test_id = ? AND completed_at IS NOT NULL", testID).
		Order("completed_at").
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

// CompleteSession атомарно переводит сессию в завершённое состояние.
// Guard "completed_at IS NULL" защищает от гонки двух параллельных отправок:
// выигрывает ровно одна, вторая получает ErrSessionAlreadyCompleted.
func (r *VideoTestSessionRepo) CompleteSession(tx *gorm.DB, sessionID uint, score int, completedAt time.Time) error {
	result := tx.Model(&entity.VideoTestSession{}).
		Where("id = ? AND completed_at IS NULL", sessionID).
		Updates(map[string]interface{}{
			"score":        score,
			"completed_at": completedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repository.ErrSessionAlreadyCompleted
	}
	return nil
}

// SaveAnswers сохраняет ответы сессии батчем в рамках транзакции
func (r *VideoTestSessionRepo) SaveAnswers(tx *gorm.DB, answers []entity.VideoTestAnswer) error {
	if len(answers) == 0 {
		return nil
	}
	err := tx.Create(&answers).Error
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicateAnswer
		}
		return err
	}
	return nil
}

// UpsertCompletion делает upsert отметки о прохождении по ключу (user_id, video_test_id).
// При конфликте обновляются балл, сессия и время прохождения.
func (r *VideoTestSessionRepo) UpsertCompletion(tx *gorm.DB, completion *entity.VideoTestCompletion) error {
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "video_test_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"session_id", "score", "completed_at",
		}),
	}).Create(completion).Error
}

// GetCompletion возвращает отметку о прохождении теста пользователем
func (r *VideoTestSessionRepo) GetCompletion(userID, videoTestID uint) (*entity.VideoTestCompletion, error) {
	var completion entity.VideoTestCompletion
	err := r.db.Where("user_id = ? AND video_test_id = ?", userID, videoTestID).
		First(&completion).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &completion, nil
}
