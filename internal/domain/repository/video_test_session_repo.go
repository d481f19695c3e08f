package repository

import (
	"time"

	"github.com/danielgol1997-byte/Referee-Website-sub001/internal/domain/entity"
	"gorm.io/gorm"
)

// VideoTestSessionRepository определяет методы для работы с сессиями,
// ответами и отметками о прохождении
type VideoTestSessionRepository interface {
	Create(session *entity.VideoTestSession) error
	GetByID(id uint) (*entity.VideoTestSession, error)
	// GetWithAnswers возвращает сессию вместе с сохранёнными ответами
	GetWithAnswers(id uint) (*entity.VideoTestSession, error)
	GetByUser(userID uint, limit, offset int) ([]entity.VideoTestSession, int64, error)
	// GetByTest возвращает завершённые сессии теста (для админ-экспорта)
	GetByTest(testID uint, limit, offset int) ([]entity.VideoTestSession, int64, error)
	GetAllCompletedByTest(testID uint) ([]entity.VideoTestSession, error)

	// CompleteSession атомарно переводит сессию в завершённое состояние.
	// Guard "completed_at IS NULL" гарантирует, что повторная отправка
	// не перезапишет результат: RowsAffected == 0 → ErrSessionAlreadyCompleted.
	CompleteSession(tx *gorm.DB, sessionID uint, score int, completedAt time.Time) error

	// SaveAnswers сохраняет ответы сессии батчем (в рамках tx)
	SaveAnswers(tx *gorm.DB, answers []entity.VideoTestAnswer) error

	// UpsertCompletion делает upsert отметки о прохождении обязательного теста
	// по ключу (user_id, video_test_id)
	UpsertCompletion(tx *gorm.DB, completion *entity.VideoTestCompletion) error
	GetCompletion(userID, videoTestID uint) (*entity.VideoTestCompletion, error)
}
