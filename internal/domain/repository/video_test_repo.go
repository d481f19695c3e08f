package repository

import (
	"github.com/danielgol1997-byte/Referee-Website-sub001/internal/domain/entity"
	"gorm.io/gorm"
)

// VideoTestFilters определяет фильтры для списков видеотестов
type VideoTestFilters struct {
	Type     string // MANDATORY, PUBLIC, USER
	Search   string // Поиск по названию/описанию
	IsActive *bool  // Фильтр по активности
}

// MandatoryTestStatus аннотирует обязательный тест статусом прохождения пользователем
type MandatoryTestStatus struct {
	Test       entity.VideoTest
	Completion *entity.VideoTestCompletion
}

// VideoTestRepository определяет методы для работы с видеотестами
type VideoTestRepository interface {
	Create(test *entity.VideoTest) error
	GetByID(id uint) (*entity.VideoTest, error)
	// GetWithClips возвращает тест вместе с упорядоченными привязками эпизодов
	GetWithClips(id uint) (*entity.VideoTest, error)
	Update(test *entity.VideoTest) error
	// ReplaceClips атомарно (в рамках tx) заменяет набор эпизодов теста
	ReplaceClips(tx *gorm.DB, testID uint, clips []entity.VideoTestClip) error
	// UpdateInfo точечно обновляет метаданные теста без full Save
	UpdateInfo(tx *gorm.DB, testID uint, updates map[string]interface{}) error
	ListWithFilters(filters VideoTestFilters, limit, offset int) ([]entity.VideoTest, int64, error)
	// GetMandatoryForUser возвращает активные обязательные тесты,
	// аннотированные статусом прохождения данного пользователя
	GetMandatoryForUser(userID uint) ([]MandatoryTestStatus, error)
	// GetAvailableForUser возвращает активные публичные тесты плюс
	// собственные USER-тесты пользователя
	GetAvailableForUser(userID uint) ([]entity.VideoTest, error)
	Delete(id uint) error
}
