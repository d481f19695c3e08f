package repository

import (
	"github.com/danielgol1997-byte/Referee-Website-sub001/internal/domain/entity"
)

// LawQuestionRepository определяет методы для работы с вопросами по Правилам игры
type LawQuestionRepository interface {
	Create(question *entity.LawQuestion) error
	CreateBatch(questions []entity.LawQuestion) error
	GetByID(id uint) (*entity.LawQuestion, error)
	GetByIDs(ids []uint) ([]entity.LawQuestion, error)
	// GetRandomActive возвращает случайную выборку активных вопросов,
	// опционально по конкретному Правилу
	GetRandomActive(limit int, lawNumber string) ([]entity.LawQuestion, error)
	Update(question *entity.LawQuestion) error
	Delete(id uint) error
	CountActive() (int64, error)

	SaveResult(result *entity.LawTestResult) error
	GetUserResults(userID uint, limit, offset int) ([]entity.LawTestResult, int64, error)
}
