package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/danielgol1997-byte/Referee-Website-sub001/internal/domain/entity"
	apperrors "github.com/danielgol1997-byte/Referee-Website-sub001/internal/pkg/errors"
)

// LawQuestionRepo реализует repository.LawQuestionRepository
type LawQuestionRepo struct {
	db *gorm.DB
}

// NewLawQuestionRepo создает новый репозиторий вопросов по Правилам игры
func NewLawQuestionRepo(db *gorm.DB) *LawQuestionRepo {
	return &LawQuestionRepo{db: db}
}

// Create создает новый вопрос
func (r *LawQuestionRepo) Create(question *entity.LawQuestion) error {
	return r.db.Create(question).Error
}

// CreateBatch создает несколько вопросов одним запросом
func (r *LawQuestionRepo) CreateBatch(questions []entity.LawQuestion) error {
	if len(questions) == 0 {
		return nil
	}
	return r.db.Create(&questions).Error
}

// GetByID возвращает вопрос по ID
func (r *LawQuestionRepo) GetByID(id uint) (*entity.LawQuestion, error) {
	var question entity.LawQuestion
	err := r.db.First(&question, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &question, nil
}

// GetByIDs возвращает вопросы по списку ID одним запросом
func (r *LawQuestionRepo) GetByIDs(ids []uint) ([]entity.LawQuestion, error) {
	if len(ids) == 0 {
		return []entity.LawQuestion{}, nil
	}
	var questions []entity.LawQuestion
	err := r.db.Where("id IN ?", ids).Find(&questions).Error
	if err != nil {
		return nil, err
	}
	return questions, nil
}

// GetRandomActive возвращает случайную выборку активных вопросов.
// Случайность выборки обеспечивается на стороне БД.
func (r *LawQuestionRepo) GetRandomActive(limit int, lawNumber string) ([]entity.LawQuestion, error) {
	var questions []entity.LawQuestion
	query := r.db.Where("is_active = ?", true)
	if lawNumber != "" {
		query = query.Where("law_number = ?", lawNumber)
	}
	err := query.Order("RANDOM()").Limit(limit).Find(&questions).Error
	if err != nil {
		return nil, err
	}
	return questions, nil
}

// Update обновляет вопрос
func (r *LawQuestionRepo) Update(question *entity.LawQuestion) error {
	return r.db.Save(question).Error
}

// Delete удаляет вопрос
func (r *LawQuestionRepo) Delete(id uint) error {
	return r.db.Delete(&entity.LawQuestion{}, id).Error
}

// CountActive возвращает количество активных вопросов
func (r *LawQuestionRepo) CountActive() (int64, error) {
	var count int64
	err := r.db.Model(&entity.LawQuestion{}).Where("is_active = ?", true).Count(&count).Error
	return count, err
}

// SaveResult сохраняет результат прохождения теста по Правилам
func (r *LawQuestionRepo) SaveResult(result *entity.LawTestResult) error {
	return r.db.Create(result).Error
}

// GetUserResults возвращает результаты пользователя с пагинацией
func (r *LawQuestionRepo) GetUserResults(userID uint, limit, offset int) ([]entity.LawTestResult, int64, error) {
	var results []entity.LawTestResult
	var total int64

	query := r.db.Model(&entity.LawTestResult{}).Where("user_id = ?", userID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Limit(limit).Offset(offset).
		Order("completed_at DESC").
		Find(&results).Error
	if err != nil {
		return nil, 0, err
	}

	return results, total, nil
}
