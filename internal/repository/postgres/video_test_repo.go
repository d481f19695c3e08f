package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/danielgol1997-byte/Referee-Website-sub001/internal/domain/entity"
	"github.com/danielgol1997-byte/Referee-Website-sub001/internal/domain/repository"
	apperrors "github.com/danielgol1997-byte/Referee-Website-sub001/internal/pkg/errors"
)

// VideoTestRepo реализует repository.VideoTestRepository
type VideoTestRepo struct {
	db *gorm.DB
}

// NewVideoTestRepo создает новый репозиторий видеотестов
func NewVideoTestRepo(db *gorm.DB) *VideoTestRepo {
	return &VideoTestRepo{db: db}
}

// Create создает новый тест вместе с привязками эпизодов
func (r *VideoTestRepo) Create(test *entity.VideoTest) error {
	return r.db.Create(test).Error
}

// GetByID возвращает тест по ID
func (r *VideoTestRepo) GetByID(id uint) (*entity.VideoTest, error) {
	var test entity.VideoTest
	err := r.db.First(&test, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &test, nil
}

// GetWithClips возвращает тест вместе с привязками эпизодов,
// упорядоченными по позиции
func (r *VideoTestRepo) GetWithClips(id uint) (*entity.VideoTest, error) {
	var test entity.VideoTest
	err := r.db.Preload("TestClips", func(db *gorm.DB) *gorm.DB {
		return db.Order("video_test_clips.position")
	}).Preload("TestClips.Clip").First(&test, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &test, nil
}

// Update обновляет тест
func (r *VideoTestRepo) Update(test *entity.VideoTest) error {
	return r.db.Save(test).Error
}

// ReplaceClips заменяет набор эпизодов теста в рамках переданной транзакции.
// Позиции проставляются по порядку следования в срезе.
func (r *VideoTestRepo) ReplaceClips(tx *gorm.DB, testID uint, clips []entity.VideoTestClip) error {
	if err := tx.Where("video_test_id = ?", testID).Delete(&entity.VideoTestClip{}).Error; err != nil {
		return err
	}
	if len(clips) == 0 {
		return nil
	}
	for i := range clips {
		clips[i].VideoTestID = testID
		clips[i].Position = i
	}
	return tx.Create(&clips).Error
}

// UpdateInfo точечно обновляет метаданные теста в рамках транзакции
func (r *VideoTestRepo) UpdateInfo(tx *gorm.DB, testID uint, updates map[string]interface{}) error {
	result := tx.Model(&entity.VideoTest{}).Where("id = ?", testID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// ListWithFilters возвращает тесты по фильтрам с пагинацией и total count
func (r *VideoTestRepo) ListWithFilters(filters repository.VideoTestFilters, limit, offset int) ([]entity.VideoTest, int64, error) {
	var tests []entity.VideoTest
	var total int64

	query := r.db.Model(&entity.VideoTest{})

	if filters.Type != "" {
		query = query.Where("type = ?", filters.Type)
	}

	if filters.Search != "" {
		query = query.Where("name ILIKE ? OR description ILIKE ?",
			"%"+filters.Search+"%", "%"+filters.Search+"%")
	}

	if filters.IsActive != nil {
		query = query.Where("is_active = ?", *filters.IsActive)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("TestClips").
		Limit(limit).Offset(offset).
		Order("id DESC").
		Find(&tests).Error
	if err != nil {
		return nil, 0, err
	}

	return tests, total, nil
}

// GetMandatoryForUser возвращает активные обязательные тесты,
// аннотированные отметками о прохождении данного пользователя
func (r *VideoTestRepo) GetMandatoryForUser(userID uint) ([]repository.MandatoryTestStatus, error) {
	var tests []entity.VideoTest
	err := r.db.Where("type = ? AND is_active = ?", entity.VideoTestTypeMandatory, true).
		Order("due_date NULLS LAST, id").
		Find(&tests).Error
	if err != nil {
		return nil, err
	}

	if len(tests) == 0 {
		return []repository.MandatoryTestStatus{}, nil
	}

	testIDs := make([]uint, 0, len(tests))
	for _, t := range tests {
		testIDs = append(testIDs, t.ID)
	}

	var completions []entity.VideoTestCompletion
	err = r.db.Where("user_id = ? AND video_test_id IN ?", userID, testIDs).
		Find(&completions).Error
	if err != nil {
		return nil, err
	}

	completionByTest := make(map[uint]*entity.VideoTestCompletion, len(completions))
	for i := range completions {
		completionByTest[completions[i].VideoTestID] = &completions[i]
	}

	statuses := make([]repository.MandatoryTestStatus, 0, len(tests))
	for _, t := range tests {
		statuses = append(statuses, repository.MandatoryTestStatus{
			Test:       t,
			Completion: completionByTest[t.ID],
		})
	}
	return statuses, nil
}

// GetAvailableForUser возвращает активные публичные тесты плюс
// собственные USER-тесты пользователя
func (r *VideoTestRepo) GetAvailableForUser(userID uint) ([]entity.VideoTest, error) {
	var tests []entity.VideoTest
	err := r.db.Where("is_active = ? AND (type = ? OR (type = ? AND created_by_id = ?))",
		true, entity.VideoTestTypePublic, entity.VideoTestTypeUser, userID).
		Order("id DESC").
		Find(&tests).Error
	if err != nil {
		return nil, err
	}
	return tests, nil
}

// Delete удаляет тест вместе с привязками эпизодов
func (r *VideoTestRepo) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("video_test_id = ?", id).Delete(&entity.VideoTestClip{}).Error; err != nil {
			return err
		}
		return tx.Delete(&entity.VideoTest{}, id).Error
	})
}
