package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/danielgol1997-byte/Referee-Website-sub001/internal/domain/entity"
	"github.com/danielgol1997-byte/Referee-Website-sub001/internal/domain/repository"
	apperrors "github.com/danielgol1997-byte/Referee-Website-sub001/internal/pkg/errors"
)

// VideoClipRepo реализует repository.VideoClipRepository
type VideoClipRepo struct {
	db *gorm.DB
}

// NewVideoClipRepo создает новый репозиторий видеоэпизодов
func NewVideoClipRepo(db *gorm.DB) *VideoClipRepo {
	return &VideoClipRepo{db: db}
}

// Create создает новый эпизод вместе с ассоциациями тегов
func (r *VideoClipRepo) Create(clip *entity.VideoClip) error {
	return r.db.Create(clip).Error
}

// GetByID возвращает эпизод по ID
func (r *VideoClipRepo) GetByID(id uint) (*entity.VideoClip, error) {
	var clip entity.VideoClip
	err := r.db.First(&clip, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &clip, nil
}

// GetWithTags возвращает эпизод вместе с ассоциациями тегов и их категориями
func (r *VideoClipRepo) GetWithTags(id uint) (*entity.VideoClip, error) {
	var clip entity.VideoClip
	err := r.db.Preload("ClipTags.Tag.Category").First(&clip, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &clip, nil
}

// GetByIDsWithTags возвращает эпизоды по списку ID вместе с тегами.
// Используется скорингом: один запрос на все эпизоды сессии.
func (r *VideoClipRepo) GetByIDsWithTags(ids []uint) ([]entity.VideoClip, error) {
	if len(ids) == 0 {
		return []entity.VideoClip{}, nil
	}
	var clips []entity.VideoClip
	err := r.db.Preload("ClipTags.Tag.Category").Where("id IN ?", ids).Find(&clips).Error
	if err != nil {
		return nil, err
	}
	return clips, nil
}

// Update обновляет метаданные эпизода
func (r *VideoClipRepo) Update(clip *entity.VideoClip) error {
	return r.db.Save(clip).Error
}

// ReplaceTags заменяет набор ассоциаций тегов эпизода.
// Удаление и вставка выполняются в одной транзакции.
func (r *VideoClipRepo) ReplaceTags(clipID uint, tags []entity.VideoClipTag) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("video_clip_id = ?", clipID).Delete(&entity.VideoClipTag{}).Error; err != nil {
			return err
		}
		if len(tags) == 0 {
			return nil
		}
		for i := range tags {
			tags[i].VideoClipID = clipID
		}
		return tx.Create(&tags).Error
	})
}

// SetActive включает/выключает эпизод (мягкое отключение)
func (r *VideoClipRepo) SetActive(clipID uint, active bool) error {
	result := r.db.Model(&entity.VideoClip{}).
		Where("id = ?", clipID).
		Update("is_active", active)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// ListWithFilters возвращает эпизоды по фильтрам с пагинацией и total count.
// Фильтры комбинируются конъюнктивно.
func (r *VideoClipRepo) ListWithFilters(filters repository.ClipFilters, limit, offset int) ([]entity.VideoClip, int64, error) {
	var clips []entity.VideoClip
	var total int64

	query := r.db.Model(&entity.VideoClip{})

	if filters.Search != "" {
		query = query.Where("title ILIKE ?", "%"+filters.Search+"%")
	}

	if filters.OnlyActive {
		query = query.Where("is_active = ?", true)
	}

	if filters.OnlyFeatured {
		query = query.Where("is_featured = ?", true)
	}

	if len(filters.TagIDs) > 0 {
		query = query.Where(
			"id IN (SELECT video_clip_id FROM video_clip_tags WHERE tag_id IN ?)",
			filters.TagIDs,
		)
	}

	if len(filters.CategoryIDs) > 0 {
		query = query.Where(
			"id IN (SELECT vct.video_clip_id FROM video_clip_tags vct JOIN tags t ON t.id = vct.tag_id WHERE t.tag_category_id IN ?)",
			filters.CategoryIDs,
		)
	}

	if filters.UsedInTests != nil {
		sub := "id IN (SELECT video_clip_id FROM video_test_clips)"
		if *filters.UsedInTests {
			query = query.Where(sub)
		} else {
			query = query.Where("NOT (" + sub + ")")
		}
	}

	// Получаем total count отдельным запросом
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("ClipTags.Tag.Category").
		Limit(limit).Offset(offset).
		Order("id DESC").
		Find(&clips).Error
	if err != nil {
		return nil, 0, err
	}

	return clips, total, nil
}

// Delete удаляет эпизод вместе с ассоциациями тегов
func (r *VideoClipRepo) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("video_clip_id = ?", id).Delete(&entity.VideoClipTag{}).Error; err != nil {
			return err
		}
		return tx.Delete(&entity.VideoClip{}, id).Error
	})
}
