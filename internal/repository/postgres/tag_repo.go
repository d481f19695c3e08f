package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/danielgol1997-byte/Referee-Website-sub001/internal/domain/entity"
	apperrors "github.com/danielgol1997-byte/Referee-Website-sub001/internal/pkg/errors"
)

// TagCategoryRepo реализует repository.TagCategoryRepository
type TagCategoryRepo struct {
	db *gorm.DB
}

// NewTagCategoryRepo создает новый репозиторий категорий тегов
func NewTagCategoryRepo(db *gorm.DB) *TagCategoryRepo {
	return &TagCategoryRepo{db: db}
}

// Create создает новую категорию
func (r *TagCategoryRepo) Create(category *entity.TagCategory) error {
	return r.db.Create(category).Error
}

// GetByID возвращает категорию по ID
func (r *TagCategoryRepo) GetByID(id uint) (*entity.TagCategory, error) {
	var category entity.TagCategory
	err := r.db.First(&category, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &category, nil
}

// GetByName возвращает категорию по системному имени
func (r *TagCategoryRepo) GetByName(name string) (*entity.TagCategory, error) {
	var category entity.TagCategory
	err := r.db.Where("name = ?", name).First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &category, nil
}

// ListWithTags возвращает все категории вместе с тегами
func (r *TagCategoryRepo) ListWithTags() ([]entity.TagCategory, error) {
	var categories []entity.TagCategory
	err := r.db.Preload("Tags", func(db *gorm.DB) *gorm.DB {
		return db.Order("tags.name")
	}).Order("id").Find(&categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

// Update обновляет категорию
func (r *TagCategoryRepo) Update(category *entity.TagCategory) error {
	return r.db.Save(category).Error
}

// Delete удаляет категорию
func (r *TagCategoryRepo) Delete(id uint) error {
	return r.db.Delete(&entity.TagCategory{}, id).Error
}

// TagRepo реализует repository.TagRepository
type TagRepo struct {
	db *gorm.DB
}

// NewTagRepo создает новый репозиторий тегов
func NewTagRepo(db *gorm.DB) *TagRepo {
	return &TagRepo{db: db}
}

// Create создает новый тег
func (r *TagRepo) Create(tag *entity.Tag) error {
	return r.db.Create(tag).Error
}

// GetByID возвращает тег по ID вместе с категорией
func (r *TagRepo) GetByID(id uint) (*entity.Tag, error) {
	var tag entity.Tag
	err := r.db.Preload("Category").First(&tag, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &tag, nil
}

// GetByIDs возвращает теги по списку ID одним запросом
func (r *TagRepo) GetByIDs(ids []uint) ([]entity.Tag, error) {
	if len(ids) == 0 {
		return []entity.Tag{}, nil
	}
	var tags []entity.Tag
	err := r.db.Preload("Category").Where("id IN ?", ids).Find(&tags).Error
	if err != nil {
		return nil, err
	}
	return tags, nil
}

// GetByCategoryID возвращает теги категории
func (r *TagRepo) GetByCategoryID(categoryID uint) ([]entity.Tag, error) {
	var tags []entity.Tag
	err := r.db.Where("tag_category_id = ?", categoryID).Order("name").Find(&tags).Error
	if err != nil {
		return nil, err
	}
	return tags, nil
}

// Update обновляет тег
func (r *TagRepo) Update(tag *entity.Tag) error {
	return r.db.Save(tag).Error
}

// Delete удаляет тег
func (r *TagRepo) Delete(id uint) error {
	return r.db.Delete(&entity.Tag{}, id).Error
}
