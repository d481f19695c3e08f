package repository

import (
	"github.com/danielgol1997-byte/Referee-Website-sub001/internal/domain/entity"
)

// TagCategoryRepository определяет методы для работы с категориями тегов
type TagCategoryRepository interface {
	Create(category *entity.TagCategory) error
	GetByID(id uint) (*entity.TagCategory, error)
	GetByName(name string) (*entity.TagCategory, error)
	// ListWithTags возвращает все категории вместе с тегами (для таксономии)
	ListWithTags() ([]entity.TagCategory, error)
	Update(category *entity.TagCategory) error
	Delete(id uint) error
}

// TagRepository определяет методы для работы с тегами
type TagRepository interface {
	Create(tag *entity.Tag) error
	GetByID(id uint) (*entity.Tag, error)
	// GetByIDs возвращает теги по списку ID одним запросом (батч-резолв имён)
	GetByIDs(ids []uint) ([]entity.Tag, error)
	GetByCategoryID(categoryID uint) ([]entity.Tag, error)
	Update(tag *entity.Tag) error
	Delete(id uint) error
}
