package entity

import (
	"time"
)

// Системные категории тегов. Категории restarts/sanction/criteria образуют
// "решение" по эпизоду, category и laws — навигационные.
const (
	TagCategoryRestarts = "restarts"
	TagCategorySanction = "sanction"
	TagCategoryCriteria = "criteria"
	TagCategoryCategory = "category"
	TagCategoryLaws     = "laws"
)

// TagCategory представляет категорию тегов
type TagCategory struct {
	ID                    uint   `gorm:"primaryKey" json:"id"`
	Name                  string `gorm:"size:50;not null;uniqueIndex" json:"name"`
	DisplayName           string `gorm:"size:100;not null;default:''" json:"display_name"`
	AllowsCorrectDecision bool   `gorm:"not null;default:false" json:"allows_correct_decision"`
	HasExternalLinks      bool   `gorm:"not null;default:false" json:"has_external_links"`
	Tags                  []Tag  `gorm:"foreignKey:TagCategoryID" json:"tags,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (TagCategory) TableName() string {
	return "tag_categories"
}

// IsDecisionCategory проверяет, может ли тег этой категории быть правильным ответом
func (c *TagCategory) IsDecisionCategory() bool {
	return c.AllowsCorrectDecision
}

// Tag представляет тег. Каждый тег принадлежит ровно одной категории.
type Tag struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	TagCategoryID uint         `gorm:"not null;index" json:"tag_category_id"`
	Name          string       `gorm:"size:100;not null" json:"name"`
	ExternalLink  string       `gorm:"size:500;not null;default:''" json:"external_link,omitempty"`
	Category      *TagCategory `gorm:"foreignKey:TagCategoryID" json:"category,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Tag) TableName() string {
	return "tags"
}

// CategoryName возвращает имя категории тега (пустая строка, если категория не загружена)
func (t *Tag) CategoryName() string {
	if t.Category == nil {
		return ""
	}
	return t.Category.Name
}
