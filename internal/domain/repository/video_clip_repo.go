package repository

import (
	"github.com/danielgol1997-byte/Referee-Website-sub001/internal/domain/entity"
)

// ClipFilters определяет фильтры для поиска эпизодов.
// Фильтры комбинируются конъюнктивно.
type ClipFilters struct {
	Search       string // Поиск по названию
	CategoryIDs  []uint // Членство в категориях тегов
	TagIDs       []uint // Членство в тегах
	OnlyActive   bool   // Только активные эпизоды
	OnlyFeatured bool   // Только featured
	UsedInTests  *bool  // true = используются в тестах, false = не используются
}

// VideoClipRepository определяет методы для работы с видеоэпизодами
type VideoClipRepository interface {
	Create(clip *entity.VideoClip) error
	GetByID(id uint) (*entity.VideoClip, error)
	// GetWithTags возвращает эпизод вместе с ассоциациями тегов и их категориями
	GetWithTags(id uint) (*entity.VideoClip, error)
	// GetByIDsWithTags возвращает эпизоды по списку ID вместе с тегами (для скоринга)
	GetByIDsWithTags(ids []uint) ([]entity.VideoClip, error)
	Update(clip *entity.VideoClip) error
	// ReplaceTags заменяет набор ассоциаций тегов эпизода
	ReplaceTags(clipID uint, tags []entity.VideoClipTag) error
	// SetActive включает/выключает эпизод (мягкое отключение)
	SetActive(clipID uint, active bool) error
	// ListWithFilters возвращает эпизоды по фильтрам с пагинацией и total count
	ListWithFilters(filters ClipFilters, limit, offset int) ([]entity.VideoClip, int64, error)
	Delete(id uint) error
}
