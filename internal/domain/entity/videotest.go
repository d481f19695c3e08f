package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Типы видеотестов
const (
	VideoTestTypeMandatory = "MANDATORY"
	VideoTestTypePublic    = "PUBLIC"
	VideoTestTypeUser      = "USER"
)

// AdminFilters описывает фильтр-дескриптор, по которому набираются эпизоды теста.
// Хранится в JSONB рядом с тестом, чтобы админ мог пересобрать набор эпизодов.
type AdminFilters struct {
	Search       string `json:"search,omitempty"`
	CategoryIDs  []uint `json:"category_ids,omitempty"`
	TagIDs       []uint `json:"tag_ids,omitempty"`
	OnlyActive   bool   `json:"only_active,omitempty"`
	OnlyFeatured bool   `json:"only_featured,omitempty"`
	Limit        int    `json:"limit,omitempty"`
}

// Scan реализует интерфейс sql.Scanner для AdminFilters
func (f *AdminFilters) Scan(value interface{}) error {
	if value == nil {
		*f = AdminFilters{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal JSONB value: expected []byte")
	}

	if len(bytes) == 0 {
		*f = AdminFilters{}
		return nil
	}

	return json.Unmarshal(bytes, f)
}

// Value реализует интерфейс driver.Valuer для AdminFilters
func (f AdminFilters) Value() (driver.Value, error) {
	return json.Marshal(f)
}

// IsEmpty проверяет, задан ли хоть один фильтр
func (f AdminFilters) IsEmpty() bool {
	return f.Search == "" && len(f.CategoryIDs) == 0 && len(f.TagIDs) == 0 &&
		!f.OnlyActive && !f.OnlyFeatured && f.Limit == 0
}

// VideoTest представляет именованный набор видеоэпизодов с настройками оценивания
type VideoTest struct {
	ID              uint          `gorm:"primaryKey" json:"id"`
	Name            string        `gorm:"size:150;not null" json:"name"`
	Description     string        `gorm:"size:500;not null;default:''" json:"description"`
	Type            string        `gorm:"size:20;not null;default:'PUBLIC';index" json:"type"`
	PassingScore    int           `gorm:"not null;default:0" json:"passing_score"`
	MaxViewsPerClip int           `gorm:"not null;default:0" json:"max_views_per_clip"` // 0 = без лимита
	DueDate         *time.Time    `gorm:"index" json:"due_date,omitempty"`
	IsActive        bool          `gorm:"not null;default:true;index" json:"is_active"`
	CreatedByID     uint          `gorm:"not null;index" json:"created_by_id"`
	AdminFilters    *AdminFilters `gorm:"type:jsonb" json:"admin_filters,omitempty"`

	TestClips []VideoTestClip `gorm:"foreignKey:VideoTestID" json:"test_clips,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (VideoTest) TableName() string {
	return "video_tests"
}

// IsMandatory проверяет, является ли тест обязательным
func (t *VideoTest) IsMandatory() bool {
	return t.Type == VideoTestTypeMandatory
}

// IsUserType проверяет, является ли тест пользовательским
func (t *VideoTest) IsUserType() bool {
	return t.Type == VideoTestTypeUser
}

// ClipIDs возвращает ID эпизодов теста в сохранённом порядке
func (t *VideoTest) ClipIDs() []uint {
	ids := make([]uint, 0, len(t.TestClips))
	for _, tc := range t.TestClips {
		ids = append(ids, tc.VideoClipID)
	}
	return ids
}

// IsValidVideoTestType проверяет допустимость типа теста
func IsValidVideoTestType(testType string) bool {
	return testType == VideoTestTypeMandatory ||
		testType == VideoTestTypePublic ||
		testType == VideoTestTypeUser
}

// VideoTestClip представляет упорядоченную привязку эпизода к тесту
type VideoTestClip struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	VideoTestID uint       `gorm:"not null;index;uniqueIndex:idx_test_clip" json:"video_test_id"`
	VideoClipID uint       `gorm:"not null;index;uniqueIndex:idx_test_clip" json:"video_clip_id"`
	Position    int        `gorm:"not null;default:0" json:"position"`
	Clip        *VideoClip `gorm:"foreignKey:VideoClipID" json:"clip,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (VideoTestClip) TableName() string {
	return "video_test_clips"
}
