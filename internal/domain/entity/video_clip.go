package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// StringArray - пользовательский тип для работы с JSONB
type StringArray []string

// Scan реализует интерфейс sql.Scanner для StringArray
// Используется GORM для чтения JSONB данных из базы
func (o *StringArray) Scan(value interface{}) error {
	// Обработка NULL значений из базы данных
	if value == nil {
		*o = StringArray{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal JSONB value: expected []byte")
	}

	// Обработка пустого массива байтов
	if len(bytes) == 0 {
		*o = StringArray{}
		return nil
	}

	return json.Unmarshal(bytes, o)
}

// Value реализует интерфейс driver.Valuer для StringArray
// Используется GORM для записи StringArray в JSONB в базе
func (o StringArray) Value() (driver.Value, error) {
	if o == nil || len(o) == 0 {
		return []byte("[]"), nil // Возвращаем пустой JSON массив вместо null
	}
	return json.Marshal(o)
}

// VideoClip представляет видеоэпизод с судейским решением
type VideoClip struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Title       string      `gorm:"size:200;not null" json:"title"`
	FileURL     string      `gorm:"size:500;not null" json:"file_url"`
	DurationSec int         `gorm:"not null;default:0" json:"duration_sec"`
	LawNumbers  StringArray `gorm:"type:jsonb;not null" json:"law_numbers"`
	PlayOn      bool        `gorm:"not null;default:false" json:"play_on"`
	NoOffence   bool        `gorm:"not null;default:false" json:"no_offence"`
	IsActive    bool        `gorm:"not null;default:true;index" json:"is_active"`
	IsFeatured  bool        `gorm:"not null;default:false" json:"is_featured"`

	ClipTags []VideoClipTag `gorm:"foreignKey:VideoClipID" json:"clip_tags,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (VideoClip) TableName() string {
	return "video_clips"
}

// IsPlayOnOrNoOffence проверяет, является ли эпизод эпизодом "play on / no offence".
// Для таких эпизодов правильный ответ — только флаг, без тегов решения.
func (c *VideoClip) IsPlayOnOrNoOffence() bool {
	return c.PlayOn || c.NoOffence
}

// CorrectDecision представляет эталонное решение по эпизоду:
// не более одного тега restart и sanction, любое количество criteria.
type CorrectDecision struct {
	RestartTagID   *uint
	SanctionTagID  *uint
	CriteriaTagIDs []uint
}

// CorrectDecision собирает эталонное решение из ассоциаций с is_correct_decision.
// Требует загруженных ClipTags с Tag.Category.
func (c *VideoClip) CorrectDecision() CorrectDecision {
	var decision CorrectDecision
	for i := range c.ClipTags {
		ct := &c.ClipTags[i]
		if !ct.IsCorrectDecision || ct.Tag == nil {
			continue
		}
		switch ct.Tag.CategoryName() {
		case TagCategoryRestarts:
			if decision.RestartTagID == nil {
				tagID := ct.TagID
				decision.RestartTagID = &tagID
			}
		case TagCategorySanction:
			if decision.SanctionTagID == nil {
				tagID := ct.TagID
				decision.SanctionTagID = &tagID
			}
		case TagCategoryCriteria:
			decision.CriteriaTagIDs = append(decision.CriteriaTagIDs, ct.TagID)
		}
	}
	return decision
}

// VideoClipTag представляет ассоциацию эпизода с тегом.
// Ассоциации с is_correct_decision=true образуют эталонный ответ эпизода.
type VideoClipTag struct {
	ID                uint `gorm:"primaryKey" json:"id"`
	VideoClipID       uint `gorm:"not null;index;uniqueIndex:idx_clip_tag" json:"video_clip_id"`
	TagID             uint `gorm:"not null;index;uniqueIndex:idx_clip_tag" json:"tag_id"`
	IsCorrectDecision bool `gorm:"not null;default:false" json:"is_correct_decision"`
	DecisionOrder     int  `gorm:"not null;default:0" json:"decision_order"`
	Tag               *Tag `gorm:"foreignKey:TagID" json:"tag,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (VideoClipTag) TableName() string {
	return "video_clip_tags"
}
