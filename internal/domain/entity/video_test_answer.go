package entity

import (
	"time"
)

// VideoTestAnswer представляет ответ пользователя по одному эпизоду сессии.
// Создаётся ровно один раз при отправке сессии и далее неизменяем.
type VideoTestAnswer struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	SessionID       uint      `gorm:"not null;index;uniqueIndex:idx_session_clip" json:"session_id"`
	VideoClipID     uint      `gorm:"not null;index;uniqueIndex:idx_session_clip" json:"video_clip_id"`
	PlayOnNoOffence bool      `gorm:"not null;default:false" json:"play_on_no_offence"`
	RestartTagID    *uint     `json:"restart_tag_id,omitempty"`
	SanctionTagID   *uint     `json:"sanction_tag_id,omitempty"`
	CriteriaTagIDs  UintArray `gorm:"type:jsonb;not null" json:"criteria_tag_ids"`
	IsCorrect       bool      `gorm:"not null;default:false" json:"is_correct"`
	IsPartial       bool      `gorm:"not null;default:false" json:"is_partial"`
	CreatedAt       time.Time `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (VideoTestAnswer) TableName() string {
	return "video_test_answers"
}

// HasDecisionTags проверяет, выбрал ли пользователь хоть один тег решения
func (a *VideoTestAnswer) HasDecisionTags() bool {
	return a.RestartTagID != nil || a.SanctionTagID != nil || len(a.CriteriaTagIDs) > 0
}

// ReferencedTagIDs возвращает все ID тегов, упомянутые в ответе.
// Используется для батч-резолва имён тегов в сводке.
func (a *VideoTestAnswer) ReferencedTagIDs() []uint {
	ids := make([]uint, 0, len(a.CriteriaTagIDs)+2)
	if a.RestartTagID != nil {
		ids = append(ids, *a.RestartTagID)
	}
	if a.SanctionTagID != nil {
		ids = append(ids, *a.SanctionTagID)
	}
	ids = append(ids, a.CriteriaTagIDs...)
	return ids
}
