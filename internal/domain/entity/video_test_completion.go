package entity

import (
	"time"
)

// VideoTestCompletion фиксирует факт прохождения ОБЯЗАТЕЛЬНОГО теста.
// Upsert по паре (user_id, video_test_id): хранится только последнее
// прохождение, независимо от количества попыток.
type VideoTestCompletion struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index;uniqueIndex:idx_user_video_test" json:"user_id"`
	VideoTestID uint      `gorm:"not null;index;uniqueIndex:idx_user_video_test" json:"video_test_id"`
	SessionID   uint      `gorm:"not null" json:"session_id"`
	Score       int       `gorm:"not null;default:0" json:"score"`
	CompletedAt time.Time `gorm:"not null" json:"completed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (VideoTestCompletion) TableName() string {
	return "video_test_completions"
}
