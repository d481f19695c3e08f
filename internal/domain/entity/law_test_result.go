package entity

import (
	"time"
)

// LawTestResult представляет итог прохождения теста по Правилам игры
type LawTestResult struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"not null;index" json:"user_id"`
	Score          int       `gorm:"not null;default:0" json:"score"`
	CorrectAnswers int       `gorm:"not null;default:0" json:"correct_answers"`
	TotalQuestions int       `gorm:"not null;default:0" json:"total_questions"`
	QuestionIDs    UintArray `gorm:"type:jsonb;not null" json:"question_ids"`
	CompletedAt    time.Time `gorm:"not null" json:"completed_at"`
	CreatedAt      time.Time `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (LawTestResult) TableName() string {
	return "law_test_results"
}
