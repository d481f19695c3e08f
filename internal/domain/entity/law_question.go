package entity

import (
	"time"
)

// LawQuestion представляет вопрос теста по Правилам игры
type LawQuestion struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	Text          string      `gorm:"size:500;not null" json:"text"`
	Options       StringArray `gorm:"type:jsonb;not null" json:"options"`
	CorrectOption int         `gorm:"not null" json:"-"` // Скрыто от клиента
	LawNumber     string      `gorm:"size:10;not null;default:'';index" json:"law_number"`
	IsActive      bool        `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (LawQuestion) TableName() string {
	return "law_questions"
}

// IsCorrect проверяет, является ли выбранный вариант правильным
func (q *LawQuestion) IsCorrect(selectedOption int) bool {
	return selectedOption == q.CorrectOption
}

// OptionsCount возвращает количество вариантов ответа
func (q *LawQuestion) OptionsCount() int {
	return len(q.Options)
}

// IsValidOption проверяет, является ли выбранный вариант допустимым
func (q *LawQuestion) IsValidOption(selectedOption int) bool {
	return selectedOption >= 0 && selectedOption < len(q.Options)
}
