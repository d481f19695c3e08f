package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// UintArray - пользовательский тип для хранения массива ID в JSONB
type UintArray []uint

// Scan реализует интерфейс sql.Scanner для UintArray
func (o *UintArray) Scan(value interface{}) error {
	if value == nil {
		*o = UintArray{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal JSONB value: expected []byte")
	}

	if len(bytes) == 0 {
		*o = UintArray{}
		return nil
	}

	return json.Unmarshal(bytes, o)
}

// Value реализует интерфейс driver.Valuer для UintArray
func (o UintArray) Value() (driver.Value, error) {
	if o == nil || len(o) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal(o)
}

// Contains проверяет наличие ID в массиве
func (o UintArray) Contains(id uint) bool {
	for _, v := range o {
		if v == id {
			return true
		}
	}
	return false
}

// VideoTestSession представляет одну попытку пользователя пройти видеотест.
// ClipIDs — замороженный перемешанный снимок эпизодов, сделанный при создании
// сессии. Последующие правки теста на сессию не влияют.
type VideoTestSession struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"not null;index" json:"user_id"`
	VideoTestID uint       `gorm:"not null;index" json:"video_test_id"`
	ClipIDs     UintArray  `gorm:"type:jsonb;not null" json:"clip_ids"`
	TotalClips  int        `gorm:"not null;default:0" json:"total_clips"`
	Score       *int       `json:"score,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	Test    *VideoTest        `gorm:"foreignKey:VideoTestID" json:"test,omitempty"`
	Answers []VideoTestAnswer `gorm:"foreignKey:SessionID" json:"answers,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (VideoTestSession) TableName() string {
	return "video_test_sessions"
}

// IsCompleted проверяет, завершена ли сессия. Повторная отправка ответов
// для завершённой сессии запрещена.
func (s *VideoTestSession) IsCompleted() bool {
	return s.CompletedAt != nil
}
