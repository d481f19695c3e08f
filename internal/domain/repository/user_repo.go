package repository

import (
	"github.com/danielgol1997-byte/Referee-Website-sub001/internal/domain/entity"
)

// UserRepository определяет методы для работы с пользователями
type UserRepository interface {
	Create(user *entity.User) error
	GetByID(id uint) (*entity.User, error)
	GetByEmail(email string) (*entity.User, error)
	GetByUsername(username string) (*entity.User, error)
	Update(user *entity.User) error
	UpdatePassword(userID uint, newPassword string) error
	// IncrementVideoTestsDone атомарно увеличивает счётчик пройденных видеотестов
	IncrementVideoTestsDone(userID uint) error
	// IncrementLawTestsDone атомарно увеличивает счётчик пройденных тестов по Правилам
	IncrementLawTestsDone(userID uint) error
	List(limit, offset int) ([]entity.User, error)
}
