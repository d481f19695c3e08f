package service

import (
	"fmt"

	"github.com/danielgol1997-byte/Referee-Website-sub001/internal/domain/entity"
	"github.com/danielgol1997-byte/Referee-Website-sub001/internal/domain/repository"
)

// UserService предоставляет методы для работы с пользователями
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService создает новый сервис пользователей
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// GetUserByID возвращает пользователя по ID
func (s *UserService) GetUserByID(id uint) (*entity.User, error) {
	return s.userRepo.GetByID(id)
}

// ListUsers возвращает список пользователей с пагинацией (для админки)
func (s *UserService) ListUsers(page, pageSize int) ([]entity.User, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize
	users, err := s.userRepo.List(pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}
