package service

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/danielgol1997-byte/Referee-Website-sub001/internal/domain/entity"
	"github.com/danielgol1997-byte/Referee-Website-sub001/internal/domain/repository"
	apperrors "github.com/danielgol1997-byte/Referee-Website-sub001/internal/pkg/errors"
	"github.com/danielgol1997-byte/Referee-Website-sub001/pkg/auth"
)

// AuthService предоставляет методы для аутентификации и регистрации
type AuthService struct {
	userRepo   repository.UserRepository
	jwtService *auth.JWTService
}

// NewAuthService создает новый сервис аутентификации
func NewAuthService(userRepo repository.UserRepository, jwtService *auth.JWTService) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
	}
}

// Register регистрирует нового пользователя
func (s *AuthService) Register(username, email, password string) (*entity.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	username = strings.TrimSpace(username)

	// Проверяем уникальность email
	if _, err := s.userRepo.GetByEmail(email); err == nil {
		return nil, fmt.Errorf("%w: email is already taken", apperrors.ErrValidation)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	// Проверяем уникальность username
	if _, err := s.userRepo.GetByUsername(username); err == nil {
		return nil, fmt.Errorf("%w: username is already taken", apperrors.ErrValidation)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	user := &entity.User{
		Username: username,
		Email:    email,
		Password: password, // Хешируется хуком BeforeSave
		Role:     entity.RoleUser,
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Printf("[AuthService] Зарегистрирован новый пользователь ID=%d, email=%s", user.ID, user.Email)
	return user, nil
}

// Login проверяет учетные данные и возвращает JWT токен
func (s *AuthService) Login(email, password string) (string, *entity.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			// Не раскрываем, что именно неверно: email или пароль
			return "", nil, apperrors.ErrUnauthorized
		}
		return "", nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !user.CheckPassword(password) {
		log.Printf("[AuthService] Неудачная попытка входа для email=%s", email)
		return "", nil, apperrors.ErrUnauthorized
	}

	token, err := s.jwtService.GenerateToken(user)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}

	log.Printf("[AuthService] Пользователь ID=%d вошёл в систему", user.ID)
	return token, user, nil
}

// ChangePassword меняет пароль пользователя после проверки старого
func (s *AuthService) ChangePassword(userID uint, oldPassword, newPassword string) error {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}

	if !user.CheckPassword(oldPassword) {
		return apperrors.ErrUnauthorized
	}

	if err := s.userRepo.UpdatePassword(userID, newPassword); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	log.Printf("[AuthService] Пароль изменён для пользователя ID=%d", userID)
	return nil
}
