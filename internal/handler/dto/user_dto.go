package dto

import (
	"time"

	"github.com/danielgol1997-byte/Referee-Website-sub001/internal/domain/entity"
)

// UserResponse представляет пользователя в формате для ответа клиенту
type UserResponse struct {
	ID             uint      `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	VideoTestsDone int64     `json:"video_tests_done"`
	LawTestsDone   int64     `json:"law_tests_done"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewUserResponse создает DTO для пользователя
func NewUserResponse(user *entity.User) *UserResponse {
	return &UserResponse{
		ID:             user.ID,
		Username:       user.Username,
		Email:          user.Email,
		VideoTestsDone: user.VideoTestsDone,
		LawTestsDone:   user.LawTestsDone,
		CreatedAt:      user.CreatedAt,
	}
}

// AuthResponse представляет ответ на успешный вход/регистрацию
type AuthResponse struct {
	Token string        `json:"token"`
	User  *UserResponse `json:"user"`
}
