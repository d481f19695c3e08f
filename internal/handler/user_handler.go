package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/danielgol1997-byte/Referee-Website-sub001/internal/handler/dto"
	apperrors "github.com/danielgol1997-byte/Referee-Website-sub001/internal/pkg/errors"
	"github.com/danielgol1997-byte/Referee-Website-sub001/internal/service"
)

// UserHandler обрабатывает запросы, связанные с пользователями
type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler создает новый обработчик пользователей
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// ListUsers возвращает список пользователей (админка)
func (h *UserHandler) ListUsers(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	pageSize, err := strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if err != nil || pageSize < 1 {
		pageSize = 20
	} else if pageSize > 100 {
		pageSize = 100
	}

	users, err := h.userService.ListUsers(page, pageSize)
	if err != nil {
		log.Printf("ERROR: Internal server error in UserHandler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	result := make([]*dto.UserResponse, 0, len(users))
	for i := range users {
		result = append(result, dto.NewUserResponse(&users[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"users":    result,
		"page":     page,
		"per_page": pageSize,
	})
}

// GetUser возвращает профиль пользователя по ID (админка)
func (h *UserHandler) GetUser(c *gin.Context) {
	userID := c.MustGet("userID").(uint)

	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		log.Printf("ERROR: Internal server error in UserHandler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}
