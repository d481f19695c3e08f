package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/danielgol1997-byte/Referee-Website-sub001/internal/handler/dto"
	apperrors "github.com/danielgol1997-byte/Referee-Website-sub001/internal/pkg/errors"
	"github.com/danielgol1997-byte/Referee-Website-sub001/internal/service"
)

// TagHandler обрабатывает запросы таксономии тегов
type TagHandler struct {
	tagService *service.TagService
}

// NewTagHandler создает новый обработчик тегов
func NewTagHandler(tagService *service.TagService) *TagHandler {
	return &TagHandler{tagService: tagService}
}

// GetTaxonomy возвращает все категории с тегами
func (h *TagHandler) GetTaxonomy(c *gin.Context) {
	categories, err := h.tagService.GetTaxonomy()
	if err != nil {
		h.handleTagError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": dto.NewTaxonomyResponse(categories)})
}

// CreateCategoryRequest представляет запрос на создание категории тегов
type CreateCategoryRequest struct {
	Name                  string `json:"name" binding:"required,min=2,max=50"`
	DisplayName           string `json:"display_name" binding:"omitempty,max=100"`
	AllowsCorrectDecision bool   `json:"allows_correct_decision"`
	HasExternalLinks      bool   `json:"has_external_links"`
}

// CreateCategory обрабатывает запрос на создание категории (админ)
func (h *TagHandler) CreateCategory(c *gin.Context) {
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category, err := h.tagService.CreateCategory(req.Name, req.DisplayName, req.AllowsCorrectDecision, req.HasExternalLinks)
	if err != nil {
		h.handleTagError(c, err)
		return
	}

	c.JSON(http.StatusCreated, category)
}

// UpdateCategoryRequest представляет запрос на обновление категории
type UpdateCategoryRequest struct {
	DisplayName           string `json:"display_name" binding:"omitempty,max=100"`
	AllowsCorrectDecision bool   `json:"allows_correct_decision"`
	HasExternalLinks      bool   `json:"has_external_links"`
}

// UpdateCategory обрабатывает запрос на обновление категории (админ)
func (h *TagHandler) UpdateCategory(c *gin.Context) {
	categoryID := c.MustGet("categoryID").(uint)

	var req UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category, err := h.tagService.UpdateCategory(categoryID, req.DisplayName, req.AllowsCorrectDecision, req.HasExternalLinks)
	if err != nil {
		h.handleTagError(c, err)
		return
	}

	c.JSON(http.StatusOK, category)
}

// CreateTagRequest представляет запрос на создание тега
type CreateTagRequest struct {
	TagCategoryID uint   `json:"tag_category_id" binding:"required"`
	Name          string `json:"name" binding:"required,min=1,max=100"`
	ExternalLink  string `json:"external_link" binding:"omitempty,url,max=500"`
}

// CreateTag обрабатывает запрос на создание тега (админ)
func (h *TagHandler) CreateTag(c *gin.Context) {
	var req CreateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tag, err := h.tagService.CreateTag(req.TagCategoryID, req.Name, req.ExternalLink)
	if err != nil {
		h.handleTagError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewTagResponse(tag))
}

// UpdateTagRequest представляет запрос на обновление тега
type UpdateTagRequest struct {
	Name         string `json:"name" binding:"omitempty,min=1,max=100"`
	ExternalLink string `json:"external_link" binding:"omitempty,url,max=500"`
}

// UpdateTag обрабатывает запрос на обновление тега (админ)
func (h *TagHandler) UpdateTag(c *gin.Context) {
	tagID := c.MustGet("tagID").(uint)

	var req UpdateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tag, err := h.tagService.UpdateTag(tagID, req.Name, req.ExternalLink)
	if err != nil {
		h.handleTagError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewTagResponse(tag))
}

// DeleteTag обрабатывает запрос на удаление тега (админ)
func (h *TagHandler) DeleteTag(c *gin.Context) {
	tagID := c.MustGet("tagID").(uint)

	if err := h.tagService.DeleteTag(tagID); err != nil {
		h.handleTagError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Tag deleted successfully"})
}

// handleTagError преобразует ошибки сервисов в HTTP-ответы
func (h *TagHandler) handleTagError(c *gin.Context, err error) {
	if errors.Is(err, apperrors.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrValidation) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	} else {
		log.Printf("ERROR: Internal server error in TagHandler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
