package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/danielgol1997-byte/Referee-Website-sub001/internal/domain/entity"
	"github.com/danielgol1997-byte/Referee-Website-sub001/internal/domain/repository"
	"github.com/danielgol1997-byte/Referee-Website-sub001/internal/handler/dto"
	apperrors "github.com/danielgol1997-byte/Referee-Website-sub001/internal/pkg/errors"
	"github.com/danielgol1997-byte/Referee-Website-sub001/internal/service"
)

// VideoClipHandler обрабатывает админ-запросы кураторства эпизодов
type VideoClipHandler struct {
	clipService *service.VideoClipService
}

// NewVideoClipHandler создает новый обработчик эпизодов
func NewVideoClipHandler(clipService *service.VideoClipService) *VideoClipHandler {
	return &VideoClipHandler{clipService: clipService}
}

// ClipTagRequest представляет одну ассоциацию тега в запросе
type ClipTagRequest struct {
	TagID             uint `json:"tag_id" binding:"required"`
	IsCorrectDecision bool `json:"is_correct_decision"`
	DecisionOrder     int  `json:"decision_order"`
}

// CreateClipRequest представляет запрос на создание эпизода
type CreateClipRequest struct {
	Title       string           `json:"title" binding:"required,min=3,max=200"`
	FileURL     string           `json:"file_url" binding:"required,url,max=500"`
	DurationSec int              `json:"duration_sec" binding:"omitempty,min=1"`
	LawNumbers  []string         `json:"law_numbers"`
	PlayOn      bool             `json:"play_on"`
	NoOffence   bool             `json:"no_offence"`
	IsFeatured  bool             `json:"is_featured"`
	Tags        []ClipTagRequest `json:"tags"`
}

// CreateClip обрабатывает запрос на создание эпизода
func (h *VideoClipHandler) CreateClip(c *gin.Context) {
	var req CreateClipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	clip := &entity.VideoClip{
		Title:       req.Title,
		FileURL:     req.FileURL,
		DurationSec: req.DurationSec,
		LawNumbers:  entity.StringArray(req.LawNumbers),
		PlayOn:      req.PlayOn,
		NoOffence:   req.NoOffence,
		IsActive:    true,
		IsFeatured:  req.IsFeatured,
	}

	created, err := h.clipService.CreateClip(clip, toClipTagInputs(req.Tags))
	if err != nil {
		h.handleClipError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewAdminClipResponse(created))
}

// UpdateClipRequest представляет запрос на обновление эпизода
type UpdateClipRequest struct {
	Title       string            `json:"title" binding:"omitempty,min=3,max=200"`
	FileURL     string            `json:"file_url" binding:"omitempty,url,max=500"`
	DurationSec int               `json:"duration_sec" binding:"omitempty,min=1"`
	LawNumbers  []string          `json:"law_numbers"`
	PlayOn      bool              `json:"play_on"`
	NoOffence   bool              `json:"no_offence"`
	IsFeatured  bool              `json:"is_featured"`
	Tags        *[]ClipTagRequest `json:"tags"` // nil = теги не менять
}

// UpdateClip обрабатывает запрос на обновление эпизода
func (h *VideoClipHandler) UpdateClip(c *gin.Context) {
	clipID := c.MustGet("clipID").(uint)

	var req UpdateClipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated := &entity.VideoClip{
		Title:       req.Title,
		FileURL:     req.FileURL,
		DurationSec: req.DurationSec,
		PlayOn:      req.PlayOn,
		NoOffence:   req.NoOffence,
		IsFeatured:  req.IsFeatured,
	}
	if req.LawNumbers != nil {
		updated.LawNumbers = entity.StringArray(req.LawNumbers)
	}

	var tagInputs []service.ClipTagInput
	if req.Tags != nil {
		tagInputs = toClipTagInputs(*req.Tags)
		if tagInputs == nil {
			tagInputs = []service.ClipTagInput{}
		}
	}

	clip, err := h.clipService.UpdateClip(clipID, updated, tagInputs)
	if err != nil {
		h.handleClipError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAdminClipResponse(clip))
}

// GetClip возвращает эпизод со всеми данными решения
func (h *VideoClipHandler) GetClip(c *gin.Context) {
	clipID := c.MustGet("clipID").(uint)

	clip, err := h.clipService.GetClip(clipID)
	if err != nil {
		h.handleClipError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAdminClipResponse(clip))
}

// ListClips возвращает эпизоды по фильтрам с пагинацией.
// GET /api/admin/clips?search=&category_ids=1,2&tag_ids=3&only_active=true&used_in_tests=false&page=1&per_page=20
func (h *VideoClipHandler) ListClips(c *gin.Context) {
	filters := repository.ClipFilters{
		Search:       c.Query("search"),
		CategoryIDs:  parseUintList(c.Query("category_ids")),
		TagIDs:       parseUintList(c.Query("tag_ids")),
		OnlyActive:   c.Query("only_active") == "true",
		OnlyFeatured: c.Query("only_featured") == "true",
	}
	if v := c.Query("used_in_tests"); v != "" {
		used := v == "true"
		filters.UsedInTests = &used
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))

	clips, total, err := h.clipService.ListClips(filters, page, perPage)
	if err != nil {
		h.handleClipError(c, err)
		return
	}

	responses := make([]*dto.AdminClipResponse, 0, len(clips))
	for i := range clips {
		responses = append(responses, dto.NewAdminClipResponse(&clips[i]))
	}

	c.JSON(http.StatusOK, dto.PaginatedClipsResponse{
		Clips:   responses,
		Total:   total,
		Page:    page,
		PerPage: perPage,
	})
}

// SetClipActiveRequest представляет запрос на включение/выключение эпизода
type SetClipActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// SetClipActive включает/выключает эпизод
func (h *VideoClipHandler) SetClipActive(c *gin.Context) {
	clipID := c.MustGet("clipID").(uint)

	var req SetClipActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.clipService.SetClipActive(clipID, *req.IsActive); err != nil {
		h.handleClipError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Clip updated successfully"})
}

// DeleteClip удаляет эпизод
func (h *VideoClipHandler) DeleteClip(c *gin.Context) {
	clipID := c.MustGet("clipID").(uint)

	if err := h.clipService.DeleteClip(clipID); err != nil {
		h.handleClipError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Clip deleted successfully"})
}

// toClipTagInputs преобразует запрос в формат сервиса
func toClipTagInputs(tags []ClipTagRequest) []service.ClipTagInput {
	if len(tags) == 0 {
		return nil
	}
	inputs := make([]service.ClipTagInput, 0, len(tags))
	for _, t := range tags {
		inputs = append(inputs, service.ClipTagInput{
			TagID:             t.TagID,
			IsCorrectDecision: t.IsCorrectDecision,
			DecisionOrder:     t.DecisionOrder,
		})
	}
	return inputs
}

// parseUintList разбирает список ID из query-параметра вида "1,2,3"
func parseUintList(raw string) []uint {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]uint, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 32)
		if err != nil {
			continue
		}
		ids = append(ids, uint(v))
	}
	return ids
}

// handleClipError преобразует ошибки сервисов в HTTP-ответы
func (h *VideoClipHandler) handleClipError(c *gin.Context, err error) {
	if errors.Is(err, apperrors.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrValidation) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	} else {
		log.Printf("ERROR: Internal server error in VideoClipHandler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
