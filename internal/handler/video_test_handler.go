package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/danielgol1997-byte/Referee-Website-sub001/internal/domain/entity"
	"github.com/danielgol1997-byte/Referee-Website-sub001/internal/domain/repository"
	"github.com/danielgol1997-byte/Referee-Website-sub001/internal/handler/dto"
	apperrors "github.com/danielgol1997-byte/Referee-Website-sub001/internal/pkg/errors"
	"github.com/danielgol1997-byte/Referee-Website-sub001/internal/service"
)

// VideoTestHandler обрабатывает запросы видеотестов: прохождение и кураторство
type VideoTestHandler struct {
	testService *service.VideoTestService
}

// NewVideoTestHandler создает новый обработчик видеотестов
func NewVideoTestHandler(testService *service.VideoTestService) *VideoTestHandler {
	return &VideoTestHandler{testService: testService}
}

// ---------------------------------------------------------------------------
// Пользовательские маршруты
// ---------------------------------------------------------------------------

// GetMandatoryTests возвращает обязательные тесты со статусом прохождения
func (h *VideoTestHandler) GetMandatoryTests(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	statuses, err := h.testService.GetMandatoryTests(userID)
	if err != nil {
		h.handleTestError(c, err)
		return
	}

	responses := make([]*dto.MandatoryTestResponse, 0, len(statuses))
	for i := range statuses {
		responses = append(responses, dto.NewMandatoryTestResponse(&statuses[i]))
	}

	c.JSON(http.StatusOK, gin.H{"tests": responses})
}

// GetAvailableTests возвращает публичные тесты и собственные тесты пользователя
func (h *VideoTestHandler) GetAvailableTests(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	tests, err := h.testService.GetAvailableTests(userID)
	if err != nil {
		h.handleTestError(c, err)
		return
	}

	responses := make([]*dto.VideoTestResponse, 0, len(tests))
	for i := range tests {
		responses = append(responses, dto.NewVideoTestResponse(&tests[i]))
	}

	c.JSON(http.StatusOK, gin.H{"tests": responses})
}

// CreateUserTestRequest представляет запрос на создание пользовательского теста
type CreateUserTestRequest struct {
	Name            string                   `json:"name" binding:"required,min=3,max=150"`
	Description     string                   `json:"description" binding:"omitempty,max=500"`
	PassingScore    int                      `json:"passing_score" binding:"omitempty,min=0,max=100"`
	MaxViewsPerClip int                      `json:"max_views_per_clip" binding:"omitempty,min=0"`
	ClipIDs         []uint                   `json:"clip_ids"`
	AdminFilters    *dto.AdminFiltersRequest `json:"admin_filters"`
}

// CreateUserTest создает тест типа USER от имени текущего пользователя
func (h *VideoTestHandler) CreateUserTest(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	var req CreateUserTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	test, err := h.testService.CreateTest(userID, service.CreateTestInput{
		Name:            req.Name,
		Description:     req.Description,
		Type:            entity.VideoTestTypeUser,
		PassingScore:    req.PassingScore,
		MaxViewsPerClip: req.MaxViewsPerClip,
		ClipIDs:         req.ClipIDs,
		AdminFilters:    req.AdminFilters.ToEntity(),
	})
	if err != nil {
		h.handleTestError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewVideoTestResponse(test))
}

// StartSession начинает новую сессию прохождения теста
func (h *VideoTestHandler) StartSession(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	testID := c.MustGet("testID").(uint)

	session, err := h.testService.StartSession(userID, testID)
	if err != nil {
		h.handleTestError(c, err)
		return
	}

	// Отдаём сессию вместе с эпизодами в замороженном порядке
	session, clips, err := h.testService.GetSessionClips(userID, session.ID)
	if err != nil {
		h.handleTestError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewSessionResponse(session, clips))
}

// GetSession возвращает сессию с эпизодами
func (h *VideoTestHandler) GetSession(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	sessionID := c.MustGet("sessionID").(uint)

	session, clips, err := h.testService.GetSessionClips(userID, sessionID)
	if err != nil {
		h.handleTestError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSessionResponse(session, clips))
}

// GetMySessions возвращает сессии текущего пользователя
func (h *VideoTestHandler) GetMySessions(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))

	sessions, total, err := h.testService.GetUserSessions(userID, page, perPage)
	if err != nil {
		h.handleTestError(c, err)
		return
	}

	responses := make([]*dto.SessionResponse, 0, len(sessions))
	for i := range sessions {
		responses = append(responses, dto.NewSessionResponse(&sessions[i], nil))
	}

	c.JSON(http.StatusOK, gin.H{
		"sessions": responses,
		"total":    total,
		"page":     page,
		"per_page": perPage,
	})
}

// RegisterClipView учитывает просмотр эпизода в рамках сессии
func (h *VideoTestHandler) RegisterClipView(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	sessionID := c.MustGet("sessionID").(uint)
	clipID := c.MustGet("clipID").(uint)

	remaining, err := h.testService.RegisterClipView(userID, sessionID, clipID)
	if err != nil {
		if errors.Is(err, service.ErrViewLimitExceeded) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "error_type": "view_limit_exceeded"})
			return
		}
		h.handleTestError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"remaining_views": remaining})
}

// SubmitAnswerRequest представляет ответ по одному эпизоду
type SubmitAnswerRequest struct {
	VideoClipID     uint   `json:"video_clip_id" binding:"required"`
	PlayOnNoOffence bool   `json:"play_on_no_offence"`
	RestartTagID    *uint  `json:"restart_tag_id"`
	SanctionTagID   *uint  `json:"sanction_tag_id"`
	CriteriaTagIDs  []uint `json:"criteria_tag_ids"`
}

// SubmitAnswersRequest представляет отправку ответов сессии
type SubmitAnswersRequest struct {
	Answers []SubmitAnswerRequest `json:"answers" binding:"required"`
}

// SubmitAnswers принимает ответы и завершает сессию
func (h *VideoTestHandler) SubmitAnswers(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	sessionID := c.MustGet("sessionID").(uint)

	var req SubmitAnswersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	inputs := make([]service.AnswerInput, 0, len(req.Answers))
	for _, a := range req.Answers {
		inputs = append(inputs, service.AnswerInput{
			VideoClipID:     a.VideoClipID,
			PlayOnNoOffence: a.PlayOnNoOffence,
			RestartTagID:    a.RestartTagID,
			SanctionTagID:   a.SanctionTagID,
			CriteriaTagIDs:  a.CriteriaTagIDs,
		})
	}

	outcome, err := h.testService.SubmitAnswers(userID, sessionID, inputs)
	if err != nil {
		h.handleTestError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSubmitResultResponse(outcome.Session, outcome.CorrectCount, outcome.PartialCount))
}

// GetSessionSummary возвращает сводку по завершённой сессии
func (h *VideoTestHandler) GetSessionSummary(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	sessionID := c.MustGet("sessionID").(uint)

	summary, err := h.testService.GetSessionSummary(userID, sessionID)
	if err != nil {
		h.handleTestError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// ---------------------------------------------------------------------------
// Админ-маршруты
// ---------------------------------------------------------------------------

// CreateTestRequest представляет запрос на создание теста
type CreateTestRequest struct {
	Name            string                   `json:"name" binding:"required,min=3,max=150"`
	Description     string                   `json:"description" binding:"omitempty,max=500"`
	Type            string                   `json:"type" binding:"required"`
	PassingScore    int                      `json:"passing_score" binding:"omitempty,min=0,max=100"`
	MaxViewsPerClip int                      `json:"max_views_per_clip" binding:"omitempty,min=0"`
	DueDate         *time.Time               `json:"due_date"`
	ClipIDs         []uint                   `json:"clip_ids"`
	AdminFilters    *dto.AdminFiltersRequest `json:"admin_filters"`
}

// CreateTest создает новый тест (админ)
func (h *VideoTestHandler) CreateTest(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	var req CreateTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	test, err := h.testService.CreateTest(userID, service.CreateTestInput{
		Name:            req.Name,
		Description:     req.Description,
		Type:            req.Type,
		PassingScore:    req.PassingScore,
		MaxViewsPerClip: req.MaxViewsPerClip,
		DueDate:         req.DueDate,
		ClipIDs:         req.ClipIDs,
		AdminFilters:    req.AdminFilters.ToEntity(),
	})
	if err != nil {
		h.handleTestError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewVideoTestResponse(test))
}

// UpdateTestRequest представляет запрос на обновление метаданных теста
type UpdateTestRequest struct {
	Name            *string    `json:"name" binding:"omitempty,min=3,max=150"`
	Description     *string    `json:"description" binding:"omitempty,max=500"`
	PassingScore    *int       `json:"passing_score" binding:"omitempty,min=0,max=100"`
	MaxViewsPerClip *int       `json:"max_views_per_clip" binding:"omitempty,min=0"`
	DueDate         *time.Time `json:"due_date"`
	IsActive        *bool      `json:"is_active"`
}

// UpdateTest обновляет метаданные теста (админ)
func (h *VideoTestHandler) UpdateTest(c *gin.Context) {
	testID := c.MustGet("testID").(uint)

	var req UpdateTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.PassingScore != nil {
		updates["passing_score"] = *req.PassingScore
	}
	if req.MaxViewsPerClip != nil {
		updates["max_views_per_clip"] = *req.MaxViewsPerClip
	}
	if req.DueDate != nil {
		updates["due_date"] = *req.DueDate
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	test, err := h.testService.UpdateTestInfo(testID, updates)
	if err != nil {
		h.handleTestError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewVideoTestResponse(test))
}

// ReplaceClipsRequest представляет запрос на замену эпизодов теста
type ReplaceClipsRequest struct {
	ClipIDs []uint `json:"clip_ids" binding:"required,min=1"`
}

// ReplaceClips заменяет набор эпизодов теста (админ)
func (h *VideoTestHandler) ReplaceClips(c *gin.Context) {
	testID := c.MustGet("testID").(uint)

	var req ReplaceClipsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	test, err := h.testService.ReplaceTestClips(testID, req.ClipIDs)
	if err != nil {
		h.handleTestError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewVideoTestResponse(test))
}

// ResampleClips пересобирает эпизоды теста по сохранённым фильтрам (админ)
func (h *VideoTestHandler) ResampleClips(c *gin.Context) {
	testID := c.MustGet("testID").(uint)

	test, err := h.testService.ResampleTestClips(testID)
	if err != nil {
		h.handleTestError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewVideoTestResponse(test))
}

// ListTests возвращает тесты по фильтрам (админ)
func (h *VideoTestHandler) ListTests(c *gin.Context) {
	filters := repository.VideoTestFilters{
		Type:   c.Query("type"),
		Search: c.Query("search"),
	}
	if v := c.Query("is_active"); v != "" {
		active := v == "true"
		filters.IsActive = &active
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))

	tests, total, err := h.testService.ListTests(filters, page, perPage)
	if err != nil {
		h.handleTestError(c, err)
		return
	}

	responses := make([]*dto.VideoTestResponse, 0, len(tests))
	for i := range tests {
		responses = append(responses, dto.NewVideoTestResponse(&tests[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"tests":    responses,
		"total":    total,
		"page":     page,
		"per_page": perPage,
	})
}

// GetTest возвращает тест с эпизодами (админ)
func (h *VideoTestHandler) GetTest(c *gin.Context) {
	testID := c.MustGet("testID").(uint)

	test, err := h.testService.GetTest(testID)
	if err != nil {
		h.handleTestError(c, err)
		return
	}

	resp := dto.NewVideoTestResponse(test)
	clips := make([]*dto.AdminClipResponse, 0, len(test.TestClips))
	for i := range test.TestClips {
		if test.TestClips[i].Clip != nil {
			clips = append(clips, dto.NewAdminClipResponse(test.TestClips[i].Clip))
		}
	}

	c.JSON(http.StatusOK, gin.H{"test": resp, "clips": clips})
}

// DeleteTest удаляет тест (админ)
func (h *VideoTestHandler) DeleteTest(c *gin.Context) {
	testID := c.MustGet("testID").(uint)

	if err := h.testService.DeleteTest(testID); err != nil {
		h.handleTestError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Test deleted successfully"})
}

// handleTestError преобразует ошибки сервисов в HTTP-ответы
func (h *VideoTestHandler) handleTestError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrSessionAlreadyCompleted):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "error_type": "session_completed"})
	case errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrTestNotAvailable), errors.Is(err, service.ErrTestHasNoClips):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		log.Printf("ERROR: Internal server error in VideoTestHandler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
