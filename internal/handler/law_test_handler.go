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

// LawTestHandler обрабатывает запросы тестов по Правилам игры
type LawTestHandler struct {
	lawService *service.LawTestService
}

// NewLawTestHandler создает новый обработчик тестов по Правилам
func NewLawTestHandler(lawService *service.LawTestService) *LawTestHandler {
	return &LawTestHandler{lawService: lawService}
}

// StartTest возвращает случайную выборку вопросов.
// GET /api/tests/laws/start?law_number=11
func (h *LawTestHandler) StartTest(c *gin.Context) {
	questions, err := h.lawService.StartTest(c.Query("law_number"))
	if err != nil {
		h.handleLawError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"questions": dto.NewLawQuestionsResponse(questions)})
}

// LawAnswerRequest представляет ответ на один вопрос
type LawAnswerRequest struct {
	QuestionID     uint `json:"question_id" binding:"required"`
	SelectedOption int  `json:"selected_option" binding:"min=0"`
}

// SubmitLawTestRequest представляет отправку теста по Правилам
type SubmitLawTestRequest struct {
	QuestionIDs []uint             `json:"question_ids" binding:"required,min=1"`
	Answers     []LawAnswerRequest `json:"answers" binding:"required"`
}

// SubmitTest принимает ответы и возвращает итог с разбором
func (h *LawTestHandler) SubmitTest(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	var req SubmitLawTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	answers := make([]service.LawAnswerInput, 0, len(req.Answers))
	for _, a := range req.Answers {
		answers = append(answers, service.LawAnswerInput{
			QuestionID:     a.QuestionID,
			SelectedOption: a.SelectedOption,
		})
	}

	outcome, err := h.lawService.SubmitTest(userID, req.QuestionIDs, answers)
	if err != nil {
		h.handleLawError(c, err)
		return
	}

	c.JSON(http.StatusOK, outcome)
}

// GetMyResults возвращает историю результатов текущего пользователя
func (h *LawTestHandler) GetMyResults(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))

	results, total, err := h.lawService.GetUserResults(userID, page, perPage)
	if err != nil {
		h.handleLawError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"results":  dto.NewLawTestResultsResponse(results),
		"total":    total,
		"page":     page,
		"per_page": perPage,
	})
}

// CreateLawQuestionRequest представляет запрос на создание вопроса
type CreateLawQuestionRequest struct {
	Text          string   `json:"text" binding:"required,min=3,max=500"`
	Options       []string `json:"options" binding:"required,min=2,max=5"`
	CorrectOption int      `json:"correct_option" binding:"min=0"`
	LawNumber     string   `json:"law_number" binding:"omitempty,max=10"`
}

// CreateQuestion создает вопрос (админ)
func (h *LawTestHandler) CreateQuestion(c *gin.Context) {
	var req CreateLawQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	question, err := h.lawService.CreateQuestion(req.Text, req.Options, req.CorrectOption, req.LawNumber)
	if err != nil {
		h.handleLawError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewAdminLawQuestionResponse(question))
}

// UpdateLawQuestionRequest представляет запрос на обновление вопроса
type UpdateLawQuestionRequest struct {
	Text          string   `json:"text" binding:"omitempty,min=3,max=500"`
	Options       []string `json:"options" binding:"omitempty,min=2,max=5"`
	CorrectOption int      `json:"correct_option" binding:"min=0"`
	LawNumber     string   `json:"law_number" binding:"omitempty,max=10"`
	IsActive      bool     `json:"is_active"`
}

// UpdateQuestion обновляет вопрос (админ)
func (h *LawTestHandler) UpdateQuestion(c *gin.Context) {
	questionID := c.MustGet("questionID").(uint)

	var req UpdateLawQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	question, err := h.lawService.UpdateQuestion(questionID, req.Text, req.Options, req.CorrectOption, req.LawNumber, req.IsActive)
	if err != nil {
		h.handleLawError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAdminLawQuestionResponse(question))
}

// DeleteQuestion удаляет вопрос (админ)
func (h *LawTestHandler) DeleteQuestion(c *gin.Context) {
	questionID := c.MustGet("questionID").(uint)

	if err := h.lawService.DeleteQuestion(questionID); err != nil {
		h.handleLawError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Question deleted successfully"})
}

// handleLawError преобразует ошибки сервисов в HTTP-ответы
func (h *LawTestHandler) handleLawError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotEnoughQuestions):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		log.Printf("ERROR: Internal server error in LawTestHandler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
