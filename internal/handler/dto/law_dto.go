package dto

import (
	"time"

	"github.com/danielgol1997-byte/Referee-Website-sub001/internal/domain/entity"
	"github.com/danielgol1997-byte/Referee-Website-sub001/internal/handler/helper"
)

// LawQuestionResponse представляет вопрос теста по Правилам для клиента.
// Правильный вариант не отдается.
type LawQuestionResponse struct {
	ID        uint                    `json:"id"`
	Text      string                  `json:"text"`
	Options   []helper.QuestionOption `json:"options"`
	LawNumber string                  `json:"law_number,omitempty"`
}

// NewLawQuestionResponse создает DTO для вопроса
func NewLawQuestionResponse(q *entity.LawQuestion) LawQuestionResponse {
	return LawQuestionResponse{
		ID:        q.ID,
		Text:      q.Text,
		Options:   helper.ConvertOptionsToObjects(q.Options),
		LawNumber: q.LawNumber,
	}
}

// NewLawQuestionsResponse создает DTO для списка вопросов
func NewLawQuestionsResponse(questions []entity.LawQuestion) []LawQuestionResponse {
	result := make([]LawQuestionResponse, 0, len(questions))
	for i := range questions {
		result = append(result, NewLawQuestionResponse(&questions[i]))
	}
	return result
}

// AdminLawQuestionResponse представляет вопрос со всеми данными (админка)
type AdminLawQuestionResponse struct {
	ID            uint                    `json:"id"`
	Text          string                  `json:"text"`
	Options       []helper.QuestionOption `json:"options"`
	CorrectOption int                     `json:"correct_option"`
	LawNumber     string                  `json:"law_number,omitempty"`
	IsActive      bool                    `json:"is_active"`
	CreatedAt     time.Time               `json:"created_at"`
}

// NewAdminLawQuestionResponse создает DTO вопроса с правильным вариантом
func NewAdminLawQuestionResponse(q *entity.LawQuestion) *AdminLawQuestionResponse {
	return &AdminLawQuestionResponse{
		ID:            q.ID,
		Text:          q.Text,
		Options:       helper.ConvertOptionsToObjects(q.Options),
		CorrectOption: q.CorrectOption,
		LawNumber:     q.LawNumber,
		IsActive:      q.IsActive,
		CreatedAt:     q.CreatedAt,
	}
}

// LawTestResultResponse представляет сохранённый результат теста по Правилам
type LawTestResultResponse struct {
	ID             uint      `json:"id"`
	Score          int       `json:"score"`
	CorrectAnswers int       `json:"correct_answers"`
	TotalQuestions int       `json:"total_questions"`
	CompletedAt    time.Time `json:"completed_at"`
}

// NewLawTestResultsResponse создает DTO для истории результатов
func NewLawTestResultsResponse(results []entity.LawTestResult) []LawTestResultResponse {
	out := make([]LawTestResultResponse, 0, len(results))
	for _, r := range results {
		out = append(out, LawTestResultResponse{
			ID:             r.ID,
			Score:          r.Score,
			CorrectAnswers: r.CorrectAnswers,
			TotalQuestions: r.TotalQuestions,
			CompletedAt:    r.CompletedAt,
		})
	}
	return out
}
