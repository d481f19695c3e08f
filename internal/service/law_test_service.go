package service

import (
	"fmt"
	"log"
	"time"

	"github.com/danielgol1997-byte/Referee-Website-sub001/internal/domain/entity"
	"github.com/danielgol1997-byte/Referee-Website-sub001/internal/domain/repository"
	apperrors "github.com/danielgol1997-byte/Referee-Website-sub001/internal/pkg/errors"
)

// LawAnswerInput описывает ответ на один вопрос теста по Правилам
type LawAnswerInput struct {
	QuestionID     uint
	SelectedOption int
}

// LawQuestionResult — результат по одному вопросу в сводке
type LawQuestionResult struct {
	QuestionID     uint   `json:"question_id"`
	Text           string `json:"text"`
	SelectedOption int    `json:"selected_option"`
	CorrectOption  int    `json:"correct_option"`
	IsCorrect      bool   `json:"is_correct"`
}

// LawTestOutcome — итог прохождения теста по Правилам
type LawTestOutcome struct {
	Score          int                 `json:"score"`
	CorrectAnswers int                 `json:"correct_answers"`
	TotalQuestions int                 `json:"total_questions"`
	Passed         bool                `json:"passed"`
	Results        []LawQuestionResult `json:"results"`
}

// LawTestService предоставляет методы для тестов по Правилам игры
type LawTestService struct {
	questionRepo     repository.LawQuestionRepository
	userRepo         repository.UserRepository
	questionsPerTest int
	passingScore     int
}

// NewLawTestService создает новый сервис тестов по Правилам
func NewLawTestService(
	questionRepo repository.LawQuestionRepository,
	userRepo repository.UserRepository,
	questionsPerTest int,
	passingScore int,
) *LawTestService {
	if questionsPerTest <= 0 {
		questionsPerTest = 20
	}
	if passingScore <= 0 || passingScore > 100 {
		passingScore = 70
	}
	return &LawTestService{
		questionRepo:     questionRepo,
		userRepo:         userRepo,
		questionsPerTest: questionsPerTest,
		passingScore:     passingScore,
	}
}

// StartTest возвращает случайную выборку активных вопросов.
// Правильные варианты скрыты от клиента на уровне сериализации сущности.
func (s *LawTestService) StartTest(lawNumber string) ([]entity.LawQuestion, error) {
	questions, err := s.questionRepo.GetRandomActive(s.questionsPerTest, lawNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to get law questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, ErrNotEnoughQuestions
	}
	return questions, nil
}

// SubmitTest оценивает ответы и сохраняет результат.
// Ответы на неизвестные вопросы игнорируются, вопросы без ответа считаются
// неверными.
func (s *LawTestService) SubmitTest(userID uint, questionIDs []uint, answers []LawAnswerInput) (*LawTestOutcome, error) {
	if len(questionIDs) == 0 {
		return nil, fmt.Errorf("%w: question_ids are required", apperrors.ErrValidation)
	}

	questions, err := s.questionRepo.GetByIDs(questionIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions: %w", err)
	}
	questionByID := make(map[uint]*entity.LawQuestion, len(questions))
	for i := range questions {
		questionByID[questions[i].ID] = &questions[i]
	}

	answerByQuestion := make(map[uint]int, len(answers))
	for _, a := range answers {
		if _, known := questionByID[a.QuestionID]; !known {
			continue
		}
		if _, dup := answerByQuestion[a.QuestionID]; dup {
			continue
		}
		answerByQuestion[a.QuestionID] = a.SelectedOption
	}

	results := make([]LawQuestionResult, 0, len(questionIDs))
	correctCount := 0
	for _, qid := range questionIDs {
		question, ok := questionByID[qid]
		if !ok {
			continue
		}

		selected, answered := answerByQuestion[qid]
		if !answered {
			selected = -1
		}

		isCorrect := answered && question.IsValidOption(selected) && question.IsCorrect(selected)
		if isCorrect {
			correctCount++
		}

		results = append(results, LawQuestionResult{
			QuestionID:     qid,
			Text:           question.Text,
			SelectedOption: selected,
			CorrectOption:  question.CorrectOption,
			IsCorrect:      isCorrect,
		})
	}

	total := len(results)
	if total == 0 {
		return nil, fmt.Errorf("%w: no valid questions in submission", apperrors.ErrValidation)
	}

	score := correctCount * 100 / total

	ids := make(entity.UintArray, 0, total)
	for _, r := range results {
		ids = append(ids, r.QuestionID)
	}

	result := &entity.LawTestResult{
		UserID:         userID,
		Score:          score,
		CorrectAnswers: correctCount,
		TotalQuestions: total,
		QuestionIDs:    ids,
		CompletedAt:    time.Now(),
	}
	if err := s.questionRepo.SaveResult(result); err != nil {
		return nil, fmt.Errorf("failed to save law test result: %w", err)
	}

	if err := s.userRepo.IncrementLawTestsDone(userID); err != nil {
		log.Printf("[LawTestService] Ошибка инкремента счётчика тестов пользователя ID=%d: %v", userID, err)
	}

	log.Printf("[LawTestService] Пользователь ID=%d завершил тест по Правилам: %d%% (%d из %d)",
		userID, score, correctCount, total)

	return &LawTestOutcome{
		Score:          score,
		CorrectAnswers: correctCount,
		TotalQuestions: total,
		Passed:         score >= s.passingScore,
		Results:        results,
	}, nil
}

// GetUserResults возвращает историю результатов пользователя
func (s *LawTestService) GetUserResults(userID uint, page, pageSize int) ([]entity.LawTestResult, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize
	return s.questionRepo.GetUserResults(userID, pageSize, offset)
}

// CreateQuestion создает вопрос (админ)
func (s *LawTestService) CreateQuestion(text string, options []string, correctOption int, lawNumber string) (*entity.LawQuestion, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: question text is required", apperrors.ErrValidation)
	}
	if len(options) < 2 {
		return nil, fmt.Errorf("%w: at least two options are required", apperrors.ErrValidation)
	}
	if correctOption < 0 || correctOption >= len(options) {
		return nil, fmt.Errorf("%w: correct option index is out of range", apperrors.ErrValidation)
	}

	question := &entity.LawQuestion{
		Text:          text,
		Options:       entity.StringArray(options),
		CorrectOption: correctOption,
		LawNumber:     lawNumber,
		IsActive:      true,
	}
	if err := s.questionRepo.Create(question); err != nil {
		return nil, fmt.Errorf("failed to create law question: %w", err)
	}
	return question, nil
}

// UpdateQuestion обновляет вопрос (админ)
func (s *LawTestService) UpdateQuestion(id uint, text string, options []string, correctOption int, lawNumber string, isActive bool) (*entity.LawQuestion, error) {
	question, err := s.questionRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if text != "" {
		question.Text = text
	}
	if options != nil {
		if len(options) < 2 {
			return nil, fmt.Errorf("%w: at least two options are required", apperrors.ErrValidation)
		}
		question.Options = entity.StringArray(options)
	}
	if correctOption < 0 || correctOption >= len(question.Options) {
		return nil, fmt.Errorf("%w: correct option index is out of range", apperrors.ErrValidation)
	}
	question.CorrectOption = correctOption
	question.LawNumber = lawNumber
	question.IsActive = isActive

	if err := s.questionRepo.Update(question); err != nil {
		return nil, fmt.Errorf("failed to update law question: %w", err)
	}
	return question, nil
}

// DeleteQuestion удаляет вопрос (админ)
func (s *LawTestService) DeleteQuestion(id uint) error {
	if _, err := s.questionRepo.GetByID(id); err != nil {
		return err
	}
	return s.questionRepo.Delete(id)
}
