package service

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"gorm.io/gorm"

	"github.com/danielgol1997-byte/Referee-Website-sub001/internal/domain/entity"
	"github.com/danielgol1997-byte/Referee-Website-sub001/internal/domain/repository"
	apperrors "github.com/danielgol1997-byte/Referee-Website-sub001/internal/pkg/errors"
)

// CreateTestInput описывает параметры создания видеотеста
type CreateTestInput struct {
	Name            string
	Description     string
	Type            string
	PassingScore    int
	MaxViewsPerClip int
	DueDate         *time.Time
	// ClipIDs — явный список эпизодов. Если пуст, эпизоды набираются по AdminFilters.
	ClipIDs      []uint
	AdminFilters *entity.AdminFilters
}

// AnswerInput описывает ответ пользователя по одному эпизоду
type AnswerInput struct {
	VideoClipID     uint
	PlayOnNoOffence bool
	RestartTagID    *uint
	SanctionTagID   *uint
	CriteriaTagIDs  []uint
}

// SubmitOutcome — итог отправки ответов: завершённая сессия и абсолютные
// счётчики верных и частично верных ответов. Балл сессии хранится в процентах,
// поэтому счётчики отдаются отдельно.
type SubmitOutcome struct {
	Session      *entity.VideoTestSession
	CorrectCount int
	PartialCount int
}

// TagRef — компактная ссылка на тег для сводки
type TagRef struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

// DecisionView — решение (эталонное или данное) в терминах ссылок на теги
type DecisionView struct {
	PlayOnNoOffence bool     `json:"play_on_no_offence"`
	RestartTag      *TagRef  `json:"restart_tag,omitempty"`
	SanctionTag     *TagRef  `json:"sanction_tag,omitempty"`
	CriteriaTags    []TagRef `json:"criteria_tags"`
}

// SummaryItem — результат по одному эпизоду завершённой сессии
type SummaryItem struct {
	ClipID          uint          `json:"clip_id"`
	Title           string        `json:"title"`
	FileURL         string        `json:"file_url"`
	Skipped         bool          `json:"skipped"`
	IsCorrect       bool          `json:"is_correct"`
	IsPartial       bool          `json:"is_partial"`
	GivenDecision   *DecisionView `json:"given_decision,omitempty"`
	CorrectDecision DecisionView  `json:"correct_decision"`
}

// SessionSummary — полная сводка по завершённой сессии
type SessionSummary struct {
	SessionID    uint          `json:"session_id"`
	TestID       uint          `json:"test_id"`
	TestName     string        `json:"test_name"`
	Score        int           `json:"score"`
	PassingScore int           `json:"passing_score"`
	Passed       bool          `json:"passed"`
	TotalClips   int           `json:"total_clips"`
	CorrectCount int           `json:"correct_count"`
	PartialCount int           `json:"partial_count"`
	CompletedAt  time.Time     `json:"completed_at"`
	Items        []SummaryItem `json:"items"`
}

// VideoTestService предоставляет методы жизненного цикла видеотестов:
// создание и кураторство, сессии, скоринг отправленных ответов и сводки.
type VideoTestService struct {
	testRepo    repository.VideoTestRepository
	clipRepo    repository.VideoClipRepository
	sessionRepo repository.VideoTestSessionRepository
	tagRepo     repository.TagRepository
	userRepo    repository.UserRepository
	cacheRepo   repository.CacheRepository
	db          *gorm.DB
	rng         *rand.Rand
	viewTTL     time.Duration

	// txRunner подменяет s.db.Transaction в тестах
	txRunner func(fn func(tx *gorm.DB) error) error
}

// runInTx выполняет fn в транзакции БД
func (s *VideoTestService) runInTx(fn func(tx *gorm.DB) error) error {
	if s.txRunner != nil {
		return s.txRunner(fn)
	}
	return s.db.Transaction(fn)
}

// NewVideoTestService создает новый сервис видеотестов
func NewVideoTestService(
	testRepo repository.VideoTestRepository,
	clipRepo repository.VideoClipRepository,
	sessionRepo repository.VideoTestSessionRepository,
	tagRepo repository.TagRepository,
	userRepo repository.UserRepository,
	cacheRepo repository.CacheRepository,
	db *gorm.DB,
	viewTTL time.Duration,
) *VideoTestService {
	if viewTTL <= 0 {
		viewTTL = 24 * time.Hour
	}
	return &VideoTestService{
		testRepo:    testRepo,
		clipRepo:    clipRepo,
		sessionRepo: sessionRepo,
		tagRepo:     tagRepo,
		userRepo:    userRepo,
		cacheRepo:   cacheRepo,
		db:          db,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		viewTTL:     viewTTL,
	}
}

// ---------------------------------------------------------------------------
// Кураторство тестов (админ)
// ---------------------------------------------------------------------------

// CreateTest создает тест из явного списка эпизодов или по фильтр-дескриптору
func (s *VideoTestService) CreateTest(createdByID uint, input CreateTestInput) (*entity.VideoTest, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("%w: test name is required", apperrors.ErrValidation)
	}
	if !entity.IsValidVideoTestType(input.Type) {
		return nil, fmt.Errorf("%w: invalid test type %q", apperrors.ErrValidation, input.Type)
	}
	if input.PassingScore < 0 || input.PassingScore > 100 {
		return nil, fmt.Errorf("%w: passing score must be between 0 and 100", apperrors.ErrValidation)
	}

	clipIDs := input.ClipIDs
	if len(clipIDs) == 0 {
		if input.AdminFilters == nil || input.AdminFilters.IsEmpty() {
			return nil, fmt.Errorf("%w: either clip_ids or admin_filters must be provided", apperrors.ErrValidation)
		}
		sampled, err := s.sampleClipsByFilters(*input.AdminFilters)
		if err != nil {
			return nil, err
		}
		clipIDs = sampled
	}

	testClips, err := s.buildTestClips(clipIDs)
	if err != nil {
		return nil, err
	}

	test := &entity.VideoTest{
		Name:            input.Name,
		Description:     input.Description,
		Type:            input.Type,
		PassingScore:    input.PassingScore,
		MaxViewsPerClip: input.MaxViewsPerClip,
		DueDate:         input.DueDate,
		IsActive:        true,
		CreatedByID:     createdByID,
		AdminFilters:    input.AdminFilters,
		TestClips:       testClips,
	}

	if err := s.testRepo.Create(test); err != nil {
		return nil, fmt.Errorf("failed to create test: %w", err)
	}

	log.Printf("[VideoTestService] Создан тест ID=%d (%q, тип %s), эпизодов: %d",
		test.ID, test.Name, test.Type, len(testClips))
	return s.testRepo.GetWithClips(test.ID)
}

// sampleClipsByFilters набирает ID активных эпизодов по фильтр-дескриптору
func (s *VideoTestService) sampleClipsByFilters(filters entity.AdminFilters) ([]uint, error) {
	limit := filters.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	clips, _, err := s.clipRepo.ListWithFilters(repository.ClipFilters{
		Search:       filters.Search,
		CategoryIDs:  filters.CategoryIDs,
		TagIDs:       filters.TagIDs,
		OnlyActive:   true,
		OnlyFeatured: filters.OnlyFeatured,
	}, limit, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to sample clips by filters: %w", err)
	}
	if len(clips) == 0 {
		return nil, fmt.Errorf("%w: no clips match the provided filters", apperrors.ErrValidation)
	}

	ids := make([]uint, 0, len(clips))
	for _, c := range clips {
		ids = append(ids, c.ID)
	}
	return ids, nil
}

// buildTestClips проверяет существование эпизодов и строит упорядоченные привязки
func (s *VideoTestService) buildTestClips(clipIDs []uint) ([]entity.VideoTestClip, error) {
	if len(clipIDs) == 0 {
		return nil, fmt.Errorf("%w: test must contain at least one clip", apperrors.ErrValidation)
	}

	clips, err := s.clipRepo.GetByIDsWithTags(clipIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load clips: %w", err)
	}
	known := make(map[uint]bool, len(clips))
	for _, c := range clips {
		known[c.ID] = true
	}

	seen := make(map[uint]bool, len(clipIDs))
	testClips := make([]entity.VideoTestClip, 0, len(clipIDs))
	for i, id := range clipIDs {
		if !known[id] {
			return nil, fmt.Errorf("%w: clip %d does not exist", apperrors.ErrValidation, id)
		}
		if seen[id] {
			return nil, fmt.Errorf("%w: clip %d is listed more than once", apperrors.ErrValidation, id)
		}
		seen[id] = true
		testClips = append(testClips, entity.VideoTestClip{
			VideoClipID: id,
			Position:    i,
		})
	}
	return testClips, nil
}

// UpdateTestInfo точечно обновляет метаданные теста
func (s *VideoTestService) UpdateTestInfo(testID uint, updates map[string]interface{}) (*entity.VideoTest, error) {
	if _, err := s.testRepo.GetByID(testID); err != nil {
		return nil, err
	}
	if len(updates) > 0 {
		if err := s.testRepo.UpdateInfo(s.db, testID, updates); err != nil {
			return nil, fmt.Errorf("failed to update test: %w", err)
		}
	}
	return s.testRepo.GetWithClips(testID)
}

// ReplaceTestClips атомарно заменяет набор эпизодов теста.
// Уже начатые сессии держат замороженный снимок и не затрагиваются.
func (s *VideoTestService) ReplaceTestClips(testID uint, clipIDs []uint) (*entity.VideoTest, error) {
	if _, err := s.testRepo.GetByID(testID); err != nil {
		return nil, err
	}

	testClips, err := s.buildTestClips(clipIDs)
	if err != nil {
		return nil, err
	}

	err = s.runInTx(func(tx *gorm.DB) error {
		return s.testRepo.ReplaceClips(tx, testID, testClips)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to replace test clips: %w", err)
	}

	log.Printf("[VideoTestService] Заменён набор эпизодов теста ID=%d, эпизодов: %d", testID, len(testClips))
	return s.testRepo.GetWithClips(testID)
}

// ResampleTestClips пересобирает набор эпизодов теста по сохранённому
// фильтр-дескриптору
func (s *VideoTestService) ResampleTestClips(testID uint) (*entity.VideoTest, error) {
	test, err := s.testRepo.GetByID(testID)
	if err != nil {
		return nil, err
	}
	if test.AdminFilters == nil || test.AdminFilters.IsEmpty() {
		return nil, fmt.Errorf("%w: test has no admin filters to resample from", apperrors.ErrValidation)
	}

	clipIDs, err := s.sampleClipsByFilters(*test.AdminFilters)
	if err != nil {
		return nil, err
	}
	return s.ReplaceTestClips(testID, clipIDs)
}

// ListTests возвращает тесты по фильтрам с пагинацией (админка)
func (s *VideoTestService) ListTests(filters repository.VideoTestFilters, page, pageSize int) ([]entity.VideoTest, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize
	return s.testRepo.ListWithFilters(filters, pageSize, offset)
}

// GetTest возвращает тест с упорядоченными эпизодами
func (s *VideoTestService) GetTest(testID uint) (*entity.VideoTest, error) {
	return s.testRepo.GetWithClips(testID)
}

// SetTestActive включает/выключает тест
func (s *VideoTestService) SetTestActive(testID uint, active bool) error {
	if _, err := s.testRepo.GetByID(testID); err != nil {
		return err
	}
	return s.testRepo.UpdateInfo(s.db, testID, map[string]interface{}{"is_active": active})
}

// DeleteTest удаляет тест
func (s *VideoTestService) DeleteTest(testID uint) error {
	if _, err := s.testRepo.GetByID(testID); err != nil {
		return err
	}
	return s.testRepo.Delete(testID)
}

// ---------------------------------------------------------------------------
// Списки тестов для пользователя
// ---------------------------------------------------------------------------

// GetMandatoryTests возвращает обязательные тесты пользователя со статусом прохождения
func (s *VideoTestService) GetMandatoryTests(userID uint) ([]repository.MandatoryTestStatus, error) {
	return s.testRepo.GetMandatoryForUser(userID)
}

// GetAvailableTests возвращает публичные тесты и собственные тесты пользователя
func (s *VideoTestService) GetAvailableTests(userID uint) ([]entity.VideoTest, error) {
	return s.testRepo.GetAvailableForUser(userID)
}

// ---------------------------------------------------------------------------
// Сессии
// ---------------------------------------------------------------------------

// StartSession создает новую сессию прохождения теста. Порядок эпизодов
// перемешивается и замораживается в сессии: последующие правки теста на
// начатую попытку не влияют.
func (s *VideoTestService) StartSession(userID, testID uint) (*entity.VideoTestSession, error) {
	test, err := s.testRepo.GetWithClips(testID)
	if err != nil {
		return nil, err
	}

	if !test.IsActive {
		return nil, ErrTestNotAvailable
	}
	// Пользовательский тест доступен только владельцу
	if test.IsUserType() && test.CreatedByID != userID {
		return nil, apperrors.ErrForbidden
	}

	clipIDs := test.ClipIDs()
	if len(clipIDs) == 0 {
		return nil, ErrTestHasNoClips
	}

	shuffled := shuffleClipIDs(clipIDs, s.rng)

	session := &entity.VideoTestSession{
		UserID:      userID,
		VideoTestID: testID,
		ClipIDs:     shuffled,
		TotalClips:  len(shuffled),
	}

	if err := s.sessionRepo.Create(session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	log.Printf("[VideoTestService] Начата сессия ID=%d теста ID=%d пользователем ID=%d, эпизодов: %d",
		session.ID, testID, userID, session.TotalClips)
	return session, nil
}

// shuffleClipIDs возвращает перемешанную копию списка ID (Fisher-Yates)
func shuffleClipIDs(ids []uint, r *rand.Rand) entity.UintArray {
	shuffled := make(entity.UintArray, len(ids))
	copy(shuffled, ids)
	for i := len(shuffled) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	return shuffled
}

// GetSession возвращает сессию после проверки владения
func (s *VideoTestService) GetSession(userID, sessionID uint) (*entity.VideoTestSession, error) {
	session, err := s.sessionRepo.GetByID(sessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, apperrors.ErrForbidden
	}
	return session, nil
}

// GetSessionClips возвращает сессию и её эпизоды для плеера.
// Данные решения из эпизодов отфильтровываются на уровне DTO.
func (s *VideoTestService) GetSessionClips(userID, sessionID uint) (*entity.VideoTestSession, []entity.VideoClip, error) {
	session, err := s.GetSession(userID, sessionID)
	if err != nil {
		return nil, nil, err
	}
	clips, err := s.clipRepo.GetByIDsWithTags(session.ClipIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load session clips: %w", err)
	}
	return session, clips, nil
}

// GetUserSessions возвращает сессии пользователя с пагинацией
func (s *VideoTestService) GetUserSessions(userID uint, page, pageSize int) ([]entity.VideoTestSession, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize
	return s.sessionRepo.GetByUser(userID, pageSize, offset)
}

// RegisterClipView учитывает просмотр эпизода в рамках сессии.
// Счётчики живут в Redis: при лимите MaxViewsPerClip возвращает остаток
// просмотров либо ErrViewLimitExceeded.
func (s *VideoTestService) RegisterClipView(userID, sessionID, clipID uint) (remaining int, err error) {
	session, err := s.GetSession(userID, sessionID)
	if err != nil {
		return 0, err
	}
	if session.IsCompleted() {
		return 0, fmt.Errorf("%w: session is already completed", apperrors.ErrConflict)
	}
	if !session.ClipIDs.Contains(clipID) {
		return 0, fmt.Errorf("%w: clip is not part of this session", apperrors.ErrValidation)
	}

	test, err := s.testRepo.GetByID(session.VideoTestID)
	if err != nil {
		return 0, err
	}
	if test.MaxViewsPerClip <= 0 {
		// Лимит не настроен, просмотры не считаем
		return -1, nil
	}

	key := fmt.Sprintf("views:session:%d:clip:%d", sessionID, clipID)
	count, err := s.cacheRepo.Increment(key)
	if err != nil {
		return 0, fmt.Errorf("failed to increment view counter: %w", err)
	}
	if count == 1 {
		if err := s.cacheRepo.Expire(key, s.viewTTL); err != nil {
			log.Printf("[VideoTestService] Ошибка установки TTL счётчика просмотров %s: %v", key, err)
		}
	}

	if count > int64(test.MaxViewsPerClip) {
		return 0, ErrViewLimitExceeded
	}
	return test.MaxViewsPerClip - int(count), nil
}

// ---------------------------------------------------------------------------
// Скоринг
// ---------------------------------------------------------------------------

// scoreAnswer оценивает ответ по эпизоду.
// Для эпизодов play on / no offence ответ бинарный: верен только флаг без
// тегов решения, частичный зачёт невозможен. Для остальных эпизодов три слота
// (restart, sanction, criteria) проверяются независимо: 3 совпадения — верно,
// 1-2 — частично, 0 — неверно. Отсутствие тега в слоте совпадает с отсутствием
// тега в эталоне.
func scoreAnswer(clip *entity.VideoClip, answer AnswerInput) (isCorrect, isPartial bool) {
	if clip.IsPlayOnOrNoOffence() {
		correct := answer.PlayOnNoOffence &&
			answer.RestartTagID == nil &&
			answer.SanctionTagID == nil &&
			len(answer.CriteriaTagIDs) == 0
		return correct, false
	}

	decision := clip.CorrectDecision()

	matches := 0
	if uintPtrEqual(answer.RestartTagID, decision.RestartTagID) {
		matches++
	}
	if uintPtrEqual(answer.SanctionTagID, decision.SanctionTagID) {
		matches++
	}
	if uintSetsEqual(answer.CriteriaTagIDs, decision.CriteriaTagIDs) {
		matches++
	}

	switch {
	case matches == 3:
		return true, false
	case matches > 0:
		return false, true
	default:
		return false, false
	}
}

// uintPtrEqual сравнивает опциональные ID: nil совпадает только с nil
func uintPtrEqual(a, b *uint) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// uintSetsEqual сравнивает наборы ID как множества (порядок и дубликаты не важны)
func uintSetsEqual(a, b []uint) bool {
	setA := make(map[uint]bool, len(a))
	for _, v := range a {
		setA[v] = true
	}
	setB := make(map[uint]bool, len(b))
	for _, v := range b {
		setB[v] = true
	}
	if len(setA) != len(setB) {
		return false
	}
	for v := range setA {
		if !setB[v] {
			return false
		}
	}
	return true
}

// SubmitAnswers принимает ответы по сессии, оценивает их и завершает сессию.
// Эпизоды без ответа пропускаются (засчитываются как неотвеченные), ответы
// по эпизодам вне сессии игнорируются. Сохранение ответов, завершение сессии
// и отметка о прохождении выполняются в одной транзакции.
func (s *VideoTestService) SubmitAnswers(userID, sessionID uint, inputs []AnswerInput) (*SubmitOutcome, error) {
	session, err := s.sessionRepo.GetByID(sessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, apperrors.ErrForbidden
	}
	if session.IsCompleted() {
		return nil, repository.ErrSessionAlreadyCompleted
	}

	test, err := s.testRepo.GetByID(session.VideoTestID)
	if err != nil {
		return nil, fmt.Errorf("failed to load test: %w", err)
	}

	clips, err := s.clipRepo.GetByIDsWithTags(session.ClipIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load session clips: %w", err)
	}
	clipByID := make(map[uint]*entity.VideoClip, len(clips))
	for i := range clips {
		clipByID[clips[i].ID] = &clips[i]
	}

	// Ответы по эпизодам, не входящим в сессию, игнорируем.
	// Дубликаты по одному эпизоду: берём первый.
	inputByClip := make(map[uint]AnswerInput, len(inputs))
	for _, in := range inputs {
		if !session.ClipIDs.Contains(in.VideoClipID) {
			log.Printf("[VideoTestService] Сессия ID=%d: ответ по эпизоду ID=%d вне сессии проигнорирован",
				sessionID, in.VideoClipID)
			continue
		}
		if _, dup := inputByClip[in.VideoClipID]; dup {
			continue
		}
		inputByClip[in.VideoClipID] = in
	}

	answers := make([]entity.VideoTestAnswer, 0, len(inputByClip))
	correctCount := 0
	partialCount := 0
	for _, clipID := range session.ClipIDs {
		in, answered := inputByClip[clipID]
		if !answered {
			// Неотвеченный эпизод пропускаем: записи ответа нет, в балл не идёт
			continue
		}
		clip, ok := clipByID[clipID]
		if !ok {
			// Эпизод удалён после заморозки сессии: считаем пропущенным
			log.Printf("[VideoTestService] Сессия ID=%d: эпизод ID=%d не найден, пропущен", sessionID, clipID)
			continue
		}

		isCorrect, isPartial := scoreAnswer(clip, in)
		if isCorrect {
			correctCount++
		}
		if isPartial {
			partialCount++
		}

		criteria := in.CriteriaTagIDs
		if criteria == nil {
			criteria = []uint{}
		}
		answers = append(answers, entity.VideoTestAnswer{
			SessionID:       sessionID,
			VideoClipID:     clipID,
			PlayOnNoOffence: in.PlayOnNoOffence,
			RestartTagID:    in.RestartTagID,
			SanctionTagID:   in.SanctionTagID,
			CriteriaTagIDs:  entity.UintArray(criteria),
			IsCorrect:       isCorrect,
			IsPartial:       isPartial,
		})
	}

	score := 0
	if session.TotalClips > 0 {
		score = correctCount * 100 / session.TotalClips
	}
	now := time.Now()

	err = s.runInTx(func(tx *gorm.DB) error {
		if err := s.sessionRepo.SaveAnswers(tx, answers); err != nil {
			return err
		}
		if err := s.sessionRepo.CompleteSession(tx, sessionID, score, now); err != nil {
			return err
		}
		// Прохождение обязательного теста фиксируется отдельной отметкой
		if test.IsMandatory() {
			return s.sessionRepo.UpsertCompletion(tx, &entity.VideoTestCompletion{
				UserID:      userID,
				VideoTestID: test.ID,
				SessionID:   sessionID,
				Score:       score,
				CompletedAt: now,
			})
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrSessionAlreadyCompleted) || errors.Is(err, repository.ErrDuplicateAnswer) {
			return nil, repository.ErrSessionAlreadyCompleted
		}
		return nil, fmt.Errorf("failed to submit answers: %w", err)
	}

	if err := s.userRepo.IncrementVideoTestsDone(userID); err != nil {
		// Счётчик не критичен для результата отправки
		log.Printf("[VideoTestService] Ошибка инкремента счётчика тестов пользователя ID=%d: %v", userID, err)
	}

	log.Printf("[VideoTestService] Сессия ID=%d завершена: балл %d%%, верных %d из %d",
		sessionID, score, correctCount, session.TotalClips)

	session.Score = &score
	session.CompletedAt = &now
	session.Answers = answers
	return &SubmitOutcome{
		Session:      session,
		CorrectCount: correctCount,
		PartialCount: partialCount,
	}, nil
}

// ---------------------------------------------------------------------------
// Сводка
// ---------------------------------------------------------------------------

// GetSessionSummary собирает полную сводку по завершённой сессии:
// по каждому эпизоду в замороженном порядке — данный ответ и эталонное
// решение с разрешёнными именами тегов.
func (s *VideoTestService) GetSessionSummary(userID, sessionID uint) (*SessionSummary, error) {
	session, err := s.sessionRepo.GetWithAnswers(sessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, apperrors.ErrForbidden
	}
	if !session.IsCompleted() {
		return nil, fmt.Errorf("%w: session is not completed yet", apperrors.ErrConflict)
	}

	clips, err := s.clipRepo.GetByIDsWithTags(session.ClipIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load session clips: %w", err)
	}
	clipByID := make(map[uint]*entity.VideoClip, len(clips))
	for i := range clips {
		clipByID[clips[i].ID] = &clips[i]
	}

	answerByClip := make(map[uint]*entity.VideoTestAnswer, len(session.Answers))
	for i := range session.Answers {
		answerByClip[session.Answers[i].VideoClipID] = &session.Answers[i]
	}

	// Один батч-резолв имён для всех тегов сводки
	tagRefs, err := s.resolveTagRefs(session.Answers, clips)
	if err != nil {
		return nil, err
	}

	items := make([]SummaryItem, 0, len(session.ClipIDs))
	correctCount, partialCount := 0, 0
	for _, clipID := range session.ClipIDs {
		clip, ok := clipByID[clipID]
		if !ok {
			continue
		}

		item := SummaryItem{
			ClipID:          clipID,
			Title:           clip.Title,
			FileURL:         clip.FileURL,
			CorrectDecision: s.buildCorrectDecisionView(clip, tagRefs),
		}

		if answer, answered := answerByClip[clipID]; answered {
			item.IsCorrect = answer.IsCorrect
			item.IsPartial = answer.IsPartial
			item.GivenDecision = buildGivenDecisionView(answer, tagRefs)
			if answer.IsCorrect {
				correctCount++
			}
			if answer.IsPartial {
				partialCount++
			}
		} else {
			item.Skipped = true
		}

		items = append(items, item)
	}

	score := 0
	if session.Score != nil {
		score = *session.Score
	}

	summary := &SessionSummary{
		SessionID:    session.ID,
		TestID:       session.VideoTestID,
		Score:        score,
		TotalClips:   session.TotalClips,
		CorrectCount: correctCount,
		PartialCount: partialCount,
		CompletedAt:  *session.CompletedAt,
		Items:        items,
	}
	if session.Test != nil {
		summary.TestName = session.Test.Name
		summary.PassingScore = session.Test.PassingScore
		summary.Passed = score >= session.Test.PassingScore
	}
	return summary, nil
}

// resolveTagRefs собирает все ID тегов из ответов и эталонных решений
// и резолвит их имена одним запросом
func (s *VideoTestService) resolveTagRefs(answers []entity.VideoTestAnswer, clips []entity.VideoClip) (map[uint]TagRef, error) {
	idSet := make(map[uint]bool)
	for i := range answers {
		for _, id := range answers[i].ReferencedTagIDs() {
			idSet[id] = true
		}
	}
	for i := range clips {
		for j := range clips[i].ClipTags {
			if clips[i].ClipTags[j].IsCorrectDecision {
				idSet[clips[i].ClipTags[j].TagID] = true
			}
		}
	}

	ids := make([]uint, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	tags, err := s.tagRepo.GetByIDs(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve tags: %w", err)
	}

	refs := make(map[uint]TagRef, len(tags))
	for i := range tags {
		refs[tags[i].ID] = TagRef{
			ID:       tags[i].ID,
			Name:     tags[i].Name,
			Category: tags[i].CategoryName(),
		}
	}
	return refs, nil
}

// buildCorrectDecisionView строит представление эталонного решения эпизода
func (s *VideoTestService) buildCorrectDecisionView(clip *entity.VideoClip, refs map[uint]TagRef) DecisionView {
	view := DecisionView{
		PlayOnNoOffence: clip.IsPlayOnOrNoOffence(),
		CriteriaTags:    []TagRef{},
	}
	if view.PlayOnNoOffence {
		return view
	}

	decision := clip.CorrectDecision()
	if decision.RestartTagID != nil {
		if ref, ok := refs[*decision.RestartTagID]; ok {
			view.RestartTag = &ref
		}
	}
	if decision.SanctionTagID != nil {
		if ref, ok := refs[*decision.SanctionTagID]; ok {
			view.SanctionTag = &ref
		}
	}
	for _, id := range decision.CriteriaTagIDs {
		if ref, ok := refs[id]; ok {
			view.CriteriaTags = append(view.CriteriaTags, ref)
		}
	}
	return view
}

// buildGivenDecisionView строит представление данного пользователем решения
func buildGivenDecisionView(answer *entity.VideoTestAnswer, refs map[uint]TagRef) *DecisionView {
	view := &DecisionView{
		PlayOnNoOffence: answer.PlayOnNoOffence,
		CriteriaTags:    []TagRef{},
	}
	if answer.RestartTagID != nil {
		if ref, ok := refs[*answer.RestartTagID]; ok {
			view.RestartTag = &ref
		}
	}
	if answer.SanctionTagID != nil {
		if ref, ok := refs[*answer.SanctionTagID]; ok {
			view.SanctionTag = &ref
		}
	}
	for _, id := range answer.CriteriaTagIDs {
		if ref, ok := refs[id]; ok {
			view.CriteriaTags = append(view.CriteriaTags, ref)
		}
	}
	return view
}

// ---------------------------------------------------------------------------
// Экспорт результатов (админ)
// ---------------------------------------------------------------------------

// TestResultRow — строка экспорта результатов теста
type TestResultRow struct {
	SessionID    uint
	UserID       uint
	Username     string
	Email        string
	Score        int
	CorrectCount int
	TotalClips   int
	CompletedAt  time.Time
}

// GetTestResults возвращает результаты всех завершённых сессий теста
func (s *VideoTestService) GetTestResults(testID uint) (*entity.VideoTest, []TestResultRow, error) {
	test, err := s.testRepo.GetByID(testID)
	if err != nil {
		return nil, nil, err
	}

	sessions, err := s.sessionRepo.GetAllCompletedByTest(testID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load sessions: %w", err)
	}

	userCache := make(map[uint]*entity.User)
	rows := make([]TestResultRow, 0, len(sessions))
	for i := range sessions {
		sess := &sessions[i]
		user, ok := userCache[sess.UserID]
		if !ok {
			user, err = s.userRepo.GetByID(sess.UserID)
			if err != nil {
				if errors.Is(err, apperrors.ErrNotFound) {
					user = &entity.User{ID: sess.UserID, Username: "deleted"}
				} else {
					return nil, nil, fmt.Errorf("failed to load user %d: %w", sess.UserID, err)
				}
			}
			userCache[sess.UserID] = user
		}

		correctCount := 0
		for j := range sess.Answers {
			if sess.Answers[j].IsCorrect {
				correctCount++
			}
		}

		score := 0
		if sess.Score != nil {
			score = *sess.Score
		}
		rows = append(rows, TestResultRow{
			SessionID:    sess.ID,
			UserID:       sess.UserID,
			Username:     user.Username,
			Email:        user.Email,
			Score:        score,
			CorrectCount: correctCount,
			TotalClips:   sess.TotalClips,
			CompletedAt:  *sess.CompletedAt,
		})
	}

	return test, rows, nil
}
