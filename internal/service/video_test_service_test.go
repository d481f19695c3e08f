package service

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/danielgol1997-byte/Referee-Website-sub001/internal/domain/entity"
	"github.com/danielgol1997-byte/Referee-Website-sub001/internal/domain/repository"
	apperrors "github.com/danielgol1997-byte/Referee-Website-sub001/internal/pkg/errors"
)

// ============================================================================
// Моки репозиториев
// ============================================================================

func uintPtr(v uint) *uint { return &v }

// MockVideoTestRepo реализует repository.VideoTestRepository
type MockVideoTestRepo struct {
	mock.Mock
}

func (m *MockVideoTestRepo) Create(test *entity.VideoTest) error {
	args := m.Called(test)
	return args.Error(0)
}

func (m *MockVideoTestRepo) GetByID(id uint) (*entity.VideoTest, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.VideoTest), args.Error(1)
}

func (m *MockVideoTestRepo) GetWithClips(id uint) (*entity.VideoTest, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.VideoTest), args.Error(1)
}

func (m *MockVideoTestRepo) Update(test *entity.VideoTest) error {
	args := m.Called(test)
	return args.Error(0)
}

func (m *MockVideoTestRepo) ReplaceClips(tx *gorm.DB, testID uint, clips []entity.VideoTestClip) error {
	args := m.Called(tx, testID, clips)
	return args.Error(0)
}

func (m *MockVideoTestRepo) UpdateInfo(tx *gorm.DB, testID uint, updates map[string]interface{}) error {
	args := m.Called(tx, testID, updates)
	return args.Error(0)
}

func (m *MockVideoTestRepo) ListWithFilters(filters repository.VideoTestFilters, limit, offset int) ([]entity.VideoTest, int64, error) {
	args := m.Called(filters, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]entity.VideoTest), args.Get(1).(int64), args.Error(2)
}

func (m *MockVideoTestRepo) GetMandatoryForUser(userID uint) ([]repository.MandatoryTestStatus, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.MandatoryTestStatus), args.Error(1)
}

func (m *MockVideoTestRepo) GetAvailableForUser(userID uint) ([]entity.VideoTest, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.VideoTest), args.Error(1)
}

func (m *MockVideoTestRepo) Delete(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

// MockVideoClipRepo реализует repository.VideoClipRepository
type MockVideoClipRepo struct {
	mock.Mock
}

func (m *MockVideoClipRepo) Create(clip *entity.VideoClip) error {
	args := m.Called(clip)
	return args.Error(0)
}

func (m *MockVideoClipRepo) GetByID(id uint) (*entity.VideoClip, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.VideoClip), args.Error(1)
}

func (m *MockVideoClipRepo) GetWithTags(id uint) (*entity.VideoClip, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.VideoClip), args.Error(1)
}

func (m *MockVideoClipRepo) GetByIDsWithTags(ids []uint) ([]entity.VideoClip, error) {
	args := m.Called(ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.VideoClip), args.Error(1)
}

func (m *MockVideoClipRepo) Update(clip *entity.VideoClip) error {
	args := m.Called(clip)
	return args.Error(0)
}

func (m *MockVideoClipRepo) ReplaceTags(clipID uint, tags []entity.VideoClipTag) error {
	args := m.Called(clipID, tags)
	return args.Error(0)
}

func (m *MockVideoClipRepo) SetActive(clipID uint, active bool) error {
	args := m.Called(clipID, active)
	return args.Error(0)
}

func (m *MockVideoClipRepo) ListWithFilters(filters repository.ClipFilters, limit, offset int) ([]entity.VideoClip, int64, error) {
	args := m.Called(filters, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]entity.VideoClip), args.Get(1).(int64), args.Error(2)
}

func (m *MockVideoClipRepo) Delete(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

// MockSessionRepo реализует repository.VideoTestSessionRepository
type MockSessionRepo struct {
	mock.Mock
}

func (m *MockSessionRepo) Create(session *entity.VideoTestSession) error {
	args := m.Called(session)
	return args.Error(0)
}

func (m *MockSessionRepo) GetByID(id uint) (*entity.VideoTestSession, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.VideoTestSession), args.Error(1)
}

func (m *MockSessionRepo) GetWithAnswers(id uint) (*entity.VideoTestSession, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.VideoTestSession), args.Error(1)
}

func (m *MockSessionRepo) GetByUser(userID uint, limit, offset int) ([]entity.VideoTestSession, int64, error) {
	args := m.Called(userID, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]entity.VideoTestSession), args.Get(1).(int64), args.Error(2)
}

func (m *MockSessionRepo) GetByTest(testID uint, limit, offset int) ([]entity.VideoTestSession, int64, error) {
	args := m.Called(testID, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]entity.VideoTestSession), args.Get(1).(int64), args.Error(2)
}

func (m *MockSessionRepo) GetAllCompletedByTest(testID uint) ([]entity.VideoTestSession, error) {
	args := m.Called(testID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.VideoTestSession), args.Error(1)
}

func (m *MockSessionRepo) CompleteSession(tx *gorm.DB, sessionID uint, score int, completedAt time.Time) error {
	args := m.Called(tx, sessionID, score, completedAt)
	return args.Error(0)
}

func (m *MockSessionRepo) SaveAnswers(tx *gorm.DB, answers []entity.VideoTestAnswer) error {
	args := m.Called(tx, answers)
	return args.Error(0)
}

func (m *MockSessionRepo) UpsertCompletion(tx *gorm.DB, completion *entity.VideoTestCompletion) error {
	args := m.Called(tx, completion)
	return args.Error(0)
}

func (m *MockSessionRepo) GetCompletion(userID, videoTestID uint) (*entity.VideoTestCompletion, error) {
	args := m.Called(userID, videoTestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.VideoTestCompletion), args.Error(1)
}

// MockTagRepo реализует repository.TagRepository
type MockTagRepo struct {
	mock.Mock
}

func (m *MockTagRepo) Create(tag *entity.Tag) error {
	args := m.Called(tag)
	return args.Error(0)
}

func (m *MockTagRepo) GetByID(id uint) (*entity.Tag, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Tag), args.Error(1)
}

func (m *MockTagRepo) GetByIDs(ids []uint) ([]entity.Tag, error) {
	args := m.Called(ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Tag), args.Error(1)
}

func (m *MockTagRepo) GetByCategoryID(categoryID uint) ([]entity.Tag, error) {
	args := m.Called(categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Tag), args.Error(1)
}

func (m *MockTagRepo) Update(tag *entity.Tag) error {
	args := m.Called(tag)
	return args.Error(0)
}

func (m *MockTagRepo) Delete(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

// MockUserRepo реализует repository.UserRepository
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(user *entity.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepo) GetByID(id uint) (*entity.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepo) GetByEmail(email string) (*entity.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepo) GetByUsername(username string) (*entity.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepo) Update(user *entity.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepo) UpdatePassword(userID uint, newPassword string) error {
	args := m.Called(userID, newPassword)
	return args.Error(0)
}

func (m *MockUserRepo) IncrementVideoTestsDone(userID uint) error {
	args := m.Called(userID)
	return args.Error(0)
}

func (m *MockUserRepo) IncrementLawTestsDone(userID uint) error {
	args := m.Called(userID)
	return args.Error(0)
}

func (m *MockUserRepo) List(limit, offset int) ([]entity.User, error) {
	args := m.Called(limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.User), args.Error(1)
}

// MockCacheRepo реализует repository.CacheRepository
type MockCacheRepo struct {
	mock.Mock
}

func (m *MockCacheRepo) Set(key string, value interface{}, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *MockCacheRepo) Get(key string) (string, error) {
	args := m.Called(key)
	return args.String(0), args.Error(1)
}

func (m *MockCacheRepo) Delete(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

func (m *MockCacheRepo) Increment(key string) (int64, error) {
	args := m.Called(key)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCacheRepo) Expire(key string, expiration time.Duration) error {
	args := m.Called(key, expiration)
	return args.Error(0)
}

func (m *MockCacheRepo) SetJSON(key string, value interface{}, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *MockCacheRepo) GetJSON(key string, dest interface{}) error {
	args := m.Called(key, dest)
	return args.Error(0)
}

func (m *MockCacheRepo) Exists(key string) (bool, error) {
	args := m.Called(key)
	return args.Bool(0), args.Error(1)
}

// createTestVideoTestService собирает сервис на моках.
// db=nil: тесты не должны доходить до транзакций.
func createTestVideoTestService(
	testRepo *MockVideoTestRepo,
	clipRepo *MockVideoClipRepo,
	sessionRepo *MockSessionRepo,
	tagRepo *MockTagRepo,
	userRepo *MockUserRepo,
	cacheRepo *MockCacheRepo,
) *VideoTestService {
	return NewVideoTestService(testRepo, clipRepo, sessionRepo, tagRepo, userRepo, cacheRepo, nil, time.Hour)
}

// playOnClip — эпизод "play on / no offence"
func playOnClip(id uint) *entity.VideoClip {
	return &entity.VideoClip{ID: id, Title: "Эпизод", PlayOn: true}
}

// decisionClip — эпизод с эталонным решением restart=10, sanction=20, criteria={30,31}
func decisionClip(id uint) *entity.VideoClip {
	restarts := &entity.TagCategory{ID: 1, Name: entity.TagCategoryRestarts}
	sanction := &entity.TagCategory{ID: 2, Name: entity.TagCategorySanction}
	criteria := &entity.TagCategory{ID: 3, Name: entity.TagCategoryCriteria}
	return &entity.VideoClip{
		ID:    id,
		Title: "Эпизод с решением",
		ClipTags: []entity.VideoClipTag{
			{TagID: 10, IsCorrectDecision: true, Tag: &entity.Tag{ID: 10, TagCategoryID: 1, Category: restarts}},
			{TagID: 20, IsCorrectDecision: true, Tag: &entity.Tag{ID: 20, TagCategoryID: 2, Category: sanction}},
			{TagID: 30, IsCorrectDecision: true, Tag: &entity.Tag{ID: 30, TagCategoryID: 3, Category: criteria}},
			{TagID: 31, IsCorrectDecision: true, Tag: &entity.Tag{ID: 31, TagCategoryID: 3, Category: criteria}},
		},
	}
}

// ============================================================================
// scoreAnswer
// ============================================================================

func TestScoreAnswer_AllSlotsMatch(t *testing.T) {
	clip := decisionClip(1)
	answer := AnswerInput{
		VideoClipID:    1,
		RestartTagID:   uintPtr(10),
		SanctionTagID:  uintPtr(20),
		CriteriaTagIDs: []uint{30, 31},
	}

	isCorrect, isPartial := scoreAnswer(clip, answer)

	assert.True(t, isCorrect, "Совпадение всех трёх слотов должно давать верный ответ")
	assert.False(t, isPartial, "Верный ответ не может быть частичным")
}

func TestScoreAnswer_PartialMatches(t *testing.T) {
	clip := decisionClip(1)

	// Два слота из трёх: criteria не совпадает
	twoOfThree := AnswerInput{
		RestartTagID:   uintPtr(10),
		SanctionTagID:  uintPtr(20),
		CriteriaTagIDs: []uint{30}, // не хватает 31
	}
	isCorrect, isPartial := scoreAnswer(clip, twoOfThree)
	assert.False(t, isCorrect)
	assert.True(t, isPartial, "Два совпавших слота — частичный зачёт")

	// Один слот из трёх: только restart
	oneOfThree := AnswerInput{
		RestartTagID:   uintPtr(10),
		SanctionTagID:  uintPtr(99),
		CriteriaTagIDs: []uint{99},
	}
	isCorrect, isPartial = scoreAnswer(clip, oneOfThree)
	assert.False(t, isCorrect)
	assert.True(t, isPartial, "Один совпавший слот — частичный зачёт")
}

func TestScoreAnswer_NoMatches(t *testing.T) {
	clip := decisionClip(1)
	answer := AnswerInput{
		RestartTagID:   uintPtr(99),
		SanctionTagID:  uintPtr(98),
		CriteriaTagIDs: []uint{97},
	}

	isCorrect, isPartial := scoreAnswer(clip, answer)

	assert.False(t, isCorrect)
	assert.False(t, isPartial, "Ни одного совпавшего слота — ответ неверный без частичного зачёта")
}

func TestScoreAnswer_NilSlotMatchesNil(t *testing.T) {
	// Эталон: только criteria, без restart и sanction
	criteria := &entity.TagCategory{ID: 3, Name: entity.TagCategoryCriteria}
	clip := &entity.VideoClip{
		ID: 1,
		ClipTags: []entity.VideoClipTag{
			{TagID: 30, IsCorrectDecision: true, Tag: &entity.Tag{ID: 30, Category: criteria}},
		},
	}

	// Пустые слоты совпадают с пустым эталоном
	answer := AnswerInput{CriteriaTagIDs: []uint{30}}
	isCorrect, isPartial := scoreAnswer(clip, answer)
	assert.True(t, isCorrect, "Отсутствие тега в слоте должно совпадать с отсутствием в эталоне")
	assert.False(t, isPartial)

	// Лишний restart ломает только свой слот
	answer = AnswerInput{RestartTagID: uintPtr(10), CriteriaTagIDs: []uint{30}}
	isCorrect, isPartial = scoreAnswer(clip, answer)
	assert.False(t, isCorrect, "Лишний тег в пустом слоте эталона — несовпадение")
	assert.True(t, isPartial, "Остальные слоты совпали — частичный зачёт")
}

func TestScoreAnswer_CriteriaComparedAsSet(t *testing.T) {
	clip := decisionClip(1)

	// Порядок и дубликаты не влияют на сравнение criteria
	answer := AnswerInput{
		RestartTagID:   uintPtr(10),
		SanctionTagID:  uintPtr(20),
		CriteriaTagIDs: []uint{31, 30, 31},
	}

	isCorrect, isPartial := scoreAnswer(clip, answer)

	assert.True(t, isCorrect, "Критерии сравниваются как множество: порядок и дубликаты не важны")
	assert.False(t, isPartial)
}

func TestScoreAnswer_PlayOnClipIsBinary(t *testing.T) {
	clip := playOnClip(1)

	// Только флаг без тегов — верно
	isCorrect, isPartial := scoreAnswer(clip, AnswerInput{PlayOnNoOffence: true})
	assert.True(t, isCorrect, "Флаг play on без тегов — верный ответ")
	assert.False(t, isPartial)

	// Флаг вместе с тегами — неверно, частичного зачёта нет
	isCorrect, isPartial = scoreAnswer(clip, AnswerInput{
		PlayOnNoOffence: true,
		RestartTagID:    uintPtr(10),
	})
	assert.False(t, isCorrect, "Флаг вместе с тегами решения — неверный ответ")
	assert.False(t, isPartial, "Для play on эпизодов частичный зачёт невозможен")

	// Теги без флага — неверно
	isCorrect, isPartial = scoreAnswer(clip, AnswerInput{RestartTagID: uintPtr(10)})
	assert.False(t, isCorrect)
	assert.False(t, isPartial, "Для play on эпизодов частичный зачёт невозможен")
}

// ============================================================================
// Вспомогательные функции сравнения
// ============================================================================

func TestUintPtrEqual(t *testing.T) {
	assert.True(t, uintPtrEqual(nil, nil), "nil совпадает только с nil")
	assert.True(t, uintPtrEqual(uintPtr(5), uintPtr(5)))
	assert.False(t, uintPtrEqual(uintPtr(5), uintPtr(6)))
	assert.False(t, uintPtrEqual(nil, uintPtr(5)))
	assert.False(t, uintPtrEqual(uintPtr(5), nil))
}

func TestUintSetsEqual(t *testing.T) {
	assert.True(t, uintSetsEqual(nil, nil))
	assert.True(t, uintSetsEqual([]uint{}, nil), "Пустой срез эквивалентен nil")
	assert.True(t, uintSetsEqual([]uint{1, 2, 3}, []uint{3, 2, 1}), "Порядок не важен")
	assert.True(t, uintSetsEqual([]uint{1, 1, 2}, []uint{2, 1}), "Дубликаты не важны")
	assert.False(t, uintSetsEqual([]uint{1, 2}, []uint{1, 2, 3}))
	assert.False(t, uintSetsEqual([]uint{1}, []uint{2}))
}

// ============================================================================
// shuffleClipIDs
// ============================================================================

func TestShuffleClipIDs_IsPermutation(t *testing.T) {
	ids := []uint{1, 2, 3, 4, 5, 6, 7, 8}
	r := rand.New(rand.NewSource(42))

	shuffled := shuffleClipIDs(ids, r)

	require.Len(t, shuffled, len(ids), "Длина не должна меняться")
	assert.ElementsMatch(t, ids, []uint(shuffled), "Перемешивание должно быть перестановкой исходного списка")
	assert.Equal(t, []uint{1, 2, 3, 4, 5, 6, 7, 8}, ids, "Исходный список не должен изменяться")
}

func TestShuffleClipIDs_IndependentPerCall(t *testing.T) {
	// С 20 эпизодами вероятность совпадения двух независимых перестановок
	// пренебрежимо мала; при фиксированных сидах результат детерминирован.
	ids := make([]uint, 20)
	for i := range ids {
		ids[i] = uint(i + 1)
	}

	first := shuffleClipIDs(ids, rand.New(rand.NewSource(1)))
	second := shuffleClipIDs(ids, rand.New(rand.NewSource(2)))

	assert.ElementsMatch(t, []uint(first), []uint(second))
	assert.NotEqual(t, first, second, "Порядок эпизодов должен различаться между сессиями")
}

func TestShuffleClipIDs_SingleAndEmpty(t *testing.T) {
	r := rand.New(rand.NewSource(1))

	assert.Equal(t, entity.UintArray{7}, shuffleClipIDs([]uint{7}, r))
	assert.Empty(t, shuffleClipIDs(nil, r))
}

// ============================================================================
// StartSession
// ============================================================================

func TestVideoTestService_StartSession_FreezesShuffledOrder(t *testing.T) {
	// Arrange
	mockTestRepo := new(MockVideoTestRepo)
	mockSessionRepo := new(MockSessionRepo)

	test := &entity.VideoTest{
		ID:       1,
		Name:     "Обязательный тест",
		Type:     entity.VideoTestTypeMandatory,
		IsActive: true,
		TestClips: []entity.VideoTestClip{
			{VideoClipID: 11, Position: 0},
			{VideoClipID: 12, Position: 1},
			{VideoClipID: 13, Position: 2},
		},
	}

	mockTestRepo.On("GetWithClips", uint(1)).Return(test, nil)
	mockSessionRepo.On("Create", mock.AnythingOfType("*entity.VideoTestSession")).Return(nil)

	svc := createTestVideoTestService(mockTestRepo, nil, mockSessionRepo, nil, nil, nil)

	// Act
	session, err := svc.StartSession(5, 1)

	// Assert
	require.NoError(t, err, "Старт сессии должен быть успешным")
	assert.Equal(t, uint(5), session.UserID)
	assert.Equal(t, 3, session.TotalClips)
	assert.ElementsMatch(t, []uint{11, 12, 13}, []uint(session.ClipIDs),
		"Замороженный порядок должен быть перестановкой эпизодов теста")
	mockTestRepo.AssertExpectations(t)
	mockSessionRepo.AssertExpectations(t)
}

func TestVideoTestService_StartSession_InactiveTest(t *testing.T) {
	mockTestRepo := new(MockVideoTestRepo)
	mockSessionRepo := new(MockSessionRepo)

	test := &entity.VideoTest{
		ID:        1,
		Type:      entity.VideoTestTypePublic,
		IsActive:  false,
		TestClips: []entity.VideoTestClip{{VideoClipID: 11}},
	}
	mockTestRepo.On("GetWithClips", uint(1)).Return(test, nil)

	svc := createTestVideoTestService(mockTestRepo, nil, mockSessionRepo, nil, nil, nil)

	session, err := svc.StartSession(5, 1)

	assert.ErrorIs(t, err, ErrTestNotAvailable, "Неактивный тест недоступен для прохождения")
	assert.Nil(t, session)
	mockSessionRepo.AssertNotCalled(t, "Create")
}

func TestVideoTestService_StartSession_UserTestForbiddenForOthers(t *testing.T) {
	mockTestRepo := new(MockVideoTestRepo)
	mockSessionRepo := new(MockSessionRepo)

	test := &entity.VideoTest{
		ID:          1,
		Type:        entity.VideoTestTypeUser,
		IsActive:    true,
		CreatedByID: 7,
		TestClips:   []entity.VideoTestClip{{VideoClipID: 11}},
	}
	mockTestRepo.On("GetWithClips", uint(1)).Return(test, nil)

	svc := createTestVideoTestService(mockTestRepo, nil, mockSessionRepo, nil, nil, nil)

	// Владелец может начать сессию
	mockSessionRepo.On("Create", mock.AnythingOfType("*entity.VideoTestSession")).Return(nil)
	_, err := svc.StartSession(7, 1)
	assert.NoError(t, err, "Владелец USER-теста может его проходить")

	// Чужой пользователь — нет
	_, err = svc.StartSession(8, 1)
	assert.ErrorIs(t, err, apperrors.ErrForbidden, "Чужой USER-тест недоступен")
}

func TestVideoTestService_StartSession_EmptyTest(t *testing.T) {
	mockTestRepo := new(MockVideoTestRepo)
	mockSessionRepo := new(MockSessionRepo)

	test := &entity.VideoTest{ID: 1, Type: entity.VideoTestTypePublic, IsActive: true}
	mockTestRepo.On("GetWithClips", uint(1)).Return(test, nil)

	svc := createTestVideoTestService(mockTestRepo, nil, mockSessionRepo, nil, nil, nil)

	session, err := svc.StartSession(5, 1)

	assert.ErrorIs(t, err, ErrTestHasNoClips, "Тест без эпизодов нельзя начать")
	assert.Nil(t, session)
}

// ============================================================================
// SubmitAnswers
// ============================================================================

func TestVideoTestService_SubmitAnswers_ForeignSession(t *testing.T) {
	mockSessionRepo := new(MockSessionRepo)

	session := &entity.VideoTestSession{ID: 1, UserID: 7, ClipIDs: entity.UintArray{11}}
	mockSessionRepo.On("GetByID", uint(1)).Return(session, nil)

	svc := createTestVideoTestService(nil, nil, mockSessionRepo, nil, nil, nil)

	result, err := svc.SubmitAnswers(8, 1, nil)

	assert.ErrorIs(t, err, apperrors.ErrForbidden, "Чужая сессия недоступна для отправки")
	assert.Nil(t, result)
}

func TestVideoTestService_SubmitAnswers_AlreadyCompleted(t *testing.T) {
	mockSessionRepo := new(MockSessionRepo)

	completedAt := time.Now()
	session := &entity.VideoTestSession{
		ID:          1,
		UserID:      7,
		ClipIDs:     entity.UintArray{11},
		CompletedAt: &completedAt,
	}
	mockSessionRepo.On("GetByID", uint(1)).Return(session, nil)

	svc := createTestVideoTestService(nil, nil, mockSessionRepo, nil, nil, nil)

	result, err := svc.SubmitAnswers(7, 1, nil)

	assert.ErrorIs(t, err, repository.ErrSessionAlreadyCompleted,
		"Повторная отправка по завершённой сессии запрещена")
	assert.Nil(t, result)
	mockSessionRepo.AssertNotCalled(t, "SaveAnswers")
}

func TestVideoTestService_SubmitAnswers_SavesAnswersAndUpsertsCompletion(t *testing.T) {
	// Arrange: обязательный тест из трёх эпизодов, ответы даны по двум
	mockTestRepo := new(MockVideoTestRepo)
	mockClipRepo := new(MockVideoClipRepo)
	mockSessionRepo := new(MockSessionRepo)
	mockUserRepo := new(MockUserRepo)

	session := &entity.VideoTestSession{
		ID:          5,
		UserID:      7,
		VideoTestID: 3,
		ClipIDs:     entity.UintArray{11, 12, 13},
		TotalClips:  3,
	}
	mockSessionRepo.On("GetByID", uint(5)).Return(session, nil)
	mockTestRepo.On("GetByID", uint(3)).
		Return(&entity.VideoTest{ID: 3, Type: entity.VideoTestTypeMandatory}, nil)
	mockClipRepo.On("GetByIDsWithTags", []uint{11, 12, 13}).
		Return([]entity.VideoClip{*decisionClip(11), *decisionClip(12), *playOnClip(13)}, nil)

	var saved []entity.VideoTestAnswer
	mockSessionRepo.On("SaveAnswers", mock.Anything, mock.AnythingOfType("[]entity.VideoTestAnswer")).
		Run(func(args mock.Arguments) {
			saved = args.Get(1).([]entity.VideoTestAnswer)
		}).Return(nil)
	mockSessionRepo.On("CompleteSession", mock.Anything, uint(5), 33, mock.AnythingOfType("time.Time")).
		Return(nil)

	var completion *entity.VideoTestCompletion
	mockSessionRepo.On("UpsertCompletion", mock.Anything, mock.AnythingOfType("*entity.VideoTestCompletion")).
		Run(func(args mock.Arguments) {
			completion = args.Get(1).(*entity.VideoTestCompletion)
		}).Return(nil).Once()
	mockUserRepo.On("IncrementVideoTestsDone", uint(7)).Return(nil)

	svc := createTestVideoTestService(mockTestRepo, mockClipRepo, mockSessionRepo, nil, mockUserRepo, nil)
	svc.txRunner = func(fn func(tx *gorm.DB) error) error { return fn(nil) }

	inputs := []AnswerInput{
		// Эпизод 11: все три слота совпали — верно
		{VideoClipID: 11, RestartTagID: uintPtr(10), SanctionTagID: uintPtr(20), CriteriaTagIDs: []uint{30, 31}},
		// Эпизод 12: совпал только restart — частично
		{VideoClipID: 12, RestartTagID: uintPtr(10)},
		// Эпизод 99 в сессию не входит — игнорируется
		{VideoClipID: 99, PlayOnNoOffence: true},
		// Эпизод 13 без ответа — пропускается
	}

	// Act
	outcome, err := svc.SubmitAnswers(7, 5, inputs)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, outcome.CorrectCount)
	assert.Equal(t, 1, outcome.PartialCount)
	require.NotNil(t, outcome.Session.Score)
	assert.Equal(t, 33, *outcome.Session.Score, "1 из 3 даёт 33% при целочисленном делении")

	require.Len(t, saved, 2, "Записи ответов только по отвеченным эпизодам сессии")
	assert.Equal(t, uint(11), saved[0].VideoClipID)
	assert.True(t, saved[0].IsCorrect)
	assert.Equal(t, uint(12), saved[1].VideoClipID)
	assert.True(t, saved[1].IsPartial)

	require.NotNil(t, completion, "Прохождение обязательного теста фиксируется отметкой")
	assert.Equal(t, uint(7), completion.UserID)
	assert.Equal(t, uint(3), completion.VideoTestID)
	assert.Equal(t, uint(5), completion.SessionID)
	assert.Equal(t, 33, completion.Score)

	mockSessionRepo.AssertExpectations(t)
	mockUserRepo.AssertExpectations(t)
}

func TestVideoTestService_SubmitAnswers_PublicTestSkipsCompletion(t *testing.T) {
	// Arrange: публичный тест из одного эпизода
	mockTestRepo := new(MockVideoTestRepo)
	mockClipRepo := new(MockVideoClipRepo)
	mockSessionRepo := new(MockSessionRepo)
	mockUserRepo := new(MockUserRepo)

	session := &entity.VideoTestSession{
		ID:          6,
		UserID:      7,
		VideoTestID: 4,
		ClipIDs:     entity.UintArray{11},
		TotalClips:  1,
	}
	mockSessionRepo.On("GetByID", uint(6)).Return(session, nil)
	mockTestRepo.On("GetByID", uint(4)).
		Return(&entity.VideoTest{ID: 4, Type: entity.VideoTestTypePublic}, nil)
	mockClipRepo.On("GetByIDsWithTags", []uint{11}).
		Return([]entity.VideoClip{*decisionClip(11)}, nil)
	mockSessionRepo.On("SaveAnswers", mock.Anything, mock.AnythingOfType("[]entity.VideoTestAnswer")).
		Return(nil)
	mockSessionRepo.On("CompleteSession", mock.Anything, uint(6), 100, mock.AnythingOfType("time.Time")).
		Return(nil)
	mockUserRepo.On("IncrementVideoTestsDone", uint(7)).Return(nil)

	svc := createTestVideoTestService(mockTestRepo, mockClipRepo, mockSessionRepo, nil, mockUserRepo, nil)
	svc.txRunner = func(fn func(tx *gorm.DB) error) error { return fn(nil) }

	inputs := []AnswerInput{
		{VideoClipID: 11, RestartTagID: uintPtr(10), SanctionTagID: uintPtr(20), CriteriaTagIDs: []uint{30, 31}},
	}

	// Act
	outcome, err := svc.SubmitAnswers(7, 6, inputs)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, outcome.CorrectCount)
	mockSessionRepo.AssertNotCalled(t, "UpsertCompletion")
	mockSessionRepo.AssertExpectations(t)
}

// ============================================================================
// RegisterClipView
// ============================================================================

func TestVideoTestService_RegisterClipView_NoLimit(t *testing.T) {
	mockTestRepo := new(MockVideoTestRepo)
	mockSessionRepo := new(MockSessionRepo)
	mockCacheRepo := new(MockCacheRepo)

	session := &entity.VideoTestSession{ID: 1, UserID: 7, VideoTestID: 2, ClipIDs: entity.UintArray{11}}
	mockSessionRepo.On("GetByID", uint(1)).Return(session, nil)
	mockTestRepo.On("GetByID", uint(2)).Return(&entity.VideoTest{ID: 2, MaxViewsPerClip: 0}, nil)

	svc := createTestVideoTestService(mockTestRepo, nil, mockSessionRepo, nil, nil, mockCacheRepo)

	remaining, err := svc.RegisterClipView(7, 1, 11)

	require.NoError(t, err)
	assert.Equal(t, -1, remaining, "Без лимита остаток просмотров равен -1")
	mockCacheRepo.AssertNotCalled(t, "Increment")
}

func TestVideoTestService_RegisterClipView_CountsAndLimits(t *testing.T) {
	mockTestRepo := new(MockVideoTestRepo)
	mockSessionRepo := new(MockSessionRepo)
	mockCacheRepo := new(MockCacheRepo)

	session := &entity.VideoTestSession{ID: 1, UserID: 7, VideoTestID: 2, ClipIDs: entity.UintArray{11}}
	mockSessionRepo.On("GetByID", uint(1)).Return(session, nil)
	mockTestRepo.On("GetByID", uint(2)).Return(&entity.VideoTest{ID: 2, MaxViewsPerClip: 2}, nil)

	key := "views:session:1:clip:11"
	mockCacheRepo.On("Increment", key).Return(int64(1), nil).Once()
	mockCacheRepo.On("Expire", key, mock.AnythingOfType("time.Duration")).Return(nil).Once()

	svc := createTestVideoTestService(mockTestRepo, nil, mockSessionRepo, nil, nil, mockCacheRepo)

	// Первый просмотр: остаётся 1
	remaining, err := svc.RegisterClipView(7, 1, 11)
	require.NoError(t, err)
	assert.Equal(t, 1, remaining)

	// Второй просмотр: остаётся 0
	mockCacheRepo.On("Increment", key).Return(int64(2), nil).Once()
	remaining, err = svc.RegisterClipView(7, 1, 11)
	require.NoError(t, err)
	assert.Equal(t, 0, remaining)

	// Третий просмотр: лимит исчерпан
	mockCacheRepo.On("Increment", key).Return(int64(3), nil).Once()
	_, err = svc.RegisterClipView(7, 1, 11)
	assert.ErrorIs(t, err, ErrViewLimitExceeded, "Просмотр сверх лимита должен быть отклонён")

	mockCacheRepo.AssertExpectations(t)
}

func TestVideoTestService_RegisterClipView_ClipOutsideSession(t *testing.T) {
	mockSessionRepo := new(MockSessionRepo)

	session := &entity.VideoTestSession{ID: 1, UserID: 7, VideoTestID: 2, ClipIDs: entity.UintArray{11}}
	mockSessionRepo.On("GetByID", uint(1)).Return(session, nil)

	svc := createTestVideoTestService(nil, nil, mockSessionRepo, nil, nil, nil)

	_, err := svc.RegisterClipView(7, 1, 99)

	assert.ErrorIs(t, err, apperrors.ErrValidation, "Эпизод вне сессии нельзя просматривать")
}

// ============================================================================
// GetSessionSummary
// ============================================================================

func TestVideoTestService_GetSessionSummary_BuildsItemsInFrozenOrder(t *testing.T) {
	// Arrange
	mockClipRepo := new(MockVideoClipRepo)
	mockSessionRepo := new(MockSessionRepo)
	mockTagRepo := new(MockTagRepo)

	completedAt := time.Now()
	score := 50
	session := &entity.VideoTestSession{
		ID:          1,
		UserID:      7,
		VideoTestID: 2,
		ClipIDs:     entity.UintArray{12, 11}, // замороженный порядок
		TotalClips:  2,
		Score:       &score,
		CompletedAt: &completedAt,
		Test:        &entity.VideoTest{ID: 2, Name: "Тест", PassingScore: 50},
		Answers: []entity.VideoTestAnswer{
			{
				SessionID:      1,
				VideoClipID:    11,
				RestartTagID:   uintPtr(10),
				SanctionTagID:  uintPtr(20),
				CriteriaTagIDs: entity.UintArray{30, 31},
				IsCorrect:      true,
			},
			// Эпизод 12 пропущен
		},
	}

	clip11 := decisionClip(11)
	clip12 := playOnClip(12)

	mockSessionRepo.On("GetWithAnswers", uint(1)).Return(session, nil)
	mockClipRepo.On("GetByIDsWithTags", []uint(session.ClipIDs)).
		Return([]entity.VideoClip{*clip12, *clip11}, nil)
	mockTagRepo.On("GetByIDs", mock.AnythingOfType("[]uint")).Return([]entity.Tag{
		{ID: 10, Name: "Штрафной удар", Category: &entity.TagCategory{Name: entity.TagCategoryRestarts}},
		{ID: 20, Name: "Жёлтая карточка", Category: &entity.TagCategory{Name: entity.TagCategorySanction}},
		{ID: 30, Name: "Безрассудно", Category: &entity.TagCategory{Name: entity.TagCategoryCriteria}},
		{ID: 31, Name: "Срыв атаки", Category: &entity.TagCategory{Name: entity.TagCategoryCriteria}},
	}, nil)

	svc := createTestVideoTestService(nil, mockClipRepo, mockSessionRepo, mockTagRepo, nil, nil)

	// Act
	summary, err := svc.GetSessionSummary(7, 1)

	// Assert
	require.NoError(t, err)
	require.Len(t, summary.Items, 2)
	assert.Equal(t, uint(12), summary.Items[0].ClipID, "Элементы сводки идут в замороженном порядке сессии")
	assert.Equal(t, uint(11), summary.Items[1].ClipID)

	assert.True(t, summary.Items[0].Skipped, "Эпизод без ответа помечается пропущенным")
	assert.Nil(t, summary.Items[0].GivenDecision)
	assert.True(t, summary.Items[0].CorrectDecision.PlayOnNoOffence)

	assert.False(t, summary.Items[1].Skipped)
	assert.True(t, summary.Items[1].IsCorrect)
	require.NotNil(t, summary.Items[1].GivenDecision)
	require.NotNil(t, summary.Items[1].GivenDecision.RestartTag)
	assert.Equal(t, "Штрафной удар", summary.Items[1].GivenDecision.RestartTag.Name,
		"Имена тегов должны быть разрешены")
	assert.Len(t, summary.Items[1].CorrectDecision.CriteriaTags, 2)

	assert.Equal(t, 1, summary.CorrectCount)
	assert.Equal(t, 50, summary.Score)
	assert.True(t, summary.Passed, "Балл на уровне проходного — тест сдан")
}

func TestVideoTestService_GetSessionSummary_NotCompleted(t *testing.T) {
	mockSessionRepo := new(MockSessionRepo)

	session := &entity.VideoTestSession{ID: 1, UserID: 7, ClipIDs: entity.UintArray{11}}
	mockSessionRepo.On("GetWithAnswers", uint(1)).Return(session, nil)

	svc := createTestVideoTestService(nil, nil, mockSessionRepo, nil, nil, nil)

	summary, err := svc.GetSessionSummary(7, 1)

	assert.ErrorIs(t, err, apperrors.ErrConflict, "Сводка доступна только для завершённой сессии")
	assert.Nil(t, summary)
}

// ============================================================================
// CreateTest (валидация)
// ============================================================================

func TestVideoTestService_CreateTest_Validation(t *testing.T) {
	svc := createTestVideoTestService(new(MockVideoTestRepo), new(MockVideoClipRepo), nil, nil, nil, nil)

	// Пустое имя
	_, err := svc.CreateTest(1, CreateTestInput{Type: entity.VideoTestTypePublic, ClipIDs: []uint{1}})
	assert.ErrorIs(t, err, apperrors.ErrValidation, "Имя теста обязательно")

	// Неизвестный тип
	_, err = svc.CreateTest(1, CreateTestInput{Name: "Тест", Type: "WEEKLY", ClipIDs: []uint{1}})
	assert.ErrorIs(t, err, apperrors.ErrValidation, "Неизвестный тип теста должен отклоняться")

	// Проходной балл вне диапазона
	_, err = svc.CreateTest(1, CreateTestInput{
		Name: "Тест", Type: entity.VideoTestTypePublic, PassingScore: 120, ClipIDs: []uint{1},
	})
	assert.ErrorIs(t, err, apperrors.ErrValidation, "Проходной балл должен быть в диапазоне 0-100")

	// Ни эпизодов, ни фильтров
	_, err = svc.CreateTest(1, CreateTestInput{Name: "Тест", Type: entity.VideoTestTypePublic})
	assert.ErrorIs(t, err, apperrors.ErrValidation, "Нужны либо эпизоды, либо фильтр-дескриптор")
}
