package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/danielgol1997-byte/Referee-Website-sub001/internal/domain/entity"
	apperrors "github.com/danielgol1997-byte/Referee-Website-sub001/internal/pkg/errors"
)

func decisionTaxonomy() []entity.Tag {
	restarts := &entity.TagCategory{ID: 1, Name: entity.TagCategoryRestarts, AllowsCorrectDecision: true}
	sanction := &entity.TagCategory{ID: 2, Name: entity.TagCategorySanction, AllowsCorrectDecision: true}
	criteria := &entity.TagCategory{ID: 3, Name: entity.TagCategoryCriteria, AllowsCorrectDecision: true}
	category := &entity.TagCategory{ID: 4, Name: entity.TagCategoryCategory}
	return []entity.Tag{
		{ID: 10, TagCategoryID: 1, Name: "Штрафной удар", Category: restarts},
		{ID: 11, TagCategoryID: 1, Name: "Свободный удар", Category: restarts},
		{ID: 20, TagCategoryID: 2, Name: "Жёлтая карточка", Category: sanction},
		{ID: 30, TagCategoryID: 3, Name: "Безрассудно", Category: criteria},
		{ID: 40, TagCategoryID: 4, Name: "Единоборства", Category: category},
	}
}

func TestVideoClipService_CreateClip_WithDecisionTags(t *testing.T) {
	// Arrange
	mockClipRepo := new(MockVideoClipRepo)
	mockTagRepo := new(MockTagRepo)

	mockTagRepo.On("GetByIDs", mock.AnythingOfType("[]uint")).Return(decisionTaxonomy(), nil)
	mockClipRepo.On("Create", mock.AnythingOfType("*entity.VideoClip")).
		Run(func(args mock.Arguments) {
			args.Get(0).(*entity.VideoClip).ID = 1
		}).Return(nil)
	mockClipRepo.On("GetWithTags", uint(1)).Return(&entity.VideoClip{ID: 1, Title: "Подкат сзади"}, nil)

	svc := NewVideoClipService(mockClipRepo, mockTagRepo)

	clip := &entity.VideoClip{Title: "Подкат сзади", FileURL: "https://cdn.example.com/clip1.mp4"}
	inputs := []ClipTagInput{
		{TagID: 10, IsCorrectDecision: true},
		{TagID: 20, IsCorrectDecision: true},
		{TagID: 30, IsCorrectDecision: true, DecisionOrder: 1},
		{TagID: 40}, // навигационный тег без эталона
	}

	// Act
	created, err := svc.CreateClip(clip, inputs)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, uint(1), created.ID)
	mockClipRepo.AssertExpectations(t)
}

func TestVideoClipService_CreateClip_RequiresTitleAndURL(t *testing.T) {
	mockClipRepo := new(MockVideoClipRepo)
	svc := NewVideoClipService(mockClipRepo, new(MockTagRepo))

	_, err := svc.CreateClip(&entity.VideoClip{FileURL: "https://cdn.example.com/x.mp4"}, nil)
	assert.ErrorIs(t, err, apperrors.ErrValidation, "Название обязательно")

	_, err = svc.CreateClip(&entity.VideoClip{Title: "Эпизод"}, nil)
	assert.ErrorIs(t, err, apperrors.ErrValidation, "Ссылка на файл обязательна")

	mockClipRepo.AssertNotCalled(t, "Create")
}

func TestVideoClipService_CreateClip_RejectsTwoRestartTags(t *testing.T) {
	mockClipRepo := new(MockVideoClipRepo)
	mockTagRepo := new(MockTagRepo)

	mockTagRepo.On("GetByIDs", mock.AnythingOfType("[]uint")).Return(decisionTaxonomy(), nil)

	svc := NewVideoClipService(mockClipRepo, mockTagRepo)

	clip := &entity.VideoClip{Title: "Эпизод", FileURL: "https://cdn.example.com/x.mp4"}
	inputs := []ClipTagInput{
		{TagID: 10, IsCorrectDecision: true},
		{TagID: 11, IsCorrectDecision: true}, // второй restart
	}

	_, err := svc.CreateClip(clip, inputs)

	assert.ErrorIs(t, err, apperrors.ErrValidation, "Допустим не более одного эталонного restart-тега")
	mockClipRepo.AssertNotCalled(t, "Create")
}

func TestVideoClipService_CreateClip_RejectsDecisionInNavigationCategory(t *testing.T) {
	mockClipRepo := new(MockVideoClipRepo)
	mockTagRepo := new(MockTagRepo)

	mockTagRepo.On("GetByIDs", mock.AnythingOfType("[]uint")).Return(decisionTaxonomy(), nil)

	svc := NewVideoClipService(mockClipRepo, mockTagRepo)

	clip := &entity.VideoClip{Title: "Эпизод", FileURL: "https://cdn.example.com/x.mp4"}
	inputs := []ClipTagInput{
		{TagID: 40, IsCorrectDecision: true}, // категория category не допускает эталон
	}

	_, err := svc.CreateClip(clip, inputs)

	assert.ErrorIs(t, err, apperrors.ErrValidation,
		"Эталонные теги разрешены только в категориях с allows_correct_decision")
}

func TestVideoClipService_CreateClip_PlayOnForbidsDecisionTags(t *testing.T) {
	mockClipRepo := new(MockVideoClipRepo)
	mockTagRepo := new(MockTagRepo)

	mockTagRepo.On("GetByIDs", mock.AnythingOfType("[]uint")).Return(decisionTaxonomy(), nil)

	svc := NewVideoClipService(mockClipRepo, mockTagRepo)

	clip := &entity.VideoClip{Title: "Чистый отбор", FileURL: "https://cdn.example.com/x.mp4", PlayOn: true}
	inputs := []ClipTagInput{{TagID: 10, IsCorrectDecision: true}}

	_, err := svc.CreateClip(clip, inputs)

	assert.ErrorIs(t, err, apperrors.ErrValidation,
		"Для play on эпизодов эталонные теги запрещены")
}

func TestVideoClipService_CreateClip_RejectsUnknownAndDuplicateTags(t *testing.T) {
	mockClipRepo := new(MockVideoClipRepo)
	mockTagRepo := new(MockTagRepo)

	mockTagRepo.On("GetByIDs", mock.AnythingOfType("[]uint")).Return(decisionTaxonomy(), nil)

	svc := NewVideoClipService(mockClipRepo, mockTagRepo)
	clip := &entity.VideoClip{Title: "Эпизод", FileURL: "https://cdn.example.com/x.mp4"}

	_, err := svc.CreateClip(clip, []ClipTagInput{{TagID: 999}})
	assert.ErrorIs(t, err, apperrors.ErrValidation, "Несуществующий тег должен отклоняться")

	_, err = svc.CreateClip(clip, []ClipTagInput{{TagID: 40}, {TagID: 40}})
	assert.ErrorIs(t, err, apperrors.ErrValidation, "Дубликат тега должен отклоняться")
}

func TestVideoClipService_UpdateClip_NilTagsKeepExisting(t *testing.T) {
	// Arrange
	mockClipRepo := new(MockVideoClipRepo)
	mockTagRepo := new(MockTagRepo)

	existing := &entity.VideoClip{ID: 1, Title: "Старое название", FileURL: "https://cdn.example.com/x.mp4"}
	mockClipRepo.On("GetByID", uint(1)).Return(existing, nil)
	mockClipRepo.On("Update", mock.AnythingOfType("*entity.VideoClip")).Return(nil)
	mockClipRepo.On("GetWithTags", uint(1)).Return(existing, nil)

	svc := NewVideoClipService(mockClipRepo, mockTagRepo)

	// Act: tagInputs == nil — теги не трогаем
	_, err := svc.UpdateClip(1, &entity.VideoClip{Title: "Новое название"}, nil)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "Новое название", existing.Title)
	mockClipRepo.AssertNotCalled(t, "ReplaceTags")
}
