package service

import (
	"fmt"
	"log"

	"github.com/danielgol1997-byte/Referee-Website-sub001/internal/domain/entity"
	"github.com/danielgol1997-byte/Referee-Website-sub001/internal/domain/repository"
	apperrors "github.com/danielgol1997-byte/Referee-Website-sub001/internal/pkg/errors"
)

// ClipTagInput описывает одну ассоциацию тега при создании/правке эпизода
type ClipTagInput struct {
	TagID             uint
	IsCorrectDecision bool
	DecisionOrder     int
}

// VideoClipService предоставляет методы для кураторства видеоэпизодов
type VideoClipService struct {
	clipRepo repository.VideoClipRepository
	tagRepo  repository.TagRepository
}

// NewVideoClipService создает новый сервис видеоэпизодов
func NewVideoClipService(
	clipRepo repository.VideoClipRepository,
	tagRepo repository.TagRepository,
) *VideoClipService {
	return &VideoClipService{
		clipRepo: clipRepo,
		tagRepo:  tagRepo,
	}
}

// CreateClip создает эпизод вместе с ассоциациями тегов
func (s *VideoClipService) CreateClip(clip *entity.VideoClip, tagInputs []ClipTagInput) (*entity.VideoClip, error) {
	if clip.Title == "" || clip.FileURL == "" {
		return nil, fmt.Errorf("%w: title and file_url are required", apperrors.ErrValidation)
	}

	clipTags, err := s.buildClipTags(clip.IsPlayOnOrNoOffence(), tagInputs)
	if err != nil {
		return nil, err
	}
	clip.ClipTags = clipTags

	if err := s.clipRepo.Create(clip); err != nil {
		return nil, fmt.Errorf("failed to create clip: %w", err)
	}

	log.Printf("[VideoClipService] Создан эпизод ID=%d (%q), тегов: %d", clip.ID, clip.Title, len(clipTags))
	return s.clipRepo.GetWithTags(clip.ID)
}

// UpdateClip обновляет метаданные эпизода и, если переданы, его теги
func (s *VideoClipService) UpdateClip(clipID uint, updated *entity.VideoClip, tagInputs []ClipTagInput) (*entity.VideoClip, error) {
	clip, err := s.clipRepo.GetByID(clipID)
	if err != nil {
		return nil, err
	}

	if updated.Title != "" {
		clip.Title = updated.Title
	}
	if updated.FileURL != "" {
		clip.FileURL = updated.FileURL
	}
	if updated.DurationSec > 0 {
		clip.DurationSec = updated.DurationSec
	}
	if updated.LawNumbers != nil {
		clip.LawNumbers = updated.LawNumbers
	}
	clip.PlayOn = updated.PlayOn
	clip.NoOffence = updated.NoOffence
	clip.IsFeatured = updated.IsFeatured

	if err := s.clipRepo.Update(clip); err != nil {
		return nil, fmt.Errorf("failed to update clip: %w", err)
	}

	if tagInputs != nil {
		clipTags, err := s.buildClipTags(clip.IsPlayOnOrNoOffence(), tagInputs)
		if err != nil {
			return nil, err
		}
		if err := s.clipRepo.ReplaceTags(clipID, clipTags); err != nil {
			return nil, fmt.Errorf("failed to replace clip tags: %w", err)
		}
	}

	return s.clipRepo.GetWithTags(clipID)
}

// buildClipTags валидирует входные ассоциации и строит сущности VideoClipTag.
// Правила: все теги существуют; эталонные теги разрешены только в категориях
// с allows_correct_decision; не более одного эталонного restart и sanction;
// для эпизодов play on / no offence эталонные теги запрещены.
func (s *VideoClipService) buildClipTags(playOnNoOffence bool, inputs []ClipTagInput) ([]entity.VideoClipTag, error) {
	if len(inputs) == 0 {
		return nil, nil
	}

	tagIDs := make([]uint, 0, len(inputs))
	for _, in := range inputs {
		tagIDs = append(tagIDs, in.TagID)
	}

	tags, err := s.tagRepo.GetByIDs(tagIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load tags: %w", err)
	}

	tagByID := make(map[uint]*entity.Tag, len(tags))
	for i := range tags {
		tagByID[tags[i].ID] = &tags[i]
	}

	seen := make(map[uint]bool, len(inputs))
	restartCount, sanctionCount := 0, 0
	clipTags := make([]entity.VideoClipTag, 0, len(inputs))

	for _, in := range inputs {
		tag, ok := tagByID[in.TagID]
		if !ok {
			return nil, fmt.Errorf("%w: tag %d does not exist", apperrors.ErrValidation, in.TagID)
		}
		if seen[in.TagID] {
			return nil, fmt.Errorf("%w: tag %d is listed more than once", apperrors.ErrValidation, in.TagID)
		}
		seen[in.TagID] = true

		if in.IsCorrectDecision {
			if playOnNoOffence {
				return nil, fmt.Errorf("%w: play on / no offence clips cannot have correct decision tags", apperrors.ErrValidation)
			}
			if tag.Category == nil || !tag.Category.AllowsCorrectDecision {
				return nil, fmt.Errorf("%w: tag %d (category %q) cannot be a correct decision", apperrors.ErrValidation, in.TagID, tag.CategoryName())
			}
			switch tag.CategoryName() {
			case entity.TagCategoryRestarts:
				restartCount++
				if restartCount > 1 {
					return nil, fmt.Errorf("%w: at most one correct restart tag is allowed", apperrors.ErrValidation)
				}
			case entity.TagCategorySanction:
				sanctionCount++
				if sanctionCount > 1 {
					return nil, fmt.Errorf("%w: at most one correct sanction tag is allowed", apperrors.ErrValidation)
				}
			}
		}

		clipTags = append(clipTags, entity.VideoClipTag{
			TagID:             in.TagID,
			IsCorrectDecision: in.IsCorrectDecision,
			DecisionOrder:     in.DecisionOrder,
		})
	}

	return clipTags, nil
}

// GetClip возвращает эпизод с тегами
func (s *VideoClipService) GetClip(id uint) (*entity.VideoClip, error) {
	return s.clipRepo.GetWithTags(id)
}

// ListClips возвращает эпизоды по фильтрам с пагинацией
func (s *VideoClipService) ListClips(filters repository.ClipFilters, page, pageSize int) ([]entity.VideoClip, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize
	return s.clipRepo.ListWithFilters(filters, pageSize, offset)
}

// SetClipActive включает/выключает эпизод.
// Отключённый эпизод не попадает в новые тесты, но уже замороженные сессии
// продолжают его видеть.
func (s *VideoClipService) SetClipActive(clipID uint, active bool) error {
	return s.clipRepo.SetActive(clipID, active)
}

// DeleteClip удаляет эпизод
func (s *VideoClipService) DeleteClip(id uint) error {
	if _, err := s.clipRepo.GetByID(id); err != nil {
		return err
	}
	return s.clipRepo.Delete(id)
}
