package service

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/danielgol1997-byte/Referee-Website-sub001/internal/domain/entity"
	"github.com/danielgol1997-byte/Referee-Website-sub001/internal/domain/repository"
	apperrors "github.com/danielgol1997-byte/Referee-Website-sub001/internal/pkg/errors"
)

const (
	// Ключ кеша полной таксономии тегов
	tagTaxonomyCacheKey = "tags:taxonomy"
	// Таксономия меняется редко, кешируем надолго
	tagTaxonomyCacheTTL = 1 * time.Hour
)

// TagService предоставляет методы для работы с категориями тегов и тегами
type TagService struct {
	categoryRepo repository.TagCategoryRepository
	tagRepo      repository.TagRepository
	cacheRepo    repository.CacheRepository
}

// NewTagService создает новый сервис тегов
func NewTagService(
	categoryRepo repository.TagCategoryRepository,
	tagRepo repository.TagRepository,
	cacheRepo repository.CacheRepository,
) *TagService {
	return &TagService{
		categoryRepo: categoryRepo,
		tagRepo:      tagRepo,
		cacheRepo:    cacheRepo,
	}
}

// GetTaxonomy возвращает все категории с тегами.
// Результат кешируется в Redis: таксономия читается на каждом экране конструктора.
func (s *TagService) GetTaxonomy() ([]entity.TagCategory, error) {
	var categories []entity.TagCategory

	err := s.cacheRepo.GetJSON(tagTaxonomyCacheKey, &categories)
	if err == nil {
		return categories, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		// Проблемы с кешем не фатальны, идём в БД
		log.Printf("[TagService] Ошибка чтения таксономии из кеша: %v", err)
	}

	categories, err = s.categoryRepo.ListWithTags()
	if err != nil {
		return nil, fmt.Errorf("failed to load tag taxonomy: %w", err)
	}

	if cacheErr := s.cacheRepo.SetJSON(tagTaxonomyCacheKey, categories, tagTaxonomyCacheTTL); cacheErr != nil {
		log.Printf("[TagService] Ошибка записи таксономии в кеш: %v", cacheErr)
	}

	return categories, nil
}

// invalidateTaxonomyCache сбрасывает кеш таксономии после любых правок
func (s *TagService) invalidateTaxonomyCache() {
	if err := s.cacheRepo.Delete(tagTaxonomyCacheKey); err != nil {
		log.Printf("[TagService] Ошибка сброса кеша таксономии: %v", err)
	}
}

// CreateCategory создает новую категорию тегов
func (s *TagService) CreateCategory(name, displayName string, allowsCorrectDecision, hasExternalLinks bool) (*entity.TagCategory, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: category name is required", apperrors.ErrValidation)
	}

	category := &entity.TagCategory{
		Name:                  name,
		DisplayName:           displayName,
		AllowsCorrectDecision: allowsCorrectDecision,
		HasExternalLinks:      hasExternalLinks,
	}

	if err := s.categoryRepo.Create(category); err != nil {
		return nil, fmt.Errorf("failed to create tag category: %w", err)
	}

	s.invalidateTaxonomyCache()
	return category, nil
}

// UpdateCategory обновляет категорию тегов
func (s *TagService) UpdateCategory(id uint, displayName string, allowsCorrectDecision, hasExternalLinks bool) (*entity.TagCategory, error) {
	category, err := s.categoryRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	category.DisplayName = displayName
	category.AllowsCorrectDecision = allowsCorrectDecision
	category.HasExternalLinks = hasExternalLinks

	if err := s.categoryRepo.Update(category); err != nil {
		return nil, fmt.Errorf("failed to update tag category: %w", err)
	}

	s.invalidateTaxonomyCache()
	return category, nil
}

// CreateTag создает новый тег в категории
func (s *TagService) CreateTag(categoryID uint, name, externalLink string) (*entity.Tag, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: tag name is required", apperrors.ErrValidation)
	}

	category, err := s.categoryRepo.GetByID(categoryID)
	if err != nil {
		return nil, err
	}

	// Внешние ссылки допустимы только в категориях с has_external_links
	if externalLink != "" && !category.HasExternalLinks {
		return nil, fmt.Errorf("%w: category %q does not allow external links", apperrors.ErrValidation, category.Name)
	}

	tag := &entity.Tag{
		TagCategoryID: categoryID,
		Name:          name,
		ExternalLink:  externalLink,
	}

	if err := s.tagRepo.Create(tag); err != nil {
		return nil, fmt.Errorf("failed to create tag: %w", err)
	}

	s.invalidateTaxonomyCache()
	return tag, nil
}

// UpdateTag обновляет тег
func (s *TagService) UpdateTag(id uint, name, externalLink string) (*entity.Tag, error) {
	tag, err := s.tagRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if externalLink != "" && tag.Category != nil && !tag.Category.HasExternalLinks {
		return nil, fmt.Errorf("%w: category %q does not allow external links", apperrors.ErrValidation, tag.Category.Name)
	}

	if name != "" {
		tag.Name = name
	}
	tag.ExternalLink = externalLink

	if err := s.tagRepo.Update(tag); err != nil {
		return nil, fmt.Errorf("failed to update tag: %w", err)
	}

	s.invalidateTaxonomyCache()
	return tag, nil
}

// DeleteTag удаляет тег
func (s *TagService) DeleteTag(id uint) error {
	if _, err := s.tagRepo.GetByID(id); err != nil {
		return err
	}
	if err := s.tagRepo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete tag: %w", err)
	}
	s.invalidateTaxonomyCache()
	return nil
}

// GetTagsByIDs возвращает теги по списку ID одним запросом
func (s *TagService) GetTagsByIDs(ids []uint) ([]entity.Tag, error) {
	return s.tagRepo.GetByIDs(ids)
}
