package dto

import (
	"time"

	"github.com/danielgol1997-byte/Referee-Website-sub001/internal/domain/entity"
	"github.com/danielgol1997-byte/Referee-Website-sub001/internal/domain/repository"
)

// TagResponse представляет тег в формате для ответа клиенту
type TagResponse struct {
	ID            uint   `json:"id"`
	TagCategoryID uint   `json:"tag_category_id"`
	Name          string `json:"name"`
	ExternalLink  string `json:"external_link,omitempty"`
}

// TagCategoryResponse представляет категорию с тегами
type TagCategoryResponse struct {
	ID                    uint          `json:"id"`
	Name                  string        `json:"name"`
	DisplayName           string        `json:"display_name"`
	AllowsCorrectDecision bool          `json:"allows_correct_decision"`
	HasExternalLinks      bool          `json:"has_external_links"`
	Tags                  []TagResponse `json:"tags"`
}

// NewTagResponse создает DTO для тега
func NewTagResponse(tag *entity.Tag) TagResponse {
	return TagResponse{
		ID:            tag.ID,
		TagCategoryID: tag.TagCategoryID,
		Name:          tag.Name,
		ExternalLink:  tag.ExternalLink,
	}
}

// NewTaxonomyResponse создает DTO для полной таксономии тегов
func NewTaxonomyResponse(categories []entity.TagCategory) []TagCategoryResponse {
	result := make([]TagCategoryResponse, 0, len(categories))
	for i := range categories {
		cat := &categories[i]
		tags := make([]TagResponse, 0, len(cat.Tags))
		for j := range cat.Tags {
			tags = append(tags, NewTagResponse(&cat.Tags[j]))
		}
		result = append(result, TagCategoryResponse{
			ID:                    cat.ID,
			Name:                  cat.Name,
			DisplayName:           cat.DisplayName,
			AllowsCorrectDecision: cat.AllowsCorrectDecision,
			HasExternalLinks:      cat.HasExternalLinks,
			Tags:                  tags,
		})
	}
	return result
}

// AdminFiltersRequest представляет фильтр-дескриптор набора эпизодов в запросе
type AdminFiltersRequest struct {
	Search       string `json:"search"`
	CategoryIDs  []uint `json:"category_ids"`
	TagIDs       []uint `json:"tag_ids"`
	OnlyActive   bool   `json:"only_active"`
	OnlyFeatured bool   `json:"only_featured"`
	Limit        int    `json:"limit" binding:"omitempty,min=1,max=100"`
}

// ToEntity преобразует запрос в сущность фильтров (nil для nil-запроса)
func (r *AdminFiltersRequest) ToEntity() *entity.AdminFilters {
	if r == nil {
		return nil
	}
	return &entity.AdminFilters{
		Search:       r.Search,
		CategoryIDs:  r.CategoryIDs,
		TagIDs:       r.TagIDs,
		OnlyActive:   r.OnlyActive,
		OnlyFeatured: r.OnlyFeatured,
		Limit:        r.Limit,
	}
}

// ClipTagResponse представляет ассоциацию тега с эпизодом (только для админки)
type ClipTagResponse struct {
	Tag               TagResponse `json:"tag"`
	IsCorrectDecision bool        `json:"is_correct_decision"`
	DecisionOrder     int         `json:"decision_order"`
}

// ClipResponse представляет эпизод для прохождения теста.
// Решение (теги и флаги play on / no offence) намеренно скрыто.
type ClipResponse struct {
	ID          uint     `json:"id"`
	Title       string   `json:"title"`
	FileURL     string   `json:"file_url"`
	DurationSec int      `json:"duration_sec"`
	LawNumbers  []string `json:"law_numbers"`
}

// AdminClipResponse представляет эпизод со всеми данными решения (админка)
type AdminClipResponse struct {
	ID          uint              `json:"id"`
	Title       string            `json:"title"`
	FileURL     string            `json:"file_url"`
	DurationSec int               `json:"duration_sec"`
	LawNumbers  []string          `json:"law_numbers"`
	PlayOn      bool              `json:"play_on"`
	NoOffence   bool              `json:"no_offence"`
	IsActive    bool              `json:"is_active"`
	IsFeatured  bool              `json:"is_featured"`
	ClipTags    []ClipTagResponse `json:"clip_tags"`
	CreatedAt   time.Time         `json:"created_at"`
}

// NewClipResponse создает DTO эпизода без данных решения
func NewClipResponse(clip *entity.VideoClip) ClipResponse {
	return ClipResponse{
		ID:          clip.ID,
		Title:       clip.Title,
		FileURL:     clip.FileURL,
		DurationSec: clip.DurationSec,
		LawNumbers:  clip.LawNumbers,
	}
}

// NewAdminClipResponse создает DTO эпизода с данными решения
func NewAdminClipResponse(clip *entity.VideoClip) *AdminClipResponse {
	clipTags := make([]ClipTagResponse, 0, len(clip.ClipTags))
	for i := range clip.ClipTags {
		ct := &clip.ClipTags[i]
		if ct.Tag == nil {
			continue
		}
		clipTags = append(clipTags, ClipTagResponse{
			Tag:               NewTagResponse(ct.Tag),
			IsCorrectDecision: ct.IsCorrectDecision,
			DecisionOrder:     ct.DecisionOrder,
		})
	}
	return &AdminClipResponse{
		ID:          clip.ID,
		Title:       clip.Title,
		FileURL:     clip.FileURL,
		DurationSec: clip.DurationSec,
		LawNumbers:  clip.LawNumbers,
		PlayOn:      clip.PlayOn,
		NoOffence:   clip.NoOffence,
		IsActive:    clip.IsActive,
		IsFeatured:  clip.IsFeatured,
		ClipTags:    clipTags,
		CreatedAt:   clip.CreatedAt,
	}
}

// PaginatedClipsResponse представляет пагинированный список эпизодов (админка)
type PaginatedClipsResponse struct {
	Clips   []*AdminClipResponse `json:"clips"`
	Total   int64                `json:"total"`
	Page    int                  `json:"page"`
	PerPage int                  `json:"per_page"`
}

// VideoTestResponse представляет видеотест в формате для ответа клиенту
type VideoTestResponse struct {
	ID              uint       `json:"id"`
	Name            string     `json:"name"`
	Description     string     `json:"description,omitempty"`
	Type            string     `json:"type"`
	PassingScore    int        `json:"passing_score"`
	MaxViewsPerClip int        `json:"max_views_per_clip"`
	DueDate         *time.Time `json:"due_date,omitempty"`
	IsActive        bool       `json:"is_active"`
	ClipCount       int        `json:"clip_count"`
	CreatedAt       time.Time  `json:"created_at"`
}

// NewVideoTestResponse создает DTO для видеотеста
func NewVideoTestResponse(test *entity.VideoTest) *VideoTestResponse {
	return &VideoTestResponse{
		ID:              test.ID,
		Name:            test.Name,
		Description:     test.Description,
		Type:            test.Type,
		PassingScore:    test.PassingScore,
		MaxViewsPerClip: test.MaxViewsPerClip,
		DueDate:         test.DueDate,
		IsActive:        test.IsActive,
		ClipCount:       len(test.TestClips),
		CreatedAt:       test.CreatedAt,
	}
}

// MandatoryTestResponse представляет обязательный тест со статусом прохождения
type MandatoryTestResponse struct {
	*VideoTestResponse
	Completed   bool       `json:"completed"`
	Score       *int       `json:"score,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// NewMandatoryTestResponse создает DTO обязательного теста со статусом
func NewMandatoryTestResponse(status *repository.MandatoryTestStatus) *MandatoryTestResponse {
	resp := &MandatoryTestResponse{
		VideoTestResponse: NewVideoTestResponse(&status.Test),
	}
	if status.Completion != nil {
		resp.Completed = true
		score := status.Completion.Score
		completedAt := status.Completion.CompletedAt
		resp.Score = &score
		resp.CompletedAt = &completedAt
	}
	return resp
}

// SessionResponse представляет сессию прохождения теста.
// Эпизоды отдаются в замороженном перемешанном порядке без данных решения.
type SessionResponse struct {
	ID          uint           `json:"id"`
	VideoTestID uint           `json:"video_test_id"`
	TotalClips  int            `json:"total_clips"`
	Score       *int           `json:"score,omitempty"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	Clips       []ClipResponse `json:"clips,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// NewSessionResponse создает DTO сессии. Эпизоды передаются отдельно,
// упорядоченные по замороженному списку сессии.
func NewSessionResponse(session *entity.VideoTestSession, clips []entity.VideoClip) *SessionResponse {
	resp := &SessionResponse{
		ID:          session.ID,
		VideoTestID: session.VideoTestID,
		TotalClips:  session.TotalClips,
		Score:       session.Score,
		CompletedAt: session.CompletedAt,
		CreatedAt:   session.CreatedAt,
	}

	if len(clips) > 0 {
		clipByID := make(map[uint]*entity.VideoClip, len(clips))
		for i := range clips {
			clipByID[clips[i].ID] = &clips[i]
		}
		resp.Clips = make([]ClipResponse, 0, len(session.ClipIDs))
		for _, id := range session.ClipIDs {
			if clip, ok := clipByID[id]; ok {
				resp.Clips = append(resp.Clips, NewClipResponse(clip))
			}
		}
	}
	return resp
}

// SubmitResultResponse представляет итог отправки ответов: сессия с баллом
// и абсолютные счётчики верных и частично верных ответов
type SubmitResultResponse struct {
	SessionResponse
	CorrectCount int `json:"correct_count"`
	PartialCount int `json:"partial_count"`
}

// NewSubmitResultResponse создает DTO итога отправки ответов
func NewSubmitResultResponse(session *entity.VideoTestSession, correctCount, partialCount int) *SubmitResultResponse {
	return &SubmitResultResponse{
		SessionResponse: *NewSessionResponse(session, nil),
		CorrectCount:    correctCount,
		PartialCount:    partialCount,
	}
}
