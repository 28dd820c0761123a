package mapper

import (
	"ai-canvas-be/internal/entity"
	"ai-canvas-be/internal/model"
)

type SuggestionMapper struct{}

func NewSuggestionMapper() *SuggestionMapper {
	return &SuggestionMapper{}
}

func (m *SuggestionMapper) ToEntity(s *model.Suggestion) *entity.Suggestion {
	if s == nil {
		return nil
	}

	return &entity.Suggestion{
		Id:                s.Id,
		DocumentId:        s.DocumentId,
		DocumentCreatedAt: s.DocumentCreatedAt,
		OriginalText:      s.OriginalText,
		SuggestedText:     s.SuggestedText,
		Description:       s.Description,
		Category:          s.Category,
		Impact:            s.Impact,
		MessageIndex:      s.MessageIndex,
		IsResolved:        s.IsResolved,
		UserId:            s.UserId,
		CreatedAt:         s.CreatedAt,
	}
}

func (m *SuggestionMapper) ToModel(s *entity.Suggestion) *model.Suggestion {
	if s == nil {
		return nil
	}

	return &model.Suggestion{
		Id:                s.Id,
		DocumentId:        s.DocumentId,
		DocumentCreatedAt: s.DocumentCreatedAt,
		OriginalText:      s.OriginalText,
		SuggestedText:     s.SuggestedText,
		Description:       s.Description,
		Category:          s.Category,
		Impact:            s.Impact,
		MessageIndex:      s.MessageIndex,
		IsResolved:        s.IsResolved,
		UserId:            s.UserId,
		CreatedAt:         s.CreatedAt,
	}
}

func (m *SuggestionMapper) ToEntities(suggestions []*model.Suggestion) []*entity.Suggestion {
	entities := make([]*entity.Suggestion, len(suggestions))
	for i, s := range suggestions {
		entities[i] = m.ToEntity(s)
	}
	return entities
}
