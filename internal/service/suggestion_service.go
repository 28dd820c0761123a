package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"ai-canvas-be/internal/dto"
	"ai-canvas-be/internal/entity"
	"ai-canvas-be/internal/pkg/logger"
	"ai-canvas-be/internal/repository/specification"
	"ai-canvas-be/internal/repository/unitofwork"
	internalWS "ai-canvas-be/internal/websocket"
	"ai-canvas-be/pkg/artifact/stream"
	"ai-canvas-be/pkg/events"
	"ai-canvas-be/pkg/llm"
	pktNats "ai-canvas-be/pkg/nats"

	"github.com/google/uuid"
)

var ErrSuggestionNotFound = errors.New("suggestion not found")

type ISuggestionService interface {
	// Generate asks the model for writing suggestions against the latest
	// version, persists them, and streams each to the owner.
	Generate(ctx context.Context, userID uuid.UUID, req *dto.GenerateSuggestionsRequest) error
	List(ctx context.Context, userID uuid.UUID, documentID uuid.UUID) ([]*dto.SuggestionResponse, error)
	Resolve(ctx context.Context, userID uuid.UUID, id uuid.UUID) error
}

type suggestionService struct {
	uowFactory     unitofwork.RepositoryFactory
	llmProvider    llm.LLMProvider
	hub            *internalWS.Hub
	eventPublisher *pktNats.Publisher
	logger         logger.ILogger
}

func NewSuggestionService(
	uowFactory unitofwork.RepositoryFactory,
	llmProvider llm.LLMProvider,
	hub *internalWS.Hub,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) ISuggestionService {
	return &suggestionService{
		uowFactory:     uowFactory,
		llmProvider:    llmProvider,
		hub:            hub,
		eventPublisher: eventPublisher,
		logger:         log,
	}
}

const suggestionSystemPrompt = `You are a writing reviewer. Given a document, propose concrete improvements.
Respond with a JSON array only, no prose. Each element:
{"original_text": "...", "suggested_text": "...", "description": "...", "category": "...", "impact": "..."}
original_text must be an exact excerpt of the document.
category is one of: clarity, grammar, structure, organization, flow.
impact is one of: high, medium, low.
Propose at most 5 suggestions.`

// rawSuggestion is the model's response element shape.
type rawSuggestion struct {
	OriginalText  string `json:"original_text"`
	SuggestedText string `json:"suggested_text"`
	Description   string `json:"description"`
	Category      string `json:"category"`
	Impact        string `json:"impact"`
}

// normalizeCategory clamps a model-provided category to the known set.
func normalizeCategory(c string) string {
	switch strings.ToLower(strings.TrimSpace(c)) {
	case "clarity", "grammar", "structure", "organization", "flow":
		return strings.ToLower(strings.TrimSpace(c))
	}
	return "clarity"
}

// normalizeImpact clamps a model-provided impact to the known set.
func normalizeImpact(i string) string {
	switch strings.ToLower(strings.TrimSpace(i)) {
	case "high", "medium", "low":
		return strings.ToLower(strings.TrimSpace(i))
	}
	return "medium"
}

func (s *suggestionService) Generate(ctx context.Context, userID uuid.UUID, req *dto.GenerateSuggestionsRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	doc, err := uow.DocumentRepository().FindLatest(ctx, req.DocumentId)
	if err != nil {
		return err
	}
	if doc == nil || doc.UserId != userID {
		return ErrDocumentNotFound
	}
	if doc.Content == "" {
		return errors.New("document has no content to review")
	}

	go func() {
		genCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		history := []llm.Message{
			{Role: "system", Content: suggestionSystemPrompt},
			{Role: "user", Content: doc.Content},
		}

		response, err := s.llmProvider.Chat(genCtx, history)
		if err != nil {
			s.logger.Error("SuggestionService", "Suggestion generation failed", map[string]interface{}{
				"document_id": doc.Id,
				"error":       err.Error(),
			})
			return
		}

		parsed, err := parseSuggestions(response)
		if err != nil {
			s.logger.Error("SuggestionService", "Could not parse model response", map[string]interface{}{
				"document_id": doc.Id,
				"error":       err.Error(),
			})
			return
		}
		if len(parsed) == 0 {
			return
		}

		now := time.Now()
		suggestions := make([]*entity.Suggestion, 0, len(parsed))
		for _, p := range parsed {
			if p.OriginalText == "" || p.SuggestedText == "" {
				continue
			}
			suggestions = append(suggestions, &entity.Suggestion{
				Id:                uuid.New(),
				DocumentId:        doc.Id,
				DocumentCreatedAt: doc.CreatedAt,
				OriginalText:      p.OriginalText,
				SuggestedText:     p.SuggestedText,
				Description:       p.Description,
				Category:          normalizeCategory(p.Category),
				Impact:            normalizeImpact(p.Impact),
				IsResolved:        false,
				UserId:            userID,
				CreatedAt:         now,
			})
		}
		if len(suggestions) == 0 {
			return
		}

		persistUow := s.uowFactory.NewUnitOfWork(genCtx)
		if err := persistUow.SuggestionRepository().CreateBatch(genCtx, suggestions); err != nil {
			s.logger.Error("SuggestionService", "Failed to persist suggestions", map[string]interface{}{
				"document_id": doc.Id,
				"error":       err.Error(),
			})
			return
		}

		// Each suggestion rides the artifact event channel so an open
		// editor can annotate inline as they arrive.
		for _, sg := range suggestions {
			s.hub.SendEvent(userID, stream.Event{
				Type:       stream.EventSuggestion,
				DocumentID: sg.DocumentId.String(),
				Suggestion: &stream.Suggestion{
					ID:                sg.Id.String(),
					DocumentID:        sg.DocumentId.String(),
					DocumentCreatedAt: sg.DocumentCreatedAt,
					OriginalText:      sg.OriginalText,
					SuggestedText:     sg.SuggestedText,
					Description:       sg.Description,
					Category:          sg.Category,
					Impact:            sg.Impact,
					MessageIndex:      sg.MessageIndex,
					IsResolved:        sg.IsResolved,
					UserID:            sg.UserId.String(),
					CreatedAt:         sg.CreatedAt,
				},
			})
		}

		if s.eventPublisher != nil {
			evt := events.BaseEvent{
				Type: "SUGGESTIONS_READY",
				Data: map[string]interface{}{
					"user_id":     userID.String(),
					"title":       doc.Title,
					"entity_type": "document",
					"entity_id":   doc.Id.String(),
				},
				OccurredAt: time.Now(),
			}
			if err := s.eventPublisher.Publish(genCtx, evt); err != nil {
				s.logger.Warn("SuggestionService", "Failed to publish SUGGESTIONS_READY event", map[string]interface{}{
					"error": err.Error(),
				})
			}
		}
	}()

	return nil
}

// parseSuggestions tolerates the model wrapping the array in a code fence.
func parseSuggestions(response string) ([]rawSuggestion, error) {
	trimmed := strings.TrimSpace(response)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
		trimmed = strings.TrimSpace(trimmed)
	}

	start := strings.Index(trimmed, "[")
	end := strings.LastIndex(trimmed, "]")
	if start < 0 || end < start {
		return nil, fmt.Errorf("no JSON array in response")
	}

	var out []rawSuggestion
	if err := json.Unmarshal([]byte(trimmed[start:end+1]), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *suggestionService) List(ctx context.Context, userID uuid.UUID, documentID uuid.UUID) ([]*dto.SuggestionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	doc, err := uow.DocumentRepository().FindLatest(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc == nil || doc.UserId != userID {
		return nil, ErrDocumentNotFound
	}

	suggestions, err := uow.SuggestionRepository().FindAll(ctx,
		specification.ByDocumentID{DocumentID: documentID},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, err
	}

	out := make([]*dto.SuggestionResponse, 0, len(suggestions))
	for _, sg := range suggestions {
		out = append(out, &dto.SuggestionResponse{
			Id:                sg.Id,
			DocumentId:        sg.DocumentId,
			DocumentCreatedAt: sg.DocumentCreatedAt,
			OriginalText:      sg.OriginalText,
			SuggestedText:     sg.SuggestedText,
			Description:       sg.Description,
			Category:          sg.Category,
			Impact:            sg.Impact,
			MessageIndex:      sg.MessageIndex,
			IsResolved:        sg.IsResolved,
			CreatedAt:         sg.CreatedAt,
		})
	}
	return out, nil
}

func (s *suggestionService) Resolve(ctx context.Context, userID uuid.UUID, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	suggestion, err := uow.SuggestionRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if suggestion == nil || suggestion.UserId != userID {
		return ErrSuggestionNotFound
	}

	return uow.SuggestionRepository().Resolve(ctx, id)
}
