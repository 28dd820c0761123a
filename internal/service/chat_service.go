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
	"ai-canvas-be/pkg/artifact/merger"
	"ai-canvas-be/pkg/embedding"
	"ai-canvas-be/pkg/llm"

	"github.com/google/uuid"
)

var ErrChatSessionNotFound = errors.New("chat session not found")

type IChatService interface {
	CreateSession(ctx context.Context, userID uuid.UUID, req *dto.CreateChatSessionRequest) (*dto.CreateChatSessionResponse, error)
	ListSessions(ctx context.Context, userID uuid.UUID) ([]*dto.ChatSessionResponse, error)
	UpdateVisibility(ctx context.Context, userID uuid.UUID, req *dto.UpdateChatVisibilityRequest) error
	DeleteSession(ctx context.Context, userID uuid.UUID, sessionID uuid.UUID) error

	// GetHistory returns display-ready messages; tool-call turns that were
	// split across consecutive assistant messages come back merged.
	GetHistory(ctx context.Context, userID uuid.UUID, sessionID uuid.UUID) (*dto.ChatHistoryResponse, error)

	SendMessage(ctx context.Context, userID uuid.UUID, req *dto.SendMessageRequest) error

	// RecordDocumentTurn appends an assistant message carrying a document
	// tool invocation, so chat history reflects canvas actions.
	RecordDocumentTurn(ctx context.Context, userID uuid.UUID, sessionID uuid.UUID, toolName string, args, result interface{}) error
}

type chatService struct {
	uowFactory        unitofwork.RepositoryFactory
	llmProvider       llm.LLMProvider
	embeddingProvider embedding.EmbeddingProvider
	hub               *internalWS.Hub
	logger            logger.ILogger
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	llmProvider llm.LLMProvider,
	embeddingProvider embedding.EmbeddingProvider,
	hub *internalWS.Hub,
	log logger.ILogger,
) IChatService {
	return &chatService{
		uowFactory:        uowFactory,
		llmProvider:       llmProvider,
		embeddingProvider: embeddingProvider,
		hub:               hub,
		logger:            log,
	}
}

func (s *chatService) CreateSession(ctx context.Context, userID uuid.UUID, req *dto.CreateChatSessionRequest) (*dto.CreateChatSessionResponse, error) {
	visibility := entity.ChatVisibilityPrivate
	if req.Visibility == string(entity.ChatVisibilityPublic) {
		visibility = entity.ChatVisibilityPublic
	}

	session := &entity.ChatSession{
		Id:         uuid.New(),
		UserId:     userID,
		Title:      req.Title,
		Visibility: visibility,
		CreatedAt:  time.Now(),
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ChatSessionRepository().Create(ctx, session); err != nil {
		return nil, err
	}

	return &dto.CreateChatSessionResponse{Id: session.Id}, nil
}

func (s *chatService) ListSessions(ctx context.Context, userID uuid.UUID) ([]*dto.ChatSessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	sessions, err := uow.ChatSessionRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userID},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	out := make([]*dto.ChatSessionResponse, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, &dto.ChatSessionResponse{
			Id:         sess.Id,
			Title:      sess.Title,
			Visibility: string(sess.Visibility),
			CreatedAt:  sess.CreatedAt,
			UpdatedAt:  sess.UpdatedAt,
		})
	}
	return out, nil
}

func (s *chatService) UpdateVisibility(ctx context.Context, userID uuid.UUID, req *dto.UpdateChatVisibilityRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: req.Id})
	if err != nil {
		return err
	}
	if session == nil || session.UserId != userID {
		return ErrChatSessionNotFound
	}

	now := time.Now()
	session.Visibility = entity.ChatVisibility(req.Visibility)
	session.UpdatedAt = &now

	return uow.ChatSessionRepository().Update(ctx, session)
}

func (s *chatService) DeleteSession(ctx context.Context, userID uuid.UUID, sessionID uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: sessionID})
	if err != nil {
		return err
	}
	if session == nil || session.UserId != userID {
		return ErrChatSessionNotFound
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.ChatMessageRepository().DeleteBySessionId(ctx, sessionID); err != nil {
		return err
	}
	if err := uow.ChatSessionRepository().Delete(ctx, sessionID); err != nil {
		return err
	}

	return uow.Commit()
}

func (s *chatService) GetHistory(ctx context.Context, userID uuid.UUID, sessionID uuid.UUID) (*dto.ChatHistoryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: sessionID})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrChatSessionNotFound
	}
	// Public sessions are readable by anyone with the link.
	if session.Visibility != entity.ChatVisibilityPublic && session.UserId != userID {
		return nil, ErrChatSessionNotFound
	}

	raw, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.BySessionID{SessionID: sessionID},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, err
	}

	messages := make([]merger.Message, 0, len(raw))
	for _, m := range raw {
		var parts []merger.Part
		if err := json.Unmarshal(m.Parts, &parts); err != nil {
			s.logger.Warn("ChatService", "Skipping message with malformed parts", map[string]interface{}{
				"message_id": m.Id,
				"error":      err.Error(),
			})
			continue
		}
		messages = append(messages, merger.Message{
			ID:    m.Id.String(),
			Role:  m.Role,
			Parts: parts,
		})
	}

	return &dto.ChatHistoryResponse{
		SessionId: sessionID,
		Messages:  merger.Merge(messages),
	}, nil
}

func (s *chatService) SendMessage(ctx context.Context, userID uuid.UUID, req *dto.SendMessageRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: req.SessionId})
	if err != nil {
		return err
	}
	if session == nil || session.UserId != userID {
		return ErrChatSessionNotFound
	}

	userParts, _ := json.Marshal([]merger.Part{{Type: "text", Text: req.Text}})
	userMsg := &entity.ChatMessage{
		Id:            uuid.New(),
		ChatSessionId: req.SessionId,
		Role:          "user",
		Parts:         userParts,
		CreatedAt:     time.Now(),
	}
	if err := uow.ChatMessageRepository().Create(ctx, userMsg); err != nil {
		return err
	}

	history, err := s.buildHistory(ctx, uow, userID, req.SessionId, req.Text)
	if err != nil {
		return err
	}

	// The reply streams to the websocket in the background and is persisted
	// when complete.
	go func() {
		genCtx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
		defer cancel()

		var reply strings.Builder
		streamErr := s.llmProvider.ChatStream(genCtx, history, func(fragment string) error {
			reply.WriteString(fragment)
			s.hub.SendFrame(userID, internalWS.FrameChatDelta, map[string]interface{}{
				"session_id": req.SessionId,
				"content":    fragment,
			})
			return nil
		})
		if streamErr != nil {
			s.logger.Error("ChatService", "Chat stream failed", map[string]interface{}{
				"session_id": req.SessionId,
				"error":      streamErr.Error(),
			})
			if reply.Len() == 0 {
				return
			}
		}

		assistantParts, _ := json.Marshal([]merger.Part{{Type: "text", Text: reply.String()}})
		assistantMsg := &entity.ChatMessage{
			Id:            uuid.New(),
			ChatSessionId: req.SessionId,
			Role:          "assistant",
			Parts:         assistantParts,
			CreatedAt:     time.Now(),
		}

		persistUow := s.uowFactory.NewUnitOfWork(genCtx)
		if err := persistUow.ChatMessageRepository().Create(genCtx, assistantMsg); err != nil {
			s.logger.Error("ChatService", "Failed to persist assistant reply", map[string]interface{}{
				"session_id": req.SessionId,
				"error":      err.Error(),
			})
		}

		s.hub.SendFrame(userID, internalWS.FrameChatFinish, map[string]interface{}{
			"session_id": req.SessionId,
			"message_id": assistantMsg.Id,
		})
	}()

	return nil
}

// buildHistory assembles the provider chat history: retrieved document
// context first, then the stored conversation turns.
func (s *chatService) buildHistory(ctx context.Context, uow unitofwork.UnitOfWork, userID, sessionID uuid.UUID, query string) ([]llm.Message, error) {
	history := []llm.Message{{
		Role:    "system",
		Content: "You are a helpful writing assistant. Answer using the user's documents when relevant.",
	}}

	if chunks := s.retrieveContext(ctx, uow, userID, query); chunks != "" {
		history = append(history, llm.Message{
			Role:    "system",
			Content: "Relevant excerpts from the user's documents:\n\n" + chunks,
		})
	}

	raw, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.BySessionID{SessionID: sessionID},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, err
	}

	for _, m := range raw {
		var parts []merger.Part
		if err := json.Unmarshal(m.Parts, &parts); err != nil {
			continue
		}
		var text strings.Builder
		for _, p := range parts {
			if p.Type == "text" && p.Text != "" {
				if text.Len() > 0 {
					text.WriteString("\n")
				}
				text.WriteString(p.Text)
			}
		}
		if text.Len() == 0 {
			continue
		}
		role := m.Role
		if role != "user" && role != "assistant" {
			role = "user"
		}
		history = append(history, llm.Message{Role: role, Content: text.String()})
	}

	return history, nil
}

// retrieveContext is best effort; a failed embedding lookup degrades to a
// plain conversation instead of failing the message.
func (s *chatService) retrieveContext(ctx context.Context, uow unitofwork.UnitOfWork, userID uuid.UUID, query string) string {
	if s.embeddingProvider == nil {
		return ""
	}

	res, err := s.embeddingProvider.Generate(query, "RETRIEVAL_QUERY")
	if err != nil {
		s.logger.Warn("ChatService", "Query embedding failed", map[string]interface{}{"error": err.Error()})
		return ""
	}

	matches, err := uow.DocumentEmbeddingRepository().SearchSimilar(ctx, userID, res.Embedding.Values, 5)
	if err != nil {
		s.logger.Warn("ChatService", "Similarity search failed", map[string]interface{}{"error": err.Error()})
		return ""
	}

	var sb strings.Builder
	for i, m := range matches {
		if i > 0 {
			sb.WriteString("\n---\n")
		}
		sb.WriteString(m.Chunk)
	}
	return sb.String()
}

func (s *chatService) RecordDocumentTurn(ctx context.Context, userID uuid.UUID, sessionID uuid.UUID, toolName string, args, result interface{}) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: sessionID})
	if err != nil {
		return err
	}
	if session == nil || session.UserId != userID {
		return ErrChatSessionNotFound
	}

	argsJSON, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("marshal tool args: %w", err)
	}
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal tool result: %w", err)
	}

	parts, _ := json.Marshal(documentTurnParts(toolName, argsJSON, resultJSON))

	return uow.ChatMessageRepository().Create(ctx, &entity.ChatMessage{
		Id:            uuid.New(),
		ChatSessionId: sessionID,
		Role:          "assistant",
		Parts:         parts,
		CreatedAt:     time.Now(),
	})
}

// documentTurnParts builds the stored parts for one document tool turn. The
// result rides a separate tool-result part so history flattening pairs it
// back onto the call.
func documentTurnParts(toolName string, args, result json.RawMessage) []merger.Part {
	parts := []merger.Part{{
		Type:     "tool-call",
		ToolName: toolName,
		Args:     args,
	}}
	if len(result) > 0 {
		parts = append(parts, merger.Part{
			Type:     "tool-result",
			ToolName: toolName,
			Result:   result,
		})
	}
	return parts
}
