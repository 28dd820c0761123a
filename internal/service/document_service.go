package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ai-canvas-be/internal/dto"
	"ai-canvas-be/internal/entity"
	"ai-canvas-be/internal/pkg/logger"
	"ai-canvas-be/internal/repository/memory"
	"ai-canvas-be/internal/repository/specification"
	"ai-canvas-be/internal/repository/unitofwork"
	internalWS "ai-canvas-be/internal/websocket"
	"ai-canvas-be/pkg/artifact/orchestrator"
	"ai-canvas-be/pkg/artifact/stream"
	"ai-canvas-be/pkg/artifact/view"
	"ai-canvas-be/pkg/events"
	pktNats "ai-canvas-be/pkg/nats"

	"github.com/google/uuid"
)

var ErrDocumentNotFound = errors.New("document not found")
var ErrGenerationInProgress = errors.New("document generation already in progress")

type IDocumentService interface {
	Create(ctx context.Context, userID uuid.UUID, req *dto.CreateDocumentRequest) (*dto.CreateDocumentResponse, error)
	Update(ctx context.Context, userID uuid.UUID, req *dto.UpdateDocumentRequest) error
	Save(ctx context.Context, userID uuid.UUID, req *dto.SaveDocumentRequest) (*dto.DocumentResponse, error)
	GetLatest(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*dto.DocumentResponse, error)
	GetVersions(ctx context.Context, userID uuid.UUID, id uuid.UUID) ([]*dto.DocumentResponse, error)
	List(ctx context.Context, userID uuid.UUID) ([]*dto.DocumentListItem, error)
	RestoreVersion(ctx context.Context, userID uuid.UUID, req *dto.RestoreVersionRequest) error
	Delete(ctx context.Context, userID uuid.UUID, id uuid.UUID) error
}

// DocumentTurnRecorder persists a tool turn into a chat session's history
// so merged conversations show where a document was created or rewritten.
type DocumentTurnRecorder interface {
	RecordDocumentTurn(ctx context.Context, userID uuid.UUID, sessionID uuid.UUID, toolName string, args, result interface{}) error
}

type documentService struct {
	uowFactory       unitofwork.RepositoryFactory
	orchestrator     *orchestrator.Orchestrator
	artifacts        *memory.ArtifactRepository
	hub              *internalWS.Hub
	publisherService IPublisherService
	eventPublisher   *pktNats.Publisher
	turns            DocumentTurnRecorder
	logger           logger.ILogger
}

func NewDocumentService(
	uowFactory unitofwork.RepositoryFactory,
	orch *orchestrator.Orchestrator,
	artifacts *memory.ArtifactRepository,
	hub *internalWS.Hub,
	publisherService IPublisherService,
	eventPublisher *pktNats.Publisher,
	turns DocumentTurnRecorder,
	log logger.ILogger,
) IDocumentService {
	return &documentService{
		uowFactory:       uowFactory,
		orchestrator:     orch,
		artifacts:        artifacts,
		hub:              hub,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		turns:            turns,
		logger:           log,
	}
}

// hubSink forwards generation events to one user's websocket connections.
type hubSink struct {
	hub    *internalWS.Hub
	userID uuid.UUID
}

func (s *hubSink) Emit(ev stream.Event) error {
	if s.hub == nil {
		return nil
	}
	s.hub.SendEvent(s.userID, ev)
	return nil
}

func (s *documentService) Create(ctx context.Context, userID uuid.UUID, req *dto.CreateDocumentRequest) (*dto.CreateDocumentResponse, error) {
	kind := stream.Kind(req.Kind)
	if !stream.ValidKind(kind) {
		return nil, fmt.Errorf("unsupported document kind: %s", req.Kind)
	}

	docID := uuid.New()

	// Generation runs in the background; deltas reach the client over the
	// websocket while this request returns the id immediately.
	go func() {
		genCtx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		_, err := s.orchestrator.CreateDocument(genCtx, orchestrator.CreateRequest{
			DocumentID: docID.String(),
			Title:      req.Title,
			Kind:       kind,
			UserID:     userID.String(),
			Prompt:     req.Prompt,
		}, &hubSink{hub: s.hub, userID: userID})
		if err != nil {
			s.logger.Error("DocumentService", "Document generation failed", map[string]interface{}{
				"document_id": docID,
				"error":       err.Error(),
			})
			return
		}

		s.afterGeneration(genCtx, userID, docID, req.Title, "DOCUMENT_CREATED")
		s.recordTurn(genCtx, userID, req.SessionId, "createDocument",
			map[string]interface{}{"title": req.Title, "kind": req.Kind},
			map[string]interface{}{"id": docID.String(), "title": req.Title, "kind": req.Kind},
		)
	}()

	return &dto.CreateDocumentResponse{Id: docID}, nil
}

func (s *documentService) Update(ctx context.Context, userID uuid.UUID, req *dto.UpdateDocumentRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	doc, err := uow.DocumentRepository().FindLatest(ctx, req.Id)
	if err != nil {
		return err
	}
	if doc == nil || doc.UserId != userID {
		return ErrDocumentNotFound
	}

	// Reject up front so the caller gets a synchronous error instead of a
	// silently dropped background pass.
	if s.orchestrator.Running(req.Id.String()) {
		return ErrGenerationInProgress
	}

	go func() {
		genCtx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		_, err := s.orchestrator.UpdateDocument(genCtx, orchestrator.UpdateRequest{
			DocumentID:     doc.Id.String(),
			Title:          doc.Title,
			Kind:           stream.Kind(doc.Kind),
			UserID:         userID.String(),
			CurrentContent: doc.Content,
			Description:    req.Description,
		}, &hubSink{hub: s.hub, userID: userID})
		if err != nil {
			if errors.Is(err, orchestrator.ErrConcurrentUpdate) {
				return
			}
			s.logger.Error("DocumentService", "Document rewrite failed", map[string]interface{}{
				"document_id": doc.Id,
				"error":       err.Error(),
			})
			return
		}

		s.afterGeneration(genCtx, userID, doc.Id, doc.Title, "DOCUMENT_UPDATED")
		s.recordTurn(genCtx, userID, req.SessionId, "updateDocument",
			map[string]interface{}{"id": doc.Id.String(), "description": req.Description},
			map[string]interface{}{"id": doc.Id.String(), "title": doc.Title},
		)
	}()

	return nil
}

// afterGeneration queues the embedding job and fans out the notification
// event once a generation pass persisted its snapshot.
func (s *documentService) afterGeneration(ctx context.Context, userID, docID uuid.UUID, title, eventCode string) {
	payload, _ := json.Marshal(dto.PublishEmbedDocumentMessage{DocumentId: docID})
	if err := s.publisherService.Publish(ctx, payload); err != nil {
		s.logger.Warn("DocumentService", "Failed to queue embedding job", map[string]interface{}{
			"document_id": docID,
			"error":       err.Error(),
		})
	}

	if s.eventPublisher != nil {
		evt := events.BaseEvent{
			Type: eventCode,
			Data: map[string]interface{}{
				"user_id":     userID.String(),
				"title":       title,
				"entity_type": "document",
				"entity_id":   docID.String(),
			},
			OccurredAt: time.Now(),
		}
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.logger.Warn("DocumentService", fmt.Sprintf("Failed to publish %s event", eventCode), map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
}

func (s *documentService) recordTurn(ctx context.Context, userID uuid.UUID, sessionID *uuid.UUID, toolName string, args, result interface{}) {
	if s.turns == nil || sessionID == nil {
		return
	}
	if err := s.turns.RecordDocumentTurn(ctx, userID, *sessionID, toolName, args, result); err != nil {
		s.logger.Warn("DocumentService", "Failed to record document turn", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
	}
}

// Save stores a manual edit as a new version.
func (s *documentService) Save(ctx context.Context, userID uuid.UUID, req *dto.SaveDocumentRequest) (*dto.DocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	latest, err := uow.DocumentRepository().FindLatest(ctx, req.Id)
	if err != nil {
		return nil, err
	}
	if latest == nil || latest.UserId != userID {
		return nil, ErrDocumentNotFound
	}

	version := &entity.Document{
		Id:        latest.Id,
		CreatedAt: time.Now(),
		Title:     req.Title,
		Content:   req.Content,
		Kind:      latest.Kind,
		Language:  latest.Language,
		UserId:    userID,
	}

	if err := uow.DocumentRepository().Create(ctx, version); err != nil {
		return nil, err
	}

	payload, _ := json.Marshal(dto.PublishEmbedDocumentMessage{DocumentId: req.Id})
	if err := s.publisherService.Publish(ctx, payload); err != nil {
		s.logger.Warn("DocumentService", "Failed to queue embedding job", map[string]interface{}{
			"document_id": req.Id,
			"error":       err.Error(),
		})
	}

	return s.toResponse(version), nil
}

func (s *documentService) GetLatest(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*dto.DocumentResponse, error) {
	// A document being generated right now also lives in the in-memory
	// machine; view.Resolve arbitrates between that live artifact and the
	// persisted snapshot so a client joining mid-stream sees current content.
	in := view.Input{}
	if machine, ok := s.artifacts.Get(id.String()); ok {
		in.Artifact = machine.Artifact()
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	doc, err := uow.DocumentRepository().FindLatest(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc != nil {
		if doc.UserId != userID {
			return nil, ErrDocumentNotFound
		}
		in.Document = &view.Snapshot{
			DocumentID: id.String(),
			Title:      doc.Title,
			Kind:       stream.Kind(doc.Kind),
			Content:    doc.Content,
		}
	}
	if doc == nil && in.Artifact.Status != stream.StatusStreaming {
		return nil, ErrDocumentNotFound
	}

	res := view.Resolve(in)

	resp := &dto.DocumentResponse{
		Id:        id,
		Title:     res.Title,
		Content:   res.Content,
		Kind:      string(res.Kind),
		Streaming: res.Streaming,
	}
	if res.Source == view.SourceDocument {
		resp.CreatedAt = doc.CreatedAt
		resp.Language = doc.Language
	} else {
		resp.CreatedAt = time.Now()
		resp.Language = in.Artifact.Language
	}
	return resp, nil
}

func (s *documentService) GetVersions(ctx context.Context, userID uuid.UUID, id uuid.UUID) ([]*dto.DocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	versions, err := uow.DocumentRepository().FindVersions(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(versions) == 0 || versions[0].UserId != userID {
		return nil, ErrDocumentNotFound
	}

	out := make([]*dto.DocumentResponse, 0, len(versions))
	for _, v := range versions {
		out = append(out, s.toResponse(v))
	}
	return out, nil
}

func (s *documentService) List(ctx context.Context, userID uuid.UUID) ([]*dto.DocumentListItem, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	docs, err := uow.DocumentRepository().FindLatestPerDocument(ctx, specification.UserOwnedBy{UserID: userID})
	if err != nil {
		return nil, err
	}

	items := make([]*dto.DocumentListItem, 0, len(docs))
	for _, d := range docs {
		items = append(items, &dto.DocumentListItem{
			Id:        d.Id,
			CreatedAt: d.CreatedAt,
			Title:     d.Title,
			Kind:      string(d.Kind),
		})
	}
	return items, nil
}

func (s *documentService) RestoreVersion(ctx context.Context, userID uuid.UUID, req *dto.RestoreVersionRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	latest, err := uow.DocumentRepository().FindLatest(ctx, req.Id)
	if err != nil {
		return err
	}
	if latest == nil || latest.UserId != userID {
		return ErrDocumentNotFound
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	// Dropping the newer versions makes the version at the timestamp the
	// current one again; suggestions pinned to dropped versions go with them.
	if err := uow.DocumentRepository().DeleteVersionsAfter(ctx, req.Id, req.Timestamp); err != nil {
		return err
	}
	if err := uow.SuggestionRepository().DeleteByDocumentAfter(ctx, req.Id, req.Timestamp); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	payload, _ := json.Marshal(dto.PublishEmbedDocumentMessage{DocumentId: req.Id})
	if err := s.publisherService.Publish(ctx, payload); err != nil {
		s.logger.Warn("DocumentService", "Failed to queue embedding job after restore", map[string]interface{}{
			"document_id": req.Id,
			"error":       err.Error(),
		})
	}

	return nil
}

func (s *documentService) Delete(ctx context.Context, userID uuid.UUID, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	latest, err := uow.DocumentRepository().FindLatest(ctx, id)
	if err != nil {
		return err
	}
	if latest == nil || latest.UserId != userID {
		return ErrDocumentNotFound
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.DocumentRepository().DeleteAllVersions(ctx, id); err != nil {
		return err
	}
	if err := uow.DocumentEmbeddingRepository().DeleteByDocumentId(ctx, id); err != nil {
		return err
	}

	return uow.Commit()
}

// SnapshotSaver persists generation snapshots as new document versions. It
// satisfies the orchestrator's persistence contract.
type SnapshotSaver struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewSnapshotSaver(uowFactory unitofwork.RepositoryFactory) *SnapshotSaver {
	return &SnapshotSaver{uowFactory: uowFactory}
}

func (s *SnapshotSaver) SaveSnapshot(ctx context.Context, snap orchestrator.Snapshot) error {
	docID, err := uuid.Parse(snap.DocumentID)
	if err != nil {
		return fmt.Errorf("invalid document id %q: %w", snap.DocumentID, err)
	}
	userID, err := uuid.Parse(snap.UserID)
	if err != nil {
		return fmt.Errorf("invalid user id %q: %w", snap.UserID, err)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.DocumentRepository().Create(ctx, &entity.Document{
		Id:        docID,
		CreatedAt: time.Now(),
		Title:     snap.Title,
		Content:   snap.Content,
		Kind:      entity.DocumentKind(snap.Kind),
		Language:  snap.Language,
		UserId:    userID,
	})
}

func (s *documentService) toResponse(doc *entity.Document) *dto.DocumentResponse {
	return &dto.DocumentResponse{
		Id:        doc.Id,
		CreatedAt: doc.CreatedAt,
		Title:     doc.Title,
		Content:   doc.Content,
		Kind:      string(doc.Kind),
		Language:  doc.Language,
		Streaming: false,
	}
}
