package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AstralMortem/go-microservice-template/internal/domain"
	"github.com/AstralMortem/go-microservice-template/internal/dto"
	"github.com/AstralMortem/go-microservice-template/internal/repository"
	"github.com/AstralMortem/go-microservice-template/pkg/cache"
	"github.com/AstralMortem/go-microservice-template/pkg/logger"
	baserepo "github.com/AstralMortem/go-microservice-template/pkg/repository"
	basesvc "github.com/AstralMortem/go-microservice-template/pkg/service"
	"github.com/AstralMortem/go-microservice-template/pkg/telemetry"
)

const documentCacheTTL = 5 * time.Minute

// DocumentService defines the business operations of the document module
type DocumentService interface {
	Get(ctx context.Context, id string) (*domain.Document, error)
	List(ctx context.Context, query *dto.ListDocumentsQuery) ([]*domain.Document, *baserepo.Page[domain.Document], error)
	Create(ctx context.Context, ownerID string, req *dto.CreateDocumentRequest) (*domain.Document, error)
	Update(ctx context.Context, id string, req *dto.UpdateDocumentRequest) (*domain.Document, error)
	Delete(ctx context.Context, id string) error
}

// documentService implements DocumentService
type documentService struct {
	basesvc.Base[domain.Document, string]
	repo  repository.DocumentRepository
	cache *cache.Client
}

// NewDocumentService creates a new DocumentService. The cache client is
// optional; without it every read hits the database.
func NewDocumentService(repo repository.DocumentRepository, cacheClient *cache.Client) DocumentService {
	return &documentService{
		Base:  basesvc.New[domain.Document, string](repo),
		repo:  repo,
		cache: cacheClient,
	}
}

// Get returns the document, read-through cached.
func (s *documentService) Get(ctx context.Context, id string) (*domain.Document, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.document.get")
	defer span.End()

	key := documentCacheKey(id)
	if s.cache != nil {
		var cached domain.Document
		hit, err := s.cache.GetJSON(ctx, key, &cached)
		if err != nil {
			logger.Get().Warn("document cache read failed", zap.String("id", id), zap.Error(err))
		} else if hit {
			return &cached, nil
		}
	}

	doc, err := s.Base.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, doc, documentCacheTTL); err != nil {
			logger.Get().Warn("document cache write failed", zap.String("id", id), zap.Error(err))
		}
	}
	return doc, nil
}

// List returns either a plain list or one page, depending on whether the
// query carries pagination parameters.
func (s *documentService) List(ctx context.Context, query *dto.ListDocumentsQuery) ([]*domain.Document, *baserepo.Page[domain.Document], error) {
	ctx, span := telemetry.StartSpan(ctx, "service.document.list")
	defer span.End()

	opts := baserepo.ListOptions{}
	if query.Title != "" {
		opts.Filters = append(opts.Filters, repository.FilterByTitle(query.Title))
	}
	if query.OwnerID != "" {
		opts.Filters = append(opts.Filters, repository.FilterByOwner(query.OwnerID))
	}
	if query.Expand != "" {
		opts.Joins = strings.Split(query.Expand, ",")
	}

	if query.Paginated() {
		page, err := s.repo.ListPage(ctx, baserepo.Pagination{Page: query.Page, PageSize: query.PageSize}, opts)
		if err != nil {
			return nil, nil, err
		}
		return nil, page, nil
	}

	items, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, nil, err
	}
	return items, nil, nil
}

// Create persists a new document owned by ownerID.
func (s *documentService) Create(ctx context.Context, ownerID string, req *dto.CreateDocumentRequest) (*domain.Document, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.document.create")
	defer span.End()

	now := time.Now().UTC()
	return s.repo.Create(ctx, baserepo.Payload{
		"id":         uuid.NewString(),
		"owner_id":   ownerID,
		"title":      req.Title,
		"content":    req.Content,
		"created_at": now,
		"updated_at": now,
	})
}

// Update overwrites the provided fields on an existing document.
func (s *documentService) Update(ctx context.Context, id string, req *dto.UpdateDocumentRequest) (*domain.Document, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.document.update")
	defer span.End()

	doc, err := s.Base.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	payload := baserepo.Payload{"updated_at": time.Now().UTC()}
	if req.Title != nil {
		payload["title"] = *req.Title
	}
	if req.Content != nil {
		payload["content"] = *req.Content
	}

	updated, err := s.repo.Update(ctx, doc, payload)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)
	return updated, nil
}

// Delete removes an existing document.
func (s *documentService) Delete(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.document.delete")
	defer span.End()

	doc, err := s.Base.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, doc); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *documentService) invalidate(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, documentCacheKey(id)); err != nil {
		logger.Get().Warn("document cache invalidation failed", zap.String("id", id), zap.Error(err))
	}
}

func documentCacheKey(id string) string {
	return "document:" + id
}
