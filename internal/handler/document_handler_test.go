package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/AstralMortem/go-microservice-template/internal/domain"
	"github.com/AstralMortem/go-microservice-template/internal/dto"
	"github.com/AstralMortem/go-microservice-template/pkg/apperror"
	"github.com/AstralMortem/go-microservice-template/pkg/config"
	"github.com/AstralMortem/go-microservice-template/pkg/credential"
	"github.com/AstralMortem/go-microservice-template/pkg/middleware"
	baserepo "github.com/AstralMortem/go-microservice-template/pkg/repository"
	"github.com/AstralMortem/go-microservice-template/pkg/token"
)

// MockDocumentService is a map-backed implementation of service.DocumentService
type MockDocumentService struct {
	documents map[string]*domain.Document
}

func NewMockDocumentService() *MockDocumentService {
	return &MockDocumentService{documents: make(map[string]*domain.Document)}
}

func (m *MockDocumentService) AddDocument(doc *domain.Document) {
	m.documents[doc.ID] = doc
}

func (m *MockDocumentService) Get(ctx context.Context, id string) (*domain.Document, error) {
	doc, ok := m.documents[id]
	if !ok {
		return nil, apperror.NotFound()
	}
	return doc, nil
}

func (m *MockDocumentService) List(ctx context.Context, query *dto.ListDocumentsQuery) ([]*domain.Document, *baserepo.Page[domain.Document], error) {
	var docs []*domain.Document
	for _, d := range m.documents {
		docs = append(docs, d)
	}
	if query.Paginated() {
		return nil, &baserepo.Page[domain.Document]{
			Items:    docs,
			Total:    int64(len(docs)),
			Page:     query.Page,
			PageSize: query.PageSize,
		}, nil
	}
	return docs, nil, nil
}

func (m *MockDocumentService) Create(ctx context.Context, ownerID string, req *dto.CreateDocumentRequest) (*domain.Document, error) {
	now := time.Now().UTC()
	doc := &domain.Document{
		ID:        "doc-123",
		OwnerID:   ownerID,
		Title:     req.Title,
		Content:   req.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.documents[doc.ID] = doc
	return doc, nil
}

func (m *MockDocumentService) Update(ctx context.Context, id string, req *dto.UpdateDocumentRequest) (*domain.Document, error) {
	doc, ok := m.documents[id]
	if !ok {
		return nil, apperror.NotFound()
	}
	if req.Title != nil {
		doc.Title = *req.Title
	}
	if req.Content != nil {
		doc.Content = *req.Content
	}
	return doc, nil
}

func (m *MockDocumentService) Delete(ctx context.Context, id string) error {
	if _, ok := m.documents[id]; !ok {
		return apperror.NotFound()
	}
	delete(m.documents, id)
	return nil
}

func setupDocumentRouter(t *testing.T, h *DocumentHandler) (*gin.Engine, *token.Codec) {
	t.Helper()
	codec, err := token.NewCodec(config.JWTConfig{
		Secret:          "test-secret",
		Algorithm:       "HS256",
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: 24 * time.Hour,
	})
	require.NoError(t, err)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.ErrorHandler(false))

	read := credential.Permission("doc:read").Or(credential.Permission("doc:write"))
	write := credential.Permission("doc:write")

	docs := router.Group("/api/documents")
	{
		docs.GET("", middleware.AuthRequired(codec, true, read), h.List)
		docs.GET("/:id", middleware.AuthRequired(codec, true, read), h.Get)
		docs.POST("", middleware.AuthRequired(codec, true, write), h.Create)
		docs.PUT("/:id", middleware.AuthRequired(codec, true, write), h.Update)
		docs.DELETE("/:id", middleware.AuthRequired(codec, true, write), h.Delete)
	}

	return router, codec
}

func bearerRequest(t *testing.T, codec *token.Codec, method, url string, body any, permissions []string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	raw, err := codec.IssueAccess("user-1", nil, permissions)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+raw)
	return req
}

func TestDocumentHandler_Get(t *testing.T) {
	mockSvc := NewMockDocumentService()
	handler := NewDocumentHandler(mockSvc)
	router, codec := setupDocumentRouter(t, handler)

	mockSvc.AddDocument(&domain.Document{ID: "doc-1", OwnerID: "user-1", Title: "Notes"})

	tests := []struct {
		name       string
		id         string
		wantStatus int
	}{
		{name: "existing document", id: "doc-1", wantStatus: http.StatusOK},
		{name: "missing document", id: "nope", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := bearerRequest(t, codec, http.MethodGet, "/api/documents/"+tt.id, nil, []string{"doc:read"})
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
		})
	}
}

func TestDocumentHandler_List(t *testing.T) {
	mockSvc := NewMockDocumentService()
	handler := NewDocumentHandler(mockSvc)
	router, codec := setupDocumentRouter(t, handler)

	mockSvc.AddDocument(&domain.Document{ID: "doc-1", OwnerID: "user-1", Title: "Notes"})

	t.Run("unpaginated returns an array", func(t *testing.T) {
		req := bearerRequest(t, codec, http.MethodGet, "/api/documents", nil, []string{"doc:read"})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var items []*domain.Document
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
		require.Len(t, items, 1)
	})

	t.Run("paginated returns a page envelope", func(t *testing.T) {
		req := bearerRequest(t, codec, http.MethodGet, "/api/documents?page=1&page_size=10", nil, []string{"doc:read"})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var page baserepo.Page[domain.Document]
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
		require.EqualValues(t, 1, page.Total)
		require.Equal(t, 10, page.PageSize)
	})
}

func TestDocumentHandler_Create(t *testing.T) {
	mockSvc := NewMockDocumentService()
	handler := NewDocumentHandler(mockSvc)
	router, codec := setupDocumentRouter(t, handler)

	t.Run("owner comes from the token subject", func(t *testing.T) {
		body := dto.CreateDocumentRequest{Title: "Notes", Content: "text"}
		req := bearerRequest(t, codec, http.MethodPost, "/api/documents", body, []string{"doc:write"})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusCreated, w.Code)
		var doc domain.Document
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
		require.Equal(t, "user-1", doc.OwnerID)
	})

	t.Run("missing title is rejected", func(t *testing.T) {
		req := bearerRequest(t, codec, http.MethodPost, "/api/documents", map[string]string{"content": "text"}, []string{"doc:write"})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusBadRequest, w.Code)
		var p apperror.Payload
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
		require.Equal(t, "Invalid payload", p.Title)
	})

	t.Run("read-only permission is denied", func(t *testing.T) {
		body := dto.CreateDocumentRequest{Title: "Notes"}
		req := bearerRequest(t, codec, http.MethodPost, "/api/documents", body, []string{"doc:read"})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestDocumentHandler_Update(t *testing.T) {
	mockSvc := NewMockDocumentService()
	handler := NewDocumentHandler(mockSvc)
	router, codec := setupDocumentRouter(t, handler)

	mockSvc.AddDocument(&domain.Document{ID: "doc-1", OwnerID: "user-1", Title: "Notes"})

	body := map[string]string{"title": "Renamed"}
	req := bearerRequest(t, codec, http.MethodPut, "/api/documents/doc-1", body, []string{"doc:write"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var doc domain.Document
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	require.Equal(t, "Renamed", doc.Title)
}

func TestDocumentHandler_Delete(t *testing.T) {
	mockSvc := NewMockDocumentService()
	handler := NewDocumentHandler(mockSvc)
	router, codec := setupDocumentRouter(t, handler)

	mockSvc.AddDocument(&domain.Document{ID: "doc-1", OwnerID: "user-1", Title: "Notes"})

	req := bearerRequest(t, codec, http.MethodDelete, "/api/documents/doc-1", nil, []string{"doc:write"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusNoContent, w.Code)

	req = bearerRequest(t, codec, http.MethodDelete, "/api/documents/doc-1", nil, []string{"doc:write"})
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
}
