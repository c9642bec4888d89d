package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AstralMortem/go-microservice-template/internal/domain"
	"github.com/AstralMortem/go-microservice-template/pkg/repository"
)

// DocumentRepository defines the persistence surface of the document module
type DocumentRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	List(ctx context.Context, opts repository.ListOptions) ([]*domain.Document, error)
	ListPage(ctx context.Context, pg repository.Pagination, opts repository.ListOptions) (*repository.Page[domain.Document], error)
	Create(ctx context.Context, payload repository.Payload) (*domain.Document, error)
	Update(ctx context.Context, doc *domain.Document, payload repository.Payload) (*domain.Document, error)
	Delete(ctx context.Context, doc *domain.Document) error
}

// PostgresDocumentRepository implements DocumentRepository using PostgreSQL
type PostgresDocumentRepository struct {
	*repository.Base[domain.Document, string]
}

// NewPostgresDocumentRepository creates a new PostgresDocumentRepository
func NewPostgresDocumentRepository(pool *pgxpool.Pool) *PostgresDocumentRepository {
	base := repository.New(pool, repository.Schema[domain.Document, string]{
		Table:    "documents",
		IDColumn: "id",
		Columns:  []string{"id", "owner_id", "title", "content", "created_at", "updated_at"},
		Scan: func(row pgx.Row) (*domain.Document, error) {
			doc := &domain.Document{}
			err := row.Scan(
				&doc.ID,
				&doc.OwnerID,
				&doc.Title,
				&doc.Content,
				&doc.CreatedAt,
				&doc.UpdatedAt,
			)
			if err != nil {
				return nil, err
			}
			return doc, nil
		},
		EntityID: func(doc *domain.Document) string { return doc.ID },
	})

	repo := &PostgresDocumentRepository{Base: base}
	repo.RegisterJoin("owner", func(q *repository.Query) {
		q.Join("JOIN users ON users.id = documents.owner_id")
	})
	return repo
}

// FilterByTitle matches documents whose title contains the pattern.
func FilterByTitle(pattern string) repository.Filter {
	return func(q *repository.Query) {
		q.Where(fmt.Sprintf("%s.title ILIKE %s", q.Table(), q.Arg("%"+pattern+"%")))
	}
}

// FilterByOwner matches documents owned by the given user.
func FilterByOwner(ownerID string) repository.Filter {
	return func(q *repository.Query) {
		q.Where(fmt.Sprintf("%s.owner_id = %s", q.Table(), q.Arg(ownerID)))
	}
}
