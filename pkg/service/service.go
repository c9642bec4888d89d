// Package service provides the thin generic base that converts repository
// results into service-level outcomes. Concrete services embed Base and add
// their own operations.
package service

import (
	"context"

	"github.com/AstralMortem/go-microservice-template/pkg/apperror"
)

// Getter is the minimal repository surface Base needs.
type Getter[M any, ID any] interface {
	GetByID(ctx context.Context, id ID) (*M, error)
}

// Base wraps a repository with get-or-404 semantics.
type Base[M any, ID any] struct {
	Repo Getter[M, ID]
}

// New builds a Base service over the given repository.
func New[M any, ID any](repo Getter[M, ID]) Base[M, ID] {
	return Base[M, ID]{Repo: repo}
}

// Get returns the entity or the canned not-found error when it is absent.
func (s *Base[M, ID]) Get(ctx context.Context, id ID) (*M, error) {
	entity, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, apperror.NotFound()
	}
	return entity, nil
}
