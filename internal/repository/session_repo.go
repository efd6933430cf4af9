package repository

import (
	"context"

	"github.com/noah-isme/turmas-api/internal/models"
	"github.com/noah-isme/turmas-api/internal/storage"
)

// SessionRepository persists the single device session.
type SessionRepository interface {
	// Get returns nil when no readable session is stored.
	Get(ctx context.Context) (*models.Session, error)
	Save(ctx context.Context, session models.Session) error
	// Update replaces the session with fn's result atomically; a nil result removes it.
	Update(ctx context.Context, fn func(current *models.Session) (*models.Session, error)) error
	Delete(ctx context.Context) error
}

type sessionRepository struct {
	doc *storage.Document[models.Session]
}

func (r *sessionRepository) Get(ctx context.Context) (*models.Session, error) {
	return r.doc.Get(ctx)
}

func (r *sessionRepository) Save(ctx context.Context, session models.Session) error {
	return r.doc.Put(ctx, session)
}

func (r *sessionRepository) Update(ctx context.Context, fn func(current *models.Session) (*models.Session, error)) error {
	return r.doc.Update(ctx, fn)
}

func (r *sessionRepository) Delete(ctx context.Context) error {
	return r.doc.Delete(ctx)
}
