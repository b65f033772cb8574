package store

import (
	"context"

	"github.com/MKhiriev/go-note-sync/models"
	"github.com/google/uuid"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindUserByLogin(ctx context.Context, user models.User) (models.User, error)
}

type NoteRepository interface {
	CreateNote(ctx context.Context, note models.Note) (models.Note, error)
	GetNote(ctx context.Context, noteID uuid.UUID, ownerID uuid.UUID) (models.Note, error)
	ListNotes(ctx context.Context, ownerID uuid.UUID) ([]models.Note, error)
	UpdateNote(ctx context.Context, ownerID uuid.UUID, update models.NoteUpdate) (models.Note, error)
	DeleteNote(ctx context.Context, noteID uuid.UUID, ownerID uuid.UUID) error
}

type RevisionRepository interface {
	SaveRevision(ctx context.Context, revision models.NoteRevision) error
	ListRevisions(ctx context.Context, noteID uuid.UUID, ownerID uuid.UUID) ([]models.NoteRevision, error)
}

// ErrorClassificator decides whether a failed database operation may be
// retried. Implemented for PostgreSQL by [PostgresErrorClassifier].
type ErrorClassificator interface {
	Classify(err error) ErrorClassification
}
