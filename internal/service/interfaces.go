package service

import (
	"context"

	"github.com/MKhiriev/go-note-sync/models"
	"github.com/google/uuid"
)

type AuthService interface {
	RegisterUser(ctx context.Context, user models.User) (models.User, error)
	Login(ctx context.Context, user models.User) (models.User, error)
	CreateToken(ctx context.Context, user models.User) (models.Token, error)
	ParseToken(ctx context.Context, tokenString string) (models.Token, error)
}

type NoteService interface {
	CreateNote(ctx context.Context, note models.Note) (models.Note, error)
	GetNote(ctx context.Context, noteID uuid.UUID, ownerID uuid.UUID) (models.Note, error)
	ListNotes(ctx context.Context, ownerID uuid.UUID) ([]models.Note, error)
	UpdateNote(ctx context.Context, ownerID uuid.UUID, update models.NoteUpdate) (models.Note, error)
	DeleteNote(ctx context.Context, noteID uuid.UUID, ownerID uuid.UUID) error
	ListRevisions(ctx context.Context, noteID uuid.UUID, ownerID uuid.UUID) ([]models.NoteRevision, error)
}
