package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/MKhiriev/go-note-sync/internal/logger"
	"github.com/MKhiriev/go-note-sync/internal/store"
	"github.com/MKhiriev/go-note-sync/models"
	"github.com/google/uuid"
)

// noteService is the concrete implementation of NoteService. It validates
// note operations, delegates persistence to the note repository, and records
// a body snapshot in the revision repository after every applied write.
//
// Snapshots are best-effort: a failed snapshot is logged but never fails the
// write that produced it, since the note itself is already durable.
type noteService struct {
	noteRepository     store.NoteRepository
	revisionRepository store.RevisionRepository
	logger             *logger.Logger
}

// NewNoteService constructs a NoteService wired to the given repositories.
func NewNoteService(noteRepository store.NoteRepository, revisionRepository store.RevisionRepository, logger *logger.Logger) NoteService {
	return &noteService{
		noteRepository:     noteRepository,
		revisionRepository: revisionRepository,
		logger:             logger,
	}
}

// CreateNote validates and persists a new note owned by note.OwnerID.
// The stored note starts at revision 1, and that first revision is
// snapshotted.
//
// Returns ErrValidationNoTitle when the title is empty or blank.
func (n *noteService) CreateNote(ctx context.Context, note models.Note) (models.Note, error) {
	log := logger.FromContext(ctx)

	if strings.TrimSpace(note.Title) == "" {
		log.Error().Str("owner_id", note.OwnerID.String()).Msg("note title is missing")
		return models.Note{}, fmt.Errorf("%w: %w", ErrInvalidDataProvided, ErrValidationNoTitle)
	}

	created, err := n.noteRepository.CreateNote(ctx, note)
	if err != nil {
		log.Err(err).Str("owner_id", note.OwnerID.String()).Msg("note creation ended with error")
		return models.Note{}, fmt.Errorf("note creation ended with error: %w", err)
	}

	n.snapshot(ctx, created)

	return created, nil
}

// GetNote returns a single note scoped to its owner.
func (n *noteService) GetNote(ctx context.Context, noteID uuid.UUID, ownerID uuid.UUID) (models.Note, error) {
	note, err := n.noteRepository.GetNote(ctx, noteID, ownerID)
	if err != nil {
		return models.Note{}, fmt.Errorf("note lookup ended with error: %w", err)
	}

	return note, nil
}

// ListNotes returns all notes of the owner ordered by most recent activity.
func (n *noteService) ListNotes(ctx context.Context, ownerID uuid.UUID) ([]models.Note, error) {
	notes, err := n.noteRepository.ListNotes(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("note listing ended with error: %w", err)
	}

	return notes, nil
}

// UpdateNote applies a partial update to a note and snapshots the resulting
// revision.
//
// Returns ErrValidationEmptyUpdate when the update carries no fields, so an
// accidental empty PATCH never burns a revision. Conflict and not-found
// conditions surface as the repository's sentinel errors.
func (n *noteService) UpdateNote(ctx context.Context, ownerID uuid.UUID, update models.NoteUpdate) (models.Note, error) {
	log := logger.FromContext(ctx)

	if update.Empty() {
		log.Error().Str("note_id", update.ID.String()).Msg("empty note update rejected")
		return models.Note{}, fmt.Errorf("%w: %w", ErrInvalidDataProvided, ErrValidationEmptyUpdate)
	}
	if update.Title != nil && strings.TrimSpace(*update.Title) == "" {
		log.Error().Str("note_id", update.ID.String()).Msg("blank note title rejected")
		return models.Note{}, fmt.Errorf("%w: %w", ErrInvalidDataProvided, ErrValidationNoTitle)
	}

	updated, err := n.noteRepository.UpdateNote(ctx, ownerID, update)
	if err != nil {
		log.Err(err).Str("note_id", update.ID.String()).Msg("note update ended with error")
		return models.Note{}, fmt.Errorf("note update ended with error: %w", err)
	}

	n.snapshot(ctx, updated)

	return updated, nil
}

// DeleteNote removes a note and, via the storage layer's cascade, its
// revision history.
func (n *noteService) DeleteNote(ctx context.Context, noteID uuid.UUID, ownerID uuid.UUID) error {
	if err := n.noteRepository.DeleteNote(ctx, noteID, ownerID); err != nil {
		return fmt.Errorf("note deletion ended with error: %w", err)
	}

	return nil
}

// ListRevisions returns the stored body snapshots of a note, newest first.
func (n *noteService) ListRevisions(ctx context.Context, noteID uuid.UUID, ownerID uuid.UUID) ([]models.NoteRevision, error) {
	revisions, err := n.revisionRepository.ListRevisions(ctx, noteID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("revision listing ended with error: %w", err)
	}

	return revisions, nil
}

// snapshot records the note's current body under its current revision number.
func (n *noteService) snapshot(ctx context.Context, note models.Note) {
	log := logger.FromContext(ctx)

	revision := models.NoteRevision{
		NoteID:         note.ID,
		RevisionNumber: note.Revision,
		Body:           note.Body,
	}

	if err := n.revisionRepository.SaveRevision(ctx, revision); err != nil {
		log.Warn().Err(err).
			Str("note_id", note.ID.String()).
			Int64("revision", note.Revision).
			Msg("revision snapshot not saved")
	}
}
