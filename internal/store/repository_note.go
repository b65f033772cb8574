package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-note-sync/internal/logger"
	"github.com/MKhiriev/go-note-sync/models"
	"github.com/google/uuid"
)

// noteRepository is the PostgreSQL-backed implementation of [NoteRepository].
// It manages revisioned note records in the "notes" table.
//
// Every method is scoped to an owner id, so a note is only ever visible to
// the user that created it.
type noteRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewNoteRepository constructs a [NoteRepository] backed by the provided
// database connection and logger.
func NewNoteRepository(db *DB, logger *logger.Logger) NoteRepository {
	logger.Debug().Msg("creating note repository")
	return &noteRepository{
		db:     db,
		logger: logger,
	}
}

// CreateNote persists a new note and returns the fully populated
// [models.Note] with server-assigned fields (ID, Revision=1, timestamps).
func (r *noteRepository) CreateNote(ctx context.Context, note models.Note) (models.Note, error) {
	log := logger.FromContext(ctx)

	row := r.db.QueryRowContext(ctx, createNote, note.OwnerID, note.Title, note.Body, note.Tags)

	created, err := scanNote(row)
	if err != nil {
		log.Err(err).Str("func", "*noteRepository.CreateNote").Msg("error: creating note")
		return models.Note{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	return created, nil
}

// GetNote retrieves a single note by id, scoped to the given owner.
//
// Returns [ErrNoteNotFound] when no note matches, which covers both a
// non-existent id and a note owned by someone else.
func (r *noteRepository) GetNote(ctx context.Context, noteID uuid.UUID, ownerID uuid.UUID) (models.Note, error) {
	log := logger.FromContext(ctx)

	row := r.db.QueryRowContext(ctx, getNote, noteID, ownerID)

	note, err := scanNote(row)
	if err != nil {
		log.Err(err).Str("func", "*noteRepository.GetNote").Msg("error: getting note")

		if errors.Is(err, sql.ErrNoRows) {
			return models.Note{}, ErrNoteNotFound
		}
		return models.Note{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	return note, nil
}

// ListNotes returns all notes owned by the given user ordered by most recent
// activity (updated_at descending). An owner with no notes gets an empty
// slice, not an error.
func (r *noteRepository) ListNotes(ctx context.Context, ownerID uuid.UUID) ([]models.Note, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildListNotesQuery(ownerID)
	if err != nil {
		log.Err(err).Str("func", "*noteRepository.ListNotes").Msg("error: building list query")
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*noteRepository.ListNotes").Msg("error: executing list query")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	notes := make([]models.Note, 0)
	for rows.Next() {
		var note models.Note
		if err := rows.Scan(&note.ID, &note.OwnerID, &note.Title, &note.Body, &note.Tags, &note.Revision, &note.CreatedAt, &note.UpdatedAt); err != nil {
			log.Err(err).Str("func", "*noteRepository.ListNotes").Msg("error: scanning note row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		notes = append(notes, note)
	}

	if err := rows.Err(); err != nil {
		log.Err(err).Str("func", "*noteRepository.ListNotes").Msg("error: iterating note rows")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return notes, nil
}

// UpdateNote applies a partial update to a note in a single UPDATE statement.
// Fields absent from the update keep their stored values; revision and
// updated_at advance on every applied write.
//
// When update.ExpectedRevision is set the statement only matches the note at
// exactly that revision. A zero-row result is then disambiguated with a
// follow-up lookup:
//   - the note exists → [ErrRevisionConflict]
//   - the note does not exist → [ErrNoteNotFound]
func (r *noteRepository) UpdateNote(ctx context.Context, ownerID uuid.UUID, update models.NoteUpdate) (models.Note, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildUpdateNoteQuery(ownerID, update)
	if err != nil {
		log.Err(err).Str("func", "*noteRepository.UpdateNote").Msg("error: building update query")
		return models.Note{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	row := r.db.QueryRowContext(ctx, query, args...)

	updated, err := scanNote(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Note{}, r.explainZeroRowUpdate(ctx, update, ownerID)
		}

		log.Err(err).Str("func", "*noteRepository.UpdateNote").Msg("error: updating note")
		return models.Note{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	return updated, nil
}

// explainZeroRowUpdate tells apart the two reasons an optimistic UPDATE can
// match zero rows: the note is gone, or it is at a different revision.
func (r *noteRepository) explainZeroRowUpdate(ctx context.Context, update models.NoteUpdate, ownerID uuid.UUID) error {
	if update.ExpectedRevision == nil {
		return ErrNoteNotFound
	}

	if _, err := r.GetNote(ctx, update.ID, ownerID); err != nil {
		return err
	}

	return ErrRevisionConflict
}

// DeleteNote removes a note by id, scoped to the given owner.
//
// Returns [ErrNoteNotFound] when the DELETE affects zero rows. Revision
// snapshots referencing the note are removed by the ON DELETE CASCADE
// constraint.
func (r *noteRepository) DeleteNote(ctx context.Context, noteID uuid.UUID, ownerID uuid.UUID) error {
	log := logger.FromContext(ctx)

	result, err := r.db.ExecContext(ctx, deleteNote, noteID, ownerID)
	if err != nil {
		log.Err(err).Str("func", "*noteRepository.DeleteNote").Msg("error: deleting note")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		log.Err(err).Str("func", "*noteRepository.DeleteNote").Msg("error: reading affected rows")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if affected == 0 {
		return ErrNoteNotFound
	}

	return nil
}

// scanNote scans the canonical note column set from a single row.
func scanNote(row *sql.Row) (models.Note, error) {
	var note models.Note
	err := row.Scan(&note.ID, &note.OwnerID, &note.Title, &note.Body, &note.Tags, &note.Revision, &note.CreatedAt, &note.UpdatedAt)
	return note, err
}
