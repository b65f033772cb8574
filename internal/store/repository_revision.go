package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-note-sync/internal/logger"
	"github.com/MKhiriev/go-note-sync/models"
	"github.com/google/uuid"
)

// revisionRepository is the PostgreSQL-backed implementation of
// [RevisionRepository]. It stores immutable body snapshots of notes in the
// "note_revisions" table, one row per applied revision.
type revisionRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewRevisionRepository constructs a [RevisionRepository] backed by the
// provided database connection and logger.
func NewRevisionRepository(db *DB, logger *logger.Logger) RevisionRepository {
	logger.Debug().Msg("creating revision repository")
	return &revisionRepository{
		db:     db,
		logger: logger,
	}
}

// SaveRevision inserts a body snapshot for the given note and revision
// number. Returns [ErrRevisionNotSaved] if the INSERT affects zero rows.
func (r *revisionRepository) SaveRevision(ctx context.Context, revision models.NoteRevision) error {
	log := logger.FromContext(ctx)

	result, err := r.db.ExecContext(ctx, saveRevision, revision.NoteID, revision.RevisionNumber, revision.Body)
	if err != nil {
		log.Err(err).Str("func", "*revisionRepository.SaveRevision").Msg("error: saving revision snapshot")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		log.Err(err).Str("func", "*revisionRepository.SaveRevision").Msg("error: reading affected rows")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if affected == 0 {
		return ErrRevisionNotSaved
	}

	return nil
}

// ListRevisions returns all stored snapshots for a note, newest revision
// first. The join against "notes" scopes the lookup to the owner, so a
// caller can never read another user's history.
func (r *revisionRepository) ListRevisions(ctx context.Context, noteID uuid.UUID, ownerID uuid.UUID) ([]models.NoteRevision, error) {
	log := logger.FromContext(ctx)

	rows, err := r.db.QueryContext(ctx, listRevisions, noteID, ownerID)
	if err != nil {
		log.Err(err).Str("func", "*revisionRepository.ListRevisions").Msg("error: executing list query")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	revisions := make([]models.NoteRevision, 0)
	for rows.Next() {
		var revision models.NoteRevision
		if err := rows.Scan(&revision.ID, &revision.NoteID, &revision.RevisionNumber, &revision.Body, &revision.CreatedAt); err != nil {
			log.Err(err).Str("func", "*revisionRepository.ListRevisions").Msg("error: scanning revision row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		revisions = append(revisions, revision)
	}

	if err := rows.Err(); err != nil {
		log.Err(err).Str("func", "*revisionRepository.ListRevisions").Msg("error: iterating revision rows")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return revisions, nil
}
