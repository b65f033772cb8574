package store

import (
	sq "github.com/Masterminds/squirrel"
	"github.com/MKhiriev/go-note-sync/models"
	"github.com/google/uuid"
)

const (
	createUser = `INSERT INTO users (login, password_hash)
    VALUES ($1, $2)
    RETURNING id, login, password_hash, created_at;`

	findUserByLogin = `SELECT id, login, password_hash, created_at
    FROM users
    WHERE login = $1;`

	createNote = `INSERT INTO notes (owner_id, title, body, tags)
    VALUES ($1, $2, $3, $4)
    RETURNING id, owner_id, title, body, tags, revision, created_at, updated_at;`

	getNote = `SELECT id, owner_id, title, body, tags, revision, created_at, updated_at
    FROM notes
    WHERE id = $1 AND owner_id = $2;`

	deleteNote = `DELETE FROM notes
    WHERE id = $1 AND owner_id = $2;`

	saveRevision = `INSERT INTO note_revisions (note_id, revision_number, body)
    VALUES ($1, $2, $3);`

	listRevisions = `SELECT r.id, r.note_id, r.revision_number, r.body, r.created_at
    FROM note_revisions r
    JOIN notes n ON n.id = r.note_id
    WHERE r.note_id = $1 AND n.owner_id = $2
    ORDER BY r.revision_number DESC;`
)

// psql is the shared statement builder configured for PostgreSQL
// positional placeholders ($1, $2, ...).
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// noteColumns is the canonical column list scanned into [models.Note].
var noteColumns = []string{"id", "owner_id", "title", "body", "tags", "revision", "created_at", "updated_at"}

// buildListNotesQuery builds the SELECT returning all notes owned by the
// given user, newest activity first.
func buildListNotesQuery(ownerID uuid.UUID) (string, []any, error) {
	return psql.
		Select(noteColumns...).
		From(models.Note{}.TableName()).
		Where(sq.Eq{"owner_id": ownerID}).
		OrderBy("updated_at DESC").
		ToSql()
}

// buildUpdateNoteQuery builds the single-statement UPDATE applying a partial
// note update. Only fields present in the update are included in the SET
// clause; updated_at and revision are always advanced so that every applied
// write produces a strictly increasing revision.
//
// When update.ExpectedRevision is set, the WHERE clause additionally pins the
// current revision; a concurrent writer then makes the statement match zero
// rows, which the caller maps to [ErrRevisionConflict].
func buildUpdateNoteQuery(ownerID uuid.UUID, update models.NoteUpdate) (string, []any, error) {
	builder := psql.
		Update(models.Note{}.TableName()).
		Set("updated_at", sq.Expr("now()")).
		Set("revision", sq.Expr("revision + 1"))

	if update.Title != nil {
		builder = builder.Set("title", *update.Title)
	}
	if update.Body != nil {
		builder = builder.Set("body", *update.Body)
	}
	if update.Tags != nil {
		builder = builder.Set("tags", *update.Tags)
	}

	builder = builder.Where(sq.Eq{"id": update.ID, "owner_id": ownerID})
	if update.ExpectedRevision != nil {
		builder = builder.Where(sq.Eq{"revision": *update.ExpectedRevision})
	}

	return builder.
		Suffix("RETURNING id, owner_id, title, body, tags, revision, created_at, updated_at").
		ToSql()
}
