package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Note is a single revisioned note owned by one user.
//
// Revision starts at 1 on creation and increases by exactly one on every
// applied update, so concurrent writers can detect lost updates by comparing
// revisions.
type Note struct {
	// ID is the server-assigned unique identifier of the note.
	ID uuid.UUID `json:"id"`

	// OwnerID identifies the user the note belongs to. All reads and writes
	// are scoped to this owner.
	OwnerID uuid.UUID `json:"owner_id"`

	// Title is the note headline. Required on creation.
	Title string `json:"title"`

	// Body is the free-form note text.
	Body string `json:"body"`

	// Tags is the list of labels attached to the note.
	Tags Tags `json:"tags"`

	// Revision is the monotonically increasing version counter of the note.
	Revision int64 `json:"revision"`

	// CreatedAt is the timestamp when the note was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is the timestamp of the last applied write.
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the name of the database table
// associated with the Note model.
func (n Note) TableName() string {
	return "notes"
}

// NoteUpdate is a partial update of a note. Nil pointer fields are left
// untouched; present fields replace the stored values.
type NoteUpdate struct {
	// ID identifies the note to update.
	ID uuid.UUID `json:"-"`

	// Title replaces the note title when present.
	Title *string `json:"title"`

	// Body replaces the note body when present.
	Body *string `json:"body"`

	// Tags replaces the tag list when present.
	Tags *Tags `json:"tags"`

	// ExpectedRevision, when present, makes the update conditional: it is
	// applied only if the stored revision still equals this value. Absent
	// means last-writer-wins.
	ExpectedRevision *int64 `json:"expected_revision"`
}

// Empty reports whether the update carries no fields to apply.
func (u NoteUpdate) Empty() bool {
	return u.Title == nil && u.Body == nil && u.Tags == nil
}

// NoteRevision is an immutable body snapshot taken when a note update is
// applied. RevisionNumber matches the note's Revision at the time of the
// snapshot.
type NoteRevision struct {
	// ID is the server-assigned unique identifier of the snapshot.
	ID uuid.UUID `json:"id"`

	// NoteID identifies the note the snapshot belongs to.
	NoteID uuid.UUID `json:"note_id"`

	// RevisionNumber is the note revision this snapshot captured.
	RevisionNumber int64 `json:"revision_number"`

	// Body is the note body as of RevisionNumber.
	Body string `json:"body"`

	// CreatedAt is the timestamp when the snapshot was stored.
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the name of the database table
// associated with the NoteRevision model.
func (r NoteRevision) TableName() string {
	return "note_revisions"
}

// Tags is a list of note labels stored as a JSONB column.
type Tags []string

// Value implements [driver.Valuer]. A nil slice is stored as an empty JSON
// array so the column never holds SQL NULL.
func (t Tags) Value() (driver.Value, error) {
	if t == nil {
		return "[]", nil
	}

	data, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("error marshaling tags: %w", err)
	}

	return string(data), nil
}

// Scan implements [sql.Scanner] for JSONB values returned as bytes or text.
func (t *Tags) Scan(src any) error {
	switch value := src.(type) {
	case nil:
		*t = Tags{}
		return nil
	case []byte:
		return json.Unmarshal(value, t)
	case string:
		return json.Unmarshal([]byte(value), t)
	default:
		return errors.New("unsupported source type for tags")
	}
}
