package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/MKhiriev/go-note-sync/internal/logger"
	"github.com/MKhiriev/go-note-sync/models"
	"github.com/google/uuid"
)

func newTestNoteRepo(t *testing.T) (*noteRepository, sqlmock.Sqlmock, *sql.DB) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	l := logger.NewLogger("test")
	repo := &noteRepository{
		db:     &DB{DB: db, logger: l},
		logger: l,
	}
	return repo, mock, db
}

func noteRows(note models.Note) *sqlmock.Rows {
	return sqlmock.
		NewRows([]string{"id", "owner_id", "title", "body", "tags", "revision", "created_at", "updated_at"}).
		AddRow(note.ID.String(), note.OwnerID.String(), note.Title, note.Body, []byte(`["work"]`), note.Revision, note.CreatedAt, note.UpdatedAt)
}

func TestCreateNote_Success(t *testing.T) {
	repo, mock, db := newTestNoteRepo(t)
	defer db.Close()

	ctx := context.Background()
	now := time.Now()
	note := models.Note{
		ID:        uuid.New(),
		OwnerID:   uuid.New(),
		Title:     "shopping",
		Body:      "milk",
		Tags:      models.Tags{"work"},
		Revision:  1,
		CreatedAt: now,
		UpdatedAt: now,
	}

	mock.ExpectQuery("INSERT INTO notes").
		WithArgs(note.OwnerID, note.Title, note.Body, note.Tags).
		WillReturnRows(noteRows(note))

	created, err := repo.CreateNote(ctx, note)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ID != note.ID {
		t.Errorf("expected ID=%s, got %s", note.ID, created.ID)
	}
	if created.Revision != 1 {
		t.Errorf("expected Revision=1, got %d", created.Revision)
	}
	if len(created.Tags) != 1 || created.Tags[0] != "work" {
		t.Errorf("expected tags [work], got %v", created.Tags)
	}
}

func TestCreateNote_DBError(t *testing.T) {
	repo, mock, db := newTestNoteRepo(t)
	defer db.Close()

	ctx := context.Background()

	mock.ExpectQuery("INSERT INTO notes").
		WillReturnError(errors.New("db network error"))

	_, err := repo.CreateNote(ctx, models.Note{OwnerID: uuid.New(), Title: "x"})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestGetNote_Success(t *testing.T) {
	repo, mock, db := newTestNoteRepo(t)
	defer db.Close()

	ctx := context.Background()
	now := time.Now()
	note := models.Note{
		ID:        uuid.New(),
		OwnerID:   uuid.New(),
		Title:     "shopping",
		Body:      "milk",
		Revision:  3,
		CreatedAt: now,
		UpdatedAt: now,
	}

	mock.ExpectQuery("SELECT id, owner_id").
		WithArgs(note.ID, note.OwnerID).
		WillReturnRows(noteRows(note))

	found, err := repo.GetNote(ctx, note.ID, note.OwnerID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found.Revision != 3 {
		t.Errorf("expected Revision=3, got %d", found.Revision)
	}
}

func TestGetNote_NotFound(t *testing.T) {
	repo, mock, db := newTestNoteRepo(t)
	defer db.Close()

	ctx := context.Background()

	mock.ExpectQuery("SELECT id, owner_id").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetNote(ctx, uuid.New(), uuid.New())
	if !errors.Is(err, ErrNoteNotFound) {
		t.Fatalf("expected ErrNoteNotFound, got %v", err)
	}
}

func TestListNotes_Success(t *testing.T) {
	repo, mock, db := newTestNoteRepo(t)
	defer db.Close()

	ctx := context.Background()
	ownerID := uuid.New()
	now := time.Now()

	rows := sqlmock.
		NewRows([]string{"id", "owner_id", "title", "body", "tags", "revision", "created_at", "updated_at"}).
		AddRow(uuid.NewString(), ownerID.String(), "newer", "b", []byte(`[]`), 2, now, now).
		AddRow(uuid.NewString(), ownerID.String(), "older", "b", []byte(`[]`), 1, now, now.Add(-time.Hour))

	mock.ExpectQuery("SELECT id, owner_id").
		WithArgs(ownerID).
		WillReturnRows(rows)

	notes, err := repo.ListNotes(ctx, ownerID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notes) != 2 {
		t.Fatalf("expected 2 notes, got %d", len(notes))
	}
	if notes[0].Title != "newer" {
		t.Errorf("expected first note 'newer', got '%s'", notes[0].Title)
	}
}

func TestListNotes_Empty(t *testing.T) {
	repo, mock, db := newTestNoteRepo(t)
	defer db.Close()

	ctx := context.Background()
	ownerID := uuid.New()

	mock.ExpectQuery("SELECT id, owner_id").
		WithArgs(ownerID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "title", "body", "tags", "revision", "created_at", "updated_at"}))

	notes, err := repo.ListNotes(ctx, ownerID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if notes == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(notes) != 0 {
		t.Errorf("expected 0 notes, got %d", len(notes))
	}
}

func TestUpdateNote_Success(t *testing.T) {
	repo, mock, db := newTestNoteRepo(t)
	defer db.Close()

	ctx := context.Background()
	now := time.Now()
	ownerID := uuid.New()
	title := "renamed"
	note := models.Note{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Title:     title,
		Body:      "milk",
		Revision:  4,
		CreatedAt: now,
		UpdatedAt: now,
	}

	mock.ExpectQuery("UPDATE notes").
		WillReturnRows(noteRows(note))

	updated, err := repo.UpdateNote(ctx, ownerID, models.NoteUpdate{ID: note.ID, Title: &title})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Revision != 4 {
		t.Errorf("expected Revision=4, got %d", updated.Revision)
	}
	if updated.Title != title {
		t.Errorf("expected title '%s', got '%s'", title, updated.Title)
	}
}

func TestUpdateNote_NotFound(t *testing.T) {
	repo, mock, db := newTestNoteRepo(t)
	defer db.Close()

	ctx := context.Background()
	title := "renamed"

	mock.ExpectQuery("UPDATE notes").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.UpdateNote(ctx, uuid.New(), models.NoteUpdate{ID: uuid.New(), Title: &title})
	if !errors.Is(err, ErrNoteNotFound) {
		t.Fatalf("expected ErrNoteNotFound, got %v", err)
	}
}

func TestUpdateNote_RevisionConflict(t *testing.T) {
	repo, mock, db := newTestNoteRepo(t)
	defer db.Close()

	ctx := context.Background()
	now := time.Now()
	ownerID := uuid.New()
	noteID := uuid.New()
	title := "renamed"
	expected := int64(2)

	// conditional UPDATE matches zero rows
	mock.ExpectQuery("UPDATE notes").
		WillReturnError(sql.ErrNoRows)

	// the follow-up lookup finds the note at a newer revision
	current := models.Note{ID: noteID, OwnerID: ownerID, Title: "shopping", Revision: 5, CreatedAt: now, UpdatedAt: now}
	mock.ExpectQuery("SELECT id, owner_id").
		WithArgs(noteID, ownerID).
		WillReturnRows(noteRows(current))

	_, err := repo.UpdateNote(ctx, ownerID, models.NoteUpdate{ID: noteID, Title: &title, ExpectedRevision: &expected})
	if !errors.Is(err, ErrRevisionConflict) {
		t.Fatalf("expected ErrRevisionConflict, got %v", err)
	}
}

func TestUpdateNote_ConditionalOnMissingNote(t *testing.T) {
	repo, mock, db := newTestNoteRepo(t)
	defer db.Close()

	ctx := context.Background()
	title := "renamed"
	expected := int64(2)

	mock.ExpectQuery("UPDATE notes").
		WillReturnError(sql.ErrNoRows)

	// the follow-up lookup confirms the note is gone
	mock.ExpectQuery("SELECT id, owner_id").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.UpdateNote(ctx, uuid.New(), models.NoteUpdate{ID: uuid.New(), Title: &title, ExpectedRevision: &expected})
	if !errors.Is(err, ErrNoteNotFound) {
		t.Fatalf("expected ErrNoteNotFound, got %v", err)
	}
}

func TestDeleteNote_Success(t *testing.T) {
	repo, mock, db := newTestNoteRepo(t)
	defer db.Close()

	ctx := context.Background()
	noteID := uuid.New()
	ownerID := uuid.New()

	mock.ExpectExec("DELETE FROM notes").
		WithArgs(noteID, ownerID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.DeleteNote(ctx, noteID, ownerID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDeleteNote_NotFound(t *testing.T) {
	repo, mock, db := newTestNoteRepo(t)
	defer db.Close()

	ctx := context.Background()

	mock.ExpectExec("DELETE FROM notes").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeleteNote(ctx, uuid.New(), uuid.New())
	if !errors.Is(err, ErrNoteNotFound) {
		t.Fatalf("expected ErrNoteNotFound, got %v", err)
	}
}
