package service

import (
	"context"
	"errors"
	"testing"

	"github.com/MKhiriev/go-note-sync/internal/logger"
	"github.com/MKhiriev/go-note-sync/internal/mock"
	"github.com/MKhiriev/go-note-sync/internal/store"
	"github.com/MKhiriev/go-note-sync/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestNoteService(t *testing.T) (NoteService, *mock.MockNoteRepository, *mock.MockRevisionRepository) {
	ctrl := gomock.NewController(t)
	notes := mock.NewMockNoteRepository(ctrl)
	revisions := mock.NewMockRevisionRepository(ctrl)
	return NewNoteService(notes, revisions, logger.Nop()), notes, revisions
}

func TestCreateNote_Success_SnapshotsFirstRevision(t *testing.T) {
	svc, notes, revisions := newTestNoteService(t)
	ctx := context.Background()

	input := models.Note{OwnerID: uuid.New(), Title: "shopping", Body: "milk"}
	stored := input
	stored.ID = uuid.New()
	stored.Revision = 1

	notes.EXPECT().CreateNote(ctx, input).Return(stored, nil)
	revisions.EXPECT().
		SaveRevision(ctx, models.NoteRevision{NoteID: stored.ID, RevisionNumber: 1, Body: "milk"}).
		Return(nil)

	created, err := svc.CreateNote(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, stored.ID, created.ID)
	assert.Equal(t, int64(1), created.Revision)
}

func TestCreateNote_MissingTitle(t *testing.T) {
	svc, _, _ := newTestNoteService(t)
	ctx := context.Background()

	tests := []string{"", "   ", "\t\n"}
	for _, title := range tests {
		_, err := svc.CreateNote(ctx, models.Note{OwnerID: uuid.New(), Title: title})
		assert.ErrorIs(t, err, ErrValidationNoTitle)
		assert.ErrorIs(t, err, ErrInvalidDataProvided)
	}
}

func TestCreateNote_RepositoryError(t *testing.T) {
	svc, notes, _ := newTestNoteService(t)
	ctx := context.Background()

	notes.EXPECT().CreateNote(ctx, gomock.Any()).Return(models.Note{}, errors.New("db down"))

	_, err := svc.CreateNote(ctx, models.Note{OwnerID: uuid.New(), Title: "x"})
	require.Error(t, err)
}

func TestCreateNote_SnapshotFailureDoesNotFailCreate(t *testing.T) {
	svc, notes, revisions := newTestNoteService(t)
	ctx := context.Background()

	stored := models.Note{ID: uuid.New(), OwnerID: uuid.New(), Title: "x", Revision: 1}
	notes.EXPECT().CreateNote(ctx, gomock.Any()).Return(stored, nil)
	revisions.EXPECT().SaveRevision(ctx, gomock.Any()).Return(store.ErrRevisionNotSaved)

	created, err := svc.CreateNote(ctx, models.Note{OwnerID: stored.OwnerID, Title: "x"})
	require.NoError(t, err)
	assert.Equal(t, stored.ID, created.ID)
}

func TestUpdateNote_Success_SnapshotsNewRevision(t *testing.T) {
	svc, notes, revisions := newTestNoteService(t)
	ctx := context.Background()

	ownerID := uuid.New()
	body := "milk, eggs"
	update := models.NoteUpdate{ID: uuid.New(), Body: &body}

	updated := models.Note{ID: update.ID, OwnerID: ownerID, Title: "shopping", Body: body, Revision: 5}
	notes.EXPECT().UpdateNote(ctx, ownerID, update).Return(updated, nil)
	revisions.EXPECT().
		SaveRevision(ctx, models.NoteRevision{NoteID: update.ID, RevisionNumber: 5, Body: body}).
		Return(nil)

	got, err := svc.UpdateNote(ctx, ownerID, update)
	require.NoError(t, err)
	assert.Equal(t, int64(5), got.Revision)
}

func TestUpdateNote_EmptyUpdateRejected(t *testing.T) {
	svc, _, _ := newTestNoteService(t)
	ctx := context.Background()

	_, err := svc.UpdateNote(ctx, uuid.New(), models.NoteUpdate{ID: uuid.New()})
	assert.ErrorIs(t, err, ErrValidationEmptyUpdate)
}

func TestUpdateNote_BlankTitleRejected(t *testing.T) {
	svc, _, _ := newTestNoteService(t)
	ctx := context.Background()

	blank := "   "
	_, err := svc.UpdateNote(ctx, uuid.New(), models.NoteUpdate{ID: uuid.New(), Title: &blank})
	assert.ErrorIs(t, err, ErrValidationNoTitle)
}

func TestUpdateNote_RevisionConflictSurfaces(t *testing.T) {
	svc, notes, _ := newTestNoteService(t)
	ctx := context.Background()

	ownerID := uuid.New()
	body := "b"
	expected := int64(2)
	update := models.NoteUpdate{ID: uuid.New(), Body: &body, ExpectedRevision: &expected}

	notes.EXPECT().UpdateNote(ctx, ownerID, update).Return(models.Note{}, store.ErrRevisionConflict)

	_, err := svc.UpdateNote(ctx, ownerID, update)
	assert.ErrorIs(t, err, store.ErrRevisionConflict)
}

func TestGetNote_NotFoundSurfaces(t *testing.T) {
	svc, notes, _ := newTestNoteService(t)
	ctx := context.Background()

	noteID := uuid.New()
	ownerID := uuid.New()
	notes.EXPECT().GetNote(ctx, noteID, ownerID).Return(models.Note{}, store.ErrNoteNotFound)

	_, err := svc.GetNote(ctx, noteID, ownerID)
	assert.ErrorIs(t, err, store.ErrNoteNotFound)
}

func TestListNotes_Success(t *testing.T) {
	svc, notes, _ := newTestNoteService(t)
	ctx := context.Background()

	ownerID := uuid.New()
	stored := []models.Note{{ID: uuid.New(), Title: "a"}, {ID: uuid.New(), Title: "b"}}
	notes.EXPECT().ListNotes(ctx, ownerID).Return(stored, nil)

	got, err := svc.ListNotes(ctx, ownerID)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestDeleteNote_Success(t *testing.T) {
	svc, notes, _ := newTestNoteService(t)
	ctx := context.Background()

	noteID := uuid.New()
	ownerID := uuid.New()
	notes.EXPECT().DeleteNote(ctx, noteID, ownerID).Return(nil)

	require.NoError(t, svc.DeleteNote(ctx, noteID, ownerID))
}

func TestListRevisions_Success(t *testing.T) {
	svc, _, revisions := newTestNoteService(t)
	ctx := context.Background()

	noteID := uuid.New()
	ownerID := uuid.New()
	stored := []models.NoteRevision{
		{NoteID: noteID, RevisionNumber: 2, Body: "second"},
		{NoteID: noteID, RevisionNumber: 1, Body: "first"},
	}
	revisions.EXPECT().ListRevisions(ctx, noteID, ownerID).Return(stored, nil)

	got, err := svc.ListRevisions(ctx, noteID, ownerID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(2), got[0].RevisionNumber)
}
