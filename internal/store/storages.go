package store

import "github.com/MKhiriev/go-note-sync/internal/logger"

// Storages aggregates all repository implementations behind their interfaces
// so that the service layer can receive them as a single dependency.
type Storages struct {
	UserRepository     UserRepository
	NoteRepository     NoteRepository
	RevisionRepository RevisionRepository
}

// NewStorages wires every repository to the shared database connection.
func NewStorages(db *DB, log *logger.Logger) *Storages {
	return &Storages{
		UserRepository:     NewUserRepository(db, log),
		NoteRepository:     NewNoteRepository(db, log),
		RevisionRepository: NewRevisionRepository(db, log),
	}
}
