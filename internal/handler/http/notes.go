package http

import (
	"encoding/json"
	"net/http"

	"github.com/MKhiriev/go-note-sync/internal/logger"
	"github.com/MKhiriev/go-note-sync/internal/service"
	"github.com/MKhiriev/go-note-sync/internal/utils"
	"github.com/MKhiriev/go-note-sync/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// requestIdentity resolves the authenticated user and the {noteID} URL
// parameter shared by every per-note route.
func requestIdentity(r *http.Request) (ownerID uuid.UUID, noteID uuid.UUID, err error) {
	ownerID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		return uuid.Nil, uuid.Nil, service.ErrTokenIsExpiredOrInvalid
	}

	noteID, err = uuid.Parse(chi.URLParam(r, "noteID"))
	if err != nil {
		return uuid.Nil, uuid.Nil, ErrInvalidNoteID
	}

	return ownerID, noteID, nil
}

func (h *Handler) createNote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	ownerID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		log.Error().Str("func", "*Handler.createNote").Msg("no user id in context")
		writeError(w, service.ErrTokenIsExpiredOrInvalid)
		return
	}

	var note models.Note
	if err := json.NewDecoder(r.Body).Decode(&note); err != nil {
		log.Err(err).Str("func", "*Handler.createNote").Msg("Invalid JSON was passed")
		writeError(w, service.ErrInvalidDataProvided)
		return
	}
	note.OwnerID = ownerID

	created, err := h.services.NoteService.CreateNote(ctx, note)
	if err != nil {
		log.Err(err).Str("func", "*Handler.createNote").Msg("error creating note")
		writeError(w, err)
		return
	}

	utils.WriteJSON(w, created, http.StatusCreated)
}

func (h *Handler) listNotes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	ownerID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		log.Error().Str("func", "*Handler.listNotes").Msg("no user id in context")
		writeError(w, service.ErrTokenIsExpiredOrInvalid)
		return
	}

	notes, err := h.services.NoteService.ListNotes(ctx, ownerID)
	if err != nil {
		log.Err(err).Str("func", "*Handler.listNotes").Msg("error listing notes")
		writeError(w, err)
		return
	}

	utils.WriteJSON(w, notes, http.StatusOK)
}

func (h *Handler) getNote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	ownerID, noteID, err := requestIdentity(r)
	if err != nil {
		log.Err(err).Str("func", "*Handler.getNote").Msg("bad note request")
		writeError(w, err)
		return
	}

	note, err := h.services.NoteService.GetNote(ctx, noteID, ownerID)
	if err != nil {
		log.Err(err).Str("func", "*Handler.getNote").Msg("error getting note")
		writeError(w, err)
		return
	}

	utils.WriteJSON(w, note, http.StatusOK)
}

func (h *Handler) patchNote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	ownerID, noteID, err := requestIdentity(r)
	if err != nil {
		log.Err(err).Str("func", "*Handler.patchNote").Msg("bad note request")
		writeError(w, err)
		return
	}

	var update models.NoteUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		log.Err(err).Str("func", "*Handler.patchNote").Msg("Invalid JSON was passed")
		writeError(w, service.ErrInvalidDataProvided)
		return
	}
	update.ID = noteID

	updated, err := h.services.NoteService.UpdateNote(ctx, ownerID, update)
	if err != nil {
		log.Err(err).Str("func", "*Handler.patchNote").Msg("error updating note")
		writeError(w, err)
		return
	}

	utils.WriteJSON(w, updated, http.StatusOK)
}

func (h *Handler) deleteNote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	ownerID, noteID, err := requestIdentity(r)
	if err != nil {
		log.Err(err).Str("func", "*Handler.deleteNote").Msg("bad note request")
		writeError(w, err)
		return
	}

	if err := h.services.NoteService.DeleteNote(ctx, noteID, ownerID); err != nil {
		log.Err(err).Str("func", "*Handler.deleteNote").Msg("error deleting note")
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listRevisions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	ownerID, noteID, err := requestIdentity(r)
	if err != nil {
		log.Err(err).Str("func", "*Handler.listRevisions").Msg("bad note request")
		writeError(w, err)
		return
	}

	// the note must exist and belong to the caller before exposing history
	if _, err := h.services.NoteService.GetNote(ctx, noteID, ownerID); err != nil {
		log.Err(err).Str("func", "*Handler.listRevisions").Msg("error getting note")
		writeError(w, err)
		return
	}

	revisions, err := h.services.NoteService.ListRevisions(ctx, noteID, ownerID)
	if err != nil {
		log.Err(err).Str("func", "*Handler.listRevisions").Msg("error listing revisions")
		writeError(w, err)
		return
	}

	utils.WriteJSON(w, revisions, http.StatusOK)
}

func (h *Handler) listCollaborators(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	ownerID, noteID, err := requestIdentity(r)
	if err != nil {
		log.Err(err).Str("func", "*Handler.listCollaborators").Msg("bad note request")
		writeError(w, err)
		return
	}

	if _, err := h.services.NoteService.GetNote(ctx, noteID, ownerID); err != nil {
		log.Err(err).Str("func", "*Handler.listCollaborators").Msg("error getting note")
		writeError(w, err)
		return
	}

	members, err := h.presence.AliveMembers(ctx, noteID)
	if err != nil {
		log.Err(err).Str("func", "*Handler.listCollaborators").Msg("error listing collaborators")
		writeError(w, err)
		return
	}

	logins := make([]string, 0, len(members))
	for _, member := range members {
		logins = append(logins, member.Login)
	}

	utils.WriteJSON(w, models.CollaboratorsResponse{NoteID: noteID.String(), Collaborators: logins}, http.StatusOK)
}
