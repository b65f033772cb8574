package http

import (
	"context"
	"net/http"
	"time"

	"github.com/MKhiriev/go-note-sync/internal/logger"
	"github.com/MKhiriev/go-note-sync/internal/relay"
	"github.com/MKhiriev/go-note-sync/internal/utils"
	"github.com/gorilla/websocket"
)

// sync upgrades the request to a WebSocket connection and joins the caller
// to the note's sync channel.
//
// Access is owner-only: the note is looked up for the authenticated user
// before the upgrade, so a connection to someone else's note fails with the
// same 404 as any other note route.
//
// Each text frame received from the client is parsed as "<note_id>:<content>"
// and published to every session subscribed to that note, including the
// sender. Malformed frames and frames addressed to a different note than the
// one joined are dropped without closing the connection. Every accepted frame
// also refreshes the caller's presence entry.
func (h *Handler) sync(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	ownerID, noteID, err := requestIdentity(r)
	if err != nil {
		log.Err(err).Str("func", "*Handler.sync").Msg("bad note request")
		writeError(w, err)
		return
	}

	if _, err := h.services.NoteService.GetNote(ctx, noteID, ownerID); err != nil {
		log.Err(err).Str("func", "*Handler.sync").Msg("error getting note")
		writeError(w, err)
		return
	}

	login, _ := utils.GetLoginFromContext(ctx)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error response.
		log.Err(err).Str("func", "*Handler.sync").Msg("websocket upgrade failed")
		return
	}
	conn.SetReadLimit(h.maxFrameBytes)

	if err := h.presence.AddMember(ctx, noteID, ownerID, login, h.presenceTTL); err != nil {
		log.Err(err).Str("func", "*Handler.sync").Msg("presence registration failed")
	}

	session := h.relay.Subscribe(noteID, ownerID, login)
	log.Debug().
		Str("note_id", noteID.String()).
		Str("login", login).
		Msg("sync session opened")

	go h.writeLoop(conn, session)
	h.readLoop(ctx, conn, session)

	h.relay.Unsubscribe(session)
	if err := h.presence.RemoveMember(ctx, noteID, ownerID); err != nil {
		log.Err(err).Str("func", "*Handler.sync").Msg("presence removal failed")
	}
	conn.Close()

	log.Debug().
		Str("note_id", noteID.String()).
		Str("login", login).
		Msg("sync session closed")
}

// writeLoop drains the session queue into the WebSocket connection.
// It exits when the session is closed (unsubscribe or slow-consumer drop)
// or when a write fails.
func (h *Handler) writeLoop(conn *websocket.Conn, session *relay.Session) {
	for msg := range session.Messages() {
		conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Frame())); err != nil {
			h.logger.Err(err).
				Str("func", "*Handler.writeLoop").
				Str("note_id", session.NoteID.String()).
				Msg("websocket write failed")
			conn.Close()
			return
		}
	}
	// Session queue closed, signal the client.
	conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	conn.Close()
}

// readLoop consumes frames from the WebSocket connection until the client
// disconnects or a read error occurs.
func (h *Handler) readLoop(ctx context.Context, conn *websocket.Conn, session *relay.Session) {
	for {
		messageType, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		msg, err := relay.ParseFrame(string(payload))
		if err != nil {
			// Malformed frames are dropped silently per the wire contract.
			continue
		}
		if msg.NoteID != session.NoteID {
			h.logger.Warn().
				Str("func", "*Handler.readLoop").
				Str("joined_note_id", session.NoteID.String()).
				Str("frame_note_id", msg.NoteID.String()).
				Msg("frame addressed to another note dropped")
			continue
		}
		msg.SenderID = session.UserID

		h.relay.Publish(msg)

		if err := h.presence.AddMember(ctx, session.NoteID, session.UserID, session.Login, h.presenceTTL); err != nil {
			h.logger.Err(err).
				Str("func", "*Handler.readLoop").
				Msg("presence refresh failed")
		}
	}
}
