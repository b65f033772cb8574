package relay

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ErrMalformedFrame is returned by [ParseFrame] when a wire frame cannot be
// decoded. The transport drops such frames without closing the connection.
var ErrMalformedFrame = errors.New("malformed sync frame")

// SyncMessage is a single content update flowing through the relay.
type SyncMessage struct {
	// NoteID identifies the note channel the update belongs to.
	NoteID uuid.UUID

	// Content is the new note body carried by the update. It may contain
	// any text, including colons.
	Content string

	// SenderID identifies the user whose session produced the message.
	// It is set by the transport after authentication and never travels
	// on the wire.
	SenderID uuid.UUID
}

// ParseFrame decodes the wire format "<note_id>:<content>".
//
// The frame is split on the first colon only, so the content part may itself
// contain colons. A frame with no colon, or with a note id that is not a
// valid UUID, yields [ErrMalformedFrame].
func ParseFrame(frame string) (SyncMessage, error) {
	idPart, content, found := strings.Cut(frame, ":")
	if !found {
		return SyncMessage{}, fmt.Errorf("%w: missing separator", ErrMalformedFrame)
	}

	noteID, err := uuid.Parse(idPart)
	if err != nil {
		return SyncMessage{}, fmt.Errorf("%w: %w", ErrMalformedFrame, err)
	}

	return SyncMessage{NoteID: noteID, Content: content}, nil
}

// Frame encodes the message back into the wire format "<note_id>:<content>".
func (m SyncMessage) Frame() string {
	return m.NoteID.String() + ":" + m.Content
}
