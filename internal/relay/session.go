package relay

import "github.com/google/uuid"

// Session is one subscriber of a note's sync channel. It is created by
// [Relay.Subscribe] and owns a bounded outbound queue that the transport
// layer drains.
//
// The queue channel is closed by the relay, never by the transport, so a
// consumer ranging over [Session.Messages] terminates cleanly when the
// session is unsubscribed or dropped.
type Session struct {
	// ID is the unique identifier of this subscription.
	ID uuid.UUID

	// NoteID is the note channel this session is subscribed to.
	NoteID uuid.UUID

	// UserID identifies the authenticated user behind the session.
	UserID uuid.UUID

	// Login is the human-readable name of the user, used for presence.
	Login string

	send chan SyncMessage
}

// Messages returns the session's outbound queue. The channel is closed when
// the session is unsubscribed or dropped for falling behind.
func (s *Session) Messages() <-chan SyncMessage {
	return s.send
}

// enqueue attempts a non-blocking delivery into the session queue.
// Reports false when the queue is full, which marks the session as too slow
// to keep.
//
// Only the relay calls enqueue, and only while holding its lock, so a send
// can never race the relay closing the channel.
func (s *Session) enqueue(msg SyncMessage) bool {
	select {
	case s.send <- msg:
		return true
	default:
		return false
	}
}
