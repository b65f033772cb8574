// Package relay implements the in-memory fan-out hub at the heart of
// collaborative note syncing. Each note forms an independent topic;
// subscribers of a topic receive every message published to it, including
// their own (sender echo), and never see messages from other topics.
//
// Delivery is best-effort with bounded queues: a subscriber that cannot keep
// up is dropped so that one slow connection can never stall the others.
package relay

import (
	"sync"

	"github.com/MKhiriev/go-note-sync/internal/logger"
	"github.com/google/uuid"
)

// tapBuffer is the queue size of reconciliation taps. Taps observe every
// published message, so they get a deeper queue than ordinary sessions.
const tapBuffer = 1024

// Relay routes [SyncMessage] values between the subscribers of each note.
//
// Topics are created lazily on the first subscribe and reaped when the last
// session leaves, so an idle relay holds no per-note state.
type Relay struct {
	logger *logger.Logger

	mu     sync.RWMutex
	topics map[uuid.UUID]map[*Session]struct{}
	taps   []chan SyncMessage

	sessionBuffer int
}

// NewRelay constructs a relay whose sessions queue up to sessionBuffer
// messages before being considered too slow.
func NewRelay(sessionBuffer int, log *logger.Logger) *Relay {
	log.Debug().Int("session_buffer", sessionBuffer).Msg("creating relay")
	return &Relay{
		logger:        log,
		topics:        make(map[uuid.UUID]map[*Session]struct{}),
		sessionBuffer: sessionBuffer,
	}
}

// Subscribe registers a new session on the given note's topic and returns it.
// The topic is created if this is its first subscriber.
func (r *Relay) Subscribe(noteID uuid.UUID, userID uuid.UUID, login string) *Session {
	session := &Session{
		ID:     uuid.New(),
		NoteID: noteID,
		UserID: userID,
		Login:  login,
		send:   make(chan SyncMessage, r.sessionBuffer),
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	sessions, ok := r.topics[noteID]
	if !ok {
		sessions = make(map[*Session]struct{})
		r.topics[noteID] = sessions
	}
	sessions[session] = struct{}{}

	r.logger.Debug().
		Str("func", "*Relay.Subscribe").
		Str("note_id", noteID.String()).
		Str("session_id", session.ID.String()).
		Int("topic_size", len(sessions)).
		Msg("session subscribed")

	return session
}

// Unsubscribe removes the session from its topic and closes its queue.
// The topic itself is removed once its last session leaves. Calling
// Unsubscribe on an already removed session is a no-op.
func (r *Relay) Unsubscribe(session *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.removeLocked(session)
}

// Publish fans the message out to every subscriber of its note topic,
// including the session that produced it. Returns the number of sessions the
// message was delivered to.
//
// Subscribers whose queue is full are dropped from the topic instead of
// blocking the publisher. Reconciliation taps receive a copy of every
// message on a best-effort basis.
func (r *Relay) Publish(msg SyncMessage) int {
	r.mu.RLock()

	delivered := 0
	var slow []*Session
	for session := range r.topics[msg.NoteID] {
		if session.enqueue(msg) {
			delivered++
		} else {
			slow = append(slow, session)
		}
	}

	for _, tap := range r.taps {
		select {
		case tap <- msg:
		default:
			r.logger.Warn().Str("func", "*Relay.Publish").Msg("reconciliation tap overflow, message not tapped")
		}
	}

	r.mu.RUnlock()

	if len(slow) > 0 {
		r.dropSlow(slow)
	}

	return delivered
}

// Tap returns a channel observing every message published to any topic.
// Used by the background reconciler to persist relay traffic.
func (r *Relay) Tap() <-chan SyncMessage {
	tap := make(chan SyncMessage, tapBuffer)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.taps = append(r.taps, tap)
	return tap
}

// SessionCount reports how many sessions are currently subscribed to the
// given note's topic.
func (r *Relay) SessionCount(noteID uuid.UUID) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.topics[noteID])
}

// TopicCount reports how many note topics currently have subscribers.
func (r *Relay) TopicCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.topics)
}

// dropSlow removes sessions whose queue overflowed during a publish.
func (r *Relay) dropSlow(sessions []*Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, session := range sessions {
		r.logger.Warn().
			Str("func", "*Relay.dropSlow").
			Str("note_id", session.NoteID.String()).
			Str("session_id", session.ID.String()).
			Msg("dropping slow session")
		r.removeLocked(session)
	}
}

// removeLocked detaches a session from its topic and closes its queue.
// Must be called with the write lock held.
func (r *Relay) removeLocked(session *Session) {
	sessions, ok := r.topics[session.NoteID]
	if !ok {
		return
	}
	if _, ok := sessions[session]; !ok {
		return
	}

	delete(sessions, session)
	close(session.send)

	if len(sessions) == 0 {
		delete(r.topics, session.NoteID)
	}
}
