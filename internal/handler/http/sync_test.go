package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/MKhiriev/go-note-sync/internal/cache"
	"github.com/MKhiriev/go-note-sync/internal/service"
	"github.com/MKhiriev/go-note-sync/models"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncFixture bundles everything a WebSocket test needs: a running server
// over the full router and a token-to-identity table for the auth mock.
type syncFixture struct {
	server   *httptest.Server
	presence *recordingPresence
}

// recordingPresence is a thread-safe presence mock that records membership
// changes for later assertions.
type recordingPresence struct {
	mu      sync.Mutex
	added   []string
	removed []string
}

func (p *recordingPresence) AddMember(_ context.Context, noteID uuid.UUID, _ uuid.UUID, login string, _ time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.added = append(p.added, noteID.String()+"/"+login)
	return nil
}

func (p *recordingPresence) AliveMembers(_ context.Context, _ uuid.UUID) ([]cache.PresenceMember, error) {
	return nil, nil
}

func (p *recordingPresence) RemoveMember(_ context.Context, noteID uuid.UUID, userID uuid.UUID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.removed = append(p.removed, noteID.String())
	return nil
}

// identity is a token-to-user entry understood by the fixture's auth mock.
type identity struct {
	userID uuid.UUID
	login  string
}

// newSyncFixture starts a test server whose auth middleware accepts the
// given tokens and whose note service owns every note for every user.
func newSyncFixture(t *testing.T, tokens map[string]identity) *syncFixture {
	t.Helper()

	auth := &mockAuthService{
		parseTokenFn: func(_ context.Context, tokenString string) (models.Token, error) {
			id, ok := tokens[tokenString]
			if !ok {
				return models.Token{}, service.ErrTokenIsExpiredOrInvalid
			}
			return models.Token{UserID: id.userID, Login: id.login}, nil
		},
	}
	notes := &mockNoteService{
		getNoteFn: func(_ context.Context, noteID, ownerID uuid.UUID) (models.Note, error) {
			return models.Note{ID: noteID, OwnerID: ownerID}, nil
		},
	}

	presence := &recordingPresence{}
	h := newTestHandler(t, &service.Services{AuthService: auth, NoteService: notes}, presence)

	server := httptest.NewServer(h.Init())
	t.Cleanup(server.Close)

	return &syncFixture{server: server, presence: presence}
}

// dial opens a WebSocket connection to the note's sync endpoint using the
// query-parameter token.
func (f *syncFixture) dial(t *testing.T, noteID uuid.UUID, token string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/api/notes/" + noteID.String() + "/ws?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return conn
}

// readFrame reads one text frame with a deadline so a missing message fails
// the test instead of hanging it.
func readFrame(t *testing.T, conn *websocket.Conn) string {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	messageType, payload, err := conn.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, websocket.TextMessage, messageType)

	return string(payload)
}

// expectNoFrame asserts that nothing arrives on the connection within the
// given window.
func expectNoFrame(t *testing.T, conn *websocket.Conn, window time.Duration) {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(window))
	_, _, err := conn.ReadMessage()
	require.Error(t, err, "expected no frame, but one arrived")
}

// ─────────────────────────────────────────────
// sync — connection lifecycle
// ─────────────────────────────────────────────

func TestSync_RejectsMissingToken(t *testing.T) {
	f := newSyncFixture(t, nil)
	noteID := uuid.New()

	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/api/notes/" + noteID.String() + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)

	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSync_RegistersAndRemovesPresence(t *testing.T) {
	alice := identity{userID: uuid.New(), login: "alice"}
	f := newSyncFixture(t, map[string]identity{"tok-alice": alice})
	noteID := uuid.New()

	conn := f.dial(t, noteID, "tok-alice")
	conn.Close()

	require.Eventually(t, func() bool {
		f.presence.mu.Lock()
		defer f.presence.mu.Unlock()
		return len(f.presence.removed) == 1
	}, 2*time.Second, 10*time.Millisecond)

	f.presence.mu.Lock()
	defer f.presence.mu.Unlock()
	assert.Contains(t, f.presence.added, noteID.String()+"/alice")
	assert.Equal(t, []string{noteID.String()}, f.presence.removed)
}

// ─────────────────────────────────────────────
// sync — frame delivery
// ─────────────────────────────────────────────

func TestSync_EchoesToSender(t *testing.T) {
	alice := identity{userID: uuid.New(), login: "alice"}
	f := newSyncFixture(t, map[string]identity{"tok-alice": alice})
	noteID := uuid.New()

	conn := f.dial(t, noteID, "tok-alice")

	frame := noteID.String() + ":hello world"
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(frame)))

	assert.Equal(t, frame, readFrame(t, conn))
}

func TestSync_FansOutToAllSubscribers(t *testing.T) {
	alice := identity{userID: uuid.New(), login: "alice"}
	bob := identity{userID: uuid.New(), login: "bob"}
	f := newSyncFixture(t, map[string]identity{"tok-alice": alice, "tok-bob": bob})
	noteID := uuid.New()

	aliceConn := f.dial(t, noteID, "tok-alice")
	bobConn := f.dial(t, noteID, "tok-bob")

	frame := noteID.String() + ":shared draft"
	require.NoError(t, aliceConn.WriteMessage(websocket.TextMessage, []byte(frame)))

	assert.Equal(t, frame, readFrame(t, aliceConn))
	assert.Equal(t, frame, readFrame(t, bobConn))
}

func TestSync_NoCrossNoteLeakage(t *testing.T) {
	alice := identity{userID: uuid.New(), login: "alice"}
	bob := identity{userID: uuid.New(), login: "bob"}
	f := newSyncFixture(t, map[string]identity{"tok-alice": alice, "tok-bob": bob})

	noteA := uuid.New()
	noteB := uuid.New()

	aliceConn := f.dial(t, noteA, "tok-alice")
	bobConn := f.dial(t, noteB, "tok-bob")

	frame := noteA.String() + ":private to note A"
	require.NoError(t, aliceConn.WriteMessage(websocket.TextMessage, []byte(frame)))

	assert.Equal(t, frame, readFrame(t, aliceConn))
	expectNoFrame(t, bobConn, 300*time.Millisecond)
}

// TestSync_DropsMalformedFrames verifies that garbage input neither closes
// the connection nor reaches other subscribers.
func TestSync_DropsMalformedFrames(t *testing.T) {
	alice := identity{userID: uuid.New(), login: "alice"}
	f := newSyncFixture(t, map[string]identity{"tok-alice": alice})
	noteID := uuid.New()

	conn := f.dial(t, noteID, "tok-alice")

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("no colon here")))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not-a-uuid:content")))

	// The connection must still be usable after the bad frames.
	frame := noteID.String() + ":still alive"
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(frame)))

	assert.Equal(t, frame, readFrame(t, conn))
}

// TestSync_DropsForeignNoteFrames verifies that a frame addressed to a note
// other than the one joined is not relayed anywhere.
func TestSync_DropsForeignNoteFrames(t *testing.T) {
	alice := identity{userID: uuid.New(), login: "alice"}
	bob := identity{userID: uuid.New(), login: "bob"}
	f := newSyncFixture(t, map[string]identity{"tok-alice": alice, "tok-bob": bob})

	noteA := uuid.New()
	noteB := uuid.New()

	aliceConn := f.dial(t, noteA, "tok-alice")
	bobConn := f.dial(t, noteB, "tok-bob")

	// Alice is joined to note A but addresses note B.
	frame := noteB.String() + ":smuggled"
	require.NoError(t, aliceConn.WriteMessage(websocket.TextMessage, []byte(frame)))

	expectNoFrame(t, bobConn, 300*time.Millisecond)
}
