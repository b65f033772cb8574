package workers

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/MKhiriev/go-note-sync/internal/logger"
	"github.com/MKhiriev/go-note-sync/internal/relay"
	"github.com/MKhiriev/go-note-sync/internal/service"
	"github.com/MKhiriev/go-note-sync/internal/store"
	"github.com/MKhiriev/go-note-sync/models"
	"github.com/google/uuid"
)

// Reconciler persists relay traffic to the note store in the background.
//
// Sync messages flow through the relay at typing speed, far faster than the
// store should be written. The reconciler therefore keeps only the latest
// content per note (last writer wins) and flushes the dirty set once per
// tick, so N keystrokes between ticks cost one UPDATE.
//
// Flush failures classified as retryable keep the note dirty for the next
// tick; everything else is logged and dropped, since a newer message will
// usually supersede it anyway.
type Reconciler struct {
	ctx        context.Context
	tap        <-chan relay.SyncMessage
	notes      service.NoteService
	classifier store.ErrorClassificator
	interval   time.Duration
	logger     *logger.Logger

	// done is closed by flushLoop once the shutdown flush has completed.
	done chan struct{}

	mu    sync.Mutex
	dirty map[uuid.UUID]dirtyNote
}

// dirtyNote is the pending write for one note: its latest relayed content
// and the user whose session produced it.
type dirtyNote struct {
	ownerID uuid.UUID
	content string
}

// NewReconciler constructs a reconciler draining the given relay tap. It does
// nothing until Run is called; the worker stops when ctx is cancelled, after
// one final flush.
func NewReconciler(ctx context.Context, tap <-chan relay.SyncMessage, notes service.NoteService, classifier store.ErrorClassificator, interval time.Duration, log *logger.Logger) *Reconciler {
	log.Debug().Dur("interval", interval).Msg("creating relay reconciler")
	return &Reconciler{
		ctx:        ctx,
		tap:        tap,
		notes:      notes,
		classifier: classifier,
		interval:   interval,
		logger:     log,
		done:       make(chan struct{}),
		dirty:      make(map[uuid.UUID]dirtyNote),
	}
}

// Run implements [Worker]. It starts the collect and flush loops and returns
// immediately.
func (r *Reconciler) Run() {
	go r.collect()
	go r.flushLoop()
}

// collect drains the relay tap into the dirty set.
func (r *Reconciler) collect() {
	for {
		select {
		case <-r.ctx.Done():
			return
		case msg, ok := <-r.tap:
			if !ok {
				return
			}
			r.mark(msg)
		}
	}
}

// flushLoop flushes the dirty set every tick and once more on shutdown.
// It signals Wait once the shutdown flush has completed.
func (r *Reconciler) flushLoop() {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	defer close(r.done)

	for {
		select {
		case <-r.ctx.Done():
			// final flush so in-flight edits survive a restart
			r.Flush(context.WithoutCancel(r.ctx))
			return
		case <-ticker.C:
			r.Flush(r.ctx)
		}
	}
}

// Wait blocks until the shutdown flush has completed. Callers must have
// started the reconciler with Run and cancelled its context first, otherwise
// Wait blocks forever. The process may only exit after Wait returns, or the
// edits collected since the last tick are lost.
func (r *Reconciler) Wait() {
	<-r.done
}

// mark records the message as the note's pending write, superseding any
// earlier unflushed content for the same note.
func (r *Reconciler) mark(msg relay.SyncMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.dirty[msg.NoteID] = dirtyNote{ownerID: msg.SenderID, content: msg.Content}
}

// DirtyCount reports how many notes currently await a flush.
func (r *Reconciler) DirtyCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.dirty)
}

// Flush writes every dirty note's latest content to the store. Each write is
// a last-writer-wins update, so relay traffic never trips the optimistic
// revision check.
func (r *Reconciler) Flush(ctx context.Context) {
	r.mu.Lock()
	pending := r.dirty
	r.dirty = make(map[uuid.UUID]dirtyNote)
	r.mu.Unlock()

	for noteID, entry := range pending {
		body := entry.content
		update := models.NoteUpdate{ID: noteID, Body: &body}

		_, err := r.notes.UpdateNote(ctx, entry.ownerID, update)
		if err == nil {
			continue
		}

		if errors.Is(err, store.ErrNoteNotFound) {
			// the note was deleted while its edit was in flight
			r.logger.Debug().
				Str("func", "*Reconciler.Flush").
				Str("note_id", noteID.String()).
				Msg("skipping flush of deleted note")
			continue
		}

		if r.classifier.Classify(err) == store.Retryable {
			r.logger.Warn().Err(err).
				Str("func", "*Reconciler.Flush").
				Str("note_id", noteID.String()).
				Msg("retryable flush failure, keeping note dirty")
			r.remarkIfClean(noteID, entry)
			continue
		}

		r.logger.Error().Err(err).
			Str("func", "*Reconciler.Flush").
			Str("note_id", noteID.String()).
			Msg("dropping unflushable note content")
	}
}

// remarkIfClean puts a failed entry back into the dirty set unless a newer
// message for the same note arrived during the flush.
func (r *Reconciler) remarkIfClean(noteID uuid.UUID, entry dirtyNote) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.dirty[noteID]; !ok {
		r.dirty[noteID] = entry
	}
}
