package cache

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestNoteKey(t *testing.T) {
	noteID := uuid.New()

	key := noteKey(noteID)
	if key != "presence:note:{"+noteID.String()+"}" {
		t.Errorf("unexpected note key: %s", key)
	}
}

func TestNamesKey(t *testing.T) {
	noteID := uuid.New()

	key := namesKey(noteID)
	if key != "presence:note:names:{"+noteID.String()+"}" {
		t.Errorf("unexpected names key: %s", key)
	}
}

func TestKeys_SameClusterSlot(t *testing.T) {
	noteID := uuid.New()

	// both keys must share the same hash tag so cluster mode keeps them together
	tag := "{" + noteID.String() + "}"
	if !strings.Contains(noteKey(noteID), tag) || !strings.Contains(namesKey(noteID), tag) {
		t.Error("expected both presence keys to carry the same hash tag")
	}
}
