package cache

import (
	"fmt"

	"github.com/google/uuid"
)

// Key layout:
//   - noteKey(noteID):  online members of a note (ZSet<userID, expireAtUnix>, score=expireAt)
//   - namesKey(noteID): userID → login mapping for the note (Hash)
//
// The hash-tag braces keep both keys of a note on the same cluster slot.
const (
	keyNoteFmt  = "presence:note:{%s}"
	keyNamesFmt = "presence:note:names:{%s}"
)

func noteKey(noteID uuid.UUID) string  { return fmt.Sprintf(keyNoteFmt, noteID) }
func namesKey(noteID uuid.UUID) string { return fmt.Sprintf(keyNamesFmt, noteID) }
