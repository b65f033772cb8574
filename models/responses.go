package models

// TokenResponse is the JSON body returned by a successful login.
type TokenResponse struct {
	Token string `json:"token"`
}

// ErrorResponse is the JSON error payload shape used by all handlers.
type ErrorResponse struct {
	Error string `json:"error"`
}

// CollaboratorsResponse lists the users currently connected to a note's
// sync channel.
type CollaboratorsResponse struct {
	NoteID        string   `json:"note_id"`
	Collaborators []string `json:"collaborators"`
}
