package utils

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// WriteJSON marshals data, sets the "Content-Type: application/json" header,
// writes statusCode, and sends the body. It returns the number of body bytes
// written.
//
// If marshaling fails nothing of the intended response has been sent yet, so
// a plain 500 is written instead and the wrapped marshal error is returned.
//
// Example usage:
//
//	WriteJSON(w, note, http.StatusOK)
//	WriteJSON(w, map[string]string{"error": "note not found"}, http.StatusNotFound)
func WriteJSON(w http.ResponseWriter, data any, statusCode int) (int, error) {
	body, err := json.Marshal(data)
	if err != nil {
		http.Error(w, "error writing data to JSON", http.StatusInternalServerError)
		return 0, fmt.Errorf("error writing data to JSON: %w", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	return w.Write(body)
}
