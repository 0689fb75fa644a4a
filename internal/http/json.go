// Package http holds the JSON/error plumbing shared by handlers and
// middlewares. Imported as httpx to avoid clashing with net/http.
package http

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
)

const maxJSONBody = 1 << 20 // 1MB

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ReadJSON decodes the request body into v. Unknown fields are
// tolerated; a wrong Content-Type or malformed body is a 400 written
// here, with false returned so the handler can just bail.
func ReadJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := strings.ToLower(r.Header.Get("Content-Type"))
	if !strings.Contains(ct, "application/json") {
		WriteError(w, ErrInvalidJSON.WithMessage("Content-Type must be application/json"))
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(v); err != nil && err != io.EOF {
		WriteError(w, ErrInvalidJSON)
		return false
	}
	return true
}
