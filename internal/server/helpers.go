package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/erickalfaro/my-dashboard/internal/models"
)

// ErrorResponse is the standard error format for API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// WriteError writes a JSON error response.
func WriteError(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, statusCode, ErrorResponse{Error: message})
}

// WriteErrorWithDetails writes a JSON error response carrying the underlying cause.
func WriteErrorWithDetails(w http.ResponseWriter, statusCode int, message, details string) {
	WriteJSON(w, statusCode, ErrorResponse{Error: message, Details: details})
}

// DecodeJSON reads and decodes JSON from the request body into v.
// Returns false and writes a 400 error if decoding fails.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if r.Body == nil {
		WriteError(w, http.StatusBadRequest, "Request body is required")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return false
	}
	return true
}

// SymbolParam returns the normalized {symbol} path value. It writes a 400
// and returns false when the symbol is empty or not a single path segment.
func SymbolParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	symbol := models.NormalizeTicker(r.PathValue("symbol"))
	if symbol == "" || strings.Contains(symbol, "/") {
		WriteError(w, http.StatusBadRequest, "Invalid ticker")
		return "", false
	}
	return symbol, true
}

// bearerToken returns the token of an "Authorization: Bearer" header.
func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	return token, token != ""
}
