package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Canonical gateway messages. Client errors use a "message" field, server
// errors an "error" field carrying the raw failure.
const (
	msgSuccess        = "success"
	msgCreated        = "Transaction created successfully"
	msgUpdated        = "Transaction updated successfully"
	msgDeleted        = "Transaction deleted successfully"
	msgInvalidRequest = "Invalid request: type, category, amount, and date are required."
	msgInvalidBody    = "Invalid request body"
	msgNotFoundRoute  = "Not Found"
	msgUpdateNotFound = "Transaction not found or no changes made"
	msgDeleteNotFound = "Transaction not found"
	msgInternal       = "Something went wrong!"
)

type envelope struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// respondData writes the success envelope {"message": ..., "data": ...}.
func respondData(w http.ResponseWriter, status int, message string, data any) {
	respondJSON(w, status, envelope{Message: message, Data: data})
}

// respondMessage writes a client-error envelope with only a message.
func respondMessage(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, envelope{Message: message})
}

// respondServerError surfaces a persistence failure with its raw message.
func respondServerError(w http.ResponseWriter, err error) {
	respondJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}
