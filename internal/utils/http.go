package utils

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/fieldscope/survey-console/models"
)

// WriteJSON serializes the given data to JSON and writes it to the HTTP
// response. It sets the "Content-Type" header to "application/json" and
// writes the provided HTTP status code before sending the response body.
//
// If marshaling fails, it responds with 500 Internal Server Error
// and returns a wrapped error.
func WriteJSON(w http.ResponseWriter, data any, statusCode int) (int, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		http.Error(w, "error writing data to JSON", http.StatusInternalServerError)
		return 0, fmt.Errorf("error writing data to JSON: %w", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	return w.Write(jsonData)
}

// WriteError writes the gateway's uniform JSON error body. Kind is a stable
// machine-readable error code; message is the operator-facing text.
func WriteError(w http.ResponseWriter, kind, message string, statusCode int) {
	WriteJSON(w, models.ErrorResponse{Code: kind, Message: message}, statusCode) //nolint:errcheck
}
