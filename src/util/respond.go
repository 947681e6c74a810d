package util

import (
	"encoding/json"
	"net/http"

	"forecast-server/src/models"
)

// RespondOK writes the uniform success envelope.
func RespondOK(w http.ResponseWriter, code int, payload interface{}, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(models.Envelope{
		Status:  "ok",
		Payload: payload,
		Message: message,
	})
}

// RespondError writes the uniform error envelope.
func RespondError(w http.ResponseWriter, code int, errMsg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(models.Envelope{
		Status: "error",
		Error:  errMsg,
	})
}
