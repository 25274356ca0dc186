package httpapi

import (
	"encoding/json"
	"net/http"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeResult envelopes are always sent with 200; the outcome is in Result.Code.
func writeResult[T any](w http.ResponseWriter, res Result[T]) {
	writeJSON(w, http.StatusOK, res)
}
