package middleware

import (
	"encoding/json"
	"net/http"
)

// writeJSONError writes the same {"error":{...}} envelope as pkg/httputil
// without importing it, so middleware stays free of handler dependencies.
func writeJSONError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
