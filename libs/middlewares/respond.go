package middlewares

import (
	"encoding/json"
	"net/http"
)

// WriteJSONError writes the {"success":false,"message":...} body used by every API error
func WriteJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "message": message})
}
