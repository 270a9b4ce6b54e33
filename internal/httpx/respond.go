package httpx

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the body of every non-2xx response. Code, when set, is a
// stable machine-readable identifier of the failure.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// JSON writes v with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes an ErrorResponse carrying msg.
func Error(w http.ResponseWriter, r *http.Request, status int, msg string) {
	ErrorCode(w, r, status, "", msg)
}

// ErrorCode writes an ErrorResponse carrying code and msg.
func ErrorCode(w http.ResponseWriter, r *http.Request, status int, code, msg string) {
	JSON(w, status, ErrorResponse{Error: msg, Code: code, RequestID: RequestID(r)})
}
