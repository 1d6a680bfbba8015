package middleware

import (
	"encoding/json"
	"net/http"
)

// InternalErrorBody is written when a response cannot be produced.
const InternalErrorBody = `{"error":"Internal server error"}` + "\n"

// WriteJSON encodes v and writes it with status. The body is encoded before
// the header goes out: when encoding fails a 500 with InternalErrorBody is
// written instead and the encoding error is returned.
func WriteJSON(w http.ResponseWriter, status int, v any) error {
	b, err := json.Marshal(v)
	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		writeInternalError(w)
		return err
	}
	w.WriteHeader(status)
	_, _ = w.Write(append(b, '\n'))
	return nil
}

func writeInternalError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = w.Write([]byte(InternalErrorBody))
}
