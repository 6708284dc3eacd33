package httpx

import (
	"bytes"
	"encoding/json"
	"net/http"
)

// maxRequestBody caps JSON request bodies at 1 MiB; article content fits
// comfortably and anything larger is abuse.
const maxRequestBody = 1 << 20

// DecodeJSON parses the request body into dst. On failure it writes a 400
// with code invalid_json and returns false, so handlers can bail with a bare
// return.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_json", Err: err})
		return false
	}
	return true
}

// WriteJSON encodes v and writes it with the given status. Encoding happens
// into a buffer first so an encode failure can still produce a 500 instead
// of a half-written body.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	// A write failure here means the client went away; there is no response
	// left to salvage.
	_, _ = buf.WriteTo(w)
}

// ErrorParams describes a JSON error response: HTTP status, a stable
// machine-readable code, and the error whose message is shown to the client.
type ErrorParams struct {
	Code    int
	ErrCode string
	Err     error
}

// WriteError writes the standard error body {"error": code, "message": text}.
func WriteError(w http.ResponseWriter, p ErrorParams) {
	WriteJSON(w, p.Code, map[string]string{"error": p.ErrCode, "message": p.Err.Error()})
}
