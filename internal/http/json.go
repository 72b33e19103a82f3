// Package httpx exposes the webview backend over HTTP.
package httpx

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	apperrors "github.com/arafatkatze/cline/internal/errors"
)

// DecodeOptions tunes DecodeJSONWith.
type DecodeOptions struct {
	// AllowUnknownFields accepts fields dst does not declare.
	AllowUnknownFields bool
	// MaxBytes caps the body; 0 means no cap.
	MaxBytes int64
}

// DecodeJSON decodes JSON from the request body into the destination and handles errors.
// Returns true if successful, false if there was an error (error response already written).
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	return DecodeJSONWith(w, r, dst, DecodeOptions{})
}

// DecodeJSONWith is DecodeJSON with explicit options.
func DecodeJSONWith(w http.ResponseWriter, r *http.Request, dst any, opts DecodeOptions) bool {
	body := r.Body
	if opts.MaxBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, opts.MaxBytes)
	}
	dec := json.NewDecoder(body)
	if !opts.AllowUnknownFields {
		dec.DisallowUnknownFields()
	}

	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			WriteError(w, ErrorParams{
				Code:    http.StatusRequestEntityTooLarge,
				ErrCode: "body_too_large",
				Err:     fmt.Errorf("request body exceeds %d bytes", maxErr.Limit),
			})
			return false
		}
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_json", Err: err})
		return false
	}

	return true
}

// WriteJSON writes a JSON response with the given status code and data.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := buf.WriteTo(w); err != nil {
		// Response writer errors (e.g., client disconnect) can't be recovered from here.
		return
	}
}

// ErrorParams groups parameters for WriteError.
type ErrorParams struct {
	Code    int
	ErrCode string
	Err     error
	// Extra is merged into the response body.
	Extra map[string]any
}

// WriteError writes a JSON error response using ErrorParams.
func WriteError(w http.ResponseWriter, p ErrorParams) {
	body := map[string]any{"error": p.ErrCode, "message": p.Err.Error()}
	for k, v := range p.Extra {
		body[k] = v
	}
	WriteJSON(w, p.Code, body)
}

var errInternal = errors.New("internal server error")

// WriteAppError maps err to a status through its AppError code. Errors
// without a code are reported as internal and their text is not exposed.
func WriteAppError(w http.ResponseWriter, err error) {
	p := ErrorParams{
		Code:    apperrors.HTTPStatus(err),
		ErrCode: string(apperrors.GetCode(err)),
		Err:     err,
	}
	if p.ErrCode == "" || p.Code == http.StatusInternalServerError {
		p.ErrCode = string(apperrors.ErrCodeInternal)
		p.Err = errInternal
	}
	if field := apperrors.GetField(err); field != "" {
		p.Extra = map[string]any{"field": field}
	}
	WriteError(w, p)
}
