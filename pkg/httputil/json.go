package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	pederrors "github.com/matzehuels/pedigree/pkg/errors"
)

// MaxBodyBytes limits request bodies read by DecodeJSON.
const MaxBodyBytes = 1 << 20

// ErrorBody is the JSON body of an error response.
type ErrorBody struct {
	Code    pederrors.Code `json:"code"`
	Message string         `json:"message"`
}

// WriteJSON writes payload as JSON with the given status.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// WriteError writes err as an ErrorBody. Errors without a code are reported
// as INTERNAL_ERROR without leaking their message.
func WriteError(w http.ResponseWriter, err error) {
	code := pederrors.GetCode(err)
	msg := pederrors.UserMessage(err)
	if code == "" {
		code = pederrors.ErrCodeInternal
		msg = "internal error"
	}
	WriteJSON(w, StatusFor(code), ErrorBody{Code: code, Message: msg})
}

// StatusFor maps an error code to an HTTP status.
func StatusFor(code pederrors.Code) int {
	switch code {
	case pederrors.ErrCodeInvalidInput, pederrors.ErrCodeInvalidID,
		pederrors.ErrCodeInvalidFormat, pederrors.ErrCodeInvalidConfig:
		return http.StatusBadRequest
	case pederrors.ErrCodeNotFound, pederrors.ErrCodeRootNotFound, pederrors.ErrCodeSessionNotFound:
		return http.StatusNotFound
	case pederrors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	case pederrors.ErrCodeStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// DecodeJSON decodes the request body into v. Malformed bodies, unknown
// fields and bodies over MaxBodyBytes are INVALID_INPUT errors.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes+1))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return pederrors.New(pederrors.ErrCodeInvalidInput, "request body is empty")
		}
		return pederrors.Wrap(pederrors.ErrCodeInvalidInput, err, "invalid request body")
	}
	if dec.More() {
		return pederrors.New(pederrors.ErrCodeInvalidInput, "request body has trailing data")
	}
	return nil
}

// MethodNotAllowed writes a 405 error body.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusMethodNotAllowed, ErrorBody{
		Code:    pederrors.ErrCodeUnsupported,
		Message: fmt.Sprintf("method %s not allowed", r.Method),
	})
}

// NotFound writes a 404 error body.
func NotFound(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusNotFound, ErrorBody{
		Code:    pederrors.ErrCodeNotFound,
		Message: fmt.Sprintf("no route for %s", r.URL.Path),
	})
}
