// Package request decodes and inspects incoming HTTP requests.
package request

import (
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/rameshdebur/filebucket/internal/apperror"
)

// MaxJSONBodyBytes caps every JSON request body.
const MaxJSONBodyBytes = 1 << 20

// DecodeJSON strictly decodes a single JSON value from r into dst. Unknown
// fields, trailing data and oversize bodies are validation errors.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxJSONBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return apperror.SizeLimit("request body too large")
		case errors.Is(err, io.EOF):
			return apperror.Validation("request body is empty")
		case strings.HasPrefix(err.Error(), "json: unknown field"):
			return apperror.Validation(strings.TrimPrefix(err.Error(), "json: "))
		default:
			return apperror.Validation("invalid request body")
		}
	}

	if dec.More() {
		return apperror.Validation("request body must contain a single JSON object")
	}
	return nil
}

// ClientIP returns the caller's address. chi's RealIP middleware has already
// folded X-Forwarded-For / X-Real-IP into RemoteAddr when it is mounted.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
