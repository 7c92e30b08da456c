package helpers

import (
	"encoding/json"
	"net/http"
	"strings"
)

// Request bodies past this size are rejected before decoding.
const maxBodyBytes = 1 << 20

// Validator is implemented by request payloads that carry field rules beyond
// what decoding enforces. Validate returns one message per violated rule.
type Validator interface {
	Validate() []string
}

// DecodeAndValidate reads the JSON request body into dest and runs its
// Validate rules when present. Unknown fields are rejected. On any failure it
// writes a 400 response and returns false; the caller must stop handling the
// request.
func DecodeAndValidate(w http.ResponseWriter, r *http.Request, dest any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, "malformed request body: "+err.Error())
		return false
	}
	if v, ok := dest.(Validator); ok {
		if errs := v.Validate(); len(errs) > 0 {
			WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, strings.Join(errs, "; "))
			return false
		}
	}
	return true
}
