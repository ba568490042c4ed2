package shared

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// MaxRequestBodyBytes bounds every JSON request body.
const MaxRequestBodyBytes = 1 << 20

// Global validator instance for reuse
var validate = validator.New()

// DecodeJSON decodes the request body into v. Bodies larger than
// MaxRequestBodyBytes are truncated and fail to decode.
func DecodeJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(io.LimitReader(r.Body, MaxRequestBodyBytes)).Decode(v)
}

// ValidateRequest validates v with its own Validate method when it has one,
// and with its struct tags otherwise.
func ValidateRequest(v interface{}) error {
	if self, ok := v.(interface{ Validate() error }); ok {
		return self.Validate()
	}
	return validate.Struct(v)
}
