// Package bind decodes a JSON request body into a struct and validates it.
package bind

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/shashiranjanraj/cafe/config"
	"github.com/shashiranjanraj/cafe/pkg/validate"
)

const defaultMaxBody = 4 << 20

// ErrEmptyBody is returned when the request carries no JSON at all.
var ErrEmptyBody = errors.New("request body is empty")

// JSON decodes r.Body into dest, capped at MAX_BODY_BYTES, then validates
// it. Decoding problems come back as err; rule failures as errs.
func JSON(r *http.Request, dest any) (validate.Errors, error) {
	limit := int64(config.Int("MAX_BODY_BYTES", defaultMaxBody))
	if limit <= 0 {
		limit = defaultMaxBody
	}
	r.Body = http.MaxBytesReader(nil, r.Body, limit)

	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		var tooBig *http.MaxBytesError
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.Is(err, io.EOF):
			return nil, ErrEmptyBody
		case errors.As(err, &tooBig):
			return nil, fmt.Errorf("request body too large (max %d bytes)", tooBig.Limit)
		case errors.As(err, &typeErr) && typeErr.Field != "":
			return nil, fmt.Errorf("The %s field has the wrong type.", typeErr.Field)
		default:
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
	}

	return validate.Struct(dest), nil
}
