// Package bind decodes a dashboard request body into a struct and validates
// it with the same tag rules the services use, so the walk-in reservation
// form and the API clients fail with identical field errors.
package bind

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/shashiranjanraj/sofreh/config"
	"github.com/shashiranjanraj/sofreh/pkg/validate"
)

// maxBodyBytes reads the MAX_BODY_BYTES limit from config. A reservation
// form is a few hundred bytes, so the 4 MB default is generous.
func maxBodyBytes() int64 {
	n, err := strconv.ParseInt(config.Get("MAX_BODY_BYTES", "4194304"), 10, 64)
	if err != nil || n <= 0 {
		return 4 << 20
	}
	return n
}

// JSON decodes r.Body into dest and runs validate.Struct on the result.
//
//	var rsv models.Reservation
//	errs, err := bind.JSON(r, &rsv)
//
// (errs, nil) means the JSON parsed but a field failed validation; the map
// is keyed by json tag name, ready to render back to the form. (nil, err)
// means the body itself was unusable — malformed JSON or over the limit.
func JSON(r *http.Request, dest interface{}) (errs map[string]string, err error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes())

	if err = json.NewDecoder(r.Body).Decode(dest); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, fmt.Errorf("request body too large (max %d bytes)", maxErr.Limit)
		}
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	if errs = validate.Struct(dest); validate.HasErrors(errs) {
		return errs, nil
	}
	return nil, nil
}
