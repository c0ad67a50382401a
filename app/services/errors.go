package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrInvalidCredentials is returned by Login when the server rejects the
// username/password pair.
var ErrInvalidCredentials = errors.New("services: invalid username or password")

// ErrEmptyOrder is returned by OrderService.Create when there is nothing
// to order.
var ErrEmptyOrder = errors.New("services: order has no items")

// ValidationError carries field-keyed messages from client-side validation.
// Nothing was sent to the server when a caller sees one.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// AsValidation unwraps err into a *ValidationError if it is one.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
