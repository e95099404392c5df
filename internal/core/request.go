// AngelaMos | 2026
// request.go

package core

import (
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const maxJSONBody = 1 << 20

// RequireID reports a malformed row id as ErrNotFound, so it never reaches
// a uuid column and a guessed URL reads the same as a missing row.
func RequireID(op, id string) error {
	if uuid.Validate(id) != nil {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// QueryIDErrors reports id filters that are set but malformed. It returns
// nil when every named filter is empty or valid.
func QueryIDErrors(r *http.Request, names ...string) FieldErrors {
	var fields FieldErrors
	q := r.URL.Query()
	for _, name := range names {
		if v := q.Get(name); v != "" && uuid.Validate(v) != nil {
			if fields == nil {
				fields = FieldErrors{}
			}
			fields[name] = name + " must be a valid id"
		}
	}
	return fields
}

// DecodeJSON reads a bounded JSON body, rejecting unknown fields.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode body: %w", ErrInvalidInput)
	}
	return nil
}

func QueryInt(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}

	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return parsed
}

// NewValidator reports fields by their JSON names.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}
