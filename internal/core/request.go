// AngelaMos | 2026
// request.go

package core

import (
	"encoding/json"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

const maxRequestBody = 1 << 20

// NewValidator reports fields by their JSON names so error details match
// the request body the client sent.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		switch name {
		case "-":
			return ""
		case "":
			return f.Name
		}
		return name
	})
	if err := v.RegisterValidation("maxbytes", maxBytes); err != nil {
		panic(err)
	}
	return v
}

// maxBytes bounds the UTF-8 length of a string. The built-in max tag
// counts runes.
func maxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(fl.Field().String()) <= limit
}

// DecodeValid reads a JSON body of at most 1 MiB into T and validates it.
// On failure it writes a 400 and returns false.
func DecodeValid[T any](
	w http.ResponseWriter,
	r *http.Request,
	v *validator.Validate,
) (T, bool) {
	var req T

	body := http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return req, false
	}

	if err := v.Struct(req); err != nil {
		BadRequest(w, FormatValidationError(err))
		return req, false
	}

	return req, true
}
