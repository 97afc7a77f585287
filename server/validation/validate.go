package validation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/teilomillet/chatintel/errors"
)

// maxBodyBytes bounds the request body read into memory.
const maxBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// DecodeJSON reads the request body into dst. An empty body leaves dst at
// its zero value so that missing fields are reported by validation rather
// than as a malformed body.
func DecodeJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return nil
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if len(body) > maxBodyBytes {
		return fmt.Errorf("body exceeds %d bytes", maxBodyBytes)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

// Decode is DecodeJSON followed by Validate. A missing required field is a
// 400 validation error; a body that cannot be decoded is a 500 internal error
// carrying the decoder's message.
func Decode(r *http.Request, requestID string, dst interface{}) error {
	if err := DecodeJSON(r, dst); err != nil {
		return errors.NewInternalError(requestID, err)
	}
	return Validate(requestID, dst)
}

// Validate checks v against its validate tags. The message tag of the first
// failing field becomes the error message.
func Validate(requestID string, v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return errors.NewInternalError(requestID, err)
	}

	first := verrs[0]
	return errors.NewValidationError(requestID, messageFor(v, first), map[string]interface{}{
		"field": first.Field(),
		"tag":   first.Tag(),
	})
}

func messageFor(v interface{}, fe validator.FieldError) string {
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if f, ok := t.FieldByName(fe.StructField()); ok {
		if msg := f.Tag.Get("message"); msg != "" {
			return msg
		}
	}
	return fmt.Sprintf("%s is invalid.", fe.Field())
}
