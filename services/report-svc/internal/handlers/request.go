// services/report-svc/internal/handlers/request.go
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"taskflow/pkg/apperror"
)

// newValidator создаёт валидатор, который сообщает имена полей из json тегов
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// decodeJSON читает тело запроса не больше maxBytes
func decodeJSON(w http.ResponseWriter, r *http.Request, maxBytes int64, dst any) error {
	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	}

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError

		switch {
		case errors.Is(err, io.EOF):
			return apperror.ErrEmptyBody
		case errors.As(err, &maxErr):
			return apperror.Newf(apperror.CodeRequestTooLarge,
				"request body exceeds %d bytes", maxErr.Limit)
		case errors.As(err, &syntaxErr):
			return apperror.Wrap(err, apperror.CodeMalformedRequest,
				fmt.Sprintf("malformed JSON at offset %d", syntaxErr.Offset))
		case errors.As(err, &typeErr):
			return apperror.Wrap(err, apperror.CodeMalformedRequest,
				fmt.Sprintf("field %q has wrong type", typeErr.Field)).WithField(typeErr.Field)
		default:
			return apperror.Wrap(err, apperror.CodeMalformedRequest, "malformed request body")
		}
	}

	// Лишние данные после объекта
	if dec.More() {
		return apperror.New(apperror.CodeMalformedRequest, "request body must contain a single JSON object")
	}
	return nil
}

// validateRequest переводит ошибки валидатора в apperror
func validateRequest(v *validator.Validate, req any) error {
	err := v.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperror.Wrap(err, apperror.CodeInvalidArgument, "request validation failed")
	}

	var verrs apperror.FieldErrors
	for _, fe := range fieldErrs {
		field := fieldPath(fe.Namespace())
		verrs.Add(field, fieldMessage(field, fe))
	}
	return verrs.Err()
}

// fieldPath убирает имя корневой структуры: "TaskListingRequest.tasks[0].title" -> "tasks[0].title"
func fieldPath(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}
	return namespace
}

func fieldMessage(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "email":
		return field + " must be a valid email"
	default:
		return fmt.Sprintf("%s failed %q validation", field, fe.Tag())
	}
}
