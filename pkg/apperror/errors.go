// Package apperror описывает ошибки сервиса отчётов: машинный код,
// сообщение для клиента, необязательное поле запроса и детали.
// Код однозначно задаёт HTTP статус ответа.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode машинный код ошибки, уходит клиенту в поле "code"
type ErrorCode string

const (
	// Запрос
	CodeInvalidArgument   ErrorCode = "INVALID_ARGUMENT"
	CodeMalformedRequest  ErrorCode = "MALFORMED_REQUEST"
	CodeRequestTooLarge   ErrorCode = "REQUEST_TOO_LARGE"
	CodeUnsupportedFormat ErrorCode = "UNSUPPORTED_FORMAT"
	CodeNilInput          ErrorCode = "NIL_INPUT"

	// Рендеринг
	CodeRenderingFailed ErrorCode = "RENDERING_FAILED"
	CodeLayoutOverflow  ErrorCode = "LAYOUT_OVERFLOW"

	// Доступ
	CodeUnauthenticated  ErrorCode = "UNAUTHENTICATED"
	CodePermissionDenied ErrorCode = "PERMISSION_DENIED"
	CodeRateLimited      ErrorCode = "RATE_LIMITED"

	CodeInternal      ErrorCode = "INTERNAL_ERROR"
	CodeNotFound      ErrorCode = "NOT_FOUND"
	CodeTimeout       ErrorCode = "TIMEOUT"
	CodeUnimplemented ErrorCode = "UNIMPLEMENTED"
)

// statusByCode; коды вне таблицы отдаются как 500
var statusByCode = map[ErrorCode]int{
	CodeInvalidArgument:   http.StatusBadRequest,
	CodeMalformedRequest:  http.StatusBadRequest,
	CodeUnsupportedFormat: http.StatusBadRequest,
	CodeNilInput:          http.StatusBadRequest,
	CodeRequestTooLarge:   http.StatusRequestEntityTooLarge,
	CodeUnauthenticated:   http.StatusUnauthorized,
	CodePermissionDenied:  http.StatusForbidden,
	CodeNotFound:          http.StatusNotFound,
	CodeRateLimited:       http.StatusTooManyRequests,
	CodeTimeout:           http.StatusGatewayTimeout,
	CodeUnimplemented:     http.StatusNotImplemented,
}

// Status HTTP статус для кода
func (c ErrorCode) Status() int {
	if s, ok := statusByCode[c]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// Error ошибка приложения. Cause в ответ клиенту не попадает.
type Error struct {
	Code    ErrorCode
	Message string
	Field   string
	Details map[string]any
	Cause   error
}

func (e *Error) Error() string {
	msg := "[" + string(e.Code) + "] " + e.Message
	if e.Field != "" {
		msg += " (field: " + e.Field + ")"
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// HTTPStatus статус ответа для ошибки
func (e *Error) HTTPStatus() int {
	return e.Code.Status()
}

func New(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf как New, с форматированием сообщения
func Newf(code ErrorCode, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap оборачивает причину; errors.Is/As видят её через Unwrap
func Wrap(cause error, code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// WithDetails добавляет деталь и возвращает ту же ошибку
func (e *Error) WithDetails(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

func (e *Error) WithField(field string) *Error {
	e.Field = field
	return e
}

// Is сравнивает код первой ошибки приложения в цепочке
func Is(err error, code ErrorCode) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Code == code
}

// Code код ошибки; для сторонних ошибок CodeInternal
func Code(err error) ErrorCode {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// HTTPStatus статус для произвольной ошибки, nil даёт 200
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	return Code(err).Status()
}

// From приводит ошибку к *Error; сторонние заворачиваются в CodeInternal
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, CodeInternal, "internal error")
}

// Общие ошибки. Не мутировать: WithDetails/WithField меняют получателя.
var (
	ErrNilDocument  = New(CodeNilInput, "document is nil")
	ErrEmptyBody    = New(CodeMalformedRequest, "request body is empty")
	ErrMissingToken = New(CodeUnauthenticated, "missing bearer token")
)

// FieldErrors накапливает ошибки проверки полей запроса
type FieldErrors struct {
	errs []*Error
}

// Add ошибка поля с кодом CodeInvalidArgument
func (f *FieldErrors) Add(field, message string) {
	f.errs = append(f.errs, New(CodeInvalidArgument, message).WithField(field))
}

func (f *FieldErrors) Len() int {
	return len(f.errs)
}

// Err сворачивает накопленное в одну ошибку CodeInvalidArgument, nil если пусто.
// Единственная ошибка сохраняет своё сообщение и поле; все поля
// перечислены в Details["fields"].
func (f *FieldErrors) Err() error {
	if len(f.errs) == 0 {
		return nil
	}

	err := New(CodeInvalidArgument, "request validation failed")
	if len(f.errs) == 1 {
		err.Message = f.errs[0].Message
		err.Field = f.errs[0].Field
	}

	fields := make(map[string]string, len(f.errs))
	for _, e := range f.errs {
		fields[e.Field] = e.Message
	}
	return err.WithDetails("fields", fields)
}
