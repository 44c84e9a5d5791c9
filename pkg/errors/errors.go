package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound   = fmt.Errorf("запись не найдена")
	ErrBadRequest = fmt.Errorf("неверный запрос")
	ErrConflict   = fmt.Errorf("конфликт данных")
)

// Кастомные типы ошибок
type InvalidInputError struct {
	Message string
}

func (e *InvalidInputError) Error() string { return e.Message }

func NewInvalidInputError(format string, args ...interface{}) error {
	return &InvalidInputError{Message: fmt.Sprintf(format, args...)}
}

// BackendError - хранилище вернуло ошибку (сеть, ограничение, права).
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *BackendError) Unwrap() error { return e.Err }

// NewBackendError оборачивает ошибку хранилища. ErrNotFound и уже обёрнутые
// ошибки возвращаются как есть, чтобы не терять классификацию.
func NewBackendError(op string, err error) error {
	if err == nil {
		return nil
	}
	var backendErr *BackendError
	if errors.Is(err, ErrNotFound) || errors.As(err, &backendErr) {
		return err
	}
	return &BackendError{Op: op, Err: err}
}

func IsBackendFailure(err error) bool {
	var backendErr *BackendError
	return errors.As(err, &backendErr)
}

type HttpError struct {
	Code    int
	Message string
	Err     error
	Context map[string]interface{}
	Details interface{}
}

func (e *HttpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *HttpError) Unwrap() error { return e.Err }

func NewHttpError(code int, message string, err error, context map[string]interface{}) *HttpError {
	return &HttpError{Code: code, Message: message, Err: err, Context: context}
}

// HTTPStatus подбирает код ответа по классу ошибки.
func HTTPStatus(err error) int {
	var invalid *InvalidInputError
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrBadRequest), errors.As(err, &invalid):
		return http.StatusBadRequest
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
