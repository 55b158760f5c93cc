package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError ошибка приложения с HTTP-статусом
type AppError struct {
	Code    int    `json:"status_code"` // HTTP статус
	Message string `json:"message"`     // сообщение для пользователя
	Err     error  `json:"-"`           // внутренняя ошибка для логов, не сериализуется
}

// Error реализует интерфейс error
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap возвращает вложенную ошибку для errors.Is и errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode возвращает HTTP-статус ошибки
func (e *AppError) StatusCode() int {
	return e.Code
}

// NewNotFoundError ошибка 404 Not Found
func NewNotFoundError(message string, err error) *AppError {
	return &AppError{Code: http.StatusNotFound, Message: message, Err: err}
}

// NewValidationError ошибка 400 Bad Request
func NewValidationError(message string, err error) *AppError {
	return &AppError{Code: http.StatusBadRequest, Message: message, Err: err}
}

// NewInternalError ошибка 500. Пользователю уходит общее сообщение,
// детали остаются в логах.
func NewInternalError(message string, err error) *AppError {
	return &AppError{
		Code:    http.StatusInternalServerError,
		Message: "Внутренняя ошибка сервера",
		Err:     errors.Join(errors.New(message), err),
	}
}
