package server

import (
	"errors"
	"fmt"
	"net/http"
)

// ApiError is the JSON error body of every failed request.
type ApiError struct {
	StatusCode    int    `json:"statusCode"`
	StatusMessage string `json:"statusMessage"`
}

func (e *ApiError) Error() string {
	return fmt.Sprintf("%d %s", e.StatusCode, e.StatusMessage)
}

// Factory helpers returning *ApiError.
func ErrBadRequest(msg string) *ApiError {
	return &ApiError{StatusCode: http.StatusBadRequest, StatusMessage: msg}
}
func ErrUnauthorized(msg string) *ApiError {
	return &ApiError{StatusCode: http.StatusUnauthorized, StatusMessage: msg}
}
func ErrNotFound(msg string) *ApiError {
	return &ApiError{StatusCode: http.StatusNotFound, StatusMessage: msg}
}
func ErrMethodNotAllowed(msg string) *ApiError {
	return &ApiError{StatusCode: http.StatusMethodNotAllowed, StatusMessage: msg}
}
func ErrTooManyRequests(msg string) *ApiError {
	return &ApiError{StatusCode: http.StatusTooManyRequests, StatusMessage: msg}
}
func ErrInternal(msg string) *ApiError {
	return &ApiError{StatusCode: http.StatusInternalServerError, StatusMessage: msg}
}

// WrapError normalizes any error into *ApiError.
func WrapError(err error) *ApiError {
	if err == nil {
		return nil
	}
	var ae *ApiError
	if errors.As(err, &ae) {
		return ae
	}
	return ErrInternal(err.Error())
}
