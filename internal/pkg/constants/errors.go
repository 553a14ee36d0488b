package constants

import (
	"fmt"
	"net/http"
)

// CodedError is an error that knows which HTTP status it maps to.
type CodedError struct {
	code int
	msg  string
}

func NewCodedError(code int, msg string) *CodedError {
	return &CodedError{code: code, msg: msg}
}

func (e *CodedError) Error() string {
	return e.msg
}

func (e *CodedError) Code() int {
	return e.code
}

var (
	ErrDBNotFound          = NewCodedError(http.StatusNotFound, "not found")
	ErrInvalidInput        = NewCodedError(http.StatusBadRequest, "invalid input")
	ErrUnauthorized        = NewCodedError(http.StatusUnauthorized, "a valid bearer token is missing")
	ErrInvalidRow          = NewCodedError(http.StatusUnprocessableEntity, "invalid spreadsheet row")
	ErrUpstreamUnavailable = NewCodedError(http.StatusServiceUnavailable, "upstream unavailable")
	ErrStorage             = NewCodedError(http.StatusInternalServerError, "storage error")
	ErrQuotaExhausted      = NewCodedError(http.StatusTooManyRequests, "exchange quota exhausted")
)

// RowError points at the spreadsheet cell that could not be read.
// Row is 1-based and counts the header row.
type RowError struct {
	Sheet  string
	Row    int
	Column string
	Err    error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("sheet %q, row %d, column %s: %v", e.Sheet, e.Row, e.Column, e.Err)
}

func (e *RowError) Unwrap() []error {
	return []error{ErrInvalidRow, e.Err}
}
