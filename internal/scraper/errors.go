package scraper

import (
	"errors"
	"fmt"
)

// ErrorCode различает виды отказа движка
type ErrorCode string

const (
	CodeNavigation          ErrorCode = "NAVIGATION"
	CodeLocatorStructure    ErrorCode = "LOCATOR_STRUCTURE"
	CodeStaleElementTimeout ErrorCode = "STALE_ELEMENT_TIMEOUT"
	CodeDateParse           ErrorCode = "DATE_PARSE"
	CodeExtraction          ErrorCode = "EXTRACTION"
)

// Сентинелы для errors.Is: сравнение идёт по коду
var (
	ErrNavigation          = &Error{Code: CodeNavigation}
	ErrLocatorStructure    = &Error{Code: CodeLocatorStructure}
	ErrStaleElementTimeout = &Error{Code: CodeStaleElementTimeout}
	ErrDateParse           = &Error{Code: CodeDateParse}
	ErrExtraction          = &Error{Code: CodeExtraction}
)

// Error несёт код отказа и диагностический контекст.
// Details уходит только в логи, пользователю не показывается.
type Error struct {
	Code       ErrorCode
	Message    string
	Underlying error
	Details    map[string]interface{}
}

func (e *Error) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Underlying)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Underlying
}

func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

func NewError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Underlying: err,
		Details:    make(map[string]interface{}),
	}
}

// WithDetail добавляет поле контекста
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// LogFields раскладывает Details в key/value для логгера
func (e *Error) LogFields() []interface{} {
	fields := []interface{}{"code", string(e.Code)}
	for k, v := range e.Details {
		fields = append(fields, k, v)
	}
	return fields
}

// AsError возвращает *Error из цепочки, если он там есть
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
