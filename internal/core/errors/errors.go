package errors

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	CodeNotFound           ErrorCode = "NOT_FOUND"
	CodeValidationError    ErrorCode = "VALIDATION_ERROR"
	CodeInternal           ErrorCode = "INTERNAL_ERROR"
	CodeNotSupported       ErrorCode = "NOT_SUPPORTED"
	CodeSyntax             ErrorCode = "SYNTAX_ERROR"
	CodeMalformedNamespace ErrorCode = "MALFORMED_NAMESPACE"
	CodeCacheFormat        ErrorCode = "CACHE_FORMAT"
)

type DomainError struct {
	Code    ErrorCode
	Message string
	Err     error
	Context map[string]interface{}
}

const (
	CtxPath      = "path"
	CtxOperation = "operation"
	CtxHash      = "hash"
	CtxSymbol    = "symbol"
)

func (e *DomainError) WithContext(key string, value interface{}) *DomainError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

func (e *DomainError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if len(e.Context) > 0 {
		msg += fmt.Sprintf(" %v", e.Context)
	}
	return msg
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func New(code ErrorCode, msg string) error {
	return &DomainError{Code: code, Message: msg}
}

func Wrap(err error, code ErrorCode, msg string) error {
	return &DomainError{Code: code, Message: msg, Err: err}
}

// AddContext attaches key/value context to err, wrapping it in an internal
// DomainError when it is not one already.
func AddContext(err error, key string, value interface{}) error {
	var de *DomainError
	if errors.As(err, &de) {
		de.WithContext(key, value)
		return err
	}
	return &DomainError{
		Code:    CodeInternal,
		Message: "wrapped error",
		Err:     err,
		Context: map[string]interface{}{key: value},
	}
}

type coded interface {
	Code() ErrorCode
}

// IsCode checks if an error has a specific error code.
func IsCode(err error, code ErrorCode) bool {
	for err != nil {
		if de, ok := err.(*DomainError); ok && de.Code == code {
			return true
		}
		if c, ok := err.(coded); ok && c.Code() == code {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// SyntaxError reports source text the parser could not accept.
type SyntaxError struct {
	File    string
	Line    int
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d: syntax error: %s", e.File, e.Line, e.Message)
}

func (e *SyntaxError) Code() ErrorCode { return CodeSyntax }

// WithFile returns a copy of e attributed to file.
func (e *SyntaxError) WithFile(file string) *SyntaxError {
	out := *e
	out.File = file
	return &out
}

// MalformedNamespaceError reports a class declared inside an anonymous
// namespace block.
type MalformedNamespaceError struct {
	File string
	Line int
}

func (e *MalformedNamespaceError) Error() string {
	return fmt.Sprintf("%s:%d: class declared in empty namespace", e.File, e.Line)
}

func (e *MalformedNamespaceError) Code() ErrorCode { return CodeMalformedNamespace }

// CacheFormatError reports a cache entry that cannot be decoded with the
// current tree encoding.
type CacheFormatError struct {
	Key    string
	Reason string
}

func (e *CacheFormatError) Error() string {
	return fmt.Sprintf("cache entry %s: %s", e.Key, e.Reason)
}

func (e *CacheFormatError) Code() ErrorCode { return CodeCacheFormat }
