package session

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes connector failures.
type ErrorCode string

const (
	CodeDisconnected             ErrorCode = "DISCONNECTED"
	CodeInvalidTopicID           ErrorCode = "INVALID_TOPIC_ID"
	CodeInvalidTopicMessage      ErrorCode = "INVALID_TOPIC_MESSAGE"
	CodeMessageSizeTooLarge      ErrorCode = "MESSAGE_SIZE_TOO_LARGE"
	CodeMissingTopicID           ErrorCode = "MISSING_TOPIC_ID"
	CodeInvalidNodeAccount       ErrorCode = "INVALID_NODE_ACCOUNT"
	CodeInsufficientPayerBalance ErrorCode = "INSUFFICIENT_PAYER_BALANCE"
	CodeInvalidAccountID         ErrorCode = "INVALID_ACCOUNT_ID"
	CodeTopicNotFound            ErrorCode = "TOPIC_NOT_FOUND"
	CodeBusy                     ErrorCode = "BUSY"
)

// Error is a connector failure with a machine-readable code.
type Error struct {
	// Code identifies the failure category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Details carries additional context such as the offending ID.
	Details map[string]string
}

// Error implements the error interface. The code always leads the message so
// that callers matching on the literal code string (e.g. status codes surfaced
// by the ledger) find it verbatim.
func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewError creates an Error with the given code and formatted message.
func NewError(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// IsCode reports whether err is (or wraps) an *Error with the given code.
func IsCode(err error, code ErrorCode) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Code == code
	}
	return false
}
