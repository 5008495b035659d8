// Package domainerrors carries coded errors across layer boundaries so
// transports can translate guard failures without string matching.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a domain failure. Each guard in the ledger rejects with its
// own code so callers can distinguish, for example, a plain insufficient
// balance from one caused by a partial freeze.
type Code string

const (
	CodeAlreadyInitialized           Code = "already_initialized"
	CodeNotInitialized               Code = "not_initialized"
	CodeUnauthorized                 Code = "unauthorized"
	CodePausedState                  Code = "paused"
	CodeFrozenWallet                 Code = "frozen_wallet"
	CodeInvalidInvestor              Code = "invalid_investor"
	CodeIneligibleRecipient          Code = "ineligible_recipient"
	CodeSupplyCapExceeded            Code = "supply_cap_exceeded"
	CodeInsufficientBalance          Code = "insufficient_balance"
	CodeInsufficientAvailableBalance Code = "insufficient_available_balance"
	CodeArrayLengthMismatch          Code = "array_length_mismatch"

	CodeInvalidInput Code = "invalid_input"
	CodeNotFound     Code = "not_found"
	CodeInternal     Code = "internal"
)

// Error is the concrete coded error type. Wrap preserves the cause for
// errors.Is/As while the code travels with the message.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds a coded error with a static message.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf builds a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and context to an underlying error.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Err: err}
}

// CodeOf extracts the code from an error chain, defaulting to CodeInternal.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// HasCode reports whether the error chain carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// ToHTTPStatus maps domain codes onto HTTP statuses for the transport layer.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeInvalidInput, CodeArrayLengthMismatch:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeAlreadyInitialized, CodeNotInitialized, CodePausedState,
		CodeFrozenWallet, CodeSupplyCapExceeded,
		CodeInsufficientBalance, CodeInsufficientAvailableBalance:
		return http.StatusConflict
	case CodeInvalidInvestor, CodeIneligibleRecipient:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
