package transfer

import "strings"

// RejectReason names the validation check a request failed. Rejections are
// local: nothing was dispatched and no side effect occurred.
type RejectReason string

const (
	ReasonMissingField        RejectReason = "missing-field"
	ReasonInvalidAddress      RejectReason = "invalid-address"
	ReasonInvalidAmount       RejectReason = "invalid-amount"
	ReasonInsufficientBalance RejectReason = "insufficient-balance"
)

// ErrorKind classifies a dispatch-time or confirmation-time failure.
// Transports rarely return structured codes, so classification pattern-matches
// the error text; anything unrecognized is a transport error.
type ErrorKind string

const (
	ErrKindUserRejected    ErrorKind = "user-rejected"
	ErrKindInsufficientGas ErrorKind = "insufficient-funds-for-gas"
	ErrKindGasLimit        ErrorKind = "gas-limit-exceeded"
	ErrKindRevert          ErrorKind = "contract-revert"
	ErrKindTransport       ErrorKind = "transport-error"
)

// classifyError maps a transport error to its kind. First match wins.
func classifyError(err error) ErrorKind {
	if err == nil {
		return ErrKindTransport
	}
	msg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(msg, "user rejected"),
		strings.Contains(msg, "user denied"),
		strings.Contains(msg, "rejected by user"):
		return ErrKindUserRejected
	case strings.Contains(msg, "insufficient funds"):
		return ErrKindInsufficientGas
	case strings.Contains(msg, "gas limit"),
		strings.Contains(msg, "out of gas"),
		strings.Contains(msg, "intrinsic gas too low"),
		strings.Contains(msg, "gas required exceeds"):
		return ErrKindGasLimit
	case strings.Contains(msg, "revert"):
		return ErrKindRevert
	}
	return ErrKindTransport
}
