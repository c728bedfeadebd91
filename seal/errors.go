package seal

import "errors"

// Kind is a stable category for programmatic error handling.
//
// Callers should branch on Kind/RuleID rather than matching error strings.
type Kind string

const (
	// KindInvalidSecret reports unusable master-secret material.
	KindInvalidSecret Kind = "InvalidSecret"
	// KindInvalidRecord reports a malformed sealed-record framing.
	KindInvalidRecord Kind = "InvalidRecord"
	// KindDecryptionFailed reports an AEAD authentication failure. Wrong key,
	// tampered ciphertext, and tampered metadata are indistinguishable under
	// this kind; the single code avoids leaking which check failed.
	KindDecryptionFailed Kind = "DecryptionFailed"
	// KindDecodeFailed reports that an authenticated payload failed to decode
	// as a RawNetworkAddress. The codec error is the Cause.
	KindDecodeFailed Kind = "DecodeFailed"
)

// Error is the package's structured error type.
//
// RuleID is a stable identifier naming the violated rule. Message is intended
// for humans; do not match on it.
type Error struct {
	Kind    Kind
	RuleID  string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func newError(kind Kind, ruleID, msg string) error {
	return &Error{Kind: kind, RuleID: ruleID, Message: msg}
}

func wrapError(kind Kind, ruleID, msg string, cause error) error {
	if cause == nil {
		return newError(kind, ruleID, msg)
	}
	return &Error{Kind: kind, RuleID: ruleID, Message: msg, Cause: cause}
}

// IsKind reports whether err is (or wraps) a *Error with the given Kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}
