package compiler

import (
	"errors"
	"fmt"
)

// Kind distinguishes compile-stage failure classes. Compile failures halt
// the submission; Env failures are deployment faults independent of any
// single submission.
type Kind int

const (
	KindUnknown Kind = iota
	KindUnsupportedLanguage
	KindSourceTooLarge
	KindExecutableTooLarge
	KindCompile
	KindEnv
)

type Error struct {
	Kind Kind
	Msg  string
	// Diagnostics carries the toolchain's stderr for compile failures.
	Diagnostics string
}

func (e *Error) Error() string {
	if e.Diagnostics != "" {
		return fmt.Sprintf("%s: %s", e.Msg, e.Diagnostics)
	}
	return e.Msg
}

// KindOf extracts the failure kind from err, KindUnknown if it is not
// a compiler error.
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindUnknown
}

func errUnsupportedLanguage(lang string) *Error {
	return &Error{
		Kind: KindUnsupportedLanguage,
		Msg:  fmt.Sprintf("unsupported language: %s", lang),
	}
}

func errSourceTooLarge(size, limit int64) *Error {
	return &Error{
		Kind: KindSourceTooLarge,
		Msg:  fmt.Sprintf("source size %d bytes exceeds limit of %d bytes", size, limit),
	}
}

func errExecutableTooLarge(size, limit int64) *Error {
	return &Error{
		Kind: KindExecutableTooLarge,
		Msg:  fmt.Sprintf("executable size %d bytes exceeds limit of %d bytes", size, limit),
	}
}

func errCompile(msg, diagnostics string) *Error {
	return &Error{Kind: KindCompile, Msg: msg, Diagnostics: diagnostics}
}

func errEnv(msg string, cause error) *Error {
	if cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, cause)
	}
	return &Error{Kind: KindEnv, Msg: msg}
}
