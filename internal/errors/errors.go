// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package errors defines kefir's structured error taxonomy (spec.md
// §7) and the process-wide diagnostic buffer that backs
// errors.LastError/errors.ResetError, the Go shape of libkefir's
// kefir_strerror/kefir_strerror_reset: same Kind+Error shape as a
// conventional wrapped-error package, plus a ParseSubKind for the
// ParseError sub-taxonomy and an accumulating diagnostic buffer that
// spec.md requires in addition to returning errors normally.
package errors

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Kind categorizes an Error per spec.md §7's taxonomy.
type Kind int

const (
	KindUnknown Kind = iota
	KindInternal
	InvalidArgument
	InvalidIndex
	KindParse
	TooManyMatches
	UnsupportedTarget
	IoError
	ToolchainError
	KernelLoadError
)

func (k Kind) String() string {
	switch k {
	case KindInternal:
		return "internal"
	case InvalidArgument:
		return "invalid_argument"
	case InvalidIndex:
		return "invalid_index"
	case KindParse:
		return "parse_error"
	case TooManyMatches:
		return "too_many_matches"
	case UnsupportedTarget:
		return "unsupported_target"
	case IoError:
		return "io_error"
	case ToolchainError:
		return "toolchain_error"
	case KernelLoadError:
		return "kernel_load_error"
	default:
		return "unknown"
	}
}

// ParseSubKind narrows a KindParse Error per spec.md §7.
type ParseSubKind int

const (
	SubNone ParseSubKind = iota
	SubUnknownKeyword
	SubDuplicateMatch
	SubMalformedValue
	SubValueOutOfRange
	SubUnsupportedPredicate
	SubMissingAction
)

func (s ParseSubKind) String() string {
	switch s {
	case SubUnknownKeyword:
		return "unknown_keyword"
	case SubDuplicateMatch:
		return "duplicate_match"
	case SubMalformedValue:
		return "malformed_value"
	case SubValueOutOfRange:
		return "value_out_of_range"
	case SubUnsupportedPredicate:
		return "unsupported_predicate"
	case SubMissingAction:
		return "missing_action"
	default:
		return ""
	}
}

// Error is a structured error in the kefir system.
type Error struct {
	Kind       Kind
	SubKind    ParseSubKind
	Message    string
	Dialect    string
	Token      string
	Underlying error
	Attributes map[string]any
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if e.Dialect != "" {
		fmt.Fprintf(&b, " (dialect=%s", e.Dialect)
		if e.Token != "" {
			fmt.Fprintf(&b, " token=%q", e.Token)
		}
		b.WriteString(")")
	}
	if e.Underlying != nil {
		fmt.Fprintf(&b, ": %v", e.Underlying)
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Underlying
}

// New creates a new Error of the given Kind.
func New(kind Kind, msg string) error {
	return record(&Error{Kind: kind, Message: msg})
}

// Errorf creates a new Error of the given Kind with a formatted message.
func Errorf(kind Kind, format string, args ...any) error {
	return record(&Error{Kind: kind, Message: fmt.Sprintf(format, args...)})
}

// ParseErrorf creates a KindParse Error with the given sub-kind.
func ParseErrorf(sub ParseSubKind, format string, args ...any) error {
	return record(&Error{Kind: KindParse, SubKind: sub, Message: fmt.Sprintf(format, args...)})
}

// WithDialectToken annotates an error (parse error or otherwise) with
// the offending dialect and token, per spec.md §7's "all parse
// failures identify the dialect, the offending token, and the
// reason". It re-records the annotated error so LastError reflects
// the fully-contextualized message.
func WithDialectToken(err error, dialect, token string) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		cp := *e
		cp.Dialect = dialect
		cp.Token = token
		return record(&cp)
	}
	return record(&Error{Kind: KindInternal, Message: err.Error(), Dialect: dialect, Token: token, Underlying: err})
}

// Wrap wraps an existing error as a new Error of the given Kind.
func Wrap(err error, kind Kind, msg string) error {
	if err == nil {
		return nil
	}
	return record(&Error{Kind: kind, Message: msg, Underlying: err})
}

// Wrapf wraps an existing error as a new Error of the given Kind with
// a formatted message.
func Wrapf(err error, kind Kind, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return record(&Error{Kind: kind, Message: fmt.Sprintf(format, args...), Underlying: err})
}

// Attr attaches an attribute to an error, wrapping it as KindInternal
// if it is not already a *Error.
func Attr(err error, key string, val any) error {
	if err == nil {
		return nil
	}
	var e *Error
	if !errors.As(err, &e) {
		e = &Error{Kind: KindInternal, Message: err.Error(), Underlying: err}
	} else {
		cp := *e
		e = &cp
	}
	if e.Attributes == nil {
		e.Attributes = make(map[string]any)
	}
	e.Attributes[key] = val
	return e
}

// GetKind returns the Kind of err, or KindUnknown if it is not a kefir error.
func GetKind(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// GetSubKind returns the ParseSubKind of err, or SubNone.
func GetSubKind(err error) ParseSubKind {
	var e *Error
	if errors.As(err, &e) {
		return e.SubKind
	}
	return SubNone
}

// GetAttributes returns all attributes associated with err and its chain.
func GetAttributes(err error) map[string]any {
	attrs := make(map[string]any)
	var e *Error
	cur := err
	for cur != nil {
		if errors.As(cur, &e) {
			for k, v := range e.Attributes {
				if _, ok := attrs[k]; !ok {
					attrs[k] = v
				}
			}
			cur = e.Underlying
		} else {
			break
		}
	}
	return attrs
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool { return errors.Is(err, target) }

// As finds the first error in err's chain matching target's type.
func As(err error, target any) bool { return errors.As(err, target) }

// Unwrap returns the result of err's Unwrap method, if any.
func Unwrap(err error) error { return errors.Unwrap(err) }

// process-wide diagnostic buffer, the Go shape of libkefir's
// kefir_strerror/kefir_strerror_reset (spec.md §6/§7). Guarded by a
// mutex so the buffer itself is safe to append to from multiple
// goroutines without every call site serializing by hand (spec.md §5
// only requires that *some* serialization happen).
var (
	bufMu sync.Mutex
	buf   strings.Builder
)

// record appends e's message as one line to the diagnostic buffer and
// returns e unchanged, so call sites can write `return
// errors.Errorf(...)` directly.
func record(e *Error) error {
	bufMu.Lock()
	defer bufMu.Unlock()
	if buf.Len() > 0 {
		buf.WriteByte('\n')
	}
	buf.WriteString(e.Error())
	return e
}

// LastError returns the accumulated diagnostic text.
func LastError() string {
	bufMu.Lock()
	defer bufMu.Unlock()
	return buf.String()
}

// ResetError clears the diagnostic buffer.
func ResetError() {
	bufMu.Lock()
	defer bufMu.Unlock()
	buf.Reset()
}
