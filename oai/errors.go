package oai

import (
	"fmt"

	"github.com/pkg/errors"
)

// Error kinds from spec.md §7. They are sentinel values so callers can use
// errors.Is; Wrap/Wrapf attach a stack trace via github.com/pkg/errors
// without inventing a bespoke wrapping scheme.
var (
	ErrNotFound   = errors.New("not found")
	ErrStoreIO    = errors.New("store io failure")
	ErrParse      = errors.New("parse error")
	ErrState      = errors.New("illegal state transition")
	ErrInvalid    = errors.New("invalid input")
)

// Wrap attaches msg as context and a stack trace to err. It returns nil if
// err is nil.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, msg)
}

// Wrapf is Wrap with fmt.Sprintf-style formatting.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, fmt.Sprintf(format, args...))
}

// NotFoundf builds an ErrNotFound-compatible error carrying a formatted
// message, still matching errors.Is(err, ErrNotFound).
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrNotFound)
}

// StoreIOf builds an ErrStoreIO-compatible error.
func StoreIOf(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrStoreIO)
}

// ParseErrorf builds an ErrParse-compatible error.
func ParseErrorf(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrParse)
}

// StateErrorf builds an ErrState-compatible error.
func StateErrorf(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrState)
}

// Invalidf builds an ErrInvalid-compatible error.
func Invalidf(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvalid)
}
