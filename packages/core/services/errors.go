package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindNotFound
	KindInvalid
	KindUnauthorized
	KindForbidden
	KindConflict
)

// Error is returned by services for every failure the caller can act on.
// Anything else is an internal error.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func NotFound(format string, args ...interface{}) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Invalid(format string, args ...interface{}) error {
	return &Error{Kind: KindInvalid, Message: fmt.Sprintf(format, args...)}
}

func Unauthorized(format string, args ...interface{}) error {
	return &Error{Kind: KindUnauthorized, Message: fmt.Sprintf(format, args...)}
}

func Forbidden(format string, args ...interface{}) error {
	return &Error{Kind: KindForbidden, Message: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...interface{}) error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns KindInternal for errors that are not *Error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// first loads one row and turns a missing row into a NotFound error.
func first(db *gorm.DB, dest interface{}, what string, conds ...interface{}) error {
	err := db.First(dest, conds...).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFound("%s not found", what)
	}
	return err
}

func isRecordNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
