package protocol

import (
	"errors"
	"fmt"
)

var (
	ErrMalformed     = errors.New("malformed message")
	ErrMissingField  = errors.New("missing field")
	ErrMistypedField = errors.New("mistyped field")
	ErrOutOfRange    = errors.New("value out of range")
	ErrEmptyCommand  = errors.New("command sets nothing")
)

// UnknownEnumTokenError means token is outside closed set of field.
type UnknownEnumTokenError struct {
	Field string
	Token string
}

func (e *UnknownEnumTokenError) Error() string {
	return fmt.Sprintf("field=%s unknown token=%q", e.Field, e.Token)
}

type NumericParseError struct {
	Field string
	Token string
	Err   error
}

func (e *NumericParseError) Error() string {
	return fmt.Sprintf("field=%s token=%q parse: %v", e.Field, e.Token, e.Err)
}

func (e *NumericParseError) Unwrap() error { return e.Err }

// FieldError locates failure inside message kind.
// Field is dotted path from message root, e.g. "product-state.fmod".
type FieldError struct {
	Kind  Kind
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	if e.Kind == "" {
		return fmt.Sprintf("protocol: field=%s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("protocol: msg=%s field=%s: %v", e.Kind, e.Field, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// UnrecognizedKindError is returned for valid envelope with unknown "msg".
// Callers on a live channel should log and skip it.
type UnrecognizedKindError struct {
	Kind Kind
}

func (e *UnrecognizedKindError) Error() string {
	return fmt.Sprintf("protocol: unrecognized msg=%q", string(e.Kind))
}

func IsUnrecognizedKind(err error) bool {
	var u *UnrecognizedKindError
	return errors.As(err, &u)
}
