package credential

import "fmt"

type Kind uint8

const (
	KindInvalid Kind = iota
	KindBase64Decode
	KindCipher
	KindTextEncoding
	KindSchema
)

func (k Kind) String() string {
	switch k {
	case KindBase64Decode:
		return "base64 decode"
	case KindCipher:
		return "cipher"
	case KindTextEncoding:
		return "text encoding"
	case KindSchema:
		return "credential schema"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Error is a failed step of Decrypt.
// errors.Is(err, ErrCipher) matches by Kind.
type Error struct {
	Kind Kind
	Err  error
}

var (
	ErrBase64Decode = &Error{Kind: KindBase64Decode}
	ErrCipher       = &Error{Kind: KindCipher}
	ErrTextEncoding = &Error{Kind: KindTextEncoding}
	ErrSchema       = &Error{Kind: KindSchema}
)

func (e *Error) Error() string {
	if e.Err == nil {
		return "credential: " + e.Kind.String()
	}
	return fmt.Sprintf("credential: %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func wrap(kind Kind, err error) error { return &Error{Kind: kind, Err: err} }
