package protocol

import (
	"fmt"
	"math"
	"sort"
	"strconv"
)

// Coder is one wire field rule. Check validates token without producing value.
type Coder interface {
	Field() string
	Check(token string) error
}

// registry of product-state and scheduler field rules, keyed by wire name
var coders = make(map[string]Coder, 32)

func register(c Coder) {
	if _, ok := coders[c.Field()]; ok {
		panic("code error duplicate field coder " + c.Field())
	}
	coders[c.Field()] = c
}

// LookupCoder returns rule for wire field name, like "fnsp" or "hmax".
func LookupCoder(field string) (Coder, bool) {
	c, ok := coders[field]
	return c, ok
}

// CoderFields lists registered wire field names, sorted.
func CoderFields() []string {
	ss := make([]string, 0, len(coders))
	for f := range coders {
		ss = append(ss, f)
	}
	sort.Strings(ss)
	return ss
}

// enumCoder maps closed token set to typed values and back. Never defaults.
type enumCoder[T ~uint8] struct {
	field  string
	tokens map[T]string
	values map[string]T
	// decode only
	aliases map[string]T
}

func newEnum[T ~uint8](field string, tokens map[T]string) *enumCoder[T] {
	c := &enumCoder[T]{
		field:  field,
		tokens: tokens,
		values: make(map[string]T, len(tokens)),
	}
	for v, s := range tokens {
		if _, dup := c.values[s]; dup {
			panic(fmt.Sprintf("code error field=%s duplicate token=%s", field, s))
		}
		c.values[s] = v
	}
	register(c)
	return c
}

// alias makes Decode accept another token for v, Encode keeps canonical one.
func (c *enumCoder[T]) alias(token string, v T) *enumCoder[T] {
	if _, dup := c.values[token]; dup {
		panic(fmt.Sprintf("code error field=%s alias shadows token=%s", c.field, token))
	}
	if c.aliases == nil {
		c.aliases = make(map[string]T, 1)
	}
	c.aliases[token] = v
	return c
}

func (c *enumCoder[T]) Field() string { return c.field }

func (c *enumCoder[T]) Decode(token string) (T, error) {
	v, ok := c.values[token]
	if !ok {
		v, ok = c.aliases[token]
	}
	if !ok {
		return v, &UnknownEnumTokenError{Field: c.field, Token: token}
	}
	return v, nil
}

func (c *enumCoder[T]) Encode(v T) (string, error) {
	s, ok := c.tokens[v]
	if !ok {
		return "", fmt.Errorf("field=%s value=%v: %w", c.field, v, ErrOutOfRange)
	}
	return s, nil
}

func (c *enumCoder[T]) Check(token string) error {
	_, err := c.Decode(token)
	return err
}

func (c *enumCoder[T]) Tokens() []string {
	ss := make([]string, 0, len(c.values))
	for s := range c.values {
		ss = append(ss, s)
	}
	sort.Strings(ss)
	return ss
}

func (c *enumCoder[T]) format(v T, typeName string) string {
	if s, ok := c.tokens[v]; ok {
		return s
	}
	return fmt.Sprintf("%s(%d)", typeName, v)
}

// decimalCoder is integer transmitted as quoted decimal text.
// width>0 zero-pads on encode.
type decimalCoder struct {
	field  string
	width  int
	signed bool
}

func newDecimal(field string, width int, signed bool) *decimalCoder {
	c := &decimalCoder{field: field, width: width, signed: signed}
	register(c)
	return c
}

func (c *decimalCoder) Field() string { return c.field }

func (c *decimalCoder) Decode(token string) (int, error) {
	if c.signed {
		n, err := strconv.ParseInt(token, 10, 32)
		if err != nil {
			return 0, &NumericParseError{Field: c.field, Token: token, Err: err}
		}
		return int(n), nil
	}
	n, err := strconv.ParseUint(token, 10, 31)
	if err != nil {
		return 0, &NumericParseError{Field: c.field, Token: token, Err: err}
	}
	return int(n), nil
}

func (c *decimalCoder) Encode(v int) (string, error) {
	if !c.signed && v < 0 {
		return "", fmt.Errorf("field=%s value=%d: %w", c.field, v, ErrOutOfRange)
	}
	return fmt.Sprintf("%0*d", c.width, v), nil
}

func (c *decimalCoder) Check(token string) error {
	_, err := c.Decode(token)
	return err
}

// scaledCoder is float transmitted as integer times scale,
// e.g. decikelvin: 298.2K <-> "2982".
type scaledCoder struct {
	field string
	scale float64
	width int
}

func newScaled(field string, scale float64, width int) *scaledCoder {
	c := &scaledCoder{field: field, scale: scale, width: width}
	register(c)
	return c
}

func (c *scaledCoder) Field() string { return c.field }

func (c *scaledCoder) Decode(token string) (float64, error) {
	n, err := strconv.ParseUint(token, 10, 32)
	if err != nil {
		return 0, &NumericParseError{Field: c.field, Token: token, Err: err}
	}
	return float64(n) / c.scale, nil
}

func (c *scaledCoder) Encode(v float64) (string, error) {
	n := math.Round(v * c.scale)
	if math.IsNaN(n) || n < 0 || n > math.MaxUint32 {
		return "", fmt.Errorf("field=%s value=%v: %w", c.field, v, ErrOutOfRange)
	}
	return fmt.Sprintf("%0*d", c.width, uint64(n)), nil
}

func (c *scaledCoder) Check(token string) error {
	_, err := c.Decode(token)
	return err
}

// textCoder is opaque passthrough: reasons, error codes, scheduler ids.
type textCoder struct{ field string }

func newText(field string) *textCoder {
	c := &textCoder{field: field}
	register(c)
	return c
}

func (c *textCoder) Field() string             { return c.field }
func (c *textCoder) Check(token string) error { return nil }

// lenientFloat is used only for environmental sensor scalars:
// device sends tokens like "OFF" or "INIT" where a number is expected,
// those read as 0.
// TODO report unparseable sensor tokens as absent values instead of 0
func lenientFloat(token string) float64 {
	f, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0
	}
	return f
}
