package spamsum

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedSignature is wrapped by every ParseError.
var ErrMalformedSignature = errors.New("malformed signature")

// Signature is a CTPH signature: the blocksize that drove piece boundaries,
// the primary string computed at Blocksize and the secondary string computed
// at twice that blocksize.
type Signature struct {
	Blocksize int
	Left      string
	Right     string
}

// String returns the canonical "blocksize:left:right" form.
func (s Signature) String() string {
	return strconv.Itoa(s.Blocksize) + ":" + s.Left + ":" + s.Right
}

// IsZero reports whether s is the zero value.
func (s Signature) IsZero() bool {
	return s.Blocksize == 0 && s.Left == "" && s.Right == ""
}

// MarshalText encodes s in its canonical form, so JSON carries the
// signature as a plain string.
func (s Signature) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses the canonical form into s.
func (s *Signature) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseError describes why a signature string could not be parsed.
type ParseError struct {
	Input  string
	Reason string
	Err    error // wrapped cause, if any
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("spamsum: parse %q: %s: %v", e.Input, e.Reason, e.Err)
	}
	return fmt.Sprintf("spamsum: parse %q: %s", e.Input, e.Reason)
}

// Unwrap lets errors.Is match ErrMalformedSignature as well as the
// underlying strconv error.
func (e *ParseError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrMalformedSignature, e.Err}
	}
	return []error{ErrMalformedSignature}
}

// Parse reads a signature in "blocksize:left:right" form.
//
// The string is split on its first two colons and must yield exactly three
// fields. The blocksize must be a positive decimal integer. Left and right
// may only hold symbols from the signature alphabet; oversized halves are not
// rejected here, the comparator scores them 0.
func Parse(s string) (Signature, error) {
	fields := strings.SplitN(s, ":", 3)
	if len(fields) != 3 {
		return Signature{}, &ParseError{Input: s, Reason: "expected blocksize:left:right"}
	}
	if strings.Contains(fields[2], ":") {
		return Signature{}, &ParseError{Input: s, Reason: "too many fields"}
	}

	bs := fields[0]
	if bs == "" || strings.TrimLeft(bs, "0123456789") != "" {
		return Signature{}, &ParseError{Input: s, Reason: "blocksize is not a decimal integer"}
	}
	blocksize, err := strconv.Atoi(bs)
	if err != nil {
		return Signature{}, &ParseError{Input: s, Reason: "blocksize out of range", Err: err}
	}
	if blocksize <= 0 {
		return Signature{}, &ParseError{Input: s, Reason: "blocksize must be positive"}
	}

	for _, half := range fields[1:] {
		if i := strings.IndexFunc(half, notInAlphabet); i >= 0 {
			return Signature{}, &ParseError{Input: s, Reason: fmt.Sprintf("invalid symbol %q", half[i])}
		}
	}

	return Signature{Blocksize: blocksize, Left: fields[1], Right: fields[2]}, nil
}

func notInAlphabet(r rune) bool {
	return r >= 0x80 || strings.IndexByte(alphabet, byte(r)) < 0
}
