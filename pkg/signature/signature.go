// Package signature compiles textual byte patterns into masked signatures.
package signature

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedSignature is the sentinel wrapped by every MalformedSignatureError.
var ErrMalformedSignature = errors.New("malformed signature")

// MalformedSignatureError reports the token that could not be parsed.
type MalformedSignatureError struct {
	Token string // offending token as it appeared in the input
	Index int    // token position (0-based), -1 when the input as a whole is at fault
}

func (e *MalformedSignatureError) Error() string {
	return fmt.Sprintf("malformed signature: token %d %q is neither a wildcard nor a two-digit hex byte", e.Index, e.Token)
}

// Unwrap allows errors.Is(err, ErrMalformedSignature).
func (e *MalformedSignatureError) Unwrap() error {
	return ErrMalformedSignature
}

// Signature is a compiled masked byte pattern.
// A Signature is immutable and safe for concurrent use.
type Signature struct {
	source  string
	pattern []byte
	mask    []bool

	// longest run of exact bytes, used for prefiltering and candidate generation
	anchor    []byte
	anchorPos int
}

// Compile parses a whitespace-delimited pattern such as "48 8B ?? ?? 05".
//
// Each token must be "?" or "??" (wildcard) or exactly two hex digits.
// An empty pattern compiles to a zero-length signature, which matches
// any subject at offset 0.
func Compile(pattern string) (*Signature, error) {
	tokens := strings.Fields(pattern)
	raw := make([]byte, len(tokens))
	mask := make([]bool, len(tokens))

	for i, tok := range tokens {
		if tok == "?" || tok == "??" {
			continue
		}

		b, ok := parseHexByte(tok)
		if !ok {
			return nil, &MalformedSignatureError{Token: tok, Index: i}
		}
		raw[i] = b
		mask[i] = true
	}

	return newSignature(pattern, raw, mask), nil
}

// MustCompile is like Compile but panics on a malformed pattern.
func MustCompile(pattern string) *Signature {
	sig, err := Compile(pattern)
	if err != nil {
		panic(err)
	}
	return sig
}

// FromMask builds a signature from raw bytes and a code-style mask where
// 'x' marks an exact byte and '?' a wildcard, e.g. ("\x48\x8B\x00\x00", "xx??").
func FromMask(pattern []byte, mask string) (*Signature, error) {
	if len(pattern) != len(mask) {
		return nil, &MalformedSignatureError{Token: mask, Index: -1}
	}

	raw := make([]byte, len(pattern))
	m := make([]bool, len(pattern))
	for i := 0; i < len(mask); i++ {
		switch mask[i] {
		case 'x', 'X':
			raw[i] = pattern[i]
			m[i] = true
		case '?':
		default:
			return nil, &MalformedSignatureError{Token: string(mask[i]), Index: i}
		}
	}

	sig := newSignature("", raw, m)
	sig.source = sig.String()
	return sig, nil
}

func newSignature(source string, raw []byte, mask []bool) *Signature {
	s := &Signature{
		source:  source,
		pattern: raw,
		mask:    mask,
	}
	s.anchorPos, s.anchor = longestRun(raw, mask)
	return s
}

// Len returns the number of bytes the signature spans.
func (s *Signature) Len() int {
	return len(s.pattern)
}

// Pattern returns a copy of the byte template. Wildcard positions hold 0.
func (s *Signature) Pattern() []byte {
	out := make([]byte, len(s.pattern))
	copy(out, s.pattern)
	return out
}

// Mask returns a copy of the relevance mask.
func (s *Signature) Mask() []bool {
	out := make([]bool, len(s.mask))
	copy(out, s.mask)
	return out
}

// Wildcards returns the number of wildcard positions.
func (s *Signature) Wildcards() int {
	n := 0
	for _, m := range s.mask {
		if !m {
			n++
		}
	}
	return n
}

// Anchor returns the longest run of exact bytes and its index in the pattern.
// The returned slice must not be modified. It is empty when every position
// is a wildcard.
func (s *Signature) Anchor() ([]byte, int) {
	return s.anchor, s.anchorPos
}

// Source returns the text the signature was compiled from.
func (s *Signature) Source() string {
	return s.source
}

// MatchAt reports whether the signature matches window, which must be at
// least Len() bytes long.
func (s *Signature) MatchAt(window []byte) bool {
	for i, b := range s.pattern {
		if s.mask[i] && window[i] != b {
			return false
		}
	}
	return true
}

// String renders the canonical form, e.g. "4F ?? ?? 1A".
func (s *Signature) String() string {
	var sb strings.Builder
	for i, b := range s.pattern {
		if i > 0 {
			sb.WriteByte(' ')
		}
		if !s.mask[i] {
			sb.WriteString("??")
			continue
		}
		fmt.Fprintf(&sb, "%02X", b)
	}
	return sb.String()
}

func parseHexByte(tok string) (byte, bool) {
	if len(tok) != 2 {
		return 0, false
	}
	b, err := hex.DecodeString(tok)
	if err != nil {
		return 0, false
	}
	return b[0], true
}

// longestRun returns the start and bytes of the longest run of masked bytes.
// Ties keep the earliest run.
func longestRun(raw []byte, mask []bool) (int, []byte) {
	bestStart, bestLen := 0, 0
	start := 0
	for i := 0; i <= len(mask); i++ {
		if i < len(mask) && mask[i] {
			continue
		}
		if n := i - start; n > bestLen {
			bestStart, bestLen = start, n
		}
		start = i + 1
	}
	if bestLen == 0 {
		return 0, nil
	}
	return bestStart, raw[bestStart : bestStart+bestLen]
}
