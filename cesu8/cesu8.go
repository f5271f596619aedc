// Package cesu8 converts between UTF-8 and the CESU-8 flavor used inside the
// Duktape heap.
//
// CESU-8 stores characters outside the Basic Multilingual Plane as a UTF-16
// surrogate pair, each half encoded as its own 3-byte sequence. The decoder
// also accepts plain 4-byte UTF-8 sequences, which the engine emits for some
// string operations.
package cesu8

import (
	"unicode/utf16"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"

	"github.com/wippyai/duk-runtime/errors"
)

// Encoding is the CESU-8 encoding. Its encoder turns UTF-8 into CESU-8 and its
// decoder does the reverse. Both reject malformed input.
var Encoding encoding.Encoding = cesu8Encoding{}

type cesu8Encoding struct{}

func (cesu8Encoding) NewDecoder() *encoding.Decoder {
	return &encoding.Decoder{Transformer: &decoder{}}
}

func (cesu8Encoding) NewEncoder() *encoding.Encoder {
	return &encoding.Encoder{Transformer: &encoder{}}
}

func (cesu8Encoding) String() string { return "CESU-8" }

// Encode converts UTF-8 bytes to CESU-8.
func Encode(b []byte) ([]byte, error) {
	if !needsEncoding(b) {
		return b, nil
	}
	out, _, err := transform.Bytes(Encoding.NewEncoder(), b)
	return out, err
}

// EncodeString converts a UTF-8 string to CESU-8.
func EncodeString(s string) (string, error) {
	if !needsEncoding([]byte(s)) {
		return s, nil
	}
	out, _, err := transform.String(Encoding.NewEncoder(), s)
	return out, err
}

// Decode converts CESU-8 bytes to UTF-8.
func Decode(b []byte) ([]byte, error) {
	if utf8.Valid(b) {
		return b, nil
	}
	out, _, err := transform.Bytes(Encoding.NewDecoder(), b)
	return out, err
}

// DecodeString converts a CESU-8 string to UTF-8.
func DecodeString(s string) (string, error) {
	if utf8.ValidString(s) {
		return s, nil
	}
	out, _, err := transform.String(Encoding.NewDecoder(), s)
	return out, err
}

// DecodeLenient converts CESU-8 to UTF-8, replacing every malformed sequence
// and lone surrogate with U+FFFD. The second result is false when at least one
// replacement was made.
func DecodeLenient(s string) (string, bool) {
	if out, err := DecodeString(s); err == nil {
		return out, true
	}
	out, _, _ := transform.String(&decoder{lenient: true}, s)
	return out, false
}

// needsEncoding reports whether b holds anything other than BMP-only valid UTF-8.
func needsEncoding(b []byte) bool {
	for _, c := range b {
		if c >= 0xF0 {
			return true
		}
	}
	return !utf8.Valid(b)
}

type encoder struct {
	transform.NopResetter
}

func (*encoder) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for nSrc < len(src) {
		c := src[nSrc]
		if c < utf8.RuneSelf {
			if nDst >= len(dst) {
				return nDst, nSrc, transform.ErrShortDst
			}
			dst[nDst] = c
			nDst++
			nSrc++
			continue
		}

		if !utf8.FullRune(src[nSrc:]) && !atEOF {
			return nDst, nSrc, transform.ErrShortSrc
		}
		r, size := utf8.DecodeRune(src[nSrc:])
		if r == utf8.RuneError && size == 1 {
			return nDst, nSrc, errors.InvalidUTF8(errors.PhaseEncode, nil, src[nSrc:])
		}

		if r <= 0xFFFF {
			if nDst+size > len(dst) {
				return nDst, nSrc, transform.ErrShortDst
			}
			nDst += copy(dst[nDst:], src[nSrc:nSrc+size])
			nSrc += size
			continue
		}

		if nDst+6 > len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}
		hi, lo := utf16.EncodeRune(r)
		putSurrogate(dst[nDst:], hi)
		putSurrogate(dst[nDst+3:], lo)
		nDst += 6
		nSrc += size
	}
	return nDst, nSrc, nil
}

type decoder struct {
	transform.NopResetter
	lenient bool
}

func (d *decoder) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for nSrc < len(src) {
		c := src[nSrc]
		if c < utf8.RuneSelf {
			if nDst >= len(dst) {
				return nDst, nSrc, transform.ErrShortDst
			}
			dst[nDst] = c
			nDst++
			nSrc++
			continue
		}

		rest := src[nSrc:]
		if c == 0xED && len(rest) >= 2 && rest[1] >= 0xA0 {
			// surrogate half, possibly the start of a pair
			need := 3
			if rest[1] < 0xB0 {
				need = 6
			}
			if len(rest) < need && !atEOF {
				return nDst, nSrc, transform.ErrShortSrc
			}
			if need == 6 && len(rest) >= 6 {
				hi, okHi := surrogate(rest[:3])
				lo, okLo := surrogate(rest[3:6])
				if okHi && okLo && lo >= 0xDC00 {
					if nDst+4 > len(dst) {
						return nDst, nSrc, transform.ErrShortDst
					}
					nDst += utf8.EncodeRune(dst[nDst:], utf16.DecodeRune(hi, lo))
					nSrc += 6
					continue
				}
			}
			n, w, err := d.invalid(dst[nDst:], rest, 3)
			if err != nil {
				return nDst, nSrc, err
			}
			nDst += w
			nSrc += n
			continue
		}

		if !utf8.FullRune(rest) && !atEOF {
			return nDst, nSrc, transform.ErrShortSrc
		}
		r, size := utf8.DecodeRune(rest)
		if r == utf8.RuneError && size == 1 {
			n, w, err := d.invalid(dst[nDst:], rest, 1)
			if err != nil {
				return nDst, nSrc, err
			}
			nDst += w
			nSrc += n
			continue
		}
		if nDst+size > len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}
		nDst += copy(dst[nDst:], rest[:size])
		nSrc += size
	}
	return nDst, nSrc, nil
}

// invalid handles a malformed sequence of at most width bytes at the start of
// src. Strict decoders fail; lenient ones emit U+FFFD.
func (d *decoder) invalid(dst, src []byte, width int) (consumed, written int, err error) {
	if !d.lenient {
		return 0, 0, errors.InvalidUTF8(errors.PhaseDecode, nil, src)
	}
	if len(dst) < utf8.RuneLen(utf8.RuneError) {
		return 0, 0, transform.ErrShortDst
	}
	consumed = min(width, len(src))
	// only swallow bytes that belong to the broken sequence
	for i := 1; i < consumed; i++ {
		if src[i]&0xC0 != 0x80 {
			consumed = i
			break
		}
	}
	return consumed, utf8.EncodeRune(dst, utf8.RuneError), nil
}

// surrogate decodes one 3-byte encoded UTF-16 surrogate half.
func surrogate(b []byte) (rune, bool) {
	if b[0] != 0xED || b[1]&0xE0 != 0xA0 || b[2]&0xC0 != 0x80 {
		return 0, false
	}
	return rune(b[0]&0x0F)<<12 | rune(b[1]&0x3F)<<6 | rune(b[2]&0x3F), true
}

func putSurrogate(dst []byte, r rune) {
	dst[0] = 0xE0 | byte(r>>12)
	dst[1] = 0x80 | byte(r>>6)&0x3F
	dst[2] = 0x80 | byte(r)&0x3F
}
