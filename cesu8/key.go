package cesu8

import (
	"strings"
	"unicode/utf8"

	"github.com/wippyai/duk-runtime/errors"
)

// ValidateKey checks that a property or global name can cross into the heap.
// Names travel as NUL-terminated C strings, so they must be valid UTF-8 and
// must not contain NUL.
func ValidateKey(key string) error {
	if !utf8.ValidString(key) {
		return errors.InvalidUTF8(errors.PhaseEncode, []string{key}, []byte(key))
	}
	if strings.IndexByte(key, 0) >= 0 {
		return errors.New(errors.PhaseEncode, errors.KindInvalidInput).
			Path(strings.ReplaceAll(key, "\x00", `\0`)).
			Detail("property name contains NUL").
			Build()
	}
	return nil
}
