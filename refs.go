package templeton

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// RefFunc resolves a key written after a ref sigil, e.g. "greeting.welcome"
// for {{@greeting.welcome}}. It returns fallback when nothing is found.
type RefFunc func(fields any, key string, fallback any) any

// reservedSigils can not be registered: they are marker syntax, path syntax
// or the first character of an extended key.
const reservedSigils = "{}|#/:.[]'\"~_"

// PrefixRef returns a RefFunc that resolves keys below a fixed path, so that
// a ref registered as PrefixRef("locale") turns {{@greeting}} into a lookup
// of "locale.greeting".
func PrefixRef(prefix string) RefFunc {
	prefix = strings.Trim(prefix, ".")
	return func(fields any, key string, fallback any) any {
		if prefix == "" {
			return ResolvePath(fields, key, fallback)
		}
		return ResolvePath(fields, prefix+"."+key, fallback)
	}
}

func validSigil(sigil rune) error {
	switch {
	case sigil == utf8.RuneError:
		return fmt.Errorf("%w: not a valid character", ErrInvalidSigil)
	case unicode.IsLetter(sigil), unicode.IsDigit(sigil), unicode.IsSpace(sigil):
		return fmt.Errorf("%w: %q can start an ordinary key", ErrInvalidSigil, sigil)
	case strings.ContainsRune(reservedSigils, sigil):
		return fmt.Errorf("%w: %q is reserved", ErrInvalidSigil, sigil)
	}
	return nil
}

// lookupRef reports the resolver registered for the first character of key
// and the remainder of the key.
func (e *Engine) lookupRef(key string) (RefFunc, string, bool) {
	if len(e.refs) == 0 || key == "" {
		return nil, "", false
	}
	sigil, size := utf8.DecodeRuneInString(key)
	fn, ok := e.refs[sigil]
	if !ok {
		return nil, "", false
	}
	return fn, key[size:], true
}
