package templeton

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// HelperFunc transforms a resolved value. args holds the colon separated
// arguments written after the helper name, e.g. {{v|replace:old:new}}.
type HelperFunc func(value any, args ...string) (any, error)

// Helper is either a transform function or a sub-template. A sub-template
// helper renders Template with the piped value as its only data.
type Helper struct {
	Func     HelperFunc
	Template string
}

var (
	htmlEscaper = strings.NewReplacer(`&`, "&amp;", `<`, "&lt;", `>`, "&gt;", `"`, "&quot;")

	// url.QueryEscape differs from a URI component encoding in how it
	// treats spaces and the sub-delimiters !'()*.
	uriComponentFixer = strings.NewReplacer("+", "%20", "%21", "!", "%27", "'", "%28", "(", "%29", ")", "%2A", "*")
)

func escapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

func escapeURIComponent(s string) string {
	return uriComponentFixer.Replace(url.QueryEscape(s))
}

func (e *Engine) defaultHelpers() map[string]Helper {
	return map[string]Helper{
		"html":       {Func: htmlHelper},
		"escape":     {Func: escapeHelper},
		"json":       {Func: jsonHelper},
		"link":       {Template: `<a href="{{href}}">{{title}}</a>`},
		"upper":      {Func: upperHelper},
		"lower":      {Func: lowerHelper},
		"capitalize": {Func: capitalizeHelper},
		"title":      {Func: titleHelper},
		"trim":       {Func: trimHelper},
		"replace":    {Func: replaceHelper},
		"join":       {Func: joinHelper},
		"default":    {Func: defaultHelper},
		"truncate":   {Func: truncateHelper},
		"sanitize":   {Func: e.sanitizeHelper},
	}
}

// parseHelperCall splits "name:arg1:arg2" into the helper name and its
// arguments. Only the name is trimmed; arguments are kept as written.
func parseHelperCall(call string) (string, []string) {
	name, rest, found := strings.Cut(call, ":")
	name = strings.TrimSpace(name)
	if !found {
		return name, nil
	}
	return name, strings.Split(rest, ":")
}

// htmlHelper escapes &, <, > and ".
// Usage: {{v|html}}; the default escaping is skipped after it ran.
func htmlHelper(value any, _ ...string) (any, error) {
	return escapeHTML(stringify(value)), nil
}

// escapeHelper encodes the value as a URI component.
// Usage: <a href="/search?q={{{q|escape}}}">
func escapeHelper(value any, _ ...string) (any, error) {
	return escapeURIComponent(stringify(value)), nil
}

// jsonHelper serialises the value to JSON text.
// Usage: {{{v|json}}} -> {"a":1}
func jsonHelper(value any, _ ...string) (any, error) {
	s, err := marshalJSON(value)
	if err != nil {
		return nil, fmt.Errorf("json helper: %w", err)
	}
	return s, nil
}

// upperHelper converts a string to uppercase.
// Usage: {{name|upper}} -> "HELLO"
func upperHelper(value any, _ ...string) (any, error) {
	return strings.ToUpper(stringify(value)), nil
}

// lowerHelper converts a string to lowercase.
func lowerHelper(value any, _ ...string) (any, error) {
	return strings.ToLower(stringify(value)), nil
}

// capitalizeHelper uppercases the first character and lowercases the rest.
// Usage: {{name|capitalize}} -> "Hello world"
func capitalizeHelper(value any, _ ...string) (any, error) {
	str := stringify(value)
	if str == "" {
		return "", nil
	}
	r, size := utf8.DecodeRuneInString(str)
	return string(unicode.ToUpper(r)) + strings.ToLower(str[size:]), nil
}

// titleHelper uppercases the first letter of every word.
func titleHelper(value any, _ ...string) (any, error) {
	// A Caser keeps state between calls and cannot be shared.
	return cases.Title(language.Und).String(stringify(value)), nil
}

// trimHelper removes leading and trailing whitespace, or the characters of
// the first argument when given.
// Usage: {{v|trim}} or {{v|trim:-_}}
func trimHelper(value any, args ...string) (any, error) {
	str := stringify(value)
	if len(args) == 0 || args[0] == "" {
		return strings.TrimSpace(str), nil
	}
	return strings.Trim(str, args[0]), nil
}

// replaceHelper replaces every occurrence of the first argument with the
// second; an optional third argument limits the count.
// Usage: {{v|replace:Hello:Hi}}
func replaceHelper(value any, args ...string) (any, error) {
	if len(args) < 2 {
		return nil, fmt.Errorf("replace helper requires two arguments: old and new substring")
	}
	count := -1
	if len(args) > 2 {
		n, err := strconv.Atoi(args[2])
		if err != nil {
			return nil, fmt.Errorf("replace helper count must be an integer, got %q", args[2])
		}
		count = n
	}
	return strings.Replace(stringify(value), args[0], args[1], count), nil
}

// joinHelper joins the entries of a sequence with the first argument.
// Usage: {{tags|join:, }} -> "a, b"
func joinHelper(value any, args ...string) (any, error) {
	seq, ok := asSequence(value)
	if !ok {
		return value, nil
	}
	sep := ""
	if len(args) > 0 {
		sep = strings.Join(args, ":")
	}
	parts := make([]string, 0, seq.Len())
	for _, item := range seq.Entries() {
		parts = append(parts, stringify(item))
	}
	return strings.Join(parts, sep), nil
}

// defaultHelper replaces a falsy value with the first argument.
// Missing keys never reach helpers; this covers empty strings, false and 0.
// Usage: {{nickname|default:anonymous}}
func defaultHelper(value any, args ...string) (any, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("default helper requires at least one argument (the default value)")
	}
	if !isTruthy(value) {
		return args[0], nil
	}
	return value, nil
}

// truncateHelper shortens the value to at most n characters, appending the
// optional second argument when it cut anything.
// Usage: {{body|truncate:80:...}}
func truncateHelper(value any, args ...string) (any, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("truncate helper requires a length argument")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 0 {
		return nil, fmt.Errorf("truncate helper length must be a non-negative integer, got %q", args[0])
	}
	str := stringify(value)
	runes := []rune(str)
	if len(runes) <= n {
		return str, nil
	}
	suffix := ""
	if len(args) > 1 {
		suffix = args[1]
	}
	return string(runes[:n]) + suffix, nil
}

// sanitizeHelper strips unsafe markup using the engine's bluemonday policy.
// Pair it with a triple-brace marker to keep the markup it allows.
// Usage: {{{bio|sanitize}}}
func (e *Engine) sanitizeHelper(value any, _ ...string) (any, error) {
	return e.sanitizer.Sanitize(stringify(value)), nil
}
