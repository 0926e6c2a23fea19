package templeton

import (
	"regexp"
	"strings"
)

// markerPattern matches one marker. Groups: sigil, name, inline argument,
// helper chain. A third brace on either side is optional; whether the marker
// opened with three braces is read from the match itself.
var markerPattern = regexp.MustCompile(`\{\{\{?([#/:]?)([^ {}|]+)(?: ([^{}|]*?))?(?:\|([^{}]*?))?\}?\}\}`)

// TokenKind defines the category of a scanned Token.
type TokenKind int

// Enumerates the kinds of tokens produced by Scan.
const (
	TokenText     TokenKind = iota // A run of literal text between markers.
	TokenVariable                  // An interpolation marker, e.g. {{name}}.
	TokenOpen                      // A block open marker, e.g. {{#each items}}.
	TokenContinue                  // A block continuation marker, e.g. {{:else}}.
	TokenClose                     // A block close marker, e.g. {{/each}}.
)

func (k TokenKind) String() string {
	switch k {
	case TokenText:
		return "text"
	case TokenVariable:
		return "variable"
	case TokenOpen:
		return "open"
	case TokenContinue:
		return "continue"
	case TokenClose:
		return "close"
	}
	return "unknown"
}

// Token is a single element of a scanned template.
type Token struct {
	Kind TokenKind
	// Text is the exact source consumed by the token.
	Text string
	// Name is the key of a variable or the first word of a block marker.
	Name string
	// Arg is the optional inline argument following the name.
	Arg string
	// Helpers is the raw pipe separated helper chain, without the leading pipe.
	Helpers string
	// Raw is set when the marker opened with three braces.
	Raw bool
	// Start and End are byte offsets of Text in the template.
	Start, End int
}

// HelperNames splits the helper chain into its individual calls.
func (t Token) HelperNames() []string {
	if t.Helpers == "" {
		return nil
	}
	return strings.Split(t.Helpers, "|")
}

// Scan splits a template into text and marker tokens in document order.
// Concatenating the Text of every token reproduces the template.
func Scan(template string) []Token {
	matches := markerPattern.FindAllStringSubmatchIndex(template, -1)
	tokens := make([]Token, 0, len(matches)*2+1)
	pos := 0
	for _, m := range matches {
		if m[0] > pos {
			tokens = append(tokens, Token{Kind: TokenText, Text: template[pos:m[0]], Start: pos, End: m[0]})
		}
		tokens = append(tokens, markerToken(template, m))
		pos = m[1]
	}
	if pos < len(template) {
		tokens = append(tokens, Token{Kind: TokenText, Text: template[pos:], Start: pos, End: len(template)})
	}
	return tokens
}

func markerToken(template string, m []int) Token {
	group := func(i int) string {
		if m[2*i] < 0 {
			return ""
		}
		return template[m[2*i]:m[2*i+1]]
	}
	tok := Token{
		Text:    template[m[0]:m[1]],
		Name:    group(2),
		Arg:     group(3),
		Helpers: group(4),
		Start:   m[0],
		End:     m[1],
	}
	tok.Raw = len(tok.Text) > 2 && tok.Text[2] == '{'
	switch group(1) {
	case "#":
		tok.Kind = TokenOpen
	case ":":
		tok.Kind = TokenContinue
	case "/":
		tok.Kind = TokenClose
	default:
		tok.Kind = TokenVariable
	}
	return tok
}

// Keys returns the distinct top-level data keys read by a template's
// variables and block ids, in order of first appearance. Extended keys, "."
// and keys carrying a ref sigil are left out.
func Keys(template string) []string {
	var keys []string
	seen := map[string]struct{}{}
	add := func(expr string) {
		root := rootSegment(expr)
		if root == "" {
			return
		}
		if _, ok := seen[root]; ok {
			return
		}
		seen[root] = struct{}{}
		keys = append(keys, root)
	}
	for _, tok := range Scan(template) {
		switch tok.Kind {
		case TokenVariable:
			add(tok.Name)
		case TokenOpen:
			if tok.Arg != "" {
				add(tok.Arg)
			} else {
				add(tok.Name)
			}
		}
	}
	return keys
}

func rootSegment(expr string) string {
	segments := splitPath(expr)
	if len(segments) == 0 {
		return ""
	}
	root := segments[0]
	switch root {
	case KeyParent, KeyPath, KeyKey:
		return ""
	}
	if !isIdentRune(rune(root[0])) {
		return ""
	}
	return root
}
