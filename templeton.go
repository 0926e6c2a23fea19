package templeton

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

// DefaultTokenCacheSize is the number of scanned templates an Engine keeps
// unless configured with WithTokenCache or WithoutCache. Block bodies are
// cached as templates of their own.
const DefaultTokenCacheSize = 1024

// TokenCache is a thread-safe cache of scanned templates.
type TokenCache struct {
	cache map[string][]Token
	limit int
	mu    sync.RWMutex
}

// NewTokenCache creates a new token cache without a size limit
func NewTokenCache() *TokenCache {
	return NewBoundedTokenCache(0)
}

// NewBoundedTokenCache creates a token cache holding at most limit templates.
// When full, an arbitrary entry is evicted for each new one. A limit of zero
// or less means unbounded.
func NewBoundedTokenCache(limit int) *TokenCache {
	return &TokenCache{
		cache: make(map[string][]Token),
		limit: limit,
	}
}

// Get retrieves the tokens of a template from the cache
func (tc *TokenCache) Get(template string) ([]Token, bool) {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	tokens, ok := tc.cache[template]
	return tokens, ok
}

// Set stores the tokens of a template in the cache
func (tc *TokenCache) Set(template string, tokens []Token) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	if _, ok := tc.cache[template]; !ok && tc.limit > 0 {
		for len(tc.cache) >= tc.limit {
			for k := range tc.cache {
				delete(tc.cache, k)
				break
			}
		}
	}
	tc.cache[template] = tokens
}

// Len returns the number of cached templates.
func (tc *TokenCache) Len() int {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return len(tc.cache)
}

// Reset drops every cached template.
func (tc *TokenCache) Reset() {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.cache = make(map[string][]Token)
}

// Engine renders templates. It owns the helper, block and ref registries
// used while rendering; engines never share registries.
//
// Registration methods must not be called while the engine is rendering.
type Engine struct {
	helpers      map[string]Helper
	blocks       map[string]BlockFunc
	refs         map[rune]RefFunc
	extendedKeys bool
	sanitizer    *bluemonday.Policy
	logger       *slog.Logger
	cache        *TokenCache
}

// New creates an Engine with the default helpers (html, escape, json, link
// and the text helpers) and block behaviors (each, if, else, unless and the
// default dispatcher), then applies opts in order.
//
// Scanned templates are cached per engine, up to DefaultTokenCacheSize
// entries including captured block bodies.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		blocks:       defaultBlocks(),
		refs:         make(map[rune]RefFunc),
		extendedKeys: true,
		sanitizer:    bluemonday.UGCPolicy(),
		logger:       discardLogger(),
		cache:        NewBoundedTokenCache(DefaultTokenCacheSize),
	}
	e.helpers = e.defaultHelpers()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// MustNew is like New but panics when an option fails.
func MustNew(opts ...Option) *Engine {
	e, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return e
}

// Default is the engine used by the package level Render function. Its token
// cache is shared by every caller and bounded by DefaultTokenCacheSize.
var Default = MustNew()

// Render renders template against data using the Default engine.
func Render(template string, data any) (string, error) {
	return Default.Render(template, data)
}

// RegisterHelper registers or replaces a transform helper.
func (e *Engine) RegisterHelper(name string, fn HelperFunc) {
	e.helpers[name] = Helper{Func: fn}
}

// RegisterTemplateHelper registers or replaces a sub-template helper.
func (e *Engine) RegisterTemplateHelper(name, tpl string) {
	e.helpers[name] = Helper{Template: tpl}
}

// RegisterBlock registers or replaces a block behavior.
func (e *Engine) RegisterBlock(name string, fn BlockFunc) {
	e.blocks[name] = fn
}

// RegisterRef registers a ref resolver under sigil. Letters, digits,
// whitespace and the characters used by markers, paths and extended keys are
// rejected with ErrInvalidSigil.
func (e *Engine) RegisterRef(sigil rune, fn RefFunc) error {
	if err := validSigil(sigil); err != nil {
		return err
	}
	if fn == nil {
		return fmt.Errorf("%w: nil resolver for %q", ErrInvalidSigil, sigil)
	}
	e.refs[sigil] = fn
	return nil
}

// SetExtendedKeys toggles injection of the extended iteration keys.
func (e *Engine) SetExtendedKeys(enabled bool) {
	e.extendedKeys = enabled
}

// ExtendedKeys reports whether extended iteration keys are injected.
func (e *Engine) ExtendedKeys() bool {
	return e.extendedKeys
}

// Render renders template against data.
//
// Keys that cannot be resolved are emitted as the original marker and
// unknown helpers are skipped. Errors are returned for malformed block
// nesting, unknown block behaviors and failing helpers.
func (e *Engine) Render(template string, data any) (string, error) {
	out, err := e.render(template, data, nil)
	if err != nil {
		return "", fmt.Errorf("template rendering error: %w", err)
	}
	return out, nil
}

// frame is one pending block on the render stack.
type frame struct {
	name string // first word of the opening marker
	alt  string // name of the latest continuation, if any
	id   string
}

func (e *Engine) render(text string, fields any, overrides map[string]any) (string, error) {
	tokens := e.tokens(text)

	var (
		out        strings.Builder
		stack      []frame
		behavior   string
		blockStart int
		previous   PreviousBlock
	)

	for _, tok := range tokens {
		switch tok.Kind {
		case TokenText:
			if len(stack) == 0 {
				out.WriteString(tok.Text)
			}

		case TokenVariable:
			if len(stack) > 0 {
				continue
			}
			rendered, err := e.interpolate(tok, fields, overrides)
			if err != nil {
				return "", err
			}
			out.WriteString(rendered)

		case TokenOpen:
			name, id := tok.Name, tok.Arg
			helper := name
			if id == "" {
				helper, id = defaultBlockName, name
			}
			stack = append(stack, frame{name: name, id: id})
			if len(stack) == 1 {
				behavior = helper
				blockStart = tok.End
			}

		case TokenContinue, TokenClose:
			if len(stack) == 0 {
				return "", fmt.Errorf("%w: %s at offset %d", ErrUnexpectedClose, tok.Text, tok.Start)
			}
			top := stack[len(stack)-1]
			if tok.Kind == TokenClose && tok.Name != top.name && tok.Name != top.alt {
				return "", fmt.Errorf("%w: %s at offset %d closes %q", ErrMismatchedBlock, tok.Text, tok.Start, top.name)
			}
			stack = stack[:len(stack)-1]

			if len(stack) == 0 {
				value, _ := e.value(top.id, fields, overrides)
				ctx := &BlockContext{
					Name:      behavior,
					ID:        top.id,
					Value:     value,
					Content:   text[blockStart:tok.Start],
					Fields:    fields,
					Overrides: overrides,
					Path:      enclosingPath(overrides),
					Previous:  previous,
					engine:    e,
				}
				rendered, err := e.runBlock(behavior, ctx)
				if err != nil {
					return "", err
				}
				out.WriteString(rendered)
				previous = PreviousBlock{Name: ctx.Name, ID: ctx.ID, Value: ctx.Value}
			}

			if tok.Kind == TokenContinue {
				stack = append(stack, frame{name: top.name, alt: tok.Name, id: top.id})
				if len(stack) == 1 {
					behavior = tok.Name
					blockStart = tok.End
				}
			}
		}
	}

	if len(stack) > 0 {
		return "", fmt.Errorf("%w: %q", ErrUnclosedBlock, stack[0].name)
	}
	return out.String(), nil
}

func (e *Engine) tokens(text string) []Token {
	if e.cache == nil {
		return Scan(text)
	}
	if tokens, ok := e.cache.Get(text); ok {
		return tokens
	}
	tokens := Scan(text)
	e.cache.Set(text, tokens)
	return tokens
}

func (e *Engine) runBlock(name string, ctx *BlockContext) (string, error) {
	fn, ok := e.blocks[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownBlock, name)
	}
	return fn(ctx)
}

// value resolves key through a ref when it starts with a registered sigil,
// otherwise through the overrides and then the data.
func (e *Engine) value(key string, fields any, overrides map[string]any) (any, bool) {
	if ref, rest, ok := e.lookupRef(key); ok {
		v := ref(fields, rest, nil)
		return v, v != nil
	}
	if v, ok := overrides[key]; ok && isTruthy(v) {
		return v, true
	}
	return resolvePath(fields, key)
}

func (e *Engine) interpolate(tok Token, fields any, overrides map[string]any) (string, error) {
	value, ok := e.value(tok.Name, fields, overrides)
	if !ok || value == nil {
		e.logger.Debug("unresolved key, keeping marker", "key", tok.Name, "offset", tok.Start)
		return tok.Text, nil
	}

	escape := !tok.Raw
	for _, call := range tok.HelperNames() {
		name, args := parseHelperCall(call)
		helper, found := e.helpers[name]
		if !found {
			e.logger.Debug("skipping unknown helper", "helper", name, "key", tok.Name)
			continue
		}
		if name == "html" {
			escape = false
		}
		var err error
		value, err = e.execHelper(helper, value, args)
		if err != nil {
			return "", fmt.Errorf("helper %q on %q: %w", name, tok.Name, err)
		}
	}

	rendered := stringify(value)
	if escape {
		rendered = escapeHTML(rendered)
	}
	return rendered, nil
}

func (e *Engine) execHelper(h Helper, value any, args []string) (any, error) {
	if h.Func == nil {
		return e.render(h.Template, value, nil)
	}
	return h.Func(value, args...)
}
