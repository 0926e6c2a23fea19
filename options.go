package templeton

import (
	"errors"
	"log/slog"

	"github.com/microcosm-cc/bluemonday"
)

// Option configures an Engine during New.
type Option func(*Engine) error

// WithLogger sets the logger used for debug records about unresolved keys
// and skipped helpers. By default nothing is logged.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			return errors.New("templeton: nil logger")
		}
		e.logger = logger
		return nil
	}
}

// WithExtendedKeys controls whether each blocks expose "~", "__path__" and
// "__key__". Extended keys are enabled by default.
func WithExtendedKeys(enabled bool) Option {
	return func(e *Engine) error {
		e.extendedKeys = enabled
		return nil
	}
}

// WithHelper registers a transform helper.
func WithHelper(name string, fn HelperFunc) Option {
	return func(e *Engine) error {
		if fn == nil {
			return errors.New("templeton: nil helper func for " + name)
		}
		e.RegisterHelper(name, fn)
		return nil
	}
}

// WithTemplateHelper registers a helper that renders tpl with the piped
// value as its data.
func WithTemplateHelper(name, tpl string) Option {
	return func(e *Engine) error {
		e.RegisterTemplateHelper(name, tpl)
		return nil
	}
}

// WithBlock registers a block behavior.
func WithBlock(name string, fn BlockFunc) Option {
	return func(e *Engine) error {
		if fn == nil {
			return errors.New("templeton: nil block func for " + name)
		}
		e.RegisterBlock(name, fn)
		return nil
	}
}

// WithRef registers a ref resolver under a single character sigil.
func WithRef(sigil rune, fn RefFunc) Option {
	return func(e *Engine) error {
		return e.RegisterRef(sigil, fn)
	}
}

// WithSanitizePolicy replaces the policy used by the sanitize helper. The
// default is bluemonday's UGC policy.
func WithSanitizePolicy(policy *bluemonday.Policy) Option {
	return func(e *Engine) error {
		if policy == nil {
			return errors.New("templeton: nil sanitize policy")
		}
		e.sanitizer = policy
		return nil
	}
}

// WithTokenCache shares a token cache between engines.
func WithTokenCache(cache *TokenCache) Option {
	return func(e *Engine) error {
		e.cache = cache
		return nil
	}
}

// WithoutCache disables token caching; every render rescans its template.
func WithoutCache() Option {
	return func(e *Engine) error {
		e.cache = nil
		return nil
	}
}
