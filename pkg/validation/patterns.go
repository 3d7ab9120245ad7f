package validation

import (
	"fmt"
	"sync"
	"time"

	"github.com/dlclark/regexp2"
)

// Default format expressions.
const (
	DefaultEmailPattern = `^[^\s@]+@[^\s@]+\.[^\s@]+$`
	DefaultPhonePattern = `^(\+?[0-9]{9,15})$`
	DefaultURLPattern   = `^(https?:\/\/)?(www\.)?[-a-zA-Z0-9@:%._\+~#=]{2,256}\.[a-z]{2,6}\b([-a-zA-Z0-9@:%_\+.~#?&//=]*)$`
)

// DefaultMatchTimeout bounds a single regular expression evaluation.
const DefaultMatchTimeout = 100 * time.Millisecond

// Patterns holds the expressions used by the format rules.
type Patterns struct {
	Email string
	Phone string
	URL   string
}

// DefaultPatterns returns the bundled format expressions.
func DefaultPatterns() Patterns {
	return Patterns{
		Email: DefaultEmailPattern,
		Phone: DefaultPhonePattern,
		URL:   DefaultURLPattern,
	}
}

func (p Patterns) withDefaults() Patterns {
	def := DefaultPatterns()
	if p.Email == "" {
		p.Email = def.Email
	}
	if p.Phone == "" {
		p.Phone = def.Phone
	}
	if p.URL == "" {
		p.URL = def.URL
	}
	return p
}

type patternCache struct {
	timeout time.Duration
	mu      sync.RWMutex
	entries map[string]*regexp2.Regexp
}

func newPatternCache(timeout time.Duration) *patternCache {
	return &patternCache{
		timeout: timeout,
		entries: make(map[string]*regexp2.Regexp),
	}
}

func (c *patternCache) compile(expr string) (*regexp2.Regexp, error) {
	c.mu.RLock()
	re, ok := c.entries[expr]
	c.mu.RUnlock()
	if ok {
		return re, nil
	}

	re, err := regexp2.Compile(expr, regexp2.ECMAScript)
	if err != nil {
		return nil, fmt.Errorf("validation: compile pattern %q: %w", expr, err)
	}
	if c.timeout > 0 {
		re.MatchTimeout = c.timeout
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.entries[expr]; ok {
		return existing, nil
	}
	c.entries[expr] = re
	return re, nil
}

// test reports whether expr matches anywhere in value, like RegExp.test.
func (c *patternCache) test(expr, value string) (bool, error) {
	re, err := c.compile(expr)
	if err != nil {
		return false, err
	}
	ok, err := re.MatchString(value)
	if err != nil {
		return false, fmt.Errorf("validation: match pattern %q: %w", expr, err)
	}
	return ok, nil
}

// CheckPattern reports whether expr compiles with the dialect used by the
// pattern, email, phone and url rules.
func CheckPattern(expr string) error {
	if _, err := regexp2.Compile(expr, regexp2.ECMAScript); err != nil {
		return fmt.Errorf("validation: compile pattern %q: %w", expr, err)
	}
	return nil
}
