package namepolicy

import (
	"regexp"
	"strings"
)

// Filter decides whether a package name may be registered.
type Filter interface {
	IsAllowed(name string) bool
}

// Denylist rejects reserved names and names matching configured patterns.
// The zero value allows everything.
type Denylist struct {
	reserved map[string]struct{}
	patterns []*regexp.Regexp
}

// Config holds the deny rules, loadable from the environment.
type Config struct {
	// Reserved is a comma-separated list of names that can never be claimed.
	Reserved []string `env:"NAMEPOLICY_RESERVED" envSeparator:"," envDefault:"std,core,deno,nest,registry,admin"`
	// Patterns is a comma-separated list of regular expressions; a name
	// matching any of them is blocked.
	Patterns []string `env:"NAMEPOLICY_PATTERNS" envSeparator:","`
}

// New builds a Denylist from the config. Invalid patterns are reported
// immediately rather than silently ignored.
func New(cfg Config) (*Denylist, error) {
	d := &Denylist{
		reserved: make(map[string]struct{}, len(cfg.Reserved)),
	}

	for _, name := range cfg.Reserved {
		name = strings.TrimSpace(strings.ToLower(name))
		if name != "" {
			d.reserved[name] = struct{}{}
		}
	}

	for _, p := range cfg.Patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, err
		}
		d.patterns = append(d.patterns, re)
	}

	return d, nil
}

// IsAllowed reports whether the name passes the deny rules.
// Matching is case-insensitive for reserved names.
func (d *Denylist) IsAllowed(name string) bool {
	if d == nil {
		return true
	}

	if _, blocked := d.reserved[strings.ToLower(name)]; blocked {
		return false
	}

	for _, re := range d.patterns {
		if re.MatchString(name) {
			return false
		}
	}

	return true
}

// AllowAll is a Filter that accepts every name. Useful in tests.
type AllowAll struct{}

func (AllowAll) IsAllowed(string) bool { return true }
