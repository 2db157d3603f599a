package violation

import "strings"

// List is an ordered, append-only accumulator of human-readable violations
// for a single check run. It is not safe for concurrent use; each check owns
// its own List.
type List struct {
	items   []string
	seen    map[string]struct{}
	dedup   bool
	ignored []string
}

// Option configures a List.
type Option func(*List)

// WithDedup toggles suppression of repeated identical messages.
func WithDedup(enabled bool) Option {
	return func(l *List) { l.dedup = enabled }
}

// WithIgnored suppresses any message containing one of the given substrings.
func WithIgnored(substrings []string) Option {
	return func(l *List) {
		for _, s := range substrings {
			if s = strings.TrimSpace(s); s != "" {
				l.ignored = append(l.ignored, s)
			}
		}
	}
}

// New returns an empty List. Dedup is on unless disabled with WithDedup(false).
func New(opts ...Option) *List {
	l := &List{
		seen:  make(map[string]struct{}),
		dedup: true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Add records msg and reports whether it was kept.
func (l *List) Add(msg string) bool {
	msg = strings.TrimSpace(msg)
	if msg == "" {
		return false
	}
	for _, s := range l.ignored {
		if strings.Contains(msg, s) {
			return false
		}
	}
	if l.dedup {
		if _, ok := l.seen[msg]; ok {
			return false
		}
		l.seen[msg] = struct{}{}
	}
	l.items = append(l.items, msg)
	return true
}

// Addf is a convenience wrapper around Add with fmt-style formatting.
func (l *List) Addf(format string, args ...any) bool {
	return l.Add(sprintf(format, args...))
}

// Len returns the number of recorded violations.
func (l *List) Len() int {
	return len(l.items)
}

// Empty reports whether nothing has been recorded.
func (l *List) Empty() bool {
	return len(l.items) == 0
}

// Items returns a copy of the recorded violations in insertion order.
// The result is never nil.
func (l *List) Items() []string {
	out := make([]string, len(l.items))
	copy(out, l.items)
	return out
}
