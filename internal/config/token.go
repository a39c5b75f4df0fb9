package config

import "time"

// Token is a bearer token with a known expiry. A zero Expiry means the token
// never expires (Paragon server tokens are long-lived).
type Token struct {
	Value  string
	Expiry time.Time
}

// Fresh reports whether tok is still usable at now, with a 5 minute buffer
// so a token is never presented moments before it lapses.
func (t Token) Fresh(now time.Time) bool {
	if t.Value == "" {
		return false
	}
	if t.Expiry.IsZero() {
		return true
	}
	return now.Before(t.Expiry.Add(-5 * time.Minute))
}

// TokenSource yields a token valid at the given instant. Implementations must
// be safe for concurrent use; none of them mutate shared state in place.
type TokenSource interface {
	Token(now time.Time) Token
}

// StaticTokenSource wraps a long-lived server token.
type StaticTokenSource struct{ Tok Token }

func NewStaticTokenSource(value string) StaticTokenSource {
	return StaticTokenSource{Tok: Token{Value: value}}
}

func (s StaticTokenSource) Token(time.Time) Token { return s.Tok }

// RefreshingTokenSource derives a fresh token from the current one via a pure
// refresh function whenever the current token is no longer fresh.
type RefreshingTokenSource struct {
	Current Token
	Refresh func(current Token, now time.Time) Token
}

func (s RefreshingTokenSource) Token(now time.Time) Token {
	if s.Current.Fresh(now) {
		return s.Current
	}
	if s.Refresh == nil {
		return s.Current
	}
	return s.Refresh(s.Current, now)
}
