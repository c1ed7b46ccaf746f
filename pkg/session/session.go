// Package session derives the user's verification status from the
// session signal the client stores. The signal's content is never
// interpreted; only its length matters.
package session

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
)

// CookieName is the cookie holding the length of the verification signal.
const CookieName = "isVerifiedLength"

// Source provides the length of the stored session signal.
// Absent signals report 0.
type Source interface {
	SignalLength(ctx context.Context) int
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context) int

// SignalLength calls f(ctx).
func (f SourceFunc) SignalLength(ctx context.Context) int {
	return f(ctx)
}

// StaticSource returns a Source reporting the length of signal.
func StaticSource(signal string) Source {
	return SourceFunc(func(context.Context) int {
		return len(signal)
	})
}

// CookieSource reads the signal length from the request's CookieName cookie.
// The cookie carries the length as a decimal integer read from its leading
// digits, so "12abc" is 12; missing, non-numeric or negative values count as 0.
func CookieSource(r *http.Request) Source {
	return SourceFunc(func(context.Context) int {
		if r == nil {
			return 0
		}

		c, err := r.Cookie(CookieName)
		if err != nil {
			return 0
		}

		return leadingInt(c.Value)
	})
}

// leadingInt parses the optionally signed run of digits at the start of s.
// Values too large for an int saturate.
func leadingInt(s string) int {
	s = strings.TrimSpace(s)

	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}

	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 || neg {
		return 0
	}

	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return math.MaxInt
	}

	return n
}

// Status is the verification status computed at mount time.
type Status struct {
	Verified bool `json:"verified"`
}

// Read computes the verification status from src. It is called once per
// mount; the result is not refreshed when the underlying storage changes.
func Read(ctx context.Context, src Source) Status {
	if src == nil {
		return Status{}
	}

	return Status{Verified: src.SignalLength(ctx) > 0}
}
