// Package domain contains the venue context's core types: asset pairs,
// fee structures, price quotes and swap primitives.
package domain

import (
	"fmt"
	"strings"
)

// Pair is an ordered asset pair. Price for a pair is always quoted as
// units of Quote per unit of Base.
type Pair struct {
	Base  string
	Quote string
}

// NewPair creates a Pair from base and quote tickers.
func NewPair(base, quote string) Pair {
	return Pair{
		Base:  strings.ToUpper(base),
		Quote: strings.ToUpper(quote),
	}
}

// ParsePair parses "BASE-QUOTE" (e.g. "CATSKY-ADA").
func ParsePair(s string) (Pair, error) {
	base, quote, ok := strings.Cut(s, "-")
	if !ok || base == "" || quote == "" {
		return Pair{}, fmt.Errorf("invalid pair %q, expected BASE-QUOTE", s)
	}
	return NewPair(base, quote), nil
}

// String returns the canonical "BASE-QUOTE" form.
func (p Pair) String() string {
	return p.Base + "-" + p.Quote
}

// Equals reports structural equality: both components equal, same order.
func (p Pair) Equals(other Pair) bool {
	return p.Base == other.Base && p.Quote == other.Quote
}

// Matches reports whether other refers to the same market regardless of
// direction. Venues may list either leg first; quote orientation relies
// on this.
func (p Pair) Matches(other Pair) bool {
	if p.Equals(other) {
		return true
	}
	return p.Base == other.Quote && p.Quote == other.Base
}

// Inverse returns the pair with base and quote swapped.
func (p Pair) Inverse() Pair {
	return Pair{Base: p.Quote, Quote: p.Base}
}
