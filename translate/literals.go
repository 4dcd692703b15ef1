package translate

import (
	"sync"

	"github.com/shopspring/decimal"
)

var litMemo sync.Map

// normalizeNumber canonicalizes a numeric literal: ".05" becomes "0.05",
// "1e3" becomes "1000", sign and precision are preserved. Text that is not a
// plain number comes back unchanged with ok false. Results are memoized
// since trigger bodies repeat the same few literals.
func normalizeNumber(s string) (string, bool) {
	if cached, ok := litMemo.Load(s); ok {
		return cached.(string), true
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return s, false
	}
	n := d.String()
	litMemo.Store(s, n)
	return n, true
}
