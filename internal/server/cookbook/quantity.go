package cookbook

import (
	"encoding/json"
	"math/big"
	"strings"

	"github.com/dmitrijs2005/recipekeeper/internal/server/models"
)

// Accumulator is an amount prepared for aggregation: either an integer that
// can be summed or the original value carried through untouched. Integers
// are unbounded so sums never wrap.
type Accumulator struct {
	numeric bool
	n       *big.Int
	opaque  models.Amount
}

// Numeric reports whether the accumulator takes part in summation.
func (a Accumulator) Numeric() bool { return a.numeric }

// Amount returns the value to publish: the running total for numeric
// accumulators, the original amount otherwise.
func (a Accumulator) Amount() models.Amount {
	if a.numeric {
		return models.IntegerAmount(a.n)
	}
	return a.opaque
}

// add returns the sum of two numeric accumulators. Neither operand is
// modified.
func (a Accumulator) add(b Accumulator) Accumulator {
	return Accumulator{numeric: true, n: new(big.Int).Add(a.n, b.n)}
}

// Coerce turns a raw amount into an Accumulator. JSON integers and strings
// holding a base-10 integer of any size become numeric; anything else
// (fractions, decimals, free text, null) stays opaque. Failing to parse is
// not an error.
func Coerce(a models.Amount) Accumulator {
	if n, ok := parseInteger(a); ok {
		return Accumulator{numeric: true, n: n}
	}
	return Accumulator{opaque: a}
}

func parseInteger(a models.Amount) (*big.Int, bool) {
	if a.IsNull() {
		return nil, false
	}

	text := string(a.Raw())
	if a.IsString() {
		var s string
		if err := json.Unmarshal(a.Raw(), &s); err != nil {
			return nil, false
		}
		text = strings.TrimSpace(s)
	}

	return new(big.Int).SetString(text, 10)
}
