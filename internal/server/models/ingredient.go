package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/recipekeeper/internal/common"
)

// Amount is an ingredient quantity kept exactly as it was supplied: a JSON
// number, a JSON string or null. Whether it can take part in arithmetic is
// decided later by the cookbook package.
type Amount struct {
	raw json.RawMessage
}

// NumberAmount returns an Amount holding the integer n.
func NumberAmount(n int64) Amount {
	return Amount{raw: json.RawMessage(strconv.FormatInt(n, 10))}
}

// IntegerAmount returns an Amount holding n, which may exceed int64.
func IntegerAmount(n *big.Int) Amount {
	return Amount{raw: json.RawMessage(n.String())}
}

// TextAmount returns an Amount holding the string s.
func TextAmount(s string) Amount {
	b, _ := json.Marshal(s)
	return Amount{raw: b}
}

// Raw returns the JSON encoding of the amount ("null" when unset).
func (a Amount) Raw() json.RawMessage {
	if len(a.raw) == 0 {
		return json.RawMessage("null")
	}
	return a.raw
}

// IsNull reports whether the amount is missing or JSON null.
func (a Amount) IsNull() bool {
	return len(a.raw) == 0 || bytes.Equal(a.raw, []byte("null"))
}

// IsString reports whether the amount was supplied as a JSON string.
func (a Amount) IsString() bool {
	return len(a.raw) > 0 && a.raw[0] == '"'
}

// Text returns the amount as display text: the unquoted value for strings,
// the literal for numbers and "" for null.
func (a Amount) Text() string {
	if a.IsNull() {
		return ""
	}
	if a.IsString() {
		var s string
		_ = json.Unmarshal(a.raw, &s)
		return s
	}
	return string(a.raw)
}

// Equal reports whether both amounts have the same JSON encoding.
func (a Amount) Equal(b Amount) bool {
	return bytes.Equal(a.Raw(), b.Raw())
}

func (a Amount) String() string {
	return string(a.Raw())
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return a.Raw(), nil
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 {
		return fmt.Errorf("%w: empty amount", common.ErrorIncorrectData)
	}

	switch c := trimmed[0]; {
	case c == '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return fmt.Errorf("%w: %v", common.ErrorIncorrectData, err)
		}
	case c == 'n':
		if !bytes.Equal(trimmed, []byte("null")) {
			return fmt.Errorf("%w: invalid amount %s", common.ErrorIncorrectData, trimmed)
		}
	case c == '-' || (c >= '0' && c <= '9'):
		var n json.Number
		if err := json.Unmarshal(trimmed, &n); err != nil {
			return fmt.Errorf("%w: %v", common.ErrorIncorrectData, err)
		}
	default:
		return fmt.Errorf("%w: amount must be a number, a string or null", common.ErrorIncorrectData)
	}

	a.raw = append(json.RawMessage(nil), trimmed...)
	return nil
}

// Ingredient is a single ingredient line of a recipe.
type Ingredient struct {
	Name   string `json:"name"`
	Amount Amount `json:"amount"`
	Unit   string `json:"unit"`
}

// Validate rejects ingredient lines that must not reach aggregation.
func (i Ingredient) Validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return fmt.Errorf("%w: ingredient name is required", common.ErrorIncorrectData)
	}
	return nil
}

// IngredientList is the ordered ingredient list of a recipe. Decoding
// validates every entry.
type IngredientList []Ingredient

func (l *IngredientList) UnmarshalJSON(b []byte) error {
	var items []Ingredient
	if err := json.Unmarshal(b, &items); err != nil {
		if isIncorrectData(err) {
			return err
		}
		return fmt.Errorf("%w: %v", common.ErrorIncorrectData, err)
	}
	for n, item := range items {
		if err := item.Validate(); err != nil {
			return fmt.Errorf("ingredient %d: %w", n, err)
		}
	}
	*l = items
	return nil
}
