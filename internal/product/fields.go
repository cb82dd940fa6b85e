// AngelaMos | 2026
// fields.go

package product

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/carterperez-dev/templates/catalog-backend/internal/core"
)

// Record is one decoded request object. Numbers must be decoded as
// json.Number so integers survive untouched.
type Record map[string]any

type field string

const (
	fieldName     field = "Product"
	fieldSales    field = "Sales"
	fieldCategory field = "Category"
	fieldRevenue  field = "Revenue"
	fieldProfit   field = "Profit"
)

// fieldAliases lists the accepted keys per field, canonical spelling first.
var fieldAliases = map[field][]string{
	fieldName:     {"Product", "product"},
	fieldSales:    {"Sales", "sales"},
	fieldCategory: {"Category", "category"},
	fieldRevenue:  {"Revenue", "revenue"},
	fieldProfit:   {"Profit", "profit"},
}

const (
	maxNameLen     = 255
	maxCategoryLen = 128
)

type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return e.Field + " " + e.Reason
}

func (e *InputError) Unwrap() error {
	return core.ErrInvalidInput
}

func invalid(f field, reason string) error {
	return &InputError{Field: string(f), Reason: reason}
}

// lookup probes the aliases of f in order. The first present non-null value
// wins; present reports whether any alias key appeared at all.
func (r Record) lookup(f field) (value any, present bool) {
	for _, key := range fieldAliases[f] {
		v, ok := r[key]
		if !ok {
			continue
		}
		present = true
		if v != nil {
			return v, true
		}
	}
	return nil, present
}

// ParseNew builds a product from an insert record. The name is mandatory;
// absent numeric fields default to zero.
func ParseNew(rec Record) (*Product, error) {
	raw, _ := rec.lookup(fieldName)
	name, err := coerceName(raw)
	if err != nil {
		return nil, err
	}

	p := &Product{Name: name}

	if raw, _ := rec.lookup(fieldSales); raw != nil {
		if p.Sales, err = coerceSales(raw); err != nil {
			return nil, err
		}
	}

	if raw, _ := rec.lookup(fieldCategory); raw != nil {
		if p.Category, err = coerceCategory(raw); err != nil {
			return nil, err
		}
	}

	if raw, _ := rec.lookup(fieldRevenue); raw != nil {
		if p.Revenue, err = coerceFloat(fieldRevenue, raw, false); err != nil {
			return nil, err
		}
	}

	if raw, _ := rec.lookup(fieldProfit); raw != nil {
		if p.Profit, err = coerceFloat(fieldProfit, raw, true); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// ParsePatch collects only the fields present in rec. A present null resets a
// numeric field to zero and clears the category; a present null or blank name
// is rejected.
func ParsePatch(rec Record) (*Patch, error) {
	patch := &Patch{}

	if raw, ok := rec.lookup(fieldName); ok {
		name, err := coerceName(raw)
		if err != nil {
			return nil, err
		}
		patch.Name = &name
	}

	if raw, ok := rec.lookup(fieldSales); ok {
		sales, err := coerceSales(raw)
		if err != nil {
			return nil, err
		}
		patch.Sales = &sales
	}

	if raw, ok := rec.lookup(fieldCategory); ok {
		category, err := coerceCategory(raw)
		if err != nil {
			return nil, err
		}
		patch.Category = category
		patch.CategorySet = true
	}

	if raw, ok := rec.lookup(fieldRevenue); ok {
		revenue, err := coerceFloat(fieldRevenue, raw, false)
		if err != nil {
			return nil, err
		}
		patch.Revenue = &revenue
	}

	if raw, ok := rec.lookup(fieldProfit); ok {
		profit, err := coerceFloat(fieldProfit, raw, true)
		if err != nil {
			return nil, err
		}
		patch.Profit = &profit
	}

	return patch, nil
}

func coerceName(raw any) (string, error) {
	var name string
	switch v := raw.(type) {
	case nil:
		return "", &InputError{Reason: "Product name is required"}
	case string:
		name = strings.TrimSpace(v)
	case json.Number:
		name = v.String()
	default:
		return "", invalid(fieldName, "must be a string")
	}

	if name == "" {
		return "", &InputError{Reason: "Product name is required"}
	}
	if len(name) > maxNameLen {
		return "", invalid(
			fieldName,
			fmt.Sprintf("must be at most %d characters", maxNameLen),
		)
	}
	return name, nil
}

func coerceCategory(raw any) (*string, error) {
	var category string
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case string:
		category = strings.TrimSpace(v)
	case json.Number:
		category = v.String()
	default:
		return nil, invalid(fieldCategory, "must be a string")
	}

	if category == "" {
		return nil, nil
	}
	if len(category) > maxCategoryLen {
		return nil, invalid(
			fieldCategory,
			fmt.Sprintf("must be at most %d characters", maxCategoryLen),
		)
	}
	return &category, nil
}

func coerceSales(raw any) (int64, error) {
	text, ok := numericText(raw)
	if !ok {
		return 0, invalid(fieldSales, "must be an integer")
	}
	if text == "" {
		return 0, nil
	}

	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(text, 64)
		if ferr != nil || f != math.Trunc(f) || math.Abs(f) >= math.MaxInt64 {
			return 0, invalid(fieldSales, "must be an integer")
		}
		n = int64(f)
	}

	if n < 0 {
		return 0, invalid(fieldSales, "must not be negative")
	}
	return n, nil
}

func coerceFloat(f field, raw any, allowNegative bool) (float64, error) {
	text, ok := numericText(raw)
	if !ok {
		return 0, invalid(f, "must be a number")
	}
	if text == "" {
		return 0, nil
	}

	n, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, invalid(f, "must be a number")
	}

	if n < 0 && !allowNegative {
		return 0, invalid(f, "must not be negative")
	}
	return n, nil
}

// numericText normalizes a JSON number, numeric string or Go number. A null
// or blank string yields "" which callers treat as zero.
func numericText(raw any) (string, bool) {
	switch v := raw.(type) {
	case nil:
		return "", true
	case json.Number:
		return v.String(), true
	case string:
		return strings.TrimSpace(v), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	default:
		return "", false
	}
}
