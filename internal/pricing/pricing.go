// Package pricing computes add-on line totals and order grand totals.
//
// Every function here is total: malformed or missing amounts count as zero
// and no result is ever negative or NaN, so the review summary can render
// whatever half-edited values the forms currently hold.
package pricing

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Line is a single priced row (an add-on with its quantity).
type Line struct {
	UnitPrice float64
	Quantity  float64
}

// Total returns the rounded, non-negative amount for the line.
func (l Line) Total() float64 {
	return LineTotal(l.UnitPrice, l.Quantity)
}

// LineTotal returns unitPrice*quantity rounded to cents and floored at zero.
// Callers decide what an absent quantity means before calling.
func LineTotal(unitPrice, quantity float64) float64 {
	return floorZero(round2(finite(unitPrice * quantity)))
}

// SumPrices adds a mix of numbers, numeric strings, pointers and nils.
// Nil values, nil pointers and strings that do not parse contribute 0.
// The sum is rounded to cents and floored at zero.
func SumPrices(values ...any) float64 {
	var total float64
	for _, v := range values {
		total += amountOf(v)
	}
	return floorZero(round2(finite(total)))
}

// GrandTotal is the plan base price plus the sum of the line totals.
// basePrice accepts anything SumPrices does, so a missing plan is nil.
func GrandTotal(basePrice any, lines []Line) float64 {
	var addOns float64
	for _, line := range lines {
		addOns += line.Total()
	}
	return SumPrices(addOns, basePrice)
}

// CoerceAmount parses a price typed by the user. Empty or non-numeric input
// yields 0 rather than an error.
func CoerceAmount(input string) float64 {
	value, err := strconv.ParseFloat(strings.TrimSpace(input), 64)
	if err != nil {
		return 0
	}
	return finite(value)
}

var usPrinter = message.NewPrinter(language.AmericanEnglish)

// FormatCurrency renders an amount as US dollars, e.g. "$1,234.50".
func FormatCurrency(amount float64) string {
	amount = finite(amount)
	if amount < 0 {
		return "-" + usPrinter.Sprintf("$%.2f", -amount)
	}
	return usPrinter.Sprintf("$%.2f", amount)
}

func amountOf(v any) float64 {
	switch n := v.(type) {
	case nil:
		return 0
	case float64:
		return finite(n)
	case float32:
		return finite(float64(n))
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint:
		return float64(n)
	case uint32:
		return float64(n)
	case uint64:
		return float64(n)
	case string:
		return CoerceAmount(n)
	case *float64:
		if n == nil {
			return 0
		}
		return finite(*n)
	case *int:
		if n == nil {
			return 0
		}
		return float64(*n)
	case *string:
		if n == nil {
			return 0
		}
		return CoerceAmount(*n)
	case interface{ Float64() (float64, error) }:
		f, err := n.Float64()
		if err != nil {
			return 0
		}
		return finite(f)
	default:
		return 0
	}
}

// round2 rounds half away from zero on the float value of x*100. Binary
// representation can push a written .005 either side of the midpoint.
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

func floorZero(x float64) float64 {
	if x <= 0 {
		return 0
	}
	return x
}

func finite(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return x
}
