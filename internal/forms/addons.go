package forms

import (
	"strconv"
	"strings"

	"github.com/kingrea/dealdesk/internal/order"
)

// DefaultAddOnSelection starts the review stage with every catalog add-on
// selected.
func DefaultAddOnSelection(catalog []order.AddOn) []order.AddOn {
	out := make([]order.AddOn, 0, len(catalog))
	for _, a := range catalog {
		out = append(out, a.WithQuantity(a.Quantity))
	}
	return out
}

// ToggleAddOn adds or removes addOn from the selection. Checking an
// add-on that is already selected is a no-op.
func ToggleAddOn(selected []order.AddOn, addOn order.AddOn, checked bool) []order.AddOn {
	idx := indexOfAddOn(selected, addOn.ID)
	if checked {
		if idx >= 0 {
			return selected
		}
		return append(selected, addOn)
	}
	if idx < 0 {
		return selected
	}
	out := make([]order.AddOn, 0, len(selected)-1)
	out = append(out, selected[:idx]...)
	return append(out, selected[idx+1:]...)
}

// SetAddOnQuantity applies a typed quantity to the selected add-on id.
// Input that is not an integer clears the quantity, which prices as one
// unit.
func SetAddOnQuantity(selected []order.AddOn, id string, input string) []order.AddOn {
	qty := ParseQuantity(input)
	out := make([]order.AddOn, len(selected))
	for i, a := range selected {
		if a.ID == id {
			a = a.WithQuantity(qty)
		}
		out[i] = a
	}
	return out
}

// ParseQuantity returns nil when input is not an integer.
func ParseQuantity(input string) *int {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return nil
	}
	return &n
}

// IsAddOnSelected reports whether id is in the selection.
func IsAddOnSelected(selected []order.AddOn, id string) bool {
	return indexOfAddOn(selected, id) >= 0
}

func indexOfAddOn(list []order.AddOn, id string) int {
	for i, a := range list {
		if a.ID == id {
			return i
		}
	}
	return -1
}
