package forms

import (
	"github.com/kingrea/dealdesk/internal/order"
	"github.com/kingrea/dealdesk/internal/pricing"
)

// Product stage field names.
const (
	FieldProduct = "product"
	FieldPlan    = "plan"
)

// SelectProduct returns the catalog product with id. Choosing the product
// already selected, or an unknown id, keeps prev so plan price overrides
// survive a re-selection.
func SelectProduct(prev *order.Product, products []order.Product, id string) *order.Product {
	if prev != nil && prev.ID == id {
		return prev
	}
	for _, p := range products {
		if p.ID == id {
			c := p.Clone()
			return &c
		}
	}
	return prev
}

// TogglePlan is single-select with toggle-off: choosing the active plan
// clears the selection, choosing any other plan selects it.
func TogglePlan(prev *order.Plan, candidate order.Plan) *order.Plan {
	if prev != nil && prev.ID == candidate.ID {
		return nil
	}
	return &candidate
}

// SyncPlan re-reads the selected plan from the product by id, so a price
// override on the product shows up in the selection. A plan the product
// no longer offers is cleared.
func SyncPlan(product *order.Product, plan *order.Plan) *order.Plan {
	if product == nil || plan == nil {
		return nil
	}
	updated, ok := product.Plan(plan.ID)
	if !ok {
		return nil
	}
	return &updated
}

// ParsePriceInput coerces the price override field. Empty or non-numeric
// input becomes 0 instead of failing the edit.
func ParsePriceInput(input string) float64 {
	return pricing.CoerceAmount(input)
}

// OverridePlanPrice returns a copy of product with planID repriced. Other
// plans and the catalog entry the product came from are not modified.
func OverridePlanPrice(product *order.Product, planID string, price float64) *order.Product {
	if product == nil {
		return nil
	}
	updated := product.WithPlanPrice(planID, price)
	return &updated
}

// ValidateProduct reports what is missing before the product stage can
// continue.
func ValidateProduct(product *order.Product, plan *order.Plan) FieldErrors {
	errs := FieldErrors{}
	if product == nil {
		errs.Add(FieldProduct, "Select a product line")
	}
	if plan == nil {
		errs.Add(FieldPlan, "Select a plan")
	}
	return errs
}
