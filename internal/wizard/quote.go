package wizard

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kingrea/dealdesk/internal/forms"
	"github.com/kingrea/dealdesk/internal/order"
)

// DefaultQuoteCustomer names the deal party when a quote has none.
const DefaultQuoteCustomer = "Quote"

// ErrUnknownCatalogEntry is returned when a quote names an id that is
// not in the catalog.
var ErrUnknownCatalogEntry = errors.New("wizard: unknown catalog entry")

// QuoteAddOn selects an add-on by id. An empty Quantity keeps the
// catalog quantity.
type QuoteAddOn struct {
	ID       string
	Quantity string
}

// QuoteRequest describes an order without the interactive stages.
type QuoteRequest struct {
	Customer string
	Product  string
	Plan     string
	// Price overrides the plan base price when set.
	Price  string
	Terms  forms.TermsInput
	AddOns []QuoteAddOn
}

// ParseQuoteAddOn reads "id" or "id=qty".
func ParseQuoteAddOn(value string) QuoteAddOn {
	id, qty, _ := strings.Cut(value, "=")
	return QuoteAddOn{ID: strings.TrimSpace(id), Quantity: strings.TrimSpace(qty)}
}

// Quote walks a fresh order through every stage with the same rules the
// interactive wizard applies and returns the review summary. The
// controller must be on the first stage with an empty order.
func (c *Controller) Quote(req QuoteRequest, products []order.Product, addOns []order.AddOn) (Summary, error) {
	customer := strings.TrimSpace(req.Customer)
	if customer == "" {
		customer = DefaultQuoteCustomer
	}
	if errs := c.SubmitCustomer(forms.CustomerInput{Customer: customer}); !errs.Empty() {
		return Summary{}, fmt.Errorf("wizard: customer: %w", errs)
	}

	c.SelectProduct(products, req.Product)
	product := c.store.SelectedProduct()
	if product == nil || product.ID != req.Product {
		return Summary{}, fmt.Errorf("%w: product %q", ErrUnknownCatalogEntry, req.Product)
	}
	plan, ok := product.Plan(req.Plan)
	if !ok {
		return Summary{}, fmt.Errorf("%w: plan %q of %s", ErrUnknownCatalogEntry, req.Plan, product.ID)
	}
	c.TogglePlan(plan)
	if strings.TrimSpace(req.Price) != "" {
		c.OverridePlanPrice(plan.ID, req.Price)
	}
	if errs := c.ConfirmProduct(); !errs.Empty() {
		return Summary{}, fmt.Errorf("wizard: product: %w", errs)
	}

	if errs := c.SubmitTerms(req.Terms); !errs.Empty() {
		return Summary{}, fmt.Errorf("wizard: terms: %w", errs)
	}

	for _, want := range req.AddOns {
		addOn, ok := findAddOn(addOns, want.ID)
		if !ok {
			return Summary{}, fmt.Errorf("%w: add-on %q", ErrUnknownCatalogEntry, want.ID)
		}
		if want.Quantity != "" {
			addOn = addOn.WithQuantity(forms.ParseQuantity(want.Quantity))
		}
		c.ToggleAddOn(addOn, true)
	}
	return c.Summary(), nil
}

func findAddOn(addOns []order.AddOn, id string) (order.AddOn, bool) {
	for _, a := range addOns {
		if a.ID == id {
			return a, true
		}
	}
	return order.AddOn{}, false
}
