package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/kingrea/dealdesk/internal/pricing"
	"github.com/kingrea/dealdesk/internal/terms"
)

// Customer is the deal party captured on the first stage. Catalog entries
// carry an ID; the form copy written to the store usually does not.
type Customer struct {
	ID       string `json:"id,omitempty" yaml:"id,omitempty"`
	Customer string `json:"customer" yaml:"customer"`
	Street   string `json:"street,omitempty" yaml:"street,omitempty"`
	Address1 string `json:"address1,omitempty" yaml:"address1,omitempty"`
	Address2 string `json:"address2,omitempty" yaml:"address2,omitempty"`
	City     string `json:"city,omitempty" yaml:"city,omitempty"`
	State    string `json:"state,omitempty" yaml:"state,omitempty"`
	ZipCode  string `json:"zipCode,omitempty" yaml:"zipCode,omitempty"`
}

// Plan is one price point of a product.
type Plan struct {
	ID        string  `json:"id" yaml:"id"`
	Name      string  `json:"name" yaml:"name"`
	BasePrice float64 `json:"basePrice" yaml:"basePrice"`
}

// Product groups the plans a customer can choose between.
type Product struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Plans []Plan `json:"plans" yaml:"plans"`
}

// Plan looks up a plan by id.
func (p Product) Plan(id string) (Plan, bool) {
	for _, plan := range p.Plans {
		if plan.ID == id {
			return plan, true
		}
	}
	return Plan{}, false
}

// Clone returns a copy that shares no plan storage with p.
func (p Product) Clone() Product {
	out := p
	if p.Plans != nil {
		out.Plans = append([]Plan(nil), p.Plans...)
	}
	return out
}

// WithPlanPrice returns a copy of p whose plan planID has the given base
// price. p and its plan slice are left untouched, so catalog entries can
// be passed in safely.
func (p Product) WithPlanPrice(planID string, price float64) Product {
	out := p.Clone()
	for i := range out.Plans {
		if out.Plans[i].ID == planID {
			out.Plans[i].BasePrice = price
		}
	}
	return out
}

// AddOn is an optional extra priced per unit. A nil Quantity means the
// user has not entered one; it prices as a single unit.
type AddOn struct {
	ID        string  `json:"id" yaml:"id"`
	Name      string  `json:"name" yaml:"name"`
	UnitPrice float64 `json:"unitPrice" yaml:"unitPrice"`
	Quantity  *int    `json:"quantity,omitempty" yaml:"quantity,omitempty"`
}

// Qty is the quantity used for pricing.
func (a AddOn) Qty() float64 {
	if a.Quantity == nil {
		return 1
	}
	return float64(*a.Quantity)
}

// WithQuantity returns a copy carrying q. Pass nil to clear it.
func (a AddOn) WithQuantity(q *int) AddOn {
	if q != nil {
		v := *q
		q = &v
	}
	a.Quantity = q
	return a
}

// Line converts the add-on into a pricing row.
func (a AddOn) Line() pricing.Line {
	return pricing.Line{UnitPrice: a.UnitPrice, Quantity: a.Qty()}
}

// LineTotal is the priced amount for this add-on.
func (a AddOn) LineTotal() float64 {
	return a.Line().Total()
}

// ContractTerms holds the formatted contract window.
type ContractTerms struct {
	StartDate string `json:"startDate" yaml:"startDate"`
	EndDate   string `json:"endDate" yaml:"endDate"`
}

// NewContractTerms formats both dates as MM/DD/YYYY.
func NewContractTerms(start, end time.Time) ContractTerms {
	return ContractTerms{StartDate: terms.FormatDate(start), EndDate: terms.FormatDate(end)}
}

// String renders "start - end", the form used on the review summary.
func (t ContractTerms) String() string {
	return fmt.Sprintf("%s - %s", t.StartDate, t.EndDate)
}

// Order is a read-only view of everything selected so far.
type Order struct {
	Customer *Customer
	Product  *Product
	Plan     *Plan
	AddOns   []AddOn
	Terms    *ContractTerms
}

// Complete reports whether the order has a customer, product and plan.
// Terms and add-ons are optional.
func (o Order) Complete() bool {
	return o.Customer != nil && strings.TrimSpace(o.Customer.Customer) != "" &&
		o.Product != nil && o.Plan != nil
}

// Lines returns one pricing row per selected add-on.
func (o Order) Lines() []pricing.Line {
	lines := make([]pricing.Line, 0, len(o.AddOns))
	for _, a := range o.AddOns {
		lines = append(lines, a.Line())
	}
	return lines
}

// GrandTotal is the plan base price plus every add-on line total.
func (o Order) GrandTotal() float64 {
	var base any
	if o.Plan != nil {
		base = o.Plan.BasePrice
	}
	return pricing.GrandTotal(base, o.Lines())
}

// Term is the contract window for display, or "" when no terms are set.
func (o Order) Term() string {
	if o.Terms == nil {
		return ""
	}
	return o.Terms.String()
}
