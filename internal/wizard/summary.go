package wizard

import (
	"fmt"

	"github.com/kingrea/dealdesk/internal/order"
	"github.com/kingrea/dealdesk/internal/pricing"
)

// SummaryLine is one priced add-on on the review summary.
type SummaryLine struct {
	Name      string
	UnitPrice float64
	Quantity  float64
	Total     float64
}

// Summary is the read-only review of an order.
type Summary struct {
	Customer  string
	Product   string
	Plan      string
	PlanPrice float64
	AddOns    []SummaryLine
	Term      string
	Total     float64
}

// Row is a label/value pair ready for display.
type Row struct {
	Label string
	Value string
}

// Summarize builds the review summary for o.
func Summarize(o order.Order) Summary {
	s := Summary{
		Term:   o.Term(),
		Total:  o.GrandTotal(),
		AddOns: make([]SummaryLine, 0, len(o.AddOns)),
	}
	if o.Customer != nil {
		s.Customer = o.Customer.Customer
	}
	if o.Product != nil {
		s.Product = o.Product.Name
	}
	if o.Plan != nil {
		s.Plan = o.Plan.Name
		s.PlanPrice = o.Plan.BasePrice
	}
	for _, a := range o.AddOns {
		s.AddOns = append(s.AddOns, SummaryLine{
			Name:      a.Name,
			UnitPrice: a.UnitPrice,
			Quantity:  a.Qty(),
			Total:     a.LineTotal(),
		})
	}
	return s
}

// Summary builds the review summary for the current order.
func (c *Controller) Summary() Summary {
	return Summarize(c.store.Snapshot())
}

// Rows renders the summary in display order.
func (s Summary) Rows() []Row {
	rows := []Row{
		{Label: "Customer", Value: dash(s.Customer)},
		{Label: "Product", Value: dash(s.Product)},
	}
	plan := dash(s.Plan)
	if s.Plan != "" {
		plan = fmt.Sprintf("%s (%s)", s.Plan, pricing.FormatCurrency(s.PlanPrice))
	}
	rows = append(rows, Row{Label: "Plan", Value: plan})
	for _, l := range s.AddOns {
		rows = append(rows, Row{
			Label: l.Name,
			Value: fmt.Sprintf("%s x %g = %s", pricing.FormatCurrency(l.UnitPrice), l.Quantity, pricing.FormatCurrency(l.Total)),
		})
	}
	rows = append(rows,
		Row{Label: "Contract Term", Value: dash(s.Term)},
		Row{Label: "Total Amount", Value: pricing.FormatCurrency(s.Total)},
	)
	return rows
}

func dash(v string) string {
	if v == "" {
		return "-"
	}
	return v
}
