package wizard_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrea/dealdesk/internal/forms"
	"github.com/kingrea/dealdesk/internal/order"
	"github.com/kingrea/dealdesk/internal/wizard"
)

func quoteAddOns() []order.AddOn {
	return []order.AddOn{
		{ID: "support", Name: "Support", UnitPrice: 10, Quantity: intPtr(2)},
		{ID: "training", Name: "Training", UnitPrice: 150},
	}
}

func TestQuoteComputesSummary(t *testing.T) {
	c := newController(t)
	summary, err := c.Quote(wizard.QuoteRequest{
		Customer: "Acme Corp",
		Product:  "standard",
		Plan:     "pro",
		Terms:    forms.TermsInput{StartDate: "2024-01-01", Period: "12 months"},
		AddOns:   []wizard.QuoteAddOn{wizard.ParseQuoteAddOn("support")},
	}, products(), quoteAddOns())
	require.NoError(t, err)
	assert.Equal(t, 70.0, summary.Total)
	assert.Equal(t, "01/01/2024 - 01/01/2025", summary.Term)
	assert.Equal(t, "Acme Corp", summary.Customer)
	assert.Equal(t, wizard.StageReview, c.CurrentStage())
}

func TestQuoteOverridesPriceAndQuantity(t *testing.T) {
	c := newController(t)
	summary, err := c.Quote(wizard.QuoteRequest{
		Product: "standard",
		Plan:    "basic",
		Price:   "25",
		Terms:   forms.TermsInput{StartDate: "01/31/2024", Period: "Custom", CustomMonths: "1"},
		AddOns:  []wizard.QuoteAddOn{wizard.ParseQuoteAddOn("training=3")},
	}, products(), quoteAddOns())
	require.NoError(t, err)
	assert.Equal(t, wizard.DefaultQuoteCustomer, summary.Customer)
	assert.Equal(t, 25.0, summary.PlanPrice)
	assert.Equal(t, 475.0, summary.Total)
	assert.Equal(t, "01/31/2024 - 02/29/2024", summary.Term)
}

func TestQuoteRejectsUnknownEntries(t *testing.T) {
	_, err := newController(t).Quote(wizard.QuoteRequest{Product: "missing", Plan: "pro"}, products(), nil)
	assert.ErrorIs(t, err, wizard.ErrUnknownCatalogEntry)

	_, err = newController(t).Quote(wizard.QuoteRequest{Product: "standard", Plan: "gold"}, products(), nil)
	assert.ErrorIs(t, err, wizard.ErrUnknownCatalogEntry)

	_, err = newController(t).Quote(wizard.QuoteRequest{
		Product: "standard",
		Plan:    "pro",
		Terms:   forms.TermsInput{StartDate: "2024-01-01", Period: "12 months"},
		AddOns:  []wizard.QuoteAddOn{{ID: "gift"}},
	}, products(), quoteAddOns())
	assert.ErrorIs(t, err, wizard.ErrUnknownCatalogEntry)
}

func TestQuoteReportsTermErrors(t *testing.T) {
	_, err := newController(t).Quote(wizard.QuoteRequest{
		Product: "standard",
		Plan:    "pro",
		Terms:   forms.TermsInput{StartDate: "2024-01-01", Period: "Custom", CustomMonths: "0"},
	}, products(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Must be at least 1 month")
}

func TestParseQuoteAddOn(t *testing.T) {
	assert.Equal(t, wizard.QuoteAddOn{ID: "support", Quantity: "4"}, wizard.ParseQuoteAddOn(" support = 4 "))
	assert.Equal(t, wizard.QuoteAddOn{ID: "support"}, wizard.ParseQuoteAddOn("support"))
}
