// Package wizard drives the four-stage order flow on top of the order
// store: stage navigation, the per-stage submit helpers, the review
// summary and finalization.
package wizard

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kingrea/dealdesk/internal/forms"
	"github.com/kingrea/dealdesk/internal/order"
)

// SuccessMessage is shown once an order has been placed.
const SuccessMessage = "Successfully placed order. Thank you!"

// DefaultFinalizeDelay is how long the confirmation stays up before the
// wizard resets.
const DefaultFinalizeDelay = 3 * time.Second

var (
	// ErrNotOnReview is returned by Finalize outside the review stage.
	ErrNotOnReview = errors.New("wizard: finalize is only available on review")
	// ErrIncompleteOrder is returned when finalizing without a customer,
	// product and plan.
	ErrIncompleteOrder = errors.New("wizard: order is missing a customer, product or plan")
	// ErrFinalizing is returned while a finalized order awaits its reset.
	ErrFinalizing = errors.New("wizard: order already finalized")
)

// Confirmation describes a placed order.
type Confirmation struct {
	Reference string
	Total     float64
	PlacedAt  time.Time
	Message   string
	Order     order.Order
}

// Controller owns navigation and stage submission.
type Controller struct {
	store      *order.Store
	logger     *zap.Logger
	now        func() time.Time
	newID      func() string
	delay      time.Duration
	finalizing bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the diagnostic logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// WithReferenceGenerator replaces the order reference generator.
func WithReferenceGenerator(fn func() string) Option {
	return func(c *Controller) {
		if fn != nil {
			c.newID = fn
		}
	}
}

// WithFinalizeDelay sets how long a confirmation is shown before reset.
func WithFinalizeDelay(d time.Duration) Option {
	return func(c *Controller) {
		if d >= 0 {
			c.delay = d
		}
	}
}

// New returns a controller over store. A nil store gets a fresh one.
func New(store *order.Store, opts ...Option) *Controller {
	if store == nil {
		store = order.NewStore()
	}
	c := &Controller{
		store:  store,
		logger: zap.NewNop(),
		now:    time.Now,
		newID:  func() string { return uuid.NewString() },
		delay:  DefaultFinalizeDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Store exposes the underlying order store.
func (c *Controller) Store() *order.Store { return c.store }

// FinalizeDelay is the configured confirmation delay.
func (c *Controller) FinalizeDelay() time.Duration { return c.delay }

// CurrentStage never reports an undefined stage, even if the store was
// written directly.
func (c *Controller) CurrentStage() Stage {
	return clampStage(c.store.CurrentStage())
}

// GoNext advances one stage, stopping at review.
func (c *Controller) GoNext() {
	c.store.UpdateCurrentStage(func(prev int) int {
		return int(clampStage(prev).Next())
	})
}

// GoBack returns one stage, stopping at the first.
func (c *Controller) GoBack() {
	c.store.UpdateCurrentStage(func(prev int) int {
		return int(clampStage(prev).Prev())
	})
}

// GoTo jumps to stage i. Out of range values are ignored.
func (c *Controller) GoTo(i int) {
	if !Stage(i).Valid() {
		return
	}
	c.store.SetCurrentStage(i)
}

// SubmitCustomer validates the customer draft, stores it and advances.
func (c *Controller) SubmitCustomer(in forms.CustomerInput) forms.FieldErrors {
	errs := in.Validate()
	if !errs.Empty() {
		return errs
	}
	rec := in.Record()
	c.store.SetCustomerDetails(&rec)
	c.logger.Debug("customer submitted", zap.String("customer", rec.Customer))
	c.GoNext()
	return nil
}

// SelectProduct picks a catalog product and re-syncs the plan against it.
func (c *Controller) SelectProduct(products []order.Product, id string) {
	c.store.UpdateSelectedProduct(func(prev *order.Product) *order.Product {
		return forms.SelectProduct(prev, products, id)
	})
	c.syncPlan()
}

// TogglePlan selects plan, or clears it when it is already selected.
func (c *Controller) TogglePlan(plan order.Plan) {
	c.store.UpdateSelectedPlan(func(prev *order.Plan) *order.Plan {
		return forms.TogglePlan(prev, plan)
	})
}

// OverridePlanPrice reprices a plan of the selected product from raw
// input and re-syncs the selected plan.
func (c *Controller) OverridePlanPrice(planID, input string) {
	price := forms.ParsePriceInput(input)
	c.store.UpdateSelectedProduct(func(prev *order.Product) *order.Product {
		return forms.OverridePlanPrice(prev, planID, price)
	})
	c.syncPlan()
}

func (c *Controller) syncPlan() {
	product := c.store.SelectedProduct()
	c.store.UpdateSelectedPlan(func(prev *order.Plan) *order.Plan {
		return forms.SyncPlan(product, prev)
	})
}

// ConfirmProduct advances once both product and plan are selected.
func (c *Controller) ConfirmProduct() forms.FieldErrors {
	errs := forms.ValidateProduct(c.store.SelectedProduct(), c.store.SelectedPlan())
	if !errs.Empty() {
		return errs
	}
	c.GoNext()
	return nil
}

// SubmitTerms validates the terms draft, stores the formatted dates and
// advances.
func (c *Controller) SubmitTerms(in forms.TermsInput) forms.FieldErrors {
	draft, errs := in.Validate()
	if !errs.Empty() {
		return errs
	}
	ct := draft.ContractTerms()
	c.store.SetSelectedTerms(&ct)
	c.logger.Debug("terms submitted", zap.String("term", ct.String()))
	c.GoNext()
	return nil
}

// SeedAddOns selects every catalog add-on, as the review stage does when
// the add-on catalog loads.
func (c *Controller) SeedAddOns(catalog []order.AddOn) {
	c.store.SetSelectedAddOns(forms.DefaultAddOnSelection(catalog))
}

// ToggleAddOn checks or unchecks an add-on.
func (c *Controller) ToggleAddOn(addOn order.AddOn, checked bool) {
	c.store.UpdateSelectedAddOns(func(prev []order.AddOn) []order.AddOn {
		return forms.ToggleAddOn(prev, addOn, checked)
	})
}

// SetAddOnQuantity applies a typed quantity to a selected add-on.
func (c *Controller) SetAddOnQuantity(id, input string) {
	c.store.UpdateSelectedAddOns(func(prev []order.AddOn) []order.AddOn {
		return forms.SetAddOnQuantity(prev, id, input)
	})
}

// Finalizing reports whether a confirmation is waiting for its reset.
func (c *Controller) Finalizing() bool { return c.finalizing }

// Finalize places the order. The store is not reset here; callers
// schedule CompleteFinalize after FinalizeDelay.
func (c *Controller) Finalize() (Confirmation, error) {
	if c.finalizing {
		return Confirmation{}, ErrFinalizing
	}
	if c.CurrentStage() != StageReview {
		return Confirmation{}, ErrNotOnReview
	}
	snap := c.store.Snapshot()
	if !snap.Complete() {
		return Confirmation{}, ErrIncompleteOrder
	}
	conf := Confirmation{
		Reference: c.newID(),
		Total:     snap.GrandTotal(),
		PlacedAt:  c.now(),
		Message:   SuccessMessage,
		Order:     snap,
	}
	c.finalizing = true
	c.logger.Info("order finalized",
		zap.String("reference", conf.Reference),
		zap.String("customer", snap.Customer.Customer),
		zap.Float64("total", conf.Total),
	)
	return conf, nil
}

// CompleteFinalize clears the order and returns to the first stage.
func (c *Controller) CompleteFinalize() {
	c.finalizing = false
	c.store.Reset()
}
