package wizard_test

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/cucumber/godog"

	"github.com/kingrea/dealdesk/internal/forms"
	"github.com/kingrea/dealdesk/internal/order"
	"github.com/kingrea/dealdesk/internal/pricing"
	"github.com/kingrea/dealdesk/internal/terms"
	"github.com/kingrea/dealdesk/internal/wizard"
)

type wizardTestContext struct {
	controller   *wizard.Controller
	products     []order.Product
	addOns       []order.AddOn
	errs         forms.FieldErrors
	confirmation *wizard.Confirmation
}

func (w *wizardTestContext) reset() {
	w.controller = wizard.New(nil)
	w.products = nil
	w.addOns = nil
	w.errs = nil
	w.confirmation = nil
}

func idFor(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, " ", "-"))
}

func (w *wizardTestContext) aProductWithPlanPriced(product, plan string, price float64) error {
	p := order.Plan{ID: idFor(plan), Name: plan, BasePrice: price}
	for i := range w.products {
		if w.products[i].Name == product {
			w.products[i].Plans = append(w.products[i].Plans, p)
			return nil
		}
	}
	w.products = append(w.products, order.Product{ID: idFor(product), Name: product, Plans: []order.Plan{p}})
	return nil
}

func (w *wizardTestContext) anAddOnPriced(name string, price float64) error {
	w.addOns = append(w.addOns, order.AddOn{ID: idFor(name), Name: name, UnitPrice: price})
	return nil
}

func (w *wizardTestContext) iSubmitCustomer(name string) error {
	w.errs = w.controller.SubmitCustomer(forms.CustomerInput{Customer: name})
	if !w.errs.Empty() {
		return w.errs
	}
	return nil
}

func (w *wizardTestContext) iSelectProduct(name string) error {
	w.controller.SelectProduct(w.products, idFor(name))
	if p := w.controller.Store().SelectedProduct(); p == nil || p.Name != name {
		return fmt.Errorf("product %q was not selected", name)
	}
	return nil
}

func (w *wizardTestContext) iTogglePlan(name string) error {
	product := w.controller.Store().SelectedProduct()
	if product == nil {
		return errors.New("no product selected")
	}
	plan, ok := product.Plan(idFor(name))
	if !ok {
		return fmt.Errorf("product %q has no plan %q", product.Name, name)
	}
	w.controller.TogglePlan(plan)
	return nil
}

func (w *wizardTestContext) iSetThePlanPrice(plan, input string) error {
	w.controller.OverridePlanPrice(idFor(plan), input)
	return nil
}

func (w *wizardTestContext) iConfirmTheProduct() error {
	w.errs = w.controller.ConfirmProduct()
	return nil
}

func (w *wizardTestContext) iChooseAMonthTermStarting(months int, start string) error {
	w.errs = w.controller.SubmitTerms(forms.TermsInput{
		StartDate: start,
		Period:    terms.Fixed(months).Label(),
	})
	if !w.errs.Empty() {
		return w.errs
	}
	return nil
}

func (w *wizardTestContext) iChooseACustomTermStarting(months, start string) error {
	w.errs = w.controller.SubmitTerms(forms.TermsInput{
		StartDate:    start,
		Period:       terms.CustomLabel,
		CustomMonths: months,
	})
	return nil
}

func (w *wizardTestContext) iReviewTheOrder() error {
	if w.controller.CurrentStage() != wizard.StageReview {
		return fmt.Errorf("expected review stage, on %q", w.controller.CurrentStage())
	}
	w.controller.SeedAddOns(w.addOns)
	return nil
}

func (w *wizardTestContext) iSetTheAddOnQuantity(name, input string) error {
	w.controller.SetAddOnQuantity(idFor(name), input)
	return nil
}

func (w *wizardTestContext) iFinalizeTheOrder() error {
	conf, err := w.controller.Finalize()
	if err != nil {
		return err
	}
	w.confirmation = &conf
	return nil
}

func (w *wizardTestContext) theFinalizeDelayElapses() error {
	if !w.controller.Finalizing() {
		return errors.New("no finalized order is pending")
	}
	w.controller.CompleteFinalize()
	return nil
}

func (w *wizardTestContext) theStageIs(name string) error {
	if got := w.controller.CurrentStage().String(); got != name {
		return fmt.Errorf("expected stage %q, got %q", name, got)
	}
	return nil
}

func (w *wizardTestContext) theGrandTotalIs(want string) error {
	if got := pricing.FormatCurrency(w.controller.Summary().Total); got != want {
		return fmt.Errorf("expected total %s, got %s", want, got)
	}
	return nil
}

func (w *wizardTestContext) theContractTermIs(want string) error {
	if got := w.controller.Summary().Term; got != want {
		return fmt.Errorf("expected term %q, got %q", want, got)
	}
	return nil
}

func (w *wizardTestContext) theConfirmationSays(msg string) error {
	if w.confirmation == nil {
		return errors.New("no confirmation")
	}
	if w.confirmation.Message != msg {
		return fmt.Errorf("expected message %q, got %q", msg, w.confirmation.Message)
	}
	if w.confirmation.Reference == "" {
		return errors.New("confirmation has no reference")
	}
	return nil
}

func (w *wizardTestContext) theConfirmationTotalIs(want string) error {
	if w.confirmation == nil {
		return errors.New("no confirmation")
	}
	if got := pricing.FormatCurrency(w.confirmation.Total); got != want {
		return fmt.Errorf("expected confirmation total %s, got %s", want, got)
	}
	return nil
}

func (w *wizardTestContext) theOrderIsEmpty() error {
	snap := w.controller.Store().Snapshot()
	if snap.Customer != nil || snap.Product != nil || snap.Plan != nil || snap.Terms != nil || len(snap.AddOns) != 0 {
		return fmt.Errorf("expected empty order, got %+v", snap)
	}
	return nil
}

func (w *wizardTestContext) noPlanIsSelected() error {
	if plan := w.controller.Store().SelectedPlan(); plan != nil {
		return fmt.Errorf("expected no plan, got %q", plan.Name)
	}
	return nil
}

func (w *wizardTestContext) theSelectedPlanCosts(want string) error {
	plan := w.controller.Store().SelectedPlan()
	if plan == nil {
		return errors.New("no plan selected")
	}
	if got := pricing.FormatCurrency(plan.BasePrice); got != want {
		return fmt.Errorf("expected plan price %s, got %s", want, got)
	}
	return nil
}

func (w *wizardTestContext) theFieldShows(field, msg string) error {
	if got := w.errs.Get(field); got != msg {
		return fmt.Errorf("expected %s error %q, got %q", field, msg, got)
	}
	return nil
}

func parsePrice(raw string) (float64, error) {
	return strconv.ParseFloat(raw, 64)
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &wizardTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^a product "([^"]*)" with plan "([^"]*)" priced (\d+(?:\.\d+)?)$`, func(product, plan, raw string) error {
		price, err := parsePrice(raw)
		if err != nil {
			return err
		}
		return tc.aProductWithPlanPriced(product, plan, price)
	})
	ctx.Step(`^an add-on "([^"]*)" priced (\d+(?:\.\d+)?)$`, func(name, raw string) error {
		price, err := parsePrice(raw)
		if err != nil {
			return err
		}
		return tc.anAddOnPriced(name, price)
	})

	// When steps
	ctx.Step(`^I submit customer "([^"]*)"$`, tc.iSubmitCustomer)
	ctx.Step(`^I select product "([^"]*)"$`, tc.iSelectProduct)
	ctx.Step(`^I toggle plan "([^"]*)"$`, tc.iTogglePlan)
	ctx.Step(`^I set the "([^"]*)" price to "([^"]*)"$`, tc.iSetThePlanPrice)
	ctx.Step(`^I confirm the product$`, tc.iConfirmTheProduct)
	ctx.Step(`^I choose a (\d+) month term starting "([^"]*)"$`, tc.iChooseAMonthTermStarting)
	ctx.Step(`^I choose a custom term of "([^"]*)" months starting "([^"]*)"$`, tc.iChooseACustomTermStarting)
	ctx.Step(`^I review the order$`, tc.iReviewTheOrder)
	ctx.Step(`^I set the "([^"]*)" quantity to "([^"]*)"$`, tc.iSetTheAddOnQuantity)
	ctx.Step(`^I finalize the order$`, tc.iFinalizeTheOrder)
	ctx.Step(`^the finalize delay elapses$`, tc.theFinalizeDelayElapses)

	// Then steps
	ctx.Step(`^the stage is "([^"]*)"$`, tc.theStageIs)
	ctx.Step(`^the grand total is "([^"]*)"$`, tc.theGrandTotalIs)
	ctx.Step(`^the contract term is "([^"]*)"$`, tc.theContractTermIs)
	ctx.Step(`^the confirmation says "([^"]*)"$`, tc.theConfirmationSays)
	ctx.Step(`^the confirmation total is "([^"]*)"$`, tc.theConfirmationTotalIs)
	ctx.Step(`^the order is empty$`, tc.theOrderIsEmpty)
	ctx.Step(`^no plan is selected$`, tc.noPlanIsSelected)
	ctx.Step(`^the selected plan costs "([^"]*)"$`, tc.theSelectedPlanCosts)
	ctx.Step(`^the "([^"]*)" field shows "([^"]*)"$`, tc.theFieldShows)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features/order_wizard.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
