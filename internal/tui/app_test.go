package tui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/dealdesk/internal/catalog"
	"github.com/kingrea/dealdesk/internal/config"
	"github.com/kingrea/dealdesk/internal/order"
	"github.com/kingrea/dealdesk/internal/wizard"
)

func TestWizardPlacesOrderAndResets(t *testing.T) {
	app := newTestApp(t, &fakeProvider{})
	if len(app.customers) != 1 || len(app.products) != 1 || len(app.addOns) != 1 {
		t.Fatalf("expected catalog to load on init, got %d/%d/%d", len(app.customers), len(app.products), len(app.addOns))
	}

	app = press(t, app, "Acme Corp", "ctrl+p")
	view := app.view.(*customerView)
	if got := view.inputs[1].Value(); got != "1 Main St" {
		t.Fatalf("expected pre-populated address, got %q", got)
	}
	app = press(t, app, "enter")
	if app.controller.CurrentStage() != wizard.StageProduct {
		t.Fatalf("expected product stage, got %s", app.controller.CurrentStage())
	}
	if c := app.controller.Store().CustomerDetails(); c == nil || c.State != "IL" {
		t.Fatalf("unexpected stored customer %+v", c)
	}

	app = press(t, app, "enter", "right", " ", "ctrl+n")
	if app.controller.CurrentStage() != wizard.StageTerms {
		t.Fatalf("expected terms stage, got %s", app.controller.CurrentStage())
	}
	if plan := app.controller.Store().SelectedPlan(); plan == nil || plan.ID != "pro" {
		t.Fatalf("expected pro plan, got %+v", plan)
	}
	if !strings.Contains(app.View(), "01/01/2025") {
		t.Fatalf("expected live end date in terms view")
	}

	app = press(t, app, "enter")
	if app.controller.CurrentStage() != wizard.StageReview {
		t.Fatalf("expected review stage, got %s", app.controller.CurrentStage())
	}
	summary := app.controller.Summary()
	if summary.Total != 70 || summary.Term != "01/01/2024 - 01/01/2025" {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if !strings.Contains(app.View(), "$70.00") {
		t.Fatalf("expected total on review view")
	}

	model, cmd := app.Update(keyMsg("ctrl+n"))
	app = model.(*App)
	if cmd == nil {
		t.Fatalf("expected finalize to schedule the reset")
	}
	if app.confirmation == nil || app.confirmation.Reference != "ref-1" {
		t.Fatalf("expected confirmation ref-1, got %+v", app.confirmation)
	}
	if app.statusMsg != wizard.SuccessMessage {
		t.Fatalf("unexpected status %q", app.statusMsg)
	}
	app = press(t, app, "esc")
	if app.controller.CurrentStage() != wizard.StageReview {
		t.Fatalf("keys must be ignored while finalizing")
	}

	model, cmd = app.Update(finalizeDoneMsg{reference: "ref-1"})
	app = runCommands(t, model, cmd)
	if app.controller.CurrentStage() != wizard.StageCustomer {
		t.Fatalf("expected reset to first stage, got %s", app.controller.CurrentStage())
	}
	if app.controller.Store().CustomerDetails() != nil || app.confirmation != nil {
		t.Fatalf("expected cleared order after finalize")
	}
	if _, ok := app.view.(*customerView); !ok {
		t.Fatalf("expected customer view after reset, got %T", app.view)
	}
}

func TestCustomerValidationKeepsStage(t *testing.T) {
	app := newTestApp(t, &fakeProvider{})
	app = press(t, app, "enter")
	if app.controller.CurrentStage() != wizard.StageCustomer {
		t.Fatalf("empty customer must not advance")
	}
	if !strings.Contains(app.View(), "Customer is required") {
		t.Fatalf("expected inline validation message")
	}
}

func TestEscReturnsToPreviousStageWithStoredValues(t *testing.T) {
	app := newTestApp(t, &fakeProvider{})
	app = press(t, app, "Globex", "enter")
	if app.controller.CurrentStage() != wizard.StageProduct {
		t.Fatalf("expected product stage")
	}
	app = press(t, app, "esc")
	view, ok := app.view.(*customerView)
	if !ok {
		t.Fatalf("expected customer view, got %T", app.view)
	}
	if got := view.inputs[0].Value(); got != "Globex" {
		t.Fatalf("expected stored customer to seed the form, got %q", got)
	}
}

func TestTermsRevisitKeepsChosenPeriod(t *testing.T) {
	app := newTestApp(t, &fakeProvider{})
	app = press(t, app, "Acme Corp", "enter", "enter", "right", " ", "ctrl+n")
	app = press(t, app, "down", "right", "enter")
	if app.controller.CurrentStage() != wizard.StageReview {
		t.Fatalf("expected review stage, got %s", app.controller.CurrentStage())
	}
	if term := app.controller.Summary().Term; term != "01/01/2024 - 01/01/2026" {
		t.Fatalf("unexpected term %q", term)
	}

	app = press(t, app, "esc")
	view, ok := app.view.(*termsView)
	if !ok {
		t.Fatalf("expected terms view, got %T", app.view)
	}
	if got := view.period().Label(); got != "24 months" {
		t.Fatalf("expected stored period to seed the form, got %q", got)
	}

	app = press(t, app, "enter")
	if term := app.controller.Summary().Term; term != "01/01/2024 - 01/01/2026" {
		t.Fatalf("term changed on resubmit: %q", term)
	}
}

func TestReselectingProductKeepsPriceOverride(t *testing.T) {
	app := newTestApp(t, &fakeProvider{})
	app = press(t, app, "Acme Corp", "enter", "enter", "right", " ")
	app = press(t, app, "e", "ctrl+u", "65", "enter", "ctrl+n")
	if app.controller.CurrentStage() != wizard.StageTerms {
		t.Fatalf("expected terms stage, got %s", app.controller.CurrentStage())
	}

	app = press(t, app, "esc", "enter")
	plan := app.controller.Store().SelectedPlan()
	if plan == nil || plan.BasePrice != 65 {
		t.Fatalf("expected override to survive re-selecting the product, got %+v", plan)
	}
}

func TestPriceOverrideAndQuantityEdit(t *testing.T) {
	app := newTestApp(t, &fakeProvider{})
	app = press(t, app, "Acme Corp", "enter", "enter", "right", " ")
	app = press(t, app, "e", "ctrl+u", "65.5", "enter")
	plan := app.controller.Store().SelectedPlan()
	if plan == nil || plan.BasePrice != 65.5 {
		t.Fatalf("expected overridden plan price, got %+v", plan)
	}
	if app.products[0].Plans[1].BasePrice != 50 {
		t.Fatalf("catalog entry must not change")
	}

	app = press(t, app, "ctrl+n", "enter")
	app = press(t, app, "e", "ctrl+u", "3", "enter")
	addOns := app.controller.Store().SelectedAddOns()
	if len(addOns) != 1 || addOns[0].Quantity == nil || *addOns[0].Quantity != 3 {
		t.Fatalf("unexpected add-ons %+v", addOns)
	}
	if total := app.controller.Summary().Total; total != 95.5 {
		t.Fatalf("total = %v, want 95.5", total)
	}

	app = press(t, app, " ")
	if total := app.controller.Summary().Total; total != 65.5 {
		t.Fatalf("total after unchecking add-on = %v, want 65.5", total)
	}
}

func TestCatalogFailureShowsNoticeAndSkipsAddOns(t *testing.T) {
	provider := &fakeProvider{failProducts: true}
	app := newTestApp(t, provider)
	if got := app.notice(catalog.ResourceProducts); got != "Failed to fetch products" {
		t.Fatalf("unexpected notice %q", got)
	}
	if provider.count(catalog.ResourceAddOns) != 0 {
		t.Fatalf("add-ons must not be fetched before products load")
	}
	app = press(t, app, "Acme Corp", "enter")
	if !strings.Contains(app.View(), "Failed to fetch products") {
		t.Fatalf("expected notice on product stage")
	}
	app = press(t, app, "ctrl+n")
	if app.controller.CurrentStage() != wizard.StageProduct {
		t.Fatalf("product stage must not advance without a product")
	}
}

func TestStaleCatalogResultsAreDropped(t *testing.T) {
	app := newTestApp(t, &fakeProvider{})
	stale := app.generation
	app = press(t, app, "Acme Corp", "enter")
	if app.generation == stale {
		t.Fatalf("expected a new generation after the stage changed")
	}
	model, _ := app.Update(productsMsg{gen: stale, err: errors.New("boom")})
	app = model.(*App)
	if app.notice(catalog.ResourceProducts) != "" || len(app.products) != 1 {
		t.Fatalf("stale result must be discarded")
	}
}

func TestAltJumpsOnlyBackwards(t *testing.T) {
	app := newTestApp(t, &fakeProvider{})
	app = press(t, app, "alt+3")
	if app.controller.CurrentStage() != wizard.StageCustomer {
		t.Fatalf("jumping forward must be ignored")
	}
	app = press(t, app, "Acme Corp", "enter", "enter", " ", "ctrl+n")
	if app.controller.CurrentStage() != wizard.StageTerms {
		t.Fatalf("expected terms stage, got %s", app.controller.CurrentStage())
	}
	app = press(t, app, "alt+1")
	if app.controller.CurrentStage() != wizard.StageCustomer {
		t.Fatalf("expected jump back to customer stage")
	}
}

type fakeProvider struct {
	failProducts bool

	mu    sync.Mutex
	calls map[catalog.Resource]int
}

func (p *fakeProvider) record(r catalog.Resource) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.calls == nil {
		p.calls = map[catalog.Resource]int{}
	}
	p.calls[r]++
}

func (p *fakeProvider) count(r catalog.Resource) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[r]
}

func (p *fakeProvider) Customers(context.Context) ([]order.Customer, error) {
	p.record(catalog.ResourceCustomers)
	return []order.Customer{{
		ID:       "acme",
		Customer: "Acme Corp",
		Address1: "1 Main St",
		City:     "Springfield",
		State:    "IL",
		ZipCode:  "62701",
	}}, nil
}

func (p *fakeProvider) Products(context.Context) ([]order.Product, error) {
	p.record(catalog.ResourceProducts)
	if p.failProducts {
		return nil, &catalog.FetchError{Resource: catalog.ResourceProducts, Message: "Failed to fetch products"}
	}
	return []order.Product{{
		ID:   "standard",
		Name: "Standard",
		Plans: []order.Plan{
			{ID: "basic", Name: "Basic", BasePrice: 20},
			{ID: "pro", Name: "Pro", BasePrice: 50},
		},
	}}, nil
}

func (p *fakeProvider) AddOns(context.Context) ([]order.AddOn, error) {
	p.record(catalog.ResourceAddOns)
	qty := 2
	return []order.AddOn{{ID: "support", Name: "Support", UnitPrice: 10, Quantity: &qty}}, nil
}

func newTestApp(t *testing.T, provider catalog.Provider, opts ...AppOption) *App {
	t.Helper()
	projectDir := t.TempDir()
	if err := config.InitProjectDir(projectDir); err != nil {
		t.Fatalf("init project dir: %v", err)
	}
	clock := func() time.Time { return time.Date(2024, 1, 1, 9, 0, 0, 0, time.Local) }
	base := []AppOption{
		WithProvider(provider),
		WithClock(clock),
		WithReferenceGenerator(func() string { return "ref-1" }),
	}
	app, err := NewApp(projectDir, append(base, opts...)...)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	return runCommands(t, app, app.Init())
}

// press sends each key in turn and settles the resulting commands.
func press(t *testing.T, app *App, keys ...string) *App {
	t.Helper()
	for _, k := range keys {
		model, cmd := app.Update(keyMsg(k))
		app = runCommands(t, model, cmd)
	}
	return app
}

func keyMsg(k string) tea.KeyMsg {
	named := map[string]tea.KeyType{
		"enter":  tea.KeyEnter,
		"esc":    tea.KeyEsc,
		"tab":    tea.KeyTab,
		"up":     tea.KeyUp,
		"down":   tea.KeyDown,
		"left":   tea.KeyLeft,
		"right":  tea.KeyRight,
		"ctrl+n": tea.KeyCtrlN,
		"ctrl+p": tea.KeyCtrlP,
		"ctrl+u": tea.KeyCtrlU,
		" ":      tea.KeySpace,
	}
	if kt, ok := named[k]; ok {
		return tea.KeyMsg{Type: kt}
	}
	if strings.HasPrefix(k, "alt+") {
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(strings.TrimPrefix(k, "alt+")), Alt: true}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

// runCommands feeds catalog results back into the app until the command
// queue is empty. Cursor blinks and spinner ticks are dropped.
func runCommands(t *testing.T, model tea.Model, cmd tea.Cmd) *App {
	t.Helper()
	app, ok := model.(*App)
	if !ok {
		t.Fatalf("unexpected model type: %T", model)
	}
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 200 {
			t.Fatalf("commands did not settle")
		}
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		switch msg := runWithTimeout(next).(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case customersMsg, productsMsg, addOnsMsg:
			nextModel, nextCmd := app.Update(msg)
			app, ok = nextModel.(*App)
			if !ok {
				t.Fatalf("unexpected model type: %T", nextModel)
			}
			queue = append(queue, nextCmd)
		}
	}
	return app
}

func runWithTimeout(cmd tea.Cmd) tea.Msg {
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()
	select {
	case msg := <-done:
		return msg
	case <-time.After(100 * time.Millisecond):
		return nil
	}
}
