// internal/tui/app.go
//
// This is the order wizard TUI for dealdesk.
// It uses bubbletea, which follows The Elm Architecture:
//
// 1. Model: the App, which owns the wizard controller and one view per stage
// 2. Update: a function that updates state based on messages
// 3. View: a function that renders state to a string
//
// The flow is: User Input -> Message -> Update -> New Model -> View -> Screen
//
// Catalog data is fetched by commands running off the event loop. Each
// stage mount bumps a generation counter and results carrying an older
// generation are dropped, so a slow response can never land on a stage the
// user has already left.

package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/kingrea/dealdesk/internal/catalog"
	"github.com/kingrea/dealdesk/internal/config"
	"github.com/kingrea/dealdesk/internal/logbook"
	"github.com/kingrea/dealdesk/internal/order"
	"github.com/kingrea/dealdesk/internal/pricing"
	"github.com/kingrea/dealdesk/internal/wizard"
)

const fetchTimeout = 10 * time.Second

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B")).MarginBottom(1)
	boxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#444444")).Padding(0, 1)
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	hintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	noticeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F7B801")).Bold(true)
	focusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF")).Bold(true)
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#CCCCCC"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#999999"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true)
	stepDone     = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50"))
	stepCurrent  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	stepUpcoming = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
)

// AppOption customizes App construction for tests and alternate runtimes.
type AppOption func(*App)

// WithProvider replaces the catalog provider built from config.
func WithProvider(p catalog.Provider) AppOption {
	return func(a *App) {
		if p != nil {
			a.provider = p
		}
	}
}

// WithLogger routes controller diagnostics to l.
func WithLogger(l *zap.Logger) AppOption {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithClock replaces time.Now for default dates and confirmations.
func WithClock(now func() time.Time) AppOption {
	return func(a *App) {
		if now != nil {
			a.now = now
		}
	}
}

// WithReferenceGenerator replaces the order reference generator.
func WithReferenceGenerator(fn func() string) AppOption {
	return func(a *App) {
		a.newRef = fn
	}
}

// WithFinalizeDelay overrides review.finalize_delay.
func WithFinalizeDelay(d time.Duration) AppOption {
	return func(a *App) {
		if d >= 0 {
			a.finalizeDelay = &d
		}
	}
}

// stageView is implemented by the per-stage views.
type stageView interface {
	Update(msg tea.Msg) tea.Cmd
	View(width int) string
	// editing reports whether an inline editor owns esc.
	editing() bool
}

// App is the main application model
type App struct {
	config     *config.Config
	logbook    *logbook.Logbook
	logger     *zap.Logger
	provider   catalog.Provider
	controller *wizard.Controller

	now           func() time.Time
	newRef        func() string
	finalizeDelay *time.Duration

	width     int
	height    int
	statusMsg string

	generation int
	mounted    wizard.Stage
	view       stageView

	customers []order.Customer
	products  []order.Product
	addOns    []order.AddOn
	notices   map[catalog.Resource]string

	spinner      spinner.Model
	confirmation *wizard.Confirmation
}

// NewApp creates a new application instance
func NewApp(projectDir string, opts ...AppOption) (*App, error) {
	cfg, err := config.NewConfig(projectDir)
	if err != nil {
		return nil, err
	}
	lb, err := logbook.New(filepath.Join(cfg.LogsDir(), logbook.FileName))
	if err != nil {
		lb = nil
	}

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = focusStyle

	app := &App{
		config:  cfg,
		logbook: lb,
		logger:  zap.NewNop(),
		now:     time.Now,
		notices: map[catalog.Resource]string{},
		spinner: spin,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(app)
		}
	}
	if app.provider == nil {
		app.provider = catalog.FromConfig(cfg)
	}
	delay := cfg.FinalizeDelay()
	if app.finalizeDelay != nil {
		delay = *app.finalizeDelay
	}
	app.controller = wizard.New(order.NewStore(),
		wizard.WithLogger(app.logger),
		wizard.WithClock(app.now),
		wizard.WithReferenceGenerator(app.newRef),
		wizard.WithFinalizeDelay(delay),
	)
	app.controller.Store().Observe(app.onStoreChange)
	app.mounted = -1
	app.logInfo("Session opened · catalog: %s", app.catalogLabel())
	return app, nil
}

// Controller exposes the wizard driving this app.
func (a *App) Controller() *wizard.Controller { return a.controller }

func (a *App) catalogLabel() string {
	if a.config.CatalogSource() == config.SourceHTTP {
		return a.config.CatalogURL()
	}
	return a.config.CatalogDir()
}

func (a *App) logInfo(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Info(format, args...)
}

func (a *App) logWarn(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Warn(format, args...)
}

func (a *App) logError(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Error(format, args...)
}

func (a *App) onStoreChange(f order.Field) {
	a.logger.Debug("store changed", zap.String("field", string(f)))
	switch f {
	case order.FieldStage:
		a.logInfo("Stage · %s", a.controller.CurrentStage())
	case order.FieldCustomer:
		if c := a.controller.Store().CustomerDetails(); c != nil {
			a.logInfo("Customer · %s", c.Customer)
		}
	case order.FieldTerms:
		if t := a.controller.Store().SelectedTerms(); t != nil {
			a.logInfo("Contract term · %s", t)
		}
	case order.FieldReset:
		a.logInfo("Order cleared")
	}
}

// Init is called once when the program starts.
func (a *App) Init() tea.Cmd {
	return a.mountStage()
}

// mountStage builds the view for the current stage and refetches the
// catalog under a fresh generation.
func (a *App) mountStage() tea.Cmd {
	a.generation++
	stage := a.controller.CurrentStage()
	a.mounted = stage
	var cmds []tea.Cmd
	switch stage {
	case wizard.StageCustomer:
		v := newCustomerView(a)
		cmds = append(cmds, v.focusCmd())
		a.view = v
	case wizard.StageProduct:
		a.view = newProductView(a)
	case wizard.StageTerms:
		v := newTermsView(a)
		cmds = append(cmds, v.focusCmd())
		a.view = v
	case wizard.StageReview:
		a.view = newReviewView(a)
	}
	cmds = append(cmds, a.fetchCustomers(a.generation), a.fetchProducts(a.generation))
	return tea.Batch(cmds...)
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := a.update(msg)
	if a.controller.CurrentStage() != a.mounted {
		cmd = tea.Batch(cmd, a.mountStage())
	}
	return a, cmd
}

func (a *App) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if v, ok := a.view.(*productView); ok {
			v.resize()
		}
		return nil

	case customersMsg:
		if msg.gen != a.generation {
			return nil
		}
		if msg.err != nil {
			a.setNotice(catalog.ResourceCustomers, msg.err)
			a.customers = nil
		} else {
			a.clearNotice(catalog.ResourceCustomers)
			a.customers = msg.customers
		}
		if v, ok := a.view.(*customerView); ok {
			v.catalogLoaded()
		}
		return nil

	case productsMsg:
		if msg.gen != a.generation {
			return nil
		}
		if msg.err != nil {
			a.setNotice(catalog.ResourceProducts, msg.err)
			a.products = nil
			if v, ok := a.view.(*productView); ok {
				v.catalogLoaded()
			}
			return nil
		}
		a.clearNotice(catalog.ResourceProducts)
		a.products = msg.products
		if v, ok := a.view.(*productView); ok {
			v.catalogLoaded()
		}
		return a.fetchAddOns(msg.gen)

	case addOnsMsg:
		if msg.gen != a.generation {
			return nil
		}
		if msg.err != nil {
			a.setNotice(catalog.ResourceAddOns, msg.err)
			a.addOns = nil
		} else {
			a.clearNotice(catalog.ResourceAddOns)
			a.addOns = msg.addOns
		}
		if v, ok := a.view.(*reviewView); ok {
			a.controller.SeedAddOns(a.addOns)
			v.catalogLoaded()
		}
		return nil

	case spinner.TickMsg:
		if a.confirmation == nil {
			return nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return cmd

	case finalizeDoneMsg:
		if a.confirmation == nil || a.confirmation.Reference != msg.reference {
			return nil
		}
		a.controller.CompleteFinalize()
		a.confirmation = nil
		a.statusMsg = "Ready for the next order"
		return nil

	case tea.KeyMsg:
		key := msg.String()
		if key == "ctrl+c" {
			return tea.Quit
		}
		if a.controller.Finalizing() {
			return nil
		}
		editing := a.view != nil && a.view.editing()
		switch key {
		case "esc":
			if !editing {
				a.statusMsg = ""
				a.controller.GoBack()
				return nil
			}
		case "alt+1", "alt+2", "alt+3", "alt+4":
			if !editing {
				target := int(key[len(key)-1]-'1')
				if target < int(a.controller.CurrentStage()) {
					a.controller.GoTo(target)
				}
				return nil
			}
		}
	}

	if a.view == nil {
		return nil
	}
	return a.view.Update(msg)
}

func (a *App) setNotice(r catalog.Resource, err error) {
	text := catalog.FormatError(err)
	if a.notices[r] != text {
		a.logWarn("Catalog · %s", text)
	}
	a.logger.Warn("catalog fetch failed", zap.String("resource", string(r)), zap.Error(err))
	a.notices[r] = text
}

func (a *App) clearNotice(r catalog.Resource) {
	delete(a.notices, r)
}

// notice returns the error text for r, or "".
func (a *App) notice(r catalog.Resource) string {
	return a.notices[r]
}

// finalize places the order and schedules the reset.
func (a *App) finalize() tea.Cmd {
	conf, err := a.controller.Finalize()
	if err != nil {
		a.statusMsg = finalizeErrorText(err)
		a.logError("Finalize refused · %v", err)
		return nil
	}
	a.confirmation = &conf
	a.statusMsg = conf.Message
	a.logInfo("Order placed · %s · %s", conf.Order.Customer.Customer, pricing.FormatCurrency(conf.Total))
	ref := conf.Reference
	return tea.Batch(
		a.spinner.Tick,
		tea.Tick(a.controller.FinalizeDelay(), func(time.Time) tea.Msg {
			return finalizeDoneMsg{reference: ref}
		}),
	)
}

func finalizeErrorText(err error) string {
	switch err {
	case wizard.ErrIncompleteOrder:
		return "Customer, product and plan are required before finalizing"
	case wizard.ErrFinalizing:
		return "Order is already being placed"
	default:
		return err.Error()
	}
}

// View renders the current state
func (a *App) View() string {
	width := a.width
	if width <= 0 {
		width = 100
	}
	rightWidth := max(32, width/3)
	leftWidth := width - rightWidth - 4
	if leftWidth < 40 {
		leftWidth = width - 4
		rightWidth = 0
	}
	content := "Loading..."
	if a.view != nil {
		content = a.view.View(leftWidth - 4)
	}
	return a.renderBoard(content, leftWidth, rightWidth)
}

func (a *App) renderBoard(mainContent string, leftWidth, rightWidth int) string {
	header := headerStyle.Render("⬡ DEALDESK")
	left := lipgloss.JoinVertical(lipgloss.Left,
		a.renderStepper(),
		"",
		mainContent,
	)
	leftBox := boxStyle.Width(max(20, leftWidth)).Render(left)
	body := leftBox
	if rightWidth > 0 {
		rightBox := boxStyle.Width(max(20, rightWidth)).Render(a.renderOrderPanel(rightWidth - 4))
		body = lipgloss.JoinHorizontal(lipgloss.Top, leftBox, rightBox)
	}
	sections := []string{header, body}
	if a.confirmation != nil {
		sections = append(sections, a.renderToast())
	}
	if logPanel := a.renderLogPanel(); logPanel != "" {
		sections = append(sections, logPanel)
	}
	footer := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888888")).
		MarginTop(1).
		Render(a.statusMsg)
	sections = append(sections, footer)
	return strings.Join(sections, "\n")
}

func (a *App) renderStepper() string {
	current := a.controller.CurrentStage()
	parts := make([]string, 0, len(wizard.Stages()))
	for i, stage := range wizard.Stages() {
		label := fmt.Sprintf("%d %s", i+1, stage)
		switch {
		case stage < current:
			parts = append(parts, stepDone.Render("✓ "+label))
		case stage == current:
			parts = append(parts, stepCurrent.Render("● "+label))
		default:
			parts = append(parts, stepUpcoming.Render("○ "+label))
		}
	}
	return strings.Join(parts, stepUpcoming.Render("  ─  "))
}

// renderOrderPanel shows the live order summary beside every stage.
func (a *App) renderOrderPanel(width int) string {
	lines := []string{titleStyle.Render("ORDER")}
	for _, row := range a.controller.Summary().Rows() {
		lines = append(lines, labelStyle.Render(row.Label), "  "+row.Value)
	}
	return lipgloss.NewStyle().Width(max(10, width)).Render(strings.Join(lines, "\n"))
}

func (a *App) renderToast() string {
	conf := a.confirmation
	text := fmt.Sprintf("%s %s", a.spinner.View(), successStyle.Render(conf.Message))
	detail := mutedStyle.Render(fmt.Sprintf("Reference %s · %s", conf.Reference, pricing.FormatCurrency(conf.Total)))
	return boxStyle.BorderForeground(lipgloss.Color("#4CAF50")).Render(text + "\n" + detail)
}

func (a *App) renderLogPanel() string {
	if a.logbook == nil {
		return ""
	}
	lines, _ := a.logbook.Tail(8)
	if len(lines) == 0 {
		return ""
	}
	fileName := filepath.Base(a.logbook.Path())
	if fileName == "." || fileName == "" {
		fileName = "log"
	}
	head := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		Render(fmt.Sprintf("LOG · %s", fileName))
	body := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#AAAAAA")).
		Render(strings.Join(lines, "\n"))
	return boxStyle.Render(fmt.Sprintf("%s\n%s", head, body))
}

// renderNotices lists catalog failures for the given resources.
func (a *App) renderNotices(resources ...catalog.Resource) string {
	var out []string
	for _, r := range resources {
		if text := a.notice(r); text != "" {
			out = append(out, noticeStyle.Render("⚠ "+text))
		}
	}
	return strings.Join(out, "\n")
}

type customersMsg struct {
	gen       int
	customers []order.Customer
	err       error
}

type productsMsg struct {
	gen      int
	products []order.Product
	err      error
}

type addOnsMsg struct {
	gen    int
	addOns []order.AddOn
	err    error
}

type finalizeDoneMsg struct {
	reference string
}

func (a *App) fetchCustomers(gen int) tea.Cmd {
	provider := a.provider
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		customers, err := provider.Customers(ctx)
		return customersMsg{gen: gen, customers: customers, err: err}
	}
}

func (a *App) fetchProducts(gen int) tea.Cmd {
	provider := a.provider
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		products, err := provider.Products(ctx)
		return productsMsg{gen: gen, products: products, err: err}
	}
}

// fetchAddOns runs only once products have loaded.
func (a *App) fetchAddOns(gen int) tea.Cmd {
	provider := a.provider
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		addOns, err := provider.AddOns(ctx)
		return addOnsMsg{gen: gen, addOns: addOns, err: err}
	}
}

func renderHints(hints ...string) string {
	return hintStyle.Render(strings.Join(hints, "    "))
}

func renderFieldError(errs map[string]string, field string) string {
	if msg := errs[field]; msg != "" {
		return errorStyle.Render("  " + msg)
	}
	return ""
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
