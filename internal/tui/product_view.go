package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/dealdesk/internal/catalog"
	"github.com/kingrea/dealdesk/internal/forms"
	"github.com/kingrea/dealdesk/internal/order"
	"github.com/kingrea/dealdesk/internal/pricing"
)

type productFocus int

const (
	focusProducts productFocus = iota
	focusPlans
)

// productItem implements list.Item
type productItem struct {
	product order.Product
}

func (i productItem) Title() string { return i.product.Name }
func (i productItem) Description() string {
	if len(i.product.Plans) == 1 {
		return "1 plan"
	}
	return fmt.Sprintf("%d plans", len(i.product.Plans))
}
func (i productItem) FilterValue() string { return i.product.Name }

// productView is the product and plan stage.
type productView struct {
	app        *App
	list       list.Model
	focus      productFocus
	planCursor int
	errs       forms.FieldErrors

	pricing    bool
	priceInput textinput.Model
}

func newProductView(app *App) *productView {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Product lines"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	price := textinput.New()
	price.Prompt = "$ "
	price.Placeholder = "0.00"
	price.CharLimit = 12

	v := &productView{app: app, list: l, priceInput: price}
	v.resize()
	v.catalogLoaded()
	return v
}

func (v *productView) editing() bool { return v.pricing }

func (v *productView) resize() {
	width := v.app.width
	if width <= 0 {
		width = 100
	}
	v.list.SetSize(max(20, width/2), max(8, v.app.height/3))
}

// catalogLoaded rebuilds the product list and selects the stored product.
func (v *productView) catalogLoaded() {
	items := make([]list.Item, 0, len(v.app.products))
	selected := v.app.controller.Store().SelectedProduct()
	index := 0
	for i, p := range v.app.products {
		items = append(items, productItem{product: p})
		if selected != nil && selected.ID == p.ID {
			index = i
		}
	}
	v.list.SetItems(items)
	if len(items) > 0 {
		v.list.Select(index)
	}
}

// plans are read from the selected product so overrides show up.
func (v *productView) plans() []order.Plan {
	if p := v.app.controller.Store().SelectedProduct(); p != nil {
		return p.Plans
	}
	return nil
}

func (v *productView) Update(msg tea.Msg) tea.Cmd {
	keyMsg, isKey := msg.(tea.KeyMsg)
	if v.pricing {
		if isKey {
			switch keyMsg.String() {
			case "enter":
				return v.applyPrice()
			case "esc":
				v.pricing = false
				v.priceInput.Blur()
				return nil
			}
		}
		var cmd tea.Cmd
		v.priceInput, cmd = v.priceInput.Update(msg)
		return cmd
	}
	if !isKey {
		if v.focus == focusProducts {
			var cmd tea.Cmd
			v.list, cmd = v.list.Update(msg)
			return cmd
		}
		return nil
	}

	switch keyMsg.String() {
	case "ctrl+n":
		return v.confirm()
	case "tab":
		if v.focus == focusProducts && len(v.plans()) > 0 {
			v.focus = focusPlans
		} else {
			v.focus = focusProducts
		}
		return nil
	}

	if v.focus == focusProducts {
		switch keyMsg.String() {
		case "enter", " ":
			item, ok := v.list.SelectedItem().(productItem)
			if !ok {
				return nil
			}
			v.app.controller.SelectProduct(v.app.products, item.product.ID)
			v.errs = nil
			v.planCursor = 0
			if len(v.plans()) > 0 {
				v.focus = focusPlans
			}
			return nil
		}
		var cmd tea.Cmd
		v.list, cmd = v.list.Update(msg)
		return cmd
	}

	plans := v.plans()
	switch keyMsg.String() {
	case "left", "h", "up", "k":
		if v.planCursor > 0 {
			v.planCursor--
		}
	case "right", "l", "down", "j":
		if v.planCursor < len(plans)-1 {
			v.planCursor++
		}
	case "enter", " ":
		if v.planCursor < len(plans) {
			v.app.controller.TogglePlan(plans[v.planCursor])
			v.errs = nil
		}
	case "e":
		if v.planCursor < len(plans) {
			v.pricing = true
			v.priceInput.SetValue(strconv.FormatFloat(plans[v.planCursor].BasePrice, 'f', -1, 64))
			v.priceInput.CursorEnd()
			return v.priceInput.Focus()
		}
	}
	return nil
}

func (v *productView) applyPrice() tea.Cmd {
	plans := v.plans()
	v.pricing = false
	v.priceInput.Blur()
	if v.planCursor >= len(plans) {
		return nil
	}
	plan := plans[v.planCursor]
	v.app.controller.OverridePlanPrice(plan.ID, v.priceInput.Value())
	v.app.statusMsg = fmt.Sprintf("%s repriced to %s", plan.Name, pricing.FormatCurrency(forms.ParsePriceInput(v.priceInput.Value())))
	return nil
}

func (v *productView) confirm() tea.Cmd {
	errs := v.app.controller.ConfirmProduct()
	if errs.Empty() {
		v.errs = nil
		v.app.statusMsg = ""
		return nil
	}
	v.errs = errs
	v.app.statusMsg = "Choose a product and plan to continue"
	return nil
}

func (v *productView) View(width int) string {
	lines := []string{v.list.View()}
	if msg := renderFieldError(v.errs, forms.FieldProduct); msg != "" {
		lines = append(lines, msg)
	}
	if notice := v.app.renderNotices(catalog.ResourceProducts); notice != "" {
		lines = append(lines, notice)
	}

	title := titleStyle.Render("Select plan")
	if v.focus == focusPlans {
		title = focusStyle.Render("› Select plan")
	}
	lines = append(lines, "", title)
	selected := v.app.controller.Store().SelectedPlan()
	plans := v.plans()
	if len(plans) == 0 {
		lines = append(lines, mutedStyle.Render("  Pick a product line to see its plans"))
	}
	for i, plan := range plans {
		radio := "( )"
		if selected != nil && selected.ID == plan.ID {
			radio = "(•)"
		}
		row := fmt.Sprintf("%s %-16s %s / mo", radio, plan.Name, pricing.FormatCurrency(plan.BasePrice))
		if v.focus == focusPlans && i == v.planCursor {
			row = focusStyle.Render("› " + row)
		} else {
			row = labelStyle.Render("  " + row)
		}
		lines = append(lines, row)
	}
	if msg := renderFieldError(v.errs, forms.FieldPlan); msg != "" {
		lines = append(lines, msg)
	}
	if v.pricing {
		lines = append(lines, "", labelStyle.Render("New base price"), "  "+v.priceInput.View())
		lines = append(lines, "", renderHints("Enter → apply", "Esc → cancel"))
		return strings.Join(lines, "\n")
	}
	lines = append(lines, "", renderHints("Tab → switch", "Enter/Space → select", "e → edit price", "Ctrl+N → next", "Esc → back"))
	return strings.Join(lines, "\n")
}
