package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/dealdesk/internal/catalog"
	"github.com/kingrea/dealdesk/internal/forms"
	"github.com/kingrea/dealdesk/internal/pricing"
)

// reviewView lets the user fine tune add-ons and finalize the order.
type reviewView struct {
	app    *App
	cursor int
	// quantities holds what was typed per add-on id, as displayed.
	quantities map[string]string

	editingQty bool
	qtyInput   textinput.Model
}

func newReviewView(app *App) *reviewView {
	qty := textinput.New()
	qty.Prompt = ""
	qty.Placeholder = "Enter qty"
	qty.CharLimit = 6
	v := &reviewView{app: app, quantities: map[string]string{}, qtyInput: qty}
	v.catalogLoaded()
	return v
}

func (v *reviewView) editing() bool { return v.editingQty }

// catalogLoaded resets the displayed quantities to the catalog defaults.
func (v *reviewView) catalogLoaded() {
	v.quantities = map[string]string{}
	for _, a := range v.app.addOns {
		qty := 1
		if a.Quantity != nil {
			qty = *a.Quantity
		}
		v.quantities[a.ID] = strconv.Itoa(qty)
	}
	if v.cursor >= len(v.app.addOns) {
		v.cursor = 0
	}
}

func (v *reviewView) Update(msg tea.Msg) tea.Cmd {
	keyMsg, isKey := msg.(tea.KeyMsg)
	if v.editingQty {
		if isKey {
			switch keyMsg.String() {
			case "enter":
				v.applyQuantity()
				return nil
			case "esc":
				v.editingQty = false
				v.qtyInput.Blur()
				return nil
			}
		}
		var cmd tea.Cmd
		v.qtyInput, cmd = v.qtyInput.Update(msg)
		return cmd
	}
	if !isKey {
		return nil
	}

	addOns := v.app.addOns
	switch keyMsg.String() {
	case "up", "k":
		if v.cursor > 0 {
			v.cursor--
		}
	case "down", "j":
		if v.cursor < len(addOns)-1 {
			v.cursor++
		}
	case " ", "x":
		if v.cursor < len(addOns) {
			addOn := addOns[v.cursor]
			checked := !forms.IsAddOnSelected(v.app.controller.Store().SelectedAddOns(), addOn.ID)
			v.app.controller.ToggleAddOn(addOn.WithQuantity(forms.ParseQuantity(v.quantities[addOn.ID])), checked)
		}
	case "e":
		if v.cursor < len(addOns) {
			v.editingQty = true
			v.qtyInput.SetValue(v.quantities[addOns[v.cursor].ID])
			v.qtyInput.CursorEnd()
			return v.qtyInput.Focus()
		}
	case "ctrl+n", "f":
		return v.app.finalize()
	}
	return nil
}

func (v *reviewView) applyQuantity() {
	v.editingQty = false
	v.qtyInput.Blur()
	if v.cursor >= len(v.app.addOns) {
		return
	}
	id := v.app.addOns[v.cursor].ID
	v.quantities[id] = v.qtyInput.Value()
	v.app.controller.SetAddOnQuantity(id, v.qtyInput.Value())
}

func (v *reviewView) View(width int) string {
	lines := []string{titleStyle.Render("Select add-ons")}
	selected := v.app.controller.Store().SelectedAddOns()
	if len(v.app.addOns) == 0 {
		lines = append(lines, mutedStyle.Render("  No add-ons available"))
	}
	for i, a := range v.app.addOns {
		check := "[ ]"
		if forms.IsAddOnSelected(selected, a.ID) {
			check = "[x]"
		}
		qty := v.quantities[a.ID]
		if v.editingQty && i == v.cursor {
			qty = v.qtyInput.View()
		}
		row := fmt.Sprintf("%s %-18s %s per %s   qty %s", check, a.Name, pricing.FormatCurrency(a.UnitPrice), a.Name, qty)
		if i == v.cursor {
			row = focusStyle.Render("› ") + row
		} else {
			row = "  " + row
		}
		lines = append(lines, row)
	}
	if notice := v.app.renderNotices(catalog.ResourceProducts, catalog.ResourceAddOns); notice != "" {
		lines = append(lines, notice)
	}

	lines = append(lines, "", titleStyle.Render("Order summary"))
	labelWidth := 14
	for _, row := range v.app.controller.Summary().Rows() {
		label := lipgloss.NewStyle().Width(labelWidth).Render(row.Label)
		lines = append(lines, "  "+labelStyle.Render(label)+" "+row.Value)
	}

	if v.editingQty {
		lines = append(lines, "", renderHints("Enter → apply", "Esc → cancel"))
	} else {
		lines = append(lines, "", renderHints("Space → toggle", "e → edit qty", "Ctrl+N → finalize", "Esc → back"))
	}
	return lipgloss.NewStyle().MaxWidth(max(20, width)).Render(strings.Join(lines, "\n"))
}
