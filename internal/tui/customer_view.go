package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/dealdesk/internal/catalog"
	"github.com/kingrea/dealdesk/internal/forms"
)

type formField struct {
	key         string
	label       string
	placeholder string
	limit       int
}

var customerFields = []formField{
	{key: forms.FieldCustomer, label: "Customer", placeholder: "Start typing a customer"},
	{key: forms.FieldAddress1, label: "Address 1"},
	{key: forms.FieldAddress2, label: "Address 2"},
	{key: forms.FieldCity, label: "City"},
	{key: forms.FieldState, label: "State", placeholder: strings.Join(forms.States, " "), limit: 2},
	{key: forms.FieldZipCode, label: "Zip code", limit: 10},
}

// customerView is the deal parties stage.
type customerView struct {
	app         *App
	inputs      []textinput.Model
	focus       int
	errs        forms.FieldErrors
	prepopulate bool
	// lastName is the customer name the address was last filled for.
	lastName string
}

func newCustomerView(app *App) *customerView {
	v := &customerView{app: app}
	for _, f := range customerFields {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = f.placeholder
		ti.CharLimit = f.limit
		v.inputs = append(v.inputs, ti)
	}
	v.inputs[0].ShowSuggestions = true
	v.setInput(forms.CustomerInputFrom(app.controller.Store().CustomerDetails()))
	v.catalogLoaded()
	return v
}

func (v *customerView) focusCmd() tea.Cmd {
	return v.inputs[v.focus].Focus()
}

func (v *customerView) editing() bool { return false }

// input reads the draft from the text inputs.
func (v *customerView) input() forms.CustomerInput {
	return forms.CustomerInput{
		Customer: v.inputs[0].Value(),
		Address1: v.inputs[1].Value(),
		Address2: v.inputs[2].Value(),
		City:     v.inputs[3].Value(),
		State:    v.inputs[4].Value(),
		ZipCode:  v.inputs[5].Value(),
	}
}

func (v *customerView) setInput(in forms.CustomerInput) {
	for i, value := range []string{in.Customer, in.Address1, in.Address2, in.City, in.State, in.ZipCode} {
		if v.inputs[i].Value() != value {
			v.inputs[i].SetValue(value)
		}
	}
}

// catalogLoaded refreshes suggestions and reapplies pre-population.
func (v *customerView) catalogLoaded() {
	v.inputs[0].SetSuggestions(forms.CustomerNames(v.app.customers))
	v.lastName = ""
	v.applyPrepopulate()
}

func (v *customerView) applyPrepopulate() {
	if !v.prepopulate {
		return
	}
	name := v.inputs[0].Value()
	if name == v.lastName {
		return
	}
	v.lastName = name
	v.setInput(v.input().Prepopulate(v.app.customers))
}

func (v *customerView) setFocus(i int) tea.Cmd {
	if i < 0 || i >= len(v.inputs) {
		return nil
	}
	v.inputs[v.focus].Blur()
	v.focus = i
	return v.inputs[v.focus].Focus()
}

func (v *customerView) Update(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "shift+tab":
			return v.setFocus(v.focus - 1)
		case "down":
			return v.setFocus(v.focus + 1)
		case "ctrl+p":
			v.prepopulate = !v.prepopulate
			v.lastName = ""
			v.applyPrepopulate()
			return nil
		case "enter", "ctrl+n":
			return v.submit()
		}
	}
	var cmd tea.Cmd
	v.inputs[v.focus], cmd = v.inputs[v.focus].Update(msg)
	v.applyPrepopulate()
	return cmd
}

func (v *customerView) submit() tea.Cmd {
	errs := v.app.controller.SubmitCustomer(v.input())
	if errs.Empty() {
		v.errs = nil
		v.app.statusMsg = ""
		return nil
	}
	v.errs = errs
	v.app.statusMsg = "Fix the highlighted fields to continue"
	for i, f := range customerFields {
		if errs.Get(f.key) != "" {
			return v.setFocus(i)
		}
	}
	return nil
}

func (v *customerView) View(width int) string {
	lines := []string{titleStyle.Render("Customer details"), ""}
	for i, f := range customerFields {
		label := labelStyle.Render(f.label)
		if i == v.focus {
			label = focusStyle.Render("› " + f.label)
		}
		v.inputs[i].Width = max(10, width-16)
		lines = append(lines, label, "  "+v.inputs[i].View())
		if msg := renderFieldError(v.errs, f.key); msg != "" {
			lines = append(lines, msg)
		}
	}
	check := "[ ]"
	if v.prepopulate {
		check = "[x]"
	}
	lines = append(lines, "", labelStyle.Render(check+" Pre-populate address from the customer catalog"))
	if notice := v.app.renderNotices(catalog.ResourceCustomers); notice != "" {
		lines = append(lines, "", notice)
	}
	lines = append(lines, "", renderHints("↑/↓ move", "Tab → accept suggestion", "Ctrl+P → pre-populate", "Enter → next"))
	return strings.Join(lines, "\n")
}
