package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/dealdesk/internal/forms"
	"github.com/kingrea/dealdesk/internal/terms"
)

const (
	termsFocusStart = iota
	termsFocusPeriod
	termsFocusMonths
)

// termsView is the contract terms stage. The end date is derived from
// the draft on every render.
type termsView struct {
	app       *App
	start     textinput.Model
	months    textinput.Model
	periods   []terms.Period
	periodIdx int
	focus     int
	errs      forms.FieldErrors
}

func newTermsView(app *App) *termsView {
	in := forms.TermsInputFrom(app.controller.Store().SelectedTerms(), app.now())

	start := textinput.New()
	start.Prompt = ""
	start.Placeholder = "YYYY-MM-DD"
	start.CharLimit = 10
	start.SetValue(in.StartDate)

	months := textinput.New()
	months.Prompt = ""
	months.Placeholder = "e.g. 18"
	months.CharLimit = 4
	months.SetValue(in.CustomMonths)

	v := &termsView{app: app, start: start, months: months, periods: terms.Periods()}
	for i, p := range v.periods {
		if p.Label() == in.Period {
			v.periodIdx = i
		}
	}
	return v
}

func (v *termsView) focusCmd() tea.Cmd {
	return v.start.Focus()
}

func (v *termsView) editing() bool { return false }

func (v *termsView) period() terms.Period {
	return v.periods[v.periodIdx]
}

func (v *termsView) input() forms.TermsInput {
	in := forms.TermsInput{
		StartDate: v.start.Value(),
		Period:    v.period().Label(),
	}
	if v.period().IsCustom() {
		in.CustomMonths = v.months.Value()
	}
	return in
}

func (v *termsView) fieldCount() int {
	if v.period().IsCustom() {
		return 3
	}
	return 2
}

func (v *termsView) setFocus(i int) tea.Cmd {
	if i < 0 || i >= v.fieldCount() {
		return nil
	}
	v.start.Blur()
	v.months.Blur()
	v.focus = i
	switch i {
	case termsFocusStart:
		return v.start.Focus()
	case termsFocusMonths:
		return v.months.Focus()
	}
	return nil
}

func (v *termsView) cyclePeriod(step int) {
	n := len(v.periods)
	v.periodIdx = ((v.periodIdx+step)%n + n) % n
	delete(v.errs, forms.FieldCustomMonths)
}

func (v *termsView) Update(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "shift+tab":
			return v.setFocus(v.focus - 1)
		case "down", "tab":
			return v.setFocus(v.focus + 1)
		case "enter", "ctrl+n":
			return v.submit()
		case "left", "right":
			if v.focus == termsFocusPeriod {
				if msg.String() == "left" {
					v.cyclePeriod(-1)
				} else {
					v.cyclePeriod(1)
				}
				return nil
			}
		}
	}
	var cmd tea.Cmd
	switch v.focus {
	case termsFocusStart:
		v.start, cmd = v.start.Update(msg)
	case termsFocusMonths:
		v.months, cmd = v.months.Update(msg)
	}
	return cmd
}

func (v *termsView) submit() tea.Cmd {
	errs := v.app.controller.SubmitTerms(v.input())
	if errs.Empty() {
		v.errs = nil
		v.app.statusMsg = ""
		return nil
	}
	v.errs = errs
	v.app.statusMsg = "Fix the highlighted fields to continue"
	switch {
	case errs.Get(forms.FieldStartDate) != "":
		return v.setFocus(termsFocusStart)
	case errs.Get(forms.FieldContractPeriod) != "":
		return v.setFocus(termsFocusPeriod)
	case errs.Get(forms.FieldCustomMonths) != "":
		return v.setFocus(termsFocusMonths)
	}
	return nil
}

func (v *termsView) label(i int, text string) string {
	if v.focus == i {
		return focusStyle.Render("› " + text)
	}
	return labelStyle.Render(text)
}

func (v *termsView) View(width int) string {
	lines := []string{titleStyle.Render("Contract terms"), ""}
	v.start.Width = max(10, width-16)
	lines = append(lines, v.label(termsFocusStart, "Start date"), "  "+v.start.View())
	if msg := renderFieldError(v.errs, forms.FieldStartDate); msg != "" {
		lines = append(lines, msg)
	}

	lines = append(lines, v.label(termsFocusPeriod, "Contract period"), "  ‹ "+v.period().Label()+" ›")
	if msg := renderFieldError(v.errs, forms.FieldContractPeriod); msg != "" {
		lines = append(lines, msg)
	}

	if v.period().IsCustom() {
		lines = append(lines, v.label(termsFocusMonths, "Months"), "  "+v.months.View())
		if msg := renderFieldError(v.errs, forms.FieldCustomMonths); msg != "" {
			lines = append(lines, msg)
		}
	}

	end := mutedStyle.Render("-")
	if t, ok := v.input().EndDate(); ok {
		end = successStyle.Render(terms.FormatDate(t))
	}
	lines = append(lines, labelStyle.Render("End date"), "  "+end)
	if msg := renderFieldError(v.errs, forms.FieldEndDate); msg != "" {
		lines = append(lines, msg)
	}

	lines = append(lines, "", renderHints("↑/↓ move", "←/→ period", "Enter → next", "Esc → back"))
	return strings.Join(lines, "\n")
}
