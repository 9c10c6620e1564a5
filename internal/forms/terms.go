package forms

import (
	"strconv"
	"strings"
	"time"

	"github.com/kingrea/dealdesk/internal/order"
	"github.com/kingrea/dealdesk/internal/terms"
)

// Terms form field names.
const (
	FieldStartDate      = "startDate"
	FieldContractPeriod = "contractPeriod"
	FieldCustomMonths   = "customMonths"
	FieldEndDate        = "endDate"
)

// TermsInput is the raw terms draft as typed.
type TermsInput struct {
	StartDate    string
	Period       string
	CustomMonths string
}

// DefaultTermsInput starts today with the default period.
func DefaultTermsInput(now time.Time) TermsInput {
	return TermsInput{
		StartDate: now.Format("2006-01-02"),
		Period:    terms.DefaultPeriod().Label(),
	}
}

// TermsInputFrom rebuilds the draft behind stored terms, recovering the
// period from the start and end dates. Without stored terms, or when the
// dates do not span whole months, it falls back to DefaultTermsInput and
// keeps whatever start date it can.
func TermsInputFrom(ct *order.ContractTerms, now time.Time) TermsInput {
	in := DefaultTermsInput(now)
	if ct == nil {
		return in
	}
	if strings.TrimSpace(ct.StartDate) != "" {
		in.StartDate = ct.StartDate
	}
	start, err := terms.ParseDate(ct.StartDate)
	if err != nil {
		return in
	}
	end, err := terms.ParseDate(ct.EndDate)
	if err != nil {
		return in
	}
	months, ok := terms.MonthsBetween(start, end)
	if !ok {
		return in
	}
	period := terms.PeriodFor(months)
	in.Period = period.Label()
	if period.IsCustom() {
		in.CustomMonths = strconv.Itoa(months)
	}
	return in
}

// TermsDraft is a validated terms draft.
type TermsDraft struct {
	Start  time.Time
	End    time.Time
	Period terms.Period
}

// ContractTerms formats the draft for the store.
func (d TermsDraft) ContractTerms() order.ContractTerms {
	return order.NewContractTerms(d.Start, d.End)
}

// ResolvePeriod resolves the selected period, folding the custom month count into
// the Custom variant. ok is false when the label is not an offered choice.
func (in TermsInput) ResolvePeriod() (terms.Period, bool) {
	p, err := terms.ParsePeriod(in.Period)
	if err != nil || !p.Enumerated() {
		return terms.Period{}, false
	}
	if p.IsCustom() {
		months, err := strconv.Atoi(strings.TrimSpace(in.CustomMonths))
		if err != nil {
			months = 0
		}
		p = p.WithMonths(months)
	}
	return p, true
}

// EndDate derives the end date from the current draft, for live display.
// It is recomputed on every call.
func (in TermsInput) EndDate() (time.Time, bool) {
	start, err := terms.ParseDate(in.StartDate)
	if err != nil {
		return time.Time{}, false
	}
	period, ok := in.ResolvePeriod()
	if !ok {
		return time.Time{}, false
	}
	return terms.ComputeEndDate(start, period)
}

// Validate applies the terms rules. Custom periods make customMonths
// required; fixed periods ignore it.
func (in TermsInput) Validate() (TermsDraft, FieldErrors) {
	errs := FieldErrors{}
	var draft TermsDraft

	if strings.TrimSpace(in.StartDate) == "" {
		errs.Add(FieldStartDate, "Start date is required")
	} else if start, err := terms.ParseDate(in.StartDate); err != nil {
		errs.Add(FieldStartDate, "Enter a date as YYYY-MM-DD or MM/DD/YYYY")
	} else {
		draft.Start = start
	}

	period, ok := in.ResolvePeriod()
	if !ok {
		errs.Add(FieldContractPeriod, "Contract period is required")
	} else {
		draft.Period = period
		if period.IsCustom() {
			raw := strings.TrimSpace(in.CustomMonths)
			months, err := strconv.Atoi(raw)
			switch {
			case raw == "":
				errs.Add(FieldCustomMonths, "Required when period is Custom")
			case err != nil:
				errs.Add(FieldCustomMonths, "Must be a number")
			case months < 1:
				errs.Add(FieldCustomMonths, "Must be at least 1 month")
			}
		}
	}

	if errs.Empty() {
		end, ok := terms.ComputeEndDate(draft.Start, draft.Period)
		if !ok {
			errs.Add(FieldEndDate, "End date is required")
		} else {
			draft.End = end
		}
	}
	return draft, errs
}
