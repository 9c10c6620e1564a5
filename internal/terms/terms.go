// Package terms derives contract end dates from a start date and a period.
package terms

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is how contract dates are shown and stored on the order.
const DateLayout = "01/02/2006"

// CustomLabel is the period label that asks for an explicit month count.
const CustomLabel = "Custom"

// ErrUnknownPeriod is returned by ParsePeriod for labels it cannot read.
var ErrUnknownPeriod = errors.New("terms: unknown contract period")

type periodKind int

const (
	kindNone periodKind = iota
	kindFixed
	kindCustom
)

// Period is either Fixed(months) or Custom(months). A Custom period whose
// month count has not been entered carries months == 0.
type Period struct {
	kind   periodKind
	months int
}

// Fixed returns a fixed-length period.
func Fixed(months int) Period {
	return Period{kind: kindFixed, months: months}
}

// Custom returns a user-sized period. Pass 0 when the count is absent.
func Custom(months int) Period {
	return Period{kind: kindCustom, months: months}
}

var fixedChoices = []int{6, 12, 24, 36}

// Periods lists the selectable periods in display order, Custom last.
func Periods() []Period {
	out := make([]Period, 0, len(fixedChoices)+1)
	for _, m := range fixedChoices {
		out = append(out, Fixed(m))
	}
	return append(out, Custom(0))
}

// DefaultPeriod is preselected on the terms stage.
func DefaultPeriod() Period {
	return Fixed(12)
}

// IsZero reports whether no period has been chosen.
func (p Period) IsZero() bool { return p.kind == kindNone }

// IsCustom reports whether the period is the Custom variant.
func (p Period) IsCustom() bool { return p.kind == kindCustom }

// Months returns the number of months to add and whether the period can
// produce an end date at all.
func (p Period) Months() (int, bool) {
	switch p.kind {
	case kindFixed, kindCustom:
		if p.months < 1 {
			return 0, false
		}
		return p.months, true
	default:
		return 0, false
	}
}

// WithMonths returns a copy carrying a new month count. Fixed periods are
// returned unchanged.
func (p Period) WithMonths(months int) Period {
	if p.kind != kindCustom {
		return p
	}
	return Custom(months)
}

// Enumerated reports whether p is one of the choices offered by Periods.
func (p Period) Enumerated() bool {
	switch p.kind {
	case kindCustom:
		return true
	case kindFixed:
		for _, m := range fixedChoices {
			if m == p.months {
				return true
			}
		}
	}
	return false
}

// Label is the display string: "12 months", "1 month" or "Custom".
func (p Period) Label() string {
	switch p.kind {
	case kindCustom:
		return CustomLabel
	case kindFixed:
		if p.months == 1 {
			return "1 month"
		}
		return fmt.Sprintf("%d months", p.months)
	default:
		return ""
	}
}

func (p Period) String() string { return p.Label() }

// ParsePeriod reads labels such as "6 months", "1 month" or "Custom".
func ParsePeriod(label string) (Period, error) {
	trimmed := strings.TrimSpace(label)
	if strings.EqualFold(trimmed, CustomLabel) {
		return Custom(0), nil
	}
	fields := strings.Fields(strings.ToLower(trimmed))
	if len(fields) == 0 || len(fields) > 2 {
		return Period{}, fmt.Errorf("%w: %q", ErrUnknownPeriod, label)
	}
	if len(fields) == 2 && fields[1] != "month" && fields[1] != "months" {
		return Period{}, fmt.Errorf("%w: %q", ErrUnknownPeriod, label)
	}
	months, err := strconv.Atoi(fields[0])
	if err != nil || months < 1 {
		return Period{}, fmt.Errorf("%w: %q", ErrUnknownPeriod, label)
	}
	return Fixed(months), nil
}

// ComputeEndDate adds the period to start using calendar months. The day
// is clamped to the last day of the target month, so Jan 31 + 1 month is
// Feb 29 in a leap year. It returns false when no end date can be derived:
// a zero start, no period, or a Custom period without a month count >= 1.
func ComputeEndDate(start time.Time, period Period) (time.Time, bool) {
	if start.IsZero() {
		return time.Time{}, false
	}
	months, ok := period.Months()
	if !ok {
		return time.Time{}, false
	}
	return AddMonths(start, months), true
}

// AddMonths moves t by n calendar months, clamping the day of month.
func AddMonths(t time.Time, n int) time.Time {
	year, month, day := t.Date()
	idx := int(month) - 1 + n
	year += floorDiv(idx, 12)
	idx -= floorDiv(idx, 12) * 12
	target := time.Month(idx + 1)
	if last := daysIn(year, target); day > last {
		day = last
	}
	hh, mm, ss := t.Clock()
	return time.Date(year, target, day, hh, mm, ss, t.Nanosecond(), t.Location())
}

// MonthsBetween returns the n >= 1 for which AddMonths(start, n) falls on
// the calendar day of end. ok is false when no whole month count fits.
func MonthsBetween(start, end time.Time) (int, bool) {
	if start.IsZero() || end.IsZero() {
		return 0, false
	}
	sy, sm, _ := start.Date()
	ey, em, ed := end.Date()
	n := (ey-sy)*12 + int(em) - int(sm)
	if n < 1 {
		return 0, false
	}
	y, m, d := AddMonths(start, n).Date()
	if y != ey || m != em || d != ed {
		return 0, false
	}
	return n, true
}

// PeriodFor picks the offered period spanning months: the fixed choice
// when one matches, otherwise Custom(months).
func PeriodFor(months int) Period {
	if p := Fixed(months); p.Enumerated() {
		return p
	}
	return Custom(months)
}

// FormatDate renders t as MM/DD/YYYY.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

var inputLayouts = []string{"2006-01-02", DateLayout, "1/2/2006"}

// ParseDate accepts YYYY-MM-DD or MM/DD/YYYY.
func ParseDate(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("terms: date is empty")
	}
	for _, layout := range inputLayouts {
		if t, err := time.ParseInLocation(layout, trimmed, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("terms: unrecognised date %q", value)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
