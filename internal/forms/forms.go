// Package forms holds the validation rules of each wizard stage. Forms
// work on drafts; nothing here touches the order store. The wizard writes
// a draft back only when its form reports no field errors.
package forms

import (
	"fmt"
	"sort"
	"strings"
)

// FieldErrors maps a field name to the message shown next to it.
type FieldErrors map[string]string

// Add records msg for field unless the field already has an error.
func (e FieldErrors) Add(field, msg string) {
	if _, exists := e[field]; !exists {
		e[field] = msg
	}
}

// Get returns the message for field, or "".
func (e FieldErrors) Get(field string) string {
	if e == nil {
		return ""
	}
	return e[field]
}

// Empty reports whether there are no errors.
func (e FieldErrors) Empty() bool { return len(e) == 0 }

// Err returns e as an error, or nil when empty.
func (e FieldErrors) Err() error {
	if e.Empty() {
		return nil
	}
	return e
}

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, e[f]))
	}
	return "forms: " + strings.Join(parts, "; ")
}
