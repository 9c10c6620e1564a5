// Package catalog loads the reference data the wizard offers: customers,
// products with their plans, and add-ons. Providers read it from a local
// directory or from a catalog server; Cache keeps results fresh for a
// while so returning to a stage does not refetch.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kingrea/dealdesk/internal/order"
)

// Resource names one of the three catalog collections.
type Resource string

const (
	ResourceCustomers Resource = "customers"
	ResourceProducts  Resource = "products"
	ResourceAddOns    Resource = "addOns"
)

// Resources lists every collection.
func Resources() []Resource {
	return []Resource{ResourceCustomers, ResourceProducts, ResourceAddOns}
}

// FileName is the base name the collection is served and stored under.
func (r Resource) FileName() string {
	switch r {
	case ResourceAddOns:
		return "addons"
	default:
		return string(r)
	}
}

// Label is the human name used in messages.
func (r Resource) Label() string {
	switch r {
	case ResourceAddOns:
		return "add-ons"
	default:
		return string(r)
	}
}

// ParseResource accepts a resource name or file name.
func ParseResource(name string) (Resource, bool) {
	key := strings.ToLower(strings.TrimSuffix(strings.TrimSpace(name), ".json"))
	for _, r := range Resources() {
		if key == strings.ToLower(string(r)) || key == r.FileName() {
			return r, true
		}
	}
	return "", false
}

// Provider serves the catalog collections.
type Provider interface {
	Customers(ctx context.Context) ([]order.Customer, error)
	Products(ctx context.Context) ([]order.Product, error)
	AddOns(ctx context.Context) ([]order.AddOn, error)
}

// FetchError reports a failed catalog load.
type FetchError struct {
	Resource Resource
	Message  string
	Cause    error
}

func (e *FetchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("catalog: %s: %v", e.Message, e.Cause)
	}
	return "catalog: " + e.Message
}

func (e *FetchError) Unwrap() error { return e.Cause }

func fetchFailed(r Resource, cause error) *FetchError {
	return &FetchError{Resource: r, Message: "Failed to fetch " + r.Label(), Cause: cause}
}

// FormatError turns any error into the single line shown to the user.
// Fetch errors show their message only; causes go to the log.
func FormatError(err error) string {
	if err == nil {
		return ""
	}
	var fe *FetchError
	if errors.As(err, &fe) && fe.Message != "" {
		return fe.Message
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "Request timed out"
	}
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return "Unknown error"
}
