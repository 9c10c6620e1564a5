package forms

import (
	"strings"
	"unicode/utf8"

	"github.com/kingrea/dealdesk/internal/order"
)

// Customer form field names.
const (
	FieldCustomer = "customer"
	FieldAddress1 = "address1"
	FieldAddress2 = "address2"
	FieldCity     = "city"
	FieldState    = "state"
	FieldZipCode  = "zipCode"
)

const (
	MaxAddressLength = 100
	MaxCityLength    = 50
)

// States are the state codes the customer form accepts.
var States = []string{"NY", "CA", "TX", "FL", "IL", "PA"}

// CustomerInput is the draft behind the customer stage.
type CustomerInput struct {
	Customer string
	Address1 string
	Address2 string
	City     string
	State    string
	ZipCode  string
}

// CustomerInputFrom seeds a draft from what the store already holds.
func CustomerInputFrom(c *order.Customer) CustomerInput {
	if c == nil {
		return CustomerInput{}
	}
	return CustomerInput{
		Customer: c.Customer,
		Address1: c.Address1,
		Address2: c.Address2,
		City:     c.City,
		State:    c.State,
		ZipCode:  c.ZipCode,
	}
}

// Validate applies the customer stage rules.
func (in CustomerInput) Validate() FieldErrors {
	errs := FieldErrors{}
	if strings.TrimSpace(in.Customer) == "" {
		errs.Add(FieldCustomer, "Customer is required")
	}
	if utf8.RuneCountInString(in.Address1) > MaxAddressLength {
		errs.Add(FieldAddress1, "Address 1 must be at most 100 characters")
	}
	if utf8.RuneCountInString(in.Address2) > MaxAddressLength {
		errs.Add(FieldAddress2, "Address 2 must be at most 100 characters")
	}
	if utf8.RuneCountInString(in.City) > MaxCityLength {
		errs.Add(FieldCity, "City must be at most 50 characters")
	}
	if state := strings.TrimSpace(in.State); state != "" && !ValidState(state) {
		errs.Add(FieldState, "Select a valid state")
	}
	return errs
}

// Record returns the normalized customer the store keeps.
func (in CustomerInput) Record() order.Customer {
	return order.Customer{
		Customer: strings.TrimSpace(in.Customer),
		Address1: in.Address1,
		Address2: in.Address2,
		City:     in.City,
		State:    strings.ToUpper(strings.TrimSpace(in.State)),
		ZipCode:  in.ZipCode,
	}
}

// Prepopulate copies the address of the catalog customer whose name
// matches the draft. Fields the catalog entry lacks become empty, and a
// name with no catalog match clears the address. An empty name leaves the
// draft alone.
func (in CustomerInput) Prepopulate(customers []order.Customer) CustomerInput {
	name := strings.TrimSpace(in.Customer)
	if name == "" {
		return in
	}
	var match order.Customer
	for _, c := range customers {
		if c.Customer == name {
			match = c
			break
		}
	}
	in.Address1 = match.Address1
	in.Address2 = match.Address2
	in.City = match.City
	in.State = match.State
	in.ZipCode = match.ZipCode
	return in
}

// CustomerNames lists catalog names for the autocomplete.
func CustomerNames(customers []order.Customer) []string {
	names := make([]string, 0, len(customers))
	for _, c := range customers {
		names = append(names, c.Customer)
	}
	return names
}

// ValidState reports whether code is an accepted state code.
func ValidState(code string) bool {
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, s := range States {
		if s == code {
			return true
		}
	}
	return false
}
