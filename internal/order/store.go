// Package order holds the order model and the in-memory store that owns
// the selections made while the wizard runs.
//
// The store is the only place order state lives. Every field has a Set
// method taking a value and an Update method taking a function of the
// previous value; Update always sees the latest write, so several derived
// updates inside one event cannot clobber each other. Setters never
// validate: the stage forms do that before calling them.
//
// A Store is not safe for concurrent use. The TUI mutates it only from its
// Update loop.
package order

// Field names a store field in change notifications.
type Field string

const (
	FieldCustomer Field = "customer"
	FieldProduct  Field = "product"
	FieldPlan     Field = "plan"
	FieldTerms    Field = "terms"
	FieldAddOns   Field = "addOns"
	FieldStage    Field = "stage"
	FieldReset    Field = "reset"
)

// Store owns the in-progress order and the current wizard stage.
type Store struct {
	customer *Customer
	product  *Product
	plan     *Plan
	terms    *ContractTerms
	addOns   []AddOn
	stage    int

	observers []func(Field)
}

// NewStore returns an empty store at stage 0.
func NewStore() *Store {
	return &Store{}
}

// Observe registers fn to run after every mutation.
func (s *Store) Observe(fn func(Field)) {
	if fn != nil {
		s.observers = append(s.observers, fn)
	}
}

func (s *Store) notify(f Field) {
	for _, fn := range s.observers {
		fn(f)
	}
}

// CustomerDetails returns a copy of the customer, or nil.
func (s *Store) CustomerDetails() *Customer { return clonePtr(s.customer) }

// SetCustomerDetails replaces the customer.
func (s *Store) SetCustomerDetails(c *Customer) {
	s.customer = clonePtr(c)
	s.notify(FieldCustomer)
}

// UpdateCustomerDetails replaces the customer with fn(previous).
func (s *Store) UpdateCustomerDetails(fn func(*Customer) *Customer) {
	s.SetCustomerDetails(fn(s.CustomerDetails()))
}

// SelectedProduct returns a copy of the product, or nil.
func (s *Store) SelectedProduct() *Product { return cloneProduct(s.product) }

// SetSelectedProduct replaces the product.
func (s *Store) SetSelectedProduct(p *Product) {
	s.product = cloneProduct(p)
	s.notify(FieldProduct)
}

// UpdateSelectedProduct replaces the product with fn(previous).
func (s *Store) UpdateSelectedProduct(fn func(*Product) *Product) {
	s.SetSelectedProduct(fn(s.SelectedProduct()))
}

// SelectedPlan returns a copy of the plan, or nil.
func (s *Store) SelectedPlan() *Plan { return clonePtr(s.plan) }

// SetSelectedPlan replaces the plan.
func (s *Store) SetSelectedPlan(p *Plan) {
	s.plan = clonePtr(p)
	s.notify(FieldPlan)
}

// UpdateSelectedPlan replaces the plan with fn(previous).
func (s *Store) UpdateSelectedPlan(fn func(*Plan) *Plan) {
	s.SetSelectedPlan(fn(s.SelectedPlan()))
}

// SelectedTerms returns a copy of the contract terms, or nil.
func (s *Store) SelectedTerms() *ContractTerms { return clonePtr(s.terms) }

// SetSelectedTerms replaces the contract terms.
func (s *Store) SetSelectedTerms(t *ContractTerms) {
	s.terms = clonePtr(t)
	s.notify(FieldTerms)
}

// UpdateSelectedTerms replaces the contract terms with fn(previous).
func (s *Store) UpdateSelectedTerms(fn func(*ContractTerms) *ContractTerms) {
	s.SetSelectedTerms(fn(s.SelectedTerms()))
}

// SelectedAddOns returns a copy of the add-on selection.
func (s *Store) SelectedAddOns() []AddOn { return cloneAddOns(s.addOns) }

// SetSelectedAddOns replaces the add-on selection.
func (s *Store) SetSelectedAddOns(addOns []AddOn) {
	s.addOns = cloneAddOns(addOns)
	s.notify(FieldAddOns)
}

// UpdateSelectedAddOns replaces the add-on selection with fn(previous).
func (s *Store) UpdateSelectedAddOns(fn func([]AddOn) []AddOn) {
	s.SetSelectedAddOns(fn(s.SelectedAddOns()))
}

// CurrentStage returns the stage index. Range checks belong to the wizard.
func (s *Store) CurrentStage() int { return s.stage }

// SetCurrentStage stores the stage index as given.
func (s *Store) SetCurrentStage(stage int) {
	s.stage = stage
	s.notify(FieldStage)
}

// UpdateCurrentStage replaces the stage with fn(previous).
func (s *Store) UpdateCurrentStage(fn func(int) int) {
	s.SetCurrentStage(fn(s.stage))
}

// Reset clears every selection and returns to stage 0 in one step.
// Observers see a single FieldReset notification.
func (s *Store) Reset() {
	s.customer = nil
	s.product = nil
	s.plan = nil
	s.terms = nil
	s.addOns = nil
	s.stage = 0
	s.notify(FieldReset)
}

// Snapshot returns a copy of the current order.
func (s *Store) Snapshot() Order {
	return Order{
		Customer: s.CustomerDetails(),
		Product:  s.SelectedProduct(),
		Plan:     s.SelectedPlan(),
		AddOns:   s.SelectedAddOns(),
		Terms:    s.SelectedTerms(),
	}
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneProduct(p *Product) *Product {
	if p == nil {
		return nil
	}
	c := p.Clone()
	return &c
}

func cloneAddOns(in []AddOn) []AddOn {
	if len(in) == 0 {
		return []AddOn{}
	}
	out := make([]AddOn, len(in))
	for i, a := range in {
		out[i] = a.WithQuantity(a.Quantity)
	}
	return out
}
