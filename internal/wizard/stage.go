package wizard

// Stage is one step of the order wizard.
type Stage int

const (
	StageCustomer Stage = iota
	StageProduct
	StageTerms
	StageReview
)

// FirstStage and LastStage bound navigation.
const (
	FirstStage = StageCustomer
	LastStage  = StageReview
)

// Stages lists every stage in order.
func Stages() []Stage {
	return []Stage{StageCustomer, StageProduct, StageTerms, StageReview}
}

// String returns the stage title shown in the stepper.
func (s Stage) String() string {
	switch s {
	case StageCustomer:
		return "Deal parties"
	case StageProduct:
		return "Product & plan"
	case StageTerms:
		return "Terms"
	case StageReview:
		return "Review & fine tune"
	default:
		return "Unknown"
	}
}

// FriendlyName is the short label used in the status bar.
func (s Stage) FriendlyName() string {
	switch s {
	case StageCustomer:
		return "Customer"
	case StageProduct:
		return "Product"
	case StageTerms:
		return "Terms"
	case StageReview:
		return "Review"
	default:
		return s.String()
	}
}

// Valid reports whether s is a defined stage.
func (s Stage) Valid() bool {
	return s >= FirstStage && s <= LastStage
}

// Next returns the following stage, staying on the last one.
func (s Stage) Next() Stage {
	if s >= LastStage {
		return LastStage
	}
	if s < FirstStage {
		return FirstStage
	}
	return s + 1
}

// Prev returns the previous stage, staying on the first one.
func (s Stage) Prev() Stage {
	if s <= FirstStage {
		return FirstStage
	}
	if s > LastStage {
		return LastStage
	}
	return s - 1
}

func clampStage(i int) Stage {
	s := Stage(i)
	switch {
	case s < FirstStage:
		return FirstStage
	case s > LastStage:
		return LastStage
	default:
		return s
	}
}
