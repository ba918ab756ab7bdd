package domain

// State is a checkout step.
type State string

const (
	StateCart    State = "cart"
	StateDetails State = "details"
	StatePayment State = "payment"
	StateSuccess State = "success"
)

// forward and backward list the single allowed move out of each step.
var (
	forward = map[State]State{
		StateCart:    StateDetails,
		StateDetails: StatePayment,
		StatePayment: StateSuccess,
	}
	backward = map[State]State{
		StateDetails: StateCart,
		StatePayment: StateDetails,
	}
)

// IsTerminal reports whether no further transitions are possible.
func (s State) IsTerminal() bool {
	return s == StateSuccess
}

// IsValid reports whether s is a known step.
func (s State) IsValid() bool {
	switch s {
	case StateCart, StateDetails, StatePayment, StateSuccess:
		return true
	}
	return false
}

// CanAdvanceTo reports whether to directly follows s.
func (s State) CanAdvanceTo(to State) bool {
	next, ok := forward[s]
	return ok && next == to
}

// CanGoBackTo reports whether to directly precedes s.
func (s State) CanGoBackTo(to State) bool {
	prev, ok := backward[s]
	return ok && prev == to
}
