package flow

// OutcomeKind distinguishes the three ways an attempt can end
type OutcomeKind int

const (
	// OutcomeSuccess carries the task's result
	OutcomeSuccess OutcomeKind = iota
	// OutcomeError carries an expected, typed error
	OutcomeError
	// OutcomePanic means the task terminated abnormally
	OutcomePanic
)

// String returns the outcome kind name
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeError:
		return "error"
	case OutcomePanic:
		return "panic"
	default:
		return "unknown"
	}
}

// Outcome is the terminal result of one attempt. Only the field matching
// Kind is meaningful.
type Outcome[R, E any] struct {
	Kind  OutcomeKind
	Value R
	Err   E
	Panic string
}
