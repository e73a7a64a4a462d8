package statusflow

import "github.com/expediterhq/expediter/internal/order/domain"

// transitions is the strict kitchen workflow. Keys with an empty set are
// terminal states.
var transitions = map[domain.Status][]domain.Status{
	domain.StatusPending:   {domain.StatusPreparing, domain.StatusCancelled},
	domain.StatusPreparing: {domain.StatusReady, domain.StatusCancelled},
	domain.StatusReady:     {domain.StatusCompleted},
	domain.StatusCompleted: {},
	domain.StatusCancelled: {},
}

// Allowed reports whether moving from one status to another is legal.
// In permissive mode any known target is accepted, matching the front
// counter's habit of correcting mis-tapped statuses. Strict mode enforces
// the kitchen workflow table above.
func Allowed(from, to domain.Status, strict bool) bool {
	if _, ok := domain.ParseStatus(string(to)); !ok {
		return false
	}
	if !strict {
		return true
	}
	if Terminal(from) {
		return false
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether a status admits no further strict transitions.
func Terminal(s domain.Status) bool {
	return len(transitions[s]) == 0
}
