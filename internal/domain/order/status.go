package order

// Status represents the lifecycle state of an order
type Status string

const (
	// StatusPending is reserved for future asynchronous payment flows;
	// the current checkout creates orders directly in StatusPaid.
	StatusPending   Status = "PENDING"
	StatusPaid      Status = "PAID"
	StatusCancelled Status = "CANCELLED"
	StatusDelivered Status = "DELIVERED"
)

// AllStatuses returns the closed set of order statuses
func AllStatuses() []Status {
	return []Status{StatusPending, StatusPaid, StatusCancelled, StatusDelivered}
}

// IsValid checks if the status is a member of the enumerated set
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusCancelled, StatusDelivered:
		return true
	}
	return false
}

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}

// CanTransitionTo consults the legal-transition table.
// Same-status requests are handled by callers as no-ops, not transitions.
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusPending:
		return target == StatusPaid || target == StatusCancelled
	case StatusPaid:
		return target == StatusCancelled || target == StatusDelivered
	case StatusCancelled, StatusDelivered:
		return false // Terminal states
	}
	return false
}

// IsTerminal returns true for states with no outgoing transitions
func (s Status) IsTerminal() bool {
	return s == StatusCancelled || s == StatusDelivered
}
