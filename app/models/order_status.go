package models

// OrderStatus is the lifecycle stage of an order, stored as its string value.
type OrderStatus string

const (
	StatusPending   OrderStatus = "Pending"
	StatusConfirmed OrderStatus = "Confirmed"
	StatusBrewing   OrderStatus = "Brewing"
	StatusReady     OrderStatus = "Ready"
	StatusServing   OrderStatus = "Serving"
	StatusServed    OrderStatus = "Served"
	StatusCancelled OrderStatus = "Cancelled"

	// StatusCompleted only appears on legacy rows. It is terminal and
	// cannot be set.
	StatusCompleted OrderStatus = "Completed"
)

// OrderStatuses lists the settable statuses in lifecycle order.
var OrderStatuses = []OrderStatus{
	StatusPending,
	StatusConfirmed,
	StatusBrewing,
	StatusReady,
	StatusServing,
	StatusServed,
	StatusCancelled,
}

// transitions is the full table of permitted moves. Open stages may move to
// any settable status, including backwards; terminal stages accept nothing.
var transitions = map[OrderStatus][]OrderStatus{
	StatusPending:   OrderStatuses,
	StatusConfirmed: OrderStatuses,
	StatusBrewing:   OrderStatuses,
	StatusReady:     OrderStatuses,
	StatusServing:   OrderStatuses,
	StatusServed:    nil,
	StatusCancelled: nil,
	StatusCompleted: nil,
}

// ParseOrderStatus matches s exactly (case-sensitive) against the settable
// statuses.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	for _, st := range OrderStatuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// IsTerminal reports whether no further transition is allowed.
func (s OrderStatus) IsTerminal() bool {
	next, known := transitions[s]
	return known && len(next) == 0
}

// IsActive reports whether the order is still being worked on.
func (s OrderStatus) IsActive() bool {
	return s != StatusServed && s != StatusCompleted && s != StatusCancelled
}

// CountsAsRevenue excludes cancelled orders from revenue figures.
func (s OrderStatus) CountsAsRevenue() bool {
	return s != StatusCancelled
}

// IsFulfilled reports Served or the legacy Completed.
func (s OrderStatus) IsFulfilled() bool {
	return s == StatusServed || s == StatusCompleted
}

// CanTransitionTo reports whether s may move to next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
