package booking

import "strings"

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusRejected  Status = "rejected"
)

var validTransitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusRejected, StatusCancelled},
	StatusConfirmed: {StatusActive, StatusCancelled},
	StatusActive:    {StatusCompleted},
	StatusCompleted: {},
	StatusCancelled: {},
	StatusRejected:  {},
}

// AllStatuses lists every status in lifecycle order.
var AllStatuses = []Status{StatusPending, StatusConfirmed, StatusActive, StatusCompleted, StatusCancelled, StatusRejected}

func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := validTransitions[s]; !ok {
		return "", ErrInvalidStatus
	}
	return s, nil
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s Status) IsTerminal() bool {
	return len(validTransitions[s]) == 0
}

// HoldsApartment reports whether a booking in this status occupies its apartment.
func (s Status) HoldsApartment() bool {
	return s == StatusConfirmed || s == StatusActive
}
