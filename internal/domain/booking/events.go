package booking

import (
	"time"

	"vidaview/internal/domain/apartment"
	"vidaview/internal/domain/shared/money"
	"vidaview/internal/domain/user"
)

type Requested struct {
	BookingID   ID
	Code        string
	ApartmentID apartment.ID
	TenantID    user.ID
	Total       money.Money
	At          time.Time
}

func (e Requested) EventName() string     { return "booking.requested" }
func (e Requested) AggregateID() string   { return string(e.BookingID) }
func (e Requested) OccurredAt() time.Time { return e.At }

type Approved struct {
	BookingID   ID
	ApartmentID apartment.ID
	ApprovedBy  user.ID
	At          time.Time
}

func (e Approved) EventName() string     { return "booking.approved" }
func (e Approved) AggregateID() string   { return string(e.BookingID) }
func (e Approved) OccurredAt() time.Time { return e.At }

type Rejected struct {
	BookingID  ID
	Reason     string
	RejectedBy user.ID
	At         time.Time
}

func (e Rejected) EventName() string     { return "booking.rejected" }
func (e Rejected) AggregateID() string   { return string(e.BookingID) }
func (e Rejected) OccurredAt() time.Time { return e.At }

type Cancelled struct {
	BookingID      ID
	ApartmentID    apartment.ID
	PreviousStatus Status
	At             time.Time
}

func (e Cancelled) EventName() string     { return "booking.cancelled" }
func (e Cancelled) AggregateID() string   { return string(e.BookingID) }
func (e Cancelled) OccurredAt() time.Time { return e.At }

type Activated struct {
	BookingID ID
	At        time.Time
}

func (e Activated) EventName() string     { return "booking.activated" }
func (e Activated) AggregateID() string   { return string(e.BookingID) }
func (e Activated) OccurredAt() time.Time { return e.At }

type Completed struct {
	BookingID   ID
	ApartmentID apartment.ID
	At          time.Time
}

func (e Completed) EventName() string     { return "booking.completed" }
func (e Completed) AggregateID() string   { return string(e.BookingID) }
func (e Completed) OccurredAt() time.Time { return e.At }
