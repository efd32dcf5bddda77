package reviews

import (
	"time"

	"vidaview/internal/domain/apartment"
	"vidaview/internal/domain/booking"
	"vidaview/internal/domain/user"
)

type Submitted struct {
	ReviewID    ID
	ApartmentID apartment.ID
	BookingID   booking.ID
	Rating      int
	At          time.Time
}

func (e Submitted) EventName() string     { return "review.submitted" }
func (e Submitted) AggregateID() string   { return string(e.ReviewID) }
func (e Submitted) OccurredAt() time.Time { return e.At }

type Approved struct {
	ReviewID    ID
	ApartmentID apartment.ID
	ApprovedBy  user.ID
	At          time.Time
}

func (e Approved) EventName() string     { return "review.approved" }
func (e Approved) AggregateID() string   { return string(e.ReviewID) }
func (e Approved) OccurredAt() time.Time { return e.At }

type Deleted struct {
	ReviewID    ID
	ApartmentID apartment.ID
	DeletedBy   user.ID
	At          time.Time
}

func (e Deleted) EventName() string     { return "review.deleted" }
func (e Deleted) AggregateID() string   { return string(e.ReviewID) }
func (e Deleted) OccurredAt() time.Time { return e.At }
