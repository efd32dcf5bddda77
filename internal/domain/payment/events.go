package payment

import (
	"time"

	"vidaview/internal/domain/booking"
	"vidaview/internal/domain/shared/money"
	"vidaview/internal/domain/user"
)

type Created struct {
	PaymentID ID
	Code      string
	BookingID booking.ID
	Amount    money.Money
	Type      Type
	At        time.Time
}

func (e Created) EventName() string     { return "payment.created" }
func (e Created) AggregateID() string   { return string(e.PaymentID) }
func (e Created) OccurredAt() time.Time { return e.At }

type Confirmed struct {
	PaymentID   ID
	BookingID   booking.ID
	Amount      money.Money
	ConfirmedBy user.ID
	At          time.Time
}

func (e Confirmed) EventName() string     { return "payment.confirmed" }
func (e Confirmed) AggregateID() string   { return string(e.PaymentID) }
func (e Confirmed) OccurredAt() time.Time { return e.At }

type Failed struct {
	PaymentID ID
	BookingID booking.ID
	Reason    string
	At        time.Time
}

func (e Failed) EventName() string     { return "payment.failed" }
func (e Failed) AggregateID() string   { return string(e.PaymentID) }
func (e Failed) OccurredAt() time.Time { return e.At }

type Refunded struct {
	PaymentID ID
	BookingID booking.ID
	Amount    money.Money
	At        time.Time
}

func (e Refunded) EventName() string     { return "payment.refunded" }
func (e Refunded) AggregateID() string   { return string(e.PaymentID) }
func (e Refunded) OccurredAt() time.Time { return e.At }
