package apartment

import (
	"time"

	"vidaview/internal/domain/shared/money"
	"vidaview/internal/domain/user"
)

type Listed struct {
	ApartmentID ID
	OwnerID     user.ID
	MonthlyRent money.Money
	At          time.Time
}

func (e Listed) EventName() string     { return "apartment.listed" }
func (e Listed) AggregateID() string   { return string(e.ApartmentID) }
func (e Listed) OccurredAt() time.Time { return e.At }

type Repriced struct {
	ApartmentID ID
	MonthlyRent money.Money
	Deposit     money.Money
	At          time.Time
}

func (e Repriced) EventName() string     { return "apartment.repriced" }
func (e Repriced) AggregateID() string   { return string(e.ApartmentID) }
func (e Repriced) OccurredAt() time.Time { return e.At }
