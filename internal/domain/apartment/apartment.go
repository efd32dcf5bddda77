package apartment

import (
	"context"
	"math"
	"strings"
	"time"

	"vidaview/internal/domain/shared/errs"
	"vidaview/internal/domain/shared/events"
	"vidaview/internal/domain/shared/money"
	"vidaview/internal/domain/user"
)

var (
	ErrNotFound             = errs.NotFound("apartment: not found")
	ErrTitleRequired        = errs.Validation("apartment: title is required")
	ErrOwnerRequired        = errs.Validation("apartment: owner is required")
	ErrInvalidRent          = errs.Validation("apartment: monthly rent must be positive")
	ErrInvalidDeposit       = errs.Validation("apartment: deposit must not be negative")
	ErrInvalidAvailability  = errs.Validation("apartment: unknown availability status")
	ErrNotAvailable         = errs.Conflict("apartment: not available")
	ErrAvailabilityConflict = errs.Conflict("apartment: availability changed concurrently")
	ErrConcurrentUpdate     = errs.Conflict("apartment: concurrent update detected")
)

type ID string

type Availability string

const (
	Available Availability = "available"
	Occupied  Availability = "occupied"
)

func ParseAvailability(raw string) (Availability, error) {
	switch Availability(strings.ToLower(strings.TrimSpace(raw))) {
	case Available:
		return Available, nil
	case Occupied:
		return Occupied, nil
	default:
		return "", ErrInvalidAvailability
	}
}

type Apartment struct {
	ID           ID
	OwnerID      user.ID
	Title        string
	Address      string
	City         string
	MonthlyRent  money.Money
	Deposit      money.Money
	Availability Availability
	AvgRating    float64
	ReviewCount  int
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Version      int64
	events.EventRecorder
}

// Filter narrows List; zero values match everything.
type Filter struct {
	OwnerID      user.ID
	Availability Availability
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*Apartment, error)
	List(ctx context.Context, filter Filter) ([]*Apartment, error)
	Save(ctx context.Context, apartment *Apartment) error
	// SetAvailability stores next only if the current value equals expect,
	// otherwise it returns ErrAvailabilityConflict.
	SetAvailability(ctx context.Context, id ID, expect, next Availability) error
}

type CreateParams struct {
	ID          ID
	OwnerID     user.ID
	Title       string
	Address     string
	City        string
	MonthlyRent money.Money
	Deposit     money.Money
	Now         time.Time
}

func New(params CreateParams) (*Apartment, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, errs.Validation("apartment: id is required")
	}
	if strings.TrimSpace(string(params.OwnerID)) == "" {
		return nil, ErrOwnerRequired
	}
	title := strings.TrimSpace(params.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if err := validatePricing(params.MonthlyRent, params.Deposit); err != nil {
		return nil, err
	}
	now := params.Now.UTC()
	a := &Apartment{
		ID:           params.ID,
		OwnerID:      params.OwnerID,
		Title:        title,
		Address:      strings.TrimSpace(params.Address),
		City:         strings.TrimSpace(params.City),
		MonthlyRent:  params.MonthlyRent,
		Deposit:      params.Deposit,
		Availability: Available,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	a.Record(Listed{ApartmentID: a.ID, OwnerID: a.OwnerID, MonthlyRent: a.MonthlyRent, At: now})
	return a, nil
}

func (a *Apartment) OwnedBy(id user.ID) bool {
	return a.OwnerID == id
}

func (a *Apartment) IsAvailable() bool {
	return a.Availability == Available
}

// Reprice changes pricing for future bookings only; existing bookings keep their snapshot.
func (a *Apartment) Reprice(rent, deposit money.Money, now time.Time) error {
	if err := validatePricing(rent, deposit); err != nil {
		return err
	}
	a.MonthlyRent = rent
	a.Deposit = deposit
	a.UpdatedAt = now.UTC()
	a.Record(Repriced{ApartmentID: a.ID, MonthlyRent: rent, Deposit: deposit, At: a.UpdatedAt})
	return nil
}

// UpdateRating stores the aggregate of approved reviews, rounded to two decimals.
func (a *Apartment) UpdateRating(ratings []int, now time.Time) {
	a.AvgRating = MeanRating(ratings)
	a.ReviewCount = len(ratings)
	a.UpdatedAt = now.UTC()
}

// MeanRating is the arithmetic mean rounded to two decimals, zero for no ratings.
func MeanRating(ratings []int) float64 {
	if len(ratings) == 0 {
		return 0
	}
	total := 0
	for _, r := range ratings {
		total += r
	}
	return math.Round(float64(total)/float64(len(ratings))*100) / 100
}

func validatePricing(rent, deposit money.Money) error {
	if rent.Amount <= 0 {
		return ErrInvalidRent
	}
	if deposit.Amount < 0 {
		return ErrInvalidDeposit
	}
	if deposit.Currency != "" && deposit.Currency != rent.Currency {
		return money.ErrCurrencyMismatch
	}
	return nil
}
