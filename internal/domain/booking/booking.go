package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"vidaview/internal/domain/apartment"
	"vidaview/internal/domain/shared/daterange"
	"vidaview/internal/domain/shared/errs"
	"vidaview/internal/domain/shared/events"
	"vidaview/internal/domain/shared/money"
	"vidaview/internal/domain/user"
)

// DefaultRejectionReason is stored when an owner rejects without a reason.
const DefaultRejectionReason = "No reason provided"

var (
	ErrNotFound          = errs.NotFound("booking: not found")
	ErrInvalidTransition = errs.InvalidTransition("booking: invalid state transition")
	ErrInvalidStatus     = errs.Validation("booking: unknown status")
	ErrInvalidMonths     = errs.Validation("booking: total months must be at least 1")
	ErrTenantRequired    = errs.Validation("booking: tenant is required")
	ErrCodeRequired      = errs.Validation("booking: code is required")
	ErrDuplicateCode     = errs.Conflict("booking: duplicate booking code")
	ErrConcurrentUpdate  = errs.Conflict("booking: concurrent update detected")
)

type ID string

// Amounts is the pricing snapshot taken when the booking is created.
type Amounts struct {
	MonthlyRent    money.Money
	DepositPaid    money.Money
	UtilityDeposit money.Money
	AdminFee       money.Money
	Total          money.Money
}

// ComputeAmounts returns rent×months + deposit + utility deposit + admin fee.
func ComputeAmounts(rent, deposit, utility, adminFee money.Money, months int) (Amounts, error) {
	if months < 1 {
		return Amounts{}, ErrInvalidMonths
	}
	for _, m := range []money.Money{deposit, utility, adminFee} {
		if m.Amount < 0 {
			return Amounts{}, money.ErrNegativeAmount
		}
	}
	total, err := money.Sum(rent.Currency, rent.Multiply(int64(months)), deposit, utility, adminFee)
	if err != nil {
		return Amounts{}, err
	}
	return Amounts{
		MonthlyRent:    rent,
		DepositPaid:    deposit,
		UtilityDeposit: utility,
		AdminFee:       adminFee,
		Total:          total,
	}, nil
}

type Booking struct {
	ID              ID
	Code            string
	ApartmentID     apartment.ID
	TenantID        user.ID
	Term            daterange.DateRange
	TotalMonths     int
	Amounts         Amounts
	Status          Status
	RejectionReason string
	ApprovedBy      user.ID
	ApprovedAt      time.Time
	Notes           string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Version         int64
	events.EventRecorder
}

// Filter narrows List. A nil ApartmentIDs matches any apartment while an
// empty non-nil slice matches none.
type Filter struct {
	TenantID     user.ID
	ApartmentIDs []apartment.ID
	Statuses     []Status
}

func (f Filter) Matches(b *Booking) bool {
	if f.TenantID != "" && b.TenantID != f.TenantID {
		return false
	}
	if f.ApartmentIDs != nil && !containsApartment(f.ApartmentIDs, b.ApartmentID) {
		return false
	}
	if len(f.Statuses) > 0 && !containsStatus(f.Statuses, b.Status) {
		return false
	}
	return true
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*Booking, error)
	// Create inserts a new booking and returns ErrDuplicateCode when the code is taken.
	Create(ctx context.Context, booking *Booking) error
	Save(ctx context.Context, booking *Booking) error
	List(ctx context.Context, filter Filter) ([]*Booking, error)
}

type CreateParams struct {
	ID             ID
	Code           string
	Apartment      *apartment.Apartment
	TenantID       user.ID
	Term           daterange.DateRange
	TotalMonths    int
	UtilityDeposit int64
	AdminFee       int64
	Notes          string
	Now            time.Time
}

func New(params CreateParams) (*Booking, error) {
	if strings.TrimSpace(string(params.TenantID)) == "" {
		return nil, ErrTenantRequired
	}
	if strings.TrimSpace(params.Code) == "" {
		return nil, ErrCodeRequired
	}
	if params.Apartment == nil {
		return nil, apartment.ErrNotFound
	}
	if err := params.Term.Validate(); err != nil {
		return nil, err
	}
	months := params.TotalMonths
	if months == 0 {
		months = params.Term.Months()
	}
	currency := params.Apartment.MonthlyRent.Currency
	amounts, err := ComputeAmounts(
		params.Apartment.MonthlyRent,
		params.Apartment.Deposit,
		money.Money{Amount: params.UtilityDeposit, Currency: currency},
		money.Money{Amount: params.AdminFee, Currency: currency},
		months,
	)
	if err != nil {
		return nil, err
	}
	now := params.Now.UTC()
	b := &Booking{
		ID:          params.ID,
		Code:        params.Code,
		ApartmentID: params.Apartment.ID,
		TenantID:    params.TenantID,
		Term:        params.Term,
		TotalMonths: months,
		Amounts:     amounts,
		Status:      StatusPending,
		Notes:       strings.TrimSpace(params.Notes),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	b.Record(Requested{BookingID: b.ID, Code: b.Code, ApartmentID: b.ApartmentID, TenantID: b.TenantID, Total: amounts.Total, At: now})
	return b, nil
}

func (b *Booking) Approve(actor user.ID, now time.Time) error {
	if err := b.transition(StatusConfirmed, now); err != nil {
		return err
	}
	b.ApprovedBy = actor
	b.ApprovedAt = b.UpdatedAt
	b.Record(Approved{BookingID: b.ID, ApartmentID: b.ApartmentID, ApprovedBy: actor, At: b.UpdatedAt})
	return nil
}

func (b *Booking) Reject(actor user.ID, reason string, now time.Time) error {
	if err := b.transition(StatusRejected, now); err != nil {
		return err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = DefaultRejectionReason
	}
	b.RejectionReason = reason
	b.ApprovedBy = actor
	b.ApprovedAt = b.UpdatedAt
	b.Record(Rejected{BookingID: b.ID, Reason: reason, RejectedBy: actor, At: b.UpdatedAt})
	return nil
}

// Cancel moves the booking to cancelled and returns the status it had before,
// which decides whether the apartment must be released.
func (b *Booking) Cancel(now time.Time) (Status, error) {
	previous := b.Status
	if err := b.transition(StatusCancelled, now); err != nil {
		return previous, err
	}
	b.Record(Cancelled{BookingID: b.ID, ApartmentID: b.ApartmentID, PreviousStatus: previous, At: b.UpdatedAt})
	return previous, nil
}

func (b *Booking) Activate(now time.Time) error {
	if err := b.transition(StatusActive, now); err != nil {
		return err
	}
	b.Record(Activated{BookingID: b.ID, At: b.UpdatedAt})
	return nil
}

func (b *Booking) Complete(now time.Time) error {
	if err := b.transition(StatusCompleted, now); err != nil {
		return err
	}
	b.Record(Completed{BookingID: b.ID, ApartmentID: b.ApartmentID, At: b.UpdatedAt})
	return nil
}

func (b *Booking) transition(next Status, now time.Time) error {
	if !b.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, b.Status, next)
	}
	b.Status = next
	b.UpdatedAt = now.UTC()
	return nil
}

func containsApartment(ids []apartment.ID, id apartment.ID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func containsStatus(statuses []Status, s Status) bool {
	for _, v := range statuses {
		if v == s {
			return true
		}
	}
	return false
}
