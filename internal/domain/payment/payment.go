package payment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"vidaview/internal/domain/booking"
	"vidaview/internal/domain/shared/errs"
	"vidaview/internal/domain/shared/events"
	"vidaview/internal/domain/shared/money"
	"vidaview/internal/domain/user"
)

var (
	ErrNotFound          = errs.NotFound("payment: not found")
	ErrInvalidTransition = errs.InvalidTransition("payment: invalid status transition")
	ErrInvalidAmount     = errs.Validation("payment: amount must be positive")
	ErrInvalidType       = errs.Validation("payment: unknown payment type")
	ErrInvalidMethod     = errs.Validation("payment: unknown payment method")
	ErrInvalidStatus     = errs.Validation("payment: unknown payment status")
	ErrBookingRequired   = errs.Validation("payment: booking is required")
	ErrDuplicateCode     = errs.Conflict("payment: duplicate payment code")
	ErrConcurrentUpdate  = errs.Conflict("payment: concurrent update detected")
)

type ID string

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusRefunded  Status = "refunded"
)

type Type string

const (
	TypeDeposit     Type = "deposit"
	TypeMonthlyRent Type = "monthly_rent"
	TypePenalty     Type = "penalty"
	TypeRefund      Type = "refund"
	TypeUtility     Type = "utility"
)

type Method string

const (
	MethodBankTransfer Method = "bank_transfer"
	MethodCreditCard   Method = "credit_card"
	MethodEWallet      Method = "e_wallet"
	MethodCash         Method = "cash"
)

func ParseStatus(raw string) (Status, error) {
	switch s := Status(strings.ToLower(strings.TrimSpace(raw))); s {
	case StatusPending, StatusCompleted, StatusFailed, StatusRefunded:
		return s, nil
	default:
		return "", ErrInvalidStatus
	}
}

// ParseType defaults to monthly rent when raw is empty.
func ParseType(raw string) (Type, error) {
	switch t := Type(strings.ToLower(strings.TrimSpace(raw))); t {
	case "":
		return TypeMonthlyRent, nil
	case TypeDeposit, TypeMonthlyRent, TypePenalty, TypeRefund, TypeUtility:
		return t, nil
	default:
		return "", ErrInvalidType
	}
}

// ParseMethod accepts an empty method; it is optional on creation.
func ParseMethod(raw string) (Method, error) {
	switch m := Method(strings.ToLower(strings.TrimSpace(raw))); m {
	case "", MethodBankTransfer, MethodCreditCard, MethodEWallet, MethodCash:
		return m, nil
	default:
		return "", ErrInvalidMethod
	}
}

type Payment struct {
	ID            ID
	Code          string
	BookingID     booking.ID
	Amount        money.Money
	Type          Type
	Method        Method
	Status        Status
	TransactionID string
	DueDate       time.Time
	PaymentDate   time.Time
	ConfirmedBy   user.ID
	FailureReason string
	Notes         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Version       int64
	events.EventRecorder
}

// Filter narrows List. A nil BookingIDs matches any booking while an empty
// non-nil slice matches none.
type Filter struct {
	BookingIDs []booking.ID
	Statuses   []Status
}

func (f Filter) Matches(p *Payment) bool {
	if f.BookingIDs != nil {
		found := false
		for _, id := range f.BookingIDs {
			if id == p.BookingID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(f.Statuses) > 0 {
		for _, s := range f.Statuses {
			if s == p.Status {
				return true
			}
		}
		return false
	}
	return true
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*Payment, error)
	// Create inserts a new payment and returns ErrDuplicateCode when the code is taken.
	Create(ctx context.Context, payment *Payment) error
	Save(ctx context.Context, payment *Payment) error
	List(ctx context.Context, filter Filter) ([]*Payment, error)
}

type CreateParams struct {
	ID        ID
	Code      string
	BookingID booking.ID
	Amount    money.Money
	Type      Type
	Method    Method
	DueDate   time.Time
	Notes     string
	Now       time.Time
}

func New(params CreateParams) (*Payment, error) {
	if strings.TrimSpace(string(params.BookingID)) == "" {
		return nil, ErrBookingRequired
	}
	if strings.TrimSpace(params.Code) == "" {
		return nil, errs.Validation("payment: code is required")
	}
	if params.Amount.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	typ := params.Type
	if typ == "" {
		typ = TypeMonthlyRent
	}
	now := params.Now.UTC()
	p := &Payment{
		ID:        params.ID,
		Code:      params.Code,
		BookingID: params.BookingID,
		Amount:    params.Amount,
		Type:      typ,
		Method:    params.Method,
		Status:    StatusPending,
		DueDate:   params.DueDate,
		Notes:     strings.TrimSpace(params.Notes),
		CreatedAt: now,
		UpdatedAt: now,
	}
	p.Record(Created{PaymentID: p.ID, Code: p.Code, BookingID: p.BookingID, Amount: p.Amount, Type: p.Type, At: now})
	return p, nil
}

// Confirm completes the payment and stamps the payment date.
func (p *Payment) Confirm(actor user.ID, transactionID string, now time.Time) error {
	if p.Status != StatusPending {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, p.Status, StatusCompleted)
	}
	now = now.UTC()
	p.Status = StatusCompleted
	p.PaymentDate = now
	p.ConfirmedBy = actor
	if tx := strings.TrimSpace(transactionID); tx != "" {
		p.TransactionID = tx
	}
	p.UpdatedAt = now
	p.Record(Confirmed{PaymentID: p.ID, BookingID: p.BookingID, Amount: p.Amount, ConfirmedBy: actor, At: now})
	return nil
}

func (p *Payment) Fail(actor user.ID, reason string, now time.Time) error {
	if p.Status != StatusPending {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, p.Status, StatusFailed)
	}
	p.Status = StatusFailed
	p.FailureReason = strings.TrimSpace(reason)
	p.ConfirmedBy = actor
	p.UpdatedAt = now.UTC()
	p.Record(Failed{PaymentID: p.ID, BookingID: p.BookingID, Reason: p.FailureReason, At: p.UpdatedAt})
	return nil
}

func (p *Payment) Refund(now time.Time) error {
	if p.Status != StatusCompleted {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, p.Status, StatusRefunded)
	}
	p.Status = StatusRefunded
	p.UpdatedAt = now.UTC()
	p.Record(Refunded{PaymentID: p.ID, BookingID: p.BookingID, Amount: p.Amount, At: p.UpdatedAt})
	return nil
}

// PaidIn reports whether a completed payment falls into the given calendar month.
func (p *Payment) PaidIn(year int, month time.Month) bool {
	if p.Status != StatusCompleted || p.PaymentDate.IsZero() {
		return false
	}
	d := p.PaymentDate.UTC()
	return d.Year() == year && d.Month() == month
}
