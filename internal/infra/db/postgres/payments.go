package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	domainbooking "vidaview/internal/domain/booking"
	domainpayment "vidaview/internal/domain/payment"
	"vidaview/internal/domain/shared/money"
	domainuser "vidaview/internal/domain/user"
)

const paymentColumns = `id, code, booking_id, amount, currency, payment_type, method, status, transaction_id,
	due_date, payment_date, confirmed_by, failure_reason, notes, created_at, updated_at, version`

type PaymentRepository struct {
	db   querier
	lock bool
}

func NewPaymentRepository(db querier) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) ByID(ctx context.Context, id domainpayment.ID) (*domainpayment.Payment, error) {
	var row paymentRow
	err := r.db.QueryRowxContext(ctx, "SELECT "+paymentColumns+" FROM payments WHERE id = $1"+lockClause(r.lock), string(id)).StructScan(&row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domainpayment.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.toAggregate(), nil
}

func (r *PaymentRepository) Create(ctx context.Context, p *domainpayment.Payment) error {
	row := newPaymentRow(p)
	row.Version = 1
	err := insertWithSavepoint(ctx, r.db, "payment_insert", func() error {
		_, err := sqlx.NamedExecContext(ctx, r.db, `INSERT INTO payments (`+paymentColumns+`)
			VALUES (:id, :code, :booking_id, :amount, :currency, :payment_type, :method, :status, :transaction_id,
			:due_date, :payment_date, :confirmed_by, :failure_reason, :notes, :created_at, :updated_at, :version)`, row)
		return err
	})
	switch {
	case isUniqueViolation(err, "payments_code_key"):
		return domainpayment.ErrDuplicateCode
	case isUniqueViolation(err, ""):
		return domainpayment.ErrConcurrentUpdate
	case err != nil:
		return err
	}
	p.Version = 1
	return nil
}

func (r *PaymentRepository) Save(ctx context.Context, p *domainpayment.Payment) error {
	row := newPaymentRow(p)
	res, err := sqlx.NamedExecContext(ctx, r.db, `UPDATE payments SET status = :status,
		transaction_id = :transaction_id, payment_date = :payment_date, confirmed_by = :confirmed_by,
		failure_reason = :failure_reason, notes = :notes, updated_at = :updated_at, version = version + 1
		WHERE id = :id AND version = :version`, row)
	if err != nil {
		return err
	}
	n, err := affected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		found, err := exists(ctx, r.db, "payments", row.ID)
		if err != nil {
			return err
		}
		if !found {
			return domainpayment.ErrNotFound
		}
		return domainpayment.ErrConcurrentUpdate
	}
	p.Version++
	return nil
}

func (r *PaymentRepository) List(ctx context.Context, filter domainpayment.Filter) ([]*domainpayment.Payment, error) {
	if filter.BookingIDs != nil && len(filter.BookingIDs) == 0 {
		return []*domainpayment.Payment{}, nil
	}
	var (
		where []string
		args  []any
	)
	if filter.BookingIDs != nil {
		where = append(where, "booking_id IN (?)")
		args = append(args, toStrings(filter.BookingIDs))
	}
	if len(filter.Statuses) > 0 {
		where = append(where, "status IN (?)")
		args = append(args, toStrings(filter.Statuses))
	}
	query := "SELECT " + paymentColumns + " FROM payments"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at"

	q, qargs, err := inQuery(r.db, query, args...)
	if err != nil {
		return nil, err
	}
	var rows []paymentRow
	if err := sqlxSelect(ctx, r.db, &rows, q, qargs...); err != nil {
		return nil, err
	}
	out := make([]*domainpayment.Payment, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toAggregate())
	}
	return out, nil
}

type paymentRow struct {
	ID            string       `db:"id"`
	Code          string       `db:"code"`
	BookingID     string       `db:"booking_id"`
	Amount        int64        `db:"amount"`
	Currency      string       `db:"currency"`
	Type          string       `db:"payment_type"`
	Method        string       `db:"method"`
	Status        string       `db:"status"`
	TransactionID string       `db:"transaction_id"`
	DueDate       sql.NullTime `db:"due_date"`
	PaymentDate   sql.NullTime `db:"payment_date"`
	ConfirmedBy   string       `db:"confirmed_by"`
	FailureReason string       `db:"failure_reason"`
	Notes         string       `db:"notes"`
	CreatedAt     time.Time    `db:"created_at"`
	UpdatedAt     time.Time    `db:"updated_at"`
	Version       int64        `db:"version"`
}

func newPaymentRow(p *domainpayment.Payment) paymentRow {
	return paymentRow{
		ID:            string(p.ID),
		Code:          p.Code,
		BookingID:     string(p.BookingID),
		Amount:        p.Amount.Amount,
		Currency:      p.Amount.Currency,
		Type:          string(p.Type),
		Method:        string(p.Method),
		Status:        string(p.Status),
		TransactionID: p.TransactionID,
		DueDate:       nullTime(p.DueDate),
		PaymentDate:   nullTime(p.PaymentDate),
		ConfirmedBy:   string(p.ConfirmedBy),
		FailureReason: p.FailureReason,
		Notes:         p.Notes,
		CreatedAt:     p.CreatedAt.UTC(),
		UpdatedAt:     p.UpdatedAt.UTC(),
		Version:       p.Version,
	}
}

func (r paymentRow) toAggregate() *domainpayment.Payment {
	return &domainpayment.Payment{
		ID:            domainpayment.ID(r.ID),
		Code:          r.Code,
		BookingID:     domainbooking.ID(r.BookingID),
		Amount:        money.Money{Amount: r.Amount, Currency: r.Currency},
		Type:          domainpayment.Type(r.Type),
		Method:        domainpayment.Method(r.Method),
		Status:        domainpayment.Status(r.Status),
		TransactionID: r.TransactionID,
		DueDate:       fromNullTime(r.DueDate),
		PaymentDate:   fromNullTime(r.PaymentDate),
		ConfirmedBy:   domainuser.ID(r.ConfirmedBy),
		FailureReason: r.FailureReason,
		Notes:         r.Notes,
		CreatedAt:     r.CreatedAt.UTC(),
		UpdatedAt:     r.UpdatedAt.UTC(),
		Version:       r.Version,
	}
}

var _ domainpayment.Repository = (*PaymentRepository)(nil)
