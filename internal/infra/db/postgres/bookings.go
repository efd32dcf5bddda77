package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	domainapartment "vidaview/internal/domain/apartment"
	domainbooking "vidaview/internal/domain/booking"
	"vidaview/internal/domain/shared/daterange"
	"vidaview/internal/domain/shared/money"
	domainuser "vidaview/internal/domain/user"
)

const bookingColumns = `id, code, apartment_id, tenant_id, start_date, end_date, total_months, currency,
	monthly_rent, deposit_paid, utility_deposit, admin_fee, total_amount, status, rejection_reason,
	approved_by, approved_at, notes, created_at, updated_at, version`

type BookingRepository struct {
	db   querier
	lock bool
}

func NewBookingRepository(db querier) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.ID) (*domainbooking.Booking, error) {
	var row bookingRow
	err := r.db.QueryRowxContext(ctx, "SELECT "+bookingColumns+" FROM bookings WHERE id = $1"+lockClause(r.lock), string(id)).StructScan(&row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domainbooking.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.toAggregate(), nil
}

func (r *BookingRepository) Create(ctx context.Context, b *domainbooking.Booking) error {
	row := newBookingRow(b)
	row.Version = 1
	err := insertWithSavepoint(ctx, r.db, "booking_insert", func() error {
		_, err := sqlx.NamedExecContext(ctx, r.db, `INSERT INTO bookings (`+bookingColumns+`)
			VALUES (:id, :code, :apartment_id, :tenant_id, :start_date, :end_date, :total_months, :currency,
			:monthly_rent, :deposit_paid, :utility_deposit, :admin_fee, :total_amount, :status, :rejection_reason,
			:approved_by, :approved_at, :notes, :created_at, :updated_at, :version)`, row)
		return err
	})
	switch {
	case isUniqueViolation(err, "bookings_code_key"):
		return domainbooking.ErrDuplicateCode
	case isUniqueViolation(err, ""):
		return domainbooking.ErrConcurrentUpdate
	case err != nil:
		return err
	}
	b.Version = 1
	return nil
}

func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	row := newBookingRow(b)
	res, err := sqlx.NamedExecContext(ctx, r.db, `UPDATE bookings SET status = :status,
		rejection_reason = :rejection_reason, approved_by = :approved_by, approved_at = :approved_at,
		notes = :notes, updated_at = :updated_at, version = version + 1
		WHERE id = :id AND version = :version`, row)
	if err != nil {
		return err
	}
	n, err := affected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		found, err := exists(ctx, r.db, "bookings", row.ID)
		if err != nil {
			return err
		}
		if !found {
			return domainbooking.ErrNotFound
		}
		return domainbooking.ErrConcurrentUpdate
	}
	b.Version++
	return nil
}

func (r *BookingRepository) List(ctx context.Context, filter domainbooking.Filter) ([]*domainbooking.Booking, error) {
	if filter.ApartmentIDs != nil && len(filter.ApartmentIDs) == 0 {
		return []*domainbooking.Booking{}, nil
	}
	var (
		where []string
		args  []any
	)
	if filter.TenantID != "" {
		where = append(where, "tenant_id = ?")
		args = append(args, string(filter.TenantID))
	}
	if filter.ApartmentIDs != nil {
		where = append(where, "apartment_id IN (?)")
		args = append(args, toStrings(filter.ApartmentIDs))
	}
	if len(filter.Statuses) > 0 {
		where = append(where, "status IN (?)")
		args = append(args, toStrings(filter.Statuses))
	}
	query := "SELECT " + bookingColumns + " FROM bookings"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at"

	q, qargs, err := inQuery(r.db, query, args...)
	if err != nil {
		return nil, err
	}
	var rows []bookingRow
	if err := sqlxSelect(ctx, r.db, &rows, q, qargs...); err != nil {
		return nil, err
	}
	out := make([]*domainbooking.Booking, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toAggregate())
	}
	return out, nil
}

type bookingRow struct {
	ID              string       `db:"id"`
	Code            string       `db:"code"`
	ApartmentID     string       `db:"apartment_id"`
	TenantID        string       `db:"tenant_id"`
	StartDate       time.Time    `db:"start_date"`
	EndDate         time.Time    `db:"end_date"`
	TotalMonths     int          `db:"total_months"`
	Currency        string       `db:"currency"`
	MonthlyRent     int64        `db:"monthly_rent"`
	DepositPaid     int64        `db:"deposit_paid"`
	UtilityDeposit  int64        `db:"utility_deposit"`
	AdminFee        int64        `db:"admin_fee"`
	TotalAmount     int64        `db:"total_amount"`
	Status          string       `db:"status"`
	RejectionReason string       `db:"rejection_reason"`
	ApprovedBy      string       `db:"approved_by"`
	ApprovedAt      sql.NullTime `db:"approved_at"`
	Notes           string       `db:"notes"`
	CreatedAt       time.Time    `db:"created_at"`
	UpdatedAt       time.Time    `db:"updated_at"`
	Version         int64        `db:"version"`
}

func newBookingRow(b *domainbooking.Booking) bookingRow {
	return bookingRow{
		ID:              string(b.ID),
		Code:            b.Code,
		ApartmentID:     string(b.ApartmentID),
		TenantID:        string(b.TenantID),
		StartDate:       b.Term.Start.UTC(),
		EndDate:         b.Term.End.UTC(),
		TotalMonths:     b.TotalMonths,
		Currency:        b.Amounts.Total.Currency,
		MonthlyRent:     b.Amounts.MonthlyRent.Amount,
		DepositPaid:     b.Amounts.DepositPaid.Amount,
		UtilityDeposit:  b.Amounts.UtilityDeposit.Amount,
		AdminFee:        b.Amounts.AdminFee.Amount,
		TotalAmount:     b.Amounts.Total.Amount,
		Status:          string(b.Status),
		RejectionReason: b.RejectionReason,
		ApprovedBy:      string(b.ApprovedBy),
		ApprovedAt:      nullTime(b.ApprovedAt),
		Notes:           b.Notes,
		CreatedAt:       b.CreatedAt.UTC(),
		UpdatedAt:       b.UpdatedAt.UTC(),
		Version:         b.Version,
	}
}

func (r bookingRow) toAggregate() *domainbooking.Booking {
	m := func(amount int64) money.Money { return money.Money{Amount: amount, Currency: r.Currency} }
	return &domainbooking.Booking{
		ID:          domainbooking.ID(r.ID),
		Code:        r.Code,
		ApartmentID: domainapartment.ID(r.ApartmentID),
		TenantID:    domainuser.ID(r.TenantID),
		Term:        daterange.DateRange{Start: r.StartDate.UTC(), End: r.EndDate.UTC()},
		TotalMonths: r.TotalMonths,
		Amounts: domainbooking.Amounts{
			MonthlyRent:    m(r.MonthlyRent),
			DepositPaid:    m(r.DepositPaid),
			UtilityDeposit: m(r.UtilityDeposit),
			AdminFee:       m(r.AdminFee),
			Total:          m(r.TotalAmount),
		},
		Status:          domainbooking.Status(r.Status),
		RejectionReason: r.RejectionReason,
		ApprovedBy:      domainuser.ID(r.ApprovedBy),
		ApprovedAt:      fromNullTime(r.ApprovedAt),
		Notes:           r.Notes,
		CreatedAt:       r.CreatedAt.UTC(),
		UpdatedAt:       r.UpdatedAt.UTC(),
		Version:         r.Version,
	}
}

var _ domainbooking.Repository = (*BookingRepository)(nil)
