package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	domainapartment "vidaview/internal/domain/apartment"
	"vidaview/internal/domain/shared/money"
	domainuser "vidaview/internal/domain/user"
)

const apartmentColumns = `id, owner_id, title, address, city, rent_amount, deposit_amount, currency,
	availability, avg_rating, review_count, created_at, updated_at, version`

type ApartmentRepository struct {
	db   querier
	lock bool
}

func NewApartmentRepository(db querier) *ApartmentRepository {
	return &ApartmentRepository{db: db}
}

func (r *ApartmentRepository) ByID(ctx context.Context, id domainapartment.ID) (*domainapartment.Apartment, error) {
	var row apartmentRow
	err := r.db.QueryRowxContext(ctx, "SELECT "+apartmentColumns+" FROM apartments WHERE id = $1"+lockClause(r.lock), string(id)).StructScan(&row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domainapartment.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.toAggregate(), nil
}

func (r *ApartmentRepository) List(ctx context.Context, filter domainapartment.Filter) ([]*domainapartment.Apartment, error) {
	query := "SELECT " + apartmentColumns + " FROM apartments WHERE ($1::text = '' OR owner_id = $1) AND ($2::text = '' OR availability = $2) ORDER BY created_at"
	var rows []apartmentRow
	if err := sqlxSelect(ctx, r.db, &rows, query, string(filter.OwnerID), string(filter.Availability)); err != nil {
		return nil, err
	}
	out := make([]*domainapartment.Apartment, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toAggregate())
	}
	return out, nil
}

// Save inserts a new apartment or updates an existing one under a version
// check. Availability is left to SetAvailability on update.
func (r *ApartmentRepository) Save(ctx context.Context, apt *domainapartment.Apartment) error {
	row := newApartmentRow(apt)
	if apt.Version == 0 {
		_, err := sqlx.NamedExecContext(ctx, r.db, `INSERT INTO apartments (`+apartmentColumns+`)
			VALUES (:id, :owner_id, :title, :address, :city, :rent_amount, :deposit_amount, :currency,
			:availability, :avg_rating, :review_count, :created_at, :updated_at, 1)`, row)
		if isUniqueViolation(err, "") {
			return domainapartment.ErrConcurrentUpdate
		}
		if err != nil {
			return err
		}
		apt.Version = 1
		return nil
	}
	res, err := sqlx.NamedExecContext(ctx, r.db, `UPDATE apartments SET owner_id = :owner_id, title = :title,
		address = :address, city = :city, rent_amount = :rent_amount, deposit_amount = :deposit_amount,
		currency = :currency, avg_rating = :avg_rating, review_count = :review_count,
		updated_at = :updated_at, version = version + 1
		WHERE id = :id AND version = :version`, row)
	if err != nil {
		return err
	}
	if err := r.checkUpdated(ctx, res, row.ID, domainapartment.ErrConcurrentUpdate); err != nil {
		return err
	}
	apt.Version++
	return nil
}

func (r *ApartmentRepository) SetAvailability(ctx context.Context, id domainapartment.ID, expect, next domainapartment.Availability) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE apartments SET availability = $3 WHERE id = $1 AND availability = $2",
		string(id), string(expect), string(next))
	if err != nil {
		return err
	}
	return r.checkUpdated(ctx, res, string(id), domainapartment.ErrAvailabilityConflict)
}

func (r *ApartmentRepository) checkUpdated(ctx context.Context, res sql.Result, id string, conflict error) error {
	n, err := affected(res)
	if err != nil || n > 0 {
		return err
	}
	found, err := exists(ctx, r.db, "apartments", id)
	if err != nil {
		return err
	}
	if !found {
		return domainapartment.ErrNotFound
	}
	return conflict
}

type apartmentRow struct {
	ID            string    `db:"id"`
	OwnerID       string    `db:"owner_id"`
	Title         string    `db:"title"`
	Address       string    `db:"address"`
	City          string    `db:"city"`
	RentAmount    int64     `db:"rent_amount"`
	DepositAmount int64     `db:"deposit_amount"`
	Currency      string    `db:"currency"`
	Availability  string    `db:"availability"`
	AvgRating     float64   `db:"avg_rating"`
	ReviewCount   int       `db:"review_count"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
	Version       int64     `db:"version"`
}

func newApartmentRow(a *domainapartment.Apartment) apartmentRow {
	return apartmentRow{
		ID:            string(a.ID),
		OwnerID:       string(a.OwnerID),
		Title:         a.Title,
		Address:       a.Address,
		City:          a.City,
		RentAmount:    a.MonthlyRent.Amount,
		DepositAmount: a.Deposit.Amount,
		Currency:      a.MonthlyRent.Currency,
		Availability:  string(a.Availability),
		AvgRating:     a.AvgRating,
		ReviewCount:   a.ReviewCount,
		CreatedAt:     a.CreatedAt.UTC(),
		UpdatedAt:     a.UpdatedAt.UTC(),
		Version:       a.Version,
	}
}

func (r apartmentRow) toAggregate() *domainapartment.Apartment {
	return &domainapartment.Apartment{
		ID:           domainapartment.ID(r.ID),
		OwnerID:      domainuser.ID(r.OwnerID),
		Title:        r.Title,
		Address:      r.Address,
		City:         r.City,
		MonthlyRent:  money.Money{Amount: r.RentAmount, Currency: r.Currency},
		Deposit:      money.Money{Amount: r.DepositAmount, Currency: r.Currency},
		Availability: domainapartment.Availability(r.Availability),
		AvgRating:    r.AvgRating,
		ReviewCount:  r.ReviewCount,
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
		Version:      r.Version,
	}
}

var _ domainapartment.Repository = (*ApartmentRepository)(nil)
