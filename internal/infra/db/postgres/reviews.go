package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	domainapartment "vidaview/internal/domain/apartment"
	domainbooking "vidaview/internal/domain/booking"
	domainreviews "vidaview/internal/domain/reviews"
	domainuser "vidaview/internal/domain/user"
)

const reviewColumns = `id, apartment_id, tenant_id, booking_id, rating, comment, photos, is_approved,
	approved_by, approved_at, created_at, updated_at, version`

type ReviewRepository struct {
	db   querier
	lock bool
}

func NewReviewRepository(db querier) *ReviewRepository {
	return &ReviewRepository{db: db}
}

func (r *ReviewRepository) ByID(ctx context.Context, id domainreviews.ID) (*domainreviews.Review, error) {
	return r.one(ctx, "id = $1", string(id))
}

func (r *ReviewRepository) ByBooking(ctx context.Context, bookingID domainbooking.ID) (*domainreviews.Review, error) {
	return r.one(ctx, "booking_id = $1", string(bookingID))
}

func (r *ReviewRepository) one(ctx context.Context, where string, arg string) (*domainreviews.Review, error) {
	var row reviewRow
	err := r.db.QueryRowxContext(ctx, "SELECT "+reviewColumns+" FROM reviews WHERE "+where+lockClause(r.lock), arg).StructScan(&row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domainreviews.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.toAggregate(), nil
}

func (r *ReviewRepository) Create(ctx context.Context, review *domainreviews.Review) error {
	row := newReviewRow(review)
	row.Version = 1
	err := insertWithSavepoint(ctx, r.db, "review_insert", func() error {
		_, err := sqlx.NamedExecContext(ctx, r.db, `INSERT INTO reviews (`+reviewColumns+`)
			VALUES (:id, :apartment_id, :tenant_id, :booking_id, :rating, :comment, :photos, :is_approved,
			:approved_by, :approved_at, :created_at, :updated_at, :version)`, row)
		return err
	})
	switch {
	case isUniqueViolation(err, "reviews_booking_key"):
		return domainreviews.ErrDuplicateReview
	case isUniqueViolation(err, ""):
		return domainreviews.ErrConcurrentUpdate
	case err != nil:
		return err
	}
	review.Version = 1
	return nil
}

func (r *ReviewRepository) Save(ctx context.Context, review *domainreviews.Review) error {
	row := newReviewRow(review)
	res, err := sqlx.NamedExecContext(ctx, r.db, `UPDATE reviews SET rating = :rating, comment = :comment,
		photos = :photos, is_approved = :is_approved, approved_by = :approved_by, approved_at = :approved_at,
		updated_at = :updated_at, version = version + 1
		WHERE id = :id AND version = :version`, row)
	if err != nil {
		return err
	}
	n, err := affected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		found, err := exists(ctx, r.db, "reviews", row.ID)
		if err != nil {
			return err
		}
		if !found {
			return domainreviews.ErrNotFound
		}
		return domainreviews.ErrConcurrentUpdate
	}
	review.Version++
	return nil
}

func (r *ReviewRepository) Delete(ctx context.Context, id domainreviews.ID) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM reviews WHERE id = $1", string(id))
	if err != nil {
		return err
	}
	n, err := affected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return domainreviews.ErrNotFound
	}
	return nil
}

func (r *ReviewRepository) List(ctx context.Context, filter domainreviews.Filter) ([]*domainreviews.Review, error) {
	if filter.ApartmentIDs != nil && len(filter.ApartmentIDs) == 0 {
		return []*domainreviews.Review{}, nil
	}
	var (
		where []string
		args  []any
	)
	if filter.ApartmentIDs != nil {
		where = append(where, "apartment_id IN (?)")
		args = append(args, toStrings(filter.ApartmentIDs))
	}
	if filter.TenantID != "" {
		where = append(where, "tenant_id = ?")
		args = append(args, string(filter.TenantID))
	}
	if filter.Approved != nil {
		where = append(where, "is_approved = ?")
		args = append(args, *filter.Approved)
	}
	query := "SELECT " + reviewColumns + " FROM reviews"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at"

	q, qargs, err := inQuery(r.db, query, args...)
	if err != nil {
		return nil, err
	}
	var rows []reviewRow
	if err := sqlxSelect(ctx, r.db, &rows, q, qargs...); err != nil {
		return nil, err
	}
	out := make([]*domainreviews.Review, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toAggregate())
	}
	return out, nil
}

type reviewRow struct {
	ID          string         `db:"id"`
	ApartmentID string         `db:"apartment_id"`
	TenantID    string         `db:"tenant_id"`
	BookingID   string         `db:"booking_id"`
	Rating      int            `db:"rating"`
	Comment     string         `db:"comment"`
	Photos      pq.StringArray `db:"photos"`
	IsApproved  bool           `db:"is_approved"`
	ApprovedBy  string         `db:"approved_by"`
	ApprovedAt  sql.NullTime   `db:"approved_at"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
	Version     int64          `db:"version"`
}

func newReviewRow(r *domainreviews.Review) reviewRow {
	photos := pq.StringArray(append([]string{}, r.Photos...))
	return reviewRow{
		ID:          string(r.ID),
		ApartmentID: string(r.ApartmentID),
		TenantID:    string(r.TenantID),
		BookingID:   string(r.BookingID),
		Rating:      r.Rating,
		Comment:     r.Comment,
		Photos:      photos,
		IsApproved:  r.IsApproved,
		ApprovedBy:  string(r.ApprovedBy),
		ApprovedAt:  nullTime(r.ApprovedAt),
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
		Version:     r.Version,
	}
}

func (r reviewRow) toAggregate() *domainreviews.Review {
	return &domainreviews.Review{
		ID:          domainreviews.ID(r.ID),
		ApartmentID: domainapartment.ID(r.ApartmentID),
		TenantID:    domainuser.ID(r.TenantID),
		BookingID:   domainbooking.ID(r.BookingID),
		Rating:      r.Rating,
		Comment:     r.Comment,
		Photos:      []string(r.Photos),
		IsApproved:  r.IsApproved,
		ApprovedBy:  domainuser.ID(r.ApprovedBy),
		ApprovedAt:  fromNullTime(r.ApprovedAt),
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
		Version:     r.Version,
	}
}

var _ domainreviews.Repository = (*ReviewRepository)(nil)
