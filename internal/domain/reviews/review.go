package reviews

import (
	"context"
	"strings"
	"time"

	"vidaview/internal/domain/apartment"
	"vidaview/internal/domain/booking"
	"vidaview/internal/domain/shared/errs"
	"vidaview/internal/domain/shared/events"
	"vidaview/internal/domain/user"
)

var (
	ErrInvalidRating    = errs.Validation("reviews: rating must be between 1 and 5")
	ErrNotFound         = errs.NotFound("reviews: not found")
	ErrDuplicateReview  = errs.Conflict("reviews: review already exists for booking")
	ErrAlreadyApproved  = errs.InvalidTransition("reviews: review already approved")
	ErrConcurrentUpdate = errs.Conflict("reviews: concurrent update detected")
)

type ID string

type Review struct {
	ID          ID
	ApartmentID apartment.ID
	TenantID    user.ID
	BookingID   booking.ID
	Rating      int
	Comment     string
	Photos      []string
	IsApproved  bool
	ApprovedBy  user.ID
	ApprovedAt  time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Version     int64
	events.EventRecorder
}

// Filter narrows List; nil pointers and empty values match everything.
type Filter struct {
	ApartmentIDs []apartment.ID
	TenantID     user.ID
	Approved     *bool
}

func (f Filter) Matches(r *Review) bool {
	if f.ApartmentIDs != nil {
		found := false
		for _, id := range f.ApartmentIDs {
			if id == r.ApartmentID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.TenantID != "" && r.TenantID != f.TenantID {
		return false
	}
	if f.Approved != nil && r.IsApproved != *f.Approved {
		return false
	}
	return true
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*Review, error)
	ByBooking(ctx context.Context, bookingID booking.ID) (*Review, error)
	// Create returns ErrDuplicateReview when the booking already has a review.
	Create(ctx context.Context, review *Review) error
	Save(ctx context.Context, review *Review) error
	Delete(ctx context.Context, id ID) error
	List(ctx context.Context, filter Filter) ([]*Review, error)
}

type SubmitParams struct {
	ID          ID
	ApartmentID apartment.ID
	TenantID    user.ID
	BookingID   booking.ID
	Rating      int
	Comment     string
	Photos      []string
	Now         time.Time
}

// ValidateRating rejects ratings outside 1..5.
func ValidateRating(rating int) error {
	if rating < 1 || rating > 5 {
		return ErrInvalidRating
	}
	return nil
}

func Submit(params SubmitParams) (*Review, error) {
	if err := ValidateRating(params.Rating); err != nil {
		return nil, err
	}
	photos := make([]string, 0, len(params.Photos))
	for _, p := range params.Photos {
		if p = strings.TrimSpace(p); p != "" {
			photos = append(photos, p)
		}
	}
	now := params.Now.UTC()
	r := &Review{
		ID:          params.ID,
		ApartmentID: params.ApartmentID,
		TenantID:    params.TenantID,
		BookingID:   params.BookingID,
		Rating:      params.Rating,
		Comment:     strings.TrimSpace(params.Comment),
		Photos:      photos,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.Record(Submitted{ReviewID: r.ID, ApartmentID: r.ApartmentID, BookingID: r.BookingID, Rating: r.Rating, At: now})
	return r, nil
}

func (r *Review) Approve(actor user.ID, now time.Time) error {
	if r.IsApproved {
		return ErrAlreadyApproved
	}
	r.IsApproved = true
	r.ApprovedBy = actor
	r.ApprovedAt = now.UTC()
	r.UpdatedAt = r.ApprovedAt
	r.Record(Approved{ReviewID: r.ID, ApartmentID: r.ApartmentID, ApprovedBy: actor, At: r.ApprovedAt})
	return nil
}

// MarkDeleted records the deletion; the caller removes the review from storage.
func (r *Review) MarkDeleted(actor user.ID, now time.Time) {
	r.Record(Deleted{ReviewID: r.ID, ApartmentID: r.ApartmentID, DeletedBy: actor, At: now.UTC()})
}

// Ratings extracts the rating of every review.
func Ratings(list []*Review) []int {
	out := make([]int, 0, len(list))
	for _, r := range list {
		out = append(out, r.Rating)
	}
	return out
}
