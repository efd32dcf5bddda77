package dto

import (
	"time"

	domainreviews "vidaview/internal/domain/reviews"
)

// Review represents a review payload.
type Review struct {
	ID          string     `json:"id"`
	ApartmentID string     `json:"apartment_id"`
	BookingID   string     `json:"booking_id"`
	TenantID    string     `json:"tenant_id"`
	Rating      int        `json:"rating"`
	Comment     string     `json:"comment,omitempty"`
	Photos      []string   `json:"photos,omitempty"`
	IsApproved  bool       `json:"is_approved"`
	ApprovedBy  string     `json:"approved_by,omitempty"`
	ApprovedAt  *time.Time `json:"approved_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type ReviewCollection struct {
	Items []Review `json:"items"`
	Total int      `json:"total"`
}

// MapReview builds a DTO from a domain review.
func MapReview(review *domainreviews.Review) Review {
	if review == nil {
		return Review{}
	}
	return Review{
		ID:          string(review.ID),
		ApartmentID: string(review.ApartmentID),
		BookingID:   string(review.BookingID),
		TenantID:    string(review.TenantID),
		Rating:      review.Rating,
		Comment:     review.Comment,
		Photos:      append([]string(nil), review.Photos...),
		IsApproved:  review.IsApproved,
		ApprovedBy:  string(review.ApprovedBy),
		ApprovedAt:  optionalTime(review.ApprovedAt),
		CreatedAt:   review.CreatedAt,
	}
}

func MapReviews(list []*domainreviews.Review) ReviewCollection {
	items := make([]Review, 0, len(list))
	for _, r := range list {
		items = append(items, MapReview(r))
	}
	return ReviewCollection{Items: items, Total: len(items)}
}
