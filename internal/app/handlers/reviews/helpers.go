package reviews

import (
	"context"
	"time"

	"vidaview/internal/app/uow"
	domainapartment "vidaview/internal/domain/apartment"
	domainreviews "vidaview/internal/domain/reviews"
)

// recalculateApartmentRating rebuilds avg_rating and review_count from the full
// approved set. Callers hold the apartment's rating lock.
func recalculateApartmentRating(ctx context.Context, unit uow.UnitOfWork, apartmentID domainapartment.ID, now time.Time) (*domainapartment.Apartment, error) {
	approved := true
	list, err := unit.Reviews().List(ctx, domainreviews.Filter{
		ApartmentIDs: []domainapartment.ID{apartmentID},
		Approved:     &approved,
	})
	if err != nil {
		return nil, err
	}
	apt, err := unit.Apartments().ByID(ctx, apartmentID)
	if err != nil {
		return nil, err
	}
	apt.UpdateRating(domainreviews.Ratings(list), now)
	if err := unit.Apartments().Save(ctx, apt); err != nil {
		return nil, err
	}
	return apt, nil
}
