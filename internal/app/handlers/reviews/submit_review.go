package reviews

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"vidaview/internal/app/access"
	"vidaview/internal/app/commands"
	"vidaview/internal/app/dto"
	"vidaview/internal/app/handlers/support"
	"vidaview/internal/app/policies"
	domainapartment "vidaview/internal/domain/apartment"
	domainbooking "vidaview/internal/domain/booking"
	"vidaview/internal/domain/notification"
	domainreviews "vidaview/internal/domain/reviews"
	"vidaview/internal/domain/shared/errs"
	domainuser "vidaview/internal/domain/user"
)

const submitReviewKey = "reviews.submit"

var (
	ErrNoCompletedStay = errs.Authorization("reviews: a completed booking for this apartment is required")
	errApartmentID     = errs.Validation("reviews: apartment_id is required")
)

// SubmitReviewCommand creates a new review for an apartment the tenant stayed in.
type SubmitReviewCommand struct {
	Actor       access.Actor
	ApartmentID string
	Rating      int
	Comment     string
	Photos      []string
}

func (c SubmitReviewCommand) Key() string { return submitReviewKey }

func (c SubmitReviewCommand) Validate() error {
	if err := domainreviews.ValidateRating(c.Rating); err != nil {
		return err
	}
	if strings.TrimSpace(c.ApartmentID) == "" {
		return errApartmentID
	}
	return nil
}

// SubmitReviewHandler stores an unapproved review against the tenant's most
// recent completed booking of the apartment that has no review yet.
type SubmitReviewHandler struct {
	support.Deps
}

func (h *SubmitReviewHandler) Handle(ctx context.Context, cmd SubmitReviewCommand) (dto.Review, error) {
	if err := cmd.Validate(); err != nil {
		return dto.Review{}, err
	}
	if err := access.RequireRole(cmd.Actor, domainuser.RoleTenant); err != nil {
		return dto.Review{}, err
	}

	unit, err := support.BeginWriteUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Review{}, err
	}
	defer unit.Release()
	ctx = unit.Ctx

	apt, err := unit.Apartments().ByID(ctx, domainapartment.ID(cmd.ApartmentID))
	if err != nil {
		return dto.Review{}, err
	}
	stay, err := h.reviewableStay(ctx, unit, cmd.Actor.UserID, apt.ID)
	if err != nil {
		return dto.Review{}, err
	}

	review, err := domainreviews.Submit(domainreviews.SubmitParams{
		ID:          domainreviews.ID(uuid.NewString()),
		ApartmentID: apt.ID,
		TenantID:    cmd.Actor.UserID,
		BookingID:   stay.ID,
		Rating:      cmd.Rating,
		Comment:     cmd.Comment,
		Photos:      cmd.Photos,
		Now:         h.Now(),
	})
	if err != nil {
		return dto.Review{}, err
	}
	if err := unit.Reviews().Create(ctx, review); err != nil {
		return dto.Review{}, err
	}
	if err := h.RecordEvents(ctx, review); err != nil {
		return dto.Review{}, err
	}
	if err := unit.Finish(); err != nil {
		return dto.Review{}, err
	}

	h.Log().Info("review submitted", "review_id", review.ID, "booking_id", stay.ID, "apartment_id", apt.ID, "actor_id", cmd.Actor.UserID, "rating", review.Rating)
	h.Notify(ctx, policies.Notification{
		UserID:    string(apt.OwnerID),
		Title:     "New review",
		Message:   fmt.Sprintf("%s received a %d-star review awaiting approval", apt.Title, review.Rating),
		Type:      string(notification.TypeSystem),
		RelatedID: string(review.ID),
	})

	return dto.MapReview(review), nil
}

func (h *SubmitReviewHandler) reviewableStay(ctx context.Context, unit *support.WriteUnit, tenantID domainuser.ID, apartmentID domainapartment.ID) (*domainbooking.Booking, error) {
	stays, err := unit.Bookings().List(ctx, domainbooking.Filter{
		TenantID:     tenantID,
		ApartmentIDs: []domainapartment.ID{apartmentID},
		Statuses:     []domainbooking.Status{domainbooking.StatusCompleted},
	})
	if err != nil {
		return nil, err
	}
	if len(stays) == 0 {
		return nil, ErrNoCompletedStay
	}
	sort.SliceStable(stays, func(i, j int) bool {
		return stays[i].Term.End.After(stays[j].Term.End)
	})
	for _, stay := range stays {
		_, err := unit.Reviews().ByBooking(ctx, stay.ID)
		if errors.Is(err, domainreviews.ErrNotFound) {
			return stay, nil
		}
		if err != nil {
			return nil, err
		}
	}
	return nil, domainreviews.ErrDuplicateReview
}

var _ commands.Handler[SubmitReviewCommand, dto.Review] = (*SubmitReviewHandler)(nil)
