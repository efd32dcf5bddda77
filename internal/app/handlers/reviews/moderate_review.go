package reviews

import (
	"context"
	"fmt"
	"strings"

	"vidaview/internal/app/access"
	"vidaview/internal/app/commands"
	"vidaview/internal/app/dto"
	"vidaview/internal/app/handlers/support"
	"vidaview/internal/app/locking"
	"vidaview/internal/app/policies"
	"vidaview/internal/app/uow"
	domainapartment "vidaview/internal/domain/apartment"
	"vidaview/internal/domain/notification"
	domainreviews "vidaview/internal/domain/reviews"
	"vidaview/internal/domain/shared/errs"
)

const (
	approveReviewKey = "reviews.approve"
	deleteReviewKey  = "reviews.delete"
)

var errReviewID = errs.Validation("reviews: review_id is required")

type ApproveReviewCommand struct {
	Actor    access.Actor
	ReviewID string
}

func (c ApproveReviewCommand) Key() string { return approveReviewKey }

// ApproveReviewHandler publishes a review and refreshes the apartment rating.
type ApproveReviewHandler struct {
	support.Deps
}

func (h *ApproveReviewHandler) Handle(ctx context.Context, cmd ApproveReviewCommand) (dto.Review, error) {
	unit, err := support.BeginWriteUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Review{}, err
	}
	defer unit.Release()
	ctx = unit.Ctx

	review, err := lockedReview(ctx, h.Deps, unit, cmd.ReviewID)
	if err != nil {
		return dto.Review{}, err
	}
	apt, err := unit.Apartments().ByID(ctx, review.ApartmentID)
	if err != nil {
		return dto.Review{}, err
	}
	if err := access.ManageApartment(cmd.Actor, apt); err != nil {
		return dto.Review{}, err
	}
	now := h.Now()
	if err := review.Approve(cmd.Actor.UserID, now); err != nil {
		return dto.Review{}, err
	}
	if err := unit.Reviews().Save(ctx, review); err != nil {
		return dto.Review{}, err
	}
	apt, err = recalculateApartmentRating(ctx, unit, review.ApartmentID, now)
	if err != nil {
		return dto.Review{}, err
	}
	if err := h.RecordEvents(ctx, review); err != nil {
		return dto.Review{}, err
	}
	if err := unit.Finish(); err != nil {
		return dto.Review{}, err
	}

	h.Log().Info("review approved", "review_id", review.ID, "apartment_id", apt.ID, "actor_id", cmd.Actor.UserID, "avg_rating", apt.AvgRating, "review_count", apt.ReviewCount)
	h.Notify(ctx, policies.Notification{
		UserID:    string(review.TenantID),
		Title:     "Review published",
		Message:   fmt.Sprintf("Your review of %s is now visible", apt.Title),
		Type:      string(notification.TypeSystem),
		RelatedID: string(review.ID),
	})
	return dto.MapReview(review), nil
}

type DeleteReviewCommand struct {
	Actor    access.Actor
	ReviewID string
}

func (c DeleteReviewCommand) Key() string { return deleteReviewKey }

// DeleteReviewHandler removes a review and refreshes the apartment rating.
type DeleteReviewHandler struct {
	support.Deps
}

func (h *DeleteReviewHandler) Handle(ctx context.Context, cmd DeleteReviewCommand) (dto.Review, error) {
	unit, err := support.BeginWriteUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Review{}, err
	}
	defer unit.Release()
	ctx = unit.Ctx

	review, err := lockedReview(ctx, h.Deps, unit, cmd.ReviewID)
	if err != nil {
		return dto.Review{}, err
	}
	if err := access.DeleteReview(cmd.Actor, review); err != nil {
		return dto.Review{}, err
	}
	now := h.Now()
	review.MarkDeleted(cmd.Actor.UserID, now)
	if err := unit.Reviews().Delete(ctx, review.ID); err != nil {
		return dto.Review{}, err
	}
	apt, err := recalculateApartmentRating(ctx, unit, review.ApartmentID, now)
	if err != nil {
		return dto.Review{}, err
	}
	if err := h.RecordEvents(ctx, review); err != nil {
		return dto.Review{}, err
	}
	if err := unit.Finish(); err != nil {
		return dto.Review{}, err
	}

	h.Log().Info("review deleted", "review_id", review.ID, "apartment_id", apt.ID, "actor_id", cmd.Actor.UserID, "avg_rating", apt.AvgRating, "review_count", apt.ReviewCount)
	return dto.MapReview(review), nil
}

// lockedReview takes the rating lock of the review's apartment, resolved with
// support.Peek, and then reads the review through the unit.
func lockedReview(ctx context.Context, deps support.Deps, unit *support.WriteUnit, id string) (*domainreviews.Review, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errReviewID
	}
	aptID, err := support.Peek(ctx, deps.UoWFactory, func(ctx context.Context, view uow.UnitOfWork) (domainapartment.ID, error) {
		review, err := view.Reviews().ByID(ctx, domainreviews.ID(id))
		if err != nil {
			return "", err
		}
		return review.ApartmentID, nil
	})
	if err != nil {
		return nil, err
	}
	release, err := deps.Hold(ctx, locking.RatingKey(string(aptID)))
	if err != nil {
		return nil, err
	}
	unit.OnRelease(release)
	return unit.Reviews().ByID(ctx, domainreviews.ID(id))
}

var _ commands.Handler[ApproveReviewCommand, dto.Review] = (*ApproveReviewHandler)(nil)
var _ commands.Handler[DeleteReviewCommand, dto.Review] = (*DeleteReviewHandler)(nil)
