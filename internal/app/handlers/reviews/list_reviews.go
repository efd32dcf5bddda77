package reviews

import (
	"context"
	"sort"
	"strings"

	"vidaview/internal/app/access"
	"vidaview/internal/app/dto"
	"vidaview/internal/app/handlers/support"
	"vidaview/internal/app/queries"
	"vidaview/internal/app/uow"
	domainapartment "vidaview/internal/domain/apartment"
	domainreviews "vidaview/internal/domain/reviews"
	domainuser "vidaview/internal/domain/user"
)

const (
	listApartmentReviewsKey = "reviews.apartment.list"
	listPendingReviewsKey   = "reviews.pending.list"
	listMyReviewsKey        = "reviews.mine.list"
)

// ListApartmentReviewsQuery retrieves the approved reviews of an apartment.
type ListApartmentReviewsQuery struct {
	ApartmentID string
	Limit       int
	Offset      int
}

func (q ListApartmentReviewsQuery) Key() string { return listApartmentReviewsKey }

// ListApartmentReviewsHandler loads a page of approved reviews, newest first.
type ListApartmentReviewsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListApartmentReviewsHandler) Handle(ctx context.Context, q ListApartmentReviewsQuery) (dto.ReviewCollection, error) {
	if strings.TrimSpace(q.ApartmentID) == "" {
		return dto.ReviewCollection{}, errApartmentID
	}
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.ReviewCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	apartmentID := domainapartment.ID(q.ApartmentID)
	if _, err := unit.Apartments().ByID(execCtx, apartmentID); err != nil {
		return dto.ReviewCollection{}, err
	}
	approved := true
	all, err := unit.Reviews().List(execCtx, domainreviews.Filter{
		ApartmentIDs: []domainapartment.ID{apartmentID},
		Approved:     &approved,
	})
	if err != nil {
		return dto.ReviewCollection{}, err
	}
	sortNewestFirst(all)
	page := paginate(all, normalizeLimit(q.Limit), q.Offset)
	return dto.ReviewCollection{Items: dto.MapReviews(page).Items, Total: len(all)}, nil
}

// ListPendingReviewsQuery lists reviews awaiting approval.
type ListPendingReviewsQuery struct {
	Actor access.Actor
}

func (q ListPendingReviewsQuery) Key() string { return listPendingReviewsKey }

// ListPendingReviewsHandler shows admins every pending review and owners the
// pending reviews of their own apartments.
type ListPendingReviewsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListPendingReviewsHandler) Handle(ctx context.Context, q ListPendingReviewsQuery) (dto.ReviewCollection, error) {
	if err := access.RequireRole(q.Actor, domainuser.RoleAdmin, domainuser.RoleOwner); err != nil {
		return dto.ReviewCollection{}, err
	}
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.ReviewCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	pending := false
	filter := domainreviews.Filter{Approved: &pending}
	if q.Actor.Role == domainuser.RoleOwner {
		owned, err := unit.Apartments().List(execCtx, domainapartment.Filter{OwnerID: q.Actor.UserID})
		if err != nil {
			return dto.ReviewCollection{}, err
		}
		filter.ApartmentIDs = make([]domainapartment.ID, 0, len(owned))
		for _, apt := range owned {
			filter.ApartmentIDs = append(filter.ApartmentIDs, apt.ID)
		}
	}
	list, err := unit.Reviews().List(execCtx, filter)
	if err != nil {
		return dto.ReviewCollection{}, err
	}
	sortNewestFirst(list)
	return dto.MapReviews(list), nil
}

// ListMyReviewsQuery lists the reviews written by the actor.
type ListMyReviewsQuery struct {
	Actor access.Actor
}

func (q ListMyReviewsQuery) Key() string { return listMyReviewsKey }

type ListMyReviewsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListMyReviewsHandler) Handle(ctx context.Context, q ListMyReviewsQuery) (dto.ReviewCollection, error) {
	if q.Actor.IsZero() {
		return dto.ReviewCollection{}, access.ErrUnauthenticated
	}
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.ReviewCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	list, err := unit.Reviews().List(execCtx, domainreviews.Filter{TenantID: q.Actor.UserID})
	if err != nil {
		return dto.ReviewCollection{}, err
	}
	sortNewestFirst(list)
	return dto.MapReviews(list), nil
}

func sortNewestFirst(list []*domainreviews.Review) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
}

func paginate(all []*domainreviews.Review, limit, offset int) []*domainreviews.Review {
	if offset < 0 {
		offset = 0
	}
	if offset > len(all) {
		offset = len(all)
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return all[offset:end]
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	if limit > 100 {
		return 100
	}
	return limit
}

var _ queries.Handler[ListApartmentReviewsQuery, dto.ReviewCollection] = (*ListApartmentReviewsHandler)(nil)
var _ queries.Handler[ListPendingReviewsQuery, dto.ReviewCollection] = (*ListPendingReviewsHandler)(nil)
var _ queries.Handler[ListMyReviewsQuery, dto.ReviewCollection] = (*ListMyReviewsHandler)(nil)
