package apartments

import (
	"context"
	"sort"
	"strings"

	"vidaview/internal/app/dto"
	"vidaview/internal/app/handlers/support"
	"vidaview/internal/app/queries"
	"vidaview/internal/app/uow"
	domainapartment "vidaview/internal/domain/apartment"
	domainuser "vidaview/internal/domain/user"
)

const (
	getApartmentKey   = "apartments.get"
	listApartmentsKey = "apartments.list"
)

type GetApartmentQuery struct {
	ApartmentID string
}

func (q GetApartmentQuery) Key() string { return getApartmentKey }

type GetApartmentHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetApartmentHandler) Handle(ctx context.Context, q GetApartmentQuery) (dto.Apartment, error) {
	if strings.TrimSpace(q.ApartmentID) == "" {
		return dto.Apartment{}, errApartmentIDRequired
	}
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Apartment{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	apt, err := unit.Apartments().ByID(execCtx, domainapartment.ID(q.ApartmentID))
	if err != nil {
		return dto.Apartment{}, err
	}
	return dto.MapApartment(apt), nil
}

// ListApartmentsQuery filters by owner and availability status; both optional.
type ListApartmentsQuery struct {
	OwnerID string
	Status  string
}

func (q ListApartmentsQuery) Key() string { return listApartmentsKey }

type ListApartmentsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListApartmentsHandler) Handle(ctx context.Context, q ListApartmentsQuery) (dto.ApartmentCollection, error) {
	filter := domainapartment.Filter{OwnerID: domainuser.ID(strings.TrimSpace(q.OwnerID))}
	if status := strings.TrimSpace(q.Status); status != "" {
		parsed, err := domainapartment.ParseAvailability(status)
		if err != nil {
			return dto.ApartmentCollection{}, err
		}
		filter.Availability = parsed
	}
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.ApartmentCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	list, err := unit.Apartments().List(execCtx, filter)
	if err != nil {
		return dto.ApartmentCollection{}, err
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return dto.MapApartments(list), nil
}

var _ queries.Handler[GetApartmentQuery, dto.Apartment] = (*GetApartmentHandler)(nil)
var _ queries.Handler[ListApartmentsQuery, dto.ApartmentCollection] = (*ListApartmentsHandler)(nil)
