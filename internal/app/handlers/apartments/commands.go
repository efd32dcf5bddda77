package apartments

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"vidaview/internal/app/access"
	"vidaview/internal/app/commands"
	"vidaview/internal/app/dto"
	"vidaview/internal/app/handlers/support"
	"vidaview/internal/app/locking"
	domainapartment "vidaview/internal/domain/apartment"
	"vidaview/internal/domain/shared/errs"
	"vidaview/internal/domain/shared/money"
	domainuser "vidaview/internal/domain/user"
)

const (
	createApartmentKey = "apartments.create"
	updatePricingKey   = "apartments.pricing.update"

	DefaultCurrency = "IDR"
)

var errApartmentIDRequired = errs.Validation("apartments: apartment_id is required")

type ApartmentPayload struct {
	Title       string
	Address     string
	City        string
	MonthlyRent int64
	Deposit     int64
	Currency    string
}

// CreateApartmentCommand lists a new unit. Admins may list on behalf of OwnerID;
// owners always list for themselves.
type CreateApartmentCommand struct {
	Actor   access.Actor
	OwnerID string
	Payload ApartmentPayload
}

func (c CreateApartmentCommand) Key() string { return createApartmentKey }

type CreateApartmentHandler struct {
	support.Deps
	Currency string
}

func (h *CreateApartmentHandler) Handle(ctx context.Context, cmd CreateApartmentCommand) (*dto.Apartment, error) {
	if err := access.RequireRole(cmd.Actor, domainuser.RoleOwner, domainuser.RoleAdmin); err != nil {
		return nil, err
	}
	ownerID := cmd.Actor.UserID
	if cmd.Actor.IsAdmin() && strings.TrimSpace(cmd.OwnerID) != "" {
		ownerID = domainuser.ID(cmd.OwnerID)
	}
	rent, deposit, err := h.pricing(cmd.Payload)
	if err != nil {
		return nil, err
	}

	unit, err := support.BeginWriteUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	defer unit.Release()
	ctx = unit.Ctx

	apt, err := domainapartment.New(domainapartment.CreateParams{
		ID:          domainapartment.ID(uuid.NewString()),
		OwnerID:     ownerID,
		Title:       cmd.Payload.Title,
		Address:     cmd.Payload.Address,
		City:        cmd.Payload.City,
		MonthlyRent: rent,
		Deposit:     deposit,
		Now:         h.Now(),
	})
	if err != nil {
		return nil, err
	}
	if err := unit.Apartments().Save(ctx, apt); err != nil {
		return nil, err
	}
	if err := h.RecordEvents(ctx, apt); err != nil {
		return nil, err
	}
	if err := unit.Finish(); err != nil {
		return nil, err
	}

	h.Log().Info("apartment created", "apartment_id", apt.ID, "owner_id", apt.OwnerID, "actor_id", cmd.Actor.UserID)
	result := dto.MapApartment(apt)
	return &result, nil
}

func (h *CreateApartmentHandler) pricing(p ApartmentPayload) (money.Money, money.Money, error) {
	currency := strings.ToUpper(strings.TrimSpace(p.Currency))
	if currency == "" {
		currency = h.Currency
	}
	if currency == "" {
		currency = DefaultCurrency
	}
	return parsePricing(p.MonthlyRent, p.Deposit, currency)
}

// UpdatePricingCommand changes rent and deposit for bookings created afterwards.
type UpdatePricingCommand struct {
	Actor       access.Actor
	ApartmentID string
	MonthlyRent int64
	Deposit     int64
}

func (c UpdatePricingCommand) Key() string { return updatePricingKey }

type UpdatePricingHandler struct {
	support.Deps
}

func (h *UpdatePricingHandler) Handle(ctx context.Context, cmd UpdatePricingCommand) (*dto.Apartment, error) {
	if strings.TrimSpace(cmd.ApartmentID) == "" {
		return nil, errApartmentIDRequired
	}
	unit, err := support.BeginWriteUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	defer unit.Release()
	ctx = unit.Ctx

	release, err := h.Hold(ctx, locking.ApartmentKey(cmd.ApartmentID))
	if err != nil {
		return nil, err
	}
	unit.OnRelease(release)

	apt, err := unit.Apartments().ByID(ctx, domainapartment.ID(cmd.ApartmentID))
	if err != nil {
		return nil, err
	}
	if err := access.ManageApartment(cmd.Actor, apt); err != nil {
		return nil, err
	}
	rent, deposit, err := parsePricing(cmd.MonthlyRent, cmd.Deposit, apt.MonthlyRent.Currency)
	if err != nil {
		return nil, err
	}
	if err := apt.Reprice(rent, deposit, h.Now()); err != nil {
		return nil, err
	}
	if err := unit.Apartments().Save(ctx, apt); err != nil {
		return nil, err
	}
	if err := h.RecordEvents(ctx, apt); err != nil {
		return nil, err
	}
	if err := unit.Finish(); err != nil {
		return nil, err
	}

	h.Log().Info("apartment repriced", "apartment_id", apt.ID, "actor_id", cmd.Actor.UserID, "monthly_rent", rent.Amount, "deposit", deposit.Amount)
	result := dto.MapApartment(apt)
	return &result, nil
}

// parsePricing builds money values; amount rules are enforced by the aggregate.
func parsePricing(rent, deposit int64, currency string) (money.Money, money.Money, error) {
	monthly, err := money.New(rent, currency)
	if err != nil {
		return money.Money{}, money.Money{}, err
	}
	dep, err := money.New(deposit, currency)
	if err != nil {
		return money.Money{}, money.Money{}, err
	}
	return monthly, dep, nil
}

var _ commands.Handler[CreateApartmentCommand, *dto.Apartment] = (*CreateApartmentHandler)(nil)
var _ commands.Handler[UpdatePricingCommand, *dto.Apartment] = (*UpdatePricingHandler)(nil)
