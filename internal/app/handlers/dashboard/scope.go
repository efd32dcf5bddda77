package dashboard

import (
	"context"
	"math"
	"time"

	"vidaview/internal/app/uow"
	domainapartment "vidaview/internal/domain/apartment"
	domainbooking "vidaview/internal/domain/booking"
	domainpayment "vidaview/internal/domain/payment"
	domainuser "vidaview/internal/domain/user"
)

// scope is the slice of the ledger visible to one dashboard. A nil filter on
// owner or tenant means the global view.
type scope struct {
	apartments []*domainapartment.Apartment
	bookings   []*domainbooking.Booking
	payments   []*domainpayment.Payment
}

func loadScope(ctx context.Context, unit uow.UnitOfWork, ownerID, tenantID domainuser.ID) (scope, error) {
	var s scope
	var err error
	if tenantID == "" {
		s.apartments, err = unit.Apartments().List(ctx, domainapartment.Filter{OwnerID: ownerID})
		if err != nil {
			return scope{}, err
		}
	}
	bookingFilter := domainbooking.Filter{TenantID: tenantID}
	if ownerID != "" {
		bookingFilter.ApartmentIDs = make([]domainapartment.ID, 0, len(s.apartments))
		for _, apt := range s.apartments {
			bookingFilter.ApartmentIDs = append(bookingFilter.ApartmentIDs, apt.ID)
		}
	}
	s.bookings, err = unit.Bookings().List(ctx, bookingFilter)
	if err != nil {
		return scope{}, err
	}
	paymentFilter := domainpayment.Filter{}
	if ownerID != "" || tenantID != "" {
		paymentFilter.BookingIDs = make([]domainbooking.ID, 0, len(s.bookings))
		for _, b := range s.bookings {
			paymentFilter.BookingIDs = append(paymentFilter.BookingIDs, b.ID)
		}
	}
	s.payments, err = unit.Payments().List(ctx, paymentFilter)
	if err != nil {
		return scope{}, err
	}
	return s, nil
}

func (s scope) bookingsWith(status domainbooking.Status) int {
	n := 0
	for _, b := range s.bookings {
		if b.Status == status {
			n++
		}
	}
	return n
}

func (s scope) apartmentsWith(availability domainapartment.Availability) int {
	n := 0
	for _, apt := range s.apartments {
		if apt.Availability == availability {
			n++
		}
	}
	return n
}

// revenue sums completed payments in currency. A zero month means all time,
// otherwise only payments dated in that calendar month count.
func (s scope) revenue(currency string, month time.Time) int64 {
	var total int64
	for _, p := range s.payments {
		if p.Status != domainpayment.StatusCompleted || p.Amount.Currency != currency {
			continue
		}
		if !month.IsZero() && !p.PaidIn(month.Year(), month.Month()) {
			continue
		}
		total += p.Amount.Amount
	}
	return total
}

func (s scope) paymentsWith(status domainpayment.Status) int {
	n := 0
	for _, p := range s.payments {
		if p.Status == status {
			n++
		}
	}
	return n
}

func occupancyRate(occupied, total int) float64 {
	if total == 0 {
		return 0
	}
	return round2(float64(occupied) / float64(total) * 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
