package dto

import (
	"time"

	domainapartment "vidaview/internal/domain/apartment"
	domainbooking "vidaview/internal/domain/booking"
)

type BookingApartmentSnapshot struct {
	ID      string `json:"id"`
	Title   string `json:"title,omitempty"`
	Address string `json:"address,omitempty"`
	OwnerID string `json:"owner_id,omitempty"`
}

type Booking struct {
	ID              string                   `json:"id"`
	Code            string                   `json:"booking_code"`
	Apartment       BookingApartmentSnapshot `json:"apartment"`
	TenantID        string                   `json:"tenant_id"`
	StartDate       time.Time                `json:"start_date"`
	EndDate         time.Time                `json:"end_date"`
	TotalMonths     int                      `json:"total_months"`
	MonthlyRent     MoneyDTO                 `json:"monthly_rent"`
	DepositPaid     MoneyDTO                 `json:"deposit_paid"`
	UtilityDeposit  MoneyDTO                 `json:"utility_deposit"`
	AdminFee        MoneyDTO                 `json:"admin_fee"`
	Total           MoneyDTO                 `json:"total_amount"`
	Status          string                   `json:"status"`
	RejectionReason string                   `json:"rejection_reason,omitempty"`
	ApprovedBy      string                   `json:"approved_by,omitempty"`
	ApprovedAt      *time.Time               `json:"approved_at,omitempty"`
	Notes           string                   `json:"notes,omitempty"`
	CreatedAt       time.Time                `json:"created_at"`
	UpdatedAt       time.Time                `json:"updated_at"`
}

type BookingCollection struct {
	Items []Booking `json:"items"`
	Total int       `json:"total"`
}

// MapBooking builds the booking payload; apt may be nil when it was not loaded.
func MapBooking(b *domainbooking.Booking, apt *domainapartment.Apartment) Booking {
	if b == nil {
		return Booking{}
	}
	snapshot := BookingApartmentSnapshot{ID: string(b.ApartmentID)}
	if apt != nil {
		snapshot.Title = apt.Title
		snapshot.Address = apt.Address
		snapshot.OwnerID = string(apt.OwnerID)
	}
	out := Booking{
		ID:              string(b.ID),
		Code:            b.Code,
		Apartment:       snapshot,
		TenantID:        string(b.TenantID),
		StartDate:       b.Term.Start,
		EndDate:         b.Term.End,
		TotalMonths:     b.TotalMonths,
		MonthlyRent:     MapMoney(b.Amounts.MonthlyRent),
		DepositPaid:     MapMoney(b.Amounts.DepositPaid),
		UtilityDeposit:  MapMoney(b.Amounts.UtilityDeposit),
		AdminFee:        MapMoney(b.Amounts.AdminFee),
		Total:           MapMoney(b.Amounts.Total),
		Status:          string(b.Status),
		RejectionReason: b.RejectionReason,
		ApprovedBy:      string(b.ApprovedBy),
		Notes:           b.Notes,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
	if !b.ApprovedAt.IsZero() {
		at := b.ApprovedAt
		out.ApprovedAt = &at
	}
	return out
}
