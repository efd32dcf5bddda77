package dto

import (
	"time"

	domainapartment "vidaview/internal/domain/apartment"
	"vidaview/internal/domain/shared/money"
)

type MoneyDTO struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

func MapMoney(value money.Money) MoneyDTO {
	return MoneyDTO{
		Amount:   value.Amount,
		Currency: value.Currency,
	}
}

type Apartment struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"owner_id"`
	Title        string    `json:"title"`
	Address      string    `json:"address"`
	City         string    `json:"city,omitempty"`
	MonthlyRent  MoneyDTO  `json:"monthly_rent"`
	Deposit      MoneyDTO  `json:"deposit"`
	Availability string    `json:"availability_status"`
	AvgRating    float64   `json:"avg_rating"`
	ReviewCount  int       `json:"review_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type ApartmentCollection struct {
	Items []Apartment `json:"items"`
	Total int         `json:"total"`
}

func MapApartment(apt *domainapartment.Apartment) Apartment {
	if apt == nil {
		return Apartment{}
	}
	return Apartment{
		ID:           string(apt.ID),
		OwnerID:      string(apt.OwnerID),
		Title:        apt.Title,
		Address:      apt.Address,
		City:         apt.City,
		MonthlyRent:  MapMoney(apt.MonthlyRent),
		Deposit:      MapMoney(apt.Deposit),
		Availability: string(apt.Availability),
		AvgRating:    apt.AvgRating,
		ReviewCount:  apt.ReviewCount,
		CreatedAt:    apt.CreatedAt,
		UpdatedAt:    apt.UpdatedAt,
	}
}

func MapApartments(list []*domainapartment.Apartment) ApartmentCollection {
	items := make([]Apartment, 0, len(list))
	for _, apt := range list {
		items = append(items, MapApartment(apt))
	}
	return ApartmentCollection{Items: items, Total: len(items)}
}
