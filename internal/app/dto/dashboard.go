package dto

type UserStats struct {
	Total   int `json:"total"`
	Tenants int `json:"tenants"`
	Owners  int `json:"owners"`
	Admins  int `json:"admins"`
}

type ApartmentStats struct {
	Total         int     `json:"total"`
	Available     int     `json:"available"`
	Occupied      int     `json:"occupied"`
	OccupancyRate float64 `json:"occupancy_rate"`
}

type BookingStats struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Active    int `json:"active,omitempty"`
	Completed int `json:"completed,omitempty"`
}

type RevenueStats struct {
	Total    int64  `json:"total"`
	Monthly  int64  `json:"monthly"`
	Currency string `json:"currency"`
}

type AdminStats struct {
	Users          UserStats      `json:"users"`
	Apartments     ApartmentStats `json:"apartments"`
	Bookings       BookingStats   `json:"bookings"`
	Revenue        RevenueStats   `json:"revenue"`
	PendingReviews int            `json:"pending_reviews"`
}

type ReviewStats struct {
	Total         int     `json:"total"`
	AverageRating float64 `json:"average_rating"`
}

type OwnerStats struct {
	Units    ApartmentStats `json:"units"`
	Bookings BookingStats   `json:"bookings"`
	Revenue  RevenueStats   `json:"revenue"`
	Reviews  ReviewStats    `json:"reviews"`
}

type PaymentStats struct {
	TotalSpent int64  `json:"total_spent"`
	Pending    int    `json:"pending"`
	Currency   string `json:"currency"`
}

type TenantStats struct {
	Bookings BookingStats `json:"bookings"`
	Payments PaymentStats `json:"payments"`
	Reviews  int          `json:"reviews_count"`
}

type RevenuePoint struct {
	Month   string `json:"month"`
	Revenue int64  `json:"revenue"`
}

type RevenueChart struct {
	Currency string         `json:"currency"`
	Points   []RevenuePoint `json:"points"`
}
