package dto

import (
	"time"

	domainpayment "vidaview/internal/domain/payment"
)

type Payment struct {
	ID            string     `json:"id"`
	Code          string     `json:"payment_code"`
	BookingID     string     `json:"booking_id"`
	Amount        MoneyDTO   `json:"amount"`
	Type          string     `json:"payment_type"`
	Method        string     `json:"payment_method,omitempty"`
	Status        string     `json:"status"`
	TransactionID string     `json:"transaction_id,omitempty"`
	DueDate       *time.Time `json:"due_date,omitempty"`
	PaymentDate   *time.Time `json:"payment_date,omitempty"`
	ConfirmedBy   string     `json:"confirmed_by,omitempty"`
	FailureReason string     `json:"failure_reason,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type PaymentCollection struct {
	Items []Payment `json:"items"`
	Total int       `json:"total"`
}

func MapPayment(p *domainpayment.Payment) Payment {
	if p == nil {
		return Payment{}
	}
	return Payment{
		ID:            string(p.ID),
		Code:          p.Code,
		BookingID:     string(p.BookingID),
		Amount:        MapMoney(p.Amount),
		Type:          string(p.Type),
		Method:        string(p.Method),
		Status:        string(p.Status),
		TransactionID: p.TransactionID,
		DueDate:       optionalTime(p.DueDate),
		PaymentDate:   optionalTime(p.PaymentDate),
		ConfirmedBy:   string(p.ConfirmedBy),
		FailureReason: p.FailureReason,
		Notes:         p.Notes,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func MapPayments(list []*domainpayment.Payment) PaymentCollection {
	items := make([]Payment, 0, len(list))
	for _, p := range list {
		items = append(items, MapPayment(p))
	}
	return PaymentCollection{Items: items, Total: len(items)}
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
