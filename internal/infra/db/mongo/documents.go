package mongo

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"vidaview/internal/domain/shared/money"
)

const (
	colApartments    = "agg_apartment"
	colBookings      = "agg_booking"
	colPayments      = "agg_payment"
	colReviews       = "agg_review"
	colUsers         = "users"
	colSessions      = "sessions"
	colNotifications = "notifications"
	colIdempotency   = "app_idempotency"
	colCodes         = "business_codes"
)

type moneyDocument struct {
	Amount   int64  `bson:"amount"`
	Currency string `bson:"currency"`
}

func newMoneyDocument(m money.Money) moneyDocument {
	return moneyDocument{Amount: m.Amount, Currency: m.Currency}
}

func (d moneyDocument) toMoney() money.Money {
	return money.Money{Amount: d.Amount, Currency: d.Currency}
}

func timeToTimestamp(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func timestampToTime(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

// inFilter adds an $in clause; nil leaves the field unconstrained while an
// empty slice matches nothing.
func inFilter[T ~string](filter bson.M, field string, values []T) {
	if values == nil {
		return
	}
	raw := make([]string, 0, len(values))
	for _, v := range values {
		raw = append(raw, string(v))
	}
	filter[field] = bson.M{"$in": raw}
}

func notFound(err error, domainErr error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domainErr
	}
	return err
}
