package mongo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"

	domainapartment "vidaview/internal/domain/apartment"
	domainbooking "vidaview/internal/domain/booking"
)

func TestInFilter(t *testing.T) {
	q := bson.M{}
	inFilter[domainapartment.ID](q, "apartment_id", nil)
	assert.NotContains(t, q, "apartment_id")

	inFilter(q, "apartment_id", []domainapartment.ID{})
	assert.Equal(t, bson.M{"$in": []string{}}, q["apartment_id"])

	inFilter(q, "status", []domainbooking.Status{domainbooking.StatusActive, domainbooking.StatusConfirmed})
	assert.Equal(t, bson.M{"$in": []string{"active", "confirmed"}}, q["status"])
}

func TestTimestampsKeepZeroTime(t *testing.T) {
	assert.Zero(t, timeToTimestamp(time.Time{}))
	assert.True(t, timestampToTime(0).IsZero())

	at := time.Date(2026, 5, 1, 12, 30, 0, 0, time.UTC)
	assert.Equal(t, at, timestampToTime(timeToTimestamp(at)))
}
