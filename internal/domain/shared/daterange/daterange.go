package daterange

import (
	"time"

	"vidaview/internal/domain/shared/errs"
)

var ErrInvalidRange = errs.Validation("daterange: end date must be after start date")

// DateRange is a lease term [Start, End) truncated to whole days.
type DateRange struct {
	Start time.Time
	End   time.Time
}

func New(start, end time.Time) (DateRange, error) {
	dr := DateRange{Start: truncateDay(start), End: truncateDay(end)}
	if err := dr.Validate(); err != nil {
		return DateRange{}, err
	}
	return dr, nil
}

func (dr DateRange) Validate() error {
	if dr.Start.IsZero() || dr.End.IsZero() {
		return ErrInvalidRange
	}
	if !dr.End.After(dr.Start) {
		return ErrInvalidRange
	}
	return nil
}

// Months counts calendar months covered by the range, a partial month counting as one.
func (dr DateRange) Months() int {
	months := (dr.End.Year()-dr.Start.Year())*12 + int(dr.End.Month()-dr.Start.Month())
	if dr.Start.AddDate(0, months, 0).Before(dr.End) {
		months++
	}
	if months < 1 {
		months = 1
	}
	return months
}

// Started reports whether the term has begun at the given instant.
func (dr DateRange) Started(at time.Time) bool {
	return !at.UTC().Before(dr.Start)
}

// Ended reports whether the term is over at the given instant.
func (dr DateRange) Ended(at time.Time) bool {
	return !at.UTC().Before(dr.End)
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
