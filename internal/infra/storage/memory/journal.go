package memory

import (
	"context"
	"sync"

	domainapartment "vidaview/internal/domain/apartment"
	domainbooking "vidaview/internal/domain/booking"
	domainpayment "vidaview/internal/domain/payment"
	domainreviews "vidaview/internal/domain/reviews"
)

// restorable is implemented by the in-memory stores. snapshot returns a copy
// of the stored record or nil; restore puts prev back, or removes the record
// when prev is nil.
type restorable[ID comparable, T any] interface {
	snapshot(id ID) *T
	restore(id ID, prev *T)
}

// journal holds the undo steps of the writes made through one unit.
type journal struct {
	mu   sync.Mutex
	undo []func()
}

func (j *journal) record(fn func()) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.undo = append(j.undo, fn)
}

func (j *journal) forget() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.undo = nil
}

func (j *journal) unwind() {
	j.mu.Lock()
	steps := j.undo
	j.undo = nil
	j.mu.Unlock()
	for i := len(steps) - 1; i >= 0; i-- {
		steps[i]()
	}
}

// guard runs write and, when it succeeds, records how to put the record back.
// Stores that cannot restore are written through without an undo step.
func guard[ID comparable, T any](j *journal, store restorable[ID, T], id ID, write func() error) error {
	if store == nil {
		return write()
	}
	prev := store.snapshot(id)
	if err := write(); err != nil {
		return err
	}
	j.record(func() { store.restore(id, prev) })
	return nil
}

type journaledApartments struct {
	domainapartment.Repository
	store   restorable[domainapartment.ID, domainapartment.Apartment]
	journal *journal
}

func (r journaledApartments) Save(ctx context.Context, apt *domainapartment.Apartment) error {
	return guard(r.journal, r.store, apt.ID, func() error { return r.Repository.Save(ctx, apt) })
}

func (r journaledApartments) SetAvailability(ctx context.Context, id domainapartment.ID, expect, next domainapartment.Availability) error {
	return guard(r.journal, r.store, id, func() error { return r.Repository.SetAvailability(ctx, id, expect, next) })
}

type journaledBookings struct {
	domainbooking.Repository
	store   restorable[domainbooking.ID, domainbooking.Booking]
	journal *journal
}

func (r journaledBookings) Create(ctx context.Context, b *domainbooking.Booking) error {
	return guard(r.journal, r.store, b.ID, func() error { return r.Repository.Create(ctx, b) })
}

func (r journaledBookings) Save(ctx context.Context, b *domainbooking.Booking) error {
	return guard(r.journal, r.store, b.ID, func() error { return r.Repository.Save(ctx, b) })
}

type journaledPayments struct {
	domainpayment.Repository
	store   restorable[domainpayment.ID, domainpayment.Payment]
	journal *journal
}

func (r journaledPayments) Create(ctx context.Context, p *domainpayment.Payment) error {
	return guard(r.journal, r.store, p.ID, func() error { return r.Repository.Create(ctx, p) })
}

func (r journaledPayments) Save(ctx context.Context, p *domainpayment.Payment) error {
	return guard(r.journal, r.store, p.ID, func() error { return r.Repository.Save(ctx, p) })
}

type journaledReviews struct {
	domainreviews.Repository
	store   restorable[domainreviews.ID, domainreviews.Review]
	journal *journal
}

func (r journaledReviews) Create(ctx context.Context, review *domainreviews.Review) error {
	return guard(r.journal, r.store, review.ID, func() error { return r.Repository.Create(ctx, review) })
}

func (r journaledReviews) Save(ctx context.Context, review *domainreviews.Review) error {
	return guard(r.journal, r.store, review.ID, func() error { return r.Repository.Save(ctx, review) })
}

func (r journaledReviews) Delete(ctx context.Context, id domainreviews.ID) error {
	return guard(r.journal, r.store, id, func() error { return r.Repository.Delete(ctx, id) })
}
