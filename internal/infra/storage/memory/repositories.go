package memory

import (
	"context"
	"sort"
	"sync"

	domainapartment "vidaview/internal/domain/apartment"
	domainbooking "vidaview/internal/domain/booking"
	domainpayment "vidaview/internal/domain/payment"
	domainreviews "vidaview/internal/domain/reviews"
)

// ApartmentRepository is an in-memory implementation for local runs and tests.
type ApartmentRepository struct {
	mu    sync.RWMutex
	items map[domainapartment.ID]*domainapartment.Apartment
}

func NewApartmentRepository() *ApartmentRepository {
	return &ApartmentRepository{items: make(map[domainapartment.ID]*domainapartment.Apartment)}
}

func (r *ApartmentRepository) ByID(ctx context.Context, id domainapartment.ID) (*domainapartment.Apartment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	apt, ok := r.items[id]
	if !ok {
		return nil, domainapartment.ErrNotFound
	}
	return cloneApartment(apt), nil
}

func (r *ApartmentRepository) List(ctx context.Context, filter domainapartment.Filter) ([]*domainapartment.Apartment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainapartment.Apartment, 0, len(r.items))
	for _, apt := range r.items {
		if filter.OwnerID != "" && apt.OwnerID != filter.OwnerID {
			continue
		}
		if filter.Availability != "" && apt.Availability != filter.Availability {
			continue
		}
		out = append(out, cloneApartment(apt))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// Save upserts the apartment. Availability is owned by SetAvailability and is
// carried over from the stored copy.
func (r *ApartmentRepository) Save(ctx context.Context, apt *domainapartment.Apartment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.items[apt.ID]; ok {
		if current.Version != apt.Version {
			return domainapartment.ErrConcurrentUpdate
		}
		apt.Availability = current.Availability
	}
	apt.Version++
	r.items[apt.ID] = cloneApartment(apt)
	return nil
}

func (r *ApartmentRepository) SetAvailability(ctx context.Context, id domainapartment.ID, expect, next domainapartment.Availability) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	apt, ok := r.items[id]
	if !ok {
		return domainapartment.ErrNotFound
	}
	if apt.Availability != expect {
		return domainapartment.ErrAvailabilityConflict
	}
	apt.Availability = next
	return nil
}

func (r *ApartmentRepository) snapshot(id domainapartment.ID) *domainapartment.Apartment {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if apt, ok := r.items[id]; ok {
		return cloneApartment(apt)
	}
	return nil
}

func (r *ApartmentRepository) restore(id domainapartment.ID, prev *domainapartment.Apartment) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev == nil {
		delete(r.items, id)
		return
	}
	r.items[id] = cloneApartment(prev)
}

// BookingRepository stores bookings with a unique index on the booking code.
type BookingRepository struct {
	mu     sync.RWMutex
	items  map[domainbooking.ID]*domainbooking.Booking
	byCode map[string]domainbooking.ID
}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{
		items:  make(map[domainbooking.ID]*domainbooking.Booking),
		byCode: make(map[string]domainbooking.ID),
	}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.ID) (*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.items[id]
	if !ok {
		return nil, domainbooking.ErrNotFound
	}
	return cloneBooking(b), nil
}

func (r *BookingRepository) Create(ctx context.Context, b *domainbooking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.byCode[b.Code]; taken {
		return domainbooking.ErrDuplicateCode
	}
	if _, exists := r.items[b.ID]; exists {
		return domainbooking.ErrConcurrentUpdate
	}
	b.Version = 1
	r.byCode[b.Code] = b.ID
	r.items[b.ID] = cloneBooking(b)
	return nil
}

func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.items[b.ID]
	if !ok {
		return domainbooking.ErrNotFound
	}
	if current.Version != b.Version {
		return domainbooking.ErrConcurrentUpdate
	}
	b.Version++
	r.items[b.ID] = cloneBooking(b)
	return nil
}

func (r *BookingRepository) List(ctx context.Context, filter domainbooking.Filter) ([]*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainbooking.Booking, 0)
	for _, b := range r.items {
		if filter.Matches(b) {
			out = append(out, cloneBooking(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *BookingRepository) snapshot(id domainbooking.ID) *domainbooking.Booking {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if b, ok := r.items[id]; ok {
		return cloneBooking(b)
	}
	return nil
}

func (r *BookingRepository) restore(id domainbooking.ID, prev *domainbooking.Booking) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.items[id]; ok {
		delete(r.byCode, current.Code)
		delete(r.items, id)
	}
	if prev != nil {
		r.byCode[prev.Code] = id
		r.items[id] = cloneBooking(prev)
	}
}

// PaymentRepository stores payments with a unique index on the payment code.
type PaymentRepository struct {
	mu     sync.RWMutex
	items  map[domainpayment.ID]*domainpayment.Payment
	byCode map[string]domainpayment.ID
}

func NewPaymentRepository() *PaymentRepository {
	return &PaymentRepository{
		items:  make(map[domainpayment.ID]*domainpayment.Payment),
		byCode: make(map[string]domainpayment.ID),
	}
}

func (r *PaymentRepository) ByID(ctx context.Context, id domainpayment.ID) (*domainpayment.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.items[id]
	if !ok {
		return nil, domainpayment.ErrNotFound
	}
	return clonePayment(p), nil
}

func (r *PaymentRepository) Create(ctx context.Context, p *domainpayment.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.byCode[p.Code]; taken {
		return domainpayment.ErrDuplicateCode
	}
	if _, exists := r.items[p.ID]; exists {
		return domainpayment.ErrConcurrentUpdate
	}
	p.Version = 1
	r.byCode[p.Code] = p.ID
	r.items[p.ID] = clonePayment(p)
	return nil
}

func (r *PaymentRepository) Save(ctx context.Context, p *domainpayment.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.items[p.ID]
	if !ok {
		return domainpayment.ErrNotFound
	}
	if current.Version != p.Version {
		return domainpayment.ErrConcurrentUpdate
	}
	p.Version++
	r.items[p.ID] = clonePayment(p)
	return nil
}

func (r *PaymentRepository) List(ctx context.Context, filter domainpayment.Filter) ([]*domainpayment.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainpayment.Payment, 0)
	for _, p := range r.items {
		if filter.Matches(p) {
			out = append(out, clonePayment(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *PaymentRepository) snapshot(id domainpayment.ID) *domainpayment.Payment {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.items[id]; ok {
		return clonePayment(p)
	}
	return nil
}

func (r *PaymentRepository) restore(id domainpayment.ID, prev *domainpayment.Payment) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.items[id]; ok {
		delete(r.byCode, current.Code)
		delete(r.items, id)
	}
	if prev != nil {
		r.byCode[prev.Code] = id
		r.items[id] = clonePayment(prev)
	}
}

// ReviewRepository stores reviews with a unique index on the booking.
type ReviewRepository struct {
	mu        sync.RWMutex
	items     map[domainreviews.ID]*domainreviews.Review
	byBooking map[domainbooking.ID]domainreviews.ID
}

func NewReviewRepository() *ReviewRepository {
	return &ReviewRepository{
		items:     make(map[domainreviews.ID]*domainreviews.Review),
		byBooking: make(map[domainbooking.ID]domainreviews.ID),
	}
}

func (r *ReviewRepository) ByID(ctx context.Context, id domainreviews.ID) (*domainreviews.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	review, ok := r.items[id]
	if !ok {
		return nil, domainreviews.ErrNotFound
	}
	return cloneReview(review), nil
}

func (r *ReviewRepository) ByBooking(ctx context.Context, bookingID domainbooking.ID) (*domainreviews.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byBooking[bookingID]
	if !ok {
		return nil, domainreviews.ErrNotFound
	}
	return cloneReview(r.items[id]), nil
}

func (r *ReviewRepository) Create(ctx context.Context, review *domainreviews.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.byBooking[review.BookingID]; taken {
		return domainreviews.ErrDuplicateReview
	}
	review.Version = 1
	r.byBooking[review.BookingID] = review.ID
	r.items[review.ID] = cloneReview(review)
	return nil
}

func (r *ReviewRepository) Save(ctx context.Context, review *domainreviews.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.items[review.ID]
	if !ok {
		return domainreviews.ErrNotFound
	}
	if current.Version != review.Version {
		return domainreviews.ErrConcurrentUpdate
	}
	review.Version++
	r.items[review.ID] = cloneReview(review)
	return nil
}

func (r *ReviewRepository) Delete(ctx context.Context, id domainreviews.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	review, ok := r.items[id]
	if !ok {
		return domainreviews.ErrNotFound
	}
	delete(r.byBooking, review.BookingID)
	delete(r.items, id)
	return nil
}

func (r *ReviewRepository) List(ctx context.Context, filter domainreviews.Filter) ([]*domainreviews.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainreviews.Review, 0)
	for _, review := range r.items {
		if filter.Matches(review) {
			out = append(out, cloneReview(review))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *ReviewRepository) snapshot(id domainreviews.ID) *domainreviews.Review {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if review, ok := r.items[id]; ok {
		return cloneReview(review)
	}
	return nil
}

func (r *ReviewRepository) restore(id domainreviews.ID, prev *domainreviews.Review) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.items[id]; ok {
		delete(r.byBooking, current.BookingID)
		delete(r.items, id)
	}
	if prev != nil {
		r.byBooking[prev.BookingID] = id
		r.items[id] = cloneReview(prev)
	}
}

// clones drop pending events so a stored copy never leaks them twice.

func cloneApartment(a *domainapartment.Apartment) *domainapartment.Apartment {
	cp := *a
	cp.ClearEvents()
	return &cp
}

func cloneBooking(b *domainbooking.Booking) *domainbooking.Booking {
	cp := *b
	cp.ClearEvents()
	return &cp
}

func clonePayment(p *domainpayment.Payment) *domainpayment.Payment {
	cp := *p
	cp.ClearEvents()
	return &cp
}

func cloneReview(r *domainreviews.Review) *domainreviews.Review {
	cp := *r
	cp.Photos = append([]string(nil), r.Photos...)
	cp.ClearEvents()
	return &cp
}

var (
	_ domainapartment.Repository = (*ApartmentRepository)(nil)
	_ domainbooking.Repository   = (*BookingRepository)(nil)
	_ domainpayment.Repository   = (*PaymentRepository)(nil)
	_ domainreviews.Repository   = (*ReviewRepository)(nil)
)
