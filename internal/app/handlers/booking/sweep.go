package booking

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"vidaview/internal/app/access"
	"vidaview/internal/app/commands"
	"vidaview/internal/app/handlers/support"
	"vidaview/internal/app/uow"
	domainbooking "vidaview/internal/domain/booking"
)

// SweepResult summarises one lifecycle sweep.
type SweepResult struct {
	Activated int
	Completed int
	Failed    int
}

// Sweeper moves confirmed bookings whose term has started to active and active
// bookings whose term has ended to completed. Each transition is dispatched as
// its own command so it gets its own transaction, lock and notifications.
type Sweeper struct {
	UoWFactory uow.UoWFactory
	Bus        commands.Bus
	Logger     *slog.Logger
	Clock      func() time.Time
}

func (s *Sweeper) Sweep(ctx context.Context) (SweepResult, error) {
	if s.Bus == nil {
		return SweepResult{}, commands.ErrNilBus
	}
	now := time.Now().UTC()
	if s.Clock != nil {
		now = s.Clock().UTC()
	}
	due, err := s.dueBookings(ctx)
	if err != nil {
		return SweepResult{}, err
	}

	var result SweepResult
	for _, b := range due {
		var cmd commands.Command
		switch {
		case b.Status == domainbooking.StatusConfirmed && b.Term.Started(now):
			cmd = ActivateBookingCommand{Actor: access.System, BookingID: string(b.ID)}
		case b.Status == domainbooking.StatusActive && b.Term.Ended(now):
			cmd = CompleteBookingCommand{Actor: access.System, BookingID: string(b.ID)}
		default:
			continue
		}
		if _, err := s.Bus.Dispatch(ctx, cmd); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return result, err
			}
			result.Failed++
			s.logger().Warn("lifecycle sweep transition failed", "booking_id", b.ID, "command", cmd.Key(), "error", err)
			continue
		}
		if b.Status == domainbooking.StatusConfirmed {
			result.Activated++
		} else {
			result.Completed++
		}
	}
	if result.Activated+result.Completed+result.Failed > 0 {
		s.logger().Info("lifecycle sweep finished", "activated", result.Activated, "completed", result.Completed, "failed", result.Failed)
	}
	return result, nil
}

func (s *Sweeper) dueBookings(ctx context.Context) ([]*domainbooking.Booking, error) {
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, s.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	return unit.Bookings().List(execCtx, domainbooking.Filter{
		Statuses: []domainbooking.Status{domainbooking.StatusConfirmed, domainbooking.StatusActive},
	})
}

func (s *Sweeper) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// Name and Run let the sweeper be driven by schedule.Periodic.
func (s *Sweeper) Name() string { return "booking.lifecycle_sweep" }

func (s *Sweeper) Run(ctx context.Context) error {
	_, err := s.Sweep(ctx)
	return err
}
