package middleware

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vidaview/internal/app/commands"
	"vidaview/internal/app/locking"
	"vidaview/internal/app/notifications"
	"vidaview/internal/app/outbox"
	"vidaview/internal/app/policies"
	"vidaview/internal/app/uow"
	domainapartment "vidaview/internal/domain/apartment"
	domainbooking "vidaview/internal/domain/booking"
	domainpayment "vidaview/internal/domain/payment"
	domainreviews "vidaview/internal/domain/reviews"
	"vidaview/internal/domain/shared/errs"
)

type pingCommand struct {
	key string
}

func (c pingCommand) Key() string            { return "test.ping" }
func (c pingCommand) IdempotencyKey() string { return c.key }
func (c pingCommand) ResultPrototype() any   { return &pingResult{} }
func (c pingCommand) Validate() error        { return nil }

type pingResult struct {
	Count int `json:"count"`
}

type fakeUnit struct {
	committed  bool
	rolledBack bool
}

func (u *fakeUnit) Apartments() domainapartment.Repository { return nil }
func (u *fakeUnit) Bookings() domainbooking.Repository     { return nil }
func (u *fakeUnit) Payments() domainpayment.Repository     { return nil }
func (u *fakeUnit) Reviews() domainreviews.Repository      { return nil }
func (u *fakeUnit) Commit(context.Context) error           { u.committed = true; return nil }
func (u *fakeUnit) Rollback(context.Context) error         { u.rolledBack = true; return nil }

type fakeFactory struct {
	units []*fakeUnit
}

func (f *fakeFactory) Begin(context.Context, uow.TxOptions) (uow.UnitOfWork, error) {
	u := &fakeUnit{}
	f.units = append(f.units, u)
	return u, nil
}

type memoryIdempotency struct {
	items map[string]IdempotencyRecord
}

func (m *memoryIdempotency) Get(_ context.Context, key string) (IdempotencyRecord, bool, error) {
	rec, ok := m.items[key]
	return rec, ok, nil
}

func (m *memoryIdempotency) Save(_ context.Context, rec IdempotencyRecord) error {
	m.items[rec.Key] = rec
	return nil
}

func busWith(handler func(ctx context.Context, cmd pingCommand) (*pingResult, error)) *commands.InMemoryBus {
	bus := commands.NewInMemoryBus()
	commands.Register(bus, commands.HandlerFunc[pingCommand, *pingResult](handler))
	return bus
}

func TestTransactionCommitsOnSuccess(t *testing.T) {
	factory := &fakeFactory{}
	bus := busWith(func(ctx context.Context, _ pingCommand) (*pingResult, error) {
		_, ok := uow.FromContext(ctx)
		assert.True(t, ok)
		return &pingResult{Count: 1}, nil
	})
	chained := ChainCommands(bus, Transaction(factory))

	_, err := chained.Dispatch(context.Background(), pingCommand{})
	require.NoError(t, err)
	require.Len(t, factory.units, 1)
	assert.True(t, factory.units[0].committed)
	assert.False(t, factory.units[0].rolledBack)
}

func TestTransactionRollsBackOnError(t *testing.T) {
	factory := &fakeFactory{}
	bus := busWith(func(context.Context, pingCommand) (*pingResult, error) {
		return nil, errs.Conflict("boom")
	})
	chained := ChainCommands(bus, Transaction(factory))

	_, err := chained.Dispatch(context.Background(), pingCommand{})
	require.ErrorIs(t, err, errs.ErrConflict)
	assert.True(t, factory.units[0].rolledBack)
	assert.False(t, factory.units[0].committed)
}

type readFlagCommand struct{}

func (readFlagCommand) Key() string       { return "test.read_flag" }
func (readFlagCommand) NonTransactional() {}

func TestTransactionSkipsNonTransactionalAndJoinsOpenUnit(t *testing.T) {
	factory := &fakeFactory{}
	bus := commands.NewInMemoryBus()
	commands.Register(bus, commands.HandlerFunc[readFlagCommand, *pingResult](func(ctx context.Context, _ readFlagCommand) (*pingResult, error) {
		_, ok := uow.FromContext(ctx)
		assert.False(t, ok)
		return &pingResult{}, nil
	}))
	commands.Register(bus, commands.HandlerFunc[pingCommand, *pingResult](func(context.Context, pingCommand) (*pingResult, error) {
		return &pingResult{Count: 1}, nil
	}))
	chained := ChainCommands(bus, Transaction(factory))

	_, err := chained.Dispatch(context.Background(), readFlagCommand{})
	require.NoError(t, err)
	assert.Empty(t, factory.units)

	outer := &fakeUnit{}
	_, err = chained.Dispatch(uow.Attach(context.Background(), outer), pingCommand{})
	require.NoError(t, err)
	assert.Empty(t, factory.units)
	assert.False(t, outer.committed)
}

func TestIdempotencyReplaysResultAndErrorKind(t *testing.T) {
	store := &memoryIdempotency{items: map[string]IdempotencyRecord{}}
	calls := 0
	bus := busWith(func(_ context.Context, cmd pingCommand) (*pingResult, error) {
		calls++
		if cmd.key == "bad" {
			return nil, errs.Validation("ping: bad input")
		}
		return &pingResult{Count: calls}, nil
	})
	chained := ChainCommands(bus, Idempotency(store, nil))

	first, err := commands.Dispatch[pingCommand, *pingResult](context.Background(), chained, pingCommand{key: "k1"})
	require.NoError(t, err)
	second, err := commands.Dispatch[pingCommand, *pingResult](context.Background(), chained, pingCommand{key: "k1"})
	require.NoError(t, err)
	assert.Equal(t, first.Count, second.Count)
	assert.Equal(t, 1, calls)

	_, err = chained.Dispatch(context.Background(), pingCommand{key: "bad"})
	require.ErrorIs(t, err, errs.ErrValidation)
	_, err = chained.Dispatch(context.Background(), pingCommand{key: "bad"})
	require.ErrorIs(t, err, errs.ErrValidation)
	assert.Equal(t, "ping: bad input", err.Error())
	assert.Equal(t, 2, calls)
	assert.Contains(t, store.items, "test.ping/k1")
}

func TestIdempotencySkipsTransientFailures(t *testing.T) {
	store := &memoryIdempotency{items: map[string]IdempotencyRecord{}}
	failures := []error{locking.ErrNotAcquired, errors.New("mongo: connection reset")}
	calls := 0
	bus := busWith(func(context.Context, pingCommand) (*pingResult, error) {
		calls++
		if calls <= len(failures) {
			return nil, failures[calls-1]
		}
		return &pingResult{Count: calls}, nil
	})
	chained := ChainCommands(bus, Idempotency(store, nil))

	_, err := chained.Dispatch(context.Background(), pingCommand{key: "retry"})
	require.ErrorIs(t, err, locking.ErrNotAcquired)
	_, err = chained.Dispatch(context.Background(), pingCommand{key: "retry"})
	require.Error(t, err)
	assert.Empty(t, store.items)

	out, err := commands.Dispatch[pingCommand, *pingResult](context.Background(), chained, pingCommand{key: "retry"})
	require.NoError(t, err)
	assert.Equal(t, 3, out.Count)
	assert.Len(t, store.items, 1)
}

type recordingNotifier struct {
	sent []policies.Notification
}

func (r *recordingNotifier) Enqueue(_ context.Context, msg policies.Notification) error {
	r.sent = append(r.sent, msg)
	return nil
}

func TestNotificationFlushOnlyAfterSuccess(t *testing.T) {
	sink := &recordingNotifier{}
	deferred := &notifications.Deferred{Next: sink}
	fail := false
	delivered := 0
	bus := busWith(func(ctx context.Context, _ pingCommand) (*pingResult, error) {
		_ = deferred.Enqueue(ctx, policies.Notification{UserID: "u1", Title: "hi"})
		assert.Len(t, sink.sent, delivered)
		if fail {
			return nil, errors.New("handler failed")
		}
		return &pingResult{}, nil
	})
	chained := ChainCommands(bus, NotificationFlush(deferred))

	_, err := chained.Dispatch(context.Background(), pingCommand{})
	require.NoError(t, err)
	assert.Len(t, sink.sent, 1)

	delivered = 1
	fail = true
	_, err = chained.Dispatch(context.Background(), pingCommand{})
	require.Error(t, err)
	assert.Len(t, sink.sent, 1)
}

type orderLocker struct {
	log *[]string
}

func (l orderLocker) Acquire(_ context.Context, key string) (func(), error) {
	*l.log = append(*l.log, "lock "+key)
	return func() { *l.log = append(*l.log, "unlock "+key) }, nil
}

type loggingUnit struct {
	fakeUnit
	log *[]string
}

func (u *loggingUnit) Commit(context.Context) error {
	*u.log = append(*u.log, "commit")
	return nil
}

type loggingFactory struct {
	log *[]string
}

func (f loggingFactory) Begin(context.Context, uow.TxOptions) (uow.UnitOfWork, error) {
	return &loggingUnit{log: f.log}, nil
}

func TestLockScopeReleasesAfterCommit(t *testing.T) {
	var log []string
	locker := orderLocker{log: &log}
	bus := busWith(func(ctx context.Context, _ pingCommand) (*pingResult, error) {
		release, err := locking.Hold(ctx, locker, locking.ApartmentKey("a1"))
		if err != nil {
			return nil, err
		}
		defer release()
		return &pingResult{}, nil
	})
	chained := ChainCommands(bus, LockScope(), Transaction(loggingFactory{log: &log}))

	_, err := chained.Dispatch(context.Background(), pingCommand{})
	require.NoError(t, err)
	assert.Equal(t, []string{"lock apartment:a1", "commit", "unlock apartment:a1"}, log)
}

type strictCommand struct{ note string }

func (strictCommand) Key() string { return "test.strict" }

func (c strictCommand) Validate() error {
	if c.note == "" {
		return errors.New("note is required")
	}
	return nil
}

func TestValidationMiddleware(t *testing.T) {
	bus := busWith(func(context.Context, pingCommand) (*pingResult, error) { return &pingResult{}, nil })
	calls := 0
	commands.Register(bus, commands.HandlerFunc[strictCommand, *pingResult](func(context.Context, strictCommand) (*pingResult, error) {
		calls++
		return &pingResult{}, nil
	}))
	chained := ChainCommands(bus, Validation())

	_, err := chained.Dispatch(context.Background(), pingCommand{})
	require.NoError(t, err)

	_, err = chained.Dispatch(context.Background(), strictCommand{})
	require.ErrorIs(t, err, errs.ErrValidation)
	assert.Equal(t, "note is required", err.Error())
	assert.Zero(t, calls)

	_, err = chained.Dispatch(context.Background(), strictCommand{note: "ok"})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

type gatedCommand struct {
	role string
	note string
}

func (gatedCommand) Key() string { return "test.gated" }

func (c gatedCommand) Authorize() error {
	if c.role != "tenant" {
		return errs.Authorization("tenants only")
	}
	return nil
}

func (c gatedCommand) Validate() error {
	if c.note == "" {
		return errs.Validation("note is required")
	}
	return nil
}

func TestValidationChecksRoleBeforeInput(t *testing.T) {
	bus := busWith(func(context.Context, pingCommand) (*pingResult, error) { return &pingResult{}, nil })
	calls := 0
	commands.Register(bus, commands.HandlerFunc[gatedCommand, *pingResult](func(context.Context, gatedCommand) (*pingResult, error) {
		calls++
		return &pingResult{}, nil
	}))
	chained := ChainCommands(bus, Validation())

	_, err := chained.Dispatch(context.Background(), gatedCommand{role: "owner"})
	require.ErrorIs(t, err, errs.ErrAuthorization)

	_, err = chained.Dispatch(context.Background(), gatedCommand{role: "tenant"})
	require.ErrorIs(t, err, errs.ErrValidation)
	assert.Zero(t, calls)

	_, err = chained.Dispatch(context.Background(), gatedCommand{role: "tenant", note: "ok"})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

type recordingOutbox struct {
	records []outbox.EventRecord
}

func (r *recordingOutbox) Add(_ context.Context, rec outbox.EventRecord) error {
	r.records = append(r.records, rec)
	return nil
}

func (r *recordingOutbox) Flush(context.Context) error { return nil }

func TestOutboxBufferWritesAfterCommitOnly(t *testing.T) {
	store := &recordingOutbox{}
	deferred := &outbox.Deferred{Next: store}
	fail := false
	written := 0
	bus := busWith(func(ctx context.Context, _ pingCommand) (*pingResult, error) {
		require.NoError(t, deferred.Add(ctx, outbox.EventRecord{ID: "e"}))
		assert.Len(t, store.records, written)
		if fail {
			return nil, errs.Conflict("lost race")
		}
		return &pingResult{}, nil
	})
	factory := &fakeFactory{}
	chained := ChainCommands(bus, OutboxBuffer(deferred), Transaction(factory))

	_, err := chained.Dispatch(context.Background(), pingCommand{})
	require.NoError(t, err)
	assert.Len(t, store.records, 1)
	assert.True(t, factory.units[0].committed)

	written = 1
	fail = true
	_, err = chained.Dispatch(context.Background(), pingCommand{})
	require.ErrorIs(t, err, errs.ErrConflict)
	assert.Len(t, store.records, 1)
}
