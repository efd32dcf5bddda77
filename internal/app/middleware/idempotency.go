package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"vidaview/internal/app/commands"
	"vidaview/internal/app/locking"
	"vidaview/internal/domain/shared/errs"
)

// IdempotentCommand is implemented by commands that accept a client supplied
// Idempotency-Key. IdempotencyKey must already include the caller identity so
// two users can never replay each other's results.
type IdempotentCommand interface {
	commands.Command
	IdempotencyKey() string
	// ResultPrototype returns a pointer of the handler's result type.
	ResultPrototype() any
}

type IdempotencyRecord struct {
	Key        string
	Payload    []byte
	Error      string
	ErrorKind  string
	OccurredAt time.Time
}

type IdempotencyStore interface {
	Get(ctx context.Context, key string) (IdempotencyRecord, bool, error)
	Save(ctx context.Context, rec IdempotencyRecord) error
}

var errMissingPrototype = errors.New("middleware: idempotent command has no result prototype")

// Idempotency replays the stored outcome of a command seen before under the
// same key. Successes and classified domain failures are stored; lock
// contention and unclassified errors are not, so the client may retry them.
func Idempotency(store IdempotencyStore, clock func() time.Time) CommandMiddleware {
	if store == nil {
		panic("middleware: idempotency store required")
	}
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			idCmd, ok := cmd.(IdempotentCommand)
			if !ok || idCmd.IdempotencyKey() == "" {
				return next.Dispatch(ctx, cmd)
			}
			key := cmd.Key() + "/" + idCmd.IdempotencyKey()

			rec, found, err := store.Get(ctx, key)
			if err != nil {
				return nil, err
			}
			if found {
				return replay(rec, idCmd.ResultPrototype())
			}

			result, err := next.Dispatch(ctx, cmd)
			if err != nil && !recordable(err) {
				return nil, err
			}
			record := IdempotencyRecord{Key: key, OccurredAt: clock()}
			if err != nil {
				record.Error = err.Error()
				record.ErrorKind = errs.KindOf(err).Error()
				if saveErr := store.Save(ctx, record); saveErr != nil {
					return nil, errors.Join(err, saveErr)
				}
				return nil, err
			}
			if result != nil {
				if record.Payload, err = json.Marshal(result); err != nil {
					return nil, err
				}
			}
			if err := store.Save(ctx, record); err != nil {
				return nil, err
			}
			return result, nil
		})
	}
}

func recordable(err error) bool {
	return errs.KindOf(err) != nil && !errors.Is(err, locking.ErrNotAcquired)
}

func replay(rec IdempotencyRecord, proto any) (any, error) {
	if rec.Error != "" {
		return nil, replayError(rec)
	}
	if proto == nil {
		return nil, errMissingPrototype
	}
	if len(rec.Payload) == 0 {
		return nil, nil
	}
	if err := json.Unmarshal(rec.Payload, proto); err != nil {
		return nil, err
	}
	return proto, nil
}

var replayKinds = map[string]error{
	errs.ErrNotFound.Error():          errs.ErrNotFound,
	errs.ErrAuthorization.Error():     errs.ErrAuthorization,
	errs.ErrValidation.Error():        errs.ErrValidation,
	errs.ErrConflict.Error():          errs.ErrConflict,
	errs.ErrInvalidTransition.Error(): errs.ErrInvalidTransition,
}

// replayError rebuilds a stored failure under its original kind.
func replayError(rec IdempotencyRecord) error {
	if kind, ok := replayKinds[rec.ErrorKind]; ok {
		return &errs.Error{Kind: kind, Msg: rec.Error}
	}
	return errors.New(rec.Error)
}
