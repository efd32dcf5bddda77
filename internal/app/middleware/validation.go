package middleware

import (
	"context"

	"vidaview/internal/app/commands"
	"vidaview/internal/domain/shared/errs"
)

type selfValidating interface {
	Validate() error
}

// roleGated commands check the caller's role without reading any state.
type roleGated interface {
	Authorize() error
}

// Validation rejects commands whose Authorize or Validate method fails before
// any lock or transaction is taken. Authorize runs first, so a caller without
// the role learns nothing about their input. Validate errors without a kind
// are reported as validation errors.
func Validation() CommandMiddleware {
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			if g, ok := cmd.(roleGated); ok {
				if err := g.Authorize(); err != nil {
					return nil, err
				}
			}
			if v, ok := cmd.(selfValidating); ok {
				if err := v.Validate(); err != nil {
					if errs.KindOf(err) == nil {
						err = &errs.Error{Kind: errs.ErrValidation, Msg: err.Error()}
					}
					return nil, err
				}
			}
			return next.Dispatch(ctx, cmd)
		})
	}
}
