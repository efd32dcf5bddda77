package commands

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoCommand struct{ Text string }

func (echoCommand) Key() string { return "test.echo" }

type otherCommand struct{}

func (otherCommand) Key() string { return "test.other" }

func TestDispatchTyped(t *testing.T) {
	bus := NewInMemoryBus()
	Register(bus, HandlerFunc[echoCommand, string](func(_ context.Context, cmd echoCommand) (string, error) {
		return "echo:" + cmd.Text, nil
	}))

	out, err := Dispatch[echoCommand, string](context.Background(), bus, echoCommand{Text: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "echo:hi", out)

	_, err = Dispatch[echoCommand, int](context.Background(), bus, echoCommand{})
	require.ErrorIs(t, err, ErrResultType)
	assert.Contains(t, err.Error(), "test.echo returned string, want int")

	_, err = bus.Dispatch(context.Background(), otherCommand{})
	require.ErrorIs(t, err, ErrHandlerNotFound)
	assert.Contains(t, err.Error(), "test.other")

	_, err = Dispatch[echoCommand, string](context.Background(), nil, echoCommand{})
	require.ErrorIs(t, err, ErrNilBus)
	assert.Equal(t, []string{"test.echo"}, bus.Keys())
}

func TestDuplicateRegistrationPanics(t *testing.T) {
	bus := NewInMemoryBus()
	h := HandlerFunc[echoCommand, string](func(context.Context, echoCommand) (string, error) { return "", nil })
	Register(bus, h)
	assert.Panics(t, func() { Register(bus, h) })
}

type blankCommand struct{}

func (blankCommand) Key() string { return "" }

func TestRegisterRejectsEmptyKey(t *testing.T) {
	h := HandlerFunc[blankCommand, string](func(context.Context, blankCommand) (string, error) { return "", nil })
	assert.Panics(t, func() { Register(NewInMemoryBus(), h) })
}
