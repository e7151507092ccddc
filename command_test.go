package dispatch

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func noopHandler(ctx context.Context, tc *TreeContext[string]) error { return nil }

func TestNewCommand_RequiresAtLeastOneComponent(t *testing.T) {
	_, err := NewCommand[string](noopHandler)
	var invalid *InvalidCommandError
	require.True(t, errors.As(err, &invalid))
}

func TestNewCommand_RequiredAfterOptionalIsInvalid(t *testing.T) {
	optional := NewOptionalComponent[string, int]("a", intParser{}, ConstantDefault[string, int]{Value: 0})
	required := NewRequiredComponent[string, int]("b", intParser{})
	_, err := NewCommand[string](noopHandler, optional, required)
	var invalid *InvalidCommandError
	require.True(t, errors.As(err, &invalid))
}

func TestNewCommand_FlagMustBeLast(t *testing.T) {
	flag := NewFlagComponent[string, string]("f", flagParserStub{})
	required := NewRequiredComponent[string, int]("b", intParser{})
	_, err := NewCommand[string](noopHandler, flag, required)
	var invalid *InvalidCommandError
	require.True(t, errors.As(err, &invalid))
}

func TestNewCommand_AtMostOneFlag(t *testing.T) {
	f1 := NewFlagComponent[string, string]("f1", flagParserStub{})
	f2 := NewFlagComponent[string, string]("f2", flagParserStub{})
	_, err := NewCommand[string](noopHandler, f1, f2)
	var invalid *InvalidCommandError
	require.True(t, errors.As(err, &invalid))
}

func TestNewCommand_Valid(t *testing.T) {
	cmd, err := NewCommand[string](noopHandler, NewLiteralComponent[string]("give"))
	require.NoError(t, err)
	require.NotNil(t, cmd.Metadata)
	require.True(t, cmd.Permission.IsEmpty())
}

func TestCommand_AcceptsSender(t *testing.T) {
	cmd, err := NewCommand[string](noopHandler, NewLiteralComponent[string]("give"))
	require.NoError(t, err)
	require.True(t, cmd.AcceptsSender("anyone"))

	cmd.RequiredSenderCheck = func(s string) bool { return s == "admin" }
	require.True(t, cmd.AcceptsSender("admin"))
	require.False(t, cmd.AcceptsSender("guest"))
}

type flagParserStub struct{}

func (flagParserStub) Parse(ctx context.Context, tc *TreeContext[string], cur *Cursor) Result[string] {
	return Success(cur.ReadString())
}
func (flagParserStub) RequestedArgumentCount() int { return 1 }
func (flagParserStub) ParseCurrentFlag(cur *Cursor) (string, bool) {
	return "", false
}
func (flagParserStub) FlagNames() []string { return []string{"f"} }
