package dispatch

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type intParser struct{}

func (intParser) Parse(ctx context.Context, tc *TreeContext[string], cur *Cursor) Result[int] {
	n, err := cur.ReadInteger()
	if err != nil {
		return Failure[int](err)
	}
	return Success(n)
}
func (intParser) RequestedArgumentCount() int { return 1 }

func TestNewLiteralComponent_CanonicalNameIsFirstAlias(t *testing.T) {
	c := NewLiteralComponent[string]("give", "g")
	require.Equal(t, "give", c.Name())
	require.True(t, c.HasAlias("give"))
	require.True(t, c.HasAlias("g"))
	require.False(t, c.HasAlias("take"))
}

func TestComponent_MergeAliases_NoDuplicates(t *testing.T) {
	c := NewLiteralComponent[string]("give", "g")
	other := NewLiteralComponent[string]("give", "gimme")
	c.mergeAliases(other)
	require.ElementsMatch(t, []string{"give", "g", "gimme"}, c.Aliases())
	c.mergeAliases(other)
	require.ElementsMatch(t, []string{"give", "g", "gimme"}, c.Aliases())
}

func TestNewRequiredComponent_ParsesThroughAdapter(t *testing.T) {
	c := NewRequiredComponent[string, int]("amount", intParser{})
	require.Equal(t, KindRequiredVariable, c.Kind())
	require.Equal(t, 1, c.RequestedArgumentCount())

	tc := newTreeContext[string]("alice")
	cur := NewCursor("42")
	v, err := c.parser.parse(context.Background(), tc, cur)
	require.NoError(t, err)
	require.Equal(t, 42, v)
}

func TestComponent_SetOwningCommand_WriteOnce(t *testing.T) {
	c := NewLiteralComponent[string]("give")
	cmd := &Command[string]{}
	require.NoError(t, c.setOwningCommand(cmd))
	require.Same(t, cmd, c.OwningCommand())

	err := c.setOwningCommand(&Command[string]{})
	var dup *DuplicateCommandChainError
	require.True(t, errors.As(err, &dup))
}

func TestComponent_IsOptional(t *testing.T) {
	require.False(t, NewLiteralComponent[string]("give").IsOptional())
	require.False(t, NewRequiredComponent[string, int]("n", intParser{}).IsOptional())
	require.True(t, NewOptionalComponent[string, int]("n", intParser{}, ConstantDefault[string, int]{Value: 0}).IsOptional())
}

func TestComponent_EquivalentTo(t *testing.T) {
	a := NewRequiredComponent[string, int]("n", intParser{})
	b := NewRequiredComponent[string, int]("n", intParser{})
	require.True(t, a.equivalentTo(b))

	c := NewRequiredComponent[string, string]("n", nil)
	require.False(t, a.equivalentTo(c))
}

func TestDefaultAdapter_Resolve(t *testing.T) {
	constAdapter := defaultAdapter[string, int]{d: ConstantDefault[string, int]{Value: 7}}
	v, lit, parsed, err := constAdapter.resolve(context.Background(), newTreeContext[string]("a"))
	require.NoError(t, err)
	require.Equal(t, 7, v)
	require.Empty(t, lit)
	require.False(t, parsed)

	parsedAdapter := defaultAdapter[string, int]{d: ParsedDefault[string, int]{Literal: "7"}}
	_, lit, parsed, err = parsedAdapter.resolve(context.Background(), newTreeContext[string]("a"))
	require.NoError(t, err)
	require.Equal(t, "7", lit)
	require.True(t, parsed)

	callAdapter := defaultAdapter[string, int]{d: CallableDefault[string, int]{
		Fn: func(ctx context.Context, tc *TreeContext[string]) (int, error) { return 9, nil },
	}}
	v, _, parsed, err = callAdapter.resolve(context.Background(), newTreeContext[string]("a"))
	require.NoError(t, err)
	require.Equal(t, 9, v)
	require.False(t, parsed)
}
