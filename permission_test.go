package dispatch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func grantOnly(names ...string) PermissionPredicate[string] {
	granted := make(map[string]bool, len(names))
	for _, n := range names {
		granted[n] = true
	}
	return func(ctx context.Context, sender string, permission string) (bool, error) {
		return granted[permission], nil
	}
}

func TestEvaluatePermission_Empty(t *testing.T) {
	ok, err := EvaluatePermission(context.Background(), EmptyPermission(), "alice", grantOnly())
	require.NoError(t, err)
	require.True(t, ok)
}

func TestEvaluatePermission_Leaf(t *testing.T) {
	predicate := grantOnly("a")
	ok, err := EvaluatePermission(context.Background(), LeafPermission("a"), "alice", predicate)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = EvaluatePermission(context.Background(), LeafPermission("b"), "alice", predicate)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestEvaluatePermission_And(t *testing.T) {
	predicate := grantOnly("a")
	expr := And(LeafPermission("a"), LeafPermission("b"))
	ok, err := EvaluatePermission(context.Background(), expr, "alice", predicate)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestEvaluatePermission_Or(t *testing.T) {
	predicate := grantOnly("b")
	expr := Or(LeafPermission("a"), LeafPermission("b"))
	ok, err := EvaluatePermission(context.Background(), expr, "alice", predicate)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestEvaluatePermission_Not(t *testing.T) {
	predicate := grantOnly("a")
	ok, err := EvaluatePermission(context.Background(), Not(LeafPermission("a")), "alice", predicate)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestAnd_NoArgsIsEmpty(t *testing.T) {
	require.True(t, And().IsEmpty())
}

func TestOr_DropsEmptyOperands(t *testing.T) {
	expr := Or(EmptyPermission(), LeafPermission("a"))
	require.Equal(t, LeafPermission("a"), expr)
}

func TestPermission_Interning(t *testing.T) {
	a := Or(LeafPermission("x"), LeafPermission("y"))
	b := Or(LeafPermission("y"), LeafPermission("x"))
	require.Equal(t, a, b)
}

func TestPermission_String(t *testing.T) {
	expr := And(LeafPermission("a"), Not(LeafPermission("b")))
	require.Contains(t, expr.String(), "a")
	require.Contains(t, expr.String(), "!b")
}

func TestPermissionResult(t *testing.T) {
	require.True(t, Allowed().IsAllowed())
	denied := Denied(LeafPermission("x"))
	require.False(t, denied.IsAllowed())
	require.Equal(t, LeafPermission("x"), denied.Missing())
}
