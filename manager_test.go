package dispatch

import (
	"context"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestManager_RegisteredCommands_DedupesAcrossInserts(t *testing.T) {
	mgr := NewManager[string](nil, allowAll)
	var got int
	give := buildGiveCommand(t, &got)
	require.NoError(t, mgr.Register(give))

	bar, err := NewCommandBuilder[string](NewLiteralComponent[string]("bar")).Executes(noopHandler).Build()
	require.NoError(t, err)
	require.NoError(t, mgr.Register(bar))

	require.Len(t, mgr.RegisteredCommands(), 2)
}

func TestManager_RegisterAndExecute(t *testing.T) {
	mgr := NewManager[string](nil, allowAll)
	var got int
	cmd := buildGiveCommand(t, &got)
	require.NoError(t, mgr.Register(cmd))
	require.Len(t, mgr.RegisteredCommands(), 1)

	res, err := mgr.Execute(context.Background(), "alice", "give 5").MustGet()
	require.NoError(t, err)
	require.Equal(t, 5, got)
	require.Same(t, cmd, res.Command)
}

func TestManager_Suggest(t *testing.T) {
	mgr := NewManager[string](nil, allowAll)
	var got int
	require.NoError(t, mgr.Register(buildGiveCommand(t, &got)))

	suggestions, err := mgr.Suggest(context.Background(), "alice", "gi").MustGet()
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	require.Equal(t, "give", suggestions[0].Text)
}

func TestManager_Use_PreprocessorRejectsInput(t *testing.T) {
	mgr := NewManager[string](nil, allowAll)
	var got int
	require.NoError(t, mgr.Register(buildGiveCommand(t, &got)))

	mgr.Use(func(ctx context.Context, tc *TreeContext[string], cur *Cursor) Result[bool] {
		return Success(false)
	})

	_, err := mgr.Parse(context.Background(), "alice", "give 5").MustGet()
	var target *InvalidSyntaxError[string]
	require.ErrorAs(t, err, &target)

	suggestions, err := mgr.Suggest(context.Background(), "alice", "gi").MustGet()
	require.NoError(t, err)
	require.Empty(t, suggestions)
}

func TestManager_Use_RunsLIFO(t *testing.T) {
	mgr := NewManager[string](nil, allowAll)
	var order []string
	mgr.Use(func(ctx context.Context, tc *TreeContext[string], cur *Cursor) Result[bool] {
		order = append(order, "first")
		return Success(true)
	})
	mgr.Use(func(ctx context.Context, tc *TreeContext[string], cur *Cursor) Result[bool] {
		order = append(order, "second")
		return Success(true)
	})
	var got int
	require.NoError(t, mgr.Register(buildGiveCommand(t, &got)))

	_, err := mgr.Parse(context.Background(), "alice", "give 5").MustGet()
	require.NoError(t, err)
	require.Equal(t, []string{"second", "first"}, order)
}

func TestManager_ParserRegistry(t *testing.T) {
	mgr := NewManager[string](nil, allowAll)
	intType := reflect.TypeOf(0)
	_, ok := mgr.LookupParser(intType)
	require.False(t, ok)

	mgr.RegisterParser(intType, intParser{})
	factory, ok := mgr.LookupParser(intType)
	require.True(t, ok)
	require.Equal(t, intParser{}, factory)
}

func TestManager_HasPermission(t *testing.T) {
	mgr := NewManager[string](nil, denyAll)
	ok, err := mgr.HasPermission(context.Background(), "alice", LeafPermission("give.use"))
	require.NoError(t, err)
	require.False(t, ok)

	allow := NewManager[string](nil, allowAll)
	ok, err = allow.HasPermission(context.Background(), "alice", EmptyPermission())
	require.NoError(t, err)
	require.True(t, ok)
}
