package dispatch

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCommandBuilder_Build(t *testing.T) {
	cmd, err := NewCommandBuilder[string](
		NewLiteralComponent[string]("give"),
		NewRequiredComponent[string, int]("amount", intParser{}),
	).
		Requires(LeafPermission("give.use")).
		RequiresSender("Player", func(s string) bool { return s != "console" }).
		WithMetadata("category", "economy").
		Executes(noopHandler).
		Build()

	require.NoError(t, err)
	require.Equal(t, LeafPermission("give.use"), cmd.Permission)
	require.Equal(t, "Player", cmd.RequiredSenderType)
	require.Equal(t, "economy", cmd.Metadata["category"])
	require.False(t, cmd.AcceptsSender("console"))
	require.True(t, cmd.AcceptsSender("steve"))
}

func TestCommandBuilder_Build_PropagatesInvalidCommandError(t *testing.T) {
	_, err := NewCommandBuilder[string]().Build()
	require.Error(t, err)
}
