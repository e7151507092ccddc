package dispatch

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCursor_CanRead(t *testing.T) {
	c := NewCursor("abc")
	require.True(t, c.CanRead(3))
	require.False(t, c.CanRead(4))
}

func TestCursor_ReadString(t *testing.T) {
	c := NewCursor("foo bar")
	require.Equal(t, "foo", c.ReadString())
	require.Equal(t, " bar", c.Remaining())
}

func TestCursor_ReadString_SkipsLeadingWhitespace(t *testing.T) {
	c := NewCursor("  foo bar")
	require.Equal(t, "foo", c.ReadString())
	require.Equal(t, " bar", c.Remaining())
}

func TestCursor_PeekString_DoesNotAdvance(t *testing.T) {
	c := NewCursor("foo bar")
	require.Equal(t, "foo", c.PeekString())
	require.Equal(t, "foo bar", c.Remaining())
}

func TestCursor_Tokenize_TrailingSpaceYieldsEmptyToken(t *testing.T) {
	c := NewCursor("foo bar ")
	require.Equal(t, []string{"foo", "bar", ""}, c.Tokenize())
}

func TestCursor_Tokenize_EmptyInput(t *testing.T) {
	c := NewCursor("")
	require.Equal(t, []string{""}, c.Tokenize())
}

func TestCursor_RemainingTokens(t *testing.T) {
	c := NewCursor("foo bar baz")
	require.Equal(t, 3, c.RemainingTokens())
	c.ReadString()
	require.Equal(t, 2, c.RemainingTokens())
}

func TestCursor_AppendString_PreservesPosition(t *testing.T) {
	c := NewCursor("foo")
	c.ReadString()
	appended := c.AppendString(" bar")
	require.Equal(t, "foo bar", appended.Input())
	require.Equal(t, c.Position(), appended.Position())
	require.Equal(t, " bar", appended.Remaining())
}

func TestCursor_Copy_IsIndependent(t *testing.T) {
	c := NewCursor("foo bar")
	c.ReadString()
	cp := c.Copy()
	cp.ReadString()
	require.Equal(t, " bar", c.Remaining())
	require.Equal(t, "", cp.Remaining())
}

func TestCursor_ReadInteger(t *testing.T) {
	c := NewCursor("42 rest")
	n, err := c.ReadInteger()
	require.NoError(t, err)
	require.Equal(t, 42, n)
	require.Equal(t, " rest", c.Remaining())
}

func TestCursor_ReadInteger_InvalidRollsBackCursor(t *testing.T) {
	c := NewCursor("nope")
	_, err := c.ReadInteger()
	require.ErrorIs(t, err, ErrCursorExpectedInt)
	require.Equal(t, 0, c.Position())
}

func TestCursor_ReadBoolean(t *testing.T) {
	c := NewCursor("True")
	b, err := c.ReadBoolean()
	require.NoError(t, err)
	require.True(t, b)
}

func TestCursor_ReadBoolean_Invalid(t *testing.T) {
	c := NewCursor("tuesday")
	_, err := c.ReadBoolean()
	require.True(t, errors.Is(err, ErrCursorInvalidBool))
	require.Equal(t, 0, c.Position())
}

func TestCursor_ReadBoolean_Empty(t *testing.T) {
	c := NewCursor("")
	_, err := c.ReadBoolean()
	require.ErrorIs(t, err, ErrCursorExpectedBool)
}
