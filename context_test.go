package dispatch

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTreeContext_RawAndTypedValue(t *testing.T) {
	tc := newTreeContext[string]("alice")
	key := NewContextKey[int]("amount")
	setContextValue(tc, key, 42)

	v, ok := ContextValue(tc, key)
	require.True(t, ok)
	require.Equal(t, 42, v)

	raw, ok := tc.Raw("amount")
	require.True(t, ok)
	require.Equal(t, 42, raw)
}

func TestTreeContext_ContextValue_WrongTypeMiss(t *testing.T) {
	tc := newTreeContext[string]("alice")
	tc.setRaw("amount", "not-an-int")
	_, ok := ContextValue(tc, NewContextKey[int]("amount"))
	require.False(t, ok)
}

func TestTreeContext_Path(t *testing.T) {
	tc := newTreeContext[string]("alice")
	give := NewLiteralComponent[string]("give")
	tc.pushPath(give)
	require.Equal(t, []*Component[string]{give}, tc.Path())
}

func TestTreeContext_RecordConsumed(t *testing.T) {
	tc := newTreeContext[string]("alice")
	tc.recordConsumed("amount", StringRange{Start: 5, End: 7})
	pc, ok := tc.ParsingContextFor("amount")
	require.True(t, ok)
	require.Equal(t, "42", pc.Range.Substring("give 42"))
}

func TestTreeContext_CompletingFlag(t *testing.T) {
	tc := newTreeContext[string]("alice")
	_, ok := tc.completingFlag()
	require.False(t, ok)

	tc.setCompletingFlag("verbose")
	name, ok := tc.completingFlag()
	require.True(t, ok)
	require.Equal(t, "verbose", name)

	tc.clearCompletingFlag()
	_, ok = tc.completingFlag()
	require.False(t, ok)
}

func TestStringRange_Substring(t *testing.T) {
	r := StringRange{Start: 1, End: 4}
	require.Equal(t, "bcd", r.Substring("abcdef"))
}
