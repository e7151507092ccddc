// Package demoargs provides concrete value parsers exercising dispatch's
// Parser/AggregateParser/FlagParser interfaces. It exists only for tests
// and cmd/dispatchsh — concrete argument types are an external collaborator
// the core tree never depends on, adapted from the teacher's types.go
// (Int32ArgumentType, BoolArgumentType, StringType).
package demoargs

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/branchcmd/dispatch"
)

// Int parses a single token as a base-10 int within [Min, Max].
type Int[C any] struct{ Min, Max int }

var (
	ErrIntTooLow  = errors.New("demoargs: integer below minimum")
	ErrIntTooHigh = errors.New("demoargs: integer above maximum")
)

func (p Int[C]) Parse(ctx context.Context, tc *dispatch.TreeContext[C], cur *dispatch.Cursor) dispatch.Result[int] {
	n, err := cur.ReadInteger()
	if err != nil {
		return dispatch.Failure[int](err)
	}
	if n < p.Min {
		return dispatch.Failure[int](fmt.Errorf("%w: %d < %d", ErrIntTooLow, n, p.Min))
	}
	if n > p.Max {
		return dispatch.Failure[int](fmt.Errorf("%w: %d > %d", ErrIntTooHigh, n, p.Max))
	}
	return dispatch.Success(n)
}

func (p Int[C]) RequestedArgumentCount() int { return 1 }

// Word parses a single whitespace-delimited token as a string, the
// teacher's StringType.SingleWord.
type Word[C any] struct{}

func (Word[C]) Parse(ctx context.Context, tc *dispatch.TreeContext[C], cur *dispatch.Cursor) dispatch.Result[string] {
	token := cur.ReadString()
	if token == "" {
		return dispatch.Failure[string](errors.New("demoargs: expected a word"))
	}
	return dispatch.Success(token)
}

func (Word[C]) RequestedArgumentCount() int { return 1 }

// GreedyPhrase consumes the remainder of the input as one value, the
// teacher's StringType.GreedyPhrase.
type GreedyPhrase[C any] struct{}

func (GreedyPhrase[C]) Parse(ctx context.Context, tc *dispatch.TreeContext[C], cur *dispatch.Cursor) dispatch.Result[string] {
	remaining := cur.Remaining()
	cur.SetPosition(cur.Position() + len(remaining))
	return dispatch.Success(remaining)
}

func (GreedyPhrase[C]) RequestedArgumentCount() int { return 1 }

// Bool parses "true"/"false" case-insensitively and suggests both, the
// teacher's BoolArgumentType.
type Bool[C any] struct{}

func (Bool[C]) Parse(ctx context.Context, tc *dispatch.TreeContext[C], cur *dispatch.Cursor) dispatch.Result[bool] {
	b, err := cur.ReadBoolean()
	if err != nil {
		return dispatch.Failure[bool](err)
	}
	return dispatch.Success(b)
}

func (Bool[C]) RequestedArgumentCount() int { return 1 }

func (Bool[C]) Suggestions(ctx context.Context, tc *dispatch.TreeContext[C], prefix string) *dispatch.Future[[]dispatch.Suggestion] {
	return dispatch.Resolved([]dispatch.Suggestion{{Text: "true"}, {Text: "false"}}, nil)
}

// Enum parses a single token against a fixed, case-sensitive value set and
// suggests every member. Not present in the teacher, which has no enum
// argument type; grounded on the same ArgumentType shape as Word/Bool above.
type Enum[C any] struct{ Values []string }

func (e Enum[C]) Parse(ctx context.Context, tc *dispatch.TreeContext[C], cur *dispatch.Cursor) dispatch.Result[string] {
	token := cur.ReadString()
	for _, v := range e.Values {
		if v == token {
			return dispatch.Success(token)
		}
	}
	return dispatch.Failure[string](fmt.Errorf("demoargs: %q is not one of %s", token, strings.Join(e.Values, ", ")))
}

func (Enum[C]) RequestedArgumentCount() int { return 1 }

func (e Enum[C]) Suggestions(ctx context.Context, tc *dispatch.TreeContext[C], prefix string) *dispatch.Future[[]dispatch.Suggestion] {
	suggestions := make([]dispatch.Suggestion, len(e.Values))
	for i, v := range e.Values {
		suggestions[i] = dispatch.Suggestion{Text: v}
	}
	return dispatch.Resolved(suggestions, nil)
}

// FlagSet is a FlagParser aggregating a fixed collection of `-name value`
// pairs into a map, demonstrating the AggregateParser/FlagParser
// capabilities a single component can expose (spec §4.C.4 "flag parser").
// Not present in the teacher, which has no flag concept; its shape follows
// the same Parse/RequestedArgumentCount contract as the types above.
type FlagSet[C any] struct {
	// Names lists the recognized `-name` flags, in declaration order.
	Names []string
}

var ErrUnknownFlag = errors.New("demoargs: unknown flag")

// Parse reads every remaining `-name value` pair in a single call, until
// the input is exhausted.
func (f FlagSet[C]) Parse(ctx context.Context, tc *dispatch.TreeContext[C], cur *dispatch.Cursor) dispatch.Result[map[string]string] {
	out := make(map[string]string)
	for cur.RemainingTokens() > 0 && cur.Remaining() != "" {
		name := cur.ReadString()
		if !strings.HasPrefix(name, "-") {
			return dispatch.Failure[map[string]string](fmt.Errorf("%w: %q (flags must start with -)", ErrUnknownFlag, name))
		}
		name = strings.TrimPrefix(name, "-")
		if !f.has(name) {
			return dispatch.Failure[map[string]string](fmt.Errorf("%w: -%s", ErrUnknownFlag, name))
		}
		out[name] = cur.ReadString()
	}
	return dispatch.Success(out)
}

func (f FlagSet[C]) RequestedArgumentCount() int { return 2 * len(f.Names) }

// SubComponents names the sub-tokens this aggregate consumes, satisfying
// dispatch's AggregateParser capability so the suggestion traversal can
// walk in one sub-token at a time.
func (f FlagSet[C]) SubComponents() []string {
	out := make([]string, len(f.Names))
	copy(out, f.Names)
	sort.Strings(out)
	return out
}

// ParseCurrentFlag reports which flag name is currently being typed, if
// cur is positioned on a `-name` token, for the suggestion traversal's
// flag-completion branch.
func (f FlagSet[C]) ParseCurrentFlag(cur *dispatch.Cursor) (string, bool) {
	token := cur.PeekString()
	if !strings.HasPrefix(token, "-") {
		return "", false
	}
	return strings.TrimPrefix(token, "-"), true
}

func (f FlagSet[C]) FlagNames() []string {
	out := make([]string, len(f.Names))
	copy(out, f.Names)
	return out
}

func (f FlagSet[C]) has(name string) bool {
	for _, n := range f.Names {
		if n == name {
			return true
		}
	}
	return false
}
