package dispatch

import "context"

// Parser is the capability object a Component of RequiredVariable,
// OptionalVariable, or Flag kind delegates to. It is an external
// collaborator (spec §1 Out of scope: "individual value parsers") — the
// tree only ever calls through this interface, never inspects a concrete
// parser's internals. Modeled on the teacher's ArgumentType (types.go),
// generalized with RequestedArgumentCount and an optional Preprocess
// phase per spec §6.
type Parser[C any, T any] interface {
	// Parse consumes from cur and produces a Result, suspending on ctx as
	// needed (spec §5: "every call into a user-supplied parser... is a
	// potential suspension point").
	Parse(ctx context.Context, tc *TreeContext[C], cur *Cursor) Result[T]

	// RequestedArgumentCount is the number of whitespace-delimited tokens
	// this parser consumes in one call, ≥ 1. Aggregate parsers (multiple
	// sub-tokens) report > 1.
	RequestedArgumentCount() int
}

// Preprocessable is implemented by a Parser that wants a synchronous gate
// run before Parse is attempted. Preprocessors must not advance the
// cursor — they may only peek (spec §4.B contract breach note).
type Preprocessable[C any] interface {
	Preprocess(ctx context.Context, tc *TreeContext[C], cur *Cursor) Result[bool]
}

// AggregateParser is a Parser whose RequestedArgumentCount() > 1 and which
// exposes its own sub-component list, so the suggestion traversal can walk
// into it one sub-token at a time (spec §4.C.4 "aggregate").
type AggregateParser[C any, T any] interface {
	Parser[C, T]
	SubComponents() []string
}

// FlagParser is the Parser for a Flag-kind Component. Beyond the ordinary
// Parser contract it exposes ParseCurrentFlag, used by the suggestion
// traversal to decide which (if any) flag is currently being completed
// (spec §4.C.4 "flag parser... parse_current_flag helper").
type FlagParser[C any, T any] interface {
	Parser[C, T]
	ParseCurrentFlag(cur *Cursor) (flagName string, isCompleting bool)
	FlagNames() []string
}
