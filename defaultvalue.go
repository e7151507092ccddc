package dispatch

import "context"

// DefaultValue is the sum type behind an OptionalVariable's default (spec
// §3 "default_value"; §9 "Default-value polymorphism"): either a constant,
// a callable evaluated against a TreeContext, or a literal string re-fed
// to the component's own parser.
type DefaultValue[C any, T any] interface {
	isDefaultValue()
}

// ConstantDefault always evaluates to the same value.
type ConstantDefault[C any, T any] struct{ Value T }

func (ConstantDefault[C, T]) isDefaultValue() {}

// CallableDefault is evaluated lazily against the traversal context.
type CallableDefault[C any, T any] struct {
	Fn func(ctx context.Context, tc *TreeContext[C]) (T, error)
}

func (CallableDefault[C, T]) isDefaultValue() {}

// ParsedDefault re-enters the parse path by feeding Literal to the
// component's parser, exactly as if the sender had typed it (spec §4.C.3
// step 3: "if the default is a parsed-string default, append it to the
// input and recurse").
type ParsedDefault[C any, T any] struct{ Literal string }

func (ParsedDefault[C, T]) isDefaultValue() {}
