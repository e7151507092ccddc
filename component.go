package dispatch

import (
	"context"
	"fmt"
	"reflect"
)

// ComponentKind tags the four node-shapes spec §3/§4 define. Modeled per
// spec §9 "Tagged variants over inheritance": one record, dispatched on
// Kind, rather than the teacher's LiteralCommandNode/ArgumentCommandNode
// subclass split (brigodier.go).
type ComponentKind uint8

const (
	KindLiteral ComponentKind = iota
	KindRequiredVariable
	KindOptionalVariable
	KindFlag
)

func (k ComponentKind) String() string {
	switch k {
	case KindLiteral:
		return "literal"
	case KindRequiredVariable:
		return "required"
	case KindOptionalVariable:
		return "optional"
	case KindFlag:
		return "flag"
	default:
		return "unknown"
	}
}

// Preprocessor is one gate in a Component's preprocessor chain (spec §3
// "preprocessors"). It must not advance cur — peek only.
type Preprocessor[C any] func(ctx context.Context, tc *TreeContext[C], cur *Cursor) Result[bool]

// erasedParser is the type-erased shape every Parser[C,T] is adapted to
// so a Tree (which is generic only over the sender type C, not over each
// component's value type T) can hold heterogeneous components in one
// slice. This is the mechanical consequence of spec §3's "value_type:
// reified type tag" requirement — Go has no existential types, so the
// tag plus a closure-based adapter stands in for it.
type erasedParser[C any] interface {
	parse(ctx context.Context, tc *TreeContext[C], cur *Cursor) (any, error)
	requestedArgumentCount() int
	preprocess(ctx context.Context, tc *TreeContext[C], cur *Cursor) Result[bool]
	subComponents() ([]string, bool)
	flagNames() ([]string, bool)
	parseCurrentFlag(cur *Cursor) (name string, completing bool, isFlag bool)
}

// aggregateCapable and flagCapable let a parserAdapter detect the optional
// AggregateParser/FlagParser capabilities of the concrete parser it wraps
// without re-parameterizing on T (the extra methods never mention T).
type aggregateCapable interface{ SubComponents() []string }
type flagCapable interface {
	ParseCurrentFlag(cur *Cursor) (string, bool)
	FlagNames() []string
}

type parserAdapter[C any, T any] struct {
	p          Parser[C, T]
	preprocessFn func(ctx context.Context, tc *TreeContext[C], cur *Cursor) Result[bool]
	aggregate  aggregateCapable
	flag       flagCapable
}

func newParserAdapter[C any, T any](p Parser[C, T]) *parserAdapter[C, T] {
	a := &parserAdapter[C, T]{p: p}
	if pp, ok := any(p).(Preprocessable[C]); ok {
		a.preprocessFn = pp.Preprocess
	}
	if ag, ok := any(p).(aggregateCapable); ok {
		a.aggregate = ag
	}
	if fl, ok := any(p).(flagCapable); ok {
		a.flag = fl
	}
	return a
}

func (a *parserAdapter[C, T]) parse(ctx context.Context, tc *TreeContext[C], cur *Cursor) (any, error) {
	res := a.p.Parse(ctx, tc, cur)
	v, ok := res.Value()
	if !ok {
		return nil, res.Err()
	}
	return v, nil
}

func (a *parserAdapter[C, T]) requestedArgumentCount() int { return a.p.RequestedArgumentCount() }

func (a *parserAdapter[C, T]) preprocess(ctx context.Context, tc *TreeContext[C], cur *Cursor) Result[bool] {
	if a.preprocessFn == nil {
		return Success(true)
	}
	return a.preprocessFn(ctx, tc, cur)
}

func (a *parserAdapter[C, T]) subComponents() ([]string, bool) {
	if a.aggregate == nil {
		return nil, false
	}
	return a.aggregate.SubComponents(), true
}

func (a *parserAdapter[C, T]) flagNames() ([]string, bool) {
	if a.flag == nil {
		return nil, false
	}
	return a.flag.FlagNames(), true
}

func (a *parserAdapter[C, T]) parseCurrentFlag(cur *Cursor) (string, bool, bool) {
	if a.flag == nil {
		return "", false, false
	}
	name, completing := a.flag.ParseCurrentFlag(cur)
	return name, completing, true
}

// erasedDefault mirrors DefaultValue[C,T] without the T parameter, for the
// same reason erasedParser exists.
type erasedDefault[C any] interface {
	// resolve returns the default's value (isParsed=false) when it is
	// constant or callable, or isParsed=true with literal populated when
	// it is a ParsedDefault that must be re-fed to the parser.
	resolve(ctx context.Context, tc *TreeContext[C]) (value any, literal string, isParsed bool, err error)
}

type defaultAdapter[C any, T any] struct{ d DefaultValue[C, T] }

func (a defaultAdapter[C, T]) resolve(ctx context.Context, tc *TreeContext[C]) (any, string, bool, error) {
	switch d := a.d.(type) {
	case ConstantDefault[C, T]:
		return d.Value, "", false, nil
	case CallableDefault[C, T]:
		v, err := d.Fn(ctx, tc)
		return v, "", false, err
	case ParsedDefault[C, T]:
		return nil, d.Literal, true, nil
	default:
		return nil, "", false, fmt.Errorf("dispatch: unknown default value type %T", d)
	}
}

// Component is the immutable node-shape record of spec §3/§4.B: name,
// parser, value type, kind, default, suggestion source, preprocessors.
// Its OwningCommand is write-once (spec §9 "Write-once owning_command":
// Unowned -> Owned(cmd), a second transition is fatal).
type Component[C any] struct {
	name             string
	kind             ComponentKind
	valueType        reflect.Type
	aliases          []string // Literal only, first entry is the canonical name
	parser           erasedParser[C]
	suggestionSource SuggestionSource[C]
	defaultValue     erasedDefault[C]
	hasDefault       bool
	preprocessors    []Preprocessor[C]

	owningCommand *Command[C]
}

// Name returns the component's name (the canonical alias, for literals).
func (c *Component[C]) Name() string { return c.name }

// Kind returns the component's tag.
func (c *Component[C]) Kind() ComponentKind { return c.kind }

// ValueType returns the reified type tag used for injection/reflection.
func (c *Component[C]) ValueType() reflect.Type { return c.valueType }

// Aliases returns the literal's alias set. Empty for non-literal kinds.
func (c *Component[C]) Aliases() []string { return c.aliases }

// HasAlias reports whether name is one of this literal's aliases.
func (c *Component[C]) HasAlias(name string) bool {
	for _, a := range c.aliases {
		if a == name {
			return true
		}
	}
	return false
}

// mergeAliases folds other's aliases into this literal's alias set (spec
// §4.C.1 step 2: "If one exists and cᵢ is a Literal, merge its aliases
// into the existing literal's alias set").
func (c *Component[C]) mergeAliases(other *Component[C]) {
	for _, a := range other.aliases {
		if !c.HasAlias(a) {
			c.aliases = append(c.aliases, a)
		}
	}
}

// IsOptional reports whether the component may be skipped entirely
// without user input (OptionalVariable or Flag).
func (c *Component[C]) IsOptional() bool {
	return c.kind == KindOptionalVariable || c.kind == KindFlag
}

// OwningCommand returns the command terminating at (or passing through,
// for an intermediary) this component, or nil if unset.
func (c *Component[C]) OwningCommand() *Command[C] { return c.owningCommand }

// setOwningCommand implements the write-once state machine of spec §9.
// A second call is a fatal "duplicate command chain" error.
func (c *Component[C]) setOwningCommand(cmd *Command[C]) error {
	if c.owningCommand != nil {
		return &DuplicateCommandChainError{Chain: c.name}
	}
	c.owningCommand = cmd
	return nil
}

// Preprocess runs the component's preprocessor chain in insertion order,
// short-circuiting on the first failure or false result (spec §4.B), then
// falls through to the parser's own optional preprocess phase.
func (c *Component[C]) Preprocess(ctx context.Context, tc *TreeContext[C], cur *Cursor) Result[bool] {
	for _, p := range c.preprocessors {
		res := p(ctx, tc, cur)
		if !res.Ok() {
			return res
		}
		if v, _ := res.Value(); !v {
			return Success(false)
		}
	}
	if c.parser == nil {
		return Success(true)
	}
	return c.parser.preprocess(ctx, tc, cur)
}

// Suggestions asks the component's suggestion source for candidates and
// filters them per spec §4.B.
func (c *Component[C]) Suggestions(ctx context.Context, tc *TreeContext[C], prefix string) *Future[[]Suggestion] {
	if c.suggestionSource == nil {
		return Resolved[[]Suggestion](nil, nil)
	}
	src := c.suggestionSource
	return Go(ctx, func(ctx context.Context) ([]Suggestion, error) {
		candidates, err := src.Suggestions(ctx, tc, prefix).Get(ctx)
		if err != nil {
			return nil, err
		}
		return filterSuggestions(candidates, prefix), nil
	})
}

// RequestedArgumentCount delegates to the parser, or 1 for a Literal
// (which has no parser — it matches the next whitespace-delimited token
// directly).
func (c *Component[C]) RequestedArgumentCount() int {
	if c.parser == nil {
		return 1
	}
	return c.parser.requestedArgumentCount()
}

// componentOptions configures the cross-kind knobs (suggestion source,
// preprocessors) shared by every component constructor.
type componentOptions[C any] struct {
	suggestions   SuggestionSource[C]
	preprocessors []Preprocessor[C]
}

// ComponentOption configures a Component at construction time.
type ComponentOption[C any] func(*componentOptions[C])

// WithSuggestions attaches a suggestion source to a variable or flag
// component.
func WithSuggestions[C any](src SuggestionSource[C]) ComponentOption[C] {
	return func(o *componentOptions[C]) { o.suggestions = src }
}

// WithPreprocessor appends a preprocessor gate (spec §3 "preprocessors:
// ordered sequence of gates").
func WithPreprocessor[C any](p Preprocessor[C]) ComponentOption[C] {
	return func(o *componentOptions[C]) { o.preprocessors = append(o.preprocessors, p) }
}

func buildOptions[C any](opts []ComponentOption[C]) componentOptions[C] {
	var o componentOptions[C]
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewLiteralComponent builds a Literal component matching name (and any
// additional aliases) by exact string equality (spec §4.C "Literal...
// matches by exact string equality").
func NewLiteralComponent[C any](name string, aliases ...string) *Component[C] {
	return &Component[C]{
		name:      name,
		kind:      KindLiteral,
		valueType: reflect.TypeOf(""),
		aliases:   append([]string{name}, aliases...),
	}
}

// NewRequiredComponent builds a RequiredVariable component delegating to
// parser.
func NewRequiredComponent[C any, T any](name string, parser Parser[C, T], opts ...ComponentOption[C]) *Component[C] {
	o := buildOptions(opts)
	var zero T
	return &Component[C]{
		name:             name,
		kind:             KindRequiredVariable,
		valueType:        reflect.TypeOf(zero),
		parser:           newParserAdapter[C, T](parser),
		suggestionSource: o.suggestions,
		preprocessors:    o.preprocessors,
	}
}

// NewOptionalComponent builds an OptionalVariable component with the given
// default (spec §3 "default_value: present iff kind == OptionalVariable").
func NewOptionalComponent[C any, T any](name string, parser Parser[C, T], def DefaultValue[C, T], opts ...ComponentOption[C]) *Component[C] {
	o := buildOptions(opts)
	var zero T
	return &Component[C]{
		name:             name,
		kind:             KindOptionalVariable,
		valueType:        reflect.TypeOf(zero),
		parser:           newParserAdapter[C, T](parser),
		suggestionSource: o.suggestions,
		preprocessors:    o.preprocessors,
		defaultValue:     defaultAdapter[C, T]{d: def},
		hasDefault:       true,
	}
}

// NewFlagComponent builds a Flag component (spec §3 kind "Flag{flag_set}").
func NewFlagComponent[C any, T any](name string, parser FlagParser[C, T], opts ...ComponentOption[C]) *Component[C] {
	o := buildOptions(opts)
	var zero T
	return &Component[C]{
		name:             name,
		kind:             KindFlag,
		valueType:        reflect.TypeOf(zero),
		parser:           newParserAdapter[C, T](parser),
		suggestionSource: o.suggestions,
		preprocessors:    o.preprocessors,
	}
}

// equivalentTo implements spec §4.C.1's child-merge equality test:
// "equality is name + value_type". Names are unique among siblings of the
// same kind (spec §3 "Component... name: ... unique among siblings of the
// same kind"), so name+kind identifies the slot; value_type additionally
// distinguishes two differently-typed variables that happen to share a
// name (the ambiguity scenario of spec §8 scenario 6).
func (c *Component[C]) equivalentTo(other *Component[C]) bool {
	return c.kind == other.kind && c.name == other.name && c.valueType == other.valueType
}
