package dispatch

import (
	"context"
	"reflect"

	"github.com/emirpasic/gods/maps/linkedhashmap"
)

// CommandResult is what Manager.Execute resolves to: the matched command
// together with its populated traversal context, after the handler has
// run.
type CommandResult[C any] struct {
	Command *Command[C]
	Context *TreeContext[C]
}

// Manager is the Manager Facade of spec §4.D: the single entry point
// embedders register commands with and parse/suggest/execute against. It
// owns the tree, the global settings, the preprocessor pipeline, and a
// parser registry keyed by reified type (spec §4.D "Expose a parser
// registry so that value-parsers can be looked up by reified type and
// configured by parameter annotations").
type Manager[C any] struct {
	tree          *Tree[C]
	settings      *Settings
	predicate     PermissionPredicate[C]
	preprocessors []Preprocessor[C]
	registry      *linkedhashmap.Map // reflect.Type -> any (parser factory)
	registered    []*Command[C]
}

// NewManager constructs a Manager with the given settings and permission
// predicate. settings may be nil, equivalent to the zero Settings.
func NewManager[C any](settings *Settings, predicate PermissionPredicate[C]) *Manager[C] {
	if settings == nil {
		settings = &Settings{}
	}
	m := &Manager[C]{
		settings:  settings,
		predicate: predicate,
		registry:  linkedhashmap.New(),
	}
	m.tree = NewTree(settings, predicate, func(cmd *Command[C]) {
		m.registered = append(m.registered, cmd)
	})
	return m
}

// Register delegates to the tree's insertion (spec §6 "register(command)").
func (m *Manager[C]) Register(cmd *Command[C]) error {
	return m.tree.Insert(cmd)
}

// RegisteredCommands returns every command reported by verify_and_register
// so far, in registration order.
func (m *Manager[C]) RegisteredCommands() []*Command[C] {
	return append([]*Command[C]{}, m.registered...)
}

// Use appends a preprocessor to the pipeline. Preprocessors run in
// last-added-first-run (LIFO) order (spec §4.D "run the preprocessor
// pipeline (LIFO-ordered)").
func (m *Manager[C]) Use(p Preprocessor[C]) *Manager[C] {
	m.preprocessors = append(m.preprocessors, p)
	return m
}

// RegisterParser records a parser factory under its reified value type,
// for callers that discover parsers by type (e.g. parameter-annotation
// driven construction, an external collaborator per spec §1). The tree
// itself never consults this registry.
func (m *Manager[C]) RegisterParser(valueType reflect.Type, factory any) {
	m.registry.Put(valueType, factory)
}

// LookupParser returns the factory registered for valueType, if any.
func (m *Manager[C]) LookupParser(valueType reflect.Type) (any, bool) {
	v, ok := m.registry.Get(valueType)
	if !ok {
		return nil, false
	}
	return v, true
}

func (m *Manager[C]) runPipeline(ctx context.Context, tc *TreeContext[C], cur *Cursor) Result[bool] {
	for i := len(m.preprocessors) - 1; i >= 0; i-- {
		res := m.preprocessors[i](ctx, tc, cur)
		if !res.Ok() {
			return res
		}
		if ok, _ := res.Value(); !ok {
			return Success(false)
		}
	}
	return Success(true)
}

// Parse wraps input, runs the preprocessor pipeline, then delegates to
// the tree (spec §4.D "parse(sender, input)").
func (m *Manager[C]) Parse(ctx context.Context, sender C, input string) *Future[*ParseOutcome[C]] {
	return Go(ctx, func(ctx context.Context) (*ParseOutcome[C], error) {
		tc := newTreeContext[C](sender)
		cur := NewCursor(input)
		gate := m.runPipeline(ctx, tc, cur)
		if !gate.Ok() {
			return nil, newInvalidSyntaxError[C](nil, sender, gate.Err().Error())
		}
		if ok, _ := gate.Value(); !ok {
			return nil, newInvalidSyntaxError[C](nil, sender, "rejected by preprocessor pipeline")
		}
		return m.tree.Parse(ctx, sender, input).Get(ctx)
	})
}

// Execute parses input and, on a successful match, invokes the command's
// handler (spec §6 "execute(sender, text) -> future<CommandResult>").
func (m *Manager[C]) Execute(ctx context.Context, sender C, input string) *Future[*CommandResult[C]] {
	return Go(ctx, func(ctx context.Context) (*CommandResult[C], error) {
		outcome, err := m.Parse(ctx, sender, input).Get(ctx)
		if err != nil {
			return nil, err
		}
		if outcome.Command.Handler != nil {
			if err := outcome.Command.Handler(ctx, outcome.Context); err != nil {
				return nil, err
			}
		}
		return &CommandResult[C]{Command: outcome.Command, Context: outcome.Context}, nil
	})
}

// Suggest runs the preprocessor pipeline and, on acceptance, delegates to
// the tree's suggestion traversal; on rejection it returns an empty list
// (spec §4.D "on reject return empty list").
func (m *Manager[C]) Suggest(ctx context.Context, sender C, input string) *Future[[]Suggestion] {
	return Go(ctx, func(ctx context.Context) ([]Suggestion, error) {
		tc := newTreeContext[C](sender)
		cur := NewCursor(input)
		gate := m.runPipeline(ctx, tc, cur)
		if !gate.Ok() {
			return nil, nil
		}
		if ok, _ := gate.Value(); !ok {
			return nil, nil
		}
		return m.tree.Suggest(ctx, sender, input).Get(ctx)
	})
}

// HasPermission evaluates expr against sender (spec §4.D "has_permission
// (sender, permission_expr)... Permission.empty() == Allowed always").
func (m *Manager[C]) HasPermission(ctx context.Context, sender C, expr Permission) (bool, error) {
	return EvaluatePermission(ctx, expr, sender, m.predicate)
}
