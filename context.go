package dispatch

// ContextKey is a typed key into a TreeContext (spec §9 "Context keyed by
// name: the source threads a heterogeneous map keyed by string through
// the traversal. Prefer a typed-key variant where each key statically
// carries its value type; fall back to a string map only at the public
// API boundary"). The string map fallback is TreeContext.Raw.
type ContextKey[T any] struct{ name string }

// NewContextKey returns a statically-typed key named name. Two keys with
// the same name are interchangeable (the name, not the key value, is the
// actual storage key) — this mirrors the teacher's CommandContext string
// keys while adding the static type.
func NewContextKey[T any](name string) ContextKey[T] { return ContextKey[T]{name: name} }

// Name returns the key's underlying string, for interop with Raw.
func (k ContextKey[T]) Name() string { return k.name }

// StringRange is a half-open [Start, End) byte offset range into the
// original input, used to record each component's consumed_input (spec
// §4.C.3 "Cursor discipline").
type StringRange struct{ Start, End int }

// Substring returns the slice of input covered by r.
func (r StringRange) Substring(input string) string { return input[r.Start:r.End] }

// ParsingContext is the per-component record of spec §4.C.3: "the tree
// records consumed_input per component... into a per-component
// ParsingContext used by external observers".
type ParsingContext struct {
	ComponentName string
	Range         StringRange
}

// TreeContext is the per-traversal state threaded through parse and
// suggest: the sender, the matched component path (for error reporting
// and permission walking), per-component parsed values, and per-component
// ParsingContext records.
type TreeContext[C any] struct {
	Sender C

	path    []*Component[C]
	values  map[string]any
	parsing map[string]*ParsingContext
}

// newTreeContext returns an empty TreeContext for sender.
func newTreeContext[C any](sender C) *TreeContext[C] {
	return &TreeContext[C]{
		Sender:  sender,
		values:  make(map[string]any),
		parsing: make(map[string]*ParsingContext),
	}
}

// Path returns the matched components so far, root-to-leaf.
func (tc *TreeContext[C]) Path() []*Component[C] { return append([]*Component[C]{}, tc.path...) }

func (tc *TreeContext[C]) pushPath(c *Component[C]) { tc.path = append(tc.path, c) }

// Raw returns a component's parsed value by name, untyped — the public
// API boundary fallback spec §9 describes.
func (tc *TreeContext[C]) Raw(name string) (any, bool) {
	v, ok := tc.values[name]
	return v, ok
}

func (tc *TreeContext[C]) setRaw(name string, value any) { tc.values[name] = value }

// ContextValue fetches a typed value by key. ok is false if the key was
// never set or was set with an incompatible type.
func ContextValue[C any, T any](tc *TreeContext[C], key ContextKey[T]) (T, bool) {
	var zero T
	v, ok := tc.values[key.name]
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}

func setContextValue[C any, T any](tc *TreeContext[C], key ContextKey[T], value T) {
	tc.values[key.name] = value
}

func (tc *TreeContext[C]) recordConsumed(componentName string, r StringRange) {
	tc.parsing[componentName] = &ParsingContext{ComponentName: componentName, Range: r}
}

// ParsingContextFor returns the recorded consumed-input range for the
// named component, if that component participated in the match.
func (tc *TreeContext[C]) ParsingContextFor(componentName string) (*ParsingContext, bool) {
	pc, ok := tc.parsing[componentName]
	return pc, ok
}

// flagMetaKey is the well-known context key the suggestion traversal uses
// to record which flag (if any) is currently being completed (spec
// §4.C.4 "store or clear the meta key FLAG_META_KEY accordingly").
const flagMetaKey = "dispatch:completing_flag"

func (tc *TreeContext[C]) setCompletingFlag(name string) { tc.values[flagMetaKey] = name }
func (tc *TreeContext[C]) clearCompletingFlag()          { delete(tc.values, flagMetaKey) }
func (tc *TreeContext[C]) completingFlag() (string, bool) {
	v, ok := tc.values[flagMetaKey]
	if !ok {
		return "", false
	}
	return v.(string), true
}
