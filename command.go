package dispatch

import "context"

// Handler executes a successfully matched command against the populated
// TreeContext. It is an external collaborator (spec §1 "execution-handler
// invocation and threading strategy" is out of scope) — the tree only
// ever calls it, never inspects it.
type Handler[C any] func(ctx context.Context, tc *TreeContext[C]) error

// Command is the ordered sequence of components plus execution handler,
// permission, required sender type, and metadata of spec §3 "Command<C>".
type Command[C any] struct {
	Components          []*Component[C]
	Handler             Handler[C]
	Permission          Permission
	RequiredSenderType   string
	RequiredSenderCheck func(sender C) bool
	Metadata            map[string]any
}

// NewCommand validates components against spec §3's construction
// invariants and returns a Command, or an *InvalidCommandError.
//
//   - at least one component
//   - no Required follows any Optional or Flag
//   - at most one Flag component, positioned last
func NewCommand[C any](handler Handler[C], components ...*Component[C]) (*Command[C], error) {
	if len(components) == 0 {
		return nil, &InvalidCommandError{Reason: "command must have at least one component"}
	}
	seenOptionalOrFlag := false
	flagCount := 0
	for i, c := range components {
		switch c.kind {
		case KindFlag:
			flagCount++
			if i != len(components)-1 {
				return nil, &InvalidCommandError{Reason: "flag component must be last"}
			}
		case KindOptionalVariable:
			seenOptionalOrFlag = true
		case KindRequiredVariable, KindLiteral:
			if seenOptionalOrFlag {
				return nil, &InvalidCommandError{Reason: "required component follows an optional or flag component"}
			}
		}
	}
	if flagCount > 1 {
		return nil, &InvalidCommandError{Reason: "at most one flag component is permitted"}
	}
	return &Command[C]{
		Components: append([]*Component[C]{}, components...),
		Handler:    handler,
		Permission: EmptyPermission(),
		Metadata:   make(map[string]any),
	}, nil
}

// AcceptsSender reports whether sender satisfies this command's required
// sender type, when one is set.
func (cmd *Command[C]) AcceptsSender(sender C) bool {
	if cmd.RequiredSenderCheck == nil {
		return true
	}
	return cmd.RequiredSenderCheck(sender)
}
