package dispatch

// CommandBuilder is a fluent builder yielding a Command[C] (spec §6
// "Exposed surface... A fluent builder yielding Commands"). Grounded on
// the teacher's LiteralArgumentBuilder/RequiredArgumentBuilder/
// ArgumentBuilder chain (builder.go), flattened to match spec §3's
// Command<C> shape — an ordered component list, not a sub-tree of
// builders — and with Redirect/Fork/RedirectWithModifier dropped along
// with the rest of that mechanism (see DESIGN.md).
type CommandBuilder[C any] struct {
	components []*Component[C]
	handler    Handler[C]
	permission Permission
	senderType string
	senderOK   func(C) bool
	metadata   map[string]any
}

// NewCommandBuilder starts a builder over the given component sequence,
// in the order they will appear along the tree path.
func NewCommandBuilder[C any](components ...*Component[C]) *CommandBuilder[C] {
	return &CommandBuilder[C]{
		components: components,
		permission: EmptyPermission(),
		metadata:   make(map[string]any),
	}
}

// Executes sets the handler invoked on a successful match.
func (b *CommandBuilder[C]) Executes(h Handler[C]) *CommandBuilder[C] {
	b.handler = h
	return b
}

// Requires sets the permission expression a sender must satisfy.
func (b *CommandBuilder[C]) Requires(p Permission) *CommandBuilder[C] {
	b.permission = p
	return b
}

// RequiresSender restricts the command to senders for which check returns
// true; typeName names the required sub-type for InvalidSenderError
// messages (spec §3 "optional required_sender_type").
func (b *CommandBuilder[C]) RequiresSender(typeName string, check func(C) bool) *CommandBuilder[C] {
	b.senderType = typeName
	b.senderOK = check
	return b
}

// WithMetadata attaches an opaque metadata value under key.
func (b *CommandBuilder[C]) WithMetadata(key string, value any) *CommandBuilder[C] {
	b.metadata[key] = value
	return b
}

// Build validates the accumulated components and returns the Command, or
// the *InvalidCommandError from NewCommand's invariant checks.
func (b *CommandBuilder[C]) Build() (*Command[C], error) {
	cmd, err := NewCommand(b.handler, b.components...)
	if err != nil {
		return nil, err
	}
	cmd.Permission = b.permission
	cmd.RequiredSenderType = b.senderType
	cmd.RequiredSenderCheck = b.senderOK
	for k, v := range b.metadata {
		cmd.Metadata[k] = v
	}
	return cmd, nil
}
