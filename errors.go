package dispatch

import (
	"errors"
	"fmt"
)

// Sentinel causes, one per spec §7 error kind. Wrapped by the typed errors
// below so callers can either match the sentinel with errors.Is or the
// concrete type with errors.As, mirroring the teacher's
// CommandSyntaxError/ReaderError/IncorrectLiteralError wrap-and-Unwrap
// idiom (reader.go, parser.go).
var (
	ErrNoSuchCommand        = errors.New("dispatch: no such command")
	ErrInvalidSyntax        = errors.New("dispatch: invalid syntax")
	ErrNoPermission         = errors.New("dispatch: no permission")
	ErrInvalidSender        = errors.New("dispatch: invalid sender type")
	ErrArgumentParse        = errors.New("dispatch: argument parse failure")
	ErrAmbiguousNode        = errors.New("dispatch: ambiguous node")
	ErrNoCommandInLeaf      = errors.New("dispatch: leaf has no owning command")
	ErrDuplicateCommandChain = errors.New("dispatch: duplicate command chain")
)

// PathError is the common shape of every parse-time failure: it carries
// the matched prefix of components (spec §7 "error objects carry the
// matched prefix... and the sender") so a downstream formatter can render
// "did you mean X" without re-walking the tree.
type PathError[C any] struct {
	cause  error
	Path   []*Component[C]
	Sender C
}

func (e *PathError[C]) Error() string { return e.cause.Error() }
func (e *PathError[C]) Unwrap() error { return e.cause }

func newPathError[C any](cause error, path []*Component[C], sender C) *PathError[C] {
	return &PathError[C]{cause: cause, Path: append([]*Component[C]{}, path...), Sender: sender}
}

// NoSuchCommandError: the first token didn't match any root literal.
type NoSuchCommandError[C any] struct {
	*PathError[C]
	Token string
}

func newNoSuchCommandError[C any](path []*Component[C], sender C, token string) *NoSuchCommandError[C] {
	return &NoSuchCommandError[C]{
		PathError: newPathError(fmt.Errorf("%w: %q", ErrNoSuchCommand, token), path, sender),
		Token:     token,
	}
}

// InvalidSyntaxError: the token stream diverged after a valid prefix.
type InvalidSyntaxError[C any] struct {
	*PathError[C]
}

func newInvalidSyntaxError[C any](path []*Component[C], sender C, detail string) *InvalidSyntaxError[C] {
	return &InvalidSyntaxError[C]{
		PathError: newPathError(fmt.Errorf("%w: %s", ErrInvalidSyntax, detail), path, sender),
	}
}

// NoPermissionError: sender lacks the permission computed for the matched
// path; carries the missing expression (spec §7 "NoPermission").
type NoPermissionError[C any] struct {
	*PathError[C]
	Missing Permission
}

func newNoPermissionError[C any](path []*Component[C], sender C, missing Permission) *NoPermissionError[C] {
	return &NoPermissionError[C]{
		PathError: newPathError(fmt.Errorf("%w: %s", ErrNoPermission, missing), path, sender),
		Missing:   missing,
	}
}

// InvalidSenderError: matched command requires a sender sub-type the
// caller is not.
type InvalidSenderError[C any] struct {
	*PathError[C]
	Required string
}

func newInvalidSenderError[C any](path []*Component[C], sender C, required string) *InvalidSenderError[C] {
	return &InvalidSenderError[C]{
		PathError: newPathError(fmt.Errorf("%w: requires %s", ErrInvalidSender, required), path, sender),
		Required:  required,
	}
}

// ArgumentParseError: a parser returned Failure for its sole viable
// branch; wraps the parser's own payload.
type ArgumentParseError[C any] struct {
	*PathError[C]
}

func newArgumentParseError[C any](path []*Component[C], sender C, cause error) *ArgumentParseError[C] {
	return &ArgumentParseError[C]{
		PathError: newPathError(fmt.Errorf("%w: %v", ErrArgumentParse, cause), path, sender),
	}
}

// Structural (registration-time) errors. These never reach user input
// handling; they are raised eagerly during insertion (spec §7
// "Propagation policy").

// AmbiguousNodeError reports two sibling branches that could match the
// same input: more than one non-literal child, or two literal siblings
// sharing an alias.
type AmbiguousNodeError struct {
	Reason string
}

func (e *AmbiguousNodeError) Error() string { return fmt.Sprintf("%s: %s", ErrAmbiguousNode, e.Reason) }
func (e *AmbiguousNodeError) Unwrap() error { return ErrAmbiguousNode }

// NoCommandInLeafError reports a leaf node reached by verify_and_register
// whose component has no owning_command.
type NoCommandInLeafError struct {
	Name string
}

func (e *NoCommandInLeafError) Error() string {
	return fmt.Sprintf("%s: %q", ErrNoCommandInLeaf, e.Name)
}
func (e *NoCommandInLeafError) Unwrap() error { return ErrNoCommandInLeaf }

// DuplicateCommandChainError reports that a terminal node's component
// already had an owning_command set when insert_command tried to set it
// again.
type DuplicateCommandChainError struct {
	Chain string
}

func (e *DuplicateCommandChainError) Error() string {
	return fmt.Sprintf("%s: %s", ErrDuplicateCommandChain, e.Chain)
}
func (e *DuplicateCommandChainError) Unwrap() error { return ErrDuplicateCommandChain }

// InvalidCommandError reports a Command failing its construction-time
// invariants (spec §3 "Command<C>" invariants): empty component list,
// a Required following an Optional/Flag, or more than one Flag.
type InvalidCommandError struct {
	Reason string
}

func (e *InvalidCommandError) Error() string { return "dispatch: invalid command: " + e.Reason }
