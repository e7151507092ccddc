package dispatch

import (
	"errors"
	"strconv"
	"strings"
)

// ArgumentSeparator is the rune required to separate individual tokens in
// an input string, matching the teacher's brigodier.ArgumentSeparator.
const ArgumentSeparator = ' '

// Cursor is the Command Input: a stateful, allocation-free cursor over a
// raw string with typed peek/read/skip primitives (spec §4.A). It wraps
// the teacher's StringReader (reader.go) with the tokenizing and
// trailing-space semantics spec.md's suggestion traversal depends on.
type Cursor struct {
	input  string
	cursor int
}

// NewCursor returns a Cursor positioned at the start of input.
func NewCursor(input string) *Cursor { return &Cursor{input: input} }

// Input returns the full backing string.
func (c *Cursor) Input() string { return c.input }

// Position returns the current cursor offset.
func (c *Cursor) Position() int { return c.cursor }

// SetPosition repositions the cursor. Callers attempting rollback must use
// this rather than constructing a new Cursor, so Copy/rollback discipline
// (spec §4.C.3 "Cursor discipline") stays visible at call sites.
func (c *Cursor) SetPosition(pos int) {
	if pos < 0 || pos > len(c.input) {
		panic("dispatch: cursor position out of range")
	}
	c.cursor = pos
}

// CanRead reports whether at least n bytes remain unread.
func (c *Cursor) CanRead(n int) bool { return c.cursor+n <= len(c.input) }

var errOutOfBounds = errors.New("dispatch: cursor out of bounds")

// Peek returns the next byte without advancing the cursor.
func (c *Cursor) Peek() (byte, error) {
	if !c.CanRead(1) {
		return 0, errOutOfBounds
	}
	return c.input[c.cursor], nil
}

// Read returns the next byte and advances the cursor past it.
func (c *Cursor) Read() (byte, error) {
	b, err := c.Peek()
	if err != nil {
		return 0, err
	}
	c.cursor++
	return b, nil
}

// Skip advances the cursor past one byte without returning it.
func (c *Cursor) Skip() { c.cursor++ }

func (c *Cursor) skipWhitespace() {
	for c.cursor < len(c.input) && c.input[c.cursor] == ArgumentSeparator {
		c.cursor++
	}
}

// PeekString skips leading whitespace without moving the cursor, then
// returns the characters up to (not including) the next whitespace; empty
// when input is exhausted.
func (c *Cursor) PeekString() string {
	start := c.cursor
	c.skipWhitespace()
	tokenStart := c.cursor
	end := tokenStart
	for end < len(c.input) && c.input[end] != ArgumentSeparator {
		end++
	}
	token := c.input[tokenStart:end]
	c.cursor = start
	return token
}

// ReadString skips leading whitespace, advances the cursor past the next
// token, and does not consume trailing whitespace.
func (c *Cursor) ReadString() string {
	c.skipWhitespace()
	start := c.cursor
	for c.cursor < len(c.input) && c.input[c.cursor] != ArgumentSeparator {
		c.cursor++
	}
	return c.input[start:c.cursor]
}

// ReadStringSkipWhitespace reads the next token and consumes trailing
// whitespace, optionally preserving exactly one trailing space if doing so
// would otherwise swallow the "awaiting next token" signal a suggestion
// traversal relies on (spec §4.A).
func (c *Cursor) ReadStringSkipWhitespace(preserveSingleSpace bool) string {
	token := c.ReadString()
	consumed := 0
	for c.cursor < len(c.input) && c.input[c.cursor] == ArgumentSeparator {
		c.cursor++
		consumed++
	}
	if preserveSingleSpace && consumed > 0 && c.cursor == len(c.input) {
		c.cursor--
	}
	return token
}

// Tokenize returns the semantic view of the remaining input split on
// ArgumentSeparator. If the remaining input ends with a separator, an
// extra empty token is appended — the signal the tree uses to distinguish
// "typed all of X" from "typed X and a space, awaiting Y" (spec §4.A edge
// case).
func (c *Cursor) Tokenize() []string {
	remaining := c.input[c.cursor:]
	if remaining == "" {
		return []string{""}
	}
	tokens := strings.Split(remaining, string(ArgumentSeparator))
	return tokens
}

// RemainingTokens returns the number of whitespace-delimited tokens left
// in the remaining input, plus one when it ends with ArgumentSeparator
// (the pending empty token), without allocating. Unlike Tokenize, empty
// runs between separators are not counted, and exhausted input counts 0.
func (c *Cursor) RemainingTokens() int {
	remaining := c.input[c.cursor:]
	count := 0
	inToken := false
	for i := 0; i < len(remaining); i++ {
		if remaining[i] == ArgumentSeparator {
			inToken = false
		} else if !inToken {
			inToken = true
			count++
		}
	}
	if strings.HasSuffix(remaining, string(ArgumentSeparator)) {
		count++
	}
	return count
}

// Remaining returns the unread suffix of the input.
func (c *Cursor) Remaining() string { return c.input[c.cursor:] }

// AppendString returns a new Cursor whose backing string is the receiver's
// input with s appended; the cursor position is preserved. Used when a
// parsed default value must be re-fed to the parse traversal (spec §4.A).
func (c *Cursor) AppendString(s string) *Cursor {
	return &Cursor{input: c.input + s, cursor: c.cursor}
}

// Copy returns an independent Cursor at the same position over the same
// backing string.
func (c *Cursor) Copy() *Cursor {
	return &Cursor{input: c.input, cursor: c.cursor}
}

var (
	ErrCursorExpectedInt     = errors.New("dispatch: cursor expected integer")
	ErrCursorExpectedBool    = errors.New("dispatch: cursor expected bool")
	ErrCursorInvalidBool     = errors.New("dispatch: cursor read invalid bool")
)

// ReadInteger reads the next token and parses it as a base-10 int,
// failing with an ErrCursorExpectedInt-wrapping error on mismatch.
func (c *Cursor) ReadInteger() (int, error) {
	start := c.cursor
	token := c.ReadString()
	n, err := strconv.Atoi(token)
	if err != nil {
		c.cursor = start
		return 0, errors.Join(ErrCursorExpectedInt, err)
	}
	return n, nil
}

// ReadLong reads the next token and parses it as a base-10 int64.
func (c *Cursor) ReadLong() (int64, error) {
	start := c.cursor
	token := c.ReadString()
	n, err := strconv.ParseInt(token, 10, 64)
	if err != nil {
		c.cursor = start
		return 0, errors.Join(ErrCursorExpectedInt, err)
	}
	return n, nil
}

// ReadBoolean reads the next token and parses it as "true"/"false"
// (case-insensitive).
func (c *Cursor) ReadBoolean() (bool, error) {
	start := c.cursor
	token := c.ReadString()
	switch strings.ToLower(token) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		c.cursor = start
		if token == "" {
			return false, ErrCursorExpectedBool
		}
		return false, errors.Join(ErrCursorInvalidBool, errors.New(token))
	}
}
