package dispatch

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Settings is the manager's small global settings set, read by the tree
// through a borrowed reference (spec §9 "Global settings: the manager
// carries a small settings set... Model as an explicit settings struct
// owned by the manager; the tree reads it through a borrowed reference").
type Settings struct {
	// EnforceIntermediaryPermissions: when true, an intermediary node's own
	// owning_command permission overrides the inherited (Or'd) permission
	// instead of being combined with it (spec §4.C.2).
	EnforceIntermediaryPermissions bool
	// LiberalFlagParsing: when true, a command's flag component is
	// attached after the chain's last literal rather than after its final
	// non-flag component (spec §4.C.1 step 3).
	LiberalFlagParsing bool
}

// RegistrationHandler is called once per leaf during verify_and_register
// (spec §6 "Registration handler contract (consumed): register_command(cmd)
// called once per leaf during verify").
type RegistrationHandler[C any] func(cmd *Command[C])

// Tree is the Command Tree<C> of spec §3: a synthetic root plus the
// manager's settings and permission predicate, borrowed by reference.
// Parse and Suggest only ever take the read lock; Insert takes the
// exclusive lock for its whole duration (spec §5 "Shared state and
// mutation").
type Tree[C any] struct {
	mu         sync.RWMutex
	arena      []*node[C]
	settings   *Settings
	predicate  PermissionPredicate[C]
	onRegister RegistrationHandler[C]
	reported   map[nodeID]bool
}

// NewTree returns an empty Tree with a synthetic root.
func NewTree[C any](settings *Settings, predicate PermissionPredicate[C], onRegister RegistrationHandler[C]) *Tree[C] {
	t := &Tree[C]{settings: settings, predicate: predicate, onRegister: onRegister, reported: make(map[nodeID]bool)}
	t.arena = []*node[C]{newNode[C](rootID, noParent, nil)}
	return t
}

func firstChild[C any](arena []*node[C], n *node[C]) *node[C] {
	ids := n.children.ordered()
	if len(ids) == 0 {
		return nil
	}
	return arena[ids[0]]
}

// ---------------------------------------------------------------------
// Insertion (spec §4.C.1)
// ---------------------------------------------------------------------

// Insert adds cmd's component chain to the tree and re-verifies the whole
// tree, under the tree's exclusive lock.
func (t *Tree[C]) Insert(cmd *Command[C]) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	var nonFlag []*Component[C]
	var flag *Component[C]
	for _, c := range cmd.Components {
		if c.kind == KindFlag {
			flag = c
		} else {
			nonFlag = append(nonFlag, c)
		}
	}

	logger.Tracef("dispatch: inserting command with %d components", len(cmd.Components))

	cur := t.arena[rootID]
	var lastLiteral *node[C]
	for _, c := range nonFlag {
		next, err := t.attachChild(cur, c)
		if err != nil {
			return err
		}
		cur = next
		if c.kind == KindLiteral {
			lastLiteral = cur
		}
	}

	if flag != nil {
		anchor := cur
		if t.settings != nil && t.settings.LiberalFlagParsing && lastLiteral != nil {
			anchor = lastLiteral
		}
		next, err := t.attachChild(anchor, flag)
		if err != nil {
			return err
		}
		cur = next
	}

	if cur.component == nil {
		return &InvalidCommandError{Reason: "command produced no terminal node"}
	}
	if err := cur.component.setOwningCommand(cmd); err != nil {
		return err
	}
	return t.verifyAndRegister()
}

// attachChild implements one step of spec §4.C.1's loop: find-or-create
// the child for c under parent, merging aliases when c is an equivalent
// literal, eagerly rejecting a second distinct non-literal sibling.
func (t *Tree[C]) attachChild(parent *node[C], c *Component[C]) (*node[C], error) {
	if existing := findEquivalentChild(t.arena, parent, c); existing != nil {
		if c.kind == KindLiteral {
			existing.component.mergeAliases(c)
		}
		return existing, nil
	}
	if c.kind != KindLiteral && nonLiteralChild(t.arena, parent) != nil {
		return nil, &AmbiguousNodeError{Reason: fmt.Sprintf("node already has a non-literal child, cannot also add %q", c.name)}
	}
	id := nodeID(len(t.arena))
	child := newNode[C](id, parent.id, c)
	t.arena = append(t.arena, child)
	parent.children.put(matchKey(c), id)
	parent.resort(t.arena)
	return child, nil
}

// ---------------------------------------------------------------------
// Verify and register (spec §4.C.2)
// ---------------------------------------------------------------------

// verifyAndRegister re-walks the whole tree on every Insert (spec §4.C.2),
// but onRegister must fire exactly once per leaf over the tree's lifetime
// (spec §6 "idempotent... after deduplication"); t.reported tracks which
// leaf IDs have already been reported so re-verification after a later
// Insert doesn't re-report earlier commands.
func (t *Tree[C]) verifyAndRegister() error {
	if err := t.checkAmbiguity(rootID, true); err != nil {
		return err
	}
	var leaves []nodeID
	t.collectLeaves(rootID, &leaves)
	for _, id := range leaves {
		n := t.arena[id]
		if n.component == nil || n.component.OwningCommand() == nil {
			return &NoCommandInLeafError{Name: leafDebugName(n)}
		}
	}
	for _, id := range leaves {
		n := t.arena[id]
		if !t.reported[id] {
			if t.onRegister != nil {
				t.onRegister(n.component.OwningCommand())
			}
			t.reported[id] = true
		}
		t.propagatePermission(id)
	}
	logger.Tracef("dispatch: verify_and_register found %d leaves", len(leaves))
	return nil
}

func leafDebugName[C any](n *node[C]) string {
	if n.component == nil {
		return "<root>"
	}
	return n.component.name
}

// checkAmbiguity walks the subtree rooted at id enforcing spec §3's
// invariants 1, 2 and 4.
func (t *Tree[C]) checkAmbiguity(id nodeID, isRoot bool) error {
	n := t.arena[id]
	nonLiteralCount := 0
	aliasOwner := make(map[string]nodeID)
	for _, cid := range n.children.ordered() {
		child := t.arena[cid]
		if isRoot && child.component.kind != KindLiteral {
			return &AmbiguousNodeError{Reason: "every child of the root must be a literal component"}
		}
		if child.component.kind != KindLiteral {
			nonLiteralCount++
			continue
		}
		for _, alias := range child.component.aliases {
			if owner, ok := aliasOwner[alias]; ok && owner != cid {
				return &AmbiguousNodeError{Reason: fmt.Sprintf("literal alias %q shared by sibling nodes", alias)}
			}
			aliasOwner[alias] = cid
		}
	}
	if nonLiteralCount > 1 {
		return &AmbiguousNodeError{Reason: "more than one non-literal child under one node"}
	}
	for _, cid := range n.children.ordered() {
		if err := t.checkAmbiguity(cid, false); err != nil {
			return err
		}
	}
	return nil
}

func (t *Tree[C]) collectLeaves(id nodeID, out *[]nodeID) {
	n := t.arena[id]
	if n.IsLeaf() {
		if !n.IsRoot() {
			*out = append(*out, id)
		}
		return
	}
	for _, cid := range n.children.ordered() {
		t.collectLeaves(cid, out)
	}
}

// propagatePermission implements spec §4.C.2's permission-caching walk
// from a newly-registered leaf back up to the root.
func (t *Tree[C]) propagatePermission(leafID nodeID) {
	leaf := t.arena[leafID]
	perm := leaf.component.OwningCommand().Permission
	id := leafID
	atLeaf := true
	for {
		n := t.arena[id]
		if !atLeaf {
			switch {
			case t.settings != nil && t.settings.EnforceIntermediaryPermissions && n.component != nil && n.component.OwningCommand() != nil:
				perm = n.component.OwningCommand().Permission
			default:
				if existing, ok := n.cachedPermission(); ok {
					perm = Or(existing, perm)
				}
			}
		}
		n.setCachedPermission(perm)
		atLeaf = false
		if id == rootID {
			break
		}
		id = n.parent
	}
}

// ---------------------------------------------------------------------
// Permission resolution (spec §4.C.5)
// ---------------------------------------------------------------------

func (t *Tree[C]) determinePermission(ctx context.Context, sender C, n *node[C]) (PermissionResult, error) {
	if cached, ok := n.cachedPermission(); ok {
		allowed, err := EvaluatePermission(ctx, cached, sender, t.predicate)
		if err != nil {
			return PermissionResult{}, err
		}
		if allowed {
			return Allowed(), nil
		}
		return Denied(cached), nil
	}
	if n.IsLeaf() {
		if n.component == nil || n.component.OwningCommand() == nil {
			return Allowed(), nil
		}
		perm := n.component.OwningCommand().Permission
		allowed, err := EvaluatePermission(ctx, perm, sender, t.predicate)
		if err != nil {
			return PermissionResult{}, err
		}
		if allowed {
			return Allowed(), nil
		}
		return Denied(perm), nil
	}
	var missing []Permission
	for _, cid := range n.children.ordered() {
		res, err := t.determinePermission(ctx, sender, t.arena[cid])
		if err != nil {
			return PermissionResult{}, err
		}
		if res.IsAllowed() {
			return Allowed(), nil
		}
		missing = append(missing, res.Missing())
	}
	return Denied(Or(missing...)), nil
}

// ---------------------------------------------------------------------
// Parse traversal (spec §4.C.3)
// ---------------------------------------------------------------------

// ParseOutcome is what a successful Parse resolves to: the matched
// command and the populated traversal context.
type ParseOutcome[C any] struct {
	Command *Command[C]
	Context *TreeContext[C]
}

// Parse parses input on behalf of sender, returning a future that
// resolves to the matched Command or fails with one of the typed errors
// of errors.go (spec §4.C.3 "Entry point returns a future resolving to
// the matched Command or failing with a typed exception").
func (t *Tree[C]) Parse(ctx context.Context, sender C, input string) *Future[*ParseOutcome[C]] {
	return Go(ctx, func(ctx context.Context) (*ParseOutcome[C], error) {
		t.mu.RLock()
		defer t.mu.RUnlock()
		tc := newTreeContext[C](sender)
		cur := NewCursor(input)
		cmd, err := t.parseNode(ctx, rootID, tc, cur)
		if err != nil {
			return nil, err
		}
		if !cmd.AcceptsSender(sender) {
			return nil, newInvalidSenderError[C](tc.Path(), sender, cmd.RequiredSenderType)
		}
		return &ParseOutcome[C]{Command: cmd, Context: tc}, nil
	})
}

func (t *Tree[C]) parseNode(ctx context.Context, id nodeID, tc *TreeContext[C], cur *Cursor) (*Command[C], error) {
	n := t.arena[id]

	permResult, err := t.determinePermission(ctx, tc.Sender, n)
	if err != nil {
		return nil, err
	}
	if !permResult.IsAllowed() {
		return nil, newNoPermissionError[C](tc.Path(), tc.Sender, permResult.Missing())
	}

	decided, cmd, err := t.attemptUnambiguousChild(ctx, n, tc, cur)
	if decided {
		return cmd, err
	}

	if n.IsLeaf() {
		if n.component != nil && n.component.OwningCommand() != nil && cur.Remaining() == "" {
			return n.component.OwningCommand(), nil
		}
		return nil, newInvalidSyntaxError[C](tc.Path(), tc.Sender, "no further input expected")
	}

	for _, lc := range literalChildren(t.arena, n) {
		pos := cur.Position()
		tok := cur.ReadString()
		if tok == "" || !lc.component.HasAlias(tok) {
			cur.SetPosition(pos)
			continue
		}
		tc.setRaw(lc.component.name, tok)
		tc.recordConsumed(lc.component.name, StringRange{Start: pos, End: cur.Position()})
		tc.pushPath(lc.component)
		return t.finishChildMatch(ctx, lc, tc, cur)
	}

	if n.IsRoot() {
		return nil, newNoSuchCommandError[C](tc.Path(), tc.Sender, cur.PeekString())
	}
	if n.component.OwningCommand() != nil && cur.Remaining() == "" {
		perm := n.component.OwningCommand().Permission
		allowed, everr := EvaluatePermission(ctx, perm, tc.Sender, t.predicate)
		if everr != nil {
			return nil, everr
		}
		if !allowed {
			return nil, newNoPermissionError[C](tc.Path(), tc.Sender, perm)
		}
		return n.component.OwningCommand(), nil
	}
	return nil, newInvalidSyntaxError[C](tc.Path(), tc.Sender, "no matching branch for remaining input")
}

// finishChildMatch applies the "leaf vs. recurse" decision shared by the
// literal branch of the main loop and attemptUnambiguousChild's step 4.
func (t *Tree[C]) finishChildMatch(ctx context.Context, child *node[C], tc *TreeContext[C], cur *Cursor) (*Command[C], error) {
	if child.IsLeaf() {
		if cur.Remaining() == "" {
			if child.component.OwningCommand() != nil {
				return child.component.OwningCommand(), nil
			}
			return nil, newInvalidSyntaxError[C](tc.Path(), tc.Sender, "no command registered at this path")
		}
		return nil, newInvalidSyntaxError[C](tc.Path(), tc.Sender, "unexpected trailing input")
	}
	return t.parseNode(ctx, child.id, tc, cur)
}

// attemptUnambiguousChild encodes spec §4.C.3's disambiguation routine.
// decided=false means "the main parse loop should try this node's literal
// children instead".
func (t *Tree[C]) attemptUnambiguousChild(ctx context.Context, n *node[C], tc *TreeContext[C], cur *Cursor) (bool, *Command[C], error) {
	tok := cur.PeekString()
	if tok != "" {
		for _, lc := range literalChildren(t.arena, n) {
			if lc.component.HasAlias(tok) {
				return false, nil, nil
			}
		}
	}

	nl := nonLiteralChild(t.arena, n)
	if nl == nil {
		return false, nil, nil
	}
	comp := nl.component

	if cur.Remaining() == "" && comp.kind != KindFlag {
		return t.attemptDefaultOrIntermediary(ctx, n, nl, tc, cur)
	}

	pos := cur.Position()
	value, perr := comp.parser.parse(ctx, tc, cur)
	if perr != nil {
		cur.SetPosition(pos)
		return true, nil, newArgumentParseError[C](tc.Path(), tc.Sender, perr)
	}
	tc.setRaw(comp.name, value)
	tc.recordConsumed(comp.name, StringRange{Start: pos, End: cur.Position()})
	tc.pushPath(comp)
	cmd, err := t.finishChildMatch(ctx, nl, tc, cur)
	return true, cmd, err
}

// attemptDefaultOrIntermediary is spec §4.C.3 step 3: the non-literal
// child is reached with no remaining input and is not a Flag.
func (t *Tree[C]) attemptDefaultOrIntermediary(ctx context.Context, n, nl *node[C], tc *TreeContext[C], cur *Cursor) (bool, *Command[C], error) {
	comp := nl.component
	if comp.hasDefault {
		value, literal, isParsed, derr := comp.defaultValue.resolve(ctx, tc)
		if derr != nil {
			return true, nil, newArgumentParseError[C](tc.Path(), tc.Sender, derr)
		}
		if isParsed {
			fed := cur.AppendString(literal)
			v, perr := comp.parser.parse(ctx, tc, fed)
			if perr != nil {
				// Open Question (spec §9) resolved: a parsed default that
				// itself fails to parse surfaces as InvalidSyntax wrapping
				// the default's own parse error.
				return true, nil, newInvalidSyntaxError[C](tc.Path(), tc.Sender, fmt.Sprintf("default %q for %q: %v", literal, comp.name, perr))
			}
			tc.setRaw(comp.name, v)
			tc.pushPath(comp)
			cmd, err := t.finishChildMatch(ctx, nl, tc, fed)
			return true, cmd, err
		}
		tc.setRaw(comp.name, value)
		tc.pushPath(comp)
		cmd, err := t.finishChildMatch(ctx, nl, tc, cur)
		return true, cmd, err
	}

	if comp.IsOptional() {
		descend := nl
		for !descend.IsLeaf() {
			descend = firstChild(t.arena, descend)
		}
		if descend.component != nil && descend.component.OwningCommand() != nil {
			return true, descend.component.OwningCommand(), nil
		}
		return true, nil, newInvalidSyntaxError[C](tc.Path(), tc.Sender, "no command reachable through optional chain")
	}

	// Required intermediary missing: fall back to the nearer-ancestor
	// owning_command (n, which is the parent in this call), whether nl is
	// itself a leaf or an intermediary — both cases defer to the same
	// owning_command-as-intermediary logic (spec §4.C.3 step 3 branches
	// 3 and 4).
	if n.component == nil || n.component.OwningCommand() == nil {
		return true, nil, newInvalidSyntaxError[C](tc.Path(), tc.Sender, fmt.Sprintf("missing required argument %q", comp.name))
	}
	owning := n.component.OwningCommand()
	allowed, everr := EvaluatePermission(ctx, owning.Permission, tc.Sender, t.predicate)
	if everr != nil {
		return true, nil, everr
	}
	if !allowed {
		return true, nil, newNoPermissionError[C](tc.Path(), tc.Sender, owning.Permission)
	}
	return true, owning, nil
}

// ---------------------------------------------------------------------
// Suggestion traversal (spec §4.C.4)
// ---------------------------------------------------------------------

// Suggest walks the tree mirroring Parse's disambiguation, returning a
// future resolving to candidate completions. Errors are swallowed (spec
// §7 "suggestion errors are swallowed and reported as an empty list").
func (t *Tree[C]) Suggest(ctx context.Context, sender C, input string) *Future[[]Suggestion] {
	return Go(ctx, func(ctx context.Context) ([]Suggestion, error) {
		t.mu.RLock()
		defer t.mu.RUnlock()
		tc := newTreeContext[C](sender)
		cur := NewCursor(input)
		suggestions, err := t.suggestNode(ctx, rootID, tc, cur)
		if err != nil {
			return nil, nil
		}
		return suggestions, nil
	})
}

func (t *Tree[C]) suggestNode(ctx context.Context, id nodeID, tc *TreeContext[C], cur *Cursor) ([]Suggestion, error) {
	n := t.arena[id]

	permResult, err := t.determinePermission(ctx, tc.Sender, n)
	if err != nil || !permResult.IsAllowed() {
		return nil, nil
	}

	remaining := cur.RemainingTokens()
	tok := cur.PeekString()

	for _, lc := range literalChildren(t.arena, n) {
		if tok != "" && lc.component.HasAlias(tok) && remaining > 1 {
			pos := cur.Position()
			cur.ReadString()
			sub, serr := t.suggestNode(ctx, lc.id, tc, cur)
			cur.SetPosition(pos)
			if serr == nil {
				return sub, nil
			}
		}
	}

	var literalGroups, dynamicGroups [][]Suggestion
	if remaining <= 1 {
		var group []Suggestion
		for _, lc := range literalChildren(t.arena, n) {
			for _, alias := range lc.component.Aliases() {
				group = append(group, Suggestion{Text: alias})
			}
		}
		literalGroups = append(literalGroups, filterSuggestions(group, tok))
	}

	if nl := nonLiteralChild(t.arena, n); nl != nil {
		dyn, derr := t.suggestDynamic(ctx, nl, tc, cur)
		if derr == nil {
			dynamicGroups = append(dynamicGroups, dyn)
		}
	}

	return mergeSuggestions(literalGroups, dynamicGroups), nil
}

// suggestDynamic implements the "for a dynamic (variable or flag) child"
// half of spec §4.C.4.
func (t *Tree[C]) suggestDynamic(ctx context.Context, n *node[C], tc *TreeContext[C], cur *Cursor) ([]Suggestion, error) {
	comp := n.component

	switch {
	case comp.parser == nil:
		// Literal reached via nonLiteralChild never happens; guard only.
	default:
		if subNames, ok := comp.parser.subComponents(); ok {
			for i := 0; i < len(subNames)-1 && cur.RemainingTokens() > 1; i++ {
				tok := cur.ReadStringSkipWhitespace(false)
				tc.setRaw(fmt.Sprintf("%s_%d", comp.name, i), tok)
			}
		} else if _, ok := comp.parser.flagNames(); ok {
			flagName, completing, _ := comp.parser.parseCurrentFlag(cur)
			if completing {
				tc.setCompletingFlag(flagName)
			} else {
				tc.clearCompletingFlag()
			}
		} else {
			count := comp.RequestedArgumentCount()
			for i := 0; i < count-1 && cur.RemainingTokens() > 1; i++ {
				tok := cur.ReadStringSkipWhitespace(false)
				tc.setRaw(fmt.Sprintf("%s_%d", comp.name, i), tok)
			}
		}
	}

	if cur.Remaining() == "" {
		return nil, nil
	}

	if cur.RemainingTokens() == 1 {
		prefix := cur.PeekString()
		suggestions, err := comp.Suggestions(ctx, tc, prefix).Get(ctx)
		if err != nil {
			return nil, nil
		}
		if comp.kind == KindFlag && !strings.HasPrefix(prefix, "-") && !n.IsLeaf() {
			childSuggestions, _ := t.suggestNode(ctx, n.id, tc, cur)
			suggestions = append(suggestions, childSuggestions...)
		}
		return suggestions, nil
	}

	preResult := comp.Preprocess(ctx, tc, cur)
	if !preResult.Ok() {
		return nil, nil
	}
	if ok, _ := preResult.Value(); !ok {
		return nil, nil
	}
	pos := cur.Position()
	value, perr := comp.parser.parse(ctx, tc, cur)
	if perr != nil {
		cur.SetPosition(pos)
		return nil, nil
	}
	tc.setRaw(comp.name, value)
	return t.suggestNode(ctx, n.id, tc, cur)
}
