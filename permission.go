package dispatch

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/cnf/structhash"
)

// PermissionPredicate delegates a single named permission check to the
// platform (spec §4.glossary "Permission predicate (consumed):
// has_permission(sender, permission_string) -> bool"). The tree never
// evaluates permission strings itself; it only ever walks the expression
// tree built from them.
type PermissionPredicate[C any] func(ctx context.Context, sender C, permission string) (bool, error)

// permExprKind tags the five-way sum type of spec §4.glossary "Permission
// expression": boolean combination (And/Or/Not/leaf-name/empty).
type permExprKind uint8

const (
	permEmpty permExprKind = iota
	permLeaf
	permAnd
	permOr
	permNot
)

// Permission is an immutable boolean expression over named permission
// strings (spec §3 "Permission Result... permission_expr is a boolean
// combination (Leaf, And, Or) of named permission strings", extended with
// Not per §4.glossary). EmptyPermission() is the identity: always Allowed.
//
// Instances are interned by structural hash so that repeated
// Or(existing, new) combination during registration (spec §4.C "the new
// value is combined as Or(existing, new)") converges on identical
// expressions sharing one allocation, the same way npillmayer-gorgo uses
// structhash to dedup structurally-equal terms.
type Permission struct {
	kind     permExprKind
	leaf     string
	children []Permission
	digest   string
}

// permissionInternTable is shared by every Tree/Manager instance in the
// process, so concurrent registration on two independent Trees must not
// race on it.
var permissionInternTable = struct {
	mu      sync.Mutex
	entries map[string]Permission
}{entries: make(map[string]Permission)}

func internPermission(p Permission) Permission {
	digest, err := structhash.Hash(struct {
		Kind permExprKind
		Leaf string
		Kids []string
	}{p.kind, p.leaf, digestsOf(p.children)}, 1)
	if err != nil {
		digest = fmt.Sprintf("fallback:%d:%s:%v", p.kind, p.leaf, digestsOf(p.children))
	}
	permissionInternTable.mu.Lock()
	defer permissionInternTable.mu.Unlock()
	if existing, ok := permissionInternTable.entries[digest]; ok {
		return existing
	}
	p.digest = digest
	permissionInternTable.entries[digest] = p
	return p
}

func digestsOf(ps []Permission) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.digest
	}
	return out
}

// EmptyPermission returns the identity expression: Permission.empty() ==
// Allowed always (spec §4.C.5).
func EmptyPermission() Permission { return internPermission(Permission{kind: permEmpty}) }

// LeafPermission wraps a single named permission string.
func LeafPermission(name string) Permission {
	return internPermission(Permission{kind: permLeaf, leaf: name})
}

// And combines expressions conjunctively. And() with no arguments is the
// empty expression.
func And(exprs ...Permission) Permission {
	return combine(permAnd, exprs)
}

// Or combines expressions disjunctively (used to accumulate an
// intermediary node's cached permission across multiple children, spec
// §4.C step "combined as Or(existing, new)").
func Or(exprs ...Permission) Permission {
	return combine(permOr, exprs)
}

// Not negates an expression.
func Not(expr Permission) Permission {
	if expr.kind == permEmpty {
		return expr
	}
	return internPermission(Permission{kind: permNot, children: []Permission{expr}})
}

func combine(kind permExprKind, exprs []Permission) Permission {
	var kept []Permission
	for _, e := range exprs {
		if e.kind == permEmpty {
			continue
		}
		kept = append(kept, e)
	}
	if len(kept) == 0 {
		return EmptyPermission()
	}
	if len(kept) == 1 {
		return kept[0]
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i].digest < kept[j].digest })
	return internPermission(Permission{kind: kind, children: kept})
}

// IsEmpty reports whether this is the always-allowed identity expression.
func (p Permission) IsEmpty() bool { return p.kind == permEmpty }

// String renders the expression in infix form, used both for debugging
// and as the text attached to NoPermissionError.
func (p Permission) String() string {
	switch p.kind {
	case permEmpty:
		return "<empty>"
	case permLeaf:
		return p.leaf
	case permNot:
		return "!" + p.children[0].String()
	case permAnd:
		return joinExpr(p.children, " & ")
	case permOr:
		return joinExpr(p.children, " | ")
	default:
		return "<invalid>"
	}
}

func joinExpr(children []Permission, sep string) string {
	parts := make([]string, len(children))
	for i, c := range children {
		parts[i] = c.String()
	}
	return "(" + strings.Join(parts, sep) + ")"
}

// EvaluatePermission tests expr against sender, delegating every leaf to
// predicate (spec §4.glossary "evaluate the boolean expression by
// delegating primitive leaves to the platform's has_permission"). A
// package function rather than a method: Go methods cannot introduce
// their own type parameter, and the sender type only becomes known to
// Permission at the evaluation call site, not at construction.
func EvaluatePermission[C any](ctx context.Context, expr Permission, sender C, predicate PermissionPredicate[C]) (bool, error) {
	switch expr.kind {
	case permEmpty:
		return true, nil
	case permLeaf:
		return predicate(ctx, sender, expr.leaf)
	case permNot:
		ok, err := EvaluatePermission(ctx, expr.children[0], sender, predicate)
		if err != nil {
			return false, err
		}
		return !ok, nil
	case permAnd:
		for _, c := range expr.children {
			ok, err := EvaluatePermission(ctx, c, sender, predicate)
			if err != nil {
				return false, err
			}
			if !ok {
				return false, nil
			}
		}
		return true, nil
	case permOr:
		for _, c := range expr.children {
			ok, err := EvaluatePermission(ctx, c, sender, predicate)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	default:
		return false, fmt.Errorf("dispatch: invalid permission expression kind %d", expr.kind)
	}
}

// PermissionResult is Allowed, or Denied carrying the missing expression
// (spec §3 "Permission Result — Allowed or Denied(permission_expr)").
type PermissionResult struct {
	allowed bool
	missing Permission
}

// Allowed is the always-permitted result.
func Allowed() PermissionResult { return PermissionResult{allowed: true} }

// Denied reports missing as the expression that would have been required.
func Denied(missing Permission) PermissionResult { return PermissionResult{missing: missing} }

func (r PermissionResult) IsAllowed() bool      { return r.allowed }
func (r PermissionResult) Missing() Permission  { return r.missing }
