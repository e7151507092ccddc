package dispatch

import (
	"sort"

	"github.com/emirpasic/gods/maps/linkedhashmap"
)

// nodeID indexes into Tree.arena. Parent/child links are modeled as
// integer indices into a flat arena (spec §9 "Tree cycles and
// back-pointers: model as arena-of-nodes with integer indices... rather
// than owning pointers both ways"), not as Go pointers with a weak back
// reference, which Go has no native equivalent for anyway.
type nodeID int

// rootID is always the synthetic root's index.
const rootID nodeID = 0

// noParent marks the root's parent slot.
const noParent nodeID = -1

// childMap is a typed wrapper around gods' linkedhashmap, the same
// wrap-the-interface{}-map idiom as the teacher's own ordered_maps.go
// (stringCommandNodeMap), specialized to matchKey -> nodeID.
type childMap struct{ m *linkedhashmap.Map }

func newChildMap() childMap { return childMap{m: linkedhashmap.New()} }

func (c childMap) put(key string, id nodeID) { c.m.Put(key, id) }

func (c childMap) get(key string) (nodeID, bool) {
	v, found := c.m.Get(key)
	if !found {
		return 0, false
	}
	return v.(nodeID), true
}

func (c childMap) remove(key string) { c.m.Remove(key) }

// ordered returns child ids in the map's current iteration order.
func (c childMap) ordered() []nodeID {
	values := c.m.Values()
	out := make([]nodeID, len(values))
	for i, v := range values {
		out[i] = v.(nodeID)
	}
	return out
}

func (c childMap) clear() { c.m.Clear() }

// node is the Command Node<C> of spec §3: an optional component (nil for
// the synthetic root), ordered children, a parent back-link, and a
// metadata bag notably caching the resolved permission expression
// (node_meta["permission"]).
type node[C any] struct {
	id        nodeID
	parent    nodeID
	component *Component[C]
	children  childMap // matchKey -> nodeID, rebuilt in sorted order after every mutation
	meta      map[string]any
}

func newNode[C any](id, parent nodeID, component *Component[C]) *node[C] {
	return &node[C]{
		id:        id,
		parent:    parent,
		component: component,
		children:  newChildMap(),
		meta:      make(map[string]any),
	}
}

// IsRoot reports whether this node is the synthetic root (no component).
func (n *node[C]) IsRoot() bool { return n.component == nil }

// IsLeaf reports whether this node has no children.
func (n *node[C]) IsLeaf() bool { return n.children.m.Size() == 0 }

// matchKey is the key a child is indexed under: kind+name, since a
// component's name is unique among siblings of the same kind (spec §3).
// A literal's further aliases never collide with this key — the
// all-literal-siblings alias-disjointness invariant is enforced
// separately (checkAmbiguity), not via this index.
func matchKey[C any](c *Component[C]) string {
	return c.kind.String() + ":" + c.name
}

// cachedPermission returns the permission expression cached during
// verify_and_register, if any.
func (n *node[C]) cachedPermission() (Permission, bool) {
	v, ok := n.meta["permission"]
	if !ok {
		return Permission{}, false
	}
	return v.(Permission), true
}

func (n *node[C]) setCachedPermission(p Permission) { n.meta["permission"] = p }

// childOrder returns this node's children sorted per the tree's total
// order (spec §3 invariant 5: "literals first, lexicographic by name,
// then non-literals") given the tree's node arena to resolve ids.
func childOrder[C any](arena []*node[C], n *node[C]) []nodeID {
	ids := n.children.ordered()
	sort.SliceStable(ids, func(i, j int) bool {
		a, b := arena[ids[i]], arena[ids[j]]
		aLit := a.component.kind == KindLiteral
		bLit := b.component.kind == KindLiteral
		if aLit != bLit {
			return aLit
		}
		if aLit {
			return a.component.name < b.component.name
		}
		return false
	})
	return ids
}

// resort rebuilds n.children in the tree's required total order. Called
// after every insertion into n (spec §4.C.1 step 2: "Re-sort the parent's
// children per the total order").
func (n *node[C]) resort(arena []*node[C]) {
	ordered := childOrder(arena, n)
	n.children.clear()
	for _, id := range ordered {
		n.children.put(matchKey(arena[id].component), id)
	}
}

// findEquivalentChild returns the existing child equivalent to c per spec
// §4.C.1 ("equality is name + value_type").
func findEquivalentChild[C any](arena []*node[C], n *node[C], c *Component[C]) *node[C] {
	if id, ok := n.children.get(matchKey(c)); ok && arena[id].component.equivalentTo(c) {
		return arena[id]
	}
	return nil
}

// nonLiteralChild returns this node's single non-literal child, if any.
func nonLiteralChild[C any](arena []*node[C], n *node[C]) *node[C] {
	for _, id := range n.children.ordered() {
		if arena[id].component.kind != KindLiteral {
			return arena[id]
		}
	}
	return nil
}

// literalChildren returns this node's literal children in sorted order.
func literalChildren[C any](arena []*node[C], n *node[C]) []*node[C] {
	var out []*node[C]
	for _, id := range n.children.ordered() {
		if arena[id].component.kind == KindLiteral {
			out = append(out, arena[id])
		}
	}
	return out
}
