package dispatch

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNode_IsRootIsLeaf(t *testing.T) {
	root := newNode[string](rootID, noParent, nil)
	require.True(t, root.IsRoot())
	require.True(t, root.IsLeaf())
}

func TestChildOrder_LiteralsBeforeNonLiteralsThenLexicographic(t *testing.T) {
	arena := []*node[string]{newNode[string](rootID, noParent, nil)}
	root := arena[0]

	addChild := func(c *Component[string]) nodeID {
		id := nodeID(len(arena))
		n := newNode[string](id, rootID, c)
		arena = append(arena, n)
		root.children.put(matchKey(c), id)
		return id
	}

	addChild(NewLiteralComponent[string]("zeta"))
	addChild(NewRequiredComponent[string, int]("amount", intParser{}))
	addChild(NewLiteralComponent[string]("alpha"))

	root.resort(arena)
	ordered := root.children.ordered()
	require.Len(t, ordered, 3)
	require.Equal(t, "alpha", arena[ordered[0]].component.Name())
	require.Equal(t, "zeta", arena[ordered[1]].component.Name())
	require.Equal(t, "amount", arena[ordered[2]].component.Name())
}

func TestFindEquivalentChild(t *testing.T) {
	arena := []*node[string]{newNode[string](rootID, noParent, nil)}
	root := arena[0]
	give := NewLiteralComponent[string]("give")
	id := nodeID(len(arena))
	arena = append(arena, newNode[string](id, rootID, give))
	root.children.put(matchKey(give), id)

	found := findEquivalentChild(arena, root, NewLiteralComponent[string]("give"))
	require.NotNil(t, found)
	require.Equal(t, id, found.id)

	require.Nil(t, findEquivalentChild(arena, root, NewLiteralComponent[string]("take")))
}

func TestNonLiteralChildAndLiteralChildren(t *testing.T) {
	arena := []*node[string]{newNode[string](rootID, noParent, nil)}
	root := arena[0]

	lit := NewLiteralComponent[string]("give")
	litID := nodeID(len(arena))
	arena = append(arena, newNode[string](litID, rootID, lit))
	root.children.put(matchKey(lit), litID)

	nonLit := NewRequiredComponent[string, int]("amount", intParser{})
	nonLitID := nodeID(len(arena))
	arena = append(arena, newNode[string](nonLitID, rootID, nonLit))
	root.children.put(matchKey(nonLit), nonLitID)

	found := nonLiteralChild(arena, root)
	require.NotNil(t, found)
	require.Equal(t, nonLitID, found.id)

	literals := literalChildren(arena, root)
	require.Len(t, literals, 1)
	require.Equal(t, litID, literals[0].id)
}

func TestNode_CachedPermission(t *testing.T) {
	n := newNode[string](rootID, noParent, nil)
	_, ok := n.cachedPermission()
	require.False(t, ok)

	n.setCachedPermission(LeafPermission("a"))
	p, ok := n.cachedPermission()
	require.True(t, ok)
	require.Equal(t, LeafPermission("a"), p)
}
