// Package treemap rebuilds category and group hierarchies from the nested
// arrays the server returns. Each element of such an array carries a refid
// and an optional "children" array of the same shape.
package treemap

import (
	"fmt"

	"github.com/echopf/echo.go/pkg/models"
)

const childrenKey = "children"

// Builder turns one element of a tree response into a node payload. The
// element passed in no longer has its "children" key.
type Builder[N any] func(addr models.Address, element map[string]any) (N, error)

// Tree is either a whole tree, addressed without a refid and holding no node
// of its own, or a rooted sub-tree whose node is the element with the
// addressed refid. Children are owned by their parent and never point back.
type Tree[N any] struct {
	addr     models.Address
	build    Builder[N]
	node     N
	hasNode  bool
	children []*Tree[N]
}

// New returns an empty tree at addr. A zero Refid selects the whole tree.
func New[N any](addr models.Address, build Builder[N]) *Tree[N] {
	return &Tree[N]{addr: addr, build: build}
}

func (t *Tree[N]) Address() models.Address {
	return t.addr
}

// Rooted reports whether t is a sub-tree below one identified node.
func (t *Tree[N]) Rooted() bool {
	return t.addr.Refid != ""
}

// Node returns the payload of t. ok is false for a whole tree, and for a
// rooted sub-tree whose root could not be found in the last snapshot.
func (t *Tree[N]) Node() (node N, ok bool) {
	return t.node, t.hasNode
}

// Children returns the child trees in the order the server sent them.
func (t *Tree[N]) Children() []*Tree[N] {
	return t.children
}

// Rebuild discards the node and every child of t and reconstructs them from
// snapshot, a response holding the items array under the resource type key.
// A missing items array is an error. A rooted sub-tree whose root element is
// absent or has no refid is left empty without error. On error t keeps its
// previous contents.
func (t *Tree[N]) Rebuild(snapshot map[string]any) error {
	key := t.addr.ResourceType
	items, ok := snapshot[key].([]any)
	if !ok {
		return &models.MalformedFieldError{
			Field:  key,
			Reason: fmt.Sprintf("expected array, got %T", snapshot[key]),
		}
	}

	var (
		node     N
		hasNode  bool
		children []*Tree[N]
		err      error
	)

	if !t.Rooted() {
		children, err = t.BuildChildren(items)
		if err != nil {
			return err
		}
	} else if root, refid := rootElement(items); refid != "" {
		node, err = t.build(t.addr.WithRefid(refid), withoutChildren(root))
		if err != nil {
			return err
		}
		hasNode = true
		children, err = t.BuildChildren(childArray(root))
		if err != nil {
			return err
		}
	}

	t.node, t.hasNode, t.children = node, hasNode, children
	return nil
}

func rootElement(items []any) (map[string]any, string) {
	if len(items) == 0 {
		return nil, ""
	}
	root, ok := items[0].(map[string]any)
	if !ok {
		return nil, ""
	}
	refid, _ := root["refid"].(string)
	return root, refid
}

// BuildChildren turns array into rooted sub-trees, one per element, keeping
// array order and duplicates. Elements without a non-empty refid are
// dropped.
func (t *Tree[N]) BuildChildren(array []any) ([]*Tree[N], error) {
	result := make([]*Tree[N], 0, len(array))
	for _, raw := range array {
		element, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		refid, _ := element["refid"].(string)
		if refid == "" {
			continue
		}

		addr := t.addr.WithRefid(refid)
		node, err := t.build(addr, withoutChildren(element))
		if err != nil {
			return nil, fmt.Errorf("building %s: %w", addr, err)
		}

		child := &Tree[N]{addr: addr, build: t.build, node: node, hasNode: true}
		child.children, err = child.BuildChildren(childArray(element))
		if err != nil {
			return nil, err
		}
		result = append(result, child)
	}
	return result, nil
}

func childArray(element map[string]any) []any {
	children, _ := element[childrenKey].([]any)
	return children
}

func withoutChildren(element map[string]any) map[string]any {
	out := make(map[string]any, len(element))
	for k, v := range element {
		if k != childrenKey {
			out[k] = v
		}
	}
	return out
}

// Walk visits t and its descendants depth first, parents before children.
// depth is 0 for t. Walk stops at the first error fn returns.
func (t *Tree[N]) Walk(fn func(depth int, tree *Tree[N]) error) error {
	return t.walk(0, fn)
}

func (t *Tree[N]) walk(depth int, fn func(int, *Tree[N]) error) error {
	if err := fn(depth, t); err != nil {
		return err
	}
	for _, c := range t.children {
		if err := c.walk(depth+1, fn); err != nil {
			return err
		}
	}
	return nil
}

// Find returns the first sub-tree, in walk order, addressed by refid.
func (t *Tree[N]) Find(refid string) (*Tree[N], bool) {
	var found *Tree[N]
	_ = t.Walk(func(_ int, tree *Tree[N]) error {
		if found == nil && tree.hasNode && tree.addr.Refid == refid {
			found = tree
		}
		return nil
	})
	return found, found != nil
}

// Len counts the nodes below t, t itself excluded.
func (t *Tree[N]) Len() int {
	n := 0
	for _, c := range t.children {
		n += 1 + c.Len()
	}
	return n
}
