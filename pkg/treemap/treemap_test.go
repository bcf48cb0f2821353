package treemap

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/echopf/echo.go/pkg/constants"
	"github.com/echopf/echo.go/pkg/models"
)

var categories = models.Address{ContainerID: "blog1", ResourceType: "categories"}

func inflate(addr models.Address, element map[string]any) (*models.Document, error) {
	return models.Inflate(addr, element)
}

func node(refid string, children ...any) map[string]any {
	m := map[string]any{"refid": refid, "name": "n-" + refid}
	if children != nil {
		m["children"] = children
	}
	return m
}

func refids(trees []*Tree[*models.Document]) []string {
	out := make([]string, 0, len(trees))
	for _, t := range trees {
		out = append(out, t.Address().Refid)
	}
	return out
}

func TestBuildChildrenKeepsOrder(t *testing.T) {
	tree := New(categories, inflate)
	children, err := tree.BuildChildren([]any{node("a"), node("b"), node("c")})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, refids(children))
	for _, c := range children {
		assert.True(t, c.Rooted())
		assert.Empty(t, c.Children())
	}
}

func TestBuildChildrenSkipsMalformedLeaves(t *testing.T) {
	tree := New(categories, inflate)
	children, err := tree.BuildChildren([]any{node(""), node("x"), "junk", map[string]any{"name": "no refid"}})
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, "x", children[0].Address().Refid)
}

func TestBuildChildrenKeepsDuplicates(t *testing.T) {
	tree := New(categories, inflate)
	children, err := tree.BuildChildren([]any{node("a"), node("a")})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "a"}, refids(children))
}

func TestBuildChildrenRecursive(t *testing.T) {
	input := []any{
		node("a",
			node("a1", node("a1x"), node("a1y")),
			node("a2"),
		),
		node("b", node("b1", node("b1x"))),
	}

	tree := New(categories, inflate)
	require.NoError(t, tree.Rebuild(map[string]any{"categories": input}))

	type visit struct {
		depth int
		refid string
	}
	var got []visit
	require.NoError(t, tree.Walk(func(depth int, tr *Tree[*models.Document]) error {
		got = append(got, visit{depth, tr.Address().Refid})
		return nil
	}))

	assert.Equal(t, []visit{
		{0, ""},
		{1, "a"}, {2, "a1"}, {3, "a1x"}, {3, "a1y"}, {2, "a2"},
		{1, "b"}, {2, "b1"}, {3, "b1x"},
	}, got)
	assert.Equal(t, 8, tree.Len())

	a1, ok := tree.Find("a1")
	require.True(t, ok)
	doc, ok := a1.Node()
	require.True(t, ok)
	assert.Equal(t, "n-a1", doc.OptString("name", ""))
	assert.False(t, doc.Has("children"))
}

func TestRebuildWholeTreeRequiresItems(t *testing.T) {
	tree := New(categories, inflate)
	require.NoError(t, tree.Rebuild(map[string]any{"categories": []any{node("a")}}))

	err := tree.Rebuild(map[string]any{"groups": []any{}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, constants.ErrMalformedField))
	assert.Len(t, tree.Children(), 1, "failed rebuild keeps the previous tree")

	_, ok := tree.Node()
	assert.False(t, ok)
}

func TestRebuildRooted(t *testing.T) {
	tree := New(categories.WithRefid("a"), inflate)
	require.NoError(t, tree.Rebuild(map[string]any{"categories": []any{node("a", node("a1"), node("a2"))}}))

	doc, ok := tree.Node()
	require.True(t, ok)
	assert.Equal(t, "a", doc.Address().Refid)
	assert.Equal(t, []string{"a1", "a2"}, refids(tree.Children()))
}

func TestRebuildRootedMissingRootIsLenient(t *testing.T) {
	for name, items := range map[string][]any{
		"empty":         {},
		"no refid":      {node("")},
		"not an object": {"a"},
	} {
		t.Run(name, func(t *testing.T) {
			tree := New(categories.WithRefid("a"), inflate)
			require.NoError(t, tree.Rebuild(map[string]any{"categories": []any{node("a", node("a1"))}}))

			require.NoError(t, tree.Rebuild(map[string]any{"categories": items}))
			_, ok := tree.Node()
			assert.False(t, ok)
			assert.Empty(t, tree.Children())
		})
	}
}

func TestRebuildPropagatesBuilderErrors(t *testing.T) {
	tree := New(categories, inflate)
	err := tree.Rebuild(map[string]any{"categories": []any{
		map[string]any{"refid": "a", "created": "not a date"},
	}})
	assert.ErrorIs(t, err, constants.ErrMalformedField)
}
