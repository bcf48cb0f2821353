package echo

import (
	"context"
	"sync"

	"github.com/echopf/echo.go/pkg/connection"
	"github.com/echopf/echo.go/pkg/future"
	"github.com/echopf/echo.go/pkg/models"
	"github.com/echopf/echo.go/pkg/treemap"
)

// treeMap fetches a category or group hierarchy and keeps it as a
// treemap.Tree. Fetch is the only way to change it.
type treeMap[N loadable] struct {
	mu     sync.Mutex
	client *Client
	tree   *treemap.Tree[N]
}

func (m *treeMap[N]) init(c *Client, addr models.Address, ref func(c *Client, container, refid string) N) {
	m.client = c
	m.tree = treemap.New(addr, func(addr models.Address, element map[string]any) (N, error) {
		node := ref(c, addr.ContainerID, addr.Refid)
		if err := node.copyData(element); err != nil {
			var zero N
			return zero, err
		}
		return node, nil
	})
}

// Fetch rebuilds the whole tree, or the sub-tree below the root refid, from
// the server.
func (m *treeMap[N]) Fetch(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	res, err := m.client.send(ctx, connection.Get(m.tree.Address().Path(), nil))
	if err != nil {
		return err
	}
	return m.tree.Rebuild(res)
}

// Tree returns the hierarchy built by the last Fetch.
func (m *treeMap[N]) Tree() *treemap.Tree[N] {
	return m.tree
}

// Node returns the root of a sub-tree. ok is false for a whole tree.
func (m *treeMap[N]) Node() (N, bool) {
	return m.tree.Node()
}

func (m *treeMap[N]) Children() []*treemap.Tree[N] {
	return m.tree.Children()
}

// CategoriesMap is the category hierarchy of a contents container.
type CategoriesMap struct {
	treeMap[*Category]
}

// NewCategoriesMap returns the whole category tree of container when root is
// empty, otherwise the sub-tree below the category root.
func NewCategoriesMap(c *Client, container, root string) *CategoriesMap {
	m := &CategoriesMap{}
	m.init(c, models.Address{ContainerID: container, ResourceType: ResourceCategory, Refid: root}, NewCategory)
	return m
}

func (m *CategoriesMap) FetchAsync(ctx context.Context) *future.Future[*CategoriesMap] {
	return async(ctx, m, m.Fetch)
}

// GroupsMap is the member group hierarchy of a members container.
type GroupsMap struct {
	treeMap[*Group]
}

// NewGroupsMap returns the whole group tree of container when root is empty,
// otherwise the sub-tree below the group root.
func NewGroupsMap(c *Client, container, root string) *GroupsMap {
	m := &GroupsMap{}
	m.init(c, models.Address{ContainerID: container, ResourceType: ResourceGroup, Refid: root}, NewGroup)
	return m
}

func (m *GroupsMap) FetchAsync(ctx context.Context) *future.Future[*GroupsMap] {
	return async(ctx, m, m.Fetch)
}
