package echo

import (
	"context"

	"github.com/echopf/echo.go/pkg/future"
	"github.com/echopf/echo.go/pkg/models"
)

// Category is a node of the category tree of a contents container.
type Category struct {
	object
}

// NewCategory returns the category refid of container. An empty refid makes
// a new category, created on the first Push.
func NewCategory(c *Client, container, refid string) *Category {
	cat := &Category{}
	cat.init(c, models.Address{ContainerID: container, ResourceType: ResourceCategory, Refid: refid})
	return cat
}

// NewParent returns the parent staged by SetNewParent, or nil.
func (c *Category) NewParent() *Category {
	parent, _ := c.state.newParent.(*Category)
	return parent
}

// SetNewParent moves c below parent on the next push. The move is sent once,
// as soon as parent has a refid.
func (c *Category) SetNewParent(parent *Category) {
	if parent == nil {
		c.state.newParent = nil
		return
	}
	c.state.newParent = parent
}

func (c *Category) FetchAsync(ctx context.Context) *future.Future[*Category] {
	return async(ctx, c, c.Fetch)
}

func (c *Category) PushAsync(ctx context.Context) *future.Future[*Category] {
	return async(ctx, c, c.Push)
}

func (c *Category) DeleteAsync(ctx context.Context) *future.Future[*Category] {
	return async(ctx, c, c.Delete)
}

// Group is a node of the member group tree.
type Group struct {
	object
}

// NewGroup returns the group refid of container. An empty refid makes a new
// group, created on the first Push.
func NewGroup(c *Client, container, refid string) *Group {
	g := &Group{}
	g.init(c, models.Address{ContainerID: container, ResourceType: ResourceGroup, Refid: refid})
	return g
}

// NewParent returns the parent staged by SetNewParent, or nil.
func (g *Group) NewParent() *Group {
	parent, _ := g.state.newParent.(*Group)
	return parent
}

// SetNewParent moves g below parent on the next push.
func (g *Group) SetNewParent(parent *Group) {
	if parent == nil {
		g.state.newParent = nil
		return
	}
	g.state.newParent = parent
}

func (g *Group) FetchAsync(ctx context.Context) *future.Future[*Group] {
	return async(ctx, g, g.Fetch)
}

func (g *Group) PushAsync(ctx context.Context) *future.Future[*Group] {
	return async(ctx, g, g.Push)
}

func (g *Group) DeleteAsync(ctx context.Context) *future.Future[*Group] {
	return async(ctx, g, g.Delete)
}
