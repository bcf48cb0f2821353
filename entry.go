package echo

import (
	"context"
	"time"

	"github.com/echopf/echo.go/pkg/future"
	"github.com/echopf/echo.go/pkg/models"
)

const publishedKey = "published"

// contents is the part shared by blog entries and database records: both
// can be filed under categories.
type contents struct {
	object
}

// Categories returns the categories received with the last response or set
// with SetCategories.
func (c *contents) Categories() []*Category {
	return c.state.categories
}

// SetCategories replaces the categories sent on the next push. Categories
// without a refid are left out of the request.
func (c *contents) SetCategories(cats ...*Category) {
	c.state.categories = append([]*Category{}, cats...)
}

// ResetCategories stops sending categories, leaving the server's list as is.
func (c *contents) ResetCategories() {
	c.state.categories = nil
}

// Entry is a blog entry.
type Entry struct {
	contents
}

// NewEntry returns the entry refid of the blog container. An empty refid
// makes a new entry, created on the first Push.
func NewEntry(c *Client, container, refid string) *Entry {
	e := &Entry{}
	e.init(c, models.Address{ContainerID: container, ResourceType: ResourceEntry, Refid: refid})
	return e
}

func (e *Entry) Published() (models.DateValue, error) {
	return e.GetDate(publishedKey)
}

func (e *Entry) SetPublished(t time.Time) {
	e.Set(publishedKey, t)
}

func (e *Entry) FetchAsync(ctx context.Context) *future.Future[*Entry] {
	return async(ctx, e, e.Fetch)
}

func (e *Entry) PushAsync(ctx context.Context) *future.Future[*Entry] {
	return async(ctx, e, e.Push)
}

func (e *Entry) DeleteAsync(ctx context.Context) *future.Future[*Entry] {
	return async(ctx, e, e.Delete)
}

// Record is a row of a database container.
type Record struct {
	contents
}

// NewRecord returns the record refid of the database container. An empty
// refid makes a new record, created on the first Push.
func NewRecord(c *Client, container, refid string) *Record {
	r := &Record{}
	r.init(c, models.Address{ContainerID: container, ResourceType: ResourceRecord, Refid: refid})
	return r
}

func (r *Record) FetchAsync(ctx context.Context) *future.Future[*Record] {
	return async(ctx, r, r.Fetch)
}

func (r *Record) PushAsync(ctx context.Context) *future.Future[*Record] {
	return async(ctx, r, r.Push)
}

func (r *Record) DeleteAsync(ctx context.Context) *future.Future[*Record] {
	return async(ctx, r, r.Delete)
}
