package echo

import (
	"context"
	"fmt"

	"github.com/echopf/echo.go/pkg/connection"
	"github.com/echopf/echo.go/pkg/future"
	"github.com/echopf/echo.go/pkg/models"
)

const paginateKey = "paginate"

// Query narrows a find. The zero value asks for the server defaults.
type Query struct {
	Page  int
	Limit int
	Order string
	// Asc sorts ascending when true, descending when false, and leaves the
	// server default when nil.
	Asc *bool
	// Params holds resource-specific filters and is sent as is.
	Params map[string]any
}

func (q *Query) params() map[string]any {
	out := map[string]any{}
	if q == nil {
		return out
	}
	for k, v := range q.Params {
		out[k] = v
	}
	if q.Page > 0 {
		out["page"] = q.Page
	}
	if q.Limit > 0 {
		out["limit"] = q.Limit
	}
	if q.Order != "" {
		out["order"] = q.Order
	}
	if q.Asc != nil {
		out["asc"] = *q.Asc
	}
	return out
}

// Pagination describes the page a List holds. PrevPage and NextPage are zero
// on the first and last page.
type Pagination struct {
	Page      int
	PrevPage  int
	NextPage  int
	PageCount int
	Count     int
	Limit     int
	Order     string
	Asc       bool
}

// List is one page of a find.
type List[T any] struct {
	Items      []T
	Pagination Pagination
}

func (l *List[T]) Len() int {
	return len(l.Items)
}

// FindEntries lists the entries of a blog container.
func FindEntries(ctx context.Context, c *Client, container string, q *Query) (*List[*Entry], error) {
	return find(ctx, c, container, "archive", "entries", q, func(refid string) *Entry {
		return NewEntry(c, container, refid)
	})
}

func FindEntriesAsync(ctx context.Context, c *Client, container string, q *Query) *future.Future[*List[*Entry]] {
	return future.Go(func() (*List[*Entry], error) {
		return FindEntries(ctx, c, container, q)
	})
}

// FindRecords lists the records of a database container.
func FindRecords(ctx context.Context, c *Client, container string, q *Query) (*List[*Record], error) {
	return find(ctx, c, container, "archive", "records", q, func(refid string) *Record {
		return NewRecord(c, container, refid)
	})
}

func FindRecordsAsync(ctx context.Context, c *Client, container string, q *Query) *future.Future[*List[*Record]] {
	return future.Go(func() (*List[*Record], error) {
		return FindRecords(ctx, c, container, q)
	})
}

// FindMembers lists the members of a members container.
func FindMembers(ctx context.Context, c *Client, container string, q *Query) (*List[*Member], error) {
	return find(ctx, c, container, "list", "members", q, func(refid string) *Member {
		return NewMember(c, container, refid)
	})
}

func FindMembersAsync(ctx context.Context, c *Client, container string, q *Query) *future.Future[*List[*Member]] {
	return future.Go(func() (*List[*Member], error) {
		return FindMembers(ctx, c, container, q)
	})
}

type loadable interface {
	copyData(wire map[string]any) error
}

// find sends GET <container>/<listPath> and builds one T per item of the
// itemsKey array. Items without a refid are skipped.
func find[T loadable](
	ctx context.Context,
	c *Client,
	container, listPath, itemsKey string,
	q *Query,
	ref func(refid string) T,
) (*List[T], error) {
	res, err := c.send(ctx, connection.Get(container+"/"+listPath, q.params()))
	if err != nil {
		return nil, err
	}

	items, ok := res[itemsKey].([]any)
	if !ok {
		return nil, &models.MalformedFieldError{
			Field:  itemsKey,
			Reason: fmt.Sprintf("expected array, got %T", res[itemsKey]),
		}
	}

	list := &List[T]{Items: make([]T, 0, len(items))}
	if list.Pagination, err = parsePagination(res[paginateKey]); err != nil {
		return nil, err
	}

	for i, v := range items {
		item, ok := v.(map[string]any)
		if !ok {
			return nil, &models.MalformedFieldError{
				Field:  fmt.Sprintf("%s[%d]", itemsKey, i),
				Reason: fmt.Sprintf("expected object, got %T", v),
			}
		}
		refid, _ := item["refid"].(string)
		if refid == "" {
			continue
		}
		obj := ref(refid)
		if err := obj.copyData(item); err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", itemsKey, i, err)
		}
		list.Items = append(list.Items, obj)
	}
	return list, nil
}

// parsePagination reads the paginate object of a find response. A missing
// object yields the zero Pagination.
func parsePagination(v any) (Pagination, error) {
	var p Pagination
	if v == nil {
		return p, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return p, &models.MalformedFieldError{Field: paginateKey, Reason: fmt.Sprintf("expected object, got %T", v)}
	}
	doc, err := models.Inflate(models.Address{}, m)
	if err != nil {
		return p, &models.MalformedFieldError{Field: paginateKey, Reason: "invalid object", Err: err}
	}

	required := []struct {
		key string
		dst *int
	}{
		{"page", &p.Page},
		{"pageCount", &p.PageCount},
		{"count", &p.Count},
		{"limit", &p.Limit},
	}
	for _, f := range required {
		if *f.dst, err = doc.GetInt(f.key); err != nil {
			return p, &models.MalformedFieldError{Field: paginateKey + "." + f.key, Reason: "expected number", Err: err}
		}
	}
	if p.Order, err = doc.GetString("order"); err != nil {
		return p, &models.MalformedFieldError{Field: paginateKey + ".order", Reason: "expected string", Err: err}
	}
	if p.Asc, err = doc.GetBool("asc"); err != nil {
		return p, &models.MalformedFieldError{Field: paginateKey + ".asc", Reason: "expected boolean", Err: err}
	}

	p.PrevPage = doc.OptInt("prevPage", 0)
	p.NextPage = doc.OptInt("nextPage", 0)
	return p, nil
}
