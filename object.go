package echo

import (
	"context"
	"maps"
	"sync"

	"github.com/echopf/echo.go/pkg/connection"
	"github.com/echopf/echo.go/pkg/constants"
	"github.com/echopf/echo.go/pkg/future"
	"github.com/echopf/echo.go/pkg/models"
)

// object is the core shared by every resource kind. Its fields are read and
// written through the embedded Document; Fetch, Push and Delete are
// serialized by mu.
type object struct {
	*models.Document

	mu     sync.Mutex
	client *Client
	state  state
}

func (o *object) init(c *Client, addr models.Address) {
	o.Document = models.NewDocument(addr)
	o.client = c
}

// Refid returns the server-assigned id, or "" for an object that has not
// been pushed yet.
func (o *object) Refid() string {
	return o.Address().Refid
}

func (o *object) steps() []step {
	return pipelines[o.Address().ResourceType]
}

// Fetch replaces every field with the server's copy.
func (o *object) Fetch(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	addr := o.Address()
	if addr.IsLocal() {
		return constants.ErrNoRefid
	}
	res, err := o.client.send(ctx, connection.Get(addr.Path(), nil))
	if err != nil {
		return err
	}
	return o.copyData(res)
}

// Push creates the object on the server when it has no refid, or updates it
// otherwise. The server's response replaces the local fields.
func (o *object) Push(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	pendingACL := o.PendingACL()
	st := o.state
	body, multipart, err := o.buildRequest(&st)
	if err != nil {
		o.SetACL(pendingACL)
		return err
	}

	addr := o.Address()
	var req *connection.Request
	if addr.IsLocal() {
		req = connection.Post(addr.Path(), body, multipart)
	} else {
		req = connection.Put(addr.Path(), body, multipart)
	}

	res, err := o.client.send(ctx, req)
	if err != nil {
		o.SetACL(pendingACL)
		return err
	}
	o.state = st

	if refid, _ := res["refid"].(string); refid != "" {
		o.SetAddress(addr.WithRefid(refid))
	}
	return o.copyData(res)
}

// Delete removes the object from the server. On success the object becomes
// local again and holds the fields of the deleted copy.
func (o *object) Delete(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	addr := o.Address()
	if addr.IsLocal() {
		return constants.ErrNoRefid
	}
	res, err := o.client.send(ctx, connection.Delete(addr.Path()))
	if err != nil {
		return err
	}

	o.SetAddress(addr.WithRefid(""))
	return o.copyData(res)
}

// copyData runs the resource pipeline over wire and replaces the Document
// with what is left. Nothing changes on error.
func (o *object) copyData(wire map[string]any) error {
	work := maps.Clone(wire)
	if work == nil {
		work = map[string]any{}
	}
	st := state{newParent: o.state.newParent}

	for _, s := range o.steps() {
		if err := s.inflate(o, &st, work); err != nil {
			return err
		}
	}
	if err := o.Replace(work); err != nil {
		return err
	}
	o.state = st
	return nil
}

func (o *object) buildRequest(st *state) (body map[string]any, multipart bool, err error) {
	body = o.Deflate()
	multipart = o.Multipart()
	for _, s := range o.steps() {
		if err := s.deflate(o, st, body); err != nil {
			return nil, false, err
		}
	}
	return body, multipart, nil
}

func async[T any](ctx context.Context, self T, op func(context.Context) error) *future.Future[T] {
	return future.Go(func() (T, error) {
		return self, op(ctx)
	})
}
