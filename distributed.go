package echo

import (
	"context"
	"time"

	"github.com/echopf/echo.go/pkg/future"
	"github.com/echopf/echo.go/pkg/models"
)

const (
	distributedKey = "distributed"
	wildcard       = "*"
)

// Target selects the members a push notification or a mail magazine is
// distributed to.
type Target struct {
	// AllMembers targets every member and overrides Members.
	AllMembers bool
	Members    []*Member
	// RootGroup targets every group and overrides Groups.
	RootGroup bool
	Groups    []*Group
}

// wire encodes t as {"members": "*"|[refids], "groups": "*"|[refids]}.
// Members and groups without a refid are left out.
func (t *Target) wire() map[string]any {
	out := map[string]any{}
	switch {
	case t.AllMembers:
		out["members"] = wildcard
	case t.Members != nil:
		out["members"] = refids(t.Members)
	}
	switch {
	case t.RootGroup:
		out["groups"] = wildcard
	case t.Groups != nil:
		out["groups"] = refids(t.Groups)
	}
	return out
}

func refids[T refider](objs []T) []any {
	out := make([]any, 0, len(objs))
	for _, o := range objs {
		if refid := o.Refid(); refid != "" {
			out = append(out, refid)
		}
	}
	return out
}

func targetFromWire(c *Client, container string, m map[string]any) *Target {
	t := &Target{}
	t.AllMembers, t.Members = targetList(m["members"], func(refid string) *Member {
		return NewMember(c, container, refid)
	})
	t.RootGroup, t.Groups = targetList(m["groups"], func(refid string) *Group {
		return NewGroup(c, container, refid)
	})
	return t
}

// targetList decodes one side of a target. A "*" anywhere means all.
func targetList[T any](v any, ref func(string) T) (all bool, list []T) {
	switch v := v.(type) {
	case string:
		return v == wildcard, nil
	case []any:
		list = make([]T, 0, len(v))
		for _, e := range v {
			refid, _ := e.(string)
			switch refid {
			case "":
				continue
			case wildcard:
				return true, nil
			}
			list = append(list, ref(refid))
		}
		return false, list
	default:
		return false, nil
	}
}

// distributed is the part shared by push notifications and mail magazines.
type distributed struct {
	object
}

// Target returns the current target, or nil when none was received or set.
func (d *distributed) Target() *Target {
	return d.state.target
}

// ResetTarget clears the target. The next push sends an empty one.
func (d *distributed) ResetTarget() {
	d.state.target = &Target{}
}

// TargetAllMembers replaces the target with every member.
func (d *distributed) TargetAllMembers() {
	d.state.target = &Target{AllMembers: true}
}

func (d *distributed) TargetRootGroup() {
	d.target().RootGroup = true
}

func (d *distributed) TargetMember(m *Member) {
	t := d.target()
	t.Members = append(t.Members, m)
}

func (d *distributed) TargetGroup(g *Group) {
	t := d.target()
	t.Groups = append(t.Groups, g)
}

func (d *distributed) target() *Target {
	if d.state.target == nil {
		d.state.target = &Target{}
	}
	return d.state.target
}

// Distributed returns the scheduled distribution date.
func (d *distributed) Distributed() (models.DateValue, error) {
	return d.GetDate(distributedKey)
}

func (d *distributed) SetDistributed(t time.Time) {
	d.Set(distributedKey, t)
}

// PushNotification is a push notification sent to members' devices.
type PushNotification struct {
	distributed
}

// NewPushNotification returns the notification refid of container. An empty
// refid makes a new notification, created on the first Push.
func NewPushNotification(c *Client, container, refid string) *PushNotification {
	p := &PushNotification{}
	p.init(c, models.Address{ContainerID: container, ResourceType: ResourcePushNotification, Refid: refid})
	return p
}

func (p *PushNotification) FetchAsync(ctx context.Context) *future.Future[*PushNotification] {
	return async(ctx, p, p.Fetch)
}

func (p *PushNotification) PushAsync(ctx context.Context) *future.Future[*PushNotification] {
	return async(ctx, p, p.Push)
}

func (p *PushNotification) DeleteAsync(ctx context.Context) *future.Future[*PushNotification] {
	return async(ctx, p, p.Delete)
}

// Mailmag is a mail magazine sent to members.
type Mailmag struct {
	distributed
}

// NewMailmag returns the mail magazine refid of container. An empty refid
// makes a new one, created on the first Push.
func NewMailmag(c *Client, container, refid string) *Mailmag {
	m := &Mailmag{}
	m.init(c, models.Address{ContainerID: container, ResourceType: ResourceMailmag, Refid: refid})
	return m
}

func (m *Mailmag) FetchAsync(ctx context.Context) *future.Future[*Mailmag] {
	return async(ctx, m, m.Fetch)
}

func (m *Mailmag) PushAsync(ctx context.Context) *future.Future[*Mailmag] {
	return async(ctx, m, m.Push)
}

func (m *Mailmag) DeleteAsync(ctx context.Context) *future.Future[*Mailmag] {
	return async(ctx, m, m.Delete)
}
