package echo

import (
	"context"

	"github.com/echopf/echo.go/pkg/future"
	"github.com/echopf/echo.go/pkg/models"
)

// DefaultDeviceType is the device type of installations made with
// NewInstallation.
const DefaultDeviceType = "android"

// Installation is the device a member receives push notifications on. The
// token comes from the platform's messaging service.
type Installation struct {
	DeviceType  string
	DeviceToken string
}

func NewInstallation(token string) *Installation {
	return &Installation{DeviceType: DefaultDeviceType, DeviceToken: token}
}

func (i *Installation) wire() map[string]any {
	return map[string]any{
		"device_type":  i.DeviceType,
		"device_token": i.DeviceToken,
	}
}

func installationFromWire(m map[string]any) (*Installation, bool) {
	deviceType, ok := m["device_type"].(string)
	if !ok {
		return nil, false
	}
	deviceToken, ok := m["device_token"].(string)
	if !ok {
		return nil, false
	}
	return &Installation{DeviceType: deviceType, DeviceToken: deviceToken}, true
}

// Member is a registered member of a members container.
type Member struct {
	object
}

// NewMember returns the member refid of container. An empty refid makes a
// new member, created on the first Push.
func NewMember(c *Client, container, refid string) *Member {
	m := &Member{}
	m.init(c, models.Address{ContainerID: container, ResourceType: ResourceMember, Refid: refid})
	return m
}

// Groups returns the groups m belongs to.
func (m *Member) Groups() []*Group {
	return m.state.groups
}

// SetGroups replaces the groups sent on the next push. Every group must
// already have a refid or the push fails.
func (m *Member) SetGroups(groups ...*Group) {
	m.state.groups = append([]*Group{}, groups...)
}

func (m *Member) Installation() *Installation {
	return m.state.installation
}

func (m *Member) SetInstallation(inst *Installation) {
	m.state.installation = inst
}

func (m *Member) FetchAsync(ctx context.Context) *future.Future[*Member] {
	return async(ctx, m, m.Fetch)
}

func (m *Member) PushAsync(ctx context.Context) *future.Future[*Member] {
	return async(ctx, m, m.Push)
}

func (m *Member) DeleteAsync(ctx context.Context) *future.Future[*Member] {
	return async(ctx, m, m.Delete)
}
