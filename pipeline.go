package echo

import (
	"fmt"

	"github.com/echopf/echo.go/pkg/constants"
	"github.com/echopf/echo.go/pkg/models"
)

// Resource types as they appear in request paths.
const (
	ResourceEntry            = "entry"
	ResourceRecord           = "record"
	ResourceCategory         = "categories"
	ResourceGroup            = "groups"
	ResourceMember           = "member"
	ResourcePushNotification = "push_notification"
	ResourceMailmag          = "mailmag"
)

const (
	categoriesKey   = "categories"
	groupsKey       = "groups"
	childrenKey     = "children"
	parentRefidKey  = "parent_refid"
	targetKey       = "target"
	installationKey = "installation"
)

// state holds the typed values a resource keeps outside its Document.
// Steps work on a copy which is committed once the whole operation
// succeeded.
type state struct {
	categories   []*Category
	groups       []*Group
	newParent    refider
	target       *Target
	installation *Installation
}

type refider interface {
	Refid() string
}

// step converts the resource-specific parts of a wire object. inflate runs
// on a response before the Document sees it and removes the keys it
// consumed. deflate runs on the deflated Document before it is sent.
type step interface {
	inflate(o *object, st *state, wire map[string]any) error
	deflate(o *object, st *state, wire map[string]any) error
}

var pipelines = map[string][]step{
	ResourceEntry:            {categoriesStep{}},
	ResourceRecord:           {categoriesStep{}},
	ResourceCategory:         {treeNodeStep{key: categoriesKey}},
	ResourceGroup:            {treeNodeStep{key: groupsKey}},
	ResourceMember:           {memberGroupsStep{}, installationStep{}},
	ResourcePushNotification: {targetStep{}},
	ResourceMailmag:          {targetStep{}},
}

// treeNodeStep accepts either a bare node or the tree form
// {"<key>": [node, ...]}, where the first element is the node. Children are
// never kept on a node; they belong to the tree maps.
type treeNodeStep struct {
	key string
}

func (s treeNodeStep) inflate(_ *object, _ *state, wire map[string]any) error {
	if v, ok := wire[s.key]; ok {
		arr, _ := v.([]any)
		if len(arr) == 0 {
			return &models.MalformedFieldError{Field: s.key, Reason: "expected a non-empty array"}
		}
		node, ok := arr[0].(map[string]any)
		if !ok {
			return &models.MalformedFieldError{Field: s.key + "[0]", Reason: fmt.Sprintf("expected object, got %T", arr[0])}
		}
		clear(wire)
		for k, e := range node {
			wire[k] = e
		}
	}
	delete(wire, childrenKey)
	return nil
}

func (s treeNodeStep) deflate(_ *object, st *state, wire map[string]any) error {
	if st.newParent == nil {
		return nil
	}
	if refid := st.newParent.Refid(); refid != "" {
		wire[parentRefidKey] = refid
		st.newParent = nil
	}
	return nil
}

// categoriesStep turns the "categories" array of an entry or a record into
// Category objects and back into a list of refids. Elements that are not
// objects or have no refid are skipped.
type categoriesStep struct{}

func (categoriesStep) inflate(o *object, st *state, wire map[string]any) error {
	arr, ok := wire[categoriesKey].([]any)
	if !ok {
		return nil
	}

	cats := make([]*Category, 0, len(arr))
	for i, v := range arr {
		elem, ok := v.(map[string]any)
		if !ok {
			continue
		}
		refid, _ := elem["refid"].(string)
		if refid == "" {
			continue
		}
		cat := NewCategory(o.client, o.Address().ContainerID, refid)
		if err := cat.copyData(elem); err != nil {
			return fmt.Errorf("%s[%d]: %w", categoriesKey, i, err)
		}
		cats = append(cats, cat)
	}

	st.categories = cats
	delete(wire, categoriesKey)
	return nil
}

func (categoriesStep) deflate(_ *object, st *state, wire map[string]any) error {
	if st.categories == nil {
		return nil
	}
	refids := make([]any, 0, len(st.categories))
	for _, cat := range st.categories {
		if refid := cat.Refid(); refid != "" {
			refids = append(refids, refid)
		}
	}
	wire[categoriesKey] = refids
	return nil
}

// memberGroupsStep is the strict counterpart of categoriesStep for the
// groups a member belongs to: every element has to be an object with a
// refid.
type memberGroupsStep struct{}

func (memberGroupsStep) inflate(o *object, st *state, wire map[string]any) error {
	v, ok := wire[groupsKey]
	if !ok || v == nil {
		st.groups = nil
		return nil
	}
	arr, ok := v.([]any)
	if !ok {
		return &models.MalformedFieldError{Field: groupsKey, Reason: fmt.Sprintf("expected array, got %T", v)}
	}

	groups := make([]*Group, 0, len(arr))
	for i, e := range arr {
		field := fmt.Sprintf("%s[%d]", groupsKey, i)
		elem, ok := e.(map[string]any)
		if !ok {
			return &models.MalformedFieldError{Field: field, Reason: fmt.Sprintf("expected object, got %T", e)}
		}
		refid, _ := elem["refid"].(string)
		if refid == "" {
			return &models.MalformedFieldError{Field: field, Reason: "missing refid"}
		}
		group := NewGroup(o.client, o.Address().ContainerID, refid)
		if err := group.copyData(elem); err != nil {
			return fmt.Errorf("%s: %w", field, err)
		}
		groups = append(groups, group)
	}

	st.groups = groups
	delete(wire, groupsKey)
	return nil
}

func (memberGroupsStep) deflate(_ *object, st *state, wire map[string]any) error {
	if st.groups == nil {
		return nil
	}
	refids := make([]any, len(st.groups))
	for i, group := range st.groups {
		refid := group.Refid()
		if refid == "" {
			return fmt.Errorf("%s[%d]: %w", groupsKey, i, constants.ErrNoRefid)
		}
		refids[i] = refid
	}
	wire[groupsKey] = refids
	return nil
}

// targetStep decodes the distribution target of push notifications and
// mail magazines.
type targetStep struct{}

func (targetStep) inflate(o *object, st *state, wire map[string]any) error {
	m, ok := wire[targetKey].(map[string]any)
	if !ok {
		return nil
	}
	st.target = targetFromWire(o.client, o.Address().ContainerID, m)
	delete(wire, targetKey)
	return nil
}

func (targetStep) deflate(_ *object, st *state, wire map[string]any) error {
	if st.target != nil {
		wire[targetKey] = st.target.wire()
	}
	return nil
}

// installationStep carries the device a member receives push
// notifications on.
type installationStep struct{}

func (installationStep) inflate(_ *object, st *state, wire map[string]any) error {
	m, ok := wire[installationKey].(map[string]any)
	if !ok {
		return nil
	}
	if inst, ok := installationFromWire(m); ok {
		st.installation = inst
		delete(wire, installationKey)
	}
	return nil
}

func (installationStep) deflate(_ *object, st *state, wire map[string]any) error {
	if st.installation != nil {
		wire[installationKey] = st.installation.wire()
	}
	return nil
}
