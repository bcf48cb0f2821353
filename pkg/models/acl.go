package models

import (
	"fmt"
	"sort"
)

const (
	aclAll     = "*"
	aclGroups  = "groups"
	aclMembers = "members"
)

// ACLEntry is the permission record attached to one ACL key.
type ACLEntry struct {
	Get    bool `json:"get"`
	List   bool `json:"list"`
	Edit   bool `json:"edit"`
	Delete bool `json:"delete"`
}

func (e ACLEntry) wire() map[string]any {
	return map[string]any{
		"get":    e.Get,
		"list":   e.List,
		"edit":   e.Edit,
		"delete": e.Delete,
	}
}

func (e ACLEntry) String() string {
	return fmt.Sprintf("get=%t list=%t edit=%t delete=%t", e.Get, e.List, e.Edit, e.Delete)
}

type aclKey struct {
	container string
	refid     string
}

// ACL mirrors the access-control object the server stores on a document.
// Entries are kept exactly as given: overlapping grants are not merged and
// their precedence is decided by the server.
type ACL struct {
	all        *ACLEntry
	allMembers map[string]ACLEntry
	groups     map[aclKey]ACLEntry
	members    map[aclKey]ACLEntry
}

func NewACL() *ACL {
	return &ACL{
		allMembers: map[string]ACLEntry{},
		groups:     map[aclKey]ACLEntry{},
		members:    map[aclKey]ACLEntry{},
	}
}

// All returns the entry applying to every visitor.
func (a *ACL) All() (ACLEntry, bool) {
	if a.all == nil {
		return ACLEntry{}, false
	}
	return *a.all, true
}

func (a *ACL) PutAll(e ACLEntry) { a.all = &e }
func (a *ACL) ResetAll()         { a.all = nil }

// AllMembers returns the entry applying to every logged-in member of the
// member container.
func (a *ACL) AllMembers(container string) (ACLEntry, bool) {
	e, ok := a.allMembers[container]
	return e, ok
}

func (a *ACL) PutAllMembers(container string, e ACLEntry) { a.allMembers[container] = e }
func (a *ACL) ResetAllMembers(container string)           { delete(a.allMembers, container) }

// Group returns the entry for the members group at addr.
func (a *ACL) Group(addr Address) (ACLEntry, bool) {
	e, ok := a.groups[aclKey{addr.ContainerID, addr.Refid}]
	return e, ok
}

func (a *ACL) PutGroup(addr Address, e ACLEntry) {
	a.groups[aclKey{addr.ContainerID, addr.Refid}] = e
}

func (a *ACL) ResetGroup(addr Address) {
	delete(a.groups, aclKey{addr.ContainerID, addr.Refid})
}

// Member returns the entry for the member at addr.
func (a *ACL) Member(addr Address) (ACLEntry, bool) {
	e, ok := a.members[aclKey{addr.ContainerID, addr.Refid}]
	return e, ok
}

func (a *ACL) PutMember(addr Address, e ACLEntry) {
	a.members[aclKey{addr.ContainerID, addr.Refid}] = e
}

func (a *ACL) ResetMember(addr Address) {
	delete(a.members, aclKey{addr.ContainerID, addr.Refid})
}

// Reset removes every entry.
func (a *ACL) Reset() {
	*a = *NewACL()
}

// Len counts the entries held.
func (a *ACL) Len() int {
	n := len(a.allMembers) + len(a.groups) + len(a.members)
	if a.all != nil {
		n++
	}
	return n
}

// Clone returns a deep copy of a.
func (a *ACL) Clone() *ACL {
	c := NewACL()
	if a.all != nil {
		e := *a.all
		c.all = &e
	}
	for k, v := range a.allMembers {
		c.allMembers[k] = v
	}
	for k, v := range a.groups {
		c.groups[k] = v
	}
	for k, v := range a.members {
		c.members[k] = v
	}
	return c
}

// Wire returns the ACL in the form the server accepts:
//
//	{"*": entry, "<container>": {"*": entry, "groups": {refid: entry}, "members": {refid: entry}}}
func (a *ACL) Wire() map[string]any {
	out := map[string]any{}
	if a.all != nil {
		out[aclAll] = a.all.wire()
	}

	container := func(id string) map[string]any {
		c, ok := out[id].(map[string]any)
		if !ok {
			c = map[string]any{}
			out[id] = c
		}
		return c
	}
	sub := func(id, kind string) map[string]any {
		c := container(id)
		s, ok := c[kind].(map[string]any)
		if !ok {
			s = map[string]any{}
			c[kind] = s
		}
		return s
	}

	for id, e := range a.allMembers {
		container(id)[aclAll] = e.wire()
	}
	for k, e := range a.groups {
		sub(k.container, aclGroups)[k.refid] = e.wire()
	}
	for k, e := range a.members {
		sub(k.container, aclMembers)[k.refid] = e.wire()
	}
	return out
}

// Containers lists the member containers referenced by a, sorted.
func (a *ACL) Containers() []string {
	seen := map[string]struct{}{}
	for id := range a.allMembers {
		seen[id] = struct{}{}
	}
	for k := range a.groups {
		seen[k.container] = struct{}{}
	}
	for k := range a.members {
		seen[k.container] = struct{}{}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ParseACL reads the wire form produced by Wire. Any level that is not an
// object is reported as a *MalformedFieldError.
func ParseACL(v any) (*ACL, error) {
	root, ok := v.(map[string]any)
	if !ok {
		return nil, malformed("acl", fmt.Sprintf("expected object, got %T", v), nil)
	}

	acl := NewACL()
	for key, raw := range root {
		obj, ok := raw.(map[string]any)
		if !ok {
			return nil, malformed("acl."+key, fmt.Sprintf("expected object, got %T", raw), nil)
		}
		if key == aclAll {
			acl.PutAll(entryFromWire(obj))
			continue
		}

		for kind, raw := range obj {
			sub, ok := raw.(map[string]any)
			if !ok {
				return nil, malformed("acl."+key+"."+kind, fmt.Sprintf("expected object, got %T", raw), nil)
			}
			if kind == aclAll {
				acl.PutAllMembers(key, entryFromWire(sub))
				continue
			}
			for refid, raw := range sub {
				e, ok := raw.(map[string]any)
				if !ok {
					return nil, malformed("acl."+key+"."+kind+"."+refid, fmt.Sprintf("expected object, got %T", raw), nil)
				}
				k := aclKey{key, refid}
				switch kind {
				case aclGroups:
					acl.groups[k] = entryFromWire(e)
				case aclMembers:
					acl.members[k] = entryFromWire(e)
				}
			}
		}
	}
	return acl, nil
}

func entryFromWire(m map[string]any) ACLEntry {
	flag := func(k string) bool {
		b, _ := m[k].(bool)
		return b
	}
	return ACLEntry{Get: flag("get"), List: flag("list"), Edit: flag("edit"), Delete: flag("delete")}
}
