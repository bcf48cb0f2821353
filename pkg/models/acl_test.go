package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/echopf/echo.go/pkg/constants"
)

func TestACLWireRoundTrip(t *testing.T) {
	group := Address{ContainerID: "members1", ResourceType: "groups", Refid: "g1"}
	member := Address{ContainerID: "members1", ResourceType: "member", Refid: "m1"}

	acl := NewACL()
	acl.PutAll(ACLEntry{Get: true, List: true})
	acl.PutAllMembers("members1", ACLEntry{Get: true, List: true, Edit: true})
	acl.PutGroup(group, ACLEntry{Delete: true})
	acl.PutMember(member, ACLEntry{Get: true, Edit: true, Delete: true})

	wire := acl.Wire()
	assert.Equal(t, map[string]any{
		"*": map[string]any{"get": true, "list": true, "edit": false, "delete": false},
		"members1": map[string]any{
			"*":       map[string]any{"get": true, "list": true, "edit": true, "delete": false},
			"groups":  map[string]any{"g1": map[string]any{"get": false, "list": false, "edit": false, "delete": true}},
			"members": map[string]any{"m1": map[string]any{"get": true, "list": false, "edit": true, "delete": true}},
		},
	}, wire)

	parsed, err := ParseACL(wire)
	require.NoError(t, err)
	assert.Equal(t, acl.Wire(), parsed.Wire())
	assert.Equal(t, 4, parsed.Len())
	assert.Equal(t, []string{"members1"}, parsed.Containers())

	e, ok := parsed.Member(member)
	require.True(t, ok)
	assert.Equal(t, ACLEntry{Get: true, Edit: true, Delete: true}, e)
}

func TestACLDoesNotMergeOverlappingGrants(t *testing.T) {
	member := Address{ContainerID: "members1", Refid: "m1"}

	acl := NewACL()
	acl.PutAllMembers("members1", ACLEntry{Get: true})
	acl.PutMember(member, ACLEntry{Edit: true})

	all, _ := acl.AllMembers("members1")
	one, _ := acl.Member(member)
	assert.Equal(t, ACLEntry{Get: true}, all)
	assert.Equal(t, ACLEntry{Edit: true}, one)
}

func TestACLEmptyOmitsAll(t *testing.T) {
	assert.Empty(t, NewACL().Wire())
}

func TestParseACLMalformed(t *testing.T) {
	tests := map[string]any{
		"not an object":     []any{},
		"all not an object": map[string]any{"*": true},
		"container level":   map[string]any{"m": map[string]any{"groups": "g1"}},
		"entry level":       map[string]any{"m": map[string]any{"members": map[string]any{"m1": 1}}},
	}

	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseACL(in)
			assert.ErrorIs(t, err, constants.ErrMalformedField)
		})
	}
}

func TestACLResetAndClone(t *testing.T) {
	acl := NewACL()
	acl.PutAll(ACLEntry{Get: true})
	c := acl.Clone()

	acl.Reset()
	assert.Equal(t, 0, acl.Len())
	_, ok := c.All()
	assert.True(t, ok)
}
