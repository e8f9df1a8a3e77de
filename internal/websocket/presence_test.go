package websocket

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	ada = Identity{UserID: "u-ada", Name: "Ada"}
	bob = Identity{UserID: "u-bob", Name: "Bob"}
)

func TestPresence_JoinIsIdempotent(t *testing.T) {
	p := NewPresence()

	members, added := p.Join("r1", "c1", ada)
	assert.True(t, added)
	assert.Equal(t, []PresenceEntry{{UserID: "u-ada", UserName: "Ada", SocketID: "c1"}}, members)

	members, added = p.Join("r1", "c1", ada)
	assert.False(t, added)
	assert.Len(t, members, 1)
	assert.Equal(t, []string{"r1"}, p.RoomsOf("c1"))
}

func TestPresence_SameUserTwoConnections(t *testing.T) {
	p := NewPresence()
	p.Join("r1", "c1", ada)
	members, added := p.Join("r1", "c2", ada)

	assert.True(t, added)
	require.Len(t, members, 2)
	assert.Equal(t, "c1", members[0].SocketID)
	assert.Equal(t, "c2", members[1].SocketID)
}

func TestPresence_LeaveAbsentIsNoop(t *testing.T) {
	p := NewPresence()

	members, removed := p.Leave("r1", "c1")
	assert.False(t, removed)
	assert.Empty(t, members)
	assert.Equal(t, 0, p.RoomCount())

	p.Join("r1", "c2", bob)
	members, removed = p.Leave("r1", "c1")
	assert.False(t, removed)
	assert.Len(t, members, 1)
}

func TestPresence_LeaveDeletesEmptyRoom(t *testing.T) {
	p := NewPresence()
	p.Join("r1", "c1", ada)
	p.Join("r1", "c2", bob)

	members, removed := p.Leave("r1", "c1")
	assert.True(t, removed)
	assert.Equal(t, []PresenceEntry{{UserID: "u-bob", UserName: "Bob", SocketID: "c2"}}, members)

	_, removed = p.Leave("r1", "c2")
	assert.True(t, removed)
	assert.Equal(t, 0, p.RoomCount())
	assert.Empty(t, p.RoomsOf("c2"))
}

func TestPresence_LeaveAll(t *testing.T) {
	p := NewPresence()
	p.Join("r2", "c1", ada)
	p.Join("r1", "c1", ada)
	p.Join("r1", "c2", bob)
	p.Join("r3", "c2", bob)

	affected := p.LeaveAll("c1")
	require.Len(t, affected, 2)
	assert.Equal(t, "r1", affected[0].RoomID)
	assert.Equal(t, []PresenceEntry{{UserID: "u-bob", UserName: "Bob", SocketID: "c2"}}, affected[0].Members)
	assert.Equal(t, "r2", affected[1].RoomID)
	assert.Empty(t, affected[1].Members)

	for _, roomID := range []string{"r1", "r2", "r3"} {
		assert.False(t, p.IsPresent(roomID, "c1"), roomID)
	}
	assert.Equal(t, 2, p.RoomCount())

	assert.Empty(t, p.LeaveAll("c1"), "second leaveAll must report nothing")
}

func TestPresence_SnapshotIsACopy(t *testing.T) {
	p := NewPresence()
	p.Join("r1", "c1", ada)

	snap := p.Snapshot("r1")
	snap[0].UserName = "mutated"

	assert.Equal(t, "Ada", p.Snapshot("r1")[0].UserName)
	assert.NotNil(t, p.Snapshot("missing"))
}

func TestPresence_Prune(t *testing.T) {
	p := NewPresence()
	p.rooms["stale"] = []PresenceEntry{}
	p.connRooms["gone"] = map[string]struct{}{}
	p.Join("r1", "c1", ada)

	assert.Equal(t, 1, p.Prune())
	assert.Equal(t, 1, p.RoomCount())
	_, ok := p.connRooms["gone"]
	assert.False(t, ok)
}
