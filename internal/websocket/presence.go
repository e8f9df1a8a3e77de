package websocket

import "sort"

// Identity is the user a connection authenticated as. It is fixed for the
// lifetime of the connection.
type Identity struct {
	UserID string
	Name   string
}

type PresenceEntry struct {
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
	SocketID string `json:"socketId"`
}

// RoomMembers is the membership of one room after a change.
type RoomMembers struct {
	RoomID  string
	Members []PresenceEntry
}

// Presence tracks which connections are in which rooms. It is not safe for
// concurrent use; the hub loop is its only caller.
type Presence struct {
	rooms     map[string][]PresenceEntry
	connRooms map[string]map[string]struct{}
}

func NewPresence() *Presence {
	return &Presence{
		rooms:     make(map[string][]PresenceEntry),
		connRooms: make(map[string]map[string]struct{}),
	}
}

func indexOf(entries []PresenceEntry, connID string) int {
	for i, e := range entries {
		if e.SocketID == connID {
			return i
		}
	}
	return -1
}

func copyEntries(entries []PresenceEntry) []PresenceEntry {
	out := make([]PresenceEntry, len(entries))
	copy(out, entries)
	return out
}

// Join adds connID to roomID. added is false when the connection was already
// present, in which case the registry is unchanged.
func (p *Presence) Join(roomID, connID string, id Identity) ([]PresenceEntry, bool) {
	entries := p.rooms[roomID]
	if indexOf(entries, connID) >= 0 {
		return copyEntries(entries), false
	}

	entries = append(entries, PresenceEntry{
		UserID:   id.UserID,
		UserName: id.Name,
		SocketID: connID,
	})
	p.rooms[roomID] = entries

	joined, ok := p.connRooms[connID]
	if !ok {
		joined = make(map[string]struct{})
		p.connRooms[connID] = joined
	}
	joined[roomID] = struct{}{}

	return copyEntries(entries), true
}

// Leave removes connID from roomID. removed is false when it was not present.
func (p *Presence) Leave(roomID, connID string) ([]PresenceEntry, bool) {
	entries, ok := p.rooms[roomID]
	if !ok {
		return []PresenceEntry{}, false
	}

	i := indexOf(entries, connID)
	if i < 0 {
		return copyEntries(entries), false
	}

	remaining := make([]PresenceEntry, 0, len(entries)-1)
	remaining = append(remaining, entries[:i]...)
	remaining = append(remaining, entries[i+1:]...)

	if len(remaining) == 0 {
		delete(p.rooms, roomID)
	} else {
		p.rooms[roomID] = remaining
	}

	if joined, ok := p.connRooms[connID]; ok {
		delete(joined, roomID)
		if len(joined) == 0 {
			delete(p.connRooms, connID)
		}
	}

	return copyEntries(remaining), true
}

// LeaveAll removes connID from every room it joined. Each affected room is
// reported exactly once, ordered by room id.
func (p *Presence) LeaveAll(connID string) []RoomMembers {
	roomIDs := p.RoomsOf(connID)
	if len(roomIDs) == 0 {
		return nil
	}

	affected := make([]RoomMembers, 0, len(roomIDs))
	for _, roomID := range roomIDs {
		members, removed := p.Leave(roomID, connID)
		if removed {
			affected = append(affected, RoomMembers{RoomID: roomID, Members: members})
		}
	}
	return affected
}

// Snapshot returns the current members of roomID in join order.
func (p *Presence) Snapshot(roomID string) []PresenceEntry {
	return copyEntries(p.rooms[roomID])
}

func (p *Presence) IsPresent(roomID, connID string) bool {
	return indexOf(p.rooms[roomID], connID) >= 0
}

// RoomsOf returns the rooms connID is present in, ordered by room id.
func (p *Presence) RoomsOf(connID string) []string {
	roomIDs := make([]string, 0, len(p.connRooms[connID]))
	for roomID := range p.connRooms[connID] {
		roomIDs = append(roomIDs, roomID)
	}
	sort.Strings(roomIDs)
	return roomIDs
}

// Prune drops room keys whose member set is empty and returns how many were
// dropped.
func (p *Presence) Prune() int {
	pruned := 0
	for roomID, entries := range p.rooms {
		if len(entries) == 0 {
			delete(p.rooms, roomID)
			pruned++
		}
	}
	for connID, joined := range p.connRooms {
		if len(joined) == 0 {
			delete(p.connRooms, connID)
		}
	}
	return pruned
}

func (p *Presence) RoomCount() int {
	return len(p.rooms)
}
