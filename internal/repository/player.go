package repository

import (
	"sort"
	"sync"

	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
)

type PlayerRepository interface {
	Assign(connID, roomID string, slot entity.Slot)
	SlotOf(connID, roomID string) (entity.Slot, bool)
	RoomsOf(connID string) []string
	MembersOf(roomID string) []string
	Release(connID, roomID string)
}

type memPlayer struct {
	mu      sync.RWMutex
	byConn  map[string]map[string]entity.Slot
	members map[string]map[string]struct{}
}

// NewPlayerRepository returns the connection to slot directory. A connection holds at most one
// slot per room and may sit in several rooms.
func NewPlayerRepository() PlayerRepository {
	return &memPlayer{
		byConn:  make(map[string]map[string]entity.Slot),
		members: make(map[string]map[string]struct{}),
	}
}

func (that *memPlayer) Assign(connID, roomID string, slot entity.Slot) {
	that.mu.Lock()
	defer that.mu.Unlock()

	rooms, ok := that.byConn[connID]
	if !ok {
		rooms = make(map[string]entity.Slot)
		that.byConn[connID] = rooms
	}
	rooms[roomID] = slot

	conns, ok := that.members[roomID]
	if !ok {
		conns = make(map[string]struct{})
		that.members[roomID] = conns
	}
	conns[connID] = struct{}{}
}

func (that *memPlayer) SlotOf(connID, roomID string) (entity.Slot, bool) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	slot, ok := that.byConn[connID][roomID]

	return slot, ok
}

func (that *memPlayer) RoomsOf(connID string) []string {
	that.mu.RLock()
	defer that.mu.RUnlock()

	rooms := make([]string, 0, len(that.byConn[connID]))
	for roomID := range that.byConn[connID] {
		rooms = append(rooms, roomID)
	}
	sort.Strings(rooms)

	return rooms
}

func (that *memPlayer) MembersOf(roomID string) []string {
	that.mu.RLock()
	defer that.mu.RUnlock()

	conns := make([]string, 0, len(that.members[roomID]))
	for connID := range that.members[roomID] {
		conns = append(conns, connID)
	}
	sort.Strings(conns)

	return conns
}

func (that *memPlayer) Release(connID, roomID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if rooms, ok := that.byConn[connID]; ok {
		delete(rooms, roomID)
		if len(rooms) == 0 {
			delete(that.byConn, connID)
		}
	}

	if conns, ok := that.members[roomID]; ok {
		delete(conns, connID)
		if len(conns) == 0 {
			delete(that.members, roomID)
		}
	}
}
