package repository

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
	"github.com/rocketscienceinc/gomoku-backend/internal/gomoku"
)

type SessionStats struct {
	Rooms   int            `json:"rooms"`
	Players int            `json:"players"`
	ByState map[string]int `json:"by_state"`
}

type SessionRepository interface {
	GetOrCreate(roomID string) *gomoku.Session
	GetByID(roomID string) (*gomoku.Session, error)
	DeleteIfEmpty(roomID string, session *gomoku.Session) bool
	Delete(roomID string)
	Stats() SessionStats
	Close()
}

type memSession struct {
	mu       sync.Mutex
	sessions map[string]*gomoku.Session
}

// NewSessionRepository returns the in-process room registry. Sessions live only as long as
// the process.
func NewSessionRepository() SessionRepository {
	return &memSession{
		sessions: make(map[string]*gomoku.Session),
	}
}

func (that *memSession) GetOrCreate(roomID string) *gomoku.Session {
	that.mu.Lock()
	defer that.mu.Unlock()

	if session, ok := that.sessions[roomID]; ok && !session.IsClosed() {
		return session
	}

	session := gomoku.NewSession(uuid.NewString(), roomID)
	that.sessions[roomID] = session

	return session
}

func (that *memSession) GetByID(roomID string) (*gomoku.Session, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	session, ok := that.sessions[roomID]
	if !ok {
		return nil, apperror.ErrGameNotFound
	}

	return session, nil
}

// DeleteIfEmpty removes the room only while it still maps to session and nobody holds a slot.
func (that *memSession) DeleteIfEmpty(roomID string, session *gomoku.Session) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.sessions[roomID] != session {
		return false
	}

	if !session.CloseIfEmpty() {
		return false
	}

	delete(that.sessions, roomID)

	return true
}

func (that *memSession) Delete(roomID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	session, ok := that.sessions[roomID]
	if !ok {
		return
	}

	session.Close()
	delete(that.sessions, roomID)
}

func (that *memSession) Stats() SessionStats {
	that.mu.Lock()
	sessions := make([]*gomoku.Session, 0, len(that.sessions))
	for _, session := range that.sessions {
		sessions = append(sessions, session)
	}
	that.mu.Unlock()

	stats := SessionStats{
		Rooms:   len(sessions),
		ByState: make(map[string]int),
	}

	for _, session := range sessions {
		stats.Players += session.PlayerCount()
		stats.ByState[string(session.Status())]++
	}

	return stats
}

func (that *memSession) Close() {
	that.mu.Lock()
	defer that.mu.Unlock()

	for roomID, session := range that.sessions {
		session.Close()
		delete(that.sessions, roomID)
	}
}
