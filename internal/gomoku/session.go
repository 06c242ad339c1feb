package gomoku

import (
	"fmt"
	"sync"
	"time"

	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
)

type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusReady    Status = "ready"
	StatusActive   Status = "active"
	StatusPaused   Status = "paused"
	StatusFinished Status = "finished"
)

// State is a point-in-time copy of a session, safe to hand to other goroutines.
type State struct {
	RoomID      string          `json:"roomId"`
	Board       [][]entity.Slot `json:"board"`
	CurrentTurn entity.Slot     `json:"currentTurn"`
	PlayerCount int             `json:"playerCount"`
	Players     []entity.Slot   `json:"players"`
	Status      Status          `json:"status"`
	Result      *entity.Result  `json:"result,omitempty"`
}

// forfeitTimer is the cancellable token of a pending forfeit.
type forfeitTimer struct {
	seq   uint64
	timer *time.Timer
}

// Session is the authoritative game state of one room. All methods are safe
// for concurrent use and are serialized by the session's own lock.
type Session struct {
	ID     string
	RoomID string

	mu       sync.Mutex
	board    *entity.Board
	turn     entity.Slot
	occupied slotSet
	status   Status
	result   *entity.Result
	moves    []entity.Move

	grace    *forfeitTimer
	graceSeq uint64
	closed   bool
}

func NewSession(id, roomID string) *Session {
	return &Session{
		ID:     id,
		RoomID: roomID,
		board:  entity.NewBoard(),
		turn:   entity.SlotFirst,
		status: StatusWaiting,
	}
}

// Join assigns the next free slot: First on an empty session, otherwise the one not taken.
func (that *Session) Join() (entity.Slot, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	switch {
	case that.closed:
		return entity.SlotNone, apperror.ErrSessionClosed
	case that.status == StatusFinished:
		return entity.SlotNone, apperror.ErrSessionTerminated
	case that.occupied.len() >= 2:
		return entity.SlotNone, apperror.ErrRoomFull
	}

	slot := entity.SlotFirst
	if that.occupied.has(entity.SlotFirst) {
		slot = entity.SlotSecond
	}

	that.occupied.add(slot)

	if that.occupied.len() == 2 {
		that.cancelGrace()
		that.status = StatusActive
	} else {
		that.status = StatusReady
	}

	return slot, nil
}

// Move places the current player's stone. A non-nil result means the move finished the game.
func (that *Session) Move(c entity.Coordinate, as entity.Slot) (*entity.Result, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if err := that.confirmActive(); err != nil {
		return nil, err
	}

	if as != that.turn {
		return nil, apperror.ErrNotYourTurn
	}

	cell, err := that.board.Get(c)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperror.ErrInvalidMove, err)
	}

	if cell != entity.SlotNone {
		return nil, fmt.Errorf("%w: %w %s", apperror.ErrInvalidMove, apperror.ErrCellOccupied, c)
	}

	if err = that.board.Set(c, as); err != nil {
		return nil, fmt.Errorf("%w: %w", apperror.ErrInvalidMove, err)
	}
	that.moves = append(that.moves, entity.Move{Coordinate: c, Slot: as})

	if line, ok := DetectWin(that.board, c, as); ok {
		that.finish(entity.NewWinResult(as, line))
		return that.result, nil
	}

	if that.board.IsFull() {
		that.finish(entity.NewDrawResult())
		return that.result, nil
	}

	that.turn = as.Opponent()

	return nil, nil
}

// Surrender ends the game in favour of the other slot, whoever's turn it is.
func (that *Session) Surrender(by entity.Slot) (*entity.Result, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	switch {
	case that.closed:
		return nil, apperror.ErrSessionClosed
	case that.status == StatusFinished:
		return nil, apperror.ErrSessionTerminated
	case that.status == StatusWaiting:
		return nil, apperror.ErrGameNotStarted
	case !that.occupied.has(by):
		return nil, apperror.ErrNotInRoom
	}

	that.finish(entity.NewSurrenderResult(by))

	return that.result, nil
}

// Leave releases slot. When one player remains in a running game, that player
// wins by forfeit and the result is returned.
func (that *Session) Leave(slot entity.Slot) *entity.Result {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.leave(slot)
}

// LeaveWithGrace releases slot like Leave, except that a running game is
// paused for grace instead of being forfeited at once. onExpire receives the
// timer token to pass back to ExpireGrace.
func (that *Session) LeaveWithGrace(slot entity.Slot, grace time.Duration, onExpire func(token uint64)) (*entity.Result, bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if grace <= 0 || that.status != StatusActive || !that.occupied.has(slot) {
		return that.leave(slot), false
	}

	that.occupied.remove(slot)
	that.status = StatusPaused

	that.graceSeq++
	token := that.graceSeq
	that.grace = &forfeitTimer{
		seq:   token,
		timer: time.AfterFunc(grace, func() { onExpire(token) }),
	}

	return nil, true
}

// ExpireGrace forfeits a paused game if token is still the pending timer.
func (that *Session) ExpireGrace(token uint64) *entity.Result {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.grace == nil || that.grace.seq != token || that.status != StatusPaused {
		return nil
	}
	that.grace = nil

	remaining := that.occupied.only()
	if remaining == entity.SlotNone {
		return nil
	}

	that.finish(entity.NewForfeitResult(remaining))

	return that.result
}

// CloseIfEmpty marks an empty session as destroyed. A closed session rejects every call.
func (that *Session) CloseIfEmpty() bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.occupied.len() > 0 {
		return false
	}

	that.closed = true
	that.cancelGrace()

	return true
}

// Close destroys the session regardless of occupancy.
func (that *Session) Close() {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.closed = true
	that.cancelGrace()
}

func (that *Session) Snapshot() State {
	that.mu.Lock()
	defer that.mu.Unlock()

	return State{
		RoomID:      that.RoomID,
		Board:       that.board.Cells(),
		CurrentTurn: that.turn,
		PlayerCount: that.occupied.len(),
		Players:     that.occupied.slots(),
		Status:      that.status,
		Result:      that.result,
	}
}

func (that *Session) Status() Status {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.status
}

func (that *Session) PlayerCount() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.occupied.len()
}

func (that *Session) Moves() []entity.Move {
	that.mu.Lock()
	defer that.mu.Unlock()

	moves := make([]entity.Move, len(that.moves))
	copy(moves, that.moves)

	return moves
}

func (that *Session) IsClosed() bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.closed
}

func (that *Session) confirmActive() error {
	switch {
	case that.closed:
		return apperror.ErrSessionClosed
	case that.status == StatusFinished:
		return apperror.ErrSessionTerminated
	case that.status != StatusActive:
		return apperror.ErrGameNotStarted
	default:
		return nil
	}
}

func (that *Session) leave(slot entity.Slot) *entity.Result {
	if !that.occupied.has(slot) {
		return nil
	}

	that.occupied.remove(slot)

	if that.status == StatusFinished {
		return nil
	}

	switch that.occupied.len() {
	case 0:
		that.cancelGrace()
		that.status = StatusWaiting
	case 1:
		if that.status == StatusActive || that.status == StatusPaused {
			that.finish(entity.NewForfeitResult(that.occupied.only()))
			return that.result
		}
		that.status = StatusReady
	}

	return nil
}

func (that *Session) finish(result *entity.Result) {
	that.cancelGrace()
	that.result = result
	that.status = StatusFinished
	that.turn = entity.SlotNone
}

func (that *Session) cancelGrace() {
	if that.grace == nil {
		return
	}

	that.grace.timer.Stop()
	that.grace = nil
}
