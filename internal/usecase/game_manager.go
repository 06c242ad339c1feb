package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
	"github.com/rocketscienceinc/gomoku-backend/internal/gomoku"
	"github.com/rocketscienceinc/gomoku-backend/internal/repository"
)

const (
	EventGameState   = "gameState"
	EventJoinSuccess = "joinSuccess"
	EventGameResult  = "gameResult"
)

const archiveTimeout = 5 * time.Second

// Notifier delivers an outbound event to one connection. It must not block.
type Notifier interface {
	Notify(connID, action string, payload any)
}

type sessionRepo interface {
	GetOrCreate(roomID string) *gomoku.Session
	GetByID(roomID string) (*gomoku.Session, error)
	DeleteIfEmpty(roomID string, session *gomoku.Session) bool
	Stats() repository.SessionStats
	Close()
}

type playerRepo interface {
	Assign(connID, roomID string, slot entity.Slot)
	SlotOf(connID, roomID string) (entity.Slot, bool)
	RoomsOf(connID string) []string
	MembersOf(roomID string) []string
	Release(connID, roomID string)
}

// ResultArchive stores finished games.
type ResultArchive interface {
	Save(ctx context.Context, record *entity.GameRecord) error
	ListByRoom(ctx context.Context, roomID string) ([]*entity.GameRecord, error)
}

type JoinPayload struct {
	RoomID string      `json:"roomId"`
	Slot   entity.Slot `json:"slot"`
}

type ResultPayload struct {
	RoomID string `json:"roomId"`
	*entity.Result
}

type GameManager struct {
	logger   *slog.Logger
	notifier Notifier

	sessions sessionRepo
	players  playerRepo
	results  ResultArchive

	forfeitGrace time.Duration
}

// NewGameManager wires the room dispatcher. results may be nil, in which case finished games are not archived.
func NewGameManager(
	logger *slog.Logger,
	sessions sessionRepo,
	players playerRepo,
	results ResultArchive,
	forfeitGrace time.Duration,
) *GameManager {
	return &GameManager{
		logger:       logger.With("component", "game_manager"),
		sessions:     sessions,
		players:      players,
		results:      results,
		forfeitGrace: forfeitGrace,
	}
}

// SetNotifier attaches the outbound channel. The transport is built after the manager, so this is set late.
func (that *GameManager) SetNotifier(notifier Notifier) {
	that.notifier = notifier
}

// JoinGame gives connID a slot in roomID, creating the room on first join.
func (that *GameManager) JoinGame(ctx context.Context, connID, roomID string) (entity.Slot, error) {
	log := that.logger.With("method", "JoinGame", "connID", connID, "roomID", roomID)

	if roomID == "" {
		return entity.SlotNone, apperror.ErrGameNotFound
	}

	if slot, ok := that.players.SlotOf(connID, roomID); ok {
		session, err := that.sessions.GetByID(roomID)
		if err != nil {
			return entity.SlotNone, fmt.Errorf("failed to get session: %w", err)
		}

		log.Debug("connection already holds a slot", "slot", slot)
		that.announceJoin(connID, session, slot)

		return slot, nil
	}

	session, slot, err := that.join(roomID)
	if err != nil {
		return entity.SlotNone, fmt.Errorf("failed to join room: %w", err)
	}

	that.players.Assign(connID, roomID, slot)
	log.Info("player joined", "slot", slot, "status", session.Status())

	that.announceJoin(connID, session, slot)

	return slot, nil
}

// MakeMove places connID's stone. Finished games are archived and announced with gameResult.
func (that *GameManager) MakeMove(ctx context.Context, connID, roomID string, move entity.Coordinate) error {
	log := that.logger.With("method", "MakeMove", "connID", connID, "roomID", roomID)

	session, slot, err := that.seat(connID, roomID)
	if err != nil {
		return err
	}

	result, err := session.Move(move, slot)
	if err != nil {
		return fmt.Errorf("failed to make move %s: %w", move, err)
	}

	log.Debug("move accepted", "slot", slot, "move", move.String())

	that.broadcast(roomID, EventGameState, session.Snapshot())

	if result != nil {
		log.Info("game finished", "reason", result.Reason)
		that.finish(ctx, session, result)
	}

	return nil
}

// Surrender ends the game in favour of the opponent of connID.
func (that *GameManager) Surrender(ctx context.Context, connID, roomID string) error {
	log := that.logger.With("method", "Surrender", "connID", connID, "roomID", roomID)

	session, slot, err := that.seat(connID, roomID)
	if err != nil {
		return err
	}

	result, err := session.Surrender(slot)
	if err != nil {
		return fmt.Errorf("failed to surrender: %w", err)
	}

	log.Info("player surrendered", "slot", slot)
	that.finish(ctx, session, result)

	return nil
}

// LeaveGame releases connID's slot in roomID at once. A running game is forfeited.
func (that *GameManager) LeaveGame(ctx context.Context, connID, roomID string) error {
	return that.leave(ctx, connID, roomID, false)
}

// Disconnect releases every slot the connection holds. With a forfeit grace configured,
// running games are paused instead of forfeited.
func (that *GameManager) Disconnect(ctx context.Context, connID string) {
	log := that.logger.With("method", "Disconnect", "connID", connID)

	for _, roomID := range that.players.RoomsOf(connID) {
		if err := that.leave(ctx, connID, roomID, true); err != nil {
			log.Warn("failed to leave room", "roomID", roomID, "error", err)
		}
	}
}

func (that *GameManager) Stats() repository.SessionStats {
	return that.sessions.Stats()
}

// RoomResults lists archived games of a room. ErrNotFound when archiving is disabled.
func (that *GameManager) RoomResults(ctx context.Context, roomID string) ([]*entity.GameRecord, error) {
	if that.results == nil {
		return nil, apperror.ErrNotFound
	}

	records, err := that.results.ListByRoom(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}

	return records, nil
}

// Shutdown destroys every room and cancels pending forfeit timers.
func (that *GameManager) Shutdown() {
	that.sessions.Close()
}

func (that *GameManager) join(roomID string) (*gomoku.Session, entity.Slot, error) {
	for {
		session := that.sessions.GetOrCreate(roomID)

		slot, err := session.Join()
		if errors.Is(err, apperror.ErrSessionClosed) {
			// destroyed between lookup and join; the next GetOrCreate builds a fresh one
			continue
		}

		if err != nil {
			return nil, entity.SlotNone, err
		}

		return session, slot, nil
	}
}

func (that *GameManager) seat(connID, roomID string) (*gomoku.Session, entity.Slot, error) {
	slot, ok := that.players.SlotOf(connID, roomID)
	if !ok {
		return nil, entity.SlotNone, fmt.Errorf("room %s: %w", roomID, apperror.ErrNotInRoom)
	}

	session, err := that.sessions.GetByID(roomID)
	if err != nil {
		return nil, entity.SlotNone, fmt.Errorf("failed to get session: %w", err)
	}

	return session, slot, nil
}

func (that *GameManager) leave(ctx context.Context, connID, roomID string, graceful bool) error {
	log := that.logger.With("method", "leave", "connID", connID, "roomID", roomID)

	slot, ok := that.players.SlotOf(connID, roomID)
	if !ok {
		return fmt.Errorf("room %s: %w", roomID, apperror.ErrNotInRoom)
	}

	session, err := that.sessions.GetByID(roomID)
	if err != nil {
		that.players.Release(connID, roomID)
		return fmt.Errorf("failed to get session: %w", err)
	}

	var (
		result    *entity.Result
		suspended bool
	)

	if graceful && that.forfeitGrace > 0 {
		result, suspended = session.LeaveWithGrace(slot, that.forfeitGrace, func(token uint64) {
			that.expireGrace(session, token)
		})
	} else {
		result = session.Leave(slot)
	}

	that.players.Release(connID, roomID)

	if that.sessions.DeleteIfEmpty(roomID, session) {
		log.Info("room destroyed")
		return nil
	}

	log.Info("player left", "slot", slot, "paused", suspended)

	if result != nil {
		that.finish(ctx, session, result)
		return nil
	}

	that.broadcast(roomID, EventGameState, session.Snapshot())

	return nil
}

func (that *GameManager) expireGrace(session *gomoku.Session, token uint64) {
	log := that.logger.With("method", "expireGrace", "roomID", session.RoomID)

	result := session.ExpireGrace(token)
	if result == nil {
		return
	}

	log.Info("forfeit after grace period")

	ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
	defer cancel()

	that.broadcast(session.RoomID, EventGameState, session.Snapshot())
	that.finish(ctx, session, result)
}

func (that *GameManager) finish(ctx context.Context, session *gomoku.Session, result *entity.Result) {
	that.broadcast(session.RoomID, EventGameResult, ResultPayload{RoomID: session.RoomID, Result: result})
	that.archive(ctx, session, result)
}

func (that *GameManager) archive(ctx context.Context, session *gomoku.Session, result *entity.Result) {
	if that.results == nil {
		return
	}

	log := that.logger.With("method", "archive", "roomID", session.RoomID)

	record := &entity.GameRecord{
		ID:         uuid.NewString(),
		RoomID:     session.RoomID,
		Result:     result,
		Moves:      session.Moves(),
		FinishedAt: time.Now().UTC(),
	}

	if err := that.results.Save(ctx, record); err != nil {
		log.Error("failed to archive result", "error", err)
		return
	}

	log.Debug("result archived", "recordID", record.ID)
}

func (that *GameManager) announceJoin(connID string, session *gomoku.Session, slot entity.Slot) {
	that.notify(connID, EventJoinSuccess, JoinPayload{RoomID: session.RoomID, Slot: slot})
	that.broadcast(session.RoomID, EventGameState, session.Snapshot())
}

func (that *GameManager) broadcast(roomID, action string, payload any) {
	for _, connID := range that.players.MembersOf(roomID) {
		that.notify(connID, action, payload)
	}
}

func (that *GameManager) notify(connID, action string, payload any) {
	if that.notifier == nil {
		return
	}

	that.notifier.Notify(connID, action, payload)
}
