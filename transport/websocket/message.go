package websocket

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
)

const (
	actionJoinGame  = "joinGame"
	actionMakeMove  = "makeMove"
	actionSurrender = "surrender"
	actionLeaveGame = "leaveGame"
	actionError     = "error"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type RoomPayload struct {
	RoomID string `json:"roomId"`
}

type MovePayload struct {
	RoomID string             `json:"roomId"`
	Move   *entity.Coordinate `json:"move"`
}

type ErrorPayload struct {
	Action string `json:"action"`
	Error  string `json:"error"`
}

var errMissingMove = errors.New("move is required")

func encode(action string, payload any) ([]byte, error) {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	msg, err := json.Marshal(Message{Action: action, Payload: payloadJSON})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}

	return msg, nil
}

// errorText turns a request error into the message shown to the requester.
func errorText(err error) string {
	switch {
	case errors.Is(err, apperror.ErrRoomFull):
		return "room is full"
	case errors.Is(err, apperror.ErrNotYourTurn):
		return "not your turn"
	case errors.Is(err, apperror.ErrOutOfBounds):
		return "invalid move: outside the board"
	case errors.Is(err, apperror.ErrCellOccupied):
		return "invalid move: cell is occupied"
	case errors.Is(err, apperror.ErrInvalidMove):
		return "invalid move"
	case errors.Is(err, apperror.ErrSessionTerminated):
		return "game is already finished"
	case errors.Is(err, apperror.ErrGameNotStarted):
		return "game has not started"
	case errors.Is(err, apperror.ErrNotInRoom):
		return "you are not in this room"
	case errors.Is(err, apperror.ErrGameNotFound):
		return "room not found"
	case errors.Is(err, errMissingMove):
		return errMissingMove.Error()
	case errors.Is(err, errUnknownAction):
		return errUnknownAction.Error()
	case errors.Is(err, errBadPayload):
		return errBadPayload.Error()
	default:
		return "internal error"
	}
}
