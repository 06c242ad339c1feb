package websocket

import (
	"context"
	"encoding/json"
	"fmt"
)

func decode[T any](msg *Message) (T, error) {
	var payload T

	if len(msg.Payload) == 0 {
		return payload, errBadPayload
	}

	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return payload, fmt.Errorf("%w: %w", errBadPayload, err)
	}

	return payload, nil
}

func (that *Server) handleJoinGame(ctx context.Context, c *client, msg *Message) error {
	payload, err := decode[RoomPayload](msg)
	if err != nil {
		return err
	}

	if _, err = that.uGame.JoinGame(ctx, c.id, payload.RoomID); err != nil {
		return fmt.Errorf("failed to join game: %w", err)
	}

	return nil
}

func (that *Server) handleMakeMove(ctx context.Context, c *client, msg *Message) error {
	payload, err := decode[MovePayload](msg)
	if err != nil {
		return err
	}

	if payload.Move == nil {
		return errMissingMove
	}

	if err = that.uGame.MakeMove(ctx, c.id, payload.RoomID, *payload.Move); err != nil {
		return fmt.Errorf("failed to make move: %w", err)
	}

	return nil
}

func (that *Server) handleSurrender(ctx context.Context, c *client, msg *Message) error {
	payload, err := decode[RoomPayload](msg)
	if err != nil {
		return err
	}

	if err = that.uGame.Surrender(ctx, c.id, payload.RoomID); err != nil {
		return fmt.Errorf("failed to surrender: %w", err)
	}

	return nil
}

func (that *Server) handleLeaveGame(ctx context.Context, c *client, msg *Message) error {
	payload, err := decode[RoomPayload](msg)
	if err != nil {
		return err
	}

	if err = that.uGame.LeaveGame(ctx, c.id, payload.RoomID); err != nil {
		return fmt.Errorf("failed to leave game: %w", err)
	}

	return nil
}
