package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
)

const roomResultsLimit = 50

type ResultRepository interface {
	Save(ctx context.Context, record *entity.GameRecord) error
	GetByID(ctx context.Context, id string) (*entity.GameRecord, error)
	ListByRoom(ctx context.Context, roomID string) ([]*entity.GameRecord, error)
}

type dbResult struct {
	client *redis.Client
	ttl    time.Duration
}

// NewResultRepository archives finished games in redis. A zero ttl keeps records forever.
func NewResultRepository(client *redis.Client, ttl time.Duration) ResultRepository {
	return &dbResult{
		client: client,
		ttl:    ttl,
	}
}

func resultKey(id string) string {
	return "result:" + id
}

func roomResultsKey(roomID string) string {
	return "room:" + roomID + ":results"
}

func (that *dbResult) Save(ctx context.Context, record *entity.GameRecord) error {
	recordJSON, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	roomKey := roomResultsKey(record.RoomID)

	_, err = that.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, resultKey(record.ID), recordJSON, that.ttl)
		pipe.LPush(ctx, roomKey, record.ID)
		pipe.LTrim(ctx, roomKey, 0, roomResultsLimit-1)
		if that.ttl > 0 {
			pipe.Expire(ctx, roomKey, that.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save result: %w", err)
	}

	return nil
}

func (that *dbResult) GetByID(ctx context.Context, id string) (*entity.GameRecord, error) {
	response, err := that.client.Get(ctx, resultKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, apperror.ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get result by id: %w", err)
	}

	var record entity.GameRecord
	if err = json.Unmarshal([]byte(response), &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal result: %w", err)
	}

	return &record, nil
}

// ListByRoom returns the most recent archived games of a room, newest first. Expired records are skipped.
func (that *dbResult) ListByRoom(ctx context.Context, roomID string) ([]*entity.GameRecord, error) {
	ids, err := that.client.LRange(ctx, roomResultsKey(roomID), 0, roomResultsLimit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list room results: %w", err)
	}

	records := make([]*entity.GameRecord, 0, len(ids))
	for _, id := range ids {
		record, err := that.GetByID(ctx, id)
		if errors.Is(err, apperror.ErrNotFound) {
			continue
		}

		if err != nil {
			return nil, err
		}

		records = append(records, record)
	}

	return records, nil
}
