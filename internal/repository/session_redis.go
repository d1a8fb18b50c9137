package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rocketscienceinc/timetravel-tictactoe/internal/apperror"
	"github.com/rocketscienceinc/timetravel-tictactoe/internal/entity"
	"github.com/rocketscienceinc/timetravel-tictactoe/internal/tictactoe"
)

type dbSession struct {
	client     *redis.Client
	instanceID string
	ttl        time.Duration
}

// NewRedisSessionRepository keeps sessions under keys scoped to instanceID, so a new
// process never reads the sessions of a previous one. Every save refreshes the ttl.
func NewRedisSessionRepository(client *redis.Client, instanceID string, ttl time.Duration) SessionRepository {
	return &dbSession{
		client:     client,
		instanceID: instanceID,
		ttl:        ttl,
	}
}

func (that *dbSession) key(id string) string {
	return "session:" + that.instanceID + ":" + id
}

func (that *dbSession) CreateOrUpdate(ctx context.Context, session *entity.Session) error {
	sessionJSON, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("could not marshal session: %w", err)
	}

	err = that.client.Set(ctx, that.key(session.ID), sessionJSON, that.ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to set session: %w", err)
	}

	return nil
}

func (that *dbSession) GetByID(ctx context.Context, id string) (*entity.Session, error) {
	response, err := that.client.Get(ctx, that.key(id)).Result()

	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", apperror.ErrSessionNotFound, id)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get session by id: %w", err)
	}

	var existingSession entity.Session
	if err = json.Unmarshal([]byte(response), &existingSession); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	if err = tictactoe.ValidateState(existingSession.State); err != nil {
		return nil, fmt.Errorf("session %s: %w", id, err)
	}

	return &existingSession, nil
}

func (that *dbSession) DeleteByID(ctx context.Context, id string) error {
	deleted, err := that.client.Del(ctx, that.key(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete session by id: %w", err)
	}

	if deleted == 0 {
		return fmt.Errorf("%w: %s", apperror.ErrSessionNotFound, id)
	}

	return nil
}
