package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rocketscienceinc/timetravel-tictactoe/internal/apperror"
	"github.com/rocketscienceinc/timetravel-tictactoe/internal/entity"
)

// MemorySessions keeps sessions in process memory and drops the ones idle longer than ttl.
type MemorySessions struct {
	logger   *slog.Logger
	sessions *xsync.MapOf[string, entity.Session]
	ttl      time.Duration
}

func NewMemorySessionRepository(logger *slog.Logger, ttl time.Duration) *MemorySessions {
	return &MemorySessions{
		logger:   logger.With("component", "memory-sessions"),
		sessions: xsync.NewMapOf[string, entity.Session](),
		ttl:      ttl,
	}
}

func (that *MemorySessions) CreateOrUpdate(_ context.Context, session *entity.Session) error {
	that.sessions.Store(session.ID, *session)
	return nil
}

func (that *MemorySessions) GetByID(_ context.Context, id string) (*entity.Session, error) {
	session, ok := that.sessions.Load(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperror.ErrSessionNotFound, id)
	}

	return &session, nil
}

func (that *MemorySessions) DeleteByID(_ context.Context, id string) error {
	if _, ok := that.sessions.LoadAndDelete(id); !ok {
		return fmt.Errorf("%w: %s", apperror.ErrSessionNotFound, id)
	}

	return nil
}

func (that *MemorySessions) Len() int {
	return that.sessions.Size()
}

// Sweep deletes sessions not updated since now-ttl and returns how many were dropped.
func (that *MemorySessions) Sweep(now time.Time) int {
	swept := 0

	that.sessions.Range(func(id string, session entity.Session) bool {
		if session.UpdatedAt.Add(that.ttl).Before(now) {
			that.logger.Debug(
				"session expired, deleting",
				"session_id", id,
				"updated_at", session.UpdatedAt)
			that.sessions.Delete(id)
			swept++
		}
		return true
	})

	return swept
}

// Start sweeps expired sessions every interval until ctx is done.
func (that *MemorySessions) Start(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case now := <-ticker.C:
			if swept := that.Sweep(now); swept > 0 {
				that.logger.Info("expired sessions swept", "count", swept)
			}
		}
	}
}
