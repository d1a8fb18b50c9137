package application

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/timetravel-tictactoe/internal/apperror"
	"github.com/rocketscienceinc/timetravel-tictactoe/internal/config"
)

func TestNewSessionStore(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("Memory store sweeps until the context ends", func(t *testing.T) {
		// Given: a memory store config
		conf := &config.Config{Session: config.Session{
			Store:         config.StoreMemory,
			TTL:           time.Hour,
			SweepInterval: time.Millisecond,
		}}

		// When: building and running it
		store, err := newSessionStore(context.Background(), logger, conf)
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		// Then: the sweeper stops with the context
		assert.ErrorIs(t, store.run(ctx), context.Canceled)
		assert.NotNil(t, store.repo)
		store.close()
	})

	t.Run("Redis store needs a host", func(t *testing.T) {
		// Given: a redis store without a host
		conf := &config.Config{
			Session: config.Session{Store: config.StoreRedis},
			Redis:   config.Redis{Port: "6379"},
		}

		// When: building it
		_, err := newSessionStore(context.Background(), logger, conf)

		// Then: it fails before dialing
		require.ErrorIs(t, err, ErrAddrNotFound)
	})

	t.Run("Unknown store type", func(t *testing.T) {
		conf := &config.Config{Session: config.Session{Store: "etcd"}}

		_, err := newSessionStore(context.Background(), logger, conf)

		require.ErrorIs(t, err, apperror.ErrUnknownStoreType)
	})
}

func TestRunApp(t *testing.T) {
	// Given: a memory backed app
	conf := &config.Config{
		HTTPPort:  "0",
		BoardSize: 4,
		Session: config.Session{
			Store:         config.StoreMemory,
			TTL:           time.Hour,
			SweepInterval: time.Minute,
		},
	}

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- RunApp(ctx, slog.New(slog.NewTextHandler(io.Discard, nil)), conf)
	}()

	// When: the context is cancelled
	time.Sleep(50 * time.Millisecond)
	cancel()

	// Then: the app shuts down cleanly
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
}
