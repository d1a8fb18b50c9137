package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/rocketscienceinc/timetravel-tictactoe/internal/apperror"
	"github.com/rocketscienceinc/timetravel-tictactoe/internal/config"
	"github.com/rocketscienceinc/timetravel-tictactoe/internal/pkg"
	"github.com/rocketscienceinc/timetravel-tictactoe/internal/repository"
	"github.com/rocketscienceinc/timetravel-tictactoe/internal/repository/storage"
	"github.com/rocketscienceinc/timetravel-tictactoe/internal/service"
	"github.com/rocketscienceinc/timetravel-tictactoe/internal/usecase"
	"github.com/rocketscienceinc/timetravel-tictactoe/transport/rest"
	"github.com/rocketscienceinc/timetravel-tictactoe/transport/websocket"
)

var ErrAddrNotFound = errors.New("redis host is empty")

// sessionStore is a repository plus the background work it needs while the app runs.
type sessionStore struct {
	repo  repository.SessionRepository
	run   func(ctx context.Context) error
	close func()
}

// RunApp - runs the application until ctx is done or SIGINT/SIGTERM arrives.
func RunApp(ctx context.Context, logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := newSessionStore(ctx, logger, conf)
	if err != nil {
		return err
	}
	defer store.close()

	events := service.NewEventService(logger)
	settings := usecase.Settings{
		BoardSize:      conf.BoardSize,
		SortDescending: conf.SortDescending(),
	}
	gameUseCase := usecase.NewGameUseCase(logger, settings, store.repo, events)

	router := rest.NewRouter(
		logger,
		rest.NewSessionHandlers(logger, gameUseCase),
		websocket.New(logger, gameUseCase, events),
	)

	errg, ctx := errgroup.WithContext(ctx)

	errg.Go(func() error { return events.Start(ctx) })
	errg.Go(func() error { return store.run(ctx) })
	errg.Go(func() error {
		log.Info("Starting HTTP server", "port", conf.HTTPPort, "store", conf.Session.Store, "board_size", conf.BoardSize)
		if err := rest.Start(ctx, conf.HTTPPort, router); err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}

		return ctx.Err()
	})

	if err = errg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	log.Info("Application context canceled, shutting down")

	return nil
}

func newSessionStore(ctx context.Context, logger *slog.Logger, conf *config.Config) (*sessionStore, error) {
	log := logger.With("component", "app")

	switch conf.Session.Store {
	case config.StoreMemory:
		repo := repository.NewMemorySessionRepository(logger, conf.Session.TTL)

		return &sessionStore{
			repo: repo,
			run: func(ctx context.Context) error {
				return repo.Start(ctx, conf.Session.SweepInterval)
			},
			close: func() {},
		}, nil

	case config.StoreRedis:
		if conf.Redis.Host == "" {
			return nil, ErrAddrNotFound
		}

		redisAddrString := conf.Redis.GetRedisAddr()

		redisStorage, err := storage.NewRedisStorage(ctx, redisAddrString)
		if err != nil {
			return nil, fmt.Errorf("could not connect to redis storage: %w", err)
		}

		instanceID := pkg.GenerateInstanceID()
		log.Info("Using redis session store", "addr", redisAddrString, "instance_id", instanceID)

		return &sessionStore{
			repo: repository.NewRedisSessionRepository(redisStorage.Connection, instanceID, conf.Session.TTL),
			run: func(ctx context.Context) error {
				<-ctx.Done()
				return ctx.Err()
			},
			close: func() {
				if err := redisStorage.Close(); err != nil {
					log.Error("could not close redis storage", "error", err)
				}
			},
		}, nil

	default:
		return nil, fmt.Errorf("%w: %q", apperror.ErrUnknownStoreType, conf.Session.Store)
	}
}
