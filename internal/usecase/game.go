package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/rocketscienceinc/timetravel-tictactoe/internal/apperror"
	"github.com/rocketscienceinc/timetravel-tictactoe/internal/entity"
	"github.com/rocketscienceinc/timetravel-tictactoe/internal/pkg"
	"github.com/rocketscienceinc/timetravel-tictactoe/internal/tictactoe"
)

type GameUseCase interface {
	NewSession(ctx context.Context) (string, *entity.View, error)
	GetView(ctx context.Context, sessionID string) (*entity.View, error)
	EndSession(ctx context.Context, sessionID string) error

	Play(ctx context.Context, sessionID string, cell int) (*entity.View, error)
	JumpTo(ctx context.Context, sessionID string, move int) (*entity.View, error)
	ToggleSortOrder(ctx context.Context, sessionID string) (*entity.View, error)
}

type sessionRepo interface {
	CreateOrUpdate(ctx context.Context, session *entity.Session) error
	GetByID(ctx context.Context, id string) (*entity.Session, error)
	DeleteByID(ctx context.Context, id string) error
}

type eventPublisher interface {
	Publish(ctx context.Context, event *entity.SessionEvent)
}

// Settings are the defaults every new session starts with.
type Settings struct {
	BoardSize      int
	SortDescending bool
}

// command runs against the controller of a loaded session and reports whether the state changed.
type command func(controller *tictactoe.GameController) (bool, error)

// sessionLock serialises commands of one session. refs counts holders and waiters;
// the entry leaves the map when the last one unlocks.
type sessionLock struct {
	mu   sync.Mutex
	refs int
}

type gameUseCase struct {
	logger *slog.Logger

	settings    Settings
	sessionRepo sessionRepo
	publisher   eventPublisher

	locks *xsync.MapOf[string, *sessionLock]
}

func NewGameUseCase(logger *slog.Logger, settings Settings, sessionRepo sessionRepo, publisher eventPublisher) GameUseCase {
	return &gameUseCase{
		logger:      logger.With("component", "game"),
		settings:    settings,
		sessionRepo: sessionRepo,
		publisher:   publisher,
		locks:       xsync.NewMapOf[string, *sessionLock](),
	}
}

func (that *gameUseCase) NewSession(ctx context.Context) (string, *entity.View, error) {
	state, err := entity.NewGameState(that.settings.BoardSize, that.settings.SortDescending)
	if err != nil {
		return "", nil, fmt.Errorf("failed to create game state: %w", err)
	}

	now := time.Now()
	session := &entity.Session{
		ID:        pkg.GenerateSessionID(),
		State:     state,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err = that.sessionRepo.CreateOrUpdate(ctx, session); err != nil {
		return "", nil, fmt.Errorf("failed to save session: %w", err)
	}

	that.logger.Info("session created", "session_id", session.ID, "board_size", that.settings.BoardSize)

	view := tictactoe.BuildView(state)

	return session.ID, &view, nil
}

func (that *gameUseCase) GetView(ctx context.Context, sessionID string) (*entity.View, error) {
	session, err := that.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	view := tictactoe.BuildView(session.State)

	return &view, nil
}

func (that *gameUseCase) EndSession(ctx context.Context, sessionID string) error {
	unlock := that.lock(sessionID)
	defer unlock()

	if err := that.sessionRepo.DeleteByID(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	// nil view tells subscribers the session is gone
	that.publisher.Publish(ctx, &entity.SessionEvent{SessionID: sessionID})

	that.logger.Info("session ended", "session_id", sessionID)

	return nil
}

// Play applies a move. Occupied cells and decided games are ignored: the unchanged view comes back without an error.
func (that *gameUseCase) Play(ctx context.Context, sessionID string, cell int) (*entity.View, error) {
	log := that.logger.With("method", "Play", "session_id", sessionID, "cell", cell)

	return that.apply(ctx, sessionID, "play", func(controller *tictactoe.GameController) (bool, error) {
		err := controller.Play(cell)

		switch {
		case errors.Is(err, apperror.ErrCellOccupied), errors.Is(err, apperror.ErrGameFinished):
			log.Debug("move ignored", "reason", err)
			return false, nil
		case err != nil:
			return false, err
		}

		return true, nil
	})
}

func (that *gameUseCase) JumpTo(ctx context.Context, sessionID string, move int) (*entity.View, error) {
	return that.apply(ctx, sessionID, "jump", func(controller *tictactoe.GameController) (bool, error) {
		previous := controller.State().CurrentMove
		if err := controller.JumpTo(move); err != nil {
			return false, err
		}

		return controller.State().CurrentMove != previous, nil
	})
}

func (that *gameUseCase) ToggleSortOrder(ctx context.Context, sessionID string) (*entity.View, error) {
	return that.apply(ctx, sessionID, "toggle sort order", func(controller *tictactoe.GameController) (bool, error) {
		controller.ToggleSortOrder()
		return true, nil
	})
}

// apply runs cmd on the stored state under the session lock, saves and publishes changes.
func (that *gameUseCase) apply(ctx context.Context, sessionID, name string, cmd command) (*entity.View, error) {
	unlock := that.lock(sessionID)
	defer unlock()

	session, err := that.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	controller := tictactoe.NewGameController(session.State)

	changed, err := cmd(controller)
	if err != nil {
		return nil, fmt.Errorf("failed to %s: %w", name, err)
	}

	view := controller.View()
	if !changed {
		return &view, nil
	}

	session.State = controller.State()
	session.UpdatedAt = time.Now()
	if err = that.sessionRepo.CreateOrUpdate(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	that.publisher.Publish(ctx, &entity.SessionEvent{SessionID: sessionID, View: &view})

	return &view, nil
}

// lock takes the session mutex. The returned func releases it and drops the map
// entry once no other caller holds or waits for it.
func (that *gameUseCase) lock(sessionID string) func() {
	entry, _ := that.locks.Compute(sessionID, func(entry *sessionLock, loaded bool) (*sessionLock, bool) {
		if !loaded {
			entry = &sessionLock{}
		}
		entry.refs++

		return entry, false
	})

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		that.locks.Compute(sessionID, func(current *sessionLock, loaded bool) (*sessionLock, bool) {
			if !loaded {
				return current, true
			}
			current.refs--

			return current, current.refs == 0
		})
	}
}
