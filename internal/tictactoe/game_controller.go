package tictactoe

import (
	"fmt"
	"slices"

	"github.com/rocketscienceinc/timetravel-tictactoe/internal/apperror"
	"github.com/rocketscienceinc/timetravel-tictactoe/internal/entity"
)

// Play applies a move for the player whose turn it is at state.CurrentMove.
// Entries after CurrentMove are dropped before the new one is appended.
// On error the returned state is the input state.
func Play(state entity.GameState, cell int) (entity.GameState, error) {
	mover := state.NextPlayer()

	board, err := TryMove(state.Current().Board, cell, mover)
	if err != nil {
		return state, fmt.Errorf("invalid turn: %w", err)
	}

	position := board.Position(cell)

	// clipped so the append below never writes into a backing array another state still sees
	history := slices.Clip(state.History[:state.CurrentMove+1])
	history = append(history, entity.HistoryEntry{
		Board:    board,
		Player:   mover,
		Position: &position,
	})

	return entity.GameState{
		History:        history,
		CurrentMove:    len(history) - 1,
		SortDescending: state.SortDescending,
	}, nil
}

// JumpTo moves the view to an existing history entry without touching history.
func JumpTo(state entity.GameState, move int) (entity.GameState, error) {
	if move < 0 || move >= len(state.History) {
		return state, fmt.Errorf("%w: %d not in [0, %d)", apperror.ErrMoveOutOfRange, move, len(state.History))
	}

	state.CurrentMove = move

	return state, nil
}

func ToggleSortOrder(state entity.GameState) entity.GameState {
	state.SortDescending = !state.SortDescending
	return state
}

// ValidateState checks the history invariants of a state restored from storage.
func ValidateState(state entity.GameState) error {
	if len(state.History) == 0 {
		return fmt.Errorf("%w: empty history", apperror.ErrCorruptedState)
	}

	if state.CurrentMove < 0 || state.CurrentMove >= len(state.History) {
		return fmt.Errorf("%w: current move %d of %d", apperror.ErrCorruptedState, state.CurrentMove, len(state.History))
	}

	initial := state.History[0]
	if !initial.Board.IsEmpty() || initial.Player != entity.Empty || initial.Position != nil {
		return fmt.Errorf("%w: initial entry is not an empty board", apperror.ErrCorruptedState)
	}

	for i := 1; i < len(state.History); i++ {
		if err := validatePly(state.History[i-1], state.History[i], i); err != nil {
			return err
		}
	}

	return nil
}

func validatePly(prev, next entity.HistoryEntry, move int) error {
	if next.Board.Size() != prev.Board.Size() {
		return fmt.Errorf("%w: move %d changes board size", apperror.ErrCorruptedState, move)
	}

	if next.Player != entity.PlayerForMove(move-1) {
		return fmt.Errorf("%w: move %d played by %q out of turn", apperror.ErrCorruptedState, move, next.Player)
	}

	diff := prev.Board.Diff(next.Board)
	if len(diff) != 1 {
		return fmt.Errorf("%w: move %d changes %d cells", apperror.ErrCorruptedState, move, len(diff))
	}

	index := diff[0]
	if prev.Board.At(index) != entity.Empty || next.Board.At(index) != next.Player {
		return fmt.Errorf("%w: move %d overwrites cell %d", apperror.ErrCorruptedState, move, index)
	}

	if next.Position == nil || *next.Position != next.Board.Position(index) {
		return fmt.Errorf("%w: move %d has wrong position", apperror.ErrCorruptedState, move)
	}

	return nil
}

// GameController owns one GameState and replaces it on every command. The session
// use case runs each command through a controller built from the stored state.
type GameController struct {
	state entity.GameState
}

func NewGameController(state entity.GameState) *GameController {
	return &GameController{state: state}
}

// Play applies a move; a rejected move leaves the controller unchanged.
func (that *GameController) Play(cell int) error {
	next, err := Play(that.state, cell)
	if err != nil {
		return err
	}

	that.state = next

	return nil
}

func (that *GameController) JumpTo(move int) error {
	next, err := JumpTo(that.state, move)
	if err != nil {
		return err
	}

	that.state = next

	return nil
}

func (that *GameController) ToggleSortOrder() {
	that.state = ToggleSortOrder(that.state)
}

func (that *GameController) State() entity.GameState {
	return that.state
}

func (that *GameController) Board() entity.Board {
	return that.state.Current().Board
}

func (that *GameController) Status() entity.Status {
	return DeriveStatus(that.Board(), that.state.NextPlayer())
}

// WinningCells returns the indexes of the winning line on the viewed board, if any.
func (that *GameController) WinningCells() []int {
	if winner := DetectWinner(that.Board()); winner != nil {
		return winner.Cells
	}
	return []int{}
}

func (that *GameController) Moves() []entity.MoveItem {
	return moveItems(that.state)
}

func (that *GameController) SortDescending() bool {
	return that.state.SortDescending
}

// View assembles the read-only surface of the viewed state.
func (that *GameController) View() entity.View {
	board := that.Board()
	status := that.Status()

	return entity.View{
		BoardSize:      board.Size(),
		Cells:          board.Cells(),
		Status:         status,
		StatusText:     status.String(),
		WinningCells:   that.WinningCells(),
		Moves:          that.Moves(),
		CurrentMove:    that.state.CurrentMove,
		SortDescending: that.SortDescending(),
	}
}
