package tictactoe

import (
	"testing"

	"github.com/rocketscienceinc/timetravel-tictactoe/internal/apperror"
	"github.com/rocketscienceinc/timetravel-tictactoe/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// drawSequence fills a 4x4 board as
//
//	X X O O
//	O O X X
//	X X O O
//	O O X X
var drawSequence = []int{0, 2, 1, 3, 6, 4, 7, 5, 8, 10, 9, 11, 14, 12, 15, 13}

func newState(t *testing.T) entity.GameState {
	t.Helper()

	state, err := entity.NewGameState(4, false)
	require.NoError(t, err)

	return state
}

func playAll(t *testing.T, state entity.GameState, cells ...int) entity.GameState {
	t.Helper()

	for _, cell := range cells {
		var err error
		state, err = Play(state, cell)
		require.NoError(t, err, "cell %d", cell)
	}

	return state
}

func TestNewGameState(t *testing.T) {
	// Given: create a new game
	state := newState(t)

	// Then: history holds only the empty board with no player and no position
	require.Len(t, state.History, 1)
	assert.True(t, state.History[0].Board.IsEmpty())
	assert.Equal(t, 16, state.History[0].Board.Len())
	assert.Equal(t, entity.Empty, state.History[0].Player)
	assert.Nil(t, state.History[0].Position)
	assert.Equal(t, 0, state.CurrentMove)
	assert.Equal(t, entity.PlayerX, state.NextPlayer())
	require.NoError(t, ValidateState(state))
}

func TestPlay(t *testing.T) {
	t.Run("Play appends an entry for the player in turn", func(t *testing.T) {
		// Given: a new game
		state := newState(t)

		// When: X plays cell 6
		next, err := Play(state, 6)

		// Then: a second entry records X at row 1, col 2
		require.NoError(t, err)
		require.Len(t, next.History, 2)
		assert.Equal(t, 1, next.CurrentMove)
		assert.Equal(t, entity.PlayerX, next.History[1].Player)
		assert.Equal(t, &entity.Position{Row: 1, Col: 2}, next.History[1].Position)
		assert.Equal(t, entity.PlayerX, next.History[1].Board.At(6))
		assert.Equal(t, entity.PlayerO, next.NextPlayer())

		// Then: the original state value is untouched
		assert.Len(t, state.History, 1)
	})

	t.Run("Each ply changes exactly one empty cell to the mover's mark", func(t *testing.T) {
		state := playAll(t, newState(t), 5, 0, 15, 3, 9, 12, 10)

		for i := 1; i < len(state.History); i++ {
			prev, cur := state.History[i-1], state.History[i]

			diff := prev.Board.Diff(cur.Board)
			require.Len(t, diff, 1, "entry %d", i)
			assert.Equal(t, entity.Empty, prev.Board.At(diff[0]))
			assert.Equal(t, cur.Player, cur.Board.At(diff[0]))
		}
		require.NoError(t, ValidateState(state))
	})

	t.Run("Turn parity: odd entries are X, even entries are O", func(t *testing.T) {
		state := playAll(t, newState(t), 5, 0, 15, 3, 9, 12, 10, 1)

		for i := 1; i < len(state.History); i++ {
			if i%2 == 1 {
				assert.Equal(t, entity.PlayerX, state.History[i].Player, "entry %d", i)
			} else {
				assert.Equal(t, entity.PlayerO, state.History[i].Player, "entry %d", i)
			}
		}
	})

	t.Run("Error on cell already occupied leaves state unchanged", func(t *testing.T) {
		// Given: X has played cell 0
		state := playAll(t, newState(t), 0)

		// When: O tries the same cell
		next, err := Play(state, 0)

		// Then: the move is rejected and nothing changed
		require.ErrorIs(t, err, apperror.ErrCellOccupied)
		assert.Equal(t, state, next)
	})

	t.Run("Full column wins for X and further play is a no-op", func(t *testing.T) {
		// Given: X 0, O 1, X 4, O 5, X 8, O 9, X 12 fills the first column
		state := playAll(t, newState(t), 0, 1, 4, 5, 8, 9, 12)

		// Then: X wins with column 0
		winner := DetectWinner(state.Current().Board)
		require.NotNil(t, winner)
		assert.Equal(t, entity.PlayerX, winner.Player)
		assert.Equal(t, []int{0, 4, 8, 12}, winner.Cells)

		// When: O tries to continue
		next, err := Play(state, 13)

		// Then: nothing changes
		require.ErrorIs(t, err, apperror.ErrGameFinished)
		assert.Equal(t, state, next)
	})

	t.Run("Partial main diagonal is not a win", func(t *testing.T) {
		// Given: X holds 0, 5 and 10 of the main diagonal
		state := playAll(t, newState(t), 0, 1, 5, 2, 10)

		// When: deriving the status
		status := DeriveStatus(state.Current().Board, state.NextPlayer())

		// Then: the game continues with O to move
		assert.Equal(t, entity.Status{Kind: entity.StatusNext, Player: entity.PlayerO}, status)
	})

	t.Run("Draw", func(t *testing.T) {
		state := playAll(t, newState(t), drawSequence...)

		status := DeriveStatus(state.Current().Board, state.NextPlayer())

		assert.Equal(t, entity.StatusDraw, status.Kind)
		assert.Len(t, state.History, 17)
	})

	t.Run("Invalid Cell", func(t *testing.T) {
		state := newState(t)

		next, err := Play(state, 16)

		require.ErrorIs(t, err, apperror.ErrInvalidCell)
		assert.Equal(t, state, next)
	})
}

func TestJumpTo(t *testing.T) {
	t.Run("Jump keeps history and changes the viewed move", func(t *testing.T) {
		state := playAll(t, newState(t), 0, 1, 2, 3)

		next, err := JumpTo(state, 1)

		require.NoError(t, err)
		assert.Equal(t, 1, next.CurrentMove)
		assert.Len(t, next.History, 5)
		assert.Equal(t, entity.PlayerO, next.NextPlayer())
	})

	t.Run("Play after a jump truncates the stale branch", func(t *testing.T) {
		// Given: four moves played and a jump back to move 1
		state := playAll(t, newState(t), 0, 1, 2, 3)
		jumped, err := JumpTo(state, 1)
		require.NoError(t, err)

		// When: O plays a different cell
		branched, err := Play(jumped, 7)

		// Then: history is k+2 long and the new entry belongs to O
		require.NoError(t, err)
		require.Len(t, branched.History, 3)
		assert.Equal(t, 2, branched.CurrentMove)
		assert.Equal(t, entity.PlayerO, branched.History[2].Player)
		assert.Equal(t, entity.PlayerO, branched.History[2].Board.At(7))
		assert.Equal(t, entity.Empty, branched.History[2].Board.At(1))
		require.NoError(t, ValidateState(branched))

		// Then: the pre-jump state still holds the old branch
		require.Len(t, state.History, 5)
		assert.Equal(t, entity.PlayerO, state.History[2].Board.At(1))
	})

	t.Run("Jump back from a decided position allows play again", func(t *testing.T) {
		state := playAll(t, newState(t), 0, 1, 4, 5, 8, 9, 12)

		jumped, err := JumpTo(state, 6)
		require.NoError(t, err)

		next, err := Play(jumped, 13)

		require.NoError(t, err)
		assert.Len(t, next.History, 8)
		assert.Nil(t, DetectWinner(next.Current().Board))
	})

	t.Run("Out of range move is an error", func(t *testing.T) {
		state := playAll(t, newState(t), 0)

		for _, move := range []int{-1, 2, 100} {
			next, err := JumpTo(state, move)

			require.ErrorIs(t, err, apperror.ErrMoveOutOfRange)
			assert.Equal(t, state, next)
		}
	})
}

func TestToggleSortOrder(t *testing.T) {
	state := playAll(t, newState(t), 0, 1)

	toggled := ToggleSortOrder(state)

	assert.True(t, toggled.SortDescending)
	assert.False(t, ToggleSortOrder(toggled).SortDescending)
	assert.Equal(t, state.History, toggled.History)
	assert.Equal(t, state.CurrentMove, toggled.CurrentMove)
}

func TestValidateState(t *testing.T) {
	t.Run("Rejects empty history", func(t *testing.T) {
		err := ValidateState(entity.GameState{})

		require.ErrorIs(t, err, apperror.ErrCorruptedState)
	})

	t.Run("Rejects current move out of range", func(t *testing.T) {
		state := newState(t)
		state.CurrentMove = 3

		require.ErrorIs(t, ValidateState(state), apperror.ErrCorruptedState)
	})

	t.Run("Rejects a ply played out of turn", func(t *testing.T) {
		state := playAll(t, newState(t), 0)
		state.History[1].Player = entity.PlayerO
		state.History[1].Board = state.History[0].Board.With(0, entity.PlayerO)

		require.ErrorIs(t, ValidateState(state), apperror.ErrCorruptedState)
	})

	t.Run("Rejects a ply changing two cells", func(t *testing.T) {
		state := playAll(t, newState(t), 0)
		state.History[1].Board = state.History[1].Board.With(1, entity.PlayerX)

		require.ErrorIs(t, ValidateState(state), apperror.ErrCorruptedState)
	})
}

func TestGameController(t *testing.T) {
	t.Run("Commands replace the owned state", func(t *testing.T) {
		// Given: a controller over a new game
		controller := NewGameController(newState(t))

		// When: two moves are played and the view jumps back
		require.NoError(t, controller.Play(0))
		require.NoError(t, controller.Play(5))
		require.NoError(t, controller.JumpTo(1))

		// Then: the read surface follows the viewed move
		assert.Equal(t, 1, controller.State().CurrentMove)
		assert.Equal(t, entity.PlayerX, controller.Board().At(0))
		assert.Equal(t, entity.Empty, controller.Board().At(5))
		assert.Equal(t, entity.Status{Kind: entity.StatusNext, Player: entity.PlayerO}, controller.Status())
		assert.Empty(t, controller.WinningCells())
		assert.Len(t, controller.Moves(), 3)
	})

	t.Run("Rejected commands keep state", func(t *testing.T) {
		controller := NewGameController(newState(t))
		require.NoError(t, controller.Play(0))
		before := controller.State()

		require.ErrorIs(t, controller.Play(0), apperror.ErrCellOccupied)
		require.ErrorIs(t, controller.JumpTo(5), apperror.ErrMoveOutOfRange)

		assert.Equal(t, before, controller.State())
	})

	t.Run("Winning cells and sort flag", func(t *testing.T) {
		controller := NewGameController(newState(t))
		for _, cell := range []int{3, 0, 6, 1, 9, 2, 12} {
			require.NoError(t, controller.Play(cell))
		}

		controller.ToggleSortOrder()

		assert.Equal(t, []int{3, 6, 9, 12}, controller.WinningCells())
		assert.True(t, controller.SortDescending())
		assert.Equal(t, "Winner: X", controller.View().StatusText)
	})
	t.Run("View is assembled from the read surface", func(t *testing.T) {
		// Given: a controller viewing move 2 of three
		controller := NewGameController(playAll(t, newState(t), 0, 5, 10))
		require.NoError(t, controller.JumpTo(2))

		// When: building the view
		view := controller.View()

		// Then: every field matches the accessors and BuildView of the same state
		assert.Equal(t, controller.Board().Cells(), view.Cells)
		assert.Equal(t, controller.Board().Size(), view.BoardSize)
		assert.Equal(t, controller.Status(), view.Status)
		assert.Equal(t, controller.WinningCells(), view.WinningCells)
		assert.Equal(t, controller.Moves(), view.Moves)
		assert.Equal(t, controller.SortDescending(), view.SortDescending)
		assert.Equal(t, 2, view.CurrentMove)
		assert.Equal(t, BuildView(controller.State()), view)
	})
}
