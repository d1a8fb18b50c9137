package tictactoe

import (
	"fmt"

	"github.com/rocketscienceinc/timetravel-tictactoe/internal/apperror"
	"github.com/rocketscienceinc/timetravel-tictactoe/internal/entity"
)

// TryMove returns a copy of board with mover's mark at index.
// A decided board or an occupied cell rejects the move and board stays untouched.
func TryMove(board entity.Board, index int, mover entity.Cell) (entity.Board, error) {
	if err := validateMove(board, index, mover); err != nil {
		return board, err
	}

	return board.With(index, mover), nil
}

// validateMove - checks if the move is valid.
func validateMove(board entity.Board, index int, mover entity.Cell) error {
	if !mover.IsPlayer() {
		return fmt.Errorf("%w: %d", apperror.ErrInvalidMark, mover)
	}

	if !board.InRange(index) {
		return fmt.Errorf("%w: cell %d", apperror.ErrInvalidCell, index)
	}

	if DetectWinner(board) != nil {
		return apperror.ErrGameFinished
	}

	if board.At(index) != entity.Empty {
		return apperror.ErrCellOccupied
	}

	return nil
}

// DeriveStatus reports the winner, a draw on a full board, or who moves next.
func DeriveStatus(board entity.Board, next entity.Cell) entity.Status {
	if winner := DetectWinner(board); winner != nil {
		return entity.Status{Kind: entity.StatusWinner, Player: winner.Player}
	}

	if board.IsFull() {
		return entity.Status{Kind: entity.StatusDraw}
	}

	return entity.Status{Kind: entity.StatusNext, Player: next}
}
