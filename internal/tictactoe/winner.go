package tictactoe

import "github.com/rocketscienceinc/timetravel-tictactoe/internal/entity"

// WinResult is the player owning a complete line and the indexes of that line.
type WinResult struct {
	Player entity.Cell `json:"player"`
	Cells  []int       `json:"cells"`
}

// Lines returns every candidate line of a size×size board in detection order:
// rows, columns, the main diagonal, then the anti-diagonal.
func Lines(size int) [][]int {
	lines := make([][]int, 0, 2*size+2)

	for row := range size {
		line := make([]int, size)
		for col := range size {
			line[col] = row*size + col
		}
		lines = append(lines, line)
	}

	for col := range size {
		line := make([]int, size)
		for row := range size {
			line[row] = row*size + col
		}
		lines = append(lines, line)
	}

	mainDiagonal := make([]int, size)
	antiDiagonal := make([]int, size)
	for i := range size {
		mainDiagonal[i] = i * (size + 1)
		antiDiagonal[i] = (i + 1) * (size - 1)
	}

	return append(lines, mainDiagonal, antiDiagonal)
}

// DetectWinner returns the first line fully occupied by a single player, or nil.
// The whole line must match: win length always equals the board size.
func DetectWinner(board entity.Board) *WinResult {
	if board.Size() == 0 {
		return nil
	}

	for _, line := range Lines(board.Size()) {
		if player, ok := lineOwner(board, line); ok {
			return &WinResult{Player: player, Cells: line}
		}
	}

	return nil
}

func lineOwner(board entity.Board, line []int) (entity.Cell, bool) {
	first := board.At(line[0])
	if first == entity.Empty {
		return entity.Empty, false
	}

	for _, index := range line[1:] {
		if board.At(index) != first {
			return entity.Empty, false
		}
	}

	return first, true
}
