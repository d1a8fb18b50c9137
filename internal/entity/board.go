package entity

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/rocketscienceinc/timetravel-tictactoe/internal/apperror"
)

const (
	DefaultBoardSize = 4
	MinBoardSize     = 2
	MaxBoardSize     = 16
)

// Board is an immutable N×N grid stored row-major (index = row*N + col).
// Methods that change a cell return a new Board and leave the receiver as is.
type Board struct {
	size  int
	cells []Cell
}

// Position is the (row, col) of a cell index on a board.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (that Position) String() string {
	return fmt.Sprintf("[%d,%d]", that.Row, that.Col)
}

// NewBoard returns an empty board of the given size.
func NewBoard(size int) (Board, error) {
	if size < MinBoardSize || size > MaxBoardSize {
		return Board{}, fmt.Errorf("%w: %d", apperror.ErrInvalidBoardSize, size)
	}

	return Board{
		size:  size,
		cells: make([]Cell, size*size),
	}, nil
}

// BoardFromCells builds a board from row-major cells; len(cells) must be size².
func BoardFromCells(size int, cells []Cell) (Board, error) {
	board, err := NewBoard(size)
	if err != nil {
		return Board{}, err
	}

	if len(cells) != len(board.cells) {
		return Board{}, fmt.Errorf("%w: %d cells for size %d", apperror.ErrInvalidBoardSize, len(cells), size)
	}

	copy(board.cells, cells)

	return board, nil
}

func (that Board) Size() int {
	return that.size
}

// Len is the number of cells, N².
func (that Board) Len() int {
	return len(that.cells)
}

func (that Board) InRange(index int) bool {
	return index >= 0 && index < len(that.cells)
}

// At returns the cell at index, or Empty when index is out of range.
func (that Board) At(index int) Cell {
	if !that.InRange(index) {
		return Empty
	}
	return that.cells[index]
}

// Cells returns a copy of the cells.
func (that Board) Cells() []Cell {
	return slices.Clone(that.cells)
}

// With returns a copy of the board with index set to mark.
func (that Board) With(index int, mark Cell) Board {
	cells := slices.Clone(that.cells)
	cells[index] = mark

	return Board{size: that.size, cells: cells}
}

func (that Board) IsFull() bool {
	return !slices.Contains(that.cells, Empty)
}

func (that Board) IsEmpty() bool {
	for _, cell := range that.cells {
		if cell != Empty {
			return false
		}
	}
	return true
}

func (that Board) Equal(other Board) bool {
	return that.size == other.size && slices.Equal(that.cells, other.cells)
}

// Position converts a linear index into its row and column.
func (that Board) Position(index int) Position {
	return Position{Row: index / that.size, Col: index % that.size}
}

// Diff returns the indexes whose cells differ between the two boards.
func (that Board) Diff(other Board) []int {
	if that.Len() != other.Len() {
		return nil
	}

	var diff []int
	for i := range that.cells {
		if that.cells[i] != other.cells[i] {
			diff = append(diff, i)
		}
	}

	return diff
}

type boardJSON struct {
	Size  int    `json:"size"`
	Cells []Cell `json:"cells"`
}

func (that Board) MarshalJSON() ([]byte, error) {
	return json.Marshal(boardJSON{Size: that.size, Cells: that.cells})
}

func (that *Board) UnmarshalJSON(data []byte) error {
	var raw boardJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to unmarshal board: %w", err)
	}

	board, err := BoardFromCells(raw.Size, raw.Cells)
	if err != nil {
		return fmt.Errorf("failed to restore board: %w", err)
	}

	*that = board

	return nil
}
