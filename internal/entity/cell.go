package entity

import (
	"fmt"

	"github.com/rocketscienceinc/timetravel-tictactoe/internal/apperror"
)

// Cell is the content of one board square.
type Cell uint8

const (
	Empty Cell = iota
	PlayerX
	PlayerO
)

const (
	markX = "X"
	markO = "O"
)

func (that Cell) String() string {
	switch that {
	case PlayerX:
		return markX
	case PlayerO:
		return markO
	default:
		return ""
	}
}

// IsPlayer reports whether the cell holds a mark of X or O.
func (that Cell) IsPlayer() bool {
	return that == PlayerX || that == PlayerO
}

func (that Cell) MarshalText() ([]byte, error) {
	return []byte(that.String()), nil
}

func (that *Cell) UnmarshalText(text []byte) error {
	switch string(text) {
	case "":
		*that = Empty
	case markX:
		*that = PlayerX
	case markO:
		*that = PlayerO
	default:
		return fmt.Errorf("%w: %q", apperror.ErrInvalidMark, text)
	}

	return nil
}

// PlayerForMove returns who moves from history index move: X on even indexes, O on odd ones.
func PlayerForMove(move int) Cell {
	if move%2 == 0 {
		return PlayerX
	}
	return PlayerO
}
