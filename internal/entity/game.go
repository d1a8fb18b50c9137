package entity

import "fmt"

// HistoryEntry is one recorded board. The initial entry has no Player and no Position.
type HistoryEntry struct {
	Board    Board     `json:"board"`
	Player   Cell      `json:"player"`
	Position *Position `json:"position,omitempty"`
}

// GameState is the whole state of one game: history, the viewed move and the move list order.
type GameState struct {
	History        []HistoryEntry `json:"history"`
	CurrentMove    int            `json:"current_move"`
	SortDescending bool           `json:"sort_descending"`
}

// NewGameState returns a state holding only the empty board of the given size.
func NewGameState(size int, sortDescending bool) (GameState, error) {
	board, err := NewBoard(size)
	if err != nil {
		return GameState{}, fmt.Errorf("failed to create board: %w", err)
	}

	return GameState{
		History:        []HistoryEntry{{Board: board}},
		SortDescending: sortDescending,
	}, nil
}

// Current returns the entry at CurrentMove.
func (that GameState) Current() HistoryEntry {
	return that.History[that.CurrentMove]
}

// NextPlayer is the player to move from CurrentMove.
func (that GameState) NextPlayer() Cell {
	return PlayerForMove(that.CurrentMove)
}

const (
	StatusNext   = "next"
	StatusWinner = "winner"
	StatusDraw   = "draw"
)

// Status is the derived outcome of a board: a winner, a draw, or the next player to move.
type Status struct {
	Kind   string `json:"kind"`
	Player Cell   `json:"player,omitempty"`
}

func (that Status) String() string {
	switch that.Kind {
	case StatusWinner:
		return "Winner: " + that.Player.String()
	case StatusDraw:
		return "Draw"
	default:
		return "Next player: " + that.Player.String()
	}
}

func (that Status) IsFinished() bool {
	return that.Kind == StatusWinner || that.Kind == StatusDraw
}
