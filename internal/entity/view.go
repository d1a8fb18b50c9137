package entity

// View is the read-only surface a presentation layer renders after each command.
type View struct {
	BoardSize      int        `json:"board_size"`
	Cells          []Cell     `json:"cells"`
	Status         Status     `json:"status"`
	StatusText     string     `json:"status_text"`
	WinningCells   []int      `json:"winning_cells"`
	Moves          []MoveItem `json:"moves"`
	CurrentMove    int        `json:"current_move"`
	SortDescending bool       `json:"sort_descending"`
}

// MoveItem is one row of the rendered history list.
type MoveItem struct {
	Move        int       `json:"move"`
	Player      Cell      `json:"player"`
	Position    *Position `json:"position,omitempty"`
	IsCurrent   bool      `json:"is_current"`
	Description string    `json:"description"`
}
