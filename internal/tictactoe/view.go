package tictactoe

import (
	"fmt"
	"slices"

	"github.com/rocketscienceinc/timetravel-tictactoe/internal/entity"
)

// BuildView derives everything a presentation layer needs to render state.
func BuildView(state entity.GameState) entity.View {
	return NewGameController(state).View()
}

// moveItems lists history oldest-first, or newest-first when SortDescending is set.
func moveItems(state entity.GameState) []entity.MoveItem {
	items := make([]entity.MoveItem, 0, len(state.History))

	for move, entry := range state.History {
		isCurrent := move == state.CurrentMove
		items = append(items, entity.MoveItem{
			Move:        move,
			Player:      entry.Player,
			Position:    entry.Position,
			IsCurrent:   isCurrent,
			Description: describeMove(move, entry, isCurrent),
		})
	}

	if state.SortDescending {
		slices.Reverse(items)
	}

	return items
}

func describeMove(move int, entry entity.HistoryEntry, isCurrent bool) string {
	switch {
	case move == 0 && isCurrent:
		return "You are at game start"
	case move == 0:
		return "Go to game start"
	case isCurrent:
		return fmt.Sprintf("You are at move #%d: Player %s at %s", move, entry.Player, entry.Position)
	default:
		return fmt.Sprintf("Go to move #%d", move)
	}
}
