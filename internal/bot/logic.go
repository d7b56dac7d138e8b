package bot

import (
	"ctchen222/Tic-Tac-Toe-Solo/internal/game"
)

// NoMove is returned when the board has no empty cell.
const NoMove = -1

// Positional preference once there is nothing to win or block.
var (
	corners = [4]int{0, 2, 6, 8}
	edges   = [4]int{1, 3, 5, 7}
)

// Selector implements session.MoveSelector.
type Selector struct{}

// SelectMove calls the package-level function to satisfy the interface.
func (Selector) SelectMove(board game.Board, mark game.PlayerMark) int {
	return SelectMove(board, mark)
}

// SelectMove picks the computer's next cell: win, block, center, corner, edge.
// The result depends only on the board, so the same board always yields the same cell.
func SelectMove(board game.Board, botMark game.PlayerMark) int {
	// 1. Win: complete one of our own lines
	if cell, ok := findWinningMove(board, botMark); ok {
		return cell
	}

	// 2. Block: deny the opponent's completing cell
	if cell, ok := findWinningMove(board, game.Opponent(botMark)); ok {
		return cell
	}

	// 3. Center
	if board[game.Center] == game.None {
		return game.Center
	}

	// 4. Corners, then 5. edges, in ascending index order
	for _, cell := range corners {
		if board[cell] == game.None {
			return cell
		}
	}
	for _, cell := range edges {
		if board[cell] == game.None {
			return cell
		}
	}

	return NoMove
}

// findWinningMove checks if mark has two cells of a line with the third empty.
// Lines are scanned in game.Lines order so the result is stable.
func findWinningMove(board game.Board, mark game.PlayerMark) (int, bool) {
	if mark == game.None {
		return NoMove, false
	}
	for _, line := range game.Lines {
		owned, empty := 0, NoMove
		for _, idx := range line {
			switch board[idx] {
			case mark:
				owned++
			case game.None:
				empty = idx
			}
		}
		if owned == 2 && empty != NoMove {
			return empty, true
		}
	}
	return NoMove, false
}
