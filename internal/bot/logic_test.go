package bot

import (
	"ctchen222/Tic-Tac-Toe-Solo/internal/game"
	"testing"
)

const (
	X = game.PlayerX
	O = game.PlayerO
	E = game.None
)

func TestFindWinningMove(t *testing.T) {
	tests := []struct {
		name      string
		board     game.Board
		mark      game.PlayerMark
		wantCell  int
		wantFound bool
	}{
		{
			name:      "No winning move - empty board",
			board:     game.Board{},
			mark:      X,
			wantCell:  NoMove,
			wantFound: false,
		},
		{
			name: "X can win - first row",
			board: game.Board{
				X, X, E,
				O, O, E,
				E, E, E,
			},
			mark:      X,
			wantCell:  2,
			wantFound: true,
		},
		{
			name: "X can win - gap in the middle of a row",
			board: game.Board{
				X, E, X,
				O, O, E,
				E, E, E,
			},
			mark:      X,
			wantCell:  1,
			wantFound: true,
		},
		{
			name: "O can win - second column",
			board: game.Board{
				X, O, E,
				X, O, E,
				E, E, E,
			},
			mark:      O,
			wantCell:  7,
			wantFound: true,
		},
		{
			name: "X can win - main diagonal",
			board: game.Board{
				X, E, E,
				E, X, E,
				E, E, E,
			},
			mark:      X,
			wantCell:  8,
			wantFound: true,
		},
		{
			name: "O can win - anti-diagonal",
			board: game.Board{
				E, E, O,
				E, O, E,
				E, E, E,
			},
			mark:      O,
			wantCell:  6,
			wantFound: true,
		},
		{
			name: "Blocked line is not a winning move",
			board: game.Board{
				X, X, O,
				E, E, E,
				E, E, E,
			},
			mark:      X,
			wantCell:  NoMove,
			wantFound: false,
		},
		{
			name: "Full board, no win possible",
			board: game.Board{
				X, O, X,
				O, X, O,
				O, X, O,
			},
			mark:      X,
			wantCell:  NoMove,
			wantFound: false,
		},
		{
			name:      "Empty mark never wins",
			board:     game.Board{},
			mark:      E,
			wantCell:  NoMove,
			wantFound: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cell, found := findWinningMove(tt.board, tt.mark)
			if found != tt.wantFound || cell != tt.wantCell {
				t.Errorf("findWinningMove() got (%d, %v), want (%d, %v)", cell, found, tt.wantCell, tt.wantFound)
			}
		})
	}
}

func TestSelectMove(t *testing.T) {
	tests := []struct {
		name  string
		board game.Board
		mark  game.PlayerMark
		want  int
	}{
		{
			name: "Blocks the opponent's open row",
			board: game.Board{
				X, X, E,
				E, E, E,
				E, E, E,
			},
			mark: O,
			want: 2,
		},
		{
			name: "Completes its own row",
			board: game.Board{
				O, O, E,
				E, E, E,
				E, E, E,
			},
			mark: O,
			want: 2,
		},
		{
			name:  "Takes the center on an empty board",
			board: game.Board{},
			mark:  O,
			want:  4,
		},
		{
			name: "Takes the first free corner after the center is gone",
			board: game.Board{
				X, E, E,
				E, O, E,
				E, E, E,
			},
			mark: O,
			want: 2,
		},
		{
			name: "Takes a corner when the opponent holds the center",
			board: game.Board{
				E, E, E,
				E, X, E,
				E, E, E,
			},
			mark: O,
			want: 0,
		},
		{
			name: "Prefers winning over blocking",
			board: game.Board{
				X, X, E,
				O, O, E,
				E, E, E,
			},
			mark: O,
			want: 5,
		},
		{
			// Center and corners taken, neither side has two in a line with a free third cell.
			name: "Falls back to the first free edge",
			board: game.Board{
				X, E, O,
				E, X, E,
				O, E, X,
			},
			mark: O,
			want: 1,
		},
		{
			name: "Only one cell left",
			board: game.Board{
				X, O, X,
				X, O, O,
				O, X, E,
			},
			mark: O,
			want: 8,
		},
		{
			name: "Full board has no move",
			board: game.Board{
				X, O, X,
				X, O, O,
				O, X, X,
			},
			mark: O,
			want: NoMove,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SelectMove(tt.board, tt.mark); got != tt.want {
				t.Errorf("SelectMove() got = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSelector_MatchesPackageFunction(t *testing.T) {
	board := game.Board{
		X, E, E,
		E, E, E,
		E, E, X,
	}
	var s Selector
	if got, want := s.SelectMove(board, O), SelectMove(board, O); got != want {
		t.Errorf("Selector.SelectMove() got = %d, want %d", got, want)
	}
}

// forEachBoard visits all 3^9 assignments of X, O and empty cells.
func forEachBoard(fn func(game.Board)) {
	marks := [3]game.PlayerMark{E, X, O}
	for n := 0; n < 19683; n++ {
		var board game.Board
		v := n
		for i := range board {
			board[i] = marks[v%3]
			v /= 3
		}
		fn(board)
	}
}

// completesLine reports whether marking cell gives mark a full line through it.
func completesLine(board game.Board, cell int, mark game.PlayerMark) bool {
	board[cell] = mark
	for _, line := range game.Lines {
		if line[0] != cell && line[1] != cell && line[2] != cell {
			continue
		}
		if board[line[0]] == mark && board[line[1]] == mark && board[line[2]] == mark {
			return true
		}
	}
	return false
}

func TestSelectMove_AllBoards(t *testing.T) {
	forEachBoard(func(board game.Board) {
		for _, mark := range []game.PlayerMark{X, O} {
			got := SelectMove(board, mark)

			if game.IsBoardFull(board) {
				if got != NoMove {
					t.Fatalf("SelectMove(%v) on full board got = %d, want %d", board, got, NoMove)
				}
				continue
			}

			if !game.ValidCell(got) {
				t.Fatalf("SelectMove(%v) got = %d, want a cell index", board, got)
			}
			if board[got] != E {
				t.Fatalf("SelectMove(%v) picked occupied cell %d", board, got)
			}
			if again := SelectMove(board, mark); again != got {
				t.Fatalf("SelectMove(%v) not deterministic: %d then %d", board, got, again)
			}

			winCell, canWin := findWinningMove(board, mark)
			if canWin && (got != winCell || !completesLine(board, got, mark)) {
				t.Fatalf("SelectMove(%v) = %d skipped a winning move for %s", board, got, mark)
			}

			opponent := game.Opponent(mark)
			if blockCell, mustBlock := findWinningMove(board, opponent); !canWin && mustBlock && got != blockCell {
				t.Fatalf("SelectMove(%v) = %d, want block at %d", board, got, blockCell)
			}
		}
	})
}
