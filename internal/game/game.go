package game

// PlayerMark represents the mark of a player (X, O) or an empty cell.
type PlayerMark string

// Status is the coarse state of a board as seen by Evaluate.
type Status string

const (
	// Player marks
	None    PlayerMark = ""
	PlayerX PlayerMark = "X"
	PlayerO PlayerMark = "O"

	// Board statuses
	InProgress Status = "in_progress"
	Win        Status = "win"
	Tie        Status = "tie"

	// BoardSize is the number of cells on the board.
	BoardSize = 9
	// Center is the index of the middle cell.
	Center = 4
)

// Board holds the nine cells in row-major order: index = row*3 + col.
type Board [BoardSize]PlayerMark

// Lines are the eight winning triples: rows, then columns, then diagonals.
var Lines = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Outcome is the result of evaluating a board. Winner is only set when Status is Win.
type Outcome struct {
	Status Status     `json:"status"`
	Winner PlayerMark `json:"winner,omitempty"`
}

// IsTerminal reports whether no further moves may be played.
func (o Outcome) IsTerminal() bool {
	return o.Status == Win || o.Status == Tie
}

// Evaluate reports whether the board is won, tied or still in progress.
func Evaluate(board Board) Outcome {
	if winner := CheckWinner(board); winner != None {
		return Outcome{Status: Win, Winner: winner}
	}
	if IsBoardFull(board) {
		return Outcome{Status: Tie}
	}
	return Outcome{Status: InProgress}
}

// CheckWinner returns the mark holding the first complete line in Lines order, or None.
func CheckWinner(board Board) PlayerMark {
	for _, line := range Lines {
		a, b, c := board[line[0]], board[line[1]], board[line[2]]
		if a != None && a == b && b == c {
			return a
		}
	}
	return None
}

// IsBoardFull checks if every cell holds a mark.
func IsBoardFull(board Board) bool {
	for _, cell := range board {
		if cell == None {
			return false
		}
	}
	return true
}

// EmptyCells returns the indices of all unmarked cells in ascending order.
func (b Board) EmptyCells() []int {
	cells := make([]int, 0, BoardSize)
	for i, cell := range b {
		if cell == None {
			cells = append(cells, i)
		}
	}
	return cells
}

// ValidCell reports whether i addresses a cell on the board.
func ValidCell(i int) bool {
	return i >= 0 && i < BoardSize
}

// Opponent returns the other player's mark. None maps to None.
func Opponent(mark PlayerMark) PlayerMark {
	switch mark {
	case PlayerX:
		return PlayerO
	case PlayerO:
		return PlayerX
	default:
		return None
	}
}
