package session

import (
	"context"
	"ctchen222/Tic-Tac-Toe-Solo/internal/game"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// State is the controller's position in the turn cycle.
type State string

// Turn says whose move the board is waiting for.
type Turn string

// ChangeKind tells observers what caused a new snapshot.
type ChangeKind string

const (
	AwaitingPlayerMove   State = "awaiting_player_move"
	AwaitingComputerMove State = "awaiting_computer_move"
	Terminal             State = "terminal"

	PlayerTurn   Turn = "player"
	ComputerTurn Turn = "computer"

	ChangeMove   ChangeKind = "move"
	ChangeReset  ChangeKind = "reset"
	ChangeNoMove ChangeKind = "no_move"

	// The human always plays X and moves first.
	PlayerMark   = game.PlayerX
	ComputerMark = game.PlayerO

	// DefaultComputerDelay paces the computer's reply.
	DefaultComputerDelay = 500 * time.Millisecond
)

// MoveSelector picks the computer's next cell, or a negative index if none is free.
type MoveSelector interface {
	SelectMove(board game.Board, mark game.PlayerMark) int
}

// Stats are the running tallies of finished games. They survive Reset.
type Stats struct {
	PlayerWins   int `json:"player_wins"`
	ComputerWins int `json:"computer_wins"`
	Ties         int `json:"ties"`
}

// Snapshot is a consistent copy of the session taken under its lock.
type Snapshot struct {
	ID       string       `json:"id"`
	Seq      uint64       `json:"seq"`
	Board    game.Board   `json:"board"`
	Turn     Turn         `json:"turn"`
	State    State        `json:"state"`
	Outcome  game.Outcome `json:"outcome"`
	Stats    Stats        `json:"stats"`
	LastMove int          `json:"last_move"`
}

// Change is delivered to subscribers after every mutation.
type Change struct {
	Kind     ChangeKind
	Snapshot Snapshot
}

// Options tune a session. The zero value is usable.
type Options struct {
	// ComputerDelay is how long the computer "thinks". Zero means DefaultComputerDelay,
	// a negative value replies without delay.
	ComputerDelay time.Duration
	Scheduler     Scheduler
}

// Session is one human-versus-computer game plus its win/tie counters.
type Session struct {
	id        string
	selector  MoveSelector
	scheduler Scheduler
	delay     time.Duration

	mu       sync.Mutex
	board    game.Board
	turn     Turn
	state    State
	outcome  game.Outcome
	stats    Stats
	seq      uint64
	lastMove int
	closed   bool

	// generation invalidates computer replies scheduled before a reset.
	generation uint64
	pending    Timer

	listenersMu sync.Mutex
	listeners   map[int]func(Change)
	nextID      int
}

// New creates a session waiting for the player's first move.
func New(id string, selector MoveSelector, opts Options) *Session {
	delay := opts.ComputerDelay
	if delay == 0 {
		delay = DefaultComputerDelay
	} else if delay < 0 {
		delay = 0
	}
	scheduler := opts.Scheduler
	if scheduler == nil {
		scheduler = ClockScheduler{}
	}

	return &Session{
		id:        id,
		selector:  selector,
		scheduler: scheduler,
		delay:     delay,
		turn:      PlayerTurn,
		state:     AwaitingPlayerMove,
		outcome:   game.Outcome{Status: game.InProgress},
		lastMove:  -1,
		listeners: make(map[int]func(Change)),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// PlayerMove plays the human's mark at index.
func (s *Session) PlayerMove(index int) error {
	return s.ApplyMove(index, PlayerMark)
}

// ApplyMove writes mark at index if the move is legal. A rejected move wraps
// ErrInvalidMove and leaves the session unchanged. When the move hands the turn
// to the computer, its reply is scheduled before ApplyMove returns.
func (s *Session) ApplyMove(index int, mark game.PlayerMark) error {
	s.mu.Lock()
	if err := s.applyLocked(index, mark); err != nil {
		s.mu.Unlock()
		return err
	}
	s.scheduleComputerLocked()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(Change{Kind: ChangeMove, Snapshot: snap})
	return nil
}

// Reset clears the board for a new game and drops any pending computer reply.
// Counters are kept.
func (s *Session) Reset() {
	s.mu.Lock()
	s.cancelPendingLocked()
	s.board = game.Board{}
	s.turn = PlayerTurn
	s.state = AwaitingPlayerMove
	s.outcome = game.Outcome{Status: game.InProgress}
	s.lastMove = -1
	s.seq++
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(Change{Kind: ChangeReset, Snapshot: snap})
}

// Close cancels a pending computer reply. Later moves fail with ErrClosed.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.cancelPendingLocked()
}

// Board returns a copy of the cells.
func (s *Session) Board() game.Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board
}

// Outcome returns the evaluation of the current board.
func (s *Session) Outcome() game.Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outcome
}

// Turn returns whose move is expected.
func (s *Session) Turn() Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.turn
}

// State returns the controller state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Stats returns the win and tie counters.
func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Snapshot returns all observable state at once.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe registers fn to be called after every change. Calls happen outside the
// session lock, so fn may query the session.
func (s *Session) Subscribe(fn func(Change)) (unsubscribe func()) {
	s.listenersMu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.listenersMu.Unlock()

	return func() {
		s.listenersMu.Lock()
		delete(s.listeners, id)
		s.listenersMu.Unlock()
	}
}

func (s *Session) applyLocked(index int, mark game.PlayerMark) error {
	if s.closed {
		return fmt.Errorf("%w: %w", ErrInvalidMove, ErrClosed)
	}
	if s.state == Terminal {
		return fmt.Errorf("%w: %w", ErrInvalidMove, ErrGameOver)
	}
	if !game.ValidCell(index) {
		return fmt.Errorf("%w: %w: %d", ErrInvalidMove, ErrOutOfRange, index)
	}
	if mark != s.markToMoveLocked() {
		return fmt.Errorf("%w: %w: %q", ErrInvalidMove, ErrNotYourTurn, mark)
	}
	if s.board[index] != game.None {
		return fmt.Errorf("%w: %w: %d", ErrInvalidMove, ErrCellOccupied, index)
	}

	s.board[index] = mark
	s.lastMove = index
	s.seq++
	s.generation++
	s.outcome = game.Evaluate(s.board)

	if s.outcome.IsTerminal() {
		s.state = Terminal
		s.recordOutcomeLocked()
		return nil
	}

	if s.turn == PlayerTurn {
		s.turn = ComputerTurn
		s.state = AwaitingComputerMove
	} else {
		s.turn = PlayerTurn
		s.state = AwaitingPlayerMove
	}
	return nil
}

func (s *Session) recordOutcomeLocked() {
	switch {
	case s.outcome.Status == game.Tie:
		s.stats.Ties++
	case s.outcome.Winner == PlayerMark:
		s.stats.PlayerWins++
	case s.outcome.Winner == ComputerMark:
		s.stats.ComputerWins++
	}
}

func (s *Session) markToMoveLocked() game.PlayerMark {
	if s.turn == PlayerTurn {
		return PlayerMark
	}
	return ComputerMark
}

// scheduleComputerLocked arms the computer's reply when the session just entered
// AwaitingComputerMove. Any previous timer belongs to an older generation.
func (s *Session) scheduleComputerLocked() {
	s.cancelPendingLocked()
	if s.state != AwaitingComputerMove {
		return
	}
	gen := s.generation
	s.pending = s.scheduler.AfterFunc(s.delay, func() {
		s.playComputerMove(gen)
	})
}

func (s *Session) cancelPendingLocked() {
	s.generation++
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
}

// playComputerMove runs on the scheduler's goroutine. It holds the session lock for
// the whole select-and-apply step so no player move can interleave.
func (s *Session) playComputerMove(gen uint64) {
	ctx := context.Background()

	s.mu.Lock()
	if gen != s.generation || s.closed || s.state != AwaitingComputerMove {
		s.mu.Unlock()
		return
	}
	s.pending = nil

	cell := s.selector.SelectMove(s.board, ComputerMark)
	if cell < 0 {
		// Ends the game as a tie without touching the counters.
		s.state = Terminal
		s.outcome = game.Outcome{Status: game.Tie}
		s.seq++
		snap := s.snapshotLocked()
		s.mu.Unlock()

		slog.WarnContext(ctx, "computer found no empty cell", "session.id", s.id)
		s.notify(Change{Kind: ChangeNoMove, Snapshot: snap})
		return
	}
	if err := s.applyLocked(cell, ComputerMark); err != nil {
		slog.ErrorContext(ctx, "computer move rejected", "session.id", s.id, "move.cell", cell, "error", err)
		s.mu.Unlock()
		return
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	slog.DebugContext(ctx, "computer moved", "session.id", s.id, "move.cell", cell, "session.state", snap.State)
	s.notify(Change{Kind: ChangeMove, Snapshot: snap})
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		ID:       s.id,
		Seq:      s.seq,
		Board:    s.board,
		Turn:     s.turn,
		State:    s.state,
		Outcome:  s.outcome,
		Stats:    s.stats,
		LastMove: s.lastMove,
	}
}

func (s *Session) notify(change Change) {
	s.listenersMu.Lock()
	fns := make([]func(Change), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.listenersMu.Unlock()

	for _, fn := range fns {
		fn(change)
	}
}
