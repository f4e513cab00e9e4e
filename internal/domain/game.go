package domain

import "errors"

// Game holds the current state of a Tic-Tac-Toe match.
type Game struct {
    Board   Board
    Starter Cell
    Turn    Cell
    Winner  Cell
    Line    WinLine
    Over    bool
    Moves   int
}

// Errors returned by game operations.
var (
    ErrOutOfBounds = errors.New("out of bounds")
    ErrOccupied    = errors.New("cell occupied")
    ErrGameOver    = errors.New("game over")
)

// New returns a new game with X to move.
func New() Game {
    return NewWithStarter(X)
}

// NewWithStarter returns a new game where starter moves first. Anything other than
// O starts with X.
func NewWithStarter(starter Cell) Game {
    if starter != O {
        starter = X
    }
    return Game{Starter: starter, Turn: starter}
}

// Reset clears the board and hands the first move back to the starter.
func (g *Game) Reset() {
    *g = NewWithStarter(g.Starter)
}

// Draw reports whether the game ended without a winner.
func (g Game) Draw() bool { return g.Over && g.Winner == Empty }

// PlayAt attempts to play the current turn at row r, column c (0..2).
func (g *Game) PlayAt(r, c int) error {
    if r < 0 || r > 2 || c < 0 || c > 2 {
        return ErrOutOfBounds
    }
    return g.Play(r*3 + c)
}

// Play attempts to play the current turn at cell index idx (0..8).
func (g *Game) Play(idx int) error {
    if g.Over {
        return ErrGameOver
    }
    if idx < 0 || idx >= len(g.Board) {
        return ErrOutOfBounds
    }
    if g.Board[idx] != Empty {
        return ErrOccupied
    }

    // Place the mark
    g.Board[idx] = g.Turn
    g.Moves++

    // Check for a win
    if res := CheckWin(g.Board, g.Turn); res.IsWin {
        g.Winner = g.Turn
        g.Line = res.Line
        g.Over = true
        return nil
    }

    // Check for draw
    if g.Board.IsFull() {
        g.Winner = Empty
        g.Over = true
        return nil
    }

    g.Turn = Opponent(g.Turn)
    return nil
}
