package bot

import (
    "errors"
    "testing"

    "github.com/jaminalder/tictactoe-bots/internal/domain"
)

func TestParseDifficulty(t *testing.T) {
    for _, d := range Difficulties {
        got, err := ParseDifficulty(d.String())
        if err != nil || got != d {
            t.Fatalf("ParseDifficulty(%q) = %v, %v", d.String(), got, err)
        }
    }
    if got, err := ParseDifficulty(" PRO "); err != nil || got != Pro {
        t.Fatalf("expected case-insensitive parse, got %v, %v", got, err)
    }
    if _, err := ParseDifficulty("easy"); !errors.Is(err, ErrUnknownDifficulty) {
        t.Fatalf("expected ErrUnknownDifficulty, got %v", err)
    }
}

func TestChooseMoveDispatch(t *testing.T) {
    b := New(WithRand(fixedRand(0)))
    // X to move, center taken by O, no threats.
    board := board(t, "X../.O./...")
    tests := []struct {
        d    Difficulty
        want int
    }{
        // medium: random empty cell, first with fixedRand(0)
        {d: Medium, want: 1},
        // high: center taken, first free corner
        {d: High, want: 2},
    }
    for _, tc := range tests {
        got, err := b.ChooseMove(board, domain.X, tc.d)
        if err != nil {
            t.Fatalf("%v: unexpected error: %v", tc.d, err)
        }
        if got != tc.want {
            t.Fatalf("%v: got %d, want %d", tc.d, got, tc.want)
        }
    }
    got, err := b.ChooseMove(domain.Board{}, domain.X, Pro)
    if err != nil || got != 4 {
        t.Fatalf("pro on empty board: got %d, %v", got, err)
    }
}

func TestChooseMoveErrors(t *testing.T) {
    b := New(WithRand(fixedRand(0)))
    var bad domain.Board
    bad[2] = domain.Cell(9)
    tests := []struct {
        name  string
        board domain.Board
        mark  domain.Cell
        d     Difficulty
        want  error
    }{
        {name: "full board", board: board(t, "XOX/XOO/OXX"), mark: domain.X, d: Medium, want: domain.ErrNoMoveAvailable},
        {name: "already won", board: board(t, "XXX/OO./..."), mark: domain.O, d: Pro, want: domain.ErrNoMoveAvailable},
        {name: "bad cell", board: bad, mark: domain.X, d: High, want: domain.ErrInvalidBoard},
        {name: "empty mark", board: domain.Board{}, mark: domain.Empty, d: High, want: domain.ErrInvalidBoard},
        {name: "zero difficulty", board: domain.Board{}, mark: domain.X, d: 0, want: ErrUnknownDifficulty},
        {name: "out of range difficulty", board: domain.Board{}, mark: domain.X, d: Difficulty(42), want: ErrUnknownDifficulty},
    }
    for _, tc := range tests {
        t.Run(tc.name, func(t *testing.T) {
            if _, err := b.ChooseMove(tc.board, tc.mark, tc.d); !errors.Is(err, tc.want) {
                t.Fatalf("expected %v, got %v", tc.want, err)
            }
        })
    }
}

// Every reachable non-terminal position, every tier: the chosen cell is empty.
func TestChooseMoveAlwaysLegal(t *testing.T) {
    b := New(WithSeed(7))
    seen := make(map[domain.Board]bool)
    var walk func(g domain.Game)
    walk = func(g domain.Game) {
        if g.Over || seen[g.Board] {
            return
        }
        seen[g.Board] = true
        for _, d := range Difficulties {
            idx, err := b.ChooseMove(g.Board, g.Turn, d)
            if err != nil {
                t.Fatalf("%v on %s: %v", d, g.Board, err)
            }
            if idx < 0 || idx > 8 || g.Board[idx] != domain.Empty {
                t.Fatalf("%v on %s chose %d", d, g.Board, idx)
            }
        }
        for _, idx := range g.Board.EmptyIndices() {
            next := g
            _ = next.Play(idx)
            walk(next)
        }
    }
    walk(domain.New())
    if len(seen) < 4000 {
        t.Fatalf("expected to visit every reachable position, visited %d", len(seen))
    }
}

func TestProNeverLosesToHeuristics(t *testing.T) {
    b := New(WithSeed(42))
    for _, opp := range []Difficulty{Medium, High, Pro} {
        for _, proMark := range []domain.Cell{domain.X, domain.O} {
            for round := 0; round < 20; round++ {
                g := domain.New()
                for !g.Over {
                    d := opp
                    if g.Turn == proMark {
                        d = Pro
                    }
                    idx, err := b.ChooseMove(g.Board, g.Turn, d)
                    if err != nil {
                        t.Fatalf("%v: %v", d, err)
                    }
                    if err := g.Play(idx); err != nil {
                        t.Fatalf("play %d: %v", idx, err)
                    }
                }
                if g.Winner == domain.Opponent(proMark) {
                    t.Fatalf("pro as %v lost to %v: %s", proMark, opp, g.Board)
                }
            }
        }
    }
}

func TestPackageChooseMove(t *testing.T) {
    idx, err := ChooseMove(board(t, "XX./.O./..."), domain.O, High)
    if err != nil || idx != 2 {
        t.Fatalf("got %d, %v, want block at 2", idx, err)
    }
}
