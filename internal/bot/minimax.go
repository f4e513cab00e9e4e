package bot

import (
    "math"

    "github.com/jaminalder/tictactoe-bots/internal/domain"
)

const winScore = 10

// BestMove runs a full minimax search for mark. The first two plies use fixed
// openings. ok is false only if no index could be scored.
func BestMove(b domain.Board, mark domain.Cell, rng Rand) (idx int, ok bool) {
    opponent := domain.Opponent(mark)

    switch b.Count(domain.Empty) {
    case 9:
        return center, true
    case 8:
        if b[center] == domain.Empty {
            return center, true
        }
        if free := freeOf(b, corners); len(free) > 0 {
            i, err := pickRandom(free, rng)
            return i, err == nil
        }
    }

    best := math.MinInt
    idx = -1
    for i := range b {
        if b[i] != domain.Empty {
            continue
        }
        b[i] = mark
        s := Score(b, 0, false, mark, opponent)
        b[i] = domain.Empty
        if s > best {
            best = s
            idx = i
        }
    }
    return idx, idx >= 0
}

// Score evaluates b from mark's point of view. depth counts plies since the move
// under evaluation; wins score 10-depth and losses depth-10 so faster wins and
// slower losses are preferred.
func Score(b domain.Board, depth int, maximizing bool, mark, opponent domain.Cell) int {
    if domain.CheckWin(b, mark).IsWin {
        return winScore - depth
    }
    if domain.CheckWin(b, opponent).IsWin {
        return -winScore + depth
    }
    if b.IsFull() {
        return 0
    }

    if maximizing {
        best := math.MinInt
        for i := range b {
            if b[i] != domain.Empty {
                continue
            }
            b[i] = mark
            best = max(best, Score(b, depth+1, false, mark, opponent))
            b[i] = domain.Empty
        }
        return best
    }

    best := math.MaxInt
    for i := range b {
        if b[i] != domain.Empty {
            continue
        }
        b[i] = opponent
        best = min(best, Score(b, depth+1, true, mark, opponent))
        b[i] = domain.Empty
    }
    return best
}
