package bot

import (
    "math/rand/v2"

    "github.com/jaminalder/tictactoe-bots/internal/domain"
)

// Rand picks an index in [0, n). *rand.Rand satisfies it.
type Rand interface {
    IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

const center = 4

var (
    corners = []int{0, 2, 6, 8}
    sides   = []int{1, 3, 5, 7}
)

// FindWinningMove returns the lowest empty index that completes a line for mark.
func FindWinningMove(b domain.Board, mark domain.Cell) (int, bool) {
    for i := range b {
        if b[i] != domain.Empty {
            continue
        }
        b[i] = mark
        win := domain.CheckWin(b, mark).IsWin
        b[i] = domain.Empty
        if win {
            return i, true
        }
    }
    return -1, false
}

// MediumMove wins if it can, blocks if it must, otherwise plays a random empty cell.
func MediumMove(b domain.Board, mark, opponent domain.Cell, rng Rand) (int, error) {
    if idx, ok := winOrBlock(b, mark, opponent); ok {
        return idx, nil
    }
    return pickRandom(b.EmptyIndices(), rng)
}

// HighMove adds positional preference to MediumMove: center, then a corner, then a side.
func HighMove(b domain.Board, mark, opponent domain.Cell, rng Rand) (int, error) {
    if idx, ok := winOrBlock(b, mark, opponent); ok {
        return idx, nil
    }
    if b[center] == domain.Empty {
        return center, nil
    }
    if free := freeOf(b, corners); len(free) > 0 {
        return pickRandom(free, rng)
    }
    if free := freeOf(b, sides); len(free) > 0 {
        return pickRandom(free, rng)
    }
    return MediumMove(b, mark, opponent, rng)
}

func winOrBlock(b domain.Board, mark, opponent domain.Cell) (int, bool) {
    if idx, ok := FindWinningMove(b, mark); ok {
        return idx, true
    }
    return FindWinningMove(b, opponent)
}

func freeOf(b domain.Board, idxs []int) []int {
    var out []int
    for _, i := range idxs {
        if b[i] == domain.Empty {
            out = append(out, i)
        }
    }
    return out
}

func pickRandom(idxs []int, rng Rand) (int, error) {
    if len(idxs) == 0 {
        return -1, domain.ErrNoMoveAvailable
    }
    if rng == nil {
        rng = globalRand{}
    }
    return idxs[rng.IntN(len(idxs))], nil
}
