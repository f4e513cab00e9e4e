// Package bot picks moves for a computer opponent. Medium and High are greedy
// heuristics; Pro searches the full game tree.
package bot

import (
    "errors"
    "fmt"
    "io"
    "log/slog"
    "math/rand/v2"
    "strings"
    "sync"

    "github.com/jaminalder/tictactoe-bots/internal/domain"
)

// Difficulty selects a move strategy.
type Difficulty uint8

const (
    Medium Difficulty = iota + 1
    High
    Pro
)

// ErrUnknownDifficulty is returned for a zero or out-of-range Difficulty.
var ErrUnknownDifficulty = errors.New("unknown difficulty")

// Difficulties lists every tier from easiest to hardest.
var Difficulties = []Difficulty{Medium, High, Pro}

func (d Difficulty) String() string {
    switch d {
    case Medium:
        return "medium"
    case High:
        return "high"
    case Pro:
        return "pro"
    default:
        return fmt.Sprintf("Difficulty(%d)", uint8(d))
    }
}

// ParseDifficulty maps "medium", "high" and "pro" (any case) to a Difficulty.
func ParseDifficulty(s string) (Difficulty, error) {
    switch strings.ToLower(strings.TrimSpace(s)) {
    case "medium":
        return Medium, nil
    case "high":
        return High, nil
    case "pro":
        return Pro, nil
    }
    return 0, fmt.Errorf("%w: %q", ErrUnknownDifficulty, s)
}

// Bot dispatches to a strategy by difficulty. The zero value is not usable; call New.
type Bot struct {
    mu  sync.Mutex
    rng Rand
    log *slog.Logger
}

// Option configures a Bot.
type Option func(*Bot)

// WithRand fixes the random source used for tie-breaking among equal moves.
func WithRand(r Rand) Option { return func(b *Bot) { b.rng = r } }

// WithSeed is WithRand over a PCG source seeded with seed.
func WithSeed(seed uint64) Option {
    return WithRand(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

// WithLogger sets the logger used for strategy fallbacks.
func WithLogger(l *slog.Logger) Option { return func(b *Bot) { b.log = l } }

// New returns a Bot using the process-wide random source unless overridden.
func New(opts ...Option) *Bot {
    b := &Bot{rng: globalRand{}, log: slog.New(slog.NewTextHandler(io.Discard, nil))}
    for _, o := range opts {
        o(b)
    }
    return b
}

var defaultBot = New()

// ChooseMove picks a cell for mark on board using the default Bot.
func ChooseMove(board domain.Board, mark domain.Cell, d Difficulty) (int, error) {
    return defaultBot.ChooseMove(board, mark, d)
}

// ChooseMove picks a cell for mark. The board must be valid, not full and not
// already won.
func (b *Bot) ChooseMove(board domain.Board, mark domain.Cell, d Difficulty) (int, error) {
    if err := board.Validate(); err != nil {
        return -1, err
    }
    if !mark.IsMark() {
        return -1, fmt.Errorf("%w: bot mark %v", domain.ErrInvalidBoard, mark)
    }
    opponent := domain.Opponent(mark)
    if board.IsFull() || domain.CheckWin(board, mark).IsWin || domain.CheckWin(board, opponent).IsWin {
        return -1, domain.ErrNoMoveAvailable
    }

    b.mu.Lock()
    defer b.mu.Unlock()
    switch d {
    case Medium:
        return MediumMove(board, mark, opponent, b.rng)
    case High:
        return HighMove(board, mark, opponent, b.rng)
    case Pro:
        if idx, ok := BestMove(board, mark, b.rng); ok {
            return idx, nil
        }
        b.log.Warn("minimax found no move, using high strategy", "board", board.String(), "mark", mark.String())
        return HighMove(board, mark, opponent, b.rng)
    }
    return -1, fmt.Errorf("%w: %v", ErrUnknownDifficulty, d)
}
