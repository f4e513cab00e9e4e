package app

import (
    "fmt"
    "strings"

    "github.com/jaminalder/tictactoe-bots/internal/bot"
    "github.com/jaminalder/tictactoe-bots/internal/domain"
)

// Mode says who sits opposite player 1.
type Mode uint8

const (
    ModeFriend Mode = iota + 1
    ModeBot
)

func (m Mode) String() string {
    switch m {
    case ModeFriend:
        return "friend"
    case ModeBot:
        return "bot"
    default:
        return fmt.Sprintf("Mode(%d)", uint8(m))
    }
}

// ParseMode accepts "bot" and "friend".
func ParseMode(s string) (Mode, error) {
    switch strings.ToLower(strings.TrimSpace(s)) {
    case "bot":
        return ModeBot, nil
    case "friend":
        return ModeFriend, nil
    }
    return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// GameOptions configures a new game. Player 1 plays Symbol and moves first
// unless BotStarts is set. A friend game is played at one keyboard unless
// Shared is set, in which case the second seat goes to whoever joins next.
type GameOptions struct {
    Mode       Mode
    Difficulty bot.Difficulty
    Symbol     domain.Cell
    BotStarts  bool
    Shared     bool
    P1Name     string
    P2Name     string
}

func (o GameOptions) withDefaults() (GameOptions, error) {
    if o.Mode == 0 {
        o.Mode = ModeFriend
    }
    if o.Mode != ModeFriend && o.Mode != ModeBot {
        return o, fmt.Errorf("%w: %v", ErrUnknownMode, o.Mode)
    }
    if o.Symbol == domain.Empty {
        o.Symbol = domain.X
    }
    if !o.Symbol.IsMark() {
        return o, fmt.Errorf("%w: symbol %v", domain.ErrInvalidBoard, o.Symbol)
    }
    if o.Mode == ModeBot {
        if _, err := bot.ParseDifficulty(o.Difficulty.String()); err != nil {
            return o, err
        }
        o.P1Name, o.P2Name = "You", "Bot"
        o.Shared = false
        return o, nil
    }
    o.BotStarts = false
    o.Difficulty = 0
    if strings.TrimSpace(o.P1Name) == "" {
        o.P1Name = "Player 1"
    }
    if strings.TrimSpace(o.P2Name) == "" {
        o.P2Name = "Player 2"
    }
    return o, nil
}
