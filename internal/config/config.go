// Package config loads settings for the server and terminal binaries from
// flags, with TICTACTOE_* environment variables as defaults.
package config

import (
    "errors"
    "flag"
    "fmt"
    "io"
    "strings"
    "time"

    "github.com/jaminalder/tictactoe-bots/internal/app"
    "github.com/jaminalder/tictactoe-bots/internal/bot"
    "github.com/jaminalder/tictactoe-bots/internal/domain"
)

// Config holds every setting either binary reads.
type Config struct {
    Addr           string
    LogLevel       string
    LogFormat      string
    LogFile        string
    ThinkMin       time.Duration
    ThinkMax       time.Duration
    WSPingInterval time.Duration

    Mode       app.Mode
    Difficulty bot.Difficulty
    Symbol     domain.Cell
    BotStarts  bool
}

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// Default has the bot reply after 0.5 to 1 second.
func Default() Config {
    return Config{
        Addr:           ":8080",
        LogLevel:       "info",
        LogFormat:      "text",
        ThinkMin:       500 * time.Millisecond,
        ThinkMax:       time.Second,
        WSPingInterval: 30 * time.Second,
        Mode:           app.ModeBot,
        Difficulty:     bot.Medium,
        Symbol:         domain.X,
    }
}

// Load parses args (without the program name). getenv may be nil.
func Load(name string, args []string, getenv func(string) string, out io.Writer) (Config, error) {
    if getenv == nil {
        getenv = func(string) string { return "" }
    }
    cfg := Default()
    env := func(key, def string) string {
        if v := getenv("TICTACTOE_" + key); v != "" {
            return v
        }
        return def
    }

    fs := flag.NewFlagSet(name, flag.ContinueOnError)
    if out != nil {
        fs.SetOutput(out)
    }
    fs.StringVar(&cfg.Addr, "addr", env("ADDR", cfg.Addr), "HTTP listen address")
    fs.StringVar(&cfg.LogLevel, "log-level", env("LOG_LEVEL", cfg.LogLevel), "debug, info, warn or error")
    fs.StringVar(&cfg.LogFormat, "log-format", env("LOG_FORMAT", cfg.LogFormat), "text or json")
    fs.StringVar(&cfg.LogFile, "log-file", env("LOG_FILE", cfg.LogFile), "write logs to this file instead of stderr")
    thinkMin := fs.String("think-min", env("THINK_MIN", cfg.ThinkMin.String()), "shortest bot thinking delay")
    thinkMax := fs.String("think-max", env("THINK_MAX", cfg.ThinkMax.String()), "longest bot thinking delay")
    ping := fs.String("ws-ping", env("WS_PING", cfg.WSPingInterval.String()), "idle WebSocket ping interval")
    mode := fs.String("mode", env("MODE", cfg.Mode.String()), "bot or friend")
    difficulty := fs.String("difficulty", env("DIFFICULTY", cfg.Difficulty.String()), "medium, high or pro")
    symbol := fs.String("symbol", env("SYMBOL", cfg.Symbol.String()), "player 1 symbol, X or O")
    fs.BoolVar(&cfg.BotStarts, "bot-starts", env("BOT_STARTS", "") == "true", "let the bot make the first move")
    if err := fs.Parse(args); err != nil {
        return cfg, err
    }

    var err error
    if cfg.ThinkMin, err = time.ParseDuration(*thinkMin); err != nil {
        return cfg, fmt.Errorf("%w: think-min: %v", ErrInvalid, err)
    }
    if cfg.ThinkMax, err = time.ParseDuration(*thinkMax); err != nil {
        return cfg, fmt.Errorf("%w: think-max: %v", ErrInvalid, err)
    }
    if cfg.WSPingInterval, err = time.ParseDuration(*ping); err != nil {
        return cfg, fmt.Errorf("%w: ws-ping: %v", ErrInvalid, err)
    }
    if cfg.Mode, err = app.ParseMode(*mode); err != nil {
        return cfg, fmt.Errorf("%w: %v", ErrInvalid, err)
    }
    if cfg.Difficulty, err = bot.ParseDifficulty(*difficulty); err != nil {
        return cfg, fmt.Errorf("%w: %v", ErrInvalid, err)
    }
    if cfg.Symbol, err = domain.ParseCell(*symbol); err != nil || !cfg.Symbol.IsMark() {
        return cfg, fmt.Errorf("%w: symbol %q", ErrInvalid, *symbol)
    }
    return cfg, cfg.Validate()
}

// Validate checks ranges and enumerations.
func (c Config) Validate() error {
    switch {
    case c.ThinkMin < 0 || c.ThinkMax < 0:
        return fmt.Errorf("%w: negative thinking delay", ErrInvalid)
    case c.ThinkMax < c.ThinkMin:
        return fmt.Errorf("%w: think-max %v below think-min %v", ErrInvalid, c.ThinkMax, c.ThinkMin)
    case c.WSPingInterval <= 0:
        return fmt.Errorf("%w: ws-ping must be positive", ErrInvalid)
    }
    switch strings.ToLower(c.LogFormat) {
    case "text", "json":
    default:
        return fmt.Errorf("%w: log-format %q", ErrInvalid, c.LogFormat)
    }
    return nil
}

// GameOptions turns the terminal settings into options for a new game.
func (c Config) GameOptions() app.GameOptions {
    return app.GameOptions{
        Mode:       c.Mode,
        Difficulty: c.Difficulty,
        Symbol:     c.Symbol,
        BotStarts:  c.BotStarts,
    }
}
