// Command tictactoe plays one game in the terminal, against the bot or a
// friend on the same keyboard.
package main

import (
    "errors"
    "flag"
    "fmt"
    "io"
    "os"

    tea "github.com/charmbracelet/bubbletea"
    "github.com/jaminalder/tictactoe-bots/internal/app"
    "github.com/jaminalder/tictactoe-bots/internal/bot"
    "github.com/jaminalder/tictactoe-bots/internal/config"
    "github.com/jaminalder/tictactoe-bots/internal/logging"
    "github.com/jaminalder/tictactoe-bots/internal/tui"
)

func main() {
    if err := run(os.Args[1:]); err != nil {
        if errors.Is(err, flag.ErrHelp) {
            return
        }
        fmt.Fprintln(os.Stderr, "tictactoe:", err)
        os.Exit(1)
    }
}

func run(args []string) error {
    cfg, err := config.Load("tictactoe", args, os.Getenv, os.Stderr)
    if err != nil {
        return err
    }

    // the terminal belongs to the UI, so logs only go to a file
    var out io.Writer = io.Discard
    if cfg.LogFile != "" {
        f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
        if err != nil {
            return fmt.Errorf("open log file: %w", err)
        }
        defer f.Close()
        out = f
    }
    log, err := logging.New(out, cfg.LogLevel, cfg.LogFormat)
    if err != nil {
        return err
    }

    svc := app.NewService(
        app.WithBot(bot.New(bot.WithLogger(log))),
        app.WithThinkDelay(cfg.ThinkMin, cfg.ThinkMax),
        app.WithLogger(log),
    )
    m, err := tui.New(svc, cfg.GameOptions())
    if err != nil {
        return err
    }
    _, err = tea.NewProgram(m).Run()
    return err
}
