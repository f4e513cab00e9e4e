// Command tictactoe-server serves the browser game, the live game streams and
// the JSON move API.
package main

import (
    "context"
    "errors"
    "flag"
    "fmt"
    "io"
    "net"
    "net/http"
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/jaminalder/tictactoe-bots/internal/app"
    "github.com/jaminalder/tictactoe-bots/internal/bot"
    "github.com/jaminalder/tictactoe-bots/internal/config"
    "github.com/jaminalder/tictactoe-bots/internal/logging"
    "github.com/jaminalder/tictactoe-bots/internal/web"
)

func main() {
    if err := run(os.Args[1:]); err != nil {
        if errors.Is(err, flag.ErrHelp) {
            return
        }
        fmt.Fprintln(os.Stderr, "tictactoe-server:", err)
        os.Exit(1)
    }
}

func run(args []string) error {
    cfg, err := config.Load("tictactoe-server", args, os.Getenv, os.Stderr)
    if err != nil {
        return err
    }

    var out io.Writer = os.Stderr
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

    b := bot.New(bot.WithLogger(log))
    svc := app.NewService(
        app.WithBot(b),
        app.WithThinkDelay(cfg.ThinkMin, cfg.ThinkMax),
        app.WithLogger(log),
    )
    handler := web.NewServer(svc,
        web.WithLogger(log),
        web.WithBot(b),
        web.WithDefaultDifficulty(cfg.Difficulty),
        web.WithPingInterval(cfg.WSPingInterval),
    )

    server := newHTTPServer(cfg.Addr, handler)
    errCh := make(chan error, 1)
    go func() {
        log.Info("listening", "addr", cfg.Addr)
        if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
            errCh <- err
        }
        close(errCh)
    }()

    ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
    defer stop()
    select {
    case err := <-errCh:
        return err
    case <-ctx.Done():
        log.Info("shutdown signal received")
    }

    shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer cancel()
    if err := server.Shutdown(shutdownCtx); err != nil {
        log.Warn("graceful shutdown failed", "err", err)
        return server.Close()
    }
    return nil
}

// newHTTPServer ties every request context to the server lifetime so open
// SSE and WebSocket streams end as soon as Shutdown starts.
func newHTTPServer(addr string, h http.Handler) *http.Server {
    baseCtx, cancel := context.WithCancel(context.Background())
    server := &http.Server{
        Addr:              addr,
        Handler:           h,
        ReadHeaderTimeout: 10 * time.Second,
        BaseContext:       func(net.Listener) context.Context { return baseCtx },
    }
    server.RegisterOnShutdown(cancel)
    return server
}
