package logging

import (
    "fmt"
    "io"
    "log/slog"
    "net/http"
    "strings"
    "time"

    "github.com/go-chi/chi/v5/middleware"
)

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(s string) (slog.Level, error) {
    var l slog.Level
    if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
        return slog.LevelInfo, fmt.Errorf("log level %q: %w", s, err)
    }
    return l, nil
}

// New builds a text or JSON logger writing to w.
func New(w io.Writer, level, format string) (*slog.Logger, error) {
    l, err := ParseLevel(level)
    if err != nil {
        return nil, err
    }
    opts := &slog.HandlerOptions{Level: l}
    switch strings.ToLower(format) {
    case "json":
        return slog.New(slog.NewJSONHandler(w, opts)), nil
    case "", "text":
        return slog.New(slog.NewTextHandler(w, opts)), nil
    }
    return nil, fmt.Errorf("unknown log format %q", format)
}

// Requests logs one line per HTTP request with the chi request id.
func Requests(log *slog.Logger) func(http.Handler) http.Handler {
    return func(next http.Handler) http.Handler {
        return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
            ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
            start := time.Now()
            defer func() {
                log.Debug("request",
                    "id", middleware.GetReqID(r.Context()),
                    "method", r.Method,
                    "path", r.URL.Path,
                    "status", ww.Status(),
                    "bytes", ww.BytesWritten(),
                    "elapsed", time.Since(start),
                )
            }()
            next.ServeHTTP(ww, r)
        })
    }
}
