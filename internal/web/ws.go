package web

import (
    "context"
    "net/http"
    "time"

    "github.com/go-chi/chi/v5"
    "github.com/gorilla/websocket"
    "github.com/jaminalder/tictactoe-bots/internal/app"
    "github.com/jaminalder/tictactoe-bots/internal/domain"
)

type wsMessage struct {
    Type string    `json:"type"`
    Game *gameJSON `json:"game,omitempty"`
}

type gameJSON struct {
    ID         string `json:"id"`
    Board      string `json:"board"`
    Turn       string `json:"turn"`
    Over       bool   `json:"over"`
    Winner     string `json:"winner,omitempty"`
    Line       []int  `json:"line,omitempty"`
    Status     string `json:"status"`
    Thinking   bool   `json:"thinking"`
    Mode       string `json:"mode"`
    Difficulty string `json:"difficulty,omitempty"`
    Round      int    `json:"round"`
}

func toGameJSON(gs app.GameState) *gameJSON {
    out := &gameJSON{
        ID:       gs.ID,
        Board:    gs.Game.Board.String(),
        Turn:     gs.Game.Turn.String(),
        Over:     gs.Game.Over,
        Status:   gs.Status(),
        Thinking: gs.Thinking,
        Mode:     gs.Mode.String(),
        Round:    gs.Round,
    }
    if gs.Mode == app.ModeBot {
        out.Difficulty = gs.Difficulty.String()
    }
    if gs.Game.Over && gs.Game.Winner != domain.Empty {
        out.Winner = gs.Game.Winner.String()
        out.Line = gs.Game.Line[:]
    }
    return out
}

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

func (h *handlers) ws(w http.ResponseWriter, r *http.Request) {
    id := chi.URLParam(r, "id")
    if _, ok := h.svc.Get(id); !ok {
        http.NotFound(w, r)
        return
    }
    conn, err := upgrader.Upgrade(w, r, nil)
    if err != nil {
        return
    }
    defer conn.Close()

    ctx, cancel := context.WithCancel(r.Context())
    defer cancel()
    ch, unsub, err := h.svc.Subscribe(ctx, id)
    if err != nil {
        return
    }
    defer unsub()
    gs, ok := h.svc.Get(id)
    if !ok {
        return
    }

    // Reads only detect the peer going away.
    go func() {
        defer cancel()
        for {
            if _, _, err := conn.ReadMessage(); err != nil {
                return
            }
        }
    }()

    if err := conn.WriteJSON(wsMessage{Type: "state", Game: toGameJSON(*gs)}); err != nil {
        return
    }
    if err := writeWSWithHeartbeat(ctx, conn, ch, *gs, h.ping); err != nil {
        h.log.Debug("websocket closed", "game", id, "err", err)
    }
}

// writeWSWithHeartbeat forwards snapshots newer than last and pings when the
// socket has been idle.
func writeWSWithHeartbeat(ctx context.Context, conn *websocket.Conn, updates <-chan app.GameState, last app.GameState, idle time.Duration) error {
    ticker := time.NewTicker(idle)
    defer ticker.Stop()
    lastWrite := time.Now()

    for {
        select {
        case <-ctx.Done():
            return nil
        case gs, ok := <-updates:
            if !ok {
                return nil
            }
            if gs.Behind(last) {
                continue
            }
            last = gs
            if err := conn.WriteJSON(wsMessage{Type: "state", Game: toGameJSON(gs)}); err != nil {
                return err
            }
            lastWrite = time.Now()
        case <-ticker.C:
            if time.Since(lastWrite) < idle {
                continue
            }
            if err := conn.WriteJSON(wsMessage{Type: "ping"}); err != nil {
                return err
            }
            lastWrite = time.Now()
        }
    }
}
