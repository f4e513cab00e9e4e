package web

import (
    "encoding/json"
    "errors"
    "fmt"
    "io"
    "log/slog"
    "net/http"
    "strconv"
    "time"

    "github.com/go-chi/chi/v5"
    "github.com/jaminalder/tictactoe-bots/internal/app"
    "github.com/jaminalder/tictactoe-bots/internal/bot"
    "github.com/jaminalder/tictactoe-bots/internal/domain"
)

type handlers struct {
    svc        *app.Service
    bot        *bot.Bot
    tpl        *templates
    log        *slog.Logger
    difficulty bot.Difficulty
    ping       time.Duration
}

func (h *handlers) renderBoard(gs app.GameState, errMsg string) []byte {
    return renderTemplate(h.tpl.board, "", newBoardView(gs, errMsg))
}

func (h *handlers) index(w http.ResponseWriter, r *http.Request) {
    w.Header().Set("Content-Type", "text/html; charset=utf-8")
    w.WriteHeader(http.StatusOK)
    _, _ = w.Write(renderTemplate(h.tpl.index, "", indexView{Difficulties: bot.Difficulties, Default: h.difficulty}))
}

func (h *handlers) create(w http.ResponseWriter, r *http.Request) {
    opts, err := h.gameOptions(r)
    if err != nil {
        http.Error(w, err.Error(), http.StatusBadRequest)
        return
    }
    gs, err := h.svc.CreateGame(opts)
    if err != nil {
        http.Error(w, err.Error(), http.StatusBadRequest)
        return
    }
    pid := ensurePlayerCookie(w, r)
    _, _, _ = h.svc.Join(gs.ID, pid)
    http.Redirect(w, r, "/game/"+gs.ID, http.StatusSeeOther)
}

func (h *handlers) gameOptions(r *http.Request) (app.GameOptions, error) {
    _ = r.ParseForm()
    opts := app.GameOptions{
        Mode:       app.ModeBot,
        Difficulty: h.difficulty,
        Symbol:     domain.X,
        BotStarts:  r.Form.Get("bot_starts") != "",
        Shared:     r.Form.Get("shared") != "",
        P1Name:     r.Form.Get("p1"),
        P2Name:     r.Form.Get("p2"),
    }
    var err error
    if v := r.Form.Get("mode"); v != "" {
        if opts.Mode, err = app.ParseMode(v); err != nil {
            return opts, err
        }
    }
    if v := r.Form.Get("difficulty"); v != "" {
        if opts.Difficulty, err = bot.ParseDifficulty(v); err != nil {
            return opts, err
        }
    }
    if v := r.Form.Get("symbol"); v != "" {
        if opts.Symbol, err = domain.ParseCell(v); err != nil {
            return opts, err
        }
    }
    return opts, nil
}

func (h *handlers) view(w http.ResponseWriter, r *http.Request) {
    id := chi.URLParam(r, "id")
    // ensure cookie and auto-claim seat
    pid := ensurePlayerCookie(w, r)
    _, _, _ = h.svc.Join(id, pid)

    gs, ok := h.svc.Get(id)
    if !ok {
        http.NotFound(w, r)
        return
    }
    data := struct {
        ID      string
        Players string
        Board   boardView
    }{
        ID:      gs.ID,
        Players: fmt.Sprintf("%s (X) vs %s (O)", gs.XName, gs.OName),
        Board:   newBoardView(*gs, ""),
    }
    if gs.Mode == app.ModeBot {
        data.Players += " - " + gs.Difficulty.String()
    }

    w.Header().Set("Content-Type", "text/html; charset=utf-8")
    w.WriteHeader(http.StatusOK)
    _, _ = w.Write(renderTemplate(h.tpl.game, "", data))
}

func (h *handlers) join(w http.ResponseWriter, r *http.Request) {
    id := chi.URLParam(r, "id")
    pid := ensurePlayerCookie(w, r)
    _, gs, err := h.svc.Join(id, pid)
    if err != nil || gs == nil {
        http.NotFound(w, r)
        return
    }
    w.Header().Set("Content-Type", "text/html; charset=utf-8")
    _, _ = w.Write(h.renderBoard(*gs, ""))
}

func (h *handlers) play(w http.ResponseWriter, r *http.Request) {
    id := chi.URLParam(r, "id")
    pid := ensurePlayerCookie(w, r)
    _ = r.ParseForm()
    cell := -1
    if v := r.Form.Get("cell"); v != "" {
        if n, err := strconv.Atoi(v); err == nil {
            cell = n
        }
    } else if rs, cs := r.Form.Get("r"), r.Form.Get("c"); rs != "" && cs != "" {
        ri, errR := strconv.Atoi(rs)
        ci, errC := strconv.Atoi(cs)
        if errR == nil && errC == nil && ri >= 0 && ri < 3 && ci >= 0 && ci < 3 {
            cell = ri*3 + ci
        }
    }
    gs, err := h.svc.Play(id, pid, cell)
    h.writeBoard(w, r, id, gs, err)
}

func (h *handlers) rematch(w http.ResponseWriter, r *http.Request) {
    id := chi.URLParam(r, "id")
    pid := ensurePlayerCookie(w, r)
    gs, err := h.svc.Rematch(id, pid)
    h.writeBoard(w, r, id, gs, err)
}

func (h *handlers) writeBoard(w http.ResponseWriter, r *http.Request, id string, gs *app.GameState, err error) {
    var errMsg string
    if err != nil {
        if gs == nil {
            if g, ok := h.svc.Get(id); ok {
                gs = g
            }
        }
        errMsg = userMessage(err)
    }
    if gs == nil {
        http.NotFound(w, r)
        return
    }
    w.Header().Set("Content-Type", "text/html; charset=utf-8")
    _, _ = w.Write(h.renderBoard(*gs, errMsg))
}

func userMessage(err error) string {
    switch {
    case errors.Is(err, app.ErrNotYourTurn):
        return "Not your turn"
    case errors.Is(err, app.ErrNotAPlayer):
        return "You are a spectator"
    case errors.Is(err, app.ErrBotThinking):
        return "Bot is thinking"
    case errors.Is(err, domain.ErrOccupied):
        return "Cell is occupied"
    case errors.Is(err, domain.ErrOutOfBounds):
        return "Out of bounds"
    case errors.Is(err, domain.ErrGameOver):
        return "Game is over"
    }
    return "Invalid move"
}

var heartbeatInterval = 15 * time.Second

func (h *handlers) events(w http.ResponseWriter, r *http.Request) {
    id := chi.URLParam(r, "id")
    if _, ok := h.svc.Get(id); !ok {
        http.NotFound(w, r)
        return
    }
    w.Header().Set("Content-Type", "text/event-stream")
    w.Header().Set("Cache-Control", "no-cache")
    w.Header().Set("X-Accel-Buffering", "no")
    // In tests or non-EventSource requests, just acknowledge headers and return
    if r.Header.Get("Accept") != "text/event-stream" {
        w.WriteHeader(http.StatusOK)
        return
    }
    flusher, ok := w.(http.Flusher)
    if !ok {
        w.WriteHeader(http.StatusOK)
        return
    }
    ctx := r.Context()
    ch, unsub, err := h.svc.Subscribe(ctx, id)
    if err != nil {
        http.NotFound(w, r)
        return
    }
    defer unsub()
    // read after subscribing so no move falls between the two
    last, ok := h.svc.Get(id)
    if !ok {
        http.NotFound(w, r)
        return
    }
    ticker := time.NewTicker(heartbeatInterval)
    defer ticker.Stop()
    writeSSE(w, "board", h.renderBoard(*last, ""))
    flusher.Flush()
    for {
        select {
        case <-ctx.Done():
            return
        case <-ticker.C:
            _, _ = io.WriteString(w, ": ping\n\n")
            flusher.Flush()
        case gs, ok := <-ch:
            if !ok {
                return
            }
            if gs.Behind(*last) {
                continue
            }
            *last = gs
            writeSSE(w, "board", h.renderBoard(gs, ""))
            flusher.Flush()
        }
    }
}

// writeSSE emits one event; multi-line payloads become several data lines.
func writeSSE(w io.Writer, event string, payload []byte) {
    _, _ = fmt.Fprintf(w, "event: %s\n", event)
    start := 0
    for i, b := range payload {
        if b == '\n' {
            _, _ = fmt.Fprintf(w, "data: %s\n", payload[start:i])
            start = i + 1
        }
    }
    _, _ = fmt.Fprintf(w, "data: %s\n\n", payload[start:])
}

func (h *handlers) healthz(w http.ResponseWriter, r *http.Request) {
    w.Header().Set("Content-Type", "text/plain; charset=utf-8")
    _, _ = io.WriteString(w, "ok\n")
}

type moveRequest struct {
    Board      string `json:"board"`
    Mark       string `json:"mark"`
    Difficulty string `json:"difficulty"`
}

type moveResponse struct {
    Cell  int    `json:"cell"`
    Error string `json:"error,omitempty"`
}

// apiMove exposes the bot dispatcher to clients that keep their own board.
func (h *handlers) apiMove(w http.ResponseWriter, r *http.Request) {
    var req moveRequest
    if err := json.NewDecoder(io.LimitReader(r.Body, 1<<12)).Decode(&req); err != nil {
        writeJSON(w, http.StatusBadRequest, moveResponse{Cell: -1, Error: "malformed request"})
        return
    }
    board, err := domain.ParseBoard(req.Board)
    if err != nil {
        writeJSON(w, http.StatusBadRequest, moveResponse{Cell: -1, Error: err.Error()})
        return
    }
    mark, err := domain.ParseCell(req.Mark)
    if err != nil || !mark.IsMark() {
        writeJSON(w, http.StatusBadRequest, moveResponse{Cell: -1, Error: "mark must be X or O"})
        return
    }
    d := h.difficulty
    if req.Difficulty != "" {
        if d, err = bot.ParseDifficulty(req.Difficulty); err != nil {
            writeJSON(w, http.StatusBadRequest, moveResponse{Cell: -1, Error: err.Error()})
            return
        }
    }
    idx, err := h.bot.ChooseMove(board, mark, d)
    switch {
    case errors.Is(err, domain.ErrNoMoveAvailable):
        writeJSON(w, http.StatusConflict, moveResponse{Cell: -1, Error: err.Error()})
        return
    case err != nil:
        writeJSON(w, http.StatusBadRequest, moveResponse{Cell: -1, Error: err.Error()})
        return
    }
    h.log.Debug("api move", "board", board.String(), "mark", mark.String(), "difficulty", d.String(), "cell", idx)
    writeJSON(w, http.StatusOK, moveResponse{Cell: idx})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
    w.Header().Set("Content-Type", "application/json")
    w.WriteHeader(status)
    _ = json.NewEncoder(w).Encode(v)
}
