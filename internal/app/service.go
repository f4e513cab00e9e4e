package app

import (
    "context"
    "errors"
    "fmt"
    "io"
    "log/slog"
    "math/rand/v2"
    "sync"
    "time"

    "github.com/jaminalder/tictactoe-bots/internal/bot"
    "github.com/jaminalder/tictactoe-bots/internal/domain"
)

// Errors exposed by the service layer.
var (
    ErrNotFound    = errors.New("game not found")
    ErrNotYourTurn = errors.New("not your turn")
    ErrNotAPlayer  = errors.New("not a player")
    ErrBotThinking = errors.New("bot is thinking")
    ErrUnknownMode = errors.New("unknown game mode")
)

// GameState is the in-memory state tracked per game.
type GameState struct {
    ID         string
    Game       domain.Game
    Mode       Mode
    Difficulty bot.Difficulty
    P1Mark     domain.Cell
    BotMark    domain.Cell
    Shared     bool
    X          string
    O          string
    XName      string
    OName      string
    Thinking   bool
    Round      int
    Created    time.Time
    Updated    time.Time
}

// NameFor returns the display name of whoever plays mark.
func (gs GameState) NameFor(mark domain.Cell) string {
    if mark == domain.O {
        return gs.OName
    }
    return gs.XName
}

// SeatOf returns the mark held by playerID, or Empty for spectators. A
// hot-seat player holding both marks gets player 1's mark.
func (gs GameState) SeatOf(playerID string) domain.Cell {
    switch {
    case playerID == "":
        return domain.Empty
    case gs.X == playerID && gs.O == playerID:
        return gs.P1Mark
    case gs.X == playerID:
        return domain.X
    case gs.O == playerID:
        return domain.O
    }
    return domain.Empty
}

// Behind reports whether gs is an older snapshot of the same game than cur.
func (gs GameState) Behind(cur GameState) bool {
    if gs.Round != cur.Round {
        return gs.Round < cur.Round
    }
    return gs.Game.Moves < cur.Game.Moves
}

// Status is the one-line message shown above the board.
func (gs GameState) Status() string {
    g := gs.Game
    switch {
    case g.Draw():
        return "It's a draw!"
    case g.Over && gs.Mode == ModeBot && g.Winner == gs.BotMark:
        return "Bot wins! You lose!"
    case g.Over && gs.Mode == ModeBot:
        return "You won! Congratulations!"
    case g.Over:
        return fmt.Sprintf("%s (%v) wins!", gs.NameFor(g.Winner), g.Winner)
    case gs.Thinking:
        return fmt.Sprintf("Bot (%v) is thinking...", gs.BotMark)
    case gs.Mode == ModeBot && g.Turn == gs.BotMark:
        return fmt.Sprintf("Bot's turn (%v)", g.Turn)
    case gs.Mode == ModeBot:
        return fmt.Sprintf("Your turn (%v)", g.Turn)
    }
    return fmt.Sprintf("%s's turn (%v)", gs.NameFor(g.Turn), g.Turn)
}

type subscriber struct {
    mu     sync.Mutex
    ch     chan GameState
    closed bool
}

// send reports false when the subscriber is too slow to take another snapshot.
func (s *subscriber) send(gs GameState) bool {
    s.mu.Lock()
    defer s.mu.Unlock()
    if s.closed {
        return true
    }
    select {
    case s.ch <- gs:
        return true
    default:
        return false
    }
}

func (s *subscriber) close() {
    s.mu.Lock()
    defer s.mu.Unlock()
    if !s.closed {
        s.closed = true
        close(s.ch)
    }
}

// Service manages games, bot turns and subscribers.
type Service struct {
    mu    sync.Mutex
    games map[string]*GameState
    subs  map[string]map[*subscriber]struct{}
    bot   *bot.Bot
    think func() time.Duration
    after func(time.Duration, func())
    log   *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithBot sets the move picker used for bot seats.
func WithBot(b *bot.Bot) Option { return func(s *Service) { s.bot = b } }

// WithThinkDelay makes the bot wait a uniform random time in [lo, hi] before
// moving. A zero range makes bot replies synchronous.
func WithThinkDelay(lo, hi time.Duration) Option {
    return func(s *Service) {
        s.think = func() time.Duration {
            if hi <= lo {
                return lo
            }
            return lo + rand.N(hi-lo+1)
        }
    }
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option { return func(s *Service) { s.log = l } }

// NewService creates a service whose bot replies immediately unless configured otherwise.
func NewService(opts ...Option) *Service {
    s := &Service{
        games: make(map[string]*GameState),
        subs:  make(map[string]map[*subscriber]struct{}),
        bot:   bot.New(),
        think: func() time.Duration { return 0 },
        after: func(d time.Duration, f func()) { time.AfterFunc(d, f) },
        log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
    }
    for _, o := range opts {
        o(s)
    }
    return s
}

// CreateGame creates and registers a new game. In bot mode the bot takes the
// seat opposite player 1 and moves at once if it starts.
func (s *Service) CreateGame(opts GameOptions) (*GameState, error) {
    opts, err := opts.withDefaults()
    if err != nil {
        return nil, err
    }
    now := time.Now()
    gs := &GameState{
        ID:         newGameID(),
        Mode:       opts.Mode,
        Difficulty: opts.Difficulty,
        P1Mark:     opts.Symbol,
        Shared:     opts.Shared,
        Created:    now,
        Updated:    now,
    }
    p2 := domain.Opponent(opts.Symbol)
    if opts.Symbol == domain.X {
        gs.XName, gs.OName = opts.P1Name, opts.P2Name
    } else {
        gs.XName, gs.OName = opts.P2Name, opts.P1Name
    }
    starter := opts.Symbol
    if opts.Mode == ModeBot {
        gs.BotMark = p2
        s.seat(gs, p2, BotSeat)
        if opts.BotStarts {
            starter = p2
        }
    }
    gs.Game = domain.NewWithStarter(starter)

    s.mu.Lock()
    defer s.mu.Unlock()
    s.games[gs.ID] = gs
    s.log.Info("game created", "game", gs.ID, "mode", gs.Mode.String(), "difficulty", gs.Difficulty.String(), "p1", gs.P1Mark.String())
    s.botTurnLocked(gs)
    cp := *gs
    return &cp, nil
}

// Get returns a copy of the game state if present.
func (s *Service) Get(id string) (*GameState, bool) {
    s.mu.Lock()
    defer s.mu.Unlock()
    gs, ok := s.games[id]
    if !ok {
        return nil, false
    }
    cp := *gs
    return &cp, true
}

// Join assigns a seat to the player if available; returns Empty for spectators.
// Player 1's symbol is handed out first. The first player to join a friend game
// that is not shared takes both seats.
func (s *Service) Join(id, playerID string) (domain.Cell, *GameState, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    gs, ok := s.games[id]
    if !ok {
        return domain.Empty, nil, ErrNotFound
    }
    side := gs.SeatOf(playerID)
    canSit := side == domain.Empty && playerID != "" && playerID != BotSeat
    switch {
    case canSit && gs.Mode == ModeFriend && !gs.Shared && gs.X == "" && gs.O == "":
        gs.X, gs.O = playerID, playerID
        side = gs.P1Mark
    case canSit:
        for _, mark := range []domain.Cell{gs.P1Mark, domain.Opponent(gs.P1Mark)} {
            if s.seatHolder(gs, mark) == "" {
                s.seat(gs, mark, playerID)
                side = mark
                break
            }
        }
    }
    gs.Updated = time.Now()
    cp := *gs
    return side, &cp, nil
}

// Play validates seat and turn, applies a move, schedules the bot reply and broadcasts.
func (s *Service) Play(id, playerID string, cell int) (*GameState, error) {
    s.mu.Lock()
    gs, ok := s.games[id]
    if !ok {
        s.mu.Unlock()
        return nil, ErrNotFound
    }
    seat := gs.SeatOf(playerID)
    if seat == domain.Empty || playerID == BotSeat {
        s.mu.Unlock()
        return nil, ErrNotAPlayer
    }
    if gs.Thinking {
        s.mu.Unlock()
        return nil, ErrBotThinking
    }
    if gs.Game.Over {
        s.mu.Unlock()
        return nil, domain.ErrGameOver
    }
    if s.seatHolder(gs, gs.Game.Turn) != playerID {
        s.mu.Unlock()
        return nil, ErrNotYourTurn
    }
    if err := gs.Game.Play(cell); err != nil {
        s.mu.Unlock()
        return nil, err
    }
    gs.Updated = time.Now()
    s.botTurnLocked(gs)

    cp := *gs
    subs := s.copySubsLocked(id)
    s.mu.Unlock()

    s.broadcast(id, cp, subs)
    return &cp, nil
}

// Rematch clears the board and keeps mode, seats and difficulty. Only seated
// players may ask for it.
func (s *Service) Rematch(id, playerID string) (*GameState, error) {
    s.mu.Lock()
    gs, ok := s.games[id]
    if !ok {
        s.mu.Unlock()
        return nil, ErrNotFound
    }
    if gs.SeatOf(playerID) == domain.Empty || playerID == BotSeat {
        s.mu.Unlock()
        return nil, ErrNotAPlayer
    }
    gs.Game.Reset()
    gs.Thinking = false
    gs.Round++
    gs.Updated = time.Now()
    s.botTurnLocked(gs)

    cp := *gs
    subs := s.copySubsLocked(id)
    s.mu.Unlock()

    s.broadcast(id, cp, subs)
    return &cp, nil
}

// Subscribe registers a subscriber for a game. Returns a channel of snapshots and
// an unsubscribe func.
func (s *Service) Subscribe(ctx context.Context, id string) (<-chan GameState, func(), error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    if _, ok := s.games[id]; !ok {
        return nil, func() {}, ErrNotFound
    }
    set := s.subs[id]
    if set == nil {
        set = make(map[*subscriber]struct{})
        s.subs[id] = set
    }
    sub := &subscriber{ch: make(chan GameState, 1)}
    set[sub] = struct{}{}

    unsubOnce := &sync.Once{}
    unsub := func() {
        unsubOnce.Do(func() {
            s.mu.Lock()
            if set, ok := s.subs[id]; ok {
                delete(set, sub)
            }
            s.mu.Unlock()
            sub.close()
        })
    }
    go func() {
        <-ctx.Done()
        unsub()
    }()
    return sub.ch, unsub, nil
}

// botTurnLocked plays or schedules the bot move when it is the bot's turn.
func (s *Service) botTurnLocked(gs *GameState) {
    if gs.Mode != ModeBot || gs.Game.Over || gs.Game.Turn != gs.BotMark {
        return
    }
    d := s.think()
    if d <= 0 {
        s.playBotLocked(gs)
        return
    }
    gs.Thinking = true
    id, round := gs.ID, gs.Round
    s.after(d, func() { s.finishBotTurn(id, round) })
}

func (s *Service) finishBotTurn(id string, round int) {
    s.mu.Lock()
    gs, ok := s.games[id]
    // a rematch in the meantime starts a new round
    if !ok || gs.Round != round || !gs.Thinking {
        s.mu.Unlock()
        return
    }
    gs.Thinking = false
    s.playBotLocked(gs)
    cp := *gs
    subs := s.copySubsLocked(id)
    s.mu.Unlock()

    s.broadcast(id, cp, subs)
}

func (s *Service) playBotLocked(gs *GameState) {
    start := time.Now()
    idx, err := s.bot.ChooseMove(gs.Game.Board, gs.BotMark, gs.Difficulty)
    if err != nil {
        s.log.Error("bot move failed", "game", gs.ID, "board", gs.Game.Board.String(), "err", err)
        return
    }
    if err := gs.Game.Play(idx); err != nil {
        s.log.Error("bot move rejected", "game", gs.ID, "cell", idx, "err", err)
        return
    }
    gs.Updated = time.Now()
    s.log.Info("bot moved", "game", gs.ID, "difficulty", gs.Difficulty.String(), "cell", idx, "elapsed", time.Since(start))
}

// broadcast fans out a snapshot; slow subscribers are closed and dropped.
func (s *Service) broadcast(id string, cp GameState, subs map[*subscriber]struct{}) {
    var toDrop []*subscriber
    for sub := range subs {
        if !sub.send(cp) {
            sub.close()
            toDrop = append(toDrop, sub)
        }
    }
    if len(toDrop) > 0 {
        s.mu.Lock()
        for _, sub := range toDrop {
            if set, ok := s.subs[id]; ok {
                delete(set, sub)
            }
        }
        s.mu.Unlock()
    }
}

func (s *Service) seat(gs *GameState, mark domain.Cell, holder string) {
    if mark == domain.X {
        gs.X = holder
    } else {
        gs.O = holder
    }
}

func (s *Service) seatHolder(gs *GameState, mark domain.Cell) string {
    if mark == domain.X {
        return gs.X
    }
    return gs.O
}

func (s *Service) copySubsLocked(id string) map[*subscriber]struct{} {
    out := make(map[*subscriber]struct{})
    if set, ok := s.subs[id]; ok {
        for k := range set {
            out[k] = struct{}{}
        }
    }
    return out
}
