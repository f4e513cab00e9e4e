package tui

import (
    "strings"
    "testing"

    tea "github.com/charmbracelet/bubbletea"
    "github.com/jaminalder/tictactoe-bots/internal/app"
    "github.com/jaminalder/tictactoe-bots/internal/bot"
    "github.com/jaminalder/tictactoe-bots/internal/domain"
)

func newModel(t *testing.T, opts app.GameOptions) Model {
    t.Helper()
    m, err := New(app.NewService(), opts)
    if err != nil {
        t.Fatalf("New error: %v", err)
    }
    return m
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func press(t *testing.T, m Model, keys ...tea.KeyMsg) Model {
    t.Helper()
    for _, k := range keys {
        next, _ := m.Update(k)
        m = next.(Model)
    }
    return m
}

func TestCursorMovementStaysOnBoard(t *testing.T) {
    m := newModel(t, app.GameOptions{Mode: app.ModeFriend})
    if m.cursor != 4 {
        t.Fatalf("cursor should start in the center, got %d", m.cursor)
    }
    m = press(t, m, tea.KeyMsg{Type: tea.KeyUp}, runes("h"), runes("h"), runes("k"))
    if m.cursor != 0 {
        t.Fatalf("expected cursor 0, got %d", m.cursor)
    }
    m = press(t, m, runes("j"), runes("j"), runes("j"), tea.KeyMsg{Type: tea.KeyRight}, runes("l"), runes("l"))
    if m.cursor != 8 {
        t.Fatalf("expected cursor 8, got %d", m.cursor)
    }
}

func TestFriendModeAlternatesLocalPlayers(t *testing.T) {
    m := newModel(t, app.GameOptions{Mode: app.ModeFriend, P1Name: "Alice", P2Name: "Bob"})
    m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter}, runes("1"))
    b := m.State().Game.Board
    if b[4] != domain.X || b[0] != domain.O {
        t.Fatalf("unexpected board %s", b)
    }
    if !strings.Contains(m.View(), "Alice's turn (X)") {
        t.Fatalf("view should show Alice's turn:\n%s", m.View())
    }
}

func TestOccupiedCellShowsMessage(t *testing.T) {
    m := newModel(t, app.GameOptions{Mode: app.ModeFriend})
    m = press(t, m, runes("5"), runes("5"))
    if m.err != "That cell is taken." {
        t.Fatalf("unexpected error message %q", m.err)
    }
    m = press(t, m, runes("1"))
    if m.err != "" {
        t.Fatalf("a legal move should clear the error, got %q", m.err)
    }
}

func TestBotRepliesAndWinThenRematch(t *testing.T) {
    m := newModel(t, app.GameOptions{Mode: app.ModeBot, Difficulty: bot.Pro})
    m = press(t, m, tea.KeyMsg{Type: tea.KeySpace})
    b := m.State().Game.Board
    if b[4] != domain.X || b.Count(domain.O) != 1 {
        t.Fatalf("bot should reply at once, board %s", b)
    }

    f := newModel(t, app.GameOptions{Mode: app.ModeFriend, P1Name: "Alice"})
    f = press(t, f, runes("1"), runes("4"), runes("2"), runes("5"), runes("3"))
    gs := f.State()
    if !gs.Game.Over || gs.Game.Winner != domain.X {
        t.Fatalf("expected X to win, got %+v", gs.Game)
    }
    if !strings.Contains(f.View(), "Alice (X) wins!") {
        t.Fatalf("view should announce the winner:\n%s", f.View())
    }
    f = press(t, f, runes("7"))
    if f.err == "" {
        t.Fatalf("moving after the game ends should report an error")
    }
    f = press(t, f, runes("r"))
    gs = f.State()
    if gs.Game.Over || gs.Game.Board.Count(domain.Empty) != 9 || gs.Round != 1 {
        t.Fatalf("rematch should reset the board, got %+v", gs)
    }
}

func TestSubscriptionUpdatesAndResubscribe(t *testing.T) {
    m := newModel(t, app.GameOptions{Mode: app.ModeFriend})
    m = press(t, m, runes("5"))
    msg := m.Init()()
    st, ok := msg.(stateMsg)
    if !ok || st.Game.Board[4] != domain.X {
        t.Fatalf("expected a snapshot with X in the center, got %#v", msg)
    }

    // two unread snapshots overflow the buffer and drop the subscriber
    m = press(t, m, runes("1"), runes("9"))
    if _, ok := waitForUpdate(m.updates)().(stateMsg); !ok {
        t.Fatalf("buffered snapshot should still be readable")
    }
    msg = waitForUpdate(m.updates)()
    if _, ok := msg.(closedMsg); !ok {
        t.Fatalf("expected closedMsg, got %#v", msg)
    }
    next, cmd := m.Update(msg)
    m = next.(Model)
    if cmd == nil {
        t.Fatalf("resubscribe should keep listening")
    }
    if m.State().Game.Board.Count(domain.Empty) != 6 {
        t.Fatalf("state should catch up after resubscribe, got %s", m.State().Game.Board)
    }
    m = press(t, m, runes("2"))
    st, ok = cmd().(stateMsg)
    if !ok || st.Game.Board[1] != domain.O {
        t.Fatalf("new subscription should receive moves, got %#v", st)
    }
}

func TestQuitUnsubscribes(t *testing.T) {
    m := newModel(t, app.GameOptions{Mode: app.ModeFriend})
    _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
    if cmd == nil {
        t.Fatalf("expected quit command")
    }
    if _, ok := cmd().(tea.QuitMsg); !ok {
        t.Fatalf("expected tea.QuitMsg")
    }
    if _, ok := <-m.updates; ok {
        t.Fatalf("updates channel should be closed after quit")
    }
}

func TestStaleSnapshotIgnored(t *testing.T) {
    m := newModel(t, app.GameOptions{Mode: app.ModeFriend})
    m = press(t, m, runes("5"))
    old := m.Init()()
    m = press(t, m, runes("1"))

    next, cmd := m.Update(old)
    m = next.(Model)
    if cmd == nil {
        t.Fatalf("model should keep listening")
    }
    if got := m.State().Game.Moves; got != 2 {
        t.Fatalf("older snapshot replaced newer state: moves=%d", got)
    }

    // O takes the top row, then a rematch starts round 1
    m = press(t, m, runes("9"), runes("2"), runes("8"), runes("3"), runes("r"))
    next, _ = m.Update(old)
    m = next.(Model)
    if gs := m.State(); gs.Round != 1 || gs.Game.Moves != 0 {
        t.Fatalf("snapshot from an earlier round leaked in: round=%d moves=%d", gs.Round, gs.Game.Moves)
    }
}
