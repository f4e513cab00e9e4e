// Package tui is a terminal front end for local games against a bot or a friend
// sharing the keyboard.
package tui

import (
    "context"
    "errors"
    "fmt"
    "strings"

    tea "github.com/charmbracelet/bubbletea"
    "github.com/charmbracelet/lipgloss"
    "github.com/jaminalder/tictactoe-bots/internal/app"
    "github.com/jaminalder/tictactoe-bots/internal/domain"
)

var (
    xStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
    oStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
    cursorStyle = lipgloss.NewStyle().Reverse(true)
    winStyle    = lipgloss.NewStyle().Background(lipgloss.Color("11")).Foreground(lipgloss.Color("0"))
    statusStyle = lipgloss.NewStyle().Bold(true)
    errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
    helpStyle   = lipgloss.NewStyle().Faint(true)
)

type stateMsg app.GameState

type closedMsg struct{}

// Model is the bubbletea model for one local game.
type Model struct {
    svc     *app.Service
    gameID  string
    player  string
    state   app.GameState
    cursor  int
    err     string
    updates <-chan app.GameState
    unsub   func()
    cancel  context.CancelFunc
}

// New creates a game on svc and seats the local player. In friend mode both
// seats belong to this terminal.
func New(svc *app.Service, opts app.GameOptions) (Model, error) {
    opts.Shared = false
    gs, err := svc.CreateGame(opts)
    if err != nil {
        return Model{}, err
    }
    m := Model{svc: svc, gameID: gs.ID, player: app.NewPlayerID(), cursor: 4}
    if _, _, err := svc.Join(gs.ID, m.player); err != nil {
        return Model{}, err
    }
    if err := m.subscribe(); err != nil {
        return Model{}, err
    }
    return m, nil
}

func (m *Model) subscribe() error {
    ctx, cancel := context.WithCancel(context.Background())
    ch, unsub, err := m.svc.Subscribe(ctx, m.gameID)
    if err != nil {
        cancel()
        return err
    }
    m.updates, m.unsub, m.cancel = ch, unsub, cancel
    if gs, ok := m.svc.Get(m.gameID); ok {
        m.state = *gs
    }
    return nil
}

func waitForUpdate(updates <-chan app.GameState) tea.Cmd {
    return func() tea.Msg {
        gs, ok := <-updates
        if !ok {
            return closedMsg{}
        }
        return stateMsg(gs)
    }
}

// State returns the latest snapshot the model has seen.
func (m Model) State() app.GameState { return m.state }

func (m Model) Init() tea.Cmd {
    return waitForUpdate(m.updates)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
    switch msg := msg.(type) {
    case tea.KeyMsg:
        return m.handleKey(msg)
    case stateMsg:
        if gs := app.GameState(msg); !gs.Behind(m.state) {
            m.state = gs
        }
        return m, waitForUpdate(m.updates)
    case closedMsg:
        // dropped as a slow subscriber: catch up and listen again
        m.unsub()
        m.cancel()
        if err := m.subscribe(); err != nil {
            m.err = err.Error()
            return m, nil
        }
        return m, waitForUpdate(m.updates)
    }
    return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
    key := msg.String()
    switch key {
    case "q", "ctrl+c", "esc":
        m.unsub()
        m.cancel()
        return m, tea.Quit
    case "up", "k":
        if m.cursor >= 3 {
            m.cursor -= 3
        }
    case "down", "j":
        if m.cursor < 6 {
            m.cursor += 3
        }
    case "left", "h":
        if m.cursor%3 > 0 {
            m.cursor--
        }
    case "right", "l":
        if m.cursor%3 < 2 {
            m.cursor++
        }
    case "enter", " ":
        m.place()
    case "r":
        m.rematch()
    case "1", "2", "3", "4", "5", "6", "7", "8", "9":
        m.cursor = int(key[0] - '1')
        m.place()
    }
    return m, nil
}

func (m *Model) place() {
    gs, err := m.svc.Play(m.gameID, m.player, m.cursor)
    if err != nil {
        m.err = message(err)
        return
    }
    m.err = ""
    m.state = *gs
}

func (m *Model) rematch() {
    gs, err := m.svc.Rematch(m.gameID, m.player)
    if err != nil {
        m.err = message(err)
        return
    }
    m.err = ""
    m.state = *gs
}

func message(err error) string {
    switch {
    case errors.Is(err, app.ErrBotThinking):
        return "Wait, the bot is thinking."
    case errors.Is(err, app.ErrNotYourTurn):
        return "Not your turn."
    case errors.Is(err, domain.ErrOccupied):
        return "That cell is taken."
    case errors.Is(err, domain.ErrGameOver):
        return "Game over. Press r to play again."
    }
    return err.Error()
}

func (m Model) View() string {
    g := m.state.Game
    var win [9]bool
    if g.Over && g.Winner != domain.Empty {
        for _, i := range g.Line {
            win[i] = true
        }
    }

    var b strings.Builder
    fmt.Fprintf(&b, "%s (X) vs %s (O)", m.state.XName, m.state.OName)
    if m.state.Mode == app.ModeBot {
        fmt.Fprintf(&b, " - %s", m.state.Difficulty)
    }
    b.WriteString("\n\n")
    for r := 0; r < 3; r++ {
        cells := make([]string, 3)
        for c := 0; c < 3; c++ {
            i := r*3 + c
            cells[c] = m.renderCell(i, g.Board[i], win[i])
        }
        b.WriteString(" " + strings.Join(cells, "│") + "\n")
        if r < 2 {
            b.WriteString(" ───┼───┼───\n")
        }
    }
    b.WriteString("\n" + statusStyle.Render(m.state.Status()) + "\n")
    if m.err != "" {
        b.WriteString(errStyle.Render(m.err) + "\n")
    }
    b.WriteString(helpStyle.Render("arrows/hjkl move, enter place, 1-9 jump, r rematch, q quit") + "\n")
    return b.String()
}

func (m Model) renderCell(i int, c domain.Cell, win bool) string {
    text := " "
    switch c {
    case domain.X:
        text = xStyle.Render("X")
    case domain.O:
        text = oStyle.Render("O")
    }
    cell := " " + text + " "
    switch {
    case win:
        return winStyle.Render(cell)
    case i == m.cursor && !m.state.Game.Over:
        return cursorStyle.Render(cell)
    }
    return cell
}
