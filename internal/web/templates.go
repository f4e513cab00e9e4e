package web

import (
    "bytes"
    "html/template"
    "net/http"

    "github.com/jaminalder/tictactoe-bots/internal/app"
    "github.com/jaminalder/tictactoe-bots/internal/bot"
    "github.com/jaminalder/tictactoe-bots/internal/domain"
)

type templates struct {
    game  *template.Template
    board *template.Template
    index *template.Template
}

func funcs() template.FuncMap {
    return template.FuncMap{
        "eq": func(a, b any) bool { return a == b },
    }
}

func loadTemplates() *templates {
    base := template.Must(template.New("base").Funcs(funcs()).Parse(`<!doctype html><html><head>
<meta charset="utf-8"/>
<title>Tic Tac Toe</title>
<script src="https://unpkg.com/htmx.org@1.9.12"></script>
<script src="https://unpkg.com/htmx.org/dist/ext/sse.js"></script>
<style>
.row{display:flex}.cell{width:4em;height:4em;font-size:2em}.win{background:#ffd54f}
.status{font-weight:bold;margin:.5em 0}.alert{color:#c62828}
</style>
</head><body>{{template "content" .}}</body></html>`))
    // Define the board template within the same set so game can include it
    template.Must(base.New("board").Funcs(funcs()).Parse(boardTemplate))
    index := template.Must(template.Must(base.Clone()).New("content").Parse(indexTemplate))
    game := template.Must(template.Must(base.Clone()).New("content").Parse(`
<h1>Tic Tac Toe</h1>
<p>{{.Players}}</p>
<div hx-ext="sse" sse-connect="/game/{{.ID}}/events">
  <div sse-swap="board" hx-swap="innerHTML">{{template "board" .Board}}</div>
</div>
<p><a href="/">New game</a></p>`))
    // Standalone board template used for fragment rendering
    board := template.Must(template.New("board_only").Funcs(funcs()).Parse(boardTemplate))
    return &templates{game: game, board: board, index: index}
}

func renderTemplate(t *template.Template, name string, data any) []byte {
    var buf bytes.Buffer
    if name == "" {
        _ = t.Execute(&buf, data)
    } else {
        _ = t.ExecuteTemplate(&buf, name, data)
    }
    return buf.Bytes()
}

const indexTemplate = `<h1>Tic Tac Toe</h1>
<form action="/game" method="post">
  <fieldset><legend>Mode</legend>
    <label><input type="radio" name="mode" value="bot" checked> Play with bot</label>
    <label><input type="radio" name="mode" value="friend"> Play with a friend</label>
  </fieldset>
  <fieldset><legend>Bot difficulty</legend>
    {{range .Difficulties}}<label><input type="radio" name="difficulty" value="{{.}}" {{if eq . $.Default}}checked{{end}}> {{.}}</label>
    {{end}}
    <label><input type="checkbox" name="bot_starts" value="1"> Bot moves first</label>
  </fieldset>
  <fieldset><legend>Your symbol</legend>
    <label><input type="radio" name="symbol" value="X" checked> X</label>
    <label><input type="radio" name="symbol" value="O"> O</label>
  </fieldset>
  <fieldset><legend>Friend mode</legend>
    <input name="p1" placeholder="Player 1"> <input name="p2" placeholder="Player 2">
    <label><input type="checkbox" name="shared" value="1"> Friend joins from another device</label>
  </fieldset>
  <button>Let's play!</button>
</form>`

const boardTemplate = `
<div id="board">
  <div class="status">{{.Status}}</div>
  {{if .Error}}
  <div class="alert">{{.Error}}</div>
  {{end}}
  {{range .Rows}}
  <div class="row">
    {{range .}}
      <form hx-post="/game/{{$.ID}}/play" hx-target="#board" hx-swap="outerHTML" method="post" action="/game/{{$.ID}}/play">
        <input type="hidden" name="cell" value="{{.Index}}">
        <button type="submit" class="cell{{if .Win}} win{{end}}"{{if .Disabled}} disabled{{end}}>{{.Symbol}}</button>
      </form>
    {{end}}
  </div>
  {{end}}
  {{if .Over}}
  <form hx-post="/game/{{.ID}}/rematch" hx-target="#board" hx-swap="outerHTML" method="post" action="/game/{{.ID}}/rematch">
    <button type="submit">Play again</button>
  </form>
  {{end}}
</div>
`

type cellView struct {
    Index    int
    Symbol   string
    Win      bool
    Disabled bool
}

type boardView struct {
    ID     string
    Status string
    Error  string
    Over   bool
    Rows   [3][3]cellView
}

func newBoardView(gs app.GameState, errMsg string) boardView {
    v := boardView{ID: gs.ID, Status: gs.Status(), Error: errMsg, Over: gs.Game.Over}
    var win [9]bool
    if gs.Game.Over && gs.Game.Winner != domain.Empty {
        for _, i := range gs.Game.Line {
            win[i] = true
        }
    }
    for i, c := range gs.Game.Board {
        sym := ""
        if c != domain.Empty {
            sym = c.String()
        }
        v.Rows[i/3][i%3] = cellView{
            Index:    i,
            Symbol:   sym,
            Win:      win[i],
            Disabled: c != domain.Empty || gs.Game.Over || gs.Thinking,
        }
    }
    return v
}

type indexView struct {
    Difficulties []bot.Difficulty
    Default      bot.Difficulty
}

// Helper to set cookie
func ensurePlayerCookie(w http.ResponseWriter, r *http.Request) string {
    if c, err := r.Cookie("player_id"); err == nil && c.Value != "" {
        return c.Value
    }
    v := app.NewPlayerID()
    http.SetCookie(w, &http.Cookie{Name: "player_id", Value: v, Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode})
    return v
}
