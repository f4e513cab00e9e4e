package domain

import (
    "errors"
    "fmt"
    "strings"
)

// Cell represents a board cell state.
type Cell uint8

const (
    Empty Cell = iota
    X
    O
)

// String returns "X", "O" or "." for an empty cell.
func (c Cell) String() string {
    switch c {
    case X:
        return "X"
    case O:
        return "O"
    case Empty:
        return "."
    default:
        return fmt.Sprintf("Cell(%d)", uint8(c))
    }
}

// Valid reports whether c is one of Empty, X or O.
func (c Cell) Valid() bool { return c <= O }

// IsMark reports whether c is X or O.
func (c Cell) IsMark() bool { return c == X || c == O }

// Opponent returns the other mark. Empty maps to Empty.
func Opponent(mark Cell) Cell {
    switch mark {
    case X:
        return O
    case O:
        return X
    default:
        return Empty
    }
}

// ParseCell accepts "X", "O" (any case) and ".", "_", "-", " " or "" for empty.
func ParseCell(s string) (Cell, error) {
    switch strings.ToUpper(strings.TrimSpace(s)) {
    case "X":
        return X, nil
    case "O":
        return O, nil
    case "", ".", "_", "-":
        return Empty, nil
    }
    return Empty, fmt.Errorf("%w: unknown cell %q", ErrInvalidBoard, s)
}

// Board is a fixed 3x3 board stored row-major.
type Board [9]Cell

// WinLine is an index triple that wins when fully occupied by one mark.
type WinLine [3]int

// WinLines lists every line in the order rows, columns, diagonals.
var WinLines = [8]WinLine{
    // rows
    {0, 1, 2}, {3, 4, 5}, {6, 7, 8},
    // cols
    {0, 3, 6}, {1, 4, 7}, {2, 5, 8},
    // diags
    {0, 4, 8}, {2, 4, 6},
}

// WinResult is the outcome of CheckWin. Line is only meaningful when IsWin is set.
type WinResult struct {
    IsWin bool
    Line  WinLine
}

// Errors returned by board operations.
var (
    ErrInvalidBoard    = errors.New("invalid board")
    ErrNoMoveAvailable = errors.New("no move available")
)

// CheckWin returns the first line fully occupied by mark.
func CheckWin(b Board, mark Cell) WinResult {
    if !mark.IsMark() {
        return WinResult{}
    }
    for _, ln := range WinLines {
        if b[ln[0]] == mark && b[ln[1]] == mark && b[ln[2]] == mark {
            return WinResult{IsWin: true, Line: ln}
        }
    }
    return WinResult{}
}

// IsFull reports whether no cell is empty.
func (b Board) IsFull() bool {
    for _, c := range b {
        if c == Empty {
            return false
        }
    }
    return true
}

// EmptyIndices returns the empty cell indices in ascending order.
func (b Board) EmptyIndices() []int {
    out := make([]int, 0, len(b))
    for i, c := range b {
        if c == Empty {
            out = append(out, i)
        }
    }
    return out
}

// Count returns how many cells hold c.
func (b Board) Count(c Cell) int {
    n := 0
    for _, v := range b {
        if v == c {
            n++
        }
    }
    return n
}

// Validate checks that every cell holds a known value.
func (b Board) Validate() error {
    for i, c := range b {
        if !c.Valid() {
            return fmt.Errorf("%w: cell %d has value %d", ErrInvalidBoard, i, uint8(c))
        }
    }
    return nil
}

// String renders the board as nine characters, e.g. "XO..X...O".
func (b Board) String() string {
    var sb strings.Builder
    sb.Grow(len(b))
    for _, c := range b {
        sb.WriteString(c.String())
    }
    return sb.String()
}

// BoardFromCells copies cells into a Board. The slice must hold exactly nine valid cells.
func BoardFromCells(cells []Cell) (Board, error) {
    var b Board
    if len(cells) != len(b) {
        return b, fmt.Errorf("%w: want %d cells, got %d", ErrInvalidBoard, len(b), len(cells))
    }
    copy(b[:], cells)
    if err := b.Validate(); err != nil {
        return Board{}, err
    }
    return b, nil
}

// ParseBoard reads the format produced by Board.String. Whitespace and '|' or '/'
// row separators are ignored.
func ParseBoard(s string) (Board, error) {
    cells := make([]Cell, 0, 9)
    for _, r := range s {
        switch r {
        case ' ', '\t', '\n', '\r', '|', '/':
            continue
        }
        c, err := ParseCell(string(r))
        if err != nil {
            return Board{}, err
        }
        cells = append(cells, c)
    }
    return BoardFromCells(cells)
}
