package model

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

const (
	MinPieces = 1
	MaxPieces = 32
)

var (
	ErrBoardSize       = errors.New("board must hold between 1 and 32 pieces")
	ErrDuplicateSquare = errors.New("two pieces share a square")
	ErrInvalidSquare   = errors.New("invalid square")
	ErrInvalidPiece    = errors.New("invalid piece")
)

const (
	Columns = "abcdefgh"
	Rows    = "12345678"
)

// Square is a board location such as "e4". It is kept as a plain string so
// deliberately malformed destinations can travel through error fixtures.
type Square string

func ParseSquare(s string) (Square, error) {
	if len(s) != 2 {
		return "", fmt.Errorf("%w %q: column-row format only", ErrInvalidSquare, s)
	}
	if !strings.ContainsRune(Columns, rune(s[0])) {
		return "", fmt.Errorf("%w %q: column must be one of %s", ErrInvalidSquare, s, Columns)
	}
	if !strings.ContainsRune(Rows, rune(s[1])) {
		return "", fmt.Errorf("%w %q: row must be one of %s", ErrInvalidSquare, s, Rows)
	}
	return Square(s), nil
}

func (s Square) Valid() bool {
	_, err := ParseSquare(string(s))
	return err == nil
}

func (s Square) Column() byte {
	return s[0]
}

// Row returns the rank as a number from 1 to 8.
func (s Square) Row() int {
	return int(s[1] - '0')
}

func NewSquare(column byte, row int) Square {
	return Square(fmt.Sprintf("%c%d", column, row))
}

type PieceType string

const (
	King   PieceType = "k"
	Queen  PieceType = "q"
	Rook   PieceType = "r"
	Bishop PieceType = "b"
	Knight PieceType = "n"
	Pawn   PieceType = "p"
)

var pieceNames = map[PieceType]string{
	King:   "king",
	Queen:  "queen",
	Rook:   "rook",
	Bishop: "bishop",
	Knight: "knight",
	Pawn:   "pawn",
}

func (p PieceType) Name() string {
	return pieceNames[p]
}

// Letter returns the piece letter in the case used for the given color.
func (p PieceType) Letter(c Color) string {
	if c == White {
		return strings.ToUpper(string(p))
	}
	return string(p)
}

type Piece struct {
	Type string `json:"type"`
	Loc  Square `json:"loc"`
}

func NewPiece(t PieceType, c Color, loc Square) Piece {
	return Piece{Type: t.Letter(c), Loc: loc}
}

func (p Piece) Kind() PieceType {
	return PieceType(strings.ToLower(p.Type))
}

func (p Piece) Color() Color {
	if p.Type == strings.ToUpper(p.Type) {
		return White
	}
	return Black
}

func (p Piece) Validate() error {
	if len(p.Type) != 1 {
		return fmt.Errorf("%w: type %q", ErrInvalidPiece, p.Type)
	}
	if _, ok := pieceNames[p.Kind()]; !ok {
		return fmt.Errorf("%w: type %q", ErrInvalidPiece, p.Type)
	}
	if !p.Loc.Valid() {
		return fmt.Errorf("%w: location %q", ErrInvalidPiece, p.Loc)
	}
	return nil
}

func (p Piece) String() string {
	return fmt.Sprintf("%s@%s", p.Type, p.Loc)
}

// ParsePieceDescriptor reads the 4-character operator form
// <color><piece><column><row>, for example "wra1" for a white rook on a1.
func ParsePieceDescriptor(s string) (Piece, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) != 4 {
		return Piece{}, fmt.Errorf("%w %q: must be 4 characters", ErrInvalidPiece, s)
	}
	color, err := ParseColor(s[:1])
	if err != nil {
		return Piece{}, fmt.Errorf("%w %q: first character: %v", ErrInvalidPiece, s, err)
	}
	kind := PieceType(s[1:2])
	if _, ok := pieceNames[kind]; !ok {
		return Piece{}, fmt.Errorf("%w %q: piece type must be one of prnbqk", ErrInvalidPiece, s)
	}
	loc, err := ParseSquare(s[2:])
	if err != nil {
		return Piece{}, err
	}
	return NewPiece(kind, color, loc), nil
}

// Board is the unordered piece list sent as "boardState".
type Board []Piece

func (b Board) Len() int {
	return len(b)
}

func (b Board) At(loc Square) (Piece, bool) {
	for _, p := range b {
		if p.Loc == loc {
			return p, true
		}
	}
	return Piece{}, false
}

func (b Board) Contains(p Piece) bool {
	return slices.Contains(b, p)
}

func (b Board) Add(p Piece) Board {
	return append(b, p)
}

// Remove drops the first exact match of p and reports whether one was found.
func (b Board) Remove(p Piece) (Board, bool) {
	i := slices.Index(b, p)
	if i < 0 {
		return b, false
	}
	return slices.Delete(slices.Clone(b), i, i+1), true
}

func (b Board) Validate() error {
	if len(b) < MinPieces || len(b) > MaxPieces {
		return fmt.Errorf("%w: found %d", ErrBoardSize, len(b))
	}
	seen := make(map[Square]Piece, len(b))
	for _, p := range b {
		if err := p.Validate(); err != nil {
			return err
		}
		if other, ok := seen[p.Loc]; ok {
			return fmt.Errorf("%w: %s and %s", ErrDuplicateSquare, other, p)
		}
		seen[p.Loc] = p
	}
	return nil
}

// CheckSize reports ErrBoardSize when the piece count is outside 1..32.
func (b Board) CheckSize() (int, error) {
	n := len(b)
	if n < MinPieces || n > MaxPieces {
		return n, fmt.Errorf("%w: boardState has %d pieces", ErrBoardSize, n)
	}
	return n, nil
}

func (b Board) index() map[Piece]int {
	idx := make(map[Piece]int, len(b))
	for _, p := range b {
		idx[p]++
	}
	return idx
}

// Missing returns the pieces of b that are not in other, sorted by square.
func (b Board) Missing(other Board) []Piece {
	have := other.index()
	want := b.index()
	var missing []Piece
	for _, p := range maps.Keys(want) {
		if want[p] > have[p] {
			missing = append(missing, p)
		}
	}
	sort.Slice(missing, func(i, j int) bool {
		if missing[i].Loc != missing[j].Loc {
			return missing[i].Loc < missing[j].Loc
		}
		return missing[i].Type < missing[j].Type
	})
	return missing
}

// Equal compares boards as sets of placements, ignoring order.
func (b Board) Equal(other Board) bool {
	return len(b) == len(other) && len(b.Missing(other)) == 0
}

func (b Board) rowPieces(row int) map[byte]Piece {
	pieces := make(map[byte]Piece)
	for _, p := range b {
		if p.Loc.Valid() && p.Loc.Row() == row {
			pieces[p.Loc.Column()] = p
		}
	}
	return pieces
}

// Draw writes an ASCII picture of the board with rank 8 on top.
func (b Board) Draw(w io.Writer) {
	const lead = "             "
	separator := lead + "-------------------------------"
	fmt.Fprintln(w, separator)
	for row := 8; row > 0; row-- {
		pieces := b.rowPieces(row)
		var line strings.Builder
		fmt.Fprintf(&line, "          %d |", row)
		for i := 0; i < len(Columns); i++ {
			if p, ok := pieces[Columns[i]]; ok {
				fmt.Fprintf(&line, " %s |", p.Type)
				continue
			}
			line.WriteString("   |")
		}
		fmt.Fprintln(w, line.String())
		fmt.Fprintln(w, separator)
	}
	fmt.Fprintln(w, lead+" a   b   c   d   e   f   g   h")
}

func (b Board) String() string {
	var sb strings.Builder
	b.Draw(&sb)
	return sb.String()
}
