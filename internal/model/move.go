package model

import (
	"errors"
	"fmt"
	"strings"
)

type MoveKind string

const (
	KindMove                 MoveKind = "move"
	KindCapture              MoveKind = "capture"
	KindPawnPromotion        MoveKind = "pawnpromotion"
	KindPawnPromotionCapture MoveKind = "pawnpromotioncapture"
	KindCastling             MoveKind = "castling"
	KindEnPassant            MoveKind = "enpassant"
	KindCheck                MoveKind = "check"
	KindCheckCapture         MoveKind = "checkcapture"
	KindCheckmate            MoveKind = "checkmate"
	KindCheckmateCapture     MoveKind = "checkmatecapture"
)

// MenuKinds are offered to the operator; capture variants of check,
// checkmate and promotion are chosen with a follow-up question.
var MenuKinds = []MoveKind{KindMove, KindCapture, KindPawnPromotion, KindCastling, KindEnPassant, KindCheck, KindCheckmate}

func (k MoveKind) IsCapture() bool {
	return strings.HasSuffix(string(k), "capture")
}

func (k MoveKind) IsPromotion() bool {
	return k == KindPawnPromotion || k == KindPawnPromotionCapture
}

// WithCapture returns the capture variant of check, checkmate and promotion.
func (k MoveKind) WithCapture() MoveKind {
	switch k {
	case KindCheck, KindCheckmate, KindPawnPromotion:
		return k + "capture"
	}
	return k
}

// AsksCapture reports whether the operator is asked if the move captures.
func (k MoveKind) AsksCapture() bool {
	return k == KindCheck || k == KindCheckmate || k == KindPawnPromotion
}

func (k MoveKind) suffix() string {
	switch k {
	case KindCheck, KindCheckCapture:
		return "+"
	case KindCheckmate, KindCheckmateCapture:
		return "#"
	}
	return ""
}

type CastleSide string

const (
	Kingside  CastleSide = "k"
	Queenside CastleSide = "q"
)

var (
	ErrFatalInput      = errors.New("fatal input error")
	ErrPromotionRank   = fmt.Errorf("%w: promoting pawn is not on the rank before promotion", ErrFatalInput)
	ErrNoEnPassantPawn = fmt.Errorf("%w: no pawn on the en passant capture square", ErrFatalInput)
	ErrNotAPawn        = errors.New("only a pawn can make this move")
	ErrNoCapturedPiece = errors.New("no piece on the capture square")
	ErrUnknownMoveKind = errors.New("unknown move kind")
	ErrUnknownCastle   = errors.New("unknown castling side")
	ErrPieceNotOnBoard = errors.New("moving piece is not on the board")
	ErrWrongPieceColor = errors.New("moving piece belongs to the other side")
)

// Move is an operator's description of a single MakeMove request.
type Move struct {
	Kind        MoveKind
	Color       Color
	Piece       Piece
	Destination Square
	Side        CastleSide
}

// Delta is what a correct response must reflect: the notation sent and the
// pieces that leave and appear on the board.
type Delta struct {
	Notation string
	Removed  []Piece
	Added    []Piece
}

type castle struct {
	rookFrom, kingFrom, rookTo, kingTo byte
}

var castles = map[CastleSide]castle{
	Kingside:  {rookFrom: 'h', kingFrom: 'e', rookTo: 'f', kingTo: 'g'},
	Queenside: {rookFrom: 'a', kingFrom: 'e', rookTo: 'd', kingTo: 'c'},
}

func castleNotation(side CastleSide) (string, error) {
	switch side {
	case Kingside:
		return "0-0", nil
	case Queenside:
		return "0-0-0", nil
	}
	return "", fmt.Errorf("%w %q", ErrUnknownCastle, side)
}

func (m Move) dest() string {
	return string(m.Destination)
}

func (m Move) sourceColumn() string {
	return string(m.Piece.Loc.Column())
}

// Notation builds the move string sent to the API. It needs no board so it
// also works for deliberately malformed destinations.
func Notation(m Move) (string, error) {
	switch {
	case m.Kind == KindCastling:
		return castleNotation(m.Side)
	case m.Kind.IsPromotion():
		if m.Piece.Kind() != Pawn {
			return "", ErrNotAPawn
		}
		if m.Piece.Loc.Row() != m.Color.PromotionRow() {
			return "", fmt.Errorf("%w: %s pawn on row %d, need row %d", ErrPromotionRank, m.Color.Name(), m.Piece.Loc.Row(), m.Color.PromotionRow())
		}
		if promotionCaptures(m) {
			return m.dest() + "x=Q", nil
		}
		return m.dest() + "=Q", nil
	case m.Kind == KindEnPassant:
		if m.Piece.Kind() != Pawn {
			return "", ErrNotAPawn
		}
		return m.sourceColumn() + "x" + m.dest() + "(ep)", nil
	}

	switch m.Kind {
	case KindMove, KindCapture, KindCheck, KindCheckCapture, KindCheckmate, KindCheckmateCapture:
	default:
		return "", fmt.Errorf("%w %q", ErrUnknownMoveKind, m.Kind)
	}
	var sb strings.Builder
	if m.Piece.Kind() == Pawn {
		if m.Kind.IsCapture() {
			sb.WriteString(m.sourceColumn() + "x")
		}
	} else {
		sb.WriteString(strings.ToUpper(string(m.Piece.Kind())) + m.sourceColumn())
		if m.Kind.IsCapture() {
			sb.WriteString("x")
		}
	}
	sb.WriteString(m.dest())
	sb.WriteString(m.Kind.suffix())
	return sb.String(), nil
}

func promotionCaptures(m Move) bool {
	return len(m.Destination) == 0 || m.Destination[0] != m.Piece.Loc.Column()
}

// Plan computes the notation and the expected removed/added pieces for a
// move made on board. The destination must be a valid square.
func Plan(m Move, board Board) (Delta, error) {
	notation, err := Notation(m)
	if err != nil {
		return Delta{}, err
	}
	delta := Delta{Notation: notation}

	if m.Kind == KindCastling {
		c := castles[m.Side]
		row := m.Color.HomeRow()
		delta.Removed = []Piece{
			NewPiece(Rook, m.Color, NewSquare(c.rookFrom, row)),
			NewPiece(King, m.Color, NewSquare(c.kingFrom, row)),
		}
		delta.Added = []Piece{
			NewPiece(Rook, m.Color, NewSquare(c.rookTo, row)),
			NewPiece(King, m.Color, NewSquare(c.kingTo, row)),
		}
		return delta, nil
	}

	dest, err := ParseSquare(m.dest())
	if err != nil {
		return Delta{}, err
	}
	if !board.Contains(m.Piece) {
		return Delta{}, fmt.Errorf("%w: %s", ErrPieceNotOnBoard, m.Piece)
	}
	if m.Piece.Color() != m.Color {
		return Delta{}, fmt.Errorf("%w: %s", ErrWrongPieceColor, m.Piece)
	}
	delta.Removed = []Piece{m.Piece}

	switch {
	case m.Kind == KindEnPassant:
		captureLoc := NewSquare(dest.Column(), m.Piece.Loc.Row())
		captured, ok := board.At(captureLoc)
		if !ok || captured.Kind() != Pawn {
			return Delta{}, fmt.Errorf("%w %s", ErrNoEnPassantPawn, captureLoc)
		}
		delta.Removed = append(delta.Removed, captured)
		delta.Added = []Piece{{Type: m.Piece.Type, Loc: dest}}
	case m.Kind.IsPromotion():
		if promotionCaptures(m) {
			captured, ok := board.At(dest)
			if !ok {
				return Delta{}, fmt.Errorf("%w %s", ErrNoCapturedPiece, dest)
			}
			delta.Removed = append(delta.Removed, captured)
		}
		delta.Added = []Piece{NewPiece(Queen, m.Color, dest)}
	default:
		if m.Kind.IsCapture() {
			captured, ok := board.At(dest)
			if !ok {
				return Delta{}, fmt.Errorf("%w %s", ErrNoCapturedPiece, dest)
			}
			delta.Removed = append(delta.Removed, captured)
		}
		delta.Added = []Piece{{Type: m.Piece.Type, Loc: dest}}
	}
	return delta, nil
}

// ExpectedSize is the piece count a correct response board must have.
func (d Delta) ExpectedSize(requestPieces int) int {
	return requestPieces - len(d.Removed) + len(d.Added)
}
