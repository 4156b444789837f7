package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/benbeisheim/makemove-fixtures/internal/model"
)

var ErrBadNotation = errors.New("unrecognized move notation")

// notation is a parsed move string. Only the forms the fixture generator
// writes are understood: 0-0, 0-0-0, e8=Q, e8x=Q, exd6(ep), e4, exd5,
// Re1, Raxa8 and any of them followed by + or #.
type notation struct {
	piece      model.PieceType
	fromColumn byte
	capture    bool
	dest       model.Square
	promotion  bool
	enPassant  bool
	castle     model.CastleSide
}

func parseNotation(s string) (notation, error) {
	text := strings.TrimRight(strings.TrimSpace(s), "+#")
	switch text {
	case "0-0", "O-O":
		return notation{piece: model.King, castle: model.Kingside}, nil
	case "0-0-0", "O-O-O":
		return notation{piece: model.King, castle: model.Queenside}, nil
	}

	n := notation{piece: model.Pawn}
	switch {
	case strings.HasSuffix(text, "(ep)"):
		n.enPassant = true
		n.capture = true
		text = strings.TrimSuffix(text, "(ep)")
	case strings.HasSuffix(text, "x=Q"):
		n.promotion = true
		n.capture = true
		text = strings.TrimSuffix(text, "x=Q")
	case strings.HasSuffix(text, "=Q"):
		n.promotion = true
		text = strings.TrimSuffix(text, "=Q")
	}

	if len(text) > 0 && strings.ContainsRune("KQRBN", rune(text[0])) {
		if n.promotion || n.enPassant {
			return notation{}, fmt.Errorf("%w %q: only pawns promote or capture en passant", ErrBadNotation, s)
		}
		n.piece = model.PieceType(strings.ToLower(text[:1]))
		text = text[1:]
		if i := strings.IndexByte(text, 'x'); i >= 0 {
			if i > 1 {
				return notation{}, fmt.Errorf("%w %q", ErrBadNotation, s)
			}
			if i == 1 {
				n.fromColumn = text[0]
			}
			n.capture = true
			text = text[i+1:]
		} else if len(text) == 3 {
			n.fromColumn = text[0]
			text = text[1:]
		}
	} else if i := strings.IndexByte(text, 'x'); i >= 0 {
		if i != 1 || n.promotion {
			return notation{}, fmt.Errorf("%w %q: pawn captures name only the source column", ErrBadNotation, s)
		}
		n.fromColumn = text[0]
		n.capture = true
		text = text[2:]
	} else if n.enPassant {
		return notation{}, fmt.Errorf("%w %q: en passant is a capture", ErrBadNotation, s)
	}

	if n.fromColumn != 0 && !strings.ContainsRune(model.Columns, rune(n.fromColumn)) {
		return notation{}, fmt.Errorf("%w %q: bad source column", ErrBadNotation, s)
	}
	dest, err := model.ParseSquare(text)
	if err != nil {
		return notation{}, fmt.Errorf("%w %q: %v", ErrBadNotation, s, err)
	}
	n.dest = dest
	return n, nil
}
