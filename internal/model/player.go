package model

import (
	"errors"
	"fmt"
)

// Color is the side to move as the API spells it in "playerState".
type Color string

const (
	White Color = "w"
	Black Color = "b"
)

var ErrInvalidColor = errors.New("invalid player color")

func ParseColor(s string) (Color, error) {
	switch Color(s) {
	case White, Black:
		return Color(s), nil
	}
	return "", fmt.Errorf("%w %q: must be w or b", ErrInvalidColor, s)
}

func (c Color) Opponent() Color {
	if c == White {
		return Black
	}
	return White
}

func (c Color) Name() string {
	switch c {
	case White:
		return "white"
	case Black:
		return "black"
	}
	return string(c)
}

// HomeRow is the back rank for the color.
func (c Color) HomeRow() int {
	if c == White {
		return 1
	}
	return 8
}

// PromotionRow is the rank a pawn must stand on before it promotes.
func (c Color) PromotionRow() int {
	if c == White {
		return 7
	}
	return 2
}

// GameState is the "gameState" value returned after a move. The empty
// string means play continues.
type GameState string

const (
	GameStateNone      GameState = ""
	GameStateCheck     GameState = "check"
	GameStateCheckmate GameState = "checkmate"
	GameStateStalemate GameState = "stalemate"
)

var GameStates = []GameState{GameStateNone, GameStateCheck, GameStateCheckmate, GameStateStalemate}

var ErrInvalidGameState = errors.New("invalid game state")

// ParseGameState accepts the literal `""` as well as an empty string for
// continued play.
func ParseGameState(s string) (GameState, error) {
	if s == `""` {
		return GameStateNone, nil
	}
	for _, gs := range GameStates {
		if GameState(s) == gs {
			return gs, nil
		}
	}
	return "", fmt.Errorf("%w %q", ErrInvalidGameState, s)
}

// ErrorCode is a MakeMove JSON-RPC error code.
type ErrorCode int

const (
	ErrorInvalidBoard  ErrorCode = -32000
	ErrorInvalidPlayer ErrorCode = -32010
	ErrorInvalidMove   ErrorCode = -32020
	ErrorUnknown       ErrorCode = -32030
)

var ErrorCodes = []ErrorCode{ErrorInvalidBoard, ErrorInvalidPlayer, ErrorInvalidMove, ErrorUnknown}

func (c ErrorCode) Label() string {
	switch c {
	case ErrorInvalidBoard:
		return "Invalid Board Error"
	case ErrorInvalidPlayer:
		return "Invalid Player Error"
	case ErrorInvalidMove:
		return "Invalid Move Error"
	case ErrorUnknown:
		return "Unknown API Error"
	}
	return fmt.Sprintf("Error %d", int(c))
}
