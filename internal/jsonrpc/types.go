package jsonrpc

import (
	"encoding/json"
	"fmt"

	"github.com/benbeisheim/makemove-fixtures/internal/model"
)

const (
	Version        = "2.0"
	MethodMakeMove = "MakeMove"
	DefaultID      = 1
)

type Request struct {
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
	ID      int             `json:"id"`
	JSONRPC string          `json:"jsonrpc"`
}

type MakeMoveParams struct {
	BoardState  model.Board `json:"boardState"`
	Move        string      `json:"move"`
	PlayerState model.Color `json:"playerState"`
}

type Response struct {
	ID      *int            `json:"id"`
	JSONRPC string          `json:"jsonrpc,omitempty"`
	Result  *MakeMoveResult `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// MakeMoveResult uses pointers so an absent field can be told apart from an
// empty one; "" is a valid gameState.
type MakeMoveResult struct {
	BoardState  *model.Board `json:"boardState,omitempty"`
	GameState   *string      `json:"gameState,omitempty"`
	PlayerState *string      `json:"playerState,omitempty"`
}

type Error struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("json-rpc error %d: %s", e.Code, e.Message)
}

func NewError(code model.ErrorCode, format string, args ...interface{}) *Error {
	return &Error{Code: int(code), Message: fmt.Sprintf(format, args...)}
}

// NewMakeMoveRequest builds the canonical request the generator embeds in
// fixture files.
func NewMakeMoveRequest(color model.Color, move string, board model.Board) (Request, error) {
	params, err := json.Marshal(MakeMoveParams{BoardState: board, Move: move, PlayerState: color})
	if err != nil {
		return Request{}, err
	}
	return Request{Method: MethodMakeMove, Params: params, ID: DefaultID, JSONRPC: Version}, nil
}

func (r Request) MakeMoveParams() (MakeMoveParams, error) {
	var p MakeMoveParams
	if len(r.Params) == 0 {
		return p, fmt.Errorf("request has no params")
	}
	if err := json.Unmarshal(r.Params, &p); err != nil {
		return p, fmt.Errorf("decode MakeMove params: %w", err)
	}
	return p, nil
}

func ParseRequest(raw []byte) (Request, error) {
	var r Request
	if err := json.Unmarshal(raw, &r); err != nil {
		return Request{}, fmt.Errorf("decode json-rpc request: %w", err)
	}
	return r, nil
}

func ParseResponse(raw []byte) (*Response, error) {
	var r Response
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("decode json-rpc response: %w", err)
	}
	return &r, nil
}

func NewResult(id int, result MakeMoveResult) *Response {
	return &Response{ID: &id, JSONRPC: Version, Result: &result}
}

func NewErrorResponse(id int, err *Error) *Response {
	return &Response{ID: &id, JSONRPC: Version, Error: err}
}
