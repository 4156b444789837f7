package service

import (
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benbeisheim/makemove-fixtures/internal/jsonrpc"
	"github.com/benbeisheim/makemove-fixtures/internal/model"
)

func makeMove(t *testing.T, color model.Color, move string, board model.Board) (jsonrpc.MakeMoveResult, *jsonrpc.Error) {
	t.Helper()
	svc := NewMoveService(nil, zerolog.Nop())
	return svc.MakeMove(jsonrpc.MakeMoveParams{BoardState: board, Move: move, PlayerState: color})
}

func requireResult(t *testing.T, color model.Color, move string, board model.Board) (model.Board, string, string) {
	t.Helper()
	result, rpcErr := makeMove(t, color, move, board)
	require.Nil(t, rpcErr, "unexpected error %v", rpcErr)
	require.NotNil(t, result.BoardState)
	require.NotNil(t, result.GameState)
	require.NotNil(t, result.PlayerState)
	return *result.BoardState, *result.GameState, *result.PlayerState
}

func TestPawnPush(t *testing.T) {
	board, state, player := requireResult(t, model.White, "e4", model.Board{
		{Type: "K", Loc: "e1"}, {Type: "P", Loc: "e2"}, {Type: "k", Loc: "e8"},
	})
	assert.True(t, board.Equal(model.Board{{Type: "K", Loc: "e1"}, {Type: "P", Loc: "e4"}, {Type: "k", Loc: "e8"}}))
	assert.Equal(t, "", state)
	assert.Equal(t, "b", player)
}

func TestRookCaptureGivesCheck(t *testing.T) {
	board, state, _ := requireResult(t, model.White, "Raxa8+", model.Board{
		{Type: "K", Loc: "e1"}, {Type: "R", Loc: "a1"}, {Type: "n", Loc: "a8"}, {Type: "k", Loc: "h8"}, {Type: "p", Loc: "h7"},
	})
	assert.Equal(t, "check", state)
	assert.True(t, board.Contains(model.Piece{Type: "R", Loc: "a8"}))
	assert.Equal(t, 4, board.Len())
}

func TestBackRankMate(t *testing.T) {
	_, state, _ := requireResult(t, model.White, "Raa8#", model.Board{
		{Type: "K", Loc: "g1"}, {Type: "R", Loc: "a1"},
		{Type: "k", Loc: "g8"}, {Type: "p", Loc: "f7"}, {Type: "p", Loc: "g7"}, {Type: "p", Loc: "h7"},
	})
	assert.Equal(t, "checkmate", state)
}

func TestStalemate(t *testing.T) {
	_, state, _ := requireResult(t, model.White, "Qcc7", model.Board{
		{Type: "K", Loc: "b6"}, {Type: "Q", Loc: "c1"}, {Type: "k", Loc: "a8"},
	})
	assert.Equal(t, "stalemate", state)
}

func TestCastlingBothColors(t *testing.T) {
	board, _, _ := requireResult(t, model.White, "0-0", model.Board{
		{Type: "K", Loc: "e1"}, {Type: "R", Loc: "h1"}, {Type: "k", Loc: "e8"},
	})
	assert.True(t, board.Equal(model.Board{{Type: "K", Loc: "g1"}, {Type: "R", Loc: "f1"}, {Type: "k", Loc: "e8"}}))

	board, _, player := requireResult(t, model.Black, "0-0-0", model.Board{
		{Type: "K", Loc: "e1"}, {Type: "k", Loc: "e8"}, {Type: "r", Loc: "a8"},
	})
	assert.True(t, board.Equal(model.Board{{Type: "K", Loc: "e1"}, {Type: "k", Loc: "c8"}, {Type: "r", Loc: "d8"}}))
	assert.Equal(t, "w", player)
}

func TestPromotionAndEnPassant(t *testing.T) {
	board, _, _ := requireResult(t, model.White, "e8=Q", model.Board{
		{Type: "K", Loc: "a1"}, {Type: "P", Loc: "e7"}, {Type: "k", Loc: "h5"},
	})
	assert.True(t, board.Contains(model.Piece{Type: "Q", Loc: "e8"}))

	board, _, _ = requireResult(t, model.Black, "d1=Q", model.Board{
		{Type: "K", Loc: "h8"}, {Type: "p", Loc: "d2"}, {Type: "k", Loc: "a5"},
	})
	assert.True(t, board.Contains(model.Piece{Type: "q", Loc: "d1"}))

	board, _, _ = requireResult(t, model.White, "exd6(ep)", model.Board{
		{Type: "K", Loc: "e1"}, {Type: "P", Loc: "e5"}, {Type: "p", Loc: "d5"}, {Type: "k", Loc: "e8"},
	})
	assert.True(t, board.Equal(model.Board{{Type: "K", Loc: "e1"}, {Type: "P", Loc: "d6"}, {Type: "k", Loc: "e8"}}))
}

func TestMakeMoveErrors(t *testing.T) {
	kings := model.Board{{Type: "K", Loc: "e1"}, {Type: "P", Loc: "e2"}, {Type: "k", Loc: "e8"}}
	tests := []struct {
		name  string
		color model.Color
		move  string
		board model.Board
		code  model.ErrorCode
	}{
		{"bad player", "x", "e4", kings, model.ErrorInvalidPlayer},
		{"empty board", model.White, "e4", model.Board{}, model.ErrorInvalidBoard},
		{"no black king", model.White, "e4", kings[:2], model.ErrorInvalidBoard},
		{"pawn on back rank", model.White, "Kef1", model.Board{{Type: "K", Loc: "e1"}, {Type: "P", Loc: "a1"}, {Type: "k", Loc: "e8"}}, model.ErrorInvalidBoard},
		{"bad piece letter", model.White, "e4", model.Board{{Type: "X", Loc: "e1"}, {Type: "k", Loc: "e8"}}, model.ErrorInvalidBoard},
		{"off board", model.White, "z9", kings, model.ErrorInvalidMove},
		{"illegal", model.White, "e5", kings, model.ErrorInvalidMove},
		{"capture empty", model.White, "exd3", kings, model.ErrorInvalidMove},
		{"wrong side", model.Black, "e4", kings, model.ErrorInvalidMove},
		{"cannot castle", model.White, "0-0", kings, model.ErrorInvalidMove},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, rpcErr := makeMove(t, tt.color, tt.move, tt.board)
			require.NotNil(t, rpcErr)
			assert.Equal(t, int(tt.code), rpcErr.Code)
		})
	}
}

func TestHandlePublishesCalls(t *testing.T) {
	hub := NewCallHub(zerolog.Nop())
	conn := &fakeConn{}
	require.NoError(t, hub.Register("c1", conn))
	svc := NewMoveService(hub, zerolog.Nop())

	req, err := jsonrpc.NewMakeMoveRequest(model.White, "e4", model.Board{
		{Type: "K", Loc: "e1"}, {Type: "P", Loc: "e2"}, {Type: "k", Loc: "e8"},
	})
	require.NoError(t, err)
	raw, err := json.Marshal(req)
	require.NoError(t, err)

	resp := svc.Handle(raw)
	require.Nil(t, resp.Error)
	require.NotNil(t, resp.ID)
	assert.Equal(t, 1, *resp.ID)
	require.Len(t, conn.written, 1)

	resp = svc.Handle([]byte(`{"method":"Resign","params":{},"id":4,"jsonrpc":"2.0"}`))
	require.NotNil(t, resp.Error)
	assert.Equal(t, int(model.ErrorUnknown), resp.Error.Code)
	assert.Equal(t, 4, *resp.ID)

	resp = svc.Handle([]byte(`not json`))
	require.NotNil(t, resp.Error)
	assert.Nil(t, resp.ID)
	assert.Len(t, conn.written, 3)
}
