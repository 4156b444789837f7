package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/notnil/chess"
	"github.com/rs/zerolog"

	"github.com/benbeisheim/makemove-fixtures/internal/jsonrpc"
	"github.com/benbeisheim/makemove-fixtures/internal/model"
)

// MoveService implements the MakeMove method on top of a rules engine. Each
// call is independent: the position is rebuilt from the request board.
type MoveService struct {
	hub *CallHub
	log zerolog.Logger
}

func NewMoveService(hub *CallHub, log zerolog.Logger) *MoveService {
	return &MoveService{hub: hub, log: log}
}

// Handle decodes and dispatches one raw JSON-RPC request. The response is
// also published to the call hub.
func (s *MoveService) Handle(raw []byte) *jsonrpc.Response {
	resp := s.dispatch(raw)
	if s.hub != nil {
		s.hub.Publish(raw, resp)
	}
	return resp
}

func (s *MoveService) dispatch(raw []byte) *jsonrpc.Response {
	req, err := jsonrpc.ParseRequest(raw)
	if err != nil {
		return &jsonrpc.Response{
			JSONRPC: jsonrpc.Version,
			Error:   jsonrpc.NewError(model.ErrorUnknown, "%v", err),
		}
	}
	if req.Method != jsonrpc.MethodMakeMove {
		return jsonrpc.NewErrorResponse(req.ID, jsonrpc.NewError(model.ErrorUnknown, "unknown method %q", req.Method))
	}
	params, err := req.MakeMoveParams()
	if err != nil {
		return jsonrpc.NewErrorResponse(req.ID, jsonrpc.NewError(model.ErrorUnknown, "%v", err))
	}
	result, rpcErr := s.MakeMove(params)
	if rpcErr != nil {
		s.log.Debug().Int("code", rpcErr.Code).Str("move", params.Move).Msg(rpcErr.Message)
		return jsonrpc.NewErrorResponse(req.ID, rpcErr)
	}
	return jsonrpc.NewResult(req.ID, result)
}

// MakeMove validates the side to move, the board and the move, then plays
// the move.
func (s *MoveService) MakeMove(params jsonrpc.MakeMoveParams) (jsonrpc.MakeMoveResult, *jsonrpc.Error) {
	color, err := model.ParseColor(string(params.PlayerState))
	if err != nil {
		return jsonrpc.MakeMoveResult{}, jsonrpc.NewError(model.ErrorInvalidPlayer, "%v", err)
	}
	if err := validateBoard(params.BoardState); err != nil {
		return jsonrpc.MakeMoveResult{}, jsonrpc.NewError(model.ErrorInvalidBoard, "%v", err)
	}
	n, err := parseNotation(params.Move)
	if err != nil {
		return jsonrpc.MakeMoveResult{}, jsonrpc.NewError(model.ErrorInvalidMove, "%v", err)
	}

	fen, err := chess.FEN(toFEN(params.BoardState, color, n))
	if err != nil {
		return jsonrpc.MakeMoveResult{}, jsonrpc.NewError(model.ErrorInvalidBoard, "%v", err)
	}
	game := chess.NewGame(fen)

	move, err := match(game, n)
	if err != nil {
		return jsonrpc.MakeMoveResult{}, jsonrpc.NewError(model.ErrorInvalidMove, "%s: %v", params.Move, err)
	}
	if err := game.Move(move); err != nil {
		return jsonrpc.MakeMoveResult{}, jsonrpc.NewError(model.ErrorInvalidMove, "%s: %v", params.Move, err)
	}

	board := fromSquareMap(game.Position().Board().SquareMap())
	gameState := string(gameStateAfter(game, move))
	next := string(color.Opponent())
	return jsonrpc.MakeMoveResult{BoardState: &board, GameState: &gameState, PlayerState: &next}, nil
}

var (
	errKingCount    = errors.New("each side needs exactly one king")
	errPawnBackRank = errors.New("pawns cannot stand on the first or last row")
)

func validateBoard(board model.Board) error {
	if err := board.Validate(); err != nil {
		return err
	}
	kings := map[model.Color]int{}
	for _, p := range board {
		switch p.Kind() {
		case model.King:
			kings[p.Color()]++
		case model.Pawn:
			if row := p.Loc.Row(); row == 1 || row == 8 {
				return fmt.Errorf("%w: %s", errPawnBackRank, p)
			}
		}
	}
	if kings[model.White] != 1 || kings[model.Black] != 1 {
		return fmt.Errorf("%w: white %d, black %d", errKingCount, kings[model.White], kings[model.Black])
	}
	return nil
}

// toFEN describes the request position. Castling rights are granted when
// king and rook stand on their home squares, and the en passant target is
// set only for moves written as en passant.
func toFEN(board model.Board, turn model.Color, n notation) string {
	var sb strings.Builder
	for row := 8; row >= 1; row-- {
		empty := 0
		for i := 0; i < len(model.Columns); i++ {
			p, ok := board.At(model.NewSquare(model.Columns[i], row))
			if !ok {
				empty++
				continue
			}
			if empty > 0 {
				fmt.Fprintf(&sb, "%d", empty)
				empty = 0
			}
			sb.WriteString(p.Type)
		}
		if empty > 0 {
			fmt.Fprintf(&sb, "%d", empty)
		}
		if row > 1 {
			sb.WriteByte('/')
		}
	}

	castling := ""
	for _, right := range []struct {
		flag string
		king model.Piece
		rook model.Piece
	}{
		{"K", model.Piece{Type: "K", Loc: "e1"}, model.Piece{Type: "R", Loc: "h1"}},
		{"Q", model.Piece{Type: "K", Loc: "e1"}, model.Piece{Type: "R", Loc: "a1"}},
		{"k", model.Piece{Type: "k", Loc: "e8"}, model.Piece{Type: "r", Loc: "h8"}},
		{"q", model.Piece{Type: "k", Loc: "e8"}, model.Piece{Type: "r", Loc: "a8"}},
	} {
		if board.Contains(right.king) && board.Contains(right.rook) {
			castling += right.flag
		}
	}
	if castling == "" {
		castling = "-"
	}

	ep := "-"
	if n.enPassant {
		ep = string(n.dest)
	}
	return fmt.Sprintf("%s %s %s %s 0 1", sb.String(), turn, castling, ep)
}

var pieceTypes = map[model.PieceType]chess.PieceType{
	model.King:   chess.King,
	model.Queen:  chess.Queen,
	model.Rook:   chess.Rook,
	model.Bishop: chess.Bishop,
	model.Knight: chess.Knight,
	model.Pawn:   chess.Pawn,
}

// match finds the single legal move the notation describes.
func match(game *chess.Game, n notation) (*chess.Move, error) {
	board := game.Position().Board()
	var found []*chess.Move
	for _, m := range game.ValidMoves() {
		if n.castle != "" {
			if (n.castle == model.Kingside && m.HasTag(chess.KingSideCastle)) ||
				(n.castle == model.Queenside && m.HasTag(chess.QueenSideCastle)) {
				found = append(found, m)
			}
			continue
		}
		if m.S2().String() != string(n.dest) {
			continue
		}
		if board.Piece(m.S1()).Type() != pieceTypes[n.piece] {
			continue
		}
		if n.fromColumn != 0 && m.S1().File().String() != string(n.fromColumn) {
			continue
		}
		captures := m.HasTag(chess.Capture) || m.HasTag(chess.EnPassant)
		if captures != n.capture || m.HasTag(chess.EnPassant) != n.enPassant {
			continue
		}
		if n.promotion != (m.Promo() != chess.NoPieceType) {
			continue
		}
		if n.promotion && m.Promo() != chess.Queen {
			continue
		}
		found = append(found, m)
	}
	switch len(found) {
	case 0:
		return nil, errors.New("not a legal move in this position")
	case 1:
		return found[0], nil
	}
	return nil, fmt.Errorf("ambiguous, %d legal moves match", len(found))
}

func fromSquareMap(squares map[chess.Square]chess.Piece) model.Board {
	board := make(model.Board, 0, len(squares))
	for sq, p := range squares {
		if p == chess.NoPiece {
			continue
		}
		letter := p.Type().String()
		if p.Color() == chess.White {
			letter = strings.ToUpper(letter)
		}
		board = append(board, model.Piece{Type: letter, Loc: model.Square(sq.String())})
	}
	sort.Slice(board, func(i, j int) bool {
		return board[i].Loc < board[j].Loc
	})
	return board
}

func gameStateAfter(game *chess.Game, move *chess.Move) model.GameState {
	switch game.Method() {
	case chess.Checkmate:
		return model.GameStateCheckmate
	case chess.Stalemate:
		return model.GameStateStalemate
	}
	if move.HasTag(chess.Check) {
		return model.GameStateCheck
	}
	return model.GameStateNone
}
