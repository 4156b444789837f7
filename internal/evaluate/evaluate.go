// Package evaluate compares a MakeMove response with what a fixture expects.
package evaluate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/benbeisheim/makemove-fixtures/internal/fixture"
	"github.com/benbeisheim/makemove-fixtures/internal/jsonrpc"
	"github.com/benbeisheim/makemove-fixtures/internal/model"
)

type Outcome string

const (
	FunctionalPass    Outcome = "functionalTestPASS"
	FunctionalFail    Outcome = "functionalTestFAIL"
	ExpectedErrorPass Outcome = "expectedErrorCasePASS"
	ExpectedErrorFail Outcome = "expectedErrorCaseFAIL"
)

func (o Outcome) Passed() bool {
	return o == FunctionalPass || o == ExpectedErrorPass
}

var (
	ErrNoResponse  = errors.New("no response to evaluate")
	ErrZeroCode    = errors.New("error response carries code 0")
	ErrNoErrorCode = errors.New("expected-error fixture has no error code")
)

type Verdict struct {
	Outcome Outcome
	Reason  string
}

func (v Verdict) String() string {
	if v.Reason == "" {
		return string(v.Outcome)
	}
	return fmt.Sprintf("%s: %s", v.Outcome, v.Reason)
}

// Expectation is everything the evaluator needs from a fixture.
type Expectation struct {
	Kind      fixture.Kind
	ErrorCode int

	RequestID    int
	RequestBoard model.Board
	GameState    model.GameState
	PlayerState  model.Color
	Removed      []model.Piece
	Added        []model.Piece

	// Strict also requires every request piece that the move does not
	// touch to be on the response board.
	Strict bool
}

// FromFixture builds the expectation for f. Functional fixtures must embed
// a decodable request.
func FromFixture(f *fixture.Fixture, strict bool) (Expectation, error) {
	exp := Expectation{Kind: f.Kind, Strict: strict}
	if f.Kind == fixture.ExpectedError {
		if f.ErrorCode == 0 {
			return Expectation{}, ErrNoErrorCode
		}
		exp.ErrorCode = f.ErrorCode
		return exp, nil
	}

	board, err := f.RequestBoard()
	if err != nil {
		return Expectation{}, err
	}
	id, err := f.RequestID()
	if err != nil {
		return Expectation{}, err
	}
	exp.RequestID = id
	exp.RequestBoard = board
	exp.GameState = f.GameState
	exp.PlayerState = f.PlayerState
	exp.Removed = f.MovedPieces
	exp.Added = f.ExpectedPieces
	return exp, nil
}

func pass(o Outcome) Verdict {
	return Verdict{Outcome: o}
}

func fail(o Outcome, format string, args ...interface{}) Verdict {
	return Verdict{Outcome: o, Reason: fmt.Sprintf(format, args...)}
}

// Evaluate decides the verdict for resp. Mismatches are verdicts; an error
// is returned only when the response or expectation cannot be judged.
func Evaluate(exp Expectation, resp *jsonrpc.Response) (Verdict, error) {
	if resp == nil {
		return Verdict{}, ErrNoResponse
	}
	if exp.Kind == fixture.ExpectedError {
		return evaluateErrorCase(exp, resp)
	}
	return evaluateFunctional(exp, resp)
}

func evaluateErrorCase(exp Expectation, resp *jsonrpc.Response) (Verdict, error) {
	if resp.Error == nil {
		return fail(ExpectedErrorFail, "expected error code %d (%s) but the API returned a result",
			exp.ErrorCode, model.ErrorCode(exp.ErrorCode).Label()), nil
	}
	if resp.Error.Code == 0 {
		return Verdict{}, ErrZeroCode
	}
	if resp.Error.Code != exp.ErrorCode {
		return fail(ExpectedErrorFail, "expected error code %d (%s), received %d (%s)",
			exp.ErrorCode, model.ErrorCode(exp.ErrorCode).Label(),
			resp.Error.Code, model.ErrorCode(resp.Error.Code).Label()), nil
	}
	return pass(ExpectedErrorPass), nil
}

func evaluateFunctional(exp Expectation, resp *jsonrpc.Response) (Verdict, error) {
	if resp.Error != nil {
		return fail(FunctionalFail, "API returned error %d: %s", resp.Error.Code, resp.Error.Message), nil
	}
	if resp.ID == nil {
		return fail(FunctionalFail, "response has no id"), nil
	}
	if *resp.ID != exp.RequestID {
		return fail(FunctionalFail, "response id %d does not match request id %d", *resp.ID, exp.RequestID), nil
	}
	result := resp.Result
	if result == nil {
		return fail(FunctionalFail, "response has no result"), nil
	}

	if result.GameState == nil {
		return fail(FunctionalFail, "response has no gameState, expected %q", exp.GameState), nil
	}
	if model.GameState(*result.GameState) != exp.GameState {
		return fail(FunctionalFail, "expected gameState %q, received %q", exp.GameState, *result.GameState), nil
	}
	if result.PlayerState == nil {
		return fail(FunctionalFail, "response has no playerState, expected %q", exp.PlayerState), nil
	}
	if model.Color(*result.PlayerState) != exp.PlayerState {
		return fail(FunctionalFail, "expected playerState %q, received %q", exp.PlayerState, *result.PlayerState), nil
	}
	if result.BoardState == nil {
		return fail(FunctionalFail, "response has no boardState"), nil
	}

	requestSize, err := exp.RequestBoard.CheckSize()
	if err != nil {
		return Verdict{}, fmt.Errorf("request: %w", err)
	}
	board := *result.BoardState
	responseSize, err := board.CheckSize()
	if err != nil {
		return Verdict{}, fmt.Errorf("response: %w", err)
	}

	delta := model.Delta{Removed: exp.Removed, Added: exp.Added}
	if want := delta.ExpectedSize(requestSize); responseSize != want {
		return fail(FunctionalFail, "expected %d pieces on the response board (%d - %d + %d), received %d",
			want, requestSize, len(exp.Removed), len(exp.Added), responseSize), nil
	}

	var stale []string
	for _, p := range exp.Removed {
		if board.Contains(p) && !containsPiece(exp.Added, p) {
			stale = append(stale, p.String())
		}
	}
	if len(stale) > 0 {
		return fail(FunctionalFail, "pieces that should have moved are still on the board: %s", strings.Join(stale, ", ")), nil
	}
	if missing := model.Board(exp.Added).Missing(board); len(missing) > 0 {
		return fail(FunctionalFail, "expected pieces missing from the board: %s", joinPieces(missing)), nil
	}

	if exp.Strict {
		untouched := exp.RequestBoard
		for _, p := range exp.Removed {
			untouched, _ = untouched.Remove(p)
		}
		if missing := untouched.Missing(board); len(missing) > 0 {
			return fail(FunctionalFail, "untouched pieces missing from the board: %s", joinPieces(missing)), nil
		}
	}
	return pass(FunctionalPass), nil
}

func containsPiece(pieces []model.Piece, p model.Piece) bool {
	return model.Board(pieces).Contains(p)
}

func joinPieces(pieces []model.Piece) string {
	names := make([]string, len(pieces))
	for i, p := range pieces {
		names[i] = p.String()
	}
	return strings.Join(names, ", ")
}
