// Package generator walks an operator through building a MakeMove fixture.
package generator

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/benbeisheim/makemove-fixtures/internal/fixture"
	"github.com/benbeisheim/makemove-fixtures/internal/jsonrpc"
	"github.com/benbeisheim/makemove-fixtures/internal/model"
	"github.com/benbeisheim/makemove-fixtures/internal/prompt"
)

const intro = `
      **** MakeMove API test case generator ****

Answer the questions below to build a test definition file. Expected error
cases ('e') are written to the expected-fail directory, functional tests
('f') to the expected-pass directory.
`

const buildHelp = `Building a new starting board.
Enter each piece as one 4-character string, <color><piece><loc>, case-insensitive.
For example a black knight on c6 is bnc6 ('n' for knight, since king gets 'k').
White pieces are upper-cased for you: wra1 puts an "R" on a1.`

var ErrNoBoard = errors.New("no starting board chosen")

type Session struct {
	p      *prompt.Prompter
	repo   fixture.Repository
	boards fixture.BoardRepository
	log    zerolog.Logger
}

func NewSession(p *prompt.Prompter, repo fixture.Repository, boards fixture.BoardRepository, log zerolog.Logger) *Session {
	return &Session{p: p, repo: repo, boards: boards, log: log}
}

// Run asks every question, writes the fixture and returns its path.
func (s *Session) Run() (string, error) {
	s.p.Say("%s", intro)

	testType, err := s.p.Ask("Is this an expected error case ('e') or a functional test ('f')? ", "e", "f")
	if err != nil {
		return "", err
	}
	kind := fixture.Functional
	if testType == "e" {
		kind = fixture.ExpectedError
	}
	description, err := s.p.Line("Please enter a 1-line description of this test case:\n")
	if err != nil {
		return "", err
	}
	name, err := s.askName()
	if err != nil {
		return "", err
	}
	colorAnswer, err := s.p.Ask("Which color moves, white ('w') or black ('b')? ", "w", "b")
	if err != nil {
		return "", err
	}
	color := model.Color(colorAnswer)

	board, err := s.chooseBoard()
	if err != nil {
		return "", err
	}
	move, delta, err := s.buildMove(kind, color, board)
	if err != nil {
		return "", err
	}
	s.log.Debug().Str("notation", delta.Notation).Str("kind", string(move.Kind)).Msg("move built")

	req, err := jsonrpc.NewMakeMoveRequest(color, delta.Notation, board)
	if err != nil {
		return "", err
	}
	raw, err := json.Marshal(req)
	if err != nil {
		return "", err
	}

	f := &fixture.Fixture{
		Name:        name,
		Description: description,
		Kind:        kind,
		Request:     string(raw),
	}
	if kind == fixture.ExpectedError {
		code, err := s.chooseErrorCode()
		if err != nil {
			return "", err
		}
		f.ErrorCode = int(code)
	} else {
		gameState, err := s.p.Ask(`What gameState value do you expect in the response? "" for continue play: `,
			`""`, "check", "checkmate", "stalemate")
		if err != nil {
			return "", err
		}
		f.GameState, err = model.ParseGameState(gameState)
		if err != nil {
			return "", err
		}
		f.PlayerState = color.Opponent()
		f.MovedPieces = delta.Removed
		f.ExpectedPieces = delta.Added
	}

	path, err := s.repo.Write(f)
	if err != nil {
		return "", fmt.Errorf("write test definition file: %w", err)
	}
	s.p.Say("Congratulations, test definition file %s has been written", path)
	s.p.Say("and is ready for testing with fixturerun.")
	s.log.Info().Str("path", path).Str("kind", kind.String()).Msg("fixture written")
	return path, nil
}

func (s *Session) askName() (string, error) {
	for {
		name, err := s.p.Line("Please enter your testcase name, preferably per naming conventions: ")
		if err != nil {
			return "", err
		}
		if name != "" && !strings.ContainsAny(name, `/\. `) {
			return name, nil
		}
		s.p.Say("Test names must be non-empty and contain no spaces, dots or slashes.")
	}
}

func (s *Session) chooseErrorCode() (model.ErrorCode, error) {
	labels := make([]string, len(model.ErrorCodes))
	for i, code := range model.ErrorCodes {
		labels[i] = fmt.Sprintf("%s (%d)", code.Label(), int(code))
	}
	i, err := s.p.Choose("Which error code do you expect the API to return?", labels)
	if err != nil {
		return 0, err
	}
	return model.ErrorCodes[i], nil
}

// buildMove drives a MoveBuilder from the prompter until it is done or
// aborted.
func (s *Session) buildMove(kind fixture.Kind, color model.Color, board model.Board) (model.Move, model.Delta, error) {
	b := NewMoveBuilder(kind, color, board)
	for b.State() != StateDone && b.State() != StateAborted {
		msg, legal := b.Prompt()
		var answer string
		var err error
		switch b.State() {
		case StateMoveType:
			var i int
			i, err = s.p.Choose(msg, legal)
			if err == nil {
				answer = legal[i]
			}
		case StateDestination, StateSourcePiece:
			board.Draw(s.p.Writer())
			answer, err = s.p.Line(msg)
		default:
			answer, err = s.p.Ask(msg+" ", legal...)
		}
		if err != nil {
			return model.Move{}, model.Delta{}, err
		}
		if err := b.Submit(answer); err != nil {
			s.p.Say("ERROR: %v", err)
		}
	}
	return b.Result()
}

func (s *Session) chooseBoard() (model.Board, error) {
	for {
		useRepo, err := s.p.Confirm("Would you like to use or inspect starting boards in the Test_Board repository?")
		if err != nil {
			return nil, err
		}
		if !useRepo {
			build, err := s.p.Confirm("Would you like to create a new starting board?")
			if err != nil {
				return nil, err
			}
			if build {
				return s.buildBoard()
			}
			s.p.Say("Not sure what you want to do - please try again.")
			continue
		}

		board, err := s.boardFromRepo()
		if errors.Is(err, ErrNoBoard) {
			return s.buildBoard()
		}
		if err != nil {
			return nil, err
		}
		s.p.Say("Here is the starting board you've chosen:")
		board.Draw(s.p.Writer())
		ok, err := s.p.Confirm("Is this the board you want to use?")
		if err != nil {
			return nil, err
		}
		if ok {
			return board, nil
		}
	}
}

// boardFromRepo returns ErrNoBoard when the operator decides to build a new
// board instead.
func (s *Session) boardFromRepo() (model.Board, error) {
	for {
		categories, err := s.boards.Categories()
		if errors.Is(err, os.ErrNotExist) || (err == nil && len(categories) == 0) {
			s.p.Say("The Test_Board repository is empty.")
			return nil, ErrNoBoard
		}
		if err != nil {
			return nil, err
		}
		i, err := s.p.Choose("Here are the categories of starting boards in the Test_Board repository:", categories)
		if err != nil {
			return nil, err
		}
		category := categories[i]
		names, err := s.boards.Boards(category)
		if err != nil {
			return nil, err
		}
		if len(names) == 0 {
			s.p.Say("There are no boards in the %s category yet.", category)
		} else {
			s.p.Say("Here is the current list of %d boards in %s:", len(names), category)
			for i, name := range names {
				s.p.Say(" %d: %s", i+1, name)
			}
		}

		legal := []string{"a", "b"}
		if len(names) > 0 {
			legal = append(legal, "u")
		}
		next, err := s.p.Ask("Use one of these boards ('u'), inspect another category ('a'), or build a new board ('b')? ", legal...)
		if err != nil {
			return nil, err
		}
		switch next {
		case "a":
			continue
		case "b":
			return nil, ErrNoBoard
		}
		j, err := s.p.Choose("Which board?", names)
		if err != nil {
			return nil, err
		}
		return s.boards.LoadBoard(category, names[j])
	}
}

func (s *Session) askPiece() (model.Piece, error) {
	for {
		answer, err := s.p.Line("Please enter your 4-character color/piece/loc value <color><piece><loc> (case-insensitive): ")
		if err != nil {
			return model.Piece{}, err
		}
		piece, err := model.ParsePieceDescriptor(answer)
		if err == nil {
			return piece, nil
		}
		s.p.Say("Invalid entry: %v", err)
	}
}

func (s *Session) buildBoard() (model.Board, error) {
	s.p.Say("%s", buildHelp)
	var board model.Board
	for {
		s.p.Say("Current board:")
		board.Draw(s.p.Writer())
		step, err := s.p.Ask("Would you like to add a new piece ('a'), remove an existing piece ('r'), or declare the board finished ('f'): ", "a", "r", "f")
		if err != nil {
			return nil, err
		}
		switch step {
		case "a":
			piece, err := s.askPiece()
			if err != nil {
				return nil, err
			}
			if other, taken := board.At(piece.Loc); taken {
				s.p.Say("Square %s already holds %s.", piece.Loc, other)
				continue
			}
			if board.Len() >= model.MaxPieces {
				s.p.Say("The board already has %d pieces.", board.Len())
				continue
			}
			board = board.Add(piece)
		case "r":
			piece, err := s.askPiece()
			if err != nil {
				return nil, err
			}
			if board.Len() < 2 {
				s.p.Say("Can't remove a piece from a board with %d pieces.", board.Len())
				continue
			}
			var found bool
			if board, found = board.Remove(piece); !found {
				s.p.Say("%s is not on the board.", piece)
			}
		case "f":
			if err := board.Validate(); err != nil {
				s.p.Say("The board is not finished: %v", err)
				continue
			}
			s.p.Say("Finished board:")
			board.Draw(s.p.Writer())
			if err := s.offerSave(board); err != nil {
				return nil, err
			}
			return board, nil
		}
	}
}

func (s *Session) offerSave(board model.Board) error {
	save, err := s.p.Confirm("Would you like to add this new board to the Test_Board repository?")
	if err != nil || !save {
		return err
	}
	var category string
	categories, err := s.boards.Categories()
	if err == nil && len(categories) > 0 {
		i, err := s.p.Choose("What Test_Board repository category should this board be saved under?", categories)
		if err != nil {
			return err
		}
		category = categories[i]
	} else {
		category, err = s.p.Ask("Name a new Test_Board category: ")
		if err != nil {
			return err
		}
	}
	name, err := s.p.Ask("Please enter a name for this new board: ")
	if err != nil {
		return err
	}
	path, err := s.boards.SaveBoard(category, name, board)
	if err != nil {
		return err
	}
	s.p.Say("Saved new starting board to %s", path)
	return nil
}
