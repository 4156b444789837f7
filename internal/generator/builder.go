package generator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/benbeisheim/makemove-fixtures/internal/fixture"
	"github.com/benbeisheim/makemove-fixtures/internal/model"
)

type State int

const (
	StateMoveType State = iota
	StateCapture
	StateCastleSide
	StateSourcePiece
	StateDestination
	StateAcceptMalformed
	StateConfirm
	StateDone
	StateAborted
)

var stateNames = map[State]string{
	StateMoveType:        "move type",
	StateCapture:         "capture",
	StateCastleSide:      "castle side",
	StateSourcePiece:     "source piece",
	StateDestination:     "destination",
	StateAcceptMalformed: "accept malformed",
	StateConfirm:         "confirm",
	StateDone:            "done",
	StateAborted:         "aborted",
}

func (s State) String() string {
	return stateNames[s]
}

var (
	ErrBuilderFinished = errors.New("move builder already finished")
	ErrInvalidAnswer   = errors.New("invalid answer")
)

// MoveBuilder collects a move one answer at a time. It does no I/O: the
// caller shows Prompt, reads an answer and hands it to Submit. A recoverable
// error from Submit leaves the state unchanged so the same question can be
// asked again.
type MoveBuilder struct {
	testKind fixture.Kind
	color    model.Color
	board    model.Board

	state     State
	move      model.Move
	malformed string
	delta     model.Delta
	err       error
}

func NewMoveBuilder(testKind fixture.Kind, color model.Color, board model.Board) *MoveBuilder {
	b := &MoveBuilder{testKind: testKind, color: color, board: board}
	b.reset()
	return b
}

func (b *MoveBuilder) reset() {
	b.state = StateMoveType
	b.move = model.Move{Color: b.color}
	b.malformed = ""
	b.delta = model.Delta{}
}

func (b *MoveBuilder) State() State {
	return b.state
}

// Prompt returns the question for the current state and, when the answer is
// restricted, the legal answers.
func (b *MoveBuilder) Prompt() (string, []string) {
	switch b.state {
	case StateMoveType:
		return "What sort of move do you want to make?\n" +
			"Choose 'check', 'checkmate' or 'pawnpromotion' even if it includes a capture.", kindNames()
	case StateCapture:
		return fmt.Sprintf("Will this %s move include a capture?", b.move.Kind), []string{"y", "n"}
	case StateCastleSide:
		return "Castle kingside ('k') or queenside ('q')?", []string{"k", "q"}
	case StateSourcePiece:
		return fmt.Sprintf("Which piece makes the %s? Enter <color><piece><loc>, for example wpe2: ", b.move.Kind), nil
	case StateDestination:
		return fmt.Sprintf("What square (loc) do you want to move your piece to for this %s?: ", b.move.Kind), nil
	case StateAcceptMalformed:
		return fmt.Sprintf("%q is not a board square and the API should reject it. Did you intend that to be the expected error?", b.malformed), []string{"y", "n"}
	case StateConfirm:
		return fmt.Sprintf("Our %s move will be %q. Use it?", b.move.Kind, b.delta.Notation), []string{"y", "n"}
	}
	return "", nil
}

func kindNames() []string {
	names := make([]string, len(model.MenuKinds))
	for i, k := range model.MenuKinds {
		names[i] = string(k)
	}
	return names
}

// Submit applies an answer to the current state.
func (b *MoveBuilder) Submit(answer string) error {
	answer = strings.TrimSpace(answer)
	switch b.state {
	case StateMoveType:
		return b.submitKind(answer)
	case StateCapture:
		yes, err := yesNo(answer)
		if err != nil {
			return err
		}
		if yes {
			b.move.Kind = b.move.Kind.WithCapture()
		}
		b.state = StateSourcePiece
	case StateCastleSide:
		side := model.CastleSide(strings.ToLower(answer))
		if side != model.Kingside && side != model.Queenside {
			return fmt.Errorf("%w %q: enter k or q", ErrInvalidAnswer, answer)
		}
		b.move.Side = side
		return b.plan()
	case StateSourcePiece:
		return b.submitSource(answer)
	case StateDestination:
		return b.submitDestination(answer)
	case StateAcceptMalformed:
		yes, err := yesNo(answer)
		if err != nil {
			return err
		}
		if !yes {
			b.malformed = ""
			b.state = StateDestination
			return nil
		}
		b.move.Destination = model.Square(b.malformed)
		notation, err := model.Notation(b.move)
		if err != nil {
			return b.fail(err)
		}
		b.delta = model.Delta{Notation: notation}
		b.state = StateConfirm
	case StateConfirm:
		yes, err := yesNo(answer)
		if err != nil {
			return err
		}
		if !yes {
			b.reset()
			return nil
		}
		b.state = StateDone
	default:
		return ErrBuilderFinished
	}
	return nil
}

func yesNo(answer string) (bool, error) {
	switch strings.ToLower(answer) {
	case "y":
		return true, nil
	case "n":
		return false, nil
	}
	return false, fmt.Errorf("%w %q: enter y or n", ErrInvalidAnswer, answer)
}

func (b *MoveBuilder) submitKind(answer string) error {
	kind := model.MoveKind(strings.ToLower(answer))
	known := false
	for _, k := range model.MenuKinds {
		if k == kind {
			known = true
		}
	}
	if !known {
		return fmt.Errorf("%w %q", model.ErrUnknownMoveKind, answer)
	}
	b.move.Kind = kind
	switch {
	case kind.AsksCapture():
		b.state = StateCapture
	case kind == model.KindCastling:
		b.state = StateCastleSide
	default:
		b.state = StateSourcePiece
	}
	return nil
}

func (b *MoveBuilder) submitSource(answer string) error {
	piece, err := model.ParsePieceDescriptor(answer)
	if err != nil {
		return err
	}
	if b.testKind == fixture.Functional {
		if !b.board.Contains(piece) {
			return fmt.Errorf("%w: %s", model.ErrPieceNotOnBoard, piece)
		}
		if piece.Color() != b.color {
			return fmt.Errorf("%w: %s", model.ErrWrongPieceColor, piece)
		}
	}
	if (b.move.Kind.IsPromotion() || b.move.Kind == model.KindEnPassant) && piece.Kind() != model.Pawn {
		return fmt.Errorf("%w: %s", model.ErrNotAPawn, piece)
	}
	if b.move.Kind.IsPromotion() && piece.Loc.Row() != b.color.PromotionRow() {
		return b.fail(fmt.Errorf("%w: %s pawn on row %d, need row %d",
			model.ErrPromotionRank, b.color.Name(), piece.Loc.Row(), b.color.PromotionRow()))
	}
	b.move.Piece = piece
	b.state = StateDestination
	return nil
}

func (b *MoveBuilder) submitDestination(answer string) error {
	dest, err := model.ParseSquare(strings.ToLower(answer))
	if err != nil {
		if b.testKind == fixture.Functional {
			return err
		}
		b.malformed = answer
		b.state = StateAcceptMalformed
		return nil
	}
	b.move.Destination = dest
	return b.plan()
}

// plan computes the delta for a complete move. Expected-error fixtures only
// need the notation, so only fatal planning errors stop them.
func (b *MoveBuilder) plan() error {
	delta, err := model.Plan(b.move, b.board)
	if err != nil {
		if errors.Is(err, model.ErrFatalInput) {
			return b.fail(err)
		}
		if b.testKind == fixture.Functional {
			return err
		}
		notation, nerr := model.Notation(b.move)
		if nerr != nil {
			return nerr
		}
		delta = model.Delta{Notation: notation}
	}
	b.delta = delta
	b.state = StateConfirm
	return nil
}

func (b *MoveBuilder) fail(err error) error {
	b.err = err
	b.state = StateAborted
	return err
}

// Result returns the finished move and its delta, or the error that aborted
// the builder.
func (b *MoveBuilder) Result() (model.Move, model.Delta, error) {
	switch b.state {
	case StateDone:
		return b.move, b.delta, nil
	case StateAborted:
		return model.Move{}, model.Delta{}, b.err
	}
	return model.Move{}, model.Delta{}, fmt.Errorf("move builder not finished, waiting for %s", b.state)
}
