package generator

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benbeisheim/makemove-fixtures/internal/fixture"
	"github.com/benbeisheim/makemove-fixtures/internal/model"
	"github.com/benbeisheim/makemove-fixtures/internal/prompt"
)

func newSession(t *testing.T, answers []string) (*Session, fixture.Repository, fixture.BoardRepository, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()
	repo := fixture.Repository{PassDir: filepath.Join(dir, "expPassTestDir"), FailDir: filepath.Join(dir, "expFailTestDir")}
	boards := fixture.BoardRepository{Dir: filepath.Join(dir, "Test_Boards")}
	require.NoError(t, os.MkdirAll(boards.Dir, 0o755))

	var out bytes.Buffer
	p := prompt.New(strings.NewReader(strings.Join(answers, "\n")+"\n"), &out)
	return NewSession(p, repo, boards, zerolog.Nop()), repo, boards, &out
}

func TestSessionBuildsFunctionalFixture(t *testing.T) {
	s, repo, boards, out := newSession(t, []string{
		"f", "White pushes the king pawn", "pawn_push", "w",
		"n", "y", // no repository board, build one
		"a", "wke1",
		"r", "wke1", // refused: only one piece
		"a", "wpe2",
		"a", "bke8",
		"f", "y", "Custom", "kp_vs_k", // finish and save
		"1", "wpe2", "e4", "y", // move e2-e4
		`""`,
	})

	path, err := s.Run()
	require.NoError(t, err)
	assert.Equal(t, repo.PathFor(fixture.Functional, "pawn_push"), path)
	assert.Contains(t, out.String(), "Can't remove a piece from a board with 1 pieces.")

	f, err := fixture.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "White pushes the king pawn", f.Description)
	assert.Equal(t, model.GameStateNone, f.GameState)
	assert.Equal(t, model.Black, f.PlayerState)
	assert.Equal(t, []model.Piece{{Type: "P", Loc: "e2"}}, f.MovedPieces)
	assert.Equal(t, []model.Piece{{Type: "P", Loc: "e4"}}, f.ExpectedPieces)

	reqBoard, err := f.RequestBoard()
	require.NoError(t, err)
	assert.Equal(t, model.Board{{Type: "K", Loc: "e1"}, {Type: "P", Loc: "e2"}, {Type: "k", Loc: "e8"}}, reqBoard)

	saved, err := boards.LoadBoard("custom", "kp_vs_k.bsfile")
	require.NoError(t, err)
	assert.True(t, saved.Equal(reqBoard))
}

func TestSessionBuildsExpectedErrorFromRepositoryBoard(t *testing.T) {
	s, repo, boards, _ := newSession(t, []string{
		"e", "Destination off the board", "off_board", "w",
		"y", "1", "u", "1", "y", // pick opening/kings_and_pawn
		"1", "wpe2", "z9", "y", "y", // malformed destination accepted
		"3", // Invalid Move
	})
	_, err := boards.SaveBoard("opening", "kings_and_pawn",
		model.Board{{Type: "K", Loc: "e1"}, {Type: "P", Loc: "e2"}, {Type: "k", Loc: "e8"}})
	require.NoError(t, err)

	path, err := s.Run()
	require.NoError(t, err)
	assert.Equal(t, repo.PathFor(fixture.ExpectedError, "off_board"), path)

	f, err := fixture.Load(path)
	require.NoError(t, err)
	assert.Equal(t, int(model.ErrorInvalidMove), f.ErrorCode)
	assert.Contains(t, f.Request, `"move":"z9"`)
	assert.Contains(t, f.Request, `"playerState":"w"`)
}

func TestSessionStopsOnFatalMove(t *testing.T) {
	s, repo, _, _ := newSession(t, []string{
		"f", "bad promotion", "bad_promo", "w",
		"n", "y", "a", "wke1", "a", "wpe2", "a", "bke8", "f", "n",
		"3", "n", "wpe2", // pawnpromotion from row 2
	})
	_, err := s.Run()
	assert.ErrorIs(t, err, model.ErrPromotionRank)

	_, statErr := os.Stat(repo.PathFor(fixture.Functional, "bad_promo"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestSessionEndOfInput(t *testing.T) {
	s, _, _, _ := newSession(t, []string{"f", "desc"})
	_, err := s.Run()
	assert.ErrorIs(t, err, prompt.ErrEndOfInput)
}
