package fixture

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benbeisheim/makemove-fixtures/internal/jsonrpc"
	"github.com/benbeisheim/makemove-fixtures/internal/model"
)

func testRepo() Repository {
	return Repository{
		PassDir: filepath.Join("testdata", "expPassTestDir"),
		FailDir: filepath.Join("testdata", "expFailTestDir"),
	}
}

func TestLoadFunctional(t *testing.T) {
	f, err := Load(filepath.Join("testdata", "expPassTestDir", "pawn_e2e4.passtest"))
	require.NoError(t, err)
	assert.Equal(t, "pawn_e2e4", f.Name)
	assert.Equal(t, Functional, f.Kind)
	assert.Equal(t, "White opens with the king pawn", f.Description)
	assert.Equal(t, model.GameStateNone, f.GameState)
	assert.Equal(t, model.Black, f.PlayerState)
	assert.Equal(t, []model.Piece{{Type: "P", Loc: "e2"}}, f.MovedPieces)
	assert.Equal(t, []model.Piece{{Type: "P", Loc: "e4"}}, f.ExpectedPieces)

	board, err := f.RequestBoard()
	require.NoError(t, err)
	assert.Len(t, board, 3)
	id, err := f.RequestID()
	require.NoError(t, err)
	assert.Equal(t, 1, id)
}

func TestLoadExpectedError(t *testing.T) {
	f, err := Load(filepath.Join("testdata", "expFailTestDir", "bad_destination.expfail"))
	require.NoError(t, err)
	assert.Equal(t, "bad_destination", f.Name)
	assert.Equal(t, ExpectedError, f.Kind)
	assert.Equal(t, int(model.ErrorInvalidMove), f.ErrorCode)
	assert.True(t, strings.HasPrefix(f.Request, `{"method":"MakeMove"`))
}

func TestParseReportsMissingField(t *testing.T) {
	data := []byte("x\nDescription : d\nrequest : {}\n\"gameState\": \"check\"\n\"playerState\": \"b\"\nmovedPieces : [{\"type\":\"P\",\"loc\":\"e2\"}]\n")
	_, err := Parse(Functional, "x", data)
	require.ErrorIs(t, err, ErrMissingField)
	assert.Contains(t, err.Error(), "expectedResponsePieces")

	_, err = Parse(ExpectedError, "x", []byte("testName : x\nrequest : {}\n"))
	require.ErrorIs(t, err, ErrMissingField)
	assert.Contains(t, err.Error(), "errorCode")
}

func TestParseReportsMalformedField(t *testing.T) {
	tests := map[string]string{
		"game state":   "\"gameState\": \"winning\"",
		"player":       "\"playerState\": \"white\"",
		"pieces":       "movedPieces : [oops]",
		"empty pieces": "movedPieces : []",
		"error code":   "errorCode : -32020",
		"zero code":    "errorCode : {\"code\": 0}",
		"unknown key":  "color : w",
		"repeated":     "request : {}",
	}
	for name, line := range tests {
		t.Run(name, func(t *testing.T) {
			data := "testName : x\nrequest : {}\n" + line + "\n"
			_, err := Parse(Functional, "x", []byte(data))
			assert.ErrorIs(t, err, ErrMalformedField)
		})
	}
}

func TestParseAcceptsSingleQuotedLists(t *testing.T) {
	data := []byte(`legacy
Description : written by the old generator
request : {"method":"MakeMove","params":{"boardState":[{"type":"K","loc":"e1"}],"move":"Kef1","playerState":"w"},"id":1,"jsonrpc":"2.0"}
"gameState": "stalemate"
"playerState": "b"
movedPieces : [{'type': 'K', 'loc': 'e1'}]
expectedResponsePieces : [{'type': 'K', 'loc': 'f1'}]
`)
	f, err := Parse(Functional, "legacy", data)
	require.NoError(t, err)
	assert.Equal(t, model.GameStateStalemate, f.GameState)
	assert.Equal(t, []model.Piece{{Type: "K", Loc: "f1"}}, f.ExpectedPieces)
}

func TestBoardRoundTripThroughFixture(t *testing.T) {
	board := model.Board{
		{Type: "r", Loc: "a8"}, {Type: "k", Loc: "e8"}, {Type: "p", Loc: "d5"},
		{Type: "P", Loc: "e5"}, {Type: "K", Loc: "e1"}, {Type: "Q", Loc: "d1"},
	}
	req, err := jsonrpc.NewMakeMoveRequest(model.White, "exd6(ep)", board)
	require.NoError(t, err)
	raw, err := jsonMarshal(req)
	require.NoError(t, err)

	in := &Fixture{
		Name:           "ep_capture",
		Description:    "en passant on d6",
		Kind:           Functional,
		Request:        raw,
		GameState:      model.GameStateNone,
		PlayerState:    model.Black,
		MovedPieces:    []model.Piece{{Type: "P", Loc: "e5"}, {Type: "p", Loc: "d5"}},
		ExpectedPieces: []model.Piece{{Type: "P", Loc: "d6"}},
	}
	data, err := Format(in)
	require.NoError(t, err)

	out, err := Parse(Functional, "ep_capture", data)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	got, err := out.RequestBoard()
	require.NoError(t, err)
	assert.True(t, board.Equal(got))
}

func TestExpectedErrorRoundTrip(t *testing.T) {
	in := &Fixture{
		Name:        "bad_player",
		Description: "player x",
		Kind:        ExpectedError,
		Request:     `{"method":"MakeMove","params":{"boardState":[],"move":"e4","playerState":"x"},"id":1,"jsonrpc":"2.0"}`,
		ErrorCode:   int(model.ErrorInvalidPlayer),
	}
	data, err := Format(in)
	require.NoError(t, err)
	assert.Contains(t, string(data), `errorCode : {"code":-32010}`)

	out, err := Parse(ExpectedError, "bad_player", data)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestLoadDecodesWindows1252(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cafe.expfail")
	content := "testName : cafe\nDescription : caf\xe9 opening\nrequest : {}\nerrorCode : {\"code\": -32000}\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	f, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "café opening", f.Description)
}

func TestLoadRejectsUnknownExtension(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "notes.txt"))
	assert.ErrorIs(t, err, ErrUnknownExtension)
}

func TestRepositoryCollectAndWrite(t *testing.T) {
	files, err := testRepo().Collect()
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join("testdata", "expPassTestDir", "pawn_e2e4.passtest"),
		filepath.Join("testdata", "expFailTestDir", "bad_destination.expfail"),
	}, files)

	dir := t.TempDir()
	repo := Repository{PassDir: filepath.Join(dir, "pass"), FailDir: filepath.Join(dir, "fail")}
	path, err := repo.Write(&Fixture{Name: "n", Kind: ExpectedError, Request: "{}", ErrorCode: -32030})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "fail", "n.expfail"), path)

	files, err = repo.Collect()
	require.NoError(t, err)
	assert.Equal(t, []string{path}, files)
}

func TestReadList(t *testing.T) {
	dir := t.TempDir()
	list := filepath.Join(dir, "tests.txt")
	require.NoError(t, os.WriteFile(list, []byte("a/one.passtest\n\n# skipped\n/abs/two.expfail\n"), 0o644))

	files, err := ReadList(list, "/root")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join("/root", "a/one.passtest"), "/abs/two.expfail"}, files)
}

func TestBoardRepository(t *testing.T) {
	repo := BoardRepository{Dir: filepath.Join("testdata", "Test_Boards")}
	categories, err := repo.Categories()
	require.NoError(t, err)
	assert.Equal(t, []string{"endgame", "opening"}, categories)

	boards, err := repo.Boards("opening")
	require.NoError(t, err)
	assert.Equal(t, []string{"kings_and_pawn.bsfile"}, boards)

	board, err := repo.LoadBoard("opening", "kings_and_pawn.bsfile")
	require.NoError(t, err)
	assert.Equal(t, model.Board{{Type: "K", Loc: "e1"}, {Type: "P", Loc: "e2"}, {Type: "k", Loc: "e8"}}, board)

	tmp := BoardRepository{Dir: t.TempDir()}
	path, err := tmp.SaveBoard("custom", "two_kings", model.Board{board[0], {Type: "k", Loc: "h8"}})
	require.NoError(t, err)
	assert.Equal(t, "two_kings.bsfile", filepath.Base(path))
	loaded, err := tmp.LoadBoard("custom", "two_kings.bsfile")
	require.NoError(t, err)
	assert.Len(t, loaded, 2)
}

func jsonMarshal(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	return string(data), err
}
