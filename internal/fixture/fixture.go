// Package fixture reads and writes MakeMove test definition files.
//
// A fixture is a flat, line-oriented text file of "key : value" pairs. Error
// fixtures carry the error code the API must answer with; functional
// fixtures carry the expected game state, side to move and the pieces that
// must leave and appear on the board.
package fixture

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/benbeisheim/makemove-fixtures/internal/jsonrpc"
	"github.com/benbeisheim/makemove-fixtures/internal/model"
)

type Kind int

const (
	Functional Kind = iota
	ExpectedError
)

func (k Kind) String() string {
	if k == ExpectedError {
		return "expected-error"
	}
	return "functional"
}

var (
	ErrMissingField   = errors.New("missing field")
	ErrMalformedField = errors.New("malformed field")
)

const (
	keyTestName       = "testName"
	keyDescription    = "Description"
	keyRequest        = "request"
	keyErrorCode      = "errorCode"
	keyGameState      = `"gameState"`
	keyPlayerState    = `"playerState"`
	keyMovedPieces    = "movedPieces"
	keyExpectedPieces = "expectedResponsePieces"
)

type Fixture struct {
	Name        string
	Description string
	Kind        Kind
	// Request is sent to the API exactly as written so hand-edited,
	// syntactically broken requests can be used as error triggers.
	Request string

	ErrorCode int

	GameState      model.GameState
	PlayerState    model.Color
	MovedPieces    []model.Piece
	ExpectedPieces []model.Piece
}

func missing(field string) error {
	return fmt.Errorf("%w %s", ErrMissingField, field)
}

func malformed(field string, format string, args ...interface{}) error {
	return fmt.Errorf("%w %s: %s", ErrMalformedField, field, fmt.Sprintf(format, args...))
}

// RequestBoard decodes the boardState embedded in the request.
func (f *Fixture) RequestBoard() (model.Board, error) {
	req, err := jsonrpc.ParseRequest([]byte(f.Request))
	if err != nil {
		return nil, malformed(keyRequest, "%v", err)
	}
	params, err := req.MakeMoveParams()
	if err != nil {
		return nil, malformed(keyRequest, "%v", err)
	}
	if params.BoardState == nil {
		return nil, missing("request boardState")
	}
	return params.BoardState, nil
}

// RequestID returns the JSON-RPC id of the embedded request.
func (f *Fixture) RequestID() (int, error) {
	req, err := jsonrpc.ParseRequest([]byte(f.Request))
	if err != nil {
		return 0, malformed(keyRequest, "%v", err)
	}
	return req.ID, nil
}

// Parse reads a fixture in one pass and checks that every field its kind
// needs is present.
func Parse(kind Kind, name string, data []byte) (*Fixture, error) {
	f := &Fixture{Name: name, Kind: kind}
	seen := map[string]bool{}
	first := true

	for i, raw := range strings.Split(string(data), "\n") {
		line := strings.TrimSpace(strings.TrimRight(raw, "\r"))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, err := splitLine(line)
		if err != nil {
			if first {
				f.Name = line
				first = false
				continue
			}
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		first = false
		if seen[key] {
			return nil, fmt.Errorf("line %d: %w", i+1, malformed(key, "repeated"))
		}
		seen[key] = true
		if err := f.set(key, value); err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
	}

	required := []string{keyRequest, keyErrorCode}
	if kind == Functional {
		required = []string{keyRequest, keyGameState, keyPlayerState, keyMovedPieces, keyExpectedPieces}
	}
	for _, key := range required {
		if !seen[key] {
			return nil, missing(key)
		}
	}
	return f, nil
}

func splitLine(line string) (string, string, error) {
	if strings.HasPrefix(line, "{") {
		return keyRequest, line, nil
	}
	for _, key := range []string{keyGameState, keyPlayerState} {
		if strings.HasPrefix(line, key) {
			rest := strings.TrimSpace(strings.TrimPrefix(line, key))
			if !strings.HasPrefix(rest, ":") {
				return "", "", malformed(key, "expected ':' after key")
			}
			return key, strings.TrimSpace(rest[1:]), nil
		}
	}
	key, value, ok := strings.Cut(line, ":")
	if !ok {
		return "", "", fmt.Errorf("%w: unrecognized line %q", ErrMalformedField, line)
	}
	key = strings.TrimSpace(key)
	switch key {
	case keyTestName, keyDescription, keyRequest, keyErrorCode, keyMovedPieces, keyExpectedPieces:
		return key, strings.TrimSpace(value), nil
	}
	return "", "", fmt.Errorf("%w: unknown key %q", ErrMalformedField, key)
}

func (f *Fixture) set(key, value string) error {
	switch key {
	case keyTestName:
		f.Name = value
	case keyDescription:
		f.Description = value
	case keyRequest:
		if value == "" {
			return malformed(key, "empty")
		}
		f.Request = value
	case keyErrorCode:
		code, err := parseErrorCode(value)
		if err != nil {
			return err
		}
		f.ErrorCode = code
	case keyGameState:
		s, err := unquote(key, value)
		if err != nil {
			return err
		}
		gs, err := model.ParseGameState(s)
		if err != nil {
			return malformed(key, "%v", err)
		}
		f.GameState = gs
	case keyPlayerState:
		s, err := unquote(key, value)
		if err != nil {
			return err
		}
		c, err := model.ParseColor(s)
		if err != nil {
			return malformed(key, "%v", err)
		}
		f.PlayerState = c
	case keyMovedPieces:
		pieces, err := parsePieces(key, value)
		if err != nil {
			return err
		}
		f.MovedPieces = pieces
	case keyExpectedPieces:
		pieces, err := parsePieces(key, value)
		if err != nil {
			return err
		}
		f.ExpectedPieces = pieces
	}
	return nil
}

// jsonish turns the single-quoted dict syntax older fixtures were written
// with into JSON.
func jsonish(value string) []byte {
	return []byte(strings.ReplaceAll(value, "'", `"`))
}

func unquote(key, value string) (string, error) {
	var s string
	if err := json.Unmarshal(jsonish(value), &s); err != nil {
		return "", malformed(key, "want a quoted string, got %s", value)
	}
	return s, nil
}

func parseErrorCode(value string) (int, error) {
	var m map[string]int
	if err := json.Unmarshal(jsonish(value), &m); err != nil {
		return 0, malformed(keyErrorCode, "want {\"code\": <int>}, got %s", value)
	}
	if len(m) != 1 {
		return 0, malformed(keyErrorCode, "want exactly one code, got %d", len(m))
	}
	for _, code := range m {
		if code == 0 {
			return 0, malformed(keyErrorCode, "code is 0")
		}
		return code, nil
	}
	return 0, nil
}

func parsePieces(key, value string) ([]model.Piece, error) {
	var pieces []model.Piece
	if err := json.Unmarshal(jsonish(value), &pieces); err != nil {
		return nil, malformed(key, "want a list of pieces: %v", err)
	}
	if len(pieces) == 0 {
		return nil, malformed(key, "empty list")
	}
	return pieces, nil
}

// Format renders f in the layout Parse reads back.
func Format(f *Fixture) ([]byte, error) {
	var buf bytes.Buffer
	if f.Kind == ExpectedError {
		code, err := json.Marshal(map[string]int{"code": f.ErrorCode})
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(&buf, "%s : %s\n", keyTestName, f.Name)
		fmt.Fprintf(&buf, "%s : %s\n", keyDescription, f.Description)
		fmt.Fprintf(&buf, "%s : %s\n", keyRequest, f.Request)
		fmt.Fprintf(&buf, "%s : %s\n", keyErrorCode, code)
		return buf.Bytes(), nil
	}

	moved, err := json.Marshal(f.MovedPieces)
	if err != nil {
		return nil, err
	}
	expected, err := json.Marshal(f.ExpectedPieces)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(&buf, "%s\n", f.Name)
	fmt.Fprintf(&buf, "%s : %s\n", keyDescription, f.Description)
	fmt.Fprintf(&buf, "%s : %s\n", keyRequest, f.Request)
	fmt.Fprintf(&buf, "%s: %q\n", keyGameState, string(f.GameState))
	fmt.Fprintf(&buf, "%s: %q\n", keyPlayerState, string(f.PlayerState))
	fmt.Fprintf(&buf, "%s : %s\n", keyMovedPieces, moved)
	fmt.Fprintf(&buf, "%s : %s\n", keyExpectedPieces, expected)
	return buf.Bytes(), nil
}
