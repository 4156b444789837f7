package fixture

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/benbeisheim/makemove-fixtures/internal/model"
)

// BoardRepository holds reusable starting boards grouped into category
// subdirectories, one .bsfile per board.
type BoardRepository struct {
	Dir string
}

func (r BoardRepository) Categories() ([]string, error) {
	entries, err := os.ReadDir(r.Dir)
	if err != nil {
		return nil, err
	}
	var categories []string
	for _, entry := range entries {
		if entry.IsDir() {
			categories = append(categories, entry.Name())
		}
	}
	return categories, nil
}

func (r BoardRepository) Boards(category string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(r.Dir, category))
	if err != nil {
		return nil, err
	}
	var boards []string
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			boards = append(boards, entry.Name())
		}
	}
	return boards, nil
}

func (r BoardRepository) LoadBoard(category, file string) (model.Board, error) {
	data, err := os.ReadFile(filepath.Join(r.Dir, category, file))
	if err != nil {
		return nil, err
	}
	text, err := decodeText(data)
	if err != nil {
		return nil, err
	}
	var board model.Board
	if err := json.Unmarshal(jsonish(strings.TrimSpace(string(text))), &board); err != nil {
		return nil, fmt.Errorf("board %s/%s: %w", category, file, err)
	}
	if err := board.Validate(); err != nil {
		return nil, fmt.Errorf("board %s/%s: %w", category, file, err)
	}
	return board, nil
}

// SaveBoard writes board as <name>.bsfile under category and returns the path.
func (r BoardRepository) SaveBoard(category, name string, board model.Board) (string, error) {
	if err := board.Validate(); err != nil {
		return "", err
	}
	data, err := json.Marshal(board)
	if err != nil {
		return "", err
	}
	dir := filepath.Join(r.Dir, category)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, strings.TrimSuffix(name, BoardExt)+BoardExt)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
