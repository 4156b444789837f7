package fixture

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	PassExt  = ".passtest"
	FailExt  = ".expfail"
	BoardExt = ".bsfile"
)

var ErrUnknownExtension = errors.New("unknown fixture file extension")

// Repository is the pair of directories holding functional and
// expected-error fixtures.
type Repository struct {
	PassDir string
	FailDir string
}

func (r Repository) Dir(kind Kind) string {
	if kind == ExpectedError {
		return r.FailDir
	}
	return r.PassDir
}

func Ext(kind Kind) string {
	if kind == ExpectedError {
		return FailExt
	}
	return PassExt
}

func (r Repository) PathFor(kind Kind, name string) string {
	return filepath.Join(r.Dir(kind), name+Ext(kind))
}

// Write stores f in the directory for its kind and returns the path.
func (r Repository) Write(f *Fixture) (string, error) {
	data, err := Format(f)
	if err != nil {
		return "", err
	}
	path := r.PathFor(f.Kind, f.Name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// Collect lists every regular file in both fixture directories, functional
// fixtures first. Missing directories are skipped.
func (r Repository) Collect() ([]string, error) {
	var files []string
	for _, dir := range []string{r.PassDir, r.FailDir} {
		entries, err := os.ReadDir(dir)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			if entry.Type().IsRegular() {
				files = append(files, filepath.Join(dir, entry.Name()))
			}
		}
	}
	return files, nil
}

// ReadList reads a test list file with one fixture path per line. Relative
// paths are resolved against root.
func ReadList(path, root string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var files []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		files = append(files, Resolve(root, line))
	}
	return files, scanner.Err()
}

func Resolve(root, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

func KindFromPath(path string) (Kind, error) {
	switch ext := filepath.Ext(path); ext {
	case PassExt:
		return Functional, nil
	case FailExt:
		return ExpectedError, nil
	default:
		return 0, fmt.Errorf("%w %q: only %s and %s allowed", ErrUnknownExtension, ext, PassExt, FailExt)
	}
}

// NameFromPath is the file's base name up to its first dot.
func NameFromPath(path string) string {
	base := filepath.Base(path)
	name, _, _ := strings.Cut(base, ".")
	return name
}

// Load reads, decodes and parses the fixture at path. Its kind comes from
// the file extension.
func Load(path string) (*Fixture, error) {
	kind, err := KindFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	text, err := decodeText(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	f, err := Parse(kind, NameFromPath(path), text)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return f, nil
}
