package fixture

import (
	"bytes"
	"errors"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// decodeText returns fixture or board file contents as UTF-8. Files saved by
// Windows editors may carry a BOM or be in Windows-1252.
func decodeText(data []byte) ([]byte, error) {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	if utf8.Valid(data) {
		return data, nil
	}
	reader := transform.NewReader(bytes.NewReader(data), charmap.Windows1252.NewDecoder())
	decoded, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(decoded) {
		return nil, errors.New("failed to decode Windows-1252 text")
	}
	return decoded, nil
}
