// Package report writes the human-readable run report, the API log and the
// optional Parquet export of per-fixture results.
package report

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

const (
	dateLayout = "01_02_2006"
	timeLayout = "15_04_05"
)

// FileNames returns the report and API log names for a run started at t.
func FileNames(t time.Time) (string, string) {
	stamp := t.Format(dateLayout) + "_" + t.Format(timeLayout)
	return "Test_Results_" + stamp + ".report", "Test_API_" + stamp + ".log"
}

// Writer sends run output to the terminal, the report file and the API log.
// Report lines go to the report, Log lines to the API log and All lines to
// both; every line is echoed to the terminal.
type Writer struct {
	RunID   uuid.UUID
	Started time.Time

	reportPath string
	logPath    string
	report     *os.File
	log        *os.File
	term       io.Writer
}

func Open(dir string, started time.Time, term io.Writer) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create report directory: %w", err)
	}
	reportName, logName := FileNames(started)
	w := &Writer{
		RunID:      uuid.New(),
		Started:    started,
		reportPath: filepath.Join(dir, reportName),
		logPath:    filepath.Join(dir, logName),
		term:       term,
	}
	var err error
	if w.report, err = os.Create(w.reportPath); err != nil {
		return nil, err
	}
	if w.log, err = os.Create(w.logPath); err != nil {
		w.report.Close()
		return nil, err
	}
	return w, nil
}

func (w *Writer) ReportPath() string {
	return w.reportPath
}

func (w *Writer) LogPath() string {
	return w.logPath
}

func (w *Writer) write(toReport, toLog bool, format string, args ...interface{}) {
	line := fmt.Sprintf(format, args...) + "\n"
	io.WriteString(w.term, line)
	if toReport && w.report != nil {
		io.WriteString(w.report, line)
	}
	if toLog && w.log != nil {
		io.WriteString(w.log, line)
	}
}

// Term prints to the terminal only.
func (w *Writer) Term(format string, args ...interface{}) {
	w.write(false, false, format, args...)
}

func (w *Writer) Report(format string, args ...interface{}) {
	w.write(true, false, format, args...)
}

func (w *Writer) Log(format string, args ...interface{}) {
	w.write(false, true, format, args...)
}

func (w *Writer) All(format string, args ...interface{}) {
	w.write(true, true, format, args...)
}

// Banner is the opening message shown at start and placed at the top of
// both files when the run finishes.
func (w *Writer) Banner() string {
	reportName, logName := FileNames(w.Started)
	return fmt.Sprintf("\n      **** Welcome to the MakeMove API Testing System. ****\n\n"+
		"           Run %s\n"+
		"           Test Results will be written to '%s'.\n"+
		"           All API requests and results will be logged to '%s'.\n",
		w.RunID, reportName, logName)
}

// Finalize closes both files and prepends the banner and summary to them.
func (w *Writer) Finalize(s Summary) error {
	header := w.Banner() + s.String()
	w.Term("%s", s.String())
	for _, f := range []*os.File{w.report, w.log} {
		if err := f.Close(); err != nil {
			return err
		}
	}
	w.report, w.log = nil, nil
	for _, path := range []string{w.reportPath, w.logPath} {
		if err := prepend(path, header); err != nil {
			return fmt.Errorf("prepend summary to %s: %w", path, err)
		}
	}
	return nil
}

func prepend(path, header string) error {
	body, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	buf.WriteString(header)
	buf.WriteString("\n")
	buf.Write(body)
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
