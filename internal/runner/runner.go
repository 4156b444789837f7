// Package runner executes fixtures against a MakeMove endpoint one at a time
// and records the verdicts.
package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/benbeisheim/makemove-fixtures/internal/evaluate"
	"github.com/benbeisheim/makemove-fixtures/internal/fixture"
	"github.com/benbeisheim/makemove-fixtures/internal/jsonrpc"
	"github.com/benbeisheim/makemove-fixtures/internal/report"
)

var (
	ErrNoFixtures  = errors.New("no test definition files found")
	ErrMissingList = errors.New("test list file not found")
)

// Caller sends a raw JSON-RPC request. *jsonrpc.Client implements it.
type Caller interface {
	Call(ctx context.Context, raw []byte) (*jsonrpc.Response, []byte, error)
}

// Selection picks which fixtures run: a single file, a list file or, when
// both are empty, everything in the fixture repository.
type Selection struct {
	Single string
	List   string
}

func (s Selection) Paths(repo fixture.Repository, root string) ([]string, error) {
	var paths []string
	switch {
	case s.Single != "":
		paths = []string{fixture.Resolve(root, s.Single)}
	case s.List != "":
		list, err := fixture.ReadList(s.List, root)
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingList, s.List)
		}
		if err != nil {
			return nil, err
		}
		paths = list
	default:
		all, err := repo.Collect()
		if err != nil {
			return nil, err
		}
		paths = all
	}
	if len(paths) == 0 {
		return nil, ErrNoFixtures
	}
	return paths, nil
}

// Result is the outcome of one fixture. Err is set when the fixture exited
// before a verdict could be reached.
type Result struct {
	Path     string
	Name     string
	Kind     fixture.Kind
	Verdict  evaluate.Verdict
	Err      error
	Duration time.Duration
}

func (r Result) Record(runID string) report.ResultRecord {
	rec := report.ResultRecord{
		RunID:      runID,
		Fixture:    r.Name,
		Kind:       r.Kind.String(),
		DurationMs: r.Duration.Milliseconds(),
	}
	if r.Err != nil {
		rec.Outcome = report.Exited
		rec.Reason = r.Err.Error()
		return rec
	}
	rec.Outcome = string(r.Verdict.Outcome)
	rec.Reason = r.Verdict.Reason
	return rec
}

type Runner struct {
	caller Caller
	out    *report.Writer
	log    zerolog.Logger
	strict bool
}

func NewRunner(caller Caller, out *report.Writer, log zerolog.Logger, strict bool) *Runner {
	return &Runner{caller: caller, out: out, log: log, strict: strict}
}

const rule = "======================================================================"

// Run executes paths in order. It stops early only when ctx is cancelled.
func (r *Runner) Run(ctx context.Context, paths []string) (report.Summary, []Result) {
	summary := report.Summary{Total: len(paths)}
	results := make([]Result, 0, len(paths))

	r.out.All("")
	r.out.All("Found %d test files to run:", len(paths))
	for _, path := range paths {
		r.out.All("%s", path)
	}
	r.out.All("")
	r.out.All("                **** Beginning MakeMove API Tests ****")
	r.out.All("")

	for _, path := range paths {
		if ctx.Err() != nil {
			r.log.Warn().Err(ctx.Err()).Msg("run cancelled")
			summary.Total = len(results)
			break
		}
		start := time.Now()
		res := r.runOne(ctx, path)
		res.Duration = time.Since(start)
		results = append(results, res)

		switch {
		case res.Err != nil:
			summary.Exited++
			r.out.All("Process ERROR: %v", res.Err)
			r.out.All("Marking as a Test Exit Error and moving on to the next test case.")
			r.out.All("")
			r.log.Error().Err(res.Err).Str("fixture", res.Name).Msg("fixture exited")
		case res.Verdict.Outcome.Passed():
			summary.Passed++
			r.reportPass(res)
		default:
			summary.Failed++
			r.reportFail(res)
		}
	}
	return summary, results
}

func (r *Runner) runOne(ctx context.Context, path string) Result {
	res := Result{Path: path, Name: fixture.NameFromPath(path)}
	if kind, err := fixture.KindFromPath(path); err == nil {
		res.Kind = kind
	}

	f, err := fixture.Load(path)
	if err != nil {
		res.Err = err
		return res
	}
	res.Name = f.Name
	res.Kind = f.Kind

	r.out.All(rule)
	r.out.All("****** Starting test case %s ******", f.Name)
	r.out.All("")
	r.out.All("Test: %s specified in test definition file %s", f.Name, filepath.Base(path))
	r.out.All("Test Description: %s", f.Description)
	if f.Kind == fixture.ExpectedError {
		r.out.Report("This is an expected Error Case.")
		r.out.Report("The Expected API Response Error Code value is: %d", f.ErrorCode)
	} else {
		r.out.Report("This is a functional test expected to return a full API response.")
	}

	exp, err := evaluate.FromFixture(f, r.strict)
	if err != nil {
		res.Err = err
		return res
	}

	r.out.Log("API Request for testcase %s:", f.Name)
	r.out.Log("%s", f.Request)
	r.log.Debug().Str("fixture", f.Name).Str("request", f.Request).Msg("calling API")

	resp, body, err := r.caller.Call(ctx, []byte(f.Request))
	if err != nil {
		if body != nil {
			r.out.Log("API Response:")
			r.out.Log("%s", body)
		}
		res.Err = err
		return res
	}
	if resp.Error != nil {
		r.out.All("Received an 'error' message in the API response:")
		r.out.Report("%s", body)
	} else {
		r.out.Log("API Response:")
	}
	r.out.Log("%s", body)
	r.out.All("Checking the API response against the expected response params...")

	verdict, err := evaluate.Evaluate(exp, resp)
	if err != nil {
		res.Err = err
		return res
	}
	res.Verdict = verdict
	return res
}

func (r *Runner) label(res Result) string {
	if res.Kind == fixture.ExpectedError {
		return "EXPECTED Error TEST"
	}
	return "FUNCTIONAL TEST"
}

func (r *Runner) reportPass(res Result) {
	if res.Kind == fixture.ExpectedError {
		r.out.All("Expected Error code returned.")
	} else {
		r.out.All("All API response params as expected.")
	}
	r.out.All("")
	r.out.All("%s %s PASSED.", r.label(res), res.Name)
	r.out.All(rule)
	r.out.All("")
}

func (r *Runner) reportFail(res Result) {
	r.out.All("Found unexpected results in the API response!")
	r.out.All("")
	r.out.All("%s %s FAILED.", r.label(res), res.Name)
	r.out.All("Returned Failure Information:")
	r.out.All("%s", res.Verdict)
	r.out.All(rule)
	r.out.All("")
	r.log.Info().Str("fixture", res.Name).Str("outcome", string(res.Verdict.Outcome)).Msg("fixture failed")
}
