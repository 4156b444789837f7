package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/benbeisheim/makemove-fixtures/internal/config"
	"github.com/benbeisheim/makemove-fixtures/internal/fixture"
	"github.com/benbeisheim/makemove-fixtures/internal/jsonrpc"
	"github.com/benbeisheim/makemove-fixtures/internal/report"
	"github.com/benbeisheim/makemove-fixtures/internal/runner"
)

func main() {
	configPath := flag.String("config", "", "path to "+config.FileName+" (default: search upward from the working directory)")
	list := flag.String("l", "", "run the test definition files named in this list file")
	single := flag.String("s", "", "run a single test definition file")
	endpoint := flag.String("endpoint", "", "JSON-RPC endpoint (overrides the config file)")
	parquetPath := flag.String("parquet", "", "also write per-fixture results to this Parquet file")
	strict := flag.Bool("strict", false, "fail functional tests when untouched pieces change")
	flag.Parse()

	if flag.NArg() > 0 || (*list != "" && *single != "") {
		fmt.Fprintln(os.Stderr, "usage: fixturerun [-config file] [-l listfile | -s testfile] [-parquet file] [-strict]")
		os.Exit(2)
	}

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		fatal(err)
	}
	if *endpoint != "" {
		cfg.Endpoint = *endpoint
	}
	if *parquetPath != "" {
		cfg.ResultsParquet = *parquetPath
	}
	if *strict {
		cfg.Strict = true
	}
	log := cfg.Logger()

	repo := fixture.Repository{PassDir: cfg.Path(cfg.PassDir), FailDir: cfg.Path(cfg.FailDir)}
	paths, err := runner.Selection{Single: *single, List: *list}.Paths(repo, cfg.RootDir)
	if errors.Is(err, runner.ErrNoFixtures) || errors.Is(err, runner.ErrMissingList) {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	if err != nil {
		fatal(err)
	}

	out, err := report.Open(cfg.Path(cfg.ReportDir), time.Now(), os.Stdout)
	if err != nil {
		fatal(err)
	}
	out.Term("%s", out.Banner())
	log.Info().Str("run", out.RunID.String()).Str("endpoint", cfg.Endpoint).Int("fixtures", len(paths)).Msg("run starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client := jsonrpc.NewClient(cfg.Endpoint, cfg.Timeout)
	summary, results := runner.NewRunner(client, out, log, cfg.Strict).Run(ctx, paths)
	if err := out.Finalize(summary); err != nil {
		fatal(err)
	}

	if cfg.ResultsParquet != "" {
		records := make([]report.ResultRecord, 0, len(results))
		for _, res := range results {
			records = append(records, res.Record(out.RunID.String()))
		}
		if err := report.WriteParquet(cfg.ResultsParquet, records); err != nil {
			fatal(err)
		}
		log.Info().Str("path", cfg.ResultsParquet).Int("records", len(records)).Msg("results exported")
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
