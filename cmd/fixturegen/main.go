package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/benbeisheim/makemove-fixtures/internal/config"
	"github.com/benbeisheim/makemove-fixtures/internal/fixture"
	"github.com/benbeisheim/makemove-fixtures/internal/generator"
	"github.com/benbeisheim/makemove-fixtures/internal/prompt"
)

func main() {
	configPath := flag.String("config", "", "path to "+config.FileName+" (default: search upward from the working directory)")
	flag.Parse()

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		fatal(err)
	}
	log := cfg.Logger()

	repo := fixture.Repository{PassDir: cfg.Path(cfg.PassDir), FailDir: cfg.Path(cfg.FailDir)}
	boards := fixture.BoardRepository{Dir: cfg.Path(cfg.BoardDir)}
	p := prompt.New(os.Stdin, os.Stdout)

	for {
		session := generator.NewSession(p, repo, boards, log)
		if _, err := session.Run(); err != nil {
			if errors.Is(err, prompt.ErrEndOfInput) {
				log.Info().Msg("input closed")
				return
			}
			fatal(err)
		}
		again, err := p.Confirm("Would you like to create another test case? (y/n) ")
		if err != nil || !again {
			return
		}
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
