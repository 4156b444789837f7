package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/benbeisheim/makemove-fixtures/internal/config"
	"github.com/benbeisheim/makemove-fixtures/internal/server"
)

func main() {
	configPath := flag.String("config", "", "path to "+config.FileName+" (default: search upward from the working directory)")
	listen := flag.String("listen", "", "listen address (overrides the config file)")
	flag.Parse()

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		fatal(err)
	}
	if *listen != "" {
		cfg.Listen = *listen
	}
	log := cfg.Logger()

	app := server.New(cfg, log)
	log.Info().Str("listen", cfg.Listen).Str("rpc", server.RPCPath).Str("feed", server.FeedPath).Msg("mock MakeMove API starting")
	if err := app.Listen(cfg.Listen); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
