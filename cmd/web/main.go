package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/peterkuimelis/gitcg/internal/app"
	"github.com/peterkuimelis/gitcg/internal/config"
	"github.com/peterkuimelis/gitcg/internal/web"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	addr := flag.String("addr", cfg.WebAddr, "HTTP address to listen on")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	srv := web.NewServer(a.Registry, a.Decks, a.Store, a.Logger)
	if err := srv.ListenAndServe(ctx, *addr); err != nil {
		a.Logger.Error("web server stopped", "error", err)
		os.Exit(1)
	}
}
