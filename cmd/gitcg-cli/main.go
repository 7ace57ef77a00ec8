package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/peterkuimelis/gitcg/internal/app"
	"github.com/peterkuimelis/gitcg/internal/config"
	"github.com/peterkuimelis/gitcg/internal/log"
	"github.com/peterkuimelis/gitcg/internal/match"
	gitcgnet "github.com/peterkuimelis/gitcg/internal/net"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "host":
		err = runHost(ctx, os.Args[2:])
	case "join":
		err = runJoin(ctx, os.Args[2:])
	case "matches":
		err = runMatches(ctx, os.Args[2:])
	case "replay":
		err = runReplay(ctx, os.Args[2:])
	default:
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  gitcg-cli host [--deck N] [--addr ADDR] [--auto]")
	fmt.Println("  gitcg-cli join [--deck N] [--addr ADDR] [--auto]")
	fmt.Println("  gitcg-cli matches [--limit N]")
	fmt.Println("  gitcg-cli replay [--verify] MATCH_ID")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  host     Start a game server and play as Player 0")
	fmt.Println("  join     Connect to a game server and play as Player 1")
	fmt.Println("  matches  List saved matches")
	fmt.Println("  replay   Print the events of a saved match")
	fmt.Println()
	fmt.Println("Settings come from GITCG_* environment variables and an optional .env file.")
}

func setup(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load(".env")
	if err != nil {
		return nil, err
	}
	return app.New(ctx, cfg, os.Stderr)
}

func runHost(ctx context.Context, args []string) error {
	a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	fs := flag.NewFlagSet("host", flag.ExitOnError)
	deck := fs.Int("deck", 1, "deck number to use")
	addr := fs.String("addr", a.Config.ListenAddr, "TCP address to listen on")
	auto := fs.Bool("auto", false, "let the client play automatically")
	_ = fs.Parse(args)

	srv := &gitcgnet.Server{
		Addr:     *addr,
		HostDeck: *deck,
		HostAuto: *auto,
		Decks:    a.Decks,
		Runner:   a.Runner,
		Logger:   a.Logger,
		In:       os.Stdin,
		Out:      os.Stdout,
	}
	res, err := srv.Run(ctx)
	if err != nil {
		return err
	}
	a.Logger.Info("match finished", "match_id", res.ID, "winner", res.Winner, "rounds", res.Rounds)
	return nil
}

func runJoin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("join", flag.ExitOnError)
	deck := fs.Int("deck", 2, "deck number to use")
	addr := fs.String("addr", "localhost:9000", "server address to connect to")
	auto := fs.Bool("auto", false, "play automatically")
	_ = fs.Parse(args)

	_, err := gitcgnet.Connect(ctx, *addr, *deck, *auto, os.Stdin, os.Stdout)
	return err
}

func runMatches(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("matches", flag.ExitOnError)
	limit := fs.Int("limit", 20, "number of matches to list")
	_ = fs.Parse(args)

	a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	matches, err := a.Store.ListMatches(ctx, *limit)
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		fmt.Println("No saved matches.")
		return nil
	}
	for _, m := range matches {
		winner := "draw"
		if m.Winner >= 0 {
			winner = fmt.Sprintf("P%d", m.Winner)
		}
		fmt.Printf("%s  %s  winner=%s  rounds=%d  seed=%d\n",
			m.ID, m.CreatedAt.Local().Format("2006-01-02 15:04"), winner, m.Rounds, m.Seed)
	}
	return nil
}

func runReplay(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("replay", flag.ExitOnError)
	verify := fs.Bool("verify", false, "re-apply the mutation log and compare the final state")
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		return errors.New("replay needs exactly one match id")
	}
	id, err := uuid.Parse(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("invalid match id: %w", err)
	}

	a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	loaded, err := match.Load(ctx, a.Store, a.Registry, id)
	if err != nil {
		return err
	}
	for _, e := range loaded.Entries {
		for _, ev := range e.Events {
			fmt.Println(log.FormatEvent(ev))
		}
	}
	if !*verify {
		return nil
	}
	res, err := loaded.Verify(a.Registry, a.Rules)
	if err != nil {
		return err
	}
	fmt.Printf("Verified: %d mutations replayed to the recorded final state.\n", res.Applied)
	return nil
}
