package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/peterkuimelis/gitcg/internal/app"
	"github.com/peterkuimelis/gitcg/internal/config"
	gitcgmcp "github.com/peterkuimelis/gitcg/internal/mcp"
)

func main() {
	port := flag.String("port", "9999", "TCP port for human player connection")
	flag.Parse()

	cfg, err := config.Load(".env")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	// Stdout carries the MCP protocol.
	a, err := app.New(context.Background(), cfg, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	tools := &gitcgmcp.Tools{
		Runner: a.Runner,
		Decks:  a.Decks,
		Port:   *port,
		Logger: a.Logger,
	}
	s := server.NewMCPServer("gitcg", "1.0.0")
	tools.Register(s)

	if err := server.ServeStdio(s); err != nil {
		a.Logger.Error("mcp server stopped", "error", err)
		os.Exit(1)
	}
}
