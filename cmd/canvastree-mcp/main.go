package main

import (
	"context"
	"flag"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"

	mcpadapter "canvastree/internal/adapters/mcp"
	"canvastree/internal/bootstrap"
)

func main() {
	levelFlag := flag.String("log-level", "warn", "log level written to stderr")
	flag.Parse()

	// stdout carries the protocol
	log, err := bootstrap.NewLogger(os.Stderr, *levelFlag)
	if err != nil {
		logrus.Fatalf("canvastree-mcp: %v", err)
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		log.Fatalf("canvastree-mcp: %v", err)
	}
	rt, err := bootstrap.Open(cfg, log, bootstrap.Options{})
	if err != nil {
		log.Fatalf("canvastree-mcp: %v", err)
	}
	defer rt.Close()

	mcpServer := server.NewMCPServer(
		"canvastree-mcp",
		"0.1.0",
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(
		mcp.NewTool("ping",
			mcp.WithDescription("Health check, returns pong"),
		),
		func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText("pong"), nil
		},
	)

	ws := mcpadapter.NewWorkspace(rt.Engine, rt.Client, rt.Index, rt.ContentTypes())
	mcpadapter.RegisterReadTools(mcpServer, ws)
	mcpadapter.RegisterWriteTools(mcpServer, ws)

	if err := server.ServeStdio(mcpServer); err != nil {
		log.Errorf("canvastree-mcp: %v", err)
	}
}
