// Command parabox runs the recursive block-pushing puzzle game.
//
// It supports three modes:
//  1. "serve" – runs the HTTP server exposing the REST API and WebSocket state
//     broadcasts, with sessions persisted to disk when a session directory
//     is given
//  2. "play"  – plays a level interactively in the terminal
//  3. "mcp"   – runs an MCP stdio server proxying to a REST API
//
// Flags control host/port, the level directory, session persistence and
// debug logging.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/parabox-puzzle-game/api"
	"github.com/wricardo/parabox-puzzle-game/game/config"
	"github.com/wricardo/parabox-puzzle-game/game/engine"
	"github.com/wricardo/parabox-puzzle-game/game/service"
	"github.com/wricardo/parabox-puzzle-game/game/session"
	"github.com/wricardo/parabox-puzzle-game/transport/mcp"
	"github.com/wricardo/parabox-puzzle-game/transport/websocket"
	"github.com/wricardo/parabox-puzzle-game/tui"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Parabox Puzzle Game"
)

// getLevelDirDefault returns the default level directory. It first honors
// the LEVEL_DIR environment variable, then falls back to "levels".
func getLevelDirDefault() string {
	if dir := os.Getenv("LEVEL_DIR"); dir != "" {
		return dir
	}
	return "levels"
}

func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	}

	cmd := &cli.Command{
		Name:    "parabox",
		Usage:   AppName,
		Version: Version,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			playCommand(),
			mcpCommand(),
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.Bool("debug") {
				log.SetFlags(log.LstdFlags | log.Lshortfile)
			} else {
				log.SetFlags(log.LstdFlags)
			}
			return ctx, nil
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP server with REST API and WebSocket broadcasts",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Value: "localhost",
				Usage: "HTTP server host",
			},
			&cli.IntFlag{
				Name:  "port",
				Value: 8080,
				Usage: "HTTP server port",
			},
			&cli.StringFlag{
				Name:  "level-dir",
				Value: getLevelDirDefault(),
				Usage: "Directory containing level files",
			},
			&cli.StringFlag{
				Name:  "session-dir",
				Usage: "Directory for persisted sessions (disabled when empty)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			levels, err := config.NewManager(cmd.String("level-dir"))
			if err != nil {
				return fmt.Errorf("failed to initialize level manager: %w", err)
			}

			var sessions *session.Manager
			if dir := cmd.String("session-dir"); dir != "" {
				persistence, err := session.NewFilePersistence(dir)
				if err != nil {
					return fmt.Errorf("failed to initialize session persistence: %w", err)
				}
				sessions = session.NewManagerWithPersistence(persistence)
				if restored := sessions.RestoreAll(); restored > 0 {
					log.Printf("Restored %d persisted sessions", restored)
				}
			} else {
				sessions = session.NewManager()
			}

			hub := websocket.NewHub()
			svc := service.NewGameService(sessions, levels)
			server := api.NewServer(svc, hub)

			addr := fmt.Sprintf("%s:%d", cmd.String("host"), cmd.Int("port"))
			log.Printf("Starting %s v%s on http://%s", AppName, Version, addr)
			return http.ListenAndServe(addr, server)
		},
	}
}

func playCommand() *cli.Command {
	return &cli.Command{
		Name:      "play",
		Usage:     "Play a level interactively in the terminal",
		ArgsUsage: "[level-file]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			text := config.DefaultLevel
			if path := cmd.Args().First(); path != "" {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("failed to read level file: %w", err)
				}
				text = string(data)
			}

			eng, err := engine.NewEngine(text)
			if err != nil {
				return err
			}
			return tui.Run(eng)
		},
	}
}

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Run an MCP stdio server proxying to a REST API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "api-url",
				Value: "http://localhost:8080",
				Usage: "Base URL of the REST API to proxy to",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			client := mcp.NewClient(cmd.String("api-url"))
			log.Printf("Starting MCP stdio server (API: %s)", cmd.String("api-url"))
			return mcpserver.ServeStdio(client.GetMCPServer())
		},
	}
}
