package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/parabox-puzzle-game/game/service"
)

// Client is a thin MCP client that proxies to the REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API.
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools.
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Parabox Puzzle Game",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Parabox Puzzle Game - MCP Interface

A recursive block-pushing puzzle: blocks contain grids, grids contain blocks,
and blocks can contain themselves. Push, enter, eat or possess cells until
every button is covered by the right kind of cell.

AVAILABLE TOOLS:
- create_session: Start a game on a level (omit level for the built-in one)
- list_sessions: List all active sessions
- get_session: Session details
- game_state: Current world snapshot with a text board
- move: Press up/down/left/right
- undo: Take back the last press
- reset_game: Reload the level
- replay: Apply a solution string (characters U/D/L/R)
- list_levels: Levels available in the library

The board rendering shows each block's grid: '#' walls, 'P' players, 'B'
filled blocks, digits for blocks and references, '_'/'=' for buttons.`),
	)

	c.registerTools()
}

// registerTools registers all MCP tools.
func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session with an optional level name",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"level": map[string]interface{}{
					"type":        "string",
					"description": "Name of the level to load (optional)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details for a session",
		InputSchema: sessionIDSchema(),
	}, c.handleGetSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current game state including the text board",
		InputSchema: sessionIDSchema(),
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Press a direction (up, down, left, right)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"direction": map[string]interface{}{
					"type":        "string",
					"description": "One of up, down, left, right",
				},
			},
			Required: []string{"session_id", "direction"},
		},
	}, c.handleMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "undo",
		Description: "Undo the last press",
		InputSchema: sessionIDSchema(),
	}, c.handleUndo)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_game",
		Description: "Reset the session to the level's initial state",
		InputSchema: sessionIDSchema(),
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "replay",
		Description: "Apply a solution string of U/D/L/R presses; with no solution given, the level's stored solution is used",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"solution": map[string]interface{}{
					"type":        "string",
					"description": "Press sequence, e.g. \"RRUL\" (optional)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleReplay)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_levels",
		Description: "List the levels available in the level library",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListLevels)
}

func sessionIDSchema() mcp.ToolInputSchema {
	return mcp.ToolInputSchema{
		Type: "object",
		Properties: map[string]interface{}{
			"session_id": map[string]interface{}{
				"type":        "string",
				"description": "Session ID",
			},
		},
		Required: []string{"session_id"},
	}
}

// GetMCPServer returns the underlying MCP server for stdio serving.
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// apiCall performs an HTTP request against the REST API.
func (c *Client) apiCall(method, path string, body interface{}, result interface{}) error {
	reqBody := bytes.NewBuffer(nil)
	if body != nil {
		if err := json.NewEncoder(reqBody).Encode(body); err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
	}

	req, err := http.NewRequest(method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

func stringArg(request mcp.CallToolRequest, key string) string {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return ""
	}
	value, _ := args[key].(string)
	return value
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	body := map[string]string{}
	if level := stringArg(request, "level"); level != "" {
		body["level"] = level
	}

	var session service.SessionInfo
	if err := c.apiCall("POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nLevel: %s\n\n%s",
		session.ID, session.LevelName, session.State.Board)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}
	if err := c.apiCall("GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		fmt.Fprintf(&sb, "- %s (Level: %s, Presses: %d, Won: %v)\n",
			s.ID, s.LevelName, s.State.Presses, s.State.Won)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(request, "session_id")

	var session service.SessionInfo
	if err := c.apiCall("GET", "/api/sessions/"+sessionID, nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Session: %s\nLevel: %s\nCreated: %s\n\n%s",
		session.ID, session.LevelName,
		session.CreatedAt.Format("15:04:05"),
		formatState(session.State))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(request, "session_id")

	var state service.GameState
	if err := c.apiCall("GET", "/api/sessions/"+sessionID+"/state", nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatState(&state)), nil
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(request, "session_id")
	direction := stringArg(request, "direction")

	var result service.MoveResult
	err := c.apiCall("POST", "/api/sessions/"+sessionID+"/move",
		map[string]string{"direction": direction}, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	header := "Nothing moved."
	if result.Moved {
		header = "Moved " + direction + "."
	}
	if result.Won {
		header += " The level is solved!"
	}
	return mcp.NewToolResultText(header + "\n\n" + formatState(result.State)), nil
}

func (c *Client) handleUndo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(request, "session_id")

	var state service.GameState
	if err := c.apiCall("POST", "/api/sessions/"+sessionID+"/undo", nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("Undid the last press.\n\n" + formatState(&state)), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(request, "session_id")

	var state service.GameState
	if err := c.apiCall("POST", "/api/sessions/"+sessionID+"/reset", nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("Reset to the initial state.\n\n" + formatState(&state)), nil
}

func (c *Client) handleReplay(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(request, "session_id")

	body := map[string]string{}
	if solution := stringArg(request, "solution"); solution != "" {
		body["solution"] = solution
	}

	var result service.ReplayResult
	err := c.apiCall("POST", "/api/sessions/"+sessionID+"/replay", body, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	header := fmt.Sprintf("Applied %d presses.", result.Steps)
	if result.Won {
		header += " The level is solved!"
	}
	return mcp.NewToolResultText(header + "\n\n" + formatState(result.State)), nil
}

func (c *Client) handleListLevels(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count  int                  `json:"count"`
		Levels []*service.LevelInfo `json:"levels"`
	}
	if err := c.apiCall("GET", "/api/levels", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Levels (%d):\n\n", response.Count)
	for _, l := range response.Levels {
		solved := ""
		if l.HasSolution {
			solved = ", solution available"
		}
		fmt.Fprintf(&sb, "- %s (%d cells, %d goals, %d players%s)\n",
			l.Name, l.CellCount, l.GoalCount, l.PlayerCount, solved)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// formatState renders a game state snapshot for tool output.
func formatState(state *service.GameState) string {
	if state == nil {
		return "no state"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Presses: %d\nWon: %v\n", state.Presses, state.Won)

	satisfied := 0
	for _, goal := range state.Goals {
		if goal.Satisfied {
			satisfied++
		}
	}
	fmt.Fprintf(&sb, "Goals: %d/%d\n\n", satisfied, len(state.Goals))
	sb.WriteString(state.Board)
	return sb.String()
}
