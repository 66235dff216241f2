package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/pair-drop-game/game/engine"
	"github.com/wricardo/pair-drop-game/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Pair Drop",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Pair Drop - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Cards are dealt one at a time. Drop each card on an empty board cell. When a
neighbor (up, down, left, right) holds the card's partner, both are cleared.
Empty the board by the time the deck runs out for a perfect clear.

AVAILABLE TOOLS:
- create_session: Create a new game session (optional config and seed)
- start_game: Start a session and draw the first card
- game_state: Get the board, pending card and deck count
- place_card: Place the pending card at (row, col)
- bulk_place: Place several cards in order
- reset_game: Redeal the same deck from the start
- placement_history: View past placements
- get_session / list_sessions: Inspect sessions
- list_configs: List available rule sets
- game_instructions: Full rules and strategy notes
- describe_cell: Inspect one cell and its neighbors

NOTE: The 'intent' parameter on place_card/bulk_place serves as rubber duck debugging - explain your reasoning!`),
	)

	c.registerTools()
}

func sessionIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session with optional config selection and shuffle seed",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "ID of the rule set to use (optional, see list_configs)",
				},
				"seed": map[string]interface{}{
					"type":        "integer",
					"description": "Shuffle seed for a reproducible deck (optional)",
				},
				"auto_start": map[string]interface{}{
					"type":        "boolean",
					"description": "Start the game immediately",
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
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current game state",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "start_game",
		Description: "Start the game and draw the first card",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleStartGame)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "place_card",
		Description: "Place the pending card on an empty cell (0-based row and col)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"row": map[string]interface{}{
					"type":        "integer",
					"description": "Row of the target cell (0-based)",
				},
				"col": map[string]interface{}{
					"type":        "integer",
					"description": "Column of the target cell (0-based)",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this placement (serves as a rubber duck to help explain your reasoning)",
				},
			},
			Required: []string{"session_id", "row", "col"},
		},
	}, c.handlePlaceCard)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "bulk_place",
		Description: "Place several cards in sequence. Stops at the first rejected cell or when the game ends.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"placements": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"row": map[string]interface{}{"type": "integer"},
							"col": map[string]interface{}{"type": "integer"},
						},
						"required": []string{"row", "col"},
					},
					"description": "Cells to place the next cards on, in order",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this sequence (serves as a rubber duck to help explain your reasoning)",
				},
			},
			Required: []string{"session_id", "placements"},
		},
	}, c.handleBulkPlace)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_game",
		Description: "Redeal the same deck and return to the not-started state",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "placement_history",
		Description: "Get placement history for a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Items per page",
				},
				"order": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"asc", "desc"},
					"description": "Oldest first (asc) or newest first (desc, default)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handlePlacementHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available rule sets",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get comprehensive game instructions and rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_cell",
		Description: "Describe one board cell: its card, the card's partner, its neighbors and whether the pending card would clear there.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"row": map[string]interface{}{
					"type":        "integer",
					"description": "Row of the cell (0-based)",
				},
				"col": map[string]interface{}{
					"type":        "integer",
					"description": "Column of the cell (0-based)",
				},
			},
			Required: []string{"session_id", "row", "col"},
		},
	}, c.handleDescribeCell)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&errResp)
		if errResp.Error != "" {
			return fmt.Errorf("%s", errResp.Error)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

// arguments returns the tool arguments, or an empty map when none were sent
func arguments(request mcp.CallToolRequest) map[string]interface{} {
	if args, ok := request.Params.Arguments.(map[string]interface{}); ok {
		return args
	}
	return map[string]interface{}{}
}

// intArg reads a JSON number argument
func intArg(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case int64:
		return int(v), true
	}
	return 0, false
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	body := map[string]interface{}{}
	if configID, _ := args["config_id"].(string); configID != "" {
		body["config_id"] = configID
	}
	if seed, ok := args["seed"].(float64); ok {
		body["seed"] = int64(seed)
	}
	if autoStart, _ := args["auto_start"].(bool); autoStart {
		body["auto_start"] = true
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\nSeed: %d\n\n%s",
		session.ID, session.ConfigName, session.Seed, formatGameState(session.GameState))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}
	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result strings.Builder
	fmt.Fprintf(&result, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		status := "unknown"
		if s.GameState != nil {
			status = string(s.GameState.Status)
		}
		fmt.Fprintf(&result, "- %s (Config: %s, Status: %s, Created: %s)\n",
			s.ID, s.ConfigName, status, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(result.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleStartGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var state engine.GameState
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/start"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText("Game started\n\n" + formatGameState(&state)), nil
}

func (c *Client) handlePlaceCard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	row, okRow := intArg(args, "row")
	col, okCol := intArg(args, "col")
	if !okRow || !okCol {
		return mcp.NewToolResultError("row and col are required integers"), nil
	}

	// Intent parameter serves as rubber duck debugging - we don't need to process it further
	intent, _ := args["intent"].(string)
	_ = intent

	var result service.PlaceResult
	body := map[string]int{"row": row, "col": col}
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/place"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatPlaceResult(&result)), nil
}

func (c *Client) handleBulkPlace(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	raw, _ := args["placements"].([]interface{})

	placements := make([]engine.Position, 0, len(raw))
	for i, item := range raw {
		cell, ok := item.(map[string]interface{})
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("placement %d must be an object with row and col", i+1)), nil
		}
		row, okRow := intArg(cell, "row")
		col, okCol := intArg(cell, "col")
		if !okRow || !okCol {
			return mcp.NewToolResultError(fmt.Sprintf("placement %d is missing row or col", i+1)), nil
		}
		placements = append(placements, engine.Position{Row: row, Col: col})
	}
	if len(placements) == 0 {
		return mcp.NewToolResultError("placements must not be empty"), nil
	}

	var result service.BulkPlaceResult
	body := map[string]interface{}{"placements": placements}
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/bulk-place"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBulkPlaceResult(sessionID, &result)), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var response struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/reset"), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("%s\n\n%s", response.Message, formatGameState(response.State))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handlePlacementHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)

	params := url.Values{}
	if page, ok := intArg(args, "page"); ok {
		params.Set("page", fmt.Sprint(page))
	}
	if limit, ok := intArg(args, "limit"); ok {
		params.Set("limit", fmt.Sprint(limit))
	}
	if order, _ := args["order"].(string); order != "" {
		params.Set("order", order)
	}
	path := sessionPath(sessionID, "/history")
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := formatHistory(&history)

	// Also report the current segment from live state
	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err == nil {
		result += "\n" + formatCurrentSegment(session.GameState)
	}
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result strings.Builder
	result.WriteString("Available Configurations:\n\n")
	for _, cfg := range configs {
		nonPairing := fmt.Sprintf("%d never pairs", cfg.NonPairingRank)
		if cfg.NonPairingRank == engine.NoNonPairingRank {
			nonPairing = "every rank pairs"
		}
		fmt.Fprintf(&result, "• %s (%s, %s)\n  %s\n  Ranks: %d x%d, Board: %dx%d, %s\n\n",
			cfg.ConfigID, cfg.Name, cfg.Format, cfg.Description,
			cfg.Ranks, cfg.Multiplicity, cfg.BoardRows, cfg.BoardCols, nonPairing)
	}

	return mcp.NewToolResultText(result.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `🃏 Pair Drop - Complete Instructions

GAME OBJECTIVE:
Clear the board. A shuffled deck is dealt one card at a time and every card
must be dropped on an empty cell. Cards that pair with a neighbor vanish.

GAME MECHANICS:
• Start: start_game draws the first card into the pending slot
• Placement: place_card drops the pending card on an empty cell
• Matching: every orthogonal neighbor (up, down, left, right) holding the
  placed card's partner is cleared together with the placed card
• Single pass: clearing never triggers further clears
• Rejections: an occupied or off-board cell is rejected; the card stays pending

PAIRS (classic rule set, 13 ranks):
• 1+2, 3+4, 5+6, 7+8, 9+10, 11+12
• 13 never pairs: once placed it stays on the board for the rest of the game
• Other rule sets list their ranks and non-pairing rank in list_configs

GAME END:
• Deck exhausted: the last card was placed
• Board full: a card is pending but every cell is occupied
• Perfect clear: the game ended with an empty board
• Cleared with remainder: cards were left on the board

🤖 STRATEGY NOTES:
1. **Read the pending card first**: game_state shows it with the deck count
2. **Use hint cells**: game_state lists cells where the pending card clears now
3. **Park non-pairing cards in corners**: a corner touches only two cells, so
   a dead card there blocks the fewest future pairs
4. **Leave partners room**: an isolated card can only clear when its partner
   lands next to it, so keep empty cells beside unmatched cards
5. **Verify before committing**: describe_cell tells you the partner of a
   card, its neighbors, and whether the pending card would clear there

🎮 API USAGE BEST PRACTICES:
- Coordinates are 0-based (row, col); row 0 is the top row
- bulk_place stops at the first rejection or when the game ends
- reset_game redeals the same deck, so a seeded session replays exactly
- The same seed and rule set always produce the same deal

SESSION MANAGEMENT:
- Multiple game sessions can run simultaneously
- Each session has unique 4-character ID
- Sessions maintain independent state and configuration

Good luck clearing the board! 🍀`

	return mcp.NewToolResultText(instructions), nil
}

func (c *Client) handleDescribeCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	row, okRow := intArg(args, "row")
	col, okCol := intArg(args, "col")
	if !okRow || !okCol {
		return mcp.NewToolResultError("row and col are required integers"), nil
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	state := session.GameState
	if state == nil || session.GameConfig == nil {
		return mcp.NewToolResultError("session has no game state"), nil
	}

	if row < 0 || row >= state.Rows || col < 0 || col >= state.Cols {
		return mcp.NewToolResultError(fmt.Sprintf("Cell (%d, %d) is out of bounds. Board is %dx%d (rows 0-%d, cols 0-%d)",
			row, col, state.Rows, state.Cols, state.Rows-1, state.Cols-1)), nil
	}

	rule, err := engine.NewPairTable(session.GameConfig.Ranks, session.GameConfig.NonPairingRank)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(describeCell(state, rule, row, col)), nil
}

// describeCell explains one cell of state under rule
func describeCell(state *engine.GameState, rule *engine.PairTable, row, col int) string {
	board := engine.NewBoard(state.Rows, state.Cols)
	for r, cells := range state.Board {
		for c, v := range cells {
			if v != 0 {
				_ = board.Place(r, c, v)
			}
		}
	}

	var result strings.Builder
	fmt.Fprintf(&result, "Cell (%d, %d)\n", row, col)

	value, occupied := board.Value(row, col)
	if occupied {
		fmt.Fprintf(&result, "Card: %d\n", value)
		if partner, ok := rule.PartnerOf(value); ok {
			fmt.Fprintf(&result, "Partner: %d\n", partner)
		} else {
			result.WriteString("Partner: none (this card never pairs and will stay on the board)\n")
		}
	} else {
		result.WriteString("Card: empty\n")
	}

	result.WriteString("Neighbors:\n")
	labels := neighborLabels(row, col)
	for _, n := range board.NeighborsOf(row, col) {
		if v, ok := board.Value(n.Row, n.Col); ok {
			fmt.Fprintf(&result, "  %s (%d, %d): %d\n", labels[n], n.Row, n.Col, v)
		} else {
			fmt.Fprintf(&result, "  %s (%d, %d): empty\n", labels[n], n.Row, n.Col)
		}
	}

	if !occupied && state.Pending != nil && state.Status == engine.StatusActive {
		pending := *state.Pending
		var clears []engine.ClearedCell
		if err := board.Place(row, col, pending); err == nil {
			clears = engine.ResolveMatches(board, engine.Position{Row: row, Col: col}, rule)
		}
		if len(clears) > 0 {
			fmt.Fprintf(&result, "\n✅ Placing the pending %d here clears %d cards.\n", pending, len(clears))
		} else {
			fmt.Fprintf(&result, "\nPlacing the pending %d here clears nothing.\n", pending)
		}
	}

	return result.String()
}

func neighborLabels(row, col int) map[engine.Position]string {
	return map[engine.Position]string{
		{Row: row - 1, Col: col}: "up",
		{Row: row + 1, Col: col}: "down",
		{Row: row, Col: col - 1}: "left",
		{Row: row, Col: col + 1}: "right",
	}
}

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nConfig: %s\nSeed: %d\nCreated: %s\n\n%s",
		session.ID, session.ConfigName, session.Seed,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatGameState(session.GameState))
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state available"
	}

	var result strings.Builder

	pending := "none"
	if state.Pending != nil {
		pending = fmt.Sprint(*state.Pending)
	}
	fmt.Fprintf(&result, "Status: %s | Pending: %s | Deck: %d | On board: %d | Cleared: %d | Placements: %d\n\n",
		state.Status, pending, state.Remaining, state.Occupied, state.ClearedTotal, state.TotalPlacements)

	lines := state.BoardView
	if len(lines) == 0 {
		top := 1
		for _, row := range state.Board {
			for _, v := range row {
				top = max(top, int(v))
			}
		}
		lines = engine.RenderBoard(state.Board, top)
	}
	for _, line := range lines {
		result.WriteString(line + "\n")
	}

	if len(state.HintCells) > 0 {
		cells := make([]string, 0, len(state.HintCells))
		for _, p := range state.HintCells {
			cells = append(cells, fmt.Sprintf("(%d,%d)", p.Row, p.Col))
		}
		fmt.Fprintf(&result, "\nCells that clear the pending card: %s\n", strings.Join(cells, " "))
	}

	if state.Status == engine.StatusEnded {
		switch state.Outcome {
		case engine.PerfectClear:
			result.WriteString("\n🎉 PERFECT CLEAR!")
		default:
			fmt.Fprintf(&result, "\n🏁 GAME OVER (%s, %d cards left on the board)", state.EndReason, state.Occupied)
		}
	}

	if state.Message != "" {
		fmt.Fprintf(&result, "\nMessage: %s", state.Message)
	}

	return result.String()
}

func formatOutcomeLine(idx int, o *engine.PlacementOutcome) string {
	prefix := ""
	if idx > 0 {
		prefix = fmt.Sprintf("%d. ", idx)
	}
	if !o.Accepted {
		return fmt.Sprintf("%s✗ %d at (%d,%d) rejected: %s", prefix, o.Value, o.Position.Row, o.Position.Col, o.RejectReason)
	}
	if len(o.Cleared) == 0 {
		return fmt.Sprintf("%s✓ %d at (%d,%d), no pair", prefix, o.Value, o.Position.Row, o.Position.Col)
	}
	cells := make([]string, 0, len(o.Cleared))
	for _, c := range o.Cleared {
		cells = append(cells, fmt.Sprintf("%d@(%d,%d)", c.Value, c.Row, c.Col))
	}
	return fmt.Sprintf("%s✓ %d at (%d,%d) cleared %s", prefix, o.Value, o.Position.Row, o.Position.Col, strings.Join(cells, " "))
}

func formatPlaceResult(result *service.PlaceResult) string {
	var response strings.Builder
	if result.Success {
		response.WriteString("✓ Placement accepted\n")
	} else {
		response.WriteString("✗ Placement rejected\n")
	}
	if result.Outcome != nil {
		response.WriteString(formatOutcomeLine(0, result.Outcome) + "\n")
	}
	response.WriteString("\n" + formatGameState(result.GameState))
	return response.String()
}

func formatBulkPlaceResult(sessionID string, result *service.BulkPlaceResult) string {
	var response strings.Builder
	fmt.Fprintf(&response, "Session %s: executed %d/%d placements\n", sessionID, result.PlacementsExecuted, result.RequestedPlacements)
	if result.Truncated {
		fmt.Fprintf(&response, "Request truncated to %d placements\n", result.Limit)
	}

	for i, o := range result.Outcomes {
		response.WriteString(formatOutcomeLine(i+1, o) + "\n")
	}

	if result.StopReasonCode != "" {
		fmt.Fprintf(&response, "Stopped on placement %d: %s (%s)\n", result.StoppedOnPlacement, result.StoppedReason, result.StopReasonCode)
	}
	fmt.Fprintf(&response, "Deck: %d → %d | Cleared this batch: %d\n", result.StartRemaining, result.EndRemaining, result.ClearedDelta)

	response.WriteString("\n" + formatGameState(result.GameState))
	return response.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var result strings.Builder
	fmt.Fprintf(&result, "Placement History (Page %d/%d, Total: %d)\n\n",
		history.Page, history.TotalPages, history.TotalPlacements)

	for _, p := range history.Placements {
		status := "✓"
		detail := fmt.Sprintf("cleared %d", len(p.Cleared))
		if !p.Accepted {
			status = "✗"
			detail = p.RejectReason
		}
		fmt.Fprintf(&result, "%d. %s %d at (%d,%d) %s, deck %d\n",
			p.PlacementNumber, status, p.Value, p.Position.Row, p.Position.Col, detail, p.Remaining)
	}
	return result.String()
}

func formatCurrentSegment(state *engine.GameState) string {
	if state == nil {
		return ""
	}
	accepted := 0
	for _, p := range state.CurrentPlacements {
		if p.Accepted {
			accepted++
		}
	}
	return fmt.Sprintf("Since last reset: %d placements (%d accepted)\n", state.CurrentPlacementsCount, accepted)
}
