package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/simscope"
	"github.com/aretw0/simscope/internal/logging"
	"github.com/aretw0/simscope/pkg/domain"
	"github.com/aretw0/simscope/pkg/runner"
	"github.com/aretw0/simscope/pkg/value"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// StateResponse is the structured result of get_state.
type StateResponse struct {
	Entity string      `json:"entity" jsonschema_description:"The inspected entity path"`
	Field  string      `json:"field,omitempty" jsonschema_description:"The dotted field, empty for the whole tree"`
	Found  bool        `json:"found" jsonschema_description:"Whether the field resolved"`
	Value  value.Value `json:"value,omitempty" jsonschema_description:"The resolved value"`
	YAML   string      `json:"yaml,omitempty" jsonschema_description:"The resolved value rendered as YAML"`
}

// BreakpointResponse is the structured result of toggle_breakpoint.
type BreakpointResponse struct {
	Active bool   `json:"active" jsonschema_description:"Whether the breakpoint exists after the call"`
	Kind   string `json:"kind,omitempty" jsonschema_description:"The transition the breakpoint reacts to"`
}

// LogsResponse is the structured result of query_logs.
type LogsResponse struct {
	Entity string            `json:"entity" jsonschema_description:"The entity whose stream was queried"`
	Events []domain.LogEvent `json:"events" jsonschema_description:"Matching events in emission order"`
}

// StepResponse is the structured result of step.
type StepResponse struct {
	Dispatched int                    `json:"dispatched" jsonschema_description:"Events dispatched by this call"`
	Hits       []domain.BreakpointHit `json:"hits" jsonschema_description:"Breakpoints that fired"`
	Status     runner.Status          `json:"status" jsonschema_description:"Controller status after the call"`
}

// Server wraps an Inspector and exposes it as an MCP Server.
type Server struct {
	inspector  *simscope.Inspector
	controller *runner.Controller
	mcpServer  *server.MCPServer
	logger     *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger for transport and tool failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a new MCP Server instance. A nil controller hides the
// step tool.
func NewServer(insp *simscope.Inspector, ctrl *runner.Controller, opts ...Option) *Server {
	s := &Server{
		inspector:  insp,
		controller: ctrl,
		mcpServer:  server.NewMCPServer("simscope-mcp", strings.TrimSpace(simscope.Version)),
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: list_entities
	s.mcpServer.AddTool(mcp.NewTool("list_entities",
		mcp.WithDescription("List the entity paths of the running simulation."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		jsonBytes, _ := json.Marshal(s.inspector.Entities())
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})

	// TOOL: get_state
	stateTool := mcp.NewTool("get_state",
		mcp.WithDescription("Read the unified state tree of an entity, or one dotted field of it. The entity is watched from then on."),
		mcp.WithString("entity", mcp.Required(), mcp.Description("Entity path, dot or slash separated")),
		mcp.WithString("field", mcp.Description("Dotted field path, e.g. inet.v6.addr (optional)")),
		mcp.WithOutputSchema[StateResponse](),
	)
	s.mcpServer.AddTool(stateTool, mcp.NewStructuredToolHandler(s.handleGetState))

	// TOOL: toggle_breakpoint
	breakpointTool := mcp.NewTool("toggle_breakpoint",
		mcp.WithDescription("Add or remove a breakpoint on an entity field. A kind given for a new breakpoint overrides the default OnValueChanged."),
		mcp.WithString("entity", mcp.Required(), mcp.Description("Entity path")),
		mcp.WithString("field", mcp.Required(), mcp.Description("Dotted field path")),
		mcp.WithString("kind", mcp.Description("changed, appeared, disappeared or off (optional)")),
		mcp.WithOutputSchema[BreakpointResponse](),
	)
	s.mcpServer.AddTool(breakpointTool, mcp.NewStructuredToolHandler(s.handleToggleBreakpoint))

	// TOOL: list_breakpoints
	s.mcpServer.AddTool(mcp.NewTool("list_breakpoints",
		mcp.WithDescription("List breakpoints with their kind and last observed value."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		jsonBytes, _ := json.Marshal(s.inspector.Breakpoints())
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})

	// TOOL: query_logs
	logsTool := mcp.NewTool("query_logs",
		mcp.WithDescription("Return the captured log events of an entity whose fields, span chain or path contain the query."),
		mcp.WithString("entity", mcp.Required(), mcp.Description("Entity path")),
		mcp.WithString("query", mcp.Description("Case-sensitive substring (optional)")),
		mcp.WithOutputSchema[LogsResponse](),
	)
	s.mcpServer.AddTool(logsTool, mcp.NewStructuredToolHandler(s.handleQueryLogs))

	if s.controller == nil {
		return
	}

	// TOOL: step
	stepTool := mcp.NewTool("step",
		mcp.WithDescription("Dispatch simulation events synchronously, stopping early on a halting breakpoint."),
		mcp.WithNumber("count", mcp.Description("Number of events to dispatch (default 1)")),
		mcp.WithOutputSchema[StepResponse](),
	)
	s.mcpServer.AddTool(stepTool, mcp.NewStructuredToolHandler(s.handleStep))
}

// Handler methods for structured tools

func (s *Server) handleGetState(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (StateResponse, error) {
	path, err := entityArg(args)
	if err != nil {
		return StateResponse{}, err
	}
	field, _ := args["field"].(string)

	if err := s.inspector.Open(path); err != nil {
		return StateResponse{}, fmt.Errorf("get state failed: %w", err)
	}

	resp := StateResponse{Entity: path.String(), Field: field}
	v, ok := s.inspector.Field(path, field)
	if !ok {
		return resp, nil
	}
	resp.Found = true
	resp.Value = v
	if out, err := v.YAML(); err == nil {
		resp.YAML = out
	} else {
		s.logger.Warn("MCP GetState: YAML render failed", "entity", path, "error", err)
	}
	return resp, nil
}

func (s *Server) handleToggleBreakpoint(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (BreakpointResponse, error) {
	path, err := entityArg(args)
	if err != nil {
		return BreakpointResponse{}, err
	}
	field, _ := args["field"].(string)

	kind := domain.BreakpointOnValueChanged
	raw, _ := args["kind"].(string)
	if raw != "" {
		if kind, err = domain.ParseBreakpointKind(raw); err != nil {
			return BreakpointResponse{}, err
		}
	}

	active, err := s.inspector.ToggleBreakpoint(path, field)
	if err != nil {
		return BreakpointResponse{}, fmt.Errorf("toggle breakpoint failed: %w", err)
	}
	if !active {
		return BreakpointResponse{}, nil
	}
	if raw != "" {
		if err := s.inspector.SetBreakpointKind(path, field, kind); err != nil {
			return BreakpointResponse{}, fmt.Errorf("set breakpoint kind failed: %w", err)
		}
	}

	resp := BreakpointResponse{Active: true}
	for _, bp := range s.inspector.Breakpoints() {
		if bp.Entity == path && bp.Field == field {
			resp.Kind = bp.Kind.String()
		}
	}
	return resp, nil
}

func (s *Server) handleQueryLogs(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (LogsResponse, error) {
	path, err := entityArg(args)
	if err != nil {
		return LogsResponse{}, err
	}
	query, _ := args["query"].(string)

	events := s.inspector.Logs(path, query)
	if events == nil {
		events = []domain.LogEvent{}
	}
	return LogsResponse{Entity: path.String(), Events: events}, nil
}

func (s *Server) handleStep(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (StepResponse, error) {
	count := 1
	// JSON numbers decode as float64.
	if n, ok := args["count"].(float64); ok && n >= 1 {
		count = int(n)
	}

	s.controller.Step(count)
	var resp StepResponse
	for ctx.Err() == nil {
		res, err := s.controller.Tick(ctx)
		if err != nil {
			return StepResponse{}, fmt.Errorf("step failed: %w", err)
		}
		resp.Dispatched += res.Dispatched
		resp.Hits = append(resp.Hits, res.Hits...)
		if res.Done || res.Halted || res.Dispatched == 0 {
			break
		}
	}
	if resp.Hits == nil {
		resp.Hits = []domain.BreakpointHit{}
	}
	resp.Status = s.controller.Status()
	return resp, nil
}

func (s *Server) registerResources() {
	// EXPOSE: simscope://entities
	s.mcpServer.AddResource(mcp.NewResource("simscope://entities", "Simulation Entities",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, _ := json.Marshal(s.inspector.Entities())

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "simscope://entities",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}

func entityArg(args map[string]interface{}) (domain.EntityPath, error) {
	raw, _ := args["entity"].(string)
	return domain.ParseEntityPath(raw)
}
