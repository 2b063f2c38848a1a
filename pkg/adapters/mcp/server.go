package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/pixelpilot/internal/logging"
	"github.com/aretw0/pixelpilot/internal/runtime"
	"github.com/aretw0/pixelpilot/pkg/domain"
	"github.com/aretw0/pixelpilot/pkg/graph"
	"github.com/aretw0/pixelpilot/pkg/ports"
	"github.com/aretw0/pixelpilot/pkg/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// GraphURI is the resource holding the live graph document.
const GraphURI = "pixelpilot://graph"

// StatusURI is the resource holding the scheduler status.
const StatusURI = "pixelpilot://status"

// Engine defines the interface required by the MCP server to drive PixelPilot.
type Engine interface {
	Start(ctx context.Context) error
	Stop() error
	Step(ctx context.Context) (runtime.TickReport, error)
	Status() runtime.Status
	Mutate(op graph.Op) (string, error)
	Document(name string) *schema.Document
	AddRuleSpec(spec domain.RuleSpec) (string, error)
	RemoveRule(id string) error
	State() ports.StateStore
}

// StepResponse is the structured result of engine_step.
type StepResponse struct {
	Tick       uint64   `json:"tick" jsonschema_description:"Tick number"`
	DurationMS float64  `json:"duration_ms" jsonschema_description:"Tick duration in milliseconds"`
	Passes     int      `json:"passes" jsonschema_description:"Evaluation passes used"`
	Converged  bool     `json:"converged" jsonschema_description:"Whether signals settled within the pass budget"`
	RulesFired []string `json:"rules_fired" jsonschema_description:"Rules whose actions ran"`
	Fired      []string `json:"fired" jsonschema_description:"Output nodes that acted"`
	Faults     []string `json:"faults" jsonschema_description:"Node faults raised during the tick"`
}

// Server wraps the Engine and exposes it as an MCP Server.
type Server struct {
	engine    Engine
	mcpServer *server.MCPServer
	logger    *slog.Logger
	runCtx    context.Context
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithRunContext bounds engines started through engine_start.
func WithRunContext(ctx context.Context) Option {
	return func(s *Server) { s.runCtx = ctx }
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine, version string, opts ...Option) *Server {
	s := &Server{
		engine:    engine,
		mcpServer: server.NewMCPServer("pixelpilot-mcp", strings.TrimSpace(version)),
		logger:    logging.NewNop(),
		runCtx:    context.Background(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer exposes the underlying server, e.g. for in-process clients.
func (s *Server) MCPServer() *server.MCPServer { return s.mcpServer }

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on addr using SSE and shuts it down when ctx ends.
func (s *Server) ServeSSE(ctx context.Context, addr string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL("http://"+addr))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("engine_start",
		mcp.WithDescription("Start the real-time tick loop."),
	), s.handleStart)

	s.mcpServer.AddTool(mcp.NewTool("engine_stop",
		mcp.WithDescription("Stop the tick loop after the in-flight tick."),
	), s.handleStop)

	s.mcpServer.AddTool(mcp.NewTool("engine_status",
		mcp.WithDescription("Report whether the loop runs, tick counters and graph size."),
	), s.handleStatus)

	s.mcpServer.AddTool(mcp.NewTool("engine_step",
		mcp.WithDescription("Run exactly one tick. Rejected while the loop runs."),
		mcp.WithOutputSchema[StepResponse](),
	), mcp.NewStructuredToolHandler(s.handleStep))

	s.mcpServer.AddTool(mcp.NewTool("add_node",
		mcp.WithDescription("Add a block to the graph. Returns the node id."),
		mcp.WithString("kind", mcp.Required(), mcp.Description("input, process or output")),
		mcp.WithString("type", mcp.Required(), mcp.Description("Catalogue type, e.g. pixel_color, and, key_press")),
		mcp.WithString("id", mcp.Description("Node id (generated when omitted)")),
		mcp.WithString("name", mcp.Description("Display name")),
		mcp.WithString("config", mcp.Description("JSON object with the block configuration")),
	), s.handleAddNode)

	s.mcpServer.AddTool(mcp.NewTool("remove_node",
		mcp.WithDescription("Remove a block and every link touching it."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Node id")),
	), s.handleRemoveNode)

	linkArgs := []mcp.ToolOption{
		mcp.WithString("from_node", mcp.Required(), mcp.Description("Source node id")),
		mcp.WithString("from_port", mcp.Description("Source port (default Out)")),
		mcp.WithString("to_node", mcp.Required(), mcp.Description("Target node id")),
		mcp.WithString("to_port", mcp.Required(), mcp.Description("Target port, e.g. In1 or Trig")),
	}
	s.mcpServer.AddTool(mcp.NewTool("add_link",
		append([]mcp.ToolOption{mcp.WithDescription("Connect an output port to a free input port.")}, linkArgs...)...,
	), s.handleAddLink)
	s.mcpServer.AddTool(mcp.NewTool("remove_link",
		append([]mcp.ToolOption{mcp.WithDescription("Remove the link feeding an input port.")}, linkArgs...)...,
	), s.handleRemoveLink)

	s.mcpServer.AddTool(mcp.NewTool("get_graph",
		mcp.WithDescription("Get the full graph document, including rules."),
	), s.handleGetGraph)

	s.mcpServer.AddTool(mcp.NewTool("add_rule",
		mcp.WithDescription("Add a condition/action rule."),
		mcp.WithString("rule", mcp.Required(), mcp.Description("JSON rule: {id, logic, conditions:[{type,config}], actions:[{type,config}], requires}")),
	), s.handleAddRule)

	s.mcpServer.AddTool(mcp.NewTool("remove_rule",
		mcp.WithDescription("Remove a rule by id."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Rule id")),
	), s.handleRemoveRule)

	s.mcpServer.AddTool(mcp.NewTool("get_state",
		mcp.WithDescription("Read one shared-state key, or every key when omitted."),
		mcp.WithString("key", mcp.Description("State key")),
	), s.handleGetState)

	s.mcpServer.AddTool(mcp.NewTool("set_state",
		mcp.WithDescription("Write a shared-state key. Values parse as bool, int, float, then string."),
		mcp.WithString("key", mcp.Required(), mcp.Description("State key")),
		mcp.WithString("value", mcp.Required(), mcp.Description("Value, e.g. true, 3, 0.5, combat")),
	), s.handleSetState)
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(GraphURI, "Current Graph Document",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return jsonResource(GraphURI, s.engine.Document(""))
	})

	s.mcpServer.AddResource(mcp.NewResource(StatusURI, "Engine Status",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return jsonResource(StatusURI, s.engine.Status())
	})
}

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", uri, err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handleStart(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.engine.Start(s.runCtx); err != nil {
		return s.toolError("engine_start", err), nil
	}
	return jsonResult(s.engine.Status())
}

func (s *Server) handleStop(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.engine.Stop(); err != nil {
		return s.toolError("engine_stop", err), nil
	}
	return jsonResult(s.engine.Status())
}

func (s *Server) handleStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.engine.Status())
}

func (s *Server) handleStep(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (StepResponse, error) {
	rep, err := s.engine.Step(ctx)
	if err != nil {
		return StepResponse{}, fmt.Errorf("step failed: %w", err)
	}
	resp := StepResponse{
		Tick:       rep.Tick,
		DurationMS: float64(rep.Duration.Microseconds()) / 1000,
		Passes:     rep.Passes,
		Converged:  rep.Converged,
		RulesFired: append([]string{}, rep.RulesFired...),
		Fired:      append([]string{}, rep.Fired...),
		Faults:     []string{},
	}
	for _, f := range rep.Faults {
		resp.Faults = append(resp.Faults, fmt.Sprintf("%s: %v", f.NodeID, f.Err))
	}
	return resp, nil
}

func (s *Server) handleAddNode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind, err := domain.ParseNodeKind(request.GetString("kind", ""))
	if err != nil {
		return s.toolError("add_node", err), nil
	}
	spec := domain.NodeSpec{
		ID:   request.GetString("id", ""),
		Kind: kind,
		Name: request.GetString("name", ""),
		Type: request.GetString("type", ""),
	}
	if raw := request.GetString("config", ""); raw != "" {
		if err := json.Unmarshal([]byte(raw), &spec.Config); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("config must be a JSON object: %v", err)), nil
		}
	}
	id, err := s.engine.Mutate(graph.AddNode(spec))
	if err != nil {
		return s.toolError("add_node", err), nil
	}
	return mcp.NewToolResultText(id), nil
}

func (s *Server) handleRemoveNode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := request.GetString("id", "")
	if _, err := s.engine.Mutate(graph.RemoveNode(id)); err != nil {
		return s.toolError("remove_node", err), nil
	}
	return mcp.NewToolResultText("removed " + id), nil
}

func linkFrom(request mcp.CallToolRequest) domain.Link {
	return domain.Link{
		FromNode: request.GetString("from_node", ""),
		FromPort: request.GetString("from_port", domain.PortOut),
		ToNode:   request.GetString("to_node", ""),
		ToPort:   request.GetString("to_port", ""),
	}
}

func (s *Server) handleAddLink(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	link := linkFrom(request)
	if _, err := s.engine.Mutate(graph.AddLink(link)); err != nil {
		return s.toolError("add_link", err), nil
	}
	return mcp.NewToolResultText("linked " + link.String()), nil
}

func (s *Server) handleRemoveLink(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	link := linkFrom(request)
	if _, err := s.engine.Mutate(graph.RemoveLink(link)); err != nil {
		return s.toolError("remove_link", err), nil
	}
	return mcp.NewToolResultText("unlinked " + link.String()), nil
}

func (s *Server) handleGetGraph(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.engine.Document(""))
}

func (s *Server) handleAddRule(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var spec domain.RuleSpec
	if err := json.Unmarshal([]byte(request.GetString("rule", "")), &spec); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("rule must be a JSON object: %v", err)), nil
	}
	id, err := s.engine.AddRuleSpec(spec)
	if err != nil {
		return s.toolError("add_rule", err), nil
	}
	return mcp.NewToolResultText(id), nil
}

func (s *Server) handleRemoveRule(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := request.GetString("id", "")
	if err := s.engine.RemoveRule(id); err != nil {
		return s.toolError("remove_rule", err), nil
	}
	return mcp.NewToolResultText("removed " + id), nil
}

func (s *Server) handleGetState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key := request.GetString("key", "")
	if key == "" {
		snap, err := s.engine.State().Snapshot(ctx)
		if err != nil {
			return s.toolError("get_state", err), nil
		}
		return jsonResult(snap)
	}
	v, ok, err := s.engine.State().Get(ctx, key)
	if err != nil {
		return s.toolError("get_state", err), nil
	}
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("state key %q not set", key)), nil
	}
	return jsonResult(map[string]any{"key": key, "value": v})
}

func (s *Server) handleSetState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key := request.GetString("key", "")
	v := domain.ParseValue(request.GetString("value", ""))
	if err := s.engine.State().Set(ctx, key, v); err != nil {
		return s.toolError("set_state", err), nil
	}
	return jsonResult(map[string]any{"key": key, "value": v})
}

func (s *Server) toolError(op string, err error) *mcp.CallToolResult {
	s.logger.Debug("MCP tool rejected", "tool", op, "error", err)
	return mcp.NewToolResultError(fmt.Sprintf("%s failed: %v", op, err))
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
