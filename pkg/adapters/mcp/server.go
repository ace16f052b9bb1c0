// Package mcp exposes the chain engine as a Model Context Protocol
// server, so agent infrastructure can discover components and run
// chains as tools.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/strandkit/strand"
	"github.com/strandkit/strand/pkg/domain"
	"github.com/strandkit/strand/pkg/ports"
	"github.com/strandkit/strand/pkg/registry"
)

// RunResponse carries the main output and the per-node trail, aligned
// with the HTTP adapter's response shape.
type RunResponse struct {
	Output any          `json:"output" jsonschema_description:"Value addressed by the chain's main output"`
	Trail  domain.Trail `json:"trail" jsonschema_description:"Per-node outputs recorded during the run"`
}

// Engine defines the interface required by the MCP server.
type Engine interface {
	ports.ChainRunner

	Registries() *registry.Set
	Store() ports.ChainStore
	ParseChain(data []byte) (*domain.Chain, error)
	LoadChain(ctx context.Context, id string) (*domain.Chain, error)
	Mermaid(chain *domain.Chain, trail domain.Trail) string
}

// Server wraps the engine and exposes it as an MCP Server.
type Server struct {
	engine    Engine
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine) *Server {
	s := &Server{
		engine:    engine,
		mcpServer: server.NewMCPServer("strand-mcp", strings.TrimSpace(strand.Version)),
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
		slog.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		fmt.Println("\nShutdown signal received, shutting down server...")
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
	// TOOL: list_components
	s.mcpServer.AddTool(mcp.NewTool("list_components",
		mcp.WithDescription("List registered models, programmatic actions, and AI actions. Optionally filtered by tag."),
		mcp.WithString("tag", mcp.Description("Only list components carrying this tag (optional)")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		tag := request.GetString("tag", "")
		set := s.engine.Registries()
		listing := map[string][]string{
			"models":     set.Models.List(tag),
			"actions":    set.Actions.List(tag),
			"ai_actions": set.AI.List(tag),
		}
		jsonBytes, _ := json.Marshal(listing)
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})

	// TOOL: run_chain
	runTool := mcp.NewTool("run_chain",
		mcp.WithDescription("Execute a chain. Provide either the id of a stored chain or an inline JSON definition."),
		mcp.WithString("chain_id", mcp.Description("ID of a stored chain")),
		mcp.WithString("definition", mcp.Description("Inline chain definition as JSON (alternative to chain_id)")),
		mcp.WithString("input", mcp.Required(), mcp.Description("JSON value fed to the chain's main input")),
		mcp.WithOutputSchema[RunResponse](),
	)
	s.mcpServer.AddTool(runTool, mcp.NewStructuredToolHandler(s.handleRunChain))

	// TOOL: validate_chain
	s.mcpServer.AddTool(mcp.NewTool("validate_chain",
		mcp.WithDescription("Build a chain definition without running it, reporting unresolved references, wiring errors, and cycles."),
		mcp.WithString("definition", mcp.Required(), mcp.Description("Chain definition as JSON or YAML")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		definition, err := request.RequireString("definition")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		chain, err := s.engine.ParseChain([]byte(definition))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid chain: %v", err)), nil
		}
		if _, err := chain.TopologicalOrder(); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid chain: %v", err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("chain is valid (%d nodes, %d edges)", len(chain.Nodes), len(chain.Edges))), nil
	})

	// TOOL: get_chain_graph
	s.mcpServer.AddTool(mcp.NewTool("get_chain_graph",
		mcp.WithDescription("Render a stored chain as a Mermaid flowchart."),
		mcp.WithString("chain_id", mcp.Required(), mcp.Description("ID of a stored chain")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("chain_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		chain, err := s.engine.LoadChain(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("load failed: %v", err)), nil
		}
		return mcp.NewToolResultText(s.engine.Mermaid(chain, nil)), nil
	})
}

func (s *Server) handleRunChain(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (RunResponse, error) {
	rawInput, _ := args["input"].(string)
	var input any
	if rawInput != "" {
		if err := json.Unmarshal([]byte(rawInput), &input); err != nil {
			// Not JSON: pass the raw string through.
			input = rawInput
		}
	}

	var chain *domain.Chain
	var err error
	switch {
	case args["chain_id"] != nil:
		id, _ := args["chain_id"].(string)
		chain, err = s.engine.LoadChain(ctx, id)
	case args["definition"] != nil:
		definition, _ := args["definition"].(string)
		chain, err = s.engine.ParseChain([]byte(definition))
	default:
		return RunResponse{}, fmt.Errorf("either chain_id or definition is required")
	}
	if err != nil {
		return RunResponse{}, fmt.Errorf("chain not runnable: %w", err)
	}

	output, trail, err := s.engine.Run(ctx, chain, input, nil)
	if err != nil {
		slog.Error("MCP run_chain failed", "err", err)
		return RunResponse{}, fmt.Errorf("run failed: %w", err)
	}
	return RunResponse{Output: output, Trail: trail}, nil
}

func (s *Server) registerResources() {
	// EXPOSE: strand://components
	s.mcpServer.AddResource(mcp.NewResource("strand://components", "Registered Component Catalog",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		set := s.engine.Registries()
		catalog := map[string][]string{
			"models":     set.Models.List(""),
			"actions":    set.Actions.List(""),
			"ai_actions": set.AI.List(""),
		}
		jsonBytes, err := json.Marshal(catalog)
		if err != nil {
			return nil, fmt.Errorf("failed to encode catalog: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "strand://components",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
