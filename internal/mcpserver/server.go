// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Lectern tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/lectern/internal/deckservice"
	"github.com/starford/lectern/internal/manifest"
)

// Server wraps the MCP server with Lectern tools.
type Server struct {
	mcp *server.MCPServer
	svc *deckservice.Service
}

// New creates a new MCP server with all Lectern tools registered.
func New(svc *deckservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Lectern",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_presentations",
		mcp.WithDescription("List all presentations in the library with slide, tab, and group counts."),
	), s.listPresentations)

	s.mcp.AddTool(mcp.NewTool("get_presentation",
		mcp.WithDescription("Get a presentation with its resolved navigation order and display mode."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Presentation id (folder name)")),
	), s.getPresentation)

	s.mcp.AddTool(mcp.NewTool("get_manifest",
		mcp.WithDescription("Read a presentation's manifest document in canonical JSON form."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Presentation id (folder name)")),
	), s.getManifest)

	s.mcp.AddTool(mcp.NewTool("add_slide",
		mcp.WithDescription("Add a slide entry to a presentation's manifest. "+
			"The slide file must already exist in the presentation folder. "+
			"Read the contract first via the get_manifest_contract tool or the "+
			"lectern://manifest-format resource."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Presentation id (folder name)")),
		mcp.WithString("file", mcp.Required(), mcp.Description("Slide file name (must end with .html)")),
		mcp.WithString("title", mcp.Description("Display title (defaults to a title derived from the file name)")),
		mcp.WithString("group", mcp.Description("Optional group id the slide belongs to")),
	), s.addSlide)

	s.mcp.AddTool(mcp.NewTool("sync_presentation",
		mcp.WithDescription("Reconcile a presentation's manifest against the HTML files on disk. "+
			"Strategy is one of merge (default), replace, or addOnly."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Presentation id (folder name)")),
		mcp.WithString("strategy", mcp.Description("merge, replace, or addOnly (default merge)")),
	), s.syncPresentation)

	s.mcp.AddTool(mcp.NewTool("get_manifest_contract",
		mcp.WithDescription("Returns the canonical Lectern manifest format contract. "+
			"Call this before writing or editing manifest documents."),
	), s.getManifestContract)

	// Resource: manifest format contract.
	s.mcp.AddResource(
		mcp.NewResource("lectern://manifest-format", "Manifest Format Contract",
			mcp.WithResourceDescription("Canonical manifest.json format that all presentations follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readManifestFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listPresentations(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, err := s.svc.ListPresentations(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(items, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getPresentation(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	detail, err := s.svc.GetPresentation(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	out, _ := json.MarshalIndent(detail, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getManifest(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	m, _, err := s.svc.GetManifest(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	out, err := m.Encode()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) addSlide(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	file, err := req.RequireString("file")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	slide := manifest.Slide{File: file}
	if t, terr := req.RequireString("title"); terr == nil {
		slide.Title = t
	}
	if g, gerr := req.RequireString("group"); gerr == nil {
		slide.Group = g
	}

	if _, err := s.svc.AddSlide(ctx, id, slide); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("added: %s", file)), nil
}

func (s *Server) syncPresentation(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	strategy := manifest.SyncMerge
	if raw, serr := req.RequireString("strategy"); serr == nil && raw != "" {
		strategy = raw
	}

	_, report, err := s.svc.SyncManifest(ctx, id, manifest.SyncOptions{Strategy: strategy, InferTitles: true})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "synced: %s\n", id)
	fmt.Fprintf(&b, "added=%d updated=%d removed=%d\n",
		report.Added, report.Updated, report.Removed)
	for _, w := range report.Warnings {
		fmt.Fprintf(&b, "warning: %s\n", w)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) getManifestContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(ManifestFormatContract), nil
}

func (s *Server) readManifestFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "lectern://manifest-format",
			MIMEType: "text/markdown",
			Text:     ManifestFormatContract,
		},
	}, nil
}
