package mcpserver

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/lectern/internal/deckservice"
	"github.com/starford/lectern/internal/testutil"
)

func testServer(t *testing.T) (*Server, string) {
	t.Helper()

	root, store := testutil.TestLibrary(t)
	db := testutil.TestDB(t)
	svc := deckservice.NewService(store, db, nil)
	return New(svc), root
}

func seedDeck(t *testing.T, root string) {
	t.Helper()
	testutil.WritePresentation(t, root, "workshop", map[string]string{
		"index.html":   "",
		"intro-a.html": "<html><head><title>Opening</title></head><body></body></html>",
		"notes.html":   "",
	})
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper, so the handler
	// functions are invoked directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "list_presentations":
		result, err = srv.listPresentations(ctx, req)
	case "get_presentation":
		result, err = srv.getPresentation(ctx, req)
	case "get_manifest":
		result, err = srv.getManifest(ctx, req)
	case "add_slide":
		result, err = srv.addSlide(ctx, req)
	case "sync_presentation":
		result, err = srv.syncPresentation(ctx, req)
	case "get_manifest_contract":
		result, err = srv.getManifestContract(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestSyncThenGetManifest(t *testing.T) {
	srv, root := testServer(t)
	seedDeck(t, root)

	r := callTool(t, srv, "sync_presentation", map[string]interface{}{
		"id": "workshop",
	})
	if r.IsError {
		t.Fatalf("sync error: %s", resultText(r))
	}
	text := resultText(r)
	if !strings.Contains(text, "synced: workshop") {
		t.Errorf("sync result = %q", text)
	}
	if !strings.Contains(text, "added=2") {
		t.Errorf("expected two slides added, got %q", text)
	}

	r = callTool(t, srv, "get_manifest", map[string]interface{}{"id": "workshop"})
	if r.IsError {
		t.Fatalf("get_manifest error: %s", resultText(r))
	}
	doc := resultText(r)
	if !strings.Contains(doc, `"intro-a.html"`) {
		t.Errorf("manifest missing synced slide: %q", doc)
	}
	if !strings.Contains(doc, `"Opening"`) {
		t.Errorf("manifest missing inferred title: %q", doc)
	}
}

func TestAddSlideTool(t *testing.T) {
	srv, root := testServer(t)
	seedDeck(t, root)

	r := callTool(t, srv, "add_slide", map[string]interface{}{
		"id":    "workshop",
		"file":  "extra.html",
		"title": "Extra Material",
	})
	if r.IsError {
		t.Fatalf("add_slide error: %s", resultText(r))
	}
	if got := resultText(r); got != "added: extra.html" {
		t.Errorf("result = %q", got)
	}

	// Duplicate file reports the conflict as a tool error.
	r = callTool(t, srv, "add_slide", map[string]interface{}{
		"id":   "workshop",
		"file": "extra.html",
	})
	if !r.IsError {
		t.Error("duplicate add should be a tool error")
	}
}

func TestAddSlideMissingArgs(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "add_slide", map[string]interface{}{"id": "workshop"})
	if !r.IsError {
		t.Error("missing file argument should be a tool error")
	}
}

func TestGetPresentationMissing(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "get_presentation", map[string]interface{}{"id": "ghost"})
	if !r.IsError {
		t.Error("missing presentation should be a tool error")
	}
}

func TestListPresentationsEmpty(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "list_presentations", map[string]interface{}{})
	if r.IsError {
		t.Fatalf("list error: %s", resultText(r))
	}
	if text := resultText(r); !strings.Contains(text, "[]") {
		t.Errorf("empty library list = %q", text)
	}
}

func TestManifestContractTool(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "get_manifest_contract", map[string]interface{}{})
	text := resultText(r)
	if !strings.Contains(text, "manifest.json") {
		t.Errorf("contract missing document name: %q", text)
	}
	if !strings.Contains(text, "displayMode") {
		t.Errorf("contract missing displayMode rule: %q", text)
	}
}

func TestServerConstruction(t *testing.T) {
	srv, _ := testServer(t)
	if srv.MCPServer() == nil {
		t.Fatal("expected underlying MCP server")
	}
}
