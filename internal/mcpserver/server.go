// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Quire tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/quire/internal/apperr"
	"github.com/starford/quire/internal/changes"
	"github.com/starford/quire/internal/diff"
	"github.com/starford/quire/internal/manifest"
	"github.com/starford/quire/internal/workservice"
)

// ManifestFormatURI is the resource URI of the manifest format contract.
const ManifestFormatURI = "quire://manifest-format"

// Server wraps the MCP server with Quire tools.
type Server struct {
	mcp   *server.MCPServer
	works *workservice.Service
}

// New creates a new MCP server with all Quire tools registered.
func New(works *workservice.Service, version string) *Server {
	s := &Server{works: works}

	s.mcp = server.NewMCPServer(
		"Quire",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_works",
		mcp.WithDescription("List all works, most recently updated first."),
	), s.listWorks)

	s.mcp.AddTool(mcp.NewTool("read_file",
		mcp.WithDescription("Read the full text of one document file of a work."),
		mcp.WithString("work_id", mcp.Required(), mcp.Description("ID of the work")),
		mcp.WithString("file_name", mcp.Required(),
			mcp.Description("Document file name: content.md, outline.md, plot.md, characters.md or info.md")),
	), s.readFile)

	s.mcp.AddTool(mcp.NewTool("update_file",
		mcp.WithDescription("Replace the text of a document file. Pass the checksum returned by "+
			"read_file as if_match to reject the write when the file changed in the meantime."),
		mcp.WithString("work_id", mcp.Required(), mcp.Description("ID of the work")),
		mcp.WithString("file_name", mcp.Required(), mcp.Description("Document file name")),
		mcp.WithString("text", mcp.Required(), mcp.Description("New full text of the file")),
		mcp.WithString("if_match", mcp.Description("Optional checksum of the text being replaced")),
	), s.updateFile)

	s.mcp.AddTool(mcp.NewTool("review_changes",
		mcp.WithDescription("Show the line diff of every file changed since its last snapshot."),
		mcp.WithString("work_id", mcp.Required(), mcp.Description("ID of the work")),
	), s.reviewChanges)

	s.mcp.AddTool(mcp.NewTool("create_snapshot",
		mcp.WithDescription("Save the current text of the selected files as a snapshot. "+
			"Read the "+ManifestFormatURI+" resource for what a snapshot captures."),
		mcp.WithString("work_id", mcp.Required(), mcp.Description("ID of the work")),
		mcp.WithString("title", mcp.Required(), mcp.Description("Snapshot title")),
		mcp.WithString("memo", mcp.Description("Optional memo")),
		mcp.WithArray("file_names", mcp.Required(),
			mcp.Description("File names to capture; every name must resolve"),
			mcp.Items(map[string]any{"type": "string"})),
	), s.createSnapshot)

	s.mcp.AddTool(mcp.NewTool("list_snapshots",
		mcp.WithDescription("List the snapshots of a work, newest first."),
		mcp.WithString("work_id", mcp.Required(), mcp.Description("ID of the work")),
	), s.listSnapshots)

	s.mcp.AddTool(mcp.NewTool("search_documents",
		mcp.WithDescription("Full-text search through the documents of all works."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchDocuments)

	// Resource: manifest format contract.
	s.mcp.AddResource(
		mcp.NewResource(ManifestFormatURI, "Snapshot Manifest Format",
			mcp.WithResourceDescription("Payload format of a snapshot manifest."),
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

func toolError(err error) *mcp.CallToolResult {
	var unresolved *manifest.UnresolvedError
	switch {
	case errors.As(err, &unresolved):
		return mcp.NewToolResultError("unresolved file names: " + strings.Join(unresolved.FileNames, ", "))
	case errors.Is(err, apperr.ErrNotFound):
		return mcp.NewToolResultError("not found")
	case errors.Is(err, apperr.ErrConflict):
		return mcp.NewToolResultError("checksum mismatch: the file changed, read it again")
	default:
		return mcp.NewToolResultError(err.Error())
	}
}

func jsonResult(v any) *mcp.CallToolResult {
	out, _ := json.MarshalIndent(v, "", "  ")
	return mcp.NewToolResultText(string(out))
}

func (s *Server) listWorks(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	works, err := s.works.ListWorks(ctx)
	if err != nil {
		return toolError(err), nil
	}
	if len(works) == 0 {
		return mcp.NewToolResultText("no works"), nil
	}
	return jsonResult(works), nil
}

func (s *Server) readFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	workID, err := req.RequireString("work_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	fileName, err := req.RequireString("file_name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	file, err := s.works.ReadFile(ctx, workID, strings.ToLower(fileName))
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(file), nil
}

func (s *Server) updateFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	workID, err := req.RequireString("work_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	fileName, err := req.RequireString("file_name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ifMatch := req.GetString("if_match", "")

	file, err := s.works.WriteFile(ctx, workID, strings.ToLower(fileName), text, ifMatch)
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("updated: %s/%s checksum=%s", workID, file.FileName, file.Checksum)), nil
}

func (s *Server) reviewChanges(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	workID, err := req.RequireString("work_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sel, err := s.works.Review(ctx, workID, nil)
	if err != nil {
		return toolError(err), nil
	}
	files := sel.Files()
	if len(files) == 0 {
		return mcp.NewToolResultText("no changes since the last snapshot"), nil
	}
	var b strings.Builder
	for i, f := range files {
		if i > 0 {
			b.WriteString("\n")
		}
		writeSummary(&b, f)
	}
	return mcp.NewToolResultText(b.String()), nil
}

// writeSummary renders a file summary as a header line followed by the diff,
// one line per entry prefixed with "+", "-" or a space.
func writeSummary(b *strings.Builder, f changes.FileSummary) {
	fmt.Fprintf(b, "## %s (+%d -%d)\n", f.FileName, f.Added, f.Removed)
	for _, l := range f.Lines {
		switch l.Kind {
		case diff.Added:
			b.WriteString("+ ")
		case diff.Removed:
			b.WriteString("- ")
		default:
			b.WriteString("  ")
		}
		b.WriteString(l.Text)
		b.WriteString("\n")
	}
}

func (s *Server) createSnapshot(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	workID, err := req.RequireString("work_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	detail, err := s.works.CreateSnapshot(ctx, workID, workservice.SnapshotRequest{
		Title:     title,
		Memo:      req.GetString("memo", ""),
		FileNames: req.GetStringSlice("file_names", nil),
	})
	if err != nil {
		return toolError(err), nil
	}
	names := make([]string, len(detail.Manifest.Files))
	for i, f := range detail.Manifest.Files {
		names[i] = f.FileName
	}
	return mcp.NewToolResultText(fmt.Sprintf("snapshot %s saved: %s", detail.Snapshot.ID, strings.Join(names, ", "))), nil
}

func (s *Server) listSnapshots(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	workID, err := req.RequireString("work_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	snaps, err := s.works.ListSnapshots(ctx, workID)
	if err != nil {
		return toolError(err), nil
	}
	if len(snaps) == 0 {
		return mcp.NewToolResultText("no snapshots"), nil
	}
	var b strings.Builder
	for _, snap := range snaps {
		fmt.Fprintf(&b, "%s\t%s\t%s\t%s\n", snap.ID, snap.CreatedAt.Format("2006-01-02 15:04:05"), snap.DeviceName, snap.Title)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) searchDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	hits, err := s.works.Search(ctx, query, 20)
	if err != nil {
		return toolError(err), nil
	}
	if len(hits) == 0 {
		return mcp.NewToolResultText("no matches"), nil
	}
	return jsonResult(hits), nil
}

func (s *Server) readManifestFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      ManifestFormatURI,
			MIMEType: "text/markdown",
			Text:     ManifestFormatContract,
		},
	}, nil
}
