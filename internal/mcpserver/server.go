// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes headsync tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/headsync/internal/apperr"
	"github.com/starford/headsync/internal/noteservice"
	"github.com/starford/headsync/internal/slug"
)

const contractURI = "headsync://heading-contract"

// Server wraps the MCP server with headsync tools.
type Server struct {
	mcp *server.MCPServer
	svc *noteservice.Service
}

// New creates a new MCP server with all headsync tools registered.
func New(svc *noteservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"headsync",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("slugify_text",
		mcp.WithDescription("Return the filename slug headsync would derive from a heading."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Heading text")),
	), s.slugifyText)

	s.mcp.AddTool(mcp.NewTool("preview_note",
		mcp.WithDescription("Show a note's first heading, its slug and whether a sync would rename it. Never renames."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the note (e.g. folder/note.md)")),
	), s.previewNote)

	s.mcp.AddTool(mcp.NewTool("sync_note",
		mcp.WithDescription("Rename a note after its first heading, ignoring inclusion settings. "+
			"Read the heading contract first via get_heading_contract or the "+contractURI+" resource."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the note")),
	), s.syncNote)

	s.mcp.AddTool(mcp.NewTool("include_file",
		mcp.WithDescription("Opt a note in to automatic renaming on save."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the note (must end with .md)")),
	), s.includeFile)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List all notes with their inclusion status."),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("list_renames",
		mcp.WithDescription("List the most recent heading-driven renames, newest first."),
		mcp.WithNumber("limit", mcp.Description("Maximum entries (default 50)")),
	), s.listRenames)

	s.mcp.AddTool(mcp.NewTool("get_heading_contract",
		mcp.WithDescription("Returns the rules headsync uses to turn a note's first heading into its filename."),
	), s.getHeadingContract)

	s.mcp.AddResource(
		mcp.NewResource(contractURI, "Heading Contract",
			mcp.WithResourceDescription("How a note's first heading becomes its filename."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readContractResource,
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

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) slugifyText(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(slug.Make(text)), nil
}

func (s *Server) previewNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	p, err := s.svc.Preview(ctx, path)
	if errors.Is(err, apperr.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(p)
}

func (s *Server) syncNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.SyncNote(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if res.Error != "" {
		return mcp.NewToolResultError(fmt.Sprintf("%s: %s", res.Outcome, res.Error)), nil
	}
	return jsonResult(res)
}

func (s *Server) includeFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.IncludeFile(ctx, path); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("included: %s", path)), nil
}

func (s *Server) listNotes(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, err := s.svc.ListNotes(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(items)
}

func (s *Server) listRenames(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, err := s.svc.Renames(ctx, req.GetInt("limit", 0))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(out)
}

func (s *Server) getHeadingContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(HeadingContract), nil
}

func (s *Server) readContractResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      contractURI,
			MIMEType: "text/markdown",
			Text:     HeadingContract,
		},
	}, nil
}
