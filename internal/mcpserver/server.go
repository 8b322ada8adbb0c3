// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes QuoteVault tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/avigne/quotevault/internal/index"
	"github.com/avigne/quotevault/internal/models"
	"github.com/avigne/quotevault/internal/quotes"
	"github.com/avigne/quotevault/internal/storage"
)

// Server wraps the MCP server with QuoteVault tools.
type Server struct {
	mcp   *server.MCPServer
	store storage.Provider
	db    *index.DB
	chunk int
}

// New creates a new MCP server with all QuoteVault tools registered.
func New(store storage.Provider, db *index.DB, chunkSize int) *Server {
	s := &Server{store: store, db: db, chunk: chunkSize}

	s.mcp = server.NewMCPServer(
		"QuoteVault",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_quotes",
		mcp.WithDescription("Full-text search through quote text, authors and sources."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchQuotes)

	s.mcp.AddTool(mcp.NewTool("random_quote",
		mcp.WithDescription("Return one quote picked at random from the whole library."),
	), s.randomQuote)

	s.mcp.AddTool(mcp.NewTool("list_folders",
		mcp.WithDescription("List all quote folders with the number of quotes each one holds."),
	), s.listFolders)

	s.mcp.AddTool(mcp.NewTool("add_quote",
		mcp.WithDescription("Append a quote to an existing folder. "+
			"Records MUST follow the canonical record format (ordered string "+
			"fields: text, author, source). Read the contract first via the "+
			"get_record_contract tool or the quotevault://record-format resource."),
		mcp.WithString("folder", mcp.Required(), mcp.Description("Relative path of an existing quote folder")),
		mcp.WithString("quote", mcp.Required(), mcp.Description("The quote text")),
		mcp.WithString("author", mcp.Description("Optional author")),
		mcp.WithString("source", mcp.Description("Optional source work (book, film, song)")),
	), s.addQuote)

	s.mcp.AddTool(mcp.NewTool("check_folder",
		mcp.WithDescription("Validate a quote folder and report every consistency finding."),
		mcp.WithString("folder", mcp.Required(), mcp.Description("Relative path of the quote folder to check")),
	), s.checkFolder)

	s.mcp.AddTool(mcp.NewTool("get_record_contract",
		mcp.WithDescription("Returns the canonical QuoteVault record format contract. "+
			"Call this before adding quotes to ensure correct structure."),
	), s.getRecordContract)

	// Resource: record format contract.
	s.mcp.AddResource(
		mcp.NewResource("quotevault://record-format", "Record Format Contract",
			mcp.WithResourceDescription("Canonical quote record format that all folders must follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readRecordFormatResource,
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

func (s *Server) searchQuotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.db.Search(query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(results) == 0 {
		return mcp.NewToolResultText("no quotes found"), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) randomQuote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := s.db.Random()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if res == nil {
		return mcp.NewToolResultText("the library is empty"), nil
	}
	out, _ := json.MarshalIndent(res, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listFolders(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dirs, err := s.store.Folders()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(dirs) == 0 {
		return mcp.NewToolResultText("no quote folders found"), nil
	}

	var lines []string
	for _, dir := range dirs {
		folder := quotes.New(s.store, dir, s.chunk)
		files, _, err := folder.Files()
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("%s: %v", dir, err)), nil
		}
		total, err := folder.Total(files)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("%s: %v", dir, err)), nil
		}
		lines = append(lines, fmt.Sprintf("%s (%d quotes)", dir, total))
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) addQuote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dir, err := req.RequireString("folder")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	text, err := req.RequireString("quote")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	author := req.GetString("author", "")
	source := req.GetString("source", "")

	info, err := s.store.Stat(dir)
	if err != nil || !info.IsDir() {
		return mcp.NewToolResultError(fmt.Sprintf("folder does not exist: %s", dir)), nil
	}

	q := models.NewQuote(text, author, source)
	if len(q) == 0 {
		return mcp.NewToolResultError("quote text must not be empty"), nil
	}
	if err := quotes.New(s.store, dir, s.chunk).Add(q); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("added to %s: %s", dir, q.Text())), nil
}

func (s *Server) checkFolder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dir, err := req.RequireString("folder")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	findings, err := quotes.New(s.store, dir, s.chunk).Check()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(findings) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("%s: no findings", dir)), nil
	}
	var lines []string
	for _, f := range findings {
		lines = append(lines, f.String())
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) getRecordContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(RecordFormatContract), nil
}

func (s *Server) readRecordFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "quotevault://record-format",
			MIMEType: "text/markdown",
			Text:     RecordFormatContract,
		},
	}, nil
}
