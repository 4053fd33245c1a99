// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the card vault to LLM clients via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/cardex/internal/apperr"
	"github.com/starford/cardex/internal/cardservice"
	"github.com/starford/cardex/internal/vcard"
)

const contractURI = "cardex://card-format"

// Server wraps the MCP server with the card tools.
type Server struct {
	mcp *server.MCPServer
	svc *cardservice.Service
}

// New creates a new MCP server with all card tools registered.
func New(svc *cardservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Cardex",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_cards",
		mcp.WithDescription("List the .vcf files in the vault, optionally under one folder."),
		mcp.WithString("folder", mcp.Description("Optional folder to list (empty for all)")),
	), s.listCards)

	s.mcp.AddTool(mcp.NewTool("read_card",
		mcp.WithDescription("Read the raw vCard text of a card file."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the card (e.g. people/jane.vcf)")),
	), s.readCard)

	s.mcp.AddTool(mcp.NewTool("card_summary",
		mcp.WithDescription("Return {file, name, opLength} for a valid card file."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the card")),
	), s.cardSummary)

	s.mcp.AddTool(mcp.NewTool("card_properties",
		mcp.WithDescription("List the properties of a valid card file, FN first, numbered from 1."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the card")),
	), s.cardProperties)

	s.mcp.AddTool(mcp.NewTool("validate_card",
		mcp.WithDescription("Parse and validate vCard text without storing it. "+
			"Returns the canonical form on success or the error code on failure."),
		mcp.WithString("content", mcp.Required(), mcp.Description("vCard 4.0 text with CRLF line endings")),
	), s.validateCard)

	s.mcp.AddTool(mcp.NewTool("create_card",
		mcp.WithDescription("Create a new card file at the specified path. "+
			"Content MUST be a single vCard 4.0 object as described by the get_card_contract "+
			"tool or the "+contractURI+" resource."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path for the new card (must end with .vcf)")),
		mcp.WithString("content", mcp.Required(), mcp.Description("vCard 4.0 text following the card format contract")),
	), s.createCard)

	s.mcp.AddTool(mcp.NewTool("search_cards",
		mcp.WithDescription("Full-text search through card names and property values."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchCards)

	s.mcp.AddTool(mcp.NewTool("import_card",
		mcp.WithDescription("Fetch a .vcf from an http(s) URL or a base64 data: URI, validate it "+
			"and store it at the vault root. An existing file with the same name is replaced."),
		mcp.WithString("url", mcp.Required(), mcp.Description("http(s) URL or data:text/vcard;base64,... URI")),
		mcp.WithString("filename", mcp.Description("Optional target file name (must end with .vcf)")),
	), s.importCard)

	s.mcp.AddTool(mcp.NewTool("get_card_contract",
		mcp.WithDescription("Returns the vCard format contract. "+
			"Call this before creating cards to ensure correct structure."),
	), s.getCardContract)

	s.mcp.AddResource(
		mcp.NewResource(contractURI, "Card Format Contract",
			mcp.WithResourceDescription("The vCard 4.0 subset every card file must follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readCardFormatResource,
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

// toolError turns a service error into a tool error result.
func toolError(err error, path string) *mcp.CallToolResult {
	var ic *cardservice.InvalidCardError
	switch {
	case errors.As(err, &ic):
		return mcp.NewToolResultError(fmt.Sprintf("%s: %s", ic.Code(), ic.Err))
	case errors.Is(err, apperr.ErrNotFound):
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path))
	case errors.Is(err, apperr.ErrAlreadyExists):
		return mcp.NewToolResultError(fmt.Sprintf("card already exists: %s", path))
	case errors.Is(err, apperr.ErrUnsupportedFile):
		return mcp.NewToolResultError(fmt.Sprintf("not a .vcf path: %s", path))
	case errors.Is(err, apperr.ErrInvalidPath):
		return mcp.NewToolResultError(fmt.Sprintf("path leaves the vault: %s", path))
	}
	return mcp.NewToolResultError(err.Error())
}

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}

func (s *Server) listCards(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	folder := ""
	if f, err := req.RequireString("folder"); err == nil {
		folder = strings.Trim(f, "/")
	}

	files, err := s.svc.ListFiles(ctx)
	if err != nil {
		return toolError(err, folder), nil
	}
	var paths []string
	for _, p := range files {
		if folder == "" || strings.HasPrefix(p, folder+"/") {
			paths = append(paths, p)
		}
	}
	if len(paths) == 0 {
		return mcp.NewToolResultText("no cards found"), nil
	}
	return mcp.NewToolResultText(strings.Join(paths, "\n")), nil
}

func (s *Server) readCard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	card, err := s.svc.GetCard(ctx, path)
	if err != nil {
		return toolError(err, path), nil
	}
	return mcp.NewToolResultText(card.Content), nil
}

func (s *Server) cardSummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sum, err := s.svc.Summary(ctx, path)
	if err != nil {
		return toolError(err, path), nil
	}
	return jsonResult(sum), nil
}

func (s *Server) cardProperties(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rows, err := s.svc.Properties(ctx, path)
	if err != nil {
		return toolError(err, path), nil
	}
	return jsonResult(rows), nil
}

type validation struct {
	Valid     bool   `json:"valid"`
	Name      string `json:"name,omitempty"`
	Canonical string `json:"canonical,omitempty"`
	Code      string `json:"code,omitempty"`
	Error     string `json:"error,omitempty"`
}

func (s *Server) validateCard(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	c, err := s.svc.Load([]byte(content))
	if err != nil {
		v := validation{Error: err.Error()}
		var ic *cardservice.InvalidCardError
		if errors.As(err, &ic) {
			v.Code = ic.Code()
		}
		return jsonResult(v), nil
	}
	out, err := vcard.Marshal(c)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(validation{Valid: true, Name: c.Name(), Canonical: string(out)}), nil
}

func (s *Server) createCard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if _, err := s.svc.CreateCard(ctx, path, []byte(content)); err != nil {
		return toolError(err, path), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", path)), nil
}

func (s *Server) searchCards(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, 20)
	if err != nil {
		return toolError(err, query), nil
	}
	return jsonResult(results), nil
}

func (s *Server) getCardContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(CardFormatContract), nil
}

func (s *Server) readCardFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      contractURI,
			MIMEType: "text/markdown",
			Text:     CardFormatContract,
		},
	}, nil
}
