// Package mcp exposes the similarity tools over the Model Context Protocol.
package mcp

import (
	"context"
	"fmt"

	json "github.com/goccy/go-json"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/gamesim/internal/logger"
	"github.com/kailas-cloud/gamesim/internal/usecase/similarity"
)

const (
	findSimilarDescription = "Find games, publishers or developers similar to a reference entity. " +
		"Pass entity_type and exactly one of reference_id or reference_name (typos are tolerated). " +
		"Game results are re-ranked by shared franchise, developer, publisher, genres and tags, " +
		"and carry match_reasons. Optional filters narrow results; popularity_comparison and " +
		"review_comparison compare against the reference game."
	conceptDescription = "Find games matching a free-text description such as " +
		"\"cozy farming sim with relationships\". Optional filters narrow results; " +
		"relative comparisons are not available here."
)

// Tools runs the similarity tools.
type Tools interface {
	FindSimilar(ctx context.Context, args similarity.FindSimilarArgs) similarity.Response
	SearchByConcept(ctx context.Context, args similarity.ConceptArgs) similarity.Response
}

// NewServer creates an MCP server with find_similar and search_by_concept registered.
func NewServer(tools Tools, name, version string, l *zap.Logger) *mcpsdk.Server {
	if l == nil {
		l = zap.NewNop()
	}
	server := mcpsdk.NewServer(&mcpsdk.Implementation{Name: name, Version: version}, &mcpsdk.ServerOptions{
		InitializedHandler: func(context.Context, *mcpsdk.ServerSession, *mcpsdk.InitializedParams) {
			l.Info("mcp client initialized")
		},
	})

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        similarity.ToolFindSimilar,
		Description: findSimilarDescription,
	}, FindSimilarHandler(tools, l))

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        similarity.ToolSearchByConcept,
		Description: conceptDescription,
	}, SearchByConceptHandler(tools, l))

	return server
}

// Serve runs server over stdio until ctx is done or the client disconnects.
func Serve(ctx context.Context, server *mcpsdk.Server) error {
	if err := server.Run(ctx, mcpsdk.NewStdioTransport()); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}

// FindSimilarHandler adapts Tools.FindSimilar to an MCP tool handler.
func FindSimilarHandler(tools Tools, l *zap.Logger) mcpsdk.ToolHandlerFor[similarity.FindSimilarArgs, any] {
	return func(
		ctx context.Context, _ *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[similarity.FindSimilarArgs],
	) (*mcpsdk.CallToolResultFor[any], error) {
		ctx = logger.ContextWithLogger(ctx, l)
		return toolResult(tools.FindSimilar(ctx, params.Arguments))
	}
}

// SearchByConceptHandler adapts Tools.SearchByConcept to an MCP tool handler.
func SearchByConceptHandler(tools Tools, l *zap.Logger) mcpsdk.ToolHandlerFor[similarity.ConceptArgs, any] {
	return func(
		ctx context.Context, _ *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[similarity.ConceptArgs],
	) (*mcpsdk.CallToolResultFor[any], error) {
		ctx = logger.ContextWithLogger(ctx, l)
		return toolResult(tools.SearchByConcept(ctx, params.Arguments))
	}
}

// toolResult returns the response both as structured content and as a JSON
// text block for clients without structured output support.
func toolResult(resp similarity.Response) (*mcpsdk.CallToolResultFor[any], error) {
	data, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("encode tool response: %w", err)
	}
	return &mcpsdk.CallToolResultFor[any]{
		Content:           []mcpsdk.Content{&mcpsdk.TextContent{Text: string(data)}},
		StructuredContent: resp,
		IsError:           !resp.Success,
	}, nil
}
