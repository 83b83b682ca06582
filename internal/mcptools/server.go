// Package mcptools exposes codescope analysis as Model Context Protocol
// tools, served over stdio or streamable HTTP.
package mcptools

import (
	"context"
	"errors"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Version is reported to MCP clients. The CLI overrides it with its build
// version.
var Version = "dev"

// NewCodeScopeMCPServer creates an MCP server with every codescope tool
// registered.
func NewCodeScopeMCPServer(svc *CodeScopeService) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "codescope",
		Version: Version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "analyze_file",
		Description: "Analyze one source file. Returns its symbols, line counts, branching complexity, raw imports and quality findings.",
	}, svc.AnalyzeFile)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "analyze_directory",
		Description: "Analyze every supported source file under a directory, resolve imports into a dependency graph and return the summary, cycles and clusters. The result becomes the snapshot used by the other tools.",
	}, svc.AnalyzeDirectory)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_coupling",
		Description: "Return fan-in, fan-out and the importing and imported modules of one module in the last analyzed directory.",
	}, svc.GetCoupling)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "query_symbols",
		Description: "Search symbols of the last analyzed directory by name substring. Optionally filter by symbol kind and limit results.",
	}, svc.QuerySymbols)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "assess_impact",
		Description: "Compute the modules directly and transitively affected by changing a set of modules, with a risk score.",
	}, svc.AssessImpact)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_clusters",
		Description: "Return the groups of modules connected by imports in the last analyzed directory, with cohesion scores.",
	}, svc.GetClusters)

	return server
}

// RunStdio serves server on stdin/stdout until the client disconnects or ctx
// is canceled.
func RunStdio(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP serves server over streamable HTTP on addr until ctx is canceled.
func RunHTTP(ctx context.Context, server *mcp.Server, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	go func() {
		<-ctx.Done()
		_ = httpServer.Shutdown(context.Background())
	}()

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
