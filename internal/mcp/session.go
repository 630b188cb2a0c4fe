package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/roivaz/memory-mcp/internal/auth"
	"github.com/roivaz/memory-mcp/internal/imagegen"
	"github.com/roivaz/memory-mcp/internal/logging"
	"github.com/roivaz/memory-mcp/internal/mcp/tools"
	"github.com/roivaz/memory-mcp/internal/mcp/tools/types"
)

const (
	ServerName    = "memory-mcp"
	ServerVersion = "1.0.0"

	ToolGetMemory     = "get-memory"
	ToolStoreMemory   = "store-memory"
	ToolGenerateImage = "generateImage"
)

type ToolAdapter interface {
	ToolAdapter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

// Dependencies are the shared, stateless collaborators every session's tools
// are built from.
type Dependencies struct {
	Memory tools.MemoryService
	Images imagegen.Generator
	Logger logging.Logger
}

type namedAdapter struct {
	name    string
	adapter ToolAdapter
}

func toolDefinitions() map[string]mcp.Tool {
	return map[string]mcp.Tool{
		ToolGetMemory: mcp.NewTool(ToolGetMemory,
			mcp.WithDescription("Get the user's memory given a query by the user"),
			mcp.WithString("query",
				mcp.Required(),
				mcp.Description("The query to retrieve memories for"),
			),
		),
		ToolStoreMemory: mcp.NewTool(ToolStoreMemory,
			mcp.WithDescription("Store the user's memory given a query & context"),
			mcp.WithString("query",
				mcp.Required(),
				mcp.Description("The query to store the memory for"),
			),
			mcp.WithString("context",
				mcp.Required(),
				mcp.Description("The context of the memory. usually the assistant's response to the user's query"),
			),
		),
		ToolGenerateImage: mcp.NewTool(ToolGenerateImage,
			mcp.WithDescription("Generate an image using the `flux-1-schnell` model. Works best with 8 steps."),
			mcp.WithString("prompt",
				mcp.Required(),
				mcp.Description("A text description of the image you want to generate."),
			),
			mcp.WithNumber("steps",
				mcp.Min(types.MinImageSteps),
				mcp.Max(types.MaxImageSteps),
				mcp.DefaultNumber(types.DefaultImageSteps),
				mcp.Description("The number of diffusion steps; higher values can improve quality but take longer. Must be between 4 and 8, inclusive."),
			),
		),
	}
}

// Toolset returns the tools a session with the given identity may use. The
// permission check happens here, once, so a tool the session lacks the
// permission for is never registered at all.
func Toolset(props auth.Props, deps Dependencies) []server.ServerTool {
	log := deps.Logger.WithValues("user", props.UserID())
	images := deps.Images
	if images == nil {
		images = imagegen.Unconfigured{}
	}

	adapters := []namedAdapter{
		{ToolGetMemory, &tools.GetMemoryHandler{Service: deps.Memory, Props: props, Log: log.WithName(ToolGetMemory)}},
		{ToolStoreMemory, &tools.StoreMemoryHandler{Service: deps.Memory, Props: props, Log: log.WithName(ToolStoreMemory)}},
	}
	if props.Permissions.Has(auth.PermissionImageGeneration) {
		adapters = append(adapters, namedAdapter{ToolGenerateImage, &tools.GenerateImageHandler{Generator: images, Log: log.WithName(ToolGenerateImage)}})
	}

	definitions := toolDefinitions()
	out := make([]server.ServerTool, 0, len(adapters))
	for _, a := range adapters {
		out = append(out, server.ServerTool{Tool: definitions[a.name], Handler: a.adapter.ToolAdapter})
	}
	return out
}

// NewSessionServer builds the MCP server for one authenticated session.
func NewSessionServer(props auth.Props, deps Dependencies) *server.MCPServer {
	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	mcpServer.AddTools(Toolset(props, deps)...)
	return mcpServer
}
