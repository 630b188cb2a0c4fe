package tools

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/roivaz/memory-mcp/internal/auth"
	"github.com/roivaz/memory-mcp/internal/backend"
	"github.com/roivaz/memory-mcp/internal/logging"
	"github.com/roivaz/memory-mcp/internal/mcp/tools/types"
)

// MemoryService is the subset of the backend client the memory tools use.
type MemoryService interface {
	GetMemories(ctx context.Context, userID, query string) (*backend.MemoryQueryResult, error)
	StoreMemory(ctx context.Context, userID string, req backend.StoreMemoryRequest) (*backend.StoreMemoryResult, error)
}

const userIDUnavailable = "User ID not available"

type GetMemoryHandler struct {
	Service MemoryService
	Props   auth.Props
	Log     logging.Logger
}

func (h *GetMemoryHandler) ToolAdapter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args types.GetMemoryArgs
	if err := bindArguments(req, &args); err != nil {
		return Failure("%s", err.Error()).CallToolResult(), nil
	}
	return h.Handle(ctx, args).CallToolResult(), nil
}

func (h *GetMemoryHandler) Handle(ctx context.Context, args types.GetMemoryArgs) Result {
	userID := h.Props.UserID()
	if userID == "" {
		return Failure("Error: %s", userIDUnavailable)
	}

	res, err := h.Service.GetMemories(ctx, userID, *args.Query)
	if err != nil {
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) {
			switch apiErr.StatusCode {
			case http.StatusNotFound:
				return Failure("Error: User not found")
			case http.StatusBadRequest:
				return Failure("Error: %s", apiErr.Message())
			case http.StatusServiceUnavailable:
				return Failure("Service unavailable: %s", apiErr.Message())
			}
		}
		h.Log.Error(err, "retrieving memory failed", "user", userID)
		return Failure("Error retrieving memory: %s", err.Error())
	}

	return Text(formatMemories(res))
}

// formatMemories renders a lookup result. Without a topic the backend message
// is returned as is.
func formatMemories(res *backend.MemoryQueryResult) string {
	if res.Topic == "" {
		return res.Message
	}
	var b strings.Builder
	b.WriteString(res.Message)
	if len(res.Memories) == 0 {
		b.WriteString("\n\nNo memories found for this query.")
		return b.String()
	}
	b.WriteString("\n\nFound memories:")
	for i, m := range res.Memories {
		b.WriteString("\n")
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteString(". ")
		b.WriteString(m)
	}
	return b.String()
}

type StoreMemoryHandler struct {
	Service MemoryService
	Props   auth.Props
	Log     logging.Logger
}

func (h *StoreMemoryHandler) ToolAdapter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args types.StoreMemoryArgs
	if err := bindArguments(req, &args); err != nil {
		return Failure("%s", err.Error()).CallToolResult(), nil
	}
	return h.Handle(ctx, args).CallToolResult(), nil
}

func (h *StoreMemoryHandler) Handle(ctx context.Context, args types.StoreMemoryArgs) Result {
	userID := h.Props.UserID()
	if userID == "" {
		return Failure("Error storing memory: %s", userIDUnavailable)
	}

	res, err := h.Service.StoreMemory(ctx, userID, backend.StoreMemoryRequest{
		Query:             *args.Query,
		AssistantResponse: *args.Context,
	})
	if err != nil {
		h.Log.Error(err, "storing memory failed", "user", userID)
		return Failure("Error storing memory: %s", err.Error())
	}
	if res.Message != "" {
		return Text(res.Message)
	}
	return Text("Memory saved successfully for query: " + *args.Query)
}
