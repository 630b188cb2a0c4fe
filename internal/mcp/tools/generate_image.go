package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/roivaz/memory-mcp/internal/imagegen"
	"github.com/roivaz/memory-mcp/internal/logging"
	"github.com/roivaz/memory-mcp/internal/mcp/tools/types"
)

type GenerateImageHandler struct {
	Generator imagegen.Generator
	Log       logging.Logger
}

func (h *GenerateImageHandler) ToolAdapter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := types.GenerateImageArgs{Steps: types.DefaultImageSteps}
	if err := bindArguments(req, &args); err != nil {
		return Failure("%s", err.Error()).CallToolResult(), nil
	}
	return h.Handle(ctx, args).CallToolResult(), nil
}

func (h *GenerateImageHandler) Handle(ctx context.Context, args types.GenerateImageArgs) Result {
	img, err := h.Generator.Generate(ctx, imagegen.Request{Prompt: *args.Prompt, Steps: args.Steps})
	if err != nil {
		h.Log.Error(err, "image generation failed", "steps", args.Steps)
		return Failure("Error generating image: %s", err.Error())
	}
	return Success(mcp.NewImageContent(img.Data, img.MIMEType))
}
