package tools

import (
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// Result is what a tool hands back to the caller: either content or a
// user-facing failure message. Failures are ordinary tool output, never
// protocol errors.
type Result struct {
	Content []mcp.Content
	Failure string
}

func Success(content ...mcp.Content) Result {
	return Result{Content: content}
}

func Text(text string) Result {
	return Success(mcp.NewTextContent(text))
}

func Failure(format string, args ...any) Result {
	return Result{Failure: fmt.Sprintf(format, args...)}
}

func (r Result) Failed() bool {
	return r.Failure != ""
}

// CallToolResult renders the result in MCP form. A failure becomes a single
// text item flagged with isError.
func (r Result) CallToolResult() *mcp.CallToolResult {
	if r.Failed() {
		return mcp.NewToolResultError(r.Failure)
	}
	return &mcp.CallToolResult{Content: r.Content}
}
