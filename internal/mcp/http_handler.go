package mcp

import (
	"net/http"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// sessionTimeout closes streamable sessions idle for this long.
const sessionTimeout = 30 * time.Minute

// NewHTTPHandler serves the tool server over the streamable HTTP transport.
func NewHTTPHandler(server *sdkmcp.Server) http.Handler {
	return sdkmcp.NewStreamableHTTPHandler(func(*http.Request) *sdkmcp.Server {
		return server
	}, &sdkmcp.StreamableHTTPOptions{
		SessionTimeout: sessionTimeout,
	})
}
