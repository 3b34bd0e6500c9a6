package testserver

import (
	"context"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rpggio/streamos/internal/app"
	"github.com/rpggio/streamos/internal/assistant"
	"github.com/rpggio/streamos/internal/calendar"
	"github.com/rpggio/streamos/internal/mcp"
	"github.com/rpggio/streamos/internal/sqlite"
	"github.com/rpggio/streamos/internal/transport"
	"github.com/stretchr/testify/require"
)

type TestServer struct {
	Server *httptest.Server
	App    *app.App
	DB     *sqlite.DB
	Token  string
}

type Options struct {
	Day   string
	Model assistant.Model
}

// New starts the dashboard RPC and MCP endpoints over a fresh in-memory
// store, guarded by a single static token.
func New(t *testing.T, token string, opts Options) *TestServer {
	t.Helper()

	if opts.Day == "" {
		opts.Day = "2024-05-10"
	}

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sqlite.Open(dsn)
	require.NoError(t, err)

	a := app.New(db, app.Config{Clock: calendar.Fixed(opts.Day), Model: opts.Model})
	_, err = a.Boot(context.Background())
	require.NoError(t, err)

	services := mcp.NewServices(a)
	mcpServer := mcp.NewServer(mcp.Config{Services: services})
	auth := transport.AuthMiddleware(transport.NewStaticTokens([]string{token}))
	server := httptest.NewServer(transport.NewServer(mcp.NewHandler(services), auth, mcp.NewHTTPHandler(mcpServer)))

	t.Cleanup(func() {
		server.Close()
		_ = db.Close()
	})

	return &TestServer{
		Server: server,
		App:    a,
		DB:     db,
		Token:  token,
	}
}
