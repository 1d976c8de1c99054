package server_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lamina-ai/recall-go/internal/server"
)

// testLogger creates a logger that writes to stderr for test visibility.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestServerCreation(t *testing.T) {
	logger := testLogger()

	srv := server.New("test-version", logger)
	require.NotNil(t, srv, "server should not be nil")

	mcpSrv := srv.MCPServer()
	require.NotNil(t, mcpSrv, "underlying MCP server should not be nil")
}

func TestServerSetup(t *testing.T) {
	logger := testLogger()

	srv := server.New("test-version", logger)
	require.NotNil(t, srv)

	// Setup should not panic
	srv.Setup()
}

func TestServerWithInMemoryTransport(t *testing.T) {
	logger := testLogger()

	srv := server.New("0.1.0-test", logger)
	srv.Setup()

	serverTransport, clientTransport := mcp.NewInMemoryTransports()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.MCPServer().Run(ctx, serverTransport)
	}()

	time.Sleep(50 * time.Millisecond)

	client := mcp.NewClient(&mcp.Implementation{
		Name:    "test-client",
		Version: "1.0.0",
	}, nil)

	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err, "client should connect successfully")
	defer session.Close()

	initResult := session.InitializeResult()
	require.NotNil(t, initResult, "initialize result should not be nil")
	assert.Equal(t, server.Name, initResult.ServerInfo.Name)
	assert.Equal(t, "0.1.0-test", initResult.ServerInfo.Version)

	// No tools registered yet at this layer.
	toolsResult, err := session.ListTools(ctx, nil)
	require.NoError(t, err, "ListTools should succeed")
	assert.Empty(t, toolsResult.Tools, "should have no tools registered")

	err = session.Close()
	assert.NoError(t, err, "session close should not error")

	cancel()

	select {
	case err := <-serverErr:
		// EOF is expected when client disconnects
		if err != nil {
			t.Logf("server stopped with: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Error("server did not stop within timeout")
	}
}

func TestServerRespondsToMultipleRequests(t *testing.T) {
	logger := testLogger()

	srv := server.New("0.1.0-test", logger)
	srv.Setup()

	serverTransport, clientTransport := mcp.NewInMemoryTransports()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	go func() {
		_ = srv.MCPServer().Run(ctx, serverTransport)
	}()

	time.Sleep(50 * time.Millisecond)

	client := mcp.NewClient(&mcp.Implementation{
		Name:    "test-client",
		Version: "1.0.0",
	}, nil)

	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	defer session.Close()

	for i := 0; i < 3; i++ {
		_, err := session.ListTools(ctx, nil)
		require.NoError(t, err, "request %d should succeed", i)
	}

	cancel()
}
