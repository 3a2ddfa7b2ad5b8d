package lsp

import (
	"context"
	"errors"
	"net"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	lsp "github.com/sourcegraph/go-lsp"
	"github.com/sourcegraph/jsonrpc2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"src.snudown.dev/pkg/prog"
)

// Connects a client to a fresh server over an in-memory pipe.
func setup(t *testing.T) (client, server *jsonrpc2.Conn) {
	t.Helper()
	ctx := context.Background()
	serverSide, clientSide := net.Pipe()
	server = jsonrpc2.NewConn(ctx,
		jsonrpc2.NewBufferedStream(serverSide, jsonrpc2.VSCodeObjectCodec{}),
		handler(newServer()))
	client = jsonrpc2.NewConn(ctx,
		jsonrpc2.NewBufferedStream(clientSide, jsonrpc2.VSCodeObjectCodec{}),
		jsonrpc2.HandlerWithError(func(context.Context, *jsonrpc2.Conn, *jsonrpc2.Request) (any, error) {
			return nil, nil
		}))
	t.Cleanup(func() {
		client.Close()
		server.Close()
	})
	return client, server
}

const testURI = lsp.DocumentURI("file:///test.md")

func TestInitialize(t *testing.T) {
	client, _ := setup(t)
	var result lsp.InitializeResult
	require.NoError(t, client.Call(context.Background(), "initialize", lsp.InitializeParams{}, &result))

	assert.True(t, result.Capabilities.HoverProvider)
	sync := result.Capabilities.TextDocumentSync
	if assert.NotNil(t, sync) && assert.NotNil(t, sync.Options) {
		assert.True(t, sync.Options.OpenClose)
		assert.Equal(t, lsp.TDSKFull, sync.Options.Change)
	}
}

func TestDocumentLifecycle(t *testing.T) {
	client, _ := setup(t)
	ctx := context.Background()
	hover := func() []lsp.MarkedString {
		t.Helper()
		var result lsp.Hover
		require.NoError(t, client.Call(ctx, "textDocument/hover", lsp.TextDocumentPositionParams{
			TextDocument: lsp.TextDocumentIdentifier{URI: testURI}}, &result))
		return result.Contents
	}
	html := func(s string) []lsp.MarkedString {
		return []lsp.MarkedString{{Language: "html", Value: s}}
	}

	require.NoError(t, client.Call(ctx, "textDocument/didOpen", lsp.DidOpenTextDocumentParams{
		TextDocument: lsp.TextDocumentItem{URI: testURI, Text: "*a*"}}, nil))
	if diff := cmp.Diff(html("<p><em>a</em></p>\n"), hover(), cmp.AllowUnexported(lsp.MarkedString{})); diff != "" {
		t.Errorf("after didOpen (-want +got):\n%s", diff)
	}

	require.NoError(t, client.Call(ctx, "textDocument/didChange", lsp.DidChangeTextDocumentParams{
		TextDocument: lsp.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: lsp.TextDocumentIdentifier{URI: testURI}},
		ContentChanges: []lsp.TextDocumentContentChangeEvent{{Text: "~~b~~"}}}, nil))
	if diff := cmp.Diff(html("<p><del>b</del></p>\n"), hover(), cmp.AllowUnexported(lsp.MarkedString{})); diff != "" {
		t.Errorf("after didChange (-want +got):\n%s", diff)
	}

	require.NoError(t, client.Call(ctx, "textDocument/didClose", lsp.DidCloseTextDocumentParams{
		TextDocument: lsp.TextDocumentIdentifier{URI: testURI}}, nil))
	assert.Empty(t, hover(), "hover after didClose")
}

var renderTests = []struct {
	name   string
	params map[string]any
	want   string
}{
	{
		name:   "default mode",
		params: map[string]any{"text": `<table scope="foo">`},
		want:   "<p>&lt;table scope=&quot;foo&quot;&gt;</p>\n",
	},
	{
		name:   "wiki mode",
		params: map[string]any{"text": `<table scope="foo">`, "wiki": true},
		want:   "<p><table scope=\"foo\"></p>\n",
	},
	{
		name: "options",
		params: map[string]any{
			"text": "/u/test", "options": map[string]any{"nofollow": true, "target": "_top"}},
		want: "<p><a href=\"/u/test\" rel=\"nofollow\" target=\"_top\">/u/test</a></p>\n",
	},
	{
		name: "wrong-typed options are ignored",
		params: map[string]any{
			"text": "/u/test", "options": map[string]any{"nofollow": "yes", "target": nil}},
		want: "<p><a href=\"/u/test\">/u/test</a></p>\n",
	},
	{
		name:   "no text",
		params: map[string]any{},
		want:   "",
	},
}

func TestRender(t *testing.T) {
	client, _ := setup(t)
	for _, tc := range renderTests {
		t.Run(tc.name, func(t *testing.T) {
			var result renderResult
			require.NoError(t, client.Call(context.Background(), "snudown/render", tc.params, &result))
			assert.Equal(t, tc.want, result.HTML)
		})
	}
}

func TestErrors(t *testing.T) {
	client, _ := setup(t)
	ctx := context.Background()

	err := client.Call(ctx, "textDocument/definition", nil, nil)
	assertErrorCode(t, err, jsonrpc2.CodeMethodNotFound)

	err = client.Call(ctx, "textDocument/didOpen", "not an object", nil)
	assertErrorCode(t, err, jsonrpc2.CodeInvalidParams)

	err = client.Call(ctx, "textDocument/didChange", lsp.DidChangeTextDocumentParams{}, nil)
	assertErrorCode(t, err, jsonrpc2.CodeInvalidParams)

	err = client.Call(ctx, "snudown/render", map[string]any{"text": 42}, nil)
	assertErrorCode(t, err, jsonrpc2.CodeInvalidParams)
}

func assertErrorCode(t *testing.T, err error, code int64) {
	t.Helper()
	var rpcErr *jsonrpc2.Error
	if assert.True(t, errors.As(err, &rpcErr), "got error %v, want a jsonrpc2 error", err) {
		assert.Equal(t, code, rpcErr.Code)
	}
}

func TestExit(t *testing.T) {
	client, server := setup(t)
	// The reply may or may not arrive before the connection is closed.
	client.Call(context.Background(), "exit", nil, nil)
	select {
	case <-server.DisconnectNotify():
	case <-time.After(5 * time.Second):
		t.Errorf("server still connected after exit")
	}
}

func TestProgram_NotSuitable(t *testing.T) {
	err := Program{}.Run([3]*os.File{os.Stdin, os.Stdout, os.Stderr}, &prog.Flags{}, nil)
	assert.Equal(t, prog.ErrNotSuitable, err)
}
