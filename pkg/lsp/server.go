package lsp

import (
	"context"
	"encoding/json"
	"sync"

	lsp "github.com/sourcegraph/go-lsp"
	"github.com/sourcegraph/jsonrpc2"

	"src.snudown.dev/pkg/md"
)

var (
	errMethodNotFound = &jsonrpc2.Error{
		Code: jsonrpc2.CodeMethodNotFound, Message: "method not found"}
	errInvalidParams = &jsonrpc2.Error{
		Code: jsonrpc2.CodeInvalidParams, Message: "invalid params"}
)

type server struct {
	mu      sync.Mutex
	content map[lsp.DocumentURI]string
}

func newServer() *server {
	return &server{content: make(map[lsp.DocumentURI]string)}
}

func handler(s *server) jsonrpc2.Handler {
	return routingHandler(map[string]method{
		"initialize":             s.initialize,
		"textDocument/didOpen":   s.didOpen,
		"textDocument/didChange": s.didChange,
		"textDocument/didClose":  s.didClose,
		"textDocument/hover":     s.hover,
		"snudown/render":         render,
		"shutdown":               noop,
		"exit":                   exit,

		// Required by the protocol.
		"initialized": noop,
		// Called by clients even when server doesn't advertise support:
		// https://microsoft.github.io/language-server-protocol/specification#workspace_didChangeWatchedFiles
		"workspace/didChangeWatchedFiles": noop,
	})
}

type method func(context.Context, jsonrpc2.JSONRPC2, json.RawMessage) (any, error)

func noop(_ context.Context, _ jsonrpc2.JSONRPC2, _ json.RawMessage) (any, error) {
	return nil, nil
}

func routingHandler(methods map[string]method) jsonrpc2.Handler {
	return jsonrpc2.HandlerWithError(func(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error) {
		fn, ok := methods[req.Method]
		if !ok {
			logger.Println("unknown method", req.Method)
			return nil, errMethodNotFound
		}
		var params json.RawMessage
		if req.Params != nil {
			params = *req.Params
		}
		return fn(ctx, conn, params)
	})
}

// Handler implementations. These are all called synchronously.

func (s *server) initialize(_ context.Context, _ jsonrpc2.JSONRPC2, _ json.RawMessage) (any, error) {
	return &lsp.InitializeResult{
		Capabilities: lsp.ServerCapabilities{
			TextDocumentSync: &lsp.TextDocumentSyncOptionsOrKind{
				Options: &lsp.TextDocumentSyncOptions{
					OpenClose: true,
					Change:    lsp.TDSKFull,
				},
			},
			HoverProvider: true,
		},
	}, nil
}

func (s *server) didOpen(_ context.Context, _ jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.DidOpenTextDocumentParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}
	s.setContent(params.TextDocument.URI, params.TextDocument.Text)
	return nil, nil
}

func (s *server) didChange(_ context.Context, _ jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.DidChangeTextDocumentParams
	if json.Unmarshal(rawParams, &params) != nil || len(params.ContentChanges) == 0 {
		return nil, errInvalidParams
	}
	// ContentChanges includes full text since the server is only advertised to
	// support that; see the initialize method.
	s.setContent(params.TextDocument.URI, params.ContentChanges[0].Text)
	return nil, nil
}

func (s *server) didClose(_ context.Context, _ jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.DidCloseTextDocumentParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.content, params.TextDocument.URI)
	return nil, nil
}

// Shows the rendered HTML of the whole document, wherever the cursor is.
func (s *server) hover(_ context.Context, _ jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.TextDocumentPositionParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}
	s.mu.Lock()
	content, ok := s.content[params.TextDocument.URI]
	s.mu.Unlock()
	if !ok {
		return lsp.Hover{}, nil
	}
	return lsp.Hover{
		Contents: []lsp.MarkedString{{Language: "html", Value: md.Render(content, md.Options{})}},
	}, nil
}

func (s *server) setContent(uri lsp.DocumentURI, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.content[uri] = content
}

type renderParams struct {
	Text    string         `json:"text"`
	Wiki    bool           `json:"wiki"`
	Options map[string]any `json:"options"`
}

type renderResult struct {
	HTML string `json:"html"`
}

// Renders text that is not part of any open document. Options are loosely
// typed; values of the wrong type are ignored.
func render(_ context.Context, _ jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params renderParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}
	mode := md.Default
	if params.Wiki {
		mode = md.Wiki
	}
	return renderResult{md.RenderMode(params.Text, mode, md.OptionsFromMap(params.Options))}, nil
}

func exit(_ context.Context, conn jsonrpc2.JSONRPC2, _ json.RawMessage) (any, error) {
	// Closing the connection makes Program.Run return.
	go conn.Close()
	return nil, nil
}
