// Package server exposes the checker over the language server protocol.
package server

import (
	"go/token"
	"net/url"
	"path/filepath"
	"sync"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"

	"github.com/latticelabs/seclat/checker"

	_ "github.com/tliron/commonlog/simple"
)

const lspName = "seclat-lsp"

// LspServer publishes checker diagnostics for the package containing each
// open document. Unsaved buffer contents are layered over the on-disk
// sources, so the editor sees obligations fail as the user types.
type LspServer struct {
	worker *CheckWorker

	mu   sync.Mutex
	docs map[string]string // URI → full document content

	handler protocol.Handler
	server  *glspserver.Server
	version string
}

// NewLSP creates a new LSP server.
func NewLSP() *LspServer {
	s := &LspServer{
		worker:  NewCheckWorker(),
		docs:    make(map[string]string),
		version: "0.1.0",
	}

	s.handler = protocol.Handler{
		Initialize:  s.initialize,
		Initialized: s.initialized,
		Shutdown:    s.shutdown,
		SetTrace:    s.setTrace,

		TextDocumentDidOpen:   s.textDocumentDidOpen,
		TextDocumentDidChange: s.textDocumentDidChange,
		TextDocumentDidSave:   s.textDocumentDidSave,
		TextDocumentDidClose:  s.textDocumentDidClose,
	}

	s.server = glspserver.NewServer(&s.handler, lspName, false)

	return s
}

// Run starts the LSP server on stdio. Blocks until the client disconnects.
func (s *LspServer) Run() error {
	return s.server.RunStdio()
}

// --- LSP lifecycle handlers ---

func (s *LspServer) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	commonlog.NewInfoMessage(0, "seclat LSP initializing")

	capabilities := s.handler.CreateServerCapabilities()

	syncKind := protocol.TextDocumentSyncKindFull
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    &syncKind,
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lspName,
			Version: &s.version,
		},
	}, nil
}

func (s *LspServer) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (s *LspServer) shutdown(ctx *glsp.Context) error {
	s.worker.Stop()
	return nil
}

func (s *LspServer) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	return nil
}

// --- Document synchronization ---

func (s *LspServer) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := params.TextDocument.URI

	s.mu.Lock()
	s.docs[string(uri)] = params.TextDocument.Text
	s.mu.Unlock()

	s.publishDiagnostics(ctx, uri)
	return nil
}

func (s *LspServer) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI

	// With Full sync, the last change event contains the full text
	if len(params.ContentChanges) > 0 {
		last := params.ContentChanges[len(params.ContentChanges)-1]
		if whole, ok := last.(protocol.TextDocumentContentChangeEventWhole); ok {
			s.mu.Lock()
			s.docs[string(uri)] = whole.Text
			s.mu.Unlock()

			s.publishDiagnostics(ctx, uri)
		}
	}
	return nil
}

func (s *LspServer) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	s.publishDiagnostics(ctx, params.TextDocument.URI)
	return nil
}

func (s *LspServer) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI

	s.mu.Lock()
	delete(s.docs, string(uri))
	s.mu.Unlock()

	// Clear diagnostics for the closed document
	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

// --- Diagnostics ---

func (s *LspServer) publishDiagnostics(ctx *glsp.Context, uri protocol.DocumentUri) {
	path := uriToPath(string(uri))
	if path == "" {
		return
	}

	s.mu.Lock()
	overlay := make(map[string][]byte, len(s.docs))
	for u, text := range s.docs {
		if p := uriToPath(u); p != "" {
			overlay[p] = []byte(text)
		}
	}
	s.mu.Unlock()

	result, err := s.worker.Do(func() interface{} {
		diags, fset, err := checker.CheckPatternsOverlay(filepath.Dir(path), overlay, ".")
		if err != nil {
			commonlog.NewErrorMessage(0, "check failed: "+err.Error())
			return nil
		}
		return toProtocol(diags, fset, path)
	})
	if err != nil {
		return
	}

	diagnostics, _ := result.([]protocol.Diagnostic)
	if diagnostics == nil {
		diagnostics = []protocol.Diagnostic{}
	}

	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

// toProtocol converts the diagnostics that fall inside path.
func toProtocol(diags []checker.Diagnostic, fset *token.FileSet, path string) []protocol.Diagnostic {
	severity := protocol.DiagnosticSeverityError
	source := lspName

	var out []protocol.Diagnostic
	for _, d := range diags {
		pos := fset.Position(d.Pos)
		if pos.Filename != path {
			continue
		}
		at := protocol.Position{
			Line:      uint32(pos.Line - 1),
			Character: uint32(pos.Column - 1),
		}
		out = append(out, protocol.Diagnostic{
			Range:    protocol.Range{Start: at, End: at},
			Severity: &severity,
			Source:   &source,
			Message:  string(d.Code) + ": " + d.Message,
		})
	}
	return out
}

func uriToPath(uri string) string {
	// Editors percent-encode document URIs; u.Path comes back decoded.
	u, err := url.Parse(uri)
	if err != nil || u.Scheme != "file" {
		return ""
	}
	return u.Path
}

func boolPtr(b bool) *bool {
	return &b
}
