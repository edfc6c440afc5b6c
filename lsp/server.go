// Package lsp serves completions over the Language Server Protocol.
package lsp

import (
	"context"

	"github.com/arjunmahishi/scopeq/complete"
	"github.com/arjunmahishi/scopeq/workspace"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"
	"go.uber.org/zap"
)

// Name is reported to clients during initialization.
const Name = "scopeq"

// TriggerCharacters open the completion list as they are typed.
var TriggerCharacters = []string{"#", "(", ",", ":", ".", "$"}

// Server answers LSP requests against a workspace.
type Server struct {
	ws      *workspace.Workspace
	logger  *zap.SugaredLogger
	version string
	handler protocol.Handler
}

// New creates a server. A nil logger discards logs.
func New(ws *workspace.Workspace, logger *zap.SugaredLogger, version string) *Server {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	s := &Server{ws: ws, logger: logger, version: version}
	s.handler = protocol.Handler{
		Initialize:             s.initialize,
		Initialized:            s.initialized,
		Shutdown:               s.shutdown,
		SetTrace:               s.setTrace,
		TextDocumentDidOpen:    s.didOpen,
		TextDocumentDidChange:  s.didChange,
		TextDocumentDidClose:   s.didClose,
		TextDocumentCompletion: s.completion,
	}
	return s
}

// RunStdio serves a single client over stdin and stdout until it exits.
func (s *Server) RunStdio() error {
	return glspserver.NewServer(&s.handler, Name, false).RunStdio()
}

func (s *Server) initialize(_ *glsp.Context, params *protocol.InitializeParams) (any, error) {
	s.logger.Infow("client initializing", "client", params.ClientInfo, "root", s.ws.Root())

	syncKind := protocol.TextDocumentSyncKindFull
	return protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			CompletionProvider: &protocol.CompletionOptions{
				TriggerCharacters: TriggerCharacters,
			},
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: ptr(true),
				Change:    &syncKind,
			},
		},
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    Name,
			Version: ptr(s.version),
		},
	}, nil
}

func (s *Server) initialized(_ *glsp.Context, _ *protocol.InitializedParams) error {
	s.logger.Debugw("client initialized")
	return nil
}

func (s *Server) shutdown(_ *glsp.Context) error {
	protocol.SetTraceValue(protocol.TraceValueOff)
	s.logger.Infow("client shutting down")
	return nil
}

func (s *Server) setTrace(_ *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (s *Server) didOpen(_ *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return err
	}
	s.ws.Open(path, params.TextDocument.Text)
	s.logger.Debugw("document opened", "path", path, "length", len(params.TextDocument.Text))
	return nil
}

func (s *Server) didChange(_ *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return err
	}
	for _, change := range params.ContentChanges {
		if whole, ok := change.(protocol.TextDocumentContentChangeEventWhole); ok {
			s.ws.Open(path, whole.Text)
		}
	}
	return nil
}

func (s *Server) didClose(_ *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return err
	}
	s.ws.Close(path)
	s.logger.Debugw("document closed", "path", path)
	return nil
}

func (s *Server) completion(_ *glsp.Context, params *protocol.CompletionParams) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Errorw("panic in completion handler", "panic", r, "uri", params.TextDocument.URI)
			result = []protocol.CompletionItem{}
			err = nil
		}
	}()

	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil, err
	}
	doc, err := s.ws.Document(context.Background(), path)
	if err != nil {
		s.logger.Warnw("no document to complete", "path", path, "error", err)
		return []protocol.CompletionItem{}, nil
	}

	text := doc.Source.Text()
	cursor := params.Position.IndexIn(text)
	explicit := params.Context == nil || params.Context.TriggerKind == protocol.CompletionTriggerKindInvoked

	from, items := complete.Complete(s.ws.World(doc, path), doc.Source, cursor, complete.Options{
		Explicit: explicit,
		Logger:   s.logger,
	})
	s.logger.Debugw("completion", "path", path, "cursor", cursor, "explicit", explicit, "count", len(items))

	replace := protocol.Range{Start: positionAt(text, from), End: positionAt(text, cursor)}
	out := make([]protocol.CompletionItem, 0, len(items))
	for _, item := range items {
		out = append(out, toItem(item, replace))
	}
	return out, nil
}

// toItem converts a completion into an item replacing the given range.
func toItem(c complete.Completion, replace protocol.Range) protocol.CompletionItem {
	apply := c.Apply
	if apply == "" {
		apply = c.Label
	}
	item := protocol.CompletionItem{
		Label:            c.Label,
		Kind:             ptr(itemKind(c.Kind)),
		InsertTextFormat: ptr(protocol.InsertTextFormatSnippet),
		TextEdit:         protocol.TextEdit{Range: replace, NewText: toSnippet(apply)},
	}
	if c.Detail != "" {
		item.Documentation = protocol.MarkupContent{Kind: protocol.MarkupKindMarkdown, Value: c.Detail}
	}
	if c.Command != "" {
		item.Command = &protocol.Command{Title: "Trigger suggest", Command: c.Command}
	}
	return item
}

func itemKind(k complete.Kind) protocol.CompletionItemKind {
	switch k {
	case complete.Function:
		return protocol.CompletionItemKindFunction
	case complete.Variable:
		return protocol.CompletionItemKindVariable
	case complete.Module:
		return protocol.CompletionItemKindModule
	case complete.Type:
		return protocol.CompletionItemKindClass
	case complete.Parameter:
		return protocol.CompletionItemKindProperty
	default:
		return protocol.CompletionItemKindConstant
	}
}

func ptr[T any](v T) *T { return &v }
