// Package tools holds the Notion tool table: the descriptors advertised to
// clients and the handler each tool dispatches to.
package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"notion-mcp/internal/notion"
)

// DefaultPrefix is prepended to every tool name unless configured otherwise.
const DefaultPrefix = "notion_"

// Backend is the set of Notion calls the tools dispatch to. *notion.Client
// implements it.
type Backend interface {
	Search(ctx context.Context, p notion.SearchParams) (json.RawMessage, error)
	CreatePage(ctx context.Context, parent notion.Parent, properties map[string]any) (json.RawMessage, error)
	UpdatePageProperties(ctx context.Context, pageID string, properties map[string]any) (json.RawMessage, error)
	ArchivePage(ctx context.Context, pageID string) (json.RawMessage, error)
	QueryDatabase(ctx context.Context, databaseID string, sorts []json.RawMessage) (json.RawMessage, error)
	AppendBlockChildren(ctx context.Context, blockID string, children []json.RawMessage) (json.RawMessage, error)
	ListBlockChildren(ctx context.Context, blockID string) (json.RawMessage, error)
}

var _ Backend = (*notion.Client)(nil)

// Kind enumerates the supported operations.
type Kind int

const (
	SearchPages Kind = iota
	CreatePage
	AppendBlocks
	QueryDatabase
	CreateDatabaseRow
	UpdatePage
	GetBlockChildren
	ArchivePage

	numKinds
)

// Kinds returns every operation in listing order.
func Kinds() []Kind {
	out := make([]Kind, numKinds)
	for i := range out {
		out[i] = Kind(i)
	}
	return out
}

// String returns the unprefixed tool name.
func (k Kind) String() string {
	if k < 0 || k >= numKinds {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return definitions[k].name
}

type callFunc func(ctx context.Context, b Backend, args map[string]any) (json.RawMessage, error)

// bind adapts a typed handler to the raw argument bag.
func bind[A any](run func(context.Context, Backend, A) (json.RawMessage, error)) callFunc {
	return func(ctx context.Context, b Backend, args map[string]any) (json.RawMessage, error) {
		var a A
		if err := decodeArguments(args, &a); err != nil {
			return nil, err
		}
		return run(ctx, b, a)
	}
}

type entry struct {
	kind Kind
	tool mcp.Tool
	call callFunc
}

// Options configures a Registry.
type Options struct {
	// Prefix is prepended to each tool name. Empty means bare names.
	Prefix   string
	Observer Observer
}

// Registry is an immutable table of tools bound to a backend. It is safe
// for concurrent use.
type Registry struct {
	backend  Backend
	observer Observer
	entries  []entry
	byName   map[string]int
}

// NewRegistry builds the tool table for the given backend.
func NewRegistry(backend Backend, opts Options) *Registry {
	r := &Registry{
		backend:  backend,
		observer: opts.Observer,
		entries:  make([]entry, 0, numKinds),
		byName:   make(map[string]int, numKinds),
	}
	for _, k := range Kinds() {
		def := definitions[k]
		name := opts.Prefix + def.name
		toolOpts := append([]mcp.ToolOption{mcp.WithDescription(def.description)}, def.options...)
		r.byName[name] = len(r.entries)
		r.entries = append(r.entries, entry{
			kind: k,
			tool: mcp.NewTool(name, toolOpts...),
			call: def.call,
		})
	}
	return r
}

// List returns the tool descriptors in table order.
func (r *Registry) List() []mcp.Tool {
	out := make([]mcp.Tool, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.tool
	}
	return out
}

// Lookup resolves a wire name to its operation.
func (r *Registry) Lookup(name string) (Kind, bool) {
	i, ok := r.byName[name]
	if !ok {
		return 0, false
	}
	return r.entries[i].kind, true
}

// Call validates args, issues the tool's single backing call and wraps the
// response as indented JSON text. A nil args is treated as empty.
func (r *Registry) Call(ctx context.Context, name string, args map[string]any) (*mcp.CallToolResult, error) {
	return r.observe(ctx, name, func(e entry) (*mcp.CallToolResult, error) {
		return r.run(ctx, e, args)
	})
}

// CallJSON is Call for an undecoded argument document. The tool name is
// resolved first, so an unknown name is reported whatever raw holds. Empty
// or null raw is treated as no arguments; anything but an object is invalid.
func (r *Registry) CallJSON(ctx context.Context, name string, raw json.RawMessage) (*mcp.CallToolResult, error) {
	return r.observe(ctx, name, func(e entry) (*mcp.CallToolResult, error) {
		args, err := argumentObject(raw)
		if err != nil {
			return nil, err
		}
		return r.run(ctx, e, args)
	})
}

// unknownToolLabel replaces unresolved names in observations so clients
// cannot mint new metric series.
const unknownToolLabel = "unknown"

func (r *Registry) observe(ctx context.Context, name string, fn func(entry) (*mcp.CallToolResult, error)) (*mcp.CallToolResult, error) {
	start := time.Now()
	var (
		res *mcp.CallToolResult
		err error
	)
	label := unknownToolLabel
	if i, ok := r.byName[name]; ok {
		label = name
		res, err = fn(r.entries[i])
	} else {
		err = fmt.Errorf("%w: %q", ErrUnknownTool, name)
	}
	if r.observer != nil {
		r.observer.ObserveCall(ctx, CallObservation{
			Tool:     label,
			Outcome:  outcomeOf(err),
			Start:    start,
			Duration: time.Since(start),
			Err:      err,
		})
	}
	return res, err
}

func (r *Registry) run(ctx context.Context, e entry, args map[string]any) (*mcp.CallToolResult, error) {
	if args == nil {
		args = map[string]any{}
	}
	if err := validateArguments(e.tool.InputSchema, args); err != nil {
		return nil, err
	}
	raw, err := e.call(ctx, r.backend, args)
	if err != nil {
		return nil, err
	}
	return TextResult(raw)
}

// TextResult wraps a raw JSON document as a single text content item,
// indented with two spaces.
func TextResult(raw json.RawMessage) (*mcp.CallToolResult, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return nil, fmt.Errorf("format result: %w", err)
	}
	return mcp.NewToolResultText(buf.String()), nil
}

// Outcome classifies a finished call.
type Outcome string

const (
	OutcomeOK               Outcome = "ok"
	OutcomeUnknownTool      Outcome = "unknown_tool"
	OutcomeInvalidArguments Outcome = "invalid_arguments"
	OutcomeBackendError     Outcome = "backend_error"
)

func outcomeOf(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, ErrUnknownTool):
		return OutcomeUnknownTool
	case errors.Is(err, ErrInvalidArguments):
		return OutcomeInvalidArguments
	default:
		return OutcomeBackendError
	}
}

// CallObservation describes one finished call. Tool is "unknown" when the
// name did not resolve.
type CallObservation struct {
	Tool     string
	Outcome  Outcome
	Start    time.Time
	Duration time.Duration
	Err      error
}

// Observer receives one observation per Call. ctx is the call's context.
type Observer interface {
	ObserveCall(ctx context.Context, c CallObservation)
}
