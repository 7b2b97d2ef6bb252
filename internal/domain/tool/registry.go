package tool

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
)

var (
	ErrToolAlreadyRegistered = errors.New("tool already registered")
	ErrToolNameRequired      = errors.New("tool name is required")
	ErrToolSchema            = errors.New("tool schema invalid")
)

// Envelope is the structured content of every tool result.
type Envelope struct {
	Payload any `json:"payload"`
}

// Definition describes one tool as announced to MCP clients.
type Definition struct {
	Name        string
	Description string
	Schema      []SchemaOption
}

// HandlerFunc executes a validated tool call and returns the one-line summary
// shown to the caller plus the payload placed in the Envelope.
type HandlerFunc[In any] func(ctx context.Context, in In) (summary string, payload any, err error)

// ToolRegistry registers tools on an MCP server and keeps track of their names.
type ToolRegistry struct {
	server *mcp.Server
	logger zerolog.Logger

	mu    sync.Mutex
	names map[string]struct{}
}

func NewToolRegistry(server *mcp.Server, logger zerolog.Logger) *ToolRegistry {
	return &ToolRegistry{server: server, logger: logger, names: make(map[string]struct{})}
}

// Names returns the registered tool names, sorted.
func (r *ToolRegistry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, 0, len(r.names))
	for name := range r.names {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (r *ToolRegistry) reserve(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.names[name]; exists {
		return fmt.Errorf("%w: %s", ErrToolAlreadyRegistered, name)
	}
	r.names[name] = struct{}{}
	return nil
}

// Register adds a typed tool. The input schema is inferred from In and then
// narrowed by def.Schema; the MCP server validates arguments against it before
// h runs.
func Register[In any](r *ToolRegistry, def Definition, h HandlerFunc[In]) error {
	name := strings.TrimSpace(def.Name)
	if name == "" || h == nil {
		return ErrToolNameRequired
	}

	schema, err := inputSchema[In](def.Schema...)
	if err != nil {
		return fmt.Errorf("tool %s: %w", name, err)
	}
	if err := r.reserve(name); err != nil {
		return err
	}

	mcp.AddTool(r.server, &mcp.Tool{
		Name:        name,
		Description: def.Description,
		InputSchema: schema,
	}, instrument(r.logger, name, h))
	return nil
}

// instrument adapts h to the MCP handler signature: the summary becomes the
// text content, the payload the structured content. Each call gets a UUIDv7
// invocation id and one log line. Errors are returned to the SDK, which turns
// them into tool results with isError set.
func instrument[In any](logger zerolog.Logger, name string, h HandlerFunc[In]) mcp.ToolHandlerFor[In, Envelope] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in In) (*mcp.CallToolResult, Envelope, error) {
		invocationID := newInvocationID()
		start := time.Now()

		summary, payload, err := h(ctx, in)

		evt := logger.Info()
		if err != nil {
			evt = logger.Warn().Err(err)
		}
		evt.Str("tool", name).
			Str("invocation_id", invocationID).
			Dur("duration", time.Since(start)).
			Bool("ok", err == nil).
			Msg("tool.call")

		if err != nil {
			return nil, Envelope{}, err
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: summary}},
		}, Envelope{Payload: payload}, nil
	}
}

func newInvocationID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// inputSchema infers the JSON schema of In and applies opts in order.
func inputSchema[In any](opts ...SchemaOption) (*jsonschema.Schema, error) {
	schema, err := jsonschema.For[In](nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrToolSchema, err)
	}
	for _, opt := range opts {
		if err := opt(schema); err != nil {
			return nil, err
		}
	}
	return schema, nil
}
