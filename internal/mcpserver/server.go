// Package mcpserver exposes the transcript parser as MCP tools so that
// assistants can structure German diary dictations directly.
//
// Every tool takes {text, userMeds?, userId?} and answers with the same JSON
// documents the HTTP API returns. Tool results are text content; no output
// schema is published.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/MrWong99/painvoice/internal/engine"
	"github.com/MrWong99/painvoice/internal/observe"
	"github.com/MrWong99/painvoice/pkg/types"
)

// Tool names.
const (
	ToolNormalize = "normalize_transcript"
	ToolIntent    = "score_intent"
	ToolSegment   = "segment_transcript"
	ToolReminder  = "parse_reminder"
	ToolEntry     = "parse_entry"
)

const sessionTimeout = 30 * time.Minute

var errEmptyText = errors.New("text is required")

// MedicationSource resolves userId to a medication list.
type MedicationSource interface {
	ListMedications(ctx context.Context, userID string) ([]types.UserMedication, error)
}

// TranscriptInput is the argument object of every tool.
type TranscriptInput struct {
	Text     string                 `json:"text" jsonschema:"the German transcript as produced by speech-to-text"`
	UserMeds []types.UserMedication `json:"userMeds,omitempty" jsonschema:"the user's own medications, preferred when resolving spoken names"`
	UserID   string                 `json:"userId,omitempty" jsonschema:"loads the stored medication list when userMeds is empty"`
}

type tools struct {
	engine  *engine.Handle
	meds    MedicationSource
	metrics *observe.Metrics
}

// Option configures [New].
type Option func(*tools)

// WithMedicationSource resolves userId arguments through src.
func WithMedicationSource(src MedicationSource) Option {
	return func(t *tools) { t.meds = src }
}

// WithMetrics records tool calls to m. Defaults to [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(t *tools) { t.metrics = m }
}

// New returns an MCP server with all parser tools registered.
func New(h *engine.Handle, version string, opts ...Option) *mcpsdk.Server {
	t := &tools{engine: h}
	for _, o := range opts {
		o(t)
	}
	if t.metrics == nil {
		t.metrics = observe.DefaultMetrics()
	}

	srv := mcpsdk.NewServer(&mcpsdk.Implementation{Name: "painvoice", Version: version}, nil)

	t.add(srv, ToolNormalize, "Normalize a German transcript: NFC, lowercase, umlaut folding, ASR corrections. Returns the normalized text, tokens and applied corrections.",
		func(_ context.Context, e *engine.Engine, in TranscriptInput) any {
			return e.Parser().Normalize(in.Text)
		})
	t.add(srv, ToolIntent, "Classify the intent of a headache diary transcript (pain_entry, add_medication, reminder, ...). Returns intent, confidence, all scores and fired features.",
		func(ctx context.Context, e *engine.Engine, in TranscriptInput) any {
			return e.Parser().Score(in.Text, t.userMeds(ctx, in))
		})
	t.add(srv, ToolSegment, "Split a transcript into context segments (medication events, symptom course, lifestyle factors) with per-segment entities.",
		func(ctx context.Context, e *engine.Engine, in TranscriptInput) any {
			segs := e.Segmenter().Segment(in.Text, t.userMeds(ctx, in))
			return map[string]any{"segments": segs, "nlp_version": e.Version(), "segment_count": len(segs)}
		})
	t.add(srv, ToolReminder, "Parse a German reminder request into type, title, medications, date, time, repeat rule and confidence.",
		func(ctx context.Context, e *engine.Engine, in TranscriptInput) any {
			return e.Parser().Reminder(in.Text, t.userMeds(ctx, in))
		})
	t.add(srv, ToolEntry, "Parse a transcript into a diary entry: intent, pain level, medications with dose, time of occurrence and the list of missing fields.",
		func(ctx context.Context, e *engine.Engine, in TranscriptInput) any {
			return e.Parser().Parse(in.Text, t.userMeds(ctx, in))
		})

	return srv
}

// add registers a tool whose result is fn's return value encoded as JSON text.
func (t *tools) add(srv *mcpsdk.Server, name, desc string, fn func(context.Context, *engine.Engine, TranscriptInput) any) {
	mcpsdk.AddTool(srv, &mcpsdk.Tool{Name: name, Description: desc},
		func(ctx context.Context, _ *mcpsdk.CallToolRequest, in TranscriptInput) (*mcpsdk.CallToolResult, any, error) {
			if strings.TrimSpace(in.Text) == "" {
				t.metrics.RecordToolCall(ctx, name, "error")
				return nil, nil, errEmptyText
			}

			start := time.Now()
			out := fn(ctx, t.engine.Load(), in)
			t.metrics.RecordParse(ctx, name, start)

			data, err := json.Marshal(out)
			if err != nil {
				t.metrics.RecordToolCall(ctx, name, "error")
				return nil, nil, fmt.Errorf("mcpserver: %s: encode result: %w", name, err)
			}
			t.metrics.RecordToolCall(ctx, name, "ok")
			return &mcpsdk.CallToolResult{
				Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: string(data)}},
			}, nil, nil
		})
}

func (t *tools) userMeds(ctx context.Context, in TranscriptInput) []types.UserMedication {
	if len(in.UserMeds) > 0 || in.UserID == "" || t.meds == nil {
		return in.UserMeds
	}
	meds, err := t.meds.ListMedications(ctx, in.UserID)
	if err != nil {
		observe.Logger(ctx).Warn("mcp: medication lookup failed", "user_id", in.UserID, "err", err)
		return nil
	}
	return meds
}

// Handler serves srv over the streamable HTTP transport. Idle sessions are
// dropped after 30 minutes.
func Handler(srv *mcpsdk.Server) http.Handler {
	return mcpsdk.NewStreamableHTTPHandler(
		func(*http.Request) *mcpsdk.Server { return srv },
		&mcpsdk.StreamableHTTPOptions{
			Logger:         slog.Default().With("component", "mcp"),
			SessionTimeout: sessionTimeout,
		},
	)
}
