package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/codepet/codepet/internal/logger"
	"github.com/codepet/codepet/internal/store"
	"github.com/rs/zerolog"
)

// Recorder persists one request record. *store.LLMRequestRepo satisfies it.
type Recorder interface {
	Append(ctx context.Context, e store.LLMRequest) error
}

// LoggingProvider stores every call, successful or not, through a
// Recorder and logs a summary line.
type LoggingProvider struct {
	inner    Provider
	provider string
	rec      Recorder
	log      zerolog.Logger
	now      func() time.Time
}

// WithLogging wraps p. A nil rec only logs.
func WithLogging(p Provider, providerName string, rec Recorder) *LoggingProvider {
	return &LoggingProvider{
		inner:    p,
		provider: providerName,
		rec:      rec,
		log:      logger.Component("llm"),
		now:      time.Now,
	}
}

func (r *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := r.now()
	resp, err := r.inner.Generate(ctx, req)
	elapsed := r.now().Sub(start)

	e := store.LLMRequest{
		Timestamp:   start,
		Provider:    r.provider,
		Model:       r.inner.ModelID(),
		Purpose:     PurposeFrom(ctx),
		LatencyMs:   elapsed.Milliseconds(),
		Success:     err == nil,
		RequestBody: renderRequest(req),
	}
	if resp != nil {
		e.InputTokens = resp.Usage.InputTokens
		e.OutputTokens = resp.Usage.OutputTokens
		if resp.Model != "" {
			e.Model = resp.Model
		}
		e.ResponseBody = string(resp.Content)
	}
	if err != nil {
		e.ErrorMessage = err.Error()
	}

	ev := r.log.Info()
	if err != nil {
		ev = r.log.Warn().Err(err)
	}
	ev = ev.Str("provider", e.Provider).Str("model", e.Model).Str("purpose", e.Purpose).
		Int("input_tokens", e.InputTokens).Int("output_tokens", e.OutputTokens).Dur("latency", elapsed)
	if cost, ok := Cost(e.Model, e.InputTokens, e.OutputTokens); ok {
		ev = ev.Float64("cost_usd", cost)
	}
	ev.Msg("llm request")

	if r.rec != nil {
		// a context already cancelled must not lose the record
		if recErr := r.rec.Append(context.WithoutCancel(ctx), e); recErr != nil {
			r.log.Warn().Err(recErr).Msg("record llm request")
		}
	}
	return resp, err
}

func (r *LoggingProvider) ModelID() string { return r.inner.ModelID() }

// renderRequest flattens req into the text stored with the record.
func renderRequest(req Request) string {
	var b strings.Builder
	if req.System != "" {
		fmt.Fprintf(&b, "[system]\n%s\n\n", req.System)
	}
	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n%s\n\n", m.Role, m.Content)
	}
	if req.Schema != nil {
		if def, err := json.Marshal(req.Schema.Definition); err == nil {
			fmt.Fprintf(&b, "[schema: %s]\n%s\n", req.Schema.Name, def)
		}
	}
	return b.String()
}
