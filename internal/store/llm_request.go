package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// LLMRequest records one LLM API call for cost tracking and debugging.
type LLMRequest struct {
	ID           int
	Sequence     int64
	Timestamp    time.Time
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestRepo appends and reads LLM request records.
type LLMRequestRepo struct {
	q   querier
	seq *sequenceCounter
}

var llmRequestColumns = []string{
	"id", "sequence", "timestamp", "provider", "model", "purpose", "input_tokens",
	"output_tokens", "latency_ms", "success", "error_message", "request_body", "response_body",
}

// Append stores e with the next global sequence number.
func (r *LLMRequestRepo) Append(ctx context.Context, e LLMRequest) error {
	seq, err := r.seq.Next(ctx, r.q)
	if err != nil {
		return err
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	ins := builder.Insert("llm_requests").
		Columns(llmRequestColumns[1:]...).
		Values(seq, e.Timestamp.UTC(), e.Provider, e.Model, e.Purpose, e.InputTokens,
			e.OutputTokens, e.LatencyMs, e.Success, e.ErrorMessage, e.RequestBody, e.ResponseBody)
	if _, err := exec(ctx, r.q, ins); err != nil {
		return fmt.Errorf("save LLM request: %w", err)
	}
	return nil
}

// List returns LLM requests, newest first.
func (r *LLMRequestRepo) List(ctx context.Context, opts QueryOpts) ([]LLMRequest, error) {
	sel := builder.Select(llmRequestColumns...).From(builder.Table("llm_requests")).
		OrderBy(entsql.Desc("sequence"))
	opts.apply(sel, "timestamp")

	rows, err := query(ctx, r.q, sel)
	if err != nil {
		return nil, fmt.Errorf("list LLM requests: %w", err)
	}
	defer rows.Close()

	var out []LLMRequest
	for rows.Next() {
		e, err := scanLLMRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan LLM request: %w", err)
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// Get returns the LLM request with id.
func (r *LLMRequestRepo) Get(ctx context.Context, id int) (*LLMRequest, error) {
	sel := builder.Select(llmRequestColumns...).From(builder.Table("llm_requests")).
		Where(entsql.EQ("id", id))
	e, err := scanLLMRequest(queryRow(ctx, r.q, sel))
	if err != nil {
		return nil, notFound(err, fmt.Sprintf("LLM request %d", id))
	}
	return e, nil
}

func scanLLMRequest(s scanner) (*LLMRequest, error) {
	var e LLMRequest
	err := s.Scan(&e.ID, &e.Sequence, &e.Timestamp, &e.Provider, &e.Model, &e.Purpose,
		&e.InputTokens, &e.OutputTokens, &e.LatencyMs, &e.Success, &e.ErrorMessage,
		&e.RequestBody, &e.ResponseBody)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
