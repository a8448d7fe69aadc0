package cmd

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/codepet/codepet/internal/llm"
	"github.com/codepet/codepet/internal/store"
	"github.com/spf13/cobra"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect recorded LLM requests",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent LLM requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		reqs, err := e.store.LLMRequests.List(cmd.Context(), store.QueryOpts{Limit: limit})
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if len(reqs) == 0 {
			fmt.Fprintln(w, "No LLM requests recorded.")
			return nil
		}

		fmt.Fprintf(w, "%-5s  %-19s  %-14s  %-28s  %-6s  %-6s  %-7s  %s\n",
			"ID", "Timestamp", "Purpose", "Model", "In", "Out", "Ms", "OK")
		fmt.Fprintln(w, strings.Repeat(rule, 100))

		for _, r := range reqs {
			if purpose != "" && r.Purpose != purpose {
				continue
			}
			ok := "✓"
			if !r.Success {
				ok = "✗"
			}
			fmt.Fprintf(w, "%-5d  %-19s  %-14s  %-28s  %-6d  %-6d  %-7d  %s\n",
				r.ID,
				r.Timestamp.Local().Format("2006-01-02 15:04:05"),
				r.Purpose,
				truncate(r.Model, 28),
				r.InputTokens,
				r.OutputTokens,
				r.LatencyMs,
				ok,
			)
		}
		return nil
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "View the full request and response of one call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		r, err := e.store.LLMRequests.Get(cmd.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("request %d not found", id)
		}
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		sep := strings.Repeat(rule, 60)

		fmt.Fprintf(w, "ID:        %d\n", r.ID)
		fmt.Fprintf(w, "Time:      %s\n", r.Timestamp.Local().Format("2006-01-02 15:04:05"))
		fmt.Fprintf(w, "Provider:  %s\n", r.Provider)
		fmt.Fprintf(w, "Model:     %s\n", r.Model)
		fmt.Fprintf(w, "Purpose:   %s\n", r.Purpose)
		fmt.Fprintf(w, "Tokens:    %d in / %d out\n", r.InputTokens, r.OutputTokens)
		fmt.Fprintf(w, "Latency:   %dms\n", r.LatencyMs)
		fmt.Fprintf(w, "Success:   %v\n", r.Success)
		if r.ErrorMessage != "" {
			fmt.Fprintf(w, "Error:     %s\n", r.ErrorMessage)
		}

		for _, part := range []struct{ title, body string }{
			{"REQUEST", r.RequestBody},
			{"RESPONSE", r.ResponseBody},
		} {
			fmt.Fprintln(w)
			fmt.Fprintln(w, sep)
			fmt.Fprintln(w, part.title)
			fmt.Fprintln(w, sep)
			if part.body != "" {
				fmt.Fprintln(w, part.body)
			} else {
				fmt.Fprintln(w, "(not captured)")
			}
		}
		return nil
	},
}

// usage sums the calls of one purpose or model.
type usage struct {
	key          string
	calls        int
	inputTokens  int
	outputTokens int
	latencyMs    int64
}

func sumBy(reqs []store.LLMRequest, key func(store.LLMRequest) string) []usage {
	byKey := map[string]*usage{}
	for _, r := range reqs {
		k := key(r)
		u, ok := byKey[k]
		if !ok {
			u = &usage{key: k}
			byKey[k] = u
		}
		u.calls++
		u.inputTokens += r.InputTokens
		u.outputTokens += r.OutputTokens
		u.latencyMs += r.LatencyMs
	}
	out := make([]usage, 0, len(byKey))
	for _, u := range byKey {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].key < out[j].key })
	return out
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregated LLM token usage and estimated cost",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		reqs, err := e.store.LLMRequests.List(cmd.Context(), store.QueryOpts{})
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if len(reqs) == 0 {
			fmt.Fprintln(w, "No LLM usage recorded yet.")
			return nil
		}

		fmt.Fprintln(w, "Usage by Purpose")
		fmt.Fprintln(w, strings.Repeat(rule, 72))
		fmt.Fprintf(w, "%-16s  %6s  %10s  %10s  %10s  %8s\n",
			"Purpose", "Calls", "Input", "Output", "Total", "Avg Ms")
		fmt.Fprintln(w, strings.Repeat(rule, 72))

		var totalCalls, totalIn, totalOut int
		for _, u := range sumBy(reqs, func(r store.LLMRequest) string { return r.Purpose }) {
			fmt.Fprintf(w, "%-16s  %6d  %10d  %10d  %10d  %8d\n",
				u.key, u.calls, u.inputTokens, u.outputTokens, u.inputTokens+u.outputTokens,
				u.latencyMs/int64(u.calls))
			totalCalls += u.calls
			totalIn += u.inputTokens
			totalOut += u.outputTokens
		}
		fmt.Fprintln(w, strings.Repeat(rule, 72))
		fmt.Fprintf(w, "%-16s  %6d  %10d  %10d  %10d\n",
			"TOTAL", totalCalls, totalIn, totalOut, totalIn+totalOut)

		fmt.Fprintln(w)
		fmt.Fprintln(w, "Estimated Cost (USD)")
		fmt.Fprintln(w, strings.Repeat(rule, 72))
		fmt.Fprintf(w, "%-32s  %6s  %10s  %10s  %10s\n",
			"Model", "Calls", "Input", "Output", "Cost")
		fmt.Fprintln(w, strings.Repeat(rule, 72))

		var totalCost float64
		var unknown []string
		for _, u := range sumBy(reqs, func(r store.LLMRequest) string { return r.Model }) {
			c, ok := llm.Cost(u.key, u.inputTokens, u.outputTokens)
			if !ok {
				unknown = append(unknown, u.key)
				fmt.Fprintf(w, "%-32s  %6d  %10d  %10d  %10s\n",
					truncate(u.key, 32), u.calls, u.inputTokens, u.outputTokens, "?")
				continue
			}
			totalCost += c
			fmt.Fprintf(w, "%-32s  %6d  %10d  %10d  %10s\n",
				truncate(u.key, 32), u.calls, u.inputTokens, u.outputTokens, formatCost(c))
		}

		fmt.Fprintln(w, strings.Repeat(rule, 72))
		label := "TOTAL"
		if len(unknown) > 0 {
			label = "TOTAL (partial)"
		}
		fmt.Fprintf(w, "%-32s  %6s  %10s  %10s  %10s\n", label, "", "", "", formatCost(totalCost))
		if len(unknown) > 0 {
			fmt.Fprintf(w, "\nPricing unavailable for: %s\n", strings.Join(unknown, ", "))
		}
		return nil
	},
}

func formatCost(c float64) string {
	if c < 0.01 {
		return fmt.Sprintf("$%.4f", c)
	}
	return fmt.Sprintf("$%.2f", c)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of requests to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Filter by purpose (e.g. question-gen)")

	llmCmd.AddCommand(llmListCmd)
	llmCmd.AddCommand(llmViewCmd)
	llmCmd.AddCommand(llmStatsCmd)
}
