package cmd

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/studypath/internal/llm"
	"github.com/abhisek/studypath/internal/store"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect the LLM request audit log",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent LLM calls, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")
		since, _ := cmd.Flags().GetDuration("since")
		asJSON, _ := cmd.Flags().GetBool("json")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		opts := store.QueryOpts{Limit: limit, Purpose: purpose}
		if since > 0 {
			opts.From = time.Now().Add(-since)
		}
		events, err := s.EventRepo().QueryLLMEvents(cmd.Context(), opts)
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}
		if asJSON {
			return printJSON(events)
		}
		if len(events) == 0 {
			fmt.Println("No LLM calls recorded.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tWHEN\tPURPOSE\tMODEL\tTOKENS\tMS\tSTATUS")
		for _, e := range events {
			status := "ok"
			if !e.Success {
				status = "failed"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d/%d\t%d\t%s\n",
				truncate(e.ID, 8), e.Timestamp.Local().Format(time.DateTime), e.Purpose,
				truncate(e.Model, 28), e.InputTokens, e.OutputTokens, e.LatencyMs, status)
		}
		return w.Flush()
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the prompt and reply recorded for one LLM call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		e, err := s.EventRepo().GetLLMEvent(cmd.Context(), args[0])
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("no LLM call with id %q", args[0])
		}
		if err != nil {
			return fmt.Errorf("get event: %w", err)
		}
		if asJSON {
			return printJSON(e)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 1, ' ', 0)
		fmt.Fprintf(w, "id:\t%s\n", e.ID)
		fmt.Fprintf(w, "time:\t%s\n", e.Timestamp.Local().Format(time.DateTime))
		fmt.Fprintf(w, "provider:\t%s (%s)\n", e.Provider, e.Model)
		fmt.Fprintf(w, "purpose:\t%s\n", e.Purpose)
		fmt.Fprintf(w, "tokens:\t%d in, %d out\n", e.InputTokens, e.OutputTokens)
		fmt.Fprintf(w, "latency:\t%dms\n", e.LatencyMs)
		if e.ErrorMessage != "" {
			fmt.Fprintf(w, "error:\t%s\n", e.ErrorMessage)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		for _, part := range [][2]string{{"request", e.RequestBody}, {"response", e.ResponseBody}} {
			body := part[1]
			if body == "" {
				body = "(empty)"
			}
			fmt.Printf("\n%s\n%s\n%s\n", part[0], rule(), body)
		}
		return nil
	},
}

// purposeUsage aggregates events sharing a purpose.
type purposeUsage struct {
	Purpose      string
	Calls        int
	Failures     int
	InputTokens  int
	OutputTokens int
	CostUSD      float64
	Unpriced     int // calls whose model has no known price
	latencyMs    int64
}

func (u purposeUsage) AvgLatencyMs() int64 {
	if u.Calls == 0 {
		return 0
	}
	return u.latencyMs / int64(u.Calls)
}

func usageByPurpose(events []store.LLMRequestEvent) []purposeUsage {
	byPurpose := map[string]*purposeUsage{}
	for _, e := range events {
		u, ok := byPurpose[e.Purpose]
		if !ok {
			u = &purposeUsage{Purpose: e.Purpose}
			byPurpose[e.Purpose] = u
		}
		u.Calls++
		if !e.Success {
			u.Failures++
		}
		u.InputTokens += e.InputTokens
		u.OutputTokens += e.OutputTokens
		u.latencyMs += e.LatencyMs
		if cost, ok := llm.EstimateCost(e.Model, e.InputTokens, e.OutputTokens); ok {
			u.CostUSD += cost
		} else {
			u.Unpriced++
		}
	}
	out := make([]purposeUsage, 0, len(byPurpose))
	for _, u := range byPurpose {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Purpose < out[j].Purpose })
	return out
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregated LLM token usage by purpose",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		events, err := s.EventRepo().QueryLLMEvents(cmd.Context(), store.QueryOpts{})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}
		stats := usageByPurpose(events)
		if len(stats) == 0 {
			fmt.Println("No LLM usage recorded yet.")
			return nil
		}

		fmt.Printf("%-16s  %6s  %6s  %10s  %10s  %8s  %9s\n", "Purpose", "Calls", "Failed", "Input", "Output", "Avg Ms", "Cost $")
		fmt.Println(rule())
		var (
			calls, in, out, unpriced int
			cost                     float64
		)
		for _, u := range stats {
			fmt.Printf("%-16s  %6d  %6d  %10d  %10d  %8d  %9.4f\n",
				truncate(u.Purpose, 16), u.Calls, u.Failures, u.InputTokens, u.OutputTokens, u.AvgLatencyMs(), u.CostUSD)
			calls += u.Calls
			in += u.InputTokens
			out += u.OutputTokens
			cost += u.CostUSD
			unpriced += u.Unpriced
		}
		fmt.Println(rule())
		fmt.Printf("%-16s  %6d  %6s  %10d  %10d  %8s  %9.4f\n", "TOTAL", calls, "", in, out, "", cost)
		if unpriced > 0 {
			fmt.Printf("\n%d call(s) used models without a known price and are not in the cost column.\n", unpriced)
		}
		return nil
	},
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Maximum number of calls to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Only calls with this purpose (concept-extract, quiz-generate, summary)")
	llmListCmd.Flags().Duration("since", 0, "Only calls newer than this, e.g. 24h")
	llmListCmd.Flags().Bool("json", false, "Print events as JSON")
	llmViewCmd.Flags().Bool("json", false, "Print the event as JSON")

	llmCmd.AddCommand(llmListCmd)
	llmCmd.AddCommand(llmViewCmd)
	llmCmd.AddCommand(llmStatsCmd)
}
