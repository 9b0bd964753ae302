package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/i-zyk/deepseek-zyk-workers/pkg/cli"
	"github.com/i-zyk/deepseek-zyk-workers/pkg/config"
	"github.com/i-zyk/deepseek-zyk-workers/pkg/ledger"
	"github.com/i-zyk/deepseek-zyk-workers/pkg/ledger/export"
	"github.com/i-zyk/deepseek-zyk-workers/pkg/ledger/retention"
)

type usageOptions struct {
	since    string
	until    string
	provider string
	model    string
	outcome  string
	format   string
	records  bool
	export   string
	limit    int
	offset   int
	output   string
}

func newUsageCommand(ctx *commandContext) *cobra.Command {
	var opts usageOptions

	cmd := &cobra.Command{
		Use:   "usage",
		Short: "Summarize the usage ledger",
		Long: `Summarize recorded completions per provider and model: calls, failures,
upstream attempts and token counts.

Time bounds accept a duration relative to now ("24h", "30m") or an RFC3339
timestamp. With --records the individual records are exported as JSON or
CSV instead of the summary.

Examples:
  # Summary of the last day
  zyk usage --since 24h

  # Failed DeepSeek calls as CSV
  zyk usage --records --provider deepseek --outcome error --export csv -o failures.csv

  # Summary as JSON
  zyk usage --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.NewCommandError("usage", runUsage(cmd, ctx, opts))
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.since, "since", "", "only records at or after this time (duration or RFC3339)")
	flags.StringVar(&opts.until, "until", "", "only records before this time (duration or RFC3339)")
	flags.StringVar(&opts.provider, "provider", "", "filter by provider")
	flags.StringVar(&opts.model, "model", "", "filter by model")
	flags.StringVar(&opts.outcome, "outcome", "", "filter by outcome: success, error")
	flags.StringVarP(&opts.format, "format", "f", "table", "summary format: table, json, text")
	flags.BoolVar(&opts.records, "records", false, "export individual records instead of the summary")
	flags.StringVar(&opts.export, "export", "json", "record export format: json, csv")
	flags.IntVar(&opts.limit, "limit", 100, "max records with --records (0 for all)")
	flags.IntVar(&opts.offset, "offset", 0, "pagination offset with --records")
	flags.StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")

	cmd.AddCommand(newUsagePruneCommand(ctx))

	return cmd
}

func runUsage(cmd *cobra.Command, cc *commandContext, opts usageOptions) error {
	cfg, err := cc.ensureConfig()
	if err != nil {
		return err
	}

	query, err := buildLedgerQuery(opts, time.Now())
	if err != nil {
		return err
	}

	store, err := openLedgerForRead(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	out := cmd.OutOrStdout()
	if opts.output != "" {
		f, err := os.Create(opts.output)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	if opts.records {
		exporter, err := export.New(opts.export)
		if err != nil {
			return cli.NewConfigError("export", err.Error())
		}
		records, err := store.Query(cmd.Context(), query)
		if err != nil {
			return err
		}
		return exporter.Export(cmd.Context(), records, out)
	}

	format, err := cli.ParseOutputFormat(opts.format)
	if err != nil {
		return cli.NewConfigError("format", err.Error())
	}
	query.Limit, query.Offset = 0, 0
	summaries, err := store.Summarize(cmd.Context(), query)
	if err != nil {
		return err
	}
	return printSummaries(out, format, summaries)
}

func printSummaries(w io.Writer, format cli.OutputFormat, summaries []ledger.Summary) error {
	if format == cli.FormatJSON {
		if summaries == nil {
			summaries = []ledger.Summary{}
		}
		return cli.NewFormatter(format).FormatTo(w, summaries)
	}

	if len(summaries) == 0 {
		_, err := fmt.Fprintln(w, "No completions recorded.")
		return err
	}

	tbl := &cli.Table{
		Headers:    []string{"Provider", "Model", "Calls", "Failures", "Attempts", "Prompt", "Completion", "Total"},
		RightAlign: []int{2, 3, 4, 5, 6, 7},
	}
	var total ledger.Summary
	for _, s := range summaries {
		tbl.Rows = append(tbl.Rows, summaryRow(s.Provider, s.Model, s))
		total.Calls += s.Calls
		total.Failures += s.Failures
		total.Attempts += s.Attempts
		total.PromptTokens += s.PromptTokens
		total.CompletionTokens += s.CompletionTokens
		total.TotalTokens += s.TotalTokens
	}
	if len(summaries) > 1 {
		tbl.Rows = append(tbl.Rows, summaryRow("all", "", total))
	}

	return cli.NewFormatter(format).FormatTo(w, tbl)
}

func summaryRow(provider, model string, s ledger.Summary) []string {
	return []string{
		provider,
		model,
		strconv.FormatInt(s.Calls, 10),
		strconv.FormatInt(s.Failures, 10),
		strconv.FormatInt(s.Attempts, 10),
		strconv.FormatInt(s.PromptTokens, 10),
		strconv.FormatInt(s.CompletionTokens, 10),
		strconv.FormatInt(s.TotalTokens, 10),
	}
}

func buildLedgerQuery(opts usageOptions, now time.Time) (*ledger.Query, error) {
	q := &ledger.Query{
		Provider: opts.provider,
		Model:    opts.model,
		Limit:    opts.limit,
		Offset:   opts.offset,
	}

	switch opts.outcome {
	case "", ledger.OutcomeSuccess, ledger.OutcomeError:
		q.Outcome = opts.outcome
	default:
		return nil, cli.NewConfigError("outcome", fmt.Sprintf("unknown outcome %q (want success or error)", opts.outcome))
	}

	var err error
	if q.Since, err = parseTimeBound(opts.since, now); err != nil {
		return nil, cli.NewConfigError("since", err.Error())
	}
	if q.Until, err = parseTimeBound(opts.until, now); err != nil {
		return nil, cli.NewConfigError("until", err.Error())
	}
	if !q.Since.IsZero() && !q.Until.IsZero() && !q.Since.Before(q.Until) {
		return nil, cli.NewConfigError("since", "must be before --until")
	}
	return q, nil
}

// parseTimeBound accepts a duration back from now or an RFC3339 timestamp.
func parseTimeBound(value string, now time.Time) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	if d, err := time.ParseDuration(value); err == nil {
		if d < 0 {
			return time.Time{}, fmt.Errorf("duration %q must not be negative", value)
		}
		return now.Add(-d), nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q is neither a duration nor an RFC3339 time", value)
	}
	return t, nil
}

func openLedgerForRead(cfg *config.Config) (ledger.Storage, error) {
	if !cfg.Ledger.Enabled {
		return nil, cli.NewConfigError("ledger.enabled", "the usage ledger is disabled")
	}
	if cfg.Ledger.Backend == "memory" {
		return nil, cli.NewConfigError("ledger.backend", "the memory ledger only lives inside a running server")
	}
	return openLedger(cfg)
}

func newUsagePruneCommand(ctx *commandContext) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete ledger records outside the retention window",
		Long: `Delete ledger records older than the retention window now, without
waiting for the scheduled pruning.

Examples:
  zyk usage prune
  zyk usage prune --days 7`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return cli.NewCommandError("usage prune", err)
			}
			if cmd.Flags().Changed("days") {
				cfg.Ledger.RetentionDays = days
			}
			if cfg.Ledger.RetentionDays <= 0 {
				return cli.NewCommandError("usage prune", cli.NewConfigError("ledger.retention_days", "retention is disabled; pass --days"))
			}

			store, err := openLedgerForRead(cfg)
			if err != nil {
				return cli.NewCommandError("usage prune", err)
			}
			defer store.Close()

			pruner := retention.NewPruner(store, retention.Config{RetentionDays: cfg.Ledger.RetentionDays})
			deleted, err := pruner.Prune(cmd.Context())
			if err != nil {
				return cli.NewCommandError("usage prune", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted %d record(s) older than %s\n", deleted, pruner.Cutoff().Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 0, "retention in days (default: ledger.retention_days)")
	return cmd
}
