package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/i-zyk/deepseek-zyk-workers/pkg/cli"
	"github.com/i-zyk/deepseek-zyk-workers/pkg/ledger/recorder"
	"github.com/i-zyk/deepseek-zyk-workers/pkg/providers"
	"github.com/i-zyk/deepseek-zyk-workers/pkg/proxy/types"
)

type completeOptions struct {
	model         string
	temperature   float64
	maxTokens     int
	format        string
	showReasoning bool
	noRecord      bool
}

func newCompleteCommand(ctx *commandContext) *cobra.Command {
	var opts completeOptions

	cmd := &cobra.Command{
		Use:   "complete [prompt]",
		Short: "Send one prompt through the retrying client",
		Long: `Send a single prompt to the configured provider and print the answer.

The prompt goes through the same client as the server, with the same retry
policy and request defaults. Without arguments, or with "-", the prompt is
read from standard input. The call is written to the usage ledger unless
--no-record is given.

Examples:
  zyk complete "Summarize the CAP theorem"
  echo "Write a haiku about retries" | zyk complete --temperature 1.2
  zyk complete --model deepseek-reasoner --show-reasoning "Is 1009 prime?"
  zyk complete --format json "hello"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.NewCommandError("complete", runComplete(cmd, ctx, opts, args))
		},
	}

	cmd.Flags().StringVarP(&opts.model, "model", "m", "", "model (default: provider model)")
	cmd.Flags().Float64VarP(&opts.temperature, "temperature", "t", 0, "sampling temperature in [0, 2] (default: config)")
	cmd.Flags().IntVar(&opts.maxTokens, "max-tokens", 0, "maximum completion tokens (default: config)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "output format: text, json")
	cmd.Flags().BoolVar(&opts.showReasoning, "show-reasoning", false, "print the reasoning trace when the model returns one")
	cmd.Flags().BoolVar(&opts.noRecord, "no-record", false, "do not write the call to the usage ledger")

	return cmd
}

func runComplete(cmd *cobra.Command, cc *commandContext, opts completeOptions, args []string) error {
	format, err := cli.ParseOutputFormat(opts.format)
	if err != nil || format == cli.FormatTable {
		return cli.NewConfigError("format", fmt.Sprintf("unsupported format %q (want text or json)", opts.format))
	}

	prompt, err := readPrompt(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	cfg, err := cc.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := cc.setupLogging(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	ctx, stop := cli.SignalContext(cmd.Context())
	defer stop()

	mgr, err := newSecretsManager(cfg.Secrets)
	if err != nil {
		return err
	}
	defer mgr.Close()

	transport, err := newTransport(ctx, cfg, mgr, false)
	if err != nil {
		return err
	}
	defer transport.Close()

	reqOpts := cfg.RequestOptions()
	flags := cmd.Flags()
	if flags.Changed("model") {
		reqOpts = append(reqOpts, providers.WithModel(opts.model))
	}
	if flags.Changed("temperature") {
		reqOpts = append(reqOpts, providers.WithTemperature(opts.temperature))
	}
	if flags.Changed("max-tokens") {
		reqOpts = append(reqOpts, providers.WithMaxTokens(opts.maxTokens))
	}
	req := providers.NewCompletionRequest(prompt, reqOpts...)
	if req.Model == "" {
		req.Model = transport.DefaultModel()
	}

	client := providers.NewClient(transport, cfg.Retry.Policy(), providers.WithLogger(logger.Logger))

	start := time.Now()
	result, completeErr := client.Complete(ctx, req)
	elapsed := time.Since(start)

	if !opts.noRecord {
		if err := recordOne(cc, cmd, req, transport.GetName(), result, completeErr, elapsed); err != nil {
			logger.Warn("failed to record completion in ledger", "error", err)
		}
	}

	if completeErr != nil {
		return completeErr
	}
	return printCompletion(cmd.OutOrStdout(), format, result, opts.showReasoning)
}

// recordOne writes a single ledger record and waits for it to land.
func recordOne(cc *commandContext, cmd *cobra.Command, req providers.CompletionRequest, provider string, result *providers.CompletionResult, completeErr error, d time.Duration) error {
	cfg, _ := cc.ensureConfig()
	store, err := openLedger(cfg)
	if err != nil || store == nil {
		return err
	}
	defer store.Close()

	var ce *providers.ClassifiedError
	if completeErr != nil {
		ce = asClassified(completeErr)
	}

	rec := recorder.New(store, recorder.Config{BufferSize: 1, WriteTimeout: recorder.DefaultConfig().WriteTimeout})
	if err := rec.RecordCompletion(cmd.Context(), req, provider, result, ce, d); err != nil {
		_ = rec.Close()
		return err
	}
	return rec.Close()
}

func asClassified(err error) *providers.ClassifiedError {
	var ce *providers.ClassifiedError
	if errors.As(err, &ce) {
		return ce
	}
	return &providers.ClassifiedError{Kind: providers.KindRequest, Message: err.Error(), Err: err}
}

func printCompletion(w io.Writer, format cli.OutputFormat, result *providers.CompletionResult, showReasoning bool) error {
	if format == cli.FormatJSON {
		body := types.NewCompletionResponse(result)
		if !showReasoning {
			body.Reasoning = ""
		}
		return cli.NewFormatter(cli.FormatJSON).FormatTo(w, body)
	}

	if showReasoning && result.Reasoning != "" {
		fmt.Fprintf(w, "--- reasoning ---\n%s\n--- answer ---\n", strings.TrimSpace(result.Reasoning))
	}
	return cli.NewFormatter(cli.FormatText).FormatTo(w, result.Text)
}

// readPrompt takes the prompt from args, or from r when args is empty or "-".
func readPrompt(r io.Reader, args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		if strings.TrimSpace(args[0]) == "" {
			return "", cli.NewConfigError("prompt", "prompt must not be empty")
		}
		return args[0], nil
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read prompt from stdin: %w", err)
	}
	prompt := strings.TrimSpace(string(data))
	if prompt == "" {
		return "", cli.NewConfigError("prompt", "prompt must not be empty")
	}
	return prompt, nil
}
