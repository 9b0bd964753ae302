package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/i-zyk/deepseek-zyk-workers/pkg/cli"
	"github.com/i-zyk/deepseek-zyk-workers/pkg/config"
	"github.com/i-zyk/deepseek-zyk-workers/pkg/secrets"
)

// validateReport is the outcome of "zyk validate". The API key is reported
// by state only.
type validateReport struct {
	Valid        bool   `json:"valid"`
	Provider     string `json:"provider"`
	ProviderType string `json:"provider_type"`
	APIKey       string `json:"api_key"`
	MaxRetries   int    `json:"max_retries"`
	BaseDelay    string `json:"base_delay"`
	MaxDelay     string `json:"max_delay"`
	Ledger       string `json:"ledger"`
}

func newValidateReport(cfg *config.Config) validateReport {
	r := validateReport{
		Valid:        true,
		Provider:     cfg.Provider.ProviderName(),
		ProviderType: cfg.Provider.Type,
		APIKey:       "set",
		MaxRetries:   cfg.Retry.MaxRetries,
		BaseDelay:    cfg.Retry.BaseDelay.String(),
		MaxDelay:     cfg.Retry.MaxDelay.String(),
		Ledger:       "disabled",
	}
	switch {
	case cfg.Provider.APIKey == "":
		r.APIKey = "missing"
	case secrets.IsReference(cfg.Provider.APIKey):
		r.APIKey = "secret reference"
	}
	if cfg.Ledger.Enabled {
		r.Ledger = cfg.Ledger.Backend
		if cfg.Ledger.Backend != "memory" {
			r.Ledger += " " + cfg.Ledger.Path
		}
	}
	return r
}

func newValidateCommand(ctx *commandContext) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration",
		Long: `Load the configuration the way "zyk run" does (file, ZYK_* environment
overrides, defaults) and report every invalid field.

A missing API key is reported but is not an error here; "zyk run" and
"zyk complete" refuse to start without one.

Examples:
  zyk validate --config zyk.yaml
  zyk validate --config zyk.toml --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := cli.ParseOutputFormat(format)
			if err != nil || f == cli.FormatTable {
				return cli.NewCommandError("validate", cli.NewConfigError("format", fmt.Sprintf("unsupported format %q (want text or json)", format)))
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return cli.NewCommandError("validate", err)
			}

			report := newValidateReport(cfg)
			out := cmd.OutOrStdout()
			if f == cli.FormatJSON {
				return cli.NewFormatter(f).FormatTo(out, report)
			}

			fmt.Fprintln(out, "✓ Configuration valid")
			fmt.Fprintf(out, "  Provider: %s (%s)\n", report.Provider, report.ProviderType)
			fmt.Fprintf(out, "  API key:  %s\n", report.APIKey)
			fmt.Fprintf(out, "  Retry:    %d retries, base %s, max %s\n", report.MaxRetries, report.BaseDelay, report.MaxDelay)
			fmt.Fprintf(out, "  Ledger:   %s\n", report.Ledger)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text, json")
	return cmd
}
