package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var verbose bool

	ctx := newCommandContext(&configFlag, &verbose)

	rootCmd := &cobra.Command{
		Use:   "zyk",
		Short: "Resilient DeepSeek/OpenAI completion service",
		Long: `Zyk sends chat completions to DeepSeek or OpenAI and absorbs transient
upstream failures on the caller's behalf.

Rate limits (429), upstream 5xx answers and network faults are retried with
exponential backoff, jitter and Retry-After support. Authentication and
authorization failures are reported immediately.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "config file path (.yaml or .toml); defaults plus ZYK_* environment when empty")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(newRunCommand(ctx))
	rootCmd.AddCommand(newCompleteCommand(ctx))
	rootCmd.AddCommand(newUsageCommand(ctx))
	rootCmd.AddCommand(newValidateCommand(ctx))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}
