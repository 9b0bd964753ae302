// Zyk is a resilient chat-completion service in front of the DeepSeek and
// OpenAI APIs.
//
// Every completion runs through the same retrying client: rate limits and
// upstream failures are retried with exponential backoff and jitter, and a
// server-advertised Retry-After wait is honoured.
//
// Usage:
//
//	# Start the HTTP server
//	zyk run --config zyk.yaml
//
//	# One-shot completion from the terminal
//	zyk complete "Explain backoff in one sentence"
//
//	# Usage per provider and model from the ledger
//	zyk usage --since 24h
//
//	# Check a configuration file
//	zyk validate --config zyk.toml
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/i-zyk/deepseek-zyk-workers/pkg/cli"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(cli.ExitCode(err))
	}
}
