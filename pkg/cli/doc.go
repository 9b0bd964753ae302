/*
Package cli provides command-line helpers shared by the zyk commands.

Output Formatting:

Command results can be rendered as text, JSON, or a table:

	formatter := cli.NewFormatter(cli.FormatTable)
	if err := formatter.FormatTo(os.Stdout, &cli.Table{
		Headers: []string{"provider", "calls"},
		Rows:    [][]string{{"deepseek", "12"}},
	}); err != nil {
		return err
	}

Tables use a colored style only when the writer is a terminal.

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()
*/
package cli
