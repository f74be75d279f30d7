package main

import (
	"context"
	"io"
	"os"
	"os/signal"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit code
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := newRootCmd(stdout, stderr, loadEnv(".env"))
	cmd.SetIn(stdin)
	cmd.SetArgs(args)

	if err := cmd.ExecuteContext(ctx); err != nil {
		return 1
	}
	return 0
}
