package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"chem-purchase-assistant/config"
)

func main() {
	if _, err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newCommand(os.Stdin, os.Stdout, os.Stderr)
	if err := cmd.Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "chemcart: %v\n", err)
		os.Exit(1)
	}
}
