// Package main provides recipectl, an administration tool for the recipe
// server database.
//
// Usage:
//
//	recipectl user create --email cook@example.com --password 'correct horse'
//	recipectl token issue --email cook@example.com
//	recipectl --data-path ~/.recipes seed
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
