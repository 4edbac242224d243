package main

import (
	"context"
	"fmt"
	"os"

	"github.com/marmos91/dittodav/internal/cli"
	"github.com/marmos91/dittodav/internal/logger"
)

func main() {
	code, err := cli.Run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	_ = logger.Sync()
	os.Exit(code)
}
