package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	if err := NewCommand(os.Stdout).Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}
