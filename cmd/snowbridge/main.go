// Package main provides the snowbridge CLI entry point.
package main

import (
	"os"

	"github.com/leapstack-labs/snowbridge/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
