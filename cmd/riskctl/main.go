// Package main is the entry point for riskctl
package main

import (
	"os"

	"github.com/leainsurance/travelrisk/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
