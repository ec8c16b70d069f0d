// Package main provides the entry point for the kedro CLI
package main

import (
	"os"

	"github.com/zyanho/kedro-cli/cmd/kedro/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
