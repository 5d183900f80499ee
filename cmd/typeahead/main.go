// Package main provides the entry point for the typeahead CLI.
package main

import (
	"os"

	"github.com/Aman-CERP/typeahead/cmd/typeahead/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
