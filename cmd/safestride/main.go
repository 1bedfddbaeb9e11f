// safestride is the command-line client for the SafeStride prediction API:
// predict, batch, history, compare, report, status, template, theme, serve.
//
// Usage:
//
//	safestride predict -f form.yaml
//	safestride batch -f forms.json
//	safestride history list --level high
//	safestride compare <id> <id> --pdf comparison.pdf
//	safestride report <id>
//	safestride serve
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
