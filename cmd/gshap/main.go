// Command gshap explains a fixed-coefficient model with generalized
// Shapley values.
//
// Usage:
//
//	gshap explain --config run.yaml
//	gshap compare --config run.yaml --bootstrap-samples 500
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
