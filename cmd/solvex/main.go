// Command solvex solves a single-variable equation in x: exactly when
// the symbolic engine can enumerate the real solution set, otherwise
// approximately by iterative root finding from an initial guess.
//
// With no arguments it prompts for one equation on standard input;
// with one argument it solves that equation directly.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "solvex: %v\n", err)
		os.Exit(1)
	}
}
