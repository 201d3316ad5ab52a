// ABOUTME: Entry point for gachi CLI
// ABOUTME: Initializes and executes root command

package main

import (
	"fmt"
	"os"
	_ "time/tzdata"
)

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
