// Package main points at the rvdis command, which lives in ./cmd/rvdis.
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Fprintln(os.Stderr, "rvdis: run 'go run ./cmd/rvdis --help'")
	os.Exit(2)
}
