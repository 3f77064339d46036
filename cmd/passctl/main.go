// Package main is the entry point for the passctl binary.
package main

import (
	"os"

	"gatepass/internal/passctl"
)

func main() {
	os.Exit(passctl.Execute())
}
