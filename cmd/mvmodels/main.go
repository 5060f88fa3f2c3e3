// Package main provides the multiview-models CLI.
package main

import (
	"fmt"
	"os"
)

const version = "v0.1.0-dev"

func main() {
	if len(os.Args) > 1 && os.Args[1] == "version" {
		fmt.Printf("multiview-models %s\n", version)
		return
	}

	fmt.Println("multiview-models - Multiview Autoencoder Training for Go")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  version    Show version")
	fmt.Println("")
	fmt.Println("See examples/twoview for a runnable training example.")
}
