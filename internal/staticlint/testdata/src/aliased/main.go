package main

import (
	sys "os"
)

func main() {
	if len(sys.Args) > 1 {
		sys.Exit(2) // want "using exit in main"
	}
	defer sys.Exit(0) // want "using exit in main"
}
