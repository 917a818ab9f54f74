package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("exiting")
	os.Exit(1) // want "using exit in main"
}

func exit() {
	os.Exit(1)
}
