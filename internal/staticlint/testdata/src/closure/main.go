package main

import "os"

func main() {
	exit := func(code int) {
		os.Exit(code)
	}
	exit(0)
}
