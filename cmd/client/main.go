package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/nestjam/tinyurl/internal/client"
)

const (
	minCount          = 2
	wrongArgs         = "expand or shorten subcommand required"
	shortenSubcommand = "shorten"
	expandSubcommand  = "expand"
)

func main() {
	if len(os.Args) < minCount {
		exit(wrongArgs)
	}

	shortenSet := flag.NewFlagSet(shortenSubcommand, flag.ExitOnError)
	serverAddr := shortenSet.String("a", "http://localhost:8080", "address of shortener server")
	shortenTimeout := shortenSet.Duration("timeout", 10*time.Second, "request timeout")

	expandSet := flag.NewFlagSet(expandSubcommand, flag.ExitOnError)
	expandTimeout := expandSet.Duration("timeout", 10*time.Second, "request timeout")

	ctx := context.Background()

	switch os.Args[1] {
	case shortenSubcommand:
		if err := shortenSet.Parse(os.Args[minCount:]); err != nil {
			exit(err)
		}

		c := client.New(client.WithServerAddress(*serverAddr), client.WithTimeout(*shortenTimeout))
		run(shortenSet.Args(), func(url string) (string, error) {
			return c.Shorten(ctx, url)
		})
	case expandSubcommand:
		if err := expandSet.Parse(os.Args[minCount:]); err != nil {
			exit(err)
		}

		c := client.New(client.WithTimeout(*expandTimeout))
		run(expandSet.Args(), func(url string) (string, error) {
			return c.Expand(ctx, url)
		})
	default:
		exit(wrongArgs)
	}
}

func run(urls []string, do func(url string) (string, error)) {
	for _, url := range urls {
		result, err := do(url)
		if err != nil {
			exit(err)
		}

		fmt.Println(result)
	}
}

func exit(msg any) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
