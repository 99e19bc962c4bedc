package main

import "github.com/stride-works/stride/internal/cli"

func main() {
	cli.Execute()
}
